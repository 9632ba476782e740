// package hardware abstracts the GPIO and RFID reader primitives the appliance runs against.
//
// The real transport drivers (GPIO character device, PN532 over I2C) are
// external to this module; everything above them only sees the
// capability interfaces defined here. The rest of the program should
// never import a driver directly.
package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Level is a digital pin level.
type Level int

const (
	Low Level = iota
	High
)

// PinReader reads the level of a logical input pin. Buttons are wired
// active-low with pull-ups, so a pressed button reads Low.
type PinReader interface {
	ReadPin(pin int) (Level, error)
}

// PinWriter drives a logical output pin and releases the underlying
// handle on Close.
type PinWriter interface {
	WritePin(pin int, level Level) error
	Close() error
}

// TagReader polls for the presence of an RFID tag. ReadTag blocks until
// a tag is present or the timeout elapses; a (nil, nil) return means no
// tag was seen within the timeout.
type TagReader interface {
	ReadTag(ctx context.Context, timeout time.Duration) ([]byte, error)
}

// Driver bundles every hardware capability the appliance needs.
type Driver interface {
	PinReader
	PinWriter
	TagReader
}

// Open returns the driver registered under the given name.
func Open(name string) (Driver, error) {
	switch name {
	case "", "memory":
		return NewMemoryDriver(), nil
	default:
		return nil, fmt.Errorf("unknown hardware driver: %s", name)
	}
}

// MemoryDriver is an in-process Driver used by tests and simulated runs.
//
// Input levels default to High (released, pull-up semantics). Tags are
// queued with QueueTag and consumed one per successful ReadTag.
type MemoryDriver struct {
	mu      sync.Mutex
	levels  map[int]Level
	outputs map[int]Level
	tags    [][]byte
	closed  bool
	closes  int
}

// NewMemoryDriver creates an empty MemoryDriver.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		levels:  make(map[int]Level),
		outputs: make(map[int]Level),
	}
}

// SetLevel sets the level a subsequent ReadPin observes for pin.
func (d *MemoryDriver) SetLevel(pin int, level Level) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.levels[pin] = level
}

// QueueTag enqueues a raw tag identifier for the next ReadTag call.
func (d *MemoryDriver) QueueTag(uid []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tags = append(d.tags, uid)
}

// Output returns the last level written to pin.
func (d *MemoryDriver) Output(pin int) Level {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outputs[pin]
}

// Closes returns how many times Close has been called.
func (d *MemoryDriver) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

func (d *MemoryDriver) ReadPin(pin int) (Level, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return High, fmt.Errorf("hardware driver closed")
	}
	if level, ok := d.levels[pin]; ok {
		return level, nil
	}
	return High, nil
}

func (d *MemoryDriver) WritePin(pin int, level Level) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("hardware driver closed")
	}
	d.outputs[pin] = level
	return nil
}

func (d *MemoryDriver) ReadTag(ctx context.Context, timeout time.Duration) ([]byte, error) {
	d.mu.Lock()
	if len(d.tags) > 0 {
		uid := d.tags[0]
		d.tags = d.tags[1:]
		d.mu.Unlock()
		return uid, nil
	}
	d.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, nil
	}
}

// Close marks the driver closed. Safe to call repeatedly.
func (d *MemoryDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.closes++
	return nil
}
