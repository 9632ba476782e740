// package feedback drives the status LEDs: idle, solid, and timed blinking.
package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kidspot/internal/hardware"
	"github.com/desertthunder/kidspot/internal/shared"
)

// State is an indicator's current mode.
type State int

const (
	Off State = iota
	On
	Blinking
)

func (s State) String() string {
	switch s {
	case On:
		return "on"
	case Blinking:
		return "blinking"
	default:
		return "off"
	}
}

const (
	// blinkHalfPeriod is the fixed on/off half-cycle of a blink.
	blinkHalfPeriod = 500 * time.Millisecond

	// errorBlinkDuration is how long the error indicator blinks after
	// a playback-affecting failure.
	errorBlinkDuration = 2 * time.Second

	// ErrorIndicator is the indicator used for failure feedback.
	ErrorIndicator = "red"
)

// Panel is a set of independently addressable indicators.
//
// Writes are idempotent and last-writer-wins; concurrent blinks on the
// same indicator race and the last one to finish settles it off. Blink
// runs as its own goroutine and never blocks the caller.
type Panel struct {
	writer hardware.PinWriter
	logger *log.Logger

	mu     sync.Mutex
	pins   map[string]int
	states map[string]State

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown sync.Once
}

// NewPanel creates a Panel over the given output pins and forces every
// indicator off.
func NewPanel(writer hardware.PinWriter, pins map[string]int, logger *log.Logger) *Panel {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())

	p := &Panel{
		writer: writer,
		logger: shared.WithLogger(logger, "component", "leds"),
		pins:   make(map[string]int, len(pins)),
		states: make(map[string]State, len(pins)),
		ctx:    ctx,
		cancel: cancel,
	}

	for name, pin := range pins {
		p.pins[name] = pin
		p.states[name] = Off
		p.write(pin, hardware.Low)
	}

	return p
}

// On turns the named indicator on. Unknown names are ignored.
func (p *Panel) On(name string) {
	p.set(name, On)
}

// Off turns the named indicator off. Unknown names are ignored.
func (p *Panel) Off(name string) {
	p.set(name, Off)
}

// State returns the named indicator's current state.
func (p *Panel) State(name string) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.states[name]
}

// Blink alternates the named indicator on/off for the given duration,
// then settles it off. Returns immediately; the blink runs
// independently until it expires or the panel shuts down.
func (p *Panel) Blink(name string, duration time.Duration) {
	p.mu.Lock()
	pin, ok := p.pins[name]
	if !ok {
		p.mu.Unlock()
		p.logger.Warn("unknown indicator", "name", name)
		return
	}
	p.states[name] = Blinking
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.set(name, Off)

		deadline := time.NewTimer(duration)
		defer deadline.Stop()
		ticker := time.NewTicker(blinkHalfPeriod)
		defer ticker.Stop()

		lit := true
		p.write(pin, hardware.High)

		for {
			select {
			case <-p.ctx.Done():
				return
			case <-deadline.C:
				return
			case <-ticker.C:
				lit = !lit
				level := hardware.Low
				if lit {
					level = hardware.High
				}
				p.write(pin, level)
			}
		}
	}()
}

// SignalError blinks the error indicator for the standard failure window.
// Implements player.Feedback.
func (p *Panel) SignalError() {
	p.Blink(ErrorIndicator, errorBlinkDuration)
}

// SelfTest lights every indicator for the hold duration, then turns
// them all off again.
func (p *Panel) SelfTest(hold time.Duration) {
	p.mu.Lock()
	names := make([]string, 0, len(p.pins))
	for name := range p.pins {
		names = append(names, name)
	}
	p.mu.Unlock()

	for _, name := range names {
		p.On(name)
	}
	time.Sleep(hold)
	for _, name := range names {
		p.Off(name)
	}
}

// Shutdown cancels all running blinks, waits for them to exit, forces
// every indicator off, and releases the hardware handle exactly once.
// Safe to call repeatedly.
func (p *Panel) Shutdown() {
	p.shutdown.Do(func() {
		p.cancel()
		p.wg.Wait()

		p.mu.Lock()
		for name, pin := range p.pins {
			p.states[name] = Off
			p.write(pin, hardware.Low)
		}
		p.mu.Unlock()

		if err := p.writer.Close(); err != nil {
			p.logger.Warn("failed to release hardware handle", "err", err)
		}
	})
}

func (p *Panel) set(name string, state State) {
	p.mu.Lock()
	pin, ok := p.pins[name]
	if !ok {
		p.mu.Unlock()
		p.logger.Warn("unknown indicator", "name", name)
		return
	}
	p.states[name] = state

	level := hardware.Low
	if state == On {
		level = hardware.High
	}
	p.write(pin, level)
	p.mu.Unlock()
}

// write drives a pin, tolerating a closed handle during shutdown races.
func (p *Panel) write(pin int, level hardware.Level) {
	if err := p.writer.WritePin(pin, level); err != nil {
		p.logger.Debug("pin write failed", "pin", pin, "err", err)
	}
}
