// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/desertthunder/kidspot/internal/services"
)

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockAPI is a test double for [services.API] with overridable behavior per call.
type MockAPI struct {
	DevicesFunc         func(ctx context.Context) ([]services.Device, error)
	PlayFunc            func(ctx context.Context, deviceID string, opts services.PlayOptions) error
	PauseFunc           func(ctx context.Context, deviceID string) error
	NextFunc            func(ctx context.Context, deviceID string) error
	PreviousFunc        func(ctx context.Context, deviceID string) error
	SeekFunc            func(ctx context.Context, deviceID string, positionMS int) error
	SetVolumeFunc       func(ctx context.Context, deviceID string, percent int) error
	CurrentPlaybackFunc func(ctx context.Context) (*services.PlaybackSnapshot, error)
}

func (m *MockAPI) Devices(ctx context.Context) ([]services.Device, error) {
	if m.DevicesFunc != nil {
		return m.DevicesFunc(ctx)
	}
	return nil, nil
}

func (m *MockAPI) Play(ctx context.Context, deviceID string, opts services.PlayOptions) error {
	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, deviceID, opts)
	}
	return nil
}

func (m *MockAPI) Pause(ctx context.Context, deviceID string) error {
	if m.PauseFunc != nil {
		return m.PauseFunc(ctx, deviceID)
	}
	return nil
}

func (m *MockAPI) Next(ctx context.Context, deviceID string) error {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, deviceID)
	}
	return nil
}

func (m *MockAPI) Previous(ctx context.Context, deviceID string) error {
	if m.PreviousFunc != nil {
		return m.PreviousFunc(ctx, deviceID)
	}
	return nil
}

func (m *MockAPI) Seek(ctx context.Context, deviceID string, positionMS int) error {
	if m.SeekFunc != nil {
		return m.SeekFunc(ctx, deviceID, positionMS)
	}
	return nil
}

func (m *MockAPI) SetVolume(ctx context.Context, deviceID string, percent int) error {
	if m.SetVolumeFunc != nil {
		return m.SetVolumeFunc(ctx, deviceID, percent)
	}
	return nil
}

func (m *MockAPI) CurrentPlayback(ctx context.Context) (*services.PlaybackSnapshot, error) {
	if m.CurrentPlaybackFunc != nil {
		return m.CurrentPlaybackFunc(ctx)
	}
	return nil, nil
}

// MockPlayer is a test double for input.Player that records every call.
type MockPlayer struct {
	mu sync.Mutex

	PlayCalls     []string
	PauseCalls    int
	NextCalls     int
	PreviousCalls int
	VolumeCalls   []int

	Snapshot *services.PlaybackSnapshot
	Last     string
	PlayOK   bool
}

func NewMockPlayer() *MockPlayer {
	return &MockPlayer{PlayOK: true}
}

func (m *MockPlayer) Play(ctx context.Context, target string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayCalls = append(m.PlayCalls, target)
	if m.PlayOK {
		m.Last = target
	}
	return m.PlayOK
}

func (m *MockPlayer) Pause(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PauseCalls++
	return true
}

func (m *MockPlayer) SkipNext(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NextCalls++
	return true
}

func (m *MockPlayer) SkipPrevious(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PreviousCalls++
	return true
}

func (m *MockPlayer) SetVolume(ctx context.Context, percent int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VolumeCalls = append(m.VolumeCalls, percent)
	return true
}

func (m *MockPlayer) CurrentPlayback(ctx context.Context) *services.PlaybackSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Snapshot
}

func (m *MockPlayer) LastTarget() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Last
}

// Nexts returns the number of recorded skip-next calls.
func (m *MockPlayer) Nexts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.NextCalls
}

// Plays returns a copy of the recorded play targets.
func (m *MockPlayer) Plays() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.PlayCalls))
	copy(out, m.PlayCalls)
	return out
}

// SpyNotifier counts error signals.
type SpyNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *SpyNotifier) SignalError() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
}

func (n *SpyNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}
