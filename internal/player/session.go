// package player turns playback intents into remote API calls, one session per account.
package player

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kidspot/internal/services"
	"github.com/desertthunder/kidspot/internal/shared"
)

// State tracks an account session's lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateAuthenticating
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Feedback signals playback failures to the user. Implemented by the
// LED panel; nil disables signalling.
type Feedback interface {
	SignalError()
}

// Session drives playback for one account against its resolved device.
//
// All playback commands serialize on the session's lock for the duration
// of the remote call, because the remote API does not preserve ordering
// of concurrent requests for one account. Read-only status checks bypass
// the lock.
type Session struct {
	label      string
	deviceName string
	api        services.API
	logger     *log.Logger
	feedback   Feedback

	mu         sync.Mutex
	state      State
	deviceID   string
	active     bool
	lastTarget string
}

// SessionOpts contains construction options for a Session.
type SessionOpts struct {
	Label      string
	DeviceName string
	API        services.API
	Logger     *log.Logger
	Feedback   Feedback
}

// NewSession creates an uninitialized session for one account.
func NewSession(opts SessionOpts) *Session {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Session{
		label:      opts.Label,
		deviceName: opts.DeviceName,
		api:        opts.API,
		logger:     shared.WithLogger(opts.Logger, "account", opts.Label),
		feedback:   opts.Feedback,
	}
}

func (s *Session) Label() string { return s.label }

// State returns the session's lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether the target device was found for this account.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// DeviceID returns the resolved device id, empty when undiscovered.
func (s *Session) DeviceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceID
}

// LastTarget returns the most recent target passed to a successful Play.
func (s *Session) LastTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTarget
}

// Initialize authenticates the account and runs the first device
// discovery. Auth failure moves the session to StateFailed; a missing
// device does not, since discovery retries lazily on the next play.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateAuthenticating
	s.mu.Unlock()

	found, err := s.DiscoverDevice(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()

	if !found {
		s.logger.Warn("playback device not available", "device", s.deviceName)
	}
	return nil
}

// DiscoverDevice lists the account's devices and resolves the configured
// device name. Matching policy: exact name first, then case-insensitive
// substring, so slightly renamed Connect devices still resolve.
//
// Mutates the session's device id and active flag. Returns whether a
// match was found; errors only on transport or auth failure.
func (s *Session) DiscoverDevice(ctx context.Context) (bool, error) {
	devices, err := s.api.Devices(ctx)
	if err != nil {
		return false, err
	}

	var matched *services.Device
	for i, d := range devices {
		if d.Name == s.deviceName {
			matched = &devices[i]
			break
		}
	}
	if matched == nil {
		want := strings.ToLower(s.deviceName)
		for i, d := range devices {
			if strings.Contains(strings.ToLower(d.Name), want) {
				matched = &devices[i]
				break
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if matched == nil {
		s.deviceID = ""
		s.active = false
		return false, nil
	}

	s.deviceID = matched.ID
	s.active = true
	s.logger.Info("playback device detected", "device", s.deviceName, "device_id", matched.ID)
	return true, nil
}

// ValidTarget reports whether target is a playable Spotify reference.
func ValidTarget(target string) bool {
	return strings.HasPrefix(target, "spotify:") || strings.HasPrefix(target, "https://open.spotify.com/")
}

// itemTarget reports whether target plays as an explicit item list
// rather than a context.
func itemTarget(target string) bool {
	return strings.HasPrefix(target, "spotify:track:") || strings.HasPrefix(target, "spotify:episode:")
}

// Play starts playback of target on the account's device.
//
// Malformed targets are rejected before any remote call. A session with
// no resolved device attempts one rediscovery first. Remote failures are
// logged and signalled, never propagated: playback errors must not take
// the process down.
func (s *Session) Play(ctx context.Context, target string) bool {
	if !ValidTarget(target) {
		s.logger.Warn("rejected playback target", "target", target, "err", shared.ErrInvalidTarget)
		s.signalError()
		return false
	}

	if s.DeviceID() == "" {
		if found, err := s.DiscoverDevice(ctx); err != nil || !found {
			s.logger.Warn("not ready for playback", "device", s.deviceName, "err", err)
			s.signalError()
			return false
		}
	}

	opts := services.PlayOptions{}
	if itemTarget(target) {
		opts.URIs = []string{target}
	} else {
		opts.ContextURI = target
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.api.Play(ctx, s.deviceID, opts); err != nil {
		s.logger.Warn("playback error", "target", target, "err", err)
		s.signalError()
		return false
	}

	s.lastTarget = target
	s.logger.Info("playback started", "device", s.deviceName, "target", target)
	return true
}

// Pause pauses playback on the account's device.
func (s *Session) Pause(ctx context.Context) bool {
	return s.command(ctx, "pause", func(deviceID string) error {
		return s.api.Pause(ctx, deviceID)
	})
}

// SkipNext skips to the next track.
func (s *Session) SkipNext(ctx context.Context) bool {
	return s.command(ctx, "next track", func(deviceID string) error {
		return s.api.Next(ctx, deviceID)
	})
}

// SkipPrevious skips to the previous track.
func (s *Session) SkipPrevious(ctx context.Context) bool {
	return s.command(ctx, "previous track", func(deviceID string) error {
		return s.api.Previous(ctx, deviceID)
	})
}

// SeekToStart restarts the current item from position zero.
func (s *Session) SeekToStart(ctx context.Context) bool {
	return s.command(ctx, "seek to start", func(deviceID string) error {
		return s.api.Seek(ctx, deviceID, 0)
	})
}

// SetVolume sets the device volume, clamped to [0,100].
func (s *Session) SetVolume(ctx context.Context, percent int) bool {
	percent = Clamp(percent, 0, 100)
	return s.command(ctx, "set volume", func(deviceID string) error {
		return s.api.SetVolume(ctx, deviceID, percent)
	})
}

// command runs one remote playback call under the account lock with the
// shared failure policy: log, signal, return false.
func (s *Session) command(ctx context.Context, name string, call func(deviceID string) error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deviceID == "" {
		s.logger.Warn("not ready for playback command", "command", name, "err", shared.ErrNotReady)
		return false
	}

	if err := call(s.deviceID); err != nil {
		s.logger.Warn("playback command error", "command", name, "err", err)
		s.signalError()
		return false
	}
	return true
}

// CurrentPlayback returns the account's playback state, nil when it is
// unknown. Callers treat nil as "assume baseline defaults"; this runs
// outside the command lock so status checks never queue behind playback
// calls.
func (s *Session) CurrentPlayback(ctx context.Context) *services.PlaybackSnapshot {
	snapshot, err := s.api.CurrentPlayback(ctx)
	if err != nil {
		s.logger.Debug("playback state unavailable", "err", err)
		return nil
	}
	return snapshot
}

func (s *Session) signalError() {
	if s.feedback != nil {
		s.feedback.SignalError()
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
