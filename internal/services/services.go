// package services defines the client surface for the remote playback API
package services

import (
	"context"
)

// API defines the remote playback operations an account session needs.
// Implemented by [Client] against the Spotify Web API; mocked in tests.
type API interface {
	// Devices lists the playback devices currently visible to the account.
	Devices(ctx context.Context) ([]Device, error)

	// Play starts playback on the given device, either of an explicit
	// item list or of a context (playlist/album), per opts.
	Play(ctx context.Context, deviceID string, opts PlayOptions) error

	// Pause pauses playback on the given device.
	Pause(ctx context.Context, deviceID string) error

	// Next skips to the next track on the given device.
	Next(ctx context.Context, deviceID string) error

	// Previous skips to the previous track on the given device.
	Previous(ctx context.Context, deviceID string) error

	// Seek moves the playhead of the given device to positionMS.
	Seek(ctx context.Context, deviceID string, positionMS int) error

	// SetVolume sets the given device's volume to a percentage in [0,100].
	SetVolume(ctx context.Context, deviceID string, percent int) error

	// CurrentPlayback returns the account's playback state, or nil when
	// nothing is playing anywhere.
	CurrentPlayback(ctx context.Context) (*PlaybackSnapshot, error)
}

// Device represents one playback device visible to an account.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

// PlaybackItem is the track or episode currently loaded on a device.
type PlaybackItem struct {
	URI        string `json:"uri"`
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
}

// PlaybackSnapshot is a point-in-time view of an account's playback state.
type PlaybackSnapshot struct {
	IsPlaying  bool          `json:"is_playing"`
	ProgressMS int           `json:"progress_ms"`
	Item       *PlaybackItem `json:"item"`
	Device     Device        `json:"device"`
}

// PlayOptions selects what to start playing. Exactly one of URIs or
// ContextURI should be set.
type PlayOptions struct {
	URIs       []string `json:"uris,omitempty"`
	ContextURI string   `json:"context_uri,omitempty"`
}
