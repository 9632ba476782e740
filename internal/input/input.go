// package input translates raw hardware signals into playback intents.
//
// Two dispatchers poll independently from process start until their
// context is cancelled: one for the RFID reader, one for the buttons.
// Neither lets a remote-call failure escape its loop.
package input

import (
	"context"
	"time"

	"github.com/desertthunder/kidspot/internal/models"
	"github.com/desertthunder/kidspot/internal/services"
)

// Player is the slice of an account session the dispatchers drive.
// Implemented by *player.Session.
type Player interface {
	Play(ctx context.Context, target string) bool
	Pause(ctx context.Context) bool
	SkipNext(ctx context.Context) bool
	SkipPrevious(ctx context.Context) bool
	SetVolume(ctx context.Context, percent int) bool
	CurrentPlayback(ctx context.Context) *services.PlaybackSnapshot
	LastTarget() string
}

// TagStore resolves canonical tag UIDs to their registered mapping.
// Implemented by *repositories.TagRepository.
type TagStore interface {
	GetByUID(uid string) (*models.Tag, error)
}

// Notifier signals input-level failures to the user.
type Notifier interface {
	SignalError()
}

// sleep waits for d or until ctx is cancelled; false means cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
