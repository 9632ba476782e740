package input

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kidspot/internal/hardware"
	"github.com/desertthunder/kidspot/internal/player"
	"github.com/desertthunder/kidspot/internal/services"
	"github.com/desertthunder/kidspot/internal/shared"
)

// Action is the playback intent a button maps to.
type Action int

const (
	ActionPlayPause Action = iota
	ActionNext
	ActionPrevRestart
	ActionVolumeUp
	ActionVolumeDown
)

func (a Action) String() string {
	switch a {
	case ActionPlayPause:
		return "play/pause"
	case ActionNext:
		return "next"
	case ActionPrevRestart:
		return "prev/restart"
	case ActionVolumeUp:
		return "volume up"
	case ActionVolumeDown:
		return "volume down"
	default:
		return "unknown"
	}
}

// Button binds a physical pin to its action.
type Button struct {
	Name   string
	Pin    int
	Action Action
}

// actionsByName is the fixed set of configurable button names.
var actionsByName = map[string]Action{
	"play":        ActionPlayPause,
	"next":        ActionNext,
	"prev":        ActionPrevRestart,
	"volume_up":   ActionVolumeUp,
	"volume_down": ActionVolumeDown,
}

// ButtonsFromConfig resolves the configured name→pin map into buttons,
// in a stable order. Unknown button names are an error.
func ButtonsFromConfig(pins map[string]int) ([]Button, error) {
	order := []string{"play", "next", "prev", "volume_up", "volume_down"}

	var buttons []Button
	for name := range pins {
		if _, ok := actionsByName[name]; !ok {
			return nil, fmt.Errorf("%w: unknown button %q", shared.ErrInvalidConfig, name)
		}
	}
	for _, name := range order {
		pin, ok := pins[name]
		if !ok {
			continue
		}
		buttons = append(buttons, Button{Name: name, Pin: pin, Action: actionsByName[name]})
	}
	return buttons, nil
}

const (
	defaultScanPeriod      = 50 * time.Millisecond
	defaultDebounce        = 300 * time.Millisecond
	defaultDoubleTapWindow = 500 * time.Millisecond
	defaultVolume          = 50
	defaultVolumeStep      = 5
)

// ButtonDispatcher polls the configured buttons and dispatches their
// actions against one account session.
//
// The debounce is coarse: after any press the whole scan sleeps, so at
// most one button action fires per debounce window across all buttons.
// A person cannot hit two buttons inside 300ms in normal use; this is a
// known limitation carried over from the appliance's observed behavior.
type ButtonDispatcher struct {
	reader  hardware.PinReader
	session Player
	logger  *log.Logger

	buttons       []Button
	scanPeriod    time.Duration
	debounce      time.Duration
	defaultVolume int
	volumeStep    int

	gesture *DoubleTap
}

// ButtonDispatcherOpts contains construction options for a ButtonDispatcher.
type ButtonDispatcherOpts struct {
	Reader          hardware.PinReader
	Session         Player
	Logger          *log.Logger
	Buttons         []Button
	ScanPeriod      time.Duration
	Debounce        time.Duration
	DoubleTapWindow time.Duration
	DefaultVolume   int
	VolumeStep      int
}

// NewButtonDispatcher creates a dispatcher with defaulted timings.
func NewButtonDispatcher(opts ButtonDispatcherOpts) *ButtonDispatcher {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.ScanPeriod <= 0 {
		opts.ScanPeriod = defaultScanPeriod
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.DoubleTapWindow <= 0 {
		opts.DoubleTapWindow = defaultDoubleTapWindow
	}
	if opts.DefaultVolume <= 0 {
		opts.DefaultVolume = defaultVolume
	}
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = defaultVolumeStep
	}

	return &ButtonDispatcher{
		reader:        opts.Reader,
		session:       opts.Session,
		logger:        shared.WithLogger(opts.Logger, "component", "buttons"),
		buttons:       opts.Buttons,
		scanPeriod:    opts.ScanPeriod,
		debounce:      opts.Debounce,
		defaultVolume: opts.DefaultVolume,
		volumeStep:    opts.VolumeStep,
		gesture:       NewDoubleTap(opts.DoubleTapWindow),
	}
}

// Run polls until ctx is cancelled. Buttons are active-low.
func (d *ButtonDispatcher) Run(ctx context.Context) {
	d.logger.Info("button listener started")
	defer d.logger.Info("button listener stopped")

	for {
		if ctx.Err() != nil {
			return
		}

		for _, button := range d.buttons {
			level, err := d.reader.ReadPin(button.Pin)
			if err != nil {
				d.logger.Debug("pin read failed", "button", button.Name, "err", err)
				continue
			}
			if level != hardware.Low {
				continue
			}

			d.dispatch(ctx, button)
			if !sleep(ctx, d.debounce) {
				return
			}
		}

		if !sleep(ctx, d.scanPeriod) {
			return
		}
	}
}

// dispatch runs one button action. Session methods already swallow
// remote failures, so nothing here can take the loop down.
func (d *ButtonDispatcher) dispatch(ctx context.Context, button Button) {
	d.logger.Debug("button pressed", "button", button.Name, "action", button.Action)

	switch button.Action {
	case ActionPlayPause:
		d.togglePlay(ctx)
	case ActionNext:
		d.session.SkipNext(ctx)
	case ActionPrevRestart:
		d.prevOrRestart(ctx)
	case ActionVolumeUp:
		d.stepVolume(ctx, d.volumeStep)
	case ActionVolumeDown:
		d.stepVolume(ctx, -d.volumeStep)
	}
}

// togglePlay pauses when playing, otherwise resumes the last known item.
func (d *ButtonDispatcher) togglePlay(ctx context.Context) {
	snapshot := d.session.CurrentPlayback(ctx)
	if snapshot != nil && snapshot.IsPlaying {
		d.session.Pause(ctx)
		return
	}

	if target := d.currentItem(snapshot); target != "" {
		d.session.Play(ctx, target)
	} else {
		d.logger.Info("play pressed but nothing to play")
	}
}

// prevOrRestart resolves the double-press gesture: a lone press restarts
// the current track, a second press within the window skips back.
func (d *ButtonDispatcher) prevOrRestart(ctx context.Context) {
	if d.gesture.Observe(time.Now()) == GesturePrevious {
		d.session.SkipPrevious(ctx)
		return
	}

	if target := d.currentItem(d.session.CurrentPlayback(ctx)); target != "" {
		d.logger.Info("restarting current track")
		d.session.Play(ctx, target)
	}
}

// stepVolume applies a volume delta to the device's current volume,
// assuming the default when playback state or the reporting device is
// unknown. The session clamps to [0,100].
func (d *ButtonDispatcher) stepVolume(ctx context.Context, delta int) {
	volume := d.defaultVolume
	if snapshot := d.session.CurrentPlayback(ctx); snapshot != nil && snapshot.Device.ID != "" {
		volume = snapshot.Device.VolumePercent
	}

	target := player.Clamp(volume+delta, 0, 100)
	if d.session.SetVolume(ctx, target) {
		d.logger.Info("volume changed", "volume", target)
	}
}

// currentItem picks the playable reference for a toggle or restart: the
// snapshot's item when known, else the session's last played target.
func (d *ButtonDispatcher) currentItem(snapshot *services.PlaybackSnapshot) string {
	if snapshot != nil && snapshot.Item != nil {
		return snapshot.Item.URI
	}
	return d.session.LastTarget()
}
