package input

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kidspot/internal/hardware"
	"github.com/desertthunder/kidspot/internal/models"
	"github.com/desertthunder/kidspot/internal/shared"
)

const (
	defaultRFIDPoll    = 100 * time.Millisecond
	defaultRFIDTimeout = 500 * time.Millisecond
)

// RFIDDispatcher polls the tag reader and plays the media a swiped tag
// maps to.
//
// A tag read already blocks until a tag is present or the timeout
// elapses, so no extra debounce is needed. Unknown tags signal the
// error indicator and the loop continues; nothing here is fatal.
type RFIDDispatcher struct {
	reader   hardware.TagReader
	tags     TagStore
	session  Player
	notifier Notifier
	logger   *log.Logger

	pollInterval time.Duration
	readTimeout  time.Duration
}

// RFIDDispatcherOpts contains construction options for an RFIDDispatcher.
type RFIDDispatcherOpts struct {
	Reader       hardware.TagReader
	Tags         TagStore
	Session      Player
	Notifier     Notifier
	Logger       *log.Logger
	PollInterval time.Duration
	ReadTimeout  time.Duration
}

// NewRFIDDispatcher creates a dispatcher with defaulted timings.
func NewRFIDDispatcher(opts RFIDDispatcherOpts) *RFIDDispatcher {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultRFIDPoll
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultRFIDTimeout
	}

	return &RFIDDispatcher{
		reader:       opts.Reader,
		tags:         opts.Tags,
		session:      opts.Session,
		notifier:     opts.Notifier,
		logger:       shared.WithLogger(opts.Logger, "component", "rfid"),
		pollInterval: opts.PollInterval,
		readTimeout:  opts.ReadTimeout,
	}
}

// Run polls until ctx is cancelled.
func (d *RFIDDispatcher) Run(ctx context.Context) {
	d.logger.Info("rfid listener started")
	defer d.logger.Info("rfid listener stopped")

	for {
		if ctx.Err() != nil {
			return
		}

		uid, err := d.reader.ReadTag(ctx, d.readTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Debug("tag read failed", "err", err)
		} else if len(uid) > 0 {
			d.handleTag(ctx, uid)
		}

		if !sleep(ctx, d.pollInterval) {
			return
		}
	}
}

// handleTag resolves a raw tag identifier and starts playback.
func (d *RFIDDispatcher) handleTag(ctx context.Context, raw []byte) {
	uid := models.NormalizeUID(hex.EncodeToString(raw))

	tag, err := d.tags.GetByUID(uid)
	if err != nil {
		d.logger.Warn("unknown card", "uid", uid, "err", err)
		d.signalError()
		return
	}

	if d.session == nil {
		d.logger.Warn("no session available for playback", "uid", uid)
		d.signalError()
		return
	}

	if d.session.Play(ctx, tag.TargetURI()) {
		d.logger.Info("playing", "uid", uid, "media", tag.Display())
	}
}

func (d *RFIDDispatcher) signalError() {
	if d.notifier != nil {
		d.notifier.SignalError()
	}
}
