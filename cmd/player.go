package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/kidspot/internal/player"
	"github.com/desertthunder/kidspot/internal/shared"
	"github.com/urfave/cli/v3"
)

// selectSession builds the session pool and returns the default session.
func (r *Runner) selectSession(ctx context.Context, cmd *cli.Command) (*player.Session, error) {
	config := r.loadConfig(cmd)

	pool := r.buildPool(ctx, config, nil)
	session := pool.SelectActive()
	if session == nil {
		return nil, shared.ErrNoSession
	}
	if label := cmd.String("account"); label != "" {
		if session = pool.Get(label); session == nil {
			return nil, fmt.Errorf("%w: no account labelled %q", shared.ErrNoSession, label)
		}
	}
	return session, nil
}

// report prints the outcome of a playback intent and fails the command
// when the intent did not take effect.
func (r *Runner) report(ok bool, what string) error {
	if !ok {
		return fmt.Errorf("%s failed", what)
	}
	r.writePlainln("✓ %s", what)
	return nil
}

// PlayTarget starts playback of an explicit target.
func (r *Runner) PlayTarget(ctx context.Context, cmd *cli.Command) error {
	session, err := r.selectSession(ctx, cmd)
	if err != nil {
		return err
	}
	target := cmd.String("target")
	return r.report(session.Play(ctx, target), fmt.Sprintf("play %s", target))
}

// PausePlayback pauses the selected session's device.
func (r *Runner) PausePlayback(ctx context.Context, cmd *cli.Command) error {
	session, err := r.selectSession(ctx, cmd)
	if err != nil {
		return err
	}
	return r.report(session.Pause(ctx), "pause")
}

// NextTrack skips forward.
func (r *Runner) NextTrack(ctx context.Context, cmd *cli.Command) error {
	session, err := r.selectSession(ctx, cmd)
	if err != nil {
		return err
	}
	return r.report(session.SkipNext(ctx), "next track")
}

// PreviousTrack skips backward.
func (r *Runner) PreviousTrack(ctx context.Context, cmd *cli.Command) error {
	session, err := r.selectSession(ctx, cmd)
	if err != nil {
		return err
	}
	return r.report(session.SkipPrevious(ctx), "previous track")
}

// SeekStart restarts the current item from position zero.
func (r *Runner) SeekStart(ctx context.Context, cmd *cli.Command) error {
	session, err := r.selectSession(ctx, cmd)
	if err != nil {
		return err
	}
	return r.report(session.SeekToStart(ctx), "seek to start")
}

// SetVolume sets the device volume.
func (r *Runner) SetVolume(ctx context.Context, cmd *cli.Command) error {
	session, err := r.selectSession(ctx, cmd)
	if err != nil {
		return err
	}
	volume := cmd.Int("set")
	return r.report(session.SetVolume(ctx, volume), fmt.Sprintf("volume %d%%", player.Clamp(volume, 0, 100)))
}

func playerCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
	accountFlag := &cli.StringFlag{
		Name:  "account",
		Usage: "Account label (defaults to the selected account)",
	}

	return &cli.Command{
		Name:  "player",
		Usage: "Send playback intents directly (diagnostics)",
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "Play a Spotify URI or open.spotify.com URL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "target", Usage: "Playback target", Required: true},
					accountFlag, configFlag,
				},
				Action: r.PlayTarget,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Flags:  []cli.Flag{accountFlag, configFlag},
				Action: r.PausePlayback,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next track",
				Flags:  []cli.Flag{accountFlag, configFlag},
				Action: r.NextTrack,
			},
			{
				Name:   "prev",
				Usage:  "Skip to the previous track",
				Flags:  []cli.Flag{accountFlag, configFlag},
				Action: r.PreviousTrack,
			},
			{
				Name:   "seek-start",
				Usage:  "Restart the current item from position zero",
				Flags:  []cli.Flag{accountFlag, configFlag},
				Action: r.SeekStart,
			},
			{
				Name:  "volume",
				Usage: "Set the device volume",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "set", Usage: "Volume percent in [0,100]", Required: true},
					accountFlag, configFlag,
				},
				Action: r.SetVolume,
			},
		},
	}
}
