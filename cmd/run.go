package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/desertthunder/kidspot/internal/feedback"
	"github.com/desertthunder/kidspot/internal/hardware"
	"github.com/desertthunder/kidspot/internal/input"
	"github.com/desertthunder/kidspot/internal/repositories"
	"github.com/urfave/cli/v3"
)

// shutdownGrace bounds how long shutdown waits for the polling loops to
// finish their current iteration.
const shutdownGrace = 5 * time.Second

// Run wires the appliance together and blocks until an interrupt or
// termination signal triggers the shutdown sequence.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	driver, err := hardware.Open(config.Hardware.Driver)
	if err != nil {
		return fmt.Errorf("failed to open hardware: %w", err)
	}

	panel := feedback.NewPanel(driver, config.Hardware.LEDs, r.logger)
	defer panel.Shutdown()

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()
	tags := repositories.NewTagRepository(db)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := r.buildPool(ctx, config, panel)
	session := pool.SelectActive()
	if session == nil {
		r.logger.Error("no usable account session; inputs disabled")
	} else {
		r.logger.Info("selected playback account", "account", session.Label(), "active", session.Active())
	}

	panel.SelfTest(time.Second)

	var wg sync.WaitGroup
	if session != nil {
		rfid := input.NewRFIDDispatcher(input.RFIDDispatcherOpts{
			Reader:       driver,
			Tags:         tags,
			Session:      session,
			Notifier:     panel,
			Logger:       r.logger,
			PollInterval: config.Input.RFIDPoll(),
			ReadTimeout:  config.Input.RFIDTimeout(),
		})

		buttons, err := input.ButtonsFromConfig(config.Hardware.Buttons)
		if err != nil {
			return err
		}
		buttonDispatcher := input.NewButtonDispatcher(input.ButtonDispatcherOpts{
			Reader:          driver,
			Session:         session,
			Logger:          r.logger,
			Buttons:         buttons,
			ScanPeriod:      config.Input.ScanPeriod(),
			Debounce:        config.Input.Debounce(),
			DoubleTapWindow: config.Input.DoubleTapWindow(),
			DefaultVolume:   config.Player.DefaultVolume,
			VolumeStep:      config.Player.VolumeStep,
		})

		wg.Add(2)
		go func() {
			defer wg.Done()
			rfid.Run(ctx)
		}()
		go func() {
			defer wg.Done()
			buttonDispatcher.Run(ctx)
		}()
	}

	r.logger.Info("kidspot running, waiting for events")
	<-ctx.Done()
	stop()
	r.logger.Info("shutting down")

	// Polling loops observe cancellation at the top of each iteration;
	// a pending remote call is allowed to finish or time out on its own.
	waitBounded(&wg, shutdownGrace, r)

	panel.Shutdown()
	return nil
}

// waitBounded waits for the polling loops up to the grace period.
func waitBounded(wg *sync.WaitGroup, grace time.Duration, r *Runner) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		r.logger.Warn("polling loops did not stop within grace period")
	}
}

func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Start the jukebox and wait for tag swipes and button presses",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Run,
	}
}
