package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/kidspot/internal/hardware"
	"github.com/desertthunder/kidspot/internal/models"
	"github.com/desertthunder/kidspot/internal/player"
	"github.com/desertthunder/kidspot/internal/repositories"
	"github.com/desertthunder/kidspot/internal/shared"
	"github.com/urfave/cli/v3"
)

// swipeWait bounds how long tag registration waits for a swipe.
const swipeWait = 30 * time.Second

// RegisterTag maps a tag UID to a playback target. With no --uid the
// command waits for a physical swipe.
func (r *Runner) RegisterTag(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	target := cmd.String("target")

	if !player.ValidTarget(target) {
		return fmt.Errorf("%w: %s", shared.ErrInvalidTarget, target)
	}

	uid := models.NormalizeUID(cmd.String("uid"))
	if uid == "" {
		r.writePlain("Hold a tag against the reader...\n")
		swiped, err := r.waitForSwipe(ctx, config.Hardware.Driver, config.Input.RFIDTimeout())
		if err != nil {
			return err
		}
		uid = swiped
		r.writePlain("Tag detected: %s\n", uid)
	}

	metadata := map[string]string{}
	for _, kv := range cmd.StringSlice("meta") {
		key, value, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return fmt.Errorf("%w: --meta expects key=value, got %q", shared.ErrInvalidArgument, kv)
		}
		metadata[key] = value
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()
	tags := repositories.NewTagRepository(db)

	if existing, err := tags.GetByUID(uid); err == nil {
		if !cmd.Bool("update") {
			return fmt.Errorf("%w: %s plays %s (use --update to replace)", shared.ErrTagExists, uid, existing.TargetURI())
		}
		existing.SetTargetURI(target)
		existing.SetMetadata(metadata)
		if err := tags.Update(existing); err != nil {
			return fmt.Errorf("failed to update tag: %w", err)
		}
		r.writePlainln("✓ Tag %s updated → %s", uid, target)
		return nil
	}

	tag := models.NewTag(uid, target, metadata)
	if err := tags.Create(tag); err != nil {
		return fmt.Errorf("failed to register tag: %w", err)
	}

	r.logger.Info("tag registered", "uid", uid, "target", target)
	r.writePlainln("✓ Tag %s registered → %s", uid, target)
	return nil
}

// waitForSwipe polls the tag reader until a tag appears or the wait expires.
func (r *Runner) waitForSwipe(ctx context.Context, driverName string, readTimeout time.Duration) (string, error) {
	driver, err := hardware.Open(driverName)
	if err != nil {
		return "", fmt.Errorf("failed to open hardware: %w", err)
	}
	defer driver.Close()

	deadline := time.Now().Add(swipeWait)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		raw, err := driver.ReadTag(ctx, readTimeout)
		if err != nil {
			return "", fmt.Errorf("tag read failed: %w", err)
		}
		if len(raw) > 0 {
			return models.NormalizeUID(hex.EncodeToString(raw)), nil
		}
	}

	return "", fmt.Errorf("%w: no tag swiped", shared.ErrTimeout)
}

// ListTags prints every registered tag mapping.
func (r *Runner) ListTags(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	tags, err := repositories.NewTagRepository(db).List(nil)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}

	if cmd.Bool("json") {
		type tagRow struct {
			UID      string            `json:"uid"`
			Target   string            `json:"target"`
			Metadata map[string]string `json:"metadata,omitempty"`
		}
		rows := make([]tagRow, 0, len(tags))
		for _, tag := range tags {
			rows = append(rows, tagRow{UID: tag.UID(), Target: tag.TargetURI(), Metadata: tag.Metadata()})
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(tags) == 0 {
		r.writePlain("No tags registered. Use 'kidspot tags register' to add one.\n")
		return nil
	}

	for _, tag := range tags {
		r.writePlain("%s  %s  (%s)\n", tag.UID(), tag.TargetURI(), tag.Display())
	}
	return nil
}

// RemoveTag soft-deletes a tag mapping by UID.
func (r *Runner) RemoveTag(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	uid := models.NormalizeUID(cmd.String("uid"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewTagRepository(db).DeleteByUID(uid); err != nil {
		return fmt.Errorf("failed to remove tag: %w", err)
	}

	r.writePlainln("✓ Tag %s removed", uid)
	return nil
}

func tagsCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}

	return &cli.Command{
		Name:  "tags",
		Usage: "Manage the tag-to-media mapping",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Map a tag to a playback target (waits for a swipe without --uid)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "uid",
						Usage: "Tag UID in hex (omit to swipe)",
					},
					&cli.StringFlag{
						Name:     "target",
						Usage:    "Spotify URI or open.spotify.com URL to play",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Display metadata as key=value (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "update",
						Usage: "Replace the mapping if the tag is already registered",
					},
					configFlag,
				},
				Action: r.RegisterTag,
			},
			{
				Name:  "list",
				Usage: "List registered tags",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
					configFlag,
				},
				Action: r.ListTags,
			},
			{
				Name:  "remove",
				Usage: "Remove a registered tag",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "uid",
						Usage:    "Tag UID in hex",
						Required: true,
					},
					configFlag,
				},
				Action: r.RemoveTag,
			},
		},
	}
}
