package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/kidspot/internal/services"
	"github.com/urfave/cli/v3"
)

// ListDevices lists the playback devices visible to each configured account.
func (r *Runner) ListDevices(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	type accountDevices struct {
		Account string            `json:"account"`
		Error   string            `json:"error,omitempty"`
		Devices []services.Device `json:"devices,omitempty"`
	}

	var results []accountDevices
	for _, account := range config.Accounts {
		if !account.Complete() {
			r.logger.Warn("skipping account (missing credentials)", "account", account.Label)
			continue
		}

		entry := accountDevices{Account: account.Label}

		tokens, err := services.NewTokenManager(services.TokenManagerOpts{
			Label:        account.Label,
			ClientID:     account.ClientID,
			ClientSecret: account.ClientSecret,
			RefreshToken: account.RefreshToken,
			HTTPClient:   r.httpClient,
		})
		if err != nil {
			entry.Error = err.Error()
			results = append(results, entry)
			continue
		}

		client, err := services.NewClient(services.ClientOpts{Tokens: tokens, HTTPClient: r.httpClient})
		if err != nil {
			entry.Error = err.Error()
			results = append(results, entry)
			continue
		}

		devices, err := client.Devices(ctx)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Devices = devices
		}
		results = append(results, entry)
	}

	if len(results) == 0 {
		return fmt.Errorf("no accounts configured with complete credentials")
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	for _, entry := range results {
		r.writePlainln("Account: %s", entry.Account)
		if entry.Error != "" {
			r.writePlain("  error: %s\n", entry.Error)
			continue
		}
		if len(entry.Devices) == 0 {
			r.writePlain("  no devices visible\n")
			continue
		}
		for _, device := range entry.Devices {
			marker := " "
			if device.IsActive {
				marker = "*"
			}
			r.writePlain("  %s %s (%s) volume %d%%\n", marker, device.Name, device.ID, device.VolumePercent)
		}
	}
	return nil
}

func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List playback devices visible to each account",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.ListDevices,
	}
}
