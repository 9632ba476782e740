package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kidspot/internal/player"
	"github.com/desertthunder/kidspot/internal/services"
	"github.com/desertthunder/kidspot/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, setupCommand, tagsCommand, devicesCommand, playerCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the effective config for a command: an explicit
// --config path wins, then the config the runner was created with.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if config, err := shared.LoadConfig(configPath); err == nil {
				return config
			} else {
				r.logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
			}
		}
	}
	if r.config != nil {
		return r.config
	}
	return shared.DefaultConfig()
}

// openDatabase opens the configured sqlite database.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	return db, nil
}

// buildPool creates and initializes one session per configured account,
// in configuration order. Accounts with missing credentials are skipped
// with a warning; auth failures leave the session in the pool as failed.
func (r *Runner) buildPool(ctx context.Context, config *shared.Config, fb player.Feedback) *player.Pool {
	pool := player.NewPool()

	for _, account := range config.Accounts {
		if !account.Complete() {
			r.logger.Warn("skipping account (missing credentials)", "account", account.Label)
			continue
		}

		tokens, err := services.NewTokenManager(services.TokenManagerOpts{
			Label:        account.Label,
			ClientID:     account.ClientID,
			ClientSecret: account.ClientSecret,
			RefreshToken: account.RefreshToken,
			HTTPClient:   r.httpClient,
		})
		if err != nil {
			r.logger.Warn("skipping account", "account", account.Label, "error", err)
			continue
		}

		client, err := services.NewClient(services.ClientOpts{
			Tokens:     tokens,
			HTTPClient: r.httpClient,
		})
		if err != nil {
			r.logger.Warn("skipping account", "account", account.Label, "error", err)
			continue
		}

		session := player.NewSession(player.SessionOpts{
			Label:      account.Label,
			DeviceName: config.Player.DeviceName,
			API:        client,
			Logger:     r.logger,
			Feedback:   fb,
		})

		if err := session.Initialize(ctx); err != nil {
			r.logger.Warn("failed to initialize account", "account", account.Label, "error", err)
		}

		pool.Add(session)
	}

	return pool
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
