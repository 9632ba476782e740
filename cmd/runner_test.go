package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/desertthunder/kidspot/internal/shared"
	mocks "github.com/desertthunder/kidspot/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if runner.config == nil || runner.logger == nil || runner.output == nil || runner.httpClient == nil {
			t.Error("expected all dependencies defaulted")
		}
		if runner.config.Player.DeviceName != "Kidspot" {
			t.Errorf("expected default config, got device %s", runner.config.Player.DeviceName)
		}
	})

	t.Run("Register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 5 {
			t.Fatalf("expected 5 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for _, command := range commands {
			names[command.Name] = true
		}
		for _, name := range []string{"run", "setup", "tags", "devices", "player"} {
			if !names[name] {
				t.Errorf("expected %s command registered", name)
			}
		}
	})
}

func TestOutputHelpers(t *testing.T) {
	t.Run("WriteJSON", func(t *testing.T) {
		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})

		if err := runner.writeJSON(map[string]string{"uid": "04A1FF"}, false); err != nil {
			t.Fatalf("failed to write json: %v", err)
		}
		if got := buf.String(); got != "{\"uid\":\"04A1FF\"}\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("WriteJSON Pretty", func(t *testing.T) {
		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})

		if err := runner.writeJSON(map[string]string{"uid": "04A1FF"}, true); err != nil {
			t.Fatalf("failed to write json: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"uid\"") {
			t.Errorf("expected indented output, got %q", buf.String())
		}
	})

	t.Run("WritePlain", func(t *testing.T) {
		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})

		if err := runner.writePlain("volume %d", 45); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if buf.String() != "volume 45" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("Failed Writer", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &mocks.FWriter{}})

		if err := runner.writeJSON(map[string]string{}, false); err == nil {
			t.Error("expected error from failing writer")
		}
		if err := runner.writePlain("x"); err == nil {
			t.Error("expected error from failing writer")
		}
		if err := runner.writePlainln("x"); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}

func TestBuildPool(t *testing.T) {
	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

	config := shared.DefaultConfig()
	config.Accounts = []shared.AccountConfig{
		{Label: "incomplete", ClientID: "id"},
	}

	pool := runner.buildPool(context.Background(), config, nil)
	if pool.Len() != 0 {
		t.Errorf("expected incomplete account skipped, got %d sessions", pool.Len())
	}
}
