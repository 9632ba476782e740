package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Player   PlayerConfig    `toml:"player"`
	Accounts []AccountConfig `toml:"accounts"`
	Database DatabaseConfig  `toml:"database"`
	Hardware HardwareConfig  `toml:"hardware"`
	Input    InputConfig     `toml:"input"`
}

// PlayerConfig contains playback target settings shared by all accounts.
type PlayerConfig struct {
	DeviceName    string `toml:"device_name"`
	DefaultVolume int    `toml:"default_volume"`
	VolumeStep    int    `toml:"volume_step"`
}

// AccountConfig contains the per-account Spotify credentials.
//
// Accounts are tried in configuration order, which the session pool
// preserves when selecting the default playback target.
type AccountConfig struct {
	Label        string `toml:"label"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
}

// Complete reports whether every credential required to authenticate the account is present.
func (a AccountConfig) Complete() bool {
	return a.Label != "" && a.ClientID != "" && a.ClientSecret != "" && a.RefreshToken != ""
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// HardwareConfig names the pin assignments for buttons and indicator LEDs.
type HardwareConfig struct {
	Driver  string         `toml:"driver"`
	Buttons map[string]int `toml:"buttons"`
	LEDs    map[string]int `toml:"leds"`
}

// InputConfig contains the polling and debounce timings for the input dispatchers, in milliseconds.
type InputConfig struct {
	ScanPeriodMS      int `toml:"scan_period_ms"`
	DebounceMS        int `toml:"debounce_ms"`
	DoubleTapWindowMS int `toml:"double_tap_window_ms"`
	RFIDPollMS        int `toml:"rfid_poll_ms"`
	RFIDTimeoutMS     int `toml:"rfid_timeout_ms"`
}

func (i InputConfig) ScanPeriod() time.Duration      { return time.Duration(i.ScanPeriodMS) * time.Millisecond }
func (i InputConfig) Debounce() time.Duration        { return time.Duration(i.DebounceMS) * time.Millisecond }
func (i InputConfig) DoubleTapWindow() time.Duration { return time.Duration(i.DoubleTapWindowMS) * time.Millisecond }
func (i InputConfig) RFIDPoll() time.Duration        { return time.Duration(i.RFIDPollMS) * time.Millisecond }
func (i InputConfig) RFIDTimeout() time.Duration     { return time.Duration(i.RFIDTimeoutMS) * time.Millisecond }

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
