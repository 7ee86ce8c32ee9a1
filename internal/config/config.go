// Package config loads askvault's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// HomeEnv overrides the askvault home directory.
const HomeEnv = "ASKVAULT_HOME"

// Config is the full configuration file.
type Config struct {
	Data   DataConfig   `toml:"data"`
	Log    LogConfig    `toml:"log"`
	Engine EngineConfig `toml:"engine"`

	// HomeDir is the directory the config was resolved against. Not read
	// from the file.
	HomeDir string `toml:"-"`
}

// DataConfig locates the record store.
type DataConfig struct {
	Dir          string `toml:"dir" validate:"required"`
	MessagesFile string `toml:"messages_file" validate:"required"`
	EventsFile   string `toml:"events_file" validate:"required"`
	MetadataFile string `toml:"metadata_file"`
	SQLitePath   string `toml:"sqlite_path"`
}

// LogConfig controls process logging and the query log.
type LogConfig struct {
	Level    string `toml:"level" validate:"oneof=debug info warn error"`
	Format   string `toml:"format" validate:"oneof=text json"`
	QueryLog string `toml:"query_log"`
}

// EngineConfig tunes query resolution.
type EngineConfig struct {
	// ReferenceTime pins "now" (RFC 3339) for reproducible relative dates.
	ReferenceTime string `toml:"reference_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// DefaultHome returns the askvault home: $ASKVAULT_HOME, else ~/.askvault.
func DefaultHome() (string, error) {
	if h := os.Getenv(HomeEnv); h != "" {
		return expandPath(h)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".askvault"), nil
}

// Default returns the configuration used when no file exists.
func Default(homeDir string) *Config {
	return &Config{
		HomeDir: homeDir,
		Data: DataConfig{
			Dir:          filepath.Join(homeDir, "data"),
			MessagesFile: "emails.json",
			EventsFile:   "calendar_events.json",
			MetadataFile: "metadata.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path. An empty path means
// <homeDir>/config.toml, and a missing default file yields Default. An
// explicitly named file must exist.
func Load(path, homeDir string) (*Config, error) {
	if homeDir == "" {
		h, err := DefaultHome()
		if err != nil {
			return nil, err
		}
		homeDir = h
	}
	cfg := Default(homeDir)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(homeDir, "config.toml")
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func (c *Config) resolvePaths() error {
	var err error
	if c.Data.Dir, err = expandPath(c.Data.Dir); err != nil {
		return err
	}
	if c.Data.SQLitePath != "" {
		if c.Data.SQLitePath, err = expandPath(c.Data.SQLitePath); err != nil {
			return err
		}
	}
	if c.Log.QueryLog != "" {
		if c.Log.QueryLog, err = expandPath(c.Log.QueryLog); err != nil {
			return err
		}
	}
	return nil
}

// MessagesPath is the absolute path of the messages file.
func (c *Config) MessagesPath() string { return filepath.Join(c.Data.Dir, c.Data.MessagesFile) }

// EventsPath is the absolute path of the events file.
func (c *Config) EventsPath() string { return filepath.Join(c.Data.Dir, c.Data.EventsFile) }

// MetadataPath is the absolute path of the metadata file, or "" when
// metadata is disabled.
func (c *Config) MetadataPath() string {
	if c.Data.MetadataFile == "" {
		return ""
	}
	return filepath.Join(c.Data.Dir, c.Data.MetadataFile)
}

// Now returns the engine clock: fixed at ReferenceTime when set, else
// time.Now.
func (c *Config) Now() (func() time.Time, error) {
	if c.Engine.ReferenceTime == "" {
		return time.Now, nil
	}
	t, err := time.Parse(time.RFC3339, c.Engine.ReferenceTime)
	if err != nil {
		return nil, fmt.Errorf("parse reference_time: %w", err)
	}
	return func() time.Time { return t }, nil
}

func expandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", p, err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p, nil
}
