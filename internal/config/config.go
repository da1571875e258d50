package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	EnvConfigFile = "MXSHELL_CONFIG"
	EnvLogLevel   = "MXSHELL_LOG_LEVEL"

	DefaultConfigFile     = "config.yml"
	DefaultPrompt         = "<%s>: "
	DefaultMaxHistory     = 1000
	DefaultMaxJobs        = 100
	DefaultCaptureTimeout = 2 * time.Second
)

type Config struct {
	HistoryFile    string        `yaml:"history_file"`
	HomeDir        string        `yaml:"home_dir"`
	MaxHistory     int           `yaml:"max_history"`
	MaxJobs        int           `yaml:"max_jobs"`
	Prompt         string        `yaml:"prompt"`
	Banner         *bool         `yaml:"banner"`
	LogLevel       string        `yaml:"log_level"`
	CaptureTimeout time.Duration `yaml:"capture_timeout"`
}

// LoadEnv applies an optional .env file from the working directory. Variables
// already set in the environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

// File returns the config path to use when none is given on the command line.
func File() string {
	if f := os.Getenv(EnvConfigFile); f != "" {
		return f
	}
	return DefaultConfigFile
}

// Load reads file and fills in defaults. A missing file yields the defaults.
func Load(file string) (*Config, error) {
	cfg := &Config{CaptureTimeout: -1}
	data, err := os.ReadFile(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() error {
	var err error
	if c.HomeDir == "" {
		c.HomeDir, err = os.UserHomeDir()
		if err != nil {
			return err
		}
	}

	if c.HistoryFile == "" {
		c.HistoryFile = filepath.Join(c.HomeDir, ".mxshell_history")
	}
	if c.MaxHistory <= 0 {
		c.MaxHistory = DefaultMaxHistory
	}
	if c.MaxJobs <= 0 {
		c.MaxJobs = DefaultMaxJobs
	}
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.Banner == nil {
		on := true
		c.Banner = &on
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		c.LogLevel = lvl
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	// unset is -1 so that an explicit 0 can mean "no timeout"
	if c.CaptureTimeout < 0 {
		c.CaptureTimeout = DefaultCaptureTimeout
	}
	return nil
}

// ShowBanner reports whether the welcome banner is printed.
func (c *Config) ShowBanner() bool {
	return c.Banner == nil || *c.Banner
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelWarn, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// NewLogger builds the diagnostic logger. Diagnostics go to stderr so they
// never mix with job output.
func (c *Config) NewLogger() (*slog.Logger, error) {
	lvl, err := c.Level()
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), err
}
