// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that take precedence over file values.
const (
	EnvManifestURL  = "TUNEBOX_MANIFEST_URL"
	EnvManifestPath = "TUNEBOX_MANIFEST_PATH"
	EnvLogLevel     = "TUNEBOX_LOG_LEVEL"
	EnvAudioBackend = "TUNEBOX_AUDIO_BACKEND"
)

// Audio backends.
const (
	BackendBeep = "beep"
	BackendMock = "mock"
)

// Config represents the application configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Manifest ManifestConfig `yaml:"manifest"`
	Player   PlayerConfig   `yaml:"player"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

// AppConfig identifies the desktop application.
type AppConfig struct {
	ID   string `yaml:"id" default:"com.tunebox.app" validate:"required"`
	Name string `yaml:"name" default:"TuneBox" validate:"required"`
}

// ManifestConfig locates the bundled track manifest and its audio files.
// URL wins over Root+Path when both are set.
type ManifestConfig struct {
	URL     string        `yaml:"url" validate:"omitempty,url"`
	Root    string        `yaml:"root" default:"."`
	Path    string        `yaml:"path" default:"/music/music-data.json" validate:"required"`
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
}

// PlayerConfig tunes playback.
type PlayerConfig struct {
	Backend               string        `yaml:"backend" default:"beep" validate:"oneof=beep mock"`
	InitialVolume         *float64      `yaml:"initial_volume" default:"1" validate:"required,gte=0,lte=1"`
	ReconcileRejectedPlay bool          `yaml:"reconcile_rejected_play"`
	SampleRate            int           `yaml:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferDuration        time.Duration `yaml:"buffer_duration" default:"100ms" validate:"gt=0"`
	TickInterval          time.Duration `yaml:"tick_interval" default:"250ms" validate:"gt=0"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Format     string `yaml:"format" default:"text" validate:"oneof=text json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" default:"10" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" default:"3" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" default:"28" validate:"gte=0"`
}

// ServerConfig represents the static host configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080" validate:"required"`
}

// Default returns a configuration built from defaults and the environment only.
func Default() (*Config, error) {
	return build(&Config{})
}

// Load loads configuration from a YAML file.
// A .env file in the working directory is loaded first if present; variables
// already set in the environment are not overwritten.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	return build(&cfg)
}

func build(cfg *Config) (*Config, error) {
	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv(EnvManifestURL); v != "" {
		c.Manifest.URL = v
	}
	if v := os.Getenv(EnvManifestPath); v != "" {
		c.Manifest.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvAudioBackend); v != "" {
		c.Player.Backend = strings.ToLower(v)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// Volume returns the configured startup volume.
func (p PlayerConfig) Volume() float64 {
	if p.InitialVolume == nil {
		return 1
	}
	return *p.InitialVolume
}

// UseMockAudio reports whether the in-memory media player is selected.
func (c *Config) UseMockAudio() bool {
	return c.Player.Backend == BackendMock
}
