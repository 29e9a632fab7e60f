package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	golobby "github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"

	"github.com/hackadoodle/smalltv/models"
)

// DefaultPath is where the app keeps its persisted configuration.
const DefaultPath = "hackadoodle.json"

// Config is everything the app persists between runs: which device to talk
// to, how to display, and the configured source list. Values are fed from
// hackadoodle.json first, then overridden by environment variables.
type Config struct {
	DeviceIP   string `json:"device_ip" env:"DEVICE_IP"`
	DevicePort int    `json:"device_port" env:"DEVICE_PORT"`
	Brightness int    `json:"brightness" env:"BRIGHTNESS"`
	// Interval is the slideshow interval in seconds.
	Interval int `json:"interval" env:"SLIDE_INTERVAL"`
	// Theme is the photo album theme number (3 on SmallTV Ultra V9; other
	// firmware revisions renumber themes).
	Theme int `json:"theme" env:"PHOTO_ALBUM_THEME"`

	Sources []models.SourceConfig `json:"sources"`
	// TileOrder holds indices into Sources, defining slideshow order.
	TileOrder []int `json:"tile_order"`

	HTTPAddr     string `json:"http_addr" env:"HTTP_ADDR"`
	LogLevel     string `json:"log_level" env:"LOG_LEVEL"`
	FontsDir     string `json:"fonts_dir" env:"FONTS_DIR"`
	TemplatesDir string `json:"templates_dir" env:"TEMPLATES_DIR"`
	DBPath       string `json:"db_path" env:"DB_PATH"`

	// RefreshSeconds is how often network sources re-fetch;
	// PushSeconds how often a changed slideshow is pushed to the device.
	RefreshSeconds int `json:"refresh_seconds" env:"REFRESH_SECONDS"`
	PushSeconds    int `json:"push_seconds" env:"PUSH_SECONDS"`

	// Secrets come from the environment only and never land in the saved
	// config file.
	PushoverToken     string `json:"-" env:"PUSHOVER_TOKEN"`
	PushoverRecipient string `json:"-" env:"PUSHOVER_RECIPIENT"`
	WebhookSecret     string `json:"-" env:"WEBHOOK_SECRET"`
}

func defaults() Config {
	return Config{
		DeviceIP:       "10.0.0.195",
		DevicePort:     80,
		Brightness:     80,
		Interval:       10,
		Theme:          3,
		HTTPAddr:       ":8080",
		LogLevel:       "info",
		FontsDir:       "fonts",
		TemplatesDir:   "templates",
		DBPath:         "hackadoodle.db",
		RefreshSeconds: 300,
		PushSeconds:    60,
	}
}

// Load reads configuration from path (if it exists) and the environment.
func Load(path string) (*Config, error) {
	cfg := defaults()

	c := golobby.New()
	if _, err := os.Stat(path); err == nil {
		c.AddFeeder(feeder.Json{Path: path})
	}
	c.AddFeeder(feeder.Env{})
	c.AddStruct(&cfg)
	if err := c.Feed(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the persisted half of the configuration back to path.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// OrderedSources returns the configured sources in tile order. An empty or
// stale tile order falls back to declaration order; out-of-range indices are
// skipped.
func (c *Config) OrderedSources() []models.SourceConfig {
	if len(c.TileOrder) == 0 {
		return c.Sources
	}
	var ordered []models.SourceConfig
	for _, idx := range c.TileOrder {
		if idx >= 0 && idx < len(c.Sources) {
			ordered = append(ordered, c.Sources[idx])
		}
	}
	if len(ordered) == 0 {
		return c.Sources
	}
	return ordered
}

// GetLogLevel maps the configured level name onto a slog level.
func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
