package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variable overrides
const EnvPrefix = "MAPGALLERY_"

// DefaultPath is the config file read when no --config flag is given
const DefaultPath = "map-gallery.yml"

// Config holds all configuration for the application
type Config struct {
	Port      string `koanf:"port"`
	SecretKey string `koanf:"secret_key"`

	// ResourceBase is a directory, an http(s) URL or a gs://bucket/prefix
	ResourceBase string        `koanf:"resource_base"`
	MapsFile     string        `koanf:"maps_file"`
	UpdatesFile  string        `koanf:"updates_file"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	WatchFiles   bool          `koanf:"watch_files"`

	ViewsDir  string `koanf:"views_dir"`
	PublicDir string `koanf:"public_dir"`

	ThumbnailDir    string `koanf:"thumbnail_dir"`
	ThumbnailBucket string `koanf:"thumbnail_bucket"`
	ThumbnailWidth  int    `koanf:"thumbnail_width"`

	ThemeStore           string        `koanf:"theme_store"` // memory|file|keyring
	ThemeFile            string        `koanf:"theme_file"`
	NotificationDuration time.Duration `koanf:"notification_duration"`

	DefaultLanguage string        `koanf:"default_language"`
	LocalesDir      string        `koanf:"locales_dir"`
	I18nTimeout     time.Duration `koanf:"i18n_timeout"`

	AutoAdvance time.Duration `koanf:"auto_advance"`
	CSRF        bool          `koanf:"csrf"`

	Log LogConfig `koanf:"log"`
}

// LogConfig configures pkg/logging
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// ErrResourceBaseNotSet is returned when no resource location is configured
var ErrResourceBaseNotSet = errors.New("resource_base not set")

// ErrUnknownThemeStore is returned for a theme_store outside memory|file|keyring
var ErrUnknownThemeStore = errors.New("unknown theme_store")

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Port:                 "8080",
		ResourceBase:         "./res",
		MapsFile:             "maps.json",
		UpdatesFile:          "updates.json",
		CacheTTL:             5 * time.Minute,
		ViewsDir:             "./views",
		PublicDir:            "./public",
		ThumbnailDir:         "./thumbnails",
		ThumbnailWidth:       320,
		ThemeStore:           "file",
		ThemeFile:            "preferences.yml",
		NotificationDuration: 2 * time.Second,
		DefaultLanguage:      "en",
		I18nTimeout:          5 * time.Second,
		AutoAdvance:          5 * time.Second,
		CSRF:                 true,
		Log:                  LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads the YAML file at path (if it exists) over the defaults, then
// applies MAPGALLERY_* environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps MAPGALLERY_LOG_LEVEL to log.level and MAPGALLERY_PORT to port.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if strings.HasPrefix(key, "log_") {
		return "log." + strings.TrimPrefix(key, "log_")
	}
	return key
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ResourceBase) == "" {
		return ErrResourceBaseNotSet
	}
	switch c.ThemeStore {
	case "memory", "file", "keyring":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownThemeStore, c.ThemeStore)
	}
	if c.ThumbnailWidth <= 0 {
		return fmt.Errorf("thumbnail_width must be positive, got %d", c.ThumbnailWidth)
	}
	return nil
}

// AdminEnabled reports whether the secret admin routes are mounted
func (c *Config) AdminEnabled() bool {
	return c.SecretKey != ""
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Maps URL: http://localhost:%s/maps\n", c.Port)
	fmt.Printf("Updates URL: http://localhost:%s/updates\n", c.Port)
	if c.AdminEnabled() {
		fmt.Printf("Admin URL: http://localhost:%s/%s/admin\n", c.Port, c.SecretKey)
	}
}
