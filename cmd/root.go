package cmd

import (
	"context"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"map-gallery/pkg/config"
	"map-gallery/pkg/i18n"
	"map-gallery/pkg/logging"
	"map-gallery/pkg/services"
)

// Configuration flags
var (
	configPath   string
	secretKey    string
	resourceBase string
	portNumber   string
	logLevel     string
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "map-gallery",
		Short: "Map Gallery serves a browsable gallery of maps and a changelog",
		Long: `Map Gallery is a command line application that reads a maps collection and
an updates changelog from a directory, an HTTP location or Google Cloud Storage.
It serves both as a localized, themeable web site and can inspect them from the terminal.`,
		SilenceUsage: true,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&secretKey, "secret-key", "s", "", "Set the secret admin path (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&resourceBase, "resource-base", "r", "", "Directory, http(s) URL or gs://bucket/prefix holding maps.json and updates.json")
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	// Add commands to root
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListMapsCmd())
	rootCmd.AddCommand(newShowMapCmd())
	rootCmd.AddCommand(newListUpdatesCmd())
	rootCmd.AddCommand(newListResourcesCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newSlideshowCmd())
	rootCmd.AddCommand(newThemeCmd())
	rootCmd.AddCommand(newGenerateThumbnailsCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags and
// initializes logging from it
func LoadConfig() (*config.Config, error) {
	// Flags win over the file by going through the env override layer
	overrides := map[string]string{
		"SECRET_KEY":    secretKey,
		"RESOURCE_BASE": resourceBase,
		"PORT":          portNumber,
		"LOG_LEVEL":     logLevel,
	}
	for k, v := range overrides {
		if v != "" {
			os.Setenv(config.EnvPrefix+k, v)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	return cfg, nil
}

// setup loads the config and opens the configured resource location
func setup(ctx context.Context) (*config.Config, *services.Service) {
	cfg, err := LoadConfig()
	if err != nil {
		fatal("failed to load configuration", err)
	}
	src, err := services.NewSource(ctx, cfg.ResourceBase)
	if err != nil {
		fatal("failed to open resources", err)
	}
	return cfg, services.NewService(cfg, src)
}

// localesFS returns the configured locales directory, else the built-in messages
func localesFS(cfg *config.Config) fs.FS {
	if cfg.LocalesDir != "" {
		return os.DirFS(cfg.LocalesDir)
	}
	return i18n.Embedded()
}

// loadLocalizer loads translations synchronously, for commands that print once
func loadLocalizer(cfg *config.Config) *i18n.Localizer {
	l := i18n.New(cfg.DefaultLanguage)
	if err := l.Load(localesFS(cfg)); err != nil {
		logging.L().Warn("translations unavailable, showing keys", slog.Any("err", err))
	}
	return l
}

func fatal(msg string, err error) {
	logging.L().Error(msg, slog.Any("err", err))
	os.Exit(1)
}
