package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"map-gallery/pkg/config"
	"map-gallery/pkg/handlers"
	"map-gallery/pkg/i18n"
	"map-gallery/pkg/logging"
	"map-gallery/pkg/services"
)

var reloadTemplates bool

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the maps gallery and the updates timeline via HTTP.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, resources := setup(ctx)
			if err := serveWebsite(ctx, cfg, resources); err != nil {
				fatal("server error", err)
			}
		},
	}
	cmd.Flags().BoolVar(&reloadTemplates, "reload-templates", false, "Recompile templates on every request")
	return cmd
}

// serveWebsite runs the web server until ctx is cancelled
func serveWebsite(ctx context.Context, cfg *config.Config, resources *services.Service) error {
	log := logging.WithComponent("serve")

	// Pages render with translation keys until this finishes or I18nTimeout passes
	localizer := i18n.New(cfg.DefaultLanguage)
	localizer.LoadAsync(localesFS(cfg))

	if cfg.WatchFiles {
		if err := resources.Watch(ctx); err != nil {
			log.Warn("not watching resources", slog.Any("err", err))
		}
	}

	thumbnails := services.NewThumbnailService(cfg, resources)
	renderer := handlers.NewPugRenderer(cfg.ViewsDir, !reloadTemplates)
	srv := handlers.New(cfg, resources, thumbnails, localizer, renderer)

	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		cfg.PrintServerStartMessage()
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
