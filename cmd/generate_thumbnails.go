package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"map-gallery/pkg/services"
)

// Command options
var (
	forceRegenerate bool
	clearThumbnails bool
	singleImage     string
)

// newGenerateThumbnailsCmd creates a new command for generating map thumbnails
func newGenerateThumbnailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-thumbnails",
		Short: "Generate thumbnails for maps without existing thumbnails",
		Long: `Generate scaled JPEG thumbnails for the maps collection. Thumbnails are written to
thumbnail_dir and uploaded to thumbnail_bucket when one is configured.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			cfg, resources := setup(ctx)
			thumbnails := services.NewThumbnailService(cfg, resources)

			switch {
			case singleImage != "" && clearThumbnails:
				if err := thumbnails.Clear(ctx, singleImage); err != nil {
					fatal("failed to clear thumbnail", err)
				}
				fmt.Printf("Cleared thumbnail for %s\n", singleImage)
			case singleImage != "":
				name, err := thumbnails.Generate(ctx, singleImage, func(step string, progress int) {
					fmt.Printf("  [%3d%%] %s\n", progress, step)
				})
				if err != nil {
					fatal("failed to generate thumbnail", err)
				}
				fmt.Printf("Thumbnail: %s\n", services.ThumbnailURL(cfg, name))
			case clearThumbnails:
				deleted, err := thumbnails.BulkClear(ctx)
				if err != nil {
					fatal("failed to clear thumbnails", err)
				}
				fmt.Printf("Deleted %d thumbnails\n", deleted)
			default:
				fmt.Println("Generating thumbnails...")
				processed, failed, err := thumbnails.BulkGenerate(ctx, forceRegenerate)
				if err != nil {
					fatal("thumbnail generation stopped", err)
				}
				fmt.Printf("Thumbnail generation complete: %d generated, %d failed\n", processed, failed)
				if failed > 0 {
					os.Exit(1)
				}
			}
		},
	}

	// Add command-specific flags
	cmd.Flags().BoolVarP(&forceRegenerate, "force", "f", false, "Force regeneration of all thumbnails, even if they exist")
	cmd.Flags().BoolVar(&clearThumbnails, "clear", false, "Remove thumbnails instead of generating them")
	cmd.Flags().StringVarP(&singleImage, "image", "i", "", "Only process this map image path")

	return cmd
}
