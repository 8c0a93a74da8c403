package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"map-gallery/pkg/gallery"
)

var slideInterval time.Duration

// newSlideshowCmd creates a new command that cycles through maps in the terminal
func newSlideshowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slideshow",
		Short: "Cycle through maps in the terminal",
		Long:  `Print each map in turn, advancing on a fixed interval until interrupted.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, resources := setup(ctx)
			t := loadLocalizer(cfg).For(langOr(cfg.DefaultLanguage))

			c := gallery.NewController(resources, t)
			if c.Load(ctx) == 0 {
				fmt.Println(c.View().EmptyText)
				return
			}

			interval := slideInterval
			if interval <= 0 {
				interval = cfg.AutoAdvance
			}

			c.OnChange(printSlide)
			printSlide(c.View())
			c.StartAutoAdvance(interval)
			<-ctx.Done()
			c.StopAutoAdvance()
		},
	}
	cmd.Flags().DurationVarP(&slideInterval, "interval", "i", 0, "Time per map (defaults to auto_advance)")
	cmd.Flags().StringVarP(&displayLang, "lang", "l", "", "Language to display names in")
	return cmd
}

func printSlide(v gallery.View) {
	fmt.Printf("[%d/%d] %s\n", v.Counter.Current, v.Counter.Total, v.Info.Name)
	if v.Info.Description != "" {
		fmt.Printf("        %s\n", v.Info.Description)
	}
}
