package cmd

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"

	"map-gallery/pkg/updates"
)

// newListUpdatesCmd creates a new command for printing the changelog
func newListUpdatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-updates",
		Short: "Print the updates timeline",
		Long:  `Print the changelog newest first, with type badges and categorized changes.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg, resources := setup(ctx)
			localizer := loadLocalizer(cfg)

			c := updates.NewController(resources, localizer.For(localizer.Language()))
			c.Load(ctx)
			c.Render()

			// Switching language re-renders through the subscription
			c.Attach(localizer)
			defer c.Close()
			if displayLang != "" {
				if err := localizer.SetLanguage(displayLang); err != nil {
					fatal("cannot display updates", err)
				}
			}
			printTimeline(c.Timeline())
		},
	}
	cmd.Flags().StringVarP(&displayLang, "lang", "l", "", "Language to display the changelog in")
	return cmd
}

// printTimeline writes a plain text rendering of tl
func printTimeline(tl updates.Timeline) {
	if tl.Empty {
		fmt.Printf("%s %s\n", tl.EmptyIcon, tl.EmptyText)
		return
	}

	text := bluemonday.StrictPolicy()
	for _, item := range tl.Items {
		marker := ""
		if item.New {
			marker = " (new)"
		}
		fmt.Printf("%s %s %s  %s%s\n", item.Icon, item.Badge, item.Version, item.Date, marker)
		fmt.Printf("   %s\n", item.Title)
		if desc := strings.TrimSpace(html.UnescapeString(text.Sanitize(item.Description))); desc != "" {
			fmt.Printf("   %s\n", desc)
		}
		for _, g := range item.Changes {
			fmt.Printf("   %s %s\n", g.Icon, g.Heading)
			for _, line := range g.Items {
				fmt.Printf("     - %s\n", html.UnescapeString(line))
			}
		}
		fmt.Println()
	}
}
