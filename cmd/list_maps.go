package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"map-gallery/pkg/gallery"
	"map-gallery/pkg/i18n"
)

var displayLang string

// newListMapsCmd creates a new command for listing maps
func newListMapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-maps",
		Short: "List all maps",
		Long:  `List every map in the collection with its localized name and thumbnail.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg, resources := setup(ctx)
			t := loadLocalizer(cfg).For(langOr(cfg.DefaultLanguage))

			c := gallery.NewController(resources, t)
			c.Load(ctx)
			listMaps(c.View())
		},
	}
	cmd.Flags().StringVarP(&displayLang, "lang", "l", "", "Language to display names in")
	return cmd
}

// newShowMapCmd creates a new command for showing one map
func newShowMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-map [number]",
		Short: "Show a specific map",
		Long:  `Show the name, description and files of the map at the given 1-based position.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Error: invalid map number %q\n", args[0])
				os.Exit(1)
			}

			ctx := context.Background()
			cfg, resources := setup(ctx)
			t := loadLocalizer(cfg).For(langOr(cfg.DefaultLanguage))

			c := gallery.NewController(resources, t)
			c.Load(ctx)
			showMap(c, n, t)
		},
	}
	cmd.Flags().StringVarP(&displayLang, "lang", "l", "", "Language to display names in")
	return cmd
}

func langOr(def string) string {
	if displayLang != "" {
		return displayLang
	}
	return def
}

// listMaps displays all maps
func listMaps(v gallery.View) {
	fmt.Println("Maps:")
	fmt.Println("=====")

	if v.Empty {
		fmt.Println(v.EmptyText)
		return
	}

	for i, s := range v.Slides {
		th := v.Thumbnails[i]
		fmt.Printf("%d. %s\n", i+1, th.Caption)
		fmt.Printf("   Image: %s\n", s.Image)
		if th.Image != s.Image {
			fmt.Printf("   Thumbnail: %s\n", th.Image)
		}
	}

	fmt.Printf("\nTotal: %d maps\n", v.Counter.Total)
}

// showMap displays details about the map at 1-based position n
func showMap(c *gallery.Controller, n int, t i18n.Translator) {
	total := c.Session().Len()
	if n < 1 || n > total {
		fmt.Printf("Error: map %d not found (%d maps)\n", n, total)
		os.Exit(1)
	}
	c.GoTo(n - 1)
	v := c.View()

	fmt.Printf("Map: %s\n", v.Info.Name)
	fmt.Printf("Position: %d %s %d\n", v.Counter.Current, i18n.Lookup(t, "gallery.counter", "of"), v.Counter.Total)
	fmt.Println("================")
	fmt.Println(v.Info.Description)
	fmt.Println()
	fmt.Printf("Image: %s\n", v.Slides[n-1].Image)
	fmt.Printf("Thumbnail: %s\n", v.Thumbnails[n-1].Image)
}
