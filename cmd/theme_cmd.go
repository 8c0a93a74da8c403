package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"map-gallery/pkg/config"
	"map-gallery/pkg/theme"
)

// newThemeCmd creates a new command for inspecting and changing the saved theme
func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the saved theme preference",
		Long: `Show or change the theme preference kept in the configured store
(memory, a YAML file or the OS keyring).`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the active theme",
		Run: func(cmd *cobra.Command, args []string) {
			c := themeController()
			defer c.Close()
			printTheme(c.Attributes())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cycle",
		Short: "Switch to the next theme",
		Run: func(cmd *cobra.Command, args []string) {
			c := themeController()
			defer c.Close()
			if _, err := c.CycleTheme(context.Background()); err != nil {
				fatal("failed to change theme", err)
			}
			printNotification(c)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set [theme]",
		Short:     "Switch to a named theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(theme.Dark), string(theme.Light), string(theme.Zombie)},
		Run: func(cmd *cobra.Command, args []string) {
			c := themeController()
			defer c.Close()
			if err := c.ChangeTheme(context.Background(), args[0]); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			printNotification(c)
		},
	})

	return cmd
}

func themeController() *theme.Controller {
	cfg, err := LoadConfig()
	if err != nil {
		fatal("failed to load configuration", err)
	}
	store, err := themeStore(cfg)
	if err != nil {
		fatal("failed to open theme store", err)
	}
	t := loadLocalizer(cfg).For(cfg.DefaultLanguage)
	return theme.NewController(context.Background(), store, theme.WithTranslator(t))
}

func themeStore(cfg *config.Config) (theme.Store, error) {
	return theme.NewStore(cfg.ThemeStore, cfg.ThemeFile)
}

func printTheme(a theme.Attributes) {
	fmt.Printf("%s %s (theme-color %s)\n", a.Icon, a.Theme, a.MetaColor)
}

func printNotification(c *theme.Controller) {
	if n, ok := c.Notification(); ok {
		fmt.Println(n.Text)
		return
	}
	printTheme(c.Attributes())
}
