package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"map-gallery/pkg/services"
)

// newListResourcesCmd creates a new command for listing resource files
func newListResourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-resources",
		Short: "List files at the resource location",
		Long:  `List every file under the configured resource base. HTTP locations cannot be listed.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			_, resources := setup(ctx)

			names, err := resources.Resources(ctx)
			if errors.Is(err, services.ErrNotListable) {
				fmt.Printf("%s cannot be listed\n", resources.Source())
				os.Exit(1)
			}
			if err != nil {
				fatal("failed to list resources", err)
			}

			fmt.Printf("Resources in %s:\n", resources.Source())
			for _, name := range names {
				fmt.Printf("  %s\n", name)
			}
			fmt.Printf("Total: %d files\n", len(names))
		},
	}
}
