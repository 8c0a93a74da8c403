package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"map-gallery/pkg/models"
)

var exportFormat string

// newExportCmd creates a new command for exporting maps and updates
func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [maps|updates|all]",
		Short: "Export gallery data",
		Long:  `Export the validated maps and updates collections. Supported formats: json, yaml.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			what := "all"
			if len(args) > 0 {
				what = args[0]
			}

			ctx := context.Background()
			_, resources := setup(ctx)

			var doc exportDoc
			switch what {
			case "maps", "all":
				maps, err := resources.Maps(ctx)
				if err != nil {
					fatal("failed to load maps", err)
				}
				doc.Maps = maps
				if what == "maps" {
					break
				}
				fallthrough
			case "updates":
				ups, err := resources.Updates(ctx)
				if err != nil {
					fatal("failed to load updates", err)
				}
				doc.Updates = ups
			default:
				fmt.Printf("Unsupported export target: %s\n", what)
				fmt.Println("Supported targets: maps, updates, all")
				os.Exit(1)
			}
			exportData(doc, exportFormat)
		},
	}
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

type exportDoc struct {
	Maps    []models.MapEntry    `json:"maps,omitempty" yaml:"maps,omitempty"`
	Updates []models.UpdateEntry `json:"updates,omitempty" yaml:"updates,omitempty"`
}

// exportData prints doc in the specified format
func exportData(doc exportDoc, format string) {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = json.MarshalIndent(doc, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(doc)
	default:
		fmt.Printf("Unsupported export format: %s\n", format)
		fmt.Println("Supported formats: json, yaml")
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}
