package main

import (
	"fmt"
	"os"

	"map-gallery/cmd"
)

// Shortcut for "map-gallery serve", used by the container image
func main() {
	rootCmd := cmd.NewRootCmd()
	rootCmd.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
