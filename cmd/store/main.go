package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

// rootCmd serves the storefront when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:           "store",
	Short:         "BoardGame Store web storefront",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides STORE_CONFIG_FILE)")
	rootCmd.AddCommand(serveCmd, catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "store: %v\n", err)
		os.Exit(1)
	}
}
