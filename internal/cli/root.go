// Package cli wires configuration into the running service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName = "sitecrafter"
	version = "0.3.0"
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "AI website generation service",
		Long: `Sitecrafter turns natural-language requirements into complete
multi-page websites. Requests run through a staged workflow against an LLM
provider: blueprint, scaffolding, core files, components and pages, followed
by a bounded validate-and-repair loop.

Running with no subcommand starts the HTTP API server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yaml")

	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(generateCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, version)
		},
	})

	return cmd
}
