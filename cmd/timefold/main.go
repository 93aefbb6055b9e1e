// Package main provides the entry point for the timefold CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/timefold/cmd/timefold/commands"
	"github.com/Sumatoshi-tech/timefold/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "timefold",
		Short: "Timefold - backward-patch history compaction for script projects",
		Long: `Timefold manages edit-history logs for multi-file script projects.

Commands:
  compact   Coarsen a history log to one entry per time bucket
  inspect   Summarize a history log
  plot      Render a history timeline as HTML`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./timefold.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	rootCmd.AddCommand(commands.NewCompactCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewPlotCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "timefold %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
