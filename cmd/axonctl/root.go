package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudforge-io/axon/pkg/axonlog"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "axonctl",
	Short:   "axonctl - distributed traffic generation and measurement",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("axonctl version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(controllerCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(internalServerWorkerCmd)
	rootCmd.AddCommand(internalClientWorkerCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	axonlog.Init(axonlog.Config{
		Level:      axonlog.Level(logLevel),
		JSONOutput: logJSON,
	})
}
