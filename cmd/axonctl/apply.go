package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloudforge-io/axon/pkg/config"
	"github.com/cloudforge-io/axon/pkg/controller"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a rule manifest against an in-process controller",
	Long: `Apply a rule manifest against a controller started in this process
(single-binary demo/dev mode).

Examples:
  # Apply a rule manifest
  axonctl apply -f plan.yaml`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML rule manifest to apply (required)")
	applyCmd.Flags().String("store-dsn", "", "record store DSN handed to spawned client workers")
	applyCmd.Flags().String("telemetry-endpoint", "", "telemetry HTTP endpoint handed to spawned client workers")
	_ = applyCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	filename, _ := cmd.Flags().GetString("file")
	storeDSN, _ := cmd.Flags().GetString("store-dsn")
	telemetryEndpoint, _ := cmd.Flags().GetString("telemetry-endpoint")

	manifest, err := config.Load(filename)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	serverRules, err := manifest.ServerRules()
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	clientRules, err := manifest.ClientRules()
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	runtimeDir, err := os.MkdirTemp("", "axon-ipc-*")
	if err != nil {
		return fmt.Errorf("apply: create runtime dir: %w", err)
	}

	ctl := controller.New(runtimeDir, controller.Options{
		StoreDSN:          storeDSN,
		TelemetryEndpoint: telemetryEndpoint,
	})

	if err := ctl.StartServers(serverRules); err != nil {
		return fmt.Errorf("apply: start servers: %w", err)
	}
	fmt.Printf("✓ %d server rule(s) applied from %s\n", len(serverRules), filename)

	if err := ctl.StartClients(clientRules); err != nil {
		return fmt.Errorf("apply: start clients: %w", err)
	}
	fmt.Printf("✓ %d client rule(s) applied from %s\n", len(clientRules), filename)

	fmt.Println("Traffic running. Press Ctrl+C to stop.")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	return ctl.Shutdown()
}
