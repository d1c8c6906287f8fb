package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloudforge-io/axon/pkg/axonlog"
	"github.com/cloudforge-io/axon/pkg/config"
	"github.com/cloudforge-io/axon/pkg/controller"
	"github.com/cloudforge-io/axon/pkg/obsmetrics"
)

var controllerCmd = &cobra.Command{
	Use:   "controller",
	Short: "Controller operations",
}

var controllerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the controller daemon",
	Long: `Start a controller: shard the rules declared in --config across
a pool of spawned worker processes, and serve /metrics and /healthz.`,
	RunE: runController,
}

func init() {
	controllerCmd.AddCommand(controllerRunCmd)

	controllerRunCmd.Flags().StringP("config", "c", "", "YAML rule manifest to apply at startup")
	controllerRunCmd.Flags().String("runtime-dir", "", "directory for worker RPC sockets (defaults to a fresh temp dir)")
	controllerRunCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "address to serve /metrics and /healthz on")
	controllerRunCmd.Flags().String("store-dsn", "", "record store DSN handed to spawned client workers")
	controllerRunCmd.Flags().String("telemetry-endpoint", "", "telemetry HTTP endpoint handed to spawned client workers")
	controllerRunCmd.Flags().Duration("report-interval", 0, "metrics cache drain interval handed to spawned client workers")
	controllerRunCmd.Flags().Duration("buffer-interval", 0, "exchange subscriber buffer interval handed to spawned client workers")
}

func runController(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	runtimeDir, _ := cmd.Flags().GetString("runtime-dir")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	storeDSN, _ := cmd.Flags().GetString("store-dsn")
	telemetryEndpoint, _ := cmd.Flags().GetString("telemetry-endpoint")
	reportInterval, _ := cmd.Flags().GetDuration("report-interval")
	bufferInterval, _ := cmd.Flags().GetDuration("buffer-interval")

	if runtimeDir == "" {
		dir, err := os.MkdirTemp("", "axon-ipc-*")
		if err != nil {
			return fmt.Errorf("controller run: create runtime dir: %w", err)
		}
		runtimeDir = dir
	}

	ctl := controller.New(runtimeDir, controller.Options{
		StoreDSN:          storeDSN,
		TelemetryEndpoint: telemetryEndpoint,
		ReportInterval:    reportInterval,
		BufferInterval:    bufferInterval,
	})

	collector := obsmetrics.NewCollector(ctl)
	collector.Start()
	defer collector.Stop()

	if configPath != "" {
		manifest, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("controller run: %w", err)
		}
		serverRules, err := manifest.ServerRules()
		if err != nil {
			return fmt.Errorf("controller run: %w", err)
		}
		clientRules, err := manifest.ClientRules()
		if err != nil {
			return fmt.Errorf("controller run: %w", err)
		}
		if err := ctl.StartServers(serverRules); err != nil {
			return fmt.Errorf("controller run: start servers: %w", err)
		}
		if err := ctl.StartClients(clientRules); err != nil {
			return fmt.Errorf("controller run: start clients: %w", err)
		}
		axonlog.Logger.Info().
			Int("servers", len(serverRules)).
			Int("clients", len(clientRules)).
			Str("manifest", configPath).
			Msg("applied startup manifest")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", obsmetrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	httpServer := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			axonlog.Logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
	axonlog.Logger.Info().Str("addr", metricsAddr).Msg("metrics server listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	axonlog.Logger.Info().Msg("shutting down controller")
	_ = httpServer.Close()
	return ctl.Shutdown()
}
