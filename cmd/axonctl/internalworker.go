package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloudforge-io/axon/pkg/axonlog"
	"github.com/cloudforge-io/axon/pkg/clientworker"
	"github.com/cloudforge-io/axon/pkg/exchange"
	"github.com/cloudforge-io/axon/pkg/exchange/subscriber"
	"github.com/cloudforge-io/axon/pkg/ipc"
	"github.com/cloudforge-io/axon/pkg/metricscache"
	"github.com/cloudforge-io/axon/pkg/serverworker"
	"github.com/cloudforge-io/axon/pkg/store"
)

// internalServerWorkerCmd and internalClientWorkerCmd are the re-exec
// targets pkg/controller/spawn.go invokes; an operator never runs
// these directly, so they're hidden from --help.
var internalServerWorkerCmd = &cobra.Command{
	Use:    "__server-worker",
	Hidden: true,
	RunE:   runServerWorker,
}

var internalClientWorkerCmd = &cobra.Command{
	Use:    "__client-worker",
	Hidden: true,
	RunE:   runClientWorker,
}

func init() {
	for _, cmd := range []*cobra.Command{internalServerWorkerCmd, internalClientWorkerCmd} {
		cmd.Flags().String("uid", "", "worker UID assigned by the controller")
		cmd.Flags().String("socket", "", "Unix domain socket path to listen on")
		_ = cmd.MarkFlagRequired("uid")
		_ = cmd.MarkFlagRequired("socket")
	}

	internalClientWorkerCmd.Flags().String("store-dsn", "", "record store DSN for this worker's SQLRecorder subscriber")
	internalClientWorkerCmd.Flags().String("telemetry-endpoint", "", "HTTP endpoint for this worker's telemetry subscriber")
	internalClientWorkerCmd.Flags().Duration("report-interval", metricscache.DefaultReportInterval, "metrics cache drain interval")
	internalClientWorkerCmd.Flags().Duration("buffer-interval", exchange.DefaultBufferInterval, "exchange subscriber buffer interval")
}

func runServerWorker(cmd *cobra.Command, _ []string) error {
	uid, _ := cmd.Flags().GetString("uid")
	socket, _ := cmd.Flags().GetString("socket")

	worker := serverworker.New(uid)

	srv, err := ipc.Listen(socket)
	if err != nil {
		return fmt.Errorf("server worker: listen: %w", err)
	}
	if err := srv.Register(ipc.NewServerWorkerService(worker)); err != nil {
		return fmt.Errorf("server worker: register: %w", err)
	}
	go srv.Serve()

	axonlog.WithWorkerID(uid).Info().Str("socket", socket).Msg("server worker ready")
	waitForShutdownSignal()

	srv.Stop()
	return worker.Shutdown()
}

func runClientWorker(cmd *cobra.Command, _ []string) error {
	uid, _ := cmd.Flags().GetString("uid")
	socket, _ := cmd.Flags().GetString("socket")
	storeDSN, _ := cmd.Flags().GetString("store-dsn")
	telemetryEndpoint, _ := cmd.Flags().GetString("telemetry-endpoint")
	reportInterval, _ := cmd.Flags().GetDuration("report-interval")
	bufferInterval, _ := cmd.Flags().GetDuration("buffer-interval")

	// Each client worker is its own OS process, so it owns its own
	// cache/exchange/subscriber chain rather than sharing the
	// controller's in-process exchange.Manager.
	cache := metricscache.NewCache()
	ex := exchange.New(fmt.Sprintf("client-worker-%s", uid))

	if storeDSN != "" {
		db, err := store.Open(storeDSN)
		if err != nil {
			return fmt.Errorf("client worker: open store: %w", err)
		}
		ex.Attach(subscriber.NewSQLRecorder(db), bufferInterval)
	}
	if telemetryEndpoint != "" {
		ex.Attach(subscriber.NewTelemetryWriter(telemetryEndpoint, uid, nil), bufferInterval)
	}
	reporter := metricscache.NewExchangeReporter(cache, exchange.NewSink(ex), reportInterval)
	defer reporter.Stop()

	worker := clientworker.New(uid, nil, cache)
	worker.Initialize()

	srv, err := ipc.Listen(socket)
	if err != nil {
		return fmt.Errorf("client worker: listen: %w", err)
	}
	if err := srv.Register(ipc.NewClientWorkerService(worker)); err != nil {
		return fmt.Errorf("client worker: register: %w", err)
	}
	go srv.Serve()

	axonlog.WithWorkerID(uid).Info().Str("socket", socket).Msg("client worker ready")
	waitForShutdownSignal()

	srv.Stop()
	return worker.DeleteAllClients()
}

func waitForShutdownSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
