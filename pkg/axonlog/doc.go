/*
Package axonlog provides structured logging for the axon traffic
platform using zerolog, plus a log/slog bridge for packages (like probe)
that prefer the standard library's structured logging API.

# Usage

Initializing the logger:

	import "github.com/cloudforge-io/axon/pkg/axonlog"

	axonlog.Init(axonlog.Config{
		Level:      axonlog.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Component and context loggers:

	workerLog := axonlog.WithComponent("clientworker").
		With().Str("worker_id", workerID).Logger()
	workerLog.Info().Msg("worker started")

	ruleLog := axonlog.WithRuleKey(rule.Key())
	ruleLog.Warn().Err(err).Msg("probe failed")

slog bridge, used by pkg/probe for its per-attempt "probe dispatch"
events:

	axonlog.Slog().Debug("probe dispatch", slog.String("protocol", "TCP"))

# Log Levels

Debug is for per-dial and per-packet detail; Info is the default
production level (worker lifecycle, rule changes, exchange fan-out);
Warn covers probe failures and heartbeat misses; Error covers RPC and
listener failures; Fatal exits the process and is reserved for startup
failures the controller or a worker cannot recover from.
*/
package axonlog
