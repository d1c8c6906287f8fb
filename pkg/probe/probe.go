// Package probe implements the per-protocol traffic generators client
// workers dispatch against a destination: TCP and UDP probes send a
// fixed payload and wait for the echo, HTTP and HTTPS probes issue a
// GET; each probe classifies the outcome against the rule's expected
// allow/deny semantics and reports it to a metrics cache.
package probe

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/cloudforge-io/axon/pkg/axonlog"
	"github.com/cloudforge-io/axon/pkg/obsmetrics"
	"github.com/cloudforge-io/axon/pkg/types"
)

// payload is the fixed packet sent by every probe, matching the
// well-known seven-byte traffic marker the server side echoes back.
var payload = []byte("Dinkirk")

// packetSize bounds the echo read; the server never sends back more
// than it received.
const packetSize = 1024

const (
	dialTimeout  = 10 * time.Second
	retryBackoff = 500 * time.Millisecond
)

// Recorder is the sink a probe reports its classified outcome to. In
// production this is a *metricscache.Cache; tests can fake it.
type Recorder interface {
	Inc(metric types.MetricKey)
}

// Target is the immutable description of one probe dispatch, derived
// from a ClientRule at dispatch time.
type Target struct {
	Source       string
	Destination  string
	Port         int
	Protocol     types.Protocol
	Connected    bool
	Allowed      bool
	RequestCount int
}

// Addr returns "destination:port" for use with net.Dial and http URLs.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Destination, strconv.Itoa(t.Port))
}

// Classify implements the spec's outcome matrix: when the endpoints are
// not expected to be connected, success means the raw transport
// outcome was itself a failure; otherwise success means the raw
// outcome matched the rule's Allowed flag.
func (t Target) Classify(rawSucceeded bool) bool {
	if !t.Connected {
		return !rawSucceeded
	}
	return rawSucceeded == t.Allowed
}

// record classifies rawSucceeded against t and increments the
// corresponding counter on rec.
func record(rec Recorder, t Target, rawSucceeded bool) {
	success := t.Classify(rawSucceeded)
	metric := types.EncodeMetric(t.Source, t.Destination, t.Port, t.Protocol, t.Connected, success)
	rec.Inc(metric)

	result := "failure"
	if success {
		result = "success"
	}
	obsmetrics.ProbeOutcomesTotal.WithLabelValues(string(t.Protocol), result).Inc()
}

// Prober sends one round of traffic (RequestCount dispatches) to a
// Target and records each outcome.
type Prober interface {
	Ping(ctx context.Context, target Target, rec Recorder)
}

// New returns the Prober for protocol, grounded on the teacher's
// registry-of-implementations pattern (pkg/health.Checker lookup by
// name). Returns nil for an unrecognized protocol.
func New(protocol types.Protocol) Prober {
	switch protocol {
	case types.ProtocolTCP:
		return &tcpProbe{}
	case types.ProtocolUDP:
		return &udpProbe{}
	case types.ProtocolHTTP:
		return &httpProbe{}
	case types.ProtocolHTTPS:
		return &httpProbe{tls: true}
	default:
		return nil
	}
}

func logAttempt(ctx context.Context, protocol types.Protocol, t Target, err error, attempt int) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
	}
	axonlog.Slog().Log(ctx, level, "probe dispatch",
		slog.String("protocol", string(protocol)),
		slog.String("source", t.Source),
		slog.String("destination", t.Destination),
		slog.Int("port", t.Port),
		slog.Int("attempt", attempt),
		slog.Any("err", err),
	)
}
