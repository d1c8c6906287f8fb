package subscriber

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudforge-io/axon/pkg/axonlog"
	"github.com/cloudforge-io/axon/pkg/types"
)

// TelemetryWriter posts drained traffic metrics as line-protocol text to
// an HTTP telemetry endpoint, the closest in-pack stand-in for the
// original's Wavefront direct/proxy recorders (the wavefront_sdk
// dependency they use was never retrieved into this pack; see
// DESIGN.md).
type TelemetryWriter struct {
	endpoint string
	source   string
	tags     map[string]string
	client   *http.Client
}

// NewTelemetryWriter returns a writer posting to endpoint, tagging every
// line with source and the given static tags.
func NewTelemetryWriter(endpoint, source string, tags map[string]string) *TelemetryWriter {
	return &TelemetryWriter{
		endpoint: endpoint,
		source:   source,
		tags:     tags,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Handle implements exchange.Subscriber, building one line-protocol
// point per metric plus aggregate total/protocol rollups, matching the
// original WavefrontRecorder.handle's metric set:
// axon.traffic.request.{success,failure}, axon.traffic.request.total.*,
// axon.traffic.<protocol>.request.{success,failure}.
func (w *TelemetryWriter) Handle(messages []any) {
	now := time.Now().Unix()
	var totalSuccess, totalFailure int64
	byProtocolSuccess := make(map[string]int64)
	byProtocolFailure := make(map[string]int64)

	var lines []string
	for _, message := range messages {
		counts, ok := message.(map[string]int64)
		if !ok {
			continue
		}
		for metric, value := range counts {
			record, success, err := types.DecodeMetric(metric)
			if err != nil {
				continue
			}
			protocol := strings.ToLower(string(record.Protocol))
			name := "axon.traffic.request.failure"
			if success {
				name = "axon.traffic.request.success"
				totalSuccess += value
				byProtocolSuccess[protocol] += value
			} else {
				totalFailure += value
				byProtocolFailure[protocol] += value
			}
			lines = append(lines, w.line(name, value, now, map[string]string{
				"source":      record.Source,
				"destination": record.Destination,
				"port":        fmt.Sprintf("%d", record.Port),
				"protocol":    string(record.Protocol),
				"connected":   fmt.Sprintf("%t", record.Connected),
			}))
		}
	}
	if len(lines) == 0 {
		return
	}

	lines = append(lines,
		w.line("axon.traffic.request.total.success", totalSuccess, now, nil),
		w.line("axon.traffic.request.total.failure", totalFailure, now, nil),
	)
	for protocol, value := range byProtocolSuccess {
		lines = append(lines, w.line(fmt.Sprintf("axon.traffic.%s.request.success", protocol), value, now, nil))
	}
	for protocol, value := range byProtocolFailure {
		lines = append(lines, w.line(fmt.Sprintf("axon.traffic.%s.request.failure", protocol), value, now, nil))
	}

	w.send(lines)
}

func (w *TelemetryWriter) line(name string, value int64, ts int64, tags map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d %d source=%q", name, value, ts, w.source)
	for k, v := range w.tags {
		fmt.Fprintf(&b, " %s=%q", k, v)
	}
	for k, v := range tags {
		fmt.Fprintf(&b, " %s=%q", k, v)
	}
	return b.String()
}

func (w *TelemetryWriter) send(lines []string) {
	body := strings.Join(lines, "\n")
	resp, err := w.client.Post(w.endpoint, "text/plain", bytes.NewBufferString(body))
	if err != nil {
		axonlog.Logger.Error().Err(err).Str("endpoint", w.endpoint).Msg("telemetry post failed")
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		axonlog.Logger.Warn().Int("status", resp.StatusCode).Msg("telemetry endpoint rejected batch")
	}
}
