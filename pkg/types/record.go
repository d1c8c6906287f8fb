package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TrafficRecord is a time-windowed aggregate row in the record store: it
// counts successes/failures for one (source, destination, port, protocol,
// connected) tuple within a reporting window, never a per-probe log.
type TrafficRecord struct {
	ID           string
	Source       string
	Destination  string
	Port         int
	Protocol     Protocol
	Connected    bool
	SuccessCount int64
	FailureCount int64
	CreatedAt    time.Time
}

// GroupKey returns the (source, destination, port, protocol, connected)
// identity used to merge two records observed within the same reporting
// window (spec: two records with an identical tuple in the same window
// MUST be merged).
func (r *TrafficRecord) GroupKey() string {
	return fmt.Sprintf("%s:%s:%d:%s:%t", r.Source, r.Destination, r.Port, r.Protocol, r.Connected)
}

// MetricKey is the canonical lossless string encoding of a single probe
// outcome: "{source}:{destination}:{port}:{protocol}:{connected}:{success|failure}".
type MetricKey = string

// EncodeMetric builds the canonical MetricKey for one classified outcome.
func EncodeMetric(source, destination string, port int, protocol Protocol, connected, success bool) MetricKey {
	result := "failure"
	if success {
		result = "success"
	}
	return fmt.Sprintf("%s:%s:%d:%s:%t:%s", source, destination, port, protocol, connected, result)
}

// IsSuccessMetric reports whether the encoded metric represents a success.
func IsSuccessMetric(metric MetricKey) bool {
	return strings.HasSuffix(metric, ":success")
}

// DecodeMetric parses a MetricKey back into a fresh TrafficRecord whose
// Success/FailureCount is left zero (the caller fills in the observed
// count) and whose ID is freshly generated. Round-tripping
// EncodeMetric/DecodeMetric must reproduce every field but ID.
func DecodeMetric(metric MetricKey) (*TrafficRecord, bool, error) {
	parts := strings.Split(metric, ":")
	if len(parts) != 6 {
		return nil, false, fmt.Errorf("axon/types: malformed metric key %q", metric)
	}
	port, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, false, fmt.Errorf("axon/types: malformed metric key %q: %w", metric, err)
	}
	connected, err := strconv.ParseBool(parts[4])
	if err != nil {
		return nil, false, fmt.Errorf("axon/types: malformed metric key %q: %w", metric, err)
	}
	success := parts[5] == "success"
	record := &TrafficRecord{
		ID:          uuid.New().String(),
		Source:      parts[0],
		Destination: parts[1],
		Port:        port,
		Protocol:    Protocol(parts[3]),
		Connected:   connected,
	}
	return record, success, nil
}
