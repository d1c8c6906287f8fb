// Package subscriber implements the exchange.Subscriber sinks that
// consume drained traffic metrics: a relational record store writer and
// a line-protocol telemetry writer.
package subscriber

import (
	"github.com/cloudforge-io/axon/pkg/axonlog"
	"github.com/cloudforge-io/axon/pkg/types"
)

// RecordStore is the subset of pkg/store's RecordStore this subscriber
// needs, kept local to avoid an import cycle.
type RecordStore interface {
	AddRecordsBatch(records []*types.TrafficRecord) error
}

// SQLRecorder merges each batch of drained metric counts into
// TrafficRecord rows (grouped by source/destination/port/protocol/
// connected) and writes them to a RecordStore.
type SQLRecorder struct {
	store RecordStore
}

// NewSQLRecorder returns a SQLRecorder writing to store.
func NewSQLRecorder(store RecordStore) *SQLRecorder {
	return &SQLRecorder{store: store}
}

// Handle implements exchange.Subscriber. Each message is expected to be
// a map[string]int64 of MetricKey -> observed count, as produced by
// metricscache.ExchangeReporter.
func (s *SQLRecorder) Handle(messages []any) {
	byGroup := make(map[string]*types.TrafficRecord)

	for _, message := range messages {
		counts, ok := message.(map[string]int64)
		if !ok {
			continue
		}
		for metric, value := range counts {
			record, success, err := types.DecodeMetric(metric)
			if err != nil {
				axonlog.Logger.Warn().Err(err).Str("metric", metric).Msg("dropping malformed metric")
				continue
			}
			existing, exists := byGroup[record.GroupKey()]
			if !exists {
				existing = record
				byGroup[record.GroupKey()] = existing
			}
			if success {
				existing.SuccessCount += value
			} else {
				existing.FailureCount += value
			}
		}
	}
	if len(byGroup) == 0 {
		return
	}

	records := make([]*types.TrafficRecord, 0, len(byGroup))
	for _, record := range byGroup {
		records = append(records, record)
	}
	if err := s.store.AddRecordsBatch(records); err != nil {
		axonlog.Logger.Error().Err(err).Msg("failed to write traffic record batch")
	}
}
