package metricscache

import (
	"time"

	"github.com/cloudforge-io/axon/pkg/axonlog"
)

// DefaultReportInterval mirrors the original Reporter's 30 second
// reporting_interval.
const DefaultReportInterval = 30 * time.Second

// Sink receives one drained batch of counts per MetricKey per report.
// Production code wires this to the exchange's Send; tests can fake it.
type Sink interface {
	Send(counts map[string]int64)
}

// ExchangeReporter periodically drains a Cache and forwards nonzero
// counts to a Sink. Each observed count is subtracted from its counter
// (Dec), not cleared, so increments racing in during the drain survive
// to the next report instead of being silently dropped.
type ExchangeReporter struct {
	cache    *Cache
	sink     Sink
	interval time.Duration
	stopCh   chan struct{}
}

// NewExchangeReporter constructs a reporter over cache, delivering to
// sink every interval (DefaultReportInterval if interval<=0), and
// starts its report loop immediately.
func NewExchangeReporter(cache *Cache, sink Sink, interval time.Duration) *ExchangeReporter {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	r := &ExchangeReporter{
		cache:    cache,
		sink:     sink,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *ExchangeReporter) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.report()
		case <-r.stopCh:
			return
		}
	}
}

func (r *ExchangeReporter) report() {
	defer func() {
		if err := recover(); err != nil {
			axonlog.Logger.Error().Interface("panic", err).Msg("metrics reporter recovered")
		}
	}()

	snapshot := r.cache.Snapshot()
	counts := make(map[string]int64, len(snapshot))
	for metric, counter := range snapshot {
		count := counter.Count()
		if count == 0 {
			continue
		}
		counts[metric] = count
		counter.Dec(count)
	}
	if len(counts) > 0 {
		r.sink.Send(counts)
	}
}

// Stop ends the report loop.
func (r *ExchangeReporter) Stop() {
	close(r.stopCh)
}
