package obsmetrics

import "time"

// WorkerStat is one worker's population as reported by the controller
// registry at collection time.
type WorkerStat struct {
	WorkerID  string
	RuleCount int
}

// ControllerStats is the subset of the controller's registries the
// Collector samples. Kept as a local interface to avoid an import cycle
// with pkg/controller.
type ControllerStats interface {
	ClientWorkerStats() []WorkerStat
	ServerWorkerStats() []WorkerStat
}

// Collector periodically samples controller registries into the
// worker/rule population gauges.
type Collector struct {
	stats  ControllerStats
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector over stats.
func NewCollector(stats ControllerStats) *Collector {
	return &Collector{
		stats:  stats,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics every 15 seconds.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectClientWorkers()
	c.collectServerWorkers()
}

func (c *Collector) collectClientWorkers() {
	stats := c.stats.ClientWorkerStats()
	ClientWorkersTotal.Set(float64(len(stats)))
	for _, s := range stats {
		ClientRulesTotal.WithLabelValues(s.WorkerID).Set(float64(s.RuleCount))
	}
}

func (c *Collector) collectServerWorkers() {
	stats := c.stats.ServerWorkerStats()
	ServerWorkersTotal.Set(float64(len(stats)))
	for _, s := range stats {
		ServerRulesTotal.WithLabelValues(s.WorkerID).Set(float64(s.RuleCount))
	}
}
