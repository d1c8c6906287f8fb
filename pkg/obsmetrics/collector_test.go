package obsmetrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type fakeStats struct {
	clients []WorkerStat
	servers []WorkerStat
}

func (f *fakeStats) ClientWorkerStats() []WorkerStat { return f.clients }
func (f *fakeStats) ServerWorkerStats() []WorkerStat { return f.servers }

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestCollectorSamplesWorkerCounts(t *testing.T) {
	stats := &fakeStats{
		clients: []WorkerStat{{WorkerID: "c1", RuleCount: 3}},
		servers: []WorkerStat{{WorkerID: "s1", RuleCount: 2}, {WorkerID: "s2", RuleCount: 1}},
	}
	c := NewCollector(stats)
	c.collect()

	assert.Equal(t, float64(1), gaugeValue(t, ClientWorkersTotal))
	assert.Equal(t, float64(2), gaugeValue(t, ServerWorkersTotal))
}

func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(&fakeStats{})
	c.Start()
	time.Sleep(10 * time.Millisecond)
	c.Stop()
}
