package clientworker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-io/axon/pkg/metricscache"
	"github.com/cloudforge-io/axon/pkg/types"
)

func TestAddDeleteClients(t *testing.T) {
	w := New("worker-1", nil, metricscache.NewCache())
	defer w.DeleteAllClients()

	rule := types.NewClientRule("10.0.0.1", "127.0.0.1", 1, types.ProtocolTCP, true)
	require.NoError(t, w.AddClients([]*types.ClientRule{rule}))
	assert.Equal(t, 1, w.GetRuleCount())
	assert.True(t, w.HasRule(rule))

	require.NoError(t, w.DeleteClients([]*types.ClientRule{rule}))
	assert.Equal(t, 0, w.GetRuleCount())
}

func TestDeleteAllClientsStopsDispatch(t *testing.T) {
	w := New("worker-1", nil, metricscache.NewCache())
	rule := types.NewClientRule("10.0.0.1", "127.0.0.1", 1, types.ProtocolTCP, true)
	require.NoError(t, w.AddClients([]*types.ClientRule{rule}))

	require.NoError(t, w.DeleteAllClients())
	assert.Equal(t, 0, w.GetRuleCount())
}

func TestHeartbeatReportsRuleCount(t *testing.T) {
	hbCh := make(chan Heartbeat, 1)
	w := New("worker-1", hbCh, metricscache.NewCache())
	rule := types.NewClientRule("10.0.0.1", "127.0.0.1", 1, types.ProtocolTCP, true)
	require.NoError(t, w.AddClients([]*types.ClientRule{rule}))
	defer w.DeleteAllClients()

	w.Initialize()
	select {
	case hb := <-hbCh:
		assert.Equal(t, "worker-1", hb.WorkerID)
		assert.Equal(t, "OK", hb.Status)
		assert.Equal(t, 1, hb.RuleCount)
	case <-time.After(HeartbeatInterval + 2*time.Second):
		t.Fatal("expected heartbeat within interval")
	}
}
