package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-io/axon/pkg/types"
)

func openTestStore(t *testing.T) *GormStore {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndGetServers(t *testing.T) {
	s := openTestStore(t)
	rule := types.NewServerRule("10.0.0.1", 8080, types.ProtocolTCP)
	require.NoError(t, s.AddServer(rule))

	endpoint := "10.0.0.1"
	got, err := s.GetServers(ServerFilter{Endpoint: &endpoint})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rule.Port, got[0].Port)
}

func TestDeleteServersNotFoundErrors(t *testing.T) {
	s := openTestStore(t)
	endpoint := "10.9.9.9"
	err := s.DeleteServers(ServerFilter{Endpoint: &endpoint})
	assert.Error(t, err)
}

func TestAddClientBatchAndFilter(t *testing.T) {
	s := openTestStore(t)
	a := types.NewClientRule("10.0.0.1", "10.0.0.2", 80, types.ProtocolTCP, true)
	b := types.NewClientRule("10.0.0.1", "10.0.0.3", 80, types.ProtocolTCP, false)
	require.NoError(t, s.AddClientBatch([]*types.ClientRule{a, b}))

	allowed := true
	got, err := s.GetClients(ClientFilter{Allowed: &allowed})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "10.0.0.2", got[0].Destination)
}

func TestSumWindowAggregatesRecords(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	records := []*types.TrafficRecord{
		{ID: "1", Source: "a", Destination: "b", Port: 80, Protocol: types.ProtocolTCP, Connected: true, SuccessCount: 3, FailureCount: 1, CreatedAt: now},
		{ID: "2", Source: "a", Destination: "b", Port: 80, Protocol: types.ProtocolTCP, Connected: true, SuccessCount: 2, FailureCount: 0, CreatedAt: now},
	}
	require.NoError(t, s.AddRecordsBatch(records))

	source := "a"
	success, failure, err := s.SumWindow(RecordFilter{Source: &source}, now.Add(-time.Hour).Unix(), now.Add(time.Hour).Unix())
	require.NoError(t, err)
	assert.Equal(t, int64(5), success)
	assert.Equal(t, int64(1), failure)
}

func TestIncrementRequestCount(t *testing.T) {
	s := openTestStore(t)
	rule := types.NewClientRule("10.0.0.1", "10.0.0.2", 80, types.ProtocolTCP, true)
	require.NoError(t, s.AddClient(rule))
	require.NoError(t, s.IncrementRequestCount(rule.ID, 4))

	source := "10.0.0.1"
	got, err := s.GetClients(ClientFilter{Source: &source})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].RequestCount)
}
