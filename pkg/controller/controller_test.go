package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCeilDivRounding(t *testing.T) {
	assert.Equal(t, 5, ceilDiv(20, 4))
	assert.Equal(t, 5, ceilDiv(21, 5))
	assert.Equal(t, 0, ceilDiv(0, 4))
	assert.Equal(t, 10, ceilDiv(10, 1))
}

func TestSliceForPartitioning(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	perWorker := ceilDiv(len(items), 3) // 3

	assert.Equal(t, []int{1, 2, 3}, sliceFor(items, 0, perWorker))
	assert.Equal(t, []int{4, 5, 6}, sliceFor(items, 1, perWorker))
	assert.Equal(t, []int{7}, sliceFor(items, 2, perWorker))
	assert.Nil(t, sliceFor(items, 3, perWorker))
}

func TestShutdownOnEmptyControllerIsNoop(t *testing.T) {
	c := New(t.TempDir(), Options{})
	require.NoError(t, c.Shutdown())
	assert.Empty(t, c.GetServers())
	assert.Empty(t, c.GetClientRules())
}

func TestStatsEmptyControllerReportsNoWorkers(t *testing.T) {
	c := New(t.TempDir(), Options{})
	t.Cleanup(func() { close(c.heartbeatStopCh) })
	assert.Empty(t, c.ClientWorkerStats())
	assert.Empty(t, c.ServerWorkerStats())
}
