package serverworker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-io/axon/pkg/types"
)

func TestAddDeleteServers(t *testing.T) {
	w := New("worker-1")
	defer w.Shutdown()

	rule := types.NewServerRule("127.0.0.1", 0, types.ProtocolTCP)
	require.NoError(t, w.AddServers([]*types.ServerRule{rule}))
	assert.Equal(t, 1, w.GetServerCount())
	assert.True(t, w.HasServer(rule))

	require.NoError(t, w.DeleteServers([]*types.ServerRule{rule}))
	assert.Equal(t, 0, w.GetServerCount())
	assert.False(t, w.HasServer(rule))
}

func TestAddServersIsIdempotent(t *testing.T) {
	w := New("worker-1")
	defer w.Shutdown()

	rule := types.NewServerRule("127.0.0.1", 0, types.ProtocolUDP)
	require.NoError(t, w.AddServers([]*types.ServerRule{rule}))
	require.NoError(t, w.AddServers([]*types.ServerRule{rule}))
	assert.Equal(t, 1, w.GetServerCount())
}

func TestDeleteAllServers(t *testing.T) {
	w := New("worker-1")
	defer w.Shutdown()

	a := types.NewServerRule("127.0.0.1", 0, types.ProtocolTCP)
	b := types.NewServerRule("127.0.0.1", 0, types.ProtocolUDP)
	require.NoError(t, w.AddServers([]*types.ServerRule{a, b}))
	require.NoError(t, w.DeleteAllServers())
	assert.Equal(t, 0, w.GetServerCount())
}
