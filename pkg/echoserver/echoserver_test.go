package echoserver

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-io/axon/pkg/types"
)

func TestTCPListenerStartsAndCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ln, err := Start(ctx, types.NewServerRule("127.0.0.1", 0, types.ProtocolTCP))
	require.NoError(t, err)
	defer ln.Close()
}

func TestUnsupportedProtocolRejected(t *testing.T) {
	ctx := context.Background()
	rule := types.NewServerRule("127.0.0.1", 9999, types.Protocol("SCTP"))
	_, err := Start(ctx, rule)
	assert.Error(t, err)
}

func TestTCPEchoActuallyEchoes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	rule := &types.ServerRule{Endpoint: "127.0.0.1", Port: portOf(t, addr), Protocol: types.ProtocolTCP}
	srv, err := Start(ctx, rule)
	require.NoError(t, err)
	defer srv.Close()

	time.Sleep(50 * time.Millisecond)
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("Dinkirk"))
	require.NoError(t, err)
	buf := make([]byte, 7)
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err = conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "Dinkirk", string(buf))
}

func portOf(t *testing.T, addr string) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}
