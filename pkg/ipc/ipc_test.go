package ipc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-io/axon/pkg/types"
)

type fakeServerWorker struct {
	rules []*types.ServerRule
}

func (f *fakeServerWorker) AddServers(rules []*types.ServerRule) error {
	f.rules = append(f.rules, rules...)
	return nil
}
func (f *fakeServerWorker) DeleteServers(rules []*types.ServerRule) error { return nil }
func (f *fakeServerWorker) DeleteAllServers() error                      { f.rules = nil; return nil }
func (f *fakeServerWorker) GetServerCount() int                          { return len(f.rules) }
func (f *fakeServerWorker) HasServer(rule *types.ServerRule) bool        { return false }

func startTestServer(t *testing.T, rcvr any) string {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "axon_test.sock")
	srv, err := Listen(socket)
	require.NoError(t, err)
	require.NoError(t, srv.Register(rcvr))
	go srv.Serve()
	t.Cleanup(func() { srv.Stop() })
	return socket
}

func TestServerWorkerStubRoundTrip(t *testing.T) {
	worker := &fakeServerWorker{}
	socket := startTestServer(t, NewServerWorkerService(worker))
	stub := NewServerWorkerStub(socket)

	rule := types.NewServerRule("10.0.0.1", 8080, types.ProtocolTCP)
	require.NoError(t, stub.AddServers([]*types.ServerRule{rule}))

	count, err := stub.GetServerCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, stub.DeleteAllServers())
	count, err = stub.GetServerCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestClientCallAgainstStaleSocketErrors(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "does_not_exist.sock")
	client := NewClient(socket)
	var reply Empty
	err := client.Call("ServerWorkerService.DeleteAllServers", Empty{}, &reply)
	assert.Error(t, err)
}

func TestServerStopRemovesSocketFile(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "axon_stop_test.sock")
	srv, err := Listen(socket)
	require.NoError(t, err)
	go srv.Serve()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, srv.Stop())

	_, err = os.Stat(socket)
	assert.True(t, os.IsNotExist(err), "socket file must be removed by Stop")

	statErr := NewClient(socket).Call("NoSuchService.Method", Empty{}, &Empty{})
	assert.Error(t, statErr)
}
