package controller

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// workerSpawnTimeout bounds how long we wait for a freshly exec'd
// worker to bind its RPC socket before giving up.
const workerSpawnTimeout = 5 * time.Second

// workerStopGrace mirrors RPCServer.stop's half-second pause between
// closing the listener and terminating the process.
const workerStopGrace = 500 * time.Millisecond

// spawnedWorker is a worker process started by re-execing this binary
// with a hidden internal subcommand, standing in for the original's
// multiprocessing.Process fork of an RPCServer(handler).
type spawnedWorker struct {
	cmd    *exec.Cmd
	socket string
}

// spawnWorker re-execs the current binary as "__<kind>-worker --uid
// uid --socket <path under runtimeDir>" and blocks until the worker has
// bound its RPC socket.
func spawnWorker(kind, uid, runtimeDir string, extraArgs ...string) (*spawnedWorker, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("controller: resolve self executable: %w", err)
	}

	socket := filepath.Join(runtimeDir, fmt.Sprintf("axon_%s_%s.sock", kind, uid))
	subcommand := "__server-worker"
	if kind == "client" {
		subcommand = "__client-worker"
	}

	args := append([]string{subcommand, "--uid", uid, "--socket", socket}, extraArgs...)
	cmd := exec.Command(self, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("controller: spawn %s worker: %w", kind, err)
	}

	if err := waitForSocket(socket, workerSpawnTimeout); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}
	return &spawnedWorker{cmd: cmd, socket: socket}, nil
}

func waitForSocket(socket string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socket); err == nil {
			return nil
		}
		time.Sleep(25 * time.Millisecond)
	}
	return fmt.Errorf("controller: timed out waiting for worker socket %s", socket)
}

// stop mirrors RPCServer.stop: give the worker a brief grace period
// after requesting shutdown over RPC, then terminate it outright.
func (w *spawnedWorker) stop() {
	_ = w.cmd.Process.Signal(syscall.SIGTERM)
	time.Sleep(workerStopGrace)
	_ = w.cmd.Process.Kill()
	_, _ = w.cmd.Process.Wait()
	os.Remove(w.socket)
}
