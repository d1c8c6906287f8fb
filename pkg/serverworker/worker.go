// Package serverworker implements the per-process server worker: it
// owns one echoserver.Listener per ServerRule assigned to it by the
// controller and exposes mutation methods over RPC.
package serverworker

import (
	"context"
	"sync"

	"github.com/cloudforge-io/axon/pkg/axonlog"
	"github.com/cloudforge-io/axon/pkg/echoserver"
	"github.com/cloudforge-io/axon/pkg/types"
)

// Worker owns the set of listeners running in this process.
type Worker struct {
	uid string

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	rules     []*types.ServerRule
	listeners map[string]echoserver.Listener
}

// New constructs a Worker identified by uid (the opaque worker ID the
// controller assigned at spawn time).
func New(uid string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		uid:       uid,
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[string]echoserver.Listener),
	}
}

// AddServers starts a listener for every rule not already present.
func (w *Worker) AddServers(rules []*types.ServerRule) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rule := range rules {
		if w.has(rule) {
			continue
		}
		ln, err := echoserver.Start(w.ctx, rule)
		if err != nil {
			axonlog.WithWorkerID(w.uid).Error().Err(err).Str("rule", rule.Key()).Msg("failed to start listener")
			return err
		}
		w.rules = append(w.rules, rule)
		w.listeners[rule.Key()] = ln
	}
	return nil
}

// DeleteServers stops and removes the listener for each rule present.
func (w *Worker) DeleteServers(rules []*types.ServerRule) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rule := range rules {
		w.stopLocked(rule)
	}
	return nil
}

// DeleteAllServers stops and removes every listener this worker owns.
func (w *Worker) DeleteAllServers() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rule := range append([]*types.ServerRule(nil), w.rules...) {
		w.stopLocked(rule)
	}
	return nil
}

func (w *Worker) stopLocked(rule *types.ServerRule) {
	key := rule.Key()
	ln, exists := w.listeners[key]
	if !exists {
		return
	}
	ln.Close()
	delete(w.listeners, key)
	for i, r := range w.rules {
		if r.Key() == key {
			w.rules = append(w.rules[:i], w.rules[i+1:]...)
			break
		}
	}
}

// GetServerCount reports how many rules this worker currently serves.
func (w *Worker) GetServerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.rules)
}

// HasServer reports whether rule is currently served by this worker.
func (w *Worker) HasServer(rule *types.ServerRule) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.has(rule)
}

func (w *Worker) has(rule *types.ServerRule) bool {
	_, exists := w.listeners[rule.Key()]
	return exists
}

// Shutdown stops every listener and cancels the worker's context.
func (w *Worker) Shutdown() error {
	err := w.DeleteAllServers()
	w.cancel()
	return err
}
