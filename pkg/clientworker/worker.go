// Package clientworker implements the per-process client worker: it
// round-robins a Collection of ClientRules, dispatching one probe per
// rule into a bounded pool, and periodically reports a heartbeat.
package clientworker

import (
	"context"
	"sync"
	"time"

	"github.com/cloudforge-io/axon/pkg/axonlog"
	"github.com/cloudforge-io/axon/pkg/metricscache"
	"github.com/cloudforge-io/axon/pkg/probe"
	"github.com/cloudforge-io/axon/pkg/rules"
	"github.com/cloudforge-io/axon/pkg/types"
	"github.com/cloudforge-io/axon/pkg/workerpool"
)

// HeartbeatInterval mirrors the original HeartBeatSender's 5 second
// period.
const HeartbeatInterval = 5 * time.Second

// Heartbeat is one report sent on the worker's heartbeat channel.
type Heartbeat struct {
	WorkerID  string
	Status    string
	RuleCount int
	At        time.Time
}

// Worker owns one rule collection and dispatches traffic against it.
type Worker struct {
	uid         string
	heartbeatCh chan<- Heartbeat

	rules *rules.Collection[*types.ClientRule]
	cache *metricscache.Cache
	pool  *workerpool.Pool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// New constructs a Worker identified by uid. heartbeatCh may be nil if
// the caller doesn't want heartbeats (mainly for tests).
func New(uid string, heartbeatCh chan<- Heartbeat, cache *metricscache.Cache) *Worker {
	pool := workerpool.New(workerpool.DefaultSize)
	pool.SetID(uid)
	return &Worker{
		uid:         uid,
		heartbeatCh: heartbeatCh,
		rules:       rules.New[*types.ClientRule](),
		cache:       cache,
		pool:        pool,
	}
}

// Initialize starts the heartbeat loop. Mirrors RPCServer calling
// handler.initialize() once on startup.
func (w *Worker) Initialize() {
	if w.heartbeatCh != nil {
		go w.heartbeatLoop()
	}
}

func (w *Worker) heartbeatLoop() {
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()
	for range ticker.C {
		select {
		case w.heartbeatCh <- Heartbeat{
			WorkerID:  w.uid,
			Status:    "OK",
			RuleCount: w.rules.Count(),
			At:        time.Now(),
		}:
		default:
			axonlog.WithWorkerID(w.uid).Warn().Msg("heartbeat channel full, dropping report")
		}
	}
}

// AddClients adds rules and, if traffic generation isn't already
// running, starts the dispatch loop.
func (w *Worker) AddClients(clientRules []*types.ClientRule) error {
	w.rules.AddAll(clientRules)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		w.startTrafficLocked()
	}
	return nil
}

func (w *Worker) startTrafficLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.doneCh = make(chan struct{})
	w.running = true
	go w.generateTraffic(ctx, w.doneCh)
}

// generateTraffic runs the dispatch loop until ctx is cancelled or the
// rule collection drains naturally. Either way it must clear running
// atomically with the pool shutdown, mirroring the original's
// _cleanup_states callback clearing _run_event on loop exit, so a later
// AddClients sees !running and restarts the loop instead of leaving it
// stopped forever.
func (w *Worker) generateTraffic(ctx context.Context, doneCh chan struct{}) {
	defer close(doneCh)
	defer w.finishLocked(doneCh)
	defer w.pool.Wait()

	done := ctx.Done()
	for rule := range w.rules.RoundRobin(done) {
		select {
		case <-done:
			return
		default:
		}
		r := rule
		prober := probe.New(r.Protocol)
		if prober == nil {
			axonlog.WithRuleKey(r.Key()).Warn().Msg("invalid protocol, skipping rule")
			continue
		}
		target := probe.Target{
			Source:       r.Source,
			Destination:  r.Destination,
			Port:         r.Port,
			Protocol:     r.Protocol,
			Connected:    true,
			Allowed:      r.Allowed,
			RequestCount: r.RequestCount,
		}
		w.pool.Submit(func() {
			prober.Ping(ctx, target, w.cache)
		})
	}
}

// finishLocked clears running state once generateTraffic has exited,
// but only if doneCh still identifies the generation that's exiting —
// guards against clobbering a newer generation's state.
func (w *Worker) finishLocked(doneCh chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doneCh == doneCh {
		w.running = false
		w.cancel = nil
		w.doneCh = nil
	}
}

// DeleteClients removes each rule from the collection.
func (w *Worker) DeleteClients(clientRules []*types.ClientRule) error {
	for _, rule := range clientRules {
		w.rules.Delete(rule)
	}
	return nil
}

// DeleteAllClients stops the dispatch loop and clears every rule.
func (w *Worker) DeleteAllClients() error {
	w.mu.Lock()
	if w.running {
		w.cancel()
		w.running = false
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	w.rules.Clear()
	return nil
}

// GetRuleCount reports how many rules this worker currently holds.
func (w *Worker) GetRuleCount() int {
	return w.rules.Count()
}

// HasRule reports whether rule is held by this worker.
func (w *Worker) HasRule(rule *types.ClientRule) bool {
	return w.rules.Contains(rule)
}
