// Package controller shards server and client rules across a bounded
// pool of worker processes, tracks rule-to-worker ownership so rules
// can be mutated later without scanning every worker, and routes
// mutation calls to the owning worker over pkg/ipc.
package controller

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudforge-io/axon/pkg/axonlog"
	"github.com/cloudforge-io/axon/pkg/ipc"
	"github.com/cloudforge-io/axon/pkg/obsmetrics"
	"github.com/cloudforge-io/axon/pkg/types"
)

// ServerWorkerCount and ClientWorkerCount are the fixed pool sizes for
// each worker type, mirroring the original's min(2, cpu_count()).
var (
	ServerWorkerCount = minInt(2, runtime.NumCPU())
	ClientWorkerCount = minInt(2, runtime.NumCPU())
)

// heartbeatPollInterval mirrors the original's 5 second heartbeat
// period. A real multiprocessing.Queue lets a child process push a
// heartbeat to its parent; a re-exec'd OS process reached only through
// pkg/ipc has no such channel, so the controller polls GetRuleCount
// over RPC instead of waiting on a push (see DESIGN.md).
const heartbeatPollInterval = 5 * time.Second

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func ceilDiv(n, d int) int {
	if d <= 0 {
		return n
	}
	return int(math.Ceil(float64(n) / float64(d)))
}

// workerContext is one spawned worker's bookkeeping: its RPC stub, its
// OS process handle, and the rule count last observed for it.
type workerContext struct {
	uid        string
	socket     string
	process    *spawnedWorker
	serverStub *ipc.ServerWorkerStub
	clientStub *ipc.ClientWorkerStub
	ruleCount  int
	lastSeen   time.Time
}

// Controller is the in-process coordinator that shards rules across
// worker processes and routes mutation RPCs to the correct one.
type Controller struct {
	runtimeDir string
	opts       Options

	mu              sync.Mutex
	serverWorkers   map[string]*workerContext
	serverOrder     []string
	clientWorkers   map[string]*workerContext
	clientOrder     []string
	serverRuleOwner map[string]*workerContext
	clientRuleOwner map[string]*workerContext
	heartbeatStopCh chan struct{}
}

// Options configures how spawned client workers should report their
// traffic metrics, since each runs in its own OS process and cannot
// share the controller's in-process exchange.Manager.
type Options struct {
	StoreDSN          string
	TelemetryEndpoint string
	ReportInterval    time.Duration
	BufferInterval    time.Duration
}

// New constructs a Controller whose spawned workers listen on Unix
// domain sockets under runtimeDir.
func New(runtimeDir string, opts Options) *Controller {
	c := &Controller{
		runtimeDir:      runtimeDir,
		opts:            opts,
		serverWorkers:   make(map[string]*workerContext),
		clientWorkers:   make(map[string]*workerContext),
		serverRuleOwner: make(map[string]*workerContext),
		clientRuleOwner: make(map[string]*workerContext),
		heartbeatStopCh: make(chan struct{}),
	}
	go c.heartbeatLoop()
	return c
}

// clientWorkerArgs builds the extra flags passed to a spawned client
// worker so it can stand up its own exchange/subscriber chain.
func (c *Controller) clientWorkerArgs() []string {
	var args []string
	if c.opts.StoreDSN != "" {
		args = append(args, "--store-dsn", c.opts.StoreDSN)
	}
	if c.opts.TelemetryEndpoint != "" {
		args = append(args, "--telemetry-endpoint", c.opts.TelemetryEndpoint)
	}
	if c.opts.ReportInterval > 0 {
		args = append(args, "--report-interval", c.opts.ReportInterval.String())
	}
	if c.opts.BufferInterval > 0 {
		args = append(args, "--buffer-interval", c.opts.BufferInterval.String())
	}
	return args
}

func (c *Controller) heartbeatLoop() {
	ticker := time.NewTicker(heartbeatPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.pollHeartbeats()
		case <-c.heartbeatStopCh:
			return
		}
	}
}

func (c *Controller) pollHeartbeats() {
	c.mu.Lock()
	contexts := make([]*workerContext, 0, len(c.clientWorkers))
	for _, ctx := range c.clientWorkers {
		contexts = append(contexts, ctx)
	}
	c.mu.Unlock()

	for _, ctx := range contexts {
		count, err := ctx.clientStub.GetRuleCount()
		if err != nil {
			obsmetrics.WorkerHeartbeatsMissed.WithLabelValues(ctx.uid).Inc()
			axonlog.WithWorkerID(ctx.uid).Warn().Err(err).Msg("missed heartbeat poll")
			continue
		}
		c.mu.Lock()
		ctx.ruleCount = count
		ctx.lastSeen = time.Now()
		c.mu.Unlock()
	}
}

// StartServers starts listeners for any rule in rules not already
// owned by a worker, sharding the unowned subset across the fixed
// server worker pool.
func (c *Controller) StartServers(rules []*types.ServerRule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	newRules := make([]*types.ServerRule, 0, len(rules))
	for _, r := range rules {
		if _, owned := c.serverRuleOwner[r.ID]; !owned {
			newRules = append(newRules, r)
		}
	}
	if len(newRules) == 0 {
		return nil
	}

	timer := obsmetrics.NewTimer()
	defer timer.ObserveDuration(obsmetrics.ShardingDuration)

	current := len(c.serverOrder)
	perWorker := ceilDiv(len(newRules), ServerWorkerCount)
	if current > 0 && current == ServerWorkerCount {
		return c.addRulesToExistingServerWorkers(newRules, perWorker)
	}
	return c.createServerWorkersAndAddRules(newRules, ServerWorkerCount-current, perWorker)
}

func (c *Controller) addRulesToExistingServerWorkers(newRules []*types.ServerRule, perWorker int) error {
	for i, uid := range c.serverOrder {
		slice := sliceFor(newRules, i, perWorker)
		if len(slice) == 0 {
			continue
		}
		ctx := c.serverWorkers[uid]
		if err := callRPC("AddServers", func() error { return ctx.serverStub.AddServers(slice) }); err != nil {
			axonlog.WithWorkerID(uid).Error().Err(err).Msg("add_servers rpc failed")
			continue
		}
		for _, r := range slice {
			c.serverRuleOwner[r.ID] = ctx
		}
		ctx.ruleCount += len(slice)
	}
	return nil
}

func (c *Controller) createServerWorkersAndAddRules(newRules []*types.ServerRule, toCreate, perWorker int) error {
	for i := 0; i < toCreate; i++ {
		slice := sliceFor(newRules, i, perWorker)
		if len(slice) == 0 {
			break
		}
		uid := uuid.New().String()
		proc, err := spawnWorker("server", uid, c.runtimeDir)
		if err != nil {
			axonlog.Logger.Error().Err(err).Str("uid", uid).Msg("failed to spawn server worker")
			continue
		}
		obsmetrics.WorkersSpawnedTotal.Inc()

		stub := ipc.NewServerWorkerStub(proc.socket)
		if err := callRPC("AddServers", func() error { return stub.AddServers(slice) }); err != nil {
			axonlog.WithWorkerID(uid).Error().Err(err).Msg("add_servers rpc failed on new worker")
			proc.stop()
			continue
		}

		ctx := &workerContext{uid: uid, socket: proc.socket, process: proc, serverStub: stub, ruleCount: len(slice)}
		c.serverWorkers[uid] = ctx
		c.serverOrder = append(c.serverOrder, uid)
		for _, r := range slice {
			c.serverRuleOwner[r.ID] = ctx
		}
	}
	return nil
}

// StopServers stops the given rules on whichever worker owns them.
func (c *Controller) StopServers(rules []*types.ServerRule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	byWorker := make(map[string][]*types.ServerRule)
	for _, r := range rules {
		ctx, owned := c.serverRuleOwner[r.ID]
		if !owned {
			continue
		}
		byWorker[ctx.uid] = append(byWorker[ctx.uid], r)
	}

	for uid, slice := range byWorker {
		ctx := c.serverWorkers[uid]
		if err := callRPC("DeleteServers", func() error { return ctx.serverStub.DeleteServers(slice) }); err != nil {
			axonlog.WithWorkerID(uid).Error().Err(err).Msg("delete_servers rpc failed")
			continue
		}
		for _, r := range slice {
			delete(c.serverRuleOwner, r.ID)
		}
		ctx.ruleCount -= len(slice)
	}
	return nil
}

// StopAllServers stops every server worker process and clears the
// server-side registries.
func (c *Controller) StopAllServers() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, uid := range c.serverOrder {
		ctx := c.serverWorkers[uid]
		if err := callRPC("DeleteAllServers", ctx.serverStub.DeleteAllServers); err != nil {
			axonlog.WithWorkerID(uid).Warn().Err(err).Msg("delete_all_servers rpc failed, terminating anyway")
		}
		ctx.process.stop()
	}
	c.serverWorkers = make(map[string]*workerContext)
	c.serverOrder = nil
	c.serverRuleOwner = make(map[string]*workerContext)
	return nil
}

// GetServers reports how many rules each server worker currently
// serves, keyed by worker UID. Supplemental read-only introspection
// (original controller.py's get_servers()).
func (c *Controller) GetServers() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.serverOrder))
	for _, uid := range c.serverOrder {
		out[uid] = c.serverWorkers[uid].ruleCount
	}
	return out
}

// StartClients is the client-rule mirror of StartServers.
func (c *Controller) StartClients(rules []*types.ClientRule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	newRules := make([]*types.ClientRule, 0, len(rules))
	for _, r := range rules {
		if _, owned := c.clientRuleOwner[r.ID]; !owned {
			newRules = append(newRules, r)
		}
	}
	if len(newRules) == 0 {
		return nil
	}

	timer := obsmetrics.NewTimer()
	defer timer.ObserveDuration(obsmetrics.ShardingDuration)

	current := len(c.clientOrder)
	perWorker := ceilDiv(len(newRules), ClientWorkerCount)
	if current > 0 && current == ClientWorkerCount {
		return c.addRulesToExistingClientWorkers(newRules, perWorker)
	}
	return c.createClientWorkersAndAddRules(newRules, ClientWorkerCount-current, perWorker)
}

func (c *Controller) addRulesToExistingClientWorkers(newRules []*types.ClientRule, perWorker int) error {
	for i, uid := range c.clientOrder {
		slice := sliceFor(newRules, i, perWorker)
		if len(slice) == 0 {
			continue
		}
		ctx := c.clientWorkers[uid]
		if err := callRPC("AddClients", func() error { return ctx.clientStub.AddClients(slice) }); err != nil {
			axonlog.WithWorkerID(uid).Error().Err(err).Msg("add_clients rpc failed")
			continue
		}
		for _, r := range slice {
			c.clientRuleOwner[r.ID] = ctx
		}
		ctx.ruleCount += len(slice)
	}
	return nil
}

func (c *Controller) createClientWorkersAndAddRules(newRules []*types.ClientRule, toCreate, perWorker int) error {
	for i := 0; i < toCreate; i++ {
		slice := sliceFor(newRules, i, perWorker)
		if len(slice) == 0 {
			break
		}
		uid := uuid.New().String()
		proc, err := spawnWorker("client", uid, c.runtimeDir, c.clientWorkerArgs()...)
		if err != nil {
			axonlog.Logger.Error().Err(err).Str("uid", uid).Msg("failed to spawn client worker")
			continue
		}
		obsmetrics.WorkersSpawnedTotal.Inc()

		stub := ipc.NewClientWorkerStub(proc.socket)
		if err := callRPC("AddClients", func() error { return stub.AddClients(slice) }); err != nil {
			axonlog.WithWorkerID(uid).Error().Err(err).Msg("add_clients rpc failed on new worker")
			proc.stop()
			continue
		}

		ctx := &workerContext{uid: uid, socket: proc.socket, process: proc, clientStub: stub, ruleCount: len(slice)}
		c.clientWorkers[uid] = ctx
		c.clientOrder = append(c.clientOrder, uid)
		for _, r := range slice {
			c.clientRuleOwner[r.ID] = ctx
		}
	}
	return nil
}

// StopClients stops the given rules on whichever worker owns them.
func (c *Controller) StopClients(rules []*types.ClientRule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	byWorker := make(map[string][]*types.ClientRule)
	for _, r := range rules {
		ctx, owned := c.clientRuleOwner[r.ID]
		if !owned {
			continue
		}
		byWorker[ctx.uid] = append(byWorker[ctx.uid], r)
	}

	for uid, slice := range byWorker {
		ctx := c.clientWorkers[uid]
		if err := callRPC("DeleteClients", func() error { return ctx.clientStub.DeleteClients(slice) }); err != nil {
			axonlog.WithWorkerID(uid).Error().Err(err).Msg("delete_clients rpc failed")
			continue
		}
		for _, r := range slice {
			delete(c.clientRuleOwner, r.ID)
		}
		ctx.ruleCount -= len(slice)
	}
	return nil
}

// StopAllClients stops every client worker process and clears the
// client-side registries.
func (c *Controller) StopAllClients() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, uid := range c.clientOrder {
		ctx := c.clientWorkers[uid]
		if err := callRPC("DeleteAllClients", ctx.clientStub.DeleteAllClients); err != nil {
			axonlog.WithWorkerID(uid).Warn().Err(err).Msg("delete_all_clients rpc failed, terminating anyway")
		}
		ctx.process.stop()
	}
	c.clientWorkers = make(map[string]*workerContext)
	c.clientOrder = nil
	c.clientRuleOwner = make(map[string]*workerContext)
	return nil
}

// GetClientRules reports how many rules each client worker currently
// holds, keyed by worker UID (original controller.py's
// get_client_rules()).
func (c *Controller) GetClientRules() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.clientOrder))
	for _, uid := range c.clientOrder {
		out[uid] = c.clientWorkers[uid].ruleCount
	}
	return out
}

// Shutdown stops every client and server worker. Unlike the original
// TrafficApp.shutdown (stop_clients() followed by start_servers(), a
// bug), this stops both kinds and restarts neither.
func (c *Controller) Shutdown() error {
	close(c.heartbeatStopCh)
	clientErr := c.StopAllClients()
	serverErr := c.StopAllServers()
	if clientErr != nil {
		return clientErr
	}
	return serverErr
}

// ClientWorkerStats implements obsmetrics.ControllerStats.
func (c *Controller) ClientWorkerStats() []obsmetrics.WorkerStat {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := make([]obsmetrics.WorkerStat, 0, len(c.clientOrder))
	for _, uid := range c.clientOrder {
		stats = append(stats, obsmetrics.WorkerStat{WorkerID: uid, RuleCount: c.clientWorkers[uid].ruleCount})
	}
	return stats
}

// ServerWorkerStats implements obsmetrics.ControllerStats.
func (c *Controller) ServerWorkerStats() []obsmetrics.WorkerStat {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := make([]obsmetrics.WorkerStat, 0, len(c.serverOrder))
	for _, uid := range c.serverOrder {
		stats = append(stats, obsmetrics.WorkerStat{WorkerID: uid, RuleCount: c.serverWorkers[uid].ruleCount})
	}
	return stats
}

func sliceFor[T any](rules []T, index, perWorker int) []T {
	start := perWorker * index
	if start >= len(rules) {
		return nil
	}
	end := start + perWorker
	if end > len(rules) {
		end = len(rules)
	}
	return rules[start:end]
}

func callRPC(method string, fn func() error) error {
	timer := obsmetrics.NewTimer()
	err := fn()
	timer.ObserveDurationVec(obsmetrics.RPCCallDuration, method)
	status := "ok"
	if err != nil {
		status = "error"
	}
	obsmetrics.RPCCallsTotal.WithLabelValues(method, status).Inc()
	if err != nil {
		return fmt.Errorf("controller: %s: %w", method, err)
	}
	return nil
}
