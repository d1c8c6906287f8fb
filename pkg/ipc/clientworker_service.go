package ipc

import "github.com/cloudforge-io/axon/pkg/types"

// clientWorker is the subset of clientworker.Worker the RPC service
// needs, kept local for the same reason as serverWorker in
// serverworker_service.go.
type clientWorker interface {
	AddClients(rules []*types.ClientRule) error
	DeleteClients(rules []*types.ClientRule) error
	DeleteAllClients() error
	GetRuleCount() int
	HasRule(rule *types.ClientRule) bool
}

// ClientWorkerService exposes a clientworker.Worker's mutation methods
// over net/rpc.
type ClientWorkerService struct {
	worker clientWorker
}

// NewClientWorkerService wraps worker for registration via
// Server.Register. The registered name is "ClientWorkerService".
func NewClientWorkerService(worker clientWorker) *ClientWorkerService {
	return &ClientWorkerService{worker: worker}
}

// ClientRulesArgs carries a batch of client rules.
type ClientRulesArgs struct {
	Rules []*types.ClientRule
}

func (c *ClientWorkerService) AddClients(args ClientRulesArgs, reply *Empty) error {
	return c.worker.AddClients(args.Rules)
}

func (c *ClientWorkerService) DeleteClients(args ClientRulesArgs, reply *Empty) error {
	return c.worker.DeleteClients(args.Rules)
}

func (c *ClientWorkerService) DeleteAllClients(args Empty, reply *Empty) error {
	return c.worker.DeleteAllClients()
}

func (c *ClientWorkerService) GetRuleCount(args Empty, reply *int) error {
	*reply = c.worker.GetRuleCount()
	return nil
}

func (c *ClientWorkerService) HasRule(args *types.ClientRule, reply *bool) error {
	*reply = c.worker.HasRule(args)
	return nil
}
