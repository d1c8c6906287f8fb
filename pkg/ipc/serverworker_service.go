package ipc

import "github.com/cloudforge-io/axon/pkg/types"

// serverWorker is the subset of serverworker.Worker the RPC service
// needs. Declared locally so pkg/ipc never imports pkg/serverworker,
// matching the original's untyped RPCServer(handler) dispatch while
// still giving Go callers compile-time checked signatures.
type serverWorker interface {
	AddServers(rules []*types.ServerRule) error
	DeleteServers(rules []*types.ServerRule) error
	DeleteAllServers() error
	GetServerCount() int
	HasServer(rule *types.ServerRule) bool
}

// ServerWorkerService exposes a serverworker.Worker's mutation methods
// over net/rpc. Every method follows the func(Args, *Reply) error shape
// net/rpc requires.
type ServerWorkerService struct {
	worker serverWorker
}

// NewServerWorkerService wraps worker for registration via
// Server.Register. The registered name is "ServerWorkerService".
func NewServerWorkerService(worker serverWorker) *ServerWorkerService {
	return &ServerWorkerService{worker: worker}
}

// ServerRulesArgs carries a batch of server rules, the argument shape
// shared by AddServers and DeleteServers.
type ServerRulesArgs struct {
	Rules []*types.ServerRule
}

// Empty is a reply with nothing to report; net/rpc still requires a
// pointer argument even when the method has no result.
type Empty struct{}

func (s *ServerWorkerService) AddServers(args ServerRulesArgs, reply *Empty) error {
	return s.worker.AddServers(args.Rules)
}

func (s *ServerWorkerService) DeleteServers(args ServerRulesArgs, reply *Empty) error {
	return s.worker.DeleteServers(args.Rules)
}

func (s *ServerWorkerService) DeleteAllServers(args Empty, reply *Empty) error {
	return s.worker.DeleteAllServers()
}

func (s *ServerWorkerService) GetServerCount(args Empty, reply *int) error {
	*reply = s.worker.GetServerCount()
	return nil
}

func (s *ServerWorkerService) HasServer(args *types.ServerRule, reply *bool) error {
	*reply = s.worker.HasServer(args)
	return nil
}
