package ipc

import "github.com/cloudforge-io/axon/pkg/types"

// ServerWorkerStub is a typed wrapper over Client for talking to a
// remote ServerWorkerService, so controller code never builds a raw
// "Service.Method" string or an untyped args/reply pair by hand.
type ServerWorkerStub struct {
	client *Client
}

// NewServerWorkerStub returns a stub dialing socket on every call.
func NewServerWorkerStub(socket string) *ServerWorkerStub {
	return &ServerWorkerStub{client: NewClient(socket)}
}

func (s *ServerWorkerStub) AddServers(rules []*types.ServerRule) error {
	var reply Empty
	return s.client.Call("ServerWorkerService.AddServers", ServerRulesArgs{Rules: rules}, &reply)
}

func (s *ServerWorkerStub) DeleteServers(rules []*types.ServerRule) error {
	var reply Empty
	return s.client.Call("ServerWorkerService.DeleteServers", ServerRulesArgs{Rules: rules}, &reply)
}

func (s *ServerWorkerStub) DeleteAllServers() error {
	var reply Empty
	return s.client.Call("ServerWorkerService.DeleteAllServers", Empty{}, &reply)
}

func (s *ServerWorkerStub) GetServerCount() (int, error) {
	var reply int
	err := s.client.Call("ServerWorkerService.GetServerCount", Empty{}, &reply)
	return reply, err
}

// ClientWorkerStub is the client-rule equivalent of ServerWorkerStub.
type ClientWorkerStub struct {
	client *Client
}

// NewClientWorkerStub returns a stub dialing socket on every call.
func NewClientWorkerStub(socket string) *ClientWorkerStub {
	return &ClientWorkerStub{client: NewClient(socket)}
}

func (c *ClientWorkerStub) AddClients(rules []*types.ClientRule) error {
	var reply Empty
	return c.client.Call("ClientWorkerService.AddClients", ClientRulesArgs{Rules: rules}, &reply)
}

func (c *ClientWorkerStub) DeleteClients(rules []*types.ClientRule) error {
	var reply Empty
	return c.client.Call("ClientWorkerService.DeleteClients", ClientRulesArgs{Rules: rules}, &reply)
}

func (c *ClientWorkerStub) DeleteAllClients() error {
	var reply Empty
	return c.client.Call("ClientWorkerService.DeleteAllClients", Empty{}, &reply)
}

func (c *ClientWorkerStub) GetRuleCount() (int, error) {
	var reply int
	err := c.client.Call("ClientWorkerService.GetRuleCount", Empty{}, &reply)
	return reply, err
}
