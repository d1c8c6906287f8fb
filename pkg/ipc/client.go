package ipc

import (
	"net/rpc"
)

// Client calls a Server's registered methods over a Unix domain
// socket. Mirroring the original RPCClient, each Call dials a fresh
// connection rather than holding one open, since a worker's socket
// only needs to serve the occasional controller request.
type Client struct {
	socket string
}

// NewClient returns a Client targeting socket. The socket is not dialed
// until the first Call.
func NewClient(socket string) *Client {
	return &Client{socket: socket}
}

// Call invokes method with args, unmarshaling the result into reply.
// method must match a "Service.Method" name registered via
// Server.Register.
func (c *Client) Call(method string, args, reply any) error {
	conn, err := rpc.Dial("unix", c.socket)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.Call(method, args, reply)
}
