// Package ipc implements the controller<->worker local RPC transport:
// a net/rpc server listening on a Unix domain socket per worker
// process, the closest stdlib equivalent to the original
// multiprocessing.connection.Listener/Client pickle-framed dispatch
// (see SPEC_FULL.md §3.1).
package ipc

import (
	"net"
	"net/rpc"
	"os"

	"github.com/cloudforge-io/axon/pkg/axonlog"
)

// Server wraps a net/rpc.Server bound to a Unix domain socket.
type Server struct {
	rpcServer *rpc.Server
	listener  net.Listener
	socket    string
	done      chan struct{}
}

// Listen creates a Server bound to socket, removing any stale socket
// file left behind by a previous process.
func Listen(socket string) (*Server, error) {
	os.Remove(socket)
	ln, err := net.Listen("unix", socket)
	if err != nil {
		return nil, err
	}
	return &Server{
		rpcServer: rpc.NewServer(),
		listener:  ln,
		socket:    socket,
		done:      make(chan struct{}),
	}, nil
}

// Register exposes rcvr's methods, following net/rpc's conventions:
// every method must have the signature func(Args, *Reply) error.
func (s *Server) Register(rcvr any) error {
	return s.rpcServer.Register(rcvr)
}

// Serve accepts connections until Stop is called, handling each one on
// its own goroutine. The original dispatches requests in a single
// accept loop per worker process; net/rpc's ServeConn does the
// equivalent per-connection dispatch.
func (s *Server) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				axonlog.Logger.Error().Err(err).Str("socket", s.socket).Msg("rpc accept failed")
				return
			}
		}
		go s.rpcServer.ServeConn(conn)
	}
}

// Stop closes the listener and removes the socket file.
func (s *Server) Stop() error {
	close(s.done)
	err := s.listener.Close()
	os.Remove(s.socket)
	return err
}
