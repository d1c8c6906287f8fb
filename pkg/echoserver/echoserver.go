// Package echoserver implements the per-protocol listeners a server
// worker runs: each one echoes back whatever payload a probe sends, so
// the client side can measure round-trip reachability rather than
// application semantics.
package echoserver

import (
	"context"
	"fmt"

	"github.com/cloudforge-io/axon/pkg/types"
)

// Listener is a running echo endpoint for one ServerRule. Close stops
// accepting new connections and waits for in-flight ones to drain.
type Listener interface {
	Close() error
}

// Start opens a Listener for rule.Protocol bound to rule.Endpoint:rule.Port.
// ctx governs the listener's accept loop; cancelling it is equivalent to
// calling Close.
func Start(ctx context.Context, rule *types.ServerRule) (Listener, error) {
	addr := fmt.Sprintf("%s:%d", rule.Endpoint, rule.Port)
	switch rule.Protocol {
	case types.ProtocolTCP:
		return startTCP(ctx, addr)
	case types.ProtocolUDP:
		return startUDP(ctx, addr)
	case types.ProtocolHTTP:
		return startHTTP(ctx, addr, false)
	case types.ProtocolHTTPS:
		return startHTTP(ctx, addr, true)
	default:
		return nil, &types.ProtocolError{Protocol: rule.Protocol, Addr: addr, Detail: "unsupported protocol"}
	}
}
