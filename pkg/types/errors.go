package types

import "fmt"

// TransportError is a socket-level failure on a probe, recovered locally
// with one retry before being surfaced as a failure outcome.
type TransportError struct {
	Protocol Protocol
	Addr     string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("axon: transport error on %s to %s: %v", e.Protocol, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is an HTTP non-200 response (or equivalent protocol-level
// rejection). Same retry policy as TransportError.
type ProtocolError struct {
	Protocol Protocol
	Addr     string
	Detail   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("axon: protocol error on %s to %s: %s", e.Protocol, e.Addr, e.Detail)
}

// RuleConflict indicates a duplicate add (by identity triple). Callers
// should treat this as a no-op, not a failure.
type RuleConflict struct {
	Key string
}

func (e *RuleConflict) Error() string {
	return fmt.Sprintf("axon: rule %s already registered", e.Key)
}

// RuleNotFound indicates a delete/lookup referencing an unknown rule.
type RuleNotFound struct {
	Key string
}

func (e *RuleNotFound) Error() string {
	return fmt.Sprintf("axon: rule %s not found", e.Key)
}

// RPCError wraps a handler-side error so it survives serialization across
// the worker RPC boundary and is re-raised verbatim to the caller.
type RPCError struct {
	Method string
	Err    error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("axon: rpc %s failed: %v", e.Method, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// CapacityError indicates the exchange's internal queue was full when a
// subscriber handler was too slow; the message is dropped for that
// subscriber and the error is logged, never returned to the sender.
type CapacityError struct {
	Subscriber string
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("axon: exchange queue full for subscriber %s, message dropped", e.Subscriber)
}
