package types

import (
	"fmt"

	"github.com/google/uuid"
)

// ServerRule declares a single protocol endpoint this host should listen on.
//
// Identity for equality/hashing is the (Endpoint, Port, Protocol) triple;
// ID is an opaque token assigned at creation and plays no role in equality.
type ServerRule struct {
	ID       string
	Endpoint string
	Port     int
	Protocol Protocol
	Enabled  bool
}

// NewServerRule constructs a ServerRule with a fresh ID and Enabled=true.
func NewServerRule(endpoint string, port int, protocol Protocol) *ServerRule {
	return &ServerRule{
		ID:       uuid.New().String(),
		Endpoint: endpoint,
		Port:     port,
		Protocol: protocol,
		Enabled:  true,
	}
}

// Key returns the canonical identity string used for registry lookups and
// equality/hash comparisons: "server:<endpoint>:<port>:<protocol>".
func (r *ServerRule) Key() string {
	return fmt.Sprintf("server:%s:%d:%s", r.Endpoint, r.Port, r.Protocol)
}

// Equal reports whether r and other share the same identity triple.
func (r *ServerRule) Equal(other *ServerRule) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Endpoint == other.Endpoint && r.Port == other.Port && r.Protocol == other.Protocol
}

// ClientRule declares a single probe this host should continuously run
// against a remote destination.
//
// Identity for equality/hashing is (Source, Destination, Port, Protocol,
// Allowed); ID is an opaque token assigned at creation.
type ClientRule struct {
	ID           string
	Source       string
	Destination  string
	Port         int
	Protocol     Protocol
	Allowed      bool
	Enabled      bool
	RequestCount int
}

// NewClientRule constructs a ClientRule with a fresh ID, Enabled=true and
// RequestCount=1.
func NewClientRule(source, destination string, port int, protocol Protocol, allowed bool) *ClientRule {
	return &ClientRule{
		ID:           uuid.New().String(),
		Source:       source,
		Destination:  destination,
		Port:         port,
		Protocol:     protocol,
		Allowed:      allowed,
		Enabled:      true,
		RequestCount: 1,
	}
}

// Key returns the canonical identity string:
// "client:<source>:<destination>:<port>:<protocol>:<allowed>".
func (r *ClientRule) Key() string {
	return fmt.Sprintf("client:%s:%s:%d:%s:%t", r.Source, r.Destination, r.Port, r.Protocol, r.Allowed)
}

// Equal reports whether r and other share the same identity 5-tuple.
func (r *ClientRule) Equal(other *ClientRule) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Source == other.Source &&
		r.Destination == other.Destination &&
		r.Port == other.Port &&
		r.Protocol == other.Protocol &&
		r.Allowed == other.Allowed
}
