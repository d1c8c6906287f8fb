// Package store implements the relational persistence layer for rules
// and traffic records: the external, gorm-backed realization of the
// "rule/record store" the dispatch layer treats as an interface.
package store

import "github.com/cloudforge-io/axon/pkg/types"

// ServerFilter narrows a GetServers query; a nil field means "don't
// filter on this column", matching rules_store.py's optional kwargs.
type ServerFilter struct {
	Endpoint *string
	Port     *int
	Protocol *types.Protocol
	Enabled  *bool
}

// ClientFilter narrows a GetClients query.
type ClientFilter struct {
	Source      *string
	Destination *string
	Port        *int
	Protocol    *types.Protocol
	Enabled     *bool
	Allowed     *bool
}

// RecordFilter narrows a GetRecords query over a reporting window.
type RecordFilter struct {
	Source      *string
	Destination *string
	Port        *int
	Protocol    *types.Protocol
}

// RuleStore is the CRUD contract for ServerRule/ClientRule persistence.
type RuleStore interface {
	AddServer(rule *types.ServerRule) error
	AddServerBatch(rules []*types.ServerRule) error
	GetServers(filter ServerFilter) ([]*types.ServerRule, error)
	DeleteServers(filter ServerFilter) error
	DeleteAllServers() error
	SetServerEnabled(id string, enabled bool) error

	AddClient(rule *types.ClientRule) error
	AddClientBatch(rules []*types.ClientRule) error
	GetClients(filter ClientFilter) ([]*types.ClientRule, error)
	DeleteClients(filter ClientFilter) error
	DeleteAllClients() error
	SetClientEnabled(id string, enabled bool) error
	SetClientAllowed(id string, allowed bool) error
	IncrementRequestCount(id string, delta int) error
}

// RecordStore is the write/read contract for aggregated TrafficRecords.
type RecordStore interface {
	AddRecordsBatch(records []*types.TrafficRecord) error
	GetRecords(filter RecordFilter) ([]*types.TrafficRecord, error)
	// SumWindow returns the total success/failure counts across every
	// record matching filter whose CreatedAt falls within [since, until),
	// both given as Unix seconds.
	SumWindow(filter RecordFilter, since, until int64) (successTotal, failureTotal int64, err error)
}
