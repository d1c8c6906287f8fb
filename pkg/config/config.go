// Package config parses the declarative rule manifest axonctl applies
// at startup: a YAML document naming the endpoints this host should
// serve and probe, plus where the exchange should send aggregated
// results.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cloudforge-io/axon/pkg/types"
)

// ServerRuleSpec is one entry under spec.servers.
type ServerRuleSpec struct {
	Endpoint string `yaml:"endpoint"`
	Port     int    `yaml:"port"`
	Protocol string `yaml:"protocol"`
}

// ClientRuleSpec is one entry under spec.clients.
type ClientRuleSpec struct {
	Source       string `yaml:"source"`
	Destination  string `yaml:"destination"`
	Port         int    `yaml:"port"`
	Protocol     string `yaml:"protocol"`
	Allowed      bool   `yaml:"allowed"`
	RequestCount int    `yaml:"requestCount,omitempty"`
}

// SubscriberSpec configures one exchange subscriber.
type SubscriberSpec struct {
	Kind           string            `yaml:"kind"` // "sql" or "telemetry"
	DSN            string            `yaml:"dsn,omitempty"`
	Endpoint       string            `yaml:"endpoint,omitempty"`
	Source         string            `yaml:"source,omitempty"`
	Tags           map[string]string `yaml:"tags,omitempty"`
	BufferInterval time.Duration     `yaml:"bufferInterval,omitempty"`
}

// ResourceMetadata names the resource being declared, mirroring the
// teacher's apply.go manifest shape.
type ResourceMetadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// Spec is the manifest body: the rule sets this controller should
// converge to plus the exchange/reporting configuration.
type Spec struct {
	Servers        []ServerRuleSpec `yaml:"servers,omitempty"`
	Clients        []ClientRuleSpec `yaml:"clients,omitempty"`
	Subscribers    []SubscriberSpec `yaml:"subscribers,omitempty"`
	ReportInterval time.Duration    `yaml:"reportInterval,omitempty"`
	MetricsAddr    string           `yaml:"metricsAddr,omitempty"`
}

// Manifest is the top-level YAML document, modeled on apply.go's
// WarrenResource (apiVersion/kind/metadata/spec).
type Manifest struct {
	APIVersion string           `yaml:"apiVersion"`
	Kind       string           `yaml:"kind"`
	Metadata   ResourceMetadata `yaml:"metadata"`
	Spec       Spec             `yaml:"spec"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if m.Kind != "" && m.Kind != "TrafficPlan" {
		return nil, fmt.Errorf("config: unsupported resource kind %q", m.Kind)
	}
	return &m, nil
}

// ServerRules converts the manifest's server entries into typed rules.
func (m *Manifest) ServerRules() ([]*types.ServerRule, error) {
	rules := make([]*types.ServerRule, 0, len(m.Spec.Servers))
	for _, s := range m.Spec.Servers {
		proto := types.Protocol(s.Protocol)
		if !proto.Valid() {
			return nil, fmt.Errorf("config: server rule %s:%d has invalid protocol %q", s.Endpoint, s.Port, s.Protocol)
		}
		rules = append(rules, types.NewServerRule(s.Endpoint, s.Port, proto))
	}
	return rules, nil
}

// ClientRules converts the manifest's client entries into typed rules.
func (m *Manifest) ClientRules() ([]*types.ClientRule, error) {
	rules := make([]*types.ClientRule, 0, len(m.Spec.Clients))
	for _, s := range m.Spec.Clients {
		proto := types.Protocol(s.Protocol)
		if !proto.Valid() {
			return nil, fmt.Errorf("config: client rule %s->%s:%d has invalid protocol %q", s.Source, s.Destination, s.Port, s.Protocol)
		}
		rule := types.NewClientRule(s.Source, s.Destination, s.Port, proto, s.Allowed)
		if s.RequestCount > 0 {
			rule.RequestCount = s.RequestCount
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
