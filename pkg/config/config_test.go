package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
apiVersion: axon/v1
kind: TrafficPlan
metadata:
  name: demo
spec:
  servers:
    - endpoint: 0.0.0.0
      port: 8080
      protocol: TCP
  clients:
    - source: 10.0.0.1
      destination: 10.0.0.2
      port: 8080
      protocol: TCP
      allowed: true
      requestCount: 5
  reportInterval: 30s
  subscribers:
    - kind: telemetry
      endpoint: http://localhost:2878
      source: axon-host
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesManifest(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, "demo", m.Metadata.Name)
	require.Len(t, m.Spec.Servers, 1)
	require.Len(t, m.Spec.Clients, 1)
	assert.Equal(t, "http://localhost:2878", m.Spec.Subscribers[0].Endpoint)
}

func TestServerRulesRejectsInvalidProtocol(t *testing.T) {
	m, err := Load(writeManifest(t, `
apiVersion: axon/v1
kind: TrafficPlan
metadata:
  name: bad
spec:
  servers:
    - endpoint: 0.0.0.0
      port: 80
      protocol: FTP
`))
	require.NoError(t, err)
	_, err = m.ServerRules()
	assert.Error(t, err)
}

func TestClientRulesDefaultsRequestCount(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)
	rules, err := m.ClientRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 5, rules[0].RequestCount)

	m, err = Load(writeManifest(t, `
apiVersion: axon/v1
kind: TrafficPlan
metadata:
  name: default-count
spec:
  clients:
    - source: 10.0.0.1
      destination: 10.0.0.2
      port: 8080
      protocol: TCP
      allowed: true
`))
	require.NoError(t, err)
	rules, err = m.ClientRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 1, rules[0].RequestCount)
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	_, err := Load(writeManifest(t, "apiVersion: axon/v1\nkind: Bogus\n"))
	assert.Error(t, err)
}
