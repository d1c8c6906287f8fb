package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerRuleIdentity(t *testing.T) {
	a := NewServerRule("10.0.0.1", 8080, ProtocolHTTP)
	b := NewServerRule("10.0.0.1", 8080, ProtocolHTTP)
	c := NewServerRule("10.0.0.1", 8081, ProtocolHTTP)

	assert.True(t, a.Equal(b), "same triple, different ID, must be equal")
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEqual(t, a.ID, b.ID, "IDs are opaque and independently assigned")
}

func TestClientRuleIdentity(t *testing.T) {
	a := NewClientRule("10.0.0.1", "10.0.0.2", 9000, ProtocolTCP, true)
	b := NewClientRule("10.0.0.1", "10.0.0.2", 9000, ProtocolTCP, true)
	deny := NewClientRule("10.0.0.1", "10.0.0.2", 9000, ProtocolTCP, false)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(deny), "allowed participates in identity")
}

func TestMetricKeyRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		connected bool
		success   bool
	}{
		{"connected-success", true, true},
		{"connected-failure", true, false},
		{"disconnected-success", false, true},
		{"disconnected-failure", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key := EncodeMetric("10.0.0.1", "10.0.0.2", 443, ProtocolHTTPS, tc.connected, tc.success)
			record, success, err := DecodeMetric(key)
			require.NoError(t, err)
			assert.Equal(t, "10.0.0.1", record.Source)
			assert.Equal(t, "10.0.0.2", record.Destination)
			assert.Equal(t, 443, record.Port)
			assert.Equal(t, ProtocolHTTPS, record.Protocol)
			assert.Equal(t, tc.connected, record.Connected)
			assert.Equal(t, tc.success, success)
			assert.Equal(t, tc.success, IsSuccessMetric(key))
		})
	}
}

func TestDecodeMetricMalformed(t *testing.T) {
	_, _, err := DecodeMetric("not-a-metric-key")
	assert.Error(t, err)
}
