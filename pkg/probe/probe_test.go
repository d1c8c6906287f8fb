package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudforge-io/axon/pkg/types"
)

type fakeRecorder struct {
	metrics []types.MetricKey
}

func (f *fakeRecorder) Inc(metric types.MetricKey) {
	f.metrics = append(f.metrics, metric)
}

func TestClassifyMatrix(t *testing.T) {
	cases := []struct {
		name         string
		connected    bool
		allowed      bool
		rawSucceeded bool
		wantSuccess  bool
	}{
		{"connected-allowed-raw-ok", true, true, true, true},
		{"connected-allowed-raw-failed", true, true, false, false},
		{"connected-denied-raw-ok", true, false, true, false},
		{"connected-denied-raw-failed", true, false, false, true},
		{"disconnected-raw-ok-is-failure", false, true, true, false},
		{"disconnected-raw-failed-is-success", false, true, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := Target{Connected: tc.connected, Allowed: tc.allowed}
			assert.Equal(t, tc.wantSuccess, target.Classify(tc.rawSucceeded))
		})
	}
}

func TestRecordEncodesClassifiedOutcome(t *testing.T) {
	rec := &fakeRecorder{}
	target := Target{
		Source:      "10.0.0.1",
		Destination: "10.0.0.2",
		Port:        443,
		Protocol:    types.ProtocolHTTPS,
		Connected:   true,
		Allowed:     true,
	}
	record(rec, target, true)

	want := types.EncodeMetric("10.0.0.1", "10.0.0.2", 443, types.ProtocolHTTPS, true, true)
	assert.Equal(t, []types.MetricKey{want}, rec.metrics)
}

func TestNewReturnsNilForUnknownProtocol(t *testing.T) {
	assert.Nil(t, New(types.Protocol("SCTP")))
	assert.NotNil(t, New(types.ProtocolTCP))
	assert.NotNil(t, New(types.ProtocolUDP))
	assert.NotNil(t, New(types.ProtocolHTTP))
	assert.NotNil(t, New(types.ProtocolHTTPS))
}
