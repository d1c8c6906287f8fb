package exchange

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	mu      sync.Mutex
	batches [][]any
}

func (s *recordingSubscriber) Handle(messages []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, messages)
}

func (s *recordingSubscriber) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func TestExchangeDispatchesAfterBufferInterval(t *testing.T) {
	e := New("test")
	defer e.Stop()

	sub := &recordingSubscriber{}
	e.Attach(sub, 20*time.Millisecond)

	e.Send("hello")
	require.Eventually(t, func() bool { return sub.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDetachStopsDelivery(t *testing.T) {
	e := New("test")
	defer e.Stop()

	sub := &recordingSubscriber{}
	e.Attach(sub, time.Millisecond)
	e.Detach(sub)

	e.Send("hello")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, sub.count())
}

func TestManagerGetOrCreateIsIdempotent(t *testing.T) {
	m := NewManager()
	a := m.GetOrCreate("metrics")
	b := m.GetOrCreate("metrics")
	assert.Same(t, a, b)
	m.Delete("metrics")
}
