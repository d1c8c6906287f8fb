package rules

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-io/axon/pkg/types"
)

func TestRoundRobinFairness(t *testing.T) {
	c := New[*types.ServerRule]()
	a := types.NewServerRule("10.0.0.1", 80, types.ProtocolTCP)
	b := types.NewServerRule("10.0.0.2", 80, types.ProtocolTCP)
	d := types.NewServerRule("10.0.0.3", 80, types.ProtocolTCP)
	c.AddAll([]*types.ServerRule{a, b, d})

	done := make(chan struct{})
	defer close(done)
	ch := c.RoundRobin(done)

	seen := make(map[string]int)
	for i := 0; i < 9; i++ {
		rule := <-ch
		seen[rule.Key()]++
	}
	require.Len(t, seen, 3)
	for key, count := range seen {
		assert.Equal(t, 3, count, "key %s should be yielded evenly", key)
	}
}

func TestRoundRobinSurvivesRemovalOfJustYielded(t *testing.T) {
	c := New[*types.ServerRule]()
	a := types.NewServerRule("10.0.0.1", 80, types.ProtocolTCP)
	b := types.NewServerRule("10.0.0.2", 80, types.ProtocolTCP)
	c.AddAll([]*types.ServerRule{a, b})

	done := make(chan struct{})
	defer close(done)
	ch := c.RoundRobin(done)

	first := <-ch
	c.Delete(first)

	second := <-ch
	assert.NotEqual(t, first.Key(), second.Key())

	third := <-ch
	assert.Equal(t, second.Key(), third.Key(), "only one rule remains, must repeat")
}

func TestRoundRobinClosesWhenEmpty(t *testing.T) {
	c := New[*types.ServerRule]()
	done := make(chan struct{})
	defer close(done)
	ch := c.RoundRobin(done)

	_, ok := <-ch
	assert.False(t, ok, "channel must close immediately over an empty collection")
}

func TestConcurrentAddDeleteLeavesConsistentCount(t *testing.T) {
	c := New[*types.ClientRule]()
	const n = 50
	ruleSet := make([]*types.ClientRule, n)
	for i := 0; i < n; i++ {
		ruleSet[i] = types.NewClientRule("10.0.0.1", "10.0.0.2", 9000+i, types.ProtocolTCP, true)
	}

	var wg sync.WaitGroup
	for _, rule := range ruleSet {
		wg.Add(2)
		r := rule
		go func() {
			defer wg.Done()
			c.Add(r)
		}()
		go func() {
			defer wg.Done()
			c.Delete(r)
		}()
	}
	wg.Wait()

	count := c.Count()
	assert.True(t, count == 0 || count == n, "count must settle at 0 or n, got %d", count)
}

func TestAddIsIdempotentByKey(t *testing.T) {
	c := New[*types.ServerRule]()
	a := types.NewServerRule("10.0.0.1", 80, types.ProtocolTCP)
	b := types.NewServerRule("10.0.0.1", 80, types.ProtocolTCP)
	c.Add(a)
	c.Add(b)
	assert.Equal(t, 1, c.Count())
}
