package workerpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := New(2)
	var current, max int32

	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			n := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&max)
				if n <= old || atomic.CompareAndSwapInt32(&max, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
		})
	}
	pool.Wait()

	assert.LessOrEqual(t, int(atomic.LoadInt32(&max)), 2)
}

func TestPoolDefaultSize(t *testing.T) {
	pool := New(0)
	assert.Equal(t, DefaultSize, cap(pool.sem))
}
