// Package workerpool implements a bounded-concurrency task pool used by
// client workers to dispatch probes without unbounded goroutine growth.
package workerpool

import (
	"sync"

	"github.com/cloudforge-io/axon/pkg/obsmetrics"
)

// DefaultSize mirrors the original implementation's
// BoundedThreadPoolExecutor(max_workers=10).
const DefaultSize = 10

// Pool runs submitted functions on at most Size concurrent goroutines.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
	id  string
}

// New creates a Pool that admits at most size concurrent tasks. size<=0
// is treated as DefaultSize.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// SetID labels this pool's saturation gauge, typically with the owning
// worker's uid. Safe to call once before the pool is used.
func (p *Pool) SetID(id string) {
	p.id = id
}

func (p *Pool) reportSaturation() {
	if p.id == "" {
		return
	}
	obsmetrics.DispatchPoolSaturation.WithLabelValues(p.id).Set(float64(len(p.sem)) / float64(cap(p.sem)))
}

// Submit blocks until a slot is free, then runs fn on a new goroutine.
// Wait returns once every submitted fn has returned.
func (p *Pool) Submit(fn func()) {
	p.sem <- struct{}{}
	p.reportSaturation()
	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.reportSaturation()
			p.wg.Done()
		}()
		fn()
	}()
}

// Wait blocks until every task submitted so far has completed.
func (p *Pool) Wait() {
	p.wg.Wait()
}
