// Package exchange implements the metrics fan-out bus: reporters send
// batches into an Exchange, which buffers per subscriber and dispatches
// each subscriber's buffered batch on its own goroutine once that
// subscriber's buffer interval has elapsed.
package exchange

import (
	"fmt"
	"sync"
	"time"

	"github.com/cloudforge-io/axon/pkg/obsmetrics"
)

// Subscriber receives buffered batches from an Exchange.
type Subscriber interface {
	Handle(messages []any)
}

// DefaultBufferInterval mirrors the original Exchange.attach's
// buffer_interval=30 default.
const DefaultBufferInterval = 30 * time.Second

type subscription struct {
	subscriber     Subscriber
	label          string
	bufferInterval time.Duration
	nextFireTime   time.Time
	queue          []any
}

// Exchange is a named fan-out bus. The zero value is not usable;
// construct with New.
type Exchange struct {
	name string

	msgCh  chan any
	stopCh chan struct{}

	mu          sync.Mutex
	subscribers map[Subscriber]*subscription
}

// New creates and starts an Exchange named name.
func New(name string) *Exchange {
	e := &Exchange{
		name:        name,
		msgCh:       make(chan any, 64),
		stopCh:      make(chan struct{}),
		subscribers: make(map[Subscriber]*subscription),
	}
	go e.run()
	return e
}

// Name returns the exchange's name.
func (e *Exchange) Name() string { return e.name }

// Send enqueues item for delivery to every attached subscriber. Matches
// the original's socketpair-wakeup Send; a buffered Go channel replaces
// the self-pipe trick since a single process doesn't need the
// selector-based multiplexing the original used across exchanges.
func (e *Exchange) Send(item any) {
	select {
	case e.msgCh <- item:
	case <-e.stopCh:
	}
}

// Attach registers sub to receive future Sends, buffered and flushed no
// more often than bufferInterval (DefaultBufferInterval if <= 0).
func (e *Exchange) Attach(sub Subscriber, bufferInterval time.Duration) {
	if bufferInterval <= 0 {
		bufferInterval = DefaultBufferInterval
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers[sub] = &subscription{
		subscriber:     sub,
		label:          fmt.Sprintf("%T", sub),
		bufferInterval: bufferInterval,
		nextFireTime:   time.Now().Add(bufferInterval),
	}
}

// Detach unregisters sub; any buffered-but-undelivered messages for it
// are dropped.
func (e *Exchange) Detach(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.subscribers[sub]; ok {
		obsmetrics.ExchangeQueueDepth.DeleteLabelValues(e.name, s.label)
	}
	delete(e.subscribers, sub)
}

// Stop ends the exchange's dispatch loop.
func (e *Exchange) Stop() {
	close(e.stopCh)
}

func (e *Exchange) run() {
	// The ticker flushes subscribers whose buffer interval elapses while
	// no new message is arriving.
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case item := <-e.msgCh:
			e.receive(item)
		case <-ticker.C:
			e.dispatch()
		case <-e.stopCh:
			return
		}
	}
}

func (e *Exchange) receive(item any) {
	e.mu.Lock()
	for _, sub := range e.subscribers {
		sub.queue = append(sub.queue, item)
		obsmetrics.ExchangeQueueDepth.WithLabelValues(e.name, sub.label).Set(float64(len(sub.queue)))
	}
	e.mu.Unlock()
	e.dispatch()
}

func (e *Exchange) dispatch() {
	now := time.Now()
	e.mu.Lock()
	var fire []*subscription
	for _, sub := range e.subscribers {
		if !now.Before(sub.nextFireTime) && len(sub.queue) > 0 {
			sub.nextFireTime = now.Add(sub.bufferInterval)
			fire = append(fire, &subscription{subscriber: sub.subscriber, label: sub.label, queue: sub.queue})
			sub.queue = nil
			obsmetrics.ExchangeQueueDepth.WithLabelValues(e.name, sub.label).Set(0)
		}
	}
	e.mu.Unlock()

	for _, sub := range fire {
		go sub.subscriber.Handle(sub.queue)
	}
}
