// Package rules implements the thread-safe ordered multiset of rules
// each worker iterates over in round-robin order.
package rules

import (
	"container/list"
	"sync"
)

// Rule is anything with a stable identity key; ServerRule and ClientRule
// both satisfy it.
type Rule interface {
	Key() string
}

// Collection is an ordered multiset of rules with O(1) membership,
// O(1) rotation, and thread-safe mutation. The zero value is not usable;
// construct with New.
type Collection[R Rule] struct {
	mu     sync.Mutex
	order  *list.List               // elements are R
	byKey  map[string]*list.Element // key -> position in order
	cursor *list.Element            // next element round_robin() will yield
}

// New creates an empty Collection.
func New[R Rule]() *Collection[R] {
	return &Collection[R]{
		order: list.New(),
		byKey: make(map[string]*list.Element),
	}
}

// Add appends rule if absent; no-op if a rule with the same Key is
// already present.
func (c *Collection[R]) Add(rule R) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(rule)
}

// AddAll adds every rule in rules, each independently de-duplicated by Key.
func (c *Collection[R]) AddAll(rules []R) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rule := range rules {
		c.add(rule)
	}
}

func (c *Collection[R]) add(rule R) {
	key := rule.Key()
	if _, exists := c.byKey[key]; exists {
		return
	}
	elem := c.order.PushBack(rule)
	c.byKey[key] = elem
	if c.cursor == nil {
		c.cursor = elem
	}
}

// Delete removes rule by Key equality. ok is false if no such rule was
// present.
func (c *Collection[R]) Delete(rule R) (ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delete(rule.Key())
}

func (c *Collection[R]) delete(key string) bool {
	elem, exists := c.byKey[key]
	if !exists {
		return false
	}
	if c.cursor == elem {
		c.cursor = c.nextAlive(elem)
	}
	c.order.Remove(elem)
	delete(c.byKey, key)
	return true
}

// nextAlive returns the element after elem in ring order, skipping to the
// front once the list is exhausted; it must be called before elem is
// removed from c.order. Returns nil if elem is the only element.
func (c *Collection[R]) nextAlive(elem *list.Element) *list.Element {
	next := elem.Next()
	if next == nil {
		next = c.order.Front()
	}
	if next == elem {
		return nil
	}
	return next
}

// Clear removes every rule.
func (c *Collection[R]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.byKey = make(map[string]*list.Element)
	c.cursor = nil
}

// Count returns the number of rules currently held.
func (c *Collection[R]) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

// Contains reports whether a rule with rule's Key is present.
func (c *Collection[R]) Contains(rule R) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.byKey[rule.Key()]
	return exists
}

// RoundRobin returns a channel that yields rules in round-robin order,
// advancing the cursor by one position after each yield, cycling
// indefinitely while the collection is non-empty. The channel closes once
// the collection becomes empty or done is closed. Concurrent mutation
// between yields is safe, including deletion of the rule just yielded:
// the next yield is re-derived from the live ring rather than a stale
// pointer.
func (c *Collection[R]) RoundRobin(done <-chan struct{}) <-chan R {
	out := make(chan R)
	go func() {
		defer close(out)
		for {
			rule, ok := c.nextRule()
			if !ok {
				return
			}
			select {
			case out <- rule:
			case <-done:
				return
			}
		}
	}()
	return out
}

// nextRule returns the rule at the current cursor and advances the
// cursor to the following live element, wrapping around. ok is false if
// the collection is empty.
func (c *Collection[R]) nextRule() (rule R, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.byKey) == 0 {
		return rule, false
	}
	if c.cursor == nil {
		c.cursor = c.order.Front()
	}
	rule = c.cursor.Value.(R)
	c.cursor = c.nextAlive(c.cursor)
	return rule, true
}
