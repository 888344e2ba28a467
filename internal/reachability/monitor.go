// Package reachability tracks whether the remote API can be reached.
//
// A [Monitor] holds a synchronous online/offline belief and notifies
// subscribers once per actual transition. [Prober] derives the belief from
// periodic TCP dials; [Manual] is flipped by hand and is used in tests.
package reachability

import (
	"sync"
)

//go:generate mockgen -source=monitor.go -destination=../mock/monitor_mock.go -package=mock

// Monitor exposes the current connectivity belief.
type Monitor interface {
	// Online returns the current belief without blocking.
	Online() bool

	// Subscribe registers fn to be called with the new belief on every
	// transition. Repeated identical states are not delivered. The returned
	// function removes the subscription and may be called more than once.
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// notifier is the shared transition bookkeeping of every Monitor.
type notifier struct {
	mu     sync.Mutex
	online bool
	subs   map[uint64]func(bool)
	nextID uint64

	// serializes deliveries so subscribers see transitions in order
	emitMu sync.Mutex
}

func newNotifier(online bool) *notifier {
	return &notifier{
		online: online,
		subs:   make(map[uint64]func(bool)),
	}
}

func (n *notifier) Online() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online
}

func (n *notifier) Subscribe(fn func(online bool)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

// set records the new belief and reports whether it changed. Subscribers
// are called on the caller's goroutine only when it did.
func (n *notifier) set(online bool) bool {
	n.emitMu.Lock()
	defer n.emitMu.Unlock()

	n.mu.Lock()
	if n.online == online {
		n.mu.Unlock()
		return false
	}
	n.online = online
	subs := make([]func(bool), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
	return true
}
