package store

import "sync"

// Notifier fans holdings change events out to per-user subscribers.
// It is the in-process rendition of a per-user realtime channel: the
// gorm store publishes after every committed write, so a change made in
// one session is observed by every other session of the same user.
type Notifier struct {
	mu   sync.RWMutex
	next uint64
	subs map[string]map[uint64]func(Change)
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[uint64]func(Change))}
}

// Subscribe registers fn for changes to userID's holdings and returns an
// unsubscribe function. Unsubscribing more than once is harmless.
func (n *Notifier) Subscribe(userID string, fn func(Change)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.next++
	id := n.next
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[uint64]func(Change))
	}
	n.subs[userID][id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if m, ok := n.subs[userID]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(n.subs, userID)
			}
		}
	}
}

// Publish delivers c to every subscriber of c.UserID. Callbacks are
// invoked synchronously, outside the notifier lock.
func (n *Notifier) Publish(c Change) {
	n.mu.RLock()
	fns := make([]func(Change), 0, len(n.subs[c.UserID]))
	for _, fn := range n.subs[c.UserID] {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
