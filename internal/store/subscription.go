package store

import "sync"

// Subscription delivers a signal on Updates after every state change. Signals coalesce:
// a slow reader sees one pending signal, then reads the latest Snapshot.
type Subscription struct {
	store *Store
	ch    chan struct{}
	once  sync.Once
}

// Subscribe registers a new subscription. Release it with Cancel.
func (s *Store) Subscribe() *Subscription {
	sub := &Subscription{store: s, ch: make(chan struct{}, 1)}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(sub.ch)
		sub.once.Do(func() {})
		return sub
	}
	s.subs[sub] = struct{}{}
	return sub
}

// Updates is closed once the subscription is cancelled.
func (sub *Subscription) Updates() <-chan struct{} {
	return sub.ch
}

// Cancel stops delivery. Safe to call more than once.
func (sub *Subscription) Cancel() {
	sub.once.Do(func() {
		sub.store.mu.Lock()
		delete(sub.store.subs, sub)
		close(sub.ch)
		sub.store.mu.Unlock()
	})
}
