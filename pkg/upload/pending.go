package upload

import (
	"context"
	"sync"
)

// PendingSet tracks candidates whose scan is still in flight. Withdrawing a
// key cancels its context; a result that arrives afterwards is reported as
// stale by Complete and must be dropped by the caller.
type PendingSet struct {
	mu      sync.Mutex
	entries map[string]context.CancelFunc
}

func NewPendingSet() *PendingSet {
	return &PendingSet{entries: make(map[string]context.CancelFunc)}
}

// Track registers key and returns a context that is cancelled on Withdraw.
// ok is false if key is already tracked.
func (p *PendingSet) Track(ctx context.Context, key string) (context.Context, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.entries[key]; exists {
		return ctx, false
	}
	child, cancel := context.WithCancel(ctx)
	p.entries[key] = cancel
	return child, true
}

// Withdraw cancels and forgets key. It returns false if key was not pending.
func (p *PendingSet) Withdraw(key string) bool {
	p.mu.Lock()
	cancel, ok := p.entries[key]
	delete(p.entries, key)
	p.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// Complete forgets key and reports whether it was still tracked. A false
// return means the candidate was withdrawn and its result is stale.
func (p *PendingSet) Complete(key string) bool {
	p.mu.Lock()
	cancel, ok := p.entries[key]
	delete(p.entries, key)
	p.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

func (p *PendingSet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
