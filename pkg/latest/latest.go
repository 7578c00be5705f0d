// Package latest keeps only the most recently issued request per key.
// Starting a request cancels the previous one for the same key, and a finished request
// can check whether it is still the latest before its result is used.
package latest

import (
	"context"
	"sync"
)

// Ticket identifies one issued request.
type Ticket struct {
	Key string
	Seq uint64
}

type entry struct {
	seq    uint64
	cancel context.CancelFunc
	active int
}

// Group tracks the latest ticket per key. The zero value is not usable; call NewGroup.
type Group struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewGroup() *Group {
	return &Group{entries: make(map[string]*entry)}
}

// Begin issues a new ticket for key and cancels the context of the previous one.
// The returned context is derived from parent. release must be called when the
// request is finished; it frees the bookkeeping once no request for key is in flight.
func (g *Group) Begin(parent context.Context, key string) (Ticket, context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	e, ok := g.entries[key]
	if !ok {
		e = &entry{}
		g.entries[key] = e
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.seq++
	e.cancel = cancel
	e.active++
	t := Ticket{Key: key, Seq: e.seq}
	g.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			cancel()
			g.mu.Lock()
			defer g.mu.Unlock()
			cur, ok := g.entries[key]
			if !ok || cur != e {
				return
			}
			cur.active--
			if cur.active == 0 {
				delete(g.entries, key)
			}
		})
	}
	return t, ctx, release
}

// IsLatest reports whether t is still the most recent ticket for its key.
// It must be checked before release, while the ticket is in flight.
func (g *Group) IsLatest(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[t.Key]
	return ok && e.seq == t.Seq
}

// InFlight returns the number of keys with at least one request in flight.
func (g *Group) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
