package search

import (
	"context"
	"sync"
)

// Sequencer tracks the latest search per client session. Starting a new search
// cancels the previous one for the same session, and a finished search can ask
// whether it is still the latest before its results are delivered.
type Sequencer struct {
	mu       sync.Mutex
	next     uint64
	sessions map[string]*inflight
}

type inflight struct {
	gen    uint64
	cancel context.CancelFunc
}

// NewSequencer creates an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{sessions: make(map[string]*inflight)}
}

// Ticket identifies one search generation within a session.
type Ticket struct {
	seq     *Sequencer
	session string
	gen     uint64
	cancel  context.CancelFunc
}

// Begin registers a new search for session and cancels the one it replaces.
// An empty session opts out: the ticket is always current.
func (s *Sequencer) Begin(ctx context.Context, session string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)
	if session == "" {
		return ctx, &Ticket{cancel: cancel}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.sessions[session]; ok {
		prev.cancel()
	}
	s.next++
	gen := s.next
	s.sessions[session] = &inflight{gen: gen, cancel: cancel}
	return ctx, &Ticket{seq: s, session: session, gen: gen, cancel: cancel}
}

// Current reports whether no newer search has started for the session.
func (t *Ticket) Current() bool {
	if t.seq == nil {
		return true
	}
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()
	cur, ok := t.seq.sessions[t.session]
	return ok && cur.gen == t.gen
}

// Done releases the ticket. Generations are global, so a session that is
// dropped here and reused later can never revive an older ticket.
func (t *Ticket) Done() {
	t.cancel()
	if t.seq == nil {
		return
	}
	t.seq.mu.Lock()
	defer t.seq.mu.Unlock()
	if cur, ok := t.seq.sessions[t.session]; ok && cur.gen == t.gen {
		delete(t.seq.sessions, t.session)
	}
}

// Len returns the number of sessions with a search in flight.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
