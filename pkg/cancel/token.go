// Package cancel provides hierarchical cancellation tokens and a one-shot
// ready signal, the two primitives the module lifecycle (pkg/lifecycle) and
// the registry's stop phase build on.
package cancel

import "sync"

// Token is a shared, cheaply-cloned cancellation flag. Cancel is idempotent
// and fans out to every token derived from it via Child. A zero-value Token
// is not usable; construct one with New.
type Token struct {
	state *state
}

type state struct {
	mu       sync.Mutex
	done     chan struct{}
	children []*state
}

// New returns a fresh, uncancelled root token.
func New() Token {
	return Token{state: &state{done: make(chan struct{})}}
}

// Cancel marks the token (and every token derived from it, transitively)
// cancelled. Safe to call concurrently and more than once; only the first
// call has any effect.
func (t Token) Cancel() {
	t.state.cancel()
}

func (s *state) cancel() {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
	}
	close(s.done)
	children := s.children
	s.children = nil
	s.mu.Unlock()

	for _, c := range children {
		c.cancel()
	}
}

// IsCancelled reports whether the token has been cancelled.
func (t Token) IsCancelled() bool {
	select {
	case <-t.state.done:
		return true
	default:
		return false
	}
}

// Cancelled returns a channel that is closed when the token is cancelled.
// Successive calls return channels that close at the same instant (in fact
// the same underlying channel), so it is safe to call from multiple
// goroutines.
func (t Token) Cancelled() <-chan struct{} {
	return t.state.done
}

// Child derives a new token that is cancelled whenever its parent is, but
// which can also be cancelled independently without affecting the parent or
// any sibling. Deriving a child from an already-cancelled parent returns an
// already-cancelled child.
func (t Token) Child() Token {
	child := &state{done: make(chan struct{})}

	t.state.mu.Lock()
	select {
	case <-t.state.done:
		t.state.mu.Unlock()
		close(child.done)
		return Token{state: child}
	default:
	}
	t.state.children = append(t.state.children, child)
	t.state.mu.Unlock()

	return Token{state: child}
}
