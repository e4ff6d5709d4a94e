package cancel

import "sync"

// ReadySignal is a one-shot, idempotent notifier. Notify is safe to call any
// number of times from any goroutine; only the first call wakes waiters.
type ReadySignal struct {
	once sync.Once
	ch   chan struct{}
}

// NewReadySignal returns a signal that has not yet fired.
func NewReadySignal() *ReadySignal {
	return &ReadySignal{ch: make(chan struct{})}
}

// Notify fires the signal. Repeated calls are no-ops.
func (r *ReadySignal) Notify() {
	r.once.Do(func() {
		close(r.ch)
	})
}

// Ready reports whether Notify has already been called.
func (r *ReadySignal) Ready() bool {
	select {
	case <-r.ch:
		return true
	default:
		return false
	}
}

// AwaitReady returns a channel that closes the moment Notify is first
// called. Every waiter observes the same close, i.e. at most one wake per
// waiter and never a missed one if AwaitReady is called before Notify.
func (r *ReadySignal) AwaitReady() <-chan struct{} {
	return r.ch
}
