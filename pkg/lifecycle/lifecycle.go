// Package lifecycle wraps a long-running async entry point in the
// Stopped/Starting/Running/Stopping state machine described in spec.md §4.2,
// giving STATEFUL modules start/stop/status without hand-rolling goroutine
// bookkeeping — the same role internal/queue/worker.go's WorkerPool plays for
// the teacher's job queue, generalized to an arbitrary entry function.
package lifecycle

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/hserr"
)

// State is one of the four lifecycle states in spec.md §4.2.
type State int

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// StopOutcome reports how an entry's stop concluded.
type StopOutcome int

const (
	// Finished means the entry returned on its own, before or during stop.
	Finished StopOutcome = iota
	// Cancelled means the entry returned after observing cancellation.
	Cancelled
	// Timeout means the stop_timeout elapsed before the entry returned; its
	// task was abandoned.
	Timeout
)

func (o StopOutcome) String() string {
	switch o {
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Entry is the async function a Runnable supplies. It must return promptly
// once cancel is cancelled. ready is always non-nil; when the wrapper is in
// await-ready mode (§4.2) the Starting→Running transition happens only when
// the entry calls ready.Notify(), not merely because it was spawned.
type Entry func(cancelToken cancel.Token, ready *cancel.ReadySignal) error

// ErrInvalidState is returned by Start when called while the wrapper is not
// Stopped. It wraps hserr.ErrInvalidState.
var ErrInvalidState = hserr.ErrInvalidState

// Wrapper drives a single Entry through the lifecycle state machine. It is
// safe for concurrent use; state transitions are linearized by mu.
type Wrapper struct {
	name        string
	entry       Entry
	awaitReady  bool
	stopTimeout time.Duration
	log         zerolog.Logger

	mu      sync.Mutex
	state   State
	cancel  cancel.Token
	ready   *cancel.ReadySignal
	done    chan error
	started bool
}

// Options configures a new Wrapper.
type Options struct {
	// Name identifies the wrapped entry in logs.
	Name string
	// AwaitReady requires the entry to call ready.Notify() to reach Running;
	// otherwise Running is entered immediately after spawn.
	AwaitReady bool
	// StopTimeout bounds how long Stop waits for the entry to return after
	// cancellation before declaring Timeout and abandoning the task.
	StopTimeout time.Duration
	Log         zerolog.Logger
}

// New constructs a Wrapper around entry, initially Stopped.
func New(entry Entry, opts Options) *Wrapper {
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 30 * time.Second
	}
	return &Wrapper{
		name:        opts.Name,
		entry:       entry,
		awaitReady:  opts.AwaitReady,
		stopTimeout: opts.StopTimeout,
		log:         opts.Log.With().Str("component", "lifecycle").Str("runnable", opts.Name).Logger(),
		state:       Stopped,
	}
}

// Status returns the current state.
func (w *Wrapper) Status() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Start spawns the entry against a child of parent. It is idempotent from
// Stopped; calling it while not Stopped fails with ErrInvalidState. It
// returns once the entry is considered Running (immediately, or on
// ready.Notify() in await-ready mode) — or immediately with Finished-like
// semantics if the entry returns before that point.
func (w *Wrapper) Start(parent cancel.Token) error {
	w.mu.Lock()
	if w.state != Stopped {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s is not stopped (current state %s)", ErrInvalidState, w.name, w.state)
	}
	w.state = Starting
	w.cancel = parent.Child()
	w.ready = cancel.NewReadySignal()
	w.done = make(chan error, 1)
	started := w.cancel
	ready := w.ready
	done := w.done
	w.mu.Unlock()

	go func() {
		err := w.entry(started, ready)
		done <- err
	}()

	if w.awaitReady {
		select {
		case <-ready.AwaitReady():
			w.mu.Lock()
			if w.state == Starting {
				w.state = Running
			}
			w.mu.Unlock()
		case err := <-done:
			// Entry returned before signalling ready: Starting -> Stopped.
			w.mu.Lock()
			w.state = Stopped
			w.mu.Unlock()
			// Put the result back so a subsequent Stop() (or nothing, if the
			// caller doesn't call Stop) can still observe it if needed.
			w.done <- err
			w.log.Warn().Err(err).Msg("entry returned before signalling ready")
			return err
		}
	} else {
		w.mu.Lock()
		if w.state == Starting {
			w.state = Running
		}
		w.mu.Unlock()
	}

	return nil
}

// Stop cancels the entry's token and waits up to stopTimeout for it to
// return, reporting how it concluded.
func (w *Wrapper) Stop() StopOutcome {
	w.mu.Lock()
	if w.state == Stopped {
		w.mu.Unlock()
		return Finished
	}
	w.state = Stopping
	tok := w.cancel
	done := w.done
	w.mu.Unlock()

	alreadyDone := false
	select {
	case <-done:
		alreadyDone = true
	default:
	}

	tok.Cancel()

	outcome := Finished
	if !alreadyDone {
		select {
		case err := <-done:
			if err != nil {
				w.log.Debug().Err(err).Msg("entry returned error on stop")
			}
			outcome = Cancelled
		case <-time.After(w.stopTimeout):
			outcome = Timeout
			w.log.Warn().Dur("stop_timeout", w.stopTimeout).Msg("stop timed out, abandoning entry")
		}
	}

	w.mu.Lock()
	w.state = Stopped
	w.mu.Unlock()

	return outcome
}
