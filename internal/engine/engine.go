package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/bitshub/internal/domain"
)

// Observer is notified after every Dispatch, accepted or rejected.
//
// Observers run synchronously on the dispatching goroutine while the engine
// lock is held. They must not call Dispatch and must not mutate the states
// they are handed.
type Observer interface {
	Observe(t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(t Transition)

// Observe calls f(t).
func (f ObserverFunc) Observe(t Transition) {
	f(t)
}

// Transition is what observers see for one Dispatch.
// On rejection Prev and Next are the same snapshot.
type Transition struct {
	Action  Action
	Outcome Outcome
	Prev    *State
	Next    *State
}

// Engine owns the storefront state and is its single writer.
//
// Every change goes through Dispatch, which runs Reduce to completion under
// a mutex, swaps in the new snapshot, and notifies observers in registration
// order. The persistence mirror, the action journal and the metrics
// collector are all observers.
//
// Thread-safety model:
//   - Dispatch, Snapshot, Subscribe: safe from any goroutine
//   - transitions never interleave
type Engine struct {
	mu        sync.Mutex
	state     *State
	env       Env
	seq       *Sequencer
	observers []Observer
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the wall clock. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.env.Clock = c
	}
}

// WithIDGenerator sets the entity id generator. Default: UUIDGenerator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.env.IDs = g
	}
}

// WithPolicy sets the storefront rules. Default: DefaultPolicy().
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.env.Policy = p
	}
}

// WithCatalog seeds the product catalog.
func WithCatalog(products []domain.Product) Option {
	return func(e *Engine) {
		e.state = NewState(products)
	}
}

// WithSequencer resumes transition numbering, e.g. after the journal's last
// recorded seq.
func WithSequencer(s *Sequencer) Option {
	return func(e *Engine) {
		e.seq = s
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// New creates an Engine with an empty catalog unless WithCatalog is given.
func New(opts ...Option) *Engine {
	e := &Engine{
		state: NewState(nil),
		env: Env{
			Clock:  SystemClock{},
			IDs:    UUIDGenerator{},
			Policy: DefaultPolicy(),
		},
		seq:    NewSequencer(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers an observer for subsequent transitions.
func (e *Engine) Subscribe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Dispatch applies one action and returns its outcome.
//
// A rejected action leaves the state untouched and reports a *Rejection in
// Outcome.Err. A nil action is a no-op that still gets a sequence number.
func (e *Engine) Dispatch(a Action) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.state
	next, out := Reduce(prev, a, e.env)
	out.Seq = e.seq.Next()
	e.state = next

	if out.Err != nil {
		e.logger.Debug("action rejected",
			"seq", out.Seq,
			"action", out.Action,
			"code", CodeOf(out.Err),
			"error", out.Err,
		)
	} else {
		e.logger.Debug("action applied",
			"seq", out.Seq,
			"action", out.Action,
			"created_id", out.CreatedID,
		)
	}

	t := Transition{Action: a, Outcome: out, Prev: prev, Next: next}
	for _, o := range e.observers {
		o.Observe(t)
	}
	return out
}

// Snapshot returns a deep copy of the current state. Callers may mutate it
// freely.
func (e *Engine) Snapshot() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Now reads the engine's clock. Callers use it for deadline checks on
// snapshots, e.g. State.AddedToCartVisible.
func (e *Engine) Now() time.Time {
	return e.env.Clock.Now()
}

// Policy returns the storefront rules in effect.
func (e *Engine) Policy() Policy {
	return e.env.Policy
}

// Seq returns the sequence number of the last transition.
func (e *Engine) Seq() int64 {
	return e.seq.Current()
}
