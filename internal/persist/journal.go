package persist

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/roach88/bitshub/internal/engine"
	"github.com/roach88/bitshub/internal/store"
)

// JournalWriter appends journal entries. *store.Store implements it.
type JournalWriter interface {
	AppendJournal(ctx context.Context, e store.JournalEntry) error
}

// Journal records every dispatched action, accepted or rejected.
type Journal struct {
	ctx    context.Context
	w      JournalWriter
	clock  engine.Clock
	logger *slog.Logger
}

// NewJournal returns a Journal observer. clock stamps RecordedAt.
func NewJournal(ctx context.Context, w JournalWriter, clock engine.Clock, logger *slog.Logger) *Journal {
	if clock == nil {
		clock = engine.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{ctx: ctx, w: w, clock: clock, logger: logger}
}

// Observe implements engine.Observer.
func (j *Journal) Observe(t engine.Transition) {
	if t.Action == nil {
		return
	}
	payload, err := json.Marshal(redact(t.Action))
	if err != nil {
		j.logger.Warn("journal marshal failed", "action", t.Outcome.Action, "error", err)
		return
	}

	e := store.JournalEntry{
		Seq:        t.Outcome.Seq,
		Action:     t.Outcome.Action,
		Payload:    string(payload),
		Outcome:    store.OutcomeOK,
		RecordedAt: j.clock.Now(),
	}
	if !t.Outcome.OK() {
		e.Outcome = store.OutcomeRejected
		e.Code = string(engine.CodeOf(t.Outcome.Err))
	}
	if err := j.w.AppendJournal(j.ctx, e); err != nil {
		j.logger.Warn("journal append failed", "seq", e.Seq, "error", err)
	}
}

// redact blanks credentials before they reach disk.
func redact(a engine.Action) engine.Action {
	switch a := a.(type) {
	case engine.Login:
		a.Password = ""
		return a
	case engine.Register:
		a.Password = ""
		a.ConfirmPassword = ""
		return a
	}
	return a
}
