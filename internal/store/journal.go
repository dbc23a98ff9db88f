package store

import (
	"context"
	"fmt"
	"time"
)

// Journal outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
)

// JournalEntry is one dispatched action.
type JournalEntry struct {
	Seq        int64     `json:"seq"`
	Action     string    `json:"action"`
	Payload    string    `json:"payload"`
	Outcome    string    `json:"outcome"`
	Code       string    `json:"code,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// AppendJournal records an entry. Re-appending an existing seq is a no-op,
// so replays of the same run stay idempotent.
func (s *Store) AppendJournal(ctx context.Context, e JournalEntry) error {
	if e.Payload == "" {
		e.Payload = "{}"
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal (seq, action, payload, outcome, code, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`,
		e.Seq,
		e.Action,
		e.Payload,
		e.Outcome,
		e.Code,
		e.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

// ReadJournal returns entries in seq order. limit <= 0 returns everything;
// otherwise the most recent limit entries are returned, still oldest first.
func (s *Store) ReadJournal(ctx context.Context, limit int) ([]JournalEntry, error) {
	query := `
		SELECT seq, action, payload, outcome, code, recorded_at FROM (
			SELECT * FROM journal ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := []JournalEntry{}
	for rows.Next() {
		var (
			e  JournalEntry
			at string
		)
		if err := rows.Scan(&e.Seq, &e.Action, &e.Payload, &e.Outcome, &e.Code, &at); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.RecordedAt, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", at, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// LastSeq returns the highest journaled seq, 0 for an empty journal.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM journal`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}
