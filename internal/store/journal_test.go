package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendJournal_ReadBack(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	entries := []JournalEntry{
		{Seq: 1, Action: "register", Payload: `{"email":"a@b.com"}`, Outcome: OutcomeOK, RecordedAt: at},
		{Seq: 2, Action: "login", Outcome: OutcomeRejected, Code: "account_not_found", RecordedAt: at},
		{Seq: 3, Action: "logout", Outcome: OutcomeOK, RecordedAt: at},
	}
	for _, e := range entries {
		require.NoError(t, s.AppendJournal(ctx, e))
	}

	got, err := s.ReadJournal(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, entries[0], got[0])
	assert.Equal(t, "{}", got[1].Payload, "empty payload stored as {}")
	assert.Equal(t, "account_not_found", got[1].Code)
	assert.Equal(t, int64(3), got[2].Seq)
}

func TestAppendJournal_DuplicateSeqIgnored(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.AppendJournal(ctx, JournalEntry{Seq: 1, Action: "logout", Outcome: OutcomeOK}))
	require.NoError(t, s.AppendJournal(ctx, JournalEntry{Seq: 1, Action: "login", Outcome: OutcomeOK}))

	got, err := s.ReadJournal(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "logout", got[0].Action)
}

func TestAppendJournal_RejectsUnknownOutcome(t *testing.T) {
	s := createTestStore(t)

	err := s.AppendJournal(context.Background(), JournalEntry{Seq: 1, Action: "logout", Outcome: "maybe"})
	assert.Error(t, err)
}

func TestReadJournal_Limit(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	for seq := int64(1); seq <= 5; seq++ {
		require.NoError(t, s.AppendJournal(ctx, JournalEntry{Seq: seq, Action: "clear_cart", Outcome: OutcomeOK}))
	}

	got, err := s.ReadJournal(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(4), got[0].Seq)
	assert.Equal(t, int64(5), got[1].Seq)
}

func TestReadJournal_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadJournal(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLastSeq(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.AppendJournal(ctx, JournalEntry{Seq: 7, Action: "logout", Outcome: OutcomeOK}))
	require.NoError(t, s.AppendJournal(ctx, JournalEntry{Seq: 3, Action: "logout", Outcome: OutcomeOK}))

	seq, err = s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}
