package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/curionet/curio/internal/model"
	"github.com/curionet/curio/internal/storage"
)

// newTestStore opens the store against a real database. The suite is gated
// on CURIO_POSTGRES_TEST_DSN so it can run in CI with a provisioned instance
// and skip everywhere else.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("CURIO_POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("CURIO_POSTGRES_TEST_DSN not set; skipping postgres adapter test")
	}
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	for _, table := range []string{"messages", "editions", "selections", "snapshots", "sessions"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
	return s
}

func TestPostgresSessions_UpsertGetList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &model.Session{
		ID:              0,
		Creator:         "alice",
		ContentAddress:  "ipfs://bafyexample01",
		PeriodScores:    map[uint64]uint64{1: 1000},
		CreationTime:    1_700_000_000,
		SubmittedPeriod: 1,
	}
	require.NoError(t, s.Sessions().Upsert(ctx, sess))

	sess.Reactions = 3
	sess.Score = 1700
	sess.PeriodScores[1] = 1700
	require.NoError(t, s.Sessions().Upsert(ctx, sess))

	got, err := s.Sessions().Get(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Creator)
	require.Equal(t, uint64(3), got.Reactions)
	require.Equal(t, uint64(1700), got.PeriodScores[1])

	_, err = s.Sessions().Get(ctx, 42)
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.Sessions().Upsert(ctx, &model.Session{ID: 1, Creator: "bob", ContentAddress: "ar://abcdefghij", CreationTime: 1, SubmittedPeriod: 1}))
	all, err := s.Sessions().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, uint64(0), all[0].ID)
	require.Equal(t, uint64(1), all[1].ID)
}

func TestPostgresMessages_CreateList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Sessions().Upsert(ctx, &model.Session{ID: 0, Creator: "a", ContentAddress: "ipfs://bafyx01", CreationTime: 1, SubmittedPeriod: 1}))

	require.NoError(t, s.Messages().Create(ctx, &model.Message{ID: 0, SessionID: 0, Sender: "bob", ContentAddress: "ipfs://bafymsg01", Attachments: []string{"ar://attachment01"}, CreationTime: 5}))
	require.NoError(t, s.Messages().Create(ctx, &model.Message{ID: 1, SessionID: 0, Sender: "carol", ContentAddress: "ipfs://bafymsg02", CreationTime: 6}))

	got, err := s.Messages().ListBySession(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, []string{"ar://attachment01"}, got[0].Attachments)

	none, err := s.Messages().ListBySession(ctx, 9)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestPostgresEditions_UpsertGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Sessions().Upsert(ctx, &model.Session{ID: 0, Creator: "a", ContentAddress: "ipfs://bafyx01", CreationTime: 1, SubmittedPeriod: 1}))

	ed := &model.Edition{SessionID: 0, TotalMinted: 14, CreatorAmount: 1, CuratorAmount: 3, PublicAmount: 10, Price: 1000}
	require.NoError(t, s.Editions().Upsert(ctx, ed))

	ed.PublicSold = 4
	ed.CuratorDistributed = 2
	require.NoError(t, s.Editions().Upsert(ctx, ed))

	got, err := s.Editions().Get(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(4), got.PublicSold)
	require.Equal(t, uint64(2), got.CuratorDistributed)
	require.Equal(t, uint64(6), got.PublicRemaining())

	_, err = s.Editions().Get(ctx, 7)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestPostgresSelections_RecordList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Selections().Record(ctx, &storage.SelectionRecord{Period: 1, WinnerID: 3, HasWinner: true, Score: 2000, ResolvedAt: time.Unix(1_700_086_400, 0)}))
	require.NoError(t, s.Selections().Record(ctx, &storage.SelectionRecord{Period: 2, Skipped: true, ResolvedAt: time.Unix(1_700_172_800, 0)}))

	got, err := s.Selections().List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, got[0].HasWinner)
	require.True(t, got[1].Skipped)
}

func TestPostgresSnapshots_SaveLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Snapshots().Latest(ctx)
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.Snapshots().Save(ctx, []byte(`{"v":1}`), time.Now()))
	require.NoError(t, s.Snapshots().Save(ctx, []byte(`{"v":2}`), time.Now()))

	got, err := s.Snapshots().Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"v":2}`), got)
}
