package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/curionet/curio/internal/engine"
	"github.com/curionet/curio/internal/gating"
	"github.com/curionet/curio/internal/model"
	"github.com/curionet/curio/internal/storage"
)

// --- Fakes ---

type fakeStore struct {
	sessions   map[uint64]*model.Session
	messages   []*model.Message
	editions   map[uint64]*model.Edition
	selections []*storage.SelectionRecord
	snapshot   []byte
	saves      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[uint64]*model.Session),
		editions: make(map[uint64]*model.Edition),
	}
}

func (f *fakeStore) Sessions() storage.SessionRepo     { return fakeSessionRepo{f} }
func (f *fakeStore) Messages() storage.MessageRepo     { return fakeMessageRepo{f} }
func (f *fakeStore) Editions() storage.EditionRepo     { return fakeEditionRepo{f} }
func (f *fakeStore) Selections() storage.SelectionRepo { return fakeSelectionRepo{f} }
func (f *fakeStore) Snapshots() storage.SnapshotRepo   { return fakeSnapshotRepo{f} }

func (f *fakeStore) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                          { return nil }

type fakeSessionRepo struct{ f *fakeStore }

func (r fakeSessionRepo) Upsert(ctx context.Context, s *model.Session) error {
	cp := *s
	r.f.sessions[s.ID] = &cp
	return nil
}

func (r fakeSessionRepo) Get(ctx context.Context, id uint64) (*model.Session, error) {
	s, ok := r.f.sessions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return s, nil
}

func (r fakeSessionRepo) List(ctx context.Context) ([]*model.Session, error) {
	out := make([]*model.Session, 0, len(r.f.sessions))
	for _, s := range r.f.sessions {
		out = append(out, s)
	}
	return out, nil
}

type fakeMessageRepo struct{ f *fakeStore }

func (r fakeMessageRepo) Create(ctx context.Context, m *model.Message) error {
	r.f.messages = append(r.f.messages, m)
	return nil
}

func (r fakeMessageRepo) ListBySession(ctx context.Context, sessionID uint64) ([]*model.Message, error) {
	var out []*model.Message
	for _, m := range r.f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeEditionRepo struct{ f *fakeStore }

func (r fakeEditionRepo) Upsert(ctx context.Context, e *model.Edition) error {
	cp := *e
	r.f.editions[e.SessionID] = &cp
	return nil
}

func (r fakeEditionRepo) Get(ctx context.Context, sessionID uint64) (*model.Edition, error) {
	e, ok := r.f.editions[sessionID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return e, nil
}

type fakeSelectionRepo struct{ f *fakeStore }

func (r fakeSelectionRepo) Record(ctx context.Context, rec *storage.SelectionRecord) error {
	r.f.selections = append(r.f.selections, rec)
	return nil
}

func (r fakeSelectionRepo) List(ctx context.Context) ([]*storage.SelectionRecord, error) {
	return r.f.selections, nil
}

type fakeSnapshotRepo struct{ f *fakeStore }

func (r fakeSnapshotRepo) Save(ctx context.Context, state []byte, takenAt time.Time) error {
	r.f.snapshot = state
	r.f.saves++
	return nil
}

func (r fakeSnapshotRepo) Latest(ctx context.Context) ([]byte, error) {
	if r.f.snapshot == nil {
		return nil, model.ErrNotFound
	}
	return r.f.snapshot, nil
}

type recordingHooks struct {
	created  int
	reacted  int
	messaged int
	selected int
}

func (h *recordingHooks) OnSessionCreated(ctx context.Context, s *model.Session) { h.created++ }
func (h *recordingHooks) OnReaction(ctx context.Context, s *model.Session, reactor string) {
	h.reacted++
}
func (h *recordingHooks) OnMessage(ctx context.Context, m *model.Message) { h.messaged++ }
func (h *recordingHooks) OnSessionSelected(ctx context.Context, r *model.SelectionResult) {
	h.selected++
}

type fakeClock struct{ now uint64 }

func (c *fakeClock) Now() time.Time          { return time.Unix(int64(c.now), 0) }
func (c *fakeClock) advance(d time.Duration) { c.now += uint64(d / time.Second) }

// --- helpers ---

const testAddr = "ipfs://bafybeigdyrzt5example"

func newService(t *testing.T) (*CurationService, *fakeStore, *recordingHooks, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: 1_700_000_000}
	eng := engine.New(engine.Params{
		Clock:    clock,
		Logger:   zerolog.Nop(),
		Verifier: gating.NewStaticVerifier(1),
		Owner:    "owner",
	})
	st := newFakeStore()
	hk := &recordingHooks{}
	svc := NewCurationService(eng, st, hk, zerolog.Nop())
	return svc, st, hk, clock
}

// --- Tests ---

func TestSubmitSession_WritesThroughAndNotifies(t *testing.T) {
	svc, st, hk, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.SubmitSession(ctx, "alice", testAddr, 0, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), sess.ID)

	require.Contains(t, st.sessions, uint64(0))
	require.Equal(t, "alice", st.sessions[0].Creator)
	require.Equal(t, 1, hk.created)
	require.Positive(t, st.saves)
}

func TestSubmitSession_EngineErrorSkipsPersistence(t *testing.T) {
	svc, st, hk, _ := newService(t)

	_, err := svc.SubmitSession(context.Background(), "alice", "short", 0, nil)
	require.ErrorIs(t, err, model.ErrBadAddress)
	require.Empty(t, st.sessions)
	require.Zero(t, hk.created)
	require.Zero(t, st.saves)
}

func TestReact_PersistsUpdatedScore(t *testing.T) {
	svc, st, hk, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.SubmitSession(ctx, "alice", testAddr, 0, nil)
	require.NoError(t, err)

	got, err := svc.React(ctx, "bob", "bob", sess.ID, 0, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), got.Reactions)
	require.Equal(t, got.Score, st.sessions[sess.ID].Score)
	require.Equal(t, 1, hk.reacted)
}

func TestSendMessage_PersistsMessageAndSession(t *testing.T) {
	svc, st, hk, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.SubmitSession(ctx, "alice", testAddr, 0, nil)
	require.NoError(t, err)

	msg, err := svc.SendMessage(ctx, engine.MessageRequest{
		Sender:         "bob",
		SessionID:      sess.ID,
		ContentAddress: testAddr,
	})
	require.NoError(t, err)
	require.Len(t, st.messages, 1)
	require.Equal(t, msg.ID, st.messages[0].ID)
	require.Equal(t, uint64(1), st.sessions[sess.ID].Messages)
	require.Equal(t, 1, hk.messaged)
}

func TestSelectWinner_RecordsSelectionAndEdition(t *testing.T) {
	svc, st, hk, clock := newService(t)
	ctx := context.Background()

	sess, err := svc.SubmitSession(ctx, "alice", testAddr, 0, nil)
	require.NoError(t, err)
	_, err = svc.React(ctx, "bob", "bob", sess.ID, 0, nil)
	require.NoError(t, err)

	clock.advance(25 * time.Hour)
	res, err := svc.SelectWinner(ctx)
	require.NoError(t, err)
	require.True(t, res.HasWinner)
	require.Equal(t, sess.ID, res.WinnerID)

	require.Len(t, st.selections, 1)
	require.Equal(t, uint64(1), st.selections[0].Period)
	require.True(t, st.selections[0].HasWinner)
	require.Contains(t, st.editions, sess.ID)
	require.Equal(t, uint64(1), st.sessions[sess.ID].SelectedPeriod)
	require.Equal(t, 1, hk.selected)
}

func TestBatchReact_PersistsOnlySucceededSessions(t *testing.T) {
	svc, st, _, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.GrantRole(ctx, "owner", model.RoleRelayer, "relay"))
	sess, err := svc.SubmitSession(ctx, "alice", testAddr, 0, nil)
	require.NoError(t, err)

	results, err := svc.BatchReact(ctx, "relay", []model.BatchReactEntry{
		{Reactor: "bob", SessionID: sess.ID},
		{Reactor: "carol", SessionID: 99},
	})
	require.NoError(t, err)
	require.True(t, results[0].OK)
	require.False(t, results[1].OK)
	require.Equal(t, uint64(1), st.sessions[sess.ID].Reactions)
}

func TestPurchaseEdition_PersistsEditionState(t *testing.T) {
	svc, st, _, clock := newService(t)
	ctx := context.Background()

	sess, err := svc.SubmitSession(ctx, "alice", testAddr, 0, nil)
	require.NoError(t, err)
	_, err = svc.React(ctx, "bob", "bob", sess.ID, 0, nil)
	require.NoError(t, err)
	clock.advance(25 * time.Hour)
	_, err = svc.SelectWinner(ctx)
	require.NoError(t, err)

	res, err := svc.PurchaseEdition(ctx, "buyer", sess.ID, 2, 2000)
	require.NoError(t, err)
	require.Equal(t, uint64(2000), res.Cost)
	require.Equal(t, uint64(2), st.editions[sess.ID].PublicSold)
}

func TestStageConfigPatch_AtomicAndCheckpointed(t *testing.T) {
	svc, st, _, _ := newService(t)
	ctx := context.Background()

	price := uint64(5000)
	require.NoError(t, svc.StageConfigPatch(ctx, "owner", model.ConfigPatch{EditionPrice: &price}))
	require.Positive(t, st.saves)
	require.NotNil(t, svc.ConfigSnapshot().PendingOperating)

	// A rejected patch leaves no checkpoint and stages nothing new.
	saves := st.saves
	bad := uint64(0)
	require.ErrorIs(t, svc.StageConfigPatch(ctx, "owner", model.ConfigPatch{PeriodDuration: &bad}), model.ErrValidation)
	require.Equal(t, saves, st.saves)
	require.Equal(t, uint64(86400), svc.ConfigSnapshot().PendingOperating.PeriodDuration)
}

func TestRecover_RestoresSnapshotState(t *testing.T) {
	svc, st, _, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.SubmitSession(ctx, "alice", testAddr, 0, nil)
	require.NoError(t, err)
	require.NotNil(t, st.snapshot)

	// Boot a second service over the same store with an empty engine.
	eng2 := engine.New(engine.Params{
		Clock:    &fakeClock{now: 1_700_000_500},
		Logger:   zerolog.Nop(),
		Verifier: gating.NewStaticVerifier(1),
		Owner:    "owner",
	})
	svc2 := NewCurationService(eng2, st, nil, zerolog.Nop())
	require.NoError(t, svc2.Recover(ctx))

	got, err := svc2.GetSession(sess.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Creator)
}

func TestRecover_FreshStoreIsNoError(t *testing.T) {
	svc, _, _, _ := newService(t)
	require.NoError(t, svc.Recover(context.Background()))
}

func TestNilStore_OperationsStillWork(t *testing.T) {
	eng := engine.New(engine.Params{
		Clock:    &fakeClock{now: 1_700_000_000},
		Logger:   zerolog.Nop(),
		Verifier: gating.NewStaticVerifier(1),
		Owner:    "owner",
	})
	svc := NewCurationService(eng, nil, nil, zerolog.Nop())

	sess, err := svc.SubmitSession(context.Background(), "alice", testAddr, 0, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), sess.ID)
	require.NoError(t, svc.Recover(context.Background()))
}
