package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curionet/curio/internal/model"
)

func TestReactFor_DelegateAuthorization(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.submit(t, "creator")
	ctx := context.Background()

	// Unapproved caller cannot act for another principal.
	_, err := env.e.ReactFor(ctx, "delegate", "alice", s.ID, 0, nil)
	require.ErrorIs(t, err, model.ErrNotDelegate)

	require.NoError(t, env.e.ApproveDelegate("alice", "delegate", true))
	require.True(t, env.e.IsDelegate("alice", "delegate"))
	_, err = env.e.ReactFor(ctx, "delegate", "alice", s.ID, 0, nil)
	require.NoError(t, err)

	// Approval is directional: alice cannot act for delegate.
	_, err = env.e.ReactFor(ctx, "alice", "delegate", s.ID, 0, nil)
	require.ErrorIs(t, err, model.ErrNotDelegate)

	// Revocation is idempotent.
	require.NoError(t, env.e.ApproveDelegate("alice", "delegate", false))
	require.NoError(t, env.e.ApproveDelegate("alice", "delegate", false))
	_, err = env.e.ReactFor(ctx, "delegate", "alice", s.ID, 0, nil)
	require.ErrorIs(t, err, model.ErrNotDelegate)

	require.ErrorIs(t, env.e.ApproveDelegate("", "delegate", true), model.ErrZeroPrincipal)
}

func TestReactFor_RelayerActsForAnyone(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.submit(t, "creator")

	require.NoError(t, env.e.GrantRole("owner", model.RoleRelayer, "relay"))
	_, err := env.e.ReactFor(context.Background(), "relay", "anyone", s.ID, 0, nil)
	require.NoError(t, err)

	// The rate limit debits the reactor, not the relayer.
	rem, err := env.e.RemainingAllowance(context.Background(), "anyone", model.KindReaction, 0, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(9), rem)
}

func TestSendMessageFor_Delegate(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.submit(t, "creator")

	req := MessageRequest{Caller: "helper", Sender: "alice", SessionID: s.ID, ContentAddress: testAddr}
	_, err := env.e.SendMessage(context.Background(), req)
	require.ErrorIs(t, err, model.ErrNotDelegate)

	require.NoError(t, env.e.ApproveDelegate("alice", "helper", true))
	m, err := env.e.SendMessage(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "alice", m.Sender)
}

func TestBatchReact_BestEffort(t *testing.T) {
	env := newTestEnv(t, func(p *Params) {
		p.Operating = DefaultOperating()
		p.Operating.ReactionsPerWeightUnit = 1
	})
	s := env.submit(t, "creator")
	env.verifier.SetWeight("gated", 0)
	require.NoError(t, env.e.GrantRole("owner", model.RoleRelayer, "relay"))

	entries := []model.BatchReactEntry{
		{Reactor: "a", SessionID: s.ID},
		{Reactor: "", SessionID: s.ID},      // zero reactor
		{Reactor: "gated", SessionID: s.ID}, // fails verification
		{Reactor: "a", SessionID: s.ID},     // rate limit exhausted
		{Reactor: "b", SessionID: 42},       // unknown session
		{Reactor: "b", SessionID: s.ID},     // fine
	}
	results, err := env.e.BatchReact(context.Background(), "relay", entries)
	require.NoError(t, err)
	require.Len(t, results, len(entries))

	wantOK := []bool{true, false, false, false, false, true}
	for i, want := range wantOK {
		require.Equal(t, want, results[i].OK, "entry %d: %s", i, results[i].Error)
	}

	// The two successes both scored.
	got, err := env.e.Session(s.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.Reactions)
}

func TestBatchReact_RequiresRelayer(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.submit(t, "creator")

	_, err := env.e.BatchReact(context.Background(), "rando", []model.BatchReactEntry{{Reactor: "a", SessionID: s.ID}})
	require.ErrorIs(t, err, model.ErrNotAuthority)
}

func TestBatchReact_PausedRecordsFailures(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.submit(t, "creator")
	require.NoError(t, env.e.GrantRole("owner", model.RoleRelayer, "relay"))
	require.NoError(t, env.e.Pause("owner"))

	results, err := env.e.BatchReact(context.Background(), "relay", []model.BatchReactEntry{
		{Reactor: "a", SessionID: s.ID},
		{Reactor: "b", SessionID: s.ID},
	})
	require.NoError(t, err)
	for _, r := range results {
		require.False(t, r.OK)
		require.Equal(t, model.ErrPaused.Error(), r.Error)
	}
}
