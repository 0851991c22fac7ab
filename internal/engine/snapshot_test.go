package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/curionet/curio/internal/gating"
	"github.com/curionet/curio/internal/model"
)

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	env := newTestEnv(t, func(p *Params) {
		p.Operating = DefaultOperating()
		p.Operating.Treasury = "treasury"
	})
	ctx := context.Background()

	// Build up non-trivial state: two periods, a winner, an edition sale,
	// delegation, staged config.
	s0 := env.submit(t, "alice")
	s1 := env.submit(t, "bob")
	react(t, env, "x", s0.ID, 3)
	react(t, env, "y", s1.ID, 1)
	require.NoError(t, env.e.ApproveDelegate("alice", "helper", true))
	require.NoError(t, env.e.GrantRole("owner", model.RoleRelayer, "relay"))
	require.NoError(t, env.e.SetEditionPrice("owner", 77))
	_, err := env.e.SendMessage(ctx, MessageRequest{Sender: "carol", SessionID: s0.ID, ContentAddress: testAddr})
	require.NoError(t, err)

	env.clock.Advance(25 * time.Hour)
	res, err := env.e.SelectWinner()
	require.NoError(t, err)
	_, err = env.e.PurchaseEdition("buyer", res.WinnerID, 1, res.Edition.Price)
	require.NoError(t, err)

	data, err := env.e.Snapshot()
	require.NoError(t, err)

	// Restore into a fresh engine sharing the same clock.
	restored := New(Params{Clock: env.clock, Logger: zerolog.Nop(), Verifier: gating.NewStaticVerifier(1)})
	require.NoError(t, restored.Restore(data))

	require.Equal(t, env.e.PeriodInfo(), restored.PeriodInfo())
	require.Equal(t, env.e.ConfigSnapshot(), restored.ConfigSnapshot())
	require.Equal(t, env.e.Balance("alice"), restored.Balance("alice"))
	require.Equal(t, env.e.Balance("treasury"), restored.Balance("treasury"))
	require.Equal(t, env.e.Holding(res.WinnerID, "buyer"), restored.Holding(res.WinnerID, "buyer"))
	require.True(t, restored.IsDelegate("alice", "helper"))
	require.True(t, restored.HasRole(model.RoleRelayer, "relay"))

	origSessions := env.e.Sessions()
	gotSessions := restored.Sessions()
	require.Equal(t, len(origSessions), len(gotSessions))
	for i := range origSessions {
		require.Equal(t, origSessions[i].ID, gotSessions[i].ID)
		require.Equal(t, origSessions[i].Score, gotSessions[i].Score)
		require.Equal(t, origSessions[i].SelectedPeriod, gotSessions[i].SelectedPeriod)
	}

	// The restored engine keeps operating normally.
	s2, err := restored.SubmitSession(ctx, "dave", testAddr, 0, nil)
	require.NoError(t, err)
	_, err = restored.React(ctx, "x", s2.ID, 0, nil)
	require.NoError(t, err)

	// Rate-limit usage survived the round trip too.
	origRem, err := env.e.RemainingAllowance(ctx, "y", model.KindReaction, 0, nil)
	require.NoError(t, err)
	gotRem, err := restored.RemainingAllowance(ctx, "y", model.KindReaction, 0, nil)
	require.NoError(t, err)
	require.Equal(t, origRem, gotRem)
}

func TestRestore_RejectsGarbage(t *testing.T) {
	e := New(Params{Clock: newFakeClock(0), Logger: zerolog.Nop()})
	require.Error(t, e.Restore([]byte("{not json")))
}
