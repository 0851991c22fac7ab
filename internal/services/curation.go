// Package services orchestrates curation use cases. The engine is the
// authoritative state machine; this layer adds durable write-through,
// snapshot checkpoints and hook notifications around it.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/curionet/curio/internal/engine"
	"github.com/curionet/curio/internal/hooks"
	"github.com/curionet/curio/internal/model"
	"github.com/curionet/curio/internal/storage"
)

// CurationService wires the curation engine to persistence and hooks.
//
// Mutations commit in memory first; persistence is best-effort and logged,
// never surfaced to callers. Recovery replays the latest snapshot on boot.
type CurationService struct {
	eng   *engine.Engine
	store storage.Store
	hooks hooks.Notifier
	log   zerolog.Logger
}

func NewCurationService(eng *engine.Engine, store storage.Store, notifier hooks.Notifier, log zerolog.Logger) *CurationService {
	if notifier == nil {
		notifier = hooks.Noop{}
	}
	return &CurationService{eng: eng, store: store, hooks: notifier, log: log}
}

// Engine exposes the underlying engine for read-only queries that need no
// persistence side effects.
func (s *CurationService) Engine() *engine.Engine { return s.eng }

// Recover loads the latest snapshot into the engine. A missing snapshot is
// a clean first boot, not an error.
func (s *CurationService) Recover(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	state, err := s.store.Snapshots().Latest(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.log.Info().Msg("no snapshot found, starting fresh")
			return nil
		}
		return err
	}
	if err := s.eng.Restore(state); err != nil {
		return err
	}
	s.log.Info().Int("bytes", len(state)).Msg("engine state restored from snapshot")
	return nil
}

// Checkpoint saves the current engine state. Called after every committed
// mutation and on shutdown.
func (s *CurationService) Checkpoint(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	state, err := s.eng.Snapshot()
	if err != nil {
		return err
	}
	return s.store.Snapshots().Save(ctx, state, time.Now())
}

func (s *CurationService) persistSession(ctx context.Context, sess *model.Session) {
	if s.store == nil || sess == nil {
		return
	}
	if err := s.store.Sessions().Upsert(ctx, sess); err != nil {
		s.log.Warn().Err(err).Uint64("sessionId", sess.ID).Msg("session write-through failed")
	}
}

func (s *CurationService) checkpoint(ctx context.Context) {
	if err := s.Checkpoint(ctx); err != nil {
		s.log.Warn().Err(err).Msg("snapshot checkpoint failed")
	}
}

// --- sessions ---

func (s *CurationService) SubmitSession(ctx context.Context, creator, contentAddress string, claimedUnits uint64, proof []byte) (*model.Session, error) {
	sess, err := s.eng.SubmitSession(ctx, creator, contentAddress, claimedUnits, proof)
	if err != nil {
		return nil, err
	}
	s.persistSession(ctx, sess)
	s.checkpoint(ctx)
	s.hooks.OnSessionCreated(ctx, sess)
	return sess, nil
}

func (s *CurationService) RetractSession(ctx context.Context, caller string, sessionID uint64) (*model.Session, error) {
	if err := s.eng.RetractSession(caller, sessionID); err != nil {
		return nil, err
	}
	sess, err := s.eng.Session(sessionID)
	if err != nil {
		return nil, err
	}
	s.persistSession(ctx, sess)
	s.checkpoint(ctx)
	return sess, nil
}

func (s *CurationService) GetSession(sessionID uint64) (*model.Session, error) {
	return s.eng.Session(sessionID)
}

func (s *CurationService) ListSessions() []*model.Session { return s.eng.Sessions() }

// --- engagement ---

func (s *CurationService) React(ctx context.Context, caller, reactor string, sessionID, claimedUnits uint64, proof []byte) (*model.Session, error) {
	sess, err := s.eng.ReactFor(ctx, caller, reactor, sessionID, claimedUnits, proof)
	if err != nil {
		return nil, err
	}
	s.persistSession(ctx, sess)
	s.checkpoint(ctx)
	s.hooks.OnReaction(ctx, sess, reactor)
	return sess, nil
}

func (s *CurationService) BatchReact(ctx context.Context, caller string, entries []model.BatchReactEntry) ([]model.BatchReactResult, error) {
	results, err := s.eng.BatchReact(ctx, caller, entries)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint64]bool)
	for i, r := range results {
		if !r.OK || seen[entries[i].SessionID] {
			continue
		}
		seen[entries[i].SessionID] = true
		if sess, err := s.eng.Session(entries[i].SessionID); err == nil {
			s.persistSession(ctx, sess)
		}
	}
	s.checkpoint(ctx)
	return results, nil
}

func (s *CurationService) SendMessage(ctx context.Context, req engine.MessageRequest) (*model.Message, error) {
	msg, err := s.eng.SendMessage(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.Messages().Create(ctx, msg); err != nil {
			s.log.Warn().Err(err).Uint64("sessionId", msg.SessionID).Msg("message write-through failed")
		}
	}
	if sess, err := s.eng.Session(msg.SessionID); err == nil {
		s.persistSession(ctx, sess)
	}
	s.checkpoint(ctx)
	s.hooks.OnMessage(ctx, msg)
	return msg, nil
}

func (s *CurationService) ListMessages(sessionID uint64) ([]*model.Message, error) {
	return s.eng.MessagesFor(sessionID)
}

func (s *CurationService) RemainingAllowance(ctx context.Context, principal string, kind model.EngagementKind, claimedUnits uint64, proof []byte) (uint64, error) {
	return s.eng.RemainingAllowance(ctx, principal, kind, claimedUnits, proof)
}

// --- selection ---

func (s *CurationService) SelectWinner(ctx context.Context) (*model.SelectionResult, error) {
	res, err := s.eng.SelectWinner()
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		rec := &storage.SelectionRecord{
			Period:     res.Period,
			Skipped:    res.Skipped,
			WinnerID:   res.WinnerID,
			HasWinner:  res.HasWinner,
			Score:      res.Score,
			ResolvedAt: time.Now().UTC(),
		}
		if err := s.store.Selections().Record(ctx, rec); err != nil {
			s.log.Warn().Err(err).Uint64("period", res.Period).Msg("selection write-through failed")
		}
		if res.Edition != nil {
			if err := s.store.Editions().Upsert(ctx, res.Edition); err != nil {
				s.log.Warn().Err(err).Uint64("sessionId", res.Edition.SessionID).Msg("edition write-through failed")
			}
		}
	}
	if res.HasWinner {
		if sess, err := s.eng.Session(res.WinnerID); err == nil {
			s.persistSession(ctx, sess)
		}
	}
	s.checkpoint(ctx)
	s.hooks.OnSessionSelected(ctx, res)
	return res, nil
}

func (s *CurationService) PeriodInfo() model.PeriodInfo { return s.eng.PeriodInfo() }

func (s *CurationService) SelectionHistory(ctx context.Context) ([]*storage.SelectionRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Selections().List(ctx)
}

// --- editions & payments ---

func (s *CurationService) PurchaseEdition(ctx context.Context, buyer string, sessionID, amount, payment uint64) (*model.PurchaseResult, error) {
	res, err := s.eng.PurchaseEdition(buyer, sessionID, amount, payment)
	if err != nil {
		return nil, err
	}
	s.persistEdition(ctx, sessionID)
	s.checkpoint(ctx)
	return res, nil
}

func (s *CurationService) DistributeCuratorEditions(ctx context.Context, caller string, sessionID uint64, shares []model.CuratorShare) error {
	if err := s.eng.DistributeCuratorEditions(caller, sessionID, shares); err != nil {
		return err
	}
	s.persistEdition(ctx, sessionID)
	s.checkpoint(ctx)
	return nil
}

func (s *CurationService) persistEdition(ctx context.Context, sessionID uint64) {
	if s.store == nil {
		return
	}
	ed, err := s.eng.Edition(sessionID)
	if err != nil {
		return
	}
	if err := s.store.Editions().Upsert(ctx, ed); err != nil {
		s.log.Warn().Err(err).Uint64("sessionId", sessionID).Msg("edition write-through failed")
	}
}

func (s *CurationService) Withdraw(ctx context.Context, principal string) (uint64, error) {
	amount, err := s.eng.Withdraw(principal)
	if err != nil {
		return 0, err
	}
	s.checkpoint(ctx)
	return amount, nil
}

func (s *CurationService) Edition(sessionID uint64) (*model.Edition, error) {
	return s.eng.Edition(sessionID)
}

func (s *CurationService) Balance(principal string) uint64 { return s.eng.Balance(principal) }

func (s *CurationService) Holding(sessionID uint64, principal string) uint64 {
	return s.eng.Holding(sessionID, principal)
}

// --- delegation ---

func (s *CurationService) ApproveDelegate(ctx context.Context, principal, delegate string, approved bool) error {
	if err := s.eng.ApproveDelegate(principal, delegate, approved); err != nil {
		return err
	}
	s.checkpoint(ctx)
	return nil
}

func (s *CurationService) IsDelegate(principal, delegate string) bool {
	return s.eng.IsDelegate(principal, delegate)
}

// --- administration ---

func (s *CurationService) Pause(ctx context.Context, caller string) error {
	return s.adminOp(ctx, func() error { return s.eng.Pause(caller) })
}

func (s *CurationService) Unpause(ctx context.Context, caller string) error {
	return s.adminOp(ctx, func() error { return s.eng.Unpause(caller) })
}

func (s *CurationService) GrantRole(ctx context.Context, caller string, role model.Role, principal string) error {
	return s.adminOp(ctx, func() error { return s.eng.GrantRole(caller, role, principal) })
}

func (s *CurationService) RevokeRole(ctx context.Context, caller string, role model.Role, principal string) error {
	return s.adminOp(ctx, func() error { return s.eng.RevokeRole(caller, role, principal) })
}

func (s *CurationService) adminOp(ctx context.Context, fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	s.checkpoint(ctx)
	return nil
}

func (s *CurationService) Paused() bool { return s.eng.Paused() }

// --- configuration ---

// StageConfigPatch stages the deferred configuration changes atomically.
func (s *CurationService) StageConfigPatch(ctx context.Context, caller string, p model.ConfigPatch) error {
	return s.adminOp(ctx, func() error { return s.eng.StageConfigPatch(caller, p) })
}

func (s *CurationService) SetSelectionMode(ctx context.Context, caller string, mode model.SelectionMode) error {
	return s.adminOp(ctx, func() error { return s.eng.SetSelectionMode(caller, mode) })
}

func (s *CurationService) SetTieBreak(ctx context.Context, caller string, tb model.TieBreak) error {
	return s.adminOp(ctx, func() error { return s.eng.SetTieBreak(caller, tb) })
}

func (s *CurationService) SetNoWinnerPolicy(ctx context.Context, caller string, p model.NoWinnerPolicy) error {
	return s.adminOp(ctx, func() error { return s.eng.SetNoWinnerPolicy(caller, p) })
}

func (s *CurationService) ConfigSnapshot() model.ConfigSnapshot { return s.eng.ConfigSnapshot() }
