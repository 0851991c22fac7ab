package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/curionet/curio/internal/model"
)

// ApproveDelegate lets a principal authorize (or revoke) a delegate to act
// on its behalf. One boolean per pair; setting it to the same value again
// is idempotent.
func (e *Engine) ApproveDelegate(principal, delegate string, approved bool) error {
	if principal == "" || delegate == "" {
		return model.ErrZeroPrincipal
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return model.ErrPaused
	}
	k := approvalKey{Principal: principal, Delegate: delegate}
	if approved {
		e.approvals[k] = true
	} else {
		delete(e.approvals, k)
	}
	return nil
}

// IsDelegate reports whether delegate is approved for principal.
func (e *Engine) IsDelegate(principal, delegate string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.approvals[approvalKey{Principal: principal, Delegate: delegate}]
}

// authorizeActorLocked checks that caller may act as principal: self,
// approved delegate, or a privileged relayer (who may act for anyone).
func (e *Engine) authorizeActorLocked(caller, principal string) error {
	if caller == principal {
		return nil
	}
	if e.approvals[approvalKey{Principal: principal, Delegate: caller}] {
		return nil
	}
	if e.roles[roleKey{Role: model.RoleRelayer, Principal: caller}] {
		return nil
	}
	return errors.Wrapf(model.ErrNotDelegate, "%s cannot act for %s", caller, principal)
}

// React records one reaction by reactor on a session. Reactions require the
// period to still be open, the session to still be eligible, gating
// verification, and a free slot in the reactor's daily allowance.
func (e *Engine) React(ctx context.Context, reactor string, sessionID, claimedUnits uint64, proof []byte) (*model.Session, error) {
	return e.ReactFor(ctx, reactor, reactor, sessionID, claimedUnits, proof)
}

// ReactFor is React invoked by a delegate or relayer on the reactor's behalf.
func (e *Engine) ReactFor(ctx context.Context, caller, reactor string, sessionID, claimedUnits uint64, proof []byte) (*model.Session, error) {
	if reactor == "" {
		return nil, model.ErrZeroPrincipal
	}
	if caller == "" {
		caller = reactor
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return nil, model.ErrPaused
	}
	if err := e.authorizeActorLocked(caller, reactor); err != nil {
		return nil, err
	}
	s, err := e.reactLocked(ctx, reactor, sessionID, claimedUnits, proof)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// reactLocked performs validation, rate limiting and scoring for one
// reaction. Callers hold the lock and have already authorized the actor.
func (e *Engine) reactLocked(ctx context.Context, reactor string, sessionID, claimedUnits uint64, proof []byte) (*model.Session, error) {
	s, err := e.sessionLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if !e.eligible.Contains(sessionID) {
		return nil, errors.Wrapf(model.ErrNotEligible, "session %d", sessionID)
	}
	now := e.now()
	if now >= e.periodEnd() {
		return nil, model.ErrPeriodClosed
	}
	weight, err := e.verifyWeight(ctx, reactor, claimedUnits, proof)
	if err != nil {
		return nil, err
	}
	capacity := weight * e.conf.op.ReactionsPerWeightUnit
	if err := e.limits.consume(reactor, dayBucket(now), capacity, model.KindReaction); err != nil {
		return nil, err
	}

	s.Reactions++
	delta := e.addScoreLocked(s, reactor, model.KindReaction, e.conf.scoring.ReactionWeight, now)
	e.log.Debug().
		Uint64("session", sessionID).
		Str("reactor", reactor).
		Uint64("delta", delta).
		Uint64("score", s.Score).
		Msg("reaction recorded")
	return s, nil
}

// BatchReact processes relayed reactions best-effort: each entry is
// validated independently and a failing entry is skipped, never aborting
// the batch. The caller must hold the relayer role; callers inspect the
// returned records to learn which entries succeeded.
func (e *Engine) BatchReact(ctx context.Context, caller string, entries []model.BatchReactEntry) ([]model.BatchReactResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRoleLocked(caller, model.RoleRelayer); err != nil {
		return nil, err
	}

	results := make([]model.BatchReactResult, len(entries))
	for i, entry := range entries {
		results[i].Index = i
		switch {
		case e.paused:
			results[i].Error = model.ErrPaused.Error()
		case entry.Reactor == "":
			results[i].Error = model.ErrZeroPrincipal.Error()
		default:
			if _, err := e.reactLocked(ctx, entry.Reactor, entry.SessionID, entry.ClaimedUnits, entry.Proof); err != nil {
				results[i].Error = err.Error()
			} else {
				results[i].OK = true
			}
		}
		if !results[i].OK {
			e.log.Debug().Int("index", i).Str("reactor", entry.Reactor).Str("reason", results[i].Error).Msg("batch entry skipped")
		}
	}
	return results, nil
}
