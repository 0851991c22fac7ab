package engine

import (
	"github.com/pkg/errors"

	"github.com/curionet/curio/internal/model"
)

// mintEditionLocked creates the winner's edition from the live (not pending)
// allocation configuration, crediting the creator pool immediately and
// holding the curator and public pools for later distribution and sale.
func (e *Engine) mintEditionLocked(winner *model.Session) *model.Edition {
	op := e.conf.op
	ed := &model.Edition{
		SessionID:     winner.ID,
		CreatorAmount: op.CreatorEditions,
		CuratorAmount: op.CuratorEditions,
		PublicAmount:  op.PublicEditions,
		Price:         op.EditionPrice,
	}
	ed.TotalMinted = ed.CreatorAmount + ed.CuratorAmount + ed.PublicAmount
	if ed.TotalMinted == 0 {
		ed.CreatorAmount = 1
		ed.TotalMinted = 1
	}
	if ed.CreatorAmount > 0 {
		e.holdings[holdingKey{SessionID: winner.ID, Principal: winner.Creator}] += ed.CreatorAmount
	}
	e.editions[winner.ID] = ed
	return ed
}

// PurchaseEdition sells amount units from the public pool. payment must
// cover price × amount; any excess is refunded in the result. Proceeds are
// split between the session creator and the treasury by the configured
// basis-point share.
func (e *Engine) PurchaseEdition(buyer string, sessionID, amount, payment uint64) (*model.PurchaseResult, error) {
	if buyer == "" {
		return nil, model.ErrZeroPrincipal
	}
	if amount == 0 {
		return nil, errors.Wrap(model.ErrValidation, "zero amount")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return nil, model.ErrPaused
	}
	ed, ok := e.editions[sessionID]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "edition for session %d", sessionID)
	}
	if ed.PublicRemaining() < amount {
		return nil, errors.Wrapf(model.ErrPoolExhausted, "%d units held", ed.PublicRemaining())
	}
	cost := ed.Price * amount
	if payment < cost {
		return nil, errors.Wrapf(model.ErrInsufficientPayment, "need %d", cost)
	}

	s, err := e.sessionLocked(sessionID)
	if err != nil {
		return nil, err
	}
	creatorShare := cost * e.conf.op.CreatorShareBps / bpsDenominator
	treasuryShare := cost - creatorShare
	if e.conf.op.Treasury == "" {
		// No treasury configured: the creator keeps the whole proceeds.
		creatorShare, treasuryShare = cost, 0
	}
	e.balances[s.Creator] += creatorShare
	if treasuryShare > 0 {
		e.balances[e.conf.op.Treasury] += treasuryShare
	}

	ed.PublicSold += amount
	e.holdings[holdingKey{SessionID: sessionID, Principal: buyer}] += amount

	e.log.Info().
		Uint64("session", sessionID).
		Str("buyer", buyer).
		Uint64("amount", amount).
		Uint64("cost", cost).
		Msg("edition purchased")

	return &model.PurchaseResult{
		SessionID: sessionID,
		Amount:    amount,
		Cost:      cost,
		Refund:    payment - cost,
	}, nil
}

// DistributeCuratorEditions transfers curator-pool units to the given
// principals. The bookkeeping check is all-or-nothing for the batch: the
// total must fit both the remaining curator allocation and the units still
// held for the edition. A zero-amount entry is a no-op, not an error.
// Admin only.
func (e *Engine) DistributeCuratorEditions(caller string, sessionID uint64, shares []model.CuratorShare) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return model.ErrPaused
	}
	if err := e.requireRoleLocked(caller, model.RoleAdmin); err != nil {
		return err
	}
	ed, ok := e.editions[sessionID]
	if !ok {
		return errors.Wrapf(model.ErrNotFound, "edition for session %d", sessionID)
	}

	var total uint64
	for _, sh := range shares {
		if sh.Principal == "" && sh.Amount > 0 {
			return model.ErrZeroPrincipal
		}
		total += sh.Amount
	}
	if total > ed.CuratorRemaining() {
		return errors.Wrapf(model.ErrCuratorAllocation, "%d remaining", ed.CuratorRemaining())
	}
	if held := ed.CuratorRemaining() + ed.PublicRemaining(); total > held {
		return errors.Wrapf(model.ErrPoolExhausted, "%d units held", held)
	}

	for _, sh := range shares {
		if sh.Amount == 0 {
			continue
		}
		e.holdings[holdingKey{SessionID: sessionID, Principal: sh.Principal}] += sh.Amount
	}
	ed.CuratorDistributed += total

	e.log.Info().Uint64("session", sessionID).Uint64("total", total).Int("entries", len(shares)).Msg("curator editions distributed")
	return nil
}

// Withdraw drains the principal's proceeds balance and reports the amount.
func (e *Engine) Withdraw(principal string) (uint64, error) {
	if principal == "" {
		return 0, model.ErrZeroPrincipal
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return 0, model.ErrPaused
	}
	bal := e.balances[principal]
	if bal == 0 {
		return 0, model.ErrNothingToWithdraw
	}
	delete(e.balances, principal)
	e.log.Info().Str("principal", principal).Uint64("amount", bal).Msg("balance withdrawn")
	return bal, nil
}

// Edition returns a copy of the edition minted for a winning session.
func (e *Engine) Edition(sessionID uint64) (*model.Edition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ed, ok := e.editions[sessionID]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "edition for session %d", sessionID)
	}
	cp := *ed
	return &cp, nil
}

// Balance reports the principal's undrained proceeds.
func (e *Engine) Balance(principal string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balances[principal]
}

// Holding reports how many units of a session's edition a principal holds.
func (e *Engine) Holding(sessionID uint64, principal string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.holdings[holdingKey{SessionID: sessionID, Principal: principal}]
}
