package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"

	"github.com/curionet/curio/internal/model"
)

// SelectWinner closes the current period: it filters candidates, finds the
// maximum score, resolves ties, mints the winner's edition, applies pending
// configuration and opens the next period. The whole transition is one
// atomic unit under the engine lock; on any error no state changes.
func (e *Engine) SelectWinner() (*model.SelectionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return nil, model.ErrPaused
	}
	now := e.now()
	if now < e.periodEnd() {
		return nil, errors.Wrapf(model.ErrPeriodOpen, "%d seconds remain", e.periodEnd()-now)
	}

	closing := e.period.Number
	candidates := e.candidatesLocked()

	winner, score, found := e.bestCandidateLocked(candidates, closing)
	if !found {
		if e.conf.op.NoWinnerPolicy == model.NoWinnerAbort {
			return nil, model.ErrNoWinner
		}
		// Skip policy: advance without a winner.
		e.rolloverLocked(now)
		e.log.Info().Uint64("period", closing).Msg("period skipped, no winner")
		return &model.SelectionResult{Period: closing, Skipped: true}, nil
	}

	winner.SelectedPeriod = closing
	e.eligible.Remove(winner.ID)
	// Allocation amounts are fixed from the live config; the pending merge
	// below must not influence this mint.
	ed := e.mintEditionLocked(winner)
	e.rolloverLocked(now)

	e.log.Info().
		Uint64("period", closing).
		Uint64("winner", winner.ID).
		Uint64("score", score).
		Uint64("minted", ed.TotalMinted).
		Msg("winner selected")

	edCopy := *ed
	return &model.SelectionResult{
		Period:    closing,
		WinnerID:  winner.ID,
		HasWinner: true,
		Score:     score,
		Edition:   &edCopy,
	}, nil
}

// candidatesLocked returns the candidate id set for the closing period:
// the period's own submissions in round mode, the full eligibility index in
// continuous mode.
func (e *Engine) candidatesLocked() []uint64 {
	if e.conf.op.SelectionMode == model.ModeContinuous {
		return e.eligible.IDs()
	}
	return append([]uint64(nil), e.period.Submissions...)
}

// bestCandidateLocked filters resolved sessions, picks the maximum score
// and tie-breaks. Candidates are scanned in ascending id order so the
// lowest-id strategy is independent of input ordering.
func (e *Engine) bestCandidateLocked(ids []uint64, closingPeriod uint64) (*model.Session, uint64, bool) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var (
		ties []*model.Session
		max  uint64
	)
	for _, id := range ids {
		s, err := e.sessionLocked(id)
		if err != nil {
			continue
		}
		if s.Retracted || s.Selected() {
			continue
		}
		score := s.Score
		if e.conf.op.ResetScoresEachPeriod {
			score = s.PeriodScores[closingPeriod]
		}
		if score == 0 {
			continue
		}
		switch {
		case score > max:
			max = score
			ties = ties[:0]
			ties = append(ties, s)
		case score == max:
			ties = append(ties, s)
		}
	}
	if len(ties) == 0 {
		return nil, 0, false
	}
	if len(ties) == 1 {
		return ties[0], max, true
	}
	return e.breakTieLocked(ties), max, true
}

func (e *Engine) breakTieLocked(ties []*model.Session) *model.Session {
	switch e.conf.op.TieBreak {
	case model.TieBreakEarliest:
		best := ties[0]
		for _, s := range ties[1:] {
			if s.CreationTime < best.CreationTime ||
				(s.CreationTime == best.CreationTime && s.ID < best.ID) {
				best = s
			}
		}
		return best
	case model.TieBreakRandom:
		// This host has no consensus beacon, so the unpredictability source
		// is the platform CSPRNG, mixed with time and candidate count.
		var buf [8]byte
		seed := e.now() ^ uint64(len(ties))
		if _, err := crand.Read(buf[:]); err == nil {
			seed ^= binary.BigEndian.Uint64(buf[:])
		}
		return ties[seed%uint64(len(ties))]
	default: // lowest-id; ties are already in ascending id order
		return ties[0]
	}
}

// rolloverLocked merges pending configuration and opens the next period.
// This is the only place the pending shadow is applied.
func (e *Engine) rolloverLocked(now uint64) {
	e.conf.mergePending()
	e.period = period{Number: e.period.Number + 1, Start: now}
}
