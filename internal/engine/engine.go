// Package engine owns the curation state machine: the session ledger,
// engagement scoring, rate limits, period selection, editions and
// delegation. All state is exclusively owned here and mutated only through
// the exported operations; every mutating entry point holds the engine lock
// for its duration and either commits entirely or has no effect.
package engine

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/curionet/curio/internal/gating"
	"github.com/curionet/curio/internal/model"
)

type engagementKey struct {
	SessionID uint64
	Principal string
	Kind      model.EngagementKind
}

type holdingKey struct {
	SessionID uint64
	Principal string
}

type approvalKey struct {
	Principal string
	Delegate  string
}

type roleKey struct {
	Role      model.Role
	Principal string
}

// period is the current epoch's bookkeeping.
type period struct {
	Number      uint64   `json:"number"`
	Start       uint64   `json:"start"`
	Submissions []uint64 `json:"submissions"`
}

// Engine is the session curation and selection core.
type Engine struct {
	mu       sync.Mutex
	clock    Clock
	log      zerolog.Logger
	verifier gating.Verifier

	conf confState

	sessions   []*model.Session
	messages   []*model.Message
	eligible   *eligibilityIndex
	period     period
	engagement map[engagementKey]uint64
	limits     *rateLimiter
	editions   map[uint64]*model.Edition
	holdings   map[holdingKey]uint64
	balances   map[string]uint64
	approvals  map[approvalKey]bool
	roles      map[roleKey]bool
	paused     bool
}

// Params configures a new Engine. Zero-valued config fields fall back to
// defaults; Owner is granted the admin role.
type Params struct {
	Clock     Clock
	Logger    zerolog.Logger
	Verifier  gating.Verifier
	Operating model.OperatingConfig
	Scoring   model.ScoringConfig
	Owner     string
}

// New builds an engine with period 1 open as of the clock's current time.
func New(p Params) *Engine {
	if p.Clock == nil {
		p.Clock = SystemClock()
	}
	e := &Engine{
		clock:      p.Clock,
		log:        p.Logger,
		verifier:   p.Verifier,
		eligible:   newEligibilityIndex(),
		engagement: make(map[engagementKey]uint64),
		limits:     newRateLimiter(),
		editions:   make(map[uint64]*model.Edition),
		holdings:   make(map[holdingKey]uint64),
		balances:   make(map[string]uint64),
		approvals:  make(map[approvalKey]bool),
		roles:      make(map[roleKey]bool),
	}
	e.conf.op = normalizeOperating(p.Operating)
	e.conf.scoring = normalizeScoring(p.Scoring)
	e.period = period{Number: 1, Start: e.now()}
	if p.Owner != "" {
		e.roles[roleKey{Role: model.RoleAdmin, Principal: p.Owner}] = true
	}
	return e
}

func (e *Engine) now() uint64 { return uint64(e.clock.Now().Unix()) }

// periodEnd is the first instant at which the current period is closed.
func (e *Engine) periodEnd() uint64 { return e.period.Start + e.conf.op.PeriodDuration }

// verifyWeight consults the gating collaborator. Valid=false or weight 0 is
// rejected uniformly regardless of the verification scheme behind it.
func (e *Engine) verifyWeight(ctx context.Context, principal string, claimedUnits uint64, proof []byte) (uint64, error) {
	if e.verifier == nil {
		return 0, errors.Wrap(model.ErrGateRejected, "no verifier configured")
	}
	res, err := e.verifier.Verify(ctx, principal, claimedUnits, proof)
	if err != nil {
		return 0, errors.Wrap(err, "gating verify")
	}
	if !res.Valid || res.Weight == 0 {
		if res.Reason != "" {
			return 0, errors.Wrap(model.ErrGateRejected, res.Reason)
		}
		return 0, model.ErrGateRejected
	}
	return res.Weight, nil
}

// SubmitSession appends a new session under the current period and inserts
// it into the eligibility index. The creator must pass gating verification
// (submission rights) and both submission caps must be unmet.
func (e *Engine) SubmitSession(ctx context.Context, creator, contentAddress string, claimedUnits uint64, proof []byte) (*model.Session, error) {
	if creator == "" {
		return nil, model.ErrZeroPrincipal
	}
	if err := model.ValidateContentAddress(contentAddress); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return nil, model.ErrPaused
	}
	if _, err := e.verifyWeight(ctx, creator, claimedUnits, proof); err != nil {
		return nil, err
	}
	op := e.conf.op
	if op.MaxSessions != 0 && uint64(len(e.sessions)) >= op.MaxSessions {
		return nil, errors.Wrap(model.ErrSessionCap, "global cap")
	}
	if op.MaxSessionsPerPeriod != 0 && uint64(len(e.period.Submissions)) >= op.MaxSessionsPerPeriod {
		return nil, errors.Wrap(model.ErrSessionCap, "per-period cap")
	}

	s := &model.Session{
		ID:              uint64(len(e.sessions)),
		Creator:         creator,
		ContentAddress:  contentAddress,
		PeriodScores:    make(map[uint64]uint64),
		CreationTime:    e.now(),
		SubmittedPeriod: e.period.Number,
	}
	e.sessions = append(e.sessions, s)
	e.period.Submissions = append(e.period.Submissions, s.ID)
	e.eligible.Add(s.ID)

	e.log.Info().Uint64("session", s.ID).Str("creator", creator).Uint64("period", e.period.Number).Msg("session submitted")
	return s.Clone(), nil
}

// RetractSession flags the session retracted and drops it from the
// eligibility index. Only the original creator may retract; a selected or
// already-retracted session cannot be.
func (e *Engine) RetractSession(caller string, sessionID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return model.ErrPaused
	}
	s, err := e.sessionLocked(sessionID)
	if err != nil {
		return err
	}
	if s.Creator != caller {
		return model.ErrNotCreator
	}
	if s.Selected() {
		return model.ErrAlreadySelected
	}
	if s.Retracted {
		return model.ErrAlreadyRetracted
	}
	s.Retracted = true
	e.eligible.Remove(sessionID)
	e.log.Info().Uint64("session", sessionID).Msg("session retracted")
	return nil
}

// MessageRequest carries one message submission. Caller defaults to Sender;
// a distinct Caller must be an approved delegate or a relayer.
type MessageRequest struct {
	Caller         string
	Sender         string
	SessionID      uint64
	ContentAddress string
	Attachments    []string
	ClaimedUnits   uint64
	Proof          []byte
}

// SendMessage attaches a message to an existing session. There is
// deliberately no period-open check here: commentary stays open after
// voting closes (reactions do enforce the check).
func (e *Engine) SendMessage(ctx context.Context, req MessageRequest) (*model.Message, error) {
	if req.Sender == "" {
		return nil, model.ErrZeroPrincipal
	}
	if err := model.ValidateContentAddress(req.ContentAddress); err != nil {
		return nil, err
	}
	for _, a := range req.Attachments {
		if err := model.ValidateContentAddress(a); err != nil {
			return nil, errors.Wrap(err, "attachment")
		}
	}
	if req.Caller == "" {
		req.Caller = req.Sender
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return nil, model.ErrPaused
	}
	if err := e.authorizeActorLocked(req.Caller, req.Sender); err != nil {
		return nil, err
	}
	s, err := e.sessionLocked(req.SessionID)
	if err != nil {
		return nil, err
	}
	weight, err := e.verifyWeight(ctx, req.Sender, req.ClaimedUnits, req.Proof)
	if err != nil {
		return nil, err
	}
	now := e.now()
	capacity := weight * e.conf.op.MessagesPerWeightUnit
	if err := e.limits.consume(req.Sender, dayBucket(now), capacity, model.KindMessage); err != nil {
		return nil, err
	}

	m := &model.Message{
		ID:             uint64(len(e.messages)),
		SessionID:      req.SessionID,
		Sender:         req.Sender,
		ContentAddress: req.ContentAddress,
		Attachments:    append([]string(nil), req.Attachments...),
		CreationTime:   now,
	}
	e.messages = append(e.messages, m)
	s.Messages++

	// Messages only score while the period is open and only when an
	// operator has opted in with a non-zero message weight.
	if w := e.conf.scoring.MessageWeight; w > 0 && now < e.periodEnd() && e.eligible.Contains(s.ID) {
		e.addScoreLocked(s, req.Sender, model.KindMessage, w, now)
	}

	e.log.Info().Uint64("message", m.ID).Uint64("session", s.ID).Str("sender", req.Sender).Msg("message recorded")
	cp := *m
	return &cp, nil
}

// addScoreLocked bumps the per-principal engagement counter and adds the
// decayed quadratic contribution to both score fields.
func (e *Engine) addScoreLocked(s *model.Session, principal string, kind model.EngagementKind, kindWeight, now uint64) uint64 {
	k := engagementKey{SessionID: s.ID, Principal: principal, Kind: kind}
	e.engagement[k]++
	var remaining uint64
	if end := e.periodEnd(); now < end {
		remaining = end - now
	}
	delta := scoreContribution(e.engagement[k], remaining, e.conf.op.PeriodDuration, kindWeight, e.conf.scoringParams())
	s.Score += delta
	if s.PeriodScores == nil {
		s.PeriodScores = make(map[uint64]uint64)
	}
	s.PeriodScores[e.period.Number] += delta
	return delta
}

func (e *Engine) sessionLocked(id uint64) (*model.Session, error) {
	if id >= uint64(len(e.sessions)) {
		return nil, errors.Wrapf(model.ErrNotFound, "session %d", id)
	}
	return e.sessions[id], nil
}

// --- Administrative surface ---

func (e *Engine) requireRoleLocked(caller string, role model.Role) error {
	if !e.roles[roleKey{Role: role, Principal: caller}] {
		return errors.Wrapf(model.ErrNotAuthority, "%s is not %s", caller, role)
	}
	return nil
}

// Pause stops every mutating operation except Unpause. Queries keep working.
func (e *Engine) Pause(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRoleLocked(caller, model.RoleAdmin); err != nil {
		return err
	}
	e.paused = true
	e.log.Warn().Str("caller", caller).Msg("engine paused")
	return nil
}

func (e *Engine) Unpause(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRoleLocked(caller, model.RoleAdmin); err != nil {
		return err
	}
	e.paused = false
	e.log.Info().Str("caller", caller).Msg("engine unpaused")
	return nil
}

// GrantRole grants role to principal. Admin only.
func (e *Engine) GrantRole(caller string, role model.Role, principal string) error {
	if principal == "" {
		return model.ErrZeroPrincipal
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRoleLocked(caller, model.RoleAdmin); err != nil {
		return err
	}
	e.roles[roleKey{Role: role, Principal: principal}] = true
	return nil
}

func (e *Engine) RevokeRole(caller string, role model.Role, principal string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRoleLocked(caller, model.RoleAdmin); err != nil {
		return err
	}
	delete(e.roles, roleKey{Role: role, Principal: principal})
	return nil
}

// HasRole reports role membership.
func (e *Engine) HasRole(role model.Role, principal string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roles[roleKey{Role: role, Principal: principal}]
}

// --- Deferred configuration setters (take effect at the next rollover) ---

func (e *Engine) SetPeriodDuration(caller string, seconds uint64) error {
	if seconds == 0 {
		return errors.Wrap(model.ErrValidation, "period duration must be positive")
	}
	return e.stageOpChange(caller, func(c *model.OperatingConfig) { c.PeriodDuration = seconds })
}

func (e *Engine) SetAllowances(caller string, reactionsPerUnit, messagesPerUnit uint64) error {
	return e.stageOpChange(caller, func(c *model.OperatingConfig) {
		c.ReactionsPerWeightUnit = reactionsPerUnit
		c.MessagesPerWeightUnit = messagesPerUnit
	})
}

func (e *Engine) SetEditionPrice(caller string, price uint64) error {
	return e.stageOpChange(caller, func(c *model.OperatingConfig) { c.EditionPrice = price })
}

func (e *Engine) SetEditionAllocation(caller string, creator, curator, public uint64) error {
	return e.stageOpChange(caller, func(c *model.OperatingConfig) {
		c.CreatorEditions = creator
		c.CuratorEditions = curator
		c.PublicEditions = public
	})
}

func (e *Engine) SetSubmissionCaps(caller string, global, perPeriod uint64) error {
	return e.stageOpChange(caller, func(c *model.OperatingConfig) {
		c.MaxSessions = global
		c.MaxSessionsPerPeriod = perPeriod
	})
}

func (e *Engine) SetTreasury(caller, treasury string, creatorShareBps uint64) error {
	if creatorShareBps > bpsDenominator {
		return errors.Wrap(model.ErrValidation, "creator share exceeds 10000 bps")
	}
	return e.stageOpChange(caller, func(c *model.OperatingConfig) {
		c.Treasury = treasury
		c.CreatorShareBps = creatorShareBps
	})
}

func (e *Engine) SetScoreReset(caller string, reset bool) error {
	return e.stageOpChange(caller, func(c *model.OperatingConfig) { c.ResetScoresEachPeriod = reset })
}

func (e *Engine) SetScoringConfig(caller string, sc model.ScoringConfig) error {
	sc = normalizeScoring(sc)
	if sc.DecayMin > sc.DecayBase {
		return errors.Wrap(model.ErrValidation, "decay floor above decay base")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRoleLocked(caller, model.RoleAdmin); err != nil {
		return err
	}
	*e.conf.stageScoring() = sc
	return nil
}

// StageConfigPatch stages every present field of the patch in one step.
// Validation runs over the whole patch first, so a patch with an invalid
// field stages nothing at all.
func (e *Engine) StageConfigPatch(caller string, p model.ConfigPatch) error {
	if p.PeriodDuration != nil && *p.PeriodDuration == 0 {
		return errors.Wrap(model.ErrValidation, "period duration must be positive")
	}
	if p.Treasury != nil && p.Treasury.CreatorShareBps > bpsDenominator {
		return errors.Wrap(model.ErrValidation, "creator share exceeds 10000 bps")
	}
	var scoring model.ScoringConfig
	if p.Scoring != nil {
		scoring = normalizeScoring(*p.Scoring)
		if scoring.DecayMin > scoring.DecayBase {
			return errors.Wrap(model.ErrValidation, "decay floor above decay base")
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRoleLocked(caller, model.RoleAdmin); err != nil {
		return err
	}
	if p.PeriodDuration != nil {
		e.conf.stageOp().PeriodDuration = *p.PeriodDuration
	}
	if p.Allowances != nil {
		op := e.conf.stageOp()
		op.ReactionsPerWeightUnit = p.Allowances.ReactionsPerWeightUnit
		op.MessagesPerWeightUnit = p.Allowances.MessagesPerWeightUnit
	}
	if p.EditionPrice != nil {
		e.conf.stageOp().EditionPrice = *p.EditionPrice
	}
	if p.EditionAllocation != nil {
		op := e.conf.stageOp()
		op.CreatorEditions = p.EditionAllocation.Creator
		op.CuratorEditions = p.EditionAllocation.Curator
		op.PublicEditions = p.EditionAllocation.Public
	}
	if p.SubmissionCaps != nil {
		op := e.conf.stageOp()
		op.MaxSessions = p.SubmissionCaps.MaxSessions
		op.MaxSessionsPerPeriod = p.SubmissionCaps.MaxSessionsPerPeriod
	}
	if p.Treasury != nil {
		op := e.conf.stageOp()
		op.Treasury = p.Treasury.Treasury
		op.CreatorShareBps = p.Treasury.CreatorShareBps
	}
	if p.ResetScoresEachPeriod != nil {
		e.conf.stageOp().ResetScoresEachPeriod = *p.ResetScoresEachPeriod
	}
	if p.Scoring != nil {
		*e.conf.stageScoring() = scoring
	}
	return nil
}

func (e *Engine) stageOpChange(caller string, fn func(*model.OperatingConfig)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRoleLocked(caller, model.RoleAdmin); err != nil {
		return err
	}
	fn(e.conf.stageOp())
	return nil
}

// --- Immediate setters (selection policy switches) ---

func (e *Engine) SetSelectionMode(caller string, mode model.SelectionMode) error {
	if mode != model.ModeRound && mode != model.ModeContinuous {
		return errors.Wrap(model.ErrValidation, "unknown selection mode")
	}
	return e.setImmediate(caller, func(c *model.OperatingConfig) { c.SelectionMode = mode })
}

func (e *Engine) SetTieBreak(caller string, tb model.TieBreak) error {
	switch tb {
	case model.TieBreakLowestID, model.TieBreakEarliest, model.TieBreakRandom:
	default:
		return errors.Wrap(model.ErrValidation, "unknown tie-break strategy")
	}
	return e.setImmediate(caller, func(c *model.OperatingConfig) { c.TieBreak = tb })
}

func (e *Engine) SetNoWinnerPolicy(caller string, p model.NoWinnerPolicy) error {
	if p != model.NoWinnerAbort && p != model.NoWinnerSkip {
		return errors.Wrap(model.ErrValidation, "unknown no-winner policy")
	}
	return e.setImmediate(caller, func(c *model.OperatingConfig) { c.NoWinnerPolicy = p })
}

func (e *Engine) setImmediate(caller string, fn func(*model.OperatingConfig)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRoleLocked(caller, model.RoleAdmin); err != nil {
		return err
	}
	e.conf.setImmediate(fn)
	return nil
}

// --- Read-only queries ---

// PeriodInfo reports the current period and its remaining time.
func (e *Engine) PeriodInfo() model.PeriodInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	info := model.PeriodInfo{
		Number:        e.period.Number,
		Start:         e.period.Start,
		Duration:      e.conf.op.PeriodDuration,
		Submissions:   len(e.period.Submissions),
		EligibleCount: e.eligible.Len(),
	}
	if now := e.now(); now < e.periodEnd() {
		info.TimeRemaining = e.periodEnd() - now
	}
	return info
}

// RemainingAllowance reports how many engagement calls the principal has
// left today for the given kind, under its verified weight.
func (e *Engine) RemainingAllowance(ctx context.Context, principal string, kind model.EngagementKind, claimedUnits uint64, proof []byte) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	weight, err := e.verifyWeight(ctx, principal, claimedUnits, proof)
	if err != nil {
		return 0, err
	}
	perUnit := e.conf.op.ReactionsPerWeightUnit
	if kind == model.KindMessage {
		perUnit = e.conf.op.MessagesPerWeightUnit
	}
	return e.limits.remaining(principal, dayBucket(e.now()), weight*perUnit, kind), nil
}

// ConfigSnapshot returns active and pending configuration.
func (e *Engine) ConfigSnapshot() model.ConfigSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conf.snapshot()
}

// Session returns a copy of one session.
func (e *Engine) Session(id uint64) (*model.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.sessionLocked(id)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// Sessions returns copies of all sessions in id order.
func (e *Engine) Sessions() []*model.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*model.Session, len(e.sessions))
	for i, s := range e.sessions {
		out[i] = s.Clone()
	}
	return out
}

// MessagesFor returns copies of a session's messages in creation order.
func (e *Engine) MessagesFor(sessionID uint64) ([]*model.Message, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.sessionLocked(sessionID); err != nil {
		return nil, err
	}
	var out []*model.Message
	for _, m := range e.messages {
		if m.SessionID == sessionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Paused reports whether the engine is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}
