package engine

import "github.com/curionet/curio/internal/model"

// Default configuration. Values come into effect at boot and are adjusted
// through the deferred setters afterwards.
const (
	// defaultScale lifts engagement counts into fixed-point territory before
	// the square root so deltas keep precision under integer math.
	defaultScale = 1_000_000

	defaultDecayBase = 100 // 100% = no decay
	defaultDecayMin  = 10  // floor so late engagement is never worth zero

	defaultPeriodDuration         = secondsPerDay
	defaultReactionsPerWeightUnit = 10
	defaultMessagesPerWeightUnit  = 10
	defaultEditionPrice           = 1000
	defaultMaxSessionsPerPeriod   = 100
	defaultCreatorEditions        = 1
	defaultCuratorEditions        = 3
	defaultPublicEditions         = 10
	defaultCreatorShareBps        = 5000

	bpsDenominator = 10_000
)

// DefaultOperating returns the boot operating configuration.
func DefaultOperating() model.OperatingConfig {
	return model.OperatingConfig{
		PeriodDuration:         defaultPeriodDuration,
		ReactionsPerWeightUnit: defaultReactionsPerWeightUnit,
		MessagesPerWeightUnit:  defaultMessagesPerWeightUnit,
		EditionPrice:           defaultEditionPrice,
		MaxSessions:            0,
		MaxSessionsPerPeriod:   defaultMaxSessionsPerPeriod,
		CreatorEditions:        defaultCreatorEditions,
		CuratorEditions:        defaultCuratorEditions,
		PublicEditions:         defaultPublicEditions,
		CreatorShareBps:        defaultCreatorShareBps,
		SelectionMode:          model.ModeRound,
		TieBreak:               model.TieBreakLowestID,
		NoWinnerPolicy:         model.NoWinnerSkip,
	}
}

// DefaultScoring returns the boot scoring configuration. MessageWeight is 0:
// messages are commentary and do not score unless an operator opts in.
func DefaultScoring() model.ScoringConfig {
	return model.ScoringConfig{
		ReactionWeight: 1,
		MessageWeight:  0,
		DecayMin:       defaultDecayMin,
		DecayBase:      defaultDecayBase,
		Scale:          defaultScale,
	}
}

// normalizeOperating fills zero-valued required fields with defaults.
func normalizeOperating(c model.OperatingConfig) model.OperatingConfig {
	d := DefaultOperating()
	if c.PeriodDuration == 0 {
		c.PeriodDuration = d.PeriodDuration
	}
	if c.ReactionsPerWeightUnit == 0 {
		c.ReactionsPerWeightUnit = d.ReactionsPerWeightUnit
	}
	if c.MessagesPerWeightUnit == 0 {
		c.MessagesPerWeightUnit = d.MessagesPerWeightUnit
	}
	if c.EditionPrice == 0 {
		c.EditionPrice = d.EditionPrice
	}
	if c.MaxSessionsPerPeriod == 0 {
		c.MaxSessionsPerPeriod = d.MaxSessionsPerPeriod
	}
	if c.CreatorEditions == 0 && c.CuratorEditions == 0 && c.PublicEditions == 0 {
		c.CreatorEditions = d.CreatorEditions
		c.CuratorEditions = d.CuratorEditions
		c.PublicEditions = d.PublicEditions
	}
	if c.CreatorShareBps == 0 {
		c.CreatorShareBps = d.CreatorShareBps
	}
	if c.SelectionMode == "" {
		c.SelectionMode = d.SelectionMode
	}
	if c.TieBreak == "" {
		c.TieBreak = d.TieBreak
	}
	if c.NoWinnerPolicy == "" {
		c.NoWinnerPolicy = d.NoWinnerPolicy
	}
	return c
}

func normalizeScoring(c model.ScoringConfig) model.ScoringConfig {
	d := DefaultScoring()
	if c.Scale == 0 {
		c.Scale = d.Scale
	}
	if c.DecayBase == 0 {
		c.DecayBase = d.DecayBase
	}
	if c.DecayMin == 0 {
		c.DecayMin = d.DecayMin
	}
	if c.ReactionWeight == 0 {
		c.ReactionWeight = d.ReactionWeight
	}
	return c
}

// confState pairs the live configuration with its pending shadow. Deferred
// setters write the shadow; mergePending folds it into the live copy and runs
// only inside the period rollover transition.
type confState struct {
	op             model.OperatingConfig
	scoring        model.ScoringConfig
	pendingOp      model.OperatingConfig
	pendingScoring model.ScoringConfig
	opDirty        bool
	scoringDirty   bool
}

// stageOp prepares the pending operating config for mutation and returns a
// pointer to it. The first staged change starts from a copy of the live one.
func (c *confState) stageOp() *model.OperatingConfig {
	if !c.opDirty {
		c.pendingOp = c.op
		c.opDirty = true
	}
	return &c.pendingOp
}

func (c *confState) stageScoring() *model.ScoringConfig {
	if !c.scoringDirty {
		c.pendingScoring = c.scoring
		c.scoringDirty = true
	}
	return &c.pendingScoring
}

// setImmediate applies fn to the live operating config and, when a pending
// shadow exists, to the shadow as well so the rollover merge cannot revert
// an immediate setting.
func (c *confState) setImmediate(fn func(*model.OperatingConfig)) {
	fn(&c.op)
	if c.opDirty {
		fn(&c.pendingOp)
	}
}

// mergePending folds staged changes into the live configs. Only the period
// rollover calls this.
func (c *confState) mergePending() {
	if c.opDirty {
		c.op = c.pendingOp
		c.opDirty = false
	}
	if c.scoringDirty {
		c.scoring = c.pendingScoring
		c.scoringDirty = false
	}
}

func (c *confState) scoringParams() scoringParams {
	return scoringParams{scale: c.scoring.Scale, decayMin: c.scoring.DecayMin, decayBase: c.scoring.DecayBase}
}

// snapshot exposes active plus pending values for the config query.
func (c *confState) snapshot() model.ConfigSnapshot {
	out := model.ConfigSnapshot{Operating: c.op, Scoring: c.scoring}
	if c.opDirty {
		p := c.pendingOp
		out.PendingOperating = &p
	}
	if c.scoringDirty {
		p := c.pendingScoring
		out.PendingScoring = &p
	}
	return out
}
