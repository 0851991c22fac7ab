package model

// Session is a submitted content unit competing for periodic selection.
type Session struct {
	ID              uint64            `json:"id"`
	Creator         string            `json:"creator"`
	ContentAddress  string            `json:"contentAddress"`
	Reactions       uint64            `json:"reactions"`
	Messages        uint64            `json:"messages"`
	Score           uint64            `json:"score"`
	PeriodScores    map[uint64]uint64 `json:"periodScores,omitempty"`
	CreationTime    uint64            `json:"creationTime"`
	SubmittedPeriod uint64            `json:"submittedPeriod"`
	// SelectedPeriod is 0 until the session wins; periods start at 1.
	SelectedPeriod uint64 `json:"selectedPeriod"`
	Retracted      bool   `json:"retracted"`
}

// Selected reports whether the session has already won a period.
func (s *Session) Selected() bool { return s.SelectedPeriod != 0 }

// Clone returns a deep copy safe to hand outside the engine lock.
// PeriodScores is the only reference field mutated after creation.
func (s *Session) Clone() *Session {
	cp := *s
	cp.PeriodScores = make(map[uint64]uint64, len(s.PeriodScores))
	for k, v := range s.PeriodScores {
		cp.PeriodScores[k] = v
	}
	return &cp
}

// Message is a reference to off-chain content attached to a session.
// Immutable once created.
type Message struct {
	ID             uint64   `json:"id"`
	SessionID      uint64   `json:"sessionId"`
	Sender         string   `json:"sender"`
	ContentAddress string   `json:"contentAddress"`
	Attachments    []string `json:"attachments,omitempty"`
	CreationTime   uint64   `json:"creationTime"`
}

// Edition is the collectible output minted for a winning session.
type Edition struct {
	SessionID          uint64 `json:"sessionId"`
	TotalMinted        uint64 `json:"totalMinted"`
	CreatorAmount      uint64 `json:"creatorAmount"`
	CuratorAmount      uint64 `json:"curatorAmount"`
	PublicAmount       uint64 `json:"publicAmount"`
	CuratorDistributed uint64 `json:"curatorDistributed"`
	PublicSold         uint64 `json:"publicSold"`
	Price              uint64 `json:"price"`
}

// PublicRemaining reports edition units still purchasable.
func (e *Edition) PublicRemaining() uint64 { return e.PublicAmount - e.PublicSold }

// CuratorRemaining reports edition units still distributable to curators.
func (e *Edition) CuratorRemaining() uint64 { return e.CuratorAmount - e.CuratorDistributed }

// SelectionMode controls which sessions are candidates at period close.
type SelectionMode string

const (
	// ModeRound considers only the sessions submitted in the closing period.
	ModeRound SelectionMode = "round"
	// ModeContinuous considers every still-eligible session.
	ModeContinuous SelectionMode = "continuous"
)

// TieBreak resolves multiple candidates sharing the maximum score.
type TieBreak string

const (
	TieBreakLowestID TieBreak = "lowest-id"
	TieBreakEarliest TieBreak = "earliest"
	TieBreakRandom   TieBreak = "random"
)

// NoWinnerPolicy decides what happens when no candidate scored.
type NoWinnerPolicy string

const (
	// NoWinnerAbort rejects the selection call; the period stays closed
	// until a retry or a policy change.
	NoWinnerAbort NoWinnerPolicy = "abort"
	// NoWinnerSkip advances the period without a winner.
	NoWinnerSkip NoWinnerPolicy = "skip"
)

// EngagementKind distinguishes the two rate-limited engagement channels.
type EngagementKind string

const (
	KindReaction EngagementKind = "reaction"
	KindMessage  EngagementKind = "message"
)

// OperatingConfig is the live operating configuration. Fields other than
// SelectionMode, TieBreak and NoWinnerPolicy change only at period rollover.
type OperatingConfig struct {
	PeriodDuration         uint64         `json:"periodDuration"` // seconds
	ReactionsPerWeightUnit uint64         `json:"reactionsPerWeightUnit"`
	MessagesPerWeightUnit  uint64         `json:"messagesPerWeightUnit"`
	EditionPrice           uint64         `json:"editionPrice"`
	MaxSessions            uint64         `json:"maxSessions"` // 0 = unlimited
	MaxSessionsPerPeriod   uint64         `json:"maxSessionsPerPeriod"`
	CreatorEditions        uint64         `json:"creatorEditions"`
	CuratorEditions        uint64         `json:"curatorEditions"`
	PublicEditions         uint64         `json:"publicEditions"`
	Treasury               string         `json:"treasury"`
	CreatorShareBps        uint64         `json:"creatorShareBps"`
	SelectionMode          SelectionMode  `json:"selectionMode"`
	TieBreak               TieBreak       `json:"tieBreak"`
	NoWinnerPolicy         NoWinnerPolicy `json:"noWinnerPolicy"`
	ResetScoresEachPeriod  bool           `json:"resetScoresEachPeriod"`
}

// ScoringConfig tunes the quadratic, time-decayed score curve.
// DecayBase is "no decay" (100%); DecayMin floors the factor above zero.
type ScoringConfig struct {
	ReactionWeight uint64 `json:"reactionWeight"`
	MessageWeight  uint64 `json:"messageWeight"`
	DecayMin       uint64 `json:"decayMin"`
	DecayBase      uint64 `json:"decayBase"`
	Scale          uint64 `json:"scale"`
}

// ConfigPatch is a partial update of the deferred configuration. Nil fields
// are left untouched; present fields are validated together and stage
// together, so a patch with any invalid field stages nothing.
type ConfigPatch struct {
	PeriodDuration        *uint64          `json:"periodDuration,omitempty"`
	Allowances            *AllowancePatch  `json:"allowances,omitempty"`
	EditionPrice          *uint64          `json:"editionPrice,omitempty"`
	EditionAllocation     *AllocationPatch `json:"editionAllocation,omitempty"`
	SubmissionCaps        *CapsPatch       `json:"submissionCaps,omitempty"`
	Treasury              *TreasuryPatch   `json:"treasury,omitempty"`
	ResetScoresEachPeriod *bool            `json:"resetScoresEachPeriod,omitempty"`
	Scoring               *ScoringConfig   `json:"scoring,omitempty"`
}

// AllowancePatch replaces both daily allowance multipliers.
type AllowancePatch struct {
	ReactionsPerWeightUnit uint64 `json:"reactionsPerWeightUnit"`
	MessagesPerWeightUnit  uint64 `json:"messagesPerWeightUnit"`
}

// AllocationPatch replaces the three edition pools.
type AllocationPatch struct {
	Creator uint64 `json:"creator"`
	Curator uint64 `json:"curator"`
	Public  uint64 `json:"public"`
}

// CapsPatch replaces both submission caps (0 = unlimited).
type CapsPatch struct {
	MaxSessions          uint64 `json:"maxSessions"`
	MaxSessionsPerPeriod uint64 `json:"maxSessionsPerPeriod"`
}

// TreasuryPatch replaces the treasury principal and revenue split.
type TreasuryPatch struct {
	Treasury        string `json:"treasury"`
	CreatorShareBps uint64 `json:"creatorShareBps"`
}

// ConfigSnapshot exposes active and pending configuration for queries.
type ConfigSnapshot struct {
	Operating        OperatingConfig  `json:"operating"`
	Scoring          ScoringConfig    `json:"scoring"`
	PendingOperating *OperatingConfig `json:"pendingOperating,omitempty"`
	PendingScoring   *ScoringConfig   `json:"pendingScoring,omitempty"`
}

// PeriodInfo is the read-only view of the current period.
type PeriodInfo struct {
	Number        uint64 `json:"number"`
	Start         uint64 `json:"start"`
	Duration      uint64 `json:"duration"`
	TimeRemaining uint64 `json:"timeRemaining"`
	Submissions   int    `json:"submissions"`
	EligibleCount int    `json:"eligibleCount"`
}

// SelectionResult reports the outcome of a period close.
type SelectionResult struct {
	Period    uint64   `json:"period"`
	Skipped   bool     `json:"skipped"`
	WinnerID  uint64   `json:"winnerId"`
	HasWinner bool     `json:"hasWinner"`
	Score     uint64   `json:"score"`
	Edition   *Edition `json:"edition,omitempty"`
}

// PurchaseResult reports the settlement breakdown of an edition purchase.
type PurchaseResult struct {
	SessionID uint64 `json:"sessionId"`
	Amount    uint64 `json:"amount"`
	Cost      uint64 `json:"cost"`
	Refund    uint64 `json:"refund"`
}

// CuratorShare is one entry of a curator distribution request.
type CuratorShare struct {
	Principal string `json:"principal"`
	Amount    uint64 `json:"amount"`
}

// BatchReactEntry is one relayed reaction in a best-effort batch.
type BatchReactEntry struct {
	Reactor      string `json:"reactor"`
	SessionID    uint64 `json:"sessionId"`
	ClaimedUnits uint64 `json:"claimedUnits"`
	Proof        []byte `json:"proof,omitempty"`
}

// BatchReactResult records one entry's outcome. Failed entries are skipped,
// never aborted; callers inspect these records to learn what succeeded.
type BatchReactResult struct {
	Index int    `json:"index"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Role names for the administrative surface.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleRelayer Role = "relayer"
)
