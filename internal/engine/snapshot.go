package engine

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/curionet/curio/internal/model"
)

// Snapshot serializes the full engine state for recovery. Map keys that are
// structs are flattened into entry slices so the payload is plain JSON.

type engagementEntry struct {
	SessionID uint64               `json:"sessionId"`
	Principal string               `json:"principal"`
	Kind      model.EngagementKind `json:"kind"`
	Count     uint64               `json:"count"`
}

type usageEntry struct {
	Principal string               `json:"principal"`
	Day       uint64               `json:"day"`
	Kind      model.EngagementKind `json:"kind"`
	Used      uint64               `json:"used"`
}

type holdingEntry struct {
	SessionID uint64 `json:"sessionId"`
	Principal string `json:"principal"`
	Units     uint64 `json:"units"`
}

type approvalEntry struct {
	Principal string `json:"principal"`
	Delegate  string `json:"delegate"`
}

type roleEntry struct {
	Role      model.Role `json:"role"`
	Principal string     `json:"principal"`
}

type snapshotState struct {
	Sessions       []*model.Session       `json:"sessions"`
	Messages       []*model.Message       `json:"messages"`
	Eligible       []uint64               `json:"eligible"`
	Period         period                 `json:"period"`
	Engagement     []engagementEntry      `json:"engagement,omitempty"`
	Usage          []usageEntry           `json:"usage,omitempty"`
	Editions       []*model.Edition       `json:"editions,omitempty"`
	Holdings       []holdingEntry         `json:"holdings,omitempty"`
	Balances       map[string]uint64      `json:"balances,omitempty"`
	Approvals      []approvalEntry        `json:"approvals,omitempty"`
	Roles          []roleEntry            `json:"roles,omitempty"`
	Paused         bool                   `json:"paused"`
	Operating      model.OperatingConfig  `json:"operating"`
	Scoring        model.ScoringConfig    `json:"scoring"`
	PendingOp      *model.OperatingConfig `json:"pendingOperating,omitempty"`
	PendingScoring *model.ScoringConfig   `json:"pendingScoring,omitempty"`
}

// Snapshot returns the engine state as JSON.
func (e *Engine) Snapshot() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := snapshotState{
		Sessions:  e.sessions,
		Messages:  e.messages,
		Eligible:  e.eligible.IDs(),
		Period:    e.period,
		Balances:  e.balances,
		Paused:    e.paused,
		Operating: e.conf.op,
		Scoring:   e.conf.scoring,
	}
	for k, v := range e.engagement {
		st.Engagement = append(st.Engagement, engagementEntry{SessionID: k.SessionID, Principal: k.Principal, Kind: k.Kind, Count: v})
	}
	for k, v := range e.limits.used {
		st.Usage = append(st.Usage, usageEntry{Principal: k.Principal, Day: k.Day, Kind: k.Kind, Used: v})
	}
	for _, s := range e.sessions {
		if ed, ok := e.editions[s.ID]; ok {
			st.Editions = append(st.Editions, ed)
		}
	}
	for k, v := range e.holdings {
		st.Holdings = append(st.Holdings, holdingEntry{SessionID: k.SessionID, Principal: k.Principal, Units: v})
	}
	for k := range e.approvals {
		st.Approvals = append(st.Approvals, approvalEntry{Principal: k.Principal, Delegate: k.Delegate})
	}
	for k := range e.roles {
		st.Roles = append(st.Roles, roleEntry{Role: k.Role, Principal: k.Principal})
	}
	if e.conf.opDirty {
		p := e.conf.pendingOp
		st.PendingOp = &p
	}
	if e.conf.scoringDirty {
		p := e.conf.pendingScoring
		st.PendingScoring = &p
	}
	return json.Marshal(st)
}

// Restore replaces the engine state with a previously taken snapshot.
func (e *Engine) Restore(data []byte) error {
	var st snapshotState
	if err := json.Unmarshal(data, &st); err != nil {
		return errors.Wrap(err, "decode snapshot")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.sessions = st.Sessions
	e.messages = st.Messages
	e.eligible = newEligibilityIndex()
	for _, id := range st.Eligible {
		e.eligible.Add(id)
	}
	e.period = st.Period
	e.engagement = make(map[engagementKey]uint64, len(st.Engagement))
	for _, en := range st.Engagement {
		e.engagement[engagementKey{SessionID: en.SessionID, Principal: en.Principal, Kind: en.Kind}] = en.Count
	}
	e.limits = newRateLimiter()
	for _, u := range st.Usage {
		e.limits.used[usageKey{Principal: u.Principal, Day: u.Day, Kind: u.Kind}] = u.Used
	}
	e.editions = make(map[uint64]*model.Edition, len(st.Editions))
	for _, ed := range st.Editions {
		e.editions[ed.SessionID] = ed
	}
	e.holdings = make(map[holdingKey]uint64, len(st.Holdings))
	for _, h := range st.Holdings {
		e.holdings[holdingKey{SessionID: h.SessionID, Principal: h.Principal}] = h.Units
	}
	e.balances = st.Balances
	if e.balances == nil {
		e.balances = make(map[string]uint64)
	}
	e.approvals = make(map[approvalKey]bool, len(st.Approvals))
	for _, a := range st.Approvals {
		e.approvals[approvalKey{Principal: a.Principal, Delegate: a.Delegate}] = true
	}
	e.roles = make(map[roleKey]bool, len(st.Roles))
	for _, r := range st.Roles {
		e.roles[roleKey{Role: r.Role, Principal: r.Principal}] = true
	}
	e.paused = st.Paused
	e.conf.op = st.Operating
	e.conf.scoring = st.Scoring
	e.conf.opDirty = st.PendingOp != nil
	if st.PendingOp != nil {
		e.conf.pendingOp = *st.PendingOp
	}
	e.conf.scoringDirty = st.PendingScoring != nil
	if st.PendingScoring != nil {
		e.conf.pendingScoring = *st.PendingScoring
	}
	return nil
}
