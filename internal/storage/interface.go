// Package storage defines the persistence boundary. The engine is
// authoritative in memory; the service layer writes domain records through
// these repositories after each committed mutation and saves an engine
// snapshot for recovery.
package storage

import (
	"context"
	"time"

	"github.com/curionet/curio/internal/model"
)

// SelectionRecord is one resolved period, winner or skip.
type SelectionRecord struct {
	Period     uint64    `json:"period"`
	Skipped    bool      `json:"skipped"`
	WinnerID   uint64    `json:"winnerId"`
	HasWinner  bool      `json:"hasWinner"`
	Score      uint64    `json:"score"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// SessionRepo persists session records. Upsert covers both creation and the
// score/flag updates that follow engagement and selection.
type SessionRepo interface {
	Upsert(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id uint64) (*model.Session, error)
	List(ctx context.Context) ([]*model.Session, error)
}

// MessageRepo persists immutable message records.
type MessageRepo interface {
	Create(ctx context.Context, m *model.Message) error
	ListBySession(ctx context.Context, sessionID uint64) ([]*model.Message, error)
}

// EditionRepo persists edition mint and sale bookkeeping.
type EditionRepo interface {
	Upsert(ctx context.Context, e *model.Edition) error
	Get(ctx context.Context, sessionID uint64) (*model.Edition, error)
}

// SelectionRepo appends the provenance log of resolved periods.
type SelectionRepo interface {
	Record(ctx context.Context, r *SelectionRecord) error
	List(ctx context.Context) ([]*SelectionRecord, error)
}

// SnapshotRepo stores the latest engine state snapshot. Save replaces the
// previous snapshot; Latest returns model.ErrNotFound when none exists.
type SnapshotRepo interface {
	Save(ctx context.Context, state []byte, takenAt time.Time) error
	Latest(ctx context.Context) ([]byte, error)
}

// Store aggregates the repositories behind one connection.
type Store interface {
	Sessions() SessionRepo
	Messages() MessageRepo
	Editions() EditionRepo
	Selections() SelectionRepo
	Snapshots() SnapshotRepo
	HealthCheck(ctx context.Context) error
	Close() error
}
