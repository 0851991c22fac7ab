// Package postgres implements storage.Store over PostgreSQL via the pgx
// stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	pkgerrors "github.com/pkg/errors"

	"github.com/curionet/curio/internal/model"
	"github.com/curionet/curio/internal/storage"
)

//go:embed schema.sql
var ddl string

// PostgresStore implements storage.Store.
type PostgresStore struct {
	db *sql.DB
}

// Open connects with the pgx stdlib driver and applies the schema.
func Open(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewStoreWithDB wires a store over an existing connection.
func NewStoreWithDB(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Sessions() storage.SessionRepo     { return sessionRepo{s.db} }
func (s *PostgresStore) Messages() storage.MessageRepo     { return messageRepo{s.db} }
func (s *PostgresStore) Editions() storage.EditionRepo     { return editionRepo{s.db} }
func (s *PostgresStore) Selections() storage.SelectionRepo { return selectionRepo{s.db} }
func (s *PostgresStore) Snapshots() storage.SnapshotRepo   { return snapshotRepo{s.db} }

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// --- sessions ---

type sessionRepo struct{ db *sql.DB }

func (r sessionRepo) Upsert(ctx context.Context, m *model.Session) error {
	scores, err := json.Marshal(m.PeriodScores)
	if err != nil {
		return pkgerrors.Wrap(err, "encode period scores")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, creator, content_addr, reactions, messages, score, period_scores, creation_time, submitted_period, selected_period, retracted)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
			reactions = EXCLUDED.reactions,
			messages = EXCLUDED.messages,
			score = EXCLUDED.score,
			period_scores = EXCLUDED.period_scores,
			selected_period = EXCLUDED.selected_period,
			retracted = EXCLUDED.retracted`,
		int64(m.ID), m.Creator, m.ContentAddress, int64(m.Reactions), int64(m.Messages), int64(m.Score),
		string(scores), int64(m.CreationTime), int64(m.SubmittedPeriod), int64(m.SelectedPeriod), m.Retracted)
	return err
}

func (r sessionRepo) Get(ctx context.Context, id uint64) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, creator, content_addr, reactions, messages, score, period_scores, creation_time, submitted_period, selected_period, retracted
		FROM sessions WHERE id = $1`, int64(id))
	return scanSession(row)
}

func (r sessionRepo) List(ctx context.Context) ([]*model.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, creator, content_addr, reactions, messages, score, period_scores, creation_time, submitted_period, selected_period, retracted
		FROM sessions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Session
	for rows.Next() {
		m, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSession(row rowScanner) (*model.Session, error) {
	var (
		m      model.Session
		scores []byte
	)
	err := row.Scan(&m.ID, &m.Creator, &m.ContentAddress, &m.Reactions, &m.Messages, &m.Score,
		&scores, &m.CreationTime, &m.SubmittedPeriod, &m.SelectedPeriod, &m.Retracted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(scores, &m.PeriodScores); err != nil {
		return nil, pkgerrors.Wrap(err, "decode period scores")
	}
	return &m, nil
}

// --- messages ---

type messageRepo struct{ db *sql.DB }

func (r messageRepo) Create(ctx context.Context, m *model.Message) error {
	attachments, err := json.Marshal(m.Attachments)
	if err != nil {
		return pkgerrors.Wrap(err, "encode attachments")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, sender, content_addr, attachments, creation_time)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		int64(m.ID), int64(m.SessionID), m.Sender, m.ContentAddress, string(attachments), int64(m.CreationTime))
	return err
}

func (r messageRepo) ListBySession(ctx context.Context, sessionID uint64) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, sender, content_addr, attachments, creation_time
		FROM messages WHERE session_id = $1 ORDER BY id`, int64(sessionID))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Message
	for rows.Next() {
		var (
			m           model.Message
			attachments []byte
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.ContentAddress, &attachments, &m.CreationTime); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(attachments, &m.Attachments); err != nil {
			return nil, pkgerrors.Wrap(err, "decode attachments")
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- editions ---

type editionRepo struct{ db *sql.DB }

func (r editionRepo) Upsert(ctx context.Context, e *model.Edition) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO editions (session_id, total_minted, creator_amount, curator_amount, public_amount, curator_distributed, public_sold, price)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (session_id) DO UPDATE SET
			curator_distributed = EXCLUDED.curator_distributed,
			public_sold = EXCLUDED.public_sold`,
		int64(e.SessionID), int64(e.TotalMinted), int64(e.CreatorAmount), int64(e.CuratorAmount),
		int64(e.PublicAmount), int64(e.CuratorDistributed), int64(e.PublicSold), int64(e.Price))
	return err
}

func (r editionRepo) Get(ctx context.Context, sessionID uint64) (*model.Edition, error) {
	var e model.Edition
	err := r.db.QueryRowContext(ctx, `
		SELECT session_id, total_minted, creator_amount, curator_amount, public_amount, curator_distributed, public_sold, price
		FROM editions WHERE session_id = $1`, int64(sessionID)).
		Scan(&e.SessionID, &e.TotalMinted, &e.CreatorAmount, &e.CuratorAmount, &e.PublicAmount,
			&e.CuratorDistributed, &e.PublicSold, &e.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// --- selections ---

type selectionRepo struct{ db *sql.DB }

func (r selectionRepo) Record(ctx context.Context, rec *storage.SelectionRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO selections (period, skipped, winner_id, has_winner, score, resolved_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		int64(rec.Period), rec.Skipped, int64(rec.WinnerID), rec.HasWinner, int64(rec.Score), rec.ResolvedAt.UTC())
	return err
}

func (r selectionRepo) List(ctx context.Context) ([]*storage.SelectionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT period, skipped, winner_id, has_winner, score, resolved_at
		FROM selections ORDER BY period`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*storage.SelectionRecord
	for rows.Next() {
		var rec storage.SelectionRecord
		if err := rows.Scan(&rec.Period, &rec.Skipped, &rec.WinnerID, &rec.HasWinner, &rec.Score, &rec.ResolvedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// --- snapshots ---

type snapshotRepo struct{ db *sql.DB }

func (r snapshotRepo) Save(ctx context.Context, state []byte, takenAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, state, taken_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, taken_at = EXCLUDED.taken_at`,
		state, takenAt.UTC())
	return err
}

func (r snapshotRepo) Latest(ctx context.Context) ([]byte, error) {
	var state []byte
	err := r.db.QueryRowContext(ctx, `SELECT state FROM snapshots WHERE id = 1`).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return state, err
}
