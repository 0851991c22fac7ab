package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/curionet/curio/internal/model"
	"github.com/curionet/curio/internal/storage"
)

// SqliteStore implements storage.Store using the modernc SQLite driver.
type SqliteStore struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database file.
func NewStore(path string) (*SqliteStore, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &SqliteStore{db: db}, nil
}

// NewStoreWithDB wires a store over an existing connection.
func NewStoreWithDB(db *sql.DB) *SqliteStore { return &SqliteStore{db: db} }

func (s *SqliteStore) Sessions() storage.SessionRepo     { return sessionRepo{s.db} }
func (s *SqliteStore) Messages() storage.MessageRepo     { return messageRepo{s.db} }
func (s *SqliteStore) Editions() storage.EditionRepo     { return editionRepo{s.db} }
func (s *SqliteStore) Selections() storage.SelectionRepo { return selectionRepo{s.db} }
func (s *SqliteStore) Snapshots() storage.SnapshotRepo   { return snapshotRepo{s.db} }

func (s *SqliteStore) HealthCheck(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *SqliteStore) Close() error                          { return s.db.Close() }

// --- sessions ---

type sessionRepo struct{ db *sql.DB }

func (r sessionRepo) Upsert(ctx context.Context, m *model.Session) error {
	scores, err := json.Marshal(m.PeriodScores)
	if err != nil {
		return pkgerrors.Wrap(err, "encode period scores")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, creator, content_addr, reactions, messages, score, period_scores, creation_time, submitted_period, selected_period, retracted)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			reactions = excluded.reactions,
			messages = excluded.messages,
			score = excluded.score,
			period_scores = excluded.period_scores,
			selected_period = excluded.selected_period,
			retracted = excluded.retracted`,
		m.ID, m.Creator, m.ContentAddress, m.Reactions, m.Messages, m.Score, string(scores),
		m.CreationTime, m.SubmittedPeriod, m.SelectedPeriod, boolToInt(m.Retracted))
	return err
}

func (r sessionRepo) Get(ctx context.Context, id uint64) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, creator, content_addr, reactions, messages, score, period_scores, creation_time, submitted_period, selected_period, retracted
		FROM sessions WHERE id = ?`, id)
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
		m         model.Session
		scores    string
		retracted int
	)
	err := row.Scan(&m.ID, &m.Creator, &m.ContentAddress, &m.Reactions, &m.Messages, &m.Score,
		&scores, &m.CreationTime, &m.SubmittedPeriod, &m.SelectedPeriod, &retracted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(scores), &m.PeriodScores); err != nil {
		return nil, pkgerrors.Wrap(err, "decode period scores")
	}
	m.Retracted = retracted != 0
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
		VALUES (?,?,?,?,?,?)`,
		m.ID, m.SessionID, m.Sender, m.ContentAddress, string(attachments), m.CreationTime)
	return err
}

func (r messageRepo) ListBySession(ctx context.Context, sessionID uint64) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, sender, content_addr, attachments, creation_time
		FROM messages WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Message
	for rows.Next() {
		var (
			m           model.Message
			attachments string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.ContentAddress, &attachments, &m.CreationTime); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(attachments), &m.Attachments); err != nil {
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
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(session_id) DO UPDATE SET
			curator_distributed = excluded.curator_distributed,
			public_sold = excluded.public_sold`,
		e.SessionID, e.TotalMinted, e.CreatorAmount, e.CuratorAmount, e.PublicAmount,
		e.CuratorDistributed, e.PublicSold, e.Price)
	return err
}

func (r editionRepo) Get(ctx context.Context, sessionID uint64) (*model.Edition, error) {
	var e model.Edition
	err := r.db.QueryRowContext(ctx, `
		SELECT session_id, total_minted, creator_amount, curator_amount, public_amount, curator_distributed, public_sold, price
		FROM editions WHERE session_id = ?`, sessionID).
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
		VALUES (?,?,?,?,?,?)`,
		rec.Period, boolToInt(rec.Skipped), rec.WinnerID, boolToInt(rec.HasWinner), rec.Score, rec.ResolvedAt.UTC())
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
		var (
			rec                storage.SelectionRecord
			skipped, hasWinner int
		)
		if err := rows.Scan(&rec.Period, &skipped, &rec.WinnerID, &hasWinner, &rec.Score, &rec.ResolvedAt); err != nil {
			return nil, err
		}
		rec.Skipped = skipped != 0
		rec.HasWinner = hasWinner != 0
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// --- snapshots ---

type snapshotRepo struct{ db *sql.DB }

func (r snapshotRepo) Save(ctx context.Context, state []byte, takenAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, state, taken_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state, taken_at = excluded.taken_at`,
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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
