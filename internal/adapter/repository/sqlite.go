package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"jobfolio/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS portfolios (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	document   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteRepo is the embedded store for local use.
type SQLiteRepo struct {
	db *sql.DB
}

// NewSQLiteRepo opens (or creates) the database at path and makes sure the
// portfolios table exists. ":memory:" works for tests.
func NewSQLiteRepo(ctx context.Context, path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		sqliteSchema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Get(ctx context.Context, id string) (*domain.Portfolio, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	p := &domain.Portfolio{ID: uid}
	var raw string
	err = r.db.QueryRowContext(ctx,
		`SELECT user_id, document, created_at, updated_at FROM portfolios WHERE id = ?`, uid.String()).
		Scan(&p.UserID, &raw, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("select portfolio %s: %w", id, err)
	}
	if p.Document, err = decodeDocument([]byte(raw)); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLiteRepo) Fetch(ctx context.Context, id string) (map[string]interface{}, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Document, nil
}

func (r *SQLiteRepo) Save(ctx context.Context, id string, doc map[string]interface{}) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	b, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE portfolios SET document = ?, updated_at = ? WHERE id = ?`, string(b), time.Now().UTC(), uid.String())
	if err != nil {
		return fmt.Errorf("update portfolio %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(id)
	}
	return nil
}

func (r *SQLiteRepo) Create(ctx context.Context, doc map[string]interface{}) (string, error) {
	return r.CreateFor(ctx, "", doc)
}

func (r *SQLiteRepo) CreateFor(ctx context.Context, userID string, doc map[string]interface{}) (string, error) {
	b, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}
	id := uuid.New()
	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO portfolios (id, user_id, document, created_at, updated_at) VALUES (?,?,?,?,?)`,
		id.String(), userID, string(b), now, now)
	if err != nil {
		return "", fmt.Errorf("insert portfolio: %w", err)
	}
	return id.String(), nil
}

func (r *SQLiteRepo) Close(context.Context) error {
	return r.db.Close()
}
