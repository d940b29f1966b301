package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"jobfolio/internal/domain"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*domain.Portfolio, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	p := &domain.Portfolio{ID: uid}
	var raw []byte
	err = r.pool.QueryRow(ctx,
		`SELECT user_id, document, created_at, updated_at FROM portfolios WHERE id = $1`, uid).
		Scan(&p.UserID, &raw, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("select portfolio %s: %w", id, err)
	}
	if p.Document, err = decodeDocument(raw); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepo) Fetch(ctx context.Context, id string) (map[string]interface{}, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Document, nil
}

// Save replaces the stored document. The portfolio must already exist.
func (r *PostgresRepo) Save(ctx context.Context, id string, doc map[string]interface{}) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	b, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE portfolios SET document = $2, updated_at = $3 WHERE id = $1`, uid, b, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update portfolio %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func (r *PostgresRepo) Create(ctx context.Context, doc map[string]interface{}) (string, error) {
	return r.CreateFor(ctx, "", doc)
}

func (r *PostgresRepo) CreateFor(ctx context.Context, userID string, doc map[string]interface{}) (string, error) {
	b, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}
	id := uuid.New()
	now := time.Now().UTC()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO portfolios (id, user_id, document, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
		id, userID, b, now, now)
	if err != nil {
		return "", fmt.Errorf("insert portfolio: %w", err)
	}
	return id.String(), nil
}

func (r *PostgresRepo) Close(context.Context) error {
	r.pool.Close()
	return nil
}
