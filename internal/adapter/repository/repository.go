// Package repository stores portfolio documents in the backend's
// snake_case convention.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jobfolio/internal/domain"
)

var (
	ErrNotFound  = errors.New("portfolio not found")
	ErrInvalidID = errors.New("invalid portfolio id")
)

// PortfolioRepo is implemented by every store.
type PortfolioRepo interface {
	Get(ctx context.Context, id string) (*domain.Portfolio, error)
	Fetch(ctx context.Context, id string) (map[string]interface{}, error)
	Save(ctx context.Context, id string, doc map[string]interface{}) error
	Create(ctx context.Context, doc map[string]interface{}) (string, error)
	CreateFor(ctx context.Context, userID string, doc map[string]interface{}) (string, error)
	Close(ctx context.Context) error
}

func notFound(id string) error {
	return fmt.Errorf("%w: Portfolio with id '%s' was not found", ErrNotFound, id)
}

func encodeDocument(doc map[string]interface{}) ([]byte, error) {
	if doc == nil {
		doc = map[string]interface{}{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode portfolio document: %w", err)
	}
	return b, nil
}

func decodeDocument(b []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode portfolio document: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return doc, nil
}
