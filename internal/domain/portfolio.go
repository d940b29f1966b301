package domain

import (
	"time"

	"github.com/google/uuid"
)

// Portfolio is a stored portfolio document. Document is kept in the
// backend's snake_case convention exactly as it was last written.
type Portfolio struct {
	ID        uuid.UUID              `json:"id"`
	UserID    string                 `json:"user_id,omitempty"`
	Document  map[string]interface{} `json:"document"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
