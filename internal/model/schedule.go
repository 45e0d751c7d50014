package model

import (
	"time"

	"github.com/google/uuid"
)

// Schedule groups the course rules of one term. At most one schedule is
// active per user; the repository enforces that on SetActive.
type Schedule struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	TermLabel string    `json:"term_label"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
