package models

import (
	"time"

	"github.com/google/uuid"
)

// RevokedTokenDB represents a denylisted token identifier in the database.
// A row means the token carrying this jti is permanently invalid,
// regardless of its expiry.
type RevokedTokenDB struct {
	ID        uuid.UUID `json:"id" db:"id"`                 // Primary key
	JTI       string    `json:"jti" db:"jti"`               // Unique token identifier
	CreatedAt time.Time `json:"created_at" db:"created_at"` // Revocation timestamp
}
