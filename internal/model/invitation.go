package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Invitation is a one-time administrator invitation. Used is the only field
// mutated after creation, and only from false to true.
type Invitation struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"type:varchar(320);not null;index" json:"email"`
	Code      string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	// Version is bumped on every write; optimistic backends compare it.
	Version int64 `gorm:"not null;default:0" json:"-"`
}

func (Invitation) TableName() string { return "admin_invitations" }

// EmailMatches compares addresses case-insensitively.
func (i *Invitation) EmailMatches(email string) bool {
	return strings.EqualFold(strings.TrimSpace(i.Email), strings.TrimSpace(email))
}

// ExpiredAt reports whether now is strictly past the expiry. Callers must
// check ExpiresAt for nil first.
func (i *Invitation) ExpiredAt(now time.Time) bool {
	return now.After(*i.ExpiresAt)
}
