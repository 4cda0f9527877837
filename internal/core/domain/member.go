package domain

import (
	"time"
)

// MemberStatus represents the state of a member's API credentials.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "ACTIVE"
	MemberStatusSuspended MemberStatus = "SUSPENDED"
)

// Member binds a governance principal to API credentials. Membership is an
// access-control concern only: holding credentials does not imply holding a
// ledger account, and a principal can be credited without ever registering.
type Member struct {
	Principal    Principal    `json:"principal"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"` // Never expose
	AccessKey    string       `json:"access_key"`
	SecretKeyEnc string       `json:"-"` // Encrypted, never expose
	Status       MemberStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsActive returns true if the member's credentials are usable.
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}
