package domain

import "time"

// RefreshToken is one ledger row per issued refresh token. Only the SHA-256
// digest of the raw token is persisted. Rows are revoked, never deleted;
// ReplacedBy links a rotated row to its successor.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
	CreatedAt  time.Time

	// RawToken carries the signed token back to the caller on issuance.
	// It is never stored.
	RawToken string
}

func (t RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}
