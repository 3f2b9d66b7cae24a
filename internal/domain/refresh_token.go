package domain

import "time"

type TokenPurpose string

const (
	PurposeLogin    TokenPurpose = "login"
	PurposeRecovery TokenPurpose = "recovery"
)

// RefreshToken stores refresh tokens for admin sessions.
//
// Security notes:
// - We never store the raw token in DB, only its SHA-256 hash (TokenHash).
// - On refresh we rotate tokens: old token is marked used and a new one joins the family.
// - FamilyID is the session id carried in the access token's "sid" claim.
type RefreshToken struct {
	ID              int64        `json:"id"`
	UserID          string       `json:"user_id"`
	TokenHash       string       `json:"-"`
	FamilyID        string       `json:"family_id"`
	Purpose         TokenPurpose `json:"purpose"`
	RotatedFrom     *int64       `json:"rotated_from,omitempty"`
	ExpiresAt       time.Time    `json:"expires_at"`
	UsedAt          *time.Time   `json:"used_at,omitempty"`
	RevokedAt       *time.Time   `json:"revoked_at,omitempty"`
	ReuseDetectedAt *time.Time   `json:"reuse_detected_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsUsed() bool {
	return t.UsedAt != nil
}
