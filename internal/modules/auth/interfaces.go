package auth

import (
	"context"
	"time"

	"cabbooking/internal/domain"
)

type AdminUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	GetByID(ctx context.Context, id string) (*domain.AdminUser, error)
	RecordFailedLogin(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) (bool, error)
	ResetFailedLogins(ctx context.Context, id string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// RefreshTokenRepository stores hashed refresh tokens grouped by session family.
type RefreshTokenRepository interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	MarkUsed(ctx context.Context, id int64) (bool, error)
	MarkReuse(ctx context.Context, id int64) error
	RevokeFamily(ctx context.Context, familyID string) error
	RevokeOtherFamilies(ctx context.Context, userID, keepFamily string) ([]string, error)
	FamilyActive(ctx context.Context, familyID string) (bool, error)
}

// Notifier pushes session changes to connected consoles.
type Notifier interface {
	SignedOut(sessionIDs ...string)
}
