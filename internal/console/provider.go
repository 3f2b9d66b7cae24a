package console

import (
	"context"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/session"
)

// ProviderSession is the identity provider's view of an established session.
type ProviderSession struct {
	User      domain.AdminIdentity
	ExpiresAt time.Time
	Purpose   domain.TokenPurpose
}

type Subscription interface {
	Unsubscribe()
}

// IdentityProvider is everything the console needs from the auth service.
// Methods return typed domain errors; GetSession returns nil, nil when there is no session.
type IdentityProvider interface {
	GetSession(ctx context.Context) (*ProviderSession, error)
	SetSession(ctx context.Context, accessToken, refreshToken string) (*ProviderSession, error)
	OnSessionChange(handler func(session.Event)) Subscription
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)
	SignOut(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	UpdateCredential(ctx context.Context, newPassword string) (*ProviderSession, error)
}

// adminIdentity pins the role; the console only ever holds administrators.
func adminIdentity(s *ProviderSession) *domain.AdminIdentity {
	u := s.User
	u.Role = domain.RoleAdmin
	return &u
}
