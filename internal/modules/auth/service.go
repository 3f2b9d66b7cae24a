package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cabbooking/internal/domain"
	"cabbooking/internal/pkg/jwt"
	"cabbooking/internal/pkg/password"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

type Options struct {
	RefreshTTL       time.Duration
	RecoveryTTL      time.Duration
	Pepper           string
	ResetRedirectURL string
}

// Service is the admin identity provider: it issues, rotates and revokes sessions.
type Service struct {
	users    AdminUserRepository
	tokens   RefreshTokenRepository
	access   *jwt.Service
	recovery *jwt.Service
	mailer   Mailer
	notifier Notifier
	opts     Options
	log      *zap.Logger
	now      func() time.Time
}

func NewService(
	users AdminUserRepository,
	tokens RefreshTokenRepository,
	access *jwt.Service,
	recovery *jwt.Service,
	mailer Mailer,
	notifier Notifier,
	opts Options,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if recovery == nil {
		recovery = access
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		access:   access,
		recovery: recovery,
		mailer:   mailer,
		notifier: notifier,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// SignInWithPassword checks credentials and opens a new login session.
// Unknown emails, wrong passwords and locked accounts fail with the same error.
func (s *Service) SignInWithPassword(ctx context.Context, email, pw string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pw == "" {
		return nil, domain.ValidationError{Field: "email", Msg: "email and password are required"}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, invalidCredentials()
		}
		return nil, err
	}

	now := s.now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		s.log.Info("sign-in refused for locked admin account", zap.String("user_id", user.ID))
		return nil, invalidCredentials()
	}

	if err := password.Check(pw, user.PasswordHash); err != nil {
		locked, recErr := s.users.RecordFailedLogin(ctx, user.ID, maxFailedLoginAttempts, lockoutDuration)
		if recErr != nil {
			return nil, recErr
		}
		if locked {
			s.log.Warn("admin account locked", zap.String("user_id", user.ID))
		}
		return nil, invalidCredentials()
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.users.ResetFailedLogins(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	return s.issue(ctx, user, domain.PurposeLogin, uuid.NewString(), nil)
}

// Refresh rotates a refresh token. Presenting an already rotated token revokes the whole session.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*Session, error) {
	if strings.TrimSpace(refreshRaw) == "" {
		return nil, invalidRefresh()
	}

	current, err := s.tokens.GetByHash(ctx, hashTokenWithPepper(refreshRaw, s.opts.Pepper))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, invalidRefresh()
		}
		return nil, err
	}
	return s.rotate(ctx, current)
}

func (s *Service) rotate(ctx context.Context, current *domain.RefreshToken) (*Session, error) {
	if current.IsRevoked() || current.IsExpired(s.now()) {
		return nil, invalidRefresh()
	}
	if current.IsUsed() {
		return nil, s.reuseDetected(ctx, current)
	}

	claimed, err := s.tokens.MarkUsed(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, s.reuseDetected(ctx, current)
	}

	user, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, invalidRefresh()
		}
		return nil, err
	}

	rotatedFrom := current.ID
	return s.issue(ctx, user, current.Purpose, current.FamilyID, &rotatedFrom)
}

func (s *Service) reuseDetected(ctx context.Context, t *domain.RefreshToken) error {
	s.log.Warn("refresh token reuse detected",
		zap.String("user_id", t.UserID),
		zap.String("session_id", t.FamilyID),
	)
	if err := s.tokens.MarkReuse(ctx, t.ID); err != nil {
		return err
	}
	if err := s.tokens.RevokeFamily(ctx, t.FamilyID); err != nil {
		return err
	}
	s.notifySignedOut(t.FamilyID)
	return domain.AuthError{Msg: "refresh token reused", Err: domain.ErrRefreshTokenReused}
}

// SetSession adopts a token pair, typically the one carried by a reset link.
// Recovery pairs and pairs with an expired access token are rotated, so a reset
// link can be exchanged only once. A valid login pair is returned as is.
func (s *Service) SetSession(ctx context.Context, accessToken, refreshRaw string) (*Session, error) {
	accessToken = strings.TrimSpace(accessToken)
	refreshRaw = strings.TrimSpace(refreshRaw)
	if accessToken == "" || refreshRaw == "" {
		return nil, invalidSession()
	}

	expired := false
	claims, err := s.access.ValidateToken(accessToken)
	if errors.Is(err, jwt.ErrExpiredToken) {
		expired = true
		claims, err = s.access.ParseExpired(accessToken)
	}
	if err != nil {
		return nil, invalidSession()
	}

	current, err := s.tokens.GetByHash(ctx, hashTokenWithPepper(refreshRaw, s.opts.Pepper))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, invalidSession()
		}
		return nil, err
	}
	if current.UserID != claims.UserID || current.FamilyID != claims.SessionID {
		return nil, invalidSession()
	}
	if current.IsRevoked() || current.IsExpired(s.now()) {
		return nil, invalidSession()
	}
	if current.IsUsed() {
		return nil, invalidSession()
	}
	if expired || current.Purpose == domain.PurposeRecovery {
		return s.rotate(ctx, current)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, invalidSession()
		}
		return nil, err
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.session(user, domain.TokenPurpose(claims.Purpose), accessToken, expiresAt, refreshRaw), nil
}

// GetUser resolves the identity behind an active session.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.AdminIdentity, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, invalidSession()
		}
		return nil, err
	}
	id := user.Identity()
	return &id, nil
}

// SignOut revokes a session and disconnects its consoles.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.tokens.RevokeFamily(ctx, sessionID); err != nil {
		return err
	}
	s.notifySignedOut(sessionID)
	return nil
}

// RequestRecovery mails a reset link. It reports success for unknown emails too.
func (s *Service) RequestRecovery(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return domain.ValidationError{Field: "email", Msg: "a valid email is required"}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			s.log.Info("password recovery for unknown email")
			return nil
		}
		return err
	}

	sess, err := s.issue(ctx, user, domain.PurposeRecovery, uuid.NewString(), nil)
	if err != nil {
		return err
	}

	link, err := s.resetLink(sess)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		s.log.Error("send password reset", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

func (s *Service) resetLink(sess *Session) (string, error) {
	u, err := url.Parse(s.opts.ResetRedirectURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("access_token", sess.AccessToken)
	q.Set("refresh_token", sess.RefreshToken)
	q.Set("type", string(domain.PurposeRecovery))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// UpdateCredential sets a new password for the caller. Every other session of the
// user is revoked and the caller's own session continues as a login session.
func (s *Service) UpdateCredential(ctx context.Context, userID, sessionID, newPassword string) (*Session, error) {
	if err := password.Validate(newPassword); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, invalidSession()
		}
		return nil, err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return nil, err
	}

	revoked, err := s.tokens.RevokeOtherFamilies(ctx, user.ID, sessionID)
	if err != nil {
		return nil, err
	}
	s.notifySignedOut(revoked...)

	if err := s.tokens.RevokeFamily(ctx, sessionID); err != nil {
		return nil, err
	}
	s.log.Info("admin password updated",
		zap.String("user_id", user.ID),
		zap.Int("revoked_sessions", len(revoked)),
	)
	return s.issue(ctx, user, domain.PurposeLogin, sessionID, nil)
}

// FamilyActive reports whether a session may still be used.
func (s *Service) FamilyActive(ctx context.Context, sessionID string) (bool, error) {
	return s.tokens.FamilyActive(ctx, sessionID)
}

func (s *Service) notifySignedOut(sessionIDs ...string) {
	if s.notifier == nil || len(sessionIDs) == 0 {
		return
	}
	s.notifier.SignedOut(sessionIDs...)
}

func (s *Service) issue(ctx context.Context, user *domain.AdminUser, purpose domain.TokenPurpose, familyID string, rotatedFrom *int64) (*Session, error) {
	signer, refreshTTL := s.access, s.opts.RefreshTTL
	if purpose == domain.PurposeRecovery {
		signer, refreshTTL = s.recovery, s.opts.RecoveryTTL
	}

	accessToken, expiresAt, err := signer.GenerateToken(jwt.TokenSpec{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(domain.RoleAdmin),
		SessionID: familyID,
		Purpose:   string(purpose),
	})
	if err != nil {
		return nil, err
	}

	raw, hash, err := generateOpaqueRefreshToken(s.opts.Pepper)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Create(ctx, &domain.RefreshToken{
		UserID:      user.ID,
		TokenHash:   hash,
		FamilyID:    familyID,
		Purpose:     purpose,
		RotatedFrom: rotatedFrom,
		ExpiresAt:   s.now().Add(refreshTTL),
	}); err != nil {
		return nil, err
	}

	return s.session(user, purpose, accessToken, expiresAt, raw), nil
}

func (s *Service) session(user *domain.AdminUser, purpose domain.TokenPurpose, accessToken string, expiresAt time.Time, refreshRaw string) *Session {
	expiresIn := int64(expiresAt.Sub(s.now()).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return &Session{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		ExpiresIn:    expiresIn,
		ExpiresAt:    expiresAt.Unix(),
		RefreshToken: refreshRaw,
		Purpose:      purpose,
		User:         user.Identity(),
	}
}

func generateOpaqueRefreshToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	hash = hashTokenWithPepper(raw, pepper)
	return raw, hash, nil
}

func hashTokenWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}
