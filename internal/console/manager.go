package console

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"cabbooking/internal/domain"
	"cabbooking/internal/pkg/password"
	"cabbooking/internal/pkg/validator"
	"cabbooking/internal/session"
)

// SessionManager drives sign-in, sign-out and password recovery for the admin
// console. It owns the session store's only Writer.
type SessionManager struct {
	provider IdentityProvider
	store    *session.Store
	writer   *session.Writer
	feed     *session.Feed
	log      *zap.Logger

	mu  sync.Mutex
	sub Subscription
}

func NewSessionManager(provider IdentityProvider, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	store, writer := session.New()
	return &SessionManager{
		provider: provider,
		store:    store,
		writer:   writer,
		feed:     session.NewFeed(writer, 0, log),
		log:      log,
	}
}

// Store is the read-only session view to hand to other components.
func (m *SessionManager) Store() *session.Store { return m.store }

// Start subscribes to provider session changes and restores any existing session.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.sub == nil {
		m.feed.Start()
		m.sub = m.provider.OnSessionChange(func(ev session.Event) {
			m.feed.Deliver(ev)
		})
	}
	m.mu.Unlock()

	ticket := m.writer.Begin("")
	sess, err := m.provider.GetSession(ctx)
	if err != nil {
		m.writer.Settle(ticket)
		m.log.Warn("restore session", zap.Error(err))
		return err
	}
	m.writer.Commit(ticket, updateFor(sess))
	return nil
}

// Close unsubscribes from the provider. No event is applied afterwards.
func (m *SessionManager) Close() {
	m.mu.Lock()
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	m.feed.Close()
}

func updateFor(sess *ProviderSession) session.Update {
	if sess == nil {
		return session.Update{State: session.Anonymous}
	}
	state := session.Authenticated
	if sess.Purpose == domain.PurposeRecovery {
		state = session.ResetValidated
	}
	return session.Update{State: state, User: adminIdentity(sess), ExpiresAt: sess.ExpiresAt}
}

func (m *SessionManager) SignIn(ctx context.Context, email, pw string) Result {
	email = strings.TrimSpace(email)
	if email == "" || pw == "" {
		return fail(domain.ValidationError{Field: "email", Msg: "Email and password are required"})
	}

	ticket := m.writer.Begin(session.Authenticating)
	sess, err := m.provider.SignInWithPassword(ctx, email, pw)
	if err != nil {
		m.writer.Commit(ticket, session.Update{State: session.Anonymous})
		m.log.Info("admin sign in failed", zap.Error(err))
		return fail(err)
	}

	if !m.writer.Commit(ticket, updateFor(sess)) && m.store.State() != session.Authenticated {
		m.log.Info("admin sign in superseded by session change")
		return fail(sessionRequired())
	}
	return ok("Signed in")
}

// SignOut always leaves the store anonymous, even when the provider call fails.
func (m *SessionManager) SignOut(ctx context.Context) Result {
	m.writer.Begin("")
	err := m.provider.SignOut(ctx)
	m.writer.Force(session.Update{State: session.Anonymous})
	if err != nil {
		m.log.Warn("provider sign out failed", zap.Error(err))
		return fail(err)
	}
	return ok("Signed out")
}

type resetRequest struct {
	Email string `validate:"required,email"`
}

// RequestPasswordReset answers the same way whether or not the email is registered.
func (m *SessionManager) RequestPasswordReset(ctx context.Context, email string) Result {
	email = strings.TrimSpace(email)
	if err := validator.Check(resetRequest{Email: email}); err != nil {
		return fail(domain.ValidationError{Field: "email", Msg: "Please enter a valid email address", Err: err})
	}

	if err := m.provider.RequestPasswordReset(ctx, email); err != nil {
		if domain.IsValidation(err) {
			return fail(err)
		}
		m.log.Warn("password reset request failed", zap.Error(err))
		return Result{
			Message: "Unable to send the reset email right now. Please try again.",
			Err:     err,
		}
	}
	return ok("If an account exists for that email, a reset link is on its way. Check your email.")
}

// ExchangeResetLink reads the token pair from a reset link and exchanges it.
// Tokens are taken from the query string, or from the fragment when the query has none.
func (m *SessionManager) ExchangeResetLink(ctx context.Context, rawURL string) Result {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return invalidLinkResult()
	}
	q := u.Query()
	if q.Get("access_token") == "" && q.Get("refresh_token") == "" && u.Fragment != "" {
		if fq, err := url.ParseQuery(u.Fragment); err == nil {
			q = fq
		}
	}
	return m.ExchangeResetToken(ctx, q.Get("access_token"), q.Get("refresh_token"))
}

// ExchangeResetToken turns a reset link's token pair into a recovery session.
// With neither token present it falls back to whatever session already exists.
func (m *SessionManager) ExchangeResetToken(ctx context.Context, accessToken, refreshToken string) Result {
	accessToken = strings.TrimSpace(accessToken)
	refreshToken = strings.TrimSpace(refreshToken)

	if accessToken == "" && refreshToken == "" {
		return m.existingSession(ctx)
	}
	if !looksLikeJWT(accessToken) || !looksLikeOpaqueToken(refreshToken) {
		return invalidLinkResult()
	}

	ticket := m.writer.Begin(session.ResetPending)
	sess, err := m.provider.SetSession(ctx, accessToken, refreshToken)
	if err != nil {
		m.writer.Commit(ticket, session.Update{State: session.Anonymous})
		if domain.IsTransient(err) {
			return fail(err)
		}
		m.log.Info("reset link rejected", zap.Error(err))
		return invalidLinkResult()
	}

	m.writer.Commit(ticket, updateFor(sess))
	return ok("Reset link verified. Choose a new password.")
}

func (m *SessionManager) existingSession(ctx context.Context) Result {
	ticket := m.writer.Begin("")
	sess, err := m.provider.GetSession(ctx)
	if err != nil {
		m.writer.Settle(ticket)
		if domain.IsTransient(err) {
			return fail(err)
		}
		return invalidLinkResult()
	}
	if sess == nil {
		m.writer.Commit(ticket, session.Update{State: session.Anonymous})
		return invalidLinkResult()
	}
	m.writer.Commit(ticket, updateFor(sess))
	return ok("Choose a new password.")
}

func invalidLinkResult() Result {
	r := fail(invalidResetLink())
	r.Redirect = ForgotPasswordPath
	return r
}

var (
	jwtShape    = regexp.MustCompile(`^[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+$`)
	opaqueShape = regexp.MustCompile(`^[A-Za-z0-9_-]{16,512}$`)
)

func looksLikeJWT(s string) bool         { return jwtShape.MatchString(s) }
func looksLikeOpaqueToken(s string) bool { return opaqueShape.MatchString(s) }

// UpdatePassword needs a recovery or login session. The policy is checked before
// anything is sent to the provider.
func (m *SessionManager) UpdatePassword(ctx context.Context, newPassword string) Result {
	switch m.store.State() {
	case session.ResetValidated, session.Authenticated:
	default:
		r := fail(sessionRequired())
		r.Message = "Please sign in or open a valid reset link first."
		return r
	}

	if err := password.Validate(newPassword); err != nil {
		return fail(err)
	}

	ticket := m.writer.Begin("")
	sess, err := m.provider.UpdateCredential(ctx, newPassword)
	if err != nil {
		m.writer.Settle(ticket)
		m.log.Warn("update password failed", zap.Error(err))
		return fail(err)
	}

	m.writer.Commit(ticket, session.Update{
		State:     session.Authenticated,
		User:      adminIdentity(sess),
		ExpiresAt: sess.ExpiresAt,
	})
	m.log.Info("admin password updated", zap.String("user_id", sess.User.ID))

	r := ok("Password updated successfully. Redirecting to login...")
	r.Redirect = LoginPath
	r.RedirectAfter = PasswordUpdatedRedirectDelay
	return r
}

// ChangePassword checks the confirmation before the policy.
func (m *SessionManager) ChangePassword(ctx context.Context, newPassword, confirmation string) Result {
	if err := password.ValidateConfirmation(newPassword, confirmation); err != nil {
		return fail(err)
	}
	return m.UpdatePassword(ctx, newPassword)
}
