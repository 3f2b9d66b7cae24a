package domain

// SessionEventType names a change pushed by the identity provider.
type SessionEventType string

const (
	SessionSignedIn       SessionEventType = "SIGNED_IN"
	SessionSignedOut      SessionEventType = "SIGNED_OUT"
	SessionTokenRefreshed SessionEventType = "TOKEN_REFRESHED"
)

// SessionEvent is the wire form of a session change.
type SessionEvent struct {
	Event     SessionEventType `json:"event"`
	SessionID string           `json:"session_id,omitempty"`
	User      *AdminIdentity   `json:"user,omitempty"`
}
