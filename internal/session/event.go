package session

import (
	"time"

	"cabbooking/internal/domain"
)

type EventKind int

const (
	EventSignedIn EventKind = iota + 1
	EventSignedOut
	EventTokenRefreshed
)

func (k EventKind) String() string {
	switch k {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	case EventTokenRefreshed:
		return "token_refreshed"
	default:
		return "unknown"
	}
}

// Event is a session change reported by the identity provider.
// User is set for SignedIn and TokenRefreshed.
type Event struct {
	Kind      EventKind
	User      *domain.AdminIdentity
	ExpiresAt time.Time
}

func SignedIn(user domain.AdminIdentity, expiresAt time.Time) Event {
	return Event{Kind: EventSignedIn, User: &user, ExpiresAt: expiresAt}
}

func SignedOut() Event {
	return Event{Kind: EventSignedOut}
}

func TokenRefreshed(user domain.AdminIdentity, expiresAt time.Time) Event {
	return Event{Kind: EventTokenRefreshed, User: &user, ExpiresAt: expiresAt}
}

// FromWire converts a pushed provider event. ok is false for unknown kinds.
func FromWire(ev domain.SessionEvent, expiresAt time.Time) (Event, bool) {
	switch ev.Event {
	case domain.SessionSignedOut:
		return SignedOut(), true
	case domain.SessionSignedIn:
		if ev.User == nil {
			return Event{}, false
		}
		return SignedIn(*ev.User, expiresAt), true
	case domain.SessionTokenRefreshed:
		if ev.User == nil {
			return Event{}, false
		}
		return TokenRefreshed(*ev.User, expiresAt), true
	default:
		return Event{}, false
	}
}

// reduce computes the snapshot after ev. A refresh during password recovery
// stays in recovery.
func reduce(cur Snapshot, ev Event) Snapshot {
	switch ev.Kind {
	case EventSignedIn:
		return fromUpdate(Update{State: Authenticated, User: ev.User, ExpiresAt: ev.ExpiresAt})
	case EventTokenRefreshed:
		state := Authenticated
		if cur.State == ResetValidated {
			state = ResetValidated
		}
		return fromUpdate(Update{State: state, User: ev.User, ExpiresAt: ev.ExpiresAt})
	default:
		return fromUpdate(Update{State: Anonymous})
	}
}
