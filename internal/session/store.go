// Package session holds the admin console's single view of the current session.
//
// New returns a read-only Store and the one Writer allowed to change it. Writes
// come from two places: direct responses to console calls, committed with the
// Ticket taken when the call began, and provider push events applied by Feed.
// Whatever was applied last wins; a direct response whose ticket is older than
// the current generation is discarded.
package session

import (
	"sync"
	"time"

	"cabbooking/internal/domain"
)

type State string

const (
	Anonymous      State = "anonymous"
	Authenticating State = "authenticating"
	Authenticated  State = "authenticated"
	ResetPending   State = "reset-pending"
	ResetValidated State = "reset-validated"
)

// Snapshot is a copy of the store at one generation.
type Snapshot struct {
	State      State
	User       *domain.AdminIdentity
	IsLoading  bool
	ExpiresAt  time.Time
	Generation uint64
}

// HasSession reports whether the snapshot carries a usable session.
func (s Snapshot) HasSession() bool {
	return s.User != nil && (s.State == Authenticated || s.State == ResetValidated)
}

type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	subs map[int]chan<- Snapshot
	next int
}

// Ticket identifies the generation a direct call started from.
type Ticket uint64

// Writer is the only way to change a Store.
type Writer struct {
	store *Store
}

func New() (*Store, *Writer) {
	s := &Store{
		snap: Snapshot{State: Anonymous},
		subs: make(map[int]chan<- Snapshot),
	}
	return s, &Writer{store: s}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.State
}

func (s *Store) User() *domain.AdminIdentity {
	return s.Snapshot().User
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.IsLoading
}

// Watch delivers every new snapshot to ch without blocking the writer;
// a full channel misses that snapshot. Call the returned func to stop.
func (s *Store) Watch(ch chan<- Snapshot) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// set must be called with mu held.
func (s *Store) set(next Snapshot) {
	next.Generation = s.snap.Generation + 1
	s.snap = next
	for _, ch := range s.subs {
		select {
		case ch <- next.clone():
		default:
		}
	}
}

func (s Snapshot) clone() Snapshot {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Begin marks a direct call as in flight and returns its ticket. An empty
// state keeps the current one.
func (w *Writer) Begin(state State) Ticket {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap
	if state != "" {
		next.State = state
	}
	next.IsLoading = true
	s.set(next)
	return Ticket(s.snap.Generation)
}

// Update is the outcome of a direct call.
type Update struct {
	State     State
	User      *domain.AdminIdentity
	ExpiresAt time.Time
}

// Commit applies u only if nothing was written since t was issued.
func (w *Writer) Commit(t Ticket, u Update) bool {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(t) != s.snap.Generation {
		return false
	}
	s.set(fromUpdate(u))
	return true
}

// Force applies u regardless of what happened meanwhile. It is reserved for
// fail-safe transitions such as sign out.
func (w *Writer) Force(u Update) {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(fromUpdate(u))
}

// Settle clears the loading flag if t is still current, leaving the rest as is.
func (w *Writer) Settle(t Ticket) bool {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(t) != s.snap.Generation {
		return false
	}
	next := s.snap
	next.IsLoading = false
	s.set(next)
	return true
}

// Apply applies a provider event unconditionally.
func (w *Writer) Apply(ev Event) {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(reduce(s.snap, ev))
}

func fromUpdate(u Update) Snapshot {
	snap := Snapshot{State: u.State, ExpiresAt: u.ExpiresAt}
	if snap.State == "" {
		snap.State = Anonymous
	}
	if u.User != nil && snap.State != Anonymous {
		user := *u.User
		snap.User = &user
	} else {
		snap.ExpiresAt = time.Time{}
	}
	return snap
}
