// Package store holds the application state shared by every page: the current profile,
// whether a sync is in flight, and the last sync error.
package store

import (
	"sync"

	"github.com/janisto/profile-playground/internal/platform/timeutil"
	"github.com/janisto/profile-playground/internal/profile"
)

// NoticeKind selects how a notice is styled.
type NoticeKind string

// Notice kinds.
const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown once on the next rendered page.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// State is an immutable snapshot of the Store.
type State struct {
	Profile   *profile.Profile `json:"profile"`
	Loading   bool             `json:"loading"`
	Error     string           `json:"error,omitempty"`
	Version   uint64           `json:"version"`
	UpdatedAt timeutil.Time    `json:"updatedAt"`
}

// Store is the in-memory holder of the current profile plus loading and error flags.
// It performs no validation. Callers hand it data that already passed the rules.
type Store struct {
	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
	notices []Notice
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		state: State{UpdatedAt: timeutil.Now()},
		subs:  make(map[int]func(State)),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Profile returns a copy of the current profile, or nil.
func (s *Store) Profile() *profile.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Profile.Clone()
}

// Set replaces the current profile. nil means absent.
func (s *Store) Set(p *profile.Profile) {
	s.update(func(st *State) { st.Profile = p.Clone() })
}

// SetLoading replaces the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.update(func(st *State) { st.Loading = loading })
}

// SetError replaces the error message. An empty message clears it.
func (s *Store) SetError(msg string) {
	s.update(func(st *State) { st.Error = msg })
}

// ClearError removes the error message.
func (s *Store) ClearError() {
	s.SetError("")
}

// Subscribe registers fn to receive every new state. fn runs synchronously after the
// change, outside the Store lock. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Notify queues a notice for the next page render.
func (s *Store) Notify(kind NoticeKind, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, Notice{Kind: kind, Message: msg})
}

// TakeNotices returns and clears the queued notices.
func (s *Store) TakeNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

func (s *Store) update(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	s.state.Version++
	s.state.UpdatedAt = timeutil.Now()
	snap := s.snapshotLocked()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.Profile = s.state.Profile.Clone()
	return st
}
