// Package profilesync reconciles the remote profile API with the Store and the Mirror.
// Page handlers call it; it never returns remote failures for rendering, it records them
// as Store errors and notices instead.
package profilesync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/janisto/profile-playground/internal/mirror"
	applog "github.com/janisto/profile-playground/internal/platform/logging"
	"github.com/janisto/profile-playground/internal/profile"
	"github.com/janisto/profile-playground/internal/service/remote"
	"github.com/janisto/profile-playground/internal/store"
)

// Notices and Store errors shown to the user.
const (
	MsgCreated       = "Profile created successfully!"
	MsgUpdated       = "Profile updated successfully!"
	MsgDeleted       = "Profile deleted successfully!"
	MsgCreateFailed  = "Failed to create profile."
	MsgUpdateFailed  = "Failed to update profile."
	prefixFetch      = "Failed to fetch profile data: "
	prefixCreate     = "Failed to create profile: "
	prefixUpdate     = "Failed to update profile: "
	prefixSubmit     = "An error occurred while submitting the form: "
	prefixEdit       = "An error occurred while updating the profile: "
	prefixDelete     = "An error occurred while deleting the profile: "
	logFieldOp       = "op"
	logFieldProfile  = "profile_id"
	logFieldListSize = "profiles"
)

// ErrNoProfile is returned by Update when neither the Store nor the Mirror holds a profile.
var ErrNoProfile = errors.New("no profile loaded")

// Outcome tells which remote write a Submit performed.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "none"
	}
}

// Syncer coordinates one Store, one Mirror and one remote API.
type Syncer struct {
	store  *store.Store
	mirror mirror.Mirror
	remote remote.Service

	// writeMu serializes Load, Submit, Update and Delete. Two submissions cannot both
	// observe an empty listing and create twice, and a Load cannot overwrite the result
	// of a write that finished while its listing was in flight.
	writeMu sync.Mutex

	loadingMu sync.Mutex
	inflight  int
}

// New returns a Syncer over st, m and r.
func New(st *store.Store, m mirror.Mirror, r remote.Service) *Syncer {
	return &Syncer{store: st, mirror: m, remote: r}
}

// Store returns the Store the Syncer writes to.
func (s *Syncer) Store() *store.Store {
	return s.store
}

// Load fills the Store, preferring the Mirror. On a Mirror hit no request is made. On a
// miss the first listed remote profile, if any, goes to the Store and the Mirror. The
// returned error is also recorded as the Store error.
func (s *Syncer) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	done := s.begin()
	defer done()
	s.store.ClearError()

	if p := s.loadMirror(ctx); p != nil {
		s.store.Set(p)
		applog.LoggerFromContext(ctx).Debug("profile loaded from mirror",
			zap.String(logFieldProfile, p.ID.String()))
		return nil
	}

	profiles, err := s.remote.ListProfiles(ctx)
	if err != nil {
		s.store.SetError(prefixFetch + reason(err))
		return err
	}
	if len(profiles) == 0 {
		s.store.Set(nil)
		return nil
	}
	s.warnIfMany(ctx, len(profiles))

	p := profiles[0]
	ctx = applog.With(ctx, zap.String(logFieldProfile, p.ID.String()))
	s.store.Set(&p)
	s.saveMirror(ctx, p)
	applog.LogInfo(ctx, "profile loaded from api")
	return nil
}

// Submit validates in and writes it remotely: create when the API holds no profile,
// otherwise update the first listed one. On success the Store and the Mirror hold the
// result and a success notice is queued. A *validate.ValidationError means nothing was
// sent.
func (s *Syncer) Submit(ctx context.Context, in profile.Input) (Outcome, error) {
	if err := profile.Validate(in); err != nil {
		return OutcomeNone, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	done := s.begin()
	defer done()
	s.store.ClearError()

	profiles, err := s.remote.ListProfiles(ctx)
	if err != nil {
		s.fail(ctx, remote.OpList, err, prefixSubmit+reason(err), prefixSubmit+reason(err))
		return OutcomeNone, err
	}

	if len(profiles) == 0 {
		created, err := s.remote.CreateProfile(ctx, in)
		if err != nil {
			s.failWrite(ctx, remote.OpCreate, err, prefixCreate, MsgCreateFailed)
			return OutcomeNone, err
		}
		s.commit(ctx, *created, MsgCreated)
		return OutcomeCreated, nil
	}

	s.warnIfMany(ctx, len(profiles))
	updated, err := s.remote.UpdateProfile(ctx, profiles[0].ID, in)
	if err != nil {
		s.failWrite(ctx, remote.OpUpdate, err, prefixUpdate, MsgUpdateFailed)
		return OutcomeNone, err
	}
	s.commit(ctx, *updated, MsgUpdated)
	return OutcomeUpdated, nil
}

// Update replaces the Store's profile remotely with in, keeping its id. An empty Store
// is first filled from the Mirror. On failure an error notice is queued and the Store is
// unchanged.
func (s *Syncer) Update(ctx context.Context, in profile.Input) (*profile.Profile, error) {
	if err := profile.Validate(in); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.store.Profile()
	if current == nil {
		if current = s.loadMirror(ctx); current != nil {
			s.store.Set(current)
		}
	}
	if current == nil || current.ID.IsZero() {
		applog.LogWarn(ctx, "profile update without a profile")
		s.store.Notify(store.NoticeError, prefixEdit+ErrNoProfile.Error())
		return nil, ErrNoProfile
	}

	ctx = applog.With(ctx, zap.String(logFieldProfile, current.ID.String()))
	done := s.begin()
	defer done()

	updated, err := s.remote.UpdateProfile(ctx, current.ID, in)
	if err != nil {
		applog.LogWarn(ctx, "profile update failed", zap.Error(err))
		s.store.Notify(store.NoticeError, prefixEdit+reason(err))
		return nil, err
	}
	s.commit(ctx, *updated, MsgUpdated)
	return updated.Clone(), nil
}

// Delete removes the Store's profile remotely when confirmed is true. It reports whether
// a profile was deleted. Without a profile or without confirmation nothing is sent and
// the Store is unchanged. On success the Mirror is cleared and the Store emptied.
func (s *Syncer) Delete(ctx context.Context, confirmed bool) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.store.Profile()
	if current == nil || !confirmed {
		return false, nil
	}

	ctx = applog.With(ctx, zap.String(logFieldProfile, current.ID.String()))
	done := s.begin()
	defer done()

	if err := s.remote.DeleteProfile(ctx, current.ID); err != nil {
		applog.LogWarn(ctx, "profile delete failed", zap.Error(err))
		s.store.Notify(store.NoticeError, prefixDelete+reason(err))
		return false, err
	}

	if err := s.mirror.Clear(ctx); err != nil {
		applog.LogError(ctx, "mirror clear failed", err)
	}
	s.store.Set(nil)
	s.store.ClearError()
	s.store.Notify(store.NoticeSuccess, MsgDeleted)
	applog.LogInfo(ctx, "profile deleted")
	return true, nil
}

// CurrentUser returns the name held by the Mirror, for the nav bar.
func (s *Syncer) CurrentUser(ctx context.Context) (string, bool) {
	p := s.loadMirror(ctx)
	if p == nil || p.Name == "" {
		return "", false
	}
	return p.Name, true
}

// begin raises the Store loading flag. The returned func lowers it once no other
// operation is in flight.
func (s *Syncer) begin() func() {
	s.loadingMu.Lock()
	s.inflight++
	if s.inflight == 1 {
		s.store.SetLoading(true)
	}
	s.loadingMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.loadingMu.Lock()
			s.inflight--
			if s.inflight == 0 {
				s.store.SetLoading(false)
			}
			s.loadingMu.Unlock()
		})
	}
}

func (s *Syncer) commit(ctx context.Context, p profile.Profile, notice string) {
	ctx = applog.With(ctx, zap.String(logFieldProfile, p.ID.String()))
	s.store.Set(&p)
	s.store.ClearError()
	s.saveMirror(ctx, p)
	s.store.Notify(store.NoticeSuccess, notice)
	applog.LogInfo(ctx, "profile saved")
}

func (s *Syncer) failWrite(ctx context.Context, op string, err error, storePrefix, notice string) {
	var re *remote.RequestError
	if errors.As(err, &re) && re.Status != 0 {
		s.fail(ctx, op, err, storePrefix+re.Message, notice)
		return
	}
	s.fail(ctx, op, err, prefixSubmit+reason(err), prefixSubmit+reason(err))
}

func (s *Syncer) fail(ctx context.Context, op string, err error, storeMsg, notice string) {
	applog.LogWarn(ctx, "profile submit failed", zap.String(logFieldOp, op), zap.Error(err))
	s.store.SetError(storeMsg)
	s.store.Notify(store.NoticeError, notice)
}

func (s *Syncer) loadMirror(ctx context.Context) *profile.Profile {
	p, err := s.mirror.Load(ctx)
	if err != nil {
		applog.LogError(ctx, "mirror load failed", err)
		return nil
	}
	return p
}

func (s *Syncer) saveMirror(ctx context.Context, p profile.Profile) {
	if err := s.mirror.Save(ctx, p); err != nil {
		applog.LogError(ctx, "mirror save failed", err)
	}
}

func (s *Syncer) warnIfMany(ctx context.Context, n int) {
	if n > 1 {
		applog.LogWarn(ctx, "remote holds more than one profile, using the first",
			zap.Int(logFieldListSize, n))
	}
}

// reason is the user-facing part of a sync failure.
func reason(err error) string {
	var re *remote.RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fmt.Sprint(err)
}
