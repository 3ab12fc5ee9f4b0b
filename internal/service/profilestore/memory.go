package profilestore

import (
	"context"
	"strconv"
	"sync"

	applog "github.com/janisto/profile-playground/internal/platform/logging"
	"github.com/janisto/profile-playground/internal/profile"
)

// MemoryStore implements Service in process memory with sequential numeric ids,
// the way json-server numbers records.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles []profile.Profile
	nextID   int
}

// NewMemoryStore creates an empty store. The first id is 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (m *MemoryStore) List(ctx context.Context) ([]profile.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]profile.Profile, len(m.profiles))
	for i := range m.profiles {
		out[i] = *m.profiles[i].Clone()
	}
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, id profile.ID) (*profile.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexLocked(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return m.profiles[i].Clone(), nil
}

func (m *MemoryStore) Create(ctx context.Context, in profile.Input) (*profile.Profile, error) {
	m.mu.Lock()
	p := in.Normalize().Profile(profile.ID(strconv.Itoa(m.nextID)))
	m.nextID++
	m.profiles = append(m.profiles, p)
	m.mu.Unlock()

	applog.LogAuditEvent(ctx, "create", resourceType, p.ID.String(), applog.AuditSuccess, nil)
	return p.Clone(), nil
}

func (m *MemoryStore) Replace(ctx context.Context, id profile.ID, in profile.Input) (*profile.Profile, error) {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		applog.LogAuditEvent(ctx, "update", resourceType, id.String(), applog.AuditFailure,
			map[string]any{"error": categorizeError(ErrNotFound)})
		return nil, ErrNotFound
	}
	m.profiles[i] = in.Normalize().Profile(id)
	p := m.profiles[i].Clone()
	m.mu.Unlock()

	applog.LogAuditEvent(ctx, "update", resourceType, id.String(), applog.AuditSuccess, nil)
	return p, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id profile.ID) error {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		applog.LogAuditEvent(ctx, "delete", resourceType, id.String(), applog.AuditFailure,
			map[string]any{"error": categorizeError(ErrNotFound)})
		return ErrNotFound
	}
	m.profiles = append(m.profiles[:i], m.profiles[i+1:]...)
	m.mu.Unlock()

	applog.LogAuditEvent(ctx, "delete", resourceType, id.String(), applog.AuditSuccess, nil)
	return nil
}

// Clear removes all profiles (useful for test cleanup). Ids keep counting.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = nil
}

func (m *MemoryStore) indexLocked(id profile.ID) int {
	for i := range m.profiles {
		if m.profiles[i].ID == id {
			return i
		}
	}
	return -1
}

// Compile-time interface check
var _ Service = (*MemoryStore)(nil)
