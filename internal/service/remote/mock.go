package remote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/janisto/profile-playground/internal/profile"
)

// MockService implements Service in memory for tests. It assigns sequential numeric
// ids, records every call, and can fail or stall operations on demand.
type MockService struct {
	mu       sync.Mutex
	profiles []profile.Profile
	nextID   int
	calls    []string
	fail     map[string]error
	delay    time.Duration
}

// NewMockService returns a mock holding profiles.
func NewMockService(profiles ...profile.Profile) *MockService {
	m := &MockService{nextID: 1, fail: make(map[string]error)}
	for _, p := range profiles {
		m.profiles = append(m.profiles, *p.Clone())
		if n, err := strconv.Atoi(p.ID.String()); err == nil && n >= m.nextID {
			m.nextID = n + 1
		}
	}
	return m
}

// Fail makes every later call of op return err. A nil err clears the failure.
func (m *MockService) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

// SetDelay stalls every call by d, or until the context ends.
func (m *MockService) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns the operations invoked so far, in order.
func (m *MockService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Count returns how many times op was invoked.
func (m *MockService) Count(op string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// Profiles returns a copy of the stored profiles.
func (m *MockService) Profiles() []profile.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]profile.Profile, len(m.profiles))
	for i := range m.profiles {
		out[i] = *m.profiles[i].Clone()
	}
	return out
}

// enter records op and applies the configured delay and failure.
func (m *MockService) enter(ctx context.Context, op, method string) error {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	delay := m.delay
	failure := m.fail[op]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &RequestError{Op: op, Method: method, Message: ctx.Err().Error(), cause: fmt.Errorf("%w: %w", ErrTransport, ctx.Err())}
		}
	}
	return failure
}

// ListProfiles implements Service.
func (m *MockService) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	if err := m.enter(ctx, OpList, http.MethodGet); err != nil {
		return nil, err
	}
	return m.Profiles(), nil
}

// CreateProfile implements Service.
func (m *MockService) CreateProfile(ctx context.Context, in profile.Input) (*profile.Profile, error) {
	if err := m.enter(ctx, OpCreate, http.MethodPost); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := in.Profile(profile.ID(strconv.Itoa(m.nextID)))
	m.nextID++
	m.profiles = append(m.profiles, p)
	return p.Clone(), nil
}

// UpdateProfile implements Service.
func (m *MockService) UpdateProfile(ctx context.Context, id profile.ID, in profile.Input) (*profile.Profile, error) {
	if err := m.enter(ctx, OpUpdate, http.MethodPut); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.profiles {
		if m.profiles[i].ID == id {
			m.profiles[i] = in.Profile(id)
			return m.profiles[i].Clone(), nil
		}
	}
	return nil, notFound(OpUpdate, http.MethodPut)
}

// DeleteProfile implements Service.
func (m *MockService) DeleteProfile(ctx context.Context, id profile.ID) error {
	if err := m.enter(ctx, OpDelete, http.MethodDelete); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.profiles {
		if m.profiles[i].ID == id {
			m.profiles = append(m.profiles[:i], m.profiles[i+1:]...)
			return nil
		}
	}
	return notFound(OpDelete, http.MethodDelete)
}

func notFound(op, method string) *RequestError {
	return &RequestError{Op: op, Method: method, Status: http.StatusNotFound, Message: "Not Found", cause: ErrNotFound}
}

// NewRequestError builds a RequestError for tests and fakes outside this package.
func NewRequestError(op, method string, status int, message string, kind error) *RequestError {
	return &RequestError{Op: op, Method: method, Status: status, Message: message, cause: kind}
}

// Compile-time interface check
var _ Service = (*MockService)(nil)
