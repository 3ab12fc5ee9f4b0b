package mirror

import (
	"context"
	"sync"

	"github.com/janisto/profile-playground/internal/profile"
)

// MemoryMirror keeps the serialized slot in process memory. It lasts as long as the
// process and counts calls so tests can assert on cache traffic.
type MemoryMirror struct {
	mu    sync.Mutex
	slot  []byte
	loads int
	saves int
}

// NewMemory returns an empty MemoryMirror.
func NewMemory() *MemoryMirror {
	return &MemoryMirror{}
}

// Close implements Mirror.
func (m *MemoryMirror) Close() error {
	return nil
}

// Load implements Mirror.
func (m *MemoryMirror) Load(ctx context.Context) (*profile.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.loads++
	data := m.slot
	m.mu.Unlock()

	if data == nil {
		return nil, nil
	}
	p, err := decode(data)
	if err != nil {
		return discardCorrupt(ctx, m, "memory", err)
	}
	return p, nil
}

// Save implements Mirror.
func (m *MemoryMirror) Save(ctx context.Context, p profile.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slot = data
	m.saves++
	return nil
}

// Clear implements Mirror.
func (m *MemoryMirror) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slot = nil
	return nil
}

// SetRaw stores data in the slot as is, bypassing encoding.
func (m *MemoryMirror) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slot = data
}

// Loads returns how many times Load ran.
func (m *MemoryMirror) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

// Saves returns how many times Save succeeded.
func (m *MemoryMirror) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
