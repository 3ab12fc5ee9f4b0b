package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/janisto/profile-playground/internal/profile"
)

// FileMirror keeps the slot in one JSON document, {"profileData": {...}}, replaced
// atomically on every write.
type FileMirror struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a FileMirror at path. The parent directory must exist.
func NewFile(path string) (*FileMirror, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("mirror path is required")
	}
	path = filepath.Clean(path)
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("mirror directory %q is not usable", filepath.Dir(path))
	}
	return &FileMirror{path: path}, nil
}

// Close implements Mirror. There is nothing to release.
func (m *FileMirror) Close() error {
	return nil
}

// Load implements Mirror.
func (m *FileMirror) Load(ctx context.Context) (*profile.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	data, err := os.ReadFile(m.path)
	m.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", Key, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return discardCorrupt(ctx, m, "file", fmt.Errorf("%w: %w", errCorrupt, err))
	}
	raw, ok := doc[Key]
	if !ok {
		return nil, nil
	}
	p, err := decode(raw)
	if err != nil {
		return discardCorrupt(ctx, m, "file", err)
	}
	return p, nil
}

// Save implements Mirror.
func (m *FileMirror) Save(ctx context.Context, p profile.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := encode(p)
	if err != nil {
		return err
	}
	data, err := json.Marshal(map[string]json.RawMessage{Key: value})
	if err != nil {
		return fmt.Errorf("encode %s: %w", Key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeAtomic(data)
}

// Clear implements Mirror.
func (m *FileMirror) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear %s: %w", Key, err)
	}
	return nil
}

func (m *FileMirror) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(m.path), "."+filepath.Base(m.path)+".*")
	if err != nil {
		return fmt.Errorf("save %s: %w", Key, err)
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", Key, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", Key, err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", Key, err)
	}
	return nil
}
