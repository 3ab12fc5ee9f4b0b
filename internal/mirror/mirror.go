// Package mirror keeps a durable local copy of the current profile so a restart does not
// need a network round trip. It is a cache of the Store, never a source of truth.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/janisto/profile-playground/internal/platform/config"
	"github.com/janisto/profile-playground/internal/platform/logging"
	"github.com/janisto/profile-playground/internal/profile"
)

// Key names the single slot holding the JSON-serialized profile.
const Key = "profileData"

// Mirror is the local profile cache. Implementations never perform network I/O.
type Mirror interface {
	// Load returns the cached profile, or nil when the slot is empty.
	Load(ctx context.Context) (*profile.Profile, error)
	// Save overwrites the slot unconditionally.
	Save(ctx context.Context, p profile.Profile) error
	// Clear removes the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
	Close() error
}

// Open returns the Mirror selected by driver (config.MirrorSQLite, config.MirrorFile
// or config.MirrorMemory).
func Open(driver, path string) (Mirror, error) {
	switch driver {
	case config.MirrorSQLite:
		return OpenSQLite(path)
	case config.MirrorFile:
		return NewFile(path)
	case config.MirrorMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown mirror driver %q", driver)
	}
}

func encode(p profile.Profile) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", Key, err)
	}
	return data, nil
}

// errCorrupt marks a slot whose content is not a profile.
var errCorrupt = errors.New("corrupt mirror slot")

func decode(data []byte) (*profile.Profile, error) {
	var p profile.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	return &p, nil
}

// discardCorrupt logs and clears a slot that failed to decode and reports it absent.
func discardCorrupt(ctx context.Context, m Mirror, driver string, cause error) (*profile.Profile, error) {
	logging.LogWarn(ctx, "discarding corrupt mirror slot",
		zap.String("driver", driver),
		zap.String("key", Key),
		zap.Error(cause),
	)
	if err := m.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear corrupt %s: %w", Key, err)
	}
	return nil, nil
}
