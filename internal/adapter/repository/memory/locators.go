// Package memory provides in-memory repositories scoped to the running session.
package memory

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// BlobScheme prefixes every locator issued by LocatorRepository.
const BlobScheme = "blob:"

// LocatorRepository implements ports.LocatorRegistry.
// It retains user-selected file handles for as long as their locator is live.
//
// Thread-safe: All operations protected by sync.RWMutex.
type LocatorRepository struct {
	handles map[string]ports.FileHandle
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewLocatorRepository creates an empty locator repository.
func NewLocatorRepository(logger *slog.Logger) *LocatorRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocatorRepository{
		handles: make(map[string]ports.FileHandle),
		logger:  logger,
	}
}

// IsBlobLocator reports whether locator was issued by a LocatorRepository.
func IsBlobLocator(locator string) bool {
	return strings.HasPrefix(locator, BlobScheme)
}

// Register retains the handle and returns a fresh locator for it.
func (r *LocatorRepository) Register(handle ports.FileHandle) string {
	locator := BlobScheme + uuid.NewString()

	r.mu.Lock()
	r.handles[locator] = handle
	r.mu.Unlock()

	r.logger.Debug("locator registered",
		slog.String("locator", locator),
		slog.String("name", handle.Name()))
	return locator
}

// Lookup returns the handle behind a locator.
func (r *LocatorRepository) Lookup(locator string) (ports.FileHandle, error) {
	if !IsBlobLocator(locator) {
		return nil, errors.Wrapf(domain.ErrInvalidLocator, "%q", locator)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.handles[locator]
	if !ok {
		return nil, errors.Wrapf(domain.ErrLocatorNotFound, "%q", locator)
	}
	return handle, nil
}

// Revoke releases a locator. Unknown locators are ignored.
func (r *LocatorRepository) Revoke(locator string) {
	r.mu.Lock()
	_, ok := r.handles[locator]
	delete(r.handles, locator)
	r.mu.Unlock()

	if ok {
		r.logger.Debug("locator revoked", slog.String("locator", locator))
	}
}

// Count returns the number of live locators.
func (r *LocatorRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Verify interface compliance
var _ ports.LocatorRegistry = (*LocatorRepository)(nil)
