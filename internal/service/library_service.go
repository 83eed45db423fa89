package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
)

// LibraryService turns file chooser output (explicit paths or a folder)
// into file handles. Folder scans can be cancelled.
// All operations are thread-safe via sync.RWMutex.
type LibraryService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	chooser ports.FileChooser
	bus     ports.EventBus

	// State
	scanning   bool
	cancelScan context.CancelFunc

	// Concurrency control
	mu sync.RWMutex
}

// NewLibraryService creates a new library service.
func NewLibraryService(
	logger *slog.Logger,
	chooser ports.FileChooser,
	bus ports.EventBus,
) *LibraryService {
	return &LibraryService{
		logger:  logger,
		chooser: chooser,
		bus:     bus,
	}
}

// ImportFiles returns handles for explicitly chosen files, keeping their order.
func (s *LibraryService) ImportFiles(ctx context.Context, paths []string) ([]ports.FileHandle, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	handles, err := s.chooser.Files(ctx, paths)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("files imported", slog.Int("requested", len(paths)), slog.Int("handles", len(handles)))
	return handles, nil
}

// ImportFolder walks dir and returns a handle for every file found.
// Publishes scan started/completed/cancelled events.
func (s *LibraryService) ImportFolder(ctx context.Context, dir string) ([]ports.FileHandle, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil, domain.NewServiceError("LibraryService", "ImportFolder", "scan already in progress", domain.ErrScanInProgress)
	}
	s.scanning = true

	// Create cancellable context
	scanCtx, cancel := context.WithCancel(ctx)
	s.cancelScan = cancel
	s.mu.Unlock()

	// Ensure cleanup
	defer func() {
		cancel()
		s.mu.Lock()
		s.scanning = false
		s.cancelScan = nil
		s.mu.Unlock()
	}()

	s.bus.Publish(domain.NewScanStartedEvent(dir))

	handles, err := s.chooser.Folder(scanCtx, dir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.bus.Publish(domain.NewScanCancelledEvent("user cancelled"))
			return nil, errors.Wrap(domain.ErrScanCancelled, dir)
		}
		return nil, errors.Wrapf(err, "scan %s", dir)
	}

	s.logger.Info("folder scanned", slog.String("path", dir), slog.Int("files", len(handles)))
	s.bus.Publish(domain.NewScanCompletedEvent(dir, len(handles)))
	return handles, nil
}

// CancelScan cancels the currently running folder scan.
func (s *LibraryService) CancelScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scanning {
		return domain.NewServiceError("LibraryService", "CancelScan", "nothing to cancel", domain.ErrNoScan)
	}

	if s.cancelScan != nil {
		s.cancelScan()
	}

	return nil
}

// IsScanning returns true if a scan is currently in progress.
func (s *LibraryService) IsScanning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanning
}

// Shutdown cancels any running scan.
func (s *LibraryService) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanning && s.cancelScan != nil {
		s.cancelScan()
	}

	return nil
}

// Verify that LibraryService implements the expected interface patterns
var _ FileImporter = (*LibraryService)(nil)
