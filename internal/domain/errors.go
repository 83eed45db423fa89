// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Common errors that services can return.
var (
	// ErrInvalidIndex is returned when a playlist index is out of bounds.
	ErrInvalidIndex = errors.New("invalid playlist index")

	// ErrInvalidVolume is returned when the volume is out of valid range (0.0-1.0).
	ErrInvalidVolume = errors.New("invalid volume: must be between 0.0 and 1.0")

	// ErrInvalidPosition is returned when a seek target is not a finite number.
	ErrInvalidPosition = errors.New("invalid playback position")

	// ErrNoTrackLoaded is returned when a media operation needs a loaded track.
	ErrNoTrackLoaded = errors.New("no track loaded")

	// ErrPlaybackRejected is returned when the media player refuses to start.
	ErrPlaybackRejected = errors.New("playback rejected")

	// ErrUnsupportedFormat is returned when an audio file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileNotFound is returned when a file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidFilePath is returned when a file path is invalid.
	ErrInvalidFilePath = errors.New("invalid file path")

	// ErrLocatorNotFound is returned when a locator is unknown or was revoked.
	ErrLocatorNotFound = errors.New("locator not found")

	// ErrInvalidLocator is returned when a locator cannot be parsed.
	ErrInvalidLocator = errors.New("invalid locator")

	// ErrManifestUnavailable is returned when the manifest cannot be fetched or parsed.
	ErrManifestUnavailable = errors.New("manifest unavailable")

	// ErrNotInitialized is returned when an operation is attempted on an uninitialized component.
	ErrNotInitialized = errors.New("component not initialized")

	// ErrClosed is returned when an operation is attempted on a closed component.
	ErrClosed = errors.New("component closed")

	// ErrScanCancelled is returned when a folder scan is canceled.
	ErrScanCancelled = errors.New("scan cancelled")

	// ErrScanInProgress is returned when a folder scan is requested while one runs.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrNoScan is returned when cancelling with no folder scan running.
	ErrNoScan = errors.New("no scan in progress")
)

// MediaError represents an error from the media player.
// This wraps low-level audio library errors with additional context.
type MediaError struct {
	Op      string // Operation that failed (e.g., "load", "play", "seek")
	Locator string // Locator (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *MediaError) Error() string {
	if e.Locator != "" {
		return fmt.Sprintf("media %s failed for '%s': %s", e.Op, e.Locator, e.Message)
	}
	return fmt.Sprintf("media %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *MediaError) Unwrap() error {
	return e.Err
}

// NewMediaError creates a new MediaError.
func NewMediaError(op, locator, message string, err error) *MediaError {
	return &MediaError{
		Op:      op,
		Locator: locator,
		Message: message,
		Err:     err,
	}
}

// ValidationError reports an argument outside its allowed range.
// Err is the sentinel callers match with errors.Is, e.g. ErrInvalidVolume.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %v rejected: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, err error) *ValidationError {
	return &ValidationError{
		Field: field,
		Value: value,
		Err:   err,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "PlaybackController", "PlaylistManager")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
