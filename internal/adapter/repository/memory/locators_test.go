package memory

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunebox/internal/domain"
	"github.com/tejashwikalptaru/tunebox/internal/logger"
)

type fakeHandle struct {
	name string
}

func (h fakeHandle) Name() string      { return h.name }
func (h fakeHandle) MediaType() string { return "audio/mpeg" }
func (h fakeHandle) Open() (io.ReadSeekCloser, error) {
	return nopSeekCloser{bytes.NewReader(nil)}, nil
}

type nopSeekCloser struct{ *bytes.Reader }

func (nopSeekCloser) Close() error { return nil }

// Helper to create a test locator repository
func newTestLocatorRepository() *LocatorRepository {
	return NewLocatorRepository(logger.NewTestLogger())
}

func TestLocatorRepository_RegisterAndLookup(t *testing.T) {
	repo := newTestLocatorRepository()

	locator := repo.Register(fakeHandle{name: "song.mp3"})
	assert.True(t, IsBlobLocator(locator))

	handle, err := repo.Lookup(locator)
	require.NoError(t, err)
	assert.Equal(t, "song.mp3", handle.Name())
	assert.Equal(t, 1, repo.Count())
}

func TestLocatorRepository_LocatorsAreUnique(t *testing.T) {
	repo := newTestLocatorRepository()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		loc := repo.Register(fakeHandle{name: "same.mp3"})
		assert.False(t, seen[loc], "duplicate locator %s", loc)
		seen[loc] = true
	}
	assert.Equal(t, 50, repo.Count())
}

func TestLocatorRepository_Revoke(t *testing.T) {
	repo := newTestLocatorRepository()

	locator := repo.Register(fakeHandle{name: "a.mp3"})
	repo.Revoke(locator)

	_, err := repo.Lookup(locator)
	assert.True(t, errors.Is(err, domain.ErrLocatorNotFound))
	assert.Equal(t, 0, repo.Count())

	// Revoking twice is a no-op
	repo.Revoke(locator)
	repo.Revoke("blob:never-issued")
}

func TestLocatorRepository_Lookup_InvalidLocator(t *testing.T) {
	repo := newTestLocatorRepository()

	_, err := repo.Lookup("music/track.mp3")
	assert.True(t, errors.Is(err, domain.ErrInvalidLocator))
}

func TestLocatorRepository_ConcurrentAccess(t *testing.T) {
	repo := newTestLocatorRepository()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				loc := repo.Register(fakeHandle{name: "x.mp3"})
				_, _ = repo.Lookup(loc)
				repo.Revoke(loc)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, repo.Count())
}
