package logger

import (
	"bytes"
	"log/slog"
	"os"
	"sync"
)

// EnvTestLevel names the level tests log at, e.g. TUNEBOX_TEST_LOG=debug.
const EnvTestLevel = "TUNEBOX_TEST_LOG"

// NewTestLogger returns a text logger on stderr that only shows warnings,
// unless EnvTestLevel asks for more.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn
	if name := os.Getenv(EnvTestLevel); name != "" {
		level = ParseLevel(name)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Capture collects log output for assertions.
type Capture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// String returns everything logged so far.
func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// NewCaptureLogger returns a debug-level text logger writing into a Capture.
func NewCaptureLogger() (*slog.Logger, *Capture) {
	c := &Capture{}
	return slog.New(slog.NewTextHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})), c
}
