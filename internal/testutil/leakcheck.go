// Package testutil provides goroutine leak checks for TuneBox tests.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks fails t if goroutines outside opts are still running.
// Defer it first thing in tests that start players, scans or servers.
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, opts...)
}

// IgnoreFyneGoroutines returns goleak options for the Fyne driver's long-lived goroutines.
func IgnoreFyneGoroutines() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("fyne.io/fyne/v2/internal/driver/glfw.(*gLDriver).runGL.func1"),
		goleak.IgnoreTopFunction("fyne.io/fyne/v2/internal/driver/glfw.(*window).RunEventQueue"),
		goleak.IgnoreTopFunction("fyne.io/fyne/v2/internal/animation.(*Runner).runAnimations"),
		goleak.IgnoreAnyFunction("fyne.io/fyne/v2"),
	}
}

// LeakCheck snapshots the goroutines running now and returns a check that
// reports only those started afterwards. Fyne goroutines are always ignored.
// Use it in packages where earlier tests leave a Fyne app behind:
//
//	defer testutil.LeakCheck(t)()
func LeakCheck(t *testing.T) func() {
	t.Helper()
	opts := append(IgnoreFyneGoroutines(), goleak.IgnoreCurrent())
	return func() {
		t.Helper()
		goleak.VerifyNone(t, opts...)
	}
}
