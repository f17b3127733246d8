package testutil

import (
	"testing"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/rs/zerolog"
)

// NewTestRNG creates a deterministic random source for tests
func NewTestRNG(seed uint64) *core.Random {
	return core.NewRandom(seed)
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// AssertPanic asserts that the given function panics
func AssertPanic(t *testing.T, f func(), msgAndArgs ...interface{}) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic but none occurred: %v", msgAndArgs)
		}
	}()
	f()
}
