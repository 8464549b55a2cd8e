package impspy

import (
	"github.com/toejough/impspy/internal/core"
)

// GetOrCreateScope returns the Scope for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Scope instance.
// The scope restores every hook it bound when the test completes.
func GetOrCreateScope(t TestReporter, opts ...Option) *Scope {
	return core.GetOrCreateScope(t, opts...)
}

// New creates a fresh Scope for the test, restored when the test completes.
func New(t TestReporter, opts ...Option) *Scope {
	return core.NewForTest(t, opts...)
}
