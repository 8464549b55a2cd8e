package core

import (
	"sync"
)

// GetOrCreateScope returns the Scope for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Scope instance, so helpers
// deep in a test can reach the scope without it being passed down.
//
// If the TestReporter supports Cleanup (like *testing.T), the Scope is closed and
// removed from the registry when the test completes, on every exit path.
func GetOrCreateScope(t TestReporter, opts ...Option) *Scope {
	registryMu.Lock()
	defer registryMu.Unlock()

	if scope, ok := registry[t]; ok {
		return scope
	}

	scope := NewScope(append([]Option{WithReporter(t)}, opts...)...)
	registry[t] = scope

	if cr, ok := t.(cleanupRegistrar); ok {
		cr.Cleanup(func() {
			registryMu.Lock()
			delete(registry, t)
			registryMu.Unlock()

			closeAndReport(t, scope)
		})
	}

	return scope
}

// NewForTest creates a Scope bound to t that is closed when t completes. Unlike
// GetOrCreateScope, every call returns a fresh scope.
func NewForTest(t TestReporter, opts ...Option) *Scope {
	scope := NewScope(append([]Option{WithReporter(t)}, opts...)...)

	if cr, ok := t.(cleanupRegistrar); ok {
		cr.Cleanup(func() {
			closeAndReport(t, scope)
		})
	}

	return scope
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Package-level registry is intentional for test coordination
	registry = make(map[TestReporter]*Scope)
	//nolint:gochecknoglobals // Mutex for registry
	registryMu sync.Mutex
)

// cleanupRegistrar is the interface needed for registering cleanup functions.
// This is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}

// logger is the optional part of testing.TB used to surface teardown problems.
type logger interface {
	Logf(format string, args ...any)
}

// closeAndReport closes the scope. A restoration failure is logged on the test, never
// failed, so it cannot mask the test's own outcome.
func closeAndReport(t TestReporter, scope *Scope) {
	err := scope.Close()
	if err == nil {
		return
	}

	if l, ok := t.(logger); ok {
		l.Logf("impspy: restoring classes after test: %v", err)
	}
}
