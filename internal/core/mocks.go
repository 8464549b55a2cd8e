package core

// MockState is the per-class activation record of a scope.
type MockState struct {
	Class   ClassID
	Enabled bool
	Default Answer
	// VoidDefault, when set, answers every unstubbed member that produces no value.
	VoidDefault *Answer
}

// mockRegistry maps classes to their activation state. It is owned by one Scope and
// guarded by the scope's mutex.
type mockRegistry struct {
	states map[ClassID]*MockState
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{states: make(map[ClassID]*MockState)}
}

// activate enables routing for class. Activating an active class keeps its state.
func (r *mockRegistry) activate(class ClassID, defaultAnswer Answer) (*MockState, bool) {
	if state, ok := r.states[class]; ok {
		return state, false
	}

	state := &MockState{Class: class, Enabled: true, Default: defaultAnswer}
	r.states[class] = state

	return state, true
}

func (r *mockRegistry) isActive(class ClassID) bool {
	state, ok := r.states[class]

	return ok && state.Enabled
}

func (r *mockRegistry) state(class ClassID) (*MockState, bool) {
	state, ok := r.states[class]

	return state, ok
}

// deactivate drops the class state. Stubs are dropped by the resolver.
func (r *mockRegistry) deactivate(class ClassID) {
	delete(r.states, class)
}
