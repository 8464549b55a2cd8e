package core

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TestReporter is the minimal interface impspy needs from test frameworks.
// testing.T and testing.B implement it.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// errorReporter is the optional part of testing.TB that fails a test without stopping it.
type errorReporter interface {
	Errorf(format string, args ...any)
}

// Option configures a Scope.
type Option func(*Scope)

// WithLogger sets the logger. The scope adds its id as the "scope" attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scope) {
		s.logger = logger
	}
}

// WithReporter attaches a test reporter. Failures that have no return path, such as a
// re-invocation verification, are reported through it.
func WithReporter(reporter TestReporter) Option {
	return func(s *Scope) {
		s.reporter = reporter
	}
}

// WithClock sets the time source used to stamp invocation records.
func WithClock(now func() time.Time) Option {
	return func(s *Scope) {
		s.now = now
	}
}

// Scope owns all interception state of one test: prepared hooks, class activation, stub
// chains and the call log. Scopes are independent; a hook can be bound to one live scope
// at a time. A scope is meant to be driven from one test goroutine.
type Scope struct {
	id       uuid.UUID
	logger   *slog.Logger
	reporter TestReporter
	now      func() time.Time

	mu       sync.Mutex
	closed   bool
	handles  map[ClassID]*RedirectionHandle
	mocks    *mockRegistry
	stubs    *stubResolver
	calls    *invocationRecorder
	captures map[ClassID]*PendingCapture
	verified map[uint64]bool
}

// NewScope creates an empty scope.
func NewScope(opts ...Option) *Scope {
	scope := &Scope{
		id:       uuid.New(),
		now:      time.Now,
		handles:  make(map[ClassID]*RedirectionHandle),
		mocks:    newMockRegistry(),
		stubs:    newStubResolver(),
		captures: make(map[ClassID]*PendingCapture),
		verified: make(map[uint64]bool),
	}

	for _, opt := range opts {
		opt(scope)
	}

	if scope.logger == nil {
		scope.logger = slog.Default()
	}

	scope.logger = scope.logger.With("scope", scope.id.String())
	scope.calls = newInvocationRecorder(scope.id, scope.now)

	return scope
}

// ID returns the scope identity stamped on every invocation record.
func (s *Scope) ID() uuid.UUID {
	return s.id
}

// RedirectionHandle is the binding of one hook to one scope.
type RedirectionHandle struct {
	scope    *Scope
	hook     *Hook
	restored bool
}

// Class returns the redirected class.
func (h *RedirectionHandle) Class() ClassID {
	return h.hook.class
}

// Restore unbinds the hook so its trampolines run the original bodies unrecorded again,
// and drops the class activation and stubs. A capture still waiting for a call fails. Restoring twice is a no-op.
func (h *RedirectionHandle) Restore() error {
	h.scope.mu.Lock()

	if h.restored {
		h.scope.mu.Unlock()

		return nil
	}

	abandoned := h.scope.forgetLocked(h, "restored")
	h.scope.mu.Unlock()

	err := h.scope.unbind(h)

	h.scope.reportAbandoned(abandoned)

	return err
}

// Prepare binds hook to the scope. Preparing the same hook again returns the same handle.
func (s *Scope) Prepare(hook *Hook) (*RedirectionHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrScopeClosed
	}

	class := hook.class

	if handle, ok := s.handles[class]; ok {
		if handle.hook != hook {
			return nil, fmt.Errorf("%w: %s is prepared from a different table", ErrClassInUse, class)
		}

		return handle, nil
	}

	if native := hook.native(); len(native) > 0 {
		return nil, fmt.Errorf("%w: %s declares %d native member(s), first %s",
			ErrUnmockableMember, class, len(native), native[0])
	}

	if !hook.bound.CompareAndSwap(nil, s) {
		holder := hook.bound.Load()
		if holder != nil {
			return nil, fmt.Errorf("%w: %s is bound to scope %s", ErrClassInUse, class, holder.id)
		}

		return nil, fmt.Errorf("%w: %s", ErrClassInUse, class)
	}

	handle := &RedirectionHandle{scope: s, hook: hook}
	s.handles[class] = handle

	s.logger.Debug("prepared class", "class", class.String(), "members", len(hook.members))

	return handle, nil
}

// Activate enables recording and stub resolution for a prepared class. Activating an
// active class keeps its default answer and stubs.
func (s *Scope) Activate(class ClassID, defaultAnswer Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrScopeClosed
	}

	if _, ok := s.handles[class]; !ok {
		return fmt.Errorf("%w: %s", ErrNotPrepared, class)
	}

	if _, created := s.mocks.activate(class, defaultAnswer); created {
		s.logger.Debug("activated class", "class", class.String(), "default", defaultAnswer.String())
	}

	return nil
}

// IsActive reports whether calls to class are routed.
func (s *Scope) IsActive(class ClassID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mocks.isActive(class)
}

// Deactivate stops routing class and drops its stubs. The hook stays bound. A capture
// still waiting for a call fails.
func (s *Scope) Deactivate(class ClassID) {
	s.mu.Lock()

	s.mocks.deactivate(class)
	s.stubs.dropClass(class)
	abandoned := s.abandonLocked(class, "deactivated")
	s.mu.Unlock()

	s.reportAbandoned(abandoned)
}

// Spy prepares hook and activates its class so unstubbed calls run the original bodies.
func (s *Scope) Spy(hook *Hook) error {
	return s.prepareAndActivate(hook, CallOriginal())
}

// Mock prepares hook and activates its class so unstubbed calls return zero values.
func (s *Scope) Mock(hook *Hook) error {
	return s.prepareAndActivate(hook, DoNothing())
}

// RegisterStub appends an answer to the member's stub chain. A nil matcher accepts any
// arguments. The answer is checked against the member signature here, not at call time.
func (s *Scope) RegisterStub(member MemberID, matcher ArgsMatcher, answer Answer) (StubEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, err := s.signatureLocked(member)
	if err != nil {
		return StubEntry{}, err
	}

	err = answer.check(member, sig)
	if err != nil {
		return StubEntry{}, err
	}

	entry := s.stubs.register(member, matcher, answer)

	s.logger.Debug("registered stub",
		"member", member.String(), "args", describe(matcher), "answer", answer.String(), "ordinal", entry.Ordinal)

	return entry, nil
}

// SetVoidDefault installs answer for every unstubbed member of an active class that
// produces no value.
func (s *Scope) SetVoidDefault(class ClassID, answer Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrScopeClosed
	}

	state, ok := s.mocks.state(class)
	if !ok {
		return fmt.Errorf("%w: %s is not active", ErrNotPrepared, class)
	}

	if answer.Kind == AnswerReturn {
		return fmt.Errorf("%w: %s cannot be a class-wide default for members without values",
			ErrUnresolvedAnswer, answer)
	}

	state.VoidDefault = &answer

	s.logger.Debug("set class-wide default", "class", class.String(), "answer", answer.String())

	return nil
}

// Resolve returns the answer a call of member with args would execute now.
func (s *Scope) Resolve(member MemberID, args []any) Answer {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.handles[member.Class]
	if !ok {
		return CallOriginal()
	}

	sig, ok := handle.hook.signatureOf(member)
	if !ok {
		return CallOriginal()
	}

	return s.resolveLocked(member, sig, args)
}

// StubChain returns the member's stubs in registration order.
func (s *Scope) StubChain(member MemberID) []StubEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stubs.entries(member)
}

// Record appends a call to the log directly. Trampolines record through Route; Record is
// for hand-written indirection layers that dispatch on their own.
func (s *Scope) Record(member MemberID, recv any, args []any) InvocationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls.record(member, recv, args)
}

// QueryCount returns how many calls of member were recorded.
func (s *Scope) QueryCount(member MemberID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls.queryCount(member)
}

// QueryMatching returns how many recorded calls of member matcher accepts.
func (s *Scope) QueryMatching(member MemberID, matcher ArgsMatcher) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls.queryMatching(member, matcher)
}

// Records returns the recorded calls of member in order.
func (s *Scope) Records(member MemberID) []InvocationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls.records(member)
}

// Close restores every handle and drops all state. Restoration failures are logged and
// returned joined. Captures that never saw a call fail through the reporter once every
// hook is restored. Closing twice is a no-op.
func (s *Scope) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true

	handles := make([]*RedirectionHandle, 0, len(s.handles))
	for _, handle := range s.handles {
		handles = append(handles, handle)
	}

	var abandoned []*PendingCapture

	for _, handle := range handles {
		abandoned = append(abandoned, s.forgetLocked(handle, "scope closed")...)
	}

	s.mu.Unlock()

	var errs []error

	for _, handle := range handles {
		err := s.unbind(handle)
		if err != nil {
			s.logger.Warn("restoring class failed", "class", handle.Class().String(), "error", err)
			errs = append(errs, err)
		}
	}

	s.logger.Debug("closed scope", "restored", len(handles), "failed", len(errs))
	s.reportAbandoned(abandoned)

	return errors.Join(errs...)
}

func (s *Scope) prepareAndActivate(hook *Hook, defaultAnswer Answer) error {
	_, err := s.Prepare(hook)
	if err != nil {
		return err
	}

	return s.Activate(hook.class, defaultAnswer)
}

// forgetLocked drops everything the scope knows about the handle's class and returns the
// pending capture it failed, if any.
func (s *Scope) forgetLocked(handle *RedirectionHandle, reason string) []*PendingCapture {
	class := handle.hook.class

	handle.restored = true

	delete(s.handles, class)
	s.mocks.deactivate(class)
	s.stubs.dropClass(class)

	return s.abandonLocked(class, reason)
}

// abandonLocked fails the class's pending capture, if any.
func (s *Scope) abandonLocked(class ClassID, reason string) []*PendingCapture {
	pending, ok := s.captures[class]
	if !ok {
		return nil
	}

	delete(s.captures, class)
	pending.finish(fmt.Errorf("%w: %s: %s before a call was captured", pending.failure, class, reason))

	return []*PendingCapture{pending}
}

// reportAbandoned surfaces captures that never saw a call. They are logged, and
// fail the test when a reporter is attached: through Errorf when it has one, so teardown
// continues, else through Fatalf.
func (s *Scope) reportAbandoned(abandoned []*PendingCapture) {
	for _, pending := range abandoned {
		err := pending.Err()

		s.logger.Warn("capture never saw a call", "class", pending.class.String(), "error", err)

		if s.reporter == nil {
			continue
		}

		s.reporter.Helper()

		if r, ok := s.reporter.(errorReporter); ok {
			r.Errorf("%v", err)

			continue
		}

		s.reporter.Fatalf("%v", err)
	}
}

// unbind releases the hook. It runs outside the scope lock.
func (s *Scope) unbind(handle *RedirectionHandle) error {
	if !handle.hook.bound.CompareAndSwap(s, nil) {
		return fmt.Errorf("%w: %s", ErrRestoreConflict, handle.hook.class)
	}

	s.logger.Debug("restored class", "class", handle.hook.class.String())

	return nil
}

// signatureLocked validates that member can be stubbed in this scope.
func (s *Scope) signatureLocked(member MemberID) (signature, error) {
	if s.closed {
		return signature{}, ErrScopeClosed
	}

	handle, ok := s.handles[member.Class]
	if !ok {
		return signature{}, fmt.Errorf("%w: %s", ErrNotPrepared, member.Class)
	}

	sig, ok := handle.hook.signatureOf(member)
	if !ok {
		return signature{}, fmt.Errorf("%w: %s", ErrUnknownMember, member)
	}

	if member.Mods.Has(Native) {
		return signature{}, fmt.Errorf("%w: %s", ErrUnmockableMember, member)
	}

	return sig, nil
}

func (s *Scope) resolveLocked(member MemberID, sig signature, args []any) Answer {
	if entry, ok := s.stubs.lookup(member, args); ok {
		return entry.Answer
	}

	state, ok := s.mocks.state(member.Class)
	if !ok {
		return CallOriginal()
	}

	if state.VoidDefault != nil && sig.valueless() {
		return *state.VoidDefault
	}

	return state.Default
}
