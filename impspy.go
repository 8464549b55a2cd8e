// Package impspy intercepts calls to package-level functions, methods and constructors of
// Go packages in tests, so they can be stubbed, spied on and verified.
//
// Interception works on packages rewritten by spygen: every eligible function becomes a
// trampoline that routes through the package's Hook, and the original body moves to an
// unexported twin. A test binds hooks to a Scope:
//
//	scope := impspy.New(t)
//	err := scope.Spy(staticexample.Spy.Hook)
//	err = scope.When(staticexample.Spy.PrivateObjectMethod).ThenReturn("stubbed")
//
// This is the public API entry point. Implementation lives in internal/core.
package impspy

import (
	"log/slog"
	"time"

	"github.com/toejough/impspy/internal/core"
)

// ClassID identifies an interceptable package or named type.
type ClassID = core.ClassID

// MemberID identifies one interceptable function or method.
type MemberID = core.MemberID

// Modifier is a bit set describing how a member is declared.
type Modifier = core.Modifier

// Modifier values.
const (
	Static      = core.Static
	Final       = core.Final
	Private     = core.Private
	Constructor = core.Constructor
	Native      = core.Native
)

// Hook is the trampoline table of one class.
type Hook = core.Hook

// NewHook creates the trampoline table for class. Generated code calls it.
func NewHook(class ClassID) *Hook {
	return core.NewHook(class)
}

// Result converts the i-th routed result back to its static type. Generated code calls it.
func Result[T any](out []any, i int) T {
	return core.Result[T](out, i)
}

// Scope owns all interception state of one test.
type Scope = core.Scope

// Option configures a Scope.
type Option = core.Option

// TestReporter is the minimal interface impspy needs from test frameworks.
type TestReporter = core.TestReporter

// RedirectionHandle is the binding of one hook to one scope.
type RedirectionHandle = core.RedirectionHandle

// NewScope creates a scope that is not tied to a test. Close it when done.
func NewScope(opts ...Option) *Scope {
	return core.NewScope(opts...)
}

// WithLogger sets the scope's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return core.WithLogger(logger)
}

// WithReporter attaches a test reporter to the scope.
func WithReporter(reporter TestReporter) Option {
	return core.WithReporter(reporter)
}

// WithClock sets the time source used to stamp invocation records.
func WithClock(now func() time.Time) Option {
	return core.WithClock(now)
}

// Answer is the resolved behavior of a routed call.
type Answer = core.Answer

// AnswerKind enumerates what a routed call does.
type AnswerKind = core.AnswerKind

// AnswerKind values.
const (
	AnswerCallOriginal = core.AnswerCallOriginal
	AnswerReturn       = core.AnswerReturn
	AnswerThrow        = core.AnswerThrow
	AnswerDoNothing    = core.AnswerDoNothing
	AnswerAdjust       = core.AnswerAdjust
)

// Return answers with the given values.
func Return(values ...any) Answer {
	return core.Return(values...)
}

// Throw answers with a failure.
func Throw(failure any) Answer {
	return core.Throw(failure)
}

// CallOriginal answers by running the original body.
func CallOriginal() Answer {
	return core.CallOriginal()
}

// DoNothing answers with zero values.
func DoNothing() Answer {
	return core.DoNothing()
}

// Adjust answers by running the original body and handing its results to fn.
func Adjust(fn func(results []any)) Answer {
	return core.Adjust(fn)
}

// OngoingStubbing is the member-first stubbing form.
type OngoingStubbing = core.OngoingStubbing

// Stubber is the answer-first stubbing form.
type Stubber = core.Stubber

// StubEntry is one configured answer in a member's stub chain.
type StubEntry = core.StubEntry

// InvocationRecord is an immutable snapshot of one routed call.
type InvocationRecord = core.InvocationRecord

// Cardinality is an expected number of invocations.
type Cardinality = core.Cardinality

// Times expects exactly n invocations.
func Times(n int) Cardinality {
	return core.Times(n)
}

// AtLeast expects n or more invocations.
func AtLeast(n int) Cardinality {
	return core.AtLeast(n)
}

// AtLeastOnce expects one or more invocations.
func AtLeastOnce() Cardinality {
	return core.AtLeastOnce()
}

// AtMost expects at most n invocations.
func AtMost(n int) Cardinality {
	return core.AtMost(n)
}

// Never expects no invocations.
func Never() Cardinality {
	return core.Never()
}

// VerificationError reports an unmet cardinality.
type VerificationError = core.VerificationError

// PendingCapture waits for the next routed call of a class, for VerifyNext and WhenNext.
type PendingCapture = core.PendingCapture

// PrivateVerifier verifies a member by source name.
type PrivateVerifier = core.PrivateVerifier

// Matcher defines the interface for flexible value matching.
type Matcher = core.Matcher

// ArgsMatcher decides whether a call's arguments select a stub or count toward a verification.
type ArgsMatcher = core.ArgsMatcher

// AnyArgs accepts every argument list.
func AnyArgs() ArgsMatcher {
	return core.AnyArgs()
}

// ArgsEqual accepts argument lists matching expected position by position.
func ArgsEqual(expected ...any) ArgsMatcher {
	return core.ArgsEqual(expected...)
}

// ArgsSatisfy accepts argument lists for which predicate returns nil.
func ArgsSatisfy(description string, predicate func(args []any) error) ArgsMatcher {
	return core.ArgsSatisfy(description, predicate)
}

// MatchValue checks if actual matches expected.
func MatchValue(actual, expected any) (bool, string) {
	return core.MatchValue(actual, expected)
}

// Errors returned by the engine.
var (
	ErrUnmockableMember    = core.ErrUnmockableMember
	ErrUnresolvedAnswer    = core.ErrUnresolvedAnswer
	ErrUnfinishedStubbing  = core.ErrUnfinishedStubbing
	ErrVerificationFailure = core.ErrVerificationFailure
	ErrNotPrepared         = core.ErrNotPrepared
	ErrClassInUse          = core.ErrClassInUse
	ErrUnknownMember       = core.ErrUnknownMember
	ErrScopeClosed         = core.ErrScopeClosed
	ErrRestoreConflict     = core.ErrRestoreConflict
)
