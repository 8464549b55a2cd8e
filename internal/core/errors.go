package core

import "errors"

// Exported errors. Engine misuse is always returned from the call that caused it.
var (
	// ErrUnmockableMember is returned when a member has no trampoline and cannot be redirected.
	ErrUnmockableMember = errors.New("member cannot be intercepted")

	// ErrUnresolvedAnswer is returned when an answer cannot apply to the member it is
	// registered for, e.g. DoNothing on a value-returning member.
	ErrUnresolvedAnswer = errors.New("answer does not fit member")

	// ErrUnfinishedStubbing is reported when a next-call stubbing never saw the call that
	// names its member.
	ErrUnfinishedStubbing = errors.New("stubbing never named a member")

	// ErrVerificationFailure is wrapped by every *VerificationError.
	ErrVerificationFailure = errors.New("verification failed")

	// ErrNotPrepared is returned when a class is used before its hook was prepared in the scope.
	ErrNotPrepared = errors.New("class not prepared")

	// ErrClassInUse is returned when a hook is already bound to another live scope.
	ErrClassInUse = errors.New("class already redirected by another scope")

	// ErrUnknownMember is returned when a member does not belong to the hook it is used with.
	ErrUnknownMember = errors.New("unknown member")

	// ErrScopeClosed is returned by every scope operation after Close.
	ErrScopeClosed = errors.New("scope closed")

	// ErrRestoreConflict is returned when a hook was rebound before its handle was restored.
	ErrRestoreConflict = errors.New("hook no longer bound to this scope")
)

// unexported variables.
var (
	errBadDeclaration = errors.New("bad member declaration")
)
