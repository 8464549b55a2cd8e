package core

import (
	"fmt"
	"strings"
)

// route dispatches one trampoline call of a hook bound to this scope.
//
// Order: a pending re-invocation capture consumes the call; an inactive class runs the
// original unrecorded; otherwise the call is recorded before its answer executes, so a
// throwing answer still counts. The answer runs without the lock held because original
// bodies re-enter the router.
func (s *Scope) route(hook *Hook, member MemberID, recv any, args []any, original func() []any) []any {
	sig, ok := hook.signatureOf(member)
	if !ok {
		panic(fmt.Sprintf("impspy: %s routed through the table of %s", member, hook.class))
	}

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return original()
	}

	if pending, ok := s.captures[member.Class]; ok {
		delete(s.captures, member.Class)
		s.mu.Unlock()

		s.completeCapture(pending, member, args)

		return sig.zeros()
	}

	if !s.mocks.isActive(member.Class) {
		s.mu.Unlock()

		return original()
	}

	rec := s.calls.record(member, recv, args)
	answer := s.resolveLocked(member, sig, args)
	s.mu.Unlock()

	s.logger.Debug("routed call", "member", member.String(), "seq", rec.Seq, "answer", answer.Kind.String())

	return answer.execute(sig, original)
}

// VerifyNext arranges for the next routed call of the hook's class to be captured
// instead of executed: its member and arguments become a verification with expected.
// The captured call is neither recorded nor run and returns zero values.
func (s *Scope) VerifyNext(hook *Hook, expected Cardinality) (*PendingCapture, error) {
	return s.captureNext(&PendingCapture{
		class:   hook.class,
		purpose: "verification",
		failure: ErrVerificationFailure,
		complete: func(member MemberID, args []any) error {
			return s.VerifyMatching(member, ArgsEqual(args...), expected)
		},
	})
}

// captureNext installs pending for its class. A capture still waiting there is replaced
// and fails.
func (s *Scope) captureNext(pending *PendingCapture) (*PendingCapture, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil, ErrScopeClosed
	}

	class := pending.class

	if _, ok := s.handles[class]; !ok {
		s.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrNotPrepared, class)
	}

	replaced := s.abandonLocked(class, "replaced by another capture")
	s.captures[class] = pending
	s.mu.Unlock()

	s.reportAbandoned(replaced)

	return pending, nil
}

// VerifyPrivate verifies a member named by its source name, typically an unexported one.
func (s *Scope) VerifyPrivate(hook *Hook, expected Cardinality) PrivateVerifier {
	return PrivateVerifier{scope: s, hook: hook, expected: expected}
}

// Verify checks the number of recorded calls of member against expected.
func (s *Scope) Verify(member MemberID, expected Cardinality) error {
	return s.VerifyMatching(member, nil, expected)
}

// VerifyMatching checks the number of recorded calls of member accepted by matcher.
func (s *Scope) VerifyMatching(member MemberID, matcher ArgsMatcher, expected Cardinality) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrScopeClosed
	}

	actual := 0

	for _, rec := range s.calls.records(member) {
		if matches(matcher, rec.Args) {
			actual++
			s.verified[rec.Seq] = true
		}
	}

	if expected.Check(actual) {
		return nil
	}

	return &VerificationError{
		Member:   member,
		Matcher:  matcher,
		Expected: expected,
		Actual:   actual,
		Calls:    s.calls.records(member),
	}
}

// VerifyNoMoreInteractions fails if any recorded call of the hook's class was not
// matched by an earlier verification.
func (s *Scope) VerifyNoMoreInteractions(hook *Hook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrScopeClosed
	}

	var unverified []string

	for _, rec := range s.calls.classRecords(hook.class) {
		if !s.verified[rec.Seq] {
			unverified = append(unverified, fmt.Sprintf("#%d %s%v", rec.Seq, rec.Member.Name, rec.Args))
		}
	}

	if len(unverified) == 0 {
		return nil
	}

	return fmt.Errorf("%w: unverified calls of %s:\n\t%s",
		ErrVerificationFailure, hook.class, strings.Join(unverified, "\n\t"))
}

func (s *Scope) completeCapture(pending *PendingCapture, member MemberID, args []any) {
	err := pending.complete(member, args)
	pending.finish(err)

	if err != nil && s.reporter != nil {
		s.reporter.Helper()
		s.reporter.Fatalf("%v", err)
	}
}
