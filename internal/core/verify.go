package core

import (
	"fmt"
	"strings"
	"sync"
)

// Cardinality is an expected number of invocations.
type Cardinality interface {
	Check(actual int) bool
	String() string
}

// Times expects exactly n invocations.
func Times(n int) Cardinality {
	return cardinality{min: n, max: n}
}

// AtLeast expects n or more invocations.
func AtLeast(n int) Cardinality {
	return cardinality{min: n, max: -1}
}

// AtLeastOnce expects one or more invocations.
func AtLeastOnce() Cardinality {
	return AtLeast(1)
}

// AtMost expects at most n invocations.
func AtMost(n int) Cardinality {
	return cardinality{min: 0, max: n}
}

// Never expects no invocations.
func Never() Cardinality {
	return Times(0)
}

// VerificationError reports an unmet cardinality with the calls that were recorded.
type VerificationError struct {
	Member   MemberID
	Matcher  ArgsMatcher
	Expected Cardinality
	Actual   int
	Calls    []InvocationRecord
}

// Error describes expected versus actual.
func (e *VerificationError) Error() string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "%v: %s with %s: expected %s, got %d",
		ErrVerificationFailure, e.Member, describe(e.Matcher), e.Expected, e.Actual)

	for _, call := range e.Calls {
		fmt.Fprintf(&builder, "\n\t#%d %s%v", call.Seq, call.Member.Name, call.Args)
	}

	return builder.String()
}

// Unwrap lets errors.Is match ErrVerificationFailure.
func (e *VerificationError) Unwrap() error {
	return ErrVerificationFailure
}

// PendingCapture waits for the next routed call of a class to name a member and its
// arguments, then completes a verification or a stub with them.
type PendingCapture struct {
	class ClassID
	// purpose names what the capture completes, for messages.
	purpose  string
	failure  error
	complete func(member MemberID, args []any) error

	mu   sync.Mutex
	done bool
	err  error
}

// Done reports whether a call has been captured.
func (p *PendingCapture) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.done
}

// Err returns the outcome of the captured call, or an error if no call was captured.
func (p *PendingCapture) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.done {
		return fmt.Errorf("%w: no call of %s followed the %s", p.failure, p.class, p.purpose)
	}

	return p.err
}

func (p *PendingCapture) finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = true
	p.err = err
}

// PrivateVerifier verifies a member by source name, resolved through its hook.
type PrivateVerifier struct {
	scope    *Scope
	hook     *Hook
	expected Cardinality
}

// Invoke names the member and, optionally, the expected arguments.
func (v PrivateVerifier) Invoke(name string, args ...any) error {
	member, err := v.hook.Lookup(name)
	if err != nil {
		return err
	}

	var matcher ArgsMatcher
	if len(args) > 0 {
		matcher = ArgsEqual(args...)
	}

	return v.scope.VerifyMatching(member, matcher, v.expected)
}

type cardinality struct {
	min, max int
}

func (c cardinality) Check(actual int) bool {
	return actual >= c.min && (c.max < 0 || actual <= c.max)
}

func (c cardinality) String() string {
	switch {
	case c.max < 0:
		return fmt.Sprintf("at least %d", c.min)
	case c.min == c.max:
		return fmt.Sprintf("exactly %d", c.min)
	case c.min == 0:
		return fmt.Sprintf("at most %d", c.max)
	default:
		return fmt.Sprintf("between %d and %d", c.min, c.max)
	}
}
