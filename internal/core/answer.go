package core

import (
	"fmt"
	"reflect"
)

// AnswerKind enumerates what a routed call does.
type AnswerKind int

// AnswerKind values.
const (
	// AnswerCallOriginal runs the original body.
	AnswerCallOriginal AnswerKind = iota
	// AnswerReturn returns configured values without running the original.
	AnswerReturn
	// AnswerThrow fails the call with a configured failure.
	AnswerThrow
	// AnswerDoNothing returns zero values without running the original.
	AnswerDoNothing
	// AnswerAdjust runs the original and hands its results to a callback.
	AnswerAdjust
)

// String names the kind.
func (k AnswerKind) String() string {
	switch k {
	case AnswerCallOriginal:
		return "CallOriginal"
	case AnswerReturn:
		return "Return"
	case AnswerThrow:
		return "Throw"
	case AnswerDoNothing:
		return "DoNothing"
	case AnswerAdjust:
		return "Adjust"
	default:
		return fmt.Sprintf("AnswerKind(%d)", int(k))
	}
}

// Answer is the resolved behavior of a routed call.
type Answer struct {
	Kind    AnswerKind
	Values  []any
	Failure any
	Adjust  func(results []any)
}

// Return answers with the given values, one per result.
func Return(values ...any) Answer {
	return Answer{Kind: AnswerReturn, Values: values}
}

// Throw answers with a failure. Members whose last result is error receive it as that
// error; any other member panics with it.
func Throw(failure any) Answer {
	return Answer{Kind: AnswerThrow, Failure: failure}
}

// CallOriginal answers by running the original body.
func CallOriginal() Answer {
	return Answer{Kind: AnswerCallOriginal}
}

// DoNothing answers with zero values. Only valid for members that produce no value.
func DoNothing() Answer {
	return Answer{Kind: AnswerDoNothing}
}

// Adjust answers by running the original body and passing its results to fn, which may
// mutate whatever they point to (post-construction state, for instance).
func Adjust(fn func(results []any)) Answer {
	return Answer{Kind: AnswerAdjust, Adjust: fn}
}

// String describes the answer for logs and failure messages.
func (a Answer) String() string {
	switch a.Kind {
	case AnswerReturn:
		return fmt.Sprintf("Return%v", a.Values)
	case AnswerThrow:
		return fmt.Sprintf("Throw(%v)", a.Failure)
	case AnswerCallOriginal, AnswerDoNothing, AnswerAdjust:
		return a.Kind.String()
	default:
		return a.Kind.String()
	}
}

// check reports whether the answer can apply to a member with the given signature.
func (a Answer) check(member MemberID, sig signature) error {
	switch a.Kind {
	case AnswerDoNothing:
		if !sig.valueless() {
			return fmt.Errorf("%w: DoNothing on %s, which returns a value", ErrUnresolvedAnswer, member)
		}
	case AnswerReturn:
		return checkReturnValues(member, sig, a.Values)
	case AnswerThrow:
		if a.Failure == nil {
			return fmt.Errorf("%w: Throw(nil) on %s", ErrUnresolvedAnswer, member)
		}
	case AnswerAdjust:
		if a.Adjust == nil {
			return fmt.Errorf("%w: Adjust(nil) on %s", ErrUnresolvedAnswer, member)
		}
	case AnswerCallOriginal:
	default:
		return fmt.Errorf("%w: unknown answer kind %v", ErrUnresolvedAnswer, a.Kind)
	}

	return nil
}

// execute runs the answer and returns the member's results.
func (a Answer) execute(sig signature, original func() []any) []any {
	switch a.Kind {
	case AnswerReturn:
		out := make([]any, len(a.Values))
		copy(out, a.Values)

		return out
	case AnswerThrow:
		err, isErr := a.Failure.(error)
		if isErr && sig.failsWithError() {
			out := sig.zeros()
			out[len(out)-1] = err

			return out
		}

		panic(a.Failure)
	case AnswerDoNothing:
		return sig.zeros()
	case AnswerAdjust:
		out := original()
		a.Adjust(out)

		return out
	case AnswerCallOriginal:
		return original()
	default:
		return original()
	}
}

func checkReturnValues(member MemberID, sig signature, values []any) error {
	if len(sig.results) == 0 {
		return fmt.Errorf("%w: Return on %s, which has no results", ErrUnresolvedAnswer, member)
	}

	if len(values) != len(sig.results) {
		return fmt.Errorf("%w: %s returns %d values, %d given",
			ErrUnresolvedAnswer, member, len(sig.results), len(values))
	}

	for i, value := range values {
		want := sig.results[i]

		if value == nil {
			if !isNillableKind(want.Kind()) {
				return fmt.Errorf("%w: result %d of %s is %s, which cannot be nil",
					ErrUnresolvedAnswer, i, member, want)
			}

			continue
		}

		if !reflect.TypeOf(value).AssignableTo(want) {
			return fmt.Errorf("%w: result %d of %s is %s, got %T",
				ErrUnresolvedAnswer, i, member, want, value)
		}
	}

	return nil
}

// isNillableKind returns true if the kind passed is nillable.
// According to https://pkg.go.dev/reflect#Value.IsNil, this is the case for
// chan, func, interface, map, pointer, or slice kinds.
func isNillableKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
