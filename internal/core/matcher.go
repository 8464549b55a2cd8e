package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Matcher defines the interface for flexible value matching.
// Compatible with gomega.GomegaMatcher via duck typing - any type
// implementing Match and FailureMessage will work.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// ArgsMatcher decides whether a routed call's arguments select a stub or count toward a
// verification. A nil ArgsMatcher accepts any arguments.
type ArgsMatcher interface {
	MatchArgs(args []any) error
	String() string
}

// AnyArgs accepts every argument list.
func AnyArgs() ArgsMatcher {
	return anyArgs{}
}

// ArgsEqual accepts argument lists of the same length whose elements match expected
// position by position. Expected values may be Matchers; others compare with reflect.DeepEqual.
func ArgsEqual(expected ...any) ArgsMatcher {
	return argsEqual{expected: expected}
}

// ArgsSatisfy accepts argument lists for which predicate returns nil.
func ArgsSatisfy(description string, predicate func(args []any) error) ArgsMatcher {
	return argsPredicate{description: description, predicate: predicate}
}

// MatchValue checks if actual matches expected.
// If expected implements the Matcher interface, uses its Match method.
// Otherwise, uses reflect.DeepEqual for comparison.
// Returns (success, errorMessage). If success is true, errorMessage is empty.
func MatchValue(actual, expected any) (bool, string) {
	if matcher, ok := expected.(Matcher); ok {
		success, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}

		if !success {
			return false, matcher.FailureMessage(actual)
		}

		return true, ""
	}

	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %#v, got %#v", expected, actual)
}

// unexported variables.
var (
	errArgsMismatch = errors.New("arguments do not match")
)

type anyArgs struct{}

func (anyArgs) MatchArgs([]any) error { return nil }

func (anyArgs) String() string { return "any arguments" }

type argsEqual struct {
	expected []any
}

func (m argsEqual) MatchArgs(args []any) error {
	if len(args) != len(m.expected) {
		return fmt.Errorf("%w: expected %d args, got %d", errArgsMismatch, len(m.expected), len(args))
	}

	for i, expected := range m.expected {
		ok, msg := MatchValue(args[i], expected)
		if !ok {
			return fmt.Errorf("%w: arg %d: %s", errArgsMismatch, i, msg)
		}
	}

	return nil
}

func (m argsEqual) String() string {
	parts := make([]string, len(m.expected))
	for i, expected := range m.expected {
		parts[i] = fmt.Sprintf("%#v", expected)
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

type argsPredicate struct {
	description string
	predicate   func([]any) error
}

func (m argsPredicate) MatchArgs(args []any) error {
	return m.predicate(args)
}

func (m argsPredicate) String() string { return m.description }

// matches treats a nil matcher as any arguments.
func matches(matcher ArgsMatcher, args []any) bool {
	return matcher == nil || matcher.MatchArgs(args) == nil
}

// describe renders a possibly nil matcher.
func describe(matcher ArgsMatcher) string {
	if matcher == nil {
		return anyArgs{}.String()
	}

	return matcher.String()
}
