package core

import (
	"fmt"
	"reflect"
	"strings"
)

// ClassID identifies an interceptable unit: a package (Name empty), whose package-level
// functions are its static members, or a named type within a package.
type ClassID struct {
	Pkg  string
	Name string
}

// String returns the qualified class name.
func (c ClassID) String() string {
	if c.Name == "" {
		return c.Pkg
	}

	return c.Pkg + "." + c.Name
}

// MemberID identifies one interceptable function or method. It is comparable and is
// captured once, when the generated hook table declares the member.
type MemberID struct {
	Class   ClassID
	Name    string
	Params  string
	Results string
	Mods    Modifier
}

// String returns a readable member signature, e.g. "pkg.T.name(int) (string, error)".
func (m MemberID) String() string {
	sig := m.Class.String() + "." + m.Name + m.Params
	if m.Results != "" {
		sig += " " + m.Results
	}

	return sig
}

// Modifier is a bit set describing how a member is declared.
type Modifier uint8

// Modifier values.
const (
	// Static marks a package-level function.
	Static Modifier = 1 << iota
	// Final marks a method. Go methods cannot be overridden by embedding.
	Final
	// Private marks an unexported member.
	Private
	// Constructor marks a New<T> function returning T or *T.
	Constructor
	// Native marks a function declared without a body. It cannot be redirected.
	Native
)

// Has reports whether all bits of flag are set.
func (m Modifier) Has(flag Modifier) bool {
	return m&flag == flag
}

// String lists the set modifiers, e.g. "static|private".
func (m Modifier) String() string {
	names := make([]string, 0, len(modifierNames))

	for _, entry := range modifierNames {
		if m.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}

	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, "|")
}

// unexported variables.
var (
	//nolint:gochecknoglobals // fixed lookup table
	errorType = reflect.TypeFor[error]()
	//nolint:gochecknoglobals // fixed lookup table
	modifierNames = []struct {
		flag Modifier
		name string
	}{
		{Static, "static"},
		{Final, "final"},
		{Private, "private"},
		{Constructor, "constructor"},
		{Native, "native"},
	}
)

// signature is the reflected shape of a member, kept by its hook.
type signature struct {
	params   []reflect.Type
	results  []reflect.Type
	variadic bool
}

// failsWithError reports whether the last result is the error interface.
func (s signature) failsWithError() bool {
	return len(s.results) > 0 && s.results[len(s.results)-1] == errorType
}

// valueless reports whether the member produces no value: no results, or only an error.
func (s signature) valueless() bool {
	return len(s.results) == 0 || (len(s.results) == 1 && s.failsWithError())
}

// zeros returns the zero value of every result.
func (s signature) zeros() []any {
	out := make([]any, len(s.results))

	for i, typ := range s.results {
		out[i] = reflect.Zero(typ).Interface()
	}

	return out
}

// signatureOf reflects a function value (typically a typed nil) into a signature.
func signatureOf(fn any) (signature, error) {
	typ := reflect.TypeOf(fn)
	if typ == nil || typ.Kind() != reflect.Func {
		return signature{}, fmt.Errorf("%w: expected a function type, got %T", errBadDeclaration, fn)
	}

	sig := signature{
		params:   make([]reflect.Type, typ.NumIn()),
		results:  make([]reflect.Type, typ.NumOut()),
		variadic: typ.IsVariadic(),
	}

	for i := range typ.NumIn() {
		sig.params[i] = typ.In(i)
	}

	for i := range typ.NumOut() {
		sig.results[i] = typ.Out(i)
	}

	return sig, nil
}

// paramString renders the parameter list, e.g. "(int, ...string)".
func (s signature) paramString() string {
	parts := make([]string, len(s.params))

	for i, typ := range s.params {
		if s.variadic && i == len(s.params)-1 {
			parts[i] = "..." + typ.Elem().String()

			continue
		}

		parts[i] = typ.String()
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

// resultString renders the result list: "", "T", or "(T, U)".
func (s signature) resultString() string {
	switch len(s.results) {
	case 0:
		return ""
	case 1:
		return s.results[0].String()
	default:
		parts := make([]string, len(s.results))
		for i, typ := range s.results {
			parts[i] = typ.String()
		}

		return "(" + strings.Join(parts, ", ") + ")"
	}
}
