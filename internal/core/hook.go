package core

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"unicode"
	"unicode/utf8"
)

// Hook is the trampoline table of one class. Generated code creates one per class at
// package init and declares every member on it; trampolines call Route. A hook is bound
// to at most one Scope at a time and routes nothing while unbound.
type Hook struct {
	class   ClassID
	members []MemberID
	sigs    map[MemberID]signature
	byName  map[string]MemberID
	bound   atomic.Pointer[Scope]
}

// NewHook creates the trampoline table for class.
func NewHook(class ClassID) *Hook {
	return &Hook{
		class:  class,
		sigs:   make(map[MemberID]signature),
		byName: make(map[string]MemberID),
	}
}

// Declare adds a member to the table and returns its identity. fn is the member's
// function value or a typed nil of its type, e.g. (func(int) (string, error))(nil).
// Generated tables pass the renamed original from an init function, which keeps the
// table out of package initialization cycles. Declare panics on a malformed
// declaration, which can only come from a broken generator.
func (h *Hook) Declare(name string, mods Modifier, fn any) MemberID {
	sig, err := signatureOf(fn)
	if err != nil {
		panic(fmt.Sprintf("impspy: declaring %s.%s: %v", h.class, name, err))
	}

	return h.declare(name, mods, sig)
}

// DeclareMethod adds a method given as a method expression, e.g. (*T).spyOrigGet. The
// receiver parameter is dropped from the signature and the member is marked Final.
func (h *Hook) DeclareMethod(name string, mods Modifier, methodExpr any) MemberID {
	sig, err := signatureOf(methodExpr)
	if err == nil && len(sig.params) == 0 {
		err = fmt.Errorf("%w: method expression without a receiver", errBadDeclaration)
	}

	if err != nil {
		panic(fmt.Sprintf("impspy: declaring %s.%s: %v", h.class, name, err))
	}

	sig.params = sig.params[1:]

	return h.declare(name, mods|Final, sig)
}

// Class returns the class the table belongs to.
func (h *Hook) Class() ClassID {
	return h.class
}

// Members returns the declared members in declaration order.
func (h *Hook) Members() []MemberID {
	out := make([]MemberID, len(h.members))
	copy(out, h.members)

	return out
}

// Lookup resolves a member by its source name. Use it once, at test setup.
func (h *Hook) Lookup(name string) (MemberID, error) {
	member, ok := h.byName[name]
	if !ok {
		return MemberID{}, fmt.Errorf("%w: %s has no member %q", ErrUnknownMember, h.class, name)
	}

	return member, nil
}

// Route is the dispatch entry point every trampoline calls. recv is the method receiver
// or nil, args the live arguments, and original runs the original body. The returned
// slice has one value per result; convert them back with Result.
func (h *Hook) Route(member MemberID, recv any, args []any, original func() []any) []any {
	scope := h.bound.Load()
	if scope == nil {
		return original()
	}

	return scope.route(h, member, recv, args, original)
}

// Result converts the i-th routed result back to its static type. A nil or missing value
// yields the zero T.
func Result[T any](out []any, i int) T {
	var zero T

	if i >= len(out) || out[i] == nil {
		return zero
	}

	if value, ok := out[i].(T); ok {
		return value
	}

	// assignable but not identical, e.g. []int returned for a named slice type
	target := reflect.TypeFor[T]()

	value := reflect.ValueOf(out[i])
	if !value.Type().AssignableTo(target) {
		panic(fmt.Sprintf("impspy: result %d is %T, not %s", i, out[i], target))
	}

	converted := reflect.New(target).Elem()
	converted.Set(value)

	return converted.Interface().(T) //nolint:forcetypeassert // built from T above
}

func (h *Hook) declare(name string, mods Modifier, sig signature) MemberID {
	if _, dup := h.byName[name]; dup {
		panic(fmt.Sprintf("impspy: %s.%s declared twice", h.class, name))
	}

	if !isExported(name) {
		mods |= Private
	}

	member := MemberID{
		Class:   h.class,
		Name:    name,
		Params:  sig.paramString(),
		Results: sig.resultString(),
		Mods:    mods,
	}

	h.members = append(h.members, member)
	h.sigs[member] = sig
	h.byName[name] = member

	return member
}

// native lists the members that have no trampoline.
func (h *Hook) native() []MemberID {
	var out []MemberID

	for _, member := range h.members {
		if member.Mods.Has(Native) {
			out = append(out, member)
		}
	}

	return out
}

// signatureOf returns the reflected signature of a member of this table.
func (h *Hook) signatureOf(member MemberID) (signature, bool) {
	sig, ok := h.sigs[member]

	return sig, ok
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)

	return unicode.IsUpper(r)
}
