// Package staticexample is an acceptance package in its redirected form: spygen rewrote
// every function and method into a trampoline that routes through the tables in
// spy_staticexample.go, and moved each original body to a renamed twin.
package staticexample

import (
	"sync/atomic"

	"github.com/toejough/impspy"
)

// Object is what the object methods return when nothing is stubbed.
type Object struct{}

// Example carries the methods. Go methods cannot be overridden, so they are the final members.
type Example struct{}

// ObjectMethod returns a fresh Object built by a private helper.
func ObjectMethod() any {
	out := Spy.Route(Spy.ObjectMethod, nil, []any{}, func() []any {
		r0 := spyOrigObjectMethod()

		return []any{r0}
	})

	return impspy.Result[any](out, 0)
}

// spyOrigObjectMethod is the original ObjectMethod, called by its trampoline.
func spyOrigObjectMethod() any {
	return privateObjectMethod()
}

func privateObjectMethod() any {
	out := Spy.Route(Spy.PrivateObjectMethod, nil, []any{}, func() []any {
		r0 := spyOrigPrivateObjectMethod()

		return []any{r0}
	})

	return impspy.Result[any](out, 0)
}

// spyOrigPrivateObjectMethod is the original privateObjectMethod, called by its trampoline.
func spyOrigPrivateObjectMethod() any {
	return &Object{}
}

// VoidMethod does its work through a private helper.
func VoidMethod() {
	Spy.Route(Spy.VoidMethod, nil, []any{}, func() []any {
		spyOrigVoidMethod()

		return nil
	})
}

// spyOrigVoidMethod is the original VoidMethod, called by its trampoline.
func spyOrigVoidMethod() {
	privateVoidMethod()
}

func privateVoidMethod() {
	Spy.Route(Spy.PrivateVoidMethod, nil, []any{}, func() []any {
		spyOrigPrivateVoidMethod()

		return nil
	})
}

// spyOrigPrivateVoidMethod is the original privateVoidMethod, called by its trampoline.
func spyOrigPrivateVoidMethod() {
	voidCalls.Add(1)
}

// StaticVoidMethod counts one call.
func StaticVoidMethod() {
	Spy.Route(Spy.StaticVoidMethod, nil, []any{}, func() []any {
		spyOrigStaticVoidMethod()

		return nil
	})
}

// spyOrigStaticVoidMethod is the original StaticVoidMethod, called by its trampoline.
func spyOrigStaticVoidMethod() {
	voidCalls.Add(1)
}

// VoidCalls reports how many void bodies have run.
func VoidCalls() int64 {
	out := Spy.Route(Spy.VoidCalls, nil, []any{}, func() []any {
		r0 := spyOrigVoidCalls()

		return []any{r0}
	})

	return impspy.Result[int64](out, 0)
}

// spyOrigVoidCalls is the original VoidCalls, called by its trampoline.
func spyOrigVoidCalls() int64 {
	return voidCalls.Load()
}

// ObjectFinalMethod returns a fresh Object built by a private helper.
func (e Example) ObjectFinalMethod() any {
	out := SpyExample.Route(SpyExample.ObjectFinalMethod, e, []any{}, func() []any {
		r0 := e.spyOrigObjectFinalMethod()

		return []any{r0}
	})

	return impspy.Result[any](out, 0)
}

// spyOrigObjectFinalMethod is the original ObjectFinalMethod, called by its trampoline.
func (e Example) spyOrigObjectFinalMethod() any {
	return e.privateObjectFinalMethod()
}

func (recv Example) privateObjectFinalMethod() any {
	out := SpyExample.Route(SpyExample.PrivateObjectFinalMethod, recv, []any{}, func() []any {
		r0 := recv.spyOrigPrivateObjectFinalMethod()

		return []any{r0}
	})

	return impspy.Result[any](out, 0)
}

// spyOrigPrivateObjectFinalMethod is the original privateObjectFinalMethod, called by its trampoline.
func (Example) spyOrigPrivateObjectFinalMethod() any {
	return &Object{}
}

// VoidFinalMethod does its work through a private helper.
func (e Example) VoidFinalMethod() {
	SpyExample.Route(SpyExample.VoidFinalMethod, e, []any{}, func() []any {
		e.spyOrigVoidFinalMethod()

		return nil
	})
}

// spyOrigVoidFinalMethod is the original VoidFinalMethod, called by its trampoline.
func (e Example) spyOrigVoidFinalMethod() {
	e.privateVoidFinalMethod()
}

func (recv Example) privateVoidFinalMethod() {
	SpyExample.Route(SpyExample.PrivateVoidFinalMethod, recv, []any{}, func() []any {
		recv.spyOrigPrivateVoidFinalMethod()

		return nil
	})
}

// spyOrigPrivateVoidFinalMethod is the original privateVoidFinalMethod, called by its trampoline.
func (Example) spyOrigPrivateVoidFinalMethod() {
	voidCalls.Add(1)
}

// FinalVoidMethod counts one call.
func (recv Example) FinalVoidMethod() {
	SpyExample.Route(SpyExample.FinalVoidMethod, recv, []any{}, func() []any {
		recv.spyOrigFinalVoidMethod()

		return nil
	})
}

// spyOrigFinalVoidMethod is the original FinalVoidMethod, called by its trampoline.
func (Example) spyOrigFinalVoidMethod() {
	voidCalls.Add(1)
}

// unexported variables.
var (
	//nolint:gochecknoglobals // observable effect of the void bodies
	voidCalls atomic.Int64
)
