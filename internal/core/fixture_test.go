package core_test

import (
	"errors"
	"strings"

	"github.com/toejough/impspy/internal/core"
)

// greeter is a hand-built version of what the rewriter emits for a small package: each
// method is a trampoline routing through a fresh hook, and origX holds the original body.
type greeter struct {
	hook *core.Hook

	greet  core.MemberID
	secret core.MemberID
	log    core.MemberID
	save   core.MemberID

	logged []string
	saved  []string
}

var errEmpty = errors.New("empty message")

func newGreeter(pkg string) *greeter {
	hook := core.NewHook(core.ClassID{Pkg: pkg})

	return &greeter{
		hook:   hook,
		greet:  hook.Declare("Greet", core.Static, (func(string) string)(nil)),
		secret: hook.Declare("secret", core.Static, (func() string)(nil)),
		log:    hook.Declare("Log", core.Static, (func(string))(nil)),
		save:   hook.Declare("Save", core.Static, (func(string) error)(nil)),
	}
}

func (g *greeter) Greet(name string) string {
	out := g.hook.Route(g.greet, nil, []any{name}, func() []any {
		r0 := g.origGreet(name)

		return []any{r0}
	})

	return core.Result[string](out, 0)
}

func (g *greeter) Secret() string {
	out := g.hook.Route(g.secret, nil, []any{}, func() []any {
		r0 := g.origSecret()

		return []any{r0}
	})

	return core.Result[string](out, 0)
}

func (g *greeter) Log(msg string) {
	g.hook.Route(g.log, nil, []any{msg}, func() []any {
		g.origLog(msg)

		return nil
	})
}

func (g *greeter) Save(msg string) error {
	out := g.hook.Route(g.save, nil, []any{msg}, func() []any {
		r0 := g.origSave(msg)

		return []any{r0}
	})

	return core.Result[error](out, 0)
}

func (g *greeter) origGreet(name string) string {
	return g.Secret() + ", " + name
}

func (g *greeter) origSecret() string {
	return "Hello"
}

func (g *greeter) origLog(msg string) {
	g.logged = append(g.logged, msg)
}

func (g *greeter) origSave(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return errEmpty
	}

	g.saved = append(g.saved, msg)

	return nil
}
