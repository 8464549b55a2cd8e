// Package constructor is an acceptance package in its redirected form, covering a
// constructor, pointer-receiver methods, a variadic method and a function failing with an
// error.
package constructor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/toejough/impspy"
)

// ErrBadSpec is returned by Parse for malformed input.
var ErrBadSpec = errors.New("bad counter spec")

// Counter accumulates increments under a name.
type Counter struct {
	name  string
	total int
}

// NewCounter returns a counter starting at start.
func NewCounter(name string, start int) *Counter {
	out := SpyCounter.Route(SpyCounter.NewCounter, nil, []any{name, start}, func() []any {
		r0 := spyOrigNewCounter(name, start)

		return []any{r0}
	})

	return impspy.Result[*Counter](out, 0)
}

// spyOrigNewCounter is the original NewCounter, called by its trampoline.
func spyOrigNewCounter(name string, start int) *Counter {
	return &Counter{name: name, total: start}
}

// Parse builds a counter from "name=total".
func Parse(spec string) (*Counter, error) {
	out := Spy.Route(Spy.Parse, nil, []any{spec}, func() []any {
		r0, r1 := spyOrigParse(spec)

		return []any{r0, r1}
	})

	return impspy.Result[*Counter](out, 0), impspy.Result[error](out, 1)
}

// spyOrigParse is the original Parse, called by its trampoline.
func spyOrigParse(spec string) (*Counter, error) {
	name, total, ok := strings.Cut(spec, "=")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadSpec, spec)
	}

	start, err := strconv.Atoi(total)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSpec, err)
	}

	return NewCounter(name, start), nil
}

// Add adds every delta and returns the new total.
func (c *Counter) Add(deltas ...int) int {
	out := SpyCounter.Route(SpyCounter.Add, c, []any{deltas}, func() []any {
		r0 := c.spyOrigAdd(deltas...)

		return []any{r0}
	})

	return impspy.Result[int](out, 0)
}

// spyOrigAdd is the original Add, called by its trampoline.
func (c *Counter) spyOrigAdd(deltas ...int) int {
	for _, delta := range deltas {
		c.total += delta
	}

	return c.total
}

// Name returns the counter's name.
func (c *Counter) Name() string {
	out := SpyCounter.Route(SpyCounter.Name, c, []any{}, func() []any {
		r0 := c.spyOrigName()

		return []any{r0}
	})

	return impspy.Result[string](out, 0)
}

// spyOrigName is the original Name, called by its trampoline.
func (c *Counter) spyOrigName() string {
	return c.name
}

// Total returns the accumulated total.
func (c *Counter) Total() int {
	out := SpyCounter.Route(SpyCounter.Total, c, []any{}, func() []any {
		r0 := c.spyOrigTotal()

		return []any{r0}
	})

	return impspy.Result[int](out, 0)
}

// spyOrigTotal is the original Total, called by its trampoline.
func (c *Counter) spyOrigTotal() int {
	return c.total
}
