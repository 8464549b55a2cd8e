package constructor_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/impspy"
	"github.com/toejough/impspy/UAT/constructor"
	"github.com/toejough/impspy/match"
)

var errUnavailable = errors.New("unavailable")

// Tests share the package tables and therefore run sequentially.

// TestConstructor_AdjustPostConstructionState adjusts every constructed counter.
func TestConstructor_AdjustPostConstructionState(t *testing.T) {
	g := NewWithT(t)
	scope := impspy.New(t)
	spy := constructor.SpyCounter

	g.Expect(scope.Spy(spy.Hook)).To(Succeed())
	g.Expect(scope.DoAdjust(func(out []any) {
		out[0].(*constructor.Counter).Add(100) //nolint:forcetypeassert // NewCounter returns *Counter
	}).When(spy.NewCounter)).To(Succeed())

	counter, err := constructor.Parse("hits=1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(counter.Total()).To(Equal(101))
	g.Expect(counter.Name()).To(Equal("hits"))

	g.Expect(scope.Verify(spy.NewCounter, impspy.Times(1))).To(Succeed())
	g.Expect(scope.VerifyMatching(spy.Add, impspy.ArgsEqual([]int{100}), impspy.Times(1))).To(Succeed())
}

// TestConstructor_ReturnPreset replaces construction with a prepared instance.
func TestConstructor_ReturnPreset(t *testing.T) {
	g := NewWithT(t)

	preset := constructor.NewCounter("preset", 7)

	scope := impspy.New(t)
	spy := constructor.SpyCounter

	g.Expect(scope.Spy(spy.Hook)).To(Succeed())
	g.Expect(scope.When(spy.NewCounter).WithArgs("fixed", match.BeAny).ThenReturn(preset)).To(Succeed())

	fixed, err := constructor.Parse("fixed=3")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fixed).To(BeIdenticalTo(preset))

	other, err := constructor.Parse("other=3")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(other).NotTo(BeIdenticalTo(preset))
	g.Expect(other.Total()).To(Equal(3))
}

// TestConstructor_NonErrorThrowPanics verifies a constructor without an error result panics.
func TestConstructor_NonErrorThrowPanics(t *testing.T) {
	g := NewWithT(t)
	scope := impspy.New(t)
	spy := constructor.SpyCounter

	g.Expect(scope.Spy(spy.Hook)).To(Succeed())
	g.Expect(scope.When(spy.NewCounter).ThenThrow(errUnavailable)).To(Succeed())

	g.Expect(func() { constructor.NewCounter("x", 0) }).To(PanicWith(errUnavailable))
}

// TestFunction_ThrowReturnsError verifies a failing answer surfaces as the error result.
func TestFunction_ThrowReturnsError(t *testing.T) {
	g := NewWithT(t)
	scope := impspy.New(t)

	g.Expect(scope.Spy(constructor.Spy.Hook)).To(Succeed())
	g.Expect(scope.DoThrow(errUnavailable).When(constructor.Spy.Parse, "a=1")).To(Succeed())

	counter, err := constructor.Parse("a=1")
	g.Expect(err).To(MatchError(errUnavailable))
	g.Expect(counter).To(BeNil())

	_, err = constructor.Parse("broken")
	g.Expect(err).To(MatchError(constructor.ErrBadSpec))
}

// TestMethod_RecordsReceiverAndVariadicArgs verifies what a method call records.
func TestMethod_RecordsReceiverAndVariadicArgs(t *testing.T) {
	g := NewWithT(t)
	scope := impspy.New(t)
	spy := constructor.SpyCounter

	g.Expect(scope.Spy(spy.Hook)).To(Succeed())

	counter := constructor.NewCounter("c", 0)
	g.Expect(counter.Add(1, 2, 3)).To(Equal(6))
	g.Expect(counter.Add()).To(Equal(6))

	records := scope.Records(spy.Add)
	g.Expect(records).To(HaveLen(2))
	g.Expect(records[0].Receiver).To(BeIdenticalTo(counter))
	g.Expect(records[0].Args).To(Equal([]any{[]int{1, 2, 3}}))
	g.Expect(records[0].Scope).To(Equal(scope.ID()))

	g.Expect(scope.When(spy.Total).ThenReturn(-1)).To(Succeed())
	g.Expect(counter.Total()).To(Equal(-1))
	g.Expect(counter.Add(1)).To(Equal(7))
}

// TestTables_ConstructorModifiers verifies constructors belong to their type's table.
func TestTables_ConstructorModifiers(t *testing.T) {
	g := NewWithT(t)

	g.Expect(constructor.SpyCounter.NewCounter.Mods).To(Equal(impspy.Static | impspy.Constructor))
	g.Expect(constructor.SpyCounter.Add.String()).
		To(Equal("github.com/toejough/impspy/UAT/constructor.Counter.Add(...int) int"))
	g.Expect(constructor.Spy.Parse.Results).To(Equal("(*constructor.Counter, error)"))
}
