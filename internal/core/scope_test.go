package core_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/impspy/internal/core"
)

var errArrayStore = errors.New("array store")

// TestSpy_PrivateMemberCountsAndStubs follows a public call into the private member it
// uses, then stubs that member.
func TestSpy_PrivateMemberCountsAndStubs(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/private")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())

	g.Expect(gr.Greet("Bob")).To(Equal("Hello, Bob"))
	g.Expect(scope.QueryCount(gr.secret)).To(Equal(1))

	g.Expect(scope.When(gr.secret).ThenReturn("Hello static")).To(Succeed())

	g.Expect(gr.Greet("Bob")).To(Equal("Hello static, Bob"))
	g.Expect(scope.QueryCount(gr.secret)).To(Equal(2))
	g.Expect(scope.QueryCount(gr.greet)).To(Equal(2))
}

// TestSpy_DoReturnMatchesWhen verifies both stubbing orders register the same answer.
func TestSpy_DoReturnMatchesWhen(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/doreturn")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())
	g.Expect(scope.DoReturn("Howdy").When(gr.secret)).To(Succeed())

	g.Expect(gr.Greet("Ann")).To(Equal("Howdy, Ann"))
	g.Expect(scope.VerifyPrivate(gr.hook, core.Times(1)).Invoke("secret")).To(Succeed())
}

// TestThrow_VoidMemberPanicsAndCounts verifies a thrown answer on a member without
// results panics at the call site and still counts.
func TestThrow_VoidMemberPanicsAndCounts(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/throw")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())

	gr.Log("first")
	g.Expect(gr.logged).To(Equal([]string{"first"}))

	g.Expect(scope.When(gr.log).ThenThrow(errArrayStore)).To(Succeed())

	g.Expect(func() { gr.Log("second") }).To(PanicWith(errArrayStore))
	g.Expect(gr.logged).To(Equal([]string{"first"}))
	g.Expect(scope.QueryCount(gr.log)).To(Equal(2))
}

// TestThrow_ErrorMemberReturnsError verifies a thrown error surfaces as the error result.
func TestThrow_ErrorMemberReturnsError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/throwerr")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())
	g.Expect(scope.DoThrow(errArrayStore).When(gr.save)).To(Succeed())

	g.Expect(gr.Save("data")).To(MatchError(errArrayStore))
	g.Expect(gr.saved).To(BeEmpty())
	g.Expect(scope.Verify(gr.save, core.Times(1))).To(Succeed())
}

// TestThrow_NonErrorFailurePanics verifies a non-error failure panics even when the member
// returns an error.
func TestThrow_NonErrorFailurePanics(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/throwpanic")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())
	g.Expect(scope.When(gr.save).ThenThrow("boom")).To(Succeed())

	g.Expect(func() { _ = gr.Save("data") }).To(PanicWith("boom"))
}

// TestDoNothing_ClassWide verifies a class-wide DoNothing covers every call of every
// member without a value, and leaves value-returning members alone.
func TestDoNothing_ClassWide(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/classwide")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())
	g.Expect(scope.DoNothing().WhenClass(gr.hook)).To(Succeed())

	gr.Log("a")
	gr.Log("b")
	g.Expect(gr.Save("c")).To(Succeed())
	g.Expect(gr.Greet("Dee")).To(Equal("Hello, Dee"))

	g.Expect(gr.logged).To(BeEmpty())
	g.Expect(gr.saved).To(BeEmpty())
	g.Expect(scope.Verify(gr.log, core.Times(2))).To(Succeed())

	err := scope.Verify(gr.log, core.Times(1))
	g.Expect(err).To(MatchError(core.ErrVerificationFailure))

	var verr *core.VerificationError

	g.Expect(errors.As(err, &verr)).To(BeTrue())
	g.Expect(verr.Actual).To(Equal(2))
	g.Expect(verr.Calls).To(HaveLen(2))
}

// TestDoNothing_StubBeatsClassWide verifies a member stub wins over the class-wide default.
func TestDoNothing_StubBeatsClassWide(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/stubwins")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())
	g.Expect(scope.DoNothing().WhenClass(gr.hook)).To(Succeed())
	g.Expect(scope.When(gr.log).ThenCallOriginal()).To(Succeed())

	gr.Log("kept")
	g.Expect(gr.logged).To(Equal([]string{"kept"}))
}

// TestDoNothing_RejectsValueMember verifies the configuration error is raised at
// registration.
func TestDoNothing_RejectsValueMember(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/rejects")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())

	g.Expect(scope.DoNothing().When(gr.greet)).To(MatchError(core.ErrUnresolvedAnswer))
	g.Expect(scope.When(gr.greet).ThenReturn(1)).To(MatchError(core.ErrUnresolvedAnswer))
	g.Expect(scope.When(gr.greet).ThenReturn("a", "b")).To(MatchError(core.ErrUnresolvedAnswer))
	g.Expect(scope.When(gr.log).ThenReturn("x")).To(MatchError(core.ErrUnresolvedAnswer))
	g.Expect(scope.DoReturn("x").WhenClass(gr.hook)).To(MatchError(core.ErrUnresolvedAnswer))
	g.Expect(scope.DoNothing().When(gr.save)).To(Succeed())
	g.Expect(scope.StubChain(gr.greet)).To(BeEmpty())
}

// TestDoNothing_WhenNextStubsNamedMember verifies the next call names the member and its
// arguments without being recorded or run.
func TestDoNothing_WhenNextStubsNamedMember(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/whennext")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())

	pending, err := scope.DoNothing().WhenNext(gr.hook)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(pending.Err()).To(MatchError(core.ErrUnfinishedStubbing))

	gr.Log("a")
	g.Expect(pending.Done()).To(BeTrue())
	g.Expect(pending.Err()).To(Succeed())
	g.Expect(scope.QueryCount(gr.log)).To(BeZero())

	gr.Log("a")
	gr.Log("b")
	g.Expect(gr.Greet("Vi")).To(Equal("Hello, Vi"))

	g.Expect(gr.logged).To(Equal([]string{"b"}))
	g.Expect(scope.Verify(gr.log, core.Times(2))).To(Succeed())
	g.Expect(scope.StubChain(gr.log)).To(HaveLen(1))
}

// TestWhenNext_AnswerMustFitNamedMember verifies a misfit answer fails when the member is
// named.
func TestWhenNext_AnswerMustFitNamedMember(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/whennextmisfit")
	reporter := &fakeReporter{}
	scope := core.NewScope(core.WithReporter(reporter))

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())

	pending, err := scope.DoNothing().WhenNext(gr.hook)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(gr.Greet("Al")).To(BeEmpty())
	g.Expect(pending.Err()).To(MatchError(core.ErrUnresolvedAnswer))
	g.Expect(reporter.messages()).To(HaveLen(1))
	g.Expect(scope.StubChain(gr.greet)).To(BeEmpty())
	g.Expect(gr.Greet("Al")).To(Equal("Hello, Al"))
}

// TestWhenNext_UnfinishedFailsOnClose verifies a stubbing that never saw its call fails.
func TestWhenNext_UnfinishedFailsOnClose(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/whennextunfinished")
	reporter := &fakeReporter{}
	scope := core.NewScope(core.WithReporter(reporter))

	g.Expect(scope.Spy(gr.hook)).To(Succeed())

	pending, err := scope.DoNothing().WhenNext(gr.hook)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(scope.Close()).To(Succeed())
	g.Expect(pending.Err()).To(MatchError(core.ErrUnfinishedStubbing))
	g.Expect(reporter.messages()).To(ConsistOf(ContainSubstring("scope closed before a call was captured")))
}

// TestWhenNext_ReplacedCaptureFails verifies a second capture on a class fails the first.
func TestWhenNext_ReplacedCaptureFails(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/whennextreplaced")
	reporter := &fakeReporter{}
	scope := core.NewScope(core.WithReporter(reporter))

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())

	first, err := scope.DoNothing().WhenNext(gr.hook)
	g.Expect(err).NotTo(HaveOccurred())

	second, err := scope.VerifyNext(gr.hook, core.Never())
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(first.Err()).To(MatchError(ContainSubstring("replaced by another capture")))
	g.Expect(reporter.messages()).To(HaveLen(1))

	gr.Log("z")
	g.Expect(second.Err()).To(Succeed())
	g.Expect(gr.logged).To(BeEmpty())
}

// TestStub_WithArgsDiscriminates verifies argument matchers select among stubs, newest first.
func TestStub_WithArgsDiscriminates(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/withargs")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())
	g.Expect(scope.When(gr.greet).ThenReturn("anyone")).To(Succeed())
	g.Expect(scope.When(gr.greet).WithArgs("Bob").ThenReturn("bob!")).To(Succeed())
	g.Expect(scope.DoReturn("prefix").When(gr.greet, HavePrefix("Z"))).To(Succeed())

	g.Expect(gr.Greet("Bob")).To(Equal("bob!"))
	g.Expect(gr.Greet("Zed")).To(Equal("prefix"))
	g.Expect(gr.Greet("Amy")).To(Equal("anyone"))

	g.Expect(scope.VerifyMatching(gr.greet, core.ArgsEqual("Bob"), core.Times(1))).To(Succeed())
	g.Expect(scope.QueryMatching(gr.greet, core.ArgsEqual(HavePrefix("Z")))).To(Equal(1))
}

// TestAdjust_RunsOriginalThenCallback verifies Adjust sees and may replace results.
func TestAdjust_RunsOriginalThenCallback(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/adjust")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())
	g.Expect(scope.When(gr.greet).ThenAdjust(func(out []any) {
		out[0] = out[0].(string) + "!"
	})).To(Succeed())

	g.Expect(gr.Greet("Kay")).To(Equal("Hello, Kay!"))
}

// TestMock_DefaultsToZeroValues verifies a mocked class skips originals.
func TestMock_DefaultsToZeroValues(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/mock")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Mock(gr.hook)).To(Succeed())

	g.Expect(gr.Greet("Lu")).To(BeEmpty())
	g.Expect(gr.Save("x")).To(Succeed())
	gr.Log("y")

	g.Expect(gr.logged).To(BeEmpty())
	g.Expect(scope.QueryCount(gr.secret)).To(BeZero())
	g.Expect(scope.QueryCount(gr.greet)).To(Equal(1))
}

// TestActivate_IsIdempotent verifies re-activation keeps stubs and the default answer.
func TestActivate_IsIdempotent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/idempotent")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())
	g.Expect(scope.When(gr.secret).ThenReturn("Hi")).To(Succeed())
	g.Expect(scope.Mock(gr.hook)).To(Succeed())

	g.Expect(scope.IsActive(gr.hook.Class())).To(BeTrue())
	g.Expect(gr.Greet("Mo")).To(Equal("Hi, Mo"))
	g.Expect(scope.Resolve(gr.log, []any{"x"}).Kind).To(Equal(core.AnswerCallOriginal))
}

// TestResolve_UnknownMemberRunsOriginal verifies a member the table never declared does
// not pick up the class-wide default.
func TestResolve_UnknownMemberRunsOriginal(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/unknownresolve")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Mock(gr.hook)).To(Succeed())
	g.Expect(scope.DoNothing().WhenClass(gr.hook)).To(Succeed())

	ghost := core.MemberID{Class: gr.hook.Class(), Name: "ghost", Mods: core.Static}

	g.Expect(scope.Resolve(ghost, nil).Kind).To(Equal(core.AnswerCallOriginal))
	g.Expect(scope.Resolve(gr.log, []any{"x"}).Kind).To(Equal(core.AnswerDoNothing))
}

// TestInactiveClass_RunsOriginalUnrecorded verifies a prepared but inactive class is not
// recorded.
func TestInactiveClass_RunsOriginalUnrecorded(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/inactive")
	scope := core.NewScope()

	defer scope.Close()

	_, err := scope.Prepare(gr.hook)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(scope.When(gr.secret).ThenReturn("ignored")).To(Succeed())

	g.Expect(gr.Greet("Ed")).To(Equal("Hello, Ed"))
	g.Expect(scope.QueryCount(gr.greet)).To(BeZero())

	g.Expect(scope.Activate(gr.hook.Class(), core.CallOriginal())).To(Succeed())
	g.Expect(gr.Greet("Ed")).To(Equal("ignored, Ed"))
}

// TestDeactivate_DropsStubs verifies deactivation removes routing and stubs.
func TestDeactivate_DropsStubs(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/deactivate")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())
	g.Expect(scope.When(gr.secret).ThenReturn("Yo")).To(Succeed())

	scope.Deactivate(gr.hook.Class())

	g.Expect(scope.IsActive(gr.hook.Class())).To(BeFalse())
	g.Expect(scope.StubChain(gr.secret)).To(BeEmpty())
	g.Expect(gr.Greet("Al")).To(Equal("Hello, Al"))
}

// TestRestore_ReturnsOriginalBehavior verifies a restored class behaves as before Prepare
// and that restoring twice is harmless.
func TestRestore_ReturnsOriginalBehavior(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/restore")
	scope := core.NewScope()

	defer scope.Close()

	handle, err := scope.Prepare(gr.hook)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(scope.Activate(gr.hook.Class(), core.DoNothing())).To(Succeed())
	g.Expect(gr.Greet("Jo")).To(BeEmpty())

	g.Expect(handle.Restore()).To(Succeed())
	g.Expect(handle.Restore()).To(Succeed())

	g.Expect(gr.Greet("Jo")).To(Equal("Hello, Jo"))
	g.Expect(scope.IsActive(gr.hook.Class())).To(BeFalse())
	g.Expect(scope.QueryCount(gr.greet)).To(Equal(1))
}

// TestPrepare_SameHookTwiceReturnsSameHandle verifies one redirection per class per scope.
func TestPrepare_SameHookTwiceReturnsSameHandle(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/twice")
	scope := core.NewScope()

	defer scope.Close()

	first, err := scope.Prepare(gr.hook)
	g.Expect(err).NotTo(HaveOccurred())

	second, err := scope.Prepare(gr.hook)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(second).To(BeIdenticalTo(first))
	g.Expect(first.Class()).To(Equal(gr.hook.Class()))

	other := newGreeter("example.com/spy/twice")
	_, err = scope.Prepare(other.hook)
	g.Expect(err).To(MatchError(core.ErrClassInUse))
}

// TestPrepare_IsolatesScopes verifies a hook cannot be bound by two live scopes.
func TestPrepare_IsolatesScopes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/isolation")
	first := core.NewScope()
	second := core.NewScope()

	defer first.Close()
	defer second.Close()

	g.Expect(first.Spy(gr.hook)).To(Succeed())
	g.Expect(second.Spy(gr.hook)).To(MatchError(core.ErrClassInUse))

	g.Expect(first.Close()).To(Succeed())
	g.Expect(second.Spy(gr.hook)).To(Succeed())
	g.Expect(first.Spy(gr.hook)).To(MatchError(core.ErrScopeClosed))
}

// TestPrepare_RejectsNativeMembers verifies unmockable members fail setup.
func TestPrepare_RejectsNativeMembers(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	hook := core.NewHook(core.ClassID{Pkg: "example.com/spy/native"})
	hook.Declare("sqrt", core.Static|core.Native, (func(float64) float64)(nil))

	scope := core.NewScope()

	defer scope.Close()

	_, err := scope.Prepare(hook)
	g.Expect(err).To(MatchError(core.ErrUnmockableMember))
}

// TestRegisterStub_RequiresPreparedKnownMember covers registration misuse.
func TestRegisterStub_RequiresPreparedKnownMember(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/misuse")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.When(gr.secret).ThenReturn("x")).To(MatchError(core.ErrNotPrepared))
	g.Expect(scope.Activate(gr.hook.Class(), core.CallOriginal())).To(MatchError(core.ErrNotPrepared))
	g.Expect(scope.DoNothing().WhenClass(gr.hook)).To(MatchError(core.ErrNotPrepared))

	g.Expect(scope.Spy(gr.hook)).To(Succeed())

	stranger := core.MemberID{Class: gr.hook.Class(), Name: "missing"}
	g.Expect(scope.When(stranger).ThenDoNothing()).To(MatchError(core.ErrUnknownMember))
}

// TestClose_RestoresAndRejectsLaterUse verifies teardown is complete and idempotent.
func TestClose_RestoresAndRejectsLaterUse(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/close")
	scope := core.NewScope()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())
	g.Expect(scope.When(gr.secret).ThenReturn("Bye")).To(Succeed())

	g.Expect(scope.Close()).To(Succeed())
	g.Expect(scope.Close()).To(Succeed())

	g.Expect(gr.Greet("Cy")).To(Equal("Hello, Cy"))
	g.Expect(scope.When(gr.secret).ThenReturn("x")).To(MatchError(core.ErrScopeClosed))
	g.Expect(scope.Verify(gr.greet, core.Never())).To(MatchError(core.ErrScopeClosed))

	_, err := scope.VerifyNext(gr.hook, core.Never())
	g.Expect(err).To(MatchError(core.ErrScopeClosed))
}

// TestRecords_AreSnapshotsWithScopeIdentity verifies record contents and ordering.
func TestRecords_AreSnapshotsWithScopeIdentity(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	gr := newGreeter("example.com/spy/records")
	scope := core.NewScope()

	defer scope.Close()

	g.Expect(scope.Spy(gr.hook)).To(Succeed())

	gr.Greet("A")
	gr.Log("B")

	all := scope.Records(core.MemberID{})
	g.Expect(all).To(HaveLen(3))
	g.Expect(all[0].Member).To(Equal(gr.greet))
	g.Expect(all[1].Member).To(Equal(gr.secret))
	g.Expect(all[2].Args).To(Equal([]any{"B"}))

	for i, rec := range all {
		g.Expect(rec.Seq).To(Equal(uint64(i + 1)))
		g.Expect(rec.Scope).To(Equal(scope.ID()))
	}
}
