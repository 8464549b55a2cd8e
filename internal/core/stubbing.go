package core

// OngoingStubbing is the member-first stubbing form: When(member).ThenReturn(v).
type OngoingStubbing struct {
	scope   *Scope
	member  MemberID
	matcher ArgsMatcher
}

// When starts stubbing member. Without WithArgs the stub matches any arguments.
func (s *Scope) When(member MemberID) *OngoingStubbing {
	return &OngoingStubbing{scope: s, member: member}
}

// WithArgs narrows the stub to calls whose arguments match expected.
func (o *OngoingStubbing) WithArgs(expected ...any) *OngoingStubbing {
	o.matcher = ArgsEqual(expected...)

	return o
}

// WithArgsMatching narrows the stub to calls matcher accepts.
func (o *OngoingStubbing) WithArgsMatching(matcher ArgsMatcher) *OngoingStubbing {
	o.matcher = matcher

	return o
}

// Then registers answer.
func (o *OngoingStubbing) Then(answer Answer) error {
	_, err := o.scope.RegisterStub(o.member, o.matcher, answer)

	return err
}

// ThenReturn registers a Return answer.
func (o *OngoingStubbing) ThenReturn(values ...any) error {
	return o.Then(Return(values...))
}

// ThenThrow registers a Throw answer.
func (o *OngoingStubbing) ThenThrow(failure any) error {
	return o.Then(Throw(failure))
}

// ThenCallOriginal registers a CallOriginal answer.
func (o *OngoingStubbing) ThenCallOriginal() error {
	return o.Then(CallOriginal())
}

// ThenDoNothing registers a DoNothing answer.
func (o *OngoingStubbing) ThenDoNothing() error {
	return o.Then(DoNothing())
}

// ThenAdjust registers an Adjust answer.
func (o *OngoingStubbing) ThenAdjust(fn func(results []any)) error {
	return o.Then(Adjust(fn))
}

// Stubber is the answer-first stubbing form: DoReturn(v).When(member).
type Stubber struct {
	scope  *Scope
	answer Answer
}

// DoReturn starts an answer-first Return stub.
func (s *Scope) DoReturn(values ...any) Stubber {
	return Stubber{scope: s, answer: Return(values...)}
}

// DoThrow starts an answer-first Throw stub.
func (s *Scope) DoThrow(failure any) Stubber {
	return Stubber{scope: s, answer: Throw(failure)}
}

// DoNothing starts an answer-first DoNothing stub.
func (s *Scope) DoNothing() Stubber {
	return Stubber{scope: s, answer: DoNothing()}
}

// DoCallOriginal starts an answer-first CallOriginal stub.
func (s *Scope) DoCallOriginal() Stubber {
	return Stubber{scope: s, answer: CallOriginal()}
}

// DoAdjust starts an answer-first Adjust stub.
func (s *Scope) DoAdjust(fn func(results []any)) Stubber {
	return Stubber{scope: s, answer: Adjust(fn)}
}

// When registers the answer for member. Expected arguments, when given, narrow the stub.
func (st Stubber) When(member MemberID, expected ...any) error {
	var matcher ArgsMatcher
	if len(expected) > 0 {
		matcher = ArgsEqual(expected...)
	}

	_, err := st.scope.RegisterStub(member, matcher, st.answer)

	return err
}

// WhenNext registers the answer for whichever member of the hook's class is called next,
// with that call's arguments. The naming call is neither recorded nor run and returns
// zero values; an answer that does not fit the member fails through the reporter and the
// returned capture.
func (st Stubber) WhenNext(hook *Hook) (*PendingCapture, error) {
	return st.scope.captureNext(&PendingCapture{
		class:   hook.class,
		purpose: "stubbing",
		failure: ErrUnfinishedStubbing,
		complete: func(member MemberID, args []any) error {
			_, err := st.scope.RegisterStub(member, ArgsEqual(args...), st.answer)

			return err
		},
	})
}

// WhenClass installs the answer as the default of every member of the hook's class that
// produces no value, for all later calls. Stubs registered for a member still win.
func (st Stubber) WhenClass(hook *Hook) error {
	return st.scope.SetVoidDefault(hook.class, st.answer)
}
