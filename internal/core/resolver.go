package core

// StubEntry is one configured answer in a member's stub chain.
type StubEntry struct {
	Member  MemberID
	Matcher ArgsMatcher
	Answer  Answer
	Ordinal int
}

// stubResolver keeps an ordered chain of stubs per member. The newest entry whose
// matcher accepts the arguments wins.
type stubResolver struct {
	chains map[MemberID][]StubEntry
	next   int
}

func newStubResolver() *stubResolver {
	return &stubResolver{chains: make(map[MemberID][]StubEntry)}
}

func (r *stubResolver) register(member MemberID, matcher ArgsMatcher, answer Answer) StubEntry {
	r.next++

	entry := StubEntry{Member: member, Matcher: matcher, Answer: answer, Ordinal: r.next}
	r.chains[member] = append(r.chains[member], entry)

	return entry
}

// lookup scans newest to oldest.
func (r *stubResolver) lookup(member MemberID, args []any) (StubEntry, bool) {
	chain := r.chains[member]

	for i := len(chain) - 1; i >= 0; i-- {
		if matches(chain[i].Matcher, args) {
			return chain[i], true
		}
	}

	return StubEntry{}, false
}

func (r *stubResolver) entries(member MemberID) []StubEntry {
	chain := r.chains[member]
	out := make([]StubEntry, len(chain))
	copy(out, chain)

	return out
}

// dropClass removes every chain of the class.
func (r *stubResolver) dropClass(class ClassID) {
	for member := range r.chains {
		if member.Class == class {
			delete(r.chains, member)
		}
	}
}
