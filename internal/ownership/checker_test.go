package ownership

import (
	"errors"
	"reflect"
	"testing"
)

func mustApply(t *testing.T, c *Checker, instrs ...Instr) {
	t.Helper()
	for _, in := range instrs {
		if err := c.Apply(in); err != nil {
			t.Fatalf("%s: unexpected error %v", in, err)
		}
	}
}

func expectKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", want)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected %s, got %v", want, err)
	}
}

func TestScenarioCopyValue(t *testing.T) {
	c := New()
	mustApply(t, c,
		Declare{Name: "x", Kind: Value},
		Copy{Src: "x", Dst: "y"},
		Use{Name: "x"},
		Use{Name: "y"},
	)
	states := c.Snapshot().States()
	if states["x"] != Owned || states["y"] != Owned {
		t.Fatalf("expected both owned, got %v", states)
	}
}

func TestScenarioUseAfterMove(t *testing.T) {
	c := New()
	mustApply(t, c, Declare{Name: "s", Kind: Resource}, Move{Src: "s", Dst: "t"})
	expectKind(t, c.Apply(Use{Name: "s"}), UseAfterMove)
	mustApply(t, c, Use{Name: "t"})
}

func TestScenarioSharedAfterExclusive(t *testing.T) {
	c := New()
	mustApply(t, c, Declare{Name: "s", Kind: Resource}, BorrowExclusive{Name: "s"})
	// shared borrow requested while exclusive is held
	err := c.Apply(BorrowShared{Name: "s"})
	expectKind(t, err, ExclusiveBorrowConflict)
}

func TestScenarioExclusiveAfterShared(t *testing.T) {
	c := New()
	mustApply(t, c, Declare{Name: "s", Kind: Resource}, BorrowShared{Name: "s"})
	expectKind(t, c.Apply(BorrowExclusive{Name: "s"}), SharedBorrowConflict)
}

func TestScenarioManyShared(t *testing.T) {
	c := New()
	mustApply(t, c,
		Declare{Name: "s", Kind: Resource},
		BorrowShared{Name: "s"},
		BorrowShared{Name: "s"},
		Use{Name: "s"},
	)
	view, _ := c.Snapshot().Binding(1)
	if view.Shared != 2 || view.Exclusive {
		t.Fatalf("expected 2 shared borrows, got %+v", view)
	}
}

func TestScenarioScopeEndUnbinds(t *testing.T) {
	c := New()
	mustApply(t, c, OpenScope{}, Declare{Name: "a", Kind: Resource}, EndScope{})
	expectKind(t, c.Apply(Use{Name: "a"}), UnboundName)
}

func TestScenarioMoveToSameName(t *testing.T) {
	c := New()
	mustApply(t, c, Declare{Name: "s", Kind: Resource}, Move{Src: "s", Dst: "s"}, Use{Name: "s"})
	snap := c.Snapshot()
	if len(snap.Bindings) != 2 {
		t.Fatalf("expected two bindings, got %d", len(snap.Bindings))
	}
	if snap.Bindings[0].State != MovedOut || snap.Bindings[1].State != Owned {
		t.Fatalf("unexpected states %+v", snap.Bindings)
	}
}

func TestRejections(t *testing.T) {
	cases := []struct {
		name  string
		setup []Instr
		in    Instr
		want  ErrorKind
	}{
		{"unbound use", nil, Use{Name: "nope"}, UnboundName},
		{"move value", []Instr{Declare{Name: "x", Kind: Value}}, Move{Src: "x", Dst: "y"}, MoveOfValueType},
		{"copy resource", []Instr{Declare{Name: "s", Kind: Resource}}, Copy{Src: "s", Dst: "t"}, CopyOfResource},
		{"move borrowed", []Instr{Declare{Name: "s", Kind: Resource}, BorrowShared{Name: "s"}}, Move{Src: "s", Dst: "t"}, MoveWhileBorrowed},
		{"double exclusive", []Instr{Declare{Name: "s", Kind: Resource}, BorrowExclusive{Name: "s"}}, BorrowExclusive{Name: "s"}, ExclusiveBorrowConflict},
		{"clone moved", []Instr{Declare{Name: "s", Kind: Resource}, Move{Src: "s", Dst: "t"}}, Clone{Src: "s", Dst: "u"}, UseAfterMove},
		{"borrow moved", []Instr{Declare{Name: "s", Kind: Resource}, Consume{Name: "s"}}, BorrowShared{Name: "s"}, UseAfterMove},
		{"move onto own name", []Instr{Declare{Name: "s", Kind: Resource}}, Move{Src: "s", Dst: "s"}, NoError},
		{"consume borrowed", []Instr{Declare{Name: "s", Kind: Resource}, BorrowExclusive{Name: "s"}}, Consume{Name: "s"}, MoveWhileBorrowed},
		{"mutate borrowed", []Instr{Declare{Name: "s", Kind: Resource}, BorrowShared{Name: "s"}}, Mutate{Name: "s"}, MutationWhileBorrowed},
		{"end root twice", []Instr{EndScope{}}, EndScope{}, ScopeUnderflow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			mustApply(t, c, tc.setup...)
			err := c.Apply(tc.in)
			if tc.want == NoError {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			expectKind(t, err, tc.want)
		})
	}
}

func TestOuterShadowRestoredAtScopeEnd(t *testing.T) {
	c := New()
	mustApply(t, c,
		Declare{Name: "s", Kind: Resource},
		OpenScope{},
		BorrowShared{Name: "s"},
		Declare{Name: "s", Kind: Resource},
		Use{Name: "s"},
		EndScope{},
		Use{Name: "s"},
	)
	snap := c.Snapshot()
	if snap.Bindings[0].State != Owned || snap.Bindings[1].State != Dropped {
		t.Fatalf("outer shadowing must not touch outer binding: %+v", snap.Bindings)
	}
	if snap.Bindings[0].Shared != 0 {
		t.Fatalf("inner-scope borrow should be released, got %d", snap.Bindings[0].Shared)
	}
}

func TestSameScopeShadowDropsOld(t *testing.T) {
	c := New()
	mustApply(t, c,
		Declare{Name: "s", Kind: Resource},
		BorrowShared{Name: "s"},
		Declare{Name: "s", Kind: Value},
	)
	snap := c.Snapshot()
	old := snap.Bindings[0]
	if old.State != Dropped || old.Shared != 0 {
		t.Fatalf("expected shadowed binding dropped without borrows, got %+v", old)
	}
	if got := snap.DropNames(); !reflect.DeepEqual(got, []string{"s"}) {
		t.Fatalf("unexpected drops %v", got)
	}
}

func TestReverseDropOrder(t *testing.T) {
	c := New()
	mustApply(t, c,
		Declare{Name: "a", Kind: Resource},
		Declare{Name: "b", Kind: Value},
		OpenScope{},
		Declare{Name: "x", Kind: Resource},
		Declare{Name: "y", Kind: Resource},
		Declare{Name: "z", Kind: Resource},
		Move{Src: "y", Dst: "w"},
		EndScope{},
	)
	if got, want := c.Snapshot().DropNames(), []string{"w", "z", "x"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("drop order = %v, want %v", got, want)
	}
	if err := c.Finish(); err != nil {
		t.Fatalf("unexpected finish error %v", err)
	}
	if got, want := c.Snapshot().DropNames(), []string{"w", "z", "x", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("drop order = %v, want %v", got, want)
	}
}

func TestStatesAreMonotonic(t *testing.T) {
	c := New()
	mustApply(t, c, Declare{Name: "s", Kind: Resource}, Consume{Name: "s"})
	for i := 0; i < 3; i++ {
		expectKind(t, c.Apply(Use{Name: "s"}), UseAfterMove)
		expectKind(t, c.Apply(Move{Src: "s", Dst: "t"}), UseAfterMove)
	}
	if c.bindings.SetState(1, Owned) || c.bindings.SetState(1, Dropped) {
		t.Fatalf("SetState revived or re-transitioned a moved binding")
	}
}

func TestUseAfterDrop(t *testing.T) {
	c := New()
	mustApply(t, c, Declare{Name: "s", Kind: Resource})
	// scope teardown pops dropped bindings, so force the state directly
	c.bindings.SetState(1, Dropped)
	expectKind(t, c.Apply(Use{Name: "s"}), UseAfterDrop)
	expectKind(t, c.Apply(Clone{Src: "s", Dst: "t"}), UseAfterDrop)
}

func TestRejectedInstructionHasNoEffect(t *testing.T) {
	c := New()
	mustApply(t, c, Declare{Name: "s", Kind: Resource}, BorrowShared{Name: "s"})
	before := c.Snapshot()
	for _, in := range []Instr{
		BorrowExclusive{Name: "s"},
		Move{Src: "s", Dst: "t"},
		Copy{Src: "s", Dst: "t"},
		Use{Name: "ghost"},
	} {
		if err := c.Apply(in); err == nil {
			t.Fatalf("%s: expected rejection", in)
		}
	}
	if after := c.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("rejected instructions changed state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	c := New()
	mustApply(t, c, Declare{Name: "s", Kind: Resource}, BorrowExclusive{Name: "s"}, OpenScope{})
	if a, b := c.Snapshot(), c.Snapshot(); !reflect.DeepEqual(a, b) {
		t.Fatalf("snapshot not idempotent")
	}
}

func TestCloneRoundTrip(t *testing.T) {
	c := New()
	mustApply(t, c,
		Declare{Name: "s", Kind: Resource},
		Clone{Src: "s", Dst: "t"},
		Use{Name: "s"},
		Use{Name: "t"},
		Consume{Name: "t"},
		Use{Name: "s"},
	)
}

func TestBorrowReleasedAtScopeEnd(t *testing.T) {
	c := New()
	mustApply(t, c,
		Declare{Name: "s", Kind: Resource, Mutable: true},
		OpenScope{},
		BorrowExclusive{Name: "s"},
		EndScope{},
		BorrowExclusive{Name: "s"},
	)
	expectKind(t, c.Apply(BorrowShared{Name: "s"}), ExclusiveBorrowConflict)
}

func TestBorrowExclusivityInvariant(t *testing.T) {
	c := New()
	seq := []Instr{
		Declare{Name: "s", Kind: Resource},
		BorrowShared{Name: "s"},
		BorrowExclusive{Name: "s"},
		OpenScope{},
		BorrowShared{Name: "s"},
		BorrowExclusive{Name: "s"},
		EndScope{},
		OpenScope{},
		Declare{Name: "u", Kind: Resource},
		BorrowExclusive{Name: "u"},
		BorrowExclusive{Name: "u"},
		BorrowShared{Name: "u"},
		EndScope{},
	}
	for _, in := range seq {
		_ = c.Apply(in)
		for _, b := range c.Snapshot().Bindings {
			if b.Exclusive && b.Shared > 0 {
				t.Fatalf("after %s: %s holds exclusive and %d shared", in, b.Name, b.Shared)
			}
		}
	}
}

func TestStrictMutability(t *testing.T) {
	c := New(WithStrictMutability(true))
	mustApply(t, c,
		Declare{Name: "s", Kind: Resource},
		Declare{Name: "m", Kind: Resource, Mutable: true},
		BorrowExclusive{Name: "m"},
	)
	expectKind(t, c.Apply(BorrowExclusive{Name: "s"}), ExclusiveBorrowOfImmutable)
	expectKind(t, c.Apply(Mutate{Name: "s"}), MutationOfImmutable)
	mustApply(t, c, Move{Src: "s", Dst: "s2", Mutable: true}, Mutate{Name: "s2"})
}

func TestConsumeValueCopies(t *testing.T) {
	c := New()
	mustApply(t, c, Declare{Name: "x", Kind: Value}, Consume{Name: "x"}, Use{Name: "x"})
}

func TestFinishReturnsFirstViolation(t *testing.T) {
	c := New()
	_ = c.Apply(Use{Name: "a"})
	mustApply(t, c, Declare{Name: "s", Kind: Resource}, OpenScope{}, OpenScope{})
	_ = c.Apply(Copy{Src: "s", Dst: "t"})

	err := c.Finish()
	expectKind(t, err, UnboundName)
	if c.Depth() != 0 {
		t.Fatalf("finish left %d scopes open", c.Depth())
	}
	var v *Violation
	if !errors.As(err, &v) || v.Index != 0 || v.Name != "a" {
		t.Fatalf("unexpected first violation %#v", err)
	}
	expectKind(t, c.Apply(EndScope{}), ScopeUnderflow)
}

func TestCheckCollectsAllViolations(t *testing.T) {
	res := Check([]Instr{
		Declare{Name: "s", Kind: Resource},
		Move{Src: "s", Dst: "t"},
		Use{Name: "s"},
		Copy{Src: "t", Dst: "u"},
		Use{Name: "t"},
	})
	if res.OK() || len(res.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", res.Violations)
	}
	if res.First().Kind != UseAfterMove || res.Violations[1].Kind != CopyOfResource {
		t.Fatalf("unexpected violations %v", res.Violations)
	}
	if res.Snapshot.Depth != 0 {
		t.Fatalf("check must finish the checker")
	}
}

func TestErrorKindNamesRoundTrip(t *testing.T) {
	for _, k := range ErrorKinds() {
		got, ok := ParseErrorKind(k.String())
		if !ok || got != k {
			t.Fatalf("ParseErrorKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseErrorKind("no_error"); ok {
		t.Fatalf("no_error must not parse")
	}
}

func TestViolationPointsAtConflictingBorrow(t *testing.T) {
	c := New()
	mustApply(t, c,
		Declare{Name: "s", Kind: Resource},
		OpenScope{},
		BorrowExclusive{Name: "s"},
	)
	err := c.Apply(Move{Src: "s", Dst: "t"})
	expectKind(t, err, MoveWhileBorrowed)

	var v *Violation
	if !errors.As(err, &v) {
		t.Fatalf("expected *Violation, got %T", err)
	}
	snap := c.Snapshot()
	info, ok := snap.Borrow(v.Conflict)
	if !ok {
		t.Fatalf("conflicting borrow %d not in snapshot", v.Conflict)
	}
	if info.Mode != Exclusive || info.Index != 2 || !info.Active {
		t.Fatalf("unexpected borrow info %+v", info)
	}
	if b, _ := snap.Binding(info.Target); b.Name != "s" {
		t.Fatalf("borrow target = %q, want s", b.Name)
	}

	mustApply(t, c, EndScope{})
	info, _ = c.Snapshot().Borrow(v.Conflict)
	if info.Active {
		t.Fatalf("borrow still active after its scope closed")
	}
	if _, ok := c.Snapshot().Borrow(NoBorrowID); ok {
		t.Fatalf("NoBorrowID resolved to a borrow")
	}
}

func TestClosedRootRejectsEverything(t *testing.T) {
	c := New()
	mustApply(t, c, Declare{Name: "r", Kind: Resource}, EndScope{})
	before := c.Snapshot()
	for _, in := range []Instr{
		Declare{Name: "s", Kind: Resource},
		BorrowShared{Name: "s"},
		OpenScope{},
		Use{Name: "r"},
	} {
		expectKind(t, c.Apply(in), ScopeUnderflow)
	}
	if !reflect.DeepEqual(before, c.Snapshot()) {
		t.Fatalf("rejected instructions changed state")
	}
	expectKind(t, c.Finish(), ScopeUnderflow)
	snap := c.Snapshot()
	if len(snap.Bindings) != 1 || snap.Bindings[0].State != Dropped || snap.Bindings[0].Live {
		t.Fatalf("unexpected bindings after finish %+v", snap.Bindings)
	}
}
