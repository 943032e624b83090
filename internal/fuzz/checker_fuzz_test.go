package fuzztests

import (
	"reflect"
	"testing"

	"ownck/internal/ownership"
	"ownck/internal/testkit"
)

var fuzzNames = []string{"a", "b", "c"}

// decodeInstrs turns bytes into instructions, two bytes per instruction:
// the first picks the operation, the second the names and flags.
func decodeInstrs(data []byte) []ownership.Instr {
	var out []ownership.Instr
	for i := 0; i+1 < len(data); i += 2 {
		op, arg := data[i], data[i+1]
		name := fuzzNames[int(arg)%len(fuzzNames)]
		other := fuzzNames[int(arg>>2)%len(fuzzNames)]
		flag := arg&0x80 != 0
		var in ownership.Instr
		switch op % 11 {
		case 0:
			kind := ownership.Value
			if flag {
				kind = ownership.Resource
			}
			in = ownership.Declare{Name: name, Kind: kind, Mutable: arg&0x40 != 0}
		case 1:
			in = ownership.Use{Name: name}
		case 2:
			in = ownership.Move{Src: name, Dst: other, Mutable: flag}
		case 3:
			in = ownership.Copy{Src: name, Dst: other}
		case 4:
			in = ownership.Clone{Src: name, Dst: other}
		case 5:
			in = ownership.BorrowShared{Name: name}
		case 6:
			in = ownership.BorrowExclusive{Name: name}
		case 7:
			in = ownership.OpenScope{}
		case 8:
			in = ownership.EndScope{}
		case 9:
			in = ownership.Consume{Name: name}
		default:
			in = ownership.Mutate{Name: name}
		}
		out = append(out, in)
	}
	return out
}

func FuzzCheckerInvariants(f *testing.F) {
	f.Add([]byte{0, 0x80, 5, 0, 2, 0x04, 1, 0})        // declare a, borrow a, move a->b, use a
	f.Add([]byte{0, 0xc0, 7, 0, 6, 0, 8, 0, 6, 0})     // sequential exclusive borrows
	f.Add([]byte{0, 0x80, 5, 0, 5, 0, 6, 0})           // exclusive after shared
	f.Add([]byte{8, 0, 8, 0, 1, 1})                    // underflow
	f.Add([]byte{8, 0, 0, 0x80, 5, 0})                 // declare and borrow after the root closed
	f.Add([]byte{0, 0x80, 7, 0, 0, 0x80, 10, 0, 8, 0}) // inner shadow then mutate

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 512 {
			data = data[:512]
		}
		instrs := decodeInstrs(data)
		strict := len(data) > 0 && data[0]&1 == 1

		c := ownership.New(ownership.WithStrictMutability(strict))
		var violations []ownership.ErrorKind
		for i, in := range instrs {
			before := c.Snapshot()
			err := c.Apply(in)
			after := c.Snapshot()
			if err != nil {
				violations = append(violations, ownership.KindOf(err))
				if !reflect.DeepEqual(before, after) {
					t.Fatalf("#%d %s rejected with %v but changed state", i, in, err)
				}
			}
			if err := testkit.CheckSnapshotInvariants(after); err != nil {
				t.Fatalf("after #%d %s: %v", i, in, err)
			}
		}
		_ = c.Finish()
		final := c.Snapshot()
		if err := testkit.CheckFinishedInvariants(final); err != nil {
			t.Fatalf("after finish: %v", err)
		}

		res := ownership.Check(instrs, ownership.WithStrictMutability(strict))
		if len(res.Violations) != len(violations) {
			t.Fatalf("Check found %d violations, Apply found %d", len(res.Violations), len(violations))
		}
		for i, v := range res.Violations {
			if v.Kind != violations[i] {
				t.Fatalf("violation %d: Check %s, Apply %s", i, v.Kind, violations[i])
			}
		}
	})
}
