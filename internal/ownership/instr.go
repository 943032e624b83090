package ownership

import "fmt"

// Op is the opcode of an instruction.
type Op uint8

const (
	OpInvalid Op = iota
	OpDeclare
	OpUse
	OpMove
	OpCopy
	OpClone
	OpBorrowShared
	OpBorrowExclusive
	OpOpenScope
	OpEndScope
	OpConsume
	OpMutate
)

var opNames = [...]string{
	OpInvalid:         "invalid",
	OpDeclare:         "declare",
	OpUse:             "use",
	OpMove:            "move",
	OpCopy:            "copy",
	OpClone:           "clone",
	OpBorrowShared:    "borrow",
	OpBorrowExclusive: "borrow_mut",
	OpOpenScope:       "open",
	OpEndScope:        "end",
	OpConsume:         "consume",
	OpMutate:          "mutate",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "invalid"
}

// ParseOp maps a document opcode to Op.
func ParseOp(s string) (Op, bool) {
	for i, name := range opNames {
		if i != int(OpInvalid) && name == s {
			return Op(i), true
		}
	}
	return OpInvalid, false
}

// Instr is a closed set of instructions; only this package can add variants.
type Instr interface {
	Op() Op
	String() string
	sealed()
}

// Declare introduces a new Owned binding in the current scope.
type Declare struct {
	Name    string
	Kind    Kind
	Mutable bool
}

// Use reads a binding.
type Use struct{ Name string }

// Move transfers ownership of a resource from Src to a new binding Dst.
// Mutable marks Dst as `mut`.
type Move struct {
	Src, Dst string
	Mutable  bool
}

// Copy duplicates a value binding into a new binding Dst.
type Copy struct {
	Src, Dst string
	Mutable  bool
}

// Clone duplicates any owned binding into a new independent binding Dst.
type Clone struct {
	Src, Dst string
	Mutable  bool
}

// BorrowShared takes a shared borrow scoped to the current scope.
type BorrowShared struct{ Name string }

// BorrowExclusive takes the exclusive borrow scoped to the current scope.
type BorrowExclusive struct{ Name string }

// OpenScope pushes a nested scope.
type OpenScope struct{}

// EndScope pops the innermost scope.
type EndScope struct{}

// Consume passes a binding by value to a callee: resources move out, values are copied.
type Consume struct{ Name string }

// Mutate writes through the owning binding.
type Mutate struct{ Name string }

func (Declare) Op() Op         { return OpDeclare }
func (Use) Op() Op             { return OpUse }
func (Move) Op() Op            { return OpMove }
func (Copy) Op() Op            { return OpCopy }
func (Clone) Op() Op           { return OpClone }
func (BorrowShared) Op() Op    { return OpBorrowShared }
func (BorrowExclusive) Op() Op { return OpBorrowExclusive }
func (OpenScope) Op() Op       { return OpOpenScope }
func (EndScope) Op() Op        { return OpEndScope }
func (Consume) Op() Op         { return OpConsume }
func (Mutate) Op() Op          { return OpMutate }

func (Declare) sealed()         {}
func (Use) sealed()             {}
func (Move) sealed()            {}
func (Copy) sealed()            {}
func (Clone) sealed()           {}
func (BorrowShared) sealed()    {}
func (BorrowExclusive) sealed() {}
func (OpenScope) sealed()       {}
func (EndScope) sealed()        {}
func (Consume) sealed()         {}
func (Mutate) sealed()          {}

func (i Declare) String() string {
	if i.Mutable {
		return fmt.Sprintf("declare mut %s: %s", i.Name, i.Kind)
	}
	return fmt.Sprintf("declare %s: %s", i.Name, i.Kind)
}
func (i Use) String() string             { return "use " + i.Name }
func (i Move) String() string            { return fmt.Sprintf("move %s -> %s", i.Src, i.Dst) }
func (i Copy) String() string            { return fmt.Sprintf("copy %s -> %s", i.Src, i.Dst) }
func (i Clone) String() string           { return fmt.Sprintf("clone %s -> %s", i.Src, i.Dst) }
func (i BorrowShared) String() string    { return "borrow &" + i.Name }
func (i BorrowExclusive) String() string { return "borrow &mut " + i.Name }
func (OpenScope) String() string         { return "open {" }
func (EndScope) String() string          { return "end }" }
func (i Consume) String() string         { return "consume " + i.Name }
func (i Mutate) String() string          { return "mutate " + i.Name }

// subject returns the binding name an instruction is checked against.
func subject(in Instr) string {
	switch in := in.(type) {
	case Declare:
		return in.Name
	case Use:
		return in.Name
	case Move:
		return in.Src
	case Copy:
		return in.Src
	case Clone:
		return in.Src
	case BorrowShared:
		return in.Name
	case BorrowExclusive:
		return in.Name
	case Consume:
		return in.Name
	case Mutate:
		return in.Name
	}
	return ""
}
