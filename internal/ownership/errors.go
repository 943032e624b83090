package ownership

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates every rule a program can violate.
// ErrorKind implements error so callers can match with errors.Is.
type ErrorKind uint8

const (
	NoError ErrorKind = iota
	UnboundName
	UseAfterMove
	UseAfterDrop
	MoveWhileBorrowed
	MoveOfValueType
	CopyOfResource
	SharedBorrowConflict
	ExclusiveBorrowConflict
	ScopeUnderflow
	ExclusiveBorrowOfImmutable
	MutationOfImmutable
	MutationWhileBorrowed
)

var errorKindNames = [...]string{
	NoError:                    "no_error",
	UnboundName:                "unbound_name",
	UseAfterMove:               "use_after_move",
	UseAfterDrop:               "use_after_drop",
	MoveWhileBorrowed:          "move_while_borrowed",
	MoveOfValueType:            "move_of_value_type",
	CopyOfResource:             "copy_of_resource",
	SharedBorrowConflict:       "shared_borrow_conflict",
	ExclusiveBorrowConflict:    "exclusive_borrow_conflict",
	ScopeUnderflow:             "scope_underflow",
	ExclusiveBorrowOfImmutable: "exclusive_borrow_of_immutable",
	MutationOfImmutable:        "mutation_of_immutable",
	MutationWhileBorrowed:      "mutation_while_borrowed",
}

// ErrorKinds lists every violation kind in declaration order.
func ErrorKinds() []ErrorKind {
	out := make([]ErrorKind, 0, len(errorKindNames)-1)
	for k := UnboundName; int(k) < len(errorKindNames); k++ {
		out = append(out, k)
	}
	return out
}

// String returns the snake_case name used in program documents.
func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "unknown"
}

func (k ErrorKind) Error() string { return k.String() }

// ParseErrorKind maps a snake_case name back to its kind.
func ParseErrorKind(s string) (ErrorKind, bool) {
	for i, name := range errorKindNames {
		if i != int(NoError) && name == s {
			return ErrorKind(i), true
		}
	}
	return NoError, false
}

// IsContractViolation reports kinds that describe caller misuse rather than
// a finding about the analysed program.
func (k ErrorKind) IsContractViolation() bool {
	return k == ScopeUnderflow
}

// Violation is the error returned for a rejected instruction.
type Violation struct {
	Kind  ErrorKind
	Index int    // position of the instruction in program order
	Op    Op     // opcode of the rejected instruction
	Name  string // binding the rule was checked against
	// Binding is the resolved record, NoBindingID for UnboundName/ScopeUnderflow.
	Binding BindingID
	// Conflict is the borrow that blocked the instruction, if any.
	Conflict BorrowID
}

func (v *Violation) Error() string {
	if v.Name == "" {
		return fmt.Sprintf("#%d %s: %s", v.Index, v.Op, v.Kind)
	}
	return fmt.Sprintf("#%d %s %q: %s", v.Index, v.Op, v.Name, v.Kind)
}

// Is matches both ErrorKind targets and violations of the same kind.
func (v *Violation) Is(target error) bool {
	var kind ErrorKind
	if errors.As(target, &kind) {
		return v.Kind == kind
	}
	var other *Violation
	if errors.As(target, &other) {
		return other.Kind == v.Kind
	}
	return false
}

// KindOf extracts the ErrorKind from err, NoError when err is not a violation.
func KindOf(err error) ErrorKind {
	var v *Violation
	if errors.As(err, &v) {
		return v.Kind
	}
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind
	}
	return NoError
}
