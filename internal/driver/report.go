package driver

import (
	"fmt"

	"ownck/internal/diag"
	"ownck/internal/ownership"
)

// CodeFor maps a violation kind onto its diagnostic code.
func CodeFor(kind ownership.ErrorKind) diag.Code {
	switch kind {
	case ownership.UnboundName:
		return diag.OwnUnboundName
	case ownership.UseAfterMove:
		return diag.OwnUseAfterMove
	case ownership.UseAfterDrop:
		return diag.OwnUseAfterDrop
	case ownership.MoveOfValueType:
		return diag.OwnMoveOfValueType
	case ownership.CopyOfResource:
		return diag.OwnCopyOfResource
	case ownership.MutationOfImmutable:
		return diag.OwnMutationOfImmutable
	case ownership.MoveWhileBorrowed:
		return diag.BorrowMoveWhileBorrowed
	case ownership.SharedBorrowConflict:
		return diag.BorrowSharedConflict
	case ownership.ExclusiveBorrowConflict:
		return diag.BorrowExclusiveConflict
	case ownership.ExclusiveBorrowOfImmutable:
		return diag.BorrowExclusiveOfImmutable
	case ownership.MutationWhileBorrowed:
		return diag.BorrowMutationWhileBorrowed
	case ownership.ScopeUnderflow:
		return diag.ContractScopeUnderflow
	default:
		return diag.UnknownCode
	}
}

func violationMessage(v *ownership.Violation) string {
	name := v.Name
	switch v.Kind {
	case ownership.UnboundName:
		return fmt.Sprintf("%q is not bound in this scope", name)
	case ownership.UseAfterMove:
		return fmt.Sprintf("use of moved value %q", name)
	case ownership.UseAfterDrop:
		return fmt.Sprintf("use of dropped value %q", name)
	case ownership.MoveOfValueType:
		return fmt.Sprintf("%q is a value type and cannot be moved", name)
	case ownership.CopyOfResource:
		return fmt.Sprintf("%q owns a resource and cannot be copied", name)
	case ownership.MutationOfImmutable:
		return fmt.Sprintf("cannot mutate immutable binding %q", name)
	case ownership.MoveWhileBorrowed:
		return fmt.Sprintf("cannot move %q while it is borrowed", name)
	case ownership.SharedBorrowConflict:
		return fmt.Sprintf("cannot borrow %q as exclusive because it is also borrowed as shared", name)
	case ownership.ExclusiveBorrowConflict:
		return fmt.Sprintf("cannot borrow %q because it is already borrowed as exclusive", name)
	case ownership.ExclusiveBorrowOfImmutable:
		return fmt.Sprintf("cannot borrow immutable binding %q as exclusive", name)
	case ownership.MutationWhileBorrowed:
		return fmt.Sprintf("cannot mutate %q while it is borrowed", name)
	case ownership.ScopeUnderflow:
		if v.Op == ownership.OpEndScope {
			return "end of scope without a matching open scope"
		}
		return "instruction applied after the root scope was closed"
	default:
		return v.Kind.String()
	}
}

func violationHint(kind ownership.ErrorKind) string {
	switch kind {
	case ownership.MoveOfValueType:
		return "use copy instead"
	case ownership.CopyOfResource:
		return "use move or clone instead"
	case ownership.ExclusiveBorrowOfImmutable, ownership.MutationOfImmutable:
		return "declare the binding with mutable = true"
	}
	return ""
}

// ViolationDiagnostic builds the error diagnostic for v. snap supplies the
// conflicting borrow, whose creating instruction becomes a note.
func ViolationDiagnostic(file, function string, v *ownership.Violation, snap ownership.Snapshot) diag.Diagnostic {
	d := diag.NewError(CodeFor(v.Kind), diag.At(file, function, v.Index), violationMessage(v))
	if info, ok := snap.Borrow(v.Conflict); ok {
		d = d.WithNote(diag.At(file, function, info.Index),
			fmt.Sprintf("%s borrow of %q created here", info.Mode, v.Name))
	}
	if hint := violationHint(v.Kind); hint != "" {
		d = d.WithNote(diag.At(file, function, v.Index), hint)
	}
	return d
}

func expectMismatch(file, function string, expect ownership.ErrorKind, v *ownership.Violation, snap ownership.Snapshot) diag.Diagnostic {
	d := diag.NewError(diag.ContractExpectMismatch, diag.At(file, function, v.Index),
		fmt.Sprintf("expected %s, found %s", expect, v.Kind))
	got := ViolationDiagnostic(file, function, v, snap)
	d = d.WithNote(got.Primary, got.Message)
	d.Notes = append(d.Notes, got.Notes...)
	return d
}

func expectUnmet(file, function string, expect ownership.ErrorKind) diag.Diagnostic {
	return diag.NewError(diag.ContractExpectUnmet, diag.At(file, function, -1),
		fmt.Sprintf("expected %s, but the function passed", expect))
}
