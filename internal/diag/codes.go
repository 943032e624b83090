package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Ownership
	OwnInfo                Code = 1000
	OwnUnboundName         Code = 1001
	OwnUseAfterMove        Code = 1002
	OwnUseAfterDrop        Code = 1003
	OwnMoveOfValueType     Code = 1004
	OwnCopyOfResource      Code = 1005
	OwnMutationOfImmutable Code = 1006

	// Borrows
	BorrowInfo                  Code = 2000
	BorrowMoveWhileBorrowed     Code = 2001
	BorrowSharedConflict        Code = 2002
	BorrowExclusiveConflict     Code = 2003
	BorrowExclusiveOfImmutable  Code = 2004
	BorrowMutationWhileBorrowed Code = 2005

	// Caller contract and expectations
	ContractInfo           Code = 3000
	ContractScopeUnderflow Code = 3001
	ContractExpectMismatch Code = 3002
	ContractExpectUnmet    Code = 3003

	// Program documents
	PrgInfo              Code = 4000
	PrgDecode            Code = 4001
	PrgUnknownOp         Code = 4002
	PrgMissingField      Code = 4003
	PrgUnknownKind       Code = 4004
	PrgUnknownExpect     Code = 4005
	PrgEmptyFunction     Code = 4006
	PrgDuplicateFunction Code = 4007

	// IO
	IOInfo     Code = 5000
	IOReadFile Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	OwnInfo:                "Ownership information",
	OwnUnboundName:         "Name is not bound",
	OwnUseAfterMove:        "Use after move",
	OwnUseAfterDrop:        "Use after drop",
	OwnMoveOfValueType:     "Value types are copied, not moved",
	OwnCopyOfResource:      "Resources cannot be copied implicitly",
	OwnMutationOfImmutable: "Mutation of immutable binding",

	BorrowInfo:                  "Borrow information",
	BorrowMoveWhileBorrowed:     "Move while borrowed",
	BorrowSharedConflict:        "Exclusive borrow while shared borrows are active",
	BorrowExclusiveConflict:     "Borrow while an exclusive borrow is active",
	BorrowExclusiveOfImmutable:  "Exclusive borrow of immutable binding",
	BorrowMutationWhileBorrowed: "Mutation while borrowed",

	ContractInfo:           "Contract information",
	ContractScopeUnderflow: "Scope closed with no open scope",
	ContractExpectMismatch: "Unexpected violation",
	ContractExpectUnmet:    "Expected violation did not occur",

	PrgInfo:              "Program information",
	PrgDecode:            "Malformed program document",
	PrgUnknownOp:         "Unknown instruction",
	PrgMissingField:      "Missing instruction field",
	PrgUnknownKind:       "Unknown binding kind",
	PrgUnknownExpect:     "Unknown expected violation",
	PrgEmptyFunction:     "Function has no instructions",
	PrgDuplicateFunction: "Duplicate function name",

	IOInfo:     "IO information",
	IOReadFile: "Cannot read file",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("OWN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("BRW%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CTR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("PRG%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
