package program

import (
	"ownck/internal/ownership"
)

// Sample is the starter program written by `ownck init`: the ownership
// rules of a short string-handling walkthrough, one function per rule.
func Sample() Document {
	return Document{Functions: []FunctionDoc{
		FunctionDocFor("copy_and_move", ownership.NoError,
			ownership.Declare{Name: "x", Kind: ownership.Value},
			ownership.Copy{Src: "x", Dst: "y"},
			ownership.Use{Name: "x"},
			ownership.Declare{Name: "str1", Kind: ownership.Resource},
			ownership.Move{Src: "str1", Dst: "str2"},
			ownership.Clone{Src: "str2", Dst: "str3"},
			ownership.Use{Name: "str2"},
			ownership.Use{Name: "str3"},
		),
		FunctionDocFor("takes_ownership", ownership.UseAfterMove,
			ownership.Declare{Name: "str4", Kind: ownership.Resource},
			ownership.Consume{Name: "str4"},
			ownership.Use{Name: "str4"},
		),
		FunctionDocFor("gives_back", ownership.NoError,
			ownership.Declare{Name: "str4", Kind: ownership.Resource},
			ownership.Move{Src: "str4", Dst: "str4", Mutable: true},
			ownership.BorrowShared{Name: "str4"},
			ownership.OpenScope{},
			ownership.EndScope{},
		),
		FunctionDocFor("sequential_mut_borrows", ownership.NoError,
			ownership.Declare{Name: "s", Kind: ownership.Resource, Mutable: true},
			ownership.OpenScope{},
			ownership.BorrowExclusive{Name: "s"},
			ownership.EndScope{},
			ownership.BorrowExclusive{Name: "s"},
		),
		FunctionDocFor("two_mut_borrows", ownership.ExclusiveBorrowConflict,
			ownership.Declare{Name: "s", Kind: ownership.Resource, Mutable: true},
			ownership.BorrowExclusive{Name: "s"},
			ownership.BorrowExclusive{Name: "s"},
		),
		FunctionDocFor("mut_after_shared", ownership.SharedBorrowConflict,
			ownership.Declare{Name: "s", Kind: ownership.Resource, Mutable: true},
			ownership.BorrowShared{Name: "s"},
			ownership.BorrowShared{Name: "s"},
			ownership.Use{Name: "s"},
			ownership.BorrowExclusive{Name: "s"},
		),
	}}
}
