package ownership

import (
	"fmt"

	"fortio.org/safecast"
)

// BindingID identifies a binding record. Zero is reserved.
type BindingID uint32

// NoBindingID marks the absence of a binding.
const NoBindingID BindingID = 0

// IsValid reports whether the id references a binding.
func (id BindingID) IsValid() bool { return id != NoBindingID }

// BorrowID identifies a borrow record. Zero is reserved.
type BorrowID uint32

// NoBorrowID marks the absence of a borrow.
const NoBorrowID BorrowID = 0

// IsValid reports whether the id references a borrow.
func (id BorrowID) IsValid() bool { return id != NoBorrowID }

// ScopeID identifies a lexical scope. Ids grow monotonically, the root scope is 1.
type ScopeID uint32

// NoScopeID marks the absence of a scope.
const NoScopeID ScopeID = 0

// IsValid reports whether the id references a scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// nextID converts a table length into the next sentinel-offset id.
func nextID[T ~uint32](n int, what string) T {
	value, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("%s table overflow: %w", what, err))
	}
	return T(value)
}
