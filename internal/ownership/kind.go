package ownership

// Kind separates trivially duplicable values from single-owner resources.
type Kind uint8

const (
	// Value is duplicated by Copy and never moved.
	Value Kind = iota
	// Resource has one owner; duplication needs an explicit Clone.
	Resource
)

func (k Kind) String() string {
	switch k {
	case Value:
		return "value"
	case Resource:
		return "resource"
	default:
		return "unknown"
	}
}

// State is the ownership state of a binding.
type State uint8

const (
	Owned State = iota
	MovedOut
	Dropped
)

func (s State) String() string {
	switch s {
	case Owned:
		return "owned"
	case MovedOut:
		return "moved"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// BorrowMode differentiates shared vs exclusive borrows.
type BorrowMode uint8

const (
	Shared BorrowMode = iota
	Exclusive
)

func (m BorrowMode) String() string {
	switch m {
	case Shared:
		return "shared"
	case Exclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}
