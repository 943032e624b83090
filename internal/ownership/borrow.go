package ownership

// BorrowInfo stores metadata about each borrow.
type BorrowInfo struct {
	ID     BorrowID
	Mode   BorrowMode
	Target BindingID
	Scope  ScopeID
	// Index of the instruction that created the borrow.
	Index  int
	Active bool
}

type borrowState struct {
	shared    []BorrowID
	exclusive BorrowID
}

func (s borrowState) empty() bool {
	return len(s.shared) == 0 && s.exclusive == NoBorrowID
}

// BorrowTable tracks active borrows per binding and per creating scope.
type BorrowTable struct {
	infos        []BorrowInfo
	targetState  map[BindingID]borrowState
	scopeBorrows map[ScopeID][]BorrowID
}

// NewBorrowTable builds an empty borrow table ready for tracking.
func NewBorrowTable() *BorrowTable {
	return &BorrowTable{
		infos:        []BorrowInfo{{}},
		targetState:  make(map[BindingID]borrowState),
		scopeBorrows: make(map[ScopeID][]BorrowID),
	}
}

// Conflict reports the borrow that blocks a new borrow of mode on target.
func (bt *BorrowTable) Conflict(target BindingID, mode BorrowMode) (ErrorKind, BorrowID) {
	state := bt.targetState[target]
	switch mode {
	case Shared:
		if state.exclusive != NoBorrowID {
			return ExclusiveBorrowConflict, state.exclusive
		}
	case Exclusive:
		if len(state.shared) > 0 {
			return SharedBorrowConflict, state.shared[0]
		}
		if state.exclusive != NoBorrowID {
			return ExclusiveBorrowConflict, state.exclusive
		}
	}
	return NoError, NoBorrowID
}

// Begin registers a borrow of target living until scope closes. Callers must
// check Conflict first.
func (bt *BorrowTable) Begin(target BindingID, mode BorrowMode, scope ScopeID, index int) BorrowID {
	id := nextID[BorrowID](len(bt.infos), "borrow")
	bt.infos = append(bt.infos, BorrowInfo{
		ID:     id,
		Mode:   mode,
		Target: target,
		Scope:  scope,
		Index:  index,
		Active: true,
	})
	state := bt.targetState[target]
	switch mode {
	case Shared:
		state.shared = append(state.shared, id)
	case Exclusive:
		state.exclusive = id
	}
	bt.targetState[target] = state
	bt.scopeBorrows[scope] = append(bt.scopeBorrows[scope], id)
	return id
}

// Blocking returns any active borrow on target; moves and mutations need none.
func (bt *BorrowTable) Blocking(target BindingID) BorrowID {
	state, ok := bt.targetState[target]
	if !ok {
		return NoBorrowID
	}
	if len(state.shared) > 0 {
		return state.shared[0]
	}
	return state.exclusive
}

// Counts returns the number of active shared borrows and whether an
// exclusive borrow is held.
func (bt *BorrowTable) Counts(target BindingID) (shared int, exclusive bool) {
	state := bt.targetState[target]
	return len(state.shared), state.exclusive != NoBorrowID
}

// EndScope releases every borrow created in scope, whatever its target.
func (bt *BorrowTable) EndScope(scope ScopeID) []BorrowID {
	ids := bt.scopeBorrows[scope]
	for _, id := range ids {
		bt.release(id)
	}
	delete(bt.scopeBorrows, scope)
	return ids
}

// ReleaseTarget drops every active borrow of target. Used when a binding is
// dropped by same-scope shadowing.
func (bt *BorrowTable) ReleaseTarget(target BindingID) {
	state, ok := bt.targetState[target]
	if !ok {
		return
	}
	ids := append([]BorrowID(nil), state.shared...)
	if state.exclusive != NoBorrowID {
		ids = append(ids, state.exclusive)
	}
	for _, id := range ids {
		bt.release(id)
	}
}

func (bt *BorrowTable) release(id BorrowID) {
	info := bt.Info(id)
	if info == nil || !info.Active {
		return
	}
	info.Active = false
	state := bt.targetState[info.Target]
	switch info.Mode {
	case Shared:
		state.shared = dropBorrowID(state.shared, id)
	case Exclusive:
		if state.exclusive == id {
			state.exclusive = NoBorrowID
		}
	}
	if state.empty() {
		delete(bt.targetState, info.Target)
	} else {
		bt.targetState[info.Target] = state
	}
}

// Info returns metadata for the borrow.
func (bt *BorrowTable) Info(id BorrowID) *BorrowInfo {
	if id == NoBorrowID || int(id) >= len(bt.infos) {
		return nil
	}
	return &bt.infos[id]
}

// Infos returns a shallow copy of stored borrow infos (excluding sentinel).
func (bt *BorrowTable) Infos() []BorrowInfo {
	if len(bt.infos) <= 1 {
		return nil
	}
	out := make([]BorrowInfo, len(bt.infos)-1)
	copy(out, bt.infos[1:])
	return out
}

func dropBorrowID(ids []BorrowID, target BorrowID) []BorrowID {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
