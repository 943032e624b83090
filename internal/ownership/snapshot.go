package ownership

// BindingView is the read-only state of one binding at snapshot time.
type BindingView struct {
	ID        BindingID
	Name      string
	Kind      Kind
	State     State
	Mutable   bool
	Scope     ScopeID
	Live      bool
	Shared    int
	Exclusive bool
}

// Snapshot is a diagnostic copy of the checker state.
type Snapshot struct {
	// Bindings lists every binding ever declared, in declaration order.
	Bindings []BindingView
	// Drops lists bindings in the order they transitioned to Dropped.
	Drops []BindingID
	// Borrows lists every borrow ever created, released ones included.
	Borrows []BorrowInfo
	// Depth is the number of open scopes.
	Depth int
}

// Snapshot copies the current state; it never mutates the checker.
func (c *Checker) Snapshot() Snapshot {
	all := c.bindings.All()
	views := make([]BindingView, len(all))
	for i, b := range all {
		shared, exclusive := c.borrows.Counts(b.ID)
		views[i] = BindingView{
			ID:        b.ID,
			Name:      b.Name,
			Kind:      b.Kind,
			State:     b.State,
			Mutable:   b.Mutable,
			Scope:     b.Scope,
			Live:      b.Live,
			Shared:    shared,
			Exclusive: exclusive,
		}
	}
	return Snapshot{
		Bindings: views,
		Drops:    append([]BindingID(nil), c.drops...),
		Borrows:  c.borrows.Infos(),
		Depth:    c.scopes.Depth(),
	}
}

// States maps each name to the state of the binding that name resolves
// to. Names with no live binding report their most recent binding.
func (s Snapshot) States() map[string]State {
	out := make(map[string]State, len(s.Bindings))
	live := make(map[string]bool, len(s.Bindings))
	for _, b := range s.Bindings {
		if b.Live {
			out[b.Name] = b.State
			live[b.Name] = true
			continue
		}
		if !live[b.Name] {
			out[b.Name] = b.State
		}
	}
	return out
}

// Binding returns the view for id.
func (s Snapshot) Binding(id BindingID) (BindingView, bool) {
	if id == NoBindingID || int(id) > len(s.Bindings) {
		return BindingView{}, false
	}
	return s.Bindings[id-1], true
}

// DropNames returns the names of dropped bindings in drop order.
func (s Snapshot) DropNames() []string {
	out := make([]string, 0, len(s.Drops))
	for _, id := range s.Drops {
		if b, ok := s.Binding(id); ok {
			out = append(out, b.Name)
		}
	}
	return out
}

// Borrow returns the borrow with id.
func (s Snapshot) Borrow(id BorrowID) (BorrowInfo, bool) {
	if id == NoBorrowID || int(id) > len(s.Borrows) {
		return BorrowInfo{}, false
	}
	return s.Borrows[id-1], true
}
