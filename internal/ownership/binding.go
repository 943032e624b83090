package ownership

// Binding is a named slot holding the ownership state of one value.
type Binding struct {
	ID      BindingID
	Name    string
	Kind    Kind
	State   State
	Mutable bool
	Scope   ScopeID
	// Live is false once the binding is popped off its name stack.
	Live bool
}

// BindingTable maps names to stacks of bindings so shadowing can be undone
// when the shadowing scope closes.
type BindingTable struct {
	infos []Binding
	names map[string][]BindingID
}

// NewBindingTable builds an empty table.
func NewBindingTable() *BindingTable {
	return &BindingTable{
		infos: []Binding{{}},
		names: make(map[string][]BindingID),
	}
}

// Declare creates a new Owned binding in scope. It never fails; an existing
// binding with the same name is shadowed, not touched.
func (bt *BindingTable) Declare(name string, kind Kind, mutable bool, scope ScopeID) BindingID {
	id := nextID[BindingID](len(bt.infos), "binding")
	bt.infos = append(bt.infos, Binding{
		ID:      id,
		Name:    name,
		Kind:    kind,
		State:   Owned,
		Mutable: mutable,
		Scope:   scope,
		Live:    true,
	})
	bt.names[name] = append(bt.names[name], id)
	return id
}

// Resolve returns the innermost live binding named name.
func (bt *BindingTable) Resolve(name string) (BindingID, error) {
	stack := bt.names[name]
	if len(stack) == 0 {
		return NoBindingID, UnboundName
	}
	return stack[len(stack)-1], nil
}

// Get returns the binding record or nil.
func (bt *BindingTable) Get(id BindingID) *Binding {
	if id == NoBindingID || int(id) >= len(bt.infos) {
		return nil
	}
	return &bt.infos[id]
}

// State returns the state of id; unknown ids read as Dropped.
func (bt *BindingTable) State(id BindingID) State {
	if b := bt.Get(id); b != nil {
		return b.State
	}
	return Dropped
}

// SetState moves id to state. Transitions out of MovedOut or Dropped are
// refused, so the call reports whether the state changed.
func (bt *BindingTable) SetState(id BindingID, state State) bool {
	b := bt.Get(id)
	if b == nil || b.State == state {
		return false
	}
	if b.State != Owned {
		return false
	}
	b.State = state
	return true
}

// Pop removes id from its name stack. Ids are popped in reverse declaration
// order, so id is normally the top of the stack.
func (bt *BindingTable) Pop(id BindingID) {
	b := bt.Get(id)
	if b == nil || !b.Live {
		return
	}
	b.Live = false
	stack := bt.names[b.Name]
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == id {
			stack = append(stack[:i], stack[i+1:]...)
			break
		}
	}
	if len(stack) == 0 {
		delete(bt.names, b.Name)
		return
	}
	bt.names[b.Name] = stack
}

// Len returns the number of bindings ever declared.
func (bt *BindingTable) Len() int { return len(bt.infos) - 1 }

// All returns a copy of every binding in declaration order.
func (bt *BindingTable) All() []Binding {
	if len(bt.infos) <= 1 {
		return nil
	}
	out := make([]Binding, len(bt.infos)-1)
	copy(out, bt.infos[1:])
	return out
}
