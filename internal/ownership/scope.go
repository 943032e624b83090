package ownership

type scope struct {
	id       ScopeID
	bindings []BindingID
}

// ScopeStack keeps lexical nesting and the bindings each scope introduced.
type ScopeStack struct {
	stack []scope
	next  int
}

// NewScopeStack returns an empty stack; callers open the root scope.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{next: 1}
}

// Open pushes a new empty scope.
func (ss *ScopeStack) Open() ScopeID {
	id := nextID[ScopeID](ss.next, "scope")
	ss.next++
	ss.stack = append(ss.stack, scope{id: id})
	return id
}

// Current returns the innermost scope or NoScopeID.
func (ss *ScopeStack) Current() ScopeID {
	if len(ss.stack) == 0 {
		return NoScopeID
	}
	return ss.stack[len(ss.stack)-1].id
}

// Depth returns the number of open scopes.
func (ss *ScopeStack) Depth() int { return len(ss.stack) }

// Introduce records id as declared directly in the innermost scope.
func (ss *ScopeStack) Introduce(id BindingID) {
	if len(ss.stack) == 0 {
		return
	}
	top := &ss.stack[len(ss.stack)-1]
	top.bindings = append(top.bindings, id)
}

// Close pops the innermost scope and returns its bindings in reverse
// introduction order, which is the order they must be dropped in.
func (ss *ScopeStack) Close() (ScopeID, []BindingID, error) {
	if len(ss.stack) == 0 {
		return NoScopeID, nil, ScopeUnderflow
	}
	top := ss.stack[len(ss.stack)-1]
	ss.stack = ss.stack[:len(ss.stack)-1]
	rev := make([]BindingID, len(top.bindings))
	for i, id := range top.bindings {
		rev[len(top.bindings)-1-i] = id
	}
	return top.id, rev, nil
}
