package ownership

import (
	"fmt"
	"strconv"

	"ownck/internal/trace"
)

// Option configures a Checker.
type Option func(*Checker)

// WithStrictMutability requires `mut` bindings for exclusive borrows and mutations.
func WithStrictMutability(strict bool) Option {
	return func(c *Checker) { c.strict = strict }
}

// WithTracer routes one debug event per applied instruction to t.
func WithTracer(t trace.Tracer) Option {
	return func(c *Checker) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Checker validates one instruction sequence. It is not safe for concurrent
// use; independent sequences get independent checkers.
type Checker struct {
	bindings *BindingTable
	borrows  *BorrowTable
	scopes   *ScopeStack

	strict   bool
	tracer   trace.Tracer
	index    int // number of Apply calls so far
	first    *Violation
	drops    []BindingID
	finished bool
}

// New creates a checker with the root scope open.
func New(opts ...Option) *Checker {
	c := &Checker{
		bindings: NewBindingTable(),
		borrows:  NewBorrowTable(),
		scopes:   NewScopeStack(),
		tracer:   trace.Nop,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scopes.Open()
	return c
}

// Apply checks in against the current state and applies its effect. A
// rejected instruction leaves the state untouched, so callers may continue
// applying instructions to collect further violations. Once the root scope
// is closed, by EndScope or Finish, every instruction is a ScopeUnderflow.
func (c *Checker) Apply(in Instr) error {
	idx := c.index
	c.index++
	var err *Violation
	if c.finished || c.scopes.Depth() == 0 {
		err = c.violation(ScopeUnderflow, idx, in, NoBindingID, NoBorrowID)
	} else {
		err = c.dispatch(idx, in)
	}
	c.traceApply(idx, in, err)
	if err != nil {
		if c.first == nil {
			c.first = err
		}
		return err
	}
	return nil
}

func (c *Checker) dispatch(idx int, in Instr) *Violation {
	switch in := in.(type) {
	case Declare:
		c.declare(in.Name, in.Kind, in.Mutable)
		return nil
	case Use:
		_, v := c.owned(idx, in, in.Name)
		return v
	case Move:
		return c.move(idx, in)
	case Copy:
		return c.copyValue(idx, in)
	case Clone:
		return c.clone(idx, in)
	case BorrowShared:
		return c.borrow(idx, in, in.Name, Shared)
	case BorrowExclusive:
		return c.borrow(idx, in, in.Name, Exclusive)
	case OpenScope:
		c.scopes.Open()
		return nil
	case EndScope:
		c.closeScope()
		return nil
	case Consume:
		return c.consume(idx, in)
	case Mutate:
		return c.mutate(idx, in)
	default:
		panic(fmt.Sprintf("ownership: unhandled instruction %T", in))
	}
}

// Finish closes every open scope, root included, and returns the first
// violation reported by Apply.
func (c *Checker) Finish() error {
	for c.scopes.Depth() > 0 {
		c.closeScope()
	}
	c.finished = true
	if c.first != nil {
		return c.first
	}
	return nil
}

// Violation returns the first recorded violation or nil.
func (c *Checker) Violation() *Violation { return c.first }

// Depth returns the number of open scopes.
func (c *Checker) Depth() int { return c.scopes.Depth() }

func (c *Checker) declare(name string, kind Kind, mutable bool) BindingID {
	current := c.scopes.Current()
	// повторное объявление в той же области: старое значение уничтожается
	if prev, err := c.bindings.Resolve(name); err == nil {
		if b := c.bindings.Get(prev); b.Scope == current {
			c.borrows.ReleaseTarget(prev)
			if c.bindings.SetState(prev, Dropped) {
				c.drops = append(c.drops, prev)
			}
		}
	}
	id := c.bindings.Declare(name, kind, mutable, current)
	c.scopes.Introduce(id)
	return id
}

func (c *Checker) closeScope() {
	scope, ids, err := c.scopes.Close()
	if err != nil {
		return
	}
	c.borrows.EndScope(scope)
	for _, id := range ids {
		if c.bindings.SetState(id, Dropped) {
			c.drops = append(c.drops, id)
		}
		c.bindings.Pop(id)
	}
}

// owned resolves name and requires it to still own its value.
func (c *Checker) owned(idx int, in Instr, name string) (*Binding, *Violation) {
	id, err := c.bindings.Resolve(name)
	if err != nil {
		return nil, c.violation(UnboundName, idx, in, NoBindingID, NoBorrowID)
	}
	b := c.bindings.Get(id)
	switch b.State {
	case MovedOut:
		return b, c.violation(UseAfterMove, idx, in, id, NoBorrowID)
	case Dropped:
		return b, c.violation(UseAfterDrop, idx, in, id, NoBorrowID)
	}
	return b, nil
}

func (c *Checker) move(idx int, in Move) *Violation {
	src, v := c.owned(idx, in, in.Src)
	if v != nil {
		return v
	}
	if src.Kind == Value {
		return c.violation(MoveOfValueType, idx, in, src.ID, NoBorrowID)
	}
	if blocker := c.borrows.Blocking(src.ID); blocker.IsValid() {
		return c.violation(MoveWhileBorrowed, idx, in, src.ID, blocker)
	}
	c.bindings.SetState(src.ID, MovedOut)
	c.declare(in.Dst, src.Kind, in.Mutable)
	return nil
}

func (c *Checker) copyValue(idx int, in Copy) *Violation {
	src, v := c.owned(idx, in, in.Src)
	if v != nil {
		return v
	}
	if src.Kind == Resource {
		return c.violation(CopyOfResource, idx, in, src.ID, NoBorrowID)
	}
	c.declare(in.Dst, Value, in.Mutable)
	return nil
}

func (c *Checker) clone(idx int, in Clone) *Violation {
	src, v := c.owned(idx, in, in.Src)
	if v != nil {
		return v
	}
	c.declare(in.Dst, src.Kind, in.Mutable)
	return nil
}

func (c *Checker) borrow(idx int, in Instr, name string, mode BorrowMode) *Violation {
	b, v := c.owned(idx, in, name)
	if v != nil {
		return v
	}
	if mode == Exclusive && c.strict && !b.Mutable {
		return c.violation(ExclusiveBorrowOfImmutable, idx, in, b.ID, NoBorrowID)
	}
	if kind, blocker := c.borrows.Conflict(b.ID, mode); kind != NoError {
		return c.violation(kind, idx, in, b.ID, blocker)
	}
	c.borrows.Begin(b.ID, mode, c.scopes.Current(), idx)
	return nil
}

func (c *Checker) consume(idx int, in Consume) *Violation {
	b, v := c.owned(idx, in, in.Name)
	if v != nil {
		return v
	}
	if b.Kind == Value {
		return nil
	}
	if blocker := c.borrows.Blocking(b.ID); blocker.IsValid() {
		return c.violation(MoveWhileBorrowed, idx, in, b.ID, blocker)
	}
	c.bindings.SetState(b.ID, MovedOut)
	return nil
}

func (c *Checker) mutate(idx int, in Mutate) *Violation {
	b, v := c.owned(idx, in, in.Name)
	if v != nil {
		return v
	}
	if c.strict && !b.Mutable {
		return c.violation(MutationOfImmutable, idx, in, b.ID, NoBorrowID)
	}
	if blocker := c.borrows.Blocking(b.ID); blocker.IsValid() {
		return c.violation(MutationWhileBorrowed, idx, in, b.ID, blocker)
	}
	return nil
}

func (c *Checker) violation(kind ErrorKind, idx int, in Instr, id BindingID, conflict BorrowID) *Violation {
	var op Op
	if in != nil {
		op = in.Op()
	}
	return &Violation{
		Kind:     kind,
		Index:    idx,
		Op:       op,
		Name:     subject(in),
		Binding:  id,
		Conflict: conflict,
	}
}

func (c *Checker) traceApply(idx int, in Instr, v *Violation) {
	if !c.tracer.Enabled() || !c.tracer.Level().ShouldEmit(trace.ScopeInstr) {
		return
	}
	detail := "ok"
	if v != nil {
		detail = v.Kind.String()
	}
	name := "#" + strconv.Itoa(idx)
	if in != nil {
		name += " " + in.String()
	}
	trace.Point(c.tracer, trace.ScopeInstr, name, detail)
}
