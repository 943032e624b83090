package ownership

// Result is the outcome of checking a whole instruction sequence.
type Result struct {
	// Violations holds every rejected instruction in program order.
	Violations []*Violation
	Snapshot   Snapshot
}

// OK reports whether the sequence had no violation.
func (r Result) OK() bool { return len(r.Violations) == 0 }

// First returns the first violation or nil.
func (r Result) First() *Violation {
	if len(r.Violations) == 0 {
		return nil
	}
	return r.Violations[0]
}

// Check applies every instruction to a fresh checker, keeps going after
// violations, and finishes the checker. The snapshot is taken after Finish.
func Check(instrs []Instr, opts ...Option) Result {
	c := New(opts...)
	var res Result
	for _, in := range instrs {
		if err := c.Apply(in); err != nil {
			res.Violations = append(res.Violations, err.(*Violation))
		}
	}
	_ = c.Finish()
	res.Snapshot = c.Snapshot()
	return res
}
