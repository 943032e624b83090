package program

import (
	"ownck/internal/ownership"
)

// Program is a decoded program file.
type Program struct {
	Path      string
	Functions []Function
}

// Function is a named instruction sequence ready for the checker.
type Function struct {
	Name   string
	Instrs []ownership.Instr
	// Expect is NoError when the sequence must pass.
	Expect ownership.ErrorKind
	Strict *bool
}

// Options returns checker options for f given the project default.
func (f Function) Options(strictDefault bool) []ownership.Option {
	strict := strictDefault
	if f.Strict != nil {
		strict = *f.Strict
	}
	return []ownership.Option{ownership.WithStrictMutability(strict)}
}

// Function returns the function called name.
func (p *Program) Function(name string) (Function, bool) {
	if p == nil {
		return Function{}, false
	}
	for _, f := range p.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}
