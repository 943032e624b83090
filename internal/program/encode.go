package program

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"ownck/internal/ownership"
)

// Encode writes doc as TOML.
func Encode(w io.Writer, doc Document) error {
	enc := toml.NewEncoder(w)
	enc.Indent = "  "
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode program: %w", err)
	}
	return nil
}

// OpDocFor converts an instruction back to its document form.
func OpDocFor(in ownership.Instr) OpDoc {
	od := OpDoc{Op: in.Op().String()}
	switch in := in.(type) {
	case ownership.Declare:
		od.Name, od.Kind, od.Mutable = in.Name, in.Kind.String(), in.Mutable
	case ownership.Move:
		od.Src, od.Dst, od.Mutable = in.Src, in.Dst, in.Mutable
	case ownership.Copy:
		od.Src, od.Dst, od.Mutable = in.Src, in.Dst, in.Mutable
	case ownership.Clone:
		od.Src, od.Dst, od.Mutable = in.Src, in.Dst, in.Mutable
	case ownership.Use:
		od.Name = in.Name
	case ownership.BorrowShared:
		od.Name = in.Name
	case ownership.BorrowExclusive:
		od.Name = in.Name
	case ownership.Consume:
		od.Name = in.Name
	case ownership.Mutate:
		od.Name = in.Name
	case ownership.OpenScope, ownership.EndScope:
	}
	return od
}

// FunctionDocFor builds the document form of a function.
func FunctionDocFor(name string, expect ownership.ErrorKind, instrs ...ownership.Instr) FunctionDoc {
	fd := FunctionDoc{Name: name, Ops: make([]OpDoc, 0, len(instrs))}
	if expect != ownership.NoError {
		fd.Expect = expect.String()
	}
	for _, in := range instrs {
		fd.Ops = append(fd.Ops, OpDocFor(in))
	}
	return fd
}
