package program

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"ownck/internal/diag"
	"ownck/internal/ownership"
)

// Ext is the file extension of program documents.
const Ext = ".own.toml"

// LoadFile reads and decodes path. IO failures are returned as errors,
// document problems are reported to r.
func LoadFile(path string, r diag.Reporter) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(path, data, r), nil
}

// Decode turns a TOML document into a Program. Functions with malformed
// instructions are reported and left out; the rest are kept.
func Decode(path string, data []byte, r diag.Reporter) *Program {
	if r == nil {
		r = diag.NopReporter{}
	}
	prog := &Program{Path: path}

	var doc Document
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		diag.ReportError(r, diag.PrgDecode, diag.FileLocation(path), decodeMessage(err)).Emit()
		return prog
	}
	for _, key := range meta.Undecoded() {
		diag.ReportWarning(r, diag.PrgDecode, diag.FileLocation(path),
			fmt.Sprintf("unknown key %q", key.String())).Emit()
	}

	seen := make(map[string]bool, len(doc.Functions))
	for i, fd := range doc.Functions {
		name := normalize(fd.Name)
		if name == "" {
			name = fmt.Sprintf("function%d", i)
		}
		loc := diag.At(path, name, -1)
		if seen[name] {
			diag.ReportError(r, diag.PrgDuplicateFunction, loc,
				fmt.Sprintf("function %q is declared more than once", name)).Emit()
			continue
		}
		seen[name] = true

		fn, ok := decodeFunction(path, name, fd, r)
		if !ok {
			continue
		}
		if len(fn.Instrs) == 0 {
			diag.ReportWarning(r, diag.PrgEmptyFunction, loc, "function has no instructions").Emit()
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog
}

func decodeFunction(path, name string, fd FunctionDoc, r diag.Reporter) (Function, bool) {
	fn := Function{Name: name, Strict: fd.StrictMutability}
	ok := true
	if fd.Expect != "" {
		kind, known := ownership.ParseErrorKind(strings.TrimSpace(fd.Expect))
		if !known {
			diag.ReportError(r, diag.PrgUnknownExpect, diag.At(path, name, -1),
				fmt.Sprintf("unknown expected violation %q", fd.Expect)).Emit()
			ok = false
		}
		fn.Expect = kind
	}
	fn.Instrs = make([]ownership.Instr, 0, len(fd.Ops))
	for i, od := range fd.Ops {
		in, err := decodeOp(od)
		if err != nil {
			var de *decodeError
			code := diag.PrgDecode
			if errors.As(err, &de) {
				code = de.code
			}
			diag.ReportError(r, code, diag.At(path, name, i), err.Error()).Emit()
			ok = false
			continue
		}
		fn.Instrs = append(fn.Instrs, in)
	}
	return fn, ok
}

type decodeError struct {
	code diag.Code
	msg  string
}

func (e *decodeError) Error() string { return e.msg }

func errorf(code diag.Code, format string, args ...any) error {
	return &decodeError{code: code, msg: fmt.Sprintf(format, args...)}
}

func decodeOp(od OpDoc) (ownership.Instr, error) {
	opName := strings.ToLower(strings.TrimSpace(od.Op))
	op, ok := ownership.ParseOp(opName)
	if !ok {
		return nil, errorf(diag.PrgUnknownOp, "unknown instruction %q", od.Op)
	}
	name, src, dst := normalize(od.Name), normalize(od.Src), normalize(od.Dst)

	need := func(field, value string) error {
		if value == "" {
			return errorf(diag.PrgMissingField, "%s: missing %q", opName, field)
		}
		return nil
	}
	needTransfer := func() error {
		if err := need("src", src); err != nil {
			return err
		}
		return need("dst", dst)
	}

	switch op {
	case ownership.OpDeclare:
		if err := need("name", name); err != nil {
			return nil, err
		}
		kind, err := parseKind(od.Kind)
		if err != nil {
			return nil, err
		}
		return ownership.Declare{Name: name, Kind: kind, Mutable: od.Mutable}, nil
	case ownership.OpMove:
		if err := needTransfer(); err != nil {
			return nil, err
		}
		return ownership.Move{Src: src, Dst: dst, Mutable: od.Mutable}, nil
	case ownership.OpCopy:
		if err := needTransfer(); err != nil {
			return nil, err
		}
		return ownership.Copy{Src: src, Dst: dst, Mutable: od.Mutable}, nil
	case ownership.OpClone:
		if err := needTransfer(); err != nil {
			return nil, err
		}
		return ownership.Clone{Src: src, Dst: dst, Mutable: od.Mutable}, nil
	case ownership.OpOpenScope:
		return ownership.OpenScope{}, nil
	case ownership.OpEndScope:
		return ownership.EndScope{}, nil
	}

	if err := need("name", name); err != nil {
		return nil, err
	}
	switch op {
	case ownership.OpUse:
		return ownership.Use{Name: name}, nil
	case ownership.OpBorrowShared:
		return ownership.BorrowShared{Name: name}, nil
	case ownership.OpBorrowExclusive:
		return ownership.BorrowExclusive{Name: name}, nil
	case ownership.OpConsume:
		return ownership.Consume{Name: name}, nil
	case ownership.OpMutate:
		return ownership.Mutate{Name: name}, nil
	}
	return nil, errorf(diag.PrgUnknownOp, "unknown instruction %q", od.Op)
}

func parseKind(s string) (ownership.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "value", "copy", "stack":
		return ownership.Value, nil
	case "resource", "heap":
		return ownership.Resource, nil
	case "":
		return ownership.Value, errorf(diag.PrgMissingField, "declare: missing %q", "kind")
	default:
		return ownership.Value, errorf(diag.PrgUnknownKind, "unknown binding kind %q (expected value|resource)", s)
	}
}

// normalize brings identifiers to NFC so visually equal names resolve to
// the same binding.
func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func decodeMessage(err error) string {
	var perr toml.ParseError
	if errors.As(err, &perr) {
		return fmt.Sprintf("line %d: %s", perr.Position.Line, perr.Message)
	}
	return err.Error()
}
