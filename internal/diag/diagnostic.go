package diag

type Note struct {
	Loc Location `msgpack:"loc"`
	Msg string   `msgpack:"msg"`
}

type Diagnostic struct {
	Severity Severity `msgpack:"sev"`
	Code     Code     `msgpack:"code"`
	Message  string   `msgpack:"msg"`
	Primary  Location `msgpack:"primary"`
	Notes    []Note   `msgpack:"notes"`
}

// New builds a diagnostic without notes.
func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

// NewError is a shortcut for SevError diagnostics.
func NewError(code Code, primary Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns a copy of d with one more note.
func (d Diagnostic) WithNote(loc Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}
