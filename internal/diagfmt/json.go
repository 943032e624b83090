package diagfmt

import (
	"encoding/json"
	"io"

	"ownck/internal/diag"
)

// LocationJSON представляет местоположение инструкции для JSON
type LocationJSON struct {
	File     string `json:"file"`
	Function string `json:"function,omitempty"`
	Index    int    `json:"index"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// FunctionJSON is the verdict of one checked function.
type FunctionJSON struct {
	File       string `json:"file"`
	Name       string `json:"name"`
	Verdict    string `json:"verdict"`
	Expect     string `json:"expect,omitempty"`
	First      string `json:"first,omitempty"`
	Violations int    `json:"violations"`
	Instrs     int    `json:"instrs"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Functions   []FunctionJSON   `json:"functions,omitempty"`
	Count       int              `json:"count"`
}

func makeLocation(loc diag.Location, opts JSONOpts) LocationJSON {
	return LocationJSON{
		File:     formatPath(loc.File, opts.PathMode, opts.BaseDir),
		Function: loc.Function,
		Index:    loc.Index,
	}
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(diags []diag.Diagnostic, opts JSONOpts) DiagnosticsOutput {
	maxItems := len(diags)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	out := make([]DiagnosticJSON, 0, maxItems)
	for _, d := range diags[:maxItems] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, opts),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Loc, opts)}
			}
		}
		out = append(out, dj)
	}
	return DiagnosticsOutput{Diagnostics: out, Count: len(out)}
}

// JSON форматирует диагностики и вердикты функций в JSON.
func JSON(w io.Writer, diags []diag.Diagnostic, functions []FunctionJSON, opts JSONOpts) error {
	output := BuildDiagnosticsOutput(diags, opts)
	output.Functions = functions
	for i := range output.Functions {
		output.Functions[i].File = formatPath(output.Functions[i].File, opts.PathMode, opts.BaseDir)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// Short writes one line per diagnostic.
func Short(w io.Writer, diags []diag.Diagnostic, includeNotes bool) error {
	text := diag.FormatShort(diags, includeNotes)
	if text == "" {
		return nil
	}
	_, err := io.WriteString(w, text+"\n")
	return err
}
