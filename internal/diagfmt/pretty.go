package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"ownck/internal/diag"
	"ownck/internal/ownership"
	"ownck/internal/program"
)

// Sources maps file paths to decoded programs so Pretty can show the
// instructions around a diagnostic.
type Sources map[string]*program.Program

func (s Sources) instrs(loc diag.Location) []ownership.Instr {
	if s == nil || loc.Function == "" || loc.Index < 0 {
		return nil
	}
	fn, ok := s[loc.File].Function(loc.Function)
	if !ok {
		return nil
	}
	return fn.Instrs
}

type palette struct {
	err, warn, info, code, path, gutter, mark, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.FgBlue),
		gutter: color.New(color.FgBlue, color.Bold),
		mark:   color.New(color.FgRed),
		note:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.mark, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой диагностики печатает:
//
//	<SEV> <CODE>: <Message>
//	  --> <path>:<function>#<index>
//
// затем соседние инструкции функции с отметкой ^~~~ под нарушением и Notes.
func Pretty(w io.Writer, diags []diag.Diagnostic, src Sources, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s: %s\n",
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message)
		fmt.Fprintf(w, "  %s %s\n", p.gutter.Sprint("-->"), p.path.Sprint(locationString(d.Primary, opts.PathMode, opts.BaseDir)))
		if opts.Context >= 0 {
			writeContext(w, p, src.instrs(d.Primary), d.Primary.Index, int(opts.Context))
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			where := ""
			if n.Loc != d.Primary {
				where = " (" + locationString(n.Loc, opts.PathMode, opts.BaseDir) + ")"
			}
			fmt.Fprintf(w, "  %s %s%s\n", p.gutter.Sprint("="), p.note.Sprint("note: ")+n.Msg, where)
		}
	}
}

func writeContext(w io.Writer, p palette, instrs []ownership.Instr, index, context int) {
	if index < 0 || index >= len(instrs) {
		return
	}
	from := max(0, index-context)
	to := min(len(instrs)-1, index+context)
	width := len(strconv.Itoa(to))
	blank := strings.Repeat(" ", width)

	fmt.Fprintf(w, "  %s %s\n", blank, p.gutter.Sprint("|"))
	for i := from; i <= to; i++ {
		text := instrs[i].String()
		fmt.Fprintf(w, "  %*d %s %s\n", width, i, p.gutter.Sprint("|"), text)
		if i == index {
			marker := "^" + strings.Repeat("~", max(0, len(text)-1))
			fmt.Fprintf(w, "  %s %s %s\n", blank, p.gutter.Sprint("|"), p.mark.Sprint(marker))
		}
	}
}

func locationString(loc diag.Location, mode PathMode, base string) string {
	loc.File = formatPath(loc.File, mode, base)
	return loc.String()
}
