package diagfmt

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"ownck/internal/diag"
	"ownck/internal/ownership"
	"ownck/internal/program"
)

func sampleDiag(path string) diag.Diagnostic {
	d := diag.NewError(diag.BorrowMoveWhileBorrowed, diag.At(path, "main", 2), `cannot move "s" while it is borrowed`)
	return d.WithNote(diag.At(path, "main", 1), `shared borrow of "s" created here`)
}

func sampleSources(path string) Sources {
	return Sources{path: &program.Program{
		Path: path,
		Functions: []program.Function{{
			Name: "main",
			Instrs: []ownership.Instr{
				ownership.Declare{Name: "s", Kind: ownership.Resource},
				ownership.BorrowShared{Name: "s"},
				ownership.Move{Src: "s", Dst: "t"},
				ownership.Use{Name: "t"},
			},
		}},
	}}
}

func TestPrettyShowsContextAndNotes(t *testing.T) {
	path := filepath.Join("/home/user/project", "src", "a.own.toml")
	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{sampleDiag(path)}, sampleSources(path), PrettyOpts{
		Context:   1,
		PathMode:  PathModeRelative,
		BaseDir:   "/home/user/project",
		ShowNotes: true,
	})
	out := buf.String()

	for _, want := range []string{
		"ERROR BRW2001: cannot move",
		"--> " + filepath.Join("src", "a.own.toml") + ":main#2",
		ownership.Move{Src: "s", Dst: "t"}.String(),
		"^~",
		"note: shared borrow",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	// Context 1 around #2 shows #1..#3 but not #0
	if strings.Contains(out, ownership.Declare{Name: "s", Kind: ownership.Resource}.String()) {
		t.Fatalf("context leaked instruction #0:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colour codes with Color=false:\n%s", out)
	}
}

func TestPrettyWithoutSources(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{sampleDiag("a.own.toml")}, nil, PrettyOpts{PathMode: PathModeBasename})
	out := buf.String()
	if strings.Contains(out, "note:") || strings.Contains(out, "^") {
		t.Fatalf("unexpected notes or context:\n%s", out)
	}
}

func TestPathModes(t *testing.T) {
	tests := []struct {
		name string
		mode PathMode
		want string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.own.toml"},
		{"Relative path", PathModeRelative, filepath.Join("src", "test.own.toml")},
		{"Basename only", PathModeBasename, "test.own.toml"},
		{"Auto inside base", PathModeAuto, filepath.Join("src", "test.own.toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatPath("/home/user/project/src/test.own.toml", tt.mode, "/home/user/project")
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
	if got := formatPath("/elsewhere/x.own.toml", PathModeAuto, "/home/user/project"); got != "/elsewhere/x.own.toml" {
		t.Errorf("auto outside base: got %q", got)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	functions := []FunctionJSON{{File: "a.own.toml", Name: "main", Verdict: "fail", First: "move_while_borrowed", Violations: 1, Instrs: 4}}
	if err := JSON(&buf, []diag.Diagnostic{sampleDiag("a.own.toml")}, functions, JSONOpts{IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("unexpected count %d", output.Count)
	}
	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "BRW2001" || d.Location.Index != 2 || d.Location.Function != "main" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.Index != 1 {
		t.Fatalf("unexpected notes %+v", d.Notes)
	}
	if len(output.Functions) != 1 || output.Functions[0].Verdict != "fail" {
		t.Fatalf("unexpected functions %+v", output.Functions)
	}
}

func TestJSONMax(t *testing.T) {
	diags := []diag.Diagnostic{sampleDiag("a"), sampleDiag("b"), sampleDiag("c")}
	out := BuildDiagnosticsOutput(diags, JSONOpts{Max: 2})
	if out.Count != 2 || out.Diagnostics[0].Notes != nil {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	if err := Short(&buf, []diag.Diagnostic{sampleDiag("a.own.toml")}, false); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "error BRW2001 a.own.toml:main#2 cannot move \"s\" while it is borrowed\n" {
		t.Fatalf("unexpected short output %q", got)
	}
}
