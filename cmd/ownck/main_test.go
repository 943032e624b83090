package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ownck/internal/driver"
	"ownck/internal/ownership"
	"ownck/internal/program"
	"ownck/internal/project"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInitThenCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	if out, err := execute(t, "init", dir, "--quiet"); err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}
	for _, p := range []string{
		filepath.Join(dir, project.ManifestName),
		filepath.Join(dir, "programs", "sample"+program.Ext),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
	if _, err := execute(t, "init", dir, "--quiet"); err == nil {
		t.Fatalf("second init must refuse to overwrite")
	}

	out, err := execute(t, "check", dir, "--ui", "off", "--format", "short", "--color", "off")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no diagnostics, got:\n%s", out)
	}
}

func TestCheckFailsOnViolation(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	doc := program.Document{Functions: []program.FunctionDoc{
		program.FunctionDocFor("bad", ownership.NoError,
			ownership.Declare{Name: "s", Kind: ownership.Resource},
			ownership.Move{Src: "s", Dst: "t"},
			ownership.Use{Name: "s"},
		),
	}}
	if err := program.Encode(&buf, doc); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "bad"+program.Ext)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "check", path, "--ui", "off", "--format", "short", "--color", "off")
	if err != errCheckFailed {
		t.Fatalf("expected errCheckFailed, got %v", err)
	}
	if !strings.Contains(out, "OWN1002") || !strings.Contains(out, ":bad#2") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = execute(t, "snapshot", path, "--color", "off")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for _, want := range []string{"function bad", "#2 use s: use_after_move", "drop order: t\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in snapshot output:\n%s", want, out)
		}
	}
}

func TestWriteTableAlignsWideNames(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, [][]string{
		{"name", "state"},
		{"名前", "owned"},
		{"s", "moved"},
	}, "")
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}
	// "名前" is four cells wide, like "name"
	if lines[1] != "名前  owned" || lines[2] != "s     moved" {
		t.Fatalf("misaligned table:\n%q", lines)
	}
}

func TestBorrowsLabel(t *testing.T) {
	cases := []struct {
		view ownership.BindingView
		want string
	}{
		{ownership.BindingView{}, "-"},
		{ownership.BindingView{Shared: 1}, "&"},
		{ownership.BindingView{Shared: 3}, "&x3"},
		{ownership.BindingView{Exclusive: true}, "&mut"},
	}
	for _, tc := range cases {
		if got := borrowsLabel(tc.view); got != tc.want {
			t.Fatalf("borrowsLabel(%+v) = %q, want %q", tc.view, got, tc.want)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSummaryLine(t *testing.T) {
	got := summaryLine(driver.Summary{Files: 2, Functions: 5, Passed: 3, Expected: 1, Failed: 1, Cached: 1}, 2)
	want := "2 files, 5 functions: 3 passed, 1 expected violations, 1 failed (1 cached); 2 errors"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}
