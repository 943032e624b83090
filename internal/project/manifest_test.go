package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	data := "paths = [\"programs\"]\n[check]\nstrict_mutability = true\njobs = 2\nmax_diagnostics = 5\n[trace]\nlevel = \"detail\"\n"
	if err := os.WriteFile(filepath.Join(root, ManifestName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if !m.Check.StrictMutability || m.Check.Jobs != 2 || m.Check.MaxDiagnostics != 5 || m.Trace.Level != "detail" {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if got := m.ResolvePaths(); len(got) != 1 || got[0] != filepath.Join(root, "programs") {
		t.Fatalf("unexpected paths %v", got)
	}
}

func TestLoadMissingGivesDefault(t *testing.T) {
	m, ok, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// a stray ownck.toml above the temp dir would flip ok; only check defaults then
	if !ok && m.Check.MaxDiagnostics != 100 {
		t.Fatalf("unexpected default %+v", m)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"unknown key": "[check]\nstrikt = true\n",
		"jobs":        "[check]\njobs = -1\n",
		"trace level": "[trace]\nlevel = \"loud\"\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if !errors.Is(err, ErrBadManifest) {
				t.Fatalf("expected ErrBadManifest, got %v", err)
			}
		})
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := Default()
	m.Check.StrictMutability = true
	m.Paths = []string{"programs"}
	path, err := WriteFile(dir, m)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !got.Check.StrictMutability || len(got.Paths) != 1 {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if _, err := WriteFile(dir, m); err == nil {
		t.Fatalf("WriteFile overwrote an existing manifest")
	}
}

func TestDigestCombineDependsOnParts(t *testing.T) {
	base := Sum([]byte("program"))
	if Combine(base, []byte("strict")) == Combine(base, []byte("lax")) {
		t.Fatalf("combine ignored extra parts")
	}
	if base.IsZero() || len(base.String()) != 64 {
		t.Fatalf("unexpected digest %s", base)
	}
}
