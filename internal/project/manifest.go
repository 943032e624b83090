package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ownck/internal/trace"
)

// ErrBadManifest wraps every semantic manifest error.
var ErrBadManifest = errors.New("invalid manifest")

// Manifest is the decoded ownck.toml.
type Manifest struct {
	Path  string      `toml:"-"`
	Root  string      `toml:"-"`
	Check CheckConfig `toml:"check"`
	Cache CacheConfig `toml:"cache"`
	Trace TraceConfig `toml:"trace"`
	Paths []string    `toml:"paths"`
}

// CheckConfig holds checker defaults.
type CheckConfig struct {
	StrictMutability bool `toml:"strict_mutability"`
	Jobs             int  `toml:"jobs"`
	MaxDiagnostics   int  `toml:"max_diagnostics"`
	// AllViolations reports every violation, not only the first per function.
	AllViolations bool `toml:"all_violations"`
}

// CacheConfig controls the verdict disk cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir,omitempty"`
}

// TraceConfig sets the default trace level and output.
type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output,omitempty"`
}

// Default returns the manifest used when no ownck.toml exists.
func Default() Manifest {
	return Manifest{
		Check: CheckConfig{MaxDiagnostics: 100},
		Trace: TraceConfig{Level: "off"},
	}
}

// Load finds and decodes the manifest starting at startDir. When none is
// found it returns Default with ok=false.
func Load(startDir string) (Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return Default(), false, err
	}
	m, err := LoadFile(path)
	if err != nil {
		return Default(), true, err
	}
	return m, true, nil
}

// LoadFile decodes path on top of Default.
func LoadFile(path string) (Manifest, error) {
	m := Default()
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return Manifest{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrBadManifest, strings.Join(names, ", "))
	}
	m.Path = path
	m.Root = filepath.Dir(path)
	if err := m.validate(); err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (m *Manifest) validate() error {
	if m.Check.Jobs < 0 {
		return fmt.Errorf("%w: check.jobs must be >= 0", ErrBadManifest)
	}
	if m.Check.MaxDiagnostics <= 0 {
		return fmt.Errorf("%w: check.max_diagnostics must be > 0", ErrBadManifest)
	}
	if _, err := trace.ParseLevel(m.Trace.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	return nil
}

// ResolvePaths returns the manifest's program paths relative to its root.
func (m Manifest) ResolvePaths() []string {
	out := make([]string, 0, len(m.Paths))
	for _, p := range m.Paths {
		if !filepath.IsAbs(p) && m.Root != "" {
			p = filepath.Join(m.Root, p)
		}
		out = append(out, p)
	}
	return out
}

// Write encodes m as TOML.
func Write(w io.Writer, m Manifest) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	return enc.Encode(m)
}

// WriteFile writes m to dir/ownck.toml, refusing to overwrite.
func WriteFile(dir string, m Manifest) (string, error) {
	path := filepath.Join(dir, ManifestName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, m); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, f.Close()
}
