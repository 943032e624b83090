package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ownck/internal/program"
	"ownck/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create ownck.toml and a sample program",
	Long: `Create an ownck.toml manifest and programs/sample.own.toml in [dir]
(the current directory when omitted). The directory is created if needed.
Existing files are never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", target, err)
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	m := project.Default()
	m.Paths = []string{"programs"}
	manifestPath, err := project.WriteFile(target, m)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("project already initialized: %s exists", filepath.Join(target, project.ManifestName))
		}
		return err
	}

	samplePath := filepath.Join(target, "programs", "sample"+program.Ext)
	if err := writeSample(samplePath); err != nil {
		return err
	}

	if !quiet(cmd) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "created %s\n", manifestPath)
		fmt.Fprintf(out, "created %s\n", samplePath)
	}
	return nil
}

func writeSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := program.Encode(f, program.Sample()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
