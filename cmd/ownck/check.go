package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ownck/internal/diag"
	"ownck/internal/diagfmt"
	"ownck/internal/driver"
	"ownck/internal/observ"
	"ownck/internal/ownership"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check program documents for ownership and borrow violations",
	Long: `Check every function of the given *.own.toml files. Directories are searched
recursively. Without arguments the paths listed in ownck.toml are checked,
or the current directory when the manifest lists none.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel files (0 = GOMAXPROCS)")
	checkCmd.Flags().Bool("strict", false, "require mutable bindings for exclusive borrows and mutation")
	checkCmd.Flags().Bool("disk-cache", false, "reuse verdicts of unchanged files")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	checkCmd.Flags().Bool("all-violations", false, "report every violation, not only the first per function")
	checkCmd.Flags().Int8("context", 2, "instructions of context around each diagnostic (-1 disables)")
	checkCmd.Flags().String("path-mode", "auto", "how to print paths (auto|absolute|relative|basename)")
}

type checkFlags struct {
	format   string
	ui       uiMode
	context  int8
	pathMode diagfmt.PathMode
	opts     driver.Options
	useCache bool
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var cf checkFlags
	flags := cmd.Flags()

	format, err := flags.GetString("format")
	if err != nil {
		return cf, fmt.Errorf("failed to get format flag: %w", err)
	}
	cf.format = strings.ToLower(format)
	switch cf.format {
	case "pretty", "json", "short":
	default:
		return cf, fmt.Errorf("unsupported format %q (must be pretty, json or short)", format)
	}

	uiValue, err := flags.GetString("ui")
	if err != nil {
		return cf, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if cf.ui, err = readUIMode(uiValue); err != nil {
		return cf, err
	}

	if cf.context, err = flags.GetInt8("context"); err != nil {
		return cf, fmt.Errorf("failed to get context flag: %w", err)
	}
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return cf, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if cf.pathMode, ok = diagfmt.ParsePathMode(pathMode); !ok {
		return cf, fmt.Errorf("invalid --path-mode value %q", pathMode)
	}

	// флаги имеют приоритет над ownck.toml
	cf.opts = driver.Options{
		Jobs:          manifest.Check.Jobs,
		Strict:        manifest.Check.StrictMutability,
		AllViolations: manifest.Check.AllViolations,
	}
	cf.useCache = manifest.Cache.Enabled
	if flags.Changed("jobs") {
		if cf.opts.Jobs, err = flags.GetInt("jobs"); err != nil {
			return cf, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("strict") {
		if cf.opts.Strict, err = flags.GetBool("strict"); err != nil {
			return cf, fmt.Errorf("failed to get strict flag: %w", err)
		}
	}
	if flags.Changed("all-violations") {
		if cf.opts.AllViolations, err = flags.GetBool("all-violations"); err != nil {
			return cf, fmt.Errorf("failed to get all-violations flag: %w", err)
		}
	}
	if flags.Changed("disk-cache") {
		if cf.useCache, err = flags.GetBool("disk-cache"); err != nil {
			return cf, fmt.Errorf("failed to get disk-cache flag: %w", err)
		}
	}
	if cf.opts.MaxDiagnostics, err = maxDiagnostics(cmd); err != nil {
		return cf, err
	}
	return cf, nil
}

func openCache() (*driver.DiskCache, error) {
	if manifest.Cache.Dir != "" {
		dir := manifest.Cache.Dir
		if manifest.Root != "" && !filepath.IsAbs(dir) {
			dir = filepath.Join(manifest.Root, dir)
		}
		return driver.OpenDiskCacheAt(dir)
	}
	return driver.OpenDiskCache("ownck")
}

func checkPaths(args []string) []string {
	if len(args) > 0 {
		return args
	}
	if paths := manifest.ResolvePaths(); len(paths) > 0 {
		return paths
	}
	return []string{"."}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cf, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	phase := timer.Begin("discover")
	files, err := driver.ListFiles(checkPaths(args))
	if err != nil {
		return err
	}
	timer.End(phase, fmt.Sprintf("%d files", len(files)))
	if len(files) == 0 {
		if !quiet(cmd) {
			fmt.Fprintln(cmd.ErrOrStderr(), "no program files found")
		}
		return nil
	}

	if cf.useCache {
		cache, err := openCache()
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		cf.opts.Cache = cache
	}

	phase = timer.Begin("check")
	var res *driver.Result
	if cf.format == "pretty" && !quiet(cmd) && shouldUseTUI(cf.ui) {
		res, err = runCheckWithUI(cmd.Context(), "checking", files, cf.opts)
	} else {
		res, err = driver.CheckFiles(cmd.Context(), files, cf.opts)
	}
	if err != nil {
		return err
	}
	timer.End(phase, fmt.Sprintf("jobs=%d", cf.opts.Jobs))
	for _, f := range res.Files {
		note := ""
		if f.Cached {
			note = "cached"
		}
		timer.ObserveFile(f.Path, f.Elapsed, note)
	}

	phase = timer.Begin("render")
	if err := renderCheck(cmd.OutOrStdout(), cmd, res, cf); err != nil {
		return err
	}
	timer.End(phase, cf.format)
	if timings(cmd) {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary(5))
	}
	if res.Failed() {
		return errCheckFailed
	}
	return nil
}

func renderCheck(out io.Writer, cmd *cobra.Command, res *driver.Result, cf checkFlags) error {
	diags := res.Diagnostics()
	wd, _ := os.Getwd()
	switch cf.format {
	case "json":
		return diagfmt.JSON(out, diags, functionsJSON(res), diagfmt.JSONOpts{
			PathMode:     cf.pathMode,
			BaseDir:      wd,
			IncludeNotes: true,
		})
	case "short":
		return diagfmt.Short(out, diags, true)
	}

	sources := make(diagfmt.Sources, len(res.Files))
	for _, f := range res.Files {
		if f.Program != nil {
			sources[f.Path] = f.Program
		}
	}
	diagfmt.Pretty(out, diags, sources, diagfmt.PrettyOpts{
		Color:     colorEnabled(),
		Context:   cf.context,
		PathMode:  cf.pathMode,
		BaseDir:   wd,
		ShowNotes: true,
	})
	if quiet(cmd) {
		return nil
	}
	if len(diags) > 0 {
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, summaryLine(res.Summary(), countErrors(diags)))
	return nil
}

func functionsJSON(res *driver.Result) []diagfmt.FunctionJSON {
	var out []diagfmt.FunctionJSON
	for _, f := range res.Files {
		for _, fn := range f.Functions {
			fj := diagfmt.FunctionJSON{
				File:       f.Path,
				Name:       fn.Name,
				Verdict:    fn.Verdict.String(),
				Violations: fn.Violations,
				Instrs:     fn.Instrs,
			}
			if fn.Expect != ownership.NoError {
				fj.Expect = fn.Expect.String()
			}
			if fn.First != ownership.NoError {
				fj.First = fn.First.String()
			}
			out = append(out, fj)
		}
	}
	return out
}

func countErrors(diags []diag.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == diag.SevError {
			n++
		}
	}
	return n
}

func summaryLine(s driver.Summary, errs int) string {
	line := fmt.Sprintf("%d files, %d functions: %d passed, %d expected violations, %d failed",
		s.Files, s.Functions, s.Passed, s.Expected, s.Failed)
	if s.Cached > 0 {
		line += fmt.Sprintf(" (%d cached)", s.Cached)
	}
	if errs > 0 {
		line += fmt.Sprintf("; %d errors", errs)
	}
	return line
}
