package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"ownck/internal/diag"
	"ownck/internal/ownership"
	"ownck/internal/program"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <file>",
	Short: "Replay functions and print the binding table after each instruction",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().String("function", "", "replay only this function")
	snapshotCmd.Flags().Bool("strict", false, "require mutable bindings for exclusive borrows and mutation")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	name, err := cmd.Flags().GetString("function")
	if err != nil {
		return fmt.Errorf("failed to get function flag: %w", err)
	}
	strict := manifest.Check.StrictMutability
	if cmd.Flags().Changed("strict") {
		if strict, err = cmd.Flags().GetBool("strict"); err != nil {
			return fmt.Errorf("failed to get strict flag: %w", err)
		}
	}

	bag := diag.NewBag(100)
	prog, err := program.LoadFile(args[0], diag.BagReporter{Bag: bag})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if bag.Len() > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), diag.FormatShort(bag.Items(), false))
	}

	functions := prog.Functions
	if name != "" {
		fn, ok := prog.Function(name)
		if !ok {
			return fmt.Errorf("function %q not found in %s", name, args[0])
		}
		functions = []program.Function{fn}
	}
	for i, fn := range functions {
		if i > 0 {
			fmt.Fprintln(out)
		}
		replay(out, fn, strict)
	}
	return nil
}

// replay applies fn one instruction at a time and prints the live binding
// table after each step, then the drop order after Finish.
func replay(w io.Writer, fn program.Function, strict bool) {
	bold := color.New(color.Bold)
	bad := color.New(color.FgRed)
	good := color.New(color.FgGreen)

	fmt.Fprintln(w, bold.Sprint("function "+fn.Name))
	c := ownership.New(fn.Options(strict)...)
	for i, in := range fn.Instrs {
		verdict := good.Sprint("ok")
		if err := c.Apply(in); err != nil {
			verdict = bad.Sprint(ownership.KindOf(err).String())
		}
		fmt.Fprintf(w, "#%d %s: %s\n", i, in, verdict)
		writeBindings(w, c.Snapshot(), "    ")
	}
	_ = c.Finish()
	snap := c.Snapshot()
	fmt.Fprintf(w, "drop order: %s\n", strings.Join(snap.DropNames(), ", "))
	if v := c.Violation(); v != nil {
		fmt.Fprintf(w, "first violation: %s\n", bad.Sprint(v.Error()))
	}
}

func writeBindings(w io.Writer, snap ownership.Snapshot, indent string) {
	rows := [][]string{{"name", "kind", "state", "mut", "scope", "borrows"}}
	for _, b := range snap.Bindings {
		if !b.Live {
			continue
		}
		mut := ""
		if b.Mutable {
			mut = "mut"
		}
		rows = append(rows, []string{
			b.Name,
			b.Kind.String(),
			b.State.String(),
			mut,
			strconv.FormatUint(uint64(b.Scope), 10),
			borrowsLabel(b),
		})
	}
	if len(rows) == 1 {
		fmt.Fprintf(w, "%s(no bindings)\n", indent)
		return
	}
	writeTable(w, rows, indent)
}

func borrowsLabel(b ownership.BindingView) string {
	switch {
	case b.Exclusive:
		return "&mut"
	case b.Shared == 1:
		return "&"
	case b.Shared > 1:
		return "&x" + strconv.Itoa(b.Shared)
	default:
		return "-"
	}
}

// writeTable pads columns by display width so non-ASCII names line up.
func writeTable(w io.Writer, rows [][]string, indent string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		var b strings.Builder
		b.WriteString(indent)
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}
