package observ

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Phase records the duration and metadata of one step of a command.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks command phases and the time spent on individual files.
type Timer struct {
	phases []Phase
	files  []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// ObserveFile records a duration measured elsewhere, e.g. by a worker.
// Files overlap in time, so they do not add to the total.
func (t *Timer) ObserveFile(path string, dur time.Duration, note string) {
	t.files = append(t.files, Phase{Name: path, Dur: dur, Note: note})
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
	// Slowest lists the slowest files, slowest first.
	Slowest []PhaseReport `json:"slowest,omitempty"`
}

// Report формирует срез фаз, общую длительность и topN самых медленных файлов.
func (t *Timer) Report(topN int) Report {
	var report Report
	var total time.Duration
	for _, phase := range t.phases {
		total += phase.Dur
		report.Phases = append(report.Phases, toReport(phase))
	}
	report.TotalMS = durationToMillis(total)

	files := append([]Phase(nil), t.files...)
	sort.SliceStable(files, func(i, j int) bool { return files[i].Dur > files[j].Dur })
	for i := 0; i < len(files) && i < topN; i++ {
		report.Slowest = append(report.Slowest, toReport(files[i]))
	}
	return report
}

// Summary returns a human-readable summary of phases and the slowest files.
func (t *Timer) Summary(topN int) string {
	report := t.Report(topN)
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		writeLine(&b, p)
	}
	fmt.Fprintf(&b, "  %-20s %7.2f ms\n", "total", report.TotalMS)
	if len(report.Slowest) > 0 {
		b.WriteString("slowest files:\n")
		for _, p := range report.Slowest {
			writeLine(&b, p)
		}
	}
	return b.String()
}

func writeLine(b *strings.Builder, p PhaseReport) {
	fmt.Fprintf(b, "  %-20s %7.2f ms", p.Name, p.DurationMS)
	if p.Note != "" {
		b.WriteString("  // " + p.Note)
	}
	b.WriteString("\n")
}

func toReport(p Phase) PhaseReport {
	return PhaseReport{Name: p.Name, DurationMS: durationToMillis(p.Dur), Note: p.Note}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
