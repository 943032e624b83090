package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("discover")
	tm.End(idx, "3 files")
	tm.End(42, "ignored")
	tm.ObserveFile("a.own.toml", 2*time.Millisecond, "")
	tm.ObserveFile("b.own.toml", 5*time.Millisecond, "cached")
	tm.ObserveFile("c.own.toml", time.Millisecond, "")

	r := tm.Report(2)
	if len(r.Phases) != 1 || r.Phases[0].Note != "3 files" {
		t.Fatalf("unexpected phases %+v", r.Phases)
	}
	if len(r.Slowest) != 2 || r.Slowest[0].Name != "b.own.toml" || r.Slowest[1].Name != "a.own.toml" {
		t.Fatalf("unexpected slowest %+v", r.Slowest)
	}
	if r.Slowest[0].DurationMS != 5 {
		t.Fatalf("unexpected duration %v", r.Slowest[0].DurationMS)
	}

	s := tm.Summary(1)
	for _, want := range []string{"timings:", "discover", "total", "slowest files:", "b.own.toml", "// cached"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary lacks %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "a.own.toml") {
		t.Fatalf("summary exceeded topN:\n%s", s)
	}
}
