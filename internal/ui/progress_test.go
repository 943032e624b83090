package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"ownck/internal/driver"
)

func TestApplyEventTracksStatus(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("checking", []string{"a.own.toml", "b.own.toml"}, events).(*progressModel)

	steps := []struct {
		ev   driver.Event
		want string
	}{
		{driver.Event{File: "a.own.toml", Stage: driver.StageLoad, Status: driver.StatusWorking}, "loading"},
		{driver.Event{File: "a.own.toml", Stage: driver.StageCheck, Status: driver.StatusWorking}, "checking"},
		{driver.Event{File: "a.own.toml", Stage: driver.StageCheck, Status: driver.StatusError}, "failed"},
		{driver.Event{File: "b.own.toml", Stage: driver.StageCache, Status: driver.StatusDone}, "cached"},
	}
	for _, step := range steps {
		m.applyEvent(step.ev)
		idx := m.index[step.ev.File]
		if got := m.items[idx].status; got != step.want {
			t.Fatalf("%s: status %q, want %q", step.ev.File, got, step.want)
		}
	}
	if m.finished() != 2 {
		t.Fatalf("expected both files finished, got %d", m.finished())
	}
	if view := m.View(); !strings.Contains(view, "(2/2)") || !strings.Contains(view, "b.own.toml") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestApplyEventIgnoresUnknownFiles(t *testing.T) {
	m := NewProgressModel("checking", []string{"a"}, nil).(*progressModel)
	if cmd := m.applyEvent(driver.Event{File: "zzz", Status: driver.StatusDone}); cmd != nil {
		t.Fatalf("expected nil command for unknown file")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a/very/long/path.own.toml", 10); got != "a/very/..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("日本語のパス", 5); runewidth.StringWidth(got) > 5 {
		t.Fatalf("wide truncate overflowed: %q", got)
	}
}
