package ui

import (
	"strings"
	"testing"
)

func TestProgressModelEvents(t *testing.T) {
	events := make(chan Event)
	m := NewProgressModel("checking docs", []string{"a.dact", "b.dact"}, events).(*progressModel)

	m.Update(eventMsg{File: "a.dact", Status: StatusChecking})
	if m.finished != 0 {
		t.Fatalf("finished = %d after a start event", m.finished)
	}
	m.Update(eventMsg{File: "a.dact", Status: StatusFor(0, 2), Warnings: 2})
	m.Update(eventMsg{File: "unknown.dact", Status: StatusErrors})
	if m.finished != 1 {
		t.Fatalf("finished = %d, want 1", m.finished)
	}

	view := m.View()
	for _, want := range []string{"checking docs (1/2)", "warnings a.dact  (2 warnings)", "queued b.dact"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}

	m.Update(eventMsg{File: "b.dact", Status: StatusFor(1, 0), Errors: 1, Cached: true})
	m.Update(doneMsg{})
	view = m.View()
	if !strings.Contains(view, "done: checking docs (2/2)") || !strings.Contains(view, "(1 errors, cached)") {
		t.Errorf("unexpected final view:\n%s", view)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		errs, warns int
		want        Status
	}{
		{0, 0, StatusClean},
		{0, 3, StatusWarnings},
		{2, 3, StatusErrors},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.errs, tt.warns); got != tt.want {
			t.Errorf("StatusFor(%d,%d) = %v, want %v", tt.errs, tt.warns, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("docs/very/long/path.dact", 10); got != "docs/ve..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
