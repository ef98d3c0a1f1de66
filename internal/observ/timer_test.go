package observ

import (
	"strings"
	"testing"
	"time"
)

// fakeClock advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	parse := tm.Begin("parse")
	tm.End(parse, "steps=3")
	replay := tm.Begin("replay")
	tm.End(replay, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d", len(r.Phases))
	}
	if r.Phases[0].Name != "parse" || r.Phases[0].DurationMS != 1 || r.Phases[0].Note != "steps=3" {
		t.Errorf("parse phase = %+v", r.Phases[0])
	}
	if r.TotalMS != 2 {
		t.Errorf("total = %v", r.TotalMS)
	}
}

func TestEmptyTimer(t *testing.T) {
	r := NewTimer().Report()
	if r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("expected zero report, got %+v", r)
	}
}

func TestMerge(t *testing.T) {
	a := &Report{TotalMS: 3, Phases: []PhaseReport{{Name: "parse", DurationMS: 1, Count: 1}, {Name: "replay", DurationMS: 2, Count: 1}}}
	b := &Report{TotalMS: 5, Phases: []PhaseReport{{Name: "cache_lookup", DurationMS: 1}, {Name: "parse", DurationMS: 4, Note: "x"}}}

	m := Merge(a, nil, b)
	if m.TotalMS != 8 {
		t.Fatalf("total = %v", m.TotalMS)
	}
	names := make([]string, len(m.Phases))
	for i, p := range m.Phases {
		names[i] = p.Name
	}
	if strings.Join(names, ",") != "parse,replay,cache_lookup" {
		t.Fatalf("order = %v", names)
	}
	if m.Phases[0].DurationMS != 5 || m.Phases[0].Count != 2 || m.Phases[0].Note != "" {
		t.Errorf("merged parse = %+v", m.Phases[0])
	}

	sum := m.Summary()
	if !strings.Contains(sum, "parse") || !strings.Contains(sum, "x2") || !strings.HasSuffix(sum, "8.00 ms\n") {
		t.Errorf("summary:\n%s", sum)
	}
}
