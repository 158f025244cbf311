package sessionkit

import "testing"

// flipRecorder collects visibility transitions.
type flipRecorder struct {
	flips []bool
}

func (r *flipRecorder) record(visible bool) {
	r.flips = append(r.flips, visible)
}

func TestIndicatorFlipsOnlyAtBoundary(t *testing.T) {
	rec := &flipRecorder{}
	ind := NewIndicator(rec.record)

	ind.Show() // 0 -> 1: visible
	ind.Show() // 1 -> 2: no flip
	ind.Show() // 2 -> 3: no flip
	ind.Hide() // 3 -> 2: no flip
	ind.Hide() // 2 -> 1: no flip
	ind.Hide() // 1 -> 0: hidden

	want := []bool{true, false}
	if len(rec.flips) != len(want) {
		t.Fatalf("flips = %v, want %v", rec.flips, want)
	}
	for i := range want {
		if rec.flips[i] != want[i] {
			t.Fatalf("flips = %v, want %v", rec.flips, want)
		}
	}
	if ind.Visible() || ind.Depth() != 0 {
		t.Fatalf("visible = %v, depth = %d", ind.Visible(), ind.Depth())
	}
}

func TestIndicatorHideFloorsAtZero(t *testing.T) {
	rec := &flipRecorder{}
	ind := NewIndicator(rec.record)

	ind.Hide()
	ind.Hide()
	if ind.Depth() != 0 {
		t.Fatalf("depth = %d", ind.Depth())
	}
	if len(rec.flips) != 0 {
		t.Fatalf("unbalanced hide produced flips: %v", rec.flips)
	}

	// The floor keeps later pairs balanced.
	ind.Show()
	ind.Hide()
	if got, want := rec.flips, []bool{true, false}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("flips = %v", got)
	}
}

func TestIndicatorResetDropsAllHolds(t *testing.T) {
	rec := &flipRecorder{}
	ind := NewIndicator(rec.record)

	ind.Show()
	ind.Show()
	ind.Reset()

	if ind.Visible() || ind.Depth() != 0 {
		t.Fatalf("reset left indicator visible")
	}
	if got := rec.flips; len(got) != 2 || got[1] != false {
		t.Fatalf("flips = %v, want hide on reset", got)
	}

	// Reset with nothing held is silent.
	ind.Reset()
	if len(rec.flips) != 2 {
		t.Fatalf("idle reset produced a flip: %v", rec.flips)
	}
}

func TestIndicatorNilReceiver(t *testing.T) {
	var ind *Indicator
	ind.Show()
	ind.Hide()
	ind.Reset()
	if ind.Visible() || ind.Depth() != 0 {
		t.Fatalf("nil indicator reported state")
	}
}

func TestSessionResetIndicatorCountsStuckResets(t *testing.T) {
	f := newFixture(t, nil)

	// Reset while hidden is not a stuck indicator.
	f.session.ResetIndicator()
	if got := f.session.MetricsSnapshot().Counters[MetricIndicatorReset]; got != 0 {
		t.Fatalf("idle reset counted: %d", got)
	}

	f.session.Indicator().Show()
	f.session.ResetIndicator()
	if got := f.session.MetricsSnapshot().Counters[MetricIndicatorReset]; got != 1 {
		t.Fatalf("stuck reset metric = %d", got)
	}
	if f.session.Indicator().Visible() {
		t.Fatalf("indicator still visible after reset")
	}
}
