package pipeline

import (
	"testing"
	"time"
)

func TestRunStats_EmptySnapshot(t *testing.T) {
	s := NewRunStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 {
		t.Errorf("expected empty snapshot, got count %d", snap.Count)
	}
}

func TestRunStats_SingleSample(t *testing.T) {
	s := NewRunStats(time.Hour)
	s.Record(100)

	snap := s.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected 1 sample, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 100 {
		t.Errorf("expected min/max 100, got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 100 || snap.P50Ms != 100 || snap.P99Ms != 100 {
		t.Errorf("expected all aggregates 100, got avg=%v p50=%v p99=%v", snap.AvgMs, snap.P50Ms, snap.P99Ms)
	}
}

func TestRunStats_Percentiles(t *testing.T) {
	s := NewRunStats(time.Hour)
	// 1..100 ms, uniform.
	for i := 1; i <= 100; i++ {
		s.Record(int64(i))
	}

	snap := s.Snapshot()
	if snap.Count != 100 {
		t.Fatalf("expected 100 samples, got %d", snap.Count)
	}
	if snap.MinMs != 1 || snap.MaxMs != 100 {
		t.Errorf("expected min 1 max 100, got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 50.5 {
		t.Errorf("expected avg 50.5, got %v", snap.AvgMs)
	}
	if snap.P50Ms < 50 || snap.P50Ms > 51 {
		t.Errorf("expected p50 near 50.5, got %v", snap.P50Ms)
	}
	if snap.P95Ms < 95 || snap.P95Ms > 96 {
		t.Errorf("expected p95 near 95, got %v", snap.P95Ms)
	}
	if snap.P99Ms < 99 || snap.P99Ms > 100 {
		t.Errorf("expected p99 near 99, got %v", snap.P99Ms)
	}
}

func TestRunStats_NegativeClamped(t *testing.T) {
	s := NewRunStats(time.Hour)
	s.Record(-5)

	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("expected negative duration clamped to 0, got %d", snap.MinMs)
	}
}

func TestRunStats_WindowPruning(t *testing.T) {
	s := NewRunStats(50 * time.Millisecond)
	s.Record(10)
	time.Sleep(100 * time.Millisecond)
	s.Record(20)

	snap := s.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected old sample pruned, got %d samples", snap.Count)
	}
	if snap.MinMs != 20 {
		t.Errorf("expected surviving sample 20, got %d", snap.MinMs)
	}
}

func TestPercentile_Interpolation(t *testing.T) {
	values := []int64{10, 20, 30, 40}
	// index = 3 * 0.5 = 1.5 -> between 20 and 30.
	if got := percentile(values, 50); got != 25 {
		t.Errorf("expected interpolated p50 25, got %v", got)
	}
	if got := percentile(values, 0); got != 10 {
		t.Errorf("expected p0 10, got %v", got)
	}
	if got := percentile(values, 100); got != 40 {
		t.Errorf("expected p100 40, got %v", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("expected 0 for empty input, got %v", got)
	}
}
