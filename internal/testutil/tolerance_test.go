package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff([]float64{1.0, 2.0, 3.0}, []float64{1.0, 2.1, 3.0})
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}
	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("MaxAbsDiff = %v, want 0.1", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestMaxStep(t *testing.T) {
	if got := MaxStep([]float64{0, 0.1, 0.5, 0.4}); math.Abs(got-0.4) > 1e-15 {
		t.Fatalf("MaxStep = %v, want 0.4", got)
	}
	if got := MaxStep(nil); got != 0 {
		t.Fatalf("MaxStep(nil) = %v, want 0", got)
	}
}
