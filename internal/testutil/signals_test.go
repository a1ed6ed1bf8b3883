package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 0.5, 64)
	b := DeterministicNoise(42, 0.5, 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic at index %d", i)
		}
		if math.Abs(a[i]) > 0.5 {
			t.Fatalf("a[%d] = %v exceeds amplitude", i, a[i])
		}
	}
}

func TestFullScaleSquare(t *testing.T) {
	s := FullScaleSquare(1, 2, 8)
	want := []float64{1, 1, -1, -1, 1, 1, -1, -1}
	RequireSliceNearlyEqual(t, s, want, 0)
}

func TestPlanarCopies(t *testing.T) {
	src := []float64{1, 2, 3}
	p := Planar(src, src)
	p[0][0] = 9
	if src[0] != 1 || p[1][0] != 1 {
		t.Fatal("Planar must copy each channel")
	}
}

func TestDC(t *testing.T) {
	dc := DC(0.25, 5)
	for i, v := range dc {
		if v != 0.25 {
			t.Fatalf("index %d = %v, want 0.25", i, v)
		}
	}
}
