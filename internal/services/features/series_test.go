package features

import (
	"math"
	"testing"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.8f, want %.8f (tol=%.8f)", label, got, want, tol)
	}
}

func TestPctChange(t *testing.T) {
	got := PctChange([]float64{100, 110, 99, 99}, 1)
	if IsDefined(got[0]) {
		t.Fatalf("first change must be undefined, got %v", got[0])
	}
	assertClose(t, "pct[1]", got[1], 0.10, 1e-12)
	assertClose(t, "pct[2]", got[2], -0.10, 1e-12)
	assertClose(t, "pct[3]", got[3], 0, 1e-12)

	got = PctChange([]float64{100, 101, 120}, 2)
	if IsDefined(got[1]) {
		t.Fatalf("pct[1] over 2 periods must be undefined")
	}
	assertClose(t, "pct2[2]", got[2], 0.20, 1e-12)
}

func TestEMA(t *testing.T) {
	// span 3 -> alpha 0.5
	got := EMA([]float64{10, 20, 30}, 3)
	want := []float64{10, 15, 22.5}
	for i := range want {
		assertClose(t, "ema", got[i], want[i], 1e-12)
	}
	if len(EMA(nil, 3)) != 0 {
		t.Fatalf("expected empty ema")
	}
}

func TestRollingMeanMinPeriods(t *testing.T) {
	got := RollingMean([]float64{1, 2, 3, 4}, 3, 2)
	if IsDefined(got[0]) {
		t.Fatalf("rolling mean with 1 observation must be undefined")
	}
	assertClose(t, "mean[1]", got[1], 1.5, 1e-12)
	assertClose(t, "mean[2]", got[2], 2, 1e-12)
	assertClose(t, "mean[3]", got[3], 3, 1e-12)
}

func TestRollingStdSkipsUndefined(t *testing.T) {
	xs := []float64{math.NaN(), 1, 3, 5}
	got := RollingStd(xs, 3, 2)
	if IsDefined(got[0]) || IsDefined(got[1]) {
		t.Fatalf("expected undefined head, got %v", got[:2])
	}
	assertClose(t, "std[2]", got[2], math.Sqrt(2), 1e-12)
	assertClose(t, "std[3]", got[3], 2, 1e-12)
}

func TestCenteredRollingStdWindows(t *testing.T) {
	xs := []float64{1, 2, 4, 8, 16}
	// window 4 -> offset 1, position 0 covers [0,1], position 2 covers [0,3], position 4 covers [2,4]
	got := CenteredRollingStd(xs, 4, 2)
	assertClose(t, "c[0]", got[0], SampleStd([]float64{1, 2}), 1e-12)
	assertClose(t, "c[2]", got[2], SampleStd([]float64{1, 2, 4, 8}), 1e-12)
	assertClose(t, "c[4]", got[4], SampleStd([]float64{4, 8, 16}), 1e-12)

	// window 2 -> offset 0, first position has a single sample
	got = CenteredRollingStd(xs, 2, 2)
	if IsDefined(got[0]) {
		t.Fatalf("expected undefined first position")
	}
}

func TestStdDevs(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assertClose(t, "population", PopulationStd(xs), 2, 1e-12)
	assertClose(t, "sample", SampleStd(xs), math.Sqrt(32.0/7.0), 1e-12)
	if IsDefined(SampleStd([]float64{1})) {
		t.Fatalf("sample std of one value must be undefined")
	}
	if PopulationStd([]float64{3, 3, 3}) != 0 {
		t.Fatalf("constant series must have zero std")
	}
}

func TestHelpers(t *testing.T) {
	if Clamp(5, 2.5, 4) != 4 || Clamp(1, 2.5, 4) != 2.5 {
		t.Fatalf("clamp")
	}
	if ClampInt(30, 3, 26) != 26 || ClampInt(1, 2, 9) != 2 {
		t.Fatalf("clamp int")
	}
	if OrDefault(math.NaN(), 7) != 7 || OrDefault(math.Inf(1), 7) != 7 || OrDefault(3, 7) != 3 {
		t.Fatalf("or default")
	}
	assertClose(t, "maxabs", MaxAbs([]float64{math.NaN(), -3, 2}), 3, 0)
	if IsDefined(Last(nil)) {
		t.Fatalf("last of empty must be undefined")
	}
}
