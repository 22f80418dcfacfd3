package report

import (
	"math"
	"testing"
)

func TestPlaneDigestDeterministic(t *testing.T) {
	plane := []int16{1, 2, 3, 4, 5}
	a := PlaneDigest(plane, 8)
	b := PlaneDigest(plane, 8)
	if a != b {
		t.Error("PlaneDigest is not deterministic for identical input")
	}
	other := PlaneDigest([]int16{1, 2, 3, 4, 6}, 8)
	if a == other {
		t.Error("PlaneDigest collided for different planes")
	}
}

func TestPlaneDigest10Bit(t *testing.T) {
	plane := []int16{1000, 2, 3}
	d8 := PlaneDigest(plane, 8)
	d10 := PlaneDigest(plane, 10)
	if d8 == d10 {
		t.Error("8-bit and 10-bit digests should differ for a value exceeding 8 bits")
	}
}

func TestPlanePSNRIdenticalIsInf(t *testing.T) {
	plane := []int16{10, 20, 30, 200}
	psnr := PlanePSNR(plane, plane, 8)
	if !math.IsInf(psnr, 1) {
		t.Errorf("PlanePSNR(identical) = %v, want +Inf", psnr)
	}
}

func TestPlanePSNRDegradesWithError(t *testing.T) {
	ref := []int16{100, 100, 100, 100}
	close := []int16{101, 99, 100, 101}
	far := []int16{150, 50, 200, 0}
	pClose := PlanePSNR(close, ref, 8)
	pFar := PlanePSNR(far, ref, 8)
	if !(pClose > pFar) {
		t.Errorf("expected closer reconstruction to score higher PSNR: close=%v far=%v", pClose, pFar)
	}
}

func TestPlanePSNRLengthMismatchIsNaN(t *testing.T) {
	psnr := PlanePSNR([]int16{1, 2}, []int16{1}, 8)
	if !math.IsNaN(psnr) {
		t.Errorf("PlanePSNR(mismatched lengths) = %v, want NaN", psnr)
	}
}

func TestPSNRReporterRecordsAndAverages(t *testing.T) {
	r := NewPSNRReporter()
	r.ReportPSNR(0, []float64{40, 42, 41})
	r.ReportPSNR(1, []float64{38, 39, 37})
	scores := r.Scores()
	if len(scores) != 2 {
		t.Fatalf("len(Scores()) = %d, want 2", len(scores))
	}
	mean := r.MeanPSNR()
	want := (40.0 + 42 + 41 + 38 + 39 + 37) / 6
	if math.Abs(mean-want) > 1e-9 {
		t.Errorf("MeanPSNR() = %v, want %v", mean, want)
	}
}
