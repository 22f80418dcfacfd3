package tables

import "testing"

func TestResolutionRoundTrip(t *testing.T) {
	w, h, ok := Resolution(40)
	if !ok {
		t.Fatal("expected index 40 to be valid")
	}
	if got := ResolutionIndex(w, h); got != 40 {
		t.Errorf("ResolutionIndex(%d,%d) = %d, want 40", w, h, got)
	}
}

func TestResolutionCustomFallback(t *testing.T) {
	if got := ResolutionIndex(1, 1); got != CustomResolutionIndex {
		t.Errorf("got %d, want CustomResolutionIndex", got)
	}
}

func TestBasisRowSums(t *testing.T) {
	// The all-ones row of every basis is the DC/average row; every other
	// row must sum to zero (it is a pure difference signal).
	for i, row := range DDS4x4Basis {
		sum := int32(0)
		for _, v := range row {
			sum += v
		}
		if i == 0 {
			if sum != 16 {
				t.Errorf("DC row sum = %d, want 16", sum)
			}
		} else if sum != 0 {
			t.Errorf("row %d sum = %d, want 0", i, sum)
		}
	}
}
