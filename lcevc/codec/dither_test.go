package codec

import "testing"

func TestDitherNoneLeavesPlaneUnchanged(t *testing.T) {
	d := newDither(42)
	plane := []int16{10, 20, 30}
	out := d.Apply(plane, DitherNone, 4, 8, 0)
	for i := range plane {
		if out[i] != plane[i] {
			t.Errorf("index %d: got %d, want unchanged %d", i, out[i], plane[i])
		}
	}
}

func TestDitherUniformFixedIsReproducible(t *testing.T) {
	plane := []int16{100, 110, 120, 130}
	a := newDither(7).Apply(plane, DitherUniformFixed, 4, 8, 3)
	b := newDither(7).Apply(plane, DitherUniformFixed, 4, 8, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("index %d: fixed dither not reproducible, got %d and %d", i, a[i], b[i])
		}
	}
}

func TestDitherUniformRandomVariesByFrame(t *testing.T) {
	plane := make([]int16, 64)
	for i := range plane {
		plane[i] = 128
	}
	d := newDither(7)
	a := d.Apply(plane, DitherUniformRandom, 8, 8, 0)
	b := d.Apply(plane, DitherUniformRandom, 8, 8, 1)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("dithered output identical across frame indices under DitherUniformRandom")
	}
}

func TestDitherClampsToBitDepth(t *testing.T) {
	d := newDither(1)
	plane := []int16{0, 0, 0, 0, 255, 255, 255, 255}
	out := d.Apply(plane, DitherUniformFixed, 40, 8, 0)
	for i, v := range out {
		if v < 0 || v > 255 {
			t.Errorf("index %d: value %d out of 8-bit range after dithering", i, v)
		}
	}
}
