package codec

import (
	"testing"

	"github.com/ausocean/lcevc/quantize"
	"github.com/ausocean/lcevc/surface"
	"github.com/ausocean/lcevc/temporal"
	"github.com/ausocean/lcevc/transform"
)

func TestPadCropPelsRoundTrip(t *testing.T) {
	pels := []int16{1, 2, 3, 4, 5, 6} // 3x2
	padded := padPels(pels, 3, 2, 4, 4)
	if len(padded) != 16 {
		t.Fatalf("padded length = %d, want 16", len(padded))
	}
	cropped := cropPels(padded, 4, 4, 3, 2)
	if len(cropped) != len(pels) {
		t.Fatalf("cropped length = %d, want %d", len(cropped), len(pels))
	}
	for i := range pels {
		if cropped[i] != pels[i] {
			t.Errorf("index %d: got %d, want %d", i, cropped[i], pels[i])
		}
	}
}

func TestPadPelsNoOpWhenAligned(t *testing.T) {
	pels := []int16{1, 2, 3, 4}
	if got := padPels(pels, 2, 2, 2, 2); &got[0] != &pels[0] {
		t.Error("padPels should return the input slice unchanged when already aligned")
	}
}

func TestCountNonzeroPerBlock(t *testing.T) {
	coeffs := [][]int16{
		{1, 0, 0, 2},
		{0, 0, 3, 0},
	}
	got := countNonzeroPerBlock(coeffs, 4)
	want := []int{1, 0, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSumAbsPerBlock(t *testing.T) {
	coeffs := [][]int16{
		{-3, 0, 1, 2},
		{1, -1, 0, -2},
	}
	got := sumAbsPerBlock(coeffs, 4)
	want := []int{4, 1, 1, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBlockSAD(t *testing.T) {
	// 4x4 plane, one 2x2 block at (1,0).
	a := []int16{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	b := make([]int16, 16)
	copy(b, a)
	b[2] = 3
	b[3] = 1
	b[6] = 2
	b[7] = 4
	if got, want := blockSAD(a, b, 4, 2, 1, 0), int64(10); got != want {
		t.Errorf("blockSAD = %d, want %d", got, want)
	}
}

func TestSelectByMask(t *testing.T) {
	intraCoeffs := [][]int16{{1, 2, 3, 4}}
	interCoeffs := [][]int16{{10, 20, 30, 40}}
	mask := []temporal.Mask{temporal.Intr, temporal.Pred, temporal.Intr, temporal.Pred}
	got := selectByMask(intraCoeffs, interCoeffs, mask)
	want := []int16{1, 20, 3, 40}
	for i := range want {
		if got[0][i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[0][i], want[i])
		}
	}
}

func TestBuildRawRecon(t *testing.T) {
	// 4x4 plane, 2x2 transform blocks -> 2x2 mask grid.
	intra := make([]int16, 16)
	inter := make([]int16, 16)
	for i := range intra {
		intra[i] = 1
		inter[i] = 2
	}
	mask := []temporal.Mask{temporal.Intr, temporal.Pred, temporal.Pred, temporal.Intr}
	out := buildRawRecon(intra, inter, mask, 4, 4, 2)

	// Top-left block (mask[0]=Intr) should be 1; top-right (mask[1]=Pred) should be 2.
	if out[0] != 1 {
		t.Errorf("top-left pel = %d, want 1", out[0])
	}
	if out[2] != 2 {
		t.Errorf("top-right pel = %d, want 2", out[2])
	}
}

func TestSurfacePelsRoundTrip8Bit(t *testing.T) {
	pels := []int16{10, 20, 30, 40, 50, 60}
	sfc, err := surfaceFromPels(pels, 3, 2, surface.Width8)
	if err != nil {
		t.Fatalf("surfaceFromPels: %v", err)
	}
	got, err := pelsFromSurface(sfc)
	if err != nil {
		t.Fatalf("pelsFromSurface: %v", err)
	}
	for i := range pels {
		if got[i] != pels[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], pels[i])
		}
	}
}

func TestSurfacePelsRoundTrip16Bit(t *testing.T) {
	pels := []int16{1000, 2000, 3000, 4000}
	sfc, err := surfaceFromPels(pels, 2, 2, surface.Width16)
	if err != nil {
		t.Fatalf("surfaceFromPels: %v", err)
	}
	got, err := pelsFromSurface(sfc)
	if err != nil {
		t.Fatalf("pelsFromSurface: %v", err)
	}
	for i := range pels {
		if got[i] != pels[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], pels[i])
		}
	}
}

func TestQuantizeDequantizeLoQRoundTrip(t *testing.T) {
	qcfg := quantize.Config{QuantMatrixMode: quantize.BothDefault}
	prevQM := []int32{-1, -1, -1, -1}
	residual := make([]int16, 8*8)
	for i := range residual {
		residual[i] = int16((i%7)*3 - 9)
	}

	pass := quantizeLoQ(residual, 8, 8, transform.DDS, EncodeAll, quantize.LoQ1, 1000, qcfg, true, prevQM)
	if len(pass.coeffs) != transform.DDS.NumLayers() {
		t.Fatalf("got %d coefficient layers, want %d", len(pass.coeffs), transform.DDS.NumLayers())
	}
	if len(pass.reconResidual) != 64 {
		t.Fatalf("reconResidual length = %d, want 64", len(pass.reconResidual))
	}

	again := dequantizeLoQ(pass.coeffs, pass.shape.Width, pass.shape.Height, transform.DDS, 8, 8, 1000, quantize.LoQ1, qcfg, true, prevQM)
	for i := range pass.reconResidual {
		if again.reconResidual[i] != pass.reconResidual[i] {
			t.Errorf("index %d: dequantizeLoQ recon %d != quantizeLoQ recon %d", i, again.reconResidual[i], pass.reconResidual[i])
		}
	}
}

func TestQuantizeLoQUnalignedResolutionPads(t *testing.T) {
	qcfg := quantize.Config{QuantMatrixMode: quantize.BothDefault}
	prevQM := []int32{-1, -1, -1, -1}
	width, height := 5, 3 // not a multiple of DDS's 4x4 block size.
	residual := make([]int16, width*height)
	for i := range residual {
		residual[i] = int16(i)
	}

	pass := quantizeLoQ(residual, width, height, transform.DDS, EncodeAll, quantize.LoQ1, 2000, qcfg, false, prevQM)
	if len(pass.reconResidual) != width*height {
		t.Errorf("reconResidual length = %d, want %d", len(pass.reconResidual), width*height)
	}
}
