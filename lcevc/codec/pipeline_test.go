package codec

import (
	"os"
	"testing"

	"github.com/ausocean/lcevc/bitstream"
	"github.com/ausocean/lcevc/config"
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/quantize"
	"github.com/ausocean/lcevc/resample"
)

func pipelineTestConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	return &config.Config{
		BaseBitDepth:        8,
		EnhancementBitDepth: 8,
		ColourSpace:         image.Monochrome,
		ScalingModeLoQ1:     resample.ScaleNone,
		ScalingModeLoQ2:     resample.ScaleNone,
		UpsampleKernel:      resample.Nearest,
		QuantMatrixMode:     quantize.BothDefault,
		StepWidthLoQ1:       2000,
		StepWidthLoQ2:       2000,
		ChromaStepWidthMul:  64,
		TileLayout:          bitstream.TileLayoutNone,
		BaseCodecPath:       stubBaseCodec(t, dir),
	}
}

// fakeHostAU is a minimal synthetic access unit: a single non-parameter-set
// slice NAL, standing in for whatever real host bitstream a caller would
// have produced alongside the picture being enhanced.
func fakeHostAU() []byte {
	return []byte{0x00, 0x00, 0x01, 0x01, 0xAA, 0xBB, 0xCC, 0xDD, 0x12, 0x34}
}

func TestSessionEncodeFrameProducesFramedAU(t *testing.T) {
	dir := t.TempDir()
	cfg := pipelineTestConfig(t, dir)
	s, err := New(cfg, dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	img := testImage(t, 8, 8)
	au, stats, err := s.EncodeFrame(img, fakeHostAU(), true)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if len(au) <= len(fakeHostAU()) {
		t.Errorf("encoded access unit (%d bytes) should be larger than the host AU (%d bytes)", len(au), len(fakeHostAU()))
	}
	if stats == nil {
		t.Fatal("expected non-nil Stats")
	}
	if stats.TotalBytes() <= 0 {
		t.Error("expected some residual bytes to have been recorded")
	}
	if !s.Running() {
		t.Error("Session should be running after a successful EncodeFrame")
	}
}

func TestSessionEncodeDecodeRoundTripShape(t *testing.T) {
	dir := t.TempDir()
	encodeDir := dir + "/enc"
	decodeDir := dir + "/dec"
	for _, d := range []string{encodeDir, decodeDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}

	encCfg := pipelineTestConfig(t, encodeDir)
	enc, err := New(encCfg, encodeDir)
	if err != nil {
		t.Fatalf("New(encoder): %v", err)
	}
	decCfg := pipelineTestConfig(t, decodeDir)
	dec, err := New(decCfg, decodeDir)
	if err != nil {
		t.Fatalf("New(decoder): %v", err)
	}

	img := testImage(t, 8, 8)
	au, _, err := enc.EncodeFrame(img, fakeHostAU(), true)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	out, err := dec.DecodeFrame(au, img.Description)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if out.Description != img.Description {
		t.Errorf("decoded description = %+v, want %+v", out.Description, img.Description)
	}
	if got, want := out.Planes[0].Width(), img.Planes[0].Width(); got != want {
		t.Errorf("decoded plane width = %d, want %d", got, want)
	}
	if got, want := out.Planes[0].Height(), img.Planes[0].Height(); got != want {
		t.Errorf("decoded plane height = %d, want %d", got, want)
	}
}
