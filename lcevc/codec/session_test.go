package codec

import (
	"testing"

	"github.com/ausocean/lcevc/config"
	"github.com/ausocean/lcevc/image"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseBitDepth:        8,
		EnhancementBitDepth: 8,
		ColourSpace:         image.Monochrome,
	}
}

func TestNewSessionNotRunningUntilReset(t *testing.T) {
	s, err := New(testConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Running() {
		t.Error("a fresh Session should not be running before its first picture")
	}
}

func TestSessionResetDerivesDimensionsAndTemporalState(t *testing.T) {
	cfg := testConfig()
	cfg.TemporalEnabled = true
	s, err := New(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	desc := image.Description{Width: 16, Height: 16, BitDepth: 8, ColourSpace: image.Monochrome}
	s.reset(desc)

	if !s.Running() {
		t.Error("Running() should be true after reset")
	}
	if len(s.dims.Planes) != 1 {
		t.Fatalf("got %d planes, want 1 for Monochrome", len(s.dims.Planes))
	}
	if s.temporal[0] == nil {
		t.Error("temporal state should be allocated when TemporalEnabled is set")
	}
	if got, want := len(s.prevQM1[0]), s.globalFromConfig(desc).NumResidualLayers(); got != want {
		t.Errorf("prevQM1[0] length = %d, want %d", got, want)
	}
	for _, v := range s.prevQM1[0] {
		if v != -1 {
			t.Errorf("prevQM1 should start at -1 (no previous QM), got %d", v)
		}
	}
}

func TestSessionResetWithoutTemporalLeavesPlaneStateNil(t *testing.T) {
	s, err := New(testConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	desc := image.Description{Width: 8, Height: 8, BitDepth: 8, ColourSpace: image.Monochrome}
	s.reset(desc)
	if s.temporal[0] != nil {
		t.Error("temporal state should stay nil when TemporalEnabled is false")
	}
}

func TestSessionStopClearsState(t *testing.T) {
	s, err := New(testConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	desc := image.Description{Width: 8, Height: 8, BitDepth: 8, ColourSpace: image.Monochrome}
	s.reset(desc)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.Running() {
		t.Error("Running() should be false after Stop")
	}
	if s.lastGlobal != nil || s.lastSequence != nil {
		t.Error("Stop should clear the last-seen Sequence/Global")
	}
}

func TestStreamSeedDeterministic(t *testing.T) {
	a := streamSeed("/tmp/input.yuv")
	b := streamSeed("/tmp/input.yuv")
	if a != b {
		t.Errorf("streamSeed not deterministic: %d != %d", a, b)
	}
	if c := streamSeed("/tmp/other.yuv"); c == a {
		t.Error("different paths produced the same seed (not necessarily a bug, but suspicious for this input pair)")
	}
}
