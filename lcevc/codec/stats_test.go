package codec

import (
	"testing"

	"github.com/ausocean/lcevc/quantize"
)

func TestStatsRecordAccumulates(t *testing.T) {
	s := NewStats()
	s.Record(0, quantize.LoQ1, 0, []int16{1, 0, -1, 2}, 2, 2)
	s.Record(0, quantize.LoQ1, 1, []int16{0, 0, 0, 0}, 2, 2)
	s.Record(1, quantize.LoQ2, 0, []int16{5, 5, 5, 5, 5, 5, 5, 5, 5}, 3, 3)

	blocks := s.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("got %d recorded blocks, want 3", len(blocks))
	}
	if s.TotalBytes() <= 0 {
		t.Error("TotalBytes should be positive once non-empty surfaces are recorded")
	}
	if bpb := s.BitsPerBlock(); bpb <= 0 {
		t.Errorf("BitsPerBlock = %f, want > 0", bpb)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := NewStats()
	if len(s.Blocks()) != 0 {
		t.Error("a fresh Stats should have no recorded blocks")
	}
	if s.TotalBytes() != 0 {
		t.Error("a fresh Stats should have zero total bytes")
	}
	if s.BitsPerBlock() != 0 {
		t.Error("a fresh Stats should report zero bits per block")
	}
}
