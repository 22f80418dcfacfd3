/*
NAME
  stats.go

DESCRIPTION
  stats.go implements Stats, an optional bits-per-block debug
  accumulator orchestration can query after each picture, grounded on
  `util/src/BitstreamStatistic.cpp`'s size-tracking role (the `DBG`
  trace macros themselves stay elided, per spec.md §9's logging note).

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codec

import (
	"sync"

	"github.com/ausocean/lcevc/entropy"
	"github.com/ausocean/lcevc/quantize"
)

// BlockStat records one (plane, LoQ, layer) surface's coded size, for
// the debug accounting Stats accumulates.
type BlockStat struct {
	Plane  int
	LoQ    quantize.LoQ
	Layer  int
	Blocks int // transform blocks in the surface (Width*Height)
	Bytes  int // entropy-coded size actually chosen for this surface
}

// Stats accumulates BlockStat entries across one picture's worth of
// residual surfaces. The zero value is ready to use; a Session creates
// one per EncodeFrame call (DecodeFrame creates none) and discards it once the caller
// has read whatever it needs, matching the reference's per-picture
// statistic object lifetime.
type Stats struct {
	mu     sync.Mutex
	blocks []BlockStat
}

// NewStats returns an empty Stats.
func NewStats() *Stats { return &Stats{} }

// Record measures values' entropy-coded size (picking whichever of raw
// or prefix coding WriteEncodedData itself would pick) and appends a
// BlockStat for it. width and height are the surface's transform-block
// grid dimensions.
func (s *Stats) Record(plane int, loq quantize.LoQ, layer int, values []int16, width, height int) {
	order := entropy.RasterOrder(width, height)
	chunk, err := entropy.EncodeResiduals(values, order)
	if err != nil {
		return
	}
	data, _ := chunk.Pick()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, BlockStat{
		Plane: plane, LoQ: loq, Layer: layer,
		Blocks: width * height, Bytes: len(data),
	})
}

// Blocks returns a copy of the recorded per-surface stats.
func (s *Stats) Blocks() []BlockStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BlockStat, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// TotalBytes returns the sum of every recorded surface's coded size.
func (s *Stats) TotalBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, b := range s.blocks {
		total += b.Bytes
	}
	return total
}

// BitsPerBlock returns the mean coded bits per transform block across
// every recorded surface, or 0 if nothing was recorded.
func (s *Stats) BitsPerBlock() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var totalBits, totalBlocks int
	for _, b := range s.blocks {
		totalBits += b.Bytes * 8
		totalBlocks += b.Blocks
	}
	if totalBlocks == 0 {
		return 0
	}
	return float64(totalBits) / float64(totalBlocks)
}
