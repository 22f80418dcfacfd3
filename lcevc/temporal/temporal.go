/*
NAME
  temporal.go

DESCRIPTION
  temporal.go implements the temporal prediction engine: per-block
  intra/inter cost decision, 32x32-tile reduced signalling, mask
  injection/extraction, and the accumulated temporal buffer update, per
  spec.md §4.6.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package temporal implements the enhancement sub-layer's temporal
// prediction engine: the per-block INTRA/PRED cost decision, the 32x32
// reduced-signalling tile summary, and the accumulated prediction buffer
// that PRED blocks add their residual to.
package temporal

// Mask is the per-transform-block temporal decision: whether a block's
// residual stands alone (Intr) or should be added to the accumulated
// buffer (Pred). The wire injects this as the LSB of the coefficient-0
// layer symbol of sub-layer 2, with bit value 1 meaning Intr -- mirroring
// TemporalExtractMask in the reference decoder.
type Mask uint8

const (
	Pred Mask = iota
	Intr
)

// TileSize is the fixed reduced-signalling tile edge length, in source
// pels.
const TileSize = 32

// BlockCost computes the per-transform-block cost metric: SAD between
// reconstruction and source, plus a nonzero-coefficient penalty weighted
// by lambda (the block's layer-0 inverse-quantization step width).
func BlockCost(sad int64, nonzeroCount int, lambda int32) int64 {
	return sad + int64(lambda)*int64(nonzeroCount)
}

// DecideBlock returns the per-block temporal decision: PRED when the inter
// cost is no worse than the intra cost, INTR otherwise.
func DecideBlock(intraCost, interCost int64) Mask {
	if interCost <= intraCost {
		return Pred
	}
	return Intr
}

// InjectMask packs flag into the LSB of symbol, per spec.md §4.6's
// `symbol = symbol*2 | flag`.
func InjectMask(symbol int16, flag Mask) int16 {
	return symbol*2 + int16(flag)
}

// ExtractMask recovers the per-transform mask from the coefficient-0 layer
// of sub-layer 2, mirroring TemporalExtractMask.
func ExtractMask(symbols []int16) []Mask {
	out := make([]Mask, len(symbols))
	for i, s := range symbols {
		if s&1 != 0 {
			out[i] = Intr
		} else {
			out[i] = Pred
		}
	}
	return out
}

// StripMask removes the injected mask bit, recovering the original
// coefficient-0 layer value, mirroring TemporalClear.
func StripMask(symbols []int16) []int16 {
	out := make([]int16, len(symbols))
	for i, s := range symbols {
		out[i] = s >> 1
	}
	return out
}

// TileDims returns the tile grid dimensions for a transform-block grid of
// the given size, given how many transforms make up one TileSize x
// TileSize tile edge.
func TileDims(widthBlocks, heightBlocks, transformsPerTile int) (tilesWide, tilesHigh int) {
	tilesWide = (widthBlocks + transformsPerTile - 1) / transformsPerTile
	tilesHigh = (heightBlocks + transformsPerTile - 1) / transformsPerTile
	return
}

// TileDecision computes the reduced-signalling tile decision from the
// per-transform sum-of-absolute-coefficient values (summed over every
// layer) for the intra and inter quantization passes, over the transforms
// contained in one tile. Mirrors TemporalTileMap::process's per-tile
// thresholds.
func TileDecision(intraSAV, interSAV []int) Mask {
	var intraZ, intraNZ, interZ, interNZ int
	var intraAccum, interAccum, savMixed int
	for i := range intraSAV {
		ia, ie := intraSAV[i], interSAV[i]
		switch {
		case ia == 0 && ie == 0:
			// Both zero: excluded from every percentage and accumulator.
		case ie == 0:
			interZ++
		case ia == 0:
			intraZ++
		case ia < ie:
			intraNZ++
		default:
			interNZ++
		}
		intraAccum += ia
		interAccum += ie
		if ia < ie {
			savMixed += ia
		} else {
			savMixed += ie
		}
	}
	numTemporals := intraZ + intraNZ + interZ + interNZ
	intraPct := (100 * (intraZ + intraNZ)) / (numTemporals + 1)
	interPct := (100 * interZ) / (numTemporals + 1)
	intraAccum75 := intraAccum - (intraAccum >> 2)
	interAccum25 := interAccum >> 2

	if intraPct > 38 && interPct < 20 && (intraAccum75 <= savMixed || interAccum25 > savMixed) {
		return Intr
	}
	return Pred
}

// ComputeTileMap builds the per-tile reduced-signalling decisions for a
// widthBlocks x heightBlocks transform-block grid, given the per-block SAV
// totals for the intra and inter passes (row-major, length
// widthBlocks*heightBlocks each).
func ComputeTileMap(intraSAV, interSAV []int, widthBlocks, heightBlocks, transformsPerTile int) []Mask {
	tilesWide, tilesHigh := TileDims(widthBlocks, heightBlocks, transformsPerTile)
	tileMap := make([]Mask, tilesWide*tilesHigh)
	for ty := 0; ty < tilesHigh; ty++ {
		for tx := 0; tx < tilesWide; tx++ {
			var ia, ie []int
			for by := ty * transformsPerTile; by < (ty+1)*transformsPerTile && by < heightBlocks; by++ {
				for bx := tx * transformsPerTile; bx < (tx+1)*transformsPerTile && bx < widthBlocks; bx++ {
					idx := by*widthBlocks + bx
					ia = append(ia, intraSAV[idx])
					ie = append(ie, interSAV[idx])
				}
			}
			tileMap[ty*tilesWide+tx] = TileDecision(ia, ie)
		}
	}
	return tileMap
}

// ApplyTileSignalling overrides the per-block mask with the tile map's
// decision: every block in an all-intra tile becomes Intr, the tile's
// first (top-left) block is forced to Pred when the tile itself is not
// all-intra (an Intr there is what marks a whole tile as intra at the
// position the decoder checks), and every other block in a non-intra tile
// passes its per-block decision through unchanged. Mirrors
// TemporalTileIntraSignal.
func ApplyTileSignalling(tileMap []Mask, blockMask []Mask, widthBlocks, heightBlocks, transformsPerTile int) []Mask {
	tilesWide, _ := TileDims(widthBlocks, heightBlocks, transformsPerTile)
	out := make([]Mask, len(blockMask))
	for by := 0; by < heightBlocks; by++ {
		for bx := 0; bx < widthBlocks; bx++ {
			tx, ty := bx/transformsPerTile, by/transformsPerTile
			idx := by*widthBlocks + bx
			tileIntra := tileMap[ty*tilesWide+tx] == Intr
			tileStart := bx%transformsPerTile == 0 && by%transformsPerTile == 0
			switch {
			case tileIntra:
				out[idx] = Intr
			case tileStart:
				out[idx] = Pred
			default:
				out[idx] = blockMask[idx]
			}
		}
	}
	return out
}

// NewBuffer returns a zeroed temporal accumulation buffer for a width x
// height pixel plane, used both at stream start and on temporal refresh.
func NewBuffer(width, height int) []int16 {
	return make([]int16, width*height)
}

// UpdateBuffer combines the previous temporal buffer, the current residual
// plane (pixel domain, post inverse-transform) and the final per-block
// mask (indexed in transform-block units, width/transformBlockSize x
// height/transformBlockSize) into the next temporal buffer. Mirrors
// TemporalUpdate::process.
func UpdateBuffer(prevBuffer, residuals []int16, mask []Mask, width, height, transformBlockSize int, perPictureIntra, useReducedSignalling bool) []int16 {
	maskWidth := width / transformBlockSize
	tileBlocks := TileSize / transformBlockSize
	out := make([]int16, width*height)
	for y := 0; y < height; y++ {
		by := y / transformBlockSize
		tileBY := (by / tileBlocks) * tileBlocks
		for x := 0; x < width; x++ {
			bx := x / transformBlockSize
			tileBX := (bx / tileBlocks) * tileBlocks
			idx := y*width + x

			perTileIntra := useReducedSignalling && mask[tileBY*maskWidth+tileBX] == Intr
			perBlockIntra := mask[by*maskWidth+bx] == Intr

			if perPictureIntra || perTileIntra || perBlockIntra {
				out[idx] = residuals[idx]
			} else {
				out[idx] = residuals[idx] + prevBuffer[idx]
			}
		}
	}
	return out
}
