/*
NAME
  residuals.go

DESCRIPTION
  residuals.go implements the residual entropy model: 3 states (LSB, MSB,
  ZERO), walked in raster or 32-px-tile raster order, per spec.md §4.3.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package entropy

import "github.com/pkg/errors"

// Residual entropy states.
const (
	residualLSB = iota
	residualMSB
	residualZero
	numResidualStates
)

// residualSmallMin and residualSmallMax bound the single-byte small-value
// encoding range, per spec.md §4.3.
const (
	residualSmallMin = -32
	residualSmallMax = 32 // exclusive
)

// RasterOrder returns the traversal indices for a width x height surface
// in plain row-major order.
func RasterOrder(width, height int) []int {
	order := make([]int, width*height)
	for i := range order {
		order[i] = i
	}
	return order
}

// TiledOrder returns the traversal indices for a width x height surface
// walked tile by tile (tileSize x tileSize, clipped at the edges), raster
// order within each tile, tiles themselves visited in raster order.
func TiledOrder(width, height, tileSize int) []int {
	order := make([]int, 0, width*height)
	for ty := 0; ty < height; ty += tileSize {
		for tx := 0; tx < width; tx += tileSize {
			h := tileSize
			if ty+h > height {
				h = height - ty
			}
			w := tileSize
			if tx+w > width {
				w = width - tx
			}
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					order = append(order, (ty+y)*width+(tx+x))
				}
			}
		}
	}
	return order
}

// EncodeResiduals runs the residual RLE+Huffman model over values (indexed
// by order, typically RasterOrder or TiledOrder's output) and returns the
// {raw, prefix} chunk. The first and last positions in order are always
// coded explicitly (never folded into a zero run): the first because there
// is no preceding run to attach it to, the last so a trailing run of zeros
// is never left unflushed with nothing left to carry it.
func EncodeResiduals(values []int16, order []int) (Chunk, error) {
	if len(order) != len(values) {
		return Chunk{}, errors.Errorf("entropy: order has %d entries, want %d", len(order), len(values))
	}
	var symbols []taggedSymbol
	zeros := 0
	last := len(order) - 1
	for i, idx := range order {
		v := int(values[idx])
		if v == 0 && i != 0 && i != last {
			zeros++
			continue
		}
		hasZeros := zeros > 0
		appendResidualValue(&symbols, v, hasZeros)
		if hasZeros {
			appendZeroRun(&symbols, zeros)
			zeros = 0
		}
	}
	return buildChunk(symbols, numResidualStates)
}

func appendResidualValue(symbols *[]taggedSymbol, v int, hasZeros bool) {
	if v >= residualSmallMin && v < residualSmallMax {
		b := byte((v*2 + 0x40) & 0xff)
		if hasZeros {
			b |= 0x80
		}
		*symbols = append(*symbols, taggedSymbol{residualLSB, b})
		return
	}
	val := v + 0x2000
	if val < 0 {
		val = 0
	}
	if val > 0x3fff {
		val = 0x3fff
	}
	lower7 := byte(val & 0x7f)
	upper7 := byte((val >> 7) & 0x7f)
	lsb := (lower7 << 1) | 1
	msb := upper7
	if hasZeros {
		msb |= 0x80
	}
	*symbols = append(*symbols, taggedSymbol{residualLSB, lsb})
	*symbols = append(*symbols, taggedSymbol{residualMSB, msb})
}

func appendZeroRun(symbols *[]taggedSymbol, n int) {
	groups := multibyteGroups(uint64(n))
	for i, g := range groups {
		b := g
		if i != len(groups)-1 {
			b |= 0x80
		}
		*symbols = append(*symbols, taggedSymbol{residualZero, b})
	}
}

// DecodeResiduals reconstructs len(order) values from data (either the raw
// or prefix packet, per isPrefix), writing each decoded value to its
// position in order. A value symbol's hasZeros flag means a run of zeros
// immediately precedes it in traversal order, so that run is placed first
// and the decoded value lands on the position right after it.
func DecodeResiduals(data []byte, isPrefix bool, order []int) ([]int16, error) {
	src, err := newSource(data, isPrefix, numResidualStates)
	if err != nil {
		return nil, err
	}
	out := make([]int16, len(order))
	i := 0
	for i < len(order) {
		lsb, err := src.next(residualLSB)
		if err != nil {
			return nil, err
		}
		var v int
		var hasZeros bool
		if lsb&1 == 0 {
			hasZeros = lsb&0x80 != 0
			payload := int((lsb &^ 0x80) >> 1)
			v = payload - 32
		} else {
			msb, err := src.next(residualMSB)
			if err != nil {
				return nil, err
			}
			hasZeros = msb&0x80 != 0
			lower7 := int(lsb >> 1)
			upper7 := int(msb &^ 0x80)
			val := (upper7 << 7) | lower7
			v = val - 0x2000
		}
		if hasZeros {
			n, err := readZeroRun(src)
			if err != nil {
				return nil, err
			}
			for k := 0; k < n && i < len(order); k++ {
				out[order[i]] = 0
				i++
			}
		}
		if i < len(order) {
			out[order[i]] = int16(v)
			i++
		}
	}
	return out, nil
}

func readZeroRun(src symbolSource) (int, error) {
	var v int
	for {
		b, err := src.next(residualZero)
		if err != nil {
			return 0, err
		}
		v = (v << 7) | int(b&0x7f)
		if b&0x80 == 0 {
			break
		}
	}
	return v, nil
}
