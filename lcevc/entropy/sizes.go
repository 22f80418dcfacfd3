/*
NAME
  sizes.go

DESCRIPTION
  sizes.go implements the tile/block-size entropy model: 2 states (LSB,
  MSB), with prefix and prefix-on-diff compression submodes, per spec.md
  §4.3.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package entropy

import "github.com/pkg/errors"

// Size entropy states.
const (
	sizeLSB = iota
	sizeMSB
	numSizeStates
)

// CompressionType selects how EncodeSizes/DecodeSizes interpret each value.
type CompressionType int

const (
	// Prefix writes each non-negative size directly.
	Prefix CompressionType = iota
	// PrefixOnDiff writes the signed delta from the previous size (the
	// first value is coded as a diff from zero).
	PrefixOnDiff
)

const (
	sizeSmallMin = -64
	sizeSmallMax = 64 // exclusive
)

// EncodeSizes encodes sizes (all non-negative, as returned by whatever
// caller is sizing tiles or blocks) under the given compression mode and
// returns the {raw, prefix} chunk.
func EncodeSizes(sizes []int, mode CompressionType) (Chunk, error) {
	if len(sizes) == 0 {
		return Chunk{}, nil
	}
	var symbols []taggedSymbol
	prev := 0
	for _, s := range sizes {
		v := s
		if mode == PrefixOnDiff {
			v = s - prev
			prev = s
		}
		appendSizeValue(&symbols, v)
	}
	return buildChunk(symbols, numSizeStates)
}

func appendSizeValue(symbols *[]taggedSymbol, v int) {
	if v >= sizeSmallMin && v < sizeSmallMax {
		b := byte((v*2 + 0x80) & 0xff)
		*symbols = append(*symbols, taggedSymbol{sizeLSB, b})
		return
	}
	val := v + 0x2000
	if val < 0 {
		val = 0
	}
	if val > 0x7fff {
		val = 0x7fff
	}
	lower7 := byte(val & 0x7f)
	upper := byte((val >> 7) & 0xff)
	*symbols = append(*symbols, taggedSymbol{sizeLSB, (lower7 << 1) | 1})
	*symbols = append(*symbols, taggedSymbol{sizeMSB, upper})
}

// DecodeSizes reconstructs count values from data.
func DecodeSizes(data []byte, isPrefix bool, count int, mode CompressionType) ([]int, error) {
	if count == 0 {
		return nil, nil
	}
	src, err := newSource(data, isPrefix, numSizeStates)
	if err != nil {
		return nil, err
	}
	out := make([]int, count)
	prev := 0
	for i := 0; i < count; i++ {
		lsb, err := src.next(sizeLSB)
		if err != nil {
			return nil, errors.Wrap(err, "entropy: decoding size")
		}
		var v int
		if lsb&1 == 0 {
			v = int(lsb>>1) - 64
		} else {
			msb, err := src.next(sizeMSB)
			if err != nil {
				return nil, errors.Wrap(err, "entropy: decoding size MSB")
			}
			lower7 := int(lsb >> 1)
			upper7 := int(msb)
			val := (upper7 << 7) | lower7
			v = val - 0x2000
		}
		if mode == PrefixOnDiff {
			prev += v
			out[i] = prev
		} else {
			out[i] = v
		}
	}
	return out, nil
}
