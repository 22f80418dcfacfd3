/*
NAME
  transform.go

DESCRIPTION
  transform.go implements the four small integer transforms (DD, DDS, and
  their horizontal-only 1-D variants): forward transform into per-layer
  surfaces, and inverse transform back to pel residuals.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package transform implements the DD (2x2) and DDS (4x4) integer
// transforms used by the enhancement pipeline, plus their 1-D scaling-mode
// variants, all driven off the fixed basis matrices in package tables.
package transform

import (
	"github.com/pkg/errors"

	"github.com/ausocean/lcevc/tables"
)

// Kind identifies which of the four transforms to apply.
type Kind int

// Supported transform kinds.
const (
	DD Kind = iota
	DDS
	DD1D
	DDS1D
)

// BlockSize returns the transform block edge length: 2 for DD/DD1D, 4 for
// DDS/DDS1D.
func (k Kind) BlockSize() int {
	switch k {
	case DD, DD1D:
		return 2
	default:
		return 4
	}
}

// NumLayers returns the number of residual layers the transform produces:
// block size squared.
func (k Kind) NumLayers() int {
	bs := k.BlockSize()
	return bs * bs
}

func (k Kind) basisAndDivisor() (basis func(layer, tap int) int32, divisor int32) {
	switch k {
	case DD:
		return func(l, t int) int32 { return tables.DD2x2Basis[l][t] }, tables.DD2x2Divisor
	case DD1D:
		return func(l, t int) int32 { return tables.DD1DBasis[l][t] }, tables.DD1DDivisor
	case DDS:
		return func(l, t int) int32 { return tables.DDS4x4Basis[l][t] }, tables.DDS4x4Divisor
	case DDS1D:
		return func(l, t int) int32 { return tables.DDS1DBasis[l][t] }, tables.DDS1DDivisor
	default:
		return nil, 1
	}
}

// divTowardZero performs integer division truncating toward zero, matching
// the reference model's C++ integer division semantics (Go's native "/"
// already truncates toward zero for signed integers, but this helper
// documents the requirement at call sites).
func divTowardZero(n, d int64) int64 { return n / d }

// Forward applies the transform to a width x height block of int16 pels
// (row-major, width and height must each be a multiple of BlockSize) and
// returns NumLayers per-layer surfaces, each of size (width/bs)x(height/bs).
// skip, if non-nil, marks layers the encoder chose not to encode; those
// layers are returned as all-zero, matching spec.md §4.4.
func (k Kind) Forward(pels []int16, width, height int, skip func(layer int) bool) ([][]int16, int, int, error) {
	bs := k.BlockSize()
	if width%bs != 0 || height%bs != 0 {
		return nil, 0, 0, errors.Errorf("transform: dimensions %dx%d not divisible by block size %d", width, height, bs)
	}
	if len(pels) != width*height {
		return nil, 0, 0, errors.Errorf("transform: got %d pels, want %d", len(pels), width*height)
	}
	basis, divisor := k.basisAndDivisor()
	lw, lh := width/bs, height/bs
	numLayers := k.NumLayers()
	layers := make([][]int16, numLayers)
	for l := range layers {
		layers[l] = make([]int16, lw*lh)
	}

	block := make([]int64, bs*bs)
	for by := 0; by < lh; by++ {
		for bx := 0; bx < lw; bx++ {
			for ty := 0; ty < bs; ty++ {
				for tx := 0; tx < bs; tx++ {
					block[ty*bs+tx] = int64(pels[(by*bs+ty)*width+(bx*bs+tx)])
				}
			}
			for l := 0; l < numLayers; l++ {
				if skip != nil && skip(l) {
					layers[l][by*lw+bx] = 0
					continue
				}
				var sum int64
				for t := 0; t < bs*bs; t++ {
					sum += block[t] * int64(basis(l, t))
				}
				layers[l][by*lw+bx] = int16(divTowardZero(sum, int64(divisor)))
			}
		}
	}
	return layers, lw, lh, nil
}

// rowScale returns, for each layer row of the transform's basis, an integer
// numerator such that numer[l]/denom equals divisor/energy, the rescale
// factor needed to invert a basis whose rows are mutually orthogonal but
// not all of equal energy (true of the 1-D scaling-mode variants, which
// zero out half of each row). Every basis row's energy is a power-of-two
// multiple of divisor (rows hold only ±1/±2 entries), so divisor/energy is
// always an exact power-of-two fraction and a common denom brings every
// row to the same integer scale with no rounding loss. For DD and DDS,
// every row has energy equal to divisor, so every numerator equals denom
// and the inverse reduces to a plain inner product against the same basis.
func (k Kind) rowScale() (numer []int64, denom int64) {
	basis, divisor := k.basisAndDivisor()
	n := k.NumLayers()
	shifts := make([]int, n)
	maxShift := 0
	for l := 0; l < n; l++ {
		var energy int64
		for t := 0; t < n; t++ {
			v := int64(basis(l, t))
			energy += v * v
		}
		shift := 0
		for e := energy / int64(divisor); e > 1; e >>= 1 {
			shift++
		}
		shifts[l] = shift
		if shift > maxShift {
			maxShift = shift
		}
	}
	numer = make([]int64, n)
	for l := 0; l < n; l++ {
		numer[l] = int64(1) << (maxShift - shifts[l])
	}
	denom = int64(1) << maxShift
	return numer, denom
}

// Inverse reconstructs a width x height block of int16 residuals from
// NumLayers layer surfaces of size (width/bs)x(height/bs) each.
func (k Kind) Inverse(layers [][]int16, width, height int) ([]int16, error) {
	bs := k.BlockSize()
	numLayers := k.NumLayers()
	if len(layers) != numLayers {
		return nil, errors.Errorf("transform: got %d layers, want %d", len(layers), numLayers)
	}
	if width%bs != 0 || height%bs != 0 {
		return nil, errors.Errorf("transform: dimensions %dx%d not divisible by block size %d", width, height, bs)
	}
	lw, lh := width/bs, height/bs
	for l, layer := range layers {
		if len(layer) != lw*lh {
			return nil, errors.Errorf("transform: layer %d has %d elements, want %d", l, len(layer), lw*lh)
		}
	}
	basis, _ := k.basisAndDivisor()
	numer, denom := k.rowScale()
	out := make([]int16, width*height)

	for by := 0; by < lh; by++ {
		for bx := 0; bx < lw; bx++ {
			for ty := 0; ty < bs; ty++ {
				for tx := 0; tx < bs; tx++ {
					tap := ty*bs + tx
					var sum int64
					for l := 0; l < numLayers; l++ {
						sum += int64(layers[l][by*lw+bx]) * int64(basis(l, tap)) * numer[l]
					}
					out[(by*bs+ty)*width+(bx*bs+tx)] = int16(divTowardZero(sum, denom))
				}
			}
		}
	}
	return out, nil
}
