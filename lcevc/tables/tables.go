/*
NAME
  tables.go

DESCRIPTION
  tables.go carries the bit-exact static tables and constants referenced by
  the transform, quantize, and resample packages: transform basis matrices,
  default quantization matrix coefficients, and the A/B/C/D step-width
  constants. Reproduced verbatim from the ISO/IEC LTM reference model.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tables holds the large compile-time constant tables shared across
// the core pipeline: transform basis matrices, quantization matrix
// defaults, the step-width derivation constants, and the resolution table.
package tables

// Step width bounds, shared by the quantize package's clamps.
const (
	MinStepWidth = 1
	MaxStepWidth = 32767
)

// Dead-zone and offset derivation constants, reproduced verbatim from the
// reference model's InverseQuantize.cpp. Their values are not derived from
// anything else in this spec; see DESIGN.md's Open Question note.
const (
	AConst = 39
	BConst = 126484
	CConst = 5242
	DConst = 99614
)

// DD2x2Basis holds the four {A, H, V, D} basis rows for the 2x2 transform,
// flattened row-major (each row has 4 entries: the coefficients applied to
// the 2x2 input block in raster order).
var DD2x2Basis = [4][4]int32{
	{1, 1, 1, 1},   // A (average)
	{1, -1, 1, -1}, // H (horizontal difference)
	{1, 1, -1, -1}, // V (vertical difference)
	{1, -1, -1, 1}, // D (diagonal difference)
}

// DD2x2Divisor is the divisor applied after the forward DD transform's
// inner product.
const DD2x2Divisor = 4

// DD1DBasis holds the 1-D scaling-mode variant of the 2x2 transform: still
// 4 layers over a 2x2 block, but combining only horizontally adjacent
// pels (the zero entries suppress the vertical pairing DD2x2Basis uses).
var DD1DBasis = [4][4]int32{
	{+2, +2, 0, 0},
	{+1, -1, +1, -1},
	{+1, -1, -1, +1},
	{0, 0, +2, +2},
}

// DD1DDivisor is the divisor for the 1-D 2x2 transform.
const DD1DDivisor = 4

// DDS4x4Basis holds the 16 basis rows for the 4x4 transform, each a ±1
// pattern over the 16 input pels in raster order, reproduced from the
// reference model's TransformDDS.cpp.
var DDS4x4Basis = [16][16]int32{
	{+1, +1, +1, +1, +1, +1, +1, +1, +1, +1, +1, +1, +1, +1, +1, +1}, // 0,0
	{+1, +1, -1, -1, +1, +1, -1, -1, +1, +1, -1, -1, +1, +1, -1, -1}, // 1,0
	{+1, +1, +1, +1, +1, +1, +1, +1, -1, -1, -1, -1, -1, -1, -1, -1}, // 2,0
	{+1, +1, -1, -1, +1, +1, -1, -1, -1, -1, +1, +1, -1, -1, +1, +1}, // 3,0

	{+1, -1, +1, -1, +1, -1, +1, -1, +1, -1, +1, -1, +1, -1, +1, -1}, // 0,1
	{+1, -1, -1, +1, +1, -1, -1, +1, +1, -1, -1, +1, +1, -1, -1, +1}, // 1,1
	{+1, -1, +1, -1, +1, -1, +1, -1, -1, +1, -1, +1, -1, +1, -1, +1}, // 2,1
	{+1, -1, -1, +1, +1, -1, -1, +1, -1, +1, +1, -1, -1, +1, +1, -1}, // 3,1

	{+1, +1, +1, +1, -1, -1, -1, -1, +1, +1, +1, +1, -1, -1, -1, -1}, // 0,2
	{+1, +1, -1, -1, -1, -1, +1, +1, +1, +1, -1, -1, -1, -1, +1, +1}, // 1,2
	{+1, +1, +1, +1, -1, -1, -1, -1, -1, -1, -1, -1, +1, +1, +1, +1}, // 2,2
	{+1, +1, -1, -1, -1, -1, +1, +1, -1, -1, +1, +1, +1, +1, -1, -1}, // 3,2

	{+1, -1, +1, -1, -1, +1, -1, +1, +1, -1, +1, -1, -1, +1, -1, +1}, // 0,3
	{+1, -1, -1, +1, -1, +1, +1, -1, +1, -1, -1, +1, -1, +1, +1, -1}, // 1,3
	{+1, -1, +1, -1, -1, +1, -1, +1, -1, +1, -1, +1, +1, -1, +1, -1}, // 2,3
	{+1, -1, -1, +1, -1, +1, +1, -1, -1, +1, +1, -1, +1, -1, -1, +1}, // 3,3
}

// DDS4x4Divisor is the divisor applied after the forward DDS transform's
// inner product.
const DDS4x4Divisor = 16

// DDS1DBasis holds the 1-D scaling-mode variant of the 4x4 transform: still
// 16 layers over a 4x4 block, with zero entries suppressing the vertical
// pairing DDS4x4Basis uses.
var DDS1DBasis = [16][16]int32{
	{+2, +2, +2, +2, 0, 0, 0, 0, +2, +2, +2, +2, 0, 0, 0, 0},
	{+2, +2, -2, -2, 0, 0, 0, 0, +2, +2, -2, -2, 0, 0, 0, 0},
	{+2, +2, +2, +2, 0, 0, 0, 0, -2, -2, -2, -2, 0, 0, 0, 0},
	{+2, +2, -2, -2, 0, 0, 0, 0, -2, -2, +2, +2, 0, 0, 0, 0},

	{+1, -1, +1, -1, +1, -1, +1, -1, +1, -1, +1, -1, +1, -1, +1, -1},
	{+1, -1, -1, +1, +1, -1, -1, +1, +1, -1, -1, +1, +1, -1, -1, +1},
	{+1, -1, +1, -1, +1, -1, +1, -1, -1, +1, -1, +1, -1, +1, -1, +1},
	{+1, -1, -1, +1, +1, -1, -1, +1, -1, +1, +1, -1, -1, +1, +1, -1},

	{0, 0, 0, 0, +2, +2, +2, +2, 0, 0, 0, 0, +2, +2, +2, +2},
	{0, 0, 0, 0, +2, +2, -2, -2, 0, 0, 0, 0, +2, +2, -2, -2},
	{0, 0, 0, 0, +2, +2, +2, +2, 0, 0, 0, 0, -2, -2, -2, -2},
	{0, 0, 0, 0, +2, +2, -2, -2, 0, 0, 0, 0, -2, -2, +2, +2},

	{+1, -1, +1, -1, -1, +1, -1, +1, +1, -1, +1, -1, -1, +1, -1, +1},
	{+1, -1, -1, +1, -1, +1, +1, -1, +1, -1, -1, +1, -1, +1, +1, -1},
	{+1, -1, +1, -1, -1, +1, -1, +1, -1, +1, -1, +1, +1, -1, +1, -1},
	{+1, -1, -1, +1, -1, +1, +1, -1, -1, +1, +1, -1, +1, -1, -1, +1},
}

// DDS1DDivisor is the divisor for the 1-D 4x4 transform.
const DDS1DDivisor = 16

// QMDefault4x4 holds the three default 4x4 quantization matrix coefficient
// sets selected by loq/horizontal-only: index 0 is LoQ-2 1-D, index 1 is
// LoQ-2 2-D, index 2 is LoQ-1.
var QMDefault4x4 = [3][16]uint8{
	{13, 26, 19, 32, 52, 1, 78, 9, 13, 26, 19, 32, 150, 91, 91, 19},
	{13, 26, 19, 32, 52, 1, 78, 9, 26, 72, 0, 3, 150, 91, 91, 19},
	{0, 0, 0, 2, 52, 1, 78, 9, 26, 72, 0, 3, 150, 91, 91, 19},
}

// QMDefault2x2 holds the three default 2x2 quantization matrix coefficient
// sets, indexed the same way as QMDefault4x4.
var QMDefault2x2 = [3][4]uint8{
	{0, 2, 0, 0},
	{32, 3, 0, 32},
	{0, 3, 0, 32},
}

// CubicUpsampleCoeffs holds the fixed 4-tap coefficients the cubic upsample
// kernel applies to the input pels at offsets {-1, 0, +1, +2} to produce one
// interpolated (odd-position) output sample. Fixed-point with
// CubicUpsamplePrecision fractional bits; the taps sum to 1<<precision.
var CubicUpsampleCoeffs = [4]int32{-4, 36, 36, -4}

// CubicUpsamplePrecision is the right-shift applied after the cubic tap
// accumulation.
const CubicUpsamplePrecision = 6

// ModifiedCubicUpsampleCoeffs is a softer cubic variant with a shallower
// overshoot, for sequences where the plain cubic kernel rings visibly.
var ModifiedCubicUpsampleCoeffs = [4]int32{-3, 35, 35, -3}

// ModifiedCubicUpsamplePrecision is the right-shift for ModifiedCubicUpsampleCoeffs.
const ModifiedCubicUpsamplePrecision = 6
