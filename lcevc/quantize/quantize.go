/*
NAME
  quantize.go

DESCRIPTION
  quantize.go implements per-layer step-width and dead-zone derivation,
  quantization (including SAD-guided motion-adaptive dead-zone reduction),
  and dequantization, per spec.md §4.5.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package quantize implements the step-width/dead-zone derivation and the
// forward/inverse quantization operators, reproducing the reference
// model's fixed-point arithmetic exactly (including its 64-bit
// intermediate widening) so that step widths and reconstructed residuals
// match bit for bit.
package quantize

import (
	"math"

	"github.com/ausocean/lcevc/tables"
)

// LoQ identifies which sub-layer a layer belongs to, since the default
// quantization matrix and the "BothPrevious" persistence behaviour both
// special-case LoQ-1.
type LoQ int

const (
	LoQ1 LoQ = iota
	LoQ2
)

// Mode selects how find_quant_matrix_coeff resolves a layer's coefficient:
// spec.md §4.5's six quant-matrix modes.
type Mode int

const (
	// BothPrevious carries the previous picture's resolved coefficient
	// forward on non-IDR pictures, and falls back to the per-loq default
	// table on IDR pictures or when no previous value exists.
	BothPrevious Mode = iota
	// BothDefault always uses the per-loq default table.
	BothDefault
	// SameAndCustom uses a single custom table for both LoQ levels.
	SameAndCustom
	// Level2CustomLevel1Default customizes LoQ-2 only.
	Level2CustomLevel1Default
	// Level2DefaultLevel1Custom customizes LoQ-1 only.
	Level2DefaultLevel1Custom
	// DifferentAndCustom customizes both LoQ levels independently.
	DifferentAndCustom
)

// OffsetMode selects the dequant offset derivation spec.md §4.5 describes.
type OffsetMode int

const (
	OffsetDefault     OffsetMode = iota // Offset scaled by the step-width logs.
	OffsetConstOffset                   // Offset taken directly from the signalled value.
)

// Config carries the per-picture dequant-offset and quant-matrix signalling
// needed by the derivation functions below.
type Config struct {
	DequantOffsetSignalled bool
	DequantOffsetMode      OffsetMode
	DequantOffset          int32

	QuantMatrixMode Mode
	// QMCoeff1/QMCoeff2 are the signalled custom coefficients for LoQ-1 and
	// LoQ-2 respectively, indexed by layer; only consulted by the Mode
	// values that reference a custom table.
	QMCoeff1, QMCoeff2 []int32
}

func defaultQMRow(numLayers int, horizontalOnly bool, loq LoQ) []uint8 {
	if numLayers == 4 {
		if loq == LoQ1 {
			return tables.QMDefault2x2[2][:]
		}
		if horizontalOnly {
			return tables.QMDefault2x2[0][:]
		}
		return tables.QMDefault2x2[1][:]
	}
	if loq == LoQ1 {
		return tables.QMDefault4x4[2][:]
	}
	if horizontalOnly {
		return tables.QMDefault4x4[0][:]
	}
	return tables.QMDefault4x4[1][:]
}

// ResolveQM resolves the quantization-matrix coefficient for one layer, per
// spec.md §4.5's six-mode table (grounded on find_quant_matrix_coeff in
// InverseQuantize.cpp). previous is the value resolved for this same layer
// on the prior picture, or -1 if there is none yet.
func ResolveQM(cfg Config, numLayers int, horizontalOnly bool, loq LoQ, layer int, isIDR bool, previous int32) int32 {
	d := defaultQMRow(numLayers, horizontalOnly, loq)
	switch cfg.QuantMatrixMode {
	case BothPrevious:
		if isIDR {
			return int32(d[layer])
		}
		if previous == -1 {
			return int32(d[layer])
		}
		return previous
	case BothDefault:
		return int32(d[layer])
	case SameAndCustom:
		return cfg.QMCoeff2[layer]
	case Level2CustomLevel1Default:
		if loq == LoQ2 {
			return cfg.QMCoeff2[layer]
		}
		return int32(d[layer])
	case Level2DefaultLevel1Custom:
		if loq == LoQ1 {
			return cfg.QMCoeff1[layer]
		}
		return int32(d[layer])
	case DifferentAndCustom:
		if loq == LoQ2 {
			return cfg.QMCoeff2[layer]
		}
		return cfg.QMCoeff1[layer]
	default:
		return int32(d[layer])
	}
}

func clamp64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DirectStepWidth derives the per-layer "dirq" step width from the
// signalled base step width and a resolved QM coefficient, reproducing
// find_dirq_step_width's 64-bit fixed-point arithmetic exactly.
func DirectStepWidth(origStepWidth, qmCoeff int32) int32 {
	v := int64(qmCoeff)
	v = v*int64(origStepWidth) + (1 << 16)
	v = clamp64(v, 0, 3<<16)
	v = (v * int64(origStepWidth)) >> 16
	v = clamp64(v, tables.MinStepWidth, tables.MaxStepWidth)
	return int32(v)
}

// InvQOffset derives the dequant offset signalled for one layer, per
// find_invq_offset.
func InvQOffset(cfg Config, origStepWidth, dirqStepWidth int32) int32 {
	if !cfg.DequantOffsetSignalled || cfg.DequantOffset == 0 {
		return cfg.DequantOffset
	}
	logDirq := int64(float64(-tables.CConst) * math.Log(float64(dirqStepWidth)))
	logOrig := int64(float64(tables.CConst) * math.Log(float64(origStepWidth)))

	var offset64 int64
	switch cfg.DequantOffsetMode {
	case OffsetConstOffset:
		offset64 = int64(cfg.DequantOffset) << 9
	case OffsetDefault:
		offset64 = int64(cfg.DequantOffset) << 11
	}
	offset64 = (logDirq + logOrig + offset64) * int64(dirqStepWidth)
	return int32(offset64 >> 16)
}

// InvQStepWidth derives the final inverse-quantization step width, per
// find_invq_step_width.
func InvQStepWidth(cfg Config, dirqStepWidth, invqOffset int32) int32 {
	if !cfg.DequantOffsetSignalled {
		modi := int64(float64(tables.DConst) - float64(tables.CConst)*math.Log(float64(dirqStepWidth)))
		modi = modi * int64(dirqStepWidth) * int64(dirqStepWidth)
		modi = (modi / 32768) >> 16
		return int32(clamp64(int64(dirqStepWidth)+modi, tables.MinStepWidth, tables.MaxStepWidth))
	}
	switch cfg.DequantOffsetMode {
	case OffsetConstOffset:
		return dirqStepWidth
	case OffsetDefault:
		modi := int64(invqOffset) * int64(dirqStepWidth) / 32768
		return int32(clamp64(int64(dirqStepWidth)+modi, tables.MinStepWidth, tables.MaxStepWidth))
	}
	return dirqStepWidth
}

// LayerDeadzone derives the additive dead-zone for one layer, per
// find_layer_deadzone.
func LayerDeadzone(origStepWidth, stepWidth int32) int32 {
	if origStepWidth > 16 {
		dz := (int64(tables.AConst)*int64(stepWidth) + int64(tables.BConst)) >> 1
		dz = (1 << 16) - dz
		dz = (dz * int64(stepWidth)) >> 16
		return int32(dz)
	}
	return origStepWidth >> 1
}

// InvQAppliedOffset derives the signed offset InverseQuantize applies on
// top of the step-width multiply, per find_invq_applied_offset.
func InvQAppliedOffset(cfg Config, invqOffset, layerDeadzone int32) int32 {
	if !cfg.DequantOffsetSignalled || cfg.DequantOffsetMode == OffsetDefault {
		return -layerDeadzone
	}
	return invqOffset - layerDeadzone
}

func clampInt16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func sign16(v int16) int16 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clampCoeff(v int16) int16 {
	if v > 8191 {
		return 8191
	}
	if v < -8192 {
		return -8192
	}
	return v
}

// Quantize quantizes values with the given step width and dead-zone. When
// sad is non-nil and threshold is in [1,4], it applies the motion-adaptive
// dead-zone reduction from Quantize.cpp: large per-pel SAD disables the
// reduction (the block is moving enough that the regular dead-zone already
// suppresses noise correctly); otherwise a smaller "reduced" dead-zone is
// evaluated alongside the regular one and the difference nudges the
// quantized coefficient by at most one step, never from a non-zero value
// to zero.
func Quantize(values []int16, stepWidth, deadzone int32, sad []int16, transformBlockSize int, threshold int) []int16 {
	out := make([]int16, len(values))
	sadThreshold := int32(100)
	if transformBlockSize == 4 {
		sadThreshold = 200
	}
	guided := sad != nil && threshold > 0 && threshold < 5
	for i, in := range values {
		s := int32(sign16(in))
		base := s * max32(0, (s*int32(in)+deadzone)/stepWidth)

		if !guided || int32(sad[i]) > sadThreshold {
			out[i] = clampCoeff(int16(base))
			continue
		}
		rDeadzone := (int32(threshold) * deadzone) / 5
		reduction := s * min32(1, max32(0, (s*int32(in)+rDeadzone)/stepWidth))
		correction := s * min32(1, max32(0, (s*int32(in)+deadzone)/stepWidth))
		q := base + reduction - correction
		if q == 0 && base != 0 {
			q = base
		}
		out[i] = clampCoeff(int16(q))
	}
	return out
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Dequantize reconstructs residuals from quantized coefficients, per
// InverseQuantize::process: out = c*stepWidth + sign(c)*appliedOffset,
// clamped to int16.
func Dequantize(values []int16, stepWidth, appliedOffset int32) []int16 {
	out := make([]int16, len(values))
	for i, c := range values {
		switch {
		case c > 0:
			out[i] = clampInt16(int32(c)*stepWidth + appliedOffset)
		case c < 0:
			out[i] = clampInt16(int32(c)*stepWidth - appliedOffset)
		default:
			out[i] = 0
		}
	}
	return out
}
