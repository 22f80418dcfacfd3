/*
NAME
  helpers.go

DESCRIPTION
  helpers.go implements the per-plane building blocks pipeline.go composes:
  the forward/inverse quantization pass over one sub-layer's residual
  (deriving each layer's step width, dead-zone and offset exactly as
  package quantize's InverseQuantize.cpp-grounded functions require),
  block-granular statistics feeding the temporal cost decision, and the
  Surface<->pel conversions sitting either side of package resample.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codec

import (
	"github.com/ausocean/lcevc/bitstream"
	"github.com/ausocean/lcevc/quantize"
	"github.com/ausocean/lcevc/surface"
	"github.com/ausocean/lcevc/temporal"
	"github.com/ausocean/lcevc/transform"
)

// loqResult is one sub-layer's quantize-stage output: the per-layer
// quantized coefficient grids, the pel-domain residual the inverse
// transform reconstructed from them, the resolved QM coefficients (to
// seed the next picture's BothPrevious mode), the coded layer shape, and
// the layer-0 inverse-quantization step width used as the temporal cost
// decision's lambda.
type loqResult struct {
	coeffs        [][]int16
	reconResidual []int16
	qmUsed        []int32
	shape         bitstream.LayerShape
	invqSW0       int32
}

// layerDerivation is one residual layer's resolved quantization
// parameters, shared between the forward (quantizeLoQ) and inverse
// (dequantizeLoQ) paths since both must derive identical values from the
// same signalled step width and QM mode.
type layerDerivation struct {
	dirqStepWidth int32
	deadzone      int32
	invqStepWidth int32
	appliedOffset int32
	qm            int32
}

// deriveLayers resolves every layer's quantization parameters for one
// sub-layer, following the exact chain ResolveQM -> DirectStepWidth ->
// LayerDeadzone -> InvQOffset -> InvQStepWidth -> InvQAppliedOffset.
func deriveLayers(qcfg quantize.Config, numLayers int, horizontalOnly bool, loq quantize.LoQ, stepWidth int32, isIDR bool, prevQM []int32) []layerDerivation {
	out := make([]layerDerivation, numLayers)
	for l := 0; l < numLayers; l++ {
		prev := int32(-1)
		if l < len(prevQM) {
			prev = prevQM[l]
		}
		qm := quantize.ResolveQM(qcfg, numLayers, horizontalOnly, loq, l, isIDR, prev)
		dirq := quantize.DirectStepWidth(stepWidth, qm)
		deadzone := quantize.LayerDeadzone(stepWidth, dirq)
		invqOffset := quantize.InvQOffset(qcfg, stepWidth, dirq)
		invqStepWidth := quantize.InvQStepWidth(qcfg, dirq, invqOffset)
		appliedOffset := quantize.InvQAppliedOffset(qcfg, invqOffset, deadzone)
		out[l] = layerDerivation{
			dirqStepWidth: dirq,
			deadzone:      deadzone,
			invqStepWidth: invqStepWidth,
			appliedOffset: appliedOffset,
			qm:            qm,
		}
	}
	return out
}

// roundUpToBlock rounds v up to the next multiple of blockSize.
func roundUpToBlock(v, blockSize int) int {
	return (v + blockSize - 1) / blockSize * blockSize
}

// padPels pads a width x height pel plane up to paddedWidth x
// paddedHeight by replicating the last column/row, so kind.Forward's
// exact block-size divisibility requirement is always satisfied
// regardless of a sub-layer's coded resolution.
func padPels(pels []int16, width, height, paddedWidth, paddedHeight int) []int16 {
	if width == paddedWidth && height == paddedHeight {
		return pels
	}
	out := make([]int16, paddedWidth*paddedHeight)
	for y := 0; y < height; y++ {
		copy(out[y*paddedWidth:y*paddedWidth+width], pels[y*width:(y+1)*width])
		for x := width; x < paddedWidth; x++ {
			out[y*paddedWidth+x] = pels[y*width+width-1]
		}
	}
	for y := height; y < paddedHeight; y++ {
		copy(out[y*paddedWidth:(y+1)*paddedWidth], out[(height-1)*paddedWidth:height*paddedWidth])
	}
	return out
}

// cropPels reverses padPels, discarding the replicated padding.
func cropPels(pels []int16, paddedWidth, paddedHeight, width, height int) []int16 {
	if width == paddedWidth && height == paddedHeight {
		return pels
	}
	out := make([]int16, width*height)
	for y := 0; y < height; y++ {
		copy(out[y*width:(y+1)*width], pels[y*paddedWidth:y*paddedWidth+width])
	}
	return out
}

// quantizeLoQ runs the forward transform, quantize, and a local dequantize
// + inverse transform over one sub-layer's pel-domain residual, returning
// both the coefficients to entropy code and the reconstructed residual an
// encoder needs for local decode (LoQ-1 correction, LoQ-2 temporal buffer
// update). residual/width/height may be any resolution; padding to the
// transform's block size is handled internally.
func quantizeLoQ(residual []int16, width, height int, kind transform.Kind, mode EncodingMode, loq quantize.LoQ, stepWidth int32, qcfg quantize.Config, isIDR bool, prevQM []int32) loqResult {
	bs := kind.BlockSize()
	numLayers := kind.NumLayers()
	horizontalOnly := kind == transform.DD1D || kind == transform.DDS1D

	pw, ph := roundUpToBlock(width, bs), roundUpToBlock(height, bs)
	padded := padPels(residual, width, height, pw, ph)

	skip := SkipFunc(kind, mode)
	layers, lw, lh, err := kind.Forward(padded, pw, ph, skip)
	if err != nil {
		return loqResult{shape: bitstream.LayerShape{Width: pw / bs, Height: ph / bs}}
	}

	derived := deriveLayers(qcfg, numLayers, horizontalOnly, loq, stepWidth, isIDR, prevQM)
	coeffs := make([][]int16, numLayers)
	invLayers := make([][]int16, numLayers)
	qmUsed := make([]int32, numLayers)
	for l := 0; l < numLayers; l++ {
		d := derived[l]
		coeffs[l] = quantize.Quantize(layers[l], d.dirqStepWidth, d.deadzone, nil, bs, 0)
		invLayers[l] = quantize.Dequantize(coeffs[l], d.invqStepWidth, d.appliedOffset)
		qmUsed[l] = d.qm
	}
	recon, err := kind.Inverse(invLayers, pw, ph)
	if err != nil {
		recon = make([]int16, pw*ph)
	}

	return loqResult{
		coeffs:        coeffs,
		reconResidual: cropPels(recon, pw, ph, width, height),
		qmUsed:        qmUsed,
		shape:         bitstream.LayerShape{Width: lw, Height: lh},
		invqSW0:       derived[0].invqStepWidth,
	}
}

// dequantizeLoQ is quantizeLoQ's decode-side counterpart: given already
// entropy-decoded coefficients (one grid per layer, tileWidth x
// tileHeight each), it derives the same per-layer parameters and runs
// dequantize + inverse transform to recover the pel-domain residual.
func dequantizeLoQ(coeffs [][]int16, tileWidth, tileHeight int, kind transform.Kind, width, height int, stepWidth int32, loq quantize.LoQ, qcfg quantize.Config, isIDR bool, prevQM []int32) loqResult {
	bs := kind.BlockSize()
	numLayers := kind.NumLayers()
	horizontalOnly := kind == transform.DD1D || kind == transform.DDS1D
	pw, ph := tileWidth*bs, tileHeight*bs

	derived := deriveLayers(qcfg, numLayers, horizontalOnly, loq, stepWidth, isIDR, prevQM)
	invLayers := make([][]int16, numLayers)
	qmUsed := make([]int32, numLayers)
	for l := 0; l < numLayers; l++ {
		d := derived[l]
		if l < len(coeffs) {
			invLayers[l] = quantize.Dequantize(coeffs[l], d.invqStepWidth, d.appliedOffset)
		} else {
			invLayers[l] = make([]int16, tileWidth*tileHeight)
		}
		qmUsed[l] = d.qm
	}
	recon, err := kind.Inverse(invLayers, pw, ph)
	if err != nil {
		recon = make([]int16, pw*ph)
	}

	return loqResult{
		coeffs:        coeffs,
		reconResidual: cropPels(recon, pw, ph, width, height),
		qmUsed:        qmUsed,
		shape:         bitstream.LayerShape{Width: tileWidth, Height: tileHeight},
		invqSW0:       derived[0].invqStepWidth,
	}
}

// countNonzeroPerBlock counts, for each of numBlocks transform blocks, how
// many of coeffs' layers hold a nonzero value at that block's index.
func countNonzeroPerBlock(coeffs [][]int16, numBlocks int) []int {
	out := make([]int, numBlocks)
	for _, layer := range coeffs {
		for i, v := range layer {
			if i >= numBlocks {
				break
			}
			if v != 0 {
				out[i]++
			}
		}
	}
	return out
}

// sumAbsPerBlock sums, for each of numBlocks transform blocks, the
// absolute coefficient magnitude across every layer -- the sum-of-
// absolute-values (SAV) statistic temporal.ComputeTileMap consumes.
func sumAbsPerBlock(coeffs [][]int16, numBlocks int) []int {
	out := make([]int, numBlocks)
	for _, layer := range coeffs {
		for i, v := range layer {
			if i >= numBlocks {
				break
			}
			if v < 0 {
				out[i] += int(-v)
			} else {
				out[i] += int(v)
			}
		}
	}
	return out
}

// blockSAD sums the absolute pel difference between a and b over one
// blockSize x blockSize transform block at grid position (bx, by) of a
// width-wide plane. The plane's pel dimensions are assumed to already be
// a multiple of blockSize (the LoQ-2 temporal path's transform-block
// grid, unlike LoQ-1/LoQ-2's transform stage itself, is not separately
// padded -- see DESIGN.md).
func blockSAD(a, b []int16, width, blockSize, bx, by int) int64 {
	var sad int64
	for y := 0; y < blockSize; y++ {
		row := (by*blockSize + y) * width
		for x := 0; x < blockSize; x++ {
			idx := row + bx*blockSize + x
			d := int64(a[idx]) - int64(b[idx])
			if d < 0 {
				d = -d
			}
			sad += d
		}
	}
	return sad
}

// selectByMask picks, per transform block, between the intra and inter
// pass's coefficients according to mask, producing the coefficient grids
// actually entropy coded.
func selectByMask(intraCoeffs, interCoeffs [][]int16, mask []temporal.Mask) [][]int16 {
	out := make([][]int16, len(intraCoeffs))
	for l := range intraCoeffs {
		layer := make([]int16, len(intraCoeffs[l]))
		for i := range layer {
			if mask[i] == temporal.Intr {
				layer[i] = intraCoeffs[l][i]
			} else {
				layer[i] = interCoeffs[l][i]
			}
		}
		out[l] = layer
	}
	return out
}

// buildRawRecon picks, per pel, between the intra and inter pass's
// reconstructed residual according to its transform block's mask,
// producing the plane temporal.UpdateBuffer consumes as its current
// picture's residuals argument.
func buildRawRecon(intraRecon, interRecon []int16, mask []temporal.Mask, width, height, blockSize int) []int16 {
	maskWidth := width / blockSize
	out := make([]int16, width*height)
	for y := 0; y < height; y++ {
		by := y / blockSize
		for x := 0; x < width; x++ {
			bx := x / blockSize
			idx := y*width + x
			if mask[by*maskWidth+bx] == temporal.Intr {
				out[idx] = intraRecon[idx]
			} else {
				out[idx] = interRecon[idx]
			}
		}
	}
	return out
}

// pelsFromSurface flattens a Surface into a row-major int16 pel array.
func pelsFromSurface(s surface.Surface) ([]int16, error) {
	w, h := s.Width(), s.Height()
	out := make([]int16, w*h)
	if s.ElementWidth() == surface.Width16 {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v, err := s.At16(x, y)
				if err != nil {
					return nil, err
				}
				out[y*w+x] = int16(v)
			}
		}
		return out, nil
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v, err := s.At8(x, y)
			if err != nil {
				return nil, err
			}
			out[y*w+x] = int16(v)
		}
	}
	return out, nil
}

// surfaceFromPels builds an immutable Surface from a row-major int16 pel
// array, the inverse of pelsFromSurface.
func surfaceFromPels(pels []int16, width, height int, elemW surface.ElementWidth) (surface.Surface, error) {
	b, err := surface.NewBuilder(width, height, elemW)
	if err != nil {
		return surface.Surface{}, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := pels[y*width+x]
			if elemW == surface.Width16 {
				b.Set16(x, y, uint16(v))
			} else {
				b.Set8(x, y, uint8(v))
			}
		}
	}
	return b.Finish()
}
