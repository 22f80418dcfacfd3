/*
NAME
  dimensions.go

DESCRIPTION
  dimensions.go derives the per-plane, per-LoQ pel and transform-block-grid
  dimensions from a picture's base resolution, Global.ScalingModeLoQ1/2, and
  Global.TransformBlockSize, per spec.md §3's Dimensions entity.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitstream

import (
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/resample"
)

// PlaneDimensions holds one plane's pel dimensions at the base resolution
// and at LoQ-1/LoQ-2, plus each LoQ's transform-block grid dimensions
// (pel dimensions rounded up to a multiple of the transform block size).
type PlaneDimensions struct {
	BaseWidth, BaseHeight int

	LoQ1Width, LoQ1Height int
	LoQ2Width, LoQ2Height int

	LoQ1TileWidth, LoQ1TileHeight int // in transform blocks
	LoQ2TileWidth, LoQ2TileHeight int
}

// Dimensions holds PlaneDimensions for every processed plane of a picture,
// indexed the same way as the Image it describes.
type Dimensions struct {
	Planes []PlaneDimensions
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// roundUpToBlock rounds v up to the next multiple of blockSize.
func roundUpToBlock(v, blockSize int) int {
	return ceilDiv(v, blockSize) * blockSize
}

// scaleDownDim halves a dimension per the scaling mode's effect on that axis,
// rounding up: a LoQ's coded resolution is the base resolution downscaled by
// the same factor its upsampler will later restore.
func scaleDownDim(v int, scaled bool) int {
	if !scaled {
		return v
	}
	return ceilDiv(v, 2)
}

// derivePlane computes one plane's PlaneDimensions from its base resolution.
func derivePlane(baseWidth, baseHeight int, loq1, loq2 resample.ScalingMode, blockSize int) PlaneDimensions {
	d := PlaneDimensions{BaseWidth: baseWidth, BaseHeight: baseHeight}

	// Full (sub-layer-2) resolution is always the plane's base resolution;
	// LoQ-2 codes residuals at that same resolution unless LoQ-2 itself
	// applies additional downscaling relative to full res, which this
	// codec does not: LoQ-2 is coded at full res and LoQ-1 is coded at
	// whatever resolution is below it, per the scaling mode chain
	// full -> LoQ-2 -> LoQ-1.
	d.LoQ2Width, d.LoQ2Height = baseWidth, baseHeight

	w, h := baseWidth, baseHeight
	xScaled, yScaled := axesScaled(loq2)
	w, h = scaleDownDim(w, xScaled), scaleDownDim(h, yScaled)

	xScaled, yScaled = axesScaled(loq1)
	d.LoQ1Width = scaleDownDim(w, xScaled)
	d.LoQ1Height = scaleDownDim(h, yScaled)

	d.LoQ1TileWidth = roundUpToBlock(d.LoQ1Width, blockSize) / blockSize
	d.LoQ1TileHeight = roundUpToBlock(d.LoQ1Height, blockSize) / blockSize
	d.LoQ2TileWidth = roundUpToBlock(d.LoQ2Width, blockSize) / blockSize
	d.LoQ2TileHeight = roundUpToBlock(d.LoQ2Height, blockSize) / blockSize

	return d
}

// axesScaled reports whether mode scales the horizontal/vertical axis.
func axesScaled(mode resample.ScalingMode) (x, y bool) {
	switch mode {
	case resample.Scale1D:
		return true, false
	case resample.Scale2D:
		return true, true
	default:
		return false, false
	}
}

// DeriveDimensions computes the per-plane Dimensions for a picture with the
// given base (full) resolution and colour space, per g's scaling modes and
// transform block size.
func DeriveDimensions(baseWidth, baseHeight int, cs image.ColourSpace, g Global) Dimensions {
	n := cs.NumPlanes()
	if g.NumProcessedPlanes > 0 && g.NumProcessedPlanes < n {
		n = g.NumProcessedPlanes
	}
	planes := make([]PlaneDimensions, n)
	for p := 0; p < n; p++ {
		w, h := baseWidth, baseHeight
		if p > 0 {
			xs, ys := cs.ChromaShift()
			w, h = w>>xs, h>>ys
		}
		planes[p] = derivePlane(w, h, g.ScalingModeLoQ1, g.ScalingModeLoQ2, g.TransformBlockSize)
	}
	return Dimensions{Planes: planes}
}
