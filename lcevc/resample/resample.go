/*
NAME
  resample.go

DESCRIPTION
  resample.go implements the enhancement pipeline's up/downsampling kernels,
  the predicted-residual per-block average adjustment, and the composition
  primitives (add/subtract with 15-bit clamping, bit-depth conversion) used
  to combine a base plane with L-1/L-2 residuals, per spec.md §4.7.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package resample implements 2x up/downsampling between the base,
// intermediate (LoQ-1) and full (LoQ-2) resolutions, plus the predicted-
// residual adjustment and the composition/bit-depth-conversion primitives
// that sit either side of the transform and quantize packages. All
// arithmetic is carried out on an internal 15-bit signed representation,
// matching the reference model's fixed-point pipeline.
package resample

import (
	"math"

	"github.com/mjibson/go-dsp/window"
	"github.com/pkg/errors"
)

// Kernel selects the upsampling filter.
type Kernel int

// Supported upsample kernels.
const (
	Nearest Kernel = iota
	Linear
	Cubic
	ModifiedCubic
	AdaptiveCubic
)

// DownsampleKernel selects the downsampling filter.
type DownsampleKernel int

// Supported downsample kernels.
const (
	Area DownsampleKernel = iota
	Lanczos
	Lanczos3
)

// ScalingMode selects which axes a resampling step is applied to.
type ScalingMode int

// Supported scaling modes.
const (
	// ScaleNone leaves the plane at its current resolution.
	ScaleNone ScalingMode = iota
	// Scale1D scales horizontally only.
	Scale1D
	// Scale2D scales both horizontally and vertically.
	Scale2D
)

// Internal arithmetic is carried out on a 15-bit signed representation.
const (
	minInt15 = -16384
	maxInt15 = 16383
)

func clampInt15(v int32) int16 {
	if v < minInt15 {
		return minInt15
	}
	if v > maxInt15 {
		return maxInt15
	}
	return int16(v)
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// roundShift performs a right shift with round-half-up, matching the
// reference model's fixed-point rescale-then-truncate pattern.
func roundShift(v int64, shift uint) int64 {
	if shift == 0 {
		return v
	}
	return (v + (1 << (shift - 1))) >> shift
}

// divRound divides n by d, rounding half away from zero.
func divRound(n, d int64) int64 {
	if d == 0 {
		return 0
	}
	if (n < 0) != (d < 0) {
		return -divRound(-n, d)
	}
	return (n + d/2) / d
}

func upsampleTaps(kernel Kernel, coeffs [4]int32) (taps [4]int32, precision uint) {
	switch kernel {
	case ModifiedCubic:
		return [4]int32{-3, 35, 35, -3}, 6
	case AdaptiveCubic:
		return coeffs, 6
	default: // Cubic
		return [4]int32{-4, 36, 36, -4}, 6
	}
}

// upsampleRow doubles the length of row, inserting one interpolated sample
// between each pair of existing samples. Existing samples pass through
// unchanged at even output positions, mirroring the reference upsampler's
// "centre-aligned" phase.
func upsampleRow(row []int16, kernel Kernel, coeffs [4]int32) []int16 {
	n := len(row)
	out := make([]int16, n*2)
	for i := 0; i < n; i++ {
		out[2*i] = row[i]
		var odd int32
		switch kernel {
		case Nearest:
			odd = int32(row[i])
		case Linear:
			odd = int32(roundShift(int64(row[i])+int64(row[clampIdx(i+1, n)]), 1))
		default:
			taps, precision := upsampleTaps(kernel, coeffs)
			in := [4]int32{
				int32(row[clampIdx(i-1, n)]),
				int32(row[i]),
				int32(row[clampIdx(i+1, n)]),
				int32(row[clampIdx(i+2, n)]),
			}
			var sum int64
			for t := 0; t < 4; t++ {
				sum += int64(taps[t]) * int64(in[t])
			}
			odd = int32(roundShift(sum, precision))
		}
		out[2*i+1] = clampInt15(odd)
	}
	return out
}

func transpose(plane []int16, width, height int) []int16 {
	out := make([]int16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out[x*height+y] = plane[y*width+x]
		}
	}
	return out
}

// Upsample scales plane (width x height, row-major) by 2x according to
// mode, applying kernel along each scaled axis. coeffs carries the four
// signalled taps for AdaptiveCubic and is ignored otherwise.
func Upsample(plane []int16, width, height int, mode ScalingMode, kernel Kernel, coeffs [4]int32) (out []int16, outWidth, outHeight int, err error) {
	if width <= 0 || height <= 0 || len(plane) != width*height {
		return nil, 0, 0, errors.Errorf("resample: plane length %d does not match %dx%d", len(plane), width, height)
	}
	switch mode {
	case ScaleNone:
		out = make([]int16, len(plane))
		copy(out, plane)
		return out, width, height, nil
	case Scale1D:
		out = make([]int16, width*2*height)
		for y := 0; y < height; y++ {
			row := upsampleRow(plane[y*width:(y+1)*width], kernel, coeffs)
			copy(out[y*width*2:(y+1)*width*2], row)
		}
		return out, width * 2, height, nil
	case Scale2D:
		wide := make([]int16, width*2*height)
		for y := 0; y < height; y++ {
			row := upsampleRow(plane[y*width:(y+1)*width], kernel, coeffs)
			copy(wide[y*width*2:(y+1)*width*2], row)
		}
		// Scale vertically by transposing, upsampling rows (now columns),
		// then transposing back.
		t := transpose(wide, width*2, height)
		tOut := make([]int16, (width*2)*(height*2))
		for x := 0; x < width*2; x++ {
			col := upsampleRow(t[x*height:(x+1)*height], kernel, coeffs)
			copy(tOut[x*height*2:(x+1)*height*2], col)
		}
		out = transpose(tOut, height*2, width*2)
		return out, width * 2, height * 2, nil
	default:
		return nil, 0, 0, errors.Errorf("resample: unsupported scaling mode %v", mode)
	}
}

// lowpassTaps builds a windowed-sinc half-band low-pass filter with the
// given support length, the same sinc*window construction the teacher's
// PCM filter package uses to build FIR lowpass/highpass filters (see
// codec/pcm/filters.go's newLoHiFilter), here reused to build the
// anti-aliasing prefilter for 2x decimation (cutoff at one quarter of the
// original sample rate, i.e. the new Nyquist frequency).
func lowpassTaps(length int) []float64 {
	const fd = 0.25
	size := length + 1
	coeffs := make([]float64, size)
	winData := window.FlatTop(size)
	b := 2 * math.Pi * fd
	for n := 0; n < length/2; n++ {
		c := float64(n) - float64(length)/2
		y := math.Sin(c*b) / (math.Pi * c)
		coeffs[n] = y * winData[n]
		coeffs[size-1-n] = coeffs[n]
	}
	coeffs[length/2] = 2 * fd * winData[length/2]
	return coeffs
}

func downsampleRow(row []int16, kernel DownsampleKernel) []int16 {
	n := len(row)
	outN := (n + 1) / 2
	out := make([]int16, outN)
	switch kernel {
	case Area:
		for i := 0; i < outN; i++ {
			a := int64(row[2*i])
			b := a
			if 2*i+1 < n {
				b = int64(row[2*i+1])
			}
			out[i] = clampInt15(int32(divRound(a+b, 2)))
		}
	case Lanczos, Lanczos3:
		support := 8
		if kernel == Lanczos3 {
			support = 12
		}
		taps := lowpassTaps(support)
		half := support / 2
		for i := 0; i < outN; i++ {
			center := 2 * i
			var sum float64
			for t := range taps {
				idx := clampIdx(center-half+t, n)
				sum += taps[t] * float64(row[idx])
			}
			out[i] = clampInt15(int32(math.Round(sum)))
		}
	}
	return out
}

// Downsample reduces plane by 2x along the axes mode selects, using kernel
// as the anti-aliasing filter.
func Downsample(plane []int16, width, height int, mode ScalingMode, kernel DownsampleKernel) (out []int16, outWidth, outHeight int, err error) {
	if width <= 0 || height <= 0 || len(plane) != width*height {
		return nil, 0, 0, errors.Errorf("resample: plane length %d does not match %dx%d", len(plane), width, height)
	}
	switch mode {
	case ScaleNone:
		out = make([]int16, len(plane))
		copy(out, plane)
		return out, width, height, nil
	case Scale1D:
		outW := (width + 1) / 2
		out = make([]int16, outW*height)
		for y := 0; y < height; y++ {
			row := downsampleRow(plane[y*width:(y+1)*width], kernel)
			copy(out[y*outW:(y+1)*outW], row)
		}
		return out, outW, height, nil
	case Scale2D:
		outW := (width + 1) / 2
		narrow := make([]int16, outW*height)
		for y := 0; y < height; y++ {
			row := downsampleRow(plane[y*width:(y+1)*width], kernel)
			copy(narrow[y*outW:(y+1)*outW], row)
		}
		t := transpose(narrow, outW, height)
		outH := (height + 1) / 2
		tOut := make([]int16, outW*outH)
		for x := 0; x < outW; x++ {
			col := downsampleRow(t[x*height:(x+1)*height], kernel)
			copy(tOut[x*outH:(x+1)*outH], col)
		}
		out = transpose(tOut, outH, outW)
		return out, outW, outH, nil
	default:
		return nil, 0, 0, errors.Errorf("resample: unsupported scaling mode %v", mode)
	}
}

// AdjustPredictedResidual rebiases each transformBlockSize x
// transformBlockSize block of upsampled so that its average matches the
// corresponding block's average in base, compensating for the per-block
// rounding drift integer upsampling introduces. base and upsampled must be
// the same resolution (the base plane already expanded to this level).
func AdjustPredictedResidual(upsampled, base []int16, width, height, transformBlockSize int) []int16 {
	out := make([]int16, len(upsampled))
	copy(out, upsampled)
	for by := 0; by < height; by += transformBlockSize {
		bh := transformBlockSize
		if by+bh > height {
			bh = height - by
		}
		for bx := 0; bx < width; bx += transformBlockSize {
			bw := transformBlockSize
			if bx+bw > width {
				bw = width - bx
			}
			var sumU, sumB int64
			for y := 0; y < bh; y++ {
				for x := 0; x < bw; x++ {
					idx := (by+y)*width + (bx + x)
					sumU += int64(upsampled[idx])
					sumB += int64(base[idx])
				}
			}
			bias := int32(divRound(sumB-sumU, int64(bw*bh)))
			if bias == 0 {
				continue
			}
			for y := 0; y < bh; y++ {
				for x := 0; x < bw; x++ {
					idx := (by+y)*width + (bx + x)
					out[idx] = clampInt15(int32(out[idx]) + bias)
				}
			}
		}
	}
	return out
}

// ComposeAdd adds b into a elementwise, clamping to the 15-bit internal
// representation, per the composition formula's "+=" steps.
func ComposeAdd(a, b []int16) []int16 {
	out := make([]int16, len(a))
	for i := range a {
		out[i] = clampInt15(int32(a[i]) + int32(b[i]))
	}
	return out
}

// ComposeSub subtracts b from a elementwise, clamping to the 15-bit
// internal representation. Used on the encode side to form a sub-layer's
// residual ahead of the forward transform.
func ComposeSub(a, b []int16) []int16 {
	out := make([]int16, len(a))
	for i := range a {
		out[i] = clampInt15(int32(a[i]) - int32(b[i]))
	}
	return out
}

// ConvertDepth rescales values from fromBits to toBits by shift-with-
// rounding, per spec.md §4.7's bit-depth conversion between base,
// intermediate and enhancement planes.
func ConvertDepth(values []int16, fromBits, toBits int) []int16 {
	out := make([]int16, len(values))
	shift := toBits - fromBits
	switch {
	case shift == 0:
		copy(out, values)
	case shift > 0:
		for i, v := range values {
			out[i] = clampInt15(int32(v) << uint(shift))
		}
	default:
		s := uint(-shift)
		for i, v := range values {
			out[i] = int16(roundShift(int64(v), s))
		}
	}
	return out
}
