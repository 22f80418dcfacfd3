/*
NAME
  image.go

DESCRIPTION
  image.go provides Image and ImageDescription: an ordered plane list plus
  the format metadata needed to derive per-plane dimensions for 4:2:0,
  4:2:2, 4:4:4, and monochrome colour spaces.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package image provides the Image type: an ordered list of Surface planes
// plus the description needed to reconstruct their relative dimensions.
package image

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ausocean/lcevc/surface"
)

// ColourSpace identifies the chroma subsampling of an Image.
type ColourSpace int

// Supported colour spaces.
const (
	Monochrome ColourSpace = iota
	YUV420
	YUV422
	YUV444
)

// NumPlanes returns the number of planes (1 for monochrome, 3 otherwise).
func (c ColourSpace) NumPlanes() int {
	if c == Monochrome {
		return 1
	}
	return 3
}

// ChromaShift returns the horizontal and vertical right-shift applied to
// the luma dimensions to obtain a chroma plane's dimensions.
func (c ColourSpace) ChromaShift() (x, y int) {
	switch c {
	case YUV420:
		return 1, 1
	case YUV422:
		return 1, 0
	case YUV444, Monochrome:
		return 0, 0
	default:
		return 0, 0
	}
}

// Description carries the format metadata for an Image: base resolution,
// bit depth, and colour space. Surface element width follows bit depth: 1
// byte for 8-bit, 2 bytes for 10/12/14-bit.
type Description struct {
	Width, Height int
	BitDepth      int
	ColourSpace   ColourSpace
}

// ElementWidth returns the per-pel storage width implied by BitDepth.
func (d Description) ElementWidth() surface.ElementWidth {
	if d.BitDepth <= 8 {
		return surface.Width8
	}
	return surface.Width16
}

// PlaneDimensions returns the width and height of plane index p (0 = luma,
// 1 = Cb, 2 = Cr).
func (d Description) PlaneDimensions(p int) (w, h int, err error) {
	if p < 0 || p >= d.ColourSpace.NumPlanes() {
		return 0, 0, errors.Errorf("image: plane %d out of range for colour space %v", p, d.ColourSpace)
	}
	if p == 0 {
		return d.Width, d.Height, nil
	}
	xs, ys := d.ColourSpace.ChromaShift()
	return (d.Width + (1 << xs) - 1) >> xs, (d.Height + (1 << ys) - 1) >> ys, nil
}

// Image is an ordered list of 1 or 3 Surface planes, a Description, and a
// presentation timestamp.
type Image struct {
	Description Description
	Planes      []surface.Surface
	Timestamp   time.Duration
}

// New validates that planes matches the plane count and dimensions implied
// by desc and returns an Image.
func New(desc Description, planes []surface.Surface, ts time.Duration) (Image, error) {
	want := desc.ColourSpace.NumPlanes()
	if len(planes) != want {
		return Image{}, errors.Errorf("image: got %d planes, want %d for colour space %v", len(planes), want, desc.ColourSpace)
	}
	for p, s := range planes {
		w, h, err := desc.PlaneDimensions(p)
		if err != nil {
			return Image{}, err
		}
		if s.Width() != w || s.Height() != h {
			return Image{}, errors.Errorf("image: plane %d is %dx%d, want %dx%d", p, s.Width(), s.Height(), w, h)
		}
	}
	return Image{Description: desc, Planes: planes, Timestamp: ts}, nil
}
