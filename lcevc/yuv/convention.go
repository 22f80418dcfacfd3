/*
NAME
  convention.go

DESCRIPTION
  convention.go infers a raw YUV file's resolution, bit depth, and frame
  rate from its filename, following the common `name_WxH_Dbit.yuv` /
  `name_WxH_fpsfps.yuv` test-vector naming convention used throughout the
  LCEVC/EVC conformance corpus.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package yuv

import (
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/ausocean/lcevc/image"
)

var (
	resolutionPattern = regexp.MustCompile(`_(\d+)x(\d+)_`)
	bitDepthPattern   = regexp.MustCompile(`_(\d+)bit`)
	frameRatePattern  = regexp.MustCompile(`_([0-9]+(?:\.[0-9]+)?)fps`)
)

// NameConvention carries the fields ParseNameConvention can recover from
// a filename; any field left at its zero value was not present in the
// name.
type NameConvention struct {
	Width, Height int
	BitDepth      int
	FrameRate     float64
}

// ParseNameConvention extracts resolution, bit depth, and frame rate
// from path's base name, if present. ok is false only if no resolution
// could be found, since that is the one field every convention variant
// carries.
func ParseNameConvention(path string) (NameConvention, bool) {
	name := filepath.Base(path)
	var nc NameConvention

	m := resolutionPattern.FindStringSubmatch(name)
	if m == nil {
		return NameConvention{}, false
	}
	w, err := strconv.Atoi(m[1])
	if err != nil {
		return NameConvention{}, false
	}
	h, err := strconv.Atoi(m[2])
	if err != nil {
		return NameConvention{}, false
	}
	nc.Width, nc.Height = w, h

	if m := bitDepthPattern.FindStringSubmatch(name); m != nil {
		if d, err := strconv.Atoi(m[1]); err == nil {
			nc.BitDepth = d
		}
	}
	if m := frameRatePattern.FindStringSubmatch(name); m != nil {
		if r, err := strconv.ParseFloat(m[1], 64); err == nil {
			nc.FrameRate = r
		}
	}
	return nc, true
}

// Description builds an image.Description from a NameConvention, using
// cs as the colour space (the filename convention does not carry chroma
// subsampling) and defaulting BitDepth to 8 if the name did not specify
// one.
func (nc NameConvention) Description(cs image.ColourSpace) image.Description {
	bd := nc.BitDepth
	if bd == 0 {
		bd = 8
	}
	return image.Description{
		Width:       nc.Width,
		Height:      nc.Height,
		BitDepth:    bd,
		ColourSpace: cs,
	}
}
