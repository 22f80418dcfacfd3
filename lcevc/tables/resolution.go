/*
NAME
  resolution.go

DESCRIPTION
  resolution.go carries the preset resolution table referenced by
  spec.md §6: 51 indexed (width, height) presets, with index 63 reserved to
  signal a custom two-field 16-bit resolution.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tables

// CustomResolutionIndex is the sentinel index signalling that the two
// following 16-bit dimension fields carry the actual width/height, rather
// than an index into Resolutions.
const CustomResolutionIndex = 63

// resolution is one (width, height) preset.
type resolution struct {
	Width, Height int
}

// Resolutions is the 51-entry preset table (indices 0..50) of common
// source resolutions, ordered by ascending width and, for equal widths, by
// ascending height; aspect ratios are interleaved rather than grouped.
var Resolutions = [51]resolution{
	{Width: 128, Height: 96},
	{Width: 160, Height: 120},
	{Width: 176, Height: 144},
	{Width: 192, Height: 144},
	{Width: 320, Height: 180},
	{Width: 320, Height: 240},
	{Width: 352, Height: 240},
	{Width: 352, Height: 288},
	{Width: 384, Height: 288},
	{Width: 400, Height: 300},
	{Width: 416, Height: 240},
	{Width: 480, Height: 270},
	{Width: 480, Height: 360},
	{Width: 512, Height: 384},
	{Width: 560, Height: 420},
	{Width: 640, Height: 360},
	{Width: 640, Height: 480},
	{Width: 704, Height: 480},
	{Width: 704, Height: 576},
	{Width: 720, Height: 480},
	{Width: 720, Height: 576},
	{Width: 768, Height: 576},
	{Width: 800, Height: 450},
	{Width: 800, Height: 600},
	{Width: 832, Height: 480},
	{Width: 848, Height: 480},
	{Width: 854, Height: 480},
	{Width: 960, Height: 540},
	{Width: 960, Height: 720},
	{Width: 1024, Height: 576},
	{Width: 1024, Height: 768},
	{Width: 1152, Height: 864},
	{Width: 1280, Height: 720},
	{Width: 1280, Height: 960},
	{Width: 1280, Height: 1024},
	{Width: 1366, Height: 768},
	{Width: 1408, Height: 1152},
	{Width: 1440, Height: 1080},
	{Width: 1600, Height: 900},
	{Width: 1600, Height: 1200},
	{Width: 1680, Height: 1050},
	{Width: 1920, Height: 1080},
	{Width: 1920, Height: 1200},
	{Width: 2048, Height: 1080},
	{Width: 2048, Height: 1536},
	{Width: 2560, Height: 1440},
	{Width: 2560, Height: 1600},
	{Width: 3200, Height: 1800},
	{Width: 3840, Height: 2160},
	{Width: 4096, Height: 2160},
	{Width: 7680, Height: 4320},
}

// Resolution returns the preset width/height for index, or ok=false when
// index is out of the preset table's range (including the custom sentinel,
// which callers must special-case before calling Resolution).
func Resolution(index int) (w, h int, ok bool) {
	if index < 0 || index >= len(Resolutions) {
		return 0, 0, false
	}
	r := Resolutions[index]
	return r.Width, r.Height, true
}

// ResolutionIndex returns the preset index for (w, h) if present, and
// CustomResolutionIndex otherwise.
func ResolutionIndex(w, h int) int {
	for i, r := range Resolutions {
		if r.Width == w && r.Height == h {
			return i
		}
	}
	return CustomResolutionIndex
}
