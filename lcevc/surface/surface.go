/*
NAME
  surface.go

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package surface

import (
	"hash/fnv"
	"sync"

	"github.com/pkg/errors"
)

// ElementWidth is the pel element width in bytes: 1 for 8-bit planes, 2 for
// 10/12/14-bit planes.
type ElementWidth int

// Supported element widths.
const (
	Width8  ElementWidth = 1
	Width16 ElementWidth = 2
)

// Surface is an immutable 2-D array of pels of a fixed element width, backed
// by a Buffer. Mutation only ever happens through a Builder; once Finish is
// called the Surface never changes, so its checksum may be computed lazily
// and cached.
type Surface struct {
	buf      *Buffer
	off      int // Byte offset of surface data within buf.
	width    int
	height   int
	stride   int // Byte stride between rows.
	elemW    ElementWidth
	checksum struct {
		once sync.Once
		sum  uint64
	}
}

// New constructs a Surface over an existing buffer at the given byte offset.
// It returns an error if stride is smaller than a full row or not a
// multiple of the element width.
func New(buf *Buffer, off, width, height, stride int, elemW ElementWidth) (Surface, error) {
	if stride < width*int(elemW) {
		return Surface{}, errors.Errorf("surface: stride %d too small for width %d at element width %d", stride, width, elemW)
	}
	if stride%int(elemW) != 0 {
		return Surface{}, errors.Errorf("surface: stride %d not a multiple of element width %d", stride, elemW)
	}
	need := off + stride*height
	if need > buf.Len() {
		return Surface{}, errors.Errorf("surface: buffer too small: need %d have %d", need, buf.Len())
	}
	return Surface{buf: buf, off: off, width: width, height: height, stride: stride, elemW: elemW}, nil
}

// Width returns the surface width in pels.
func (s Surface) Width() int { return s.width }

// Height returns the surface height in pels.
func (s Surface) Height() int { return s.height }

// Stride returns the byte stride between consecutive rows.
func (s Surface) Stride() int { return s.stride }

// ElementWidth returns the byte width of one pel.
func (s Surface) ElementWidth() ElementWidth { return s.elemW }

// Empty reports whether the surface has zero area.
func (s Surface) Empty() bool { return s.width == 0 || s.height == 0 }

// row returns the mapped bytes for row y plus the unmap function, or an
// error. Callers must call the returned unmap exactly once.
func (s Surface) row(y int) ([]byte, func() error, error) {
	if y < 0 || y >= s.height {
		return nil, nil, errors.Errorf("surface: row %d out of range [0,%d)", y, s.height)
	}
	data, err := s.buf.Map()
	if err != nil {
		return nil, nil, err
	}
	start := s.off + y*s.stride
	return data[start : start+s.width*int(s.elemW)], s.buf.Unmap, nil
}

// At8 reads an 8-bit pel at (x, y). It is only valid when ElementWidth is
// Width8.
func (s Surface) At8(x, y int) (uint8, error) {
	row, unmap, err := s.row(y)
	if err != nil {
		return 0, err
	}
	defer unmap()
	if x < 0 || x >= s.width {
		return 0, errors.Errorf("surface: x %d out of range [0,%d)", x, s.width)
	}
	return row[x], nil
}

// At16 reads a 16-bit little-endian pel at (x, y). It is only valid when
// ElementWidth is Width16.
func (s Surface) At16(x, y int) (uint16, error) {
	row, unmap, err := s.row(y)
	if err != nil {
		return 0, err
	}
	defer unmap()
	if x < 0 || x >= s.width {
		return 0, errors.Errorf("surface: x %d out of range [0,%d)", x, s.width)
	}
	i := x * 2
	return uint16(row[i]) | uint16(row[i+1])<<8, nil
}

// Checksum returns a 64-bit checksum over the mapped surface bytes,
// computing it on first use and caching the result, matching spec.md's
// "optional lazily computed 64-bit checksum" invariant.
func (s *Surface) Checksum() (uint64, error) {
	var outerErr error
	s.checksum.once.Do(func() {
		h := fnv.New64a()
		for y := 0; y < s.height; y++ {
			row, unmap, err := s.row(y)
			if err != nil {
				outerErr = err
				return
			}
			h.Write(row)
			unmap()
		}
		s.checksum.sum = h.Sum64()
	})
	if outerErr != nil {
		return 0, outerErr
	}
	return s.checksum.sum, nil
}
