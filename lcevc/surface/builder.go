/*
NAME
  builder.go

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package surface

import "github.com/pkg/errors"

// Builder owns a write-mapped region of a freshly allocated Buffer until
// Finish is called, at which point it converts to an immutable Surface.
// This mirrors the teacher repo's PacketBuilder reserve/write/finish shape.
type Builder struct {
	buf    *Buffer
	data   []byte
	width  int
	height int
	stride int
	elemW  ElementWidth
	done   bool
}

// NewBuilder allocates a fresh Buffer sized for width x height pels at the
// given element width and maps it for writing.
func NewBuilder(width, height int, elemW ElementWidth) (*Builder, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("surface: invalid dimensions %dx%d", width, height)
	}
	stride := width * int(elemW)
	buf := NewBuffer(stride * height)
	data, err := buf.Map()
	if err != nil {
		return nil, err
	}
	return &Builder{buf: buf, data: data, width: width, height: height, stride: stride, elemW: elemW}, nil
}

// Set8 writes an 8-bit pel. It panics if called after Finish, which is
// always a programming error since the builder is single-use.
func (b *Builder) Set8(x, y int, v uint8) {
	b.mustOpen()
	b.data[y*b.stride+x] = v
}

// Set16 writes a 16-bit little-endian pel.
func (b *Builder) Set16(x, y int, v uint16) {
	b.mustOpen()
	i := y*b.stride + x*2
	b.data[i] = byte(v)
	b.data[i+1] = byte(v >> 8)
}

func (b *Builder) mustOpen() {
	if b.done {
		panic("surface: builder used after Finish")
	}
}

// Finish releases the write mapping and returns the immutable Surface. The
// Builder must not be used afterwards.
func (b *Builder) Finish() (Surface, error) {
	b.mustOpen()
	b.done = true
	if err := b.buf.Unmap(); err != nil {
		return Surface{}, err
	}
	return New(b.buf, 0, b.width, b.height, b.stride, b.elemW)
}
