/*
NAME
  writer.go

DESCRIPTION
  writer.go provides Writer, a bit-granular MSB-first writer used to pack
  every configuration block and entropy-coded symbol stream.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bitio provides bit-granular pack/unpack primitives: a Writer and
// Reader pair operating MSB-first within each byte, plus the byte-aligned
// multibyte integer codec used throughout the bitstream layer. The shift-
// and-mask technique follows the teacher repo's codec/h264/h264dec/bits
// BitReader.
package bitio

import "github.com/pkg/errors"

// Writer packs bits MSB-first into an internal byte buffer.
type Writer struct {
	buf     []byte
	pending byte
	nbits   int // Number of valid bits currently in pending, in [0,8).
	labels  []string
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// WriteBits writes the low n bits of v, 0 <= n <= 32, most-significant bit
// first.
func (w *Writer) WriteBits(v uint32, n int) error {
	if n < 0 || n > 32 {
		return errors.Errorf("bitio: invalid bit count %d", n)
	}
	for i := n - 1; i >= 0; i-- {
		bit := byte((v >> uint(i)) & 1)
		w.pending = (w.pending << 1) | bit
		w.nbits++
		if w.nbits == 8 {
			w.buf = append(w.buf, w.pending)
			w.pending = 0
			w.nbits = 0
		}
	}
	return nil
}

// WriteBool writes a single bit.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteBits(1, 1)
	}
	return w.WriteBits(0, 1)
}

// ByteAligned reports whether the writer is currently at a byte boundary.
func (w *Writer) ByteAligned() bool { return w.nbits == 0 }

// Align pads with zero bits up to the next byte boundary.
func (w *Writer) Align() error {
	if w.nbits == 0 {
		return nil
	}
	return w.WriteBits(0, 8-w.nbits)
}

// WriteByte appends a single byte; it requires the writer to be byte
// aligned first.
func (w *Writer) WriteByte(b byte) error {
	if !w.ByteAligned() {
		return errors.New("bitio: WriteByte requires byte alignment")
	}
	w.buf = append(w.buf, b)
	return nil
}

// WriteBytes appends a byte slice verbatim; it requires byte alignment.
func (w *Writer) WriteBytes(b []byte) error {
	if !w.ByteAligned() {
		return errors.New("bitio: WriteBytes requires byte alignment")
	}
	w.buf = append(w.buf, b...)
	return nil
}

// WriteMultibyte writes n using the byte-aligned multibyte convention: each
// byte carries 7 value bits and a continuation bit in the MSB (1 on every
// byte but the last), most-significant 7-bit group first. It requires byte
// alignment.
func (w *Writer) WriteMultibyte(n uint64) error {
	if !w.ByteAligned() {
		return errors.New("bitio: WriteMultibyte requires byte alignment")
	}
	groups := multibyteGroups(n)
	for i, g := range groups {
		b := byte(g)
		if i != len(groups)-1 {
			b |= 0x80
		}
		w.buf = append(w.buf, b)
	}
	return nil
}

// multibyteGroups splits n into most-significant-group-first 7-bit groups,
// always emitting at least one group (so n = 0 encodes as a single zero
// byte).
func multibyteGroups(n uint64) []uint8 {
	if n == 0 {
		return []uint8{0}
	}
	var rev []uint8
	for n > 0 {
		rev = append(rev, uint8(n&0x7f))
		n >>= 7
	}
	groups := make([]uint8, len(rev))
	for i, g := range rev {
		groups[len(rev)-1-i] = g
	}
	return groups
}

// PushLabel pushes a debug trace label. It is only consulted by debug
// tooling and never affects the emitted bits.
func (w *Writer) PushLabel(l string) { w.labels = append(w.labels, l) }

// PopLabel pops the most recently pushed debug trace label.
func (w *Writer) PopLabel() {
	if len(w.labels) > 0 {
		w.labels = w.labels[:len(w.labels)-1]
	}
}

// Bytes returns the packed byte slice. The writer must be byte aligned.
func (w *Writer) Bytes() ([]byte, error) {
	if !w.ByteAligned() {
		return nil, errors.New("bitio: Bytes requires byte alignment")
	}
	return w.buf, nil
}

// BitLength returns the total number of bits written so far.
func (w *Writer) BitLength() int { return len(w.buf)*8 + w.nbits }
