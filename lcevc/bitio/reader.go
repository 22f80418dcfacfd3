/*
NAME
  reader.go

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitio

// Reader unpacks bits MSB-first from a byte slice. Offsets are measured in
// bits from the start of the slice.
type Reader struct {
	data      []byte
	bitOff    int
	warned    bool // Whether a past-end read has already produced a warning.
	onWarning func(msg string)
	labels    []string
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// OnWarning installs a callback invoked the first time a read runs past the
// declared packet end; subsequent overreads are silent, matching spec.md's
// "returning zero with a warning once" requirement.
func (r *Reader) OnWarning(f func(msg string)) { r.onWarning = f }

func (r *Reader) warn(msg string) {
	if r.warned {
		return
	}
	r.warned = true
	if r.onWarning != nil {
		r.onWarning(msg)
	}
}

// ReadBits reads n bits, 0 <= n <= 32, MSB first, returning them in the
// least-significant part of the result. Reading past the end of data never
// panics: it returns zero bits for the missing tail and reports a warning
// exactly once per Reader.
func (r *Reader) ReadBits(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		byteIdx := r.bitOff / 8
		bitIdx := 7 - r.bitOff%8
		var bit uint32
		if byteIdx < len(r.data) {
			bit = uint32((r.data[byteIdx] >> uint(bitIdx)) & 1)
		} else {
			r.warn("bitio: read past end of packet")
		}
		v = (v << 1) | bit
		r.bitOff++
	}
	return v
}

// ReadBool reads a single bit as a bool.
func (r *Reader) ReadBool() bool { return r.ReadBits(1) != 0 }

// ByteAligned reports whether the reader is at a byte boundary.
func (r *Reader) ByteAligned() bool { return r.bitOff%8 == 0 }

// Align advances to the next byte boundary, discarding any padding bits.
func (r *Reader) Align() {
	if rem := r.bitOff % 8; rem != 0 {
		r.bitOff += 8 - rem
	}
}

// ReadByte reads one byte; it requires byte alignment.
func (r *Reader) ReadByte() byte { return byte(r.ReadBits(8)) }

// ReadBytes returns a zero-copy slice of n bytes at the current (byte
// aligned) offset and advances past them. If fewer than n bytes remain, the
// returned slice is shorter than n and a warning is reported.
func (r *Reader) ReadBytes(n int) []byte {
	start := r.bitOff / 8
	end := start + n
	if end > len(r.data) {
		r.warn("bitio: ReadBytes past end of packet")
		end = len(r.data)
	}
	if end < start {
		end = start
	}
	r.bitOff += (end - start) * 8
	return r.data[start:end]
}

// ReadMultibyte reads the byte-aligned multibyte integer convention: groups
// of 7 value bits, most-significant group first, each non-final byte with
// its MSB set.
func (r *Reader) ReadMultibyte() uint64 {
	var v uint64
	for {
		b := r.ReadByte()
		v = (v << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			break
		}
	}
	return v
}

// BitOffset returns the current bit offset from the start of data.
func (r *Reader) BitOffset() int { return r.bitOff }

// Remaining returns the number of bits remaining, which may be negative if
// the reader has already read past the end.
func (r *Reader) Remaining() int { return len(r.data)*8 - r.bitOff }

// PushLabel pushes a debug trace label.
func (r *Reader) PushLabel(l string) { r.labels = append(r.labels, l) }

// PopLabel pops the most recently pushed debug trace label.
func (r *Reader) PopLabel() {
	if len(r.labels) > 0 {
		r.labels = r.labels[:len(r.labels)-1]
	}
}
