/*
NAME
  buffer.go

DESCRIPTION
  buffer.go provides Buffer, a reference-counted, page-aligned byte store
  shared by zero or more Surfaces.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package surface provides the owned pel-array types (Buffer, Surface, and
// Builder) that every stage of the enhancement pipeline reads and writes.
package surface

import (
	"sync"

	"github.com/pkg/errors"
)

// pageSize is the alignment used for new buffer allocations. It has no
// effect on correctness; it keeps large picture buffers friendly to the
// platform's virtual memory system.
const pageSize = 4096

// Buffer is contiguous byte storage shared by zero or more Surfaces. A
// Buffer is only ever grown by allocating a new one; it is never resized in
// place, so a held slice from a previous Map remains valid until the Buffer
// itself is garbage collected.
type Buffer struct {
	mu   sync.Mutex
	data []byte
	refs int
}

// NewBuffer allocates a Buffer with at least size bytes of storage, rounded
// up to a page boundary.
func NewBuffer(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	alloc := ((size + pageSize - 1) / pageSize) * pageSize
	if alloc == 0 {
		alloc = pageSize
	}
	return &Buffer{data: make([]byte, alloc)}
}

// Len returns the number of bytes the buffer owns.
func (b *Buffer) Len() int { return len(b.data) }

// Map acquires a read/write view onto the buffer's bytes. Every successful
// Map must be paired with exactly one Unmap, including on error paths; Map
// returns an error on a second acquisition before the matching Unmap,
// because the core pipeline never needs nested maps of the same buffer.
func (b *Buffer) Map() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refs != 0 {
		return nil, errors.New("surface: buffer already mapped")
	}
	b.refs++
	return b.data, nil
}

// Unmap releases a view acquired with Map. Calling Unmap without a matching
// Map is a no-op error, never a panic, since it is reachable from defer
// chains on error paths where the map may or may not have succeeded.
func (b *Buffer) Unmap() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refs == 0 {
		return errors.New("surface: buffer not mapped")
	}
	b.refs--
	return nil
}
