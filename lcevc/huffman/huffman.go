/*
NAME
  huffman.go

DESCRIPTION
  huffman.go implements the canonical Huffman codebook shared verbatim
  between encoder and decoder: tree construction, canonical code
  assignment, and the codebook wire format of spec.md §4.2.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package huffman implements the canonical Huffman codebook used by every
// entropy model in package entropy: construction from symbol counts, a
// compact wire representation, and a bit-at-a-time decoder.
package huffman

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/ausocean/lcevc/bitio"
)

// maxSymbol is the largest symbol value a codebook can carry (one byte).
const maxSymbol = 255

// code is a single canonical (symbol, length, value) triple.
type code struct {
	symbol uint16
	length uint8
	value  uint32
}

// Table is a canonical Huffman codebook: a length and a canonical value for
// every coded symbol, plus a length-indexed index for decoding.
type Table struct {
	codes    []code          // Sorted by (length asc, symbol desc), canonical order.
	bySymbol map[uint16]code // For encoding.
	single   bool            // True when exactly one symbol is coded (zero-length case).
	empty    bool            // True when no symbols are coded.
}

// treeNode is an internal node in the Huffman merge tree.
type treeNode struct {
	freq        int
	symbol      int // Valid only when leaf; -1 otherwise.
	left, right *treeNode
	order       int // Tie-break: original insertion order, lower wins.
}

// Build constructs a canonical Table from symbol counts. counts must be
// indexed by symbol in [0,255]; a zero count means the symbol is absent.
// Build never errors: an all-zero counts vector yields an empty Table.
func Build(counts [256]int) *Table {
	var nodes []*treeNode
	for s := 0; s <= maxSymbol; s++ {
		if counts[s] > 0 {
			nodes = append(nodes, &treeNode{freq: counts[s], symbol: s, order: s})
		}
	}
	if len(nodes) == 0 {
		return &Table{empty: true, bySymbol: map[uint16]code{}}
	}
	if len(nodes) == 1 {
		t := &Table{single: true, bySymbol: map[uint16]code{}}
		c := code{symbol: uint16(nodes[0].symbol), length: 0, value: 0}
		t.codes = []code{c}
		t.bySymbol[c.symbol] = c
		return t
	}

	// Repeatedly combine the two least-frequent nodes. Order counter
	// continues past maxSymbol so merged internal nodes sort after all
	// leaves of equal frequency, keeping the tie-break deterministic and
	// stable as specified.
	order := maxSymbol + 1
	for len(nodes) > 1 {
		sort.SliceStable(nodes, func(i, j int) bool {
			if nodes[i].freq != nodes[j].freq {
				return nodes[i].freq < nodes[j].freq
			}
			return nodes[i].order < nodes[j].order
		})
		a, b := nodes[0], nodes[1]
		merged := &treeNode{freq: a.freq + b.freq, symbol: -1, left: a, right: b, order: order}
		order++
		nodes = append(nodes[2:], merged)
	}
	root := nodes[0]

	lengths := make(map[int]int)
	var walk func(n *treeNode, depth int)
	walk = func(n *treeNode, depth int) {
		if n == nil {
			return
		}
		if n.symbol >= 0 {
			d := depth
			if d == 0 {
				d = 1 // A single-leaf subtree still needs at least 1 bit when it has a sibling.
			}
			lengths[n.symbol] = d
			return
		}
		walk(n.left, depth+1)
		walk(n.right, depth+1)
	}
	walk(root, 0)

	return fromLengths(lengths)
}

// fromLengths assigns canonical code values given a symbol -> length map,
// per spec.md §4.2 step 4: sort by (ascending length, descending symbol),
// then assign values starting from the largest length with value 0,
// counting upward, right-shifting by the length delta whenever length
// decreases.
func fromLengths(lengths map[int]int) *Table {
	type pair struct {
		symbol, length int
	}
	pairs := make([]pair, 0, len(lengths))
	for s, l := range lengths {
		pairs = append(pairs, pair{s, l})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].length != pairs[j].length {
			return pairs[i].length < pairs[j].length
		}
		return pairs[i].symbol > pairs[j].symbol
	})

	t := &Table{bySymbol: make(map[uint16]code, len(pairs))}
	if len(pairs) == 0 {
		t.empty = true
		return t
	}

	// Walk from the largest length down to the smallest, assigning
	// canonical values.
	rev := make([]pair, len(pairs))
	copy(rev, pairs)
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}

	var value uint32
	prevLen := rev[0].length
	codes := make([]code, len(rev))
	for i, p := range rev {
		if p.length < prevLen {
			value >>= uint(prevLen - p.length)
			prevLen = p.length
		}
		c := code{symbol: uint16(p.symbol), length: uint8(p.length), value: value}
		codes[len(rev)-1-i] = c
		value++
	}
	// codes is now ordered largest-length-first reversed back to the
	// canonical (ascending length, descending symbol) order used on the
	// wire.
	sort.Slice(codes, func(i, j int) bool {
		if codes[i].length != codes[j].length {
			return codes[i].length < codes[j].length
		}
		return codes[i].symbol > codes[j].symbol
	})
	t.codes = codes
	for _, c := range codes {
		t.bySymbol[c.symbol] = c
	}
	if len(codes) == 1 {
		t.single = true
	}
	return t
}

// Encode appends the bits of the code for symbol to w.
func (t *Table) Encode(w *bitio.Writer, symbol uint8) error {
	if t.empty {
		return errors.New("huffman: table has no symbols")
	}
	if t.single {
		return nil // Single-symbol tables contribute zero bits on the wire.
	}
	c, ok := t.bySymbol[uint16(symbol)]
	if !ok {
		return errors.Errorf("huffman: symbol %d not in table", symbol)
	}
	return w.WriteBits(c.value, int(c.length))
}

// Decode reads one symbol from r, growing the candidate value bit by bit
// until it matches some code's value at that length.
func (t *Table) Decode(r *bitio.Reader) (uint8, error) {
	if t.empty {
		return 0, errors.New("huffman: table has no symbols")
	}
	if t.single {
		return uint8(t.codes[0].symbol), nil
	}
	var value uint32
	for length := 1; length <= 32; length++ {
		value = (value << 1) | r.ReadBits(1)
		for _, c := range t.codes {
			if int(c.length) == length && c.value == value {
				return uint8(c.symbol), nil
			}
		}
	}
	return 0, errors.New("huffman: no matching code found")
}

// WriteCodebook writes the wire-format codebook described in spec.md §4.2.
func (t *Table) WriteCodebook(w *bitio.Writer) error {
	if t.empty {
		return w.WriteBits(31, 5)
	}
	if t.single {
		if err := w.WriteBits(0, 5); err != nil { // min_code_length = 0
			return err
		}
		if err := w.WriteBits(0, 5); err != nil { // max_code_length = 0
			return err
		}
		return w.WriteBits(uint32(t.codes[0].symbol), 8)
	}

	min, max := t.codes[0].length, t.codes[0].length
	for _, c := range t.codes {
		if c.length < min {
			min = c.length
		}
		if c.length > max {
			max = c.length
		}
	}
	if err := w.WriteBits(uint32(min), 5); err != nil {
		return err
	}
	if err := w.WriteBits(uint32(max), 5); err != nil {
		return err
	}

	lengthBits := ceilLog2(int(max-min) + 1)

	// Choose presence-bitmap form when there are many coded symbols, and
	// the explicit (symbol, length) pair form otherwise -- the wire
	// selects whichever is more compact, which in practice means the
	// bitmap form once more than 31 symbols are coded (a 5-bit count
	// field cannot exceed 31).
	usePresenceBitmap := len(t.codes) > 31
	if err := w.WriteBool(usePresenceBitmap); err != nil {
		return err
	}
	if usePresenceBitmap {
		present := make(map[int]bool, len(t.codes))
		for _, c := range t.codes {
			present[int(c.symbol)] = true
		}
		for s := 0; s <= maxSymbol; s++ {
			if err := w.WriteBool(present[s]); err != nil {
				return err
			}
		}
		bySymbolAsc := append([]code(nil), t.codes...)
		sort.Slice(bySymbolAsc, func(i, j int) bool { return bySymbolAsc[i].symbol < bySymbolAsc[j].symbol })
		for _, c := range bySymbolAsc {
			if err := w.WriteBits(uint32(c.length-min), lengthBits); err != nil {
				return err
			}
		}
		return nil
	}
	if err := w.WriteBits(uint32(len(t.codes)), 5); err != nil {
		return err
	}
	for _, c := range t.codes {
		if err := w.WriteBits(uint32(c.symbol), 8); err != nil {
			return err
		}
		if err := w.WriteBits(uint32(c.length-min), lengthBits); err != nil {
			return err
		}
	}
	return nil
}

// ReadCodebook reads and reconstructs a Table from the wire format written
// by WriteCodebook.
func ReadCodebook(r *bitio.Reader) (*Table, error) {
	min := r.ReadBits(5)
	max := r.ReadBits(5)
	switch {
	case min == 31 && max == 31:
		return &Table{empty: true, bySymbol: map[uint16]code{}}, nil
	case min == 0 && max == 0:
		sym := uint8(r.ReadBits(8))
		t := &Table{single: true, bySymbol: map[uint16]code{}}
		c := code{symbol: uint16(sym), length: 0}
		t.codes = []code{c}
		t.bySymbol[c.symbol] = c
		return t, nil
	}

	lengthBits := ceilLog2(int(max-min) + 1)
	usePresenceBitmap := r.ReadBool()
	lengths := make(map[int]int)
	if usePresenceBitmap {
		present := make([]bool, maxSymbol+1)
		for s := 0; s <= maxSymbol; s++ {
			present[s] = r.ReadBool()
		}
		for s := 0; s <= maxSymbol; s++ {
			if present[s] {
				lengths[s] = int(min) + int(r.ReadBits(lengthBits))
			}
		}
	} else {
		n := int(r.ReadBits(5))
		for i := 0; i < n; i++ {
			sym := int(r.ReadBits(8))
			length := int(min) + int(r.ReadBits(lengthBits))
			lengths[sym] = length
		}
	}
	return fromLengths(lengths), nil
}

// ceilLog2 returns ceil(log2(n)) for n >= 1, and 0 for n <= 1.
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	bits := 0
	v := 1
	for v < n {
		v <<= 1
		bits++
	}
	return bits
}
