/*
NAME
  model.go

DESCRIPTION
  model.go provides the shared RLE+Huffman model machinery spec.md §4.3
  describes once and reuses across the three entropy models: a tagged
  symbol stream split into per-state Huffman trees, a raw (literal byte)
  packet and a prefix (Huffman-coded) packet, and the codebook-array wire
  framing shared by both. Each model (residuals, temporal flags, sizes) is
  the tagged variant spec.md §9's design note calls for: same machinery,
  different state count and per-symbol grammar.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package entropy implements the three RLE+Huffman entropy models used by
// the enhancement bitstream: residuals, temporal flags, and sizes. Each
// produces a Chunk pairing a raw (literal) packet with a Huffman-coded
// prefix packet; callers keep whichever is smaller.
package entropy

import (
	"github.com/pkg/errors"

	"github.com/ausocean/lcevc/bitio"
	"github.com/ausocean/lcevc/huffman"
)

// Chunk is the {raw, prefix} packet pair every entropy model returns, per
// spec.md §4.3.
type Chunk struct {
	Raw    []byte
	Prefix []byte
}

// Empty reports whether both packets are empty.
func (c Chunk) Empty() bool { return len(c.Raw) == 0 && len(c.Prefix) == 0 }

// Pick returns whichever packet is smaller, preferring Prefix on a tie (it
// is already self-describing via its codebooks), and whether the choice
// was the prefix-coded form.
func (c Chunk) Pick() (data []byte, isPrefix bool) {
	if len(c.Prefix) > 0 && len(c.Prefix) <= len(c.Raw) {
		return c.Prefix, true
	}
	return c.Raw, false
}

// taggedSymbol is one emitted byte, tagged with the state whose Huffman
// tree and run-length context it belongs to.
type taggedSymbol struct {
	state int
	value byte
}

// buildChunk turns a tagged symbol sequence into a Chunk: the raw packet
// is the symbol bytes written literally, in order; the prefix packet is
// numStates codebooks (built from the per-state symbol histograms) followed
// by the same symbols Huffman-coded against their state's tree.
func buildChunk(symbols []taggedSymbol, numStates int) (Chunk, error) {
	if len(symbols) == 0 {
		return Chunk{}, nil
	}

	rw := bitio.NewWriter()
	for _, s := range symbols {
		if err := rw.WriteByte(s.value); err != nil {
			return Chunk{}, errors.Wrap(err, "entropy: writing raw symbol")
		}
	}
	raw, err := rw.Bytes()
	if err != nil {
		return Chunk{}, err
	}

	counts := make([][256]int, numStates)
	for _, s := range symbols {
		counts[s.state][s.value]++
	}
	tables := make([]*huffman.Table, numStates)
	for i := range tables {
		tables[i] = huffman.Build(counts[i])
	}

	pw := bitio.NewWriter()
	for _, t := range tables {
		if err := t.WriteCodebook(pw); err != nil {
			return Chunk{}, errors.Wrap(err, "entropy: writing codebook")
		}
	}
	for _, s := range symbols {
		if err := tables[s.state].Encode(pw, s.value); err != nil {
			return Chunk{}, errors.Wrap(err, "entropy: encoding symbol")
		}
	}
	if err := pw.Align(); err != nil {
		return Chunk{}, err
	}
	prefix, err := pw.Bytes()
	if err != nil {
		return Chunk{}, err
	}

	return Chunk{Raw: raw, Prefix: prefix}, nil
}

// symbolSource abstracts reading the next symbol for a given state,
// whichever of the raw or prefix wire forms is in play.
type symbolSource interface {
	next(state int) (byte, error)
}

// rawSource reads literal bytes in emission order, ignoring state (the raw
// packet carries no codebooks, so there is nothing state-specific to look
// up).
type rawSource struct {
	r *bitio.Reader
}

func (s *rawSource) next(int) (byte, error) {
	return s.r.ReadByte(), nil
}

// prefixSource reads Huffman-coded symbols, selecting the tree for the
// requested state.
type prefixSource struct {
	r      *bitio.Reader
	tables []*huffman.Table
}

func newPrefixSource(data []byte, numStates int) (*prefixSource, error) {
	r := bitio.NewReader(data)
	tables := make([]*huffman.Table, numStates)
	for i := range tables {
		t, err := huffman.ReadCodebook(r)
		if err != nil {
			return nil, errors.Wrapf(err, "entropy: reading codebook %d", i)
		}
		tables[i] = t
	}
	return &prefixSource{r: r, tables: tables}, nil
}

func (s *prefixSource) next(state int) (byte, error) {
	return s.tables[state].Decode(s.r)
}

// newSource builds the right symbolSource for data, given whether it is the
// raw or prefix packet.
func newSource(data []byte, isPrefix bool, numStates int) (symbolSource, error) {
	if !isPrefix {
		return &rawSource{r: bitio.NewReader(data)}, nil
	}
	return newPrefixSource(data, numStates)
}

// multibyteGroups splits n into most-significant-group-first 7-bit groups
// for the ZERO-state run-length count, mirroring bitio's general multibyte
// convention (spec.md §4.3 gives the zero run its own byte-tagged stream
// rather than an inline bitio.WriteMultibyte call, so the grouping is
// reproduced locally).
func multibyteGroups(n uint64) []byte {
	if n == 0 {
		return []byte{0}
	}
	var rev []byte
	for n > 0 {
		rev = append(rev, byte(n&0x7f))
		n >>= 7
	}
	groups := make([]byte, len(rev))
	for i, g := range rev {
		groups[len(rev)-1-i] = g
	}
	return groups
}
