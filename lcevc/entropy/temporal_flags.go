/*
NAME
  temporal_flags.go

DESCRIPTION
  temporal_flags.go implements the temporal INTRA/PRED flag entropy model:
  2 states (ZERO_RUN, ONE_RUN), walked per-transform in tile raster order,
  with the reduced tile-intra-signalling skip behaviour of spec.md §4.3
  and §4.6.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package entropy

import "github.com/pkg/errors"

// Temporal flag entropy states: a run of the flag matching the previous
// run ends it; the run-length model alternates between the two states as
// the flag value toggles.
const (
	temporalZeroRun = iota // Run of INTRA (flag value false).
	temporalOneRun         // Run of PRED (flag value true).
	numTemporalStates
)

// TileFlags describes one tile's worth of per-transform INTRA(false)/
// PRED(true) flags, in tile-raster order, for EncodeTemporalFlags.
type TileFlags struct {
	Flags []bool
	// AllIntraSignalled is true when reduced signalling determined this
	// tile's first flag is INTRA and the remaining flags need not be
	// coded; the decoder must reconstruct every flag in the tile as
	// INTRA.
	AllIntraSignalled bool
}

func stateForRun(v bool) int {
	if v {
		return temporalOneRun
	}
	return temporalZeroRun
}

func appendRunLength(symbols *[]taggedSymbol, v bool, run int) {
	groups := multibyteGroups(uint64(run))
	state := stateForRun(v)
	for i, g := range groups {
		b := g
		if i != len(groups)-1 {
			b |= 0x80
		}
		*symbols = append(*symbols, taggedSymbol{state, b})
	}
}

func readRunLength(src symbolSource, v bool) (int, error) {
	state := stateForRun(v)
	var n int
	for {
		b, err := src.next(state)
		if err != nil {
			return 0, err
		}
		n = (n << 7) | int(b&0x7f)
		if b&0x80 == 0 {
			break
		}
	}
	return n, nil
}

// flattenTiles builds the flat per-transform flag sequence that is actually
// entropy-coded: tiles using reduced signalling contribute only their
// (always-INTRA) first flag.
func flattenTiles(tiles []TileFlags, reduceTileIntra bool) []bool {
	var flat []bool
	for _, tile := range tiles {
		if len(tile.Flags) == 0 {
			continue
		}
		if reduceTileIntra && tile.AllIntraSignalled {
			flat = append(flat, tile.Flags[0])
			continue
		}
		flat = append(flat, tile.Flags...)
	}
	return flat
}

// EncodeTemporalFlags encodes tiles into the {raw, prefix} chunk. The first
// coded flag value is written as a literal 8-bit byte (spec.md's "starting
// value") ahead of the run-length-coded remainder in both the raw and
// prefix forms, since the decoder cannot otherwise know which of the two
// state trees applies to the very first symbol.
func EncodeTemporalFlags(tiles []TileFlags, reduceTileIntra bool) (Chunk, error) {
	flat := flattenTiles(tiles, reduceTileIntra)
	if len(flat) == 0 {
		return Chunk{}, nil
	}

	startByte := byte(0)
	if flat[0] {
		startByte = 1
	}

	var symbols []taggedSymbol
	cur := flat[0]
	run := 1
	for _, f := range flat[1:] {
		if f == cur {
			run++
			continue
		}
		appendRunLength(&symbols, cur, run)
		cur = f
		run = 1
	}
	appendRunLength(&symbols, cur, run)

	body, err := buildChunk(symbols, numTemporalStates)
	if err != nil {
		return Chunk{}, err
	}

	raw := append([]byte{startByte}, body.Raw...)
	prefix := append([]byte{startByte}, body.Prefix...)
	return Chunk{Raw: raw, Prefix: prefix}, nil
}

// DecodeTemporalFlags reconstructs the per-tile flag sequences for
// tileFlagCounts (the number of per-transform flags each tile holds, in
// tile order), given which tiles used reduced signalling.
func DecodeTemporalFlags(data []byte, isPrefix bool, tileFlagCounts []int, allIntraSignalled []bool, reduceTileIntra bool) ([][]bool, error) {
	if len(tileFlagCounts) != len(allIntraSignalled) {
		return nil, errors.New("entropy: tileFlagCounts and allIntraSignalled length mismatch")
	}
	result := make([][]bool, len(tileFlagCounts))
	total := 0
	for _, n := range tileFlagCounts {
		total += n
	}
	if total == 0 {
		return result, nil
	}
	codedLen := 0
	for ti, n := range tileFlagCounts {
		if n == 0 {
			continue
		}
		if reduceTileIntra && allIntraSignalled[ti] {
			codedLen++
		} else {
			codedLen += n
		}
	}
	if len(data) == 0 {
		return nil, errors.New("entropy: empty temporal flag packet")
	}

	cur := data[0] != 0
	src, err := newSource(data[1:], isPrefix, numTemporalStates)
	if err != nil {
		return nil, err
	}

	flat := make([]bool, 0, codedLen)
	for len(flat) < codedLen {
		n, err := readRunLength(src, cur)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n && len(flat) < codedLen; i++ {
			flat = append(flat, cur)
		}
		cur = !cur
	}

	idx := 0
	for ti, n := range tileFlagCounts {
		if n == 0 {
			continue
		}
		if reduceTileIntra && allIntraSignalled[ti] {
			flags := make([]bool, n) // All INTRA (false).
			idx++
			result[ti] = flags
			continue
		}
		flags := make([]bool, n)
		copy(flags, flat[idx:idx+n])
		idx += n
		result[ti] = flags
	}
	return result, nil
}
