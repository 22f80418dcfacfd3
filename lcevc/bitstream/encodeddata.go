/*
NAME
  encodeddata.go

DESCRIPTION
  encodeddata.go implements the EncodedData and EncodedData-Tiled body
  layouts: per-layer entropy selection and byte-aligned size-prefixed
  payloads for the non-tiled form, and per-tile entropy-enabled flags plus
  size-compressed payload lengths for the reduced-signalling tiled form,
  per spec.md §4.8/§4.9.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitstream

import (
	"github.com/pkg/errors"

	"github.com/ausocean/lcevc/bitio"
	"github.com/ausocean/lcevc/entropy"
)

// LayerShape gives one residual layer's transform-block-grid dimensions:
// the layer holds Width*Height int16 coefficients, one per transform block.
type LayerShape struct {
	Width, Height int
}

// WriteEncodedData packs the non-tiled EncodedData body: one entropy_enabled
// bit per layer, one rle_only bit per non-empty layer, a byte alignment,
// then each non-empty layer's multibyte data_size and payload, in layer
// order. values[i] must have shapes[i].Width*shapes[i].Height entries.
func WriteEncodedData(w *bitio.Writer, values [][]int16, shapes []LayerShape) error {
	if len(values) != len(shapes) {
		return errors.Errorf("bitstream: %d layers, %d shapes", len(values), len(shapes))
	}
	chunks := make([]entropy.Chunk, len(values))
	for i, v := range values {
		if len(v) != shapes[i].Width*shapes[i].Height {
			return errors.Errorf("bitstream: layer %d has %d values, want %d", i, len(v), shapes[i].Width*shapes[i].Height)
		}
		order := entropy.RasterOrder(shapes[i].Width, shapes[i].Height)
		chunk, err := entropy.EncodeResiduals(v, order)
		if err != nil {
			return errors.Wrapf(err, "bitstream: encoding layer %d", i)
		}
		chunks[i] = chunk
	}
	for _, c := range chunks {
		if err := w.WriteBool(!c.Empty()); err != nil {
			return err
		}
	}
	for _, c := range chunks {
		if c.Empty() {
			continue
		}
		_, isPrefix := c.Pick()
		if err := w.WriteBool(!isPrefix); err != nil {
			return err
		}
	}
	if err := w.Align(); err != nil {
		return err
	}
	for _, c := range chunks {
		if c.Empty() {
			continue
		}
		data, _ := c.Pick()
		if err := w.WriteMultibyte(uint64(len(data))); err != nil {
			return err
		}
		if err := w.WriteBytes(data); err != nil {
			return err
		}
	}
	return nil
}

// ReadEncodedData unpacks a non-tiled EncodedData body written by
// WriteEncodedData. A layer whose entropy_enabled bit is false decodes to
// an all-zero surface.
func ReadEncodedData(r *bitio.Reader, shapes []LayerShape) ([][]int16, error) {
	enabled := make([]bool, len(shapes))
	for i := range shapes {
		enabled[i] = r.ReadBool()
	}
	rleOnly := make([]bool, len(shapes))
	for i, e := range enabled {
		if e {
			rleOnly[i] = r.ReadBool()
		}
	}
	r.Align()

	out := make([][]int16, len(shapes))
	for i, shape := range shapes {
		if !enabled[i] {
			out[i] = make([]int16, shape.Width*shape.Height)
			continue
		}
		size := int(r.ReadMultibyte())
		data := r.ReadBytes(size)
		order := entropy.RasterOrder(shape.Width, shape.Height)
		values, err := entropy.DecodeResiduals(data, !rleOnly[i], order)
		if err != nil {
			return nil, errors.Wrapf(err, "bitstream: decoding layer %d", i)
		}
		out[i] = values
	}
	return out, nil
}

// TileShape gives one layer's tiled traversal parameters: its
// transform-block-grid dimensions and the tile size (in transform blocks)
// the reduced-signalling traversal groups them into.
type TileShape struct {
	Width, Height, TileSize int
}

func (s TileShape) numTiles() int {
	tx := ceilDiv(s.Width, s.TileSize)
	ty := ceilDiv(s.Height, s.TileSize)
	return tx * ty
}

// tileBounds returns the transform-block-grid bounds of tile index idx in
// raster order.
func (s TileShape) tileBounds(idx int) (x0, y0, x1, y1 int) {
	tx := ceilDiv(s.Width, s.TileSize)
	tileX, tileY := idx%tx, idx/tx
	x0 = tileX * s.TileSize
	y0 = tileY * s.TileSize
	x1 = x0 + s.TileSize
	if x1 > s.Width {
		x1 = s.Width
	}
	y1 = y0 + s.TileSize
	if y1 > s.Height {
		y1 = s.Height
	}
	return
}

// WriteEncodedDataTiled packs the EncodedData-Tiled body: one rle_only bit
// per layer (selecting the form its per-tile payloads are coded in), with
// no byte alignment after them; the per-tile entropy_enabled flags of every
// layer as one packet coded by the temporal-flags run-length model (an
// enabled bit, an rle_only bit when enabled, a byte alignment, a multibyte
// length and the packet bytes); the payload sizes of every enabled tile of
// every layer as a single size array coded via sizeMode and framed the same
// way; and finally every enabled tile's payload bytes concatenated in
// traversal order. The sizes are not split into one array per layer.
// reduceTileIntra is passed to the flag encoder, but each tile carries a
// single flag and is never marked AllIntraSignalled, so it does not change
// the output.
func WriteEncodedDataTiled(w *bitio.Writer, values [][]int16, shapes []TileShape, reduceTileIntra bool, sizeMode entropy.CompressionType) error {
	if len(values) != len(shapes) {
		return errors.Errorf("bitstream: %d layers, %d shapes", len(values), len(shapes))
	}

	type tilePayload struct {
		chunk   entropy.Chunk
		enabled bool
	}
	layerTiles := make([][]tilePayload, len(values))
	rleOnlyByLayer := make([]bool, len(values))
	for li, v := range values {
		shape := shapes[li]
		n := shape.numTiles()
		tiles := make([]tilePayload, n)
		var rawTotal, prefixTotal int
		for ti := 0; ti < n; ti++ {
			x0, y0, x1, y1 := shape.tileBounds(ti)
			tw, th := x1-x0, y1-y0
			tileValues := make([]int16, 0, tw*th)
			for y := y0; y < y1; y++ {
				row := v[y*shape.Width+x0 : y*shape.Width+x1]
				tileValues = append(tileValues, row...)
			}
			order := entropy.RasterOrder(tw, th)
			chunk, err := entropy.EncodeResiduals(tileValues, order)
			if err != nil {
				return errors.Wrapf(err, "bitstream: encoding layer %d tile %d", li, ti)
			}
			tiles[ti] = tilePayload{chunk: chunk, enabled: !chunk.Empty()}
			rawTotal += len(chunk.Raw)
			prefixTotal += len(chunk.Prefix)
		}
		layerTiles[li] = tiles
		// A single rle_only bit applies to every tile in the layer so the
		// decoder knows which of each tile's two packets to read; the
		// layer picks whichever form is smaller in aggregate.
		isPrefixLayer := prefixTotal > 0 && prefixTotal <= rawTotal
		rleOnlyByLayer[li] = !isPrefixLayer
		if err := w.WriteBool(rleOnlyByLayer[li]); err != nil {
			return err
		}
	}

	tileFlags := make([]entropy.TileFlags, 0)
	for _, tiles := range layerTiles {
		for _, t := range tiles {
			tileFlags = append(tileFlags, entropy.TileFlags{Flags: []bool{t.enabled}})
		}
	}
	flagChunk, err := entropy.EncodeTemporalFlags(tileFlags, reduceTileIntra)
	if err != nil {
		return err
	}
	flagEnabled := !flagChunk.Empty()
	if err := w.WriteBool(flagEnabled); err != nil {
		return err
	}
	if flagEnabled {
		data, isPrefix := flagChunk.Pick()
		if err := w.WriteBool(!isPrefix); err != nil {
			return err
		}
		if err := w.Align(); err != nil {
			return err
		}
		if err := w.WriteMultibyte(uint64(len(data))); err != nil {
			return err
		}
		if err := w.WriteBytes(data); err != nil {
			return err
		}
	} else if err := w.Align(); err != nil {
		return err
	}

	tilePayloadBytes := func(li int, t tilePayload) []byte {
		if rleOnlyByLayer[li] {
			return t.chunk.Raw
		}
		return t.chunk.Prefix
	}

	var allSizes []int
	for li, tiles := range layerTiles {
		for _, t := range tiles {
			if t.enabled {
				allSizes = append(allSizes, len(tilePayloadBytes(li, t)))
			}
		}
	}
	sizeChunk, err := entropy.EncodeSizes(allSizes, sizeMode)
	if err != nil {
		return err
	}
	sizeEnabled := !sizeChunk.Empty()
	if err := w.WriteBool(sizeEnabled); err != nil {
		return err
	}
	if sizeEnabled {
		data, isPrefix := sizeChunk.Pick()
		if err := w.WriteBool(!isPrefix); err != nil {
			return err
		}
		if err := w.Align(); err != nil {
			return err
		}
		if err := w.WriteMultibyte(uint64(len(data))); err != nil {
			return err
		}
		if err := w.WriteBytes(data); err != nil {
			return err
		}
	} else if err := w.Align(); err != nil {
		return err
	}

	for li, tiles := range layerTiles {
		for _, t := range tiles {
			if t.enabled {
				if err := w.WriteBytes(tilePayloadBytes(li, t)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ReadEncodedDataTiled unpacks an EncodedData-Tiled body written by
// WriteEncodedDataTiled.
func ReadEncodedDataTiled(r *bitio.Reader, shapes []TileShape, reduceTileIntra bool, sizeMode entropy.CompressionType) ([][]int16, error) {
	rleOnlyByLayer := make([]bool, len(shapes))
	for i := range shapes {
		rleOnlyByLayer[i] = r.ReadBool()
	}

	tileFlagCounts := make([]int, 0)
	layerTileCounts := make([]int, len(shapes))
	for i, s := range shapes {
		n := s.numTiles()
		layerTileCounts[i] = n
		for t := 0; t < n; t++ {
			tileFlagCounts = append(tileFlagCounts, 1)
		}
	}
	allIntraSignalled := make([]bool, len(tileFlagCounts))

	flagEnabled := r.ReadBool()
	var flagRLEOnly bool
	if flagEnabled {
		flagRLEOnly = r.ReadBool()
	}
	r.Align()
	var flat [][]bool
	if flagEnabled {
		size := int(r.ReadMultibyte())
		data := r.ReadBytes(size)
		var err error
		flat, err = entropy.DecodeTemporalFlags(data, !flagRLEOnly, tileFlagCounts, allIntraSignalled, reduceTileIntra)
		if err != nil {
			return nil, errors.Wrap(err, "bitstream: decoding tile entropy_enabled flags")
		}
	}

	totalTiles := len(tileFlagCounts)
	enabled := make([]bool, totalTiles)
	if flagEnabled {
		for i, f := range flat {
			enabled[i] = len(f) > 0 && f[0]
		}
	}

	sizeEnabled := r.ReadBool()
	var sizeRLEOnly bool
	if sizeEnabled {
		sizeRLEOnly = r.ReadBool()
	}
	r.Align()
	var numEnabled int
	for _, e := range enabled {
		if e {
			numEnabled++
		}
	}
	var sizes []int
	if sizeEnabled && numEnabled > 0 {
		sizeData := int(r.ReadMultibyte())
		data := r.ReadBytes(sizeData)
		var err error
		sizes, err = entropy.DecodeSizes(data, !sizeRLEOnly, numEnabled, sizeMode)
		if err != nil {
			return nil, errors.Wrap(err, "bitstream: decoding tile payload sizes")
		}
	}

	out := make([][]int16, len(shapes))
	tileIdx := 0
	sizeIdx := 0
	for li, shape := range shapes {
		out[li] = make([]int16, shape.Width*shape.Height)
		n := layerTileCounts[li]
		for ti := 0; ti < n; ti++ {
			idx := tileIdx
			tileIdx++
			if !enabled[idx] {
				continue
			}
			size := sizes[sizeIdx]
			sizeIdx++
			data := r.ReadBytes(size)
			x0, y0, x1, y1 := shape.tileBounds(ti)
			tw, th := x1-x0, y1-y0
			order := entropy.RasterOrder(tw, th)
			values, err := entropy.DecodeResiduals(data, !rleOnlyByLayer[li], order)
			if err != nil {
				return nil, errors.Wrapf(err, "bitstream: decoding layer %d tile %d", li, ti)
			}
			for y := y0; y < y1; y++ {
				copy(out[li][y*shape.Width+x0:y*shape.Width+x1], values[(y-y0)*tw:(y-y0+1)*tw])
			}
		}
	}
	return out, nil
}
