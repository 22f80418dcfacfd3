/*
NAME
  serializer.go

DESCRIPTION
  serializer.go assembles and disassembles a per-picture enhancement
  payload from the SignaledConfiguration records and EncodedData body
  defined elsewhere in this package, applying spec.md §4.8's block
  selection rule: an IDR/Intra picture carries Sequence + Global + Picture
  [+ AdditionalInfo] + EncodedData[-Tiled]; an Inter/Pred/Bidi picture
  carries only Picture + EncodedData[-Tiled].

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

// PictureType distinguishes the block set a Serializer emits, per
// spec.md §4.8.
type PictureType int

// Supported picture types.
const (
	PictureIDR PictureType = iota
	PictureIntra
	PictureInter
	PicturePred
	PictureBidi
)

// isKeyPicture reports whether t requires the full Sequence/Global/Picture
// header set rather than just Picture.
func isKeyPicture(t PictureType) bool {
	return t == PictureIDR || t == PictureIntra
}

// Payload is one fully assembled per-picture enhancement payload: the
// header records present for key pictures (nil otherwise), the mandatory
// Picture record, an optional AdditionalInfo record, and the entropy-coded
// residual body, in either its flat or tiled layout.
type Payload struct {
	Type PictureType

	Sequence *Sequence
	Global   *Global

	Picture Picture

	AdditionalInfo *AdditionalInfo

	// Tiled selects EncodedData-Tiled framing; when false the flat
	// EncodedData framing is used.
	Tiled bool

	// Residuals holds, per (plane, LoQ, layer) surface in a fixed
	// caller-defined order, the coefficient values to entropy code.
	Residuals [][]int16

	// LayerShapes is used when !Tiled; TileShapes is used when Tiled.
	// Exactly one must have a length matching len(Residuals).
	LayerShapes []LayerShape
	TileShapes  []TileShape

	// ReduceTileIntra and SizeMode apply only when Tiled.
	ReduceTileIntra bool
	SizeMode        entropy.CompressionType
}

// Serialize packs p into w as an ordered sequence of self-delimited
// blocks, per spec.md §4.8's block-selection rule.
func Serialize(w *bitio.Writer, p Payload) error {
	if isKeyPicture(p.Type) {
		if p.Sequence == nil || p.Global == nil {
			return errors.New("bitstream: key picture requires Sequence and Global")
		}
		if err := writeRecordBlock(w, TypeSequence, p.Sequence.Write); err != nil {
			return err
		}
		if err := writeRecordBlock(w, TypeGlobal, p.Global.Write); err != nil {
			return err
		}
	}
	numLayers := 16
	if p.Global != nil {
		numLayers = p.Global.NumResidualLayers()
	}
	if err := writeRecordBlock(w, TypePicture, func(pw *bitio.Writer) error {
		return p.Picture.Write(pw, numLayers)
	}); err != nil {
		return err
	}
	if p.AdditionalInfo != nil {
		if err := writeRecordBlock(w, TypeAdditionalInfo, p.AdditionalInfo.Write); err != nil {
			return err
		}
	}
	bodyType := TypeEncodedData
	if p.Tiled {
		bodyType = TypeEncodedDataTiled
	}
	return writeRecordBlock(w, bodyType, func(bw *bitio.Writer) error {
		if p.Tiled {
			return WriteEncodedDataTiled(bw, p.Residuals, p.TileShapes, p.ReduceTileIntra, p.SizeMode)
		}
		return WriteEncodedData(bw, p.Residuals, p.LayerShapes)
	})
}

// writeRecordBlock packs a record's payload into its own aligned
// sub-writer, then frames it as one block in w. The sub-writer keeps the
// record's own bit layout self-contained so WriteBlock's alignment
// requirement is always satisfied.
func writeRecordBlock(w *bitio.Writer, typ Type, write func(*bitio.Writer) error) error {
	sub := bitio.NewWriter()
	if err := write(sub); err != nil {
		return err
	}
	payload, err := sub.Bytes()
	if err != nil {
		return err
	}
	return WriteBlock(w, typ, payload)
}

// DeserializeParams carries the shape information a Deserialize call
// needs but cannot recover from the bitstream alone: whether the body is
// tiled, the shapes of each (plane, LoQ, layer) surface, and the tiled
// size-compression settings (mirroring how the caller's Global/tile
// configuration drove Serialize).
type DeserializeParams struct {
	Tiled           bool
	LayerShapes     []LayerShape
	TileShapes      []TileShape
	ReduceTileIntra bool
	SizeMode        entropy.CompressionType
}

// Deserialize reads one payload written by Serialize. A non-key payload
// (Picture + EncodedData[-Tiled] only) returns a Payload with nil
// Sequence/Global; the caller is expected to carry forward the most
// recent key picture's Sequence/Global, matching spec.md §4.9's decoder
// loop.
func Deserialize(r *bitio.Reader, params DeserializeParams) (Payload, error) {
	var p Payload
	p.Tiled = params.Tiled
	p.LayerShapes = params.LayerShapes
	p.TileShapes = params.TileShapes
	p.ReduceTileIntra = params.ReduceTileIntra
	p.SizeMode = params.SizeMode

	typ, payload, err := ReadBlock(r)
	if err != nil {
		return Payload{}, errors.Wrap(err, "bitstream: reading first block")
	}
	numLayers := 16
	switch typ {
	case TypeSequence:
		seq, err := ReadSequence(bitio.NewReader(payload))
		if err != nil {
			return Payload{}, errors.Wrap(err, "bitstream: parsing Sequence")
		}
		p.Sequence = &seq

		typ, payload, err = ReadBlock(r)
		if err != nil {
			return Payload{}, errors.Wrap(err, "bitstream: reading Global block")
		}
		if typ != TypeGlobal {
			return Payload{}, errors.Errorf("bitstream: expected Global block, got type %v", typ)
		}
		g, err := ReadGlobal(bitio.NewReader(payload))
		if err != nil {
			return Payload{}, errors.Wrap(err, "bitstream: parsing Global")
		}
		p.Global = &g
		numLayers = g.NumResidualLayers()
		p.Type = PictureIDR

		typ, payload, err = ReadBlock(r)
		if err != nil {
			return Payload{}, errors.Wrap(err, "bitstream: reading Picture block")
		}
	case TypePicture:
		p.Type = PictureInter
	default:
		return Payload{}, errors.Errorf("bitstream: expected Sequence or Picture block, got type %v", typ)
	}

	if typ != TypePicture {
		return Payload{}, errors.Errorf("bitstream: expected Picture block, got type %v", typ)
	}
	pic, err := ReadPicture(bitio.NewReader(payload), numLayers)
	if err != nil {
		return Payload{}, errors.Wrap(err, "bitstream: parsing Picture")
	}
	p.Picture = pic

	typ, payload, err = ReadBlock(r)
	if err != nil {
		return Payload{}, errors.Wrap(err, "bitstream: reading post-Picture block")
	}
	if typ == TypeAdditionalInfo {
		info, err := ReadAdditionalInfo(bitio.NewReader(payload))
		if err != nil {
			return Payload{}, errors.Wrap(err, "bitstream: parsing AdditionalInfo")
		}
		p.AdditionalInfo = &info
		typ, payload, err = ReadBlock(r)
		if err != nil {
			return Payload{}, errors.Wrap(err, "bitstream: reading EncodedData block")
		}
	}

	switch typ {
	case TypeEncodedData:
		if p.Tiled {
			return Payload{}, errors.New("bitstream: got flat EncodedData, expected tiled")
		}
		residuals, err := ReadEncodedData(bitio.NewReader(payload), p.LayerShapes)
		if err != nil {
			return Payload{}, errors.Wrap(err, "bitstream: parsing EncodedData")
		}
		p.Residuals = residuals
	case TypeEncodedDataTiled:
		if !p.Tiled {
			return Payload{}, errors.New("bitstream: got tiled EncodedData, expected flat")
		}
		residuals, err := ReadEncodedDataTiled(bitio.NewReader(payload), p.TileShapes, p.ReduceTileIntra, p.SizeMode)
		if err != nil {
			return Payload{}, errors.Wrap(err, "bitstream: parsing EncodedData-Tiled")
		}
		p.Residuals = residuals
	default:
		return Payload{}, errors.Errorf("bitstream: expected EncodedData block, got type %v", typ)
	}

	return p, nil
}
