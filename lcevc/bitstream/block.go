/*
NAME
  block.go

DESCRIPTION
  block.go implements the self-delimited syntax block framing shared by
  every payload the serializer emits: a 3-bit size_type, 5-bit
  payload_type, an optional multibyte size, and the payload bytes
  themselves, per spec.md §4.8.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bitstream implements the enhancement payload's syntax layer: the
// SignaledConfiguration record tree (Sequence/Global/Picture/
// AdditionalInfo), Dimensions derivation, the per-block framing that
// self-delimits each syntax block, the EncodedData/EncodedData-Tiled body
// layouts, and the Serializer/Deserializer that assemble a full per-picture
// payload.
package bitstream

import (
	"github.com/pkg/errors"

	"github.com/ausocean/lcevc/bitio"
)

// Type identifies a syntax block's payload kind, per spec.md §4.8's
// payload_type field.
type Type int

// Supported block types.
const (
	TypeSequence Type = iota
	TypeGlobal
	TypePicture
	TypeEncodedData
	TypeEncodedDataTiled
	TypeAdditionalInfo
	TypeFiller
)

// smallSizeMax is the largest payload byte size that fits directly in the
// 3-bit size_type field (values 0..5); 7 signals "multibyte length
// follows" and 6 is reserved.
const (
	smallSizeMax  = 5
	multibyteFlag = 7
)

// WriteBlock frames payload as one self-delimited syntax block: size_type
// (3 bits; the literal size when payload fits in [0,5], else 7), payload
// typ (5 bits), an optional multibyte byte-size, then payload verbatim.
// The writer must be byte aligned both before and after a call.
func WriteBlock(w *bitio.Writer, typ Type, payload []byte) error {
	if !w.ByteAligned() {
		return errors.New("bitstream: WriteBlock requires byte alignment")
	}
	sizeType := uint32(multibyteFlag)
	if len(payload) <= smallSizeMax {
		sizeType = uint32(len(payload))
	}
	if err := w.WriteBits(sizeType, 3); err != nil {
		return err
	}
	if err := w.WriteBits(uint32(typ), 5); err != nil {
		return err
	}
	if sizeType == multibyteFlag {
		if err := w.WriteMultibyte(uint64(len(payload))); err != nil {
			return err
		}
	}
	return w.WriteBytes(payload)
}

// ReadBlock reads one syntax block written by WriteBlock.
func ReadBlock(r *bitio.Reader) (typ Type, payload []byte, err error) {
	if !r.ByteAligned() {
		return 0, nil, errors.New("bitstream: ReadBlock requires byte alignment")
	}
	sizeType := r.ReadBits(3)
	typ = Type(r.ReadBits(5))
	size := int(sizeType)
	if sizeType == multibyteFlag {
		size = int(r.ReadMultibyte())
	}
	payload = r.ReadBytes(size)
	return typ, payload, nil
}
