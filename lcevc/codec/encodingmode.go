/*
NAME
  encodingmode.go

DESCRIPTION
  encodingmode.go implements EncodingMode: the per-picture decision of
  which residual layers are actually worth encoding, independent of
  "the encoder quantized this layer to all zero". Grounded on
  `encoder/src/LayerEncodeFlags.cpp`'s EncodeBits_DD/EncodeBits_DDS.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codec

import "github.com/ausocean/lcevc/transform"

// EncodingMode selects which of a transform's residual layers are worth
// forwarding to the transform/quantize stages for a picture, grounded on
// the reference model's five-state priority-map decision.
type EncodingMode int

// Supported encoding modes.
const (
	// EncodeAll encodes every layer the transform produces.
	EncodeAll EncodingMode = iota
	// EncodeLayer0 encodes only the coefficient-0 (DC) layer.
	EncodeLayer0
	// EncodeLayer0AndAdd encodes the coefficient-0 layer plus the
	// transform's first basis row (layers 0-3 for DDS; equivalent to
	// EncodeAll for DD, since DD has no row beyond the first four layers).
	EncodeLayer0AndAdd
	// EncodeLayer0AndRemove encodes every layer except the coefficient-0
	// layer, leaving layer 0 to be carried by the temporal/LoQ-1 path
	// alone.
	EncodeLayer0AndRemove
	// TemporalSignal encodes no layers at all: the block's content is
	// carried entirely by the temporal mask bit injected into the
	// coefficient-0 layer of sub-layer 2, with no residual magnitude.
	TemporalSignal
)

// EncodeResidual reports whether layer should be forwarded to transform
// and quantize for kind's layer layout under mode, mirroring
// EncodeBits_DD/EncodeBits_DDS's encode_flags_ bitsets. DD has no
// EncodeLayer0AndAdd/EncodeLayer0AndRemove distinction beyond its four
// layers, so both modes behave as EncodeAll for DD, matching the reference's assertion that AA is
// DDS-only.
func EncodeResidual(kind transform.Kind, mode EncodingMode, layer int) bool {
	n := kind.NumLayers()
	if layer < 0 || layer >= n {
		return false
	}
	switch mode {
	case EncodeAll:
		return true
	case TemporalSignal:
		return false
	case EncodeLayer0:
		return layer == 0
	case EncodeLayer0AndAdd:
		if n == 4 {
			return true
		}
		return layer < 4
	case EncodeLayer0AndRemove:
		if n == 4 {
			return true
		}
		return layer != 0
	default:
		return true
	}
}

// SkipFunc adapts mode into the skip predicate transform.Kind.Forward
// expects: true for a layer EncodeResidual reports as not worth
// encoding.
func SkipFunc(kind transform.Kind, mode EncodingMode) func(layer int) bool {
	return func(layer int) bool { return !EncodeResidual(kind, mode, layer) }
}
