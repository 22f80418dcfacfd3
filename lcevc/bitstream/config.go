/*
NAME
  config.go

DESCRIPTION
  config.go implements the SignaledConfiguration record tree: Sequence,
  Global, Picture, and AdditionalInfo, with their exact bit-field layouts
  per spec.md §3's enumeration. Field order and widths follow the
  `_examples/original_source/encoder/src/Serializer.cpp` ordering this
  spec was distilled from.

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
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/quantize"
	"github.com/ausocean/lcevc/resample"
)

// UserDataMode selects how much per-pel user-data is carried alongside the
// coefficient-0 layer.
type UserDataMode int

// Supported user-data modes.
const (
	UserDataNone UserDataMode = iota
	UserData2Bit
	UserData6Bit
)

// TileLayout selects the reduced-signalling tile traversal's fixed tile
// dimensions, or a custom pair signalled in Global.
type TileLayout int

// Supported tile layouts.
const (
	TileLayoutNone TileLayout = iota
	TileLayout512x256
	TileLayout1024x512
	TileLayoutCustom
)

// TemporalStepWidthMode selects how the LoQ-2 temporal step-width modifier
// is applied across a picture's two quantization passes.
type TemporalStepWidthMode int

// Supported temporal step-width modes.
const (
	TemporalStepWidthAbsolute TemporalStepWidthMode = iota
	TemporalStepWidthDependent
)

// Sequence carries the profile/level identification and optional
// conformance-window cropping offsets.
type Sequence struct {
	Profile  int // u(4)
	Level    int // u(6)
	SubLevel int // u(4)

	ConformanceWindow bool
	ConfWinLeft       int // u(16), present only if ConformanceWindow
	ConfWinRight      int // u(16)
	ConfWinTop        int // u(16)
	ConfWinBottom     int // u(16)
}

// Write packs s into w.
func (s Sequence) Write(w *bitio.Writer) error {
	if err := writeAll(w,
		bit{uint32(s.Profile), 4},
		bit{uint32(s.Level), 6},
		bit{uint32(s.SubLevel), 4},
	); err != nil {
		return err
	}
	if err := w.WriteBool(s.ConformanceWindow); err != nil {
		return err
	}
	if !s.ConformanceWindow {
		return nil
	}
	return writeAll(w,
		bit{uint32(s.ConfWinLeft), 16},
		bit{uint32(s.ConfWinRight), 16},
		bit{uint32(s.ConfWinTop), 16},
		bit{uint32(s.ConfWinBottom), 16},
	)
}

// ReadSequence unpacks a Sequence from r.
func ReadSequence(r *bitio.Reader) (Sequence, error) {
	var s Sequence
	s.Profile = int(r.ReadBits(4))
	s.Level = int(r.ReadBits(6))
	s.SubLevel = int(r.ReadBits(4))
	s.ConformanceWindow = r.ReadBool()
	if !s.ConformanceWindow {
		return s, nil
	}
	s.ConfWinLeft = int(r.ReadBits(16))
	s.ConfWinRight = int(r.ReadBits(16))
	s.ConfWinTop = int(r.ReadBits(16))
	s.ConfWinBottom = int(r.ReadBits(16))
	return s, nil
}

// Global carries the per-sequence format, scaling, and signalling-mode
// configuration that does not vary picture to picture.
type Global struct {
	BaseBitDepth        int // u(4), typically 8/10/12/14
	EnhancementBitDepth int // u(4)
	ColourSpace         image.ColourSpace // u(2)
	NumProcessedPlanes  int               // u(2), 1..3

	TransformBlockSize int // 1 bit: 0 => 2, 1 => 4

	ScalingModeLoQ1 resample.ScalingMode // u(2)
	ScalingModeLoQ2 resample.ScalingMode // u(2)

	UpsampleKernel      resample.Kernel // u(3)
	AdaptiveCubicCoeffs [4]int32        // present only if UpsampleKernel == AdaptiveCubic, u(8) signed each

	TemporalEnabled                    bool
	TemporalTileIntraSignallingEnabled bool
	TemporalStepWidthModifier          int                   // u(8), 0 disables
	TemporalStepWidthMode              TemporalStepWidthMode // 1 bit, only meaningful if modifier != 0

	UserDataMode UserDataMode // u(2)

	TileLayout        TileLayout // u(2)
	CustomTileWidth   int        // u(16), present only if TileLayout == custom
	CustomTileHeight  int        // u(16)

	ChromaStepWidthMultiplier int // u(8), default 64 (i.e. x1.0)
}

// NumResidualLayers returns 4 when TransformBlockSize is 2, else 16, per
// spec.md §3's invariant.
func (g Global) NumResidualLayers() int {
	if g.TransformBlockSize == 2 {
		return 4
	}
	return 16
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func transformBlockSizeBit(size int) (uint32, error) {
	switch size {
	case 2:
		return 0, nil
	case 4:
		return 1, nil
	default:
		return 0, errors.Errorf("bitstream: invalid transform block size %d", size)
	}
}

// Write packs g into w.
func (g Global) Write(w *bitio.Writer) error {
	tbsBit, err := transformBlockSizeBit(g.TransformBlockSize)
	if err != nil {
		return err
	}
	if err := writeAll(w,
		bit{uint32(g.BaseBitDepth), 4},
		bit{uint32(g.EnhancementBitDepth), 4},
		bit{uint32(g.ColourSpace), 2},
		bit{uint32(g.NumProcessedPlanes), 2},
		bit{tbsBit, 1},
		bit{uint32(g.ScalingModeLoQ1), 2},
		bit{uint32(g.ScalingModeLoQ2), 2},
		bit{uint32(g.UpsampleKernel), 3},
	); err != nil {
		return err
	}
	if g.UpsampleKernel == resample.AdaptiveCubic {
		for _, c := range g.AdaptiveCubicCoeffs {
			if err := w.WriteBits(uint32(int8(c)), 8); err != nil {
				return err
			}
		}
	}
	if err := writeAll(w,
		bit{boolBit(g.TemporalEnabled), 1},
		bit{boolBit(g.TemporalTileIntraSignallingEnabled), 1},
		bit{uint32(g.TemporalStepWidthModifier), 8},
		bit{uint32(g.TemporalStepWidthMode), 1},
		bit{uint32(g.UserDataMode), 2},
		bit{uint32(g.TileLayout), 2},
	); err != nil {
		return err
	}
	if g.TileLayout == TileLayoutCustom {
		if err := writeAll(w,
			bit{uint32(g.CustomTileWidth), 16},
			bit{uint32(g.CustomTileHeight), 16},
		); err != nil {
			return err
		}
	}
	return w.WriteBits(uint32(g.ChromaStepWidthMultiplier), 8)
}

// ReadGlobal unpacks a Global from r.
func ReadGlobal(r *bitio.Reader) (Global, error) {
	var g Global
	g.BaseBitDepth = int(r.ReadBits(4))
	g.EnhancementBitDepth = int(r.ReadBits(4))
	g.ColourSpace = image.ColourSpace(r.ReadBits(2))
	g.NumProcessedPlanes = int(r.ReadBits(2))
	if r.ReadBits(1) == 0 {
		g.TransformBlockSize = 2
	} else {
		g.TransformBlockSize = 4
	}
	g.ScalingModeLoQ1 = resample.ScalingMode(r.ReadBits(2))
	g.ScalingModeLoQ2 = resample.ScalingMode(r.ReadBits(2))
	g.UpsampleKernel = resample.Kernel(r.ReadBits(3))
	if g.UpsampleKernel == resample.AdaptiveCubic {
		for i := range g.AdaptiveCubicCoeffs {
			g.AdaptiveCubicCoeffs[i] = int32(int8(r.ReadBits(8)))
		}
	}
	g.TemporalEnabled = r.ReadBool()
	g.TemporalTileIntraSignallingEnabled = r.ReadBool()
	g.TemporalStepWidthModifier = int(r.ReadBits(8))
	g.TemporalStepWidthMode = TemporalStepWidthMode(r.ReadBits(1))
	g.UserDataMode = UserDataMode(r.ReadBits(2))
	g.TileLayout = TileLayout(r.ReadBits(2))
	if g.TileLayout == TileLayoutCustom {
		g.CustomTileWidth = int(r.ReadBits(16))
		g.CustomTileHeight = int(r.ReadBits(16))
	}
	g.ChromaStepWidthMultiplier = int(r.ReadBits(8))
	return g, nil
}

// Picture carries the per-picture step widths, quantization-matrix
// selection, dequant offset, dithering, and temporal/filtering flags.
type Picture struct {
	StepWidthLoQ1 int32 // u(16); the range [1, 32767] is not enforced here
	StepWidthLoQ2 int32 // u(16)

	QuantMatrixMode quantize.Mode // u(3)
	QMCoeffLoQ1     []int32       // 16 entries, present only for modes with a custom LoQ-1 table
	QMCoeffLoQ2     []int32       // 16 entries, present only for modes with a custom LoQ-2 table

	DequantOffsetSignalled bool
	DequantOffsetMode      quantize.OffsetMode // 1 bit, present only if DequantOffsetSignalled
	DequantOffset          int32               // u(16) signed-magnitude, present only if DequantOffsetSignalled

	DitheringMode     int // u(2)
	DitheringStrength int // u(8), present only if DitheringMode != 0

	TemporalRefresh    bool
	L1FilteringEnabled bool
}

// hasCustomQM reports whether mode signals a custom table for LoQ-1/LoQ-2
// respectively, mirroring which of cfg.QMCoeff1/QMCoeff2 quantize.ResolveQM
// actually consults for that mode. SameAndCustom signals a single table,
// shared by both LoQ levels (ResolveQM reads it from QMCoeff2 regardless of
// loq), so only one array appears on the wire for that mode.
func hasCustomQM(mode quantize.Mode) (loq1, loq2 bool) {
	switch mode {
	case quantize.SameAndCustom:
		return false, true
	case quantize.Level2CustomLevel1Default:
		return false, true
	case quantize.Level2DefaultLevel1Custom:
		return true, false
	case quantize.DifferentAndCustom:
		return true, true
	default:
		return false, false
	}
}

func writeSignedU16(w *bitio.Writer, v int32) error {
	sign := uint32(0)
	mag := v
	if v < 0 {
		sign = 1
		mag = -v
	}
	if err := w.WriteBool(sign == 1); err != nil {
		return err
	}
	return w.WriteBits(uint32(mag), 15)
}

func readSignedU16(r *bitio.Reader) int32 {
	neg := r.ReadBool()
	mag := int32(r.ReadBits(15))
	if neg {
		return -mag
	}
	return mag
}

// Write packs p into w. numLayers selects 4 or 16 QM coefficients per
// custom table, per Global.NumResidualLayers.
func (p Picture) Write(w *bitio.Writer, numLayers int) error {
	if err := writeAll(w,
		bit{uint32(p.StepWidthLoQ1), 16},
		bit{uint32(p.StepWidthLoQ2), 16},
		bit{uint32(p.QuantMatrixMode), 3},
	); err != nil {
		return err
	}
	loq1, loq2 := hasCustomQM(p.QuantMatrixMode)
	if loq1 {
		if err := writeQMCoeffs(w, p.QMCoeffLoQ1, numLayers); err != nil {
			return err
		}
	}
	if loq2 {
		if err := writeQMCoeffs(w, p.QMCoeffLoQ2, numLayers); err != nil {
			return err
		}
	}
	if err := w.WriteBool(p.DequantOffsetSignalled); err != nil {
		return err
	}
	if p.DequantOffsetSignalled {
		if err := w.WriteBits(uint32(p.DequantOffsetMode), 1); err != nil {
			return err
		}
		if err := writeSignedU16(w, p.DequantOffset); err != nil {
			return err
		}
	}
	if err := w.WriteBits(uint32(p.DitheringMode), 2); err != nil {
		return err
	}
	if p.DitheringMode != 0 {
		if err := w.WriteBits(uint32(p.DitheringStrength), 8); err != nil {
			return err
		}
	}
	if err := w.WriteBool(p.TemporalRefresh); err != nil {
		return err
	}
	return w.WriteBool(p.L1FilteringEnabled)
}

func writeQMCoeffs(w *bitio.Writer, coeffs []int32, numLayers int) error {
	if len(coeffs) != numLayers {
		return errors.Errorf("bitstream: QM coefficient count %d, want %d", len(coeffs), numLayers)
	}
	for _, c := range coeffs {
		if err := w.WriteBits(uint32(c), 8); err != nil {
			return err
		}
	}
	return nil
}

func readQMCoeffs(r *bitio.Reader, numLayers int) []int32 {
	out := make([]int32, numLayers)
	for i := range out {
		out[i] = int32(r.ReadBits(8))
	}
	return out
}

// ReadPicture unpacks a Picture from r. numLayers must match the sequence's
// Global.NumResidualLayers.
func ReadPicture(r *bitio.Reader, numLayers int) (Picture, error) {
	var p Picture
	p.StepWidthLoQ1 = int32(r.ReadBits(16))
	p.StepWidthLoQ2 = int32(r.ReadBits(16))
	p.QuantMatrixMode = quantize.Mode(r.ReadBits(3))
	loq1, loq2 := hasCustomQM(p.QuantMatrixMode)
	if loq1 {
		p.QMCoeffLoQ1 = readQMCoeffs(r, numLayers)
	}
	if loq2 {
		p.QMCoeffLoQ2 = readQMCoeffs(r, numLayers)
	}
	if p.QuantMatrixMode == quantize.SameAndCustom {
		p.QMCoeffLoQ1 = p.QMCoeffLoQ2
	}
	p.DequantOffsetSignalled = r.ReadBool()
	if p.DequantOffsetSignalled {
		p.DequantOffsetMode = quantize.OffsetMode(r.ReadBits(1))
		p.DequantOffset = readSignedU16(r)
	}
	p.DitheringMode = int(r.ReadBits(2))
	if p.DitheringMode != 0 {
		p.DitheringStrength = int(r.ReadBits(8))
	}
	p.TemporalRefresh = r.ReadBool()
	p.L1FilteringEnabled = r.ReadBool()
	return p, nil
}

// AdditionalInfo carries an out-of-band record: a type identifying its
// kind, a payload_type byte further qualifying it, and an opaque payload
// whose length is implied by the enclosing block's size.
type AdditionalInfo struct {
	InfoType    int // u(8)
	PayloadType byte
	Payload     []byte
}

// Write packs a into w.
func (a AdditionalInfo) Write(w *bitio.Writer) error {
	if err := w.WriteBits(uint32(a.InfoType), 8); err != nil {
		return err
	}
	if err := w.WriteByte(a.PayloadType); err != nil {
		return err
	}
	return w.WriteBytes(a.Payload)
}

// ReadAdditionalInfo unpacks an AdditionalInfo from r, consuming every
// remaining byte of the enclosing block as Payload.
func ReadAdditionalInfo(r *bitio.Reader) (AdditionalInfo, error) {
	var a AdditionalInfo
	a.InfoType = int(r.ReadBits(8))
	a.PayloadType = r.ReadByte()
	a.Payload = r.ReadBytes(r.Remaining() / 8)
	return a, nil
}

// bit is one field in a writeAll call: a right-aligned value and its width
// in bits.
type bit struct {
	v uint32
	n int
}

// writeAll writes a sequence of fixed-width fields in order, stopping at
// the first error.
func writeAll(w *bitio.Writer, fields ...bit) error {
	for _, f := range fields {
		if err := w.WriteBits(f.v, f.n); err != nil {
			return err
		}
	}
	return nil
}
