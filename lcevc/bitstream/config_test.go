package bitstream

import (
	"reflect"
	"testing"

	"github.com/ausocean/lcevc/bitio"
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/quantize"
	"github.com/ausocean/lcevc/resample"
)

func TestSequenceRoundTrip(t *testing.T) {
	cases := []Sequence{
		{Profile: 1, Level: 10, SubLevel: 2},
		{Profile: 2, Level: 20, SubLevel: 0, ConformanceWindow: true, ConfWinLeft: 4, ConfWinRight: 8, ConfWinTop: 0, ConfWinBottom: 2},
	}
	for _, s := range cases {
		w := bitio.NewWriter()
		if err := s.Write(w); err != nil {
			t.Fatal(err)
		}
		r := bitio.NewReader(mustBytes(t, w))
		got, err := ReadSequence(r)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, s) {
			t.Errorf("Sequence round trip = %+v, want %+v", got, s)
		}
	}
}

func TestGlobalRoundTripAdaptiveCubic(t *testing.T) {
	g := Global{
		BaseBitDepth:               8,
		EnhancementBitDepth:        8,
		ColourSpace:                image.YUV420,
		NumProcessedPlanes:         3,
		TransformBlockSize:         4,
		ScalingModeLoQ1:            resample.Scale2D,
		ScalingModeLoQ2:            resample.Scale2D,
		UpsampleKernel:             resample.AdaptiveCubic,
		AdaptiveCubicCoeffs:        [4]int32{-4, 36, 36, -4},
		TemporalEnabled:            true,
		TemporalStepWidthModifier:  10,
		UserDataMode:               UserData2Bit,
		TileLayout:                 TileLayoutCustom,
		CustomTileWidth:            640,
		CustomTileHeight:           360,
		ChromaStepWidthMultiplier:  64,
	}
	w := bitio.NewWriter()
	if err := g.Write(w); err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(mustBytes(t, w))
	got, err := ReadGlobal(r)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, g) {
		t.Errorf("Global round trip = %+v, want %+v", got, g)
	}
}

func TestGlobalRoundTripNonAdaptive(t *testing.T) {
	g := Global{
		BaseBitDepth:        8,
		EnhancementBitDepth: 10,
		ColourSpace:         image.Monochrome,
		NumProcessedPlanes:  1,
		TransformBlockSize:  2,
		ScalingModeLoQ1:     resample.ScaleNone,
		ScalingModeLoQ2:     resample.Scale1D,
		UpsampleKernel:      resample.Cubic,
		TileLayout:          TileLayout512x256,
	}
	w := bitio.NewWriter()
	if err := g.Write(w); err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(mustBytes(t, w))
	got, err := ReadGlobal(r)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, g) {
		t.Errorf("Global round trip = %+v, want %+v", got, g)
	}
}

func TestGlobalTransformBlockSizeRejectsInvalid(t *testing.T) {
	g := Global{TransformBlockSize: 3}
	w := bitio.NewWriter()
	if err := g.Write(w); err == nil {
		t.Error("Write with invalid TransformBlockSize should error")
	}
}

func TestGlobalNumResidualLayers(t *testing.T) {
	if n := (Global{TransformBlockSize: 2}).NumResidualLayers(); n != 4 {
		t.Errorf("2x2 layers = %d, want 4", n)
	}
	if n := (Global{TransformBlockSize: 4}).NumResidualLayers(); n != 16 {
		t.Errorf("4x4 layers = %d, want 16", n)
	}
}

func TestPictureRoundTripNoCustomQM(t *testing.T) {
	p := Picture{
		StepWidthLoQ1:   100,
		StepWidthLoQ2:   200,
		QuantMatrixMode: quantize.BothDefault,
		DitheringMode:   0,
		TemporalRefresh: true,
	}
	w := bitio.NewWriter()
	if err := p.Write(w, 16); err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(mustBytes(t, w))
	got, err := ReadPicture(r, 16)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("Picture round trip = %+v, want %+v", got, p)
	}
}

func TestPictureRoundTripCustomQMAndOffset(t *testing.T) {
	coeffs := make([]int32, 16)
	for i := range coeffs {
		coeffs[i] = int32(i)
	}
	p := Picture{
		StepWidthLoQ1:          50,
		StepWidthLoQ2:          60,
		QuantMatrixMode:        quantize.DifferentAndCustom,
		QMCoeffLoQ1:            coeffs,
		QMCoeffLoQ2:            coeffs,
		DequantOffsetSignalled: true,
		DequantOffsetMode:      quantize.OffsetConstOffset,
		DequantOffset:          -123,
		DitheringMode:          2,
		DitheringStrength:      17,
		L1FilteringEnabled:     true,
	}
	w := bitio.NewWriter()
	if err := p.Write(w, 16); err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(mustBytes(t, w))
	got, err := ReadPicture(r, 16)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("Picture round trip = %+v, want %+v", got, p)
	}
}

func TestPictureSameAndCustomMirrorsCoeffs(t *testing.T) {
	coeffs := []int32{1, 2, 3, 4}
	p := Picture{
		QuantMatrixMode: quantize.SameAndCustom,
		QMCoeffLoQ2:     coeffs,
	}
	w := bitio.NewWriter()
	if err := p.Write(w, 4); err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(mustBytes(t, w))
	got, err := ReadPicture(r, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.QMCoeffLoQ1, coeffs) {
		t.Errorf("QMCoeffLoQ1 = %v, want mirrored %v", got.QMCoeffLoQ1, coeffs)
	}
	if !reflect.DeepEqual(got.QMCoeffLoQ2, coeffs) {
		t.Errorf("QMCoeffLoQ2 = %v, want %v", got.QMCoeffLoQ2, coeffs)
	}
}

func TestAdditionalInfoRoundTrip(t *testing.T) {
	a := AdditionalInfo{InfoType: 1, PayloadType: 0x05, Payload: []byte{0xaa, 0xbb, 0xcc}}
	w := bitio.NewWriter()
	if err := a.Write(w); err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(mustBytes(t, w))
	got, err := ReadAdditionalInfo(r)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, a) {
		t.Errorf("AdditionalInfo round trip = %+v, want %+v", got, a)
	}
}

func TestSignedU16RoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 32767, -32767} {
		w := bitio.NewWriter()
		if err := writeSignedU16(w, v); err != nil {
			t.Fatal(err)
		}
		r := bitio.NewReader(mustBytes(t, w))
		if got := readSignedU16(r); got != v {
			t.Errorf("signed u16 round trip of %d = %d", v, got)
		}
	}
}
