package bitstream

import (
	"reflect"
	"testing"

	"github.com/ausocean/lcevc/bitio"
	"github.com/ausocean/lcevc/entropy"
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/quantize"
	"github.com/ausocean/lcevc/resample"
)

func testSequence() Sequence {
	return Sequence{Profile: 1, Level: 3, SubLevel: 0}
}

func testGlobal() Global {
	return Global{
		BaseBitDepth:              8,
		EnhancementBitDepth:       8,
		ColourSpace:               image.YUV420,
		NumProcessedPlanes:        3,
		TransformBlockSize:        2,
		ScalingModeLoQ1:           resample.Scale2D,
		ScalingModeLoQ2:           resample.ScaleNone,
		UpsampleKernel:            resample.Cubic,
		TemporalEnabled:           true,
		UserDataMode:              UserDataNone,
		TileLayout:                TileLayoutNone,
		ChromaStepWidthMultiplier: 64,
	}
}

func testPicture() Picture {
	return Picture{
		StepWidthLoQ1:   100,
		StepWidthLoQ2:   200,
		QuantMatrixMode: quantize.BothDefault,
		DitheringMode:   0,
	}
}

func TestSerializeIDRFlatRoundTrip(t *testing.T) {
	seq := testSequence()
	g := testGlobal()
	shapes := []LayerShape{{Width: 4, Height: 4}, {Width: 2, Height: 2}}
	values := [][]int16{
		{1, 0, 0, 2, 0, 0, 0, 0, 3, -3, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	p := Payload{
		Type:        PictureIDR,
		Sequence:    &seq,
		Global:      &g,
		Picture:     testPicture(),
		Residuals:   values,
		LayerShapes: shapes,
	}
	w := bitio.NewWriter()
	if err := Serialize(w, p); err != nil {
		t.Fatal(err)
	}
	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(data)
	got, err := Deserialize(r, DeserializeParams{LayerShapes: shapes})
	if err != nil {
		t.Fatal(err)
	}
	if got.Sequence == nil || *got.Sequence != seq {
		t.Errorf("Sequence = %+v, want %+v", got.Sequence, seq)
	}
	if got.Global == nil || got.Global.BaseBitDepth != g.BaseBitDepth || got.Global.ColourSpace != g.ColourSpace {
		t.Errorf("Global mismatch: got %+v", got.Global)
	}
	if got.Picture.StepWidthLoQ1 != p.Picture.StepWidthLoQ1 {
		t.Errorf("Picture.StepWidthLoQ1 = %d, want %d", got.Picture.StepWidthLoQ1, p.Picture.StepWidthLoQ1)
	}
	for i := range values {
		if !reflect.DeepEqual(got.Residuals[i], values[i]) {
			t.Errorf("layer %d = %v, want %v", i, got.Residuals[i], values[i])
		}
	}
}

func TestSerializeInterFlatOmitsHeaders(t *testing.T) {
	shapes := []LayerShape{{Width: 2, Height: 2}}
	values := [][]int16{{5, 0, 0, -5}}
	p := Payload{
		Type:        PictureInter,
		Picture:     testPicture(),
		Residuals:   values,
		LayerShapes: shapes,
	}
	w := bitio.NewWriter()
	if err := Serialize(w, p); err != nil {
		t.Fatal(err)
	}
	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(data)
	got, err := Deserialize(r, DeserializeParams{LayerShapes: shapes})
	if err != nil {
		t.Fatal(err)
	}
	if got.Sequence != nil || got.Global != nil {
		t.Errorf("expected no Sequence/Global on an Inter payload, got %+v / %+v", got.Sequence, got.Global)
	}
	if !reflect.DeepEqual(got.Residuals[0], values[0]) {
		t.Errorf("layer 0 = %v, want %v", got.Residuals[0], values[0])
	}
}

func TestSerializeIDRWithAdditionalInfo(t *testing.T) {
	seq := testSequence()
	g := testGlobal()
	info := AdditionalInfo{InfoType: 1, PayloadType: 0x22, Payload: []byte{0xaa, 0xbb, 0xcc}}
	shapes := []LayerShape{{Width: 1, Height: 1}}
	p := Payload{
		Type:           PictureIDR,
		Sequence:       &seq,
		Global:         &g,
		Picture:        testPicture(),
		AdditionalInfo: &info,
		Residuals:      [][]int16{{0}},
		LayerShapes:    shapes,
	}
	w := bitio.NewWriter()
	if err := Serialize(w, p); err != nil {
		t.Fatal(err)
	}
	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(data)
	got, err := Deserialize(r, DeserializeParams{LayerShapes: shapes})
	if err != nil {
		t.Fatal(err)
	}
	if got.AdditionalInfo == nil {
		t.Fatal("expected AdditionalInfo to round trip")
	}
	if got.AdditionalInfo.InfoType != info.InfoType || got.AdditionalInfo.PayloadType != info.PayloadType {
		t.Errorf("AdditionalInfo = %+v, want %+v", got.AdditionalInfo, info)
	}
	if !reflect.DeepEqual(got.AdditionalInfo.Payload, info.Payload) {
		t.Errorf("AdditionalInfo.Payload = %v, want %v", got.AdditionalInfo.Payload, info.Payload)
	}
}

func TestSerializeIDRTiledRoundTrip(t *testing.T) {
	seq := testSequence()
	g := testGlobal()
	g.TileLayout = TileLayout512x256
	shapes := []TileShape{{Width: 8, Height: 8, TileSize: 4}}
	values := [][]int16{makeTileLayer(8, 8, func(i int) int16 {
		if i%5 == 0 {
			return int16(i)
		}
		return 0
	})}
	p := Payload{
		Type:            PictureIDR,
		Sequence:        &seq,
		Global:          &g,
		Picture:         testPicture(),
		Tiled:           true,
		Residuals:       values,
		TileShapes:      shapes,
		ReduceTileIntra: true,
		SizeMode:        entropy.Prefix,
	}
	w := bitio.NewWriter()
	if err := Serialize(w, p); err != nil {
		t.Fatal(err)
	}
	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(data)
	got, err := Deserialize(r, DeserializeParams{
		Tiled:           true,
		TileShapes:      shapes,
		ReduceTileIntra: true,
		SizeMode:        entropy.Prefix,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Residuals[0], values[0]) {
		t.Errorf("layer 0 = %v, want %v", got.Residuals[0], values[0])
	}
}

// TestSerializeBlockOrder checks that an IDR payload's blocks appear on
// the wire in the exact order spec.md §4.8 mandates: Sequence, Global,
// Picture, EncodedData.
func TestSerializeBlockOrder(t *testing.T) {
	seq := testSequence()
	g := testGlobal()
	shapes := []LayerShape{{Width: 1, Height: 1}}
	p := Payload{
		Type:        PictureIDR,
		Sequence:    &seq,
		Global:      &g,
		Picture:     testPicture(),
		Residuals:   [][]int16{{0}},
		LayerShapes: shapes,
	}
	w := bitio.NewWriter()
	if err := Serialize(w, p); err != nil {
		t.Fatal(err)
	}
	data, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(data)
	wantOrder := []Type{TypeSequence, TypeGlobal, TypePicture, TypeEncodedData}
	for _, want := range wantOrder {
		typ, _, err := ReadBlock(r)
		if err != nil {
			t.Fatal(err)
		}
		if typ != want {
			t.Errorf("block type = %v, want %v", typ, want)
		}
	}
}

func TestSerializeIDRRequiresGlobal(t *testing.T) {
	seq := testSequence()
	p := Payload{
		Type:        PictureIDR,
		Sequence:    &seq,
		Picture:     testPicture(),
		Residuals:   [][]int16{{0}},
		LayerShapes: []LayerShape{{Width: 1, Height: 1}},
	}
	w := bitio.NewWriter()
	if err := Serialize(w, p); err == nil {
		t.Error("expected error when Global is missing from an IDR payload")
	}
}
