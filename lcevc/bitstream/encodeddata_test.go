package bitstream

import (
	"reflect"
	"testing"

	"github.com/ausocean/lcevc/bitio"
	"github.com/ausocean/lcevc/entropy"
)

func TestEncodedDataRoundTripMixedLayers(t *testing.T) {
	shapes := []LayerShape{
		{Width: 4, Height: 4},
		{Width: 2, Height: 2},
		{Width: 3, Height: 3},
	}
	values := [][]int16{
		{1, -2, 3, 0, 0, 0, 5, -5, 1, 1, 1, 1, 0, 0, 0, 0},
		{0, 0, 0, 0}, // all zero: entropy_enabled should still round trip.
		{7, 0, 0, 0, 0, 0, 0, 0, -7},
	}
	w := bitio.NewWriter()
	if err := WriteEncodedData(w, values, shapes); err != nil {
		t.Fatal(err)
	}
	data := mustBytes(t, w)
	r := bitio.NewReader(data)
	got, err := ReadEncodedData(r, shapes)
	if err != nil {
		t.Fatal(err)
	}
	for i := range values {
		if !reflect.DeepEqual(got[i], values[i]) {
			t.Errorf("layer %d = %v, want %v", i, got[i], values[i])
		}
	}
}

func TestEncodedDataSingleZeroValueRoundTrip(t *testing.T) {
	// A layer holding a single zero value is still coded: EncodeResiduals
	// always codes the first position, so the layer's chunk is non-empty
	// and decodes back to {0}.
	shapes := []LayerShape{{Width: 1, Height: 1}}
	values := [][]int16{{0}}
	w := bitio.NewWriter()
	if err := WriteEncodedData(w, values, shapes); err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(mustBytes(t, w))
	got, err := ReadEncodedData(r, shapes)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got[0], values[0]) {
		t.Errorf("layer 0 = %v, want %v", got[0], values[0])
	}
}

func TestEncodedDataShapeMismatchErrors(t *testing.T) {
	w := bitio.NewWriter()
	err := WriteEncodedData(w, [][]int16{{1, 2, 3}}, []LayerShape{{Width: 2, Height: 2}})
	if err == nil {
		t.Error("expected error on value/shape length mismatch")
	}
}

func makeTileLayer(width, height int, fill func(i int) int16) []int16 {
	v := make([]int16, width*height)
	for i := range v {
		v[i] = fill(i)
	}
	return v
}

func TestEncodedDataTiledRoundTripPrefix(t *testing.T) {
	shapes := []TileShape{
		{Width: 8, Height: 8, TileSize: 4},
		{Width: 5, Height: 3, TileSize: 4}, // uneven tile at the edge
	}
	values := [][]int16{
		makeTileLayer(8, 8, func(i int) int16 {
			if i%3 == 0 {
				return int16(i % 7)
			}
			return 0
		}),
		makeTileLayer(5, 3, func(i int) int16 {
			if i == 0 {
				return 0
			}
			return int16(i)
		}),
	}
	w := bitio.NewWriter()
	if err := WriteEncodedDataTiled(w, values, shapes, true, entropy.Prefix); err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(mustBytes(t, w))
	got, err := ReadEncodedDataTiled(r, shapes, true, entropy.Prefix)
	if err != nil {
		t.Fatal(err)
	}
	for i := range values {
		if !reflect.DeepEqual(got[i], values[i]) {
			t.Errorf("layer %d = %v, want %v", i, got[i], values[i])
		}
	}
}

func TestEncodedDataTiledRoundTripPrefixOnDiff(t *testing.T) {
	shapes := []TileShape{{Width: 16, Height: 16, TileSize: 8}}
	values := [][]int16{makeTileLayer(16, 16, func(i int) int16 {
		return int16((i * 13) % 29)
	})}
	w := bitio.NewWriter()
	if err := WriteEncodedDataTiled(w, values, shapes, false, entropy.PrefixOnDiff); err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(mustBytes(t, w))
	got, err := ReadEncodedDataTiled(r, shapes, false, entropy.PrefixOnDiff)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got[0], values[0]) {
		t.Errorf("layer 0 mismatch")
	}
}

func TestEncodedDataTiledAllZeroLayer(t *testing.T) {
	shapes := []TileShape{{Width: 4, Height: 4, TileSize: 2}}
	values := [][]int16{make([]int16, 16)}
	w := bitio.NewWriter()
	if err := WriteEncodedDataTiled(w, values, shapes, true, entropy.Prefix); err != nil {
		t.Fatal(err)
	}
	r := bitio.NewReader(mustBytes(t, w))
	got, err := ReadEncodedDataTiled(r, shapes, true, entropy.Prefix)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got[0], values[0]) {
		t.Errorf("all-zero layer = %v, want all zero", got[0])
	}
}
