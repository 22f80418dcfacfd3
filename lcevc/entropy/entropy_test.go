package entropy

import (
	"math/rand"
	"testing"
)

func TestResidualsRasterRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	width, height := 16, 12
	values := make([]int16, width*height)
	for i := range values {
		switch {
		case r.Intn(4) == 0:
			values[i] = int16(r.Intn(8000) - 4000) // Exercise the two-byte branch.
		case r.Intn(3) == 0:
			values[i] = 0
		default:
			values[i] = int16(r.Intn(60) - 30)
		}
	}
	order := RasterOrder(width, height)

	chunk, err := EncodeResiduals(values, order)
	if err != nil {
		t.Fatal(err)
	}
	for _, isPrefix := range []bool{false, true} {
		data := chunk.Raw
		if isPrefix {
			data = chunk.Prefix
		}
		got, err := DecodeResiduals(data, isPrefix, order)
		if err != nil {
			t.Fatalf("isPrefix=%v: %v", isPrefix, err)
		}
		for i := range values {
			if got[i] != values[i] {
				t.Fatalf("isPrefix=%v: index %d = %d, want %d", isPrefix, i, got[i], values[i])
			}
		}
	}
}

func TestResidualsTiledRoundTrip(t *testing.T) {
	width, height, tile := 64, 64, 32
	values := make([]int16, width*height)
	for i := range values {
		if i%5 == 0 {
			values[i] = int16(i%20) - 10
		}
	}
	order := TiledOrder(width, height, tile)
	if len(order) != width*height {
		t.Fatalf("TiledOrder length = %d, want %d", len(order), width*height)
	}

	chunk, err := EncodeResiduals(values, order)
	if err != nil {
		t.Fatal(err)
	}
	data, isPrefix := chunk.Pick()
	got, err := DecodeResiduals(data, isPrefix, order)
	if err != nil {
		t.Fatal(err)
	}
	for i := range values {
		if got[i] != values[i] {
			t.Fatalf("index %d = %d, want %d", i, got[i], values[i])
		}
	}
}

func TestResidualsFirstPelAlwaysCoded(t *testing.T) {
	order := RasterOrder(4, 4)
	values := make([]int16, 16) // All zero.
	chunk, err := EncodeResiduals(values, order)
	if err != nil {
		t.Fatal(err)
	}
	if chunk.Empty() {
		t.Fatal("expected a non-empty chunk even for an all-zero surface")
	}
	got, err := DecodeResiduals(chunk.Raw, false, order)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got {
		if v != 0 {
			t.Errorf("index %d = %d, want 0", i, v)
		}
	}
}

func TestTemporalFlagsRoundTrip(t *testing.T) {
	tiles := []TileFlags{
		{Flags: []bool{false, false, false, true, true, false}},
		{Flags: []bool{false, false, false, false}, AllIntraSignalled: true},
		{Flags: []bool{true, true, true}},
	}
	chunk, err := EncodeTemporalFlags(tiles, true)
	if err != nil {
		t.Fatal(err)
	}
	counts := make([]int, len(tiles))
	allIntra := make([]bool, len(tiles))
	for i, tile := range tiles {
		counts[i] = len(tile.Flags)
		allIntra[i] = tile.AllIntraSignalled
	}

	for _, isPrefix := range []bool{false, true} {
		data := chunk.Raw
		if isPrefix {
			data = chunk.Prefix
		}
		got, err := DecodeTemporalFlags(data, isPrefix, counts, allIntra, true)
		if err != nil {
			t.Fatalf("isPrefix=%v: %v", isPrefix, err)
		}
		for i, tile := range tiles {
			want := tile.Flags
			if tile.AllIntraSignalled {
				want = make([]bool, len(tile.Flags))
			}
			for j := range want {
				if got[i][j] != want[j] {
					t.Fatalf("isPrefix=%v tile %d flag %d = %v, want %v", isPrefix, i, j, got[i][j], want[j])
				}
			}
		}
	}
}

func TestSizesPrefixRoundTrip(t *testing.T) {
	sizes := []int{0, 10, 1000, 2, 9000, 63, 64}
	chunk, err := EncodeSizes(sizes, Prefix)
	if err != nil {
		t.Fatal(err)
	}
	for _, isPrefix := range []bool{false, true} {
		data := chunk.Raw
		if isPrefix {
			data = chunk.Prefix
		}
		got, err := DecodeSizes(data, isPrefix, len(sizes), Prefix)
		if err != nil {
			t.Fatalf("isPrefix=%v: %v", isPrefix, err)
		}
		for i := range sizes {
			if got[i] != sizes[i] {
				t.Fatalf("isPrefix=%v index %d = %d, want %d", isPrefix, i, got[i], sizes[i])
			}
		}
	}
}

func TestSizesPrefixOnDiffRoundTrip(t *testing.T) {
	sizes := []int{100, 102, 98, 98, 500, 10}
	chunk, err := EncodeSizes(sizes, PrefixOnDiff)
	if err != nil {
		t.Fatal(err)
	}
	data, isPrefix := chunk.Pick()
	got, err := DecodeSizes(data, isPrefix, len(sizes), PrefixOnDiff)
	if err != nil {
		t.Fatal(err)
	}
	for i := range sizes {
		if got[i] != sizes[i] {
			t.Fatalf("index %d = %d, want %d", i, got[i], sizes[i])
		}
	}
}

func TestChunkPickPrefersSmaller(t *testing.T) {
	c := Chunk{Raw: []byte{1, 2, 3}, Prefix: []byte{1}}
	data, isPrefix := c.Pick()
	if !isPrefix || len(data) != 1 {
		t.Fatalf("Pick() = (%v, %v), want the shorter prefix packet", data, isPrefix)
	}
}
