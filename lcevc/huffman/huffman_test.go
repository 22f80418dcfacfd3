package huffman

import (
	"math/rand"
	"testing"

	"github.com/ausocean/lcevc/bitio"
)

func TestCanonicalRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		var counts [256]int
		n := 1 + rng.Intn(40)
		for i := 0; i < n; i++ {
			counts[rng.Intn(256)] += 1 + rng.Intn(500)
		}
		tab := Build(counts)

		w := bitio.NewWriter()
		if err := tab.WriteCodebook(w); err != nil {
			t.Fatalf("trial %d: write codebook: %v", trial, err)
		}
		// Also encode a handful of symbols actually present.
		var present []uint8
		for s := 0; s <= 255; s++ {
			if counts[s] > 0 {
				present = append(present, uint8(s))
			}
		}
		for _, s := range present {
			if err := tab.Encode(w, s); err != nil {
				t.Fatalf("trial %d: encode %d: %v", trial, s, err)
			}
		}
		if err := w.Align(); err != nil {
			t.Fatal(err)
		}
		b, err := w.Bytes()
		if err != nil {
			t.Fatal(err)
		}

		r := bitio.NewReader(b)
		got, err := ReadCodebook(r)
		if err != nil {
			t.Fatalf("trial %d: read codebook: %v", trial, err)
		}
		for _, s := range present {
			d, err := got.Decode(r)
			if err != nil {
				t.Fatalf("trial %d: decode: %v", trial, err)
			}
			if d != s {
				t.Fatalf("trial %d: decoded %d, want %d", trial, d, s)
			}
		}
	}
}

func TestEmptyTable(t *testing.T) {
	var counts [256]int
	tab := Build(counts)
	w := bitio.NewWriter()
	if err := tab.WriteCodebook(w); err != nil {
		t.Fatal(err)
	}
	w.Align()
	b, _ := w.Bytes()
	r := bitio.NewReader(b)
	got, err := ReadCodebook(r)
	if err != nil {
		t.Fatal(err)
	}
	if !got.empty {
		t.Error("expected empty table")
	}
}

func TestSingleSymbolTable(t *testing.T) {
	var counts [256]int
	counts[42] = 100
	tab := Build(counts)
	w := bitio.NewWriter()
	if err := tab.WriteCodebook(w); err != nil {
		t.Fatal(err)
	}
	w.Align()
	b, _ := w.Bytes()
	r := bitio.NewReader(b)
	got, err := ReadCodebook(r)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		d, err := got.Decode(r)
		if err != nil {
			t.Fatal(err)
		}
		if d != 42 {
			t.Errorf("got %d, want 42", d)
		}
	}
}

func TestTieBreakDeterministic(t *testing.T) {
	var counts [256]int
	counts[3] = 5
	counts[7] = 5
	counts[9] = 10
	t1 := Build(counts)
	t2 := Build(counts)
	if len(t1.codes) != len(t2.codes) {
		t.Fatal("non-deterministic code count")
	}
	for i := range t1.codes {
		if t1.codes[i] != t2.codes[i] {
			t.Errorf("non-deterministic code at %d: %+v vs %+v", i, t1.codes[i], t2.codes[i])
		}
	}
}
