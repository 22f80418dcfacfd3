package surface

import "testing"

func TestBuilderRoundTrip8(t *testing.T) {
	b, err := NewBuilder(4, 3, Width8)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]uint8{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}}
	for y, row := range want {
		for x, v := range row {
			b.Set8(x, y, v)
		}
	}
	s, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	for y, row := range want {
		for x, v := range row {
			got, err := s.At8(x, y)
			if err != nil {
				t.Fatal(err)
			}
			if got != v {
				t.Errorf("(%d,%d) = %d, want %d", x, y, got, v)
			}
		}
	}
}

func TestBuilderRoundTrip16(t *testing.T) {
	b, err := NewBuilder(2, 2, Width16)
	if err != nil {
		t.Fatal(err)
	}
	b.Set16(0, 0, 0x1234)
	b.Set16(1, 0, 0xffff)
	b.Set16(0, 1, 0)
	b.Set16(1, 1, 0x0102)
	s, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x, y int
		want uint16
	}{
		{0, 0, 0x1234},
		{1, 0, 0xffff},
		{0, 1, 0},
		{1, 1, 0x0102},
	}
	for _, tt := range tests {
		got, err := s.At16(tt.x, tt.y)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("(%d,%d) = %#x, want %#x", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestChecksumStable(t *testing.T) {
	b, _ := NewBuilder(4, 4, Width8)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			b.Set8(x, y, uint8(x+y))
		}
	}
	s, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	c1, err := s.Checksum()
	if err != nil {
		t.Fatal(err)
	}
	c2, err := s.Checksum()
	if err != nil {
		t.Fatal(err)
	}
	if c1 != c2 {
		t.Errorf("checksum not stable: %d != %d", c1, c2)
	}
}

func TestInvalidStride(t *testing.T) {
	buf := NewBuffer(100)
	if _, err := New(buf, 0, 10, 10, 5, Width8); err == nil {
		t.Error("expected error for undersized stride")
	}
}
