package yuv

import (
	"path/filepath"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/lcevc/image"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	desc := image.Description{Width: 4, Height: 2, BitDepth: 8, ColourSpace: image.YUV420}
	path := filepath.Join(t.TempDir(), "out.yuv")

	w := NewWith((*logging.TestLogger)(t), path, desc, false)
	if err := w.Start(); err != nil {
		t.Fatalf("Start (write): %v", err)
	}

	img, err := decodeFrame(make([]byte, frameSize(desc)), desc)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}
	if err := w.WriteFrame(img); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop (write): %v", err)
	}

	r := NewWith((*logging.TestLogger)(t), path, desc, false)
	if err := r.Start(); err != nil {
		t.Fatalf("Start (read): %v", err)
	}
	defer r.Stop()

	got, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got.Description != desc {
		t.Errorf("Description = %+v, want %+v", got.Description, desc)
	}
	if len(got.Planes) != 3 {
		t.Fatalf("len(Planes) = %d, want 3", len(got.Planes))
	}
}

func TestReadFrameEOFWithoutLoop(t *testing.T) {
	desc := image.Description{Width: 2, Height: 2, BitDepth: 8, ColourSpace: image.Monochrome}
	path := filepath.Join(t.TempDir(), "empty.yuv")

	f := NewWith((*logging.TestLogger)(t), path, desc, false)
	if err := f.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.Stop()

	_, err := f.ReadFrame()
	if err == nil {
		t.Error("expected an error reading past an empty file")
	}
}

func TestIsRunning(t *testing.T) {
	desc := image.Description{Width: 2, Height: 2, BitDepth: 8, ColourSpace: image.Monochrome}
	path := filepath.Join(t.TempDir(), "running.yuv")

	f := NewWith((*logging.TestLogger)(t), path, desc, false)
	if f.IsRunning() {
		t.Error("IsRunning before Start, want false")
	}
	if err := f.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !f.IsRunning() {
		t.Error("IsRunning after Start, want true")
	}
	f.Stop()
	if f.IsRunning() {
		t.Error("IsRunning after Stop, want false")
	}
}

func TestParseNameConvention(t *testing.T) {
	cases := []struct {
		name string
		want NameConvention
		ok   bool
	}{
		{"clip_1920x1080_8bit.yuv", NameConvention{Width: 1920, Height: 1080, BitDepth: 8}, true},
		{"clip_3840x2160_10bit_25fps.yuv", NameConvention{Width: 3840, Height: 2160, BitDepth: 10, FrameRate: 25}, true},
		{"clip_352x288_29.97fps.yuv", NameConvention{Width: 352, Height: 288, FrameRate: 29.97}, true},
		{"no_resolution_here.yuv", NameConvention{}, false},
	}
	for _, c := range cases {
		got, ok := ParseNameConvention(c.name)
		if ok != c.ok {
			t.Errorf("ParseNameConvention(%q) ok = %v, want %v", c.name, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseNameConvention(%q) = %+v, want %+v", c.name, got, c.want)
		}
	}
}
