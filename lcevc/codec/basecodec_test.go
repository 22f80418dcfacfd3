package codec

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ausocean/lcevc/config"
	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/surface"
)

// stubBaseCodec writes a POSIX shell script standing in for a real base
// codec binary: it copies its "-i" input to both its "-o" output and (if
// given) its "-rec" reconstruction, a lossless pass-through sufficient to
// exercise BaseCodec's subprocess wiring without a real encoder/decoder.
func stubBaseCodec(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub base codec script requires a POSIX shell")
	}
	script := `#!/bin/sh
in=""
out=""
rec=""
while [ $# -gt 0 ]; do
  case "$1" in
    -i) in="$2"; shift 2 ;;
    -o) out="$2"; shift 2 ;;
    -rec) rec="$2"; shift 2 ;;
    -d) shift ;;
    *) shift ;;
  esac
done
[ -n "$out" ] && cp "$in" "$out"
[ -n "$rec" ] && cp "$in" "$rec"
`
	path := filepath.Join(dir, "stub_codec.sh")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("writing stub base codec: %v", err)
	}
	return path
}

func testImage(t *testing.T, width, height int) image.Image {
	t.Helper()
	desc := image.Description{Width: width, Height: height, BitDepth: 8, ColourSpace: image.Monochrome}
	b, err := surface.NewBuilder(width, height, surface.Width8)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.Set8(x, y, uint8((x+y)%251))
		}
	}
	sfc, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return image.Image{Description: desc, Planes: []surface.Surface{sfc}}
}

func TestBaseCodecEncodeFrameRoundTrip(t *testing.T) {
	dir := t.TempDir()
	scriptPath := stubBaseCodec(t, dir)
	cfg := &config.Config{BaseCodecPath: scriptPath}
	bc := NewBaseCodec(cfg, dir)

	img := testImage(t, 8, 6)
	recon, bitstream, err := bc.EncodeFrame(img)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if len(bitstream) == 0 {
		t.Error("expected non-empty base codec bitstream")
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			want, _ := img.Planes[0].At8(x, y)
			got, err := recon.Planes[0].At8(x, y)
			if err != nil {
				t.Fatalf("At8(%d,%d): %v", x, y, err)
			}
			if got != want {
				t.Errorf("pel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestBaseCodecDecodeFrameRoundTrip(t *testing.T) {
	dir := t.TempDir()
	scriptPath := stubBaseCodec(t, dir)
	cfg := &config.Config{BaseCodecPath: scriptPath}
	bc := NewBaseCodec(cfg, dir)

	img := testImage(t, 4, 4)
	_, bitstream, err := bc.EncodeFrame(img)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	desc := image.Description{Width: 4, Height: 4, BitDepth: 8, ColourSpace: image.Monochrome}
	out, err := bc.DecodeFrame(bitstream, desc)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want, _ := img.Planes[0].At8(x, y)
			got, err := out.Planes[0].At8(x, y)
			if err != nil {
				t.Fatalf("At8(%d,%d): %v", x, y, err)
			}
			if got != want {
				t.Errorf("pel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}
