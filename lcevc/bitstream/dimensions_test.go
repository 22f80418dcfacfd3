package bitstream

import (
	"testing"

	"github.com/ausocean/lcevc/image"
	"github.com/ausocean/lcevc/resample"
)

func TestDeriveDimensionsNoScaling(t *testing.T) {
	g := Global{
		ScalingModeLoQ1:    resample.ScaleNone,
		ScalingModeLoQ2:    resample.ScaleNone,
		TransformBlockSize: 4,
		NumProcessedPlanes: 3,
	}
	d := DeriveDimensions(1920, 1080, image.YUV420, g)
	if len(d.Planes) != 3 {
		t.Fatalf("got %d planes, want 3", len(d.Planes))
	}
	luma := d.Planes[0]
	if luma.LoQ2Width != 1920 || luma.LoQ2Height != 1080 {
		t.Errorf("luma LoQ2 dims = %dx%d, want 1920x1080", luma.LoQ2Width, luma.LoQ2Height)
	}
	if luma.LoQ1Width != 1920 || luma.LoQ1Height != 1080 {
		t.Errorf("luma LoQ1 dims = %dx%d, want 1920x1080 (no scaling)", luma.LoQ1Width, luma.LoQ1Height)
	}
	if luma.LoQ1TileWidth != 480 || luma.LoQ1TileHeight != 270 {
		t.Errorf("luma LoQ1 tile dims = %dx%d, want 480x270", luma.LoQ1TileWidth, luma.LoQ1TileHeight)
	}
	chroma := d.Planes[1]
	if chroma.LoQ2Width != 960 || chroma.LoQ2Height != 540 {
		t.Errorf("chroma LoQ2 dims = %dx%d, want 960x540 (4:2:0)", chroma.LoQ2Width, chroma.LoQ2Height)
	}
}

func TestDeriveDimensionsScale2DChainsDownToLoQ1(t *testing.T) {
	g := Global{
		ScalingModeLoQ1:    resample.Scale2D,
		ScalingModeLoQ2:    resample.Scale2D,
		TransformBlockSize: 2,
		NumProcessedPlanes: 1,
	}
	d := DeriveDimensions(1920, 1080, image.Monochrome, g)
	if len(d.Planes) != 1 {
		t.Fatalf("got %d planes, want 1", len(d.Planes))
	}
	p := d.Planes[0]
	if p.LoQ2Width != 1920 || p.LoQ2Height != 1080 {
		t.Errorf("LoQ2 dims = %dx%d, want 1920x1080", p.LoQ2Width, p.LoQ2Height)
	}
	if p.LoQ1Width != 480 || p.LoQ1Height != 270 {
		t.Errorf("LoQ1 dims = %dx%d, want 480x270 (two halvings)", p.LoQ1Width, p.LoQ1Height)
	}
	if p.LoQ1TileWidth != 240 || p.LoQ1TileHeight != 135 {
		t.Errorf("LoQ1 tile dims = %dx%d, want 240x135", p.LoQ1TileWidth, p.LoQ1TileHeight)
	}
}

func TestDeriveDimensionsOddResolutionRoundsUp(t *testing.T) {
	g := Global{
		ScalingModeLoQ1:    resample.Scale1D,
		ScalingModeLoQ2:    resample.ScaleNone,
		TransformBlockSize: 4,
		NumProcessedPlanes: 1,
	}
	d := DeriveDimensions(17, 17, image.Monochrome, g)
	p := d.Planes[0]
	if p.LoQ1Width != 9 {
		t.Errorf("LoQ1 width = %d, want 9 (ceil(17/2))", p.LoQ1Width)
	}
	if p.LoQ1Height != 17 {
		t.Errorf("LoQ1 height = %d, want 17 (1-D leaves vertical unscaled)", p.LoQ1Height)
	}
	if p.LoQ1TileWidth != 3 {
		t.Errorf("LoQ1 tile width = %d, want 3 (ceil(9/4))", p.LoQ1TileWidth)
	}
}

func TestDeriveDimensionsRespectsNumProcessedPlanes(t *testing.T) {
	g := Global{NumProcessedPlanes: 1}
	d := DeriveDimensions(64, 64, image.YUV444, g)
	if len(d.Planes) != 1 {
		t.Errorf("got %d planes, want 1 (NumProcessedPlanes caps YUV444's 3)", len(d.Planes))
	}
}
