package spritebuilder

import (
	"image"
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setanarut/spritebuilder/utils"
)

// checker returns a w x h image with a distinct color per pixel and a mix
// of opaque, translucent and transparent pixels.
func checker(w, h int) *image.NRGBA {
	img := pattern(w, h, 50)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(x, y)
			switch (x + 2*y) % 3 {
			case 1:
				c.A = 128
			case 2:
				c.A = 0
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestPixelateIdentity(t *testing.T) {
	src := checker(12, 16)
	out, err := Pixelate(src, 1)
	require.NoError(t, err)
	samePixels(t, src, out)

	// the result is a copy
	out.SetNRGBA(0, 0, color.NRGBA{R: 1, A: 1})
	assert.NotEqual(t, out.NRGBAAt(0, 0), src.NRGBAAt(0, 0))
}

func TestPixelateBlocks(t *testing.T) {
	src := checker(4, 4)
	out, err := Pixelate(src, 0.5)
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), out.Bounds())

	// every 2x2 block takes color and alpha from one source pixel
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := src.NRGBAAt(2*(x/2)+1, 2*(y/2)+1)
			assert.Equal(t, want, out.NRGBAAt(x, y), "pixel %v,%v", x, y)
		}
	}
}

func TestSplitAlpha(t *testing.T) {
	// a zero-origin view whose stride is wider than its rows
	src := checker(8, 6).SubImage(image.Rect(0, 0, 5, 6)).(*image.NRGBA)
	rgb, alpha := splitAlpha(src)
	require.Equal(t, image.Rect(0, 0, 5, 6), rgb.Bounds())
	require.Equal(t, 5, alpha.Bounds().Dx())
	require.Equal(t, 6, alpha.Bounds().Dy())

	for y := 0; y < 6; y++ {
		for x := 0; x < 5; x++ {
			c := src.NRGBAAt(x, y)
			a := alpha.GrayAt(alpha.Rect.Min.X+x, alpha.Rect.Min.Y+y).Y
			assert.Equal(t, c.A, a, "alpha at %v,%v", x, y)
			assert.Equal(t, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}, rgb.NRGBAAt(x, y))
		}
	}

	mask := Resize(alpha, 5, 6, FilterNearest)
	samePixels(t, src, mergeAlpha(rgb, mask))
}

func TestPixelateKeepsSize(t *testing.T) {
	for _, f := range []float64{0.5, 0.33, 0.25, 0.01} {
		out, err := Pixelate(checker(48, 64), f)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 48, 64), out.Bounds(), "factor %v", f)
	}

	out, err := Pixelate(checker(5, 3), 0.5)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 3), out.Bounds())
}

func TestPixelateInvalidFactor(t *testing.T) {
	for _, f := range []float64{0, -0.5, 1.5} {
		_, err := Pixelate(checker(4, 4), f)
		assert.Error(t, err, "factor %v", f)
	}
}

func TestQuantize(t *testing.T) {
	src := checker(10, 10)
	require.Greater(t, utils.CountColors(src), 8)

	for _, m := range []utils.PaletteMethod{utils.PaletteMethodKMeans, utils.PaletteMethodDominantColor} {
		out := Quantize(src, 8, m)
		assert.LessOrEqual(t, utils.CountColors(out), 8, "method %v", m)
		for y := 0; y < 10; y++ {
			for x := 0; x < 10; x++ {
				s, o := src.NRGBAAt(x, y), out.NRGBAAt(x, y)
				require.Equal(t, s.A, o.A, "alpha at %v,%v (%v)", x, y, m)
				if s.A == 0 {
					assert.Equal(t, s, o)
				}
			}
		}
	}
}

func TestQuantizeFewColors(t *testing.T) {
	src := block(8, 8, image.Rect(0, 0, 8, 4), shirtBlue)
	src.SetNRGBA(1, 6, color.NRGBA{R: 250, G: 250, B: 10, A: 200})

	samePixels(t, src, Quantize(src, 8, utils.PaletteMethodKMeans))

	many := checker(6, 6)
	samePixels(t, many, Quantize(many, 0, utils.PaletteMethodKMeans))
}

func TestRemapToPalette(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 30, G: 30, B: 30, A: 128})
	img.SetNRGBA(2, 0, color.NRGBA{R: 90, G: 90, B: 90, A: 0})

	out := RemapToPalette(img, []colorful.Color{{R: 0, G: 0, B: 0}, {R: 1, G: 1, B: 1}})
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{A: 128}, out.NRGBAAt(1, 0))
	assert.Equal(t, img.NRGBAAt(2, 0), out.NRGBAAt(2, 0))
}

func TestPixelizerRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Characters.Subjects = []string{"blue"}
	cfg.Characters.Size = Size{10, 10}
	cfg.Pixelate.MaxColors = 4
	store := StoreFromConfig(cfg)

	front := store.FramePath(FrameID{Kind: "char", Subject: "blue", Direction: Front, Index: 0})
	back := store.FramePath(FrameID{Kind: "char", Subject: "blue", Direction: Back, Index: 2})
	writePNG(t, checker(10, 10), front)
	writePNG(t, checker(10, 10), back)
	well := store.ImagePath("building_well")
	writePNG(t, pattern(20, 20, 3), well)

	p := NewPixelizer(cfg, store)
	var names []string
	p.Progress = func(it Item) { names = append(names, it.Name) }

	r := p.RunKind(cfg.Characters)
	assert.Len(t, r.Items, 2)
	assert.Equal(t, 2, r.Count(StatusOK))
	for _, path := range []string{front, back} {
		out := readPNG(t, path)
		assert.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())
		assert.LessOrEqual(t, utils.CountColors(out), 4)
	}

	r = p.RunBuildings()
	assert.Len(t, r.Items, len(cfg.Buildings))
	assert.Equal(t, 1, r.Count(StatusOK))
	assert.Equal(t, len(cfg.Buildings)-1, r.Count(StatusSkipped))
	assert.Equal(t, image.Rect(0, 0, 20, 20), readPNG(t, well).Bounds())
	assert.Contains(t, names, "building_well.png")
}
