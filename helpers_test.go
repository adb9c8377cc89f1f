package spritebuilder

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/setanarut/spritebuilder/utils"
)

// block returns a w x h transparent image with an opaque rectangle r
// filled with c.
func block(w, h int, r image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// pattern returns a w x h image where every pixel is distinct and seeded by
// seed, fully opaque.
func pattern(w, h int, seed uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 5), G: uint8(y * 3), B: seed, A: 255})
		}
	}
	return img
}

func samePixels(t *testing.T, want, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds().Size(), got.Bounds().Size())
	wb, gb := want.Bounds(), got.Bounds()
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			wc := color.NRGBAModel.Convert(want.At(wb.Min.X+x, wb.Min.Y+y))
			gc := color.NRGBAModel.Convert(got.At(gb.Min.X+x, gb.Min.Y+y))
			if wc != gc {
				t.Fatalf("pixel %v,%v: want %v, got %v", x, y, wc, gc)
			}
		}
	}
}

// testConfig is a small config rooted at a temp directory.
func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Dir = t.TempDir()
	cfg.Characters.Subjects = []string{"blue", "red", "orange"}
	cfg.Animals.Subjects = []string{"cow"}
	return cfg
}

func writePNG(t *testing.T, img image.Image, path string) {
	t.Helper()
	require.NoError(t, utils.SaveImage(img, path))
}

func readPNG(t *testing.T, path string) *image.NRGBA {
	t.Helper()
	img, err := utils.ReadNRGBA(path)
	require.NoError(t, err)
	return img
}

func name(path string) string {
	return filepath.Base(path)
}
