package utils

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"slices"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"golang.org/x/image/draw"
)

type PaletteMethod int

const (
	PaletteMethodKMeans PaletteMethod = iota
	PaletteMethodDominantColor
)

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodDominantColor:
		return "dominantcolor"
	default:
		return "kmeans"
	}
}

// ParsePaletteMethod maps "kmeans" or "dominantcolor" to a PaletteMethod.
// The empty string selects k-means.
func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch strings.ToLower(s) {
	case "", "kmeans":
		return PaletteMethodKMeans, nil
	case "dominantcolor", "dominant":
		return PaletteMethodDominantColor, nil
	}
	return PaletteMethodKMeans, fmt.Errorf("unknown palette method %q", s)
}

// OpaqueColors returns the colors of all pixels with a non-zero alpha,
// ignoring alpha itself.
func OpaqueColors(img image.Image) []color.NRGBA {
	b := img.Bounds()
	out := make([]color.NRGBA, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			c.A = 255
			out = append(out, c)
		}
	}
	return out
}

// CountColors returns the number of distinct RGB values among opaque pixels.
func CountColors(img image.Image) int {
	seen := make(map[color.NRGBA]struct{})
	for _, c := range OpaqueColors(img) {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// opaqueSwatch packs the opaque pixels of img into a roughly square, fully
// opaque image so transparent regions cannot leak into a palette.
func opaqueSwatch(img image.Image) *image.NRGBA {
	cols := OpaqueColors(img)
	if len(cols) == 0 {
		return nil
	}
	side := int(math.Ceil(math.Sqrt(float64(len(cols)))))
	sw := image.NewNRGBA(image.Rect(0, 0, side, side))
	for i := 0; i < side*side; i++ {
		sw.SetNRGBA(i%side, i/side, cols[i%len(cols)])
	}
	return sw
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	swatch := opaqueSwatch(img)
	if swatch == nil {
		return nil
	}

	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(swatch, nCandidates)
	if len(candidates) == 0 {
		// Last resort: avoid an empty palette, the remap step needs one entry.
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: w})
	}
	return SelectDiverseWeightedColors(weighted, k)
}

// SelectDiverseWeightedColors greedily picks k colors, starting from the
// heaviest and then favoring colors far (in Lab) from everything chosen so
// far, with a bonus for weight.
func SelectDiverseWeightedColors(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		col := c.Col.Clamped()
		l, a, b := col.Lab()
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		if w > maxW {
			maxW = w
		}
		items = append(items, item{
			col: col,
			lab: [3]float64{l, a, b},
			w:   w,
		})
	}
	if k > len(items) {
		k = len(items)
	}
	if maxW <= 0 {
		maxW = 1.0
	}

	selectedIdx := make([]int, 0, k)
	selected := make([]bool, len(items))

	bestSeed := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[bestSeed].w {
			bestSeed = i
		}
	}
	selectedIdx = append(selectedIdx, bestSeed)
	selected[bestSeed] = true

	for len(selectedIdx) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range selectedIdx {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				minD2 = min(minD2, d0*d0+d1*d1+d2*d2)
			}
			normW := items[i].w / maxW
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(normW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
	}

	out := make([]colorful.Color, 0, len(selectedIdx))
	for _, idx := range selectedIdx {
		out = append(out, items[idx].col)
	}
	return out
}

func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}

	cols := OpaqueColors(img)
	if len(cols) == 0 {
		return nil
	}

	// Sprites are small, but buildings can reach 192x192.
	maxSamples := 12000
	step := 1
	if len(cols) > maxSamples {
		step = len(cols)/maxSamples + 1
	}

	dataset := make(clusters.Observations, 0, min(len(cols), maxSamples))
	for i := 0; i < len(cols); i += step {
		c := cols[i]
		dataset = append(dataset, clusters.Coordinates{
			float64(c.R) / 255.0,
			float64(c.G) / 255.0,
			float64(c.B) / 255.0,
		})
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	// Sort by cluster population so dominant colors come first.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{
			R: c.Center[0],
			G: c.Center[1],
			B: c.Center[2],
		}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: float64(len(c.Observations))})
	}
	return SelectDiverseWeightedColors(weighted, k)
}

// ExtractPalette returns at most k colors representing the opaque pixels of
// img. Transparent pixels never contribute.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodDominantColor:
		return ExtractDominantPalette(img, k)
	default:
		p := ExtractKMeansPalette(img, k)
		if len(p) != 0 {
			return p
		}
		log.Println("palette warning: kmeans returned empty palette, falling back to dominantcolor")
		return ExtractDominantPalette(img, k)
	}
}

// ReadImage decodes the image file at path.
func ReadImage(path string) (image.Image, error) {
	return imgio.Open(path)
}

// ReadNRGBA decodes the image file at path into a zero-origin NRGBA image.
func ReadNRGBA(path string) (*image.NRGBA, error) {
	img, err := ReadImage(path)
	if err != nil {
		return nil, err
	}
	return ToNRGBA(img), nil
}

// ToNRGBA returns img as a zero-origin *image.NRGBA. An NRGBA input with
// zero origin is returned as is; anything else is copied without going
// through premultiplied alpha when the source is already NRGBA.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if n, ok := img.(*image.NRGBA); ok {
		if b.Min == (image.Point{}) {
			return n
		}
		row := b.Dx() * 4
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+row], n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}

func SaveImage(img image.Image, filename string) error {
	return imgio.Save(filename, img, imgio.PNGEncoder())
}

// SavePalette writes the palette as a row of square swatches.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	img := image.NewNRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		swatch := image.Rect(i*tileSize, 0, (i+1)*tileSize, tileSize)
		draw.Draw(img, swatch, image.NewUniform(color.NRGBA{R: r, G: g, B: b, A: 255}), image.Point{}, draw.Src)
	}

	return SaveImage(img, filename)
}
