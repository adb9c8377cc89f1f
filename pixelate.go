package spritebuilder

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/anthonynsimon/bild/channel"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/setanarut/spritebuilder/internal/logging"
	"github.com/setanarut/spritebuilder/utils"
)

// Pixelate coarsens img by scaling it down by factor and back up, both
// times with nearest neighbor. Color and alpha are resampled separately so
// color never bleeds into transparent areas.
//
// factor must be in (0,1]; 1 returns an identical copy.
func Pixelate(img image.Image, factor float64) (*image.NRGBA, error) {
	if !validFactor(factor) {
		return nil, fmt.Errorf("pixel factor %v not in (0,1]", factor)
	}
	src := utils.ToNRGBA(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if factor == 1 || w == 0 || h == 0 {
		return cloneNRGBA(src), nil
	}

	sw := max(1, int(float64(w)*factor))
	sh := max(1, int(float64(h)*factor))

	rgb, alpha := splitAlpha(src)
	rgb = Resize(Resize(rgb, sw, sh, FilterNearest), w, h, FilterNearest)
	mask := Resize(Resize(alpha, sw, sh, FilterNearest), w, h, FilterNearest)
	return mergeAlpha(rgb, mask), nil
}

// cloneNRGBA returns a zero-origin copy of src.
func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	row := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+row], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return dst
}

// splitAlpha separates img into an opaque color image and a gray image
// holding the alpha channel.
func splitAlpha(img *image.NRGBA) (rgb *image.NRGBA, alpha *image.Gray) {
	rgb = cloneNRGBA(img)
	for i := 3; i < len(rgb.Pix); i += 4 {
		rgb.Pix[i] = 0xff
	}
	return rgb, channel.Extract(img, channel.Alpha)
}

// mergeAlpha takes color from rgb and alpha from the gray level of mask.
func mergeAlpha(rgb, mask *image.NRGBA) *image.NRGBA {
	b := rgb.Bounds()
	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := rgb.NRGBAAt(x, y)
			c.A = mask.NRGBAAt(x, y).R
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}

// Quantize reduces the RGB channels of img to at most maxColors colors and
// leaves alpha untouched. Images that already have few enough colors, and
// maxColors <= 0, yield an unchanged copy.
func Quantize(img image.Image, maxColors int, method utils.PaletteMethod) *image.NRGBA {
	src := cloneNRGBA(utils.ToNRGBA(img))
	if maxColors <= 0 || utils.CountColors(src) <= maxColors {
		return src
	}
	palette := utils.ExtractPalette(src, maxColors, method)
	if len(palette) == 0 {
		logging.Warning("Quantize: empty palette, image left unchanged")
		return src
	}
	return RemapToPalette(src, palette)
}

// RemapToPalette replaces the color of every visible pixel with the nearest
// palette entry (Lab distance). Alpha is kept.
func RemapToPalette(img *image.NRGBA, palette []colorful.Color) *image.NRGBA {
	type entry struct {
		l, a, b float64
		c       color.NRGBA
	}
	entries := make([]entry, len(palette))
	for i, p := range palette {
		p = p.Clamped()
		l, a, b := p.Lab()
		r, g, bl := p.RGB255()
		entries[i] = entry{l, a, b, color.NRGBA{R: r, G: g, B: bl}}
	}

	cache := make(map[color.NRGBA]color.NRGBA)
	nearest := func(c color.NRGBA) color.NRGBA {
		key := color.NRGBA{R: c.R, G: c.G, B: c.B}
		if m, ok := cache[key]; ok {
			return m
		}
		l, a, b := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Lab()
		best, bestD := 0, -1.0
		for i, e := range entries {
			d := (l-e.l)*(l-e.l) + (a-e.a)*(a-e.a) + (b-e.b)*(b-e.b)
			if bestD < 0 || d < bestD {
				best, bestD = i, d
			}
		}
		cache[key] = entries[best].c
		return entries[best].c
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.A == 0 {
				dst.SetNRGBA(x, y, c)
				continue
			}
			m := nearest(c)
			m.A = c.A
			dst.SetNRGBA(x, y, m)
		}
	}
	return dst
}

// Pixelizer applies Pixelate and Quantize to every sprite in place.
type Pixelizer struct {
	Config   Config
	Store    *Store
	Progress func(Item)
}

func NewPixelizer(cfg Config, store *Store) *Pixelizer {
	return &Pixelizer{Config: cfg, Store: store}
}

// Apply pixelates and quantizes one image with the configured palette.
func (p *Pixelizer) Apply(img image.Image, factor float64) (*image.NRGBA, error) {
	out, err := Pixelate(img, factor)
	if err != nil {
		return nil, err
	}
	method, err := utils.ParsePaletteMethod(p.Config.Pixelate.Method)
	if err != nil {
		return nil, err
	}
	return Quantize(out, p.Config.Pixelate.MaxColors, method), nil
}

// RunKind pixelates every existing frame of every subject of k. Absent
// frames are silently ignored.
func (p *Pixelizer) RunKind(k Kind) *Report {
	r := &Report{Progress: p.Progress}
	for _, subject := range k.Subjects {
		for _, d := range p.Config.Directions {
			for i := 0; i < k.Frames; i++ {
				path := p.Store.FramePath(FrameID{Kind: k.Prefix, Subject: subject, Direction: d, Index: i})
				if !p.Store.Exists(path) {
					continue
				}
				r.add(p.file(path, k.PixelFactor))
			}
		}
	}
	return r
}

// RunBuildings pixelates every configured building.
func (p *Pixelizer) RunBuildings() *Report {
	r := &Report{Progress: p.Progress}
	for _, b := range p.Config.Buildings {
		r.add(p.file(p.Store.ImagePath(b.Name), p.Config.Pixelate.BuildingPixelFactor))
	}
	return r
}

func (p *Pixelizer) file(path string, factor float64) Item {
	it := Item{Name: filepath.Base(path)}
	img, err := p.Store.Load(path)
	if err == nil {
		var out *image.NRGBA
		out, err = p.Apply(img, factor)
		if err == nil {
			err = p.Store.Save(out, path)
		}
	}
	if err != nil && !IsNotFound(err) {
		logging.Error("Pixelate %v: %v", it.Name, err)
	}
	it.Err = err
	it.Status = statusOf(err)
	return it
}
