package spritebuilder

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"

	"github.com/setanarut/spritebuilder/utils"
)

type Filter int

const (
	// FilterNearest keeps hard pixel edges. Used for pixel-art subjects.
	FilterNearest Filter = iota
	// FilterSmooth is Lanczos, for large painted source art.
	FilterSmooth
)

func (f Filter) String() string {
	if f == FilterSmooth {
		return "lanczos"
	}
	return "nearest"
}

func (f Filter) resample() transform.ResampleFilter {
	if f == FilterSmooth {
		return transform.Lanczos
	}
	return transform.NearestNeighbor
}

// Resize scales img to w x h and returns a zero-origin NRGBA image.
func Resize(img image.Image, w, h int, f Filter) *image.NRGBA {
	return utils.ToNRGBA(transform.Resize(img, w, h, f.resample()))
}

// OpaqueBounds returns the smallest rectangle containing every pixel with a
// non-zero alpha. The rectangle is empty for a fully transparent image.
func OpaqueBounds(img image.Image) image.Rectangle {
	b := img.Bounds()
	box := image.Rectangle{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			px := image.Rect(x, y, x+1, y+1)
			if box.Empty() {
				box = px
			} else {
				box = box.Union(px)
			}
		}
	}
	return box
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// crop copies r out of img into a zero-origin image.
func crop(img image.Image, r image.Rectangle) *image.NRGBA {
	if si, ok := img.(subImager); ok {
		return utils.ToNRGBA(si.SubImage(r))
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// FitSize returns the largest size with the aspect ratio of src that fits
// into dst, at least 1x1.
func FitSize(src, dst Size) Size {
	ratio := min(float64(dst.Width)/float64(src.Width), float64(dst.Height)/float64(src.Height))
	return Size{
		Width:  max(1, int(float64(src.Width)*ratio)),
		Height: max(1, int(float64(src.Height)*ratio)),
	}
}

// Normalize crops a cutout to its opaque content, scales it to fit into
// size and places it on a transparent canvas of exactly that size,
// horizontally centered and resting on the bottom edge.
//
// A fully transparent cutout yields an error for which IsEmpty is true.
func Normalize(img image.Image, size Size, f Filter) (*image.NRGBA, error) {
	box := OpaqueBounds(img)
	if box.Empty() {
		return nil, newEmpty("no opaque pixels in %vx%v image", img.Bounds().Dx(), img.Bounds().Dy())
	}

	content := crop(img, box)
	fit := FitSize(Size{box.Dx(), box.Dy()}, size)
	scaled := content
	if fit.Width != box.Dx() || fit.Height != box.Dy() {
		scaled = Resize(content, fit.Width, fit.Height, f)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	x0 := (size.Width - fit.Width) / 2
	y0 := size.Height - fit.Height
	paste(canvas, image.Pt(x0, y0), scaled)
	return canvas, nil
}
