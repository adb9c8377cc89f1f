package spritebuilder

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/setanarut/spritebuilder/internal/logging"
	"github.com/setanarut/spritebuilder/utils"
)

// HueBand is an inclusive range of hue angles in degrees.
// Min > Max describes a band that wraps through 0, e.g. 340..20 for reds.
type HueBand struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (b HueBand) Contains(h float64) bool {
	if b.Min <= b.Max {
		return h >= b.Min && h <= b.Max
	}
	return h >= b.Min || h <= b.Max
}

// Recolorizer moves saturated pixels inside a hue band to a target hue.
// Pixels outside the band, unsaturated pixels (skin, outlines) and
// near-transparent pixels are copied unchanged.
type Recolorizer struct {
	Band          HueBand
	MinSaturation float64
	MinAlpha      uint8
	// Frames with fewer pixels at or above MinAlpha are rejected.
	MinOpaquePixels int
}

func NewRecolorizer(cfg RecolorConfig) *Recolorizer {
	return &Recolorizer{
		Band:            cfg.Band,
		MinSaturation:   cfg.MinSaturation,
		MinAlpha:        cfg.MinAlpha,
		MinOpaquePixels: cfg.MinOpaquePixels,
	}
}

// RecolorPixel returns c shifted to the target, or c itself when it is not
// recolorable.
func (r *Recolorizer) RecolorPixel(c color.NRGBA, t RecolorTarget) color.NRGBA {
	if c.A < r.MinAlpha {
		return c
	}
	col := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, v := col.Hsv()
	if !r.Band.Contains(h) || s <= r.MinSaturation {
		return c
	}

	hue := math.Mod(t.Hue, 360)
	if hue < 0 {
		hue += 360
	}
	s = clamp01(s * t.SatScale)
	v = clamp01(v * t.ValScale)
	nr, ng, nb := colorful.Hsv(hue, s, v).Clamped().RGB255()
	return color.NRGBA{R: nr, G: ng, B: nb, A: c.A}
}

// RecolorImage returns a recolored copy of img.
func (r *Recolorizer) RecolorImage(img image.Image, t RecolorTarget) *image.NRGBA {
	src := utils.ToNRGBA(img)
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetNRGBA(x, y, r.RecolorPixel(src.NRGBAAt(x, y), t))
		}
	}
	return dst
}

// Check rejects frames that look like a failed background extraction,
// i.e. frames with too few visible pixels.
func (r *Recolorizer) Check(img image.Image) error {
	n := countVisible(img, r.MinAlpha)
	if n < r.MinOpaquePixels {
		return newRejected("only %d visible pixels, want at least %d", n, r.MinOpaquePixels)
	}
	return nil
}

func countVisible(img image.Image, minAlpha uint8) int {
	src := utils.ToNRGBA(img)
	b := src.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.NRGBAAt(x, y).A >= minAlpha {
				n++
			}
		}
	}
	return n
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

// RecolorResult has one report per target variant.
type RecolorResult struct {
	Targets map[string]*Report
	Sheets  []SheetStats
}

// RecolorVariants writes every configured target variant of the source
// subject, frame by frame, and rebuilds the target sheets when configured.
func RecolorVariants(cfg Config, store *Store, progress func(Item)) (*RecolorResult, error) {
	rc := cfg.Recolor
	kind, ok := cfg.Kind(rc.Kind)
	if !ok {
		return nil, NewValidationError("recolor: unknown kind %q", rc.Kind)
	}
	r := NewRecolorizer(rc)

	res := &RecolorResult{Targets: make(map[string]*Report)}
	for _, t := range rc.Targets {
		logging.Info("Recolor %v -> %v", rc.Source, t.Name)
		rep := &Report{Progress: progress}
		for _, d := range cfg.Directions {
			for i := 0; i < kind.Frames; i++ {
				src := FrameID{Kind: kind.Prefix, Subject: rc.Source, Direction: d, Index: i}
				dst := FrameID{Kind: kind.Prefix, Subject: t.Name, Direction: d, Index: i}
				it := Item{Name: dst.Name()}
				it.Err = r.recolorFrame(store, src, dst, t)
				it.Status = statusOf(it.Err)
				if it.Err != nil {
					logging.Warning("%v: %v", src.Name(), it.Err)
				}
				rep.add(it)
			}
		}
		res.Targets[t.Name] = rep
	}

	if !rc.RebuildSheets {
		return res, nil
	}
	sb := NewSheetBuilder(cfg, store)
	for _, t := range rc.Targets {
		st, err := sb.Build(kind, t.Name)
		if err != nil {
			logging.Error("Sheet %v_%v: %v", kind.Prefix, t.Name, err)
			continue
		}
		res.Sheets = append(res.Sheets, st)
	}
	return res, nil
}

func (r *Recolorizer) recolorFrame(store *Store, src, dst FrameID, t RecolorTarget) error {
	img, err := store.LoadFrame(src)
	if err != nil {
		return err
	}
	err = r.Check(img)
	if err != nil {
		return err
	}
	return store.Save(r.RecolorImage(img, t), store.FramePath(dst))
}
