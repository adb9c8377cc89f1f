package spritebuilder

import (
	"os"
	"slices"

	"gopkg.in/yaml.v2"

	"github.com/setanarut/spritebuilder/utils"
)

type Direction string

const (
	Front Direction = "front"
	Left  Direction = "left"
	Right Direction = "right"
	Back  Direction = "back"
)

// DefaultDirections is the row order of every sprite sheet, top to bottom.
// The game's sprite manager reads sheets in this order.
var DefaultDirections = []Direction{Front, Left, Right, Back}

func (d Direction) valid() bool {
	switch d {
	case Front, Left, Right, Back:
		return true
	}
	return false
}

type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Kind describes an animated subject kind such as characters or animals.
type Kind struct {
	// File name prefix, e.g. "char" for char_blue_front_0.png.
	Prefix string `yaml:"prefix"`
	// Canonical frame size. Every frame of this kind is normalized to it
	// and every sheet slot has exactly this size.
	Size Size `yaml:"size"`
	// Number of animation frames per direction (sheet columns).
	Frames   int      `yaml:"frames"`
	Subjects []string `yaml:"subjects"`
	// Pixelation factor in (0,1]. 0.5 turns a 48x64 frame into a 24x32 grid.
	PixelFactor float64 `yaml:"pixelFactor"`
	// Smooth selects Lanczos instead of nearest neighbor when normalizing.
	Smooth bool `yaml:"smooth"`
}

// Building is a single-image subject with its own target size.
type Building struct {
	Name string `yaml:"name"`
	Size Size   `yaml:"size"`
}

type RecolorTarget struct {
	Name string `yaml:"name"`
	// Target hue in degrees.
	Hue float64 `yaml:"hue"`
	// Saturation and value multipliers; results are clamped to [0,1].
	SatScale float64 `yaml:"satScale"`
	ValScale float64 `yaml:"valScale"`
}

type RecolorConfig struct {
	// Kind prefix of the subjects to recolor.
	Kind string `yaml:"kind"`
	// Source variant, the subject with the cleanest extraction.
	Source string  `yaml:"source"`
	Band   HueBand `yaml:"band"`
	// Pixels at or below this saturation are left alone (skin, outlines).
	MinSaturation float64 `yaml:"minSaturation"`
	// Pixels with lower alpha count as transparent.
	MinAlpha uint8 `yaml:"minAlpha"`
	// Source frames with fewer visible pixels are treated as failed
	// extractions and skipped.
	MinOpaquePixels int             `yaml:"minOpaquePixels"`
	Targets         []RecolorTarget `yaml:"targets"`
	RebuildSheets   bool            `yaml:"rebuildSheets"`
}

type PixelateConfig struct {
	// Palette size after quantization, 0 disables quantization.
	MaxColors int `yaml:"maxColors"`
	// Palette extraction method, "kmeans" or "dominantcolor".
	Method              string  `yaml:"method"`
	BuildingPixelFactor float64 `yaml:"buildingPixelFactor"`
}

type StripperConfig struct {
	// External command, empty means sources are already cutouts.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Config carries everything the batch steps need. Each step receives it
// explicitly.
type Config struct {
	Dir        string      `yaml:"dir"`
	BackupDir  string      `yaml:"backupDir"`
	Directions []Direction `yaml:"directions"`
	Characters Kind        `yaml:"characters"`
	Animals    Kind        `yaml:"animals"`
	Buildings  []Building  `yaml:"buildings"`
	// Write a JSON frame index next to every sheet.
	SheetIndex bool           `yaml:"sheetIndex"`
	Recolor    RecolorConfig  `yaml:"recolor"`
	Pixelate   PixelateConfig `yaml:"pixelate"`
	Stripper   StripperConfig `yaml:"stripper"`
}

func DefaultConfig() Config {
	return Config{
		Dir:        ".",
		BackupDir:  "originals_backup",
		Directions: slices.Clone(DefaultDirections),
		Characters: Kind{
			Prefix:      "char",
			Size:        Size{48, 64},
			Frames:      3,
			Subjects:    []string{"blue", "red", "green", "purple", "orange", "teal", "pink", "yellow"},
			PixelFactor: 0.5,
		},
		Animals: Kind{
			Prefix:      "animal",
			Size:        Size{48, 48},
			Frames:      2,
			Subjects:    []string{"chicken", "cow", "pig", "sheep", "cat", "dog"},
			PixelFactor: 0.5,
		},
		Buildings: []Building{
			{"building_well", Size{96, 96}},
			{"building_barn", Size{192, 160}},
			{"building_windmill", Size{160, 192}},
			{"building_market", Size{192, 128}},
			{"building_clock", Size{96, 192}},
			{"building_townhall", Size{192, 160}},
			{"building_statue", Size{96, 128}},
		},
		Recolor: RecolorConfig{
			Kind:            "char",
			Source:          "blue",
			Band:            HueBand{Min: 170, Max: 260},
			MinSaturation:   0.15,
			MinAlpha:        10,
			MinOpaquePixels: 32,
			Targets: []RecolorTarget{
				{Name: "red", Hue: 12, SatScale: 1.1, ValScale: 0.95},
				{Name: "orange", Hue: 30, SatScale: 1.15, ValScale: 1.05},
			},
			RebuildSheets: true,
		},
		Pixelate: PixelateConfig{
			MaxColors:           32,
			Method:              "kmeans",
			BuildingPixelFactor: 0.5,
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.UnmarshalStrict(data, &cfg)
	if err != nil {
		return cfg, Wrap(err, "parse config %q", path)
	}
	return cfg, cfg.Validate()
}

// Kinds returns the animated kinds in processing order.
func (c Config) Kinds() []Kind {
	return []Kind{c.Characters, c.Animals}
}

// Kind looks up an animated kind by its prefix.
func (c Config) Kind(prefix string) (Kind, bool) {
	for _, k := range c.Kinds() {
		if k.Prefix == prefix {
			return k, true
		}
	}
	return Kind{}, false
}

func (c Config) Validate() error {
	if c.Dir == "" {
		return NewValidationError("sprite directory is empty")
	}
	if len(c.Directions) == 0 {
		return NewValidationError("no directions configured")
	}
	seen := make(map[Direction]bool)
	for _, d := range c.Directions {
		if !d.valid() {
			return NewValidationError("unknown direction %q", d)
		}
		if seen[d] {
			return NewValidationError("duplicate direction %q", d)
		}
		seen[d] = true
	}

	for _, k := range c.Kinds() {
		if k.Prefix == "" {
			return NewValidationError("kind without prefix")
		}
		if err := k.Size.validate(k.Prefix); err != nil {
			return err
		}
		if k.Frames <= 0 {
			return NewValidationError("%v: frames must be positive, got %v", k.Prefix, k.Frames)
		}
		if len(k.Subjects) == 0 {
			return NewValidationError("%v: no subjects", k.Prefix)
		}
		if !validFactor(k.PixelFactor) {
			return NewValidationError("%v: pixel factor %v not in (0,1]", k.Prefix, k.PixelFactor)
		}
	}

	buildings := make(map[string]bool)
	for _, b := range c.Buildings {
		if b.Name == "" {
			return NewValidationError("building without name")
		}
		if buildings[b.Name] {
			return NewValidationError("duplicate building %q", b.Name)
		}
		buildings[b.Name] = true
		if err := b.Size.validate(b.Name); err != nil {
			return err
		}
	}

	if !validFactor(c.Pixelate.BuildingPixelFactor) {
		return NewValidationError("building pixel factor %v not in (0,1]", c.Pixelate.BuildingPixelFactor)
	}
	if _, err := utils.ParsePaletteMethod(c.Pixelate.Method); err != nil {
		return NewValidationError("pixelate: %v", err)
	}

	r := c.Recolor
	if _, ok := c.Kind(r.Kind); !ok {
		return NewValidationError("recolor: unknown kind %q", r.Kind)
	}
	if r.Source == "" {
		return NewValidationError("recolor: no source variant")
	}
	if !validHue(r.Band.Min) || !validHue(r.Band.Max) {
		return NewValidationError("recolor: hue band %v..%v not in [0,360]", r.Band.Min, r.Band.Max)
	}
	if r.MinSaturation < 0 || r.MinSaturation > 1 {
		return NewValidationError("recolor: min saturation %v not in [0,1]", r.MinSaturation)
	}
	targets := make(map[string]bool)
	for _, t := range r.Targets {
		if t.Name == "" || t.Name == r.Source {
			return NewValidationError("recolor: invalid target name %q", t.Name)
		}
		if targets[t.Name] {
			return NewValidationError("recolor: duplicate target %q", t.Name)
		}
		targets[t.Name] = true
		if t.SatScale < 0 || t.ValScale < 0 {
			return NewValidationError("recolor %v: negative scale", t.Name)
		}
	}
	return nil
}

func (s Size) validate(name string) error {
	if s.Width <= 0 || s.Height <= 0 {
		return NewValidationError("%v: invalid size %vx%v", name, s.Width, s.Height)
	}
	return nil
}

func validFactor(f float64) bool {
	return f > 0 && f <= 1
}

func validHue(h float64) bool {
	return h >= 0 && h <= 360
}
