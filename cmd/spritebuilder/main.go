package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"

	sb "github.com/setanarut/spritebuilder"
)

const (
	checkmark = "✓"
	crossmark = "✗"
	ellipsis  = "…"
)

type settings struct {
	configPath string
	dir        string
}

func main() {
	app := kingpin.New("spritebuilder", "Sprite asset pipeline")
	app.HelpFlag.Short('h')

	var (
		configPath = app.Flag("config", "YAML config file").Short('c').String()
		dir        = app.Flag("dir", "Sprite directory (overrides config)").Short('d').String()
		logLevel   = app.Flag("log-level", "debug, info, warning, error or none").Default("warning").String()
	)

	process := app.Command("process", "Remove backgrounds and normalize sprites in place")
	only := process.Flag("only", "Process only one kind").Enum("char", "animal", "building")

	recolor := app.Command("recolor", "Create color variants from the source variant")
	noSheets := recolor.Flag("no-sheets", "Do not rebuild sheets of the new variants").Bool()

	app.Command("pixelate", "Pixelate and quantize all sprites in place")

	sheets := app.Command("sheets", "Assemble sprite sheets")
	index := sheets.Flag("index", "Also write a JSON frame index per sheet").Bool()

	compare := app.Command("compare", "Show frame file size statistics per variant")
	variants := compare.Arg("variant", "Variants to compare (default: source and targets)").Strings()

	palette := app.Command("palette", "Write the quantization palette of an image as swatches")
	var (
		paletteSrc    = palette.Arg("file", "Source image").Required().String()
		paletteColors = palette.Flag("colors", "Palette size (default from config)").Int()
		paletteMethod = palette.Flag("method", "kmeans or dominantcolor (default from config)").String()
		paletteOut    = palette.Flag("out", "Output file").Short('o').Default("palette.png").String()
	)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	err := sb.SetLogLevel(*logLevel)
	if err != nil {
		fail(err)
	}

	cfg, err := loadConfig(settings{configPath: *configPath, dir: *dir})
	if err != nil {
		fail(err)
	}

	switch command {
	case "process":
		err = doProcess(cfg, *only)
	case "recolor":
		if *noSheets {
			cfg.Recolor.RebuildSheets = false
		}
		err = doRecolor(cfg)
	case "pixelate":
		err = doPixelate(cfg)
	case "sheets":
		cfg.SheetIndex = cfg.SheetIndex || *index
		err = doSheets(cfg)
	case "compare":
		err = doCompare(cfg, *variants)
	case "palette":
		err = doPalette(cfg, *paletteSrc, *paletteColors, *paletteMethod, *paletteOut)
	default:
		err = fmt.Errorf("unknown command: %q", command)
	}

	if err != nil {
		fail(err)
	}
	os.Exit(0)
}

func fail(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}

func loadConfig(s settings) (sb.Config, error) {
	cfg := sb.DefaultConfig()
	var err error
	if s.configPath != "" {
		cfg, err = sb.LoadConfig(s.configPath)
		if err != nil {
			return cfg, err
		}
	}
	if s.dir != "" {
		cfg.Dir = s.dir
	}

	fi, err := os.Stat(cfg.Dir)
	if err != nil {
		return cfg, err
	}
	if !fi.IsDir() {
		return cfg, fmt.Errorf("%q is not a directory", cfg.Dir)
	}
	return cfg, cfg.Validate()
}

func banner(title string) {
	line := strings.Repeat("=", 50)
	fmt.Println(line)
	fmt.Printf("  %v\n", title)
	fmt.Println(line)
	fmt.Println()
}

func section(title string) {
	fmt.Printf("=== %v ===\n\n", title)
}

// printItem writes one progress line for a batch item.
func printItem(it sb.Item) {
	mark := checkmark
	switch it.Status {
	case sb.StatusOK:
	case sb.StatusSkipped, sb.StatusEmpty, sb.StatusRejected:
		mark = ellipsis
	default:
		mark = crossmark
	}

	backup := ""
	if it.NewBackup {
		backup = " (backup written)"
	}
	if it.Err != nil && it.Status != sb.StatusSkipped {
		fmt.Printf("  %v [%v] %v%v: %v\n", mark, it.Status, it.Name, backup, it.Err)
		return
	}
	fmt.Printf("  %v [%v] %v%v\n", mark, it.Status, it.Name, backup)
}
