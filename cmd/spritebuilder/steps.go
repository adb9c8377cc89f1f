package main

import (
	"context"
	"fmt"

	sb "github.com/setanarut/spritebuilder"
	"github.com/setanarut/spritebuilder/utils"
)

func doProcess(cfg sb.Config, only string) error {
	banner("Sprite processor: background removal + resize")
	p := sb.NewProcessor(cfg)
	p.Progress = printItem
	ctx := context.Background()

	if only == "" || only == "building" {
		section("Processing buildings")
		r := p.ProcessBuildings(ctx)
		fmt.Printf("\n  Processed %d of %d buildings.\n\n", r.Count(sb.StatusOK), len(r.Items))
	}

	for _, k := range cfg.Kinds() {
		if only != "" && only != k.Prefix {
			continue
		}
		section(fmt.Sprintf("Processing %v sprites", k.Prefix))
		r, err := p.ProcessKind(ctx, k)
		if err != nil {
			return err
		}
		fmt.Printf("\n  Processed %d %v sprites, %d empty, %d failed.\n\n",
			r.Count(sb.StatusOK), k.Prefix, r.Count(sb.StatusEmpty), r.Count(sb.StatusError))
	}
	return nil
}

func doRecolor(cfg sb.Config) error {
	rc := cfg.Recolor
	banner(fmt.Sprintf("Sprite recoloring: %v -> %v", rc.Source, targetNames(rc)))
	store := sb.StoreFromConfig(cfg)

	err := doCompare(cfg, nil)
	if err != nil {
		return err
	}

	res, err := sb.RecolorVariants(cfg, store, printItem)
	if err != nil {
		return err
	}
	for _, t := range rc.Targets {
		r := res.Targets[t.Name]
		fmt.Printf("\n  %v: recolored %d frames, skipped %d\n\n", t.Name,
			r.Count(sb.StatusOK), len(r.Items)-r.Count(sb.StatusOK))
	}
	for _, st := range res.Sheets {
		printSheet(st)
	}
	fmt.Println()

	return doCompare(cfg, nil)
}

func doPixelate(cfg sb.Config) error {
	banner("Sprite pixelation")
	p := sb.NewPixelizer(cfg, sb.StoreFromConfig(cfg))
	p.Progress = printItem

	for _, k := range cfg.Kinds() {
		section(fmt.Sprintf("Pixelating %v sprites", k.Prefix))
		r := p.RunKind(k)
		fmt.Printf("\n  Pixelated %d %v frames.\n\n", r.Count(sb.StatusOK), k.Prefix)
	}

	section("Pixelating buildings")
	r := p.RunBuildings()
	fmt.Printf("\n  Pixelated %d buildings.\n\n", r.Count(sb.StatusOK))
	fmt.Println("Run 'spritebuilder sheets' next to rebuild sheets.")
	return nil
}

func doSheets(cfg sb.Config) error {
	banner("Sprite sheet builder")
	b := sb.NewSheetBuilder(cfg, sb.StoreFromConfig(cfg))

	failed := 0
	for _, k := range cfg.Kinds() {
		section(fmt.Sprintf("Building %v sheets", k.Prefix))
		stats, errs := b.Run(k)
		for _, st := range stats {
			printSheet(st)
		}
		for _, err := range errs {
			fmt.Printf("  %v %v\n", crossmark, err)
		}
		failed += len(errs)
		fmt.Println()
	}
	if failed > 0 {
		fmt.Printf("%d sheets failed.\n", failed)
	}
	return nil
}

func printSheet(st sb.SheetStats) {
	if st.Skipped {
		fmt.Printf("  %v [SKIP] %v: no frames found\n", ellipsis, st.Name)
		return
	}
	status := "OK"
	if st.Missing > 0 {
		status = fmt.Sprintf("(%d missing)", st.Missing)
	}
	fmt.Printf("  %v [DONE] %v  %vx%v  %v\n", checkmark, st.Name, st.Size.Width, st.Size.Height, status)
}

func doCompare(cfg sb.Config, variants []string) error {
	rc := cfg.Recolor
	k, ok := cfg.Kind(rc.Kind)
	if !ok {
		return fmt.Errorf("unknown kind %q", rc.Kind)
	}
	if len(variants) == 0 {
		variants = append(variants, rc.Source)
		for _, t := range rc.Targets {
			variants = append(variants, t.Name)
		}
	}

	section("File size comparison")
	stats := sb.CompareSizes(cfg, sb.StoreFromConfig(cfg), k, variants)
	if len(stats) == 0 {
		fmt.Println("  no frames found")
	}
	for _, st := range stats {
		fmt.Printf("  %-8s: avg=%.0fB, min=%.0fB, max=%.0fB, sd=%.0fB (%d frames)\n",
			st.Variant, st.Mean, st.Min, st.Max, st.StdDev, st.Frames)
	}
	fmt.Println()
	return nil
}

func doPalette(cfg sb.Config, src string, colors int, method, out string) error {
	if colors <= 0 {
		colors = cfg.Pixelate.MaxColors
	}
	if method == "" {
		method = cfg.Pixelate.Method
	}
	m, err := utils.ParsePaletteMethod(method)
	if err != nil {
		return err
	}

	img, err := utils.ReadImage(src)
	if err != nil {
		return err
	}
	p := utils.ExtractPalette(img, colors, m)
	utils.SortPaletteByBrightness(p)

	err = utils.SavePalette(p, 32, out)
	if err != nil {
		return err
	}
	fmt.Printf("%v %d color %v palette of %q saved as %q\n", checkmark, len(p), m, src, out)
	return nil
}

func targetNames(rc sb.RecolorConfig) string {
	s := ""
	for i, t := range rc.Targets {
		if i > 0 {
			s += "/"
		}
		s += t.Name
	}
	return s
}
