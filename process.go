package spritebuilder

import (
	"bytes"
	"context"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/setanarut/spritebuilder/internal/logging"
)

// Processor strips and normalizes source images in place.
type Processor struct {
	Config   Config
	Store    *Store
	Stripper Stripper
	Progress func(Item)
}

func NewProcessor(cfg Config) *Processor {
	return &Processor{
		Config:   cfg,
		Store:    StoreFromConfig(cfg),
		Stripper: NewStripper(cfg.Stripper),
	}
}

// ProcessKind normalizes every <prefix>_*.png of an animated kind to the
// kind's canonical size. Sheets are left alone.
func (p *Processor) ProcessKind(ctx context.Context, k Kind) (*Report, error) {
	files, err := p.Store.List(k.Prefix)
	if err != nil {
		return nil, err
	}

	f := FilterNearest
	if k.Smooth {
		f = FilterSmooth
	}

	r := &Report{Progress: p.Progress}
	for _, path := range files {
		it := Item{Name: filepath.Base(path)}
		it.NewBackup, err = p.Store.Backup(path)
		if err != nil {
			logging.Error("Backup %v failed: %v", it.Name, err)
			it.Status, it.Err = StatusError, err
			r.add(it)
			continue
		}
		it.Err = p.processFile(ctx, path, k.Size, f)
		it.Status = statusOf(it.Err)
		r.add(it)
	}
	logging.Info("Processed %d of %d %v sprites", r.Count(StatusOK), len(files), k.Prefix)
	return r, nil
}

// ProcessBuildings normalizes every configured building with the smooth
// filter. A building is always reprocessed from its pristine backup when
// one exists.
func (p *Processor) ProcessBuildings(ctx context.Context) *Report {
	r := &Report{Progress: p.Progress}
	for _, b := range p.Config.Buildings {
		path := p.Store.ImagePath(b.Name)
		it := Item{Name: filepath.Base(path)}
		if !p.Store.Exists(path) {
			it.Err = NewNotFound("%v", it.Name)
			it.Status = StatusSkipped
			r.add(it)
			continue
		}

		restored, err := p.Store.Restore(path)
		if err == nil && !restored {
			it.NewBackup, err = p.Store.Backup(path)
		}
		if err != nil {
			it.Status, it.Err = StatusError, err
			r.add(it)
			continue
		}

		it.Err = p.processFile(ctx, path, b.Size, FilterSmooth)
		it.Status = statusOf(it.Err)
		r.add(it)
	}
	return r
}

// processFile runs strip + normalize on one file and overwrites it.
func (p *Processor) processFile(ctx context.Context, path string, size Size, f Filter) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cut, err := p.Stripper.Strip(ctx, src)
	if err != nil {
		return Wrap(err, "strip background")
	}
	img, _, err := image.Decode(bytes.NewReader(cut))
	if err != nil {
		return Wrap(err, "decode cutout")
	}

	out, err := Normalize(img, size, f)
	if err != nil {
		logging.Debug("Skip %v: %v", filepath.Base(path), err)
		return err
	}
	logging.Debug("Normalized %v to %vx%v (%v)", filepath.Base(path), size.Width, size.Height, f)
	return p.Store.Save(out, path)
}
