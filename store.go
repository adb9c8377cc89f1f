package spritebuilder

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/setanarut/spritebuilder/internal/logging"
	"github.com/setanarut/spritebuilder/utils"
)

const (
	pngExt      = ".png"
	sheetSuffix = "_sheet"
	backupTag   = "_original"
)

// FrameID identifies one animation frame,
// stored as <kind>_<subject>_<direction>_<index>.png.
type FrameID struct {
	Kind      string
	Subject   string
	Direction Direction
	Index     int
}

func (f FrameID) Name() string {
	return fmt.Sprintf("%v_%v_%v_%d%v", f.Kind, f.Subject, f.Direction, f.Index, pngExt)
}

// ParseFrameName parses a frame file name (with or without directory).
// Subjects may contain underscores; kind, direction and index may not.
func ParseFrameName(name string) (FrameID, error) {
	base := filepath.Base(name)
	if filepath.Ext(base) != pngExt {
		return FrameID{}, fmt.Errorf("not a png file: %q", name)
	}
	parts := strings.Split(strings.TrimSuffix(base, pngExt), "_")
	if len(parts) < 4 {
		return FrameID{}, fmt.Errorf("not a frame name: %q", name)
	}
	n := len(parts)
	idx, err := strconv.Atoi(parts[n-1])
	if err != nil || idx < 0 {
		return FrameID{}, fmt.Errorf("invalid frame index in %q", name)
	}
	dir := Direction(parts[n-2])
	if !dir.valid() {
		return FrameID{}, fmt.Errorf("invalid direction in %q", name)
	}
	return FrameID{
		Kind:      parts[0],
		Subject:   strings.Join(parts[1:n-2], "_"),
		Direction: dir,
		Index:     idx,
	}, nil
}

// Store is the flat sprite directory plus its backup directory.
type Store struct {
	Dir       string
	BackupDir string
}

// NewStore creates a store for dir. A relative backupDir is resolved
// against dir.
func NewStore(dir, backupDir string) *Store {
	if backupDir == "" {
		backupDir = "originals_backup"
	}
	if !filepath.IsAbs(backupDir) {
		backupDir = filepath.Join(dir, backupDir)
	}
	return &Store{Dir: dir, BackupDir: backupDir}
}

// StoreFromConfig creates the store described by cfg.
func StoreFromConfig(cfg Config) *Store {
	return NewStore(cfg.Dir, cfg.BackupDir)
}

func (s *Store) FramePath(id FrameID) string {
	return filepath.Join(s.Dir, id.Name())
}

// SheetPath returns the path of the assembled sheet for a subject.
func (s *Store) SheetPath(kind, subject string) string {
	return filepath.Join(s.Dir, kind+"_"+subject+sheetSuffix+pngExt)
}

// SheetIndexPath returns the path of the JSON frame index for a subject.
func (s *Store) SheetIndexPath(kind, subject string) string {
	return filepath.Join(s.Dir, kind+"_"+subject+sheetSuffix+".json")
}

// ImagePath returns the path of a single-image subject such as a building.
func (s *Store) ImagePath(name string) string {
	return filepath.Join(s.Dir, name+pngExt)
}

// BackupPath returns where the pristine copy of a file is kept.
func (s *Store) BackupPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(s.BackupDir, stem+backupTag+filepath.Ext(path))
}

// Exists reports whether the file at path exists.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// List returns the sorted paths of all <kind>_*.png files, sheets excluded.
func (s *Store) List(kind string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, kind+"_*"+pngExt))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		stem := strings.TrimSuffix(filepath.Base(m), pngExt)
		if strings.Contains(stem, "sheet") {
			continue
		}
		out = append(out, m)
	}
	slices.Sort(out)
	return out, nil
}

// Load reads an image. A missing file yields an error for which IsNotFound
// is true.
func (s *Store) Load(path string) (image.Image, error) {
	if !s.Exists(path) {
		return nil, NewNotFound("%v", filepath.Base(path))
	}
	img, err := utils.ReadImage(path)
	if err != nil {
		return nil, Wrap(err, "decode %v", filepath.Base(path))
	}
	return img, nil
}

// LoadFrame reads a frame by id.
func (s *Store) LoadFrame(id FrameID) (image.Image, error) {
	return s.Load(s.FramePath(id))
}

// Save writes img as PNG, replacing any existing file.
func (s *Store) Save(img image.Image, path string) error {
	logging.Debug("Write %q", path)
	err := utils.SaveImage(img, path)
	if err != nil {
		return Wrap(err, "write %v", filepath.Base(path))
	}
	return nil
}

// Backup copies path into the backup directory unless a backup already
// exists. It reports whether a new backup was written.
func (s *Store) Backup(path string) (bool, error) {
	dst := s.BackupPath(path)
	if s.Exists(dst) {
		return false, nil
	}
	err := os.MkdirAll(s.BackupDir, 0755)
	if err != nil {
		return false, err
	}
	logging.Debug("Backup %q -> %q", path, dst)
	err = copyFile(path, dst)
	if err != nil {
		return false, Wrap(err, "backup %v", filepath.Base(path))
	}
	return true, nil
}

// Restore overwrites path with its backup. It reports false when there is
// no backup.
func (s *Store) Restore(path string) (bool, error) {
	src := s.BackupPath(path)
	if !s.Exists(src) {
		return false, nil
	}
	logging.Debug("Restore %q -> %q", src, path)
	err := copyFile(src, path)
	if err != nil {
		return false, Wrap(err, "restore %v", filepath.Base(path))
	}
	return true, nil
}

// Size returns the file size in bytes.
func (s *Store) Size(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, NewNotFound("%v", filepath.Base(path))
		}
		return 0, err
	}
	return fi.Size(), nil
}

// copyFile copies src to dst through a temporary file in dst's directory.
// dst only appears once the copy is complete, so a failed copy never leaves
// a partial file behind.
func copyFile(src, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp*")
	if err != nil {
		return err
	}
	tmp := w.Name()

	err = w.Chmod(0644)
	if err == nil {
		_, err = io.Copy(w, r)
	}
	if err != nil {
		w.Close()
		os.Remove(tmp)
		return err
	}
	err = w.Close()
	if err != nil {
		os.Remove(tmp)
		return err
	}
	err = os.Rename(tmp, dst)
	if err != nil {
		os.Remove(tmp)
	}
	return err
}
