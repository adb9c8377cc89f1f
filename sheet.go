package spritebuilder

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/setanarut/spritebuilder/internal/logging"
)

// SheetLayout is the grid of a sprite sheet: one row per direction, one
// column per animation frame, every slot exactly Frame in size.
type SheetLayout struct {
	Frame      Size
	Directions []Direction
	Columns    int
}

// LayoutFor returns the sheet layout of an animated kind.
func LayoutFor(cfg Config, k Kind) SheetLayout {
	return SheetLayout{Frame: k.Size, Directions: cfg.Directions, Columns: k.Frames}
}

func (l SheetLayout) Rows() int {
	return len(l.Directions)
}

// Bounds returns the full sheet rectangle.
func (l SheetLayout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.Columns*l.Frame.Width, l.Rows()*l.Frame.Height)
}

// Slot returns the rectangle of the frame at row, col.
func (l SheetLayout) Slot(row, col int) image.Rectangle {
	x0 := col * l.Frame.Width
	y0 := row * l.Frame.Height
	return image.Rect(x0, y0, x0+l.Frame.Width, y0+l.Frame.Height)
}

// Row returns the sheet row of direction d, or -1.
func (l SheetLayout) Row(d Direction) int {
	for i, x := range l.Directions {
		if x == d {
			return i
		}
	}
	return -1
}

// FrameAt cuts the frame for direction d and column col out of an assembled
// sheet.
func (l SheetLayout) FrameAt(sheet image.Image, d Direction, col int) (*image.NRGBA, error) {
	row := l.Row(d)
	if row < 0 || col < 0 || col >= l.Columns {
		return nil, fmt.Errorf("no slot for %v/%d", d, col)
	}
	if sheet.Bounds().Size() != l.Bounds().Size() {
		return nil, fmt.Errorf("sheet is %v, layout wants %v", sheet.Bounds().Size(), l.Bounds().Size())
	}
	r := l.Slot(row, col).Add(sheet.Bounds().Min)
	return crop(sheet, r), nil
}

// Index maps "<direction>_<col>" to the slot rectangle as [x0, y0, x1, y1].
func (l SheetLayout) Index() map[string][]int {
	idx := make(map[string][]int, l.Rows()*l.Columns)
	for row, d := range l.Directions {
		for col := 0; col < l.Columns; col++ {
			s := l.Slot(row, col)
			idx[fmt.Sprintf("%v_%d", d, col)] = []int{s.Min.X, s.Min.Y, s.Max.X, s.Max.Y}
		}
	}
	return idx
}

// FrameLoader returns the frame for a slot. A not-found error marks the
// frame as missing.
type FrameLoader func(d Direction, col int) (image.Image, error)

type SheetStats struct {
	Name    string
	Size    Size
	Placed  int
	Missing int
	// Skipped is set when the subject had no frames at all.
	Skipped bool
}

// AssembleSheet pastes every available frame into its slot. Frames that do
// not have the canonical size are scaled to it first. Missing frames leave
// a transparent slot and are counted. Any other loader error aborts.
func AssembleSheet(l SheetLayout, load FrameLoader) (*image.NRGBA, SheetStats, error) {
	sheet := image.NewNRGBA(l.Bounds())
	st := SheetStats{Size: Size{sheet.Rect.Dx(), sheet.Rect.Dy()}}

	for row, d := range l.Directions {
		for col := 0; col < l.Columns; col++ {
			frame, err := load(d, col)
			if err != nil {
				if IsNotFound(err) {
					st.Missing++
					continue
				}
				return nil, st, Wrap(err, "frame %v/%d", d, col)
			}

			src := crop(frame, frame.Bounds())
			if src.Rect.Dx() != l.Frame.Width || src.Rect.Dy() != l.Frame.Height {
				logging.Debug("Resize frame %v/%d from %vx%v", d, col, src.Rect.Dx(), src.Rect.Dy())
				src = Resize(src, l.Frame.Width, l.Frame.Height, FilterNearest)
			}
			paste(sheet, l.Slot(row, col).Min, src)
			st.Placed++
		}
	}
	return sheet, st, nil
}

// SheetBuilder assembles and writes the sheets of animated subjects.
type SheetBuilder struct {
	Config Config
	Store  *Store
}

func NewSheetBuilder(cfg Config, store *Store) *SheetBuilder {
	return &SheetBuilder{Config: cfg, Store: store}
}

// Build writes the sheet of one subject. A subject whose first frame is
// absent is skipped, nothing is written.
func (b *SheetBuilder) Build(k Kind, subject string) (SheetStats, error) {
	l := LayoutFor(b.Config, k)
	name := filepath.Base(b.Store.SheetPath(k.Prefix, subject))
	if l.Rows() == 0 || l.Columns <= 0 {
		return SheetStats{Name: name}, NewValidationError("%v: empty sheet layout", name)
	}

	first := FrameID{Kind: k.Prefix, Subject: subject, Direction: l.Directions[0], Index: 0}
	if !b.Store.Exists(b.Store.FramePath(first)) {
		logging.Info("No frames for %v_%v", k.Prefix, subject)
		return SheetStats{Name: name, Skipped: true}, nil
	}

	sheet, st, err := AssembleSheet(l, func(d Direction, col int) (image.Image, error) {
		return b.Store.LoadFrame(FrameID{Kind: k.Prefix, Subject: subject, Direction: d, Index: col})
	})
	st.Name = name
	if err != nil {
		return st, err
	}

	err = b.Store.Save(sheet, b.Store.SheetPath(k.Prefix, subject))
	if err != nil {
		return st, err
	}
	if b.Config.SheetIndex {
		err = writeIndex(b.Store.SheetIndexPath(k.Prefix, subject), l.Index())
	}
	return st, err
}

// Run builds the sheets of every subject of k. Failing subjects are logged
// and reported with their error; the others are still built.
func (b *SheetBuilder) Run(k Kind) ([]SheetStats, []error) {
	var stats []SheetStats
	var errs []error
	for _, subject := range k.Subjects {
		st, err := b.Build(k, subject)
		if err != nil {
			logging.Error("Sheet %v_%v: %v", k.Prefix, subject, err)
			errs = append(errs, Wrap(err, "%v_%v", k.Prefix, subject))
			continue
		}
		stats = append(stats, st)
	}
	return stats, errs
}

// paste copies src into dst at p, replacing dst pixels. Rows are copied
// directly so straight alpha values survive unchanged.
func paste(dst *image.NRGBA, p image.Point, src *image.NRGBA) {
	r := image.Rectangle{Min: p, Max: p.Add(src.Rect.Size())}.Intersect(dst.Rect)
	row := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		d := dst.PixOffset(r.Min.X, y)
		s := src.PixOffset(src.Rect.Min.X+r.Min.X-p.X, src.Rect.Min.Y+y-p.Y)
		copy(dst.Pix[d:d+row], src.Pix[s:s+row])
	}
}

func writeIndex(path string, idx map[string][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	err = enc.Encode(idx)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
