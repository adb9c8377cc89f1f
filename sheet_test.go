package spritebuilder

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func charLayout() SheetLayout {
	return SheetLayout{Frame: Size{48, 64}, Directions: DefaultDirections, Columns: 3}
}

// distinctFrame returns a frame that differs from every other row/col
// combination, including one translucent pixel.
func distinctFrame(row, col int) *image.NRGBA {
	img := pattern(48, 64, uint8(10+row*3+col))
	img.SetNRGBA(row, col, color.NRGBA{R: 9, G: 99, B: 199, A: 77})
	return img
}

func TestSheetLayout(t *testing.T) {
	l := charLayout()
	assert.Equal(t, 4, l.Rows())
	assert.Equal(t, image.Rect(0, 0, 144, 256), l.Bounds())
	assert.Equal(t, image.Rect(96, 64, 144, 128), l.Slot(1, 2))
	assert.Equal(t, 3, l.Row(Back))
	assert.Equal(t, -1, SheetLayout{Directions: []Direction{Front}}.Row(Back))

	idx := l.Index()
	assert.Len(t, idx, 12)
	assert.Equal(t, []int{96, 64, 144, 128}, idx["left_2"])
	assert.Equal(t, []int{0, 0, 48, 64}, idx["front_0"])
}

func TestAssembleSheet(t *testing.T) {
	l := charLayout()
	sheet, st, err := AssembleSheet(l, func(d Direction, col int) (image.Image, error) {
		return distinctFrame(l.Row(d), col), nil
	})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 144, 256), sheet.Bounds())
	assert.Equal(t, Size{144, 256}, st.Size)
	assert.Equal(t, 12, st.Placed)
	assert.Zero(t, st.Missing)

	for row, d := range l.Directions {
		for col := 0; col < l.Columns; col++ {
			got, err := l.FrameAt(sheet, d, col)
			require.NoError(t, err)
			samePixels(t, distinctFrame(row, col), got)
		}
	}
}

func TestAssembleSheetMissingFrames(t *testing.T) {
	l := charLayout()
	missing := map[[2]int]bool{{0, 2}: true, {3, 1}: true}
	sheet, st, err := AssembleSheet(l, func(d Direction, col int) (image.Image, error) {
		if missing[[2]int{l.Row(d), col}] {
			return nil, NewNotFound("%v_%d", d, col)
		}
		return distinctFrame(l.Row(d), col), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, st.Missing)
	assert.Equal(t, 10, st.Placed)

	for slot := range missing {
		r := l.Slot(slot[0], slot[1])
		assert.True(t, OpaqueBounds(sheet.SubImage(r)).Empty(), "slot %v", slot)
	}
	got, err := l.FrameAt(sheet, Back, 2)
	require.NoError(t, err)
	samePixels(t, distinctFrame(3, 2), got)
}

func TestAssembleSheetResizesFrames(t *testing.T) {
	l := charLayout()
	small := block(24, 32, image.Rect(0, 0, 24, 16), opaqueRed)
	sheet, st, err := AssembleSheet(l, func(d Direction, col int) (image.Image, error) {
		if d == Right && col == 1 {
			return small, nil
		}
		return nil, NewNotFound("frame")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Placed)

	got, err := l.FrameAt(sheet, Right, 1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 48, 32), OpaqueBounds(got))
}

func TestAssembleSheetLoaderError(t *testing.T) {
	boom := errors.New("boom")
	sheet, _, err := AssembleSheet(charLayout(), func(Direction, int) (image.Image, error) {
		return nil, boom
	})
	assert.Nil(t, sheet)
	assert.ErrorIs(t, err, boom)
}

func TestSheetLayoutFrameErrors(t *testing.T) {
	l := charLayout()
	sheet := image.NewNRGBA(l.Bounds())
	_, err := l.FrameAt(sheet, Front, 3)
	assert.Error(t, err)
	_, err = l.FrameAt(image.NewNRGBA(image.Rect(0, 0, 10, 10)), Front, 0)
	assert.Error(t, err)
}

func TestSheetBuilder(t *testing.T) {
	cfg := testConfig(t)
	cfg.SheetIndex = true
	store := StoreFromConfig(cfg)
	k := cfg.Characters

	for row, d := range cfg.Directions {
		for col := 0; col < k.Frames; col++ {
			id := FrameID{Kind: k.Prefix, Subject: "blue", Direction: d, Index: col}
			writePNG(t, distinctFrame(row, col), store.FramePath(id))
		}
	}

	b := NewSheetBuilder(cfg, store)
	st, err := b.Build(k, "blue")
	require.NoError(t, err)
	assert.Equal(t, "char_blue_sheet.png", st.Name)
	assert.False(t, st.Skipped)
	assert.Equal(t, 12, st.Placed)

	sheet := readPNG(t, store.SheetPath("char", "blue"))
	assert.Equal(t, image.Rect(0, 0, 144, 256), sheet.Bounds())
	l := LayoutFor(cfg, k)
	for row, d := range cfg.Directions {
		for col := 0; col < k.Frames; col++ {
			got, err := l.FrameAt(sheet, d, col)
			require.NoError(t, err)
			samePixels(t, distinctFrame(row, col), got)
		}
	}

	data, err := os.ReadFile(store.SheetIndexPath("char", "blue"))
	require.NoError(t, err)
	var idx map[string][]int
	require.NoError(t, json.Unmarshal(data, &idx))
	assert.Equal(t, l.Index(), idx)
}

func TestSheetBuilderRun(t *testing.T) {
	cfg := testConfig(t)
	store := StoreFromConfig(cfg)
	k := cfg.Characters

	writePNG(t, distinctFrame(0, 0), store.FramePath(FrameID{Kind: "char", Subject: "blue", Direction: Front, Index: 0}))
	bad := store.FramePath(FrameID{Kind: "char", Subject: "orange", Direction: Front, Index: 0})
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0644))

	stats, errs := NewSheetBuilder(cfg, store).Run(k)
	require.Len(t, errs, 1)
	require.Len(t, stats, 2)

	assert.Equal(t, "char_blue_sheet.png", stats[0].Name)
	assert.Equal(t, 1, stats[0].Placed)
	assert.Equal(t, 11, stats[0].Missing)
	assert.True(t, store.Exists(store.SheetPath("char", "blue")))

	// no frames for red: skipped, nothing written
	assert.True(t, stats[1].Skipped)
	assert.False(t, store.Exists(store.SheetPath("char", "red")))
	assert.False(t, store.Exists(store.SheetIndexPath("char", "blue")))
}

func TestSheetBuilderEmptyLayout(t *testing.T) {
	cfg := testConfig(t)
	cfg.Directions = nil
	st, err := NewSheetBuilder(cfg, StoreFromConfig(cfg)).Build(cfg.Characters, "blue")
	assert.Error(t, err)
	assert.Equal(t, "char_blue_sheet.png", st.Name)
}

func TestWriteIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "char_blue_sheet.json")
	idx := charLayout().Index()
	require.NoError(t, writeIndex(path, idx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string][]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, idx, got)

	assert.Error(t, writeIndex(filepath.Join(dir, "missing", "x.json"), idx))
}
