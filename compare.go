package spritebuilder

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SizeStats summarizes the frame file sizes of one variant in bytes.
type SizeStats struct {
	Variant string
	Frames  int
	Mean    float64
	Min     float64
	Max     float64
	StdDev  float64
}

// CompareSizes collects file size statistics for each variant of kind k.
// Variants without any frame files are left out.
//
// A healthy recolored variant has roughly the size profile of its source;
// a variant whose mean is far below it points at failed extractions.
func CompareSizes(cfg Config, store *Store, k Kind, variants []string) []SizeStats {
	var out []SizeStats
	for _, v := range variants {
		var sizes []float64
		for _, d := range cfg.Directions {
			for i := 0; i < k.Frames; i++ {
				n, err := store.Size(store.FramePath(FrameID{Kind: k.Prefix, Subject: v, Direction: d, Index: i}))
				if err != nil {
					continue
				}
				sizes = append(sizes, float64(n))
			}
		}
		if len(sizes) == 0 {
			continue
		}
		st := SizeStats{
			Variant: v,
			Frames:  len(sizes),
			Mean:    stat.Mean(sizes, nil),
			Min:     floats.Min(sizes),
			Max:     floats.Max(sizes),
		}
		if len(sizes) > 1 {
			st.StdDev = stat.StdDev(sizes, nil)
		}
		out = append(out, st)
	}
	return out
}
