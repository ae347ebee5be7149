package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/swesim/internal/grid"
)

const (
	DefaultPlotHeight = 15
	DefaultPlotWidth  = 72
)

// Profile plots values against their index with asciigraph. A zero height or
// width selects the default.
func Profile(values []float64, height, width int, caption string) string {
	if len(values) == 0 {
		return ""
	}
	if height <= 0 {
		height = DefaultPlotHeight
	}
	if width <= 0 {
		width = DefaultPlotWidth
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.Caption(caption),
	)
}

// FieldValues converts a field to float64 for plotting.
func FieldValues[T grid.Float](f *grid.Field[T]) []float64 {
	out := make([]float64, f.Len())
	for i, v := range f.Data() {
		out[i] = float64(v)
	}
	return out
}
