// Package export renders stored field profiles to SVG.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

var ErrNoData = errors.New("export: series needs at least two points")

// Series is one polyline of a profile plot.
type Series struct {
	Name  string
	Color string
	X, Y  []float64
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func seriesBounds(series []Series) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, s := range series {
		for i := range s.X {
			b.minX = math.Min(b.minX, s.X[i])
			b.maxX = math.Max(b.maxX, s.X[i])
			b.minY = math.Min(b.minY, s.Y[i])
			b.maxY = math.Max(b.maxY, s.Y[i])
		}
	}

	// Add padding
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.05
	b.maxX += rangeX * 0.05
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

// WriteProfile draws every series on shared axes.
func WriteProfile(w io.Writer, width, height int, series ...Series) error {
	if len(series) == 0 {
		return ErrNoData
	}
	for _, s := range series {
		if len(s.X) < 2 || len(s.X) != len(s.Y) {
			return fmt.Errorf("%w: %s has %d x and %d y values", ErrNoData, s.Name, len(s.X), len(s.Y))
		}
	}

	b := seriesBounds(series)
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for n, s := range series {
		color := s.Color
		if color == "" {
			color = "#00ff00"
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i := range s.X {
			x := (s.X[i] - b.minX) / rangeX * float64(width)
			y := float64(height) - (s.Y[i]-b.minY)/rangeY*float64(height)

			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
		if s.Name != "" {
			sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(n+1), color, s.Name))
		}
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
