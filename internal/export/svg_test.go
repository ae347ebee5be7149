package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProfile(t *testing.T) {
	var buf bytes.Buffer
	err := WriteProfile(&buf, 200, 100,
		Series{Name: "h", Color: "#ff0000", X: []float64{0, 1, 2}, Y: []float64{0, 1, 0}},
		Series{Name: "b", X: []float64{0, 1, 2}, Y: []float64{-1, -1, -1}},
	)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
	assert.Equal(t, 2, strings.Count(out, "<path"))
	assert.Contains(t, out, `stroke="#ff0000"`)
	assert.Contains(t, out, `stroke="#00ff00"`)
	assert.Contains(t, out, ">h</text>")
	assert.Equal(t, 4, strings.Count(out, " L"))
}

func TestWriteProfileScalesToViewBox(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProfile(&buf, 100, 100, Series{X: []float64{0, 1}, Y: []float64{0, 1}}))

	// x padded by 5% of the range, y by 10%
	assert.Contains(t, buf.String(), `d="M4.5,91.7 L95.5,8.3"`)
}

func TestWriteProfileRejectsShortSeries(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteProfile(&buf, 10, 10), ErrNoData)
	assert.ErrorIs(t, WriteProfile(&buf, 10, 10, Series{X: []float64{0}, Y: []float64{1}}), ErrNoData)
	assert.ErrorIs(t, WriteProfile(&buf, 10, 10, Series{X: []float64{0, 1}, Y: []float64{1}}), ErrNoData)
	assert.Zero(t, buf.Len())
}
