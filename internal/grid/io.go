package grid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WriteTo writes one "x<TAB>value" line per DoF in index order, x = i*Dx.
func (f *Field[T]) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	bits := bitSize[T]()
	var n int64
	for i, v := range f.data {
		line := strconv.FormatFloat(float64(f.disc.X(i)), 'g', -1, bits) + "\t" +
			strconv.FormatFloat(float64(v), 'g', -1, bits) + "\n"
		m, err := bw.WriteString(line)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// ToFile writes the field to path, truncating any existing file.
func (f *Field[T]) ToFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.WriteTo(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// ReadColumns parses the two-column text produced by WriteTo.
// Blank lines are skipped.
func ReadColumns(r io.Reader) (xs, values []float64, err error) {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		cols := strings.Fields(text)
		if len(cols) != 2 {
			return nil, nil, fmt.Errorf("grid: line %d: expected 2 columns, got %d", line, len(cols))
		}
		x, err := strconv.ParseFloat(cols[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid: line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(cols[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid: line %d: %w", line, err)
		}
		xs = append(xs, x)
		values = append(values, v)
	}
	return xs, values, sc.Err()
}

func bitSize[T Float]() int {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return 32
	}
	return 64
}
