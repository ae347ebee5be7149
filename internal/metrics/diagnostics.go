package metrics

import (
	"fmt"
	"io"

	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/physics"
	"github.com/san-kum/swesim/internal/sim"
)

// FieldNames labels State and Consts entries in output.
var FieldNames = []string{"h", "v", "b"}

type Range struct {
	Min, Max float64
}

// Diagnostics records the min/max of h, v and b at every snapshot and,
// when Out is set, prints them.
type Diagnostics[T grid.Float] struct {
	Out    io.Writer
	Format func(field string, r Range) string

	latest  map[string]Range
	history []Row
}

// Row is one line of the diagnostics history.
type Row struct {
	Step   int
	Time   float64
	Ranges map[string]Range
}

func NewDiagnostics[T grid.Float](out io.Writer) *Diagnostics[T] {
	return &Diagnostics[T]{Out: out, latest: make(map[string]Range)}
}

func DefaultFormat(field string, r Range) string {
	return fmt.Sprintf(" + %s min/max: %g, %g", field, r.Min, r.Max)
}

func (d *Diagnostics[T]) Observe(s sim.Snapshot[T]) error {
	fields := []*grid.Field[T]{s.State[physics.H], s.State[physics.V], s.Consts[physics.B]}

	row := Row{Step: s.Step, Time: float64(s.Time), Ranges: make(map[string]Range, len(fields))}
	for i, f := range fields {
		r := Range{Min: float64(f.Min()), Max: float64(f.Max())}
		row.Ranges[FieldNames[i]] = r
		d.latest[FieldNames[i]] = r
	}
	d.history = append(d.history, row)

	if d.Out == nil {
		return nil
	}
	format := d.Format
	if format == nil {
		format = DefaultFormat
	}
	for _, name := range FieldNames {
		if _, err := fmt.Fprintln(d.Out, format(name, row.Ranges[name])); err != nil {
			return err
		}
	}
	return nil
}

// Latest returns the range of field at the most recent snapshot.
func (d *Diagnostics[T]) Latest(field string) (Range, bool) {
	r, ok := d.latest[field]
	return r, ok
}

func (d *Diagnostics[T]) History() []Row {
	return d.history
}
