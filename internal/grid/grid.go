// Package grid parses gridded elevation documents and holds the in-memory
// representation served to the viewer. A document is a text header terminated
// by a lone "@" line followed by whitespace-separated samples in row-major
// order; see parse.go for the format details.
package grid

import (
	"math"
)

// NullValue is the sentinel magnitude for missing cells. Any sample with an
// absolute value at or above it (or any non-finite sample) is treated as a
// hole in the surface rather than an elevation.
const NullValue = 1e30

// IsValidSample reports whether v carries elevation data.
func IsValidSample(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) < NullValue
}

// Header carries the grid dimensions and projected extents read from the
// document's dimension line. Extents are in the document's source units
// (typically metres or feet of easting/northing).
type Header struct {
	Columns int     `json:"columns"`
	Rows    int     `json:"rows"`
	XMin    float64 `json:"x_min"`
	XMax    float64 `json:"x_max"`
	YMin    float64 `json:"y_min"`
	YMax    float64 `json:"y_max"`
}

// XStep returns the spacing between adjacent columns.
func (h Header) XStep() float64 {
	return (h.XMax - h.XMin) / float64(h.Columns-1)
}

// YStep returns the spacing between adjacent rows.
func (h Header) YStep() float64 {
	return (h.YMax - h.YMin) / float64(h.Rows-1)
}

// Span returns the larger of the two extent widths. Normalization scales
// vertical relief against it so grids of any footprint render at a
// comparable aspect.
func (h Header) Span() float64 {
	return math.Max(h.XMax-h.XMin, h.YMax-h.YMin)
}

// CellCount returns the exact number of samples the document must supply.
func (h Header) CellCount() int {
	return h.Rows * h.Columns
}

func (h Header) validate() error {
	switch {
	case h.Columns <= 1 || h.Rows <= 1:
		return &FormatError{
			Kind:   ErrInvalidGridInfo,
			Detail: "columns and rows must both exceed 1",
		}
	case math.IsNaN(h.XMin) || math.IsNaN(h.XMax) || !(h.XMax > h.XMin):
		return &FormatError{
			Kind:   ErrInvalidGridInfo,
			Detail: "x extent is empty or unparsable",
		}
	case math.IsNaN(h.YMin) || math.IsNaN(h.YMax) || !(h.YMax > h.YMin):
		return &FormatError{
			Kind:   ErrInvalidGridInfo,
			Detail: "y extent is empty or unparsable",
		}
	}
	return nil
}

// Grid is one parsed document: a validated header plus exactly
// Rows*Columns samples stored flat in row-major order. Grids are immutable
// after construction; a new load replaces the whole value.
type Grid struct {
	Header  Header
	samples []float64
}

// New builds a Grid from a header and a flat row-major sample slice. The
// slice length must equal Header.CellCount exactly; New takes ownership of
// the slice.
func New(h Header, samples []float64) (*Grid, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	if len(samples) != h.CellCount() {
		return nil, &FormatError{
			Kind:     ErrCountMismatch,
			Expected: h.CellCount(),
			Actual:   len(samples),
		}
	}
	return &Grid{Header: h, samples: samples}, nil
}

// At returns the raw sample at (row, col). Row 0 is the first data row in
// the document. Panics on out-of-range indices like a slice would.
func (g *Grid) At(row, col int) float64 {
	if row < 0 || row >= g.Header.Rows || col < 0 || col >= g.Header.Columns {
		panic("grid: cell index out of range")
	}
	return g.samples[row*g.Header.Columns+col]
}

// Flatten returns a copy of the samples in row-major order, so that
// New(g.Header, g.Flatten()) reproduces g exactly.
func (g *Grid) Flatten() []float64 {
	out := make([]float64, len(g.samples))
	copy(out, g.samples)
	return out
}

// XAt returns the easting of column c.
func (g *Grid) XAt(c int) float64 {
	return g.Header.XMin + float64(c)*g.Header.XStep()
}

// YAt returns the northing of row r.
func (g *Grid) YAt(r int) float64 {
	return g.Header.YMin + float64(r)*g.Header.YStep()
}
