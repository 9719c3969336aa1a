// Package relief turns parsed elevation grids into render-ready height
// fields: raw samples are rescaled against the grid footprint so surfaces of
// any extent render at a comparable aspect, and heights are painted with
// contour-banded colors for the viewer.
package relief

import (
	"fmt"

	"github.com/banshee-data/terrain.report/internal/grid"
)

// Number of contour divisions across the full height range. The contour
// interval is Range/contourDivisions.
const contourDivisions = 20

// Params controls normalization and banding. Zero fields fall back to the
// defaults at evaluation time via the Get accessors on Config; code inside
// this package expects fully populated values.
type Params struct {
	// HeightScale is the fraction of the footprint span the full height
	// range maps onto. Recognized range (0, 1].
	HeightScale float64

	// BaseOffset is the rendered elevation of the lowest valid sample.
	// Null cells render at exactly this height.
	BaseOffset float64

	// ContourWidthFraction sizes the base contour width as a fraction of
	// the contour interval. Recognized range (0, 0.5).
	ContourWidthFraction float64

	// ReferenceDistanceFactor sizes the reference viewing distance as a
	// multiple of the footprint span.
	ReferenceDistanceFactor float64
}

// DefaultParams returns the parameter set used when no configuration is
// supplied.
func DefaultParams() Params {
	return Params{
		HeightScale:             0.25,
		BaseOffset:              0,
		ContourWidthFraction:    0.05,
		ReferenceDistanceFactor: 1.5,
	}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if p.HeightScale < 0.05 || p.HeightScale > 1.0 {
		return fmt.Errorf("relief: height scale %.3f outside [0.05, 1.0]", p.HeightScale)
	}
	if p.ContourWidthFraction <= 0 || p.ContourWidthFraction >= 0.5 {
		return fmt.Errorf("relief: contour width fraction %.3f outside (0, 0.5)", p.ContourWidthFraction)
	}
	if p.ReferenceDistanceFactor <= 0 {
		return fmt.Errorf("relief: reference distance factor %.3f must be positive", p.ReferenceDistanceFactor)
	}
	return nil
}

// HeightField is a normalized, immutable rendering of one grid. It keeps the
// raw samples alongside the rendered elevations because banding operates on
// raw heights while the surface plots rendered ones.
type HeightField struct {
	Header grid.Header
	Stats  *grid.Stats

	// VerticalScale is Span/Range*HeightScale: raw height units to
	// rendered units.
	VerticalScale float64

	// Span is the larger footprint extent, in source units.
	Span float64

	// BaseOffset is the rendered elevation of MinValid and of null cells.
	BaseOffset float64

	// ReferenceDistance is the viewing distance at which contours render
	// at their base width, captured at normalization time.
	ReferenceDistance float64

	params Params
	raw    []float64
	elev   []float64
}

// Normalize analyzes g and produces its height field. Fails with
// grid.ErrNoValidSamples when every cell is null and with
// grid.ErrZeroHeightRange when all valid samples are equal; both leave the
// caller's previous field untouched.
func Normalize(g *grid.Grid, p Params) (*HeightField, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	st, err := grid.Analyze(g)
	if err != nil {
		return nil, err
	}
	if st.Range == 0 {
		return nil, &grid.FormatError{Kind: grid.ErrZeroHeightRange}
	}

	h := g.Header
	f := &HeightField{
		Header:            h,
		Stats:             st,
		Span:              h.Span(),
		BaseOffset:        p.BaseOffset,
		ReferenceDistance: h.Span() * p.ReferenceDistanceFactor,
		params:            p,
		raw:               g.Flatten(),
	}
	f.VerticalScale = f.Span / st.Range * p.HeightScale

	f.elev = make([]float64, len(f.raw))
	for i, v := range f.raw {
		if !grid.IsValidSample(v) {
			f.elev[i] = p.BaseOffset
			continue
		}
		f.elev[i] = (v-st.MinValid)*f.VerticalScale + p.BaseOffset
	}
	return f, nil
}

// RawAt returns the source sample at (row, col).
func (f *HeightField) RawAt(row, col int) float64 {
	return f.raw[row*f.Header.Columns+col]
}

// ElevationAt returns the rendered elevation at (row, col). Null cells
// return exactly BaseOffset.
func (f *HeightField) ElevationAt(row, col int) float64 {
	return f.elev[row*f.Header.Columns+col]
}

// ValidAt reports whether the cell carries real elevation data.
func (f *HeightField) ValidAt(row, col int) bool {
	return grid.IsValidSample(f.RawAt(row, col))
}

// MaxElevation returns the rendered elevation of the highest valid sample.
func (f *HeightField) MaxElevation() float64 {
	return f.Stats.Range*f.VerticalScale + f.BaseOffset
}
