package grid

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CellRef addresses one cell of a grid.
type CellRef struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Stats summarizes the valid samples of a grid. Range is always
// MaxValid-MinValid; Analyze refuses to produce Stats for a grid with no
// valid samples, so the fields are never infinities.
type Stats struct {
	MinValid   float64 `json:"min_valid"`
	MaxValid   float64 `json:"max_valid"`
	Range      float64 `json:"range"`
	ValidCount int     `json:"valid_count"`
	NullCount  int     `json:"null_count"`

	// Elevation percentiles over the valid samples.
	P50 float64 `json:"p50"`
	P85 float64 `json:"p85"`
	P98 float64 `json:"p98"`

	// NullCells lists the null cell positions for consumers that mark
	// holes explicitly. Excluded from JSON; NullCount carries the size.
	NullCells []CellRef `json:"-"`
}

// Analyze scans every cell of g and summarizes the valid samples. A grid
// whose cells are all null or non-finite yields ErrNoValidSamples.
func Analyze(g *Grid) (*Stats, error) {
	st := &Stats{}
	valid := make([]float64, 0, g.Header.CellCount())
	for r := 0; r < g.Header.Rows; r++ {
		for c := 0; c < g.Header.Columns; c++ {
			v := g.At(r, c)
			if !IsValidSample(v) {
				st.NullCount++
				st.NullCells = append(st.NullCells, CellRef{Row: r, Col: c})
				continue
			}
			if st.ValidCount == 0 || v < st.MinValid {
				st.MinValid = v
			}
			if st.ValidCount == 0 || v > st.MaxValid {
				st.MaxValid = v
			}
			st.ValidCount++
			valid = append(valid, v)
		}
	}
	if st.ValidCount == 0 {
		return nil, &FormatError{Kind: ErrNoValidSamples}
	}
	st.Range = st.MaxValid - st.MinValid

	sort.Float64s(valid)
	st.P50 = stat.Quantile(0.50, stat.Empirical, valid, nil)
	st.P85 = stat.Quantile(0.85, stat.Empirical, valid, nil)
	st.P98 = stat.Quantile(0.98, stat.Empirical, valid, nil)
	return st, nil
}
