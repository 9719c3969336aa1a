package relief

import "math"

// FieldGrid is a downsampled, JSON-safe view of a height field prepared for
// charting: axis coordinates plus a dense row-major elevation matrix. Null
// cells carry BaseOffset, so every value is finite.
type FieldGrid struct {
	Stride int         `json:"stride"`
	X      []float64   `json:"x"`
	Y      []float64   `json:"y"`
	Elev   [][]float64 `json:"elevations"`
}

// Downsample reduces the field to at most maxPoints cells by keeping every
// stride-th row and column, stride chosen as the smallest value that fits.
// A non-positive maxPoints keeps every cell.
func (f *HeightField) Downsample(maxPoints int) *FieldGrid {
	rows := f.Header.Rows
	cols := f.Header.Columns

	stride := 1
	if maxPoints > 0 && rows*cols > maxPoints {
		stride = int(math.Ceil(math.Sqrt(float64(rows*cols) / float64(maxPoints))))
		// Skewed grids need a larger stride than the square estimate
		for ceilDiv(rows, stride)*ceilDiv(cols, stride) > maxPoints {
			stride++
		}
	}

	fg := &FieldGrid{Stride: stride}
	for c := 0; c < cols; c += stride {
		fg.X = append(fg.X, f.Header.XMin+float64(c)*f.Header.XStep())
	}
	for r := 0; r < rows; r += stride {
		fg.Y = append(fg.Y, f.Header.YMin+float64(r)*f.Header.YStep())
	}
	for r := 0; r < rows; r += stride {
		row := make([]float64, 0, len(fg.X))
		for c := 0; c < cols; c += stride {
			row = append(row, f.ElevationAt(r, c))
		}
		fg.Elev = append(fg.Elev, row)
	}
	return fg
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
