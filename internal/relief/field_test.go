package relief

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/terrain.report/internal/grid"
)

func TestDownsampleKeepsEverythingUnderBudget(t *testing.T) {
	t.Parallel()

	f, err := Normalize(rampGrid(t), DefaultParams())
	require.NoError(t, err)

	fg := f.Downsample(1000)
	assert.Equal(t, 1, fg.Stride)
	assert.Len(t, fg.X, 10)
	assert.Len(t, fg.Y, 5)
	require.Len(t, fg.Elev, 5)

	for r := range fg.Elev {
		require.Len(t, fg.Elev[r], 10)
		for c := range fg.Elev[r] {
			assert.Equal(t, f.ElevationAt(r, c), fg.Elev[r][c])
		}
	}

	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}, fg.X)
	assert.Equal(t, []float64{0, 10, 20, 30, 40}, fg.Y)
}

func TestDownsampleStride(t *testing.T) {
	t.Parallel()

	f, err := Normalize(rampGrid(t), DefaultParams())
	require.NoError(t, err)

	// 50 cells into a 10-point budget keeps every third row and column.
	fg := f.Downsample(10)
	assert.Equal(t, 3, fg.Stride)
	assert.Equal(t, []float64{0, 30, 60, 90}, fg.X)
	assert.Equal(t, []float64{0, 30}, fg.Y)
	require.Len(t, fg.Elev, 2)
	require.Len(t, fg.Elev[0], 4)

	assert.LessOrEqual(t, len(fg.X)*len(fg.Y), 10)

	// Kept cells sample the original field, not an interpolation of it
	assert.Equal(t, f.ElevationAt(0, 0), fg.Elev[0][0])
	assert.Equal(t, f.ElevationAt(3, 6), fg.Elev[1][2])
}

func TestDownsampleSkewedGrid(t *testing.T) {
	t.Parallel()

	h := grid.Header{Columns: 100, Rows: 2, XMin: 0, XMax: 198, YMin: 0, YMax: 10}
	samples := make([]float64, 200)
	for i := range samples {
		samples[i] = float64(i)
	}
	f, err := Normalize(testGrid(t, h, samples), DefaultParams())
	require.NoError(t, err)

	// The square-root estimate alone would keep 34 columns here; the stride
	// has to grow until the budget holds.
	fg := f.Downsample(25)
	assert.LessOrEqual(t, len(fg.X)*len(fg.Y), 25)
	assert.Equal(t, 4, fg.Stride)
	assert.Len(t, fg.Y, 1)
	assert.Len(t, fg.X, 25)
}

func TestDownsampleUnlimited(t *testing.T) {
	t.Parallel()

	f, err := Normalize(rampGrid(t), DefaultParams())
	require.NoError(t, err)

	fg := f.Downsample(0)
	assert.Equal(t, 1, fg.Stride)
	assert.Len(t, fg.X, 10)
	assert.Len(t, fg.Y, 5)
}
