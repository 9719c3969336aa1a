package grid

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	h := Header{Columns: 4, Rows: 3, XMin: -120.5, XMax: 300, YMin: 12.25, YMax: 96}
	g := mustGrid(t, h, []float64{
		101.5, 102.25, 1e30, 104,
		98.125, 99, 100.5, 101,
		-5.75, 0, 2.5, 97.0625,
	})

	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf, "ridge"))

	back, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Header, back.Header)
	assert.Equal(t, g.Flatten(), back.Flatten())
}

func TestEncodeNormalizesNonFiniteToNull(t *testing.T) {
	t.Parallel()

	h := Header{Columns: 2, Rows: 2, XMin: 0, XMax: 10, YMin: 0, YMax: 10}
	g := mustGrid(t, h, []float64{1.5, math.NaN(), math.Inf(1), 4})

	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf, "holes"))

	back, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1e30, back.At(0, 1))
	assert.Equal(t, 1e30, back.At(1, 0))
	assert.Equal(t, 4.0, back.At(1, 1))
}

func TestEncodeMarkerAndProvenance(t *testing.T) {
	t.Parallel()

	h := Header{Columns: 2, Rows: 2, XMin: 0, XMax: 10, YMin: 0, YMax: 10}
	g := mustGrid(t, h, []float64{1, 2, 3, 4})

	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf, "sample"))
	lines := strings.Split(buf.String(), "\n")

	require.GreaterOrEqual(t, len(lines), 5)
	assert.True(t, strings.HasPrefix(lines[0], "! sample"))
	assert.True(t, strings.HasPrefix(lines[1], "@Grid "))
	assert.Equal(t, "2, 2, 0, 10, 0, 10", lines[3])
	assert.Equal(t, "@", lines[4])
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	h := Header{Columns: 3, Rows: 2, XMin: 0, XMax: 20, YMin: 0, YMax: 10}
	g := mustGrid(t, h, []float64{
		10.5, 1e30, 12,
		9, 9.5, 11.25,
	})
	st, err := Analyze(g)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.WriteXLSX(&buf, "quarry", st))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Grid")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "10.5", rows[0][0])
	assert.Equal(t, "12", rows[0][2])
	assert.Equal(t, "11.25", rows[1][2])

	// Null cell stays blank.
	if len(rows[0]) > 1 {
		assert.Equal(t, "", rows[0][1])
	}

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.NotEmpty(t, summary)
	assert.Equal(t, "Name", summary[0][0])
	assert.Equal(t, "quarry", summary[0][1])
}
