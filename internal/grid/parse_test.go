package grid

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/terrain.report/internal/monitoring"
)

func muteLogs(t *testing.T) {
	t.Helper()
	prev := monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(prev) })
}

// sampleTokens returns n whitespace-separated samples "1 2 3 ...", ten to a
// line, so tests can build data sections of any exact length.
func sampleTokens(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			if (i-1)%10 == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

func TestParseTenByFiveDocument(t *testing.T) {
	t.Parallel()

	doc := "@Grid\nfoo\n10, 5, 0, 90, 0, 40\n@\n" + sampleTokens(50) + "\n"
	g, err := ParseString(doc)
	require.NoError(t, err)

	assert.Equal(t, 10, g.Header.Columns)
	assert.Equal(t, 5, g.Header.Rows)
	assert.Equal(t, 0.0, g.Header.XMin)
	assert.Equal(t, 90.0, g.Header.XMax)
	assert.Equal(t, 0.0, g.Header.YMin)
	assert.Equal(t, 40.0, g.Header.YMax)
	assert.InDelta(t, 10.0, g.Header.XStep(), 1e-12)
	assert.InDelta(t, 10.0, g.Header.YStep(), 1e-12)

	// Row-major: first token is (0,0), eleventh is (1,0).
	assert.Equal(t, 1.0, g.At(0, 0))
	assert.Equal(t, 10.0, g.At(0, 9))
	assert.Equal(t, 11.0, g.At(1, 0))
	assert.Equal(t, 50.0, g.At(4, 9))
}

func TestParseOneSampleShort(t *testing.T) {
	t.Parallel()

	doc := "@Grid\nfoo\n10, 5, 0, 90, 0, 40\n@\n" + sampleTokens(49) + "\n"
	_, err := ParseString(doc)
	fe, ok := AsFormatError(err)
	require.True(t, ok, "expected a FormatError, got %v", err)
	assert.Equal(t, ErrCountMismatch, fe.Kind)
	assert.Equal(t, 50, fe.Expected)
	assert.Equal(t, 49, fe.Actual)
}

func TestParseOneSampleLong(t *testing.T) {
	t.Parallel()

	doc := "@Grid\nfoo\n10, 5, 0, 90, 0, 40\n@\n" + sampleTokens(51) + "\n"
	_, err := ParseString(doc)
	fe, ok := AsFormatError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCountMismatch, fe.Kind)
	assert.Equal(t, 50, fe.Expected)
	assert.Equal(t, 51, fe.Actual)
}

func TestParseHeaderVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{
			"upper-case marker",
			"@GRID FILE, GRID, 6\nfiller\n4, 3, 0, 30, 0, 20\n@\n" + sampleTokens(12),
		},
		{
			"marker with leading whitespace",
			"  @Grid\nfiller\n4, 3, 0, 30, 0, 20\n@\n" + sampleTokens(12),
		},
		{
			"comment lines before marker",
			"! exported 2024-03-11\n! projection: UTM 33N\n@Grid surface\nfiller\n4, 3, 0, 30, 0, 20\n@\n" + sampleTokens(12),
		},
		{
			"extra dimension fields ignored",
			"@Grid\nfiller\n4, 3, 0, 30, 0, 20, 0.0, 0.0, 999\n@\n" + sampleTokens(12),
		},
		{
			"terminator with surrounding whitespace",
			"@Grid\nfiller\n4, 3, 0, 30, 0, 20\n  @  \n" + sampleTokens(12),
		},
		{
			"blank lines in data section",
			"@Grid\nfiller\n4, 3, 0, 30, 0, 20\n@\n" + strings.ReplaceAll(sampleTokens(12), "\n", "\n\n"),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := ParseString(tc.doc)
			require.NoError(t, err)
			assert.Equal(t, 4, g.Header.Columns)
			assert.Equal(t, 3, g.Header.Rows)
			assert.Equal(t, 30.0, g.Header.XMax)
		})
	}
}

func TestParseFormatFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		kind ErrorKind
	}{
		{
			"no terminator",
			"@Grid\nfiller\n4, 3, 0, 30, 0, 20\n1 2 3",
			ErrMissingTerminator,
		},
		{
			"no grid marker",
			"! just a comment\nanother line\n4, 3, 0, 30, 0, 20\n@\n1 2 3",
			ErrMissingGridInfo,
		},
		{
			"marker too close to terminator",
			"@Grid\nfiller\n@\n1 2 3",
			ErrMissingGridInfo,
		},
		{
			"marker on last header line",
			"@Grid\n@\n1 2 3",
			ErrMissingGridInfo,
		},
		{
			"five fields",
			"@Grid\nfiller\n4, 3, 0, 30, 0\n@\n1 2 3",
			ErrInsufficientFields,
		},
		{
			"trailing commas do not count as fields",
			"@Grid\nfiller\n4, 3, 0, 30, 0, ,\n@\n1 2 3",
			ErrInsufficientFields,
		},
		{
			"non-numeric columns",
			"@Grid\nfiller\nten, 3, 0, 30, 0, 20\n@\n1 2 3",
			ErrInvalidGridInfo,
		},
		{
			"fractional rows",
			"@Grid\nfiller\n4, 3.5, 0, 30, 0, 20\n@\n1 2 3",
			ErrInvalidGridInfo,
		},
		{
			"unparsable extent",
			"@Grid\nfiller\n4, 3, 0, east, 0, 20\n@\n1 2 3",
			ErrInvalidGridInfo,
		},
		{
			"inverted y extent",
			"@Grid\nfiller\n4, 3, 0, 30, 20, 0\n@\n1 2 3",
			ErrInvalidGridInfo,
		},
		{
			"single row",
			"@Grid\nfiller\n4, 1, 0, 30, 0, 20\n@\n1 2 3 4",
			ErrInvalidGridInfo,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.doc)
			fe, ok := AsFormatError(err)
			require.True(t, ok, "expected a FormatError, got %v", err)
			assert.Equal(t, tc.kind, fe.Kind)
		})
	}
}

func TestParseSkipsBadTokens(t *testing.T) {
	muteLogs(t)

	// Twelve good tokens plus garbage: the garbage is skipped and the count
	// still comes out right.
	doc := "@Grid\nfiller\n4, 3, 0, 30, 0, 20\n@\n1 2 3 4\n5 oops 6 7 8\n9 10 ??? 11 12\n"
	g, err := ParseString(doc)
	require.NoError(t, err)
	assert.Equal(t, 12.0, g.At(2, 3))
}

func TestParseBadTokensShrinkCount(t *testing.T) {
	muteLogs(t)

	// Exactly twelve tokens but one is garbage, so the load fails as a
	// count mismatch rather than a parse error.
	doc := "@Grid\nfiller\n4, 3, 0, 30, 0, 20\n@\n1 2 3 4\n5 x 7 8\n9 10 11 12\n"
	_, err := ParseString(doc)
	fe, ok := AsFormatError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCountMismatch, fe.Kind)
	assert.Equal(t, 12, fe.Expected)
	assert.Equal(t, 11, fe.Actual)
}

func TestParseNullAndNonFiniteSamplesAccepted(t *testing.T) {
	t.Parallel()

	// Null sentinels, NaN, and exponent forms are all legal float tokens;
	// validity is a semantic question answered later by IsValidSample.
	doc := "@Grid\nfiller\n3, 2, 0, 20, 0, 10\n@\n1.5 0.1E+31 -2.5\nNaN 3.25 1e30\n"
	g, err := ParseString(doc)
	require.NoError(t, err)

	assert.True(t, IsValidSample(g.At(0, 0)))
	assert.False(t, IsValidSample(g.At(0, 1)))
	assert.True(t, IsValidSample(g.At(0, 2)))
	assert.False(t, IsValidSample(g.At(1, 0)))
	assert.True(t, IsValidSample(g.At(1, 1)))
	assert.False(t, IsValidSample(g.At(1, 2)))
}
