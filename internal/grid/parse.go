package grid

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/terrain.report/internal/monitoring"
)

/*
Elevation Grid Document Format

Documents are plain text in two sections separated by a terminator line whose
trimmed content is exactly "@".

HEADER SECTION (everything before the terminator):
├── Free-form lines (comments, export provenance, field descriptors) which
│   the parser ignores except for two:
├── Grid marker: the first line whose trimmed form begins with "@Grid"
│   (matched case-insensitively; classic exports upper-case it as "@GRID")
└── Dimension line: exactly two lines after the marker, comma-separated
    with at least six fields, positionally:
        columns, rows, xMin, xMax, yMin, yMax
    Extra fields are ignored. The line between the marker and the dimension
    line is a format descriptor this parser does not need.

DATA SECTION (everything after the terminator):
Whitespace-separated decimal samples in row-major order (row 0 first, left to
right within a row). Line breaks are insignificant and blank lines are
skipped. The total sample count must equal rows*columns exactly; a short or
long stream fails the whole load. A sample with magnitude >= 1e30, or any
non-finite value, marks a null cell.

Unparsable sample tokens are logged and skipped rather than failing the load;
because they shrink the count they normally surface as a count mismatch,
which is the desired failure mode for a corrupted data section.
*/

const (
	headerTerminator = "@"     // trimmed line content ending the header
	gridMarkerPrefix = "@grid" // marker match, lower-cased before compare

	// The dimension line sits this many lines after the marker line.
	dimensionLineOffset = 2

	// Minimum comma-separated fields on the dimension line.
	dimensionFieldCount = 6

	// Individual bad-token log lines before collapsing to a summary count.
	maxTokenWarnings = 5

	// Sample lines are short in practice but nothing in the format caps
	// their length, so give the scanner generous room.
	maxLineBytes = 1 << 20
)

// Parse reads one elevation document from r. It returns a fully validated
// Grid or a *FormatError describing the first fatal problem; there are no
// partial results.
func Parse(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var headerLines []string
	terminated := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == headerTerminator {
			terminated = true
			break
		}
		headerLines = append(headerLines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !terminated {
		return nil, &FormatError{Kind: ErrMissingTerminator}
	}

	header, err := parseHeader(headerLines)
	if err != nil {
		return nil, err
	}

	samples, err := parseSamples(scanner, header.CellCount())
	if err != nil {
		return nil, err
	}
	return New(header, samples)
}

// ParseString parses a document held in memory.
func ParseString(doc string) (*Grid, error) {
	return Parse(strings.NewReader(doc))
}

// parseHeader locates the grid marker and dimension line among the header
// lines and extracts the six positional fields.
func parseHeader(lines []string) (Header, error) {
	marker := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), gridMarkerPrefix) {
			marker = i
			break
		}
	}
	if marker < 0 {
		return Header{}, &FormatError{Kind: ErrMissingGridInfo}
	}

	dimsIndex := marker + dimensionLineOffset
	if dimsIndex >= len(lines) {
		return Header{}, &FormatError{
			Kind:   ErrMissingGridInfo,
			Detail: "dimension line falls outside the header section",
		}
	}

	fields := splitDimensionLine(lines[dimsIndex])
	if len(fields) < dimensionFieldCount {
		return Header{}, &FormatError{
			Kind:   ErrInsufficientFields,
			Detail: fmt.Sprintf("need %d comma-separated fields, found %d", dimensionFieldCount, len(fields)),
		}
	}

	h := Header{
		Columns: parseIntField(fields[0]),
		Rows:    parseIntField(fields[1]),
		XMin:    parseFloatField(fields[2]),
		XMax:    parseFloatField(fields[3]),
		YMin:    parseFloatField(fields[4]),
		YMax:    parseFloatField(fields[5]),
	}
	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// splitDimensionLine splits on commas, trims each token, and drops empties
// so trailing commas and aligned whitespace do not count as fields.
func splitDimensionLine(line string) []string {
	parts := strings.Split(line, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			fields = append(fields, t)
		}
	}
	return fields
}

// parseIntField returns 0 on a malformed token; header validation rejects
// the zero afterwards.
func parseIntField(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseFloatField returns NaN on a malformed token; NaN fails the extent
// comparisons in header validation.
func parseFloatField(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseSamples consumes the remainder of the document as whitespace-separated
// floats. Bad tokens are skipped with a log line, not treated as fatal.
func parseSamples(scanner *bufio.Scanner, sizeHint int) ([]float64, error) {
	samples := make([]float64, 0, sizeHint)
	badTokens := 0
	for scanner.Scan() {
		for _, tok := range strings.Fields(scanner.Text()) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				badTokens++
				if badTokens <= maxTokenWarnings {
					monitoring.Logf("grid: skipping unparsable sample %q", tok)
				}
				continue
			}
			samples = append(samples, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	if badTokens > maxTokenWarnings {
		monitoring.Logf("grid: skipped %d unparsable samples in total", badTokens)
	}
	return samples, nil
}
