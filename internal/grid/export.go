package grid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Samples per line in encoded documents. Cosmetic only; the parser treats
// line breaks in the data section as whitespace.
const encodeValuesPerLine = 6

// Encode writes g back out as an elevation document that Parse accepts and
// that reproduces g exactly. Non-finite samples are written as the null
// sentinel. name appears in the provenance comment and the marker line.
func (g *Grid) Encode(w io.Writer, name string) error {
	bw := bufio.NewWriter(w)
	h := g.Header

	fmt.Fprintf(bw, "! %s exported by terrain-report\n", name)
	fmt.Fprintf(bw, "@Grid %s, GRID, %d\n", name, dimensionFieldCount)
	fmt.Fprintf(bw, "15, %s, , 6, 1\n", formatSample(NullValue))
	fmt.Fprintf(bw, "%d, %d, %s, %s, %s, %s\n",
		h.Columns, h.Rows,
		formatSample(h.XMin), formatSample(h.XMax),
		formatSample(h.YMin), formatSample(h.YMax))
	fmt.Fprintln(bw, headerTerminator)

	onLine := 0
	for r := 0; r < h.Rows; r++ {
		for c := 0; c < h.Columns; c++ {
			v := g.At(r, c)
			if !IsValidSample(v) {
				v = NullValue
			}
			if onLine > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(formatSample(v))
			onLine++
			if onLine == encodeValuesPerLine {
				bw.WriteByte('\n')
				onLine = 0
			}
		}
	}
	if onLine > 0 {
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatSample(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteXLSX writes g as a spreadsheet: a Summary sheet with the header and
// stats, and a Grid sheet holding the raw samples with null cells left
// blank. st may be nil when no stats are available.
func (g *Grid) WriteXLSX(w io.Writer, name string, st *Stats) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet("Summary"); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	summary := [][2]interface{}{
		{"Name", name},
		{"Columns", g.Header.Columns},
		{"Rows", g.Header.Rows},
		{"X Min", g.Header.XMin},
		{"X Max", g.Header.XMax},
		{"Y Min", g.Header.YMin},
		{"Y Max", g.Header.YMax},
		{"X Step", g.Header.XStep()},
		{"Y Step", g.Header.YStep()},
	}
	if st != nil {
		summary = append(summary, [][2]interface{}{
			{"Min Elevation", st.MinValid},
			{"Max Elevation", st.MaxValid},
			{"Range", st.Range},
			{"Valid Cells", st.ValidCount},
			{"Null Cells", st.NullCount},
			{"P50", st.P50},
			{"P85", st.P85},
			{"P98", st.P98},
		}...)
	}
	for i, kv := range summary {
		rowCell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Summary", rowCell, &[]interface{}{kv[0], kv[1]}); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}

	if err := f.SetSheetName("Sheet1", "Grid"); err != nil {
		return fmt.Errorf("rename grid sheet: %w", err)
	}
	sw, err := f.NewStreamWriter("Grid")
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	for r := 0; r < g.Header.Rows; r++ {
		row := make([]interface{}, g.Header.Columns)
		for c := 0; c < g.Header.Columns; c++ {
			if v := g.At(r, c); IsValidSample(v) {
				row[c] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write grid row %d: %w", r, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush grid sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
