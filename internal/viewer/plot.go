package viewer

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/terrain.report/internal/relief"
	"github.com/banshee-data/terrain.report/internal/session"
)

// heightGrid adapts a height field to plotter.GridXYZ, which indexes
// column-first. Invalid cells report the valid minimum so they sit on the
// floor of the color range instead of distorting it.
type heightGrid struct {
	field *relief.HeightField
}

func (g heightGrid) Dims() (c, r int) {
	return g.field.Header.Columns, g.field.Header.Rows
}

func (g heightGrid) Z(c, r int) float64 {
	if !g.field.ValidAt(r, c) {
		return g.field.Stats.MinValid
	}
	return g.field.RawAt(r, c)
}

func (g heightGrid) X(c int) float64 {
	return g.field.Header.XMin + float64(c)*g.field.Header.XStep()
}

func (g heightGrid) Y(r int) float64 {
	return g.field.Header.YMin + float64(r)*g.field.Header.YStep()
}

// bandPalette exposes a fixed color list as a gonum palette.
type bandPalette struct {
	colors []color.Color
}

func (p bandPalette) Colors() []color.Color {
	return p.colors
}

// contourLevels returns every multiple of interval between min and max
// inclusive. These are the raw heights the contour lines sit on.
func contourLevels(min, max, interval float64) []float64 {
	if interval <= 0 {
		return nil
	}
	start := math.Ceil(min/interval) * interval
	var levels []float64
	for i := 0; ; i++ {
		v := start + float64(i)*interval
		if v > max {
			break
		}
		levels = append(levels, v)
	}
	return levels
}

// pixelParam reads a pixel dimension from the query, falling back to def
// when absent or outside 64..4096.
func pixelParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 64 || n > 4096 {
		return def
	}
	return n
}

// pixelLength converts pixels to a vg length at the 96 dpi raster default.
func pixelLength(px int) vg.Length {
	return vg.Length(px) * vg.Inch / 96
}

// WriteContourPNG renders the snapshot's banded height ramp with contour
// lines drawn over it and writes a PNG of the given pixel dimensions to w.
func WriteContourPNG(w io.Writer, snap *session.Snapshot, widthPx, heightPx int) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s contours", snap.Name)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	g := heightGrid{field: snap.Field}
	p.Add(plotter.NewHeatMap(g, bandPalette{colors: relief.RampColors(64)}))

	st := snap.Field.Stats
	levels := contourLevels(st.MinValid, st.MaxValid, snap.Bander.Interval)
	if len(levels) > 0 {
		lineColors := make([]color.Color, len(levels))
		for i := range lineColors {
			lineColors[i] = relief.ContourLineColor
		}
		p.Add(plotter.NewContour(g, levels, bandPalette{colors: lineColors}))
	}

	wt, err := p.WriterTo(pixelLength(widthPx), pixelLength(heightPx), "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// handleContourPNG renders the active grid as a static PNG. Query params:
//   - width, height (optional pixels; default 800x600, clamped 64..4096)
func (ws *WebServer) handleContourPNG(w http.ResponseWriter, r *http.Request) {
	snap, err := ws.session.Current()
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	widthPx := pixelParam(r, "width", 800)
	heightPx := pixelParam(r, "height", 600)

	var buf bytes.Buffer
	if err := WriteContourPNG(&buf, snap, widthPx, heightPx); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render plot: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("write contour png: %v", err)
	}
}
