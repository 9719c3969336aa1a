package viewer

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/terrain.report/internal/grid"
	"github.com/banshee-data/terrain.report/internal/relief"
)

// echartsAssetsPrefix is the assets host baked into rendered chart pages.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// maxPointsParam reads max_points from the query, falling back to the
// configured cap when absent or out of range.
func (ws *WebServer) maxPointsParam(r *http.Request) int {
	maxPoints := ws.cfg.GetMaxFieldPoints()
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}
	return maxPoints
}

// boxDims maps the grid footprint onto the 3D box so the longer horizontal
// extent spans 100 units and the surface is not stretched.
func boxDims(h grid.Header) (width, depth float32) {
	xSpan := h.XMax - h.XMin
	ySpan := h.YMax - h.YMin
	longest := math.Max(xSpan, ySpan)
	if longest <= 0 {
		return 100, 100
	}
	return float32(100 * xSpan / longest), float32(100 * ySpan / longest)
}

// handleSurfaceChart renders the active height field as an interactive 3D
// surface (HTML). Query params:
//   - max_points (optional; default from config) to reduce payload size
func (ws *WebServer) handleSurfaceChart(w http.ResponseWriter, r *http.Request) {
	snap, err := ws.session.Current()
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	fg := snap.Field.Downsample(ws.maxPointsParam(r))

	data := make([]opts.Chart3DData, 0, len(fg.X)*len(fg.Y))
	for ri, y := range fg.Y {
		for ci, x := range fg.X {
			data = append(data, opts.Chart3DData{Value: []interface{}{x, y, fg.Elev[ri][ci]}})
		}
	}

	boxW, boxD := boxDims(snap.Grid.Header)

	surface := charts.NewSurface3D()
	surface.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Terrain Surface", Theme: "dark", Width: "1200px", Height: "800px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Terrain Surface", Subtitle: fmt.Sprintf("grid=%s points=%d stride=%d", snap.Name, len(data), fg.Stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(snap.Field.BaseOffset),
			Max:        float32(snap.Field.MaxElevation()),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: relief.RampHex(10)},
		}),
		charts.WithGrid3DOpts(opts.Grid3D{
			BoxWidth:  boxW,
			BoxDepth:  boxD,
			BoxHeight: 40,
		}),
	)

	surface.AddSeries("elevation", data)

	var buf bytes.Buffer
	if err := surface.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleTopChart renders the active grid as a top-down heatmap of raw
// heights (HTML). Invalid cells are omitted so they show as blanks.
// Query params:
//   - max_points (optional; default from config) to reduce payload size
func (ws *WebServer) handleTopChart(w http.ResponseWriter, r *http.Request) {
	snap, err := ws.session.Current()
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	h := snap.Grid.Header
	maxPoints := ws.maxPointsParam(r)

	stride := 1
	if maxPoints > 0 && h.CellCount() > maxPoints {
		stride = int(math.Ceil(math.Sqrt(float64(h.CellCount()) / float64(maxPoints))))
	}

	var xLabels, yLabels []string
	for c := 0; c < h.Columns; c += stride {
		xLabels = append(xLabels, fmt.Sprintf("%g", snap.Grid.XAt(c)))
	}
	for row := 0; row < h.Rows; row += stride {
		yLabels = append(yLabels, fmt.Sprintf("%g", snap.Grid.YAt(row)))
	}

	data := make([]opts.HeatMapData, 0, len(xLabels)*len(yLabels))
	for yi, row := 0, 0; row < h.Rows; row, yi = row+stride, yi+1 {
		for xi, col := 0, 0; col < h.Columns; col, xi = col+stride, xi+1 {
			if !snap.Field.ValidAt(row, col) {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{xi, yi, snap.Field.RawAt(row, col)}})
		}
	}

	st := snap.Field.Stats

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Terrain Top View", Theme: "dark", Width: "1000px", Height: "800px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Terrain Top View", Subtitle: fmt.Sprintf("grid=%s cells=%d stride=%d", snap.Name, len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "x", SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "y", Data: yLabels, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(st.MinValid),
			Max:        float32(st.MaxValid),
			InRange:    &opts.VisualMapInRange{Color: relief.RampHex(relief.BandCount())},
		}),
	)

	heatmap.SetXAxis(xLabels).AddSeries("height", data)

	var buf bytes.Buffer
	if err := heatmap.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
