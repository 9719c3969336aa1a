package api

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/banshee-data/terrain.report/internal/httputil"
	"github.com/banshee-data/terrain.report/internal/relief"
	"github.com/banshee-data/terrain.report/internal/session"
)

// maxUploadBytes caps document bodies on both the upload and fetch paths.
// The largest survey grids we see are a few MB of ASCII; 64MB is headroom,
// not a target.
const maxUploadBytes = 64 << 20

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.showGrid(w, r)
	case http.MethodPost:
		s.loadGrid(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

// showGrid returns the summary of the active grid, or 404 before the first
// successful load.
func (s *Server) showGrid(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Current()
	if err != nil {
		httputil.NotFound(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, s.summarize(snap))
}

// loadGrid accepts a grid document either as a multipart form with a
// "file" field or as the raw request body, parses it, and swaps it in as
// the active grid. A malformed document leaves the previous grid active.
func (s *Server) loadGrid(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	name := r.URL.Query().Get("name")
	source := session.SourceRaw
	var body io.Reader = r.Body

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.BadRequest(w, "multipart form has no 'file' field")
			return
		}
		defer file.Close()
		body = file
		source = session.SourceUpload
		if name == "" {
			name = header.Filename
		}
	}
	if name == "" {
		name = "untitled.grd"
	}

	snap, err := s.session.Load(name, source, body)
	s.recordLoad(name, source, snap, err)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	httputil.WriteJSONOK(w, s.summarize(snap))
}

type fetchRequest struct {
	URL string `json:"url"`
}

// fetchGrid downloads a grid document from a URL supplied in the JSON body
// and loads it. Transport failures and non-200 upstream responses come back
// as 502 so callers can tell them apart from a malformed document (422).
func (s *Server) fetchGrid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}
	if req.URL == "" {
		httputil.BadRequest(w, "missing 'url' in request body")
		return
	}

	resp, err := s.client.Get(req.URL)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusBadGateway, fmt.Sprintf("failed to fetch %s: %v", req.URL, err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		httputil.WriteJSONError(w, http.StatusBadGateway, fmt.Sprintf("fetch of %s returned status %d", req.URL, resp.StatusCode))
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		if u, parseErr := url.Parse(req.URL); parseErr == nil {
			if base := path.Base(u.Path); base != "." && base != "/" {
				name = base
			}
		}
	}
	if name == "" {
		name = "remote.grd"
	}

	snap, err := s.session.Load(name, session.SourceURL, io.LimitReader(resp.Body, maxUploadBytes))
	s.recordLoad(name, session.SourceURL, snap, err)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	httputil.WriteJSONOK(w, s.summarize(snap))
}

// FieldResponse carries a render-ready slice of the height field. Every
// elevation is finite (null cells hold the base offset), so the payload is
// plain JSON with no sentinel encoding.
type FieldResponse struct {
	Name         string      `json:"name"`
	Stride       int         `json:"stride"`
	X            []float64   `json:"x"`
	Y            []float64   `json:"y"`
	Elevations   [][]float64 `json:"elevations"`
	BaseOffset   float64     `json:"base_offset"`
	MaxElevation float64     `json:"max_elevation"`
}

// showField returns the normalized elevations, downsampled to at most
// max_points cells (defaulting to the configured budget).
func (s *Server) showField(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	snap, err := s.session.Current()
	if err != nil {
		httputil.NotFound(w, err.Error())
		return
	}

	maxPoints := s.cfg.GetMaxFieldPoints()
	if raw := r.URL.Query().Get("max_points"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "Invalid 'max_points' parameter")
			return
		}
		maxPoints = parsed
	}

	fg := snap.Field.Downsample(maxPoints)
	httputil.WriteJSONOK(w, FieldResponse{
		Name:         snap.Name,
		Stride:       fg.Stride,
		X:            fg.X,
		Y:            fg.Y,
		Elevations:   fg.Elev,
		BaseOffset:   snap.Field.BaseOffset,
		MaxElevation: snap.Field.MaxElevation(),
	})
}

// showStyle evaluates contour styling for one height. h is a raw height in
// source units; distance is the viewing distance and defaults to the
// reference distance when omitted or non-positive.
func (s *Server) showStyle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	snap, err := s.session.Current()
	if err != nil {
		httputil.NotFound(w, err.Error())
		return
	}

	rawHeight := r.URL.Query().Get("h")
	if rawHeight == "" {
		httputil.BadRequest(w, "Missing 'h' parameter")
		return
	}
	h, err := strconv.ParseFloat(rawHeight, 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		httputil.BadRequest(w, "Invalid 'h' parameter")
		return
	}

	distance := 0.0
	if raw := r.URL.Query().Get("distance"); raw != "" {
		distance, err = strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(distance) || math.IsInf(distance, 0) {
			httputil.BadRequest(w, "Invalid 'distance' parameter")
			return
		}
	}

	httputil.WriteJSONOK(w, snap.Bander.Style(h, distance))
}

// LegendBand is one color band of the legend, bounded by raw heights in
// the configured display units.
type LegendBand struct {
	Band      int     `json:"band"`
	From      float64 `json:"from"`
	To        float64 `json:"to"`
	FromColor string  `json:"from_color"`
	ToColor   string  `json:"to_color"`
}

// LegendResponse describes the contour bands of the active grid for
// rendering a legend without sampling the field.
type LegendResponse struct {
	Units     string       `json:"units"`
	MinHeight float64      `json:"min_height"`
	MaxHeight float64      `json:"max_height"`
	Interval  float64      `json:"interval"`
	LineColor string       `json:"line_color"`
	Bands     []LegendBand `json:"bands"`
}

func (s *Server) showLegend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	snap, err := s.session.Current()
	if err != nil {
		httputil.NotFound(w, err.Error())
		return
	}

	targetUnits := s.cfg.GetUnits()
	stats := snap.Field.Stats
	bandCount := relief.BandCount()

	resp := LegendResponse{
		Units:     targetUnits,
		MinHeight: convertHeight(stats.MinValid, targetUnits),
		MaxHeight: convertHeight(stats.MaxValid, targetUnits),
		Interval:  convertHeight(snap.Bander.Interval, targetUnits),
		LineColor: relief.ContourLineColor.Hex(),
		Bands:     make([]LegendBand, 0, bandCount),
	}
	for i := 0; i < bandCount; i++ {
		lo := float64(i) / float64(bandCount)
		hi := float64(i+1) / float64(bandCount)
		resp.Bands = append(resp.Bands, LegendBand{
			Band:      i,
			From:      convertHeight(stats.MinValid+lo*stats.Range, targetUnits),
			To:        convertHeight(stats.MinValid+hi*stats.Range, targetUnits),
			FromColor: relief.BandColor(lo).Hex(),
			ToColor:   relief.BandColor(hi).Hex(),
		})
	}
	httputil.WriteJSONOK(w, resp)
}

// listHistory returns recent load attempts, newest first. Heights are
// converted to the configured display units; extents stay in source units.
func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.InternalServerError(w, "history storage not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	records, err := s.db.LoadHistory(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load history: %v", err))
		return
	}

	targetUnits := s.cfg.GetUnits()
	for i := range records {
		records[i].MinHeight = convertHeight(records[i].MinHeight, targetUnits)
		records[i].MaxHeight = convertHeight(records[i].MaxHeight, targetUnits)
		records[i].HeightRange = convertHeight(records[i].HeightRange, targetUnits)
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"units":   targetUnits,
		"records": records,
	})
}

// showConfig reports the effective viewer configuration.
func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"height_scale_factor":       s.cfg.GetHeightScaleFactor(),
		"base_offset":               s.cfg.GetBaseOffset(),
		"contour_width_fraction":    s.cfg.GetContourWidthFraction(),
		"reference_distance_factor": s.cfg.GetReferenceDistanceFactor(),
		"view_mode":                 s.cfg.GetViewMode(),
		"units":                     s.cfg.GetUnits(),
		"max_field_points":          s.cfg.GetMaxFieldPoints(),
		"loads":                     s.session.Loads(),
	})
}
