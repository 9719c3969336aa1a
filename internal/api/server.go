// Package api serves the JSON endpoints for loading grid documents and
// querying the active height field. Handlers read the session snapshot,
// never the loader internals, so a slow upload cannot block style or
// field queries against the previous grid.
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/terrain.report/internal/config"
	"github.com/banshee-data/terrain.report/internal/db"
	"github.com/banshee-data/terrain.report/internal/grid"
	"github.com/banshee-data/terrain.report/internal/httputil"
	"github.com/banshee-data/terrain.report/internal/session"
	"github.com/banshee-data/terrain.report/internal/units"
)

// ANSI color codes for request logging
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// Unit conversion for height quantities at the JSON boundary. Grid
// documents carry heights in metres; horizontal extents are reported in
// source units regardless of the configured display units.
func convertHeight(h float64, targetUnits string) float64 {
	return units.ConvertElevation(h, targetUnits)
}

// Server holds the handler dependencies. db may be nil (history disabled,
// as in the grid-inspect tool); cfg and client get working defaults.
type Server struct {
	session *session.Session
	db      *db.DB
	cfg     *config.ViewerConfig
	client  httputil.HTTPClient
}

func NewServer(sess *session.Session, database *db.DB, cfg *config.ViewerConfig, client httputil.HTTPClient) *Server {
	if cfg == nil {
		cfg = config.EmptyViewerConfig()
	}
	if client == nil {
		client = httputil.NewStandardClient(nil)
	}
	return &Server{session: sess, db: database, cfg: cfg, client: client}
}

// loggingResponseWriter wraps http.ResponseWriter to capture the status code
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it
func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorBoldGreen + "OK" + colorReset
	case code >= 400:
		return colorBoldRed + "ERR" + colorReset
	default:
		return colorYellow + "??" + colorReset
	}
}

// LoggingMiddleware logs all HTTP requests with method, path, status and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf("[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode),
			r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6)
	})
}

// ServeMux returns the API routes. Paths are relative so the caller can
// mount the mux under a prefix (the terrain binary uses /api/).
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/grid", s.handleGrid)
	mux.HandleFunc("/grid/fetch", s.fetchGrid)
	mux.HandleFunc("/grid/field", s.showField)
	mux.HandleFunc("/grid/style", s.showStyle)
	mux.HandleFunc("/grid/legend", s.showLegend)
	mux.HandleFunc("/history", s.listHistory)
	mux.HandleFunc("/config", s.showConfig)
	return mux
}

// GridSummary is the JSON shape of the active grid, returned by both the
// load endpoints and GET /grid. Height statistics and the contour interval
// are converted to the configured display units; extents and the rendering
// scalars (vertical scale, span, base offset) stay in source units because
// the viewer consumes them raw.
type GridSummary struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Source          string      `json:"source"`
	LoadedAt        time.Time   `json:"loaded_at"`
	DurationMs      int64       `json:"duration_ms"`
	Units           string      `json:"units"`
	Header          grid.Header `json:"header"`
	Stats           grid.Stats  `json:"stats"`
	Span            float64     `json:"span"`
	VerticalScale   float64     `json:"vertical_scale"`
	BaseOffset      float64     `json:"base_offset"`
	MaxElevation    float64     `json:"max_elevation"`
	ContourInterval float64     `json:"contour_interval"`
}

func (s *Server) summarize(snap *session.Snapshot) GridSummary {
	targetUnits := s.cfg.GetUnits()

	stats := *snap.Field.Stats
	stats.MinValid = convertHeight(stats.MinValid, targetUnits)
	stats.MaxValid = convertHeight(stats.MaxValid, targetUnits)
	stats.Range = convertHeight(stats.Range, targetUnits)
	stats.P50 = convertHeight(stats.P50, targetUnits)
	stats.P85 = convertHeight(stats.P85, targetUnits)
	stats.P98 = convertHeight(stats.P98, targetUnits)

	return GridSummary{
		ID:              snap.ID,
		Name:            snap.Name,
		Source:          snap.Source,
		LoadedAt:        snap.LoadedAt,
		DurationMs:      snap.Duration.Milliseconds(),
		Units:           targetUnits,
		Header:          snap.Grid.Header,
		Stats:           stats,
		Span:            snap.Field.Span,
		VerticalScale:   snap.Field.VerticalScale,
		BaseOffset:      snap.Field.BaseOffset,
		MaxElevation:    snap.Field.MaxElevation(),
		ContourInterval: convertHeight(snap.Bander.Interval, targetUnits),
	}
}

// writeLoadError maps a load failure onto the wire. Malformed documents get
// 422 with the machine-readable kind; anything else (read errors mid-body)
// is a 400.
func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	if ferr, ok := grid.AsFormatError(err); ok {
		resp := map[string]interface{}{
			"error": ferr.Error(),
			"kind":  string(ferr.Kind),
		}
		if ferr.Kind == grid.ErrCountMismatch {
			resp["expected"] = ferr.Expected
			resp["actual"] = ferr.Actual
		}
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	httputil.BadRequest(w, err.Error())
}

// recordLoad writes one history row per load attempt. History is best
// effort: a database error is logged and the HTTP response is unaffected.
func (s *Server) recordLoad(name, source string, snap *session.Snapshot, loadErr error) {
	if s.db == nil {
		return
	}

	rec := &db.LoadRecord{Name: name, Source: source}
	if loadErr != nil {
		rec.ID = uuid.New().String()
		rec.Outcome = db.LoadOutcomeError
		detail := loadErr.Error()
		rec.ErrorDetail = &detail
		if ferr, ok := grid.AsFormatError(loadErr); ok {
			kind := string(ferr.Kind)
			rec.ErrorKind = &kind
		}
	} else {
		header := snap.Grid.Header
		stats := snap.Field.Stats
		rec.ID = snap.ID
		rec.Outcome = db.LoadOutcomeOK
		rec.Columns = header.Columns
		rec.Rows = header.Rows
		rec.XMin, rec.XMax = header.XMin, header.XMax
		rec.YMin, rec.YMax = header.YMin, header.YMax
		rec.MinHeight = stats.MinValid
		rec.MaxHeight = stats.MaxValid
		rec.HeightRange = stats.Range
		rec.ValidCells = stats.ValidCount
		rec.NullCells = stats.NullCount
		rec.DurationMs = snap.Duration.Milliseconds()
		rec.LoadedAt = snap.LoadedAt
	}

	if err := s.db.RecordLoad(rec); err != nil {
		log.Printf("failed to record load history: %v", err)
	}
}
