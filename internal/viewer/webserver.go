// Package viewer serves the browser-facing side of the terrain server: the
// status page, the interactive chart pages, the static contour render and
// the grid export downloads. The JSON API lives in internal/api and is
// mounted here under /api/.
package viewer

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/banshee-data/terrain.report/internal/api"
	"github.com/banshee-data/terrain.report/internal/config"
	"github.com/banshee-data/terrain.report/internal/db"
	"github.com/banshee-data/terrain.report/internal/session"
	"github.com/banshee-data/terrain.report/internal/units"
	"github.com/banshee-data/terrain.report/internal/version"
)

//go:embed status.html
var StatusHTML embed.FS

// WebServer handles the HTTP interface for the terrain viewer
// It serves the status page, the chart endpoints and the export downloads
type WebServer struct {
	address   string
	session   *session.Session
	cfg       *config.ViewerConfig
	db        *db.DB
	api       *api.Server
	server    *http.Server
	dbPath    string
	startTime time.Time
}

// WebServerConfig contains configuration options for the web server
type WebServerConfig struct {
	Address string
	Session *session.Session
	Config  *config.ViewerConfig
	DB      *db.DB
	API     *api.Server
	DBPath  string
}

// NewWebServer creates a new web server with the provided configuration
func NewWebServer(conf WebServerConfig) *WebServer {
	ws := &WebServer{
		address:   conf.Address,
		session:   conf.Session,
		cfg:       conf.Config,
		db:        conf.DB,
		api:       conf.API,
		dbPath:    conf.DBPath,
		startTime: time.Now(),
	}
	if ws.cfg == nil {
		ws.cfg = config.EmptyViewerConfig()
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown
func (ws *WebServer) Start(ctx context.Context) error {
	// Start server in a goroutine so it doesn't block
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for context cancellation to shut down server
	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	// Create a shutdown context with a shorter timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		// Force close the server if graceful shutdown fails
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleStatus)
	mux.HandleFunc("/viewer/", ws.handleViewerIndex)
	mux.HandleFunc("/viewer/surface", ws.handleSurfaceChart)
	mux.HandleFunc("/viewer/top", ws.handleTopChart)
	mux.HandleFunc("/viewer/contour.png", ws.handleContourPNG)
	mux.HandleFunc("/viewer/export.xlsx", ws.handleExportXLSX)
	mux.HandleFunc("/viewer/export.grd", ws.handleExportGRD)

	if ws.api != nil {
		mux.Handle("/api/", http.StripPrefix("/api", api.LoggingMiddleware(ws.api.ServeMux())))
	}
	if ws.db != nil {
		ws.db.AttachAdminRoutes(mux)
	}

	return mux
}

// handleHealth handles the health check endpoint
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "terrain", "timestamp": "%s"}`, time.Now().UTC().Format(time.RFC3339))
}

// handleViewerIndex redirects /viewer/ to the configured view mode
func (ws *WebServer) handleViewerIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/viewer/" {
		http.NotFound(w, r)
		return
	}

	target := "/viewer/surface"
	if ws.cfg.GetViewMode() == config.ViewModeTop {
		target = "/viewer/top"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// handleStatus handles the main status page endpoint
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")

	// Load and parse the HTML template from embedded filesystem
	tmpl, err := template.ParseFS(StatusHTML, "status.html")
	if err != nil {
		http.Error(w, "Error loading template: "+err.Error(), http.StatusInternalServerError)
		return
	}

	type gridStatus struct {
		Name     string
		Source   string
		Columns  int
		Rows     int
		MinValid string
		MaxValid string
		Interval string
		LoadedAt string
	}

	// Template data
	data := struct {
		Version      string
		HTTPAddress  string
		DBPath       string
		Units        string
		ViewMode     string
		Uptime       string
		SessionLoads int
		HasDB        bool
		TotalLoads   int
		Succeeded    int
		Failed       int
		Grid         *gridStatus
	}{
		Version:      version.Version,
		HTTPAddress:  ws.address,
		DBPath:       ws.dbPath,
		Units:        ws.cfg.GetUnits(),
		ViewMode:     ws.cfg.GetViewMode(),
		Uptime:       time.Since(ws.startTime).Round(time.Second).String(),
		SessionLoads: ws.session.Loads(),
		HasDB:        ws.db != nil,
	}

	if ws.db != nil {
		if total, succeeded, failed, err := ws.db.LoadCounts(); err == nil {
			data.TotalLoads, data.Succeeded, data.Failed = total, succeeded, failed
		}
	}

	if snap, err := ws.session.Current(); err == nil {
		st := snap.Field.Stats
		data.Grid = &gridStatus{
			Name:     snap.Name,
			Source:   snap.Source,
			Columns:  snap.Grid.Header.Columns,
			Rows:     snap.Grid.Header.Rows,
			MinValid: ws.formatHeight(st.MinValid),
			MaxValid: ws.formatHeight(st.MaxValid),
			Interval: ws.formatHeight(snap.Bander.Interval),
			LoadedAt: snap.LoadedAt.UTC().Format(time.RFC3339),
		}
	}

	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Error executing template: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// formatHeight renders a native height in the configured display units
func (ws *WebServer) formatHeight(h float64) string {
	u := ws.cfg.GetUnits()
	return fmt.Sprintf("%.2f %s", units.ConvertElevation(h, u), u)
}

// Close shuts down the web server
func (ws *WebServer) Close() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}
