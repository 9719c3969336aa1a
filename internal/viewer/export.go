package viewer

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/banshee-data/terrain.report/internal/security"
)

// exportFilename derives a safe download name from the loaded grid name,
// swapping its extension for ext.
func exportFilename(name, ext string) string {
	base := security.SanitizeFilename(name)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base + ext
}

// handleExportXLSX streams the active grid as a spreadsheet: a summary
// sheet plus the full sample table with null cells left blank.
func (ws *WebServer) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	snap, err := ws.session.Current()
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(snap.Name, ".xlsx")))

	// Headers are already out, so failures here can only be logged
	if err := snap.Grid.WriteXLSX(w, snap.Name, snap.Field.Stats); err != nil {
		log.Printf("xlsx export of %s failed: %v", snap.Name, err)
	}
}

// handleExportGRD re-encodes the active grid in its source text format.
func (ws *WebServer) handleExportGRD(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	snap, err := ws.session.Current()
	if err != nil {
		ws.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(snap.Name, ".grd")))

	if err := snap.Grid.Encode(w, snap.Name); err != nil {
		log.Printf("grd export of %s failed: %v", snap.Name, err)
	}
}
