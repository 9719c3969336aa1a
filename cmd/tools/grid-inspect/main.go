// Package main provides an offline inspection tool for grid elevation
// documents. It parses a document, prints its summary, and can produce the
// same contour PNG and exports the viewer serves, without running a server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/terrain.report/internal/config"
	"github.com/banshee-data/terrain.report/internal/grid"
	"github.com/banshee-data/terrain.report/internal/relief"
	"github.com/banshee-data/terrain.report/internal/session"
	"github.com/banshee-data/terrain.report/internal/units"
	"github.com/banshee-data/terrain.report/internal/viewer"
)

// Config holds the inspection options.
type Config struct {
	ConfigFile string
	Units      string
	JSON       bool
	Verbose    bool
	PNGOut     string
	XLSXOut    string
	GRDOut     string
	Width      int
	Height     int
}

// Report is the JSON shape of an inspection run. Height statistics and the
// contour interval are converted to the requested display units; extents and
// the rendering scalars stay in source units.
type Report struct {
	Name            string      `json:"name"`
	Units           string      `json:"units"`
	Header          grid.Header `json:"header"`
	Stats           grid.Stats  `json:"stats"`
	Span            float64     `json:"span"`
	VerticalScale   float64     `json:"vertical_scale"`
	BaseOffset      float64     `json:"base_offset"`
	MaxElevation    float64     `json:"max_elevation"`
	ContourInterval float64     `json:"contour_interval"`
	Bands           int         `json:"bands"`
}

func main() {
	cfg, path := parseFlags()
	if path == "" {
		log.Fatal("usage: grid-inspect [flags] <document>")
	}

	viewerCfg, err := loadConfig(cfg.ConfigFile, cfg.Units)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	sess := session.New(viewerCfg.ReliefParams(), nil)
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open document: %v", err)
	}
	snap, err := sess.Load(filepath.Base(path), session.SourceFile, f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to load %s: %v", path, err)
	}

	rep := buildReport(snap, viewerCfg.GetUnits())
	if cfg.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
	} else {
		printReport(rep)
		if cfg.Verbose {
			printNullCells(snap.Field.Stats)
		}
	}

	if err := writeOutputs(cfg, snap); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}

func parseFlags() (Config, string) {
	cfg := Config{}

	flag.StringVar(&cfg.ConfigFile, "config", "", "Path to a viewer configuration JSON file")
	flag.StringVar(&cfg.Units, "units", "", "Display units override: m or ft")
	flag.BoolVar(&cfg.JSON, "json", false, "Print the summary as JSON")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "List null cell locations")
	flag.StringVar(&cfg.PNGOut, "png", "", "Write a contour PNG to this path")
	flag.StringVar(&cfg.XLSXOut, "xlsx", "", "Write a spreadsheet export to this path")
	flag.StringVar(&cfg.GRDOut, "grd", "", "Re-encode the document to this path")
	flag.IntVar(&cfg.Width, "width", 800, "Contour PNG width in pixels")
	flag.IntVar(&cfg.Height, "height", 600, "Contour PNG height in pixels")

	flag.Parse()

	return cfg, flag.Arg(0)
}

func loadConfig(path, unitsOverride string) (*config.ViewerConfig, error) {
	cfg := config.EmptyViewerConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadViewerConfig(path)
		if err != nil {
			return nil, err
		}
	}
	if unitsOverride != "" {
		cfg.Units = &unitsOverride
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func buildReport(snap *session.Snapshot, targetUnits string) Report {
	st := *snap.Field.Stats
	st.MinValid = units.ConvertElevation(st.MinValid, targetUnits)
	st.MaxValid = units.ConvertElevation(st.MaxValid, targetUnits)
	st.Range = units.ConvertElevation(st.Range, targetUnits)
	st.P50 = units.ConvertElevation(st.P50, targetUnits)
	st.P85 = units.ConvertElevation(st.P85, targetUnits)
	st.P98 = units.ConvertElevation(st.P98, targetUnits)

	return Report{
		Name:            snap.Name,
		Units:           targetUnits,
		Header:          snap.Grid.Header,
		Stats:           st,
		Span:            snap.Field.Span,
		VerticalScale:   snap.Field.VerticalScale,
		BaseOffset:      snap.Field.BaseOffset,
		MaxElevation:    snap.Field.MaxElevation(),
		ContourInterval: units.ConvertElevation(snap.Bander.Interval, targetUnits),
		Bands:           relief.BandCount(),
	}
}

func printReport(rep Report) {
	h := rep.Header
	fmt.Printf("=== %s ===\n", rep.Name)
	fmt.Printf("Dimensions: %d x %d (%d cells)\n", h.Columns, h.Rows, h.CellCount())
	fmt.Printf("Extents: x %g..%g, y %g..%g (step %g x %g)\n",
		h.XMin, h.XMax, h.YMin, h.YMax, h.XStep(), h.YStep())
	fmt.Printf("Samples: %d valid, %d null\n", rep.Stats.ValidCount, rep.Stats.NullCount)
	fmt.Printf("Heights: %.2f to %.2f %s (range %.2f)\n",
		rep.Stats.MinValid, rep.Stats.MaxValid, rep.Units, rep.Stats.Range)
	fmt.Printf("Percentiles: p50 %.2f, p85 %.2f, p98 %.2f\n",
		rep.Stats.P50, rep.Stats.P85, rep.Stats.P98)
	fmt.Printf("Contours: interval %.2f %s, %d color bands\n",
		rep.ContourInterval, rep.Units, rep.Bands)
	fmt.Printf("Rendering: vertical scale %.4g, span %g, base offset %g\n",
		rep.VerticalScale, rep.Span, rep.BaseOffset)
}

// printNullCells lists where the null samples sit, capped at 20 locations.
func printNullCells(st *grid.Stats) {
	if len(st.NullCells) == 0 {
		return
	}
	fmt.Println("\n--- Null Cells ---")
	for i, c := range st.NullCells {
		if i == 20 {
			fmt.Printf("... and %d more\n", len(st.NullCells)-i)
			break
		}
		fmt.Printf("row %d, col %d\n", c.Row, c.Col)
	}
}

func writeOutputs(cfg Config, snap *session.Snapshot) error {
	if cfg.PNGOut != "" {
		err := writeFile(cfg.PNGOut, func(f *os.File) error {
			return viewer.WriteContourPNG(f, snap, cfg.Width, cfg.Height)
		})
		if err != nil {
			return fmt.Errorf("contour png: %w", err)
		}
		log.Printf("Wrote contour PNG to %s", cfg.PNGOut)
	}
	if cfg.XLSXOut != "" {
		err := writeFile(cfg.XLSXOut, func(f *os.File) error {
			return snap.Grid.WriteXLSX(f, snap.Name, snap.Field.Stats)
		})
		if err != nil {
			return fmt.Errorf("spreadsheet: %w", err)
		}
		log.Printf("Wrote spreadsheet to %s", cfg.XLSXOut)
	}
	if cfg.GRDOut != "" {
		err := writeFile(cfg.GRDOut, func(f *os.File) error {
			return snap.Grid.Encode(f, snap.Name)
		})
		if err != nil {
			return fmt.Errorf("grid export: %w", err)
		}
		log.Printf("Wrote grid document to %s", cfg.GRDOut)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
