package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/terrain.report/internal/fsutil"
	"github.com/banshee-data/terrain.report/internal/relief"
	"github.com/banshee-data/terrain.report/internal/session"
)

const preloadDoc = `@Grid site
filler
4, 3, 0, 30, 0, 20
@
100 110 120 130
140 150 160 170
180 190 200 220
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", "")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if diff := cmp.Diff(relief.DefaultParams(), cfg.ReliefParams()); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if cfg.GetUnits() != "m" {
		t.Errorf("expected default units m, got %s", cfg.GetUnits())
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.json")
	contents := `{"height_scale_factor": 0.5, "units": "ft", "view_mode": "top"}`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := loadConfig(path, "")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.GetHeightScaleFactor() != 0.5 {
		t.Errorf("expected height scale 0.5, got %v", cfg.GetHeightScaleFactor())
	}
	if cfg.GetUnits() != "ft" {
		t.Errorf("expected units ft, got %s", cfg.GetUnits())
	}
	if cfg.GetViewMode() != "top" {
		t.Errorf("expected view mode top, got %s", cfg.GetViewMode())
	}
}

func TestLoadConfigUnitsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.json")
	if err := os.WriteFile(path, []byte(`{"units": "ft"}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := loadConfig(path, "m")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.GetUnits() != "m" {
		t.Errorf("expected flag to override file units, got %s", cfg.GetUnits())
	}

	if _, err := loadConfig("", "furlongs"); err == nil {
		t.Error("expected error for invalid units override")
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.json"), ""); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestPreloadGrid(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	if err := mem.WriteFile("surveys/site.grd", []byte(preloadDoc), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	sess := session.New(relief.DefaultParams(), nil)
	if err := preloadGrid(sess, mem, "surveys/site.grd"); err != nil {
		t.Fatalf("preloadGrid failed: %v", err)
	}

	snap, err := sess.Current()
	if err != nil {
		t.Fatalf("Current failed after preload: %v", err)
	}
	if snap.Name != "site.grd" {
		t.Errorf("expected snapshot name site.grd, got %s", snap.Name)
	}
	if snap.Source != session.SourceFile {
		t.Errorf("expected source file, got %s", snap.Source)
	}
	if snap.Grid.Header.Columns != 4 || snap.Grid.Header.Rows != 3 {
		t.Errorf("expected 4x3 grid, got %dx%d", snap.Grid.Header.Columns, snap.Grid.Header.Rows)
	}
}

func TestPreloadGridMissingFile(t *testing.T) {
	sess := session.New(relief.DefaultParams(), nil)

	if err := preloadGrid(sess, fsutil.NewMemoryFileSystem(), "absent.grd"); err == nil {
		t.Fatal("expected error for missing file")
	}
	if sess.HasGrid() {
		t.Error("expected no grid after failed preload")
	}
}

func TestPreloadGridMalformed(t *testing.T) {
	mem := fsutil.NewMemoryFileSystem()
	if err := mem.WriteFile("bad.grd", []byte("no terminator here"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	sess := session.New(relief.DefaultParams(), nil)
	if err := preloadGrid(sess, mem, "bad.grd"); err == nil {
		t.Fatal("expected error for malformed document")
	}
	if sess.HasGrid() {
		t.Error("expected no grid after failed preload")
	}
}
