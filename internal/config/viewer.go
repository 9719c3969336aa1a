package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/terrain.report/internal/relief"
	"github.com/banshee-data/terrain.report/internal/units"
)

// View modes the HTML viewer can start in.
const (
	ViewMode3D  = "3d"
	ViewModeTop = "top"
)

// ViewerConfig is the root configuration for normalization and viewer
// behavior. The schema matches the /api/config endpoint so the same JSON
// serves startup configuration and runtime inspection. Fields are pointers
// so a partial file only overrides what it names; the Get* methods supply
// defaults for the rest.
type ViewerConfig struct {
	// Normalization params
	HeightScaleFactor       *float64 `json:"height_scale_factor,omitempty"`
	BaseOffset              *float64 `json:"base_offset,omitempty"`
	ContourWidthFraction    *float64 `json:"contour_width_fraction,omitempty"`
	ReferenceDistanceFactor *float64 `json:"reference_distance_factor,omitempty"`

	// Viewer params
	ViewMode       *string `json:"view_mode,omitempty"`
	Units          *string `json:"units,omitempty"`
	MaxFieldPoints *int    `json:"max_field_points,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyViewerConfig returns a ViewerConfig with all fields set to nil.
func EmptyViewerConfig() *ViewerConfig {
	return &ViewerConfig{}
}

// LoadViewerConfig loads a ViewerConfig from a JSON file. The file must
// have a .json extension and stay under the max file size. Fields omitted
// from the JSON keep their defaults, so partial configs are safe.
func LoadViewerConfig(path string) (*ViewerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyViewerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that any set fields hold usable values.
func (c *ViewerConfig) Validate() error {
	if c.HeightScaleFactor != nil {
		if *c.HeightScaleFactor < 0.05 || *c.HeightScaleFactor > 1.0 {
			return fmt.Errorf("height_scale_factor must be between 0.05 and 1.0, got %f", *c.HeightScaleFactor)
		}
	}
	if c.ContourWidthFraction != nil {
		if *c.ContourWidthFraction <= 0 || *c.ContourWidthFraction >= 0.5 {
			return fmt.Errorf("contour_width_fraction must be in (0, 0.5), got %f", *c.ContourWidthFraction)
		}
	}
	if c.ReferenceDistanceFactor != nil {
		if *c.ReferenceDistanceFactor <= 0 {
			return fmt.Errorf("reference_distance_factor must be positive, got %f", *c.ReferenceDistanceFactor)
		}
	}
	if c.ViewMode != nil {
		if *c.ViewMode != ViewMode3D && *c.ViewMode != ViewModeTop {
			return fmt.Errorf("view_mode must be %q or %q, got %q", ViewMode3D, ViewModeTop, *c.ViewMode)
		}
	}
	if c.Units != nil {
		if !units.IsValid(*c.Units) {
			return fmt.Errorf("units must be one of %s, got %q", units.GetValidUnitsString(), *c.Units)
		}
	}
	if c.MaxFieldPoints != nil {
		if *c.MaxFieldPoints < 100 {
			return fmt.Errorf("max_field_points must be at least 100, got %d", *c.MaxFieldPoints)
		}
	}
	return nil
}

// GetHeightScaleFactor returns the height_scale_factor value or the default.
func (c *ViewerConfig) GetHeightScaleFactor() float64 {
	if c.HeightScaleFactor == nil {
		return 0.25 // default
	}
	return *c.HeightScaleFactor
}

// GetBaseOffset returns the base_offset value or the default.
func (c *ViewerConfig) GetBaseOffset() float64 {
	if c.BaseOffset == nil {
		return 0
	}
	return *c.BaseOffset
}

// GetContourWidthFraction returns the contour_width_fraction value or the default.
func (c *ViewerConfig) GetContourWidthFraction() float64 {
	if c.ContourWidthFraction == nil {
		return 0.05
	}
	return *c.ContourWidthFraction
}

// GetReferenceDistanceFactor returns the reference_distance_factor value or the default.
func (c *ViewerConfig) GetReferenceDistanceFactor() float64 {
	if c.ReferenceDistanceFactor == nil {
		return 1.5
	}
	return *c.ReferenceDistanceFactor
}

// GetViewMode returns the view_mode value or the default.
func (c *ViewerConfig) GetViewMode() string {
	if c.ViewMode == nil {
		return ViewMode3D
	}
	return *c.ViewMode
}

// GetUnits returns the units value or the default.
func (c *ViewerConfig) GetUnits() string {
	if c.Units == nil {
		return units.Meters
	}
	return *c.Units
}

// GetMaxFieldPoints returns the max_field_points value or the default.
func (c *ViewerConfig) GetMaxFieldPoints() int {
	if c.MaxFieldPoints == nil {
		return 10000
	}
	return *c.MaxFieldPoints
}

// ReliefParams bridges the configured values into normalization parameters.
func (c *ViewerConfig) ReliefParams() relief.Params {
	return relief.Params{
		HeightScale:             c.GetHeightScaleFactor(),
		BaseOffset:              c.GetBaseOffset(),
		ContourWidthFraction:    c.GetContourWidthFraction(),
		ReferenceDistanceFactor: c.GetReferenceDistanceFactor(),
	}
}
