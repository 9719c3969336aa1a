// Package session owns the active terrain snapshot. One grid is live at a
// time; a successful load replaces it wholesale and a failed load leaves it
// untouched, so readers always see a complete surface.
package session

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/terrain.report/internal/grid"
	"github.com/banshee-data/terrain.report/internal/monitoring"
	"github.com/banshee-data/terrain.report/internal/relief"
	"github.com/banshee-data/terrain.report/internal/timeutil"
)

// Load sources recorded on snapshots and history rows.
const (
	SourceUpload = "upload"
	SourceRaw    = "raw"
	SourceFile   = "file"
	SourceURL    = "url"
)

// Snapshot is one successfully loaded grid with its normalized height field
// and contour evaluator. Snapshots are immutable; the session swaps the
// pointer under its lock.
type Snapshot struct {
	ID       string
	Name     string
	Source   string
	LoadedAt time.Time
	Duration time.Duration

	Grid   *grid.Grid
	Field  *relief.HeightField
	Bander *relief.Bander
}

// Session guards the active snapshot. HTTP handlers read it concurrently
// with loads; one writer at a time, and readers see either the old or the
// new complete snapshot, never a partial one.
type Session struct {
	mu      sync.RWMutex
	clock   timeutil.Clock
	params  relief.Params
	current *Snapshot
	loads   int
}

// New creates an empty session. A nil clock means wall-clock time.
func New(params relief.Params, clock timeutil.Clock) *Session {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Session{clock: clock, params: params}
}

// Params returns the normalization parameters loads run with.
func (s *Session) Params() relief.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Load parses one document from r, normalizes it, and makes it the active
// snapshot. On any failure the previous snapshot stays active and the error
// describes the first fatal problem.
func (s *Session) Load(name, source string, r io.Reader) (*Snapshot, error) {
	start := s.clock.Now()

	g, err := grid.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}

	s.mu.Lock()
	params := s.params
	s.mu.Unlock()

	field, err := relief.Normalize(g, params)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}

	snap := &Snapshot{
		ID:       uuid.New().String(),
		Name:     name,
		Source:   source,
		LoadedAt: start,
		Duration: s.clock.Since(start),
		Grid:     g,
		Field:    field,
		Bander:   field.Bander(),
	}

	s.mu.Lock()
	s.current = snap
	s.loads++
	s.mu.Unlock()

	monitoring.Logf("session: loaded %q (%s): %dx%d cells, range %.2f, %d null",
		name, source, g.Header.Columns, g.Header.Rows,
		field.Stats.Range, field.Stats.NullCount)
	return snap, nil
}

// Current returns the active snapshot, or grid.ErrNoGrid before the first
// successful load.
func (s *Session) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, grid.ErrNoGrid
	}
	return s.current, nil
}

// HasGrid reports whether any load has succeeded.
func (s *Session) HasGrid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Loads returns the number of successful loads this session has served.
func (s *Session) Loads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads
}
