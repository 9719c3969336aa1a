package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/terrain.report/internal/grid"
	"github.com/banshee-data/terrain.report/internal/relief"
	"github.com/banshee-data/terrain.report/internal/timeutil"
)

const rampDoc = `@Grid ramp
filler
4, 3, 0, 30, 0, 20
@
100 110 120 130
140 150 160 170
180 190 200 220
`

const uniformDoc = `@Grid flat
filler
2, 2, 0, 10, 0, 10
@
5 5
5 5
`

func newTestSession() (*Session, *timeutil.MockClock) {
	clock := timeutil.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return New(relief.DefaultParams(), clock), clock
}

func TestEmptySessionHasNoGrid(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession()
	assert.False(t, s.HasGrid())
	assert.Equal(t, 0, s.Loads())

	_, err := s.Current()
	assert.ErrorIs(t, err, grid.ErrNoGrid)
}

func TestLoadMakesSnapshotCurrent(t *testing.T) {
	t.Parallel()

	s, clock := newTestSession()
	snap, err := s.Load("ramp.grd", SourceUpload, strings.NewReader(rampDoc))
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "ramp.grd", snap.Name)
	assert.Equal(t, SourceUpload, snap.Source)
	assert.Equal(t, clock.Now(), snap.LoadedAt)
	assert.Equal(t, 4, snap.Grid.Header.Columns)
	assert.NotNil(t, snap.Field)
	assert.NotNil(t, snap.Bander)

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, snap, cur)
	assert.True(t, s.HasGrid())
	assert.Equal(t, 1, s.Loads())
}

func TestFailedLoadKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession()
	first, err := s.Load("ramp.grd", SourceUpload, strings.NewReader(rampDoc))
	require.NoError(t, err)

	// A document with a broken header must not disturb the active grid.
	_, err = s.Load("broken.grd", SourceUpload, strings.NewReader("no marker here"))
	require.Error(t, err)
	fe, ok := grid.AsFormatError(err)
	require.True(t, ok, "expected a FormatError, got %v", err)
	assert.Equal(t, grid.ErrMissingTerminator, fe.Kind)

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur)
	assert.Equal(t, 1, s.Loads())
}

func TestFailedNormalizationKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession()
	first, err := s.Load("ramp.grd", SourceUpload, strings.NewReader(rampDoc))
	require.NoError(t, err)

	// Parses fine but cannot normalize: uniform heights.
	_, err = s.Load("flat.grd", SourceRaw, strings.NewReader(uniformDoc))
	fe, ok := grid.AsFormatError(err)
	require.True(t, ok)
	assert.Equal(t, grid.ErrZeroHeightRange, fe.Kind)

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur)
}

func TestLoadReplacesSnapshotWholesale(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession()
	first, err := s.Load("ramp.grd", SourceUpload, strings.NewReader(rampDoc))
	require.NoError(t, err)

	second, err := s.Load("ramp2.grd", SourceFile, strings.NewReader(rampDoc))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, second, cur)
	assert.Equal(t, 2, s.Loads())
}

func TestLoadErrorWrapsName(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession()
	_, err := s.Load("west-face.grd", SourceURL, strings.NewReader("@\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "west-face.grd")

	var fe *grid.FormatError
	assert.True(t, errors.As(err, &fe))
}

func TestLoadDurationUsesClock(t *testing.T) {
	t.Parallel()

	// The mock clock does not advance during Load, so duration is zero;
	// what matters is that the timestamp comes from the injected clock.
	s, clock := newTestSession()
	snap, err := s.Load("ramp.grd", SourceUpload, strings.NewReader(rampDoc))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), snap.Duration)
	assert.Equal(t, clock.Now(), snap.LoadedAt)
}

func TestConcurrentReadsDuringLoads(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession()
	_, err := s.Load("ramp.grd", SourceUpload, strings.NewReader(rampDoc))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			_, _ = s.Load("ramp.grd", SourceUpload, strings.NewReader(rampDoc))
		}
		close(done)
	}()
	for i := 0; i < 200; i++ {
		snap, err := s.Current()
		require.NoError(t, err)
		require.NotNil(t, snap.Field)
	}
	<-done
}
