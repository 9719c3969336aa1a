package relief

import "math"

// Style is the paint decision for one height at one viewing distance.
type Style struct {
	Height     float64 `json:"height"`
	Normalized float64 `json:"normalized"`
	Band       int     `json:"band"`
	Color      string  `json:"color"`
	IsContour  bool    `json:"is_contour"`
	Width      float64 `json:"width"`
	Distance   float64 `json:"distance"`
}

// Bander evaluates contour styling against one height field. All methods
// are pure; the viewer calls them per cell and per style query.
type Bander struct {
	// Interval is the raw height between contour lines, Range/20.
	Interval float64

	// BaseWidth is the contour line half-thickness (in raw height units)
	// at the reference distance.
	BaseWidth float64

	// ReferenceDistance is the distance at which lines render at BaseWidth.
	ReferenceDistance float64

	minValid float64
	rng      float64
}

// Bander returns the contour evaluator for f.
func (f *HeightField) Bander() *Bander {
	interval := f.Stats.Range / contourDivisions
	return &Bander{
		Interval:          interval,
		BaseWidth:         interval * f.params.ContourWidthFraction,
		ReferenceDistance: f.ReferenceDistance,
		minValid:          f.Stats.MinValid,
		rng:               f.Stats.Range,
	}
}

// WidthAt scales the base contour width linearly with viewing distance so
// lines keep a near-constant screen thickness as the camera moves. A
// non-positive distance means "at the reference distance".
func (b *Bander) WidthAt(distance float64) float64 {
	if distance <= 0 || math.IsNaN(distance) {
		return b.BaseWidth
	}
	return b.BaseWidth * (distance / b.ReferenceDistance)
}

// IsContour reports whether a raw height lands on a contour line when viewed
// from the given distance. A height is on a line when its position within
// the contour interval sits within the line width of either interval edge.
func (b *Bander) IsContour(h, distance float64) bool {
	w := b.WidthAt(distance)
	m := flooredMod(h, b.Interval)
	return m < w || m > b.Interval-w
}

// Normalized maps a raw height to its position in the color ramp.
func (b *Bander) Normalized(h float64) float64 {
	return clamp01((h - b.minValid) / b.rng)
}

// Style evaluates the full paint decision for one raw height at one viewing
// distance. Contour cells take the fixed line color; everything else takes
// its band color.
func (b *Bander) Style(h, distance float64) Style {
	n := b.Normalized(h)
	s := Style{
		Height:     h,
		Normalized: n,
		Band:       BandIndex(n),
		Width:      b.WidthAt(distance),
		Distance:   distance,
	}
	if b.IsContour(h, distance) {
		s.IsContour = true
		s.Color = ContourLineColor.Hex()
		return s
	}
	s.Color = BandColor(n).Hex()
	return s
}

// flooredMod reduces v into [0, m) for positive m, treating negative
// heights the same as positive ones so banding stays periodic below zero.
func flooredMod(v, m float64) float64 {
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}
