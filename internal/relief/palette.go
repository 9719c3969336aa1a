package relief

import (
	"fmt"
	"image/color"
	"math"
)

// RGB is a color with channels in [0, 1].
type RGB struct {
	R, G, B float64
}

// Hex returns the #rrggbb form used by the HTML viewer.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channelByte(c.R), channelByte(c.G), channelByte(c.B))
}

// RGBA implements color.Color so palette consumers can use RGB directly.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: channelByte(c.R), G: channelByte(c.G), B: channelByte(c.B), A: 0xff}.RGBA()
}

func channelByte(v float64) uint8 {
	v = clamp01(v)
	return uint8(math.Round(v * 255))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// The elevation ramp: five bands between six anchors, thresholds at every
// 0.2 of the normalized height. Low ground sits in water blues, mid slopes
// in vegetation greens, high ground washes out toward pale rock.
var bandAnchors = [...]RGB{
	{0.05, 0.05, 0.35}, // deep blue
	{0.00, 0.75, 0.85}, // cyan
	{0.10, 0.60, 0.15}, // green
	{0.85, 0.55, 0.10}, // orange
	{0.95, 0.90, 0.55}, // pale yellow
	{0.99, 0.97, 0.85}, // cream
}

// bandCount is the number of color bands in the ramp.
const bandCount = len(bandAnchors) - 1

// BandCount reports how many color bands the ramp has.
func BandCount() int {
	return bandCount
}

// ContourLineColor is the fixed dark color contour lines render in.
var ContourLineColor = RGB{0.16, 0.16, 0.16}

// BandIndex returns which color band a normalized height falls in, 0
// through bandCount-1. Inputs outside [0, 1] clamp to the end bands.
func BandIndex(normalized float64) int {
	n := clamp01(normalized)
	idx := int(n * bandCount)
	if idx >= bandCount {
		idx = bandCount - 1
	}
	return idx
}

// BandColor interpolates the ramp at a normalized height. Within each band
// the channels lerp linearly between the band's two anchors.
func BandColor(normalized float64) RGB {
	n := clamp01(normalized)
	idx := BandIndex(n)
	lo := bandAnchors[idx]
	hi := bandAnchors[idx+1]
	t := n*float64(bandCount) - float64(idx)
	return RGB{
		R: lo.R + (hi.R-lo.R)*t,
		G: lo.G + (hi.G-lo.G)*t,
		B: lo.B + (hi.B-lo.B)*t,
	}
}

// RampColors samples the band ramp at n evenly spaced normalized heights,
// for renderers that want a discrete palette.
func RampColors(n int) []color.Color {
	if n < 2 {
		n = 2
	}
	out := make([]color.Color, n)
	for i := 0; i < n; i++ {
		out[i] = BandColor(float64(i) / float64(n-1))
	}
	return out
}

// RampHex samples the band ramp as #rrggbb strings for the HTML charts.
func RampHex(n int) []string {
	if n < 2 {
		n = 2
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = BandColor(float64(i) / float64(n-1)).Hex()
	}
	return out
}
