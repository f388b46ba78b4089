package scroll

import (
	"math"
)

// MinimumSliderSize is the smallest slider a track will draw, in pixels.
const MinimumSliderSize = 20

// Track is the geometry of one scrollbar, measured in physical track
// coordinates from the track's start edge.
type Track struct {
	TrackSize    float64
	ScrollExtent float64
	ViewportSize float64
	// Inverted reflects the slider for axes whose sign is negative.
	Inverted bool
}

// SliderSize returns max(MinimumSliderSize, viewport²/extent), never larger
// than the track.
func (t Track) SliderSize() float64 {
	if t.ScrollExtent <= 0 {
		return max(0, t.TrackSize)
	}
	size := max(MinimumSliderSize, math.Floor(t.ViewportSize*t.ViewportSize/t.ScrollExtent))
	return max(0, min(size, t.TrackSize))
}

// Ratio returns slider pixels per scrolled pixel, or 0 when nothing scrolls.
func (t Track) Ratio() float64 {
	den := t.ScrollExtent - t.ViewportSize
	if den <= 0 {
		return 0
	}
	return (t.TrackSize - t.SliderSize()) / den
}

// Travel returns how far the slider can move.
func (t Track) Travel() float64 {
	return max(0, t.TrackSize-t.SliderSize())
}

// SliderOffset returns the slider's start edge for a scroll value.
func (t Track) SliderOffset(scroll float64) float64 {
	off := clamp(scroll*t.Ratio(), 0, t.Travel())
	if t.Inverted {
		return t.Travel() - off
	}
	return off
}

// ScrollFor returns the scroll value that puts the slider's start edge at d.
func (t Track) ScrollFor(d float64) float64 {
	ratio := t.Ratio()
	if ratio <= 0 {
		return 0
	}
	d = clamp(d, 0, t.Travel())
	if t.Inverted {
		d = t.Travel() - d
	}
	return d / ratio
}

// ScrollForPointer returns the scroll value that centers the slider on a
// pointer at track coordinate p.
func (t Track) ScrollForPointer(p float64) float64 {
	return t.ScrollFor(p - t.SliderSize()/2)
}

// HitSlider reports whether track coordinate p falls on the slider.
func (t Track) HitSlider(p, scroll float64) bool {
	off := t.SliderOffset(scroll)
	return p >= off && p < off+t.SliderSize()
}
