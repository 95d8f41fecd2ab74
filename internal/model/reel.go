// Package model defines the core reel data types.
package model

// Quote is one cleaned input line. See normalize.Quotes.
type Quote = string

// Size is the type scale of a line segment.
type Size string

const (
	SizeLarge  Size = "large"
	SizeMedium Size = "medium"
	SizeSmall  Size = "small"
)

// Valid reports whether s is a known size.
func (s Size) Valid() bool {
	return s == SizeLarge || s == SizeMedium || s == SizeSmall
}

// Layout is the animation style of a reel.
type Layout string

const (
	// LayoutKinetic slides lines up from below, staggered by delay.
	LayoutKinetic Layout = "kinetic"
	// LayoutStamp scales and rotates lines in, staggered by delay.
	LayoutStamp Layout = "stamp"
)

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	return l == LayoutKinetic || l == LayoutStamp
}

// Delay bounds for a line segment, in seconds.
const (
	MinDelay = 0.08
	MaxDelay = 0.5
)

// Default colors used when a layout omits them.
const (
	DefaultBackground = "#000"
	White             = "#ffffff"
	Muted             = "#7878a0"
)

// LineSegment is one animated line of text within a reel.
type LineSegment struct {
	Text  string  `json:"text"`
	Color string  `json:"color"`
	Size  Size    `json:"size"`
	Delay float64 `json:"delay"`
}

// Reel is one generated text card for one quote.
type Reel struct {
	Background string        `json:"bg"`
	Layout     Layout        `json:"layout"`
	Lines      []LineSegment `json:"lines"`
	Quote      Quote         `json:"quote"`
}

// Clone returns a copy of r that shares no memory with it.
func (r Reel) Clone() Reel {
	c := r
	c.Lines = append([]LineSegment(nil), r.Lines...)
	return c
}
