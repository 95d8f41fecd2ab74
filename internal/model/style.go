package model

import "regexp"

// Style presets offered to the layout designer.
const (
	PresetKineticType = "Kinetic Type"
	PresetStamp       = "Stamp"
	PresetMinimal     = "Minimal"
)

// Presets lists the style presets in display order.
var Presets = []string{PresetKineticType, PresetStamp, PresetMinimal}

// Accent swatches.
const (
	AccentLime   = "#d4f73c"
	AccentCoral  = "#ff6b4a"
	AccentSky    = "#38bdf8"
	AccentViolet = "#a78bfa"
	AccentWhite  = "#ffffff"
)

// Accents lists the accent swatches in display order.
var Accents = []string{AccentLime, AccentCoral, AccentSky, AccentViolet, AccentWhite}

// Fonts lists the display fonts.
var Fonts = []string{"Bebas Neue", "Impact", "Georgia"}

// Ratio is a preview box aspect ratio. Width and Height are CSS pixels.
type Ratio struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Ratios maps ratio names to preview box dimensions.
var Ratios = map[string]Ratio{
	"9:16": {Name: "9:16", Width: 230, Height: 409},
	"16:9": {Name: "16:9", Width: 500, Height: 281},
	"1:1":  {Name: "1:1", Width: 300, Height: 300},
}

// ValidPresets are the allowed preset names.
var ValidPresets = map[string]bool{
	PresetKineticType: true,
	PresetStamp:       true,
	PresetMinimal:     true,
}

// ValidFonts are the allowed font names.
var ValidFonts = map[string]bool{
	"Bebas Neue": true,
	"Impact":     true,
	"Georgia":    true,
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// IsHexColor reports whether s is a #rgb, #rrggbb or #rrggbbaa color.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}
