package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rcliao/vela/internal/model"
)

var (
	// ErrNoJSON means the reply held no balanced {...} object.
	ErrNoJSON = errors.New("no JSON object in reply")
	// ErrNoLines means the object parsed but yielded no usable line.
	ErrNoLines = errors.New("no usable lines in reply")
)

// MaxLines caps the number of segments taken from a design.
const MaxLines = 3

// Defaults applied to line fields a design leaves out.
const (
	defaultLineColor = "#fff"
	defaultLineDelay = 0.1
)

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// ExtractObject returns the first top-level {...} substring of raw,
// matching braces outside of JSON strings.
func ExtractObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// StripTrailingCommas removes a comma that directly precedes a closing
// brace or bracket. It is the only repair applied to a reply.
func StripTrailingCommas(s string) string {
	return trailingComma.ReplaceAllString(s, "$1")
}

// Parse turns an untrusted designer reply into a reel. The quote is not
// set. Any malformed input beyond trailing commas is an error.
func Parse(raw string) (model.Reel, error) {
	obj, ok := ExtractObject(raw)
	if !ok {
		return model.Reel{}, ErrNoJSON
	}

	var v any
	if err := json.Unmarshal([]byte(StripTrailingCommas(obj)), &v); err != nil {
		return model.Reel{}, fmt.Errorf("parse reply: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return model.Reel{}, ErrNoJSON
	}

	reel := Coerce(m)
	if len(reel.Lines) == 0 {
		return model.Reel{}, ErrNoLines
	}
	return reel, nil
}

// Coerce maps an untyped design object onto the reel shape, filling
// defaults and dropping entries that cannot be rendered.
func Coerce(m map[string]any) model.Reel {
	reel := model.Reel{
		Background: model.DefaultBackground,
		Layout:     model.LayoutKinetic,
		Lines:      []model.LineSegment{},
	}
	if bg, ok := m["bg"].(string); ok && model.IsHexColor(bg) {
		reel.Background = bg
	}
	if l, ok := m["layout"].(string); ok && model.Layout(l).Valid() {
		reel.Layout = model.Layout(l)
	}

	lines, _ := m["lines"].([]any)
	for _, item := range lines {
		if len(reel.Lines) == MaxLines {
			break
		}
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		seg, ok := coerceLine(obj)
		if !ok {
			continue
		}
		reel.Lines = append(reel.Lines, seg)
	}
	return reel
}

func coerceLine(obj map[string]any) (model.LineSegment, bool) {
	text, _ := obj["text"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return model.LineSegment{}, false
	}

	seg := model.LineSegment{
		Text:  strings.ToUpper(text),
		Color: defaultLineColor,
		Size:  model.SizeLarge,
		Delay: defaultLineDelay,
	}
	if c, ok := obj["color"].(string); ok && model.IsHexColor(c) {
		seg.Color = c
	}
	if s, ok := obj["size"].(string); ok && model.Size(s).Valid() {
		seg.Size = model.Size(s)
	}
	if d, ok := obj["delay"].(float64); ok && d > 0 {
		seg.Delay = clamp(d, model.MinDelay, model.MaxDelay)
	}
	return seg, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
