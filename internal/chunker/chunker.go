// Package chunker splits a quote into animated line segments without AI.
package chunker

import (
	"strings"

	"github.com/rcliao/vela/internal/model"
)

// Word-count tiers.
const (
	MaxWordsPerWord = 3 // at or below: one segment per word
	MaxWordsHalves  = 6 // at or below: two halves; above: thirds
)

// Delays for the halves and thirds tiers.
var (
	halvesDelays = []float64{0.08, 0.26}
	thirdsDelays = []float64{0.08, 0.22, 0.36}
)

// Chunk lays out quote as 1-3 line segments. The first segment always
// takes the accent color. Chunk is pure; a quote with no words returns nil.
func Chunk(quote, accent string) []model.LineSegment {
	words := strings.Fields(strings.ToUpper(quote))
	n := len(words)

	switch {
	case n == 0:
		return nil

	case n <= MaxWordsPerWord:
		segs := make([]model.LineSegment, 0, n)
		for i, w := range words {
			color := model.White
			if i == 0 {
				color = accent
			}
			segs = append(segs, model.LineSegment{
				Text:  w,
				Color: color,
				Size:  model.SizeLarge,
				Delay: wordDelay(i),
			})
		}
		return segs

	case n <= MaxWordsHalves:
		m := ceilDiv(n, 2)
		return []model.LineSegment{
			{Text: join(words[:m]), Color: accent, Size: model.SizeLarge, Delay: halvesDelays[0]},
			{Text: join(words[m:]), Color: model.White, Size: model.SizeLarge, Delay: halvesDelays[1]},
		}
	}

	c := ceilDiv(n, 3)
	// c*2 < n for every n >= 7, so the third slice is never empty.
	// The closing third is small and muted so it reads as a trailer.
	return []model.LineSegment{
		{Text: join(words[:c]), Color: accent, Size: model.SizeMedium, Delay: thirdsDelays[0]},
		{Text: join(words[c : c*2]), Color: model.White, Size: model.SizeMedium, Delay: thirdsDelays[1]},
		{Text: join(words[c*2:]), Color: model.Muted, Size: model.SizeSmall, Delay: thirdsDelays[2]},
	}
}

// wordDelay staggers per-word segments by 0.16s. Computed in hundredths
// so the results are exact decimals (0.08, 0.24, 0.40).
func wordDelay(i int) float64 {
	return float64(8+16*i) / 100
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func join(words []string) string {
	return strings.Join(words, " ")
}
