// Package render draws reels as HTML documents for rasterization and as
// styled terminal cards for the interactive shell.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/rcliao/vela/internal/model"
)

// ReelSelector is the CSS selector of the reel box in HTML output.
const ReelSelector = "#reel"

// Options controls the look of a rendered reel.
type Options struct {
	Font  string
	Ratio model.Ratio
}

// DefaultOptions returns the 9:16 Bebas Neue look.
func DefaultOptions() Options {
	return Options{Font: "Bebas Neue", Ratio: model.Ratios["9:16"]}
}

var fontSizes = map[model.Size]string{
	model.SizeLarge:  "clamp(1.6rem,5vw,4rem)",
	model.SizeMedium: "clamp(1.1rem,3.5vw,2.5rem)",
	model.SizeSmall:  "clamp(0.8rem,2vw,1.4rem)",
}

type htmlLine struct {
	Text     string
	Color    template.CSS
	FontSize template.CSS
	Delay    template.CSS
}

type htmlData struct {
	Background template.CSS
	Font       template.CSS
	Width      int
	Height     int
	Stamp      bool
	Lines      []htmlLine
}

var htmlTmpl = template.Must(template.New("reel").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<link rel="stylesheet" href="https://fonts.googleapis.com/css2?family=Bebas+Neue&display=swap">
<style>
*,*::before,*::after{box-sizing:border-box;margin:0;padding:0}
body{background:{{.Background}}}
@keyframes slideUp{from{transform:translateY(110%);opacity:0}to{transform:translateY(0);opacity:1}}
@keyframes stampIn{from{transform:scale(2.4) rotate(-3deg);opacity:0}to{transform:scale(1) rotate(0);opacity:1}}
#reel{width:{{.Width}}px;height:{{.Height}}px;background:{{.Background}};overflow:hidden;display:flex;align-items:center;justify-content:center}
.lines{font-family:'{{.Font}}',sans-serif;padding:14px 18px;width:100%;line-height:0.88;text-align:{{if .Stamp}}left{{else}}center{{end}}}
.kinetic{overflow:hidden;margin-bottom:2px}
.kinetic span{display:inline-block;line-height:0.92;animation:slideUp 0.6s cubic-bezier(0.22,1,0.36,1) both}
.stamp{line-height:0.9;margin-bottom:4px;animation:stampIn 0.5s cubic-bezier(0.175,0.885,0.32,1.275) both}
</style>
</head>
<body>
<div id="reel"><div class="lines">
{{- range .Lines}}
{{- if $.Stamp}}
<div class="stamp" style="font-size:{{.FontSize}};color:{{.Color}};animation-delay:{{.Delay}}">{{.Text}}</div>
{{- else}}
<div class="kinetic"><span style="font-size:{{.FontSize}};color:{{.Color}};animation-delay:{{.Delay}}">{{.Text}}</span></div>
{{- end}}
{{- end}}
</div></div>
</body>
</html>
`))

// HTML renders reel as a standalone document whose ReelSelector element
// is sized to opts.Ratio.
func HTML(reel model.Reel, opts Options) (string, error) {
	if opts.Ratio.Width == 0 {
		opts.Ratio = DefaultOptions().Ratio
	}
	if opts.Font == "" {
		opts.Font = DefaultOptions().Font
	}

	data := htmlData{
		Background: safeColor(reel.Background, model.DefaultBackground),
		Font:       template.CSS(cssString(opts.Font)),
		Width:      opts.Ratio.Width,
		Height:     opts.Ratio.Height,
		Stamp:      reel.Layout == model.LayoutStamp,
	}
	for _, l := range reel.Lines {
		size, ok := fontSizes[l.Size]
		if !ok {
			size = fontSizes[model.SizeLarge]
		}
		data.Lines = append(data.Lines, htmlLine{
			Text:     l.Text,
			Color:    safeColor(l.Color, model.White),
			FontSize: template.CSS(size),
			Delay:    template.CSS(fmt.Sprintf("%.2fs", l.Delay)),
		})
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// AnimationDuration is how long the slowest line of reel takes to land.
func AnimationDuration(reel model.Reel) float64 {
	longest := 0.0
	for _, l := range reel.Lines {
		d := l.Delay + 0.6
		if d > longest {
			longest = d
		}
	}
	return longest
}
