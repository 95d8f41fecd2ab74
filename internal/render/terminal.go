package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/vela/internal/model"
)

// CardWidth is the inner width of a terminal card.
const CardWidth = 36

var (
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(model.Muted))
	limeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(model.AccentLime))
)

// Card draws reel as a boxed card in its own colors.
func Card(reel model.Reel) string {
	bg := lipgloss.Color(orDefault(expandHex(reel.Background), "#000000"))
	align := lipgloss.Center
	if reel.Layout == model.LayoutStamp {
		align = lipgloss.Left
	}

	rows := []string{blankRow(bg)}
	for _, l := range reel.Lines {
		st := lipgloss.NewStyle().
			Width(CardWidth).
			Align(align).
			Padding(0, 1).
			Background(bg).
			Foreground(lipgloss.Color(orDefault(expandHex(l.Color), model.White)))
		switch l.Size {
		case model.SizeLarge:
			st = st.Bold(true)
		case model.SizeSmall:
			st = st.Faint(true)
		}
		rows = append(rows, st.Render(l.Text))
	}
	rows = append(rows, blankRow(bg))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(model.Muted))
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func blankRow(bg lipgloss.Color) string {
	return lipgloss.NewStyle().Width(CardWidth).Padding(0, 1).Background(bg).Render("")
}

// ProgressBar draws pct (0-100) as a bar width cells wide.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(math.Max(0, math.Min(100, pct)) / 100 * float64(width)))
	return limeStyle.Render(strings.Repeat("━", filled)) + mutedStyle.Render(strings.Repeat("─", width-filled))
}

// StatusLine is the timeline bar: play state, cycle progress and i/N.
func StatusLine(playing bool, elapsed float64, index, total int) string {
	icon := "▶"
	if playing {
		icon = "⏸"
	}
	pos := "0/0"
	if total > 0 {
		pos = fmt.Sprintf("%d/%d", index+1, total)
	}
	return fmt.Sprintf("%s %s %s", icon, ProgressBar(elapsed, 24), mutedStyle.Render(pos))
}

// Quote renders the source quote line shown under a card.
func Quote(q string) string {
	if q == "" {
		return ""
	}
	return mutedStyle.Italic(true).Render(fmt.Sprintf("%q", q))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
