package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"echomap/internal/geo"
	"echomap/internal/record"
)

// Zoom levels mirror the web map: the default city view, the close-up the
// reveal sequence pins to, and the context level it pulls back to.
const (
	ZoomDefault = 12.0
	ZoomClose   = 16.0
	ZoomContext = 13.0
)

// Marker is one record rendered on the canvas.
type Marker struct {
	ID       string
	Pos      geo.Position
	Emotion  record.Emotion
	Visited  bool
	Selected bool
}

// MapCanvas projects geo positions onto a character grid. It is a pure
// renderer: the caller supplies center, zoom and markers every frame.
type MapCanvas struct {
	Width  int
	Height int
}

// markerSymbols by state. Selected wins over visited.
const (
	symbolMarker   = "●"
	symbolVisited  = "○"
	symbolSelected = "◉"
	symbolUser     = "✛"
)

// Render draws the grid. Terminal cells are roughly twice as tall as wide,
// so the latitude span is stretched accordingly to keep shapes roundish.
func (c MapCanvas) Render(center geo.Position, zoom float64, markers []Marker, user *geo.Position, styles Styles) string {
	if c.Width <= 0 || c.Height <= 0 {
		return ""
	}

	spanLng := 360.0 / math.Exp2(zoom)
	spanLat := spanLng * (float64(c.Height) / float64(c.Width)) * 2.0

	grid := make([][]string, c.Height)
	for y := range grid {
		grid[y] = make([]string, c.Width)
		for x := range grid[y] {
			if x%10 == 5 && y%5 == 2 {
				grid[y][x] = styles.Muted.Render("·")
			} else {
				grid[y][x] = " "
			}
		}
	}

	place := func(pos geo.Position, cell string) {
		x := int(math.Round((pos.Lng-center.Lng)/spanLng*float64(c.Width))) + c.Width/2
		y := int(math.Round((center.Lat-pos.Lat)/spanLat*float64(c.Height))) + c.Height/2
		if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
			return
		}
		grid[y][x] = cell
	}

	// Draw unselected markers first so the selection is never covered.
	for _, m := range markers {
		if m.Selected {
			continue
		}
		symbol := symbolMarker
		style := lipgloss.NewStyle().Foreground(EmotionColor(m.Emotion))
		if m.Visited {
			symbol = symbolVisited
			style = style.Faint(true)
		}
		place(m.Pos, style.Render(symbol))
	}
	if user != nil {
		place(*user, styles.Badge.Render(symbolUser))
	}
	for _, m := range markers {
		if m.Selected {
			style := lipgloss.NewStyle().Foreground(EmotionColor(m.Emotion)).Bold(true)
			place(m.Pos, style.Render(symbolSelected))
		}
	}

	rows := make([]string, c.Height)
	for y := range grid {
		rows[y] = strings.Join(grid[y], "")
	}
	return strings.Join(rows, "\n")
}

// Legend renders the emotion color key shown under the canvas.
func Legend(styles Styles) string {
	var sb strings.Builder
	for i, e := range record.Emotions {
		if i > 0 {
			sb.WriteString("  ")
		}
		dot := lipgloss.NewStyle().Foreground(EmotionColor(e)).Render(symbolMarker)
		sb.WriteString(dot + " " + styles.Muted.Render(string(e)))
	}
	return sb.String()
}
