package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"echomap/cmd/echomap/ui"
	"echomap/internal/geo"
	"echomap/internal/record"
	"echomap/internal/session"
)

const (
	sidebarWidth    = 38
	detailMaxLines  = 10
	collapsedSheet  = 3
	chromeLines     = 5 // header + divider + legend + footer margin
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.ctrl.Mode() == session.ModeUnset {
		return m.renderModeSelect()
	}
	if m.ctrl.Mode() == session.ModeMobile {
		return m.renderMobile()
	}
	return m.renderDesktop()
}

// renderModeSelect is the full-screen desktop/mobile chooser shown once at
// startup.
func (m Model) renderModeSelect() string {
	title := m.styles.Title.Render("EchoMap")
	subtitle := m.styles.Muted.Render("S O U N D   M E M O R Y   A T L A S")

	box := func(label string, selected bool) string {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.styles.Theme.Border).
			Padding(2, 6)
		if selected {
			style = style.BorderForeground(m.styles.Theme.Accent).Bold(true)
		}
		return style.Render(label)
	}

	choices := lipgloss.JoinHorizontal(lipgloss.Center,
		box("DESKTOP", m.modeCursor == 0),
		"   ",
		box("MOBILE", m.modeCursor == 1),
	)
	hint := m.styles.Muted.Render("←/→ choose · enter confirm · q quit")

	content := lipgloss.JoinVertical(lipgloss.Center, title, subtitle, "", choices, "", hint)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderDesktop() string {
	var sections []string

	if m.ctrl.ChromeVisible() {
		sections = append(sections, m.renderHeader())
	} else {
		sections = append(sections, m.renderTourBar())
	}

	canvasWidth := m.width - sidebarWidth - 4
	canvasHeight := m.bodyHeight()
	mapView := m.renderMap(canvasWidth, canvasHeight)

	if m.ctrl.ChromeVisible() {
		sidebar := m.renderPanel(sidebarWidth, canvasHeight)
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, mapView, " ", sidebar))
	} else {
		sections = append(sections, mapView)
	}

	sections = append(sections, ui.Legend(m.styles))
	if m.ctrl.PromptVisible() {
		sections = append(sections, m.renderPrompt())
	}
	if rec, ok := m.ctrl.Selected(); ok {
		sections = append(sections, m.renderDetail(rec, m.width-4))
	}
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderMobile() string {
	var sections []string

	if m.ctrl.ChromeVisible() {
		sections = append(sections, m.renderHeader())
	} else {
		sections = append(sections, m.renderTourBar())
	}

	canvasHeight := m.bodyHeight() - collapsedSheet
	if m.ctrl.PanelVisible() && m.ctrl.PanelExpanded() {
		canvasHeight = m.bodyHeight() / 3
	}
	sections = append(sections, m.renderMap(m.width-2, canvasHeight))
	sections = append(sections, ui.Legend(m.styles))

	if m.ctrl.PromptVisible() {
		sections = append(sections, m.renderPrompt())
	}

	if rec, ok := m.ctrl.Selected(); ok {
		if m.ctrl.DetailMinimized() {
			sections = append(sections, m.renderDetailPill(rec))
		} else {
			sections = append(sections, m.renderDetail(rec, m.width-4))
		}
	}

	// Bottom sheet: hidden entirely while a non-minimized detail is open.
	if m.ctrl.PanelVisible() {
		sections = append(sections, m.renderSheet())
	}

	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) bodyHeight() int {
	h := m.height - chromeLines
	if m.ctrl.HasSelection() && !m.ctrl.DetailMinimized() {
		h -= detailMaxLines + 2
	}
	if m.ctrl.PromptVisible() {
		h -= 5
	}
	if h < 4 {
		h = 4
	}
	return h
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" EchoMap ")

	var status string
	if m.ctrl.Locating() {
		status = m.spinner.View() + " " + m.styles.Badge.Render("locating...")
	} else if m.feedLoading {
		status = m.spinner.View() + " " + m.styles.Badge.Render("loading feed")
	} else if m.statusMessage != "" {
		status = m.styles.Muted.Render(m.statusMessage)
	} else {
		status = m.styles.Success.Render("ready")
	}

	who := m.styles.Muted.Render("guest")
	if id := m.ctrl.UserID(); id != "" {
		short := id
		if len(short) > 8 {
			short = short[:8]
		}
		who = m.styles.Muted.Render("user " + short)
	}

	var search string
	if m.searchFocused {
		search = m.cityInput.View()
	} else {
		search = m.styles.Muted.Render("⌖ " + m.ctrl.City())
	}

	line := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status, "  ", search, "  ", who)
	return lipgloss.JoinVertical(lipgloss.Left, line, m.styles.RenderDivider(m.width))
}

// renderTourBar is the minimal chrome shown during tour mode.
func (m Model) renderTourBar() string {
	dot := lipgloss.NewStyle().Foreground(ui.Destructive).Render("●")
	return dot + m.styles.Muted.Render(" tour · t to stop") + "\n" + m.styles.RenderDivider(m.width)
}

func (m Model) renderMap(width, height int) string {
	center, zoom := m.mapViewport()
	markers := m.markers()

	canvas := ui.MapCanvas{Width: width, Height: height}
	if pos, ok := m.ctrl.Position(); ok {
		return canvas.Render(center, zoom, markers, &pos, m.styles)
	}
	return canvas.Render(center, zoom, markers, nil, m.styles)
}

// mapViewport derives the camera from the session state: the reveal drives
// zoom, an open selection centers on its marker, otherwise the fix or the
// first record anchors the view.
func (m Model) mapViewport() (center geo.Position, zoom float64) {
	pos, hasFix := m.ctrl.Position()

	zoom = ui.ZoomDefault
	switch m.ctrl.Reveal() {
	case session.RevealZoomedIn:
		return pos, ui.ZoomClose
	case session.RevealPullingBack, session.RevealDone:
		zoom = ui.ZoomContext
	}

	if rec, ok := m.ctrl.Selected(); ok {
		return rec.Position, zoom
	}
	if hasFix {
		return pos, zoom
	}
	if rec, ok := m.store.At(0); ok {
		return rec.Position, zoom
	}
	return center, ui.ZoomDefault
}

func (m Model) markers() []ui.Marker {
	recs := m.store.All()
	selectedID := ""
	if rec, ok := m.ctrl.Selected(); ok {
		selectedID = rec.ID
	}
	out := make([]ui.Marker, 0, len(recs))
	for _, r := range recs {
		out = append(out, ui.Marker{
			ID:       r.ID,
			Pos:      r.Position,
			Emotion:  r.Emotion,
			Visited:  m.ctrl.Visited(r.ID),
			Selected: r.ID == selectedID,
		})
	}
	return out
}

// renderPanel is the desktop recommendation column.
func (m Model) renderPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(m.renderTabs() + "\n")

	recs := m.feeds[m.activeTab]
	if m.feedLoading {
		sb.WriteString(m.spinner.View() + m.styles.Muted.Render(" fetching..."))
	} else if len(recs) == 0 {
		sb.WriteString(m.styles.Muted.Render("nothing here yet"))
	} else {
		sb.WriteString(m.renderFeedRows(recs, width-4))
	}

	return m.styles.Panel.Width(width).Height(height).Render(sb.String())
}

// renderSheet is the mobile bottom sheet, collapsed to a handle or expanded
// to the feed table.
func (m Model) renderSheet() string {
	if !m.ctrl.PanelExpanded() {
		handle := m.styles.Muted.Render("━━ e to explore " + m.activeTab.Title() + " ━━")
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, handle)
	}
	var sb strings.Builder
	sb.WriteString(m.renderTabs() + "\n")
	recs := m.feeds[m.activeTab]
	if m.feedLoading {
		sb.WriteString(m.spinner.View() + m.styles.Muted.Render(" fetching..."))
	} else if len(recs) == 0 {
		sb.WriteString(m.styles.Muted.Render("nothing here yet"))
	} else {
		sb.WriteString(m.renderFeedRows(recs, m.width-6))
	}
	return m.styles.Panel.Width(m.width - 2).Render(sb.String())
}

func (m Model) renderTabs() string {
	var tabs []string
	for _, kind := range record.FeedKinds {
		label := kind.Title()
		if kind == m.activeTab {
			tabs = append(tabs, m.styles.Badge.Render("["+label+"]"))
		} else {
			tabs = append(tabs, m.styles.Muted.Render(" "+label+" "))
		}
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderFeedRows(recs []record.Record, width int) string {
	table := ui.NewSimpleTable("", []string{"", "Emotion", "Place"})
	table.Highlight = m.feedCursor
	for _, r := range recs {
		mark := " "
		if m.ctrl.Visited(r.ID) {
			mark = "·"
		}
		place := r.District
		if place == "" {
			place = r.City
		}
		table.AddRow(mark, string(r.Emotion), truncate(place, width/2))
	}
	return table.View(m.styles)
}

func (m Model) renderPrompt() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Bold.Render("Located your current position"),
		"",
		m.styles.Muted.Render("esc later · y explore next"),
	)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.styles.Prompt.Render(body))
}

// renderDetail is the audio-detail overlay.
func (m Model) renderDetail(rec record.Record, width int) string {
	emotion := lipgloss.NewStyle().
		Foreground(ui.EmotionColor(rec.Emotion)).
		Bold(true).
		Render(string(rec.Emotion))

	place := rec.City
	if rec.District != "" {
		place += " · " + rec.District
	}
	head := emotion + "  " + m.styles.Muted.Render(place) +
		"  " + m.styles.Muted.Render(rec.Position.String())

	counters := fmt.Sprintf("♥ %d   ? %d", rec.LikeCount, rec.QuestionCount)
	tags := ""
	if len(rec.Tags) > 0 {
		tags = m.styles.Muted.Render("# " + strings.Join(rec.Tags, "  # "))
	}

	story := m.renderStory(rec.Story, width-4)
	player := m.renderPlayer()

	body := lipgloss.JoinVertical(lipgloss.Left, head, tags, story, player,
		m.styles.Muted.Render(counters+"   L like · F flag · G restory · n/p next/prev · esc close"))
	return m.styles.Overlay.Width(width).Render(body)
}

// renderDetailPill is the minimized mobile detail bar.
func (m Model) renderDetailPill(rec record.Record) string {
	dot := lipgloss.NewStyle().Foreground(ui.EmotionColor(rec.Emotion)).Render("●")
	label := truncate(rec.Story, m.width/2)
	pill := dot + " " + m.styles.Muted.Render(label+"  (m to restore)")
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, pill)
}

func (m Model) renderPlayer() string {
	total := m.cfg.UI.PlaybackDuration
	frac := 0.0
	if total > 0 {
		frac = float64(m.playElapsed) / float64(total)
	}
	barWidth := 24
	filled := int(frac * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := m.styles.Badge.Render(strings.Repeat("█", filled)) +
		m.styles.Muted.Render(strings.Repeat("─", barWidth-filled))

	symbol := "▶"
	if m.playing {
		symbol = "⏸"
	}
	return fmt.Sprintf("%s %s %s / %s", symbol, bar,
		formatClock(m.playElapsed), formatClock(total))
}

// renderStory renders the AI story as markdown, clipped to the overlay
// height, with panic recovery since glamour can choke on odd input.
func (m Model) renderStory(story string, width int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = story
		}
	}()

	if m.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			m.renderer = r
		}
	}

	rendered := story
	if m.renderer != nil {
		if s, err := m.renderer.Render(story); err == nil {
			rendered = s
		}
	}

	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	if len(lines) > detailMaxLines {
		lines = append(lines[:detailMaxLines], m.styles.Muted.Render("…"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	keys := "tab feed · enter open · / city · r refresh · t tour · e sheet · m minimize · q quit"
	return m.styles.Muted.Render(keys)
}

func formatClock(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func truncate(s string, max int) string {
	if max <= 1 || len([]rune(s)) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
