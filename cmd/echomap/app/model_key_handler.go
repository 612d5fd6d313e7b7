package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"echomap/internal/record"
	"echomap/internal/session"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit works everywhere.
	if msg.Type == tea.KeyCtrlC {
		m.Teardown()
		return m, tea.Quit
	}

	if m.ctrl.Mode() == session.ModeUnset {
		return m.handleModeSelectKey(msg)
	}
	if m.searchFocused {
		return m.handleSearchKey(msg)
	}
	return m.handleMapKey(msg)
}

// handleModeSelectKey drives the one-shot desktop/mobile chooser.
func (m Model) handleModeSelectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "right", "l", "tab":
		m.modeCursor = 1 - m.modeCursor
		return m, nil
	case "enter":
		if m.modeCursor == 0 {
			m.ctrl.SetMode(session.ModeDesktop)
		} else {
			m.ctrl.SetMode(session.ModeMobile)
		}
		// With a location fix the cinematic reveal starts now: pin close,
		// settle, pull back, then prompt.
		if _, ok := m.ctrl.Position(); ok {
			m.ctrl.BeginReveal()
			m.revealGen++
			return m, m.revealSettleCmd(m.revealGen)
		}
		return m, nil
	case "q":
		m.Teardown()
		return m, tea.Quit
	}
	return m, nil
}

// handleSearchKey routes keys into the city input until committed.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searchFocused = false
		m.cityInput.Blur()
		m.ctrl.SetCity(m.cityInput.Value())
		m.feedGen++
		m.feedLoading = true
		return m, m.feedCmd(m.feedGen, m.activeTab)
	case tea.KeyEsc:
		m.searchFocused = false
		m.cityInput.Blur()
		m.cityInput.SetValue(m.ctrl.City())
		return m, nil
	}
	var cmd tea.Cmd
	m.cityInput, cmd = m.cityInput.Update(msg)
	return m, cmd
}

func (m Model) handleMapKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.Teardown()
		return m, tea.Quit

	case "esc":
		if m.ctrl.PromptVisible() {
			m.ctrl.DismissPrompt()
			return m, nil
		}
		if m.ctrl.HasSelection() {
			m.ctrl.CloseDetail()
			return m.resetPlayback(), nil
		}
		return m, nil

	case "y", "enter":
		if m.ctrl.PromptVisible() {
			m.ctrl.ExploreNext()
			return m.resetPlayback(), nil
		}
		if msg.String() == "enter" {
			return m.selectFeedRow()
		}
		return m, nil

	case "/":
		m.searchFocused = true
		m.cityInput.Focus()
		return m, nil

	case "tab":
		m.activeTab = nextFeed(m.activeTab)
		m.feedGen++
		m.feedLoading = true
		m.feedCursor = 0
		return m, m.feedCmd(m.feedGen, m.activeTab)

	case "r":
		return m, m.refreshCmd()

	case "t":
		m.ctrl.ToggleTour()
		m.tourGen++
		if m.ctrl.TourActive() {
			return m.resetPlayback(), m.tourTickCmd(m.tourGen)
		}
		return m, nil

	case "up", "k":
		if m.feedCursor > 0 {
			m.feedCursor--
		}
		return m, nil

	case "down", "j":
		if m.feedCursor < len(m.feeds[m.activeTab])-1 {
			m.feedCursor++
		}
		return m, nil

	case "n", "right":
		m.ctrl.Navigate(session.Next)
		return m.resetPlayback(), nil

	case "p", "left":
		m.ctrl.Navigate(session.Prev)
		return m.resetPlayback(), nil

	case "m":
		m.ctrl.ToggleDetailMinimized()
		return m, nil

	case "e":
		m.ctrl.SetPanelExpanded(!m.ctrl.PanelExpanded())
		return m, nil

	case " ":
		return m.togglePlayback()

	case "L":
		if rec, ok := m.ctrl.Selected(); ok {
			return m, m.mutateCmd(m.client.Like, rec.ID)
		}
		return m, nil

	case "U":
		if rec, ok := m.ctrl.Selected(); ok {
			return m, m.mutateCmd(m.client.Unlike, rec.ID)
		}
		return m, nil

	case "F":
		if rec, ok := m.ctrl.Selected(); ok {
			return m, m.mutateCmd(m.client.Flag, rec.ID)
		}
		return m, nil

	case "D":
		if rec, ok := m.ctrl.Selected(); ok {
			return m, m.mutateCmd(m.client.Unflag, rec.ID)
		}
		return m, nil

	case "G":
		if rec, ok := m.ctrl.Selected(); ok {
			m.statusMessage = "regenerating story..."
			return m, m.regenerateCmd(rec.ID)
		}
		return m, nil
	}

	return m, nil
}

// selectFeedRow opens the highlighted feed row as if its marker was clicked.
func (m Model) selectFeedRow() (tea.Model, tea.Cmd) {
	recs := m.feeds[m.activeTab]
	if m.feedCursor < 0 || m.feedCursor >= len(recs) {
		return m, nil
	}
	m.ctrl.SelectRecord(recs[m.feedCursor])
	return m.resetPlayback(), nil
}

func (m Model) togglePlayback() (tea.Model, tea.Cmd) {
	if !m.ctrl.HasSelection() {
		return m, nil
	}
	if m.playing {
		m.playing = false
		m.playGen++
		return m, nil
	}
	m.playing = true
	m.playGen++
	return m, m.playTickCmd(m.playGen)
}

func nextFeed(k record.FeedKind) record.FeedKind {
	switch k {
	case record.FeedResonance:
		return record.FeedCulture
	case record.FeedCulture:
		return record.FeedRoaming
	default:
		return record.FeedResonance
	}
}
