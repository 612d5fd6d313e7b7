package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"echomap/internal/capture"
	"echomap/internal/session"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = m.width > 0 && m.height > 0
		m.renderer = nil // rebuild at the new wrap width on next render
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case identityMsg:
		m.ctrl.SetUserID(msg.id)
		if msg.id == "" {
			m.statusMessage = "browsing as anonymous (uploads unattributed)"
		}
		return m, m.startCapture()

	case refreshDoneMsg:
		if msg.err != nil {
			m.statusMessage = "map refresh failed"
			return m, nil
		}
		m.statusMessage = fmt.Sprintf("%d memories on the map", m.store.Len())
		return m, nil

	case feedMsg:
		return m.handleFeed(msg)

	case revealSettleMsg:
		if msg.gen != m.revealGen || m.ctrl.Reveal() != session.RevealZoomedIn {
			return m, nil
		}
		m.ctrl.BeginPullBack()
		return m, m.revealDoneCmd(m.revealGen)

	case revealDoneMsg:
		if msg.gen != m.revealGen {
			return m, nil
		}
		m.ctrl.HandleLocationReached()
		return m, nil

	case tourTickMsg:
		if msg.gen != m.tourGen {
			return m, nil
		}
		if m.ctrl.TourTick() {
			return m, m.tourTickCmd(m.tourGen)
		}
		return m, nil

	case playTickMsg:
		return m.handlePlayTick(msg)

	case captureMsg:
		return m.handleCapture(msg)

	case mutationMsg:
		if msg.err != nil {
			m.statusMessage = "action failed"
			m.logger.Warn("record mutation failed", zap.Error(msg.err))
			return m, nil
		}
		m.store.Replace(msg.rec)
		m.ctrl.RefreshSelected(msg.rec)
		return m, nil
	}

	return m, nil
}

// handleFeed applies one finished feed fetch. Responses from a superseded
// tab or city carry a stale generation and are dropped; the map refresh has
// no such guard and stays last-write-wins, as the web client behaves.
func (m Model) handleFeed(msg feedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.feedGen {
		return m, nil
	}
	m.feedLoading = false
	if msg.err != nil {
		m.statusMessage = fmt.Sprintf("%s feed unavailable", msg.kind)
		return m, nil
	}
	m.feeds[msg.kind] = msg.recs
	m.feedCursor = 0

	// Desktop auto-opens the first result of a freshly loaded tab; mobile
	// leaves the choice to the user.
	if m.ctrl.Mode() == session.ModeDesktop && len(msg.recs) > 0 {
		m.ctrl.SelectRecord(msg.recs[0])
		return m.resetPlayback(), nil
	}
	return m, nil
}

func (m Model) handlePlayTick(msg playTickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.playGen || !m.playing {
		return m, nil
	}
	m.playElapsed += playTickEvery
	if m.playElapsed >= m.cfg.UI.PlaybackDuration {
		m.playing = false
		m.playElapsed = 0
		return m, nil
	}
	return m, m.playTickCmd(m.playGen)
}

func (m Model) handleCapture(msg captureMsg) (tea.Model, tea.Cmd) {
	rearm := m.waitCaptureCmd()
	switch msg.ev.Type {
	case capture.EventUploaded:
		m.statusMessage = fmt.Sprintf("uploaded %s", msg.ev.Record.ID)
		return m, tea.Batch(rearm, m.refreshCmd())
	case capture.EventFailed:
		m.statusMessage = "capture upload failed"
	}
	return m, rearm
}

// resetPlayback stops the simulated player when the selection changes.
func (m Model) resetPlayback() Model {
	m.playing = false
	m.playElapsed = 0
	m.playGen++
	return m
}
