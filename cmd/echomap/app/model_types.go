// Package app provides the interactive TUI for echomap: a map canvas,
// recommendation panel and audio-detail overlay driven by the session
// controller's state snapshots.
package app

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"echomap/cmd/echomap/ui"
	"echomap/internal/api"
	"echomap/internal/capture"
	"echomap/internal/config"
	"echomap/internal/identity"
	"echomap/internal/record"
	"echomap/internal/session"
)

// Model is the top-level Bubble Tea model. All view/session state lives in
// the controller; the model holds widgets, timers and fetched feed pages.
type Model struct {
	cfg    *config.Config
	logger *zap.Logger

	client  *api.Client
	store   *record.Store
	ctrl    *session.Controller
	boot    *identity.Bootstrapper
	watcher *capture.Watcher

	styles    ui.Styles
	spinner   spinner.Model
	cityInput textinput.Model
	renderer  *glamour.TermRenderer

	width  int
	height int
	ready  bool

	// Mode selection screen
	modeCursor int

	// Recommendation panel
	activeTab   record.FeedKind
	feeds       map[record.FeedKind][]record.Record
	feedLoading bool
	feedCursor  int

	// City search input focus
	searchFocused bool

	// Generation counters. Each scheduled tick carries the counter value at
	// scheduling time; a mismatch on arrival means the triggering condition
	// changed and the tick is dropped.
	feedGen   int
	revealGen int
	tourGen   int
	playGen   int

	// Simulated playback
	playing     bool
	playElapsed time.Duration

	statusMessage string
	err           error
}

// Messages

type identityMsg struct {
	id string
}

type refreshDoneMsg struct {
	err error
}

type feedMsg struct {
	gen  int
	kind record.FeedKind
	recs []record.Record
	err  error
}

type revealSettleMsg struct{ gen int }

type revealDoneMsg struct{ gen int }

type tourTickMsg struct{ gen int }

type playTickMsg struct{ gen int }

type captureMsg struct {
	ev capture.Event
}

type mutationMsg struct {
	rec record.Record
	err error
}

// playTickEvery is the simulated playback sampling interval.
const playTickEvery = 100 * time.Millisecond
