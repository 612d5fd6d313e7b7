package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"echomap/cmd/echomap/ui"
	"echomap/internal/api"
	"echomap/internal/capture"
	"echomap/internal/config"
	"echomap/internal/geo"
	"echomap/internal/identity"
	"echomap/internal/logging"
	"echomap/internal/record"
	"echomap/internal/session"
)

// New wires the full client: remote client, store, controller, bootstrap.
func New(cfg *config.Config, logger *zap.Logger) Model {
	client := api.NewClient(cfg.Server.URL,
		logging.For(logger, logging.CategoryAPI),
		api.WithAssetPrefix(cfg.Server.AssetPrefix))
	store := record.NewStore(client, cfg.PageLimit, logging.For(logger, logging.CategoryStore))
	ctrl := session.NewController(store, cfg.DefaultCity, logging.For(logger, logging.CategorySession))
	ctrl.SetPosition(geo.Position{Lat: cfg.Latitude, Lng: cfg.Longitude})
	boot := identity.NewBootstrapper(
		identity.NewFileStore(cfg.IdentityFile()),
		client,
		logging.For(logger, logging.CategoryIdentity))

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	city := textinput.New()
	city.Placeholder = "roam to a city..."
	city.SetValue(cfg.DefaultCity)
	city.CharLimit = 64

	return Model{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		store:      store,
		ctrl:       ctrl,
		boot:       boot,
		styles:     ui.NewStyles(ui.ThemeFor(cfg.UI.Theme)),
		spinner:    sp,
		cityInput:  city,
		activeTab:  record.FeedResonance,
		feeds:      make(map[record.FeedKind][]record.Record),
		modeCursor: 0,
	}
}

// Init starts the bootstrap, the first map refresh and the first feed fetch
// before the layout mode is even chosen, so the map is warm by the time the
// chooser is dismissed.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.bootstrapCmd(),
		m.refreshCmd(),
		m.feedCmd(m.feedGen, m.activeTab),
	)
}

// bootstrapCmd establishes the guest identity off the UI loop.
func (m Model) bootstrapCmd() tea.Cmd {
	boot := m.boot
	timeout := m.cfg.Server.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		id, err := boot.Bootstrap(ctx)
		if err != nil {
			// Bootstrap degrades internally; an error here is unexpected
			// but still non-fatal for browsing.
			return identityMsg{id: ""}
		}
		return identityMsg{id: id}
	}
}

// refreshCmd replaces the map working set.
func (m Model) refreshCmd() tea.Cmd {
	store := m.store
	timeout := m.cfg.Server.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return refreshDoneMsg{err: store.Refresh(ctx)}
	}
}

// feedCmd fetches one recommendation feed. The generation captured at
// scheduling time lets the handler discard responses from a superseded tab
// or city.
func (m Model) feedCmd(gen int, kind record.FeedKind) tea.Cmd {
	client := m.client
	city := m.ctrl.City()
	pos, _ := m.ctrl.Position()
	timeout := m.cfg.Server.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		recs, err := client.Feed(ctx, kind, city, time.Now().Hour(), pos)
		return feedMsg{gen: gen, kind: kind, recs: recs, err: err}
	}
}

func (m Model) revealSettleCmd(gen int) tea.Cmd {
	return tea.Tick(m.cfg.UI.RevealSettleDelay, func(time.Time) tea.Msg {
		return revealSettleMsg{gen: gen}
	})
}

func (m Model) revealDoneCmd(gen int) tea.Cmd {
	return tea.Tick(m.cfg.UI.RevealFlyDuration, func(time.Time) tea.Msg {
		return revealDoneMsg{gen: gen}
	})
}

func (m Model) tourTickCmd(gen int) tea.Cmd {
	return tea.Tick(m.cfg.UI.TourInterval, func(time.Time) tea.Msg {
		return tourTickMsg{gen: gen}
	})
}

func (m Model) playTickCmd(gen int) tea.Cmd {
	return tea.Tick(playTickEvery, func(time.Time) tea.Msg {
		return playTickMsg{gen: gen}
	})
}

// waitCaptureCmd blocks on the watcher channel and re-arms itself after
// every delivered event.
func (m Model) waitCaptureCmd() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return nil
		}
		return captureMsg{ev: ev}
	}
}

// mutateCmd runs one like/unlike/flag/unflag call.
func (m Model) mutateCmd(call func(context.Context, string) (record.Record, error), id string) tea.Cmd {
	timeout := m.cfg.Server.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rec, err := call(ctx, id)
		return mutationMsg{rec: rec, err: err}
	}
}

// regenerateCmd asks for a fresh AI story for the selected record.
func (m Model) regenerateCmd(id string) tea.Cmd {
	client := m.client
	timeout := m.cfg.Server.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*timeout)
		defer cancel()
		rec, err := client.RegenerateStory(ctx, id)
		return mutationMsg{rec: rec, err: err}
	}
}

// startCapture builds and starts the watcher once identity bootstrap is
// settled (uploads want attribution when available).
func (m *Model) startCapture() tea.Cmd {
	if !m.cfg.Capture.Enabled || m.watcher != nil {
		return nil
	}
	pos, _ := m.ctrl.Position()
	w := capture.New(m.cfg.Capture.Dir, m.client, pos, m.ctrl.UserID(),
		logging.For(m.logger, logging.CategoryCapture))
	if err := w.Start(); err != nil {
		m.logger.Warn("capture watcher failed to start", zap.Error(err))
		return nil
	}
	m.watcher = w
	return m.waitCaptureCmd()
}

// Teardown stops timers' owners and the capture watcher; pending ticks are
// neutralized by the generation counters.
func (m *Model) Teardown() {
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
}
