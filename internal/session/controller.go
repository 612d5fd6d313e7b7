// Package session owns the view/session state of the echomap client: layout
// mode, the current selection, visited markers, the location-reveal sequence
// and tour mode. The Controller exposes intention-revealing transitions; the
// UI reads immutable snapshots and never mutates state directly.
//
// The Controller is confined to the UI update loop. All mutations happen on
// that single logical goroutine, so there is no internal locking.
package session

import (
	"go.uber.org/zap"

	"echomap/internal/geo"
	"echomap/internal/record"
)

// Mode is the layout mode, chosen once at startup and terminal until the
// program restarts.
type Mode int

const (
	ModeUnset Mode = iota
	ModeDesktop
	ModeMobile
)

func (m Mode) String() string {
	switch m {
	case ModeDesktop:
		return "desktop"
	case ModeMobile:
		return "mobile"
	}
	return "unset"
}

// Direction selects the navigation direction through the store ordering.
type Direction int

const (
	Next Direction = iota
	Prev
)

// Controller owns the mutable view/session state.
type Controller struct {
	store  *record.Store
	logger *zap.Logger

	mode Mode

	// Selection is a weak reference: the id is the source of truth and is
	// resolved against the store; the snapshot is kept so a refresh that
	// drops the id does not blank the open overlay.
	selectedID   string
	selected     record.Record
	hasSelection bool

	visited map[string]struct{}

	reveal        RevealPhase
	locating      bool
	promptVisible bool

	panelExpanded   bool
	detailMinimized bool

	tourActive bool
	tourCursor int

	city     string
	position geo.Position
	hasFix   bool

	userID string
}

// NewController creates a controller over the given store.
func NewController(store *record.Store, city string, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:   store,
		logger:  logger,
		visited: make(map[string]struct{}),
		city:    city,
	}
}

// SetMode picks the layout mode. The first choice wins; later calls are
// ignored so the mode stays terminal.
func (c *Controller) SetMode(m Mode) {
	if c.mode != ModeUnset || m == ModeUnset {
		return
	}
	c.mode = m
	c.logger.Info("layout mode selected", zap.String("mode", m.String()))
}

// Mode returns the current layout mode.
func (c *Controller) Mode() Mode { return c.mode }

// SetUserID records the bootstrapped identity ("" = degraded, browse-only).
func (c *Controller) SetUserID(id string) { c.userID = id }

// UserID returns the session identity, possibly empty.
func (c *Controller) UserID() string { return c.userID }

// SetCity rebinds the recommendation feeds to a city.
func (c *Controller) SetCity(city string) {
	if city == "" {
		return
	}
	c.city = city
}

// City returns the feed city.
func (c *Controller) City() string { return c.city }

// SetPosition records the one-shot location fix.
func (c *Controller) SetPosition(p geo.Position) {
	c.position = p
	c.hasFix = !p.IsZero() && p.Valid()
}

// Position returns the location fix and whether one exists.
func (c *Controller) Position() (geo.Position, bool) { return c.position, c.hasFix }

// SelectMarker opens the record with the given id from the store, as if its
// map marker was clicked. Unknown ids are ignored.
func (c *Controller) SelectMarker(id string) {
	rec, ok := c.store.Get(id)
	if !ok {
		return
	}
	c.SelectRecord(rec)
}

// SelectRecord opens a record directly (feed rows may not be part of the map
// working set). Opening resets the minimized state and marks the record
// visited; the visited set only grows within a session.
func (c *Controller) SelectRecord(rec record.Record) {
	c.selectedID = rec.ID
	c.selected = rec
	c.hasSelection = true
	c.detailMinimized = false
	c.visited[rec.ID] = struct{}{}
}

// Selected returns the current selection snapshot. A refresh that dropped
// the selected id still returns the last-known snapshot until CloseDetail.
func (c *Controller) Selected() (record.Record, bool) {
	if !c.hasSelection {
		return record.Record{}, false
	}
	if rec, ok := c.store.Get(c.selectedID); ok {
		c.selected = rec
	}
	return c.selected, true
}

// RefreshSelected swaps a freshly normalized record into the selection when
// it matches (after like/flag mutations).
func (c *Controller) RefreshSelected(rec record.Record) {
	if c.hasSelection && rec.ID == c.selectedID {
		c.selected = rec
	}
}

// Navigate moves the selection to the neighboring record in the store
// ordering, wrapping circularly in both directions. Without a selection, an
// empty store, or a selection that is no longer part of the working set,
// the call is a no-op.
func (c *Controller) Navigate(dir Direction) {
	if !c.hasSelection {
		return
	}
	n := c.store.Len()
	if n == 0 {
		return
	}
	idx := c.store.IndexOf(c.selectedID)
	if idx < 0 {
		return
	}
	if dir == Next {
		idx = (idx + 1) % n
	} else {
		idx = (idx - 1 + n) % n
	}
	if rec, ok := c.store.At(idx); ok {
		c.SelectRecord(rec)
	}
}

// CloseDetail clears the selection; navigation becomes a no-op until a new
// record is opened.
func (c *Controller) CloseDetail() {
	c.selectedID = ""
	c.selected = record.Record{}
	c.hasSelection = false
	c.detailMinimized = false
}

// ToggleDetailMinimized collapses or restores the detail overlay (mobile).
func (c *Controller) ToggleDetailMinimized() {
	if !c.hasSelection {
		return
	}
	c.detailMinimized = !c.detailMinimized
}

// SetPanelExpanded expands or collapses the recommendation bottom sheet.
func (c *Controller) SetPanelExpanded(expanded bool) { c.panelExpanded = expanded }

// Visited reports whether a record has been opened this session.
func (c *Controller) Visited(id string) bool {
	_, ok := c.visited[id]
	return ok
}

// VisitedCount returns the number of distinct records opened this session.
func (c *Controller) VisitedCount() int { return len(c.visited) }
