package session

// Derived visibility rules. These are computed from the stored state rather
// than stored themselves so the truth table cannot drift out of sync.

// ChromeVisible reports whether the top informational chrome (logo, search,
// recommendation panel container) is shown. Tour mode hides it without
// destroying any state.
func (c *Controller) ChromeVisible() bool { return !c.tourActive }

// PanelVisible reports whether the recommendation panel is shown. On
// desktop the panel is always part of the chrome; on mobile it yields to an
// open, non-minimized detail overlay.
func (c *Controller) PanelVisible() bool {
	if !c.ChromeVisible() {
		return false
	}
	if c.mode != ModeMobile {
		return true
	}
	return !(c.hasSelection && !c.detailMinimized)
}

// RecordButtonVisible reports whether the capture control is shown. On
// mobile it is hidden while the panel is expanded or a detail overlay is
// open and not minimized.
func (c *Controller) RecordButtonVisible() bool {
	if c.tourActive {
		return false
	}
	if c.mode != ModeMobile {
		return true
	}
	if c.panelExpanded {
		return false
	}
	return !(c.hasSelection && !c.detailMinimized)
}

// PanelExpanded reports the bottom-sheet expansion state (mobile).
func (c *Controller) PanelExpanded() bool { return c.panelExpanded }

// DetailMinimized reports whether the detail overlay is collapsed to a pill.
func (c *Controller) DetailMinimized() bool { return c.detailMinimized }

// HasSelection reports whether a record is open.
func (c *Controller) HasSelection() bool { return c.hasSelection }
