package session

import "go.uber.org/zap"

// RevealPhase tracks the cinematic location-reveal sequence: the map pins to
// the fix at a close zoom, settles briefly, pulls back to context zoom, then
// offers the discovery prompt. The sequence runs at most once per session
// and never starts without a location fix.
type RevealPhase int

const (
	RevealIdle RevealPhase = iota
	RevealZoomedIn
	RevealPullingBack
	RevealDone
)

func (p RevealPhase) String() string {
	switch p {
	case RevealZoomedIn:
		return "zoomed-in"
	case RevealPullingBack:
		return "pulling-back"
	case RevealDone:
		return "done"
	}
	return "idle"
}

// Reveal returns the current reveal phase.
func (c *Controller) Reveal() RevealPhase { return c.reveal }

// Locating reports whether the pull-back animation is in flight.
func (c *Controller) Locating() bool { return c.locating }

// PromptVisible reports whether the discovery prompt is showing.
func (c *Controller) PromptVisible() bool { return c.promptVisible }

// BeginReveal starts the sequence after a location fix. Calls without a fix
// or after the sequence has already started are ignored.
func (c *Controller) BeginReveal() {
	if c.reveal != RevealIdle || !c.hasFix {
		return
	}
	c.reveal = RevealZoomedIn
	c.logger.Debug("reveal started", zap.String("position", c.position.String()))
}

// BeginPullBack transitions from the settled close-up to the animated
// pull-back. Only valid from the zoomed-in phase.
func (c *Controller) BeginPullBack() {
	if c.reveal != RevealZoomedIn {
		return
	}
	c.reveal = RevealPullingBack
	c.locating = true
}

// HandleLocationReached completes the pull-back: locating ends and the
// discovery prompt appears.
func (c *Controller) HandleLocationReached() {
	if c.reveal != RevealPullingBack {
		return
	}
	c.reveal = RevealDone
	c.locating = false
	c.promptVisible = true
}

// DismissPrompt closes the discovery prompt without selecting anything.
func (c *Controller) DismissPrompt() { c.promptVisible = false }

// ExploreNext accepts the discovery prompt: it closes and the first record
// of the working set is opened as if its marker was clicked. An empty store
// just closes the prompt.
func (c *Controller) ExploreNext() {
	c.promptVisible = false
	if rec, ok := c.store.At(0); ok {
		c.SelectRecord(rec)
	}
}
