package session

import "go.uber.org/zap"

// Tour mode auto-advances the selection through the working set on a fixed
// interval, presented as a cinematic demo. Manual selection between ticks is
// allowed but the next tick supersedes it: the tour keeps its own cursor.

// TourActive reports whether tour mode is running.
func (c *Controller) TourActive() bool { return c.tourActive }

// ToggleTour flips tour mode. Turning it on selects the first record
// immediately (when the store is non-empty) and hides the top chrome;
// turning it off stops the ticks and leaves all other state intact.
func (c *Controller) ToggleTour() {
	c.tourActive = !c.tourActive
	if !c.tourActive {
		c.logger.Debug("tour stopped")
		return
	}
	c.tourCursor = 0
	c.logger.Debug("tour started", zap.Int("records", c.store.Len()))
	c.tourAdvance()
}

// TourTick advances the tour by one record. It reports whether another tick
// should be scheduled; a stopped tour or an emptied store ends the cycle.
func (c *Controller) TourTick() bool {
	if !c.tourActive {
		return false
	}
	c.tourAdvance()
	return true
}

func (c *Controller) tourAdvance() {
	n := c.store.Len()
	if n == 0 {
		return
	}
	if c.tourCursor >= n {
		c.tourCursor = 0
	}
	if rec, ok := c.store.At(c.tourCursor); ok {
		c.SelectRecord(rec)
	}
	c.tourCursor = (c.tourCursor + 1) % n
}
