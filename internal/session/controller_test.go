package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echomap/internal/geo"
	"echomap/internal/record"
)

type stubFetcher struct {
	recs []record.Record
	err  error
}

func (f stubFetcher) MapRecords(ctx context.Context, limit int) ([]record.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recs, nil
}

func makeRecords(ids ...string) []record.Record {
	out := make([]record.Record, 0, len(ids))
	for i, id := range ids {
		out = append(out, record.Record{
			ID:       id,
			Emotion:  record.EmotionJoy,
			Position: geo.Position{Lat: 31.2 + float64(i)*0.01, Lng: 121.4},
		})
	}
	return out
}

func newStore(t *testing.T, ids ...string) *record.Store {
	t.Helper()
	store := record.NewStore(stubFetcher{recs: makeRecords(ids...)}, 100, nil)
	require.NoError(t, store.Refresh(context.Background()))
	return store
}

func newController(t *testing.T, ids ...string) *Controller {
	t.Helper()
	return NewController(newStore(t, ids...), "上海市", nil)
}

func TestSetMode_Terminal(t *testing.T) {
	c := newController(t)

	assert.Equal(t, ModeUnset, c.Mode())
	c.SetMode(ModeMobile)
	assert.Equal(t, ModeMobile, c.Mode())

	// The first choice wins for the rest of the session.
	c.SetMode(ModeDesktop)
	assert.Equal(t, ModeMobile, c.Mode())
}

func TestSelectMarker_MarksVisited(t *testing.T) {
	c := newController(t, "a", "b", "c")

	c.SelectMarker("b")
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "b", sel.ID)
	assert.True(t, c.Visited("b"))
	assert.False(t, c.Visited("a"))
}

func TestSelectMarker_UnknownID(t *testing.T) {
	c := newController(t, "a")

	c.SelectMarker("nope")
	_, ok := c.Selected()
	assert.False(t, ok)
	assert.Equal(t, 0, c.VisitedCount())
}

func TestNavigate_NextWrapsCircularly(t *testing.T) {
	c := newController(t, "a", "b", "c")
	c.SelectMarker("a")

	c.Navigate(Next)
	sel, _ := c.Selected()
	assert.Equal(t, "b", sel.ID)

	c.Navigate(Next)
	sel, _ = c.Selected()
	assert.Equal(t, "c", sel.ID)

	c.Navigate(Next)
	sel, _ = c.Selected()
	assert.Equal(t, "a", sel.ID, "should wrap to the first record")
}

func TestNavigate_PrevWrapsFromFirst(t *testing.T) {
	c := newController(t, "a", "b", "c")
	c.SelectMarker("a")

	c.Navigate(Prev)
	sel, _ := c.Selected()
	assert.Equal(t, "c", sel.ID)
}

func TestNavigate_FullCycleReturnsToStart(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	c := newController(t, ids...)

	for _, dir := range []Direction{Next, Prev} {
		c.SelectMarker("c")
		for range ids {
			c.Navigate(dir)
		}
		sel, ok := c.Selected()
		require.True(t, ok)
		assert.Equal(t, "c", sel.ID, "cycle of store length must return to start (dir %d)", dir)
	}
}

func TestNavigate_NoSelection(t *testing.T) {
	c := newController(t, "a", "b")

	assert.NotPanics(t, func() { c.Navigate(Next) })
	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestNavigate_EmptyStore(t *testing.T) {
	c := newController(t)

	assert.NotPanics(t, func() { c.Navigate(Next) })
	assert.NotPanics(t, func() { c.Navigate(Prev) })
}

func TestNavigate_SelectionOutsideStore(t *testing.T) {
	c := newController(t, "a", "b")

	// Feed rows can be opened without being part of the map page.
	c.SelectRecord(record.Record{ID: "feed-only"})
	c.Navigate(Next)
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "feed-only", sel.ID, "navigation from an off-map selection is a no-op")
}

func TestVisitedSet_OnlyGrows(t *testing.T) {
	c := newController(t, "a", "b", "c")

	seen := make(map[string]bool)
	for _, id := range []string{"a", "b", "a", "c", "b"} {
		before := c.VisitedCount()
		c.SelectMarker(id)
		assert.GreaterOrEqual(t, c.VisitedCount(), before)
		assert.True(t, c.Visited(id))
		seen[id] = true
	}
	assert.Equal(t, len(seen), c.VisitedCount())
}

func TestCloseDetail_ClearsSelection(t *testing.T) {
	c := newController(t, "a", "b")
	c.SelectMarker("a")

	c.CloseDetail()
	_, ok := c.Selected()
	assert.False(t, ok)

	// Navigation after close is a no-op until a new selection is made.
	c.Navigate(Next)
	_, ok = c.Selected()
	assert.False(t, ok)
}

func TestSelected_KeepsSnapshotAfterRefreshDropsID(t *testing.T) {
	fetcher := &switchableFetcher{recs: makeRecords("a", "b")}
	store := record.NewStore(fetcher, 100, nil)
	require.NoError(t, store.Refresh(context.Background()))
	c := NewController(store, "上海市", nil)

	c.SelectMarker("a")
	fetcher.recs = makeRecords("x", "y")
	require.NoError(t, store.Refresh(context.Background()))

	sel, ok := c.Selected()
	require.True(t, ok, "selection survives a refresh that drops its id")
	assert.Equal(t, "a", sel.ID)

	// But navigation can no longer anchor on it.
	c.Navigate(Next)
	sel, _ = c.Selected()
	assert.Equal(t, "a", sel.ID)
}

type switchableFetcher struct {
	recs []record.Record
}

func (f *switchableFetcher) MapRecords(ctx context.Context, limit int) ([]record.Record, error) {
	return f.recs, nil
}

func TestScenario_ThreeRecordWalk(t *testing.T) {
	c := newController(t, "A", "B", "C")
	c.SelectMarker("A")

	steps := []struct {
		dir  Direction
		want string
	}{
		{Next, "B"},
		{Next, "C"},
		{Next, "A"},
	}
	for i, step := range steps {
		c.Navigate(step.dir)
		sel, _ := c.Selected()
		assert.Equal(t, step.want, sel.ID, fmt.Sprintf("step %d", i))
	}
}
