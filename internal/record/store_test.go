package record

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	recs []Record
	err  error
}

func (f *stubFetcher) MapRecords(_ context.Context, _ int) ([]Record, error) {
	return f.recs, f.err
}

func recs(ids ...string) []Record {
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, Record{ID: id})
	}
	return out
}

func TestRefresh_ReplacesWholeSet(t *testing.T) {
	fetcher := &stubFetcher{recs: recs("a", "b", "c")}
	store := NewStore(fetcher, 100, nil)

	require.NoError(t, store.Refresh(context.Background()))
	assert.Equal(t, 3, store.Len())

	fetcher.recs = recs("d")
	require.NoError(t, store.Refresh(context.Background()))
	assert.Equal(t, 1, store.Len())

	_, ok := store.Get("a")
	assert.False(t, ok, "old set must be gone after refresh")
	_, ok = store.Get("d")
	assert.True(t, ok)
}

func TestRefresh_FailureKeepsPriorSet(t *testing.T) {
	fetcher := &stubFetcher{recs: recs("a", "b")}
	store := NewStore(fetcher, 100, nil)
	require.NoError(t, store.Refresh(context.Background()))

	fetcher.err = errors.New("backend down")
	err := store.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, store.Len())

	got, ok := store.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", got.ID)
}

func TestAll_ReturnsCopyInOrder(t *testing.T) {
	store := NewStore(&stubFetcher{recs: recs("a", "b", "c")}, 100, nil)
	require.NoError(t, store.Refresh(context.Background()))

	all := store.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[2].ID)

	// Mutating the returned slice must not leak into the store.
	all[0].ID = "mutated"
	got, ok := store.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", got.ID)
}

func TestIndexOfAndAt(t *testing.T) {
	store := NewStore(&stubFetcher{recs: recs("a", "b", "c")}, 100, nil)
	require.NoError(t, store.Refresh(context.Background()))

	assert.Equal(t, 1, store.IndexOf("b"))
	assert.Equal(t, -1, store.IndexOf("zz"))

	got, ok := store.At(2)
	assert.True(t, ok)
	assert.Equal(t, "c", got.ID)

	_, ok = store.At(3)
	assert.False(t, ok)
	_, ok = store.At(-1)
	assert.False(t, ok)
}

func TestReplace_PreservesOrder(t *testing.T) {
	store := NewStore(&stubFetcher{recs: recs("a", "b", "c")}, 100, nil)
	require.NoError(t, store.Refresh(context.Background()))

	store.Replace(Record{ID: "b", LikeCount: 7})

	assert.Equal(t, 1, store.IndexOf("b"))
	got, ok := store.Get("b")
	require.True(t, ok)
	assert.Equal(t, 7, got.LikeCount)
}

func TestReplace_UnknownIDIsNoOp(t *testing.T) {
	store := NewStore(&stubFetcher{recs: recs("a")}, 100, nil)
	require.NoError(t, store.Refresh(context.Background()))

	store.Replace(Record{ID: "feed-only", LikeCount: 9})
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get("feed-only")
	assert.False(t, ok)
}
