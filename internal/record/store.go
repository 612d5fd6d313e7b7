package record

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Fetcher supplies the map page. Implemented by *api.Client; tests stub it.
type Fetcher interface {
	MapRecords(ctx context.Context, limit int) ([]Record, error)
}

// Store holds the current working set of map records. Refresh replaces the
// whole set atomically; a failed fetch leaves the previous set untouched.
// There is no cache beyond this one in-memory slice and no pagination cursor.
type Store struct {
	mu      sync.RWMutex
	records []Record

	fetcher Fetcher
	limit   int
	logger  *zap.Logger
}

// NewStore creates an empty store that refreshes through the given fetcher.
// limit bounds the page size requested from the backend.
func NewStore(fetcher Fetcher, limit int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fetcher: fetcher,
		limit:   limit,
		logger:  logger,
	}
}

// Refresh fetches the most recent page of records and swaps it in. On error
// the prior set is kept and the error is returned for the caller to log or
// ignore; the store itself logs it once.
func (s *Store) Refresh(ctx context.Context) error {
	recs, err := s.fetcher.MapRecords(ctx, s.limit)
	if err != nil {
		s.logger.Warn("map refresh failed, keeping previous set",
			zap.Int("have", s.Len()),
			zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.records = recs
	s.mu.Unlock()

	s.logger.Debug("map refreshed", zap.Int("records", len(recs)))
	return nil
}

// All returns the current working set in backend order (most recent first).
// The returned slice is a copy; callers may hold it across refreshes.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the current working-set size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get looks up a record by identifier.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// IndexOf returns the position of id in the current ordering, or -1.
func (s *Store) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// At returns the record at index i in the current ordering.
func (s *Store) At(i int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.records) {
		return Record{}, false
	}
	return s.records[i], true
}

// Replace swaps in a freshly normalized record returned by a mutation call
// (like/unlike, flag/unflag), preserving order. Unknown ids are ignored:
// the record may belong to a feed that is not part of the map page.
func (s *Store) Replace(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == rec.ID {
			s.records[i] = rec
			return
		}
	}
}
