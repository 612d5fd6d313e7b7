package api

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"echomap/internal/geo"
	"echomap/internal/record"
)

// Resonance fetches records tuned to the city and the local hour (0-23).
func (c *Client) Resonance(ctx context.Context, city string, hour int) ([]record.Record, error) {
	var raws []rawRecord
	path := fmt.Sprintf("/audio/resonance?city=%s&current_hour=%d", escapeCity(city), hour)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &raws); err != nil {
		return nil, fmt.Errorf("resonance feed: %w", err)
	}
	return c.normalizeAll(raws), nil
}

// Culture fetches the city's culture-curated records.
func (c *Client) Culture(ctx context.Context, city string) ([]record.Record, error) {
	var raws []rawRecord
	path := fmt.Sprintf("/audio/culture?city=%s", escapeCity(city))
	if err := c.do(ctx, http.MethodGet, path, nil, "", &raws); err != nil {
		return nil, fmt.Errorf("culture feed: %w", err)
	}
	return c.normalizeAll(raws), nil
}

// Roaming fetches records curated around a position inside the city.
func (c *Client) Roaming(ctx context.Context, city string, pos geo.Position) ([]record.Record, error) {
	var raws []rawRecord
	path := fmt.Sprintf("/audio/roaming?city=%s&lat=%g&lng=%g", escapeCity(city), pos.Lat, pos.Lng)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &raws); err != nil {
		return nil, fmt.Errorf("roaming feed: %w", err)
	}
	return c.normalizeAll(raws), nil
}

// Feed dispatches to the feed endpoint matching kind.
func (c *Client) Feed(ctx context.Context, kind record.FeedKind, city string, hour int, pos geo.Position) ([]record.Record, error) {
	switch kind {
	case record.FeedResonance:
		return c.Resonance(ctx, city, hour)
	case record.FeedCulture:
		return c.Culture(ctx, city)
	case record.FeedRoaming:
		return c.Roaming(ctx, city, pos)
	}
	return nil, fmt.Errorf("unknown feed kind %d", kind)
}

// AllFeeds fetches the three feeds concurrently. A single failed feed fails
// the whole call; callers that want partial results fetch feeds separately.
func (c *Client) AllFeeds(ctx context.Context, city string, hour int, pos geo.Position) (map[record.FeedKind][]record.Record, error) {
	results := make([][]record.Record, len(record.FeedKinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range record.FeedKinds {
		g.Go(func() error {
			recs, err := c.Feed(gctx, kind, city, hour, pos)
			if err != nil {
				return err
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[record.FeedKind][]record.Record, len(record.FeedKinds))
	for i, kind := range record.FeedKinds {
		out[kind] = results[i]
	}
	return out, nil
}
