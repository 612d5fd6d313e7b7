package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"echomap/internal/geo"
	"echomap/internal/record"
)

// MapRecords fetches up to limit of the most recently created records.
func (c *Client) MapRecords(ctx context.Context, limit int) ([]record.Record, error) {
	var raws []rawRecord
	path := fmt.Sprintf("/api/audios/map?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &raws); err != nil {
		return nil, fmt.Errorf("map records: %w", err)
	}
	return c.normalizeAll(raws), nil
}

// UpdateRequest holds the mutable annotation fields of a record. Nil fields
// are omitted from the request and left unchanged by the backend.
type UpdateRequest struct {
	EmotionTag     *string   `json:"emotion_tag,omitempty"`
	SceneTags      *[]string `json:"scene_tags,omitempty"`
	GeneratedStory *string   `json:"generated_story,omitempty"`
}

// UpdateRecord patches a record's annotations and returns the fresh snapshot.
func (c *Client) UpdateRecord(ctx context.Context, id string, req UpdateRequest) (record.Record, error) {
	var raw rawRecord
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/records/"+id, req, &raw); err != nil {
		return record.Record{}, fmt.Errorf("update record %s: %w", id, err)
	}
	return c.normalize(raw), nil
}

// RegenerateStory asks the backend to regenerate the AI story for a record.
func (c *Client) RegenerateStory(ctx context.Context, id string) (record.Record, error) {
	var raw rawRecord
	if err := c.do(ctx, http.MethodPost, "/api/v1/records/"+id+"/regenerate", nil, "", &raw); err != nil {
		return record.Record{}, fmt.Errorf("regenerate story %s: %w", id, err)
	}
	return c.normalize(raw), nil
}

// Like and its siblings toggle a counter and return the fresh snapshot; the
// caller swaps it into the store.
func (c *Client) Like(ctx context.Context, id string) (record.Record, error) {
	return c.toggle(ctx, http.MethodPost, id, "like")
}

func (c *Client) Unlike(ctx context.Context, id string) (record.Record, error) {
	return c.toggle(ctx, http.MethodDelete, id, "like")
}

func (c *Client) Flag(ctx context.Context, id string) (record.Record, error) {
	return c.toggle(ctx, http.MethodPost, id, "question")
}

func (c *Client) Unflag(ctx context.Context, id string) (record.Record, error) {
	return c.toggle(ctx, http.MethodDelete, id, "question")
}

func (c *Client) toggle(ctx context.Context, method, id, counter string) (record.Record, error) {
	var raw rawRecord
	path := "/api/audios/" + id + "/" + counter
	if err := c.do(ctx, method, path, nil, "", &raw); err != nil {
		return record.Record{}, fmt.Errorf("%s %s %s: %w", method, counter, id, err)
	}
	return c.normalize(raw), nil
}

// Upload sends one audio file as multipart form data along with the position
// it was captured at. userID is optional; without it the upload is
// unattributed.
func (c *Client) Upload(ctx context.Context, name string, file io.Reader, pos geo.Position, userID string) (record.Record, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return record.Record{}, fmt.Errorf("upload %s: %w", name, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return record.Record{}, fmt.Errorf("upload %s: read file: %w", name, err)
	}
	if err := w.WriteField("latitude", strconv.FormatFloat(pos.Lat, 'f', -1, 64)); err != nil {
		return record.Record{}, fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.WriteField("longitude", strconv.FormatFloat(pos.Lng, 'f', -1, 64)); err != nil {
		return record.Record{}, fmt.Errorf("upload %s: %w", name, err)
	}
	if userID != "" {
		if err := w.WriteField("user_id", userID); err != nil {
			return record.Record{}, fmt.Errorf("upload %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return record.Record{}, fmt.Errorf("upload %s: %w", name, err)
	}

	var raw rawRecord
	if err := c.do(ctx, http.MethodPost, "/api/audios/upload", &buf, w.FormDataContentType(), &raw); err != nil {
		return record.Record{}, fmt.Errorf("upload %s: %w", name, err)
	}
	return c.normalize(raw), nil
}

// escapeCity query-encodes a city name for the feed endpoints.
func escapeCity(city string) string {
	return url.QueryEscape(city)
}
