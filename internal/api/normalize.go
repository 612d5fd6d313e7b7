package api

import (
	"strings"
	"time"

	"echomap/internal/geo"
	"echomap/internal/record"
)

// defaultAssetPrefix is where the backend serves uploaded audio from.
const defaultAssetPrefix = "/static/uploads/"

// defaultStory is shown while the backend has not generated a story yet.
const defaultStory = "No story generated yet."

// rawRecord is the backend wire shape for one audio record.
type rawRecord struct {
	ID             string   `json:"id"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	EmotionTag     string   `json:"emotion_tag"`
	SceneTags      []string `json:"scene_tags"`
	GeneratedStory string   `json:"generated_story"`
	FilePath       string   `json:"file_path"`
	CreatedAt      string   `json:"created_at"`
	LikeCount      int      `json:"like_count"`
	QuestionCount  int      `json:"question_count"`
	City           string   `json:"city"`
	District       string   `json:"district"`
}

// normalize maps one raw backend record into the internal shape, applying
// the documented defaults for absent fields.
func (c *Client) normalize(raw rawRecord) record.Record {
	emotion := record.Emotion(raw.EmotionTag)
	if emotion == "" {
		emotion = record.EmotionUnknown
	}
	tags := raw.SceneTags
	if tags == nil {
		tags = []string{}
	}
	story := raw.GeneratedStory
	if story == "" {
		story = defaultStory
	}

	var createdAt time.Time
	if raw.CreatedAt != "" {
		// The backend emits RFC 3339; tolerate a missing zone suffix.
		if t, err := time.Parse(time.RFC3339, raw.CreatedAt); err == nil {
			createdAt = t
		} else if t, err := time.Parse("2006-01-02T15:04:05", raw.CreatedAt); err == nil {
			createdAt = t
		}
	}

	return record.Record{
		ID:            raw.ID,
		Position:      geo.Position{Lat: raw.Latitude, Lng: raw.Longitude},
		Emotion:       emotion,
		Tags:          tags,
		Story:         story,
		AudioURL:      c.audioURL(raw.FilePath),
		CreatedAt:     createdAt,
		LikeCount:     raw.LikeCount,
		QuestionCount: raw.QuestionCount,
		City:          raw.City,
		District:      raw.District,
	}
}

func (c *Client) normalizeAll(raws []rawRecord) []record.Record {
	out := make([]record.Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, c.normalize(raw))
	}
	return out
}

// audioURL reassembles the playable locator from the backend file path.
// The backend may report either forward- or back-slash separated paths
// depending on the host it runs on; only the final segment matters.
func (c *Client) audioURL(filePath string) string {
	if filePath == "" {
		return ""
	}
	name := filePath
	if i := strings.LastIndexAny(filePath, `/\`); i >= 0 {
		name = filePath[i+1:]
	}
	return c.assetPrefix + name
}
