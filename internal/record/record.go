// Package record defines the normalized audio record model and the in-memory
// working set the map and recommendation views render from.
package record

import (
	"time"

	"echomap/internal/geo"
)

// Emotion is the classifier label attached to a record. The set is fixed;
// anything the backend sends outside it is kept verbatim but rendered with
// the Unknown color.
type Emotion string

const (
	EmotionJoy        Emotion = "Joy"
	EmotionLoneliness Emotion = "Loneliness"
	EmotionNostalgia  Emotion = "Nostalgia"
	EmotionLove       Emotion = "Love"
	EmotionPeace      Emotion = "Peace"
	EmotionExcitement Emotion = "Excitement"
	EmotionUnknown    Emotion = "Unknown"
)

// Emotions lists the known labels in display order.
var Emotions = []Emotion{
	EmotionJoy,
	EmotionLoneliness,
	EmotionNostalgia,
	EmotionLove,
	EmotionPeace,
	EmotionExcitement,
}

// Record is one geo-tagged audio story, normalized from a backend raw record.
// Records are immutable snapshots: a like/flag call returns a fresh record
// which replaces this one wholesale.
type Record struct {
	ID            string
	Position      geo.Position
	Emotion       Emotion
	Tags          []string
	Story         string
	AudioURL      string
	CreatedAt     time.Time
	LikeCount     int
	QuestionCount int
	City          string
	District      string
}

// FeedKind selects one of the backend-curated recommendation feeds.
type FeedKind int

const (
	FeedResonance FeedKind = iota
	FeedCulture
	FeedRoaming
)

// FeedKinds lists the tabs in display order.
var FeedKinds = []FeedKind{FeedResonance, FeedCulture, FeedRoaming}

func (k FeedKind) String() string {
	switch k {
	case FeedResonance:
		return "resonance"
	case FeedCulture:
		return "culture"
	case FeedRoaming:
		return "roaming"
	}
	return "unknown"
}

// Title returns the tab label shown in the recommendation panel.
func (k FeedKind) Title() string {
	switch k {
	case FeedResonance:
		return "Resonance"
	case FeedCulture:
		return "Culture"
	case FeedRoaming:
		return "Roaming"
	}
	return "?"
}
