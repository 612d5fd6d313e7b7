package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echomap/internal/geo"
	"echomap/internal/record"
)

const sampleRaw = `{
	"id": "rec-1",
	"latitude": 31.2304,
	"longitude": 121.4737,
	"emotion_tag": "Joy",
	"scene_tags": ["street", "rain"],
	"generated_story": "A story.",
	"file_path": "/srv/uploads/abc.webm",
	"created_at": "2024-05-01T12:30:00Z",
	"like_count": 3,
	"question_count": 1,
	"city": "上海市",
	"district": "黄浦区"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, nil)
}

func TestMapRecords_Normalization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/audios/map", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		fmt.Fprintf(w, "[%s]", sampleRaw)
	})

	recs, err := client.MapRecords(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	want := record.Record{
		ID:            "rec-1",
		Position:      geo.Position{Lat: 31.2304, Lng: 121.4737},
		Emotion:       record.EmotionJoy,
		Tags:          []string{"street", "rain"},
		Story:         "A story.",
		AudioURL:      "/static/uploads/abc.webm",
		CreatedAt:     time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		LikeCount:     3,
		QuestionCount: 1,
		City:          "上海市",
		District:      "黄浦区",
	}
	if diff := cmp.Diff(want, recs[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	client := NewClient("http://backend", nil)

	got := client.normalize(rawRecord{ID: "rec-2", FilePath: "x.wav"})
	assert.Equal(t, record.EmotionUnknown, got.Emotion)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, "No story generated yet.", got.Story)
	assert.Zero(t, got.LikeCount)
	assert.Zero(t, got.QuestionCount)
	assert.True(t, got.CreatedAt.IsZero())
}

func TestAudioURL_PathSeparators(t *testing.T) {
	client := NewClient("http://backend", nil)

	cases := map[string]string{
		"/srv/uploads/abc.webm":      "/static/uploads/abc.webm",
		`C:\uploads\def.wav`:         "/static/uploads/def.wav",
		`mixed/dir\ghi.mp3`:          "/static/uploads/ghi.mp3",
		"bare.ogg":                   "/static/uploads/bare.ogg",
		"":                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, client.audioURL(in), "file_path %q", in)
	}
}

func TestErrorResponse_Typed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "user not found", http.StatusNotFound)
	})

	_, err := client.GetUser(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "user not found", apiErr.Message)
}

func TestCreateUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"username":"guest_7"`)
		assert.Contains(t, string(body), `"password":"password"`)
		fmt.Fprint(w, `{"id":"u-7","username":"guest_7"}`)
	})

	u, err := client.CreateUser(context.Background(), "guest_7", "guest_7@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "u-7", u.ID)
}

func TestLikeUnlike_MethodAndPath(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		fmt.Fprint(w, sampleRaw)
	})

	rec, err := client.Like(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/audios/rec-1/like", gotPath)
	assert.Equal(t, "rec-1", rec.ID)

	_, err = client.Unlike(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)

	_, err = client.Flag(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "/api/audios/rec-1/question", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)

	_, err = client.Unflag(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestFeeds_QueryParameters(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, "[]")
	})
	ctx := context.Background()

	_, err := client.Resonance(ctx, "上海市", 22)
	require.NoError(t, err)
	assert.Equal(t, "/audio/resonance", gotPath)
	assert.Contains(t, gotQuery, "current_hour=22")

	_, err = client.Culture(ctx, "上海市")
	require.NoError(t, err)
	assert.Equal(t, "/audio/culture", gotPath)

	_, err = client.Roaming(ctx, "上海市", geo.Position{Lat: 31.2, Lng: 121.5})
	require.NoError(t, err)
	assert.Equal(t, "/audio/roaming", gotPath)
	assert.Contains(t, gotQuery, "lat=31.2")
	assert.Contains(t, gotQuery, "lng=121.5")
}

func TestAllFeeds_FetchesConcurrently(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "[%s]", sampleRaw)
	})

	feeds, err := client.AllFeeds(context.Background(), "上海市", 9, geo.Position{Lat: 31.2, Lng: 121.5})
	require.NoError(t, err)
	require.Len(t, feeds, 3)
	for _, kind := range record.FeedKinds {
		assert.Len(t, feeds[kind], 1, kind.String())
	}
}

func TestAllFeeds_OneFailureFailsAll(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "culture") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "[]")
	})

	_, err := client.AllFeeds(context.Background(), "上海市", 9, geo.Position{})
	require.Error(t, err)
}

func TestUpload_MultipartFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "31.5", r.FormValue("latitude"))
		assert.Equal(t, "121.25", r.FormValue("longitude"))
		assert.Equal(t, "u-1", r.FormValue("user_id"))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "clip.wav", header.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "au-data", string(data))

		fmt.Fprint(w, sampleRaw)
	})

	rec, err := client.Upload(context.Background(), "/tmp/clip.wav",
		strings.NewReader("au-data"), geo.Position{Lat: 31.5, Lng: 121.25}, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", rec.ID)
}

func TestUpload_OmitsEmptyUserID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasUser := r.MultipartForm.Value["user_id"]
		assert.False(t, hasUser, "unattributed upload must not send user_id")
		fmt.Fprint(w, sampleRaw)
	})

	_, err := client.Upload(context.Background(), "clip.wav",
		strings.NewReader("x"), geo.Position{Lat: 1, Lng: 2}, "")
	require.NoError(t, err)
}

func TestUpdateRecord_PartialBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/records/rec-1", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"emotion_tag":"Peace"`)
		assert.NotContains(t, string(body), "scene_tags")
		fmt.Fprint(w, sampleRaw)
	})

	emotion := "Peace"
	_, err := client.UpdateRecord(context.Background(), "rec-1", UpdateRequest{EmotionTag: &emotion})
	require.NoError(t, err)
}

func TestRegenerateStory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/records/rec-1/regenerate", r.URL.Path)
		fmt.Fprint(w, sampleRaw)
	})

	rec, err := client.RegenerateStory(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "A story.", rec.Story)
}
