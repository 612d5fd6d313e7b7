package capture

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"echomap/internal/geo"
	"echomap/internal/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeUploader struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, name string, file io.Reader, _ geo.Position, _ string) (record.Record, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return record.Record{}, u.err
	}
	data, _ := io.ReadAll(file)
	u.calls = append(u.calls, name)
	return record.Record{ID: "rec-" + name, Story: string(data)}, nil
}

func (u *fakeUploader) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

func startWatcher(t *testing.T, uploader Uploader) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	w := New(dir, uploader, geo.Position{Lat: 31.2, Lng: 121.5}, "u-1", nil)
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)
	return w, dir
}

func awaitEvent(t *testing.T, w *Watcher, want EventType) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event type %d", want)
		}
	}
}

func TestWatcher_UploadsNewRecording(t *testing.T) {
	uploader := &fakeUploader{}
	w, dir := startWatcher(t, uploader)

	path := filepath.Join(dir, "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("au"), 0o644))

	ev := awaitEvent(t, w, EventUploaded)
	assert.Equal(t, path, ev.File)
	assert.Equal(t, "rec-clip.wav", ev.Record.ID)
	assert.Equal(t, "au", ev.Record.Story)
}

func TestWatcher_UploadsAtMostOncePerFile(t *testing.T) {
	uploader := &fakeUploader{}
	w, dir := startWatcher(t, uploader)

	path := filepath.Join(dir, "clip.mp3")
	// A recorder flushing in chunks produces create + several writes.
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("ab"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	awaitEvent(t, w, EventUploaded)
	time.Sleep(2 * settleDelay)
	assert.Equal(t, 1, uploader.callCount())
}

func TestWatcher_IgnoresNonAudioFiles(t *testing.T) {
	uploader := &fakeUploader{}
	_, dir := startWatcher(t, uploader)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(3 * settleDelay)
	assert.Zero(t, uploader.callCount())
}

func TestWatcher_EmitsFailureEvent(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("backend down")}
	w, dir := startWatcher(t, uploader)

	path := filepath.Join(dir, "clip.ogg")
	require.NoError(t, os.WriteFile(path, []byte("au"), 0o644))

	ev := awaitEvent(t, w, EventFailed)
	assert.Equal(t, path, ev.File)
	assert.ErrorContains(t, ev.Err, "backend down")
}

func TestWatcher_StartRequiresDir(t *testing.T) {
	w := New("", &fakeUploader{}, geo.Position{}, "", nil)
	assert.Error(t, w.Start())
}

func TestWatcher_StopIsClean(t *testing.T) {
	w, _ := startWatcher(t, &fakeUploader{})
	awaitEvent(t, w, EventStarted)
	w.Stop()
	// Cleanup calls Stop again; closing an already-closed watcher must not
	// panic or leak.
}
