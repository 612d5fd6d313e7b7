// Package capture watches a directory for newly recorded audio files and
// uploads them to the backend with the session's position and identity.
// It is the terminal counterpart of the record button: drop a finished
// recording into the capture directory and it appears on the map.
package capture

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"echomap/internal/geo"
	"echomap/internal/record"
)

// audioExtensions are the file types eligible for upload.
var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
	".webm": true,
	".opus": true,
}

// settleDelay is how long a new file must sit before it is read, so a
// recorder still flushing does not get a truncated upload.
const settleDelay = 500 * time.Millisecond

// EventType classifies watcher events delivered to the UI.
type EventType int

const (
	EventStarted EventType = iota
	EventUploaded
	EventFailed
)

// Event is one watcher notification.
type Event struct {
	Type   EventType
	File   string
	Record record.Record // set for EventUploaded
	Err    error         // set for EventFailed
}

// Uploader is the slice of the remote client the watcher needs.
type Uploader interface {
	Upload(ctx context.Context, name string, file io.Reader, pos geo.Position, userID string) (record.Record, error)
}

// Watcher monitors one capture directory.
type Watcher struct {
	dir      string
	uploader Uploader
	pos      geo.Position
	userID   string
	logger   *zap.Logger

	fsw      *fsnotify.Watcher
	events   chan Event
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu        sync.Mutex
	processed map[string]bool
}

// New creates a watcher. pos and userID are fixed for the watcher's
// lifetime; both may be zero, which uploads unattributed records.
func New(dir string, uploader Uploader, pos geo.Position, userID string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:       dir,
		uploader:  uploader,
		pos:       pos,
		userID:    userID,
		logger:    logger,
		events:    make(chan Event, 16),
		stopCh:    make(chan struct{}),
		processed: make(map[string]bool),
	}
}

// Events returns the notification channel read by the UI.
func (w *Watcher) Events() <-chan Event { return w.events }

// Start begins watching. The directory is created if missing. Call Stop to
// tear down.
func (w *Watcher) Start() error {
	if w.dir == "" {
		return fmt.Errorf("capture directory is empty")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create capture dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	w.logger.Info("capture watcher started", zap.String("dir", w.dir))
	w.emit(Event{Type: EventStarted})

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop shuts the watcher down and waits for in-flight uploads to finish.
// Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.fsw != nil {
			w.fsw.Close()
		}
	})
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.handleFile(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("capture watcher error", zap.Error(err))
		}
	}
}

// handleFile uploads one file at most once, after it has settled.
func (w *Watcher) handleFile(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if !audioExtensions[ext] {
		return
	}

	w.mu.Lock()
	if w.processed[path] {
		w.mu.Unlock()
		return
	}
	w.processed[path] = true
	w.mu.Unlock()

	select {
	case <-time.After(settleDelay):
	case <-w.stopCh:
		return
	}

	f, err := os.Open(path)
	if err != nil {
		w.fail(path, fmt.Errorf("open capture file: %w", err))
		return
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rec, err := w.uploader.Upload(ctx, filepath.Base(path), f, w.pos, w.userID)
	if err != nil {
		w.fail(path, err)
		return
	}

	w.logger.Info("capture uploaded",
		zap.String("file", filepath.Base(path)),
		zap.String("record_id", rec.ID))
	w.emit(Event{Type: EventUploaded, File: path, Record: rec})
}

func (w *Watcher) fail(path string, err error) {
	w.logger.Warn("capture upload failed", zap.String("file", path), zap.Error(err))
	w.emit(Event{Type: EventFailed, File: path, Err: err})
}

// emit never blocks; if the UI is not draining, events are dropped rather
// than stalling uploads.
func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
	}
}
