package observability

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/axon/internal/fsutil"
	"github.com/aretw0/axon/pkg/domain"
)

// FileWriter persists sorted timelines to disk in one WriteMode. Writes are
// serialized, so concurrent appends never drop each other's events.
type FileWriter struct {
	Path       string
	Mode       WriteMode
	MaxEvents  int
	RotateKeep int

	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time
}

// NewFileWriter creates a writer for path. A nil logger discards warnings.
func NewFileWriter(path string, mode WriteMode, maxEvents, rotateKeep int, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &FileWriter{
		Path:       path,
		Mode:       mode,
		MaxEvents:  maxEvents,
		RotateKeep: rotateKeep,
		logger:     logger,
		now:        time.Now,
	}
}

// Write persists events and returns the file that was written.
func (w *FileWriter) Write(events []domain.TimelineEvent) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.Mode {
	case ModeOverwrite, "":
		return w.Path, fsutil.WriteJSON(w.Path, domain.NewTimeline(events...))
	case ModeAppend:
		return w.Path, w.append(events)
	case ModeRotate:
		return w.rotate(events)
	default:
		return "", fmt.Errorf("unknown timeline write mode %q", w.Mode)
	}
}

// append merges events into the existing file. An unreadable or corrupt file is
// replaced by the current events alone.
func (w *FileWriter) append(events []domain.TimelineEvent) error {
	merged, err := ReadTimelineFile(w.Path)
	switch {
	case err == nil:
		merged.Merge(events)
	case errors.Is(err, fs.ErrNotExist):
		merged = domain.NewTimeline(events...)
	default:
		w.logger.Warn("existing timeline unreadable, writing current run only", "path", w.Path, "error", err)
		merged = domain.NewTimeline(events...)
	}
	merged.Sort()
	merged.TruncateOldest(w.MaxEvents)
	return fsutil.WriteJSON(w.Path, merged)
}

func (w *FileWriter) rotate(events []domain.TimelineEvent) (string, error) {
	dir, stem, ext := splitPath(w.Path)
	target := filepath.Join(dir, stem+"."+strconv.FormatInt(w.now().UnixNano(), 10)+ext)
	if err := fsutil.WriteJSON(target, domain.NewTimeline(events...)); err != nil {
		return "", err
	}
	if w.RotateKeep > 0 {
		if err := w.prune(); err != nil {
			w.logger.Warn("failed to prune rotated timelines", "path", w.Path, "error", err)
		}
	}
	return target, nil
}

type rotated struct {
	path    string
	modTime time.Time
}

// prune deletes rotated files beyond RotateKeep, oldest modification time first.
func (w *FileWriter) prune() error {
	files, err := RotatedFiles(w.Path)
	if err != nil {
		return err
	}
	if len(files) <= w.RotateKeep {
		return nil
	}
	var errs []error
	for _, f := range files[w.RotateKeep:] {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RotatedFiles lists the rotated siblings of path, most recently modified first.
func RotatedFiles(path string) ([]string, error) {
	dir, stem, ext := splitPath(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var found []rotated
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, stem+".") || !strings.HasSuffix(name, ext) {
			continue
		}
		suffix := strings.TrimSuffix(strings.TrimPrefix(name, stem+"."), ext)
		if _, err := strconv.ParseInt(suffix, 10, 64); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, rotated{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}

	slices.SortFunc(found, func(a, b rotated) int {
		if c := b.modTime.Compare(a.modTime); c != 0 {
			return c
		}
		return strings.Compare(b.path, a.path)
	})
	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.path
	}
	return out, nil
}

// ReadTimelineFile loads a persisted timeline.
func ReadTimelineFile(path string) (*domain.Timeline, error) {
	tl := domain.NewTimeline()
	if err := fsutil.ReadJSON(path, tl); err != nil {
		return nil, err
	}
	return tl, nil
}

func splitPath(path string) (dir, stem, ext string) {
	dir = filepath.Dir(path)
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	stem = strings.TrimSuffix(base, ext)
	return dir, stem, ext
}
