package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Event represents a change to a log file under the watched directory.
type Event struct {
	Path string // relative to the watched directory, forward slashes
	Op   fsnotify.Op
}

// Watcher reports changes to files matching a glob under one directory
// using OS-level notifications. Subdirectories are watched too, including
// ones created after start.
type Watcher struct {
	fsw     *fsnotify.Watcher
	Events  chan Event
	dir     string
	pattern string

	mu   sync.Mutex
	dirs []string
}

// New creates a Watcher for files under dir that match pattern
// (a doublestar glob relative to dir).
func New(dir, pattern string) (*Watcher, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		Events:  make(chan Event, 256),
		dir:     abs,
		pattern: pattern,
	}
	if err := w.addTree(abs); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches root and every directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			log.Warn().Err(err).Str("path", p).Msg("watcher: skipping unreadable path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			log.Warn().Err(err).Str("dir", p).Msg("watcher: cannot watch directory")
			return nil
		}
		w.mu.Lock()
		w.dirs = append(w.dirs, p)
		w.mu.Unlock()
		return nil
	})
}

// Start begins listening for file events. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 && isDir(ev.Name) {
				if err := w.addTree(ev.Name); err != nil {
					log.Warn().Err(err).Str("dir", ev.Name).Msg("watcher: cannot watch new directory")
				}
				continue
			}
			// Forward relevant events (write, create, remove, rename).
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			rel, ok := w.relative(ev.Name)
			if !ok {
				continue
			}
			select {
			case w.Events <- Event{Path: rel, Op: ev.Op}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}

// relative maps an absolute event path to a pattern-matching relative name.
func (w *Watcher) relative(name string) (string, bool) {
	rel, err := filepath.Rel(w.dir, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	ok, err := doublestar.Match(w.pattern, rel)
	return rel, err == nil && ok
}

// Dirs returns the directories currently being watched.
func (w *Watcher) Dirs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.dirs...)
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
