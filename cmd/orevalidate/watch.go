package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// BagWatcher watches an extraction directory and signals when its content
// changed. Changes are debounced and coalesced: a burst of writes produces
// one signal.
type BagWatcher struct {
	root     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// Debouncing: collect changes before signalling
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// Hash-based change detection, keyed by path relative to root
	hashMu sync.Mutex
	hashes map[string]string

	changes chan struct{}
}

// NewBagWatcher creates a watcher for root.
func NewBagWatcher(root string, debounce time.Duration, logger *slog.Logger) (*BagWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &BagWatcher{
		root:     root,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		changes:  make(chan struct{}, 1),
	}, nil
}

// Changes returns the change signal channel. It is closed when the watcher
// stops.
func (w *BagWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Start records the current file hashes and begins watching.
func (w *BagWatcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Bag watcher started",
		"root", w.root,
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
func (w *BagWatcher) Stop() error {
	return w.watcher.Close()
}

// addWatchesRecursive watches every directory under root and hashes the
// files found, so that touching a file without changing it is ignored.
func (w *BagWatcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && path != root {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() {
			if hash, err := fileHash(path); err == nil {
				w.setHash(path, hash)
			}
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing.
func (w *BagWatcher) processEvents(ctx context.Context) {
	defer close(w.changes)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if w.flushPending() {
				w.signal()
			}
		}
	}
}

func (w *BagWatcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			// New directories may already hold files, so they count as a change.
			if err := w.addWatchesRecursive(path); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}
		}
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Bag change detected",
		"path", path,
		"op", event.Op.String())
}

// flushPending clears the pending set and reports whether any file content
// actually changed.
func (w *BagWatcher) flushPending() bool {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return false
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	changed := false
	for path, op := range toProcess {
		info, err := os.Stat(path)
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) || err != nil {
			w.deleteHash(path)
			changed = true
			continue
		}
		if info.IsDir() {
			changed = true
			continue
		}
		hash, err := fileHash(path)
		if err != nil {
			w.logger.Warn("Failed to read file for hash check", "path", path, "error", err)
			continue
		}
		if w.swapHash(path, hash) {
			changed = true
		}
	}
	return changed
}

// signal notifies the consumer without blocking; an unconsumed signal
// already covers the new change.
func (w *BagWatcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *BagWatcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[w.rel(path)] = hash
}

func (w *BagWatcher) deleteHash(path string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	delete(w.hashes, w.rel(path))
}

// swapHash stores hash and reports whether it differs from the previous one.
func (w *BagWatcher) swapHash(path, hash string) bool {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	key := w.rel(path)
	old, ok := w.hashes[key]
	w.hashes[key] = hash
	return !ok || old != hash
}

func (w *BagWatcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return rel
}

func fileHash(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}
