package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// HybridWatcher implements the Watcher interface using fsnotify as the
// primary watching mechanism with polling as a fallback. It watches a
// corpus file (or a directory of corpus files) for changes so a running
// server can hot-reload its Chunk Store.
type HybridWatcher struct {
	fsWatcher      *fsnotify.Watcher
	pollWatcher    *PollingWatcher
	useFsnotify    bool
	debouncer      *Debouncer
	events         chan []FileEvent
	errors         chan error
	stopCh         chan struct{}
	rootPath       string
	opts           Options
	mu             sync.RWMutex
	stopped        bool
	droppedBatches atomic.Uint64
}

// Ensure HybridWatcher implements Watcher interface.
// Note: Events() returns batched events ([]FileEvent) due to debouncing.
var _ interface {
	Start(ctx context.Context, path string) error
	Stop() error
	Events() <-chan []FileEvent
	Errors() <-chan error
} = (*HybridWatcher)(nil)

// NewHybridWatcher creates a new hybrid watcher with the given options.
// Attempts to use fsnotify first, falls back to polling if it fails.
func NewHybridWatcher(opts Options) (*HybridWatcher, error) {
	opts = opts.WithDefaults()

	h := &HybridWatcher{
		debouncer: NewDebouncer(opts.DebounceWindow),
		events:    make(chan []FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		opts:      opts,
	}

	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		h.fsWatcher = fsw
		h.useFsnotify = true
	} else {
		h.useFsnotify = false
		h.pollWatcher = NewPollingWatcher(opts.PollInterval)
	}

	return h, nil
}

// Start begins watching the given path.
func (h *HybridWatcher) Start(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	h.rootPath = absPath

	go h.forwardDebouncedEvents(ctx)

	if h.useFsnotify {
		return h.startFsnotify(ctx)
	}
	return h.startPolling(ctx)
}

// startFsnotify starts the fsnotify-based watcher. If rootPath is a file,
// fsnotify watches its parent directory (fsnotify cannot watch a single
// file reliably across editors that replace-on-save); if it is a
// directory, its immediate children are watched non-recursively, since a
// corpus directory holds flat JSONL files rather than nested trees.
func (h *HybridWatcher) startFsnotify(ctx context.Context) error {
	watchDir := h.rootPath
	if info, err := os.Stat(h.rootPath); err == nil && !info.IsDir() {
		watchDir = filepath.Dir(h.rootPath)
	}
	if err := h.fsWatcher.Add(watchDir); err != nil {
		return fmt.Errorf("watch corpus directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = h.Stop()
			return ctx.Err()
		case <-h.stopCh:
			return nil
		case event, ok := <-h.fsWatcher.Events:
			if !ok {
				return nil
			}
			h.handleFsnotifyEvent(event)
		case err, ok := <-h.fsWatcher.Errors:
			if !ok {
				return nil
			}
			h.sendError(err)
		}
	}
}

func (h *HybridWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		return
	}

	h.debouncer.Add(FileEvent{
		Path:      event.Name,
		Operation: op,
		Timestamp: time.Now(),
	})
}

// startPolling starts the polling-based fallback watcher. If rootPath is a
// file, its parent directory is polled, as in startFsnotify.
func (h *HybridWatcher) startPolling(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stopCh:
				return
			case evt, ok := <-h.pollWatcher.Events():
				if !ok {
					return
				}
				h.debouncer.Add(evt)
			case err, ok := <-h.pollWatcher.Errors():
				if !ok {
					return
				}
				h.sendError(err)
			}
		}
	}()
	pollPath := h.rootPath
	if info, err := os.Stat(h.rootPath); err == nil && !info.IsDir() {
		pollPath = filepath.Dir(h.rootPath)
	}
	return h.pollWatcher.Start(ctx, pollPath)
}

// forwardDebouncedEvents reads coalesced batches from the debouncer and
// forwards them on the public Events channel.
func (h *HybridWatcher) forwardDebouncedEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case batch, ok := <-h.debouncer.Output():
			if !ok {
				return
			}
			h.emitEvents(batch)
		}
	}
}

// emitEvents sends a batch on the public Events channel, or counts it as
// dropped if the channel buffer is full.
func (h *HybridWatcher) emitEvents(batch []FileEvent) {
	select {
	case h.events <- batch:
	default:
		h.droppedBatches.Add(1)
		slog.Warn("watcher event buffer full, dropping batch", slog.Int("batch_size", len(batch)))
	}
}

func (h *HybridWatcher) sendError(err error) {
	select {
	case h.errors <- err:
	default:
	}
}

// Stop stops the watcher and releases resources. Safe to call multiple times.
func (h *HybridWatcher) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil
	}
	h.stopped = true

	close(h.stopCh)
	h.debouncer.Stop()

	if h.useFsnotify && h.fsWatcher != nil {
		_ = h.fsWatcher.Close()
	}
	if h.pollWatcher != nil {
		_ = h.pollWatcher.Stop()
	}

	close(h.events)
	close(h.errors)
	return nil
}

// Events returns the channel of debounced, batched file events.
func (h *HybridWatcher) Events() <-chan []FileEvent {
	return h.events
}

// Errors returns the channel of watcher errors.
func (h *HybridWatcher) Errors() <-chan error {
	return h.errors
}

// DroppedBatches returns the count of batches dropped due to a full event
// buffer, for telemetry.
func (h *HybridWatcher) DroppedBatches() uint64 {
	return h.droppedBatches.Load()
}
