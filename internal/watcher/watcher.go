// Package watcher is the sync engine: it watches the store's entity
// directories, debounces filesystem event bursts per file, classifies each
// settled change by entity type, and hands it to a broadcaster.
//
// A write through the store broadcasts immediately and is then usually
// observed here a debounce window later, so one API write legitimately
// produces two broadcasts. Consumers treat broadcasts as invalidation
// hints and re-fetch rather than trusting embedded data.
package watcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pmspec/pmspec/internal/store"
)

// DefaultDebounce is the window during which repeated events for the same
// file collapse into one broadcast.
const DefaultDebounce = 300 * time.Millisecond

// Broadcaster receives the settled change notifications.
type Broadcaster interface {
	EntityChanged(entityType, entityID, action string)
}

// Config adjusts the watcher. Zero values get defaults.
type Config struct {
	Debounce time.Duration
	Logger   *log.Logger
}

type pendingChange struct {
	timer  *time.Timer
	action string
}

// Watcher monitors one store root. Lifecycle is Start/Stop; Stop cancels
// every pending debounce timer so nothing fires after teardown.
type Watcher struct {
	root        string
	broadcaster Broadcaster
	debounce    time.Duration
	logger      *log.Logger

	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	pending map[string]*pendingChange
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher over the store rooted at root. Events are delivered
// to b after debouncing.
func New(root string, b Broadcaster, cfg *Config) (*Watcher, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[watcher] ", log.LstdFlags)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:        root,
		broadcaster: b,
		debounce:    debounce,
		logger:      logger,
		fsw:         fsw,
		pending:     make(map[string]*pendingChange),
		done:        make(chan struct{}),
	}, nil
}

// Start begins watching the entity subdirectories. Missing subdirectories
// are created first so edits appearing later are still observed.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	for _, sub := range []string{store.EpicsDir, store.FeaturesDir, store.MilestonesDir} {
		dir := filepath.Join(w.root, sub)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.running = true
	w.wg.Add(1)
	go w.loop()

	w.logger.Printf("Watching %s", w.root)
	return nil
}

// Stop shuts the watcher down, cancelling pending debounce timers and
// waiting for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	close(w.done)
	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.wg.Wait()
	return nil
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Degraded, not dead: log and keep watching.
			w.logger.Printf("Watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, store.Extension) {
		return
	}

	var action string
	switch {
	case event.Has(fsnotify.Create):
		action = "created"
	case event.Has(fsnotify.Write):
		action = "updated"
	case event.Has(fsnotify.Remove):
		action = "deleted"
	case event.Has(fsnotify.Rename):
		// The new name will arrive as its own create event.
		action = "deleted"
	default:
		return
	}

	w.queue(event.Name, action)
}

// queue arms (or re-arms) the per-file debounce timer, merging the new
// action with any pending one for the same file.
func (w *Watcher) queue(path, action string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		action = mergeActions(p.action, action)
	}
	p := &pendingChange{action: action}
	p.timer = time.AfterFunc(w.debounce, func() { w.fire(path) })
	w.pending[path] = p
}

// mergeActions collapses overlapping events for one file into a single
// action. Writing a new file shows up as a create followed by writes;
// that is still one create. A delete supersedes whatever came before it.
func mergeActions(pending, next string) string {
	if next == "deleted" {
		return next
	}
	if pending == "created" {
		return pending
	}
	return next
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	running := w.running
	w.mu.Unlock()

	if !ok || !running {
		return
	}

	entityType, entityID, ok := w.classify(path)
	if !ok {
		return
	}
	w.logger.Printf("File change settled: %s %s (%s)", entityType, entityID, p.action)
	if w.broadcaster != nil {
		w.broadcaster.EntityChanged(entityType, entityID, p.action)
	}
}

// classify maps a path to an entity type by its top-level subdirectory and
// derives the entity id from the filename.
func (w *Watcher) classify(path string) (entityType, entityID string, ok bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", "", false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return "", "", false
	}

	switch parts[0] {
	case store.EpicsDir:
		entityType = "epic"
	case store.FeaturesDir:
		entityType = "feature"
	case store.MilestonesDir:
		entityType = "milestone"
	default:
		return "", "", false
	}

	name := parts[len(parts)-1]
	entityID = strings.ToUpper(strings.TrimSuffix(name, store.Extension))
	return entityType, entityID, true
}
