package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// collectingBroadcaster records notifications thread-safely; fire runs on
// timer goroutines.
type collectingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (c *collectingBroadcaster) EntityChanged(entityType, entityID, action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, fmt.Sprintf("%s/%s/%s", entityType, entityID, action))
}

func (c *collectingBroadcaster) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	copy(out, c.events)
	return out
}

func startWatcher(t *testing.T, debounce time.Duration) (*Watcher, *collectingBroadcaster, string) {
	t.Helper()
	root := t.TempDir()
	b := &collectingBroadcaster{}
	w, err := New(root, b, &Config{Debounce: debounce})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w, b, root
}

// waitFor polls until the broadcaster holds at least n events or the
// deadline passes.
func waitFor(t *testing.T, b *collectingBroadcaster, n int, deadline time.Duration) []string {
	t.Helper()
	stop := time.Now().Add(deadline)
	for time.Now().Before(stop) {
		if events := b.snapshot(); len(events) >= n {
			return events
		}
		time.Sleep(10 * time.Millisecond)
	}
	return b.snapshot()
}

func TestWatcherBroadcastsCreate(t *testing.T) {
	_, b, root := startWatcher(t, 50*time.Millisecond)

	path := filepath.Join(root, "features", "feat-001.md")
	if err := os.WriteFile(path, []byte("# Feature: X\n\n- **ID**: FEAT-001\n"), 0644); err != nil {
		t.Fatal(err)
	}

	events := waitFor(t, b, 1, 2*time.Second)
	if len(events) != 1 {
		t.Fatalf("events = %v, want exactly one", events)
	}
	if events[0] != "feature/FEAT-001/created" {
		t.Errorf("event = %s, want feature/FEAT-001/created", events[0])
	}
}

// Writing a new file arrives as a create immediately followed by a write;
// the coalesced broadcast must still say created.
func TestMergeActions(t *testing.T) {
	tests := []struct {
		pending, next, want string
	}{
		{"created", "updated", "created"},
		{"created", "created", "created"},
		{"updated", "updated", "updated"},
		{"created", "deleted", "deleted"},
		{"updated", "deleted", "deleted"},
		{"deleted", "created", "created"},
	}
	for _, tt := range tests {
		if got := mergeActions(tt.pending, tt.next); got != tt.want {
			t.Errorf("mergeActions(%s, %s) = %s, want %s", tt.pending, tt.next, got, tt.want)
		}
	}
}

func TestWatcherCreateThenWriteStaysCreate(t *testing.T) {
	_, b, root := startWatcher(t, 100*time.Millisecond)

	path := filepath.Join(root, "features", "feat-007.md")
	if err := os.WriteFile(path, []byte("- **ID**: FEAT-007\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// Rewrite inside the debounce window; the create must not be downgraded.
	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(path, []byte("- **ID**: FEAT-007\n- **Status**: todo\n"), 0644); err != nil {
		t.Fatal(err)
	}

	events := waitFor(t, b, 1, 2*time.Second)
	time.Sleep(200 * time.Millisecond)
	events = b.snapshot()
	if len(events) != 1 {
		t.Fatalf("events = %v, want one", events)
	}
	if events[0] != "feature/FEAT-007/created" {
		t.Errorf("event = %s, want feature/FEAT-007/created", events[0])
	}
}

func TestWatcherCoalescesRapidWrites(t *testing.T) {
	_, b, root := startWatcher(t, 100*time.Millisecond)

	path := filepath.Join(root, "epics", "epic-001.md")
	for i := 0; i < 3; i++ {
		content := fmt.Sprintf("# Epic: Rev %d\n\n- **ID**: EPIC-001\n", i)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	events := waitFor(t, b, 1, 2*time.Second)
	// Let any stray timers fire before counting.
	time.Sleep(200 * time.Millisecond)
	events = b.snapshot()
	if len(events) != 1 {
		t.Fatalf("events = %v, want rapid writes coalesced into one", events)
	}
	if events[0] != "epic/EPIC-001/updated" && events[0] != "epic/EPIC-001/created" {
		t.Errorf("event = %s", events[0])
	}
}

func TestWatcherDistinctFilesNotCoalesced(t *testing.T) {
	_, b, root := startWatcher(t, 50*time.Millisecond)

	for _, name := range []string{"feat-001.md", "feat-002.md"} {
		path := filepath.Join(root, "features", name)
		if err := os.WriteFile(path, []byte("- **ID**: X\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	events := waitFor(t, b, 2, 2*time.Second)
	if len(events) != 2 {
		t.Fatalf("events = %v, want one per file", events)
	}
	seen := map[string]bool{}
	for _, e := range events {
		seen[e] = true
	}
	if !seen["feature/FEAT-001/created"] || !seen["feature/FEAT-002/created"] {
		t.Errorf("events = %v", events)
	}
}

func TestWatcherIgnoresNonMarkdown(t *testing.T) {
	_, b, root := startWatcher(t, 50*time.Millisecond)

	if err := os.WriteFile(filepath.Join(root, "epics", "notes.txt"), []byte("scratch"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	if events := b.snapshot(); len(events) != 0 {
		t.Errorf("events = %v, want none for non-markdown files", events)
	}
}

func TestWatcherDelete(t *testing.T) {
	_, b, root := startWatcher(t, 50*time.Millisecond)

	path := filepath.Join(root, "milestones", "mile-001.md")
	if err := os.WriteFile(path, []byte("- **ID**: MILE-001\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, b, 1, 2*time.Second)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	events := waitFor(t, b, 2, 2*time.Second)
	if len(events) < 2 {
		t.Fatalf("events = %v, want create then delete", events)
	}
	last := events[len(events)-1]
	if last != "milestone/MILE-001/deleted" {
		t.Errorf("last event = %s, want milestone/MILE-001/deleted", last)
	}
}

func TestWatcherStopCancelsPending(t *testing.T) {
	w, b, root := startWatcher(t, 300*time.Millisecond)

	path := filepath.Join(root, "features", "feat-001.md")
	if err := os.WriteFile(path, []byte("- **ID**: FEAT-001\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// Stop before the debounce window elapses; nothing may fire afterwards.
	time.Sleep(50 * time.Millisecond)
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	time.Sleep(400 * time.Millisecond)
	if events := b.snapshot(); len(events) != 0 {
		t.Errorf("events after Stop = %v, want none", events)
	}
	if w.IsRunning() {
		t.Error("IsRunning after Stop")
	}
}

func TestWatcherStartTwice(t *testing.T) {
	w, _, _ := startWatcher(t, 50*time.Millisecond)
	if err := w.Start(); err == nil {
		t.Error("second Start should fail")
	}
}
