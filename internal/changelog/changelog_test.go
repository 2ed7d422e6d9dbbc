package changelog

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func TestNewIDFormat(t *testing.T) {
	idRe := regexp.MustCompile(`^CHG-[0-9a-z]+-[0-9a-z]{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if !idRe.MatchString(id) {
			t.Fatalf("NewID() = %q, want CHG-<base36>-<base36>", id)
		}
		if seen[id] {
			t.Fatalf("NewID() produced duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestReadMissingFile(t *testing.T) {
	svc := NewService(t.TempDir())
	f, err := svc.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if f.Version != "1.0" {
		t.Errorf("version = %q, want 1.0", f.Version)
	}
	if len(f.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(f.Entries))
	}
}

func TestAppendAndRead(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)

	if err := svc.RecordCreate(EntityEpic, "EPIC-001", "alice"); err != nil {
		t.Fatalf("RecordCreate: %v", err)
	}
	if err := svc.RecordDelete(EntityFeature, "FEAT-002", "bob"); err != nil {
		t.Fatalf("RecordDelete: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "changelog.json")); err != nil {
		t.Fatalf("changelog file not written: %v", err)
	}

	f, err := svc.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(f.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(f.Entries))
	}
	first := f.Entries[0]
	if first.EntityType != EntityEpic || first.EntityID != "EPIC-001" || first.Action != ActionCreate || first.User != "alice" {
		t.Errorf("first entry = %+v", first)
	}
	if f.LastUpdated == "" {
		t.Error("lastUpdated not set")
	}
}

func TestRecordUpdatesSkipsNoOps(t *testing.T) {
	svc := NewService(t.TempDir())

	changes := map[string]Change{
		"status":   {Old: "todo", New: "in-progress"},
		"title":    {Old: "Same", New: "Same"},
		"estimate": {Old: 8.0, New: 8.0},
	}
	if err := svc.RecordUpdates(EntityFeature, "FEAT-001", changes, "alice"); err != nil {
		t.Fatalf("RecordUpdates: %v", err)
	}

	f, err := svc.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(f.Entries) != 1 {
		t.Fatalf("entries = %d, want 1 (no-op fields skipped)", len(f.Entries))
	}
	e := f.Entries[0]
	if e.Field != "status" || e.OldValue != "todo" || e.NewValue != "in-progress" {
		t.Errorf("entry = %+v", e)
	}
}

func TestRecordUpdatesAllNoOpsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)

	changes := map[string]Change{"title": {Old: "X", New: "X"}}
	if err := svc.RecordUpdates(EntityEpic, "EPIC-001", changes, ""); err != nil {
		t.Fatalf("RecordUpdates: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "changelog.json")); !os.IsNotExist(err) {
		t.Error("expected no changelog file for an all-no-op update")
	}
}

func seedEntries(t *testing.T, svc *Service) {
	t.Helper()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: NewID(), Timestamp: base.Format(time.RFC3339), EntityType: EntityEpic, EntityID: "EPIC-001", Action: ActionCreate},
		{ID: NewID(), Timestamp: base.Add(time.Hour).Format(time.RFC3339), EntityType: EntityFeature, EntityID: "FEAT-001", Action: ActionCreate},
		{ID: NewID(), Timestamp: base.Add(2 * time.Hour).Format(time.RFC3339), EntityType: EntityFeature, EntityID: "FEAT-001", Action: ActionUpdate, Field: "status"},
		{ID: NewID(), Timestamp: base.Add(3 * time.Hour).Format(time.RFC3339), EntityType: EntityFeature, EntityID: "FEAT-002", Action: ActionCreate},
		{ID: NewID(), Timestamp: base.Add(4 * time.Hour).Format(time.RFC3339), EntityType: EntityMilestone, EntityID: "MILE-001", Action: ActionDelete},
	}
	if err := svc.Append(entries...); err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestQueryFilters(t *testing.T) {
	svc := NewService(t.TempDir())
	seedEntries(t, svc)

	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"all", Options{}, 5},
		{"by entity id", Options{EntityID: "FEAT-001"}, 2},
		{"by type", Options{EntityType: EntityFeature}, 3},
		{"by action", Options{Action: ActionCreate}, 3},
		{"type and action", Options{EntityType: EntityFeature, Action: ActionUpdate}, 1},
		{"since cuts early entries", Options{Since: time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)}, 3},
		{"until cuts late entries", Options{Until: time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC)}, 2},
		{"no match", Options{EntityID: "FEAT-999"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Query(tt.opts)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestQuerySortsNewestFirst(t *testing.T) {
	svc := NewService(t.TempDir())
	seedEntries(t, svc)

	entries, err := svc.Query(Options{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Timestamp < entries[i].Timestamp {
			t.Fatalf("entries not sorted descending at %d: %s < %s", i, entries[i-1].Timestamp, entries[i].Timestamp)
		}
	}
}

func TestQueryPagination(t *testing.T) {
	svc := NewService(t.TempDir())
	seedEntries(t, svc)

	page1, err := svc.Query(Options{Limit: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("page1 = %d entries, want 2", len(page1))
	}

	page2, err := svc.Query(Options{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("page2 = %d entries, want 2", len(page2))
	}
	if page1[0].ID == page2[0].ID {
		t.Error("pages overlap")
	}

	past, err := svc.Query(Options{Offset: 100})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("offset past end = %d entries, want 0", len(past))
	}
}

func TestGetStats(t *testing.T) {
	svc := NewService(t.TempDir())
	seedEntries(t, svc)
	// One fresh entry so the recency windows have something to count.
	if err := svc.RecordCreate(EntityEpic, "EPIC-002", "carol"); err != nil {
		t.Fatalf("RecordCreate: %v", err)
	}

	stats, err := svc.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalEntries != 6 {
		t.Errorf("total = %d, want 6", stats.TotalEntries)
	}
	if stats.ByEntityType[EntityFeature] != 3 {
		t.Errorf("feature count = %d, want 3", stats.ByEntityType[EntityFeature])
	}
	if stats.ByAction[ActionCreate] != 4 {
		t.Errorf("create count = %d, want 4", stats.ByAction[ActionCreate])
	}
	if stats.Last24h != 1 {
		t.Errorf("last24h = %d, want 1", stats.Last24h)
	}
}
