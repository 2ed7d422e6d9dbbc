package changelog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/natefinch/atomic"
)

// DefaultLimit is the page size applied when a query does not set one.
const DefaultLimit = 50

// Service reads and appends the changelog document. A single mutex
// serializes appends within the process; entries are never mutated or
// deleted once written.
type Service struct {
	path string
	mu   sync.Mutex
}

// NewService creates a changelog service over <dir>/changelog.json.
func NewService(dir string) *Service {
	return &Service{path: filepath.Join(dir, "changelog.json")}
}

// Path returns the changelog file location.
func (s *Service) Path() string {
	return s.path
}

// Read loads the changelog document. A missing file is a valid empty
// changelog, not an error.
func (s *Service) Read() (*File, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Version: "1.0"}, nil
		}
		return nil, fmt.Errorf("failed to read changelog: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse changelog: %w", err)
	}
	if f.Version == "" {
		f.Version = "1.0"
	}
	return &f, nil
}

func (s *Service) write(f *File) error {
	f.LastUpdated = time.Now().Format(time.RFC3339)
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal changelog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create changelog directory: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write changelog: %w", err)
	}
	return nil
}

// Init materializes the changelog file on disk, preserving any existing
// entries.
func (s *Service) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.Read()
	if err != nil {
		return err
	}
	return s.write(f)
}

// Append adds entries to the log. Appending nothing is a no-op.
func (s *Service) Append(entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.Read()
	if err != nil {
		return err
	}
	f.Entries = append(f.Entries, entries...)
	return s.write(f)
}

// RecordCreate appends a create entry.
func (s *Service) RecordCreate(entityType EntityType, entityID, user string) error {
	e := NewEntry(entityType, entityID, ActionCreate)
	e.User = user
	return s.Append(e)
}

// RecordDelete appends a delete entry.
func (s *Service) RecordDelete(entityType EntityType, entityID, user string) error {
	e := NewEntry(entityType, entityID, ActionDelete)
	e.User = user
	return s.Append(e)
}

// Change holds a field's value before and after a mutation.
type Change struct {
	Old any
	New any
}

// RecordUpdates appends one update entry per genuinely changed field.
// Fields whose old and new values are equal (compared by canonical JSON)
// produce no entry.
func (s *Service) RecordUpdates(entityType EntityType, entityID string, changes map[string]Change, user string) error {
	var entries []Entry
	fields := make([]string, 0, len(changes))
	for field := range changes {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		c := changes[field]
		if jsonEqual(c.Old, c.New) {
			continue
		}
		e := NewEntry(entityType, entityID, ActionUpdate)
		e.Field = field
		e.OldValue = c.Old
		e.NewValue = c.New
		e.User = user
		entries = append(entries, e)
	}
	return s.Append(entries...)
}

func jsonEqual(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

// Options filters and paginates a changelog query. Zero values mean
// "no filter"; a zero Limit uses DefaultLimit.
type Options struct {
	EntityID   string
	EntityType EntityType
	Action     Action
	Since      time.Time // inclusive
	Until      time.Time // inclusive
	Limit      int
	Offset     int
}

// Query returns entries matching the options, sorted by timestamp
// descending, then paginated.
func (s *Service) Query(opts Options) ([]Entry, error) {
	f, err := s.Read()
	if err != nil {
		return nil, err
	}

	var filtered []Entry
	for _, e := range f.Entries {
		if opts.EntityID != "" && e.EntityID != opts.EntityID {
			continue
		}
		if opts.EntityType != "" && e.EntityType != opts.EntityType {
			continue
		}
		if opts.Action != "" && e.Action != opts.Action {
			continue
		}
		if !opts.Since.IsZero() || !opts.Until.IsZero() {
			ts, err := time.Parse(time.RFC3339, e.Timestamp)
			if err != nil {
				continue
			}
			if !opts.Since.IsZero() && ts.Before(opts.Since) {
				continue
			}
			if !opts.Until.IsZero() && ts.After(opts.Until) {
				continue
			}
		}
		filtered = append(filtered, e)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp > filtered[j].Timestamp
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(filtered) {
			return nil, nil
		}
		filtered = filtered[opts.Offset:]
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// Stats summarizes the changelog: totals by entity type and action, and
// recent activity counts.
type Stats struct {
	TotalEntries int                `json:"totalEntries"`
	ByEntityType map[EntityType]int `json:"byEntityType"`
	ByAction     map[Action]int     `json:"byAction"`
	Last24h      int                `json:"last24h"`
	Last7d       int                `json:"last7d"`
	Last30d      int                `json:"last30d"`
}

// GetStats computes summary statistics over all entries.
func (s *Service) GetStats() (*Stats, error) {
	f, err := s.Read()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stats := &Stats{
		TotalEntries: len(f.Entries),
		ByEntityType: make(map[EntityType]int),
		ByAction:     make(map[Action]int),
	}
	for _, e := range f.Entries {
		stats.ByEntityType[e.EntityType]++
		stats.ByAction[e.Action]++
		ts, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			continue
		}
		age := now.Sub(ts)
		if age <= 24*time.Hour {
			stats.Last24h++
		}
		if age <= 7*24*time.Hour {
			stats.Last7d++
		}
		if age <= 30*24*time.Hour {
			stats.Last30d++
		}
	}
	return stats, nil
}
