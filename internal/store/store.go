// Package store is the directory-scoped data store: CRUD over Epics,
// Features and Milestones persisted one markdown file per entity, with
// referential integrity between Features and Epics, a best-effort change
// log, and change broadcasts on every successful mutation.
//
// The store assumes a single-process server handling overlapping requests:
// a process-wide mutex serializes mutations, which is the single-writer
// discipline id allocation needs (project.NextID computes the next id from
// a directory snapshot without reserving it). Writers in other processes
// can still race that allocation; callers running several processes against
// one directory must provide their own serialization point.
package store

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/pmspec/pmspec/internal/changelog"
)

// Extension is the entity file extension.
const Extension = ".md"

// Subdirectories per entity type, relative to the store root.
const (
	EpicsDir      = "epics"
	FeaturesDir   = "features"
	MilestonesDir = "milestones"
)

// Broadcaster receives change notifications from write paths. Broadcasts
// are invalidation hints, not authoritative payloads; consumers re-fetch.
type Broadcaster interface {
	EntityChanged(entityType, entityID, action string)
}

// Config carries the store's collaborators. All fields are optional.
type Config struct {
	// Logger receives skip/soft-failure diagnostics. Defaults to stderr.
	Logger *log.Logger
	// Changelog, when set, records every successful mutation. Append
	// failures are logged and never fail the mutation.
	Changelog *changelog.Service
	// Broadcaster, when set, is notified immediately after every write.
	Broadcaster Broadcaster
	// User attributes changelog entries.
	User string
}

// Store provides CRUD over one project directory.
type Store struct {
	root        string
	mu          sync.Mutex
	logger      *log.Logger
	changelog   *changelog.Service
	broadcaster Broadcaster
	user        string
}

// New creates a store rooted at dir. Entity subdirectories are created
// lazily on first write; a missing subdirectory reads as an empty list.
func New(root string, cfg *Config) *Store {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	return &Store{
		root:        root,
		logger:      logger,
		changelog:   cfg.Changelog,
		broadcaster: cfg.Broadcaster,
		user:        cfg.User,
	}
}

// Root returns the store's base directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) dir(sub string) string {
	return filepath.Join(s.root, sub)
}

func (s *Store) entityPath(sub, id string) string {
	return filepath.Join(s.dir(sub), strings.ToLower(id)+Extension)
}

// readDir lists the markdown files of an entity directory. A missing
// directory is the named DirectoryAbsent outcome: an empty result, no error.
func (s *Store) readDir(sub string) ([]string, error) {
	entries, err := os.ReadDir(s.dir(sub))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *Store) writeEntity(sub, id, content string) error {
	if err := os.MkdirAll(s.dir(sub), 0755); err != nil {
		return err
	}
	return atomic.WriteFile(s.entityPath(sub, id), strings.NewReader(content))
}

func (s *Store) removeEntity(sub, id string) error {
	return os.Remove(s.entityPath(sub, id))
}

// recordCreate appends a changelog create entry, logging failures.
func (s *Store) recordCreate(t changelog.EntityType, id string) {
	if s.changelog == nil {
		return
	}
	if err := s.changelog.RecordCreate(t, id, s.user); err != nil {
		s.logger.Printf("Warning: changelog append failed for %s %s: %v", t, id, err)
	}
}

func (s *Store) recordDelete(t changelog.EntityType, id string) {
	if s.changelog == nil {
		return
	}
	if err := s.changelog.RecordDelete(t, id, s.user); err != nil {
		s.logger.Printf("Warning: changelog append failed for %s %s: %v", t, id, err)
	}
}

func (s *Store) recordUpdates(t changelog.EntityType, id string, changes map[string]changelog.Change) {
	if s.changelog == nil || len(changes) == 0 {
		return
	}
	if err := s.changelog.RecordUpdates(t, id, changes, s.user); err != nil {
		s.logger.Printf("Warning: changelog append failed for %s %s: %v", t, id, err)
	}
}

func (s *Store) broadcast(entityType, id, action string) {
	if s.broadcaster != nil {
		s.broadcaster.EntityChanged(entityType, id, action)
	}
}
