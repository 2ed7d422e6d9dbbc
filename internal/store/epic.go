package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pmspec/pmspec/internal/changelog"
	"github.com/pmspec/pmspec/internal/markdown"
	"github.com/pmspec/pmspec/internal/project"
)

// ListEpics returns every decodable Epic, sorted by id. Files that fail to
// decode are logged and skipped, never fatal to the listing.
func (s *Store) ListEpics() ([]project.Epic, error) {
	names, err := s.readDir(EpicsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read epics directory: %w", err)
	}

	var epics []project.Epic
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir(EpicsDir), name))
		if err != nil {
			return nil, fmt.Errorf("failed to read epic file %s: %w", name, err)
		}
		epic, err := markdown.DecodeEpic(string(data))
		if err != nil {
			s.logger.Printf("Warning: skipping invalid epic file %s: %v", name, err)
			continue
		}
		epics = append(epics, *epic)
	}

	sort.Slice(epics, func(i, j int) bool { return epics[i].ID < epics[j].ID })
	return epics, nil
}

// GetEpic returns the Epic with the given id, or ErrNotFound.
func (s *Store) GetEpic(id string) (*project.Epic, error) {
	epics, err := s.ListEpics()
	if err != nil {
		return nil, err
	}
	for i := range epics {
		if epics[i].ID == id {
			return &epics[i], nil
		}
	}
	return nil, fmt.Errorf("epic %s: %w", id, ErrNotFound)
}

// CreateEpic validates and persists a new Epic. An empty ID is allocated
// from the current directory snapshot; an explicit ID that already exists
// is ErrConflict.
func (s *Store) CreateEpic(e *project.Epic) (*project.Epic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Title == "" {
		return nil, validationErr("title", "title is required")
	}
	if e.Status == "" {
		e.Status = project.EpicPlanning
	}

	epics, err := s.ListEpics()
	if err != nil {
		return nil, err
	}
	if e.ID == "" {
		ids := make([]string, len(epics))
		for i, existing := range epics {
			ids[i] = existing.ID
		}
		e.ID = project.NextID(project.PrefixEpic, ids)
	} else {
		for _, existing := range epics {
			if existing.ID == e.ID {
				return nil, fmt.Errorf("epic %s: %w", e.ID, ErrConflict)
			}
		}
	}

	if err := e.Validate(); err != nil {
		return nil, validationErr("epic", "%v", err)
	}
	if err := s.writeEntity(EpicsDir, e.ID, markdown.EncodeEpic(e)); err != nil {
		return nil, fmt.Errorf("failed to write epic %s: %w", e.ID, err)
	}

	s.recordCreate(changelog.EntityEpic, e.ID)
	s.broadcast("epic", e.ID, "created")
	return e, nil
}

// EpicPatch holds the fields an epic update may change. Nil pointers leave
// the current value untouched; the id is immutable.
type EpicPatch struct {
	Title       *string
	Description *string
	Status      *project.EpicStatus
	Owner       *string
	Estimate    *float64
	Actual      *float64
	Features    *[]string
}

// UpdateEpic merges the patch into the stored Epic, re-encodes it, and
// records one changelog entry per changed field.
func (s *Store) UpdateEpic(id string, patch EpicPatch) (*project.Epic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateEpicLocked(id, patch)
}

func (s *Store) updateEpicLocked(id string, patch EpicPatch) (*project.Epic, error) {
	epic, err := s.GetEpic(id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]changelog.Change)
	if patch.Title != nil && *patch.Title != epic.Title {
		changes["title"] = changelog.Change{Old: epic.Title, New: *patch.Title}
		epic.Title = *patch.Title
	}
	if patch.Description != nil && *patch.Description != epic.Description {
		changes["description"] = changelog.Change{Old: epic.Description, New: *patch.Description}
		epic.Description = *patch.Description
	}
	if patch.Status != nil && *patch.Status != epic.Status {
		changes["status"] = changelog.Change{Old: epic.Status, New: *patch.Status}
		epic.Status = *patch.Status
	}
	if patch.Owner != nil && *patch.Owner != epic.Owner {
		changes["owner"] = changelog.Change{Old: epic.Owner, New: *patch.Owner}
		epic.Owner = *patch.Owner
	}
	if patch.Estimate != nil && *patch.Estimate != epic.Estimate {
		changes["estimate"] = changelog.Change{Old: epic.Estimate, New: *patch.Estimate}
		epic.Estimate = *patch.Estimate
	}
	if patch.Actual != nil && *patch.Actual != epic.Actual {
		changes["actual"] = changelog.Change{Old: epic.Actual, New: *patch.Actual}
		epic.Actual = *patch.Actual
	}
	if patch.Features != nil && !sameStrings(*patch.Features, epic.Features) {
		changes["features"] = changelog.Change{Old: epic.Features, New: *patch.Features}
		epic.Features = *patch.Features
	}

	if err := epic.Validate(); err != nil {
		return nil, validationErr("epic", "%v", err)
	}
	if err := s.writeEntity(EpicsDir, epic.ID, markdown.EncodeEpic(epic)); err != nil {
		return nil, fmt.Errorf("failed to write epic %s: %w", epic.ID, err)
	}

	s.recordUpdates(changelog.EntityEpic, epic.ID, changes)
	s.broadcast("epic", epic.ID, "updated")
	return epic, nil
}

// DeleteEpic removes the Epic's file. Features referencing the Epic are
// left in place; the validate operation reports them as dangling.
func (s *Store) DeleteEpic(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.GetEpic(id); err != nil {
		return err
	}
	if err := s.removeEntity(EpicsDir, id); err != nil {
		return fmt.Errorf("failed to delete epic %s: %w", id, err)
	}

	s.recordDelete(changelog.EntityEpic, id)
	s.broadcast("epic", id, "deleted")
	return nil
}

// appendFeatureToEpic adds a feature id to its parent Epic's list if absent.
// This is the second, non-transactional write of a feature create: failures
// are logged, not returned, and membership can be re-derived by Repair.
func (s *Store) appendFeatureToEpic(epicID, featureID string) {
	epic, err := s.GetEpic(epicID)
	if err != nil {
		s.logger.Printf("Warning: could not update epic %s membership: %v", epicID, err)
		return
	}
	for _, fid := range epic.Features {
		if fid == featureID {
			return
		}
	}
	epic.Features = append(epic.Features, featureID)
	if err := s.writeEntity(EpicsDir, epic.ID, markdown.EncodeEpic(epic)); err != nil {
		s.logger.Printf("Warning: could not update epic %s membership: %v", epicID, err)
	}
}

// removeFeatureFromEpic drops a feature id from its Epic's list. Soft, like
// appendFeatureToEpic.
func (s *Store) removeFeatureFromEpic(epicID, featureID string) {
	epic, err := s.GetEpic(epicID)
	if err != nil {
		s.logger.Printf("Warning: could not update epic %s membership: %v", epicID, err)
		return
	}
	kept := epic.Features[:0]
	found := false
	for _, fid := range epic.Features {
		if fid == featureID {
			found = true
			continue
		}
		kept = append(kept, fid)
	}
	if !found {
		return
	}
	epic.Features = kept
	if err := s.writeEntity(EpicsDir, epic.ID, markdown.EncodeEpic(epic)); err != nil {
		s.logger.Printf("Warning: could not update epic %s membership: %v", epicID, err)
	}
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
