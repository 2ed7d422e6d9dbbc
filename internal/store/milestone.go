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

// ListMilestones returns every decodable Milestone, sorted by id.
func (s *Store) ListMilestones() ([]project.Milestone, error) {
	names, err := s.readDir(MilestonesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read milestones directory: %w", err)
	}

	var milestones []project.Milestone
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir(MilestonesDir), name))
		if err != nil {
			return nil, fmt.Errorf("failed to read milestone file %s: %w", name, err)
		}
		m, err := markdown.DecodeMilestone(string(data))
		if err != nil {
			s.logger.Printf("Warning: skipping invalid milestone file %s: %v", name, err)
			continue
		}
		milestones = append(milestones, *m)
	}

	sort.Slice(milestones, func(i, j int) bool { return milestones[i].ID < milestones[j].ID })
	return milestones, nil
}

// GetMilestone returns the Milestone with the given id, or ErrNotFound.
func (s *Store) GetMilestone(id string) (*project.Milestone, error) {
	milestones, err := s.ListMilestones()
	if err != nil {
		return nil, err
	}
	for i := range milestones {
		if milestones[i].ID == id {
			return &milestones[i], nil
		}
	}
	return nil, fmt.Errorf("milestone %s: %w", id, ErrNotFound)
}

// CreateMilestone validates and persists a new Milestone. Referenced
// feature ids must exist.
func (s *Store) CreateMilestone(m *project.Milestone) (*project.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.Title == "" {
		return nil, validationErr("title", "title is required")
	}
	if m.Status == "" {
		m.Status = project.MilestoneUpcoming
	}
	if err := s.checkMilestoneFeatures(m.Features); err != nil {
		return nil, err
	}

	milestones, err := s.ListMilestones()
	if err != nil {
		return nil, err
	}
	if m.ID == "" {
		ids := make([]string, len(milestones))
		for i, existing := range milestones {
			ids[i] = existing.ID
		}
		m.ID = project.NextID(project.PrefixMilestone, ids)
	} else {
		for _, existing := range milestones {
			if existing.ID == m.ID {
				return nil, fmt.Errorf("milestone %s: %w", m.ID, ErrConflict)
			}
		}
	}

	if err := m.Validate(); err != nil {
		return nil, validationErr("milestone", "%v", err)
	}
	if err := s.writeEntity(MilestonesDir, m.ID, markdown.EncodeMilestone(m)); err != nil {
		return nil, fmt.Errorf("failed to write milestone %s: %w", m.ID, err)
	}

	s.recordCreate(changelog.EntityMilestone, m.ID)
	s.broadcast("milestone", m.ID, "created")
	return m, nil
}

// MilestonePatch holds the fields a milestone update may change.
type MilestonePatch struct {
	Title       *string
	Description *string
	TargetDate  *string
	Status      *project.MilestoneStatus
	Features    *[]string
}

// UpdateMilestone merges the patch into the stored Milestone and records
// one changelog entry per changed field.
func (s *Store) UpdateMilestone(id string, patch MilestonePatch) (*project.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.GetMilestone(id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]changelog.Change)
	if patch.Title != nil && *patch.Title != m.Title {
		changes["title"] = changelog.Change{Old: m.Title, New: *patch.Title}
		m.Title = *patch.Title
	}
	if patch.Description != nil && *patch.Description != m.Description {
		changes["description"] = changelog.Change{Old: m.Description, New: *patch.Description}
		m.Description = *patch.Description
	}
	if patch.TargetDate != nil && *patch.TargetDate != m.TargetDate {
		changes["targetDate"] = changelog.Change{Old: m.TargetDate, New: *patch.TargetDate}
		m.TargetDate = *patch.TargetDate
	}
	if patch.Status != nil && *patch.Status != m.Status {
		changes["status"] = changelog.Change{Old: m.Status, New: *patch.Status}
		m.Status = *patch.Status
	}
	if patch.Features != nil && !sameStrings(*patch.Features, m.Features) {
		if err := s.checkMilestoneFeatures(*patch.Features); err != nil {
			return nil, err
		}
		changes["features"] = changelog.Change{Old: m.Features, New: *patch.Features}
		m.Features = *patch.Features
	}

	if err := m.Validate(); err != nil {
		return nil, validationErr("milestone", "%v", err)
	}
	if err := s.writeEntity(MilestonesDir, m.ID, markdown.EncodeMilestone(m)); err != nil {
		return nil, fmt.Errorf("failed to write milestone %s: %w", m.ID, err)
	}

	s.recordUpdates(changelog.EntityMilestone, m.ID, changes)
	s.broadcast("milestone", m.ID, "updated")
	return m, nil
}

// DeleteMilestone removes the Milestone's file. Milestones only reference
// Features, so nothing else needs touching.
func (s *Store) DeleteMilestone(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.GetMilestone(id); err != nil {
		return err
	}
	if err := s.removeEntity(MilestonesDir, id); err != nil {
		return fmt.Errorf("failed to delete milestone %s: %w", id, err)
	}

	s.recordDelete(changelog.EntityMilestone, id)
	s.broadcast("milestone", id, "deleted")
	return nil
}

func (s *Store) checkMilestoneFeatures(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	features, err := s.ListFeatures()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(features))
	for _, f := range features {
		known[f.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return validationErr("features", "feature %s does not exist", id)
		}
	}
	return nil
}
