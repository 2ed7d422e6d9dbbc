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

// ListFeatures returns every decodable Feature, sorted by id.
func (s *Store) ListFeatures() ([]project.Feature, error) {
	names, err := s.readDir(FeaturesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read features directory: %w", err)
	}

	var features []project.Feature
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir(FeaturesDir), name))
		if err != nil {
			return nil, fmt.Errorf("failed to read feature file %s: %w", name, err)
		}
		feature, err := markdown.DecodeFeature(string(data))
		if err != nil {
			s.logger.Printf("Warning: skipping invalid feature file %s: %v", name, err)
			continue
		}
		features = append(features, *feature)
	}

	sort.Slice(features, func(i, j int) bool { return features[i].ID < features[j].ID })
	return features, nil
}

// GetFeature returns the Feature with the given id, or ErrNotFound.
func (s *Store) GetFeature(id string) (*project.Feature, error) {
	features, err := s.ListFeatures()
	if err != nil {
		return nil, err
	}
	for i := range features {
		if features[i].ID == id {
			return &features[i], nil
		}
	}
	return nil, fmt.Errorf("feature %s: %w", id, ErrNotFound)
}

// CreateFeature validates and persists a new Feature. The parent Epic must
// exist; its feature list is updated in a second, non-transactional write.
// Inline stories with empty ids are allocated STORY ids.
func (s *Store) CreateFeature(f *project.Feature) (*project.Feature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.Title == "" {
		return nil, validationErr("title", "title is required")
	}
	if f.EpicID == "" {
		return nil, validationErr("epicId", "epicId is required")
	}
	if _, err := s.GetEpic(f.EpicID); err != nil {
		return nil, validationErr("epicId", "epic %s does not exist", f.EpicID)
	}
	if f.Status == "" {
		f.Status = project.FeatureTodo
	}
	if f.Priority == "" {
		f.Priority = project.PriorityMedium
	}

	features, err := s.ListFeatures()
	if err != nil {
		return nil, err
	}
	if f.ID == "" {
		ids := make([]string, len(features))
		for i, existing := range features {
			ids[i] = existing.ID
		}
		f.ID = project.NextID(project.PrefixFeature, ids)
	} else {
		for _, existing := range features {
			if existing.ID == f.ID {
				return nil, fmt.Errorf("feature %s: %w", f.ID, ErrConflict)
			}
		}
	}

	storyIDs := allStoryIDs(features)
	for i := range f.UserStories {
		story := &f.UserStories[i]
		if story.ID == "" {
			story.ID = project.NextID(project.PrefixStory, storyIDs)
			storyIDs = append(storyIDs, story.ID)
		}
		story.FeatureID = f.ID
		if story.Status == "" {
			story.Status = project.StoryTodo
		}
	}

	if err := f.Validate(); err != nil {
		return nil, validationErr("feature", "%v", err)
	}
	if err := s.writeEntity(FeaturesDir, f.ID, markdown.EncodeFeature(f)); err != nil {
		return nil, fmt.Errorf("failed to write feature %s: %w", f.ID, err)
	}

	// Second file write; failure leaves the epic list stale, which Repair
	// can re-derive from the feature's own EpicID.
	s.appendFeatureToEpic(f.EpicID, f.ID)

	s.recordCreate(changelog.EntityFeature, f.ID)
	s.broadcast("feature", f.ID, "created")
	return f, nil
}

// FeaturePatch holds the fields a feature update may change. Nil pointers
// leave the current value untouched; the id is immutable.
type FeaturePatch struct {
	Title              *string
	Description        *string
	EpicID             *string
	Status             *project.FeatureStatus
	Priority           *project.Priority
	Assignee           *string
	Estimate           *float64
	Actual             *float64
	SkillsRequired     *[]string
	Dependencies       *[]project.Dependency
	UserStories        *[]project.UserStory
	AcceptanceCriteria *[]string
}

// UpdateFeature merges the patch into the stored Feature and records one
// changelog entry per changed field. Moving a Feature to a different Epic
// rewrites both Epics' membership lists (soft writes).
func (s *Store) UpdateFeature(id string, patch FeaturePatch) (*project.Feature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.GetFeature(id)
	if err != nil {
		return nil, err
	}
	oldEpicID := f.EpicID

	changes := make(map[string]changelog.Change)
	if patch.Title != nil && *patch.Title != f.Title {
		changes["title"] = changelog.Change{Old: f.Title, New: *patch.Title}
		f.Title = *patch.Title
	}
	if patch.Description != nil && *patch.Description != f.Description {
		changes["description"] = changelog.Change{Old: f.Description, New: *patch.Description}
		f.Description = *patch.Description
	}
	if patch.EpicID != nil && *patch.EpicID != f.EpicID {
		if _, err := s.GetEpic(*patch.EpicID); err != nil {
			return nil, validationErr("epicId", "epic %s does not exist", *patch.EpicID)
		}
		changes["epicId"] = changelog.Change{Old: f.EpicID, New: *patch.EpicID}
		f.EpicID = *patch.EpicID
	}
	if patch.Status != nil && *patch.Status != f.Status {
		changes["status"] = changelog.Change{Old: f.Status, New: *patch.Status}
		f.Status = *patch.Status
	}
	if patch.Priority != nil && *patch.Priority != f.Priority {
		changes["priority"] = changelog.Change{Old: f.Priority, New: *patch.Priority}
		f.Priority = *patch.Priority
	}
	if patch.Assignee != nil && *patch.Assignee != f.Assignee {
		changes["assignee"] = changelog.Change{Old: f.Assignee, New: *patch.Assignee}
		f.Assignee = *patch.Assignee
	}
	if patch.Estimate != nil && *patch.Estimate != f.Estimate {
		changes["estimate"] = changelog.Change{Old: f.Estimate, New: *patch.Estimate}
		f.Estimate = *patch.Estimate
	}
	if patch.Actual != nil && *patch.Actual != f.Actual {
		changes["actual"] = changelog.Change{Old: f.Actual, New: *patch.Actual}
		f.Actual = *patch.Actual
	}
	if patch.SkillsRequired != nil && !sameStrings(*patch.SkillsRequired, f.SkillsRequired) {
		changes["skillsRequired"] = changelog.Change{Old: f.SkillsRequired, New: *patch.SkillsRequired}
		f.SkillsRequired = *patch.SkillsRequired
	}
	if patch.Dependencies != nil {
		changes["dependencies"] = changelog.Change{Old: f.Dependencies, New: *patch.Dependencies}
		f.Dependencies = *patch.Dependencies
	}
	if patch.UserStories != nil {
		changes["userStories"] = changelog.Change{Old: f.UserStories, New: *patch.UserStories}
		for i := range *patch.UserStories {
			(*patch.UserStories)[i].FeatureID = f.ID
		}
		f.UserStories = *patch.UserStories
	}
	if patch.AcceptanceCriteria != nil && !sameStrings(*patch.AcceptanceCriteria, f.AcceptanceCriteria) {
		changes["acceptanceCriteria"] = changelog.Change{Old: f.AcceptanceCriteria, New: *patch.AcceptanceCriteria}
		f.AcceptanceCriteria = *patch.AcceptanceCriteria
	}

	if err := f.Validate(); err != nil {
		return nil, validationErr("feature", "%v", err)
	}
	if err := s.writeEntity(FeaturesDir, f.ID, markdown.EncodeFeature(f)); err != nil {
		return nil, fmt.Errorf("failed to write feature %s: %w", f.ID, err)
	}

	if f.EpicID != oldEpicID {
		s.removeFeatureFromEpic(oldEpicID, f.ID)
	}
	s.appendFeatureToEpic(f.EpicID, f.ID)

	s.recordUpdates(changelog.EntityFeature, f.ID, changes)
	s.broadcast("feature", f.ID, "updated")
	return f, nil
}

// DeleteFeature removes the Feature's file and drops its id from the parent
// Epic's list.
func (s *Store) DeleteFeature(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.GetFeature(id)
	if err != nil {
		return err
	}
	if err := s.removeEntity(FeaturesDir, id); err != nil {
		return fmt.Errorf("failed to delete feature %s: %w", id, err)
	}
	s.removeFeatureFromEpic(f.EpicID, id)

	s.recordDelete(changelog.EntityFeature, id)
	s.broadcast("feature", id, "deleted")
	return nil
}

// CreateStory appends a User Story to its parent Feature. Stories have no
// file of their own; this is a Feature write that also records a story
// changelog entry.
func (s *Store) CreateStory(featureID string, story project.UserStory) (*project.UserStory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if story.Title == "" {
		return nil, validationErr("title", "title is required")
	}
	f, err := s.GetFeature(featureID)
	if err != nil {
		return nil, err
	}
	features, err := s.ListFeatures()
	if err != nil {
		return nil, err
	}

	if story.ID == "" {
		story.ID = project.NextID(project.PrefixStory, allStoryIDs(features))
	}
	story.FeatureID = f.ID
	if story.Status == "" {
		story.Status = project.StoryTodo
	}
	if err := story.Validate(); err != nil {
		return nil, validationErr("story", "%v", err)
	}

	f.UserStories = append(f.UserStories, story)
	if err := s.writeEntity(FeaturesDir, f.ID, markdown.EncodeFeature(f)); err != nil {
		return nil, fmt.Errorf("failed to write feature %s: %w", f.ID, err)
	}

	s.recordCreate(changelog.EntityStory, story.ID)
	s.broadcast("feature", f.ID, "updated")
	return &story, nil
}

func allStoryIDs(features []project.Feature) []string {
	var ids []string
	for _, f := range features {
		for _, s := range f.UserStories {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
