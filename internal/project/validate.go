package project

import "fmt"

// Validate checks the Epic's field values.
func (e *Epic) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if e.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("invalid epic status: %s", e.Status)
	}
	if e.Estimate < 0 {
		return fmt.Errorf("estimate must be non-negative (got %v)", e.Estimate)
	}
	if e.Actual < 0 {
		return fmt.Errorf("actual must be non-negative (got %v)", e.Actual)
	}
	return nil
}

// Validate checks the Feature's field values.
func (f *Feature) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("id is required")
	}
	if f.Title == "" {
		return fmt.Errorf("title is required")
	}
	if f.EpicID == "" {
		return fmt.Errorf("epicId is required")
	}
	if !f.Status.IsValid() {
		return fmt.Errorf("invalid feature status: %s", f.Status)
	}
	if !f.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %s", f.Priority)
	}
	if f.Estimate < 0 {
		return fmt.Errorf("estimate must be non-negative (got %v)", f.Estimate)
	}
	if f.Actual < 0 {
		return fmt.Errorf("actual must be non-negative (got %v)", f.Actual)
	}
	for _, d := range f.Dependencies {
		if d.FeatureID == "" {
			return fmt.Errorf("dependency featureId is required")
		}
		if !d.Type.IsValid() {
			return fmt.Errorf("invalid dependency type: %s", d.Type)
		}
	}
	for _, s := range f.UserStories {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("story %s: %w", s.ID, err)
		}
	}
	return nil
}

// Validate checks the UserStory's field values.
func (s *UserStory) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("id is required")
	}
	if s.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !s.Status.IsValid() {
		return fmt.Errorf("invalid story status: %s", s.Status)
	}
	if s.Estimate < 0 {
		return fmt.Errorf("estimate must be non-negative (got %v)", s.Estimate)
	}
	return nil
}

// Validate checks the Milestone's field values.
func (m *Milestone) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("id is required")
	}
	if m.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !m.Status.IsValid() {
		return fmt.Errorf("invalid milestone status: %s", m.Status)
	}
	return nil
}

// ReferenceError describes one dangling cross-entity reference.
type ReferenceError struct {
	EntityID string
	Message  string
}

func (e ReferenceError) String() string {
	return e.Message
}

// ValidateReferences checks referential integrity between Epics and Features:
// every Feature must reference an existing Epic, and every id in an Epic's
// feature list must reference an existing Feature.
func ValidateReferences(epics []Epic, features []Feature) []ReferenceError {
	epicIDs := make(map[string]bool, len(epics))
	for _, e := range epics {
		epicIDs[e.ID] = true
	}
	featureIDs := make(map[string]bool, len(features))
	for _, f := range features {
		featureIDs[f.ID] = true
	}

	var errs []ReferenceError
	for _, f := range features {
		if !epicIDs[f.EpicID] {
			errs = append(errs, ReferenceError{
				EntityID: f.ID,
				Message:  fmt.Sprintf("Feature %s references non-existent Epic %s", f.ID, f.EpicID),
			})
		}
	}
	for _, e := range epics {
		for _, fid := range e.Features {
			if !featureIDs[fid] {
				errs = append(errs, ReferenceError{
					EntityID: e.ID,
					Message:  fmt.Sprintf("Epic %s references non-existent Feature %s", e.ID, fid),
				})
			}
		}
	}
	return errs
}
