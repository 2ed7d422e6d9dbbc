package project

import "testing"

func validFeature() Feature {
	return Feature{
		ID:       "FEAT-001",
		EpicID:   "EPIC-001",
		Title:    "Login",
		Status:   FeatureTodo,
		Priority: PriorityMedium,
	}
}

func TestFeatureValidate(t *testing.T) {
	f := validFeature()
	if err := f.Validate(); err != nil {
		t.Fatalf("valid feature rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Feature)
	}{
		{"missing id", func(f *Feature) { f.ID = "" }},
		{"missing title", func(f *Feature) { f.Title = "" }},
		{"missing epic", func(f *Feature) { f.EpicID = "" }},
		{"bad status", func(f *Feature) { f.Status = "shipped" }},
		{"bad priority", func(f *Feature) { f.Priority = "urgent" }},
		{"negative estimate", func(f *Feature) { f.Estimate = -1 }},
		{"bad dependency type", func(f *Feature) {
			f.Dependencies = []Dependency{{FeatureID: "FEAT-002", Type: "requires"}}
		}},
		{"story without title", func(f *Feature) {
			f.UserStories = []UserStory{{ID: "STORY-001", Status: StoryTodo}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFeature()
			tt.mutate(&f)
			if err := f.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateReferences(t *testing.T) {
	epics := []Epic{
		{ID: "EPIC-001", Title: "Auth", Status: EpicPlanning, Features: []string{"FEAT-001", "FEAT-404"}},
	}
	features := []Feature{
		{ID: "FEAT-001", EpicID: "EPIC-001", Title: "Login", Status: FeatureTodo, Priority: PriorityMedium},
		{ID: "FEAT-002", EpicID: "EPIC-999", Title: "Orphan", Status: FeatureTodo, Priority: PriorityMedium},
	}

	errs := ValidateReferences(epics, features)
	if len(errs) != 2 {
		t.Fatalf("expected 2 reference errors, got %d: %v", len(errs), errs)
	}

	byEntity := map[string]bool{}
	for _, e := range errs {
		byEntity[e.EntityID] = true
	}
	if !byEntity["FEAT-002"] {
		t.Error("expected dangling epic reference reported against FEAT-002")
	}
	if !byEntity["EPIC-001"] {
		t.Error("expected dangling feature reference reported against EPIC-001")
	}
}

func TestValidateReferencesClean(t *testing.T) {
	epics := []Epic{{ID: "EPIC-001", Title: "Auth", Status: EpicPlanning, Features: []string{"FEAT-001"}}}
	features := []Feature{{ID: "FEAT-001", EpicID: "EPIC-001", Title: "Login", Status: FeatureTodo, Priority: PriorityMedium}}
	if errs := ValidateReferences(epics, features); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}
