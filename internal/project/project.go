// Package project defines the data model for the file-backed project store:
// Epics, Features, User Stories and Milestones, plus identifier allocation
// and cross-entity reference validation.
package project

// EpicStatus is the lifecycle state of an Epic.
type EpicStatus string

const (
	EpicPlanning   EpicStatus = "planning"
	EpicInProgress EpicStatus = "in-progress"
	EpicCompleted  EpicStatus = "completed"
)

// IsValid reports whether the status is one of the known Epic states.
func (s EpicStatus) IsValid() bool {
	switch s {
	case EpicPlanning, EpicInProgress, EpicCompleted:
		return true
	}
	return false
}

// FeatureStatus is the lifecycle state of a Feature.
type FeatureStatus string

const (
	FeatureTodo       FeatureStatus = "todo"
	FeatureInProgress FeatureStatus = "in-progress"
	FeatureDone       FeatureStatus = "done"
)

func (s FeatureStatus) IsValid() bool {
	switch s {
	case FeatureTodo, FeatureInProgress, FeatureDone:
		return true
	}
	return false
}

// StoryStatus is the lifecycle state of a User Story.
type StoryStatus string

const (
	StoryTodo       StoryStatus = "todo"
	StoryInProgress StoryStatus = "in-progress"
	StoryDone       StoryStatus = "done"
)

func (s StoryStatus) IsValid() bool {
	switch s {
	case StoryTodo, StoryInProgress, StoryDone:
		return true
	}
	return false
}

// MilestoneStatus is the lifecycle state of a Milestone.
type MilestoneStatus string

const (
	MilestoneUpcoming  MilestoneStatus = "upcoming"
	MilestoneActive    MilestoneStatus = "active"
	MilestoneCompleted MilestoneStatus = "completed"
	MilestoneMissed    MilestoneStatus = "missed"
)

func (s MilestoneStatus) IsValid() bool {
	switch s {
	case MilestoneUpcoming, MilestoneActive, MilestoneCompleted, MilestoneMissed:
		return true
	}
	return false
}

// Priority ranks a Feature's urgency. The default is PriorityMedium.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// DependencyType classifies an edge between two Features.
// Only "blocks" edges participate in transitive dependency resolution;
// "relates-to" edges are informational.
type DependencyType string

const (
	DepBlocks    DependencyType = "blocks"
	DepRelatesTo DependencyType = "relates-to"
)

func (t DependencyType) IsValid() bool {
	return t == DepBlocks || t == DepRelatesTo
}

// Dependency is a directed edge from one Feature to another.
type Dependency struct {
	FeatureID string         `json:"featureId"`
	Type      DependencyType `json:"type"`
}

// UserStory is a sub-item of a Feature. Stories have no file of their own;
// they live inside their parent Feature's file and share its lifecycle.
type UserStory struct {
	ID          string      `json:"id"`
	FeatureID   string      `json:"featureId"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Estimate    float64     `json:"estimate"`
	Status      StoryStatus `json:"status"`
}

// Feature is a deliverable unit of work under an Epic.
type Feature struct {
	ID                 string          `json:"id"`
	EpicID             string          `json:"epicId"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	Status             FeatureStatus   `json:"status"`
	Priority           Priority        `json:"priority"`
	Assignee           string          `json:"assignee,omitempty"`
	Estimate           float64         `json:"estimate"`
	Actual             float64         `json:"actual"`
	SkillsRequired     []string        `json:"skillsRequired,omitempty"`
	Dependencies       []Dependency    `json:"dependencies,omitempty"`
	UserStories        []UserStory     `json:"userStories,omitempty"`
	AcceptanceCriteria []string        `json:"acceptanceCriteria,omitempty"`
}

// Epic is the top-level unit of work grouping Features.
//
// Features holds the ids of the Epic's Features in order. The list is
// maintained on Feature create but is not authoritative: the Feature's own
// EpicID field is the source of truth, and membership can be re-derived
// from it (see the store's repair operation).
type Epic struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      EpicStatus `json:"status"`
	Owner       string     `json:"owner,omitempty"`
	Estimate    float64    `json:"estimate"`
	Actual      float64    `json:"actual"`
	Features    []string   `json:"features"`
}

// Milestone is a dated checkpoint referencing a set of Features by id.
// Membership only; Milestones do not own their Features.
type Milestone struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	TargetDate  string          `json:"targetDate"` // YYYY-MM-DD
	Status      MilestoneStatus `json:"status"`
	Features    []string        `json:"features"`
}
