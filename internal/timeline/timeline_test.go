package timeline

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pmspec/pmspec/internal/project"
)

// monday is a fixed anchor so schedules are deterministic.
var monday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func taskByID(t *testing.T, tasks []Task, id string, typ TaskType) Task {
	t.Helper()
	for _, task := range tasks {
		if task.ID == id && task.Type == typ {
			return task
		}
	}
	t.Fatalf("no %s task %s in %v", typ, id, tasks)
	return Task{}
}

func TestScheduleSequentialFeatures(t *testing.T) {
	epics := []project.Epic{
		{ID: "EPIC-001", Title: "Auth", Status: project.EpicInProgress},
	}
	features := []project.Feature{
		{ID: "FEAT-002", EpicID: "EPIC-001", Title: "Sessions", Status: project.FeatureTodo, Priority: project.PriorityMedium, Estimate: 16},
		{ID: "FEAT-001", EpicID: "EPIC-001", Title: "Login", Status: project.FeatureTodo, Priority: project.PriorityMedium, Estimate: 8, Actual: 4},
	}

	plan := Schedule(epics, features, Options{Start: monday})
	if len(plan.Tasks) != 3 {
		t.Fatalf("tasks = %d, want 3 (two features + epic)", len(plan.Tasks))
	}

	// Features run sorted by id, one working day for 8h, two for 16h.
	f1 := taskByID(t, plan.Tasks, "FEAT-001", TaskFeature)
	if f1.Start != "2026-09-07" || f1.End != "2026-09-08" {
		t.Errorf("FEAT-001 = %s → %s, want 2026-09-07 → 2026-09-08", f1.Start, f1.End)
	}
	if len(f1.Dependencies) != 0 {
		t.Errorf("first feature has dependencies %v", f1.Dependencies)
	}
	if f1.Progress != 50 {
		t.Errorf("FEAT-001 progress = %v, want 50", f1.Progress)
	}

	f2 := taskByID(t, plan.Tasks, "FEAT-002", TaskFeature)
	if f2.Start != "2026-09-08" || f2.End != "2026-09-10" {
		t.Errorf("FEAT-002 = %s → %s, want 2026-09-08 → 2026-09-10", f2.Start, f2.End)
	}
	if diff := cmp.Diff([]string{"FEAT-001"}, f2.Dependencies); diff != "" {
		t.Errorf("FEAT-002 dependencies mismatch (-want +got):\n%s", diff)
	}

	// The epic bar spans its features.
	e := taskByID(t, plan.Tasks, "EPIC-001", TaskEpic)
	if e.Start != "2026-09-07" || e.End != "2026-09-10" {
		t.Errorf("EPIC-001 = %s → %s, want 2026-09-07 → 2026-09-10", e.Start, e.End)
	}

	if diff := cmp.Diff([]string{"EPIC-001"}, plan.CriticalPath); diff != "" {
		t.Errorf("critical path mismatch (-want +got):\n%s", diff)
	}
}

func TestScheduleSkipsWeekends(t *testing.T) {
	friday := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	epics := []project.Epic{{ID: "EPIC-001", Title: "E", Status: project.EpicPlanning}}
	features := []project.Feature{
		{ID: "FEAT-001", EpicID: "EPIC-001", Title: "F", Status: project.FeatureTodo, Priority: project.PriorityMedium, Estimate: 16},
	}

	plan := Schedule(epics, features, Options{Start: friday})
	f := taskByID(t, plan.Tasks, "FEAT-001", TaskFeature)
	// Two working days from Friday land on Tuesday, not Sunday.
	if f.End != "2026-09-15" {
		t.Errorf("end = %s, want 2026-09-15", f.End)
	}
}

func TestScheduleFeaturelessEpicUsesEstimate(t *testing.T) {
	epics := []project.Epic{
		{ID: "EPIC-001", Title: "Sized", Status: project.EpicPlanning, Estimate: 16},
		{ID: "EPIC-002", Title: "Unsized", Status: project.EpicPlanning},
	}

	plan := Schedule(epics, nil, Options{Start: monday})
	if len(plan.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(plan.Tasks))
	}

	e1 := taskByID(t, plan.Tasks, "EPIC-001", TaskEpic)
	if e1.Start != "2026-09-07" || e1.End != "2026-09-09" {
		t.Errorf("EPIC-001 = %s → %s, want 2026-09-07 → 2026-09-09", e1.Start, e1.End)
	}

	// The unsized epic defaults to a 40-hour week and starts after EPIC-001.
	e2 := taskByID(t, plan.Tasks, "EPIC-002", TaskEpic)
	if e2.Start != "2026-09-09" || e2.End != "2026-09-16" {
		t.Errorf("EPIC-002 = %s → %s, want 2026-09-09 → 2026-09-16", e2.Start, e2.End)
	}
}

func TestScheduleDefaultFeatureEstimate(t *testing.T) {
	epics := []project.Epic{{ID: "EPIC-001", Title: "E", Status: project.EpicPlanning}}
	features := []project.Feature{
		{ID: "FEAT-001", EpicID: "EPIC-001", Title: "F", Status: project.FeatureTodo, Priority: project.PriorityMedium},
	}

	plan := Schedule(epics, features, Options{Start: monday})
	f := taskByID(t, plan.Tasks, "FEAT-001", TaskFeature)
	if f.End != "2026-09-08" {
		t.Errorf("end = %s, want one default working day", f.End)
	}
	if f.Progress != 0 {
		t.Errorf("progress = %v, want 0 for zero estimate", f.Progress)
	}
}

func TestScheduleEmpty(t *testing.T) {
	plan := Schedule(nil, nil, Options{Start: monday})
	if len(plan.Tasks) != 0 || len(plan.CriticalPath) != 0 {
		t.Errorf("empty input should yield empty plan, got %+v", plan)
	}
}

func TestScheduleDeterministic(t *testing.T) {
	epics := []project.Epic{
		{ID: "EPIC-002", Title: "B", Status: project.EpicPlanning},
		{ID: "EPIC-001", Title: "A", Status: project.EpicPlanning},
	}
	features := []project.Feature{
		{ID: "FEAT-002", EpicID: "EPIC-002", Title: "F2", Status: project.FeatureTodo, Priority: project.PriorityMedium, Estimate: 8},
		{ID: "FEAT-001", EpicID: "EPIC-001", Title: "F1", Status: project.FeatureTodo, Priority: project.PriorityMedium, Estimate: 8},
	}

	first := Schedule(epics, features, Options{Start: monday})
	second := Schedule(epics, features, Options{Start: monday})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("schedule not deterministic (-first +second):\n%s", diff)
	}

	// Epics are processed in id order regardless of input order.
	if first.Tasks[0].ID != "FEAT-001" {
		t.Errorf("first task = %s, want FEAT-001", first.Tasks[0].ID)
	}
}
