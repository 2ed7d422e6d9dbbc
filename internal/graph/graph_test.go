package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pmspec/pmspec/internal/project"
)

func feat(id string, deps ...project.Dependency) project.Feature {
	return project.Feature{
		ID:           id,
		EpicID:       "EPIC-001",
		Title:        id,
		Status:       project.FeatureTodo,
		Priority:     project.PriorityMedium,
		Dependencies: deps,
	}
}

func blocks(id string) project.Dependency {
	return project.Dependency{FeatureID: id, Type: project.DepBlocks}
}

func relates(id string) project.Dependency {
	return project.Dependency{FeatureID: id, Type: project.DepRelatesTo}
}

func TestResolveChain(t *testing.T) {
	// FEAT-001 <- FEAT-002 <- FEAT-003
	features := []project.Feature{
		feat("FEAT-001"),
		feat("FEAT-002", blocks("FEAT-001")),
		feat("FEAT-003", blocks("FEAT-002")),
	}

	res := Resolve("FEAT-003", features)
	if diff := cmp.Diff([]string{"FEAT-001", "FEAT-002"}, res.Transitive); diff != "" {
		t.Errorf("transitive mismatch (-want +got):\n%s", diff)
	}
	if len(res.Dependents) != 0 {
		t.Errorf("dependents = %v, want none", res.Dependents)
	}

	res = Resolve("FEAT-001", features)
	if len(res.Transitive) != 0 {
		t.Errorf("transitive = %v, want none", res.Transitive)
	}
	if diff := cmp.Diff([]string{"FEAT-002"}, res.Dependents); diff != "" {
		t.Errorf("dependents mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDiamond(t *testing.T) {
	// FEAT-004 is blocked by FEAT-002 and FEAT-003, both blocked by FEAT-001.
	features := []project.Feature{
		feat("FEAT-001"),
		feat("FEAT-002", blocks("FEAT-001")),
		feat("FEAT-003", blocks("FEAT-001")),
		feat("FEAT-004", blocks("FEAT-002"), blocks("FEAT-003")),
	}

	res := Resolve("FEAT-004", features)
	if diff := cmp.Diff([]string{"FEAT-001", "FEAT-002", "FEAT-003"}, res.Transitive); diff != "" {
		t.Errorf("transitive mismatch, shared dep should appear once (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"FEAT-002", "FEAT-003"}, Resolve("FEAT-001", features).Dependents); diff != "" {
		t.Errorf("dependents mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCycleTerminates(t *testing.T) {
	features := []project.Feature{
		feat("FEAT-001", blocks("FEAT-002")),
		feat("FEAT-002", blocks("FEAT-001")),
	}

	res := Resolve("FEAT-001", features)
	if diff := cmp.Diff([]string{"FEAT-002"}, res.Transitive); diff != "" {
		t.Errorf("transitive mismatch, self excluded (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"FEAT-002"}, res.Dependents); diff != "" {
		t.Errorf("dependents mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveRelatesToNotTraversed(t *testing.T) {
	features := []project.Feature{
		feat("FEAT-001"),
		feat("FEAT-002", blocks("FEAT-001")),
		feat("FEAT-003", relates("FEAT-002")),
	}

	res := Resolve("FEAT-003", features)
	if len(res.Direct) != 1 || res.Direct[0].Type != project.DepRelatesTo {
		t.Errorf("direct = %v, want the relates-to edge", res.Direct)
	}
	if len(res.Transitive) != 0 {
		t.Errorf("transitive = %v, relates-to must not be followed", res.Transitive)
	}
	// The relates-to edge must not make FEAT-003 a dependent of FEAT-002.
	if deps := Resolve("FEAT-002", features).Dependents; len(deps) != 0 {
		t.Errorf("dependents of FEAT-002 = %v, want none", deps)
	}
}

func TestResolveUnknownFeature(t *testing.T) {
	features := []project.Feature{feat("FEAT-001")}
	res := Resolve("FEAT-404", features)
	if len(res.Direct) != 0 || len(res.Transitive) != 0 || len(res.Dependents) != 0 {
		t.Errorf("unknown feature should resolve empty, got %+v", res)
	}
}

func TestResolveDanglingDependency(t *testing.T) {
	// An edge to a feature with no file still appears in the closure; the
	// walk just cannot expand past it.
	features := []project.Feature{feat("FEAT-001", blocks("FEAT-404"))}
	res := Resolve("FEAT-001", features)
	if diff := cmp.Diff([]string{"FEAT-404"}, res.Transitive); diff != "" {
		t.Errorf("transitive mismatch (-want +got):\n%s", diff)
	}
}
