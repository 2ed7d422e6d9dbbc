// Package graph resolves the Feature dependency graph: transitive
// dependencies and dependents derived from each Feature's "blocks" edges.
package graph

import (
	"sort"

	"github.com/pmspec/pmspec/internal/project"
)

// Resolution is the dependency view for one Feature.
type Resolution struct {
	// Direct is the Feature's own dependency list, both edge types.
	Direct []project.Dependency `json:"directDependencies"`
	// Transitive is every Feature reachable by following "blocks" edges
	// from the target, the target itself excluded, sorted by id.
	Transitive []string `json:"transitiveDependencies"`
	// Dependents lists every Feature carrying a "blocks" edge that points
	// at the target, sorted by id.
	Dependents []string `json:"dependents"`
}

// Resolve computes the dependency view for featureID over the full feature
// list. "relates-to" edges appear in Direct but never in Transitive or
// Dependents. Cycles are tolerated: the walk is bounded by a visited set,
// so a cycle simply stops expanding instead of looping.
func Resolve(featureID string, features []project.Feature) Resolution {
	byID := make(map[string]*project.Feature, len(features))
	for i := range features {
		byID[features[i].ID] = &features[i]
	}

	var res Resolution
	if f, ok := byID[featureID]; ok {
		res.Direct = f.Dependencies
	}

	// Iterative walk with an explicit stack; recursion depth would bound
	// the graph size otherwise.
	visited := map[string]bool{featureID: true}
	stack := blockedIDs(byID[featureID])
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		res.Transitive = append(res.Transitive, id)
		stack = append(stack, blockedIDs(byID[id])...)
	}
	sort.Strings(res.Transitive)

	for _, f := range features {
		for _, d := range f.Dependencies {
			if d.Type == project.DepBlocks && d.FeatureID == featureID {
				res.Dependents = append(res.Dependents, f.ID)
				break
			}
		}
	}
	sort.Strings(res.Dependents)

	return res
}

func blockedIDs(f *project.Feature) []string {
	if f == nil {
		return nil
	}
	var ids []string
	for _, d := range f.Dependencies {
		if d.Type == project.DepBlocks {
			ids = append(ids, d.FeatureID)
		}
	}
	return ids
}
