package store

import (
	"fmt"
	"sort"

	"github.com/pmspec/pmspec/internal/changelog"
	"github.com/pmspec/pmspec/internal/markdown"
	"github.com/pmspec/pmspec/internal/project"
)

// RepairEpicMembership re-derives every Epic's feature list from the
// Features' own EpicID fields and rewrites the Epics whose lists drifted.
// This is the self-healing counterpart of the feature create's
// non-transactional second write: the Feature's EpicID is authoritative,
// the Epic's list is a cache. Returns the number of Epics rewritten.
func (s *Store) RepairEpicMembership() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	epics, err := s.ListEpics()
	if err != nil {
		return 0, err
	}
	features, err := s.ListFeatures()
	if err != nil {
		return 0, err
	}

	byEpic := make(map[string][]string)
	for _, f := range features {
		byEpic[f.EpicID] = append(byEpic[f.EpicID], f.ID)
	}
	for id := range byEpic {
		sort.Strings(byEpic[id])
	}

	repaired := 0
	for i := range epics {
		epic := &epics[i]
		derived := byEpic[epic.ID]
		if sameMembers(epic.Features, derived) {
			continue
		}
		old := epic.Features
		epic.Features = derived
		if err := s.writeEntity(EpicsDir, epic.ID, markdown.EncodeEpic(epic)); err != nil {
			return repaired, fmt.Errorf("failed to rewrite epic %s: %w", epic.ID, err)
		}
		s.recordUpdates(changelog.EntityEpic, epic.ID, map[string]changelog.Change{
			"features": {Old: old, New: derived},
		})
		s.broadcast("epic", epic.ID, "updated")
		repaired++
	}
	return repaired, nil
}

// Validate reports referential-integrity findings across the store without
// changing anything.
func (s *Store) Validate() ([]project.ReferenceError, error) {
	epics, err := s.ListEpics()
	if err != nil {
		return nil, err
	}
	features, err := s.ListFeatures()
	if err != nil {
		return nil, err
	}
	return project.ValidateReferences(epics, features), nil
}

// sameMembers compares two id lists ignoring order.
func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := make([]string, len(a))
	bs := make([]string, len(b))
	copy(as, a)
	copy(bs, b)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
