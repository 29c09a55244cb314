// Package projection turns the flat task collection returned by the API
// into the derived structures the views render: per-section groupings
// and the timeline layout. Everything here is pure; no I/O, no errors.
package projection

import (
	"sort"

	"taskdeck/internal/models"
)

// SectionGroup pairs a section with its tasks ordered by position. The
// unsectioned group carries a zero-value Section whose ID is
// models.UnsectionedID.
type SectionGroup struct {
	Section models.Section
	Tasks   []models.Task
}

// Unsectioned reports whether this is the catch-all group.
func (g SectionGroup) Unsectioned() bool {
	return g.Section.ID == models.UnsectionedID
}

// BySection groups tasks under their sections, sections ordered by
// position, tasks within a group ordered by position ascending with
// ties keeping their input order. Tasks referencing an unknown section
// fall into the unsectioned group, which is always present and comes
// last. Every task lands in exactly one group.
func BySection(tasks []models.Task, sections []models.Section) []SectionGroup {
	ordered := make([]models.Section, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	index := make(map[string]int, len(ordered)+1)
	groups := make([]SectionGroup, 0, len(ordered)+1)
	for _, s := range ordered {
		index[s.ID] = len(groups)
		groups = append(groups, SectionGroup{Section: s})
	}
	unsectioned := len(groups)
	groups = append(groups, SectionGroup{})

	for _, t := range tasks {
		i, ok := index[t.SectionID]
		if !ok {
			i = unsectioned
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}

	for i := range groups {
		g := groups[i].Tasks
		sort.SliceStable(g, func(a, b int) bool {
			return g[a].Position < g[b].Position
		})
	}

	return groups
}

// TaskCount sums the tasks across groups.
func TaskCount(groups []SectionGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Tasks)
	}
	return n
}

// Find returns the group for a section id, or nil.
func Find(groups []SectionGroup, sectionID string) *SectionGroup {
	for i := range groups {
		if groups[i].Section.ID == sectionID {
			return &groups[i]
		}
	}
	return nil
}
