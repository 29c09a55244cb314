package projection_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taskdeck/internal/models"
	"taskdeck/internal/projection"
)

func task(id, sectionID string, pos int) models.Task {
	return models.Task{ID: id, SectionID: sectionID, Position: pos}
}

func TestBySection_OrdersByPosition(t *testing.T) {
	sections := []models.Section{
		{ID: "A", Position: 0},
		{ID: "B", Position: 1},
	}
	tasks := []models.Task{
		task("1", "A", 1),
		task("2", "A", 0),
		task("3", "B", 0),
	}

	groups := projection.BySection(tasks, sections)
	require.Len(t, groups, 3) // A, B, unsectioned

	a := projection.Find(groups, "A")
	require.NotNil(t, a)
	require.Equal(t, []string{"2", "1"}, taskIDs(a.Tasks))

	b := projection.Find(groups, "B")
	require.NotNil(t, b)
	require.Equal(t, []string{"3"}, taskIDs(b.Tasks))

	require.Empty(t, groups[2].Tasks)
	require.True(t, groups[2].Unsectioned())
}

func TestBySection_EveryTaskInExactlyOneGroup(t *testing.T) {
	sections := []models.Section{
		{ID: "s1", Position: 0},
		{ID: "s2", Position: 1},
	}
	tasks := []models.Task{
		task("1", "s1", 3),
		task("2", "s2", 0),
		task("3", "gone", 1),
		task("4", "", 0),
		task("5", "s1", 1),
	}

	groups := projection.BySection(tasks, sections)
	require.Equal(t, len(tasks), projection.TaskCount(groups))

	seen := map[string]int{}
	for _, g := range groups {
		for _, task := range g.Tasks {
			seen[task.ID]++
		}
	}
	for _, task := range tasks {
		require.Equal(t, 1, seen[task.ID], "task %s", task.ID)
	}
}

func TestBySection_UnknownSectionFallsBackToUnsectioned(t *testing.T) {
	sections := []models.Section{{ID: "s1", Position: 0}}
	tasks := []models.Task{
		task("1", "deleted-section", 0),
		task("2", "", 5),
	}

	groups := projection.BySection(tasks, sections)
	last := groups[len(groups)-1]
	require.True(t, last.Unsectioned())
	require.Equal(t, []string{"1", "2"}, taskIDs(last.Tasks))
}

func TestBySection_TiesKeepInputOrder(t *testing.T) {
	sections := []models.Section{{ID: "s1", Position: 0}}
	tasks := []models.Task{
		task("first", "s1", 2),
		task("second", "s1", 2),
		task("third", "s1", 2),
		task("zero", "s1", 0),
	}

	groups := projection.BySection(tasks, sections)
	g := projection.Find(groups, "s1")
	require.NotNil(t, g)
	require.Equal(t, []string{"zero", "first", "second", "third"}, taskIDs(g.Tasks))
}

func TestBySection_SectionsOrderedByPosition(t *testing.T) {
	sections := []models.Section{
		{ID: "later", Position: 5},
		{ID: "earlier", Position: 1},
		{ID: "middle", Position: 3},
	}

	groups := projection.BySection(nil, sections)
	require.Len(t, groups, 4)
	require.Equal(t, "earlier", groups[0].Section.ID)
	require.Equal(t, "middle", groups[1].Section.ID)
	require.Equal(t, "later", groups[2].Section.ID)
	require.True(t, groups[3].Unsectioned())
}

func TestBySection_EmptyInputs(t *testing.T) {
	groups := projection.BySection(nil, nil)
	require.Len(t, groups, 1)
	require.True(t, groups[0].Unsectioned())
	require.Empty(t, groups[0].Tasks)
}

func TestBySection_DoesNotMutateInputs(t *testing.T) {
	sections := []models.Section{
		{ID: "b", Position: 1},
		{ID: "a", Position: 0},
	}
	tasks := []models.Task{
		task("1", "a", 1),
		task("2", "a", 0),
	}

	projection.BySection(tasks, sections)

	require.Equal(t, "b", sections[0].ID)
	require.Equal(t, "1", tasks[0].ID)
}

func taskIDs(tasks []models.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
