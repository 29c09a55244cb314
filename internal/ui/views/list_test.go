package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskdeck/internal/models"
	"taskdeck/internal/projection"
)

func listGroups(extra ...models.Task) []projection.SectionGroup {
	tasks := []models.Task{
		{ID: "t1", SectionID: "A", Title: "first", Position: 0},
		{ID: "t2", SectionID: "A", Title: "second", Position: 1},
		{ID: "t3", SectionID: "B", Title: "third", Position: 0},
	}
	tasks = append(tasks, extra...)
	return projection.BySection(tasks, []models.Section{
		{ID: "A", Name: "Todo", Position: 0},
		{ID: "B", Name: "Doing", Position: 1},
	})
}

func newList(t *testing.T, groups []projection.SectionGroup) (*ListView, *fakeDispatcher) {
	t.Helper()
	f := &fakeDispatcher{}
	v := NewListView(f)
	v.SetSize(100, 40)
	v.SetGroups(groups)
	return v, f
}

func TestList_HidesEmptyUnsectionedBlock(t *testing.T) {
	v, _ := newList(t, listGroups())
	// Two headers plus three tasks; no header for the empty catch-all.
	require.Len(t, v.rows(), 5)

	v.SetGroups(listGroups(models.Task{ID: "t4", Title: "loose"}))
	require.Len(t, v.rows(), 7)
}

func TestList_CollapseIsLocal(t *testing.T) {
	v, f := newList(t, listGroups())

	v.Update(keyMsg("space")) // cursor on header A
	require.True(t, v.collapsed["A"])
	require.Len(t, v.rows(), 3)
	require.Empty(t, f.calls)

	v.Update(keyMsg("space"))
	require.False(t, v.collapsed["A"])
	require.Len(t, v.rows(), 5)
}

func TestList_ToggleDonePatchesCompletion(t *testing.T) {
	done := time.Now().UTC()
	v, f := newList(t, listGroups(models.Task{
		ID: "t4", SectionID: "B", Title: "shipped", Position: 1, CompletedAt: &done,
	}))

	v.Update(keyMsg("down")) // t1
	v.Update(keyMsg("x"))
	require.Equal(t, []string{"update-task t1"}, f.calls)
	require.NotNil(t, f.patches[0]["completed_at"])

	// Completed task toggles back to open with an explicit null.
	for i := 0; i < 4; i++ {
		v.Update(keyMsg("down"))
	}
	v.Update(keyMsg("x"))
	require.Equal(t, "update-task t4", f.calls[1])
	require.Contains(t, f.patches[1], "completed_at")
	require.Nil(t, f.patches[1]["completed_at"])
}

func TestList_EditCommitsOnlyChangedTitles(t *testing.T) {
	v, f := newList(t, listGroups())
	v.Update(keyMsg("down"))

	v.Update(keyMsg("e"))
	require.True(t, v.Capturing())
	v.Update(keyMsg("enter")) // unchanged
	require.False(t, v.Capturing())
	require.Empty(t, f.calls)

	v.Update(keyMsg("e"))
	v.editInput.SetValue("   ")
	v.Update(keyMsg("enter")) // blank
	require.Empty(t, f.calls)

	v.Update(keyMsg("e"))
	v.editInput.SetValue("renamed")
	v.Update(keyMsg("enter"))
	require.Equal(t, []string{"update-task t1"}, f.calls)
	require.Equal(t, "renamed", f.patches[0]["title"])
}

func TestList_EditCancelDiscards(t *testing.T) {
	v, f := newList(t, listGroups())
	v.Update(keyMsg("down"))

	v.Update(keyMsg("e"))
	v.editInput.SetValue("renamed")
	v.Update(keyMsg("esc"))
	require.False(t, v.Capturing())
	require.Empty(t, f.calls)
}

func TestList_NewTaskScopedToCursorSection(t *testing.T) {
	v, _ := newList(t, listGroups())

	for i := 0; i < 3; i++ {
		v.Update(keyMsg("down")) // header B
	}
	cmd := v.Update(keyMsg("n"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(newTaskRequested)
	require.True(t, ok)
	require.Equal(t, "B", msg.SectionID)
}

func TestList_DeleteSectionOnlyOnHeaders(t *testing.T) {
	v, _ := newList(t, listGroups())

	v.Update(keyMsg("down")) // task row
	require.Nil(t, v.Update(keyMsg("D")))

	v.Update(keyMsg("up")) // header A
	cmd := v.Update(keyMsg("D"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(deleteSectionRequested)
	require.True(t, ok)
	require.Equal(t, "A", msg.Section.ID)
}

func TestList_ReloadWhileEditingVanishedTask(t *testing.T) {
	v, _ := newList(t, listGroups())
	v.Update(keyMsg("down"))
	v.Update(keyMsg("e"))
	require.True(t, v.Capturing())

	v.SetGroups(projection.BySection(nil, []models.Section{{ID: "A", Name: "Todo"}}))
	require.False(t, v.Capturing())
}
