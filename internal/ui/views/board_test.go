package views

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/api"
	"taskdeck/internal/models"
	"taskdeck/internal/projection"
)

// fakeDispatcher records operations instead of hitting the network.
type fakeDispatcher struct {
	calls   []string
	patches []api.TaskPatch
}

func (f *fakeDispatcher) record(format string, args ...any) tea.Cmd {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeDispatcher) Reload() tea.Cmd { return f.record("reload") }

func (f *fakeDispatcher) CreateTask(req api.CreateTaskRequest) tea.Cmd {
	return f.record("create-task %s in %q", req.Title, req.SectionID)
}

func (f *fakeDispatcher) UpdateTask(taskID string, patch api.TaskPatch) tea.Cmd {
	f.patches = append(f.patches, patch)
	return f.record("update-task %s", taskID)
}

func (f *fakeDispatcher) DeleteTask(taskID string) tea.Cmd {
	return f.record("delete-task %s", taskID)
}

func (f *fakeDispatcher) MoveTask(taskID, sectionID string) tea.Cmd {
	return f.record("move-task %s to %q", taskID, sectionID)
}

func (f *fakeDispatcher) CreateSection(name string) tea.Cmd {
	return f.record("create-section %s", name)
}

func (f *fakeDispatcher) DeleteSection(sectionID string) tea.Cmd {
	return f.record("delete-section %s", sectionID)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func boardGroups() []projection.SectionGroup {
	return projection.BySection(
		[]models.Task{
			{ID: "t1", SectionID: "A", Title: "first", Position: 0},
			{ID: "t2", SectionID: "A", Title: "second", Position: 1},
			{ID: "t3", SectionID: "B", Title: "third", Position: 0},
		},
		[]models.Section{
			{ID: "A", Name: "Todo", Position: 0},
			{ID: "B", Name: "Doing", Position: 1},
		},
	)
}

func newBoard(t *testing.T) (*BoardView, *fakeDispatcher) {
	t.Helper()
	f := &fakeDispatcher{}
	v := NewBoardView(f)
	v.SetSize(120, 40)
	v.SetGroups(boardGroups())
	return v, f
}

func TestBoard_LiftCarriesPayload(t *testing.T) {
	v, _ := newBoard(t)

	require.False(t, v.Capturing())
	v.Update(keyMsg("space"))
	require.True(t, v.Capturing())
	require.Equal(t, "t1", v.drag.taskID)
	require.Equal(t, "A", v.drag.originSectionID)
	require.Equal(t, 0, v.drag.targetCol)
}

func TestBoard_DropOnOtherSectionMoves(t *testing.T) {
	v, f := newBoard(t)

	v.Update(keyMsg("space"))
	v.Update(keyMsg("right"))
	v.Update(keyMsg("enter"))
	require.Equal(t, []string{`move-task t1 to "B"`}, f.calls)
	require.False(t, v.Capturing())
}

func TestBoard_DropOnOriginIsNoOp(t *testing.T) {
	v, f := newBoard(t)

	v.Update(keyMsg("space"))
	v.Update(keyMsg("right"))
	v.Update(keyMsg("left")) // back to the origin column
	v.Update(keyMsg("enter"))

	require.Empty(t, f.calls)
	require.False(t, v.Capturing())
}

func TestBoard_CancelIssuesNothing(t *testing.T) {
	v, f := newBoard(t)

	v.Update(keyMsg("space"))
	v.Update(keyMsg("right"))
	v.Update(keyMsg("esc"))

	require.Empty(t, f.calls)
	require.False(t, v.Capturing())
}

func TestBoard_DropTargetClampedToColumns(t *testing.T) {
	v, f := newBoard(t)

	v.Update(keyMsg("space"))
	for i := 0; i < 10; i++ {
		v.Update(keyMsg("right"))
	}
	// Columns are A, B, unsectioned; target sticks at the last one.
	require.Equal(t, 2, v.drag.targetCol)
	v.Update(keyMsg("enter"))
	require.Equal(t, []string{`move-task t1 to ""`}, f.calls)
}

func TestBoard_ReloadDroppingLiftedTaskEndsDrag(t *testing.T) {
	v, _ := newBoard(t)

	v.Update(keyMsg("space"))
	require.True(t, v.Capturing())

	v.SetGroups(projection.BySection(
		[]models.Task{{ID: "t3", SectionID: "B", Title: "third"}},
		[]models.Section{{ID: "A", Name: "Todo"}, {ID: "B", Name: "Doing", Position: 1}},
	))
	require.False(t, v.Capturing())
}

func TestBoard_ToggleDone(t *testing.T) {
	v, f := newBoard(t)

	v.Update(keyMsg("x"))
	require.Equal(t, []string{"update-task t1"}, f.calls)
	require.Len(t, f.patches, 1)
	require.Contains(t, f.patches[0], "completed_at")
	require.NotNil(t, f.patches[0]["completed_at"])
}

func TestBoard_NewTaskScopedToCurrentColumn(t *testing.T) {
	v, _ := newBoard(t)

	v.Update(keyMsg("right"))
	cmd := v.Update(keyMsg("n"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(newTaskRequested)
	require.True(t, ok)
	require.Equal(t, "B", msg.SectionID)
}

func TestBoard_DeleteSectionSkipsUnsectioned(t *testing.T) {
	v, _ := newBoard(t)

	v.Update(keyMsg("right"))
	v.Update(keyMsg("right")) // unsectioned column
	cmd := v.Update(keyMsg("D"))
	require.Nil(t, cmd)

	v.Update(keyMsg("left"))
	cmd = v.Update(keyMsg("D"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(deleteSectionRequested)
	require.True(t, ok)
	require.Equal(t, "B", msg.Section.ID)
}
