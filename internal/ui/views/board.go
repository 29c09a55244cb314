package views

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/api"
	"taskdeck/internal/models"
	"taskdeck/internal/projection"
	"taskdeck/internal/ui/dispatch"
	"taskdeck/internal/ui/keys"
	"taskdeck/internal/ui/styles"
)

// drag is the board's drag-and-drop state machine. Idle until a card is
// lifted; the payload (task and origin section) and the current target
// column travel with it until drop or cancel. Dropping on the origin
// section is a no-op that issues no remote call.
type drag struct {
	active          bool
	taskID          string
	originSectionID string
	targetCol       int
}

// BoardView renders sections as kanban columns with keyboard
// drag-and-drop between them.
type BoardView struct {
	dispatcher dispatch.Dispatcher
	styles     *styles.Styles
	keys       keys.KeyMap

	groups    []projection.SectionGroup
	colCursor int
	rowCursor int
	drag      drag
	width     int
	height    int
}

// NewBoardView creates the board projection.
func NewBoardView(dispatcher dispatch.Dispatcher) *BoardView {
	return &BoardView{
		dispatcher: dispatcher,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
	}
}

func (v *BoardView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *BoardView) SetGroups(groups []projection.SectionGroup) {
	v.groups = groups
	v.clampCursor()
	// The lifted task may be gone after a reload.
	if v.drag.active && v.findTask(v.drag.taskID) == nil {
		v.drag = drag{}
	}
}

func (v *BoardView) clampCursor() {
	if len(v.groups) == 0 {
		v.colCursor, v.rowCursor = 0, 0
		return
	}
	v.colCursor = clamp(v.colCursor, 0, len(v.groups)-1)
	v.rowCursor = clamp(v.rowCursor, 0, max(0, len(v.groups[v.colCursor].Tasks)-1))
	if v.drag.active {
		v.drag.targetCol = clamp(v.drag.targetCol, 0, len(v.groups)-1)
	}
}

func (v *BoardView) currentTask() *models.Task {
	if v.colCursor >= len(v.groups) {
		return nil
	}
	g := v.groups[v.colCursor]
	if v.rowCursor >= len(g.Tasks) {
		return nil
	}
	return &g.Tasks[v.rowCursor]
}

func (v *BoardView) findTask(id string) *models.Task {
	for gi := range v.groups {
		for ti := range v.groups[gi].Tasks {
			if v.groups[gi].Tasks[ti].ID == id {
				return &v.groups[gi].Tasks[ti]
			}
		}
	}
	return nil
}

// Capturing reports whether a drag is in flight; esc then cancels the
// drag instead of leaving the project.
func (v *BoardView) Capturing() bool {
	return v.drag.active
}

func (v *BoardView) Update(msg tea.KeyMsg) tea.Cmd {
	if v.drag.active {
		return v.updateDragging(msg)
	}

	switch {
	case key.Matches(msg, v.keys.Left):
		if v.colCursor > 0 {
			v.colCursor--
			v.clampCursor()
		}

	case key.Matches(msg, v.keys.Right):
		if v.colCursor < len(v.groups)-1 {
			v.colCursor++
			v.clampCursor()
		}

	case key.Matches(msg, v.keys.Up):
		if v.rowCursor > 0 {
			v.rowCursor--
		}

	case key.Matches(msg, v.keys.Down):
		if g := v.column(v.colCursor); g != nil && v.rowCursor < len(g.Tasks)-1 {
			v.rowCursor++
		}

	case key.Matches(msg, v.keys.Lift), key.Matches(msg, v.keys.Enter):
		if task := v.currentTask(); task != nil {
			v.drag = drag{
				active:          true,
				taskID:          task.ID,
				originSectionID: task.SectionID,
				targetCol:       v.colCursor,
			}
		}

	case key.Matches(msg, v.keys.ToggleDone):
		if task := v.currentTask(); task != nil {
			return v.toggleComplete(*task)
		}

	case key.Matches(msg, v.keys.New):
		sectionID := models.UnsectionedID
		if g := v.column(v.colCursor); g != nil {
			sectionID = g.Section.ID
		}
		return request(newTaskRequested{SectionID: sectionID})

	case key.Matches(msg, v.keys.NewSection):
		return request(newSectionRequested{})

	case key.Matches(msg, v.keys.Delete):
		if task := v.currentTask(); task != nil {
			return request(deleteTaskRequested{Task: *task})
		}

	case key.Matches(msg, v.keys.DeleteSection):
		if g := v.column(v.colCursor); g != nil && !g.Unsectioned() {
			return request(deleteSectionRequested{Section: g.Section})
		}
	}

	return nil
}

func (v *BoardView) updateDragging(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.drag = drag{}

	case key.Matches(msg, v.keys.Left):
		if v.drag.targetCol > 0 {
			v.drag.targetCol--
		}

	case key.Matches(msg, v.keys.Right):
		if v.drag.targetCol < len(v.groups)-1 {
			v.drag.targetCol++
		}

	case key.Matches(msg, v.keys.Lift), key.Matches(msg, v.keys.Enter):
		return v.drop()
	}

	return nil
}

// drop ends the drag. Same-section drops revert without touching the
// network; anything else moves the task, appended at the destination.
func (v *BoardView) drop() tea.Cmd {
	d := v.drag
	v.drag = drag{}

	target := v.column(d.targetCol)
	if target == nil || target.Section.ID == d.originSectionID {
		return nil
	}
	return v.dispatcher.MoveTask(d.taskID, target.Section.ID)
}

func (v *BoardView) toggleComplete(task models.Task) tea.Cmd {
	patch := api.TaskPatch{"completed_at": time.Now().UTC().Format(time.RFC3339)}
	if task.Completed() {
		patch = api.TaskPatch{"completed_at": nil}
	}
	return v.dispatcher.UpdateTask(task.ID, patch)
}

func (v *BoardView) column(i int) *projection.SectionGroup {
	if i < 0 || i >= len(v.groups) {
		return nil
	}
	return &v.groups[i]
}

func (v *BoardView) View() string {
	if len(v.groups) == 0 {
		return v.styles.TitleMuted.Render("Loading...")
	}

	colWidth := clamp(v.width/len(v.groups)-2, 20, 36)
	var cols []string
	for gi, g := range v.groups {
		cols = append(cols, v.renderColumn(gi, g, colWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (v *BoardView) renderColumn(gi int, g projection.SectionGroup, width int) string {
	s := v.styles

	name := g.Section.Name
	if g.Unsectioned() {
		name = "No section"
	}
	header := s.ColumnHeader.Render(fmt.Sprintf("%s %s", name, s.SectionCount.Render(fmt.Sprintf("(%d)", len(g.Tasks)))))

	lines := []string{header, ""}
	maxCards := max((v.height-8)/2, 1)
	for ti, task := range g.Tasks {
		if ti >= maxCards {
			lines = append(lines, s.TaskMeta.Render(fmt.Sprintf("… %d more", len(g.Tasks)-maxCards)))
			break
		}
		lines = append(lines, v.renderCard(gi, ti, task, width-4))
	}
	if len(g.Tasks) == 0 {
		lines = append(lines, s.TaskMeta.Render("empty"))
	}

	style := s.Column
	if v.drag.active && gi == v.drag.targetCol {
		style = s.ColumnTarget
	}
	return style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *BoardView) renderCard(gi, ti int, task models.Task, width int) string {
	s := v.styles

	title := task.Title
	if task.Completed() {
		title = s.TaskDone.Render(title)
	}
	if task.Priority == models.PriorityHigh || task.Priority == models.PriorityUrgent {
		title = s.TaskPriority.Render("!") + " " + title
	}

	style := s.Card
	switch {
	case v.drag.active && task.ID == v.drag.taskID:
		style = s.CardLifted
	case !v.drag.active && gi == v.colCursor && ti == v.rowCursor:
		style = s.CardSelected
	}
	return style.MaxWidth(max(width, 10)).Render(title)
}
