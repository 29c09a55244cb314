package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/api"
	"taskdeck/internal/models"
	"taskdeck/internal/projection"
	"taskdeck/internal/ui/dispatch"
	"taskdeck/internal/ui/keys"
	"taskdeck/internal/ui/styles"
)

// listRow addresses one visible line: a section header or a task.
type listRow struct {
	header bool
	group  int
	task   int
}

// ListView renders sections as collapsible blocks with inline title
// editing and one-key completion toggling.
type ListView struct {
	dispatcher dispatch.Dispatcher
	styles     *styles.Styles
	keys       keys.KeyMap

	groups    []projection.SectionGroup
	collapsed map[string]bool // client-local, never sent to the server
	cursor    int
	scrollY   int
	width     int
	height    int

	editing   bool
	editInput textinput.Model
}

// NewListView creates the list projection.
func NewListView(dispatcher dispatch.Dispatcher) *ListView {
	edit := textinput.New()
	edit.CharLimit = 200

	return &ListView{
		dispatcher: dispatcher,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		collapsed:  map[string]bool{},
		editInput:  edit,
	}
}

func (v *ListView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *ListView) SetGroups(groups []projection.SectionGroup) {
	v.groups = groups
	rows := v.rows()
	if v.cursor >= len(rows) {
		v.cursor = max(0, len(rows)-1)
	}
	// A reload while editing means the edited task may be gone.
	if v.editing && v.currentTask() == nil {
		v.editing = false
	}
}

// rows flattens groups into the visible lines. The unsectioned block
// only appears when it has tasks.
func (v *ListView) rows() []listRow {
	var rows []listRow
	for gi, g := range v.groups {
		if g.Unsectioned() && len(g.Tasks) == 0 {
			continue
		}
		rows = append(rows, listRow{header: true, group: gi})
		if v.collapsed[g.Section.ID] {
			continue
		}
		for ti := range g.Tasks {
			rows = append(rows, listRow{group: gi, task: ti})
		}
	}
	return rows
}

func (v *ListView) currentRow() (listRow, bool) {
	rows := v.rows()
	if v.cursor < 0 || v.cursor >= len(rows) {
		return listRow{}, false
	}
	return rows[v.cursor], true
}

func (v *ListView) currentTask() *models.Task {
	row, ok := v.currentRow()
	if !ok || row.header {
		return nil
	}
	g := v.groups[row.group]
	if row.task >= len(g.Tasks) {
		return nil
	}
	return &g.Tasks[row.task]
}

// currentSectionID resolves the section the cursor sits in, for
// scoping new tasks.
func (v *ListView) currentSectionID() string {
	row, ok := v.currentRow()
	if !ok {
		return models.UnsectionedID
	}
	return v.groups[row.group].Section.ID
}

// Capturing reports whether the inline title editor is open.
func (v *ListView) Capturing() bool {
	return v.editing
}

func (v *ListView) Update(msg tea.KeyMsg) tea.Cmd {
	if v.editing {
		return v.updateEditing(msg)
	}

	switch {
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.rows())-1 {
			v.cursor++
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Collapse):
		if row, ok := v.currentRow(); ok && row.header {
			id := v.groups[row.group].Section.ID
			v.toggleSection(id)
		}

	case key.Matches(msg, v.keys.ToggleDone):
		if task := v.currentTask(); task != nil {
			return v.toggleComplete(*task)
		}

	case key.Matches(msg, v.keys.Edit):
		if task := v.currentTask(); task != nil {
			v.editing = true
			v.editInput.SetValue(task.Title)
			v.editInput.CursorEnd()
			v.editInput.Focus()
			return textinput.Blink
		}

	case key.Matches(msg, v.keys.New):
		return request(newTaskRequested{SectionID: v.currentSectionID()})

	case key.Matches(msg, v.keys.NewSection):
		return request(newSectionRequested{})

	case key.Matches(msg, v.keys.Delete):
		if task := v.currentTask(); task != nil {
			return request(deleteTaskRequested{Task: *task})
		}

	case key.Matches(msg, v.keys.DeleteSection):
		if row, ok := v.currentRow(); ok && row.header && !v.groups[row.group].Unsectioned() {
			return request(deleteSectionRequested{Section: v.groups[row.group].Section})
		}
	}

	return nil
}

// toggleSection flips a section's expanded state. Local only; resets
// with the view, never round-trips to the server.
func (v *ListView) toggleSection(sectionID string) {
	v.collapsed[sectionID] = !v.collapsed[sectionID]
	rows := v.rows()
	if v.cursor >= len(rows) {
		v.cursor = max(0, len(rows)-1)
	}
}

// toggleComplete stamps completion with now, or clears it when already
// complete. Only the completion field travels.
func (v *ListView) toggleComplete(task models.Task) tea.Cmd {
	patch := api.TaskPatch{"completed_at": time.Now().UTC().Format(time.RFC3339)}
	if task.Completed() {
		patch = api.TaskPatch{"completed_at": nil}
	}
	return v.dispatcher.UpdateTask(task.ID, patch)
}

func (v *ListView) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return nil

	case key.Matches(msg, v.keys.Enter):
		v.editing = false
		task := v.currentTask()
		if task == nil {
			return nil
		}
		title := strings.TrimSpace(v.editInput.Value())
		if title == "" || title == task.Title {
			return nil
		}
		return v.dispatcher.UpdateTask(task.ID, api.TaskPatch{"title": title})
	}

	var cmd tea.Cmd
	v.editInput, cmd = v.editInput.Update(msg)
	return cmd
}

func (v *ListView) ensureVisible() {
	visible := v.visibleRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

func (v *ListView) visibleRows() int {
	return max(v.height-4, 1)
}

func (v *ListView) View() string {
	rows := v.rows()
	if len(rows) == 0 {
		return v.styles.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	var lines []string
	end := min(v.scrollY+v.visibleRows(), len(rows))
	for i := v.scrollY; i < end; i++ {
		row := rows[i]
		selected := i == v.cursor
		if row.header {
			lines = append(lines, v.renderHeader(v.groups[row.group], selected))
		} else {
			lines = append(lines, v.renderTask(v.groups[row.group].Tasks[row.task], selected))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *ListView) renderHeader(g projection.SectionGroup, selected bool) string {
	s := v.styles

	marker := "▼"
	if v.collapsed[g.Section.ID] {
		marker = "▶"
	}
	name := g.Section.Name
	if g.Unsectioned() {
		name = "No section"
	}

	style := s.SectionHeader
	if selected {
		style = s.SectionHeaderSelected
	}

	count := s.SectionCount.Render(fmt.Sprintf(" %d", len(g.Tasks)))
	return style.Render(marker+" "+name) + count
}

func (v *ListView) renderTask(task models.Task, selected bool) string {
	s := v.styles
	width := max(v.width-4, 20)

	check := "☐"
	if task.Completed() {
		check = "☑"
	}

	title := task.Title
	if v.editing && selected {
		title = v.editInput.View()
	} else if task.Completed() {
		title = s.TaskDone.Render(title)
	}

	var meta []string
	if task.Priority == models.PriorityHigh || task.Priority == models.PriorityUrgent {
		meta = append(meta, s.TaskPriority.Render("["+string(task.Priority)+"]"))
	}
	if task.DueDate != nil {
		meta = append(meta, s.TaskMeta.Render("due "+task.DueDate.Format("Jan 2")))
	}
	if task.AssignedUserName != "" {
		meta = append(meta, s.TaskMeta.Render("@"+task.AssignedUserName))
	}

	line := check + " " + title
	if len(meta) > 0 {
		line += "  " + strings.Join(meta, " ")
	}

	style := s.ListItem
	if selected {
		style = s.ListSelected
	}
	return style.MaxWidth(width).Render(line)
}
