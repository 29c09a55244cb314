package views

import (
	"fmt"
	"strings"
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

// cellsPerDay is the terminal rendering scale: one layout day maps to
// this many character cells.
const cellsPerDay = 4

// labelWidth is the task name gutter left of the grid.
const labelWidth = 24

// TimelineView renders dated tasks as bars on a day grid, the window
// auto-fitted to the data.
type TimelineView struct {
	dispatcher dispatch.Dispatcher
	styles     *styles.Styles
	keys       keys.KeyMap

	layout  projection.Layout
	cursor  int
	scrollX int // in days
	scrollY int
	width   int
	height  int

	now func() time.Time
}

// NewTimelineView creates the timeline projection.
func NewTimelineView(dispatcher dispatch.Dispatcher) *TimelineView {
	return &TimelineView{
		dispatcher: dispatcher,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		now:        time.Now,
	}
}

func (v *TimelineView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SetGroups recomputes the layout from the grouped tasks, keeping the
// grouping's section-then-position order for the bar rows.
func (v *TimelineView) SetGroups(groups []projection.SectionGroup) {
	var tasks []models.Task
	for _, g := range groups {
		tasks = append(tasks, g.Tasks...)
	}
	v.layout = projection.Timeline(tasks, v.now())
	if v.cursor >= len(v.layout.Bars) {
		v.cursor = max(0, len(v.layout.Bars)-1)
	}
	v.clampScroll()
}

func (v *TimelineView) Capturing() bool {
	return false
}

func (v *TimelineView) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.layout.Bars)-1 {
			v.cursor++
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Left):
		v.scrollX--
		v.clampScroll()

	case key.Matches(msg, v.keys.Right):
		v.scrollX++
		v.clampScroll()

	case key.Matches(msg, v.keys.ToggleDone):
		if bar := v.currentBar(); bar != nil {
			task := bar.Task
			return v.toggle(task)
		}

	case key.Matches(msg, v.keys.New):
		sectionID := models.UnsectionedID
		if bar := v.currentBar(); bar != nil {
			sectionID = bar.Task.SectionID
		}
		return request(newTaskRequested{SectionID: sectionID})

	case key.Matches(msg, v.keys.Delete):
		if bar := v.currentBar(); bar != nil {
			return request(deleteTaskRequested{Task: bar.Task})
		}
	}

	return nil
}

func (v *TimelineView) toggle(task models.Task) tea.Cmd {
	if task.Completed() {
		return v.dispatcher.UpdateTask(task.ID, api.TaskPatch{"completed_at": nil})
	}
	return v.dispatcher.UpdateTask(task.ID, api.TaskPatch{
		"completed_at": v.now().UTC().Format(time.RFC3339),
	})
}

func (v *TimelineView) currentBar() *projection.Bar {
	if v.cursor < 0 || v.cursor >= len(v.layout.Bars) {
		return nil
	}
	return &v.layout.Bars[v.cursor]
}

func (v *TimelineView) visibleDays() int {
	return max((v.width-labelWidth)/cellsPerDay, 7)
}

func (v *TimelineView) visibleRows() int {
	return max(v.height-7, 1)
}

func (v *TimelineView) clampScroll() {
	total := len(v.layout.Days)
	v.scrollX = clamp(v.scrollX, 0, max(0, total-v.visibleDays()))
}

func (v *TimelineView) ensureVisible() {
	visible := v.visibleRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

func (v *TimelineView) View() string {
	if v.layout.Empty() {
		return v.styles.TitleMuted.Render("No scheduled tasks. Give a task a start or due date to see it here.")
	}

	gutter := strings.Repeat(" ", labelWidth)
	lines := []string{
		gutter + v.renderMonthRow(),
		gutter + v.renderDayRow(),
	}

	end := min(v.scrollY+v.visibleRows(), len(v.layout.Bars))
	for i := v.scrollY; i < end; i++ {
		lines = append(lines, v.renderBarRow(i))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderMonthRow groups the visible days into month bands.
func (v *TimelineView) renderMonthRow() string {
	days := v.visibleSlice()
	var b strings.Builder
	for i := 0; i < len(days); {
		label := days[i].Date.Format("Jan 2006")
		run := 1
		for i+run < len(days) && days[i+run].Date.Month() == days[i].Date.Month() {
			run++
		}
		band := fmt.Sprintf("%-*s", run*cellsPerDay, label)
		if len(band) > run*cellsPerDay {
			band = band[:run*cellsPerDay]
		}
		b.WriteString(v.styles.MonthHeader.Render(band))
		i += run
	}
	return b.String()
}

func (v *TimelineView) renderDayRow() string {
	var b strings.Builder
	for _, day := range v.visibleSlice() {
		cell := fmt.Sprintf("%-*d", cellsPerDay, day.Date.Day())
		switch {
		case day.Today:
			b.WriteString(v.styles.DayToday.Render(cell))
		case day.Weekend:
			b.WriteString(v.styles.DayWeekend.Render(cell))
		default:
			b.WriteString(v.styles.Day.Render(cell))
		}
	}
	return b.String()
}

func (v *TimelineView) renderBarRow(i int) string {
	s := v.styles
	bar := v.layout.Bars[i]

	label := bar.Task.Title
	if len(label) > labelWidth-2 {
		label = label[:labelWidth-3] + "…"
	}
	labelStyle := s.TaskMeta
	if i == v.cursor {
		labelStyle = s.ListSelected
	}
	gutter := labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, label))

	startDay := bar.Offset / projection.DayWidth
	lenDays := bar.Width / projection.DayWidth
	todayDay := -1
	if v.layout.TodayOffset >= 0 {
		todayDay = v.layout.TodayOffset / projection.DayWidth
	}

	barStyle := s.Bar
	if bar.Task.Completed() {
		barStyle = s.BarDone
	}

	var b strings.Builder
	days := v.visibleSlice()
	for d := range days {
		day := v.scrollX + d
		switch {
		case day >= startDay && day < startDay+lenDays:
			b.WriteString(barStyle.Render(strings.Repeat("█", cellsPerDay)))
		case day == todayDay:
			b.WriteString(v.styles.TodayMarker.Render("│" + strings.Repeat(" ", cellsPerDay-1)))
		default:
			b.WriteString(strings.Repeat(" ", cellsPerDay))
		}
	}

	return gutter + b.String()
}

func (v *TimelineView) visibleSlice() []projection.DayCell {
	start := clamp(v.scrollX, 0, max(0, len(v.layout.Days)-1))
	end := min(start+v.visibleDays(), len(v.layout.Days))
	return v.layout.Days[start:end]
}
