package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
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

// BackToProjects signals to go back to the project list
type BackToProjects struct{}

// confirmTarget is a pending destructive operation awaiting y/N.
type confirmTarget struct {
	section bool
	id      string
	name    string
}

// ProjectView is the per-project surface: it loads the task collection,
// keeps the grouping current, mounts one projection at a time, and owns
// the modal flows (create forms, delete confirmations) every projection
// shares.
type ProjectView struct {
	client     *api.Client
	dispatcher dispatch.Dispatcher
	project    models.Project
	styles     *styles.Styles
	keys       keys.KeyMap

	tasks    []models.Task
	sections []models.Section
	groups   []projection.SectionGroup
	loaded   bool
	// latestGen is the newest reload generation applied; older
	// responses resolving late are dropped.
	latestGen uint64

	active   models.View
	list     *ListView
	board    *BoardView
	timeline *TimelineView

	width  int
	height int

	// Create-task form
	creatingTask  bool
	taskSectionID string
	taskTitle     textinput.Model
	taskDesc      textarea.Model
	taskPriority  textinput.Model
	taskStart     textinput.Model
	taskDue       textinput.Model
	taskFocusIdx  int // 0=title 1=desc 2=priority 3=start 4=due 5=save
	formErr       string

	// Create-section form
	creatingSection bool
	sectionName     textinput.Model

	// Delete confirmation
	confirming bool
	confirm    confirmTarget
}

// NewProjectView creates the surface for a project, opening the
// projection the project was last saved with.
func NewProjectView(client *api.Client, dispatcher dispatch.Dispatcher, project models.Project) *ProjectView {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	priority := textinput.New()
	priority.Placeholder = "low/medium/high/urgent"
	priority.CharLimit = 10

	start := textinput.New()
	start.Placeholder = "YYYY-MM-DD"
	start.CharLimit = 10

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD"
	due.CharLimit = 10

	sectionName := textinput.New()
	sectionName.Placeholder = "Section name"
	sectionName.CharLimit = 100

	return &ProjectView{
		client:       client,
		dispatcher:   dispatcher,
		project:      project,
		styles:       styles.NewStyles(),
		keys:         keys.DefaultKeyMap(),
		active:       project.DefaultView.Normalize(),
		list:         NewListView(dispatcher),
		board:        NewBoardView(dispatcher),
		timeline:     NewTimelineView(dispatcher),
		taskTitle:    title,
		taskDesc:     desc,
		taskPriority: priority,
		taskStart:    start,
		taskDue:      due,
		sectionName:  sectionName,
	}
}

// Init triggers the initial load.
func (v *ProjectView) Init() tea.Cmd {
	return v.dispatcher.Reload()
}

func (v *ProjectView) activeProjection() taskProjection {
	switch v.active {
	case models.ViewBoard:
		return v.board
	case models.ViewTimeline:
		return v.timeline
	}
	return v.list
}

func (v *ProjectView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inner := max(msg.Height-5, 3)
		v.list.SetSize(msg.Width, inner)
		v.board.SetSize(msg.Width, inner)
		v.timeline.SetSize(msg.Width, inner)
		inputWidth := clamp(msg.Width-10, 20, 50)
		v.taskDesc.SetWidth(inputWidth)
		return v, nil

	case dispatch.TasksLoadedMsg:
		if msg.Gen <= v.latestGen {
			// A newer reload already landed; this response is stale.
			return v, nil
		}
		v.latestGen = msg.Gen
		v.tasks = msg.Tasks
		v.sections = msg.Sections
		v.groups = projection.BySection(v.tasks, v.sections)
		v.list.SetGroups(v.groups)
		v.board.SetGroups(v.groups)
		v.timeline.SetGroups(v.groups)
		v.loaded = true
		return v, nil

	case newTaskRequested:
		v.openTaskForm(msg.SectionID)
		return v, textinput.Blink

	case newSectionRequested:
		v.creatingSection = true
		v.sectionName.Reset()
		v.sectionName.Focus()
		return v, textinput.Blink

	case deleteTaskRequested:
		v.confirming = true
		v.confirm = confirmTarget{id: msg.Task.ID, name: msg.Task.Title}
		return v, nil

	case deleteSectionRequested:
		v.confirming = true
		v.confirm = confirmTarget{section: true, id: msg.Section.ID, name: msg.Section.Name}
		return v, nil

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}

	return v, nil
}

func (v *ProjectView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.confirming {
		return v.updateConfirm(msg)
	}
	if v.creatingTask {
		return v.updateTaskForm(msg)
	}
	if v.creatingSection {
		return v.updateSectionForm(msg)
	}

	// A projection in a capturing state (inline edit, active drag)
	// gets every key, including esc and q.
	if v.activeProjection().Capturing() {
		return v, v.activeProjection().Update(msg)
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.ListView):
		return v, v.switchView(models.ViewList)

	case key.Matches(msg, v.keys.BoardView):
		return v, v.switchView(models.ViewBoard)

	case key.Matches(msg, v.keys.TimelineView):
		return v, v.switchView(models.ViewTimeline)
	}

	return v, v.activeProjection().Update(msg)
}

// switchView changes the mounted projection and persists the choice as
// the project's default view so reopening the project restores it.
func (v *ProjectView) switchView(target models.View) tea.Cmd {
	if target == v.active {
		return nil
	}
	v.active = target
	v.project.DefaultView = target

	client, projectID := v.client, v.project.ID
	return func() tea.Msg {
		_, err := client.UpdateProject(context.Background(), projectID, api.ProjectPatch{
			"default_view": string(target),
		})
		if err != nil {
			return dispatch.ErrMsg{Op: "save view", Err: err}
		}
		return nil
	}
}

func (v *ProjectView) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		target := v.confirm
		v.confirming = false
		if target.section {
			return v, v.dispatcher.DeleteSection(target.id)
		}
		return v, v.dispatcher.DeleteTask(target.id)
	case "n", "N", "esc":
		v.confirming = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectView) openTaskForm(sectionID string) {
	v.creatingTask = true
	v.taskSectionID = sectionID
	v.taskFocusIdx = 0
	v.formErr = ""
	v.taskTitle.Reset()
	v.taskDesc.Reset()
	v.taskPriority.Reset()
	v.taskStart.Reset()
	v.taskDue.Reset()
	v.updateTaskFormFocus()
}

func (v *ProjectView) updateTaskForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creatingTask = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.submitTask()

	case key.Matches(msg, v.keys.Tab):
		v.taskFocusIdx = (v.taskFocusIdx + 1) % 6
		v.updateTaskFormFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.taskFocusIdx = (v.taskFocusIdx + 5) % 6
		v.updateTaskFormFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		// Enter advances single-line fields, saves on the button, and
		// passes through to the textarea for newlines.
		switch v.taskFocusIdx {
		case 0, 2, 3, 4:
			v.taskFocusIdx++
			v.updateTaskFormFocus()
			return v, nil
		case 5:
			return v, v.submitTask()
		}
	}

	var cmd tea.Cmd
	switch v.taskFocusIdx {
	case 0:
		v.taskTitle, cmd = v.taskTitle.Update(msg)
	case 1:
		v.taskDesc, cmd = v.taskDesc.Update(msg)
	case 2:
		v.taskPriority, cmd = v.taskPriority.Update(msg)
	case 3:
		v.taskStart, cmd = v.taskStart.Update(msg)
	case 4:
		v.taskDue, cmd = v.taskDue.Update(msg)
	}
	return v, cmd
}

func (v *ProjectView) updateTaskFormFocus() {
	v.taskTitle.Blur()
	v.taskDesc.Blur()
	v.taskPriority.Blur()
	v.taskStart.Blur()
	v.taskDue.Blur()

	switch v.taskFocusIdx {
	case 0:
		v.taskTitle.Focus()
	case 1:
		v.taskDesc.Focus()
	case 2:
		v.taskPriority.Focus()
	case 3:
		v.taskStart.Focus()
	case 4:
		v.taskDue.Focus()
	}
}

// submitTask validates the form and dispatches the create. Validation
// failures keep the form open; no remote call is issued.
func (v *ProjectView) submitTask() tea.Cmd {
	title := strings.TrimSpace(v.taskTitle.Value())
	if title == "" {
		v.formErr = "Title is required"
		return nil
	}

	req := api.CreateTaskRequest{
		SectionID:   v.taskSectionID,
		Title:       title,
		Description: strings.TrimSpace(v.taskDesc.Value()),
	}

	if p := strings.TrimSpace(strings.ToLower(v.taskPriority.Value())); p != "" {
		switch models.Priority(p) {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
			req.Priority = models.Priority(p)
		default:
			v.formErr = "Priority must be low, medium, high or urgent"
			return nil
		}
	}

	if s := strings.TrimSpace(v.taskStart.Value()); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			v.formErr = "Start date must be YYYY-MM-DD"
			return nil
		}
		req.StartDate = &d
	}
	if s := strings.TrimSpace(v.taskDue.Value()); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			v.formErr = "Due date must be YYYY-MM-DD"
			return nil
		}
		req.DueDate = &d
	}

	v.creatingTask = false
	return v.dispatcher.CreateTask(req)
}

func (v *ProjectView) updateSectionForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creatingSection = false
		return v, nil

	case key.Matches(msg, v.keys.Enter), msg.String() == "ctrl+s":
		name := strings.TrimSpace(v.sectionName.Value())
		if name == "" {
			return v, nil
		}
		v.creatingSection = false
		return v, v.dispatcher.CreateSection(name)
	}

	var cmd tea.Cmd
	v.sectionName, cmd = v.sectionName.Update(msg)
	return v, cmd
}

// View renders the view
func (v *ProjectView) View() string {
	if v.confirming {
		return v.renderConfirm()
	}
	if v.creatingTask {
		return v.renderTaskForm()
	}
	if v.creatingSection {
		return v.renderSectionForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.activeProjection().View())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *ProjectView) renderHeader() string {
	s := v.styles

	tabs := make([]string, 0, 3)
	for _, t := range []models.View{models.ViewList, models.ViewBoard, models.ViewTimeline} {
		style := s.Tab
		if t == v.active {
			style = s.TabActive
		}
		tabs = append(tabs, style.Render(string(t)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		s.Title.Render(v.project.Name),
		"  ",
		lipgloss.JoinHorizontal(lipgloss.Center, tabs...),
	)
}

func (v *ProjectView) renderHelp() string {
	s := v.styles
	parts := []string{
		s.HelpKey.Render("1/2/3") + " view",
		s.HelpKey.Render("n") + " new",
		s.HelpKey.Render("N") + " section",
		s.HelpKey.Render("x") + " done",
		s.HelpKey.Render("e") + " edit",
		s.HelpKey.Render("d") + " del",
	}
	if v.active == models.ViewBoard {
		parts = append(parts, s.HelpKey.Render("space")+" lift/drop")
	}
	parts = append(parts,
		s.HelpKey.Render("esc")+" back",
		s.HelpKey.Render("q")+" quit",
	)
	return s.Help.Render(strings.Join(parts, " • "))
}

func (v *ProjectView) renderConfirm() string {
	s := v.styles

	what := "Delete Task?"
	note := ""
	if v.confirm.section {
		what = "Delete Section?"
		note = "Its tasks move to \"No section\"."
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(what),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q", v.confirm.name)),
		s.TitleMuted.Render(note),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, content)
}

func (v *ProjectView) renderTaskForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	fieldStyles := make([]lipgloss.Style, 5)
	for i := range fieldStyles {
		fieldStyles[i] = s.Input
	}
	btnStyle := s.Button
	if v.taskFocusIdx < 5 {
		fieldStyles[v.taskFocusIdx] = s.InputFocused
	} else {
		btnStyle = s.ButtonFocused
	}

	errLine := ""
	if v.formErr != "" {
		errLine = s.Notification.Render(v.formErr)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Task"),
		"",
		"Title:",
		fieldStyles[0].Width(inputWidth).Render(v.taskTitle.View()),
		"",
		"Description:",
		fieldStyles[1].Render(v.taskDesc.View()),
		"",
		"Priority:",
		fieldStyles[2].Width(24).Render(v.taskPriority.View()),
		"",
		"Start date:",
		fieldStyles[3].Width(14).Render(v.taskStart.View()),
		"",
		"Due date:",
		fieldStyles[4].Width(14).Render(v.taskDue.View()),
		"",
		btnStyle.Render(" Save "),
		errLine,
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectView) renderSectionForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Section"),
		"",
		"Name:",
		s.InputFocused.Width(inputWidth).Render(v.sectionName.View()),
		"",
		s.TitleMuted.Render("↵: create • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
