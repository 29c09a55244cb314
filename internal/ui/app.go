package ui

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/api"
	"taskdeck/internal/models"
	"taskdeck/internal/ui/dispatch"
	"taskdeck/internal/ui/styles"
	"taskdeck/internal/ui/views"
)

// notificationTTL is how long a failed-operation notice stays visible.
const notificationTTL = 4 * time.Second

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewProject
)

type notificationExpiredMsg struct {
	seq int
}

type App struct {
	client      *api.Client
	workspaceID string
	logger      *slog.Logger

	currentView View
	projectList *views.ProjectListView
	projectView *views.ProjectView
	styles      *styles.Styles
	width       int
	height      int

	// Transient error line shown under whichever view is active.
	notification    string
	notificationSeq int
}

// NewApp creates a new application
func NewApp(client *api.Client, workspaceID string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &App{
		client:      client,
		workspaceID: workspaceID,
		logger:      logger,
		currentView: ViewProjects,
		projectList: views.NewProjectListView(client, workspaceID),
		styles:      styles.NewStyles(),
	}
}

func (a *App) Init() tea.Cmd {
	return a.projectList.Init()
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.currentView = ViewProject
	svc := dispatch.NewService(a.client, a.logger, a.workspaceID, project.ID)
	a.projectView = views.NewProjectView(a.client, svc, project)

	return tea.Batch(
		a.projectView.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update project list size since it persists
		a.projectList.Update(msg)

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.currentView = ViewProjects
		a.projectView = nil
		return a, tea.Batch(
			a.projectList.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)

	case dispatch.ErrMsg:
		a.logger.Warn("operation failed", "op", msg.Op, "error", msg.Err)
		a.notification = fmt.Sprintf("%s failed: %v", msg.Op, msg.Err)
		a.notificationSeq++
		seq := a.notificationSeq
		return a, tea.Tick(notificationTTL, func(time.Time) tea.Msg {
			return notificationExpiredMsg{seq: seq}
		})

	case notificationExpiredMsg:
		if msg.seq == a.notificationSeq {
			a.notification = ""
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewProject:
		if a.projectView != nil {
			_, cmd = a.projectView.Update(msg)
		}
	}

	return a, cmd
}

func (a *App) View() string {
	var content string
	switch a.currentView {
	case ViewProject:
		if a.projectView != nil {
			content = a.projectView.View()
		}
	default:
		content = a.projectList.View()
	}

	if a.notification != "" {
		content = lipgloss.JoinVertical(lipgloss.Left,
			content,
			a.styles.Notification.Render(a.notification),
		)
	}
	return content
}
