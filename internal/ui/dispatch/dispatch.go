// Package dispatch is the single mutation surface shared by every task
// projection. Each operation performs one remote call and, on success,
// a full reload of the project's tasks and sections; the views never
// merge locally. On failure the prior state stays untouched and the
// error surfaces as a notification message.
package dispatch

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/api"
	"taskdeck/internal/models"
)

// TasksLoadedMsg carries a freshly loaded task collection. Gen orders
// reloads: a message older than the newest one delivered must be
// dropped by the receiver so a slow response cannot overwrite newer
// state.
type TasksLoadedMsg struct {
	Gen      uint64
	Tasks    []models.Task
	Sections []models.Section
}

// ErrMsg reports a failed remote call. Op names the operation for the
// notification line.
type ErrMsg struct {
	Op  string
	Err error
}

// Dispatcher is the mutation contract every projection calls
// identically: create/update/delete/move for tasks, create/delete for
// sections, plus the reload they all funnel into.
type Dispatcher interface {
	Reload() tea.Cmd
	CreateTask(req api.CreateTaskRequest) tea.Cmd
	UpdateTask(taskID string, patch api.TaskPatch) tea.Cmd
	DeleteTask(taskID string) tea.Cmd
	MoveTask(taskID, sectionID string) tea.Cmd
	CreateSection(name string) tea.Cmd
	DeleteSection(sectionID string) tea.Cmd
}

// Service implements Dispatcher over the API client for one project.
type Service struct {
	client      *api.Client
	logger      *slog.Logger
	workspaceID string
	projectID   string
	gen         atomic.Uint64
}

// NewService creates a dispatcher for a project.
func NewService(client *api.Client, logger *slog.Logger, workspaceID, projectID string) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		client:      client,
		logger:      logger,
		workspaceID: workspaceID,
		projectID:   projectID,
	}
}

// Reload fetches the project's sections and tasks and stamps the
// result with the next generation.
func (s *Service) Reload() tea.Cmd {
	gen := s.gen.Add(1)
	return func() tea.Msg {
		return s.load(gen)
	}
}

func (s *Service) load(gen uint64) tea.Msg {
	ctx := context.Background()

	sections, err := s.client.ListSections(ctx, s.projectID)
	if err != nil {
		s.logger.Error("load sections", "project", s.projectID, "error", err)
		return ErrMsg{Op: "load sections", Err: err}
	}
	tasks, err := s.client.ListTasks(ctx, s.projectID)
	if err != nil {
		s.logger.Error("load tasks", "project", s.projectID, "error", err)
		return ErrMsg{Op: "load tasks", Err: err}
	}

	return TasksLoadedMsg{Gen: gen, Tasks: tasks, Sections: sections}
}

// mutate runs one remote call and reloads on success.
func (s *Service) mutate(op string, call func(ctx context.Context) error) tea.Cmd {
	gen := s.gen.Add(1)
	return func() tea.Msg {
		ctx := context.Background()
		if err := call(ctx); err != nil {
			s.logger.Error(op, "project", s.projectID, "error", err)
			return ErrMsg{Op: op, Err: err}
		}
		return s.load(gen)
	}
}

func (s *Service) CreateTask(req api.CreateTaskRequest) tea.Cmd {
	req.ProjectID = s.projectID
	return s.mutate("create task", func(ctx context.Context) error {
		_, err := s.client.CreateTask(ctx, s.workspaceID, req)
		return err
	})
}

func (s *Service) UpdateTask(taskID string, patch api.TaskPatch) tea.Cmd {
	return s.mutate("update task", func(ctx context.Context) error {
		_, err := s.client.UpdateTask(ctx, taskID, patch)
		return err
	})
}

func (s *Service) DeleteTask(taskID string) tea.Cmd {
	return s.mutate("delete task", func(ctx context.Context) error {
		return s.client.DeleteTask(ctx, taskID)
	})
}

// MoveTask reassigns a task to a section; the server appends it at the
// destination's end.
func (s *Service) MoveTask(taskID, sectionID string) tea.Cmd {
	return s.mutate("move task", func(ctx context.Context) error {
		_, err := s.client.MoveTask(ctx, taskID, sectionID, nil)
		return err
	})
}

func (s *Service) CreateSection(name string) tea.Cmd {
	return s.mutate("create section", func(ctx context.Context) error {
		_, err := s.client.CreateSection(ctx, s.projectID, name, nil)
		return err
	})
}

func (s *Service) DeleteSection(sectionID string) tea.Cmd {
	return s.mutate("delete section", func(ctx context.Context) error {
		return s.client.DeleteSection(ctx, sectionID)
	})
}
