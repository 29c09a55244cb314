package api

import (
	"context"
	"net/http"

	"taskdeck/internal/models"
)

// CreateTaskRequest carries the fields for a new task. Tasks are
// created through the workspace, scoped to a project and section.
type CreateTaskRequest struct {
	ProjectID      string           `json:"project_id"`
	SectionID      string           `json:"section_id,omitempty"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	Priority       models.Priority  `json:"priority,omitempty"`
	StartDate      *models.Date     `json:"start_date,omitempty"`
	DueDate        *models.Date     `json:"due_date,omitempty"`
	EstimatedHours *float64         `json:"estimated_hours,omitempty"`
}

// TaskPatch is a partial update body for PUT /tasks/{id}. Absent keys
// are left untouched by the server; an explicit nil clears a nullable
// field such as completed_at.
type TaskPatch map[string]any

// ListTasks fetches every task of a project.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task in the workspace.
func (c *Client) CreateTask(ctx context.Context, workspaceID string, req CreateTaskRequest) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/workspaces/"+workspaceID+"/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+taskID, patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+taskID, nil, nil)
}

type moveTaskRequest struct {
	SectionID string `json:"section_id"`
	Position  *int   `json:"position,omitempty"`
}

// MoveTask reassigns a task to a section. With a nil position the
// server appends the task at the end of the destination.
func (c *Client) MoveTask(ctx context.Context, taskID, sectionID string, position *int) (*models.Task, error) {
	var task models.Task
	body := moveTaskRequest{SectionID: sectionID, Position: position}
	if err := c.do(ctx, http.MethodPost, "/tasks/"+taskID+"/move", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
