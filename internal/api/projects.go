package api

import (
	"context"
	"net/http"

	"taskdeck/internal/models"
)

// CreateProjectRequest carries the fields for a new project.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// ProjectPatch is a partial update body for PUT /projects/{id}.
type ProjectPatch map[string]any

// ListProjects fetches all projects visible to the caller.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches a single project.
func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a project in the workspace.
func (c *Client) CreateProject(ctx context.Context, workspaceID string, req CreateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPost, "/workspaces/"+workspaceID+"/projects", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject applies a partial update, used for persisting the
// default view choice.
func (c *Client) UpdateProject(ctx context.Context, projectID string, patch ProjectPatch) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+projectID, patch, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project and everything in it.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+projectID, nil, nil)
}
