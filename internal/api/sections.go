package api

import (
	"context"
	"net/http"

	"taskdeck/internal/models"
)

type createSectionRequest struct {
	Name     string `json:"name"`
	Position *int   `json:"position,omitempty"`
}

// ListSections fetches a project's sections.
func (c *Client) ListSections(ctx context.Context, projectID string) ([]models.Section, error) {
	var sections []models.Section
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/sections", nil, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// CreateSection adds a section to a project. With a nil position the
// server appends it after the existing sections.
func (c *Client) CreateSection(ctx context.Context, projectID, name string, position *int) (*models.Section, error) {
	var section models.Section
	body := createSectionRequest{Name: name, Position: position}
	if err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/sections", body, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

// DeleteSection removes a section. The server reassigns its tasks to
// unsectioned rather than deleting them.
func (c *Client) DeleteSection(ctx context.Context, sectionID string) error {
	return c.do(ctx, http.MethodDelete, "/sections/"+sectionID, nil, nil)
}
