package models

import "time"

// UnsectionedID is the sentinel section reference for tasks that belong
// to no section. The server uses an empty section_id for the same thing.
const UnsectionedID = ""

// Priority is a task priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities for display, low first. Unknown values sort
// with medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	default:
		return 1
	}
}

// View names a task projection
type View string

const (
	ViewList     View = "list"
	ViewBoard    View = "board"
	ViewTimeline View = "timeline"
)

// Normalize maps unknown or unsupported view names (the server also
// stores "calendar") to the list view.
func (v View) Normalize() View {
	switch v {
	case ViewBoard, ViewTimeline:
		return v
	}
	return ViewList
}

// Project represents a task management project
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	DefaultView View      `json:"default_view,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Section is an ordered, named grouping of tasks within a project
type Section struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Task represents a single task
type Task struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"project_id"`
	SectionID        string     `json:"section_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Priority         Priority   `json:"priority,omitempty"`
	Status           string     `json:"status,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	StartDate        *Date      `json:"start_date,omitempty"`
	DueDate          *Date      `json:"due_date,omitempty"`
	Position         int        `json:"position"`
	EstimatedHours   *float64   `json:"estimated_hours,omitempty"`
	AssignedUserName string     `json:"assigned_user_name,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Completed reports whether the task carries a completion timestamp.
func (t Task) Completed() bool {
	return t.CompletedAt != nil
}

// Dated reports whether the task has at least one of start/due date and
// therefore appears on the timeline.
func (t Task) Dated() bool {
	return t.StartDate != nil || t.DueDate != nil
}
