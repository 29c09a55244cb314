package testserver

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskdeck/internal/models"
)

type store struct {
	db *sql.DB
}

// --- projects ---

func (s *store) listProjects(c *gin.Context) {
	rows, err := s.db.Query(
		`SELECT id, name, description, color, icon, default_view, created_at, updated_at
		 FROM projects ORDER BY created_at`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		projects = append(projects, p)
	}
	c.JSON(http.StatusOK, projects)
}

func (s *store) getProject(c *gin.Context) {
	row := s.db.QueryRow(
		`SELECT id, name, description, color, icon, default_view, created_at, updated_at
		 FROM projects WHERE id = ?`, c.Param("id"))
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *store) createProject(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
		Icon        string `json:"icon"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	now := time.Now().UTC()
	p := models.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		DefaultView: models.ViewList,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, description, color, icon, default_view, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Color, p.Icon, string(p.DefaultView),
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *store) updateProject(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	allowed := map[string]bool{
		"name": true, "description": true, "color": true, "icon": true, "default_view": true,
	}
	sets, args := []string{}, []any{}
	for k, v := range patch {
		if !allowed[k] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown field " + k})
			return
		}
		sets = append(sets, k+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty patch"})
		return
	}

	if !s.execUpdate(c, "projects", c.Param("id"), sets, args, true) {
		return
	}
	s.getProject(c)
}

func (s *store) deleteProject(c *gin.Context) {
	id := c.Param("id")
	if !s.exists(c, "projects", id) {
		return
	}
	_, _ = s.db.Exec(`DELETE FROM tasks WHERE project_id = ?`, id)
	_, _ = s.db.Exec(`DELETE FROM sections WHERE project_id = ?`, id)
	_, _ = s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	c.Status(http.StatusNoContent)
}

// --- sections ---

func (s *store) listSections(c *gin.Context) {
	rows, err := s.db.Query(
		`SELECT id, project_id, name, position, created_at
		 FROM sections WHERE project_id = ? ORDER BY position`, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	sections := []models.Section{}
	for rows.Next() {
		var sec models.Section
		var created string
		if err := rows.Scan(&sec.ID, &sec.ProjectID, &sec.Name, &sec.Position, &created); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		sec.CreatedAt, _ = time.Parse(time.RFC3339, created)
		sections = append(sections, sec)
	}
	c.JSON(http.StatusOK, sections)
}

func (s *store) createSection(c *gin.Context) {
	projectID := c.Param("id")
	if !s.exists(c, "projects", projectID) {
		return
	}

	var req struct {
		Name     string `json:"name"`
		Position *int   `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		row := s.db.QueryRow(`SELECT COALESCE(MAX(position), -1) + 1 FROM sections WHERE project_id = ?`, projectID)
		if err := row.Scan(&position); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	now := time.Now().UTC()
	sec := models.Section{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      req.Name,
		Position:  position,
		CreatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO sections (id, project_id, name, position, created_at) VALUES (?, ?, ?, ?, ?)`,
		sec.ID, sec.ProjectID, sec.Name, sec.Position, now.Format(time.RFC3339))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sec)
}

// deleteSection reassigns member tasks to the unsectioned group before
// removing the section itself.
func (s *store) deleteSection(c *gin.Context) {
	id := c.Param("id")
	if !s.exists(c, "sections", id) {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, _ = s.db.Exec(`UPDATE tasks SET section_id = '', updated_at = ? WHERE section_id = ?`, now, id)
	_, _ = s.db.Exec(`DELETE FROM sections WHERE id = ?`, id)
	c.Status(http.StatusNoContent)
}

// --- tasks ---

const taskColumns = `id, project_id, section_id, title, description, priority, status,
	completed_at, start_date, due_date, position, estimated_hours, assigned_user_name,
	created_at, updated_at`

func (s *store) listTasks(c *gin.Context) {
	rows, err := s.db.Query(
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY section_id, position`,
		c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		tasks = append(tasks, task)
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *store) createTask(c *gin.Context) {
	var req struct {
		ProjectID      string   `json:"project_id"`
		SectionID      string   `json:"section_id"`
		Title          string   `json:"title"`
		Description    string   `json:"description"`
		Priority       string   `json:"priority"`
		StartDate      *string  `json:"start_date"`
		DueDate        *string  `json:"due_date"`
		EstimatedHours *float64 `json:"estimated_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Title == "" || req.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and project_id are required"})
		return
	}
	if !s.exists(c, "projects", req.ProjectID) {
		return
	}
	if req.Priority == "" {
		req.Priority = string(models.PriorityMedium)
	}

	var position int
	row := s.db.QueryRow(
		`SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE project_id = ? AND section_id = ?`,
		req.ProjectID, req.SectionID)
	if err := row.Scan(&position); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, project_id, section_id, title, description, priority, start_date,
			due_date, position, estimated_hours, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, req.ProjectID, req.SectionID, req.Title, req.Description, req.Priority,
		req.StartDate, req.DueDate, position, req.EstimatedHours,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.respondTask(c, id, http.StatusCreated)
}

func (s *store) updateTask(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	allowed := map[string]bool{
		"title": true, "description": true, "priority": true, "status": true,
		"completed_at": true, "start_date": true, "due_date": true,
		"estimated_hours": true, "assigned_user_name": true,
	}
	sets, args := []string{}, []any{}
	for k, v := range patch {
		if !allowed[k] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown field " + k})
			return
		}
		sets = append(sets, k+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty patch"})
		return
	}

	if !s.execUpdate(c, "tasks", c.Param("id"), sets, args, true) {
		return
	}
	s.respondTask(c, c.Param("id"), http.StatusOK)
}

func (s *store) deleteTask(c *gin.Context) {
	id := c.Param("id")
	if !s.exists(c, "tasks", id) {
		return
	}
	_, _ = s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	c.Status(http.StatusNoContent)
}

// moveTask reassigns a task to a section. Without an explicit position
// the task lands after everything already in the destination.
func (s *store) moveTask(c *gin.Context) {
	id := c.Param("id")

	var projectID string
	err := s.db.QueryRow(`SELECT project_id FROM tasks WHERE id = ?`, id).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		SectionID string `json:"section_id"`
		Position  *int   `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.SectionID != "" {
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM sections WHERE id = ?`, req.SectionID).Scan(&n); err != nil || n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "section not found"})
			return
		}
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		row := s.db.QueryRow(
			`SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE project_id = ? AND section_id = ? AND id != ?`,
			projectID, req.SectionID, id)
		if err := row.Scan(&position); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`UPDATE tasks SET section_id = ?, position = ?, updated_at = ? WHERE id = ?`,
		req.SectionID, position, now, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.respondTask(c, id, http.StatusOK)
}

// --- helpers ---

func (s *store) exists(c *gin.Context, table, id string) bool {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id).Scan(&n); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return false
	}
	return true
}

func (s *store) execUpdate(c *gin.Context, table, id string, sets []string, args []any, touch bool) bool {
	if !s.exists(c, table, id) {
		return false
	}
	if touch {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now().UTC().Format(time.RFC3339))
	}
	args = append(args, id)

	query := "UPDATE " + table + " SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += " WHERE id = ?"

	if _, err := s.db.Exec(query, args...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (s *store) respondTask(c *gin.Context, id string, status int) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(status, task)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (models.Project, error) {
	var p models.Project
	var view, created, updated string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.Icon, &view, &created, &updated)
	if err != nil {
		return p, err
	}
	p.DefaultView = models.View(view)
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return p, nil
}

func scanTask(row scanner) (models.Task, error) {
	var t models.Task
	var priority, created, updated string
	var completed, start, due sql.NullString
	var hours sql.NullFloat64
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.SectionID, &t.Title, &t.Description, &priority, &t.Status,
		&completed, &start, &due, &t.Position, &hours, &t.AssignedUserName,
		&created, &updated)
	if err != nil {
		return t, err
	}

	t.Priority = models.Priority(priority)
	if completed.Valid {
		ts, err := time.Parse(time.RFC3339, completed.String)
		if err != nil {
			return t, err
		}
		t.CompletedAt = &ts
	}
	if start.Valid {
		d, err := models.ParseDate(start.String)
		if err != nil {
			return t, err
		}
		t.StartDate = &d
	}
	if due.Valid {
		d, err := models.ParseDate(due.String)
		if err != nil {
			return t, err
		}
		t.DueDate = &d
	}
	if hours.Valid {
		t.EstimatedHours = &hours.Float64
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, created)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return t, nil
}
