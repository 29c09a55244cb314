// Package testserver runs an in-process stand-in for the task API so
// tests can exercise the client and dispatcher against real HTTP and
// real persistence instead of canned responses.
package testserver

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/models"
)

// TestServer is a live HTTP server backed by an in-memory sqlite
// database, torn down with the test.
type TestServer struct {
	Server *httptest.Server
	DB     *sql.DB
	Token  string
}

const schema = `
CREATE TABLE projects (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	color        TEXT NOT NULL DEFAULT '',
	icon         TEXT NOT NULL DEFAULT '',
	default_view TEXT NOT NULL DEFAULT 'list',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE sections (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id),
	name       TEXT NOT NULL,
	position   INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE tasks (
	id                 TEXT PRIMARY KEY,
	project_id         TEXT NOT NULL REFERENCES projects(id),
	section_id         TEXT NOT NULL DEFAULT '',
	title              TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	priority           TEXT NOT NULL DEFAULT 'medium',
	status             TEXT NOT NULL DEFAULT '',
	completed_at       TEXT,
	start_date         TEXT,
	due_date           TEXT,
	position           INTEGER NOT NULL,
	estimated_hours    REAL,
	assigned_user_name TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL
);

CREATE INDEX idx_tasks_project ON tasks(project_id, section_id, position);
`

// New starts the fake API. Requests must carry the given bearer token.
func New(t *testing.T, token string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	s := &store{db: db}

	r := gin.New()
	r.Use(authMiddleware(token))

	r.GET("/projects", s.listProjects)
	r.GET("/projects/:id", s.getProject)
	r.POST("/workspaces/:id/projects", s.createProject)
	r.PUT("/projects/:id", s.updateProject)
	r.DELETE("/projects/:id", s.deleteProject)

	r.GET("/projects/:id/sections", s.listSections)
	r.POST("/projects/:id/sections", s.createSection)
	r.DELETE("/sections/:id", s.deleteSection)

	r.GET("/projects/:id/tasks", s.listTasks)
	r.POST("/workspaces/:id/tasks", s.createTask)
	r.PUT("/tasks/:id", s.updateTask)
	r.DELETE("/tasks/:id", s.deleteTask)
	r.POST("/tasks/:id/move", s.moveTask)

	server := httptest.NewServer(r)
	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{Server: server, DB: db, Token: token}
}

// URL is the server's base URL.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

func authMiddleware(token string) gin.HandlerFunc {
	want := "Bearer " + token
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != want {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

// SeedProject inserts a project directly, bypassing HTTP.
func (ts *TestServer) SeedProject(t *testing.T, name string) models.Project {
	t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:          uuid.NewString(),
		Name:        name,
		DefaultView: models.ViewList,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := ts.DB.Exec(
		`INSERT INTO projects (id, name, default_view, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.DefaultView), now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	require.NoError(t, err)
	return p
}

// SeedSection inserts a section directly.
func (ts *TestServer) SeedSection(t *testing.T, projectID, name string, position int) models.Section {
	t.Helper()

	now := time.Now().UTC()
	s := models.Section{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		Position:  position,
		CreatedAt: now,
	}
	_, err := ts.DB.Exec(
		`INSERT INTO sections (id, project_id, name, position, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.ProjectID, s.Name, s.Position, now.Format(time.RFC3339),
	)
	require.NoError(t, err)
	return s
}

// SeedTask inserts a task directly.
func (ts *TestServer) SeedTask(t *testing.T, projectID, sectionID, title string, position int) models.Task {
	t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		SectionID: sectionID,
		Title:     title,
		Priority:  models.PriorityMedium,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := ts.DB.Exec(
		`INSERT INTO tasks (id, project_id, section_id, title, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.ProjectID, task.SectionID, task.Title, task.Position,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	require.NoError(t, err)
	return task
}
