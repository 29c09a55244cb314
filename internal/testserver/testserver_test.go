package testserver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskdeck/internal/api"
	"taskdeck/internal/models"
	"taskdeck/internal/projection"
	"taskdeck/internal/testserver"
)

const token = "test-token"

func setup(t *testing.T) (*testserver.TestServer, *api.Client) {
	t.Helper()
	ts := testserver.New(t, token)
	return ts, api.New(ts.URL(), token)
}

func regroup(t *testing.T, client *api.Client, projectID string) []projection.SectionGroup {
	t.Helper()
	sections, err := client.ListSections(context.Background(), projectID)
	require.NoError(t, err)
	tasks, err := client.ListTasks(context.Background(), projectID)
	require.NoError(t, err)
	return projection.BySection(tasks, sections)
}

func titles(g *projection.SectionGroup) []string {
	var out []string
	for _, task := range g.Tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestMoveThenReloadRegroups(t *testing.T) {
	ts, client := setup(t)
	p := ts.SeedProject(t, "launch")
	a := ts.SeedSection(t, p.ID, "Todo", 0)
	b := ts.SeedSection(t, p.ID, "Doing", 1)
	t1 := ts.SeedTask(t, p.ID, a.ID, "write docs", 0)
	ts.SeedTask(t, p.ID, a.ID, "review", 1)
	ts.SeedTask(t, p.ID, b.ID, "deploy", 0)

	moved, err := client.MoveTask(context.Background(), t1.ID, b.ID, nil)
	require.NoError(t, err)
	require.Equal(t, b.ID, moved.SectionID)

	groups := regroup(t, client, p.ID)
	require.Equal(t, []string{"review"}, titles(projection.Find(groups, a.ID)))
	// Appended after the destination's existing tasks.
	require.Equal(t, []string{"deploy", "write docs"}, titles(projection.Find(groups, b.ID)))
	require.Equal(t, 3, projection.TaskCount(groups))
}

func TestDeleteSectionReassignsTasks(t *testing.T) {
	ts, client := setup(t)
	p := ts.SeedProject(t, "launch")
	a := ts.SeedSection(t, p.ID, "Todo", 0)
	b := ts.SeedSection(t, p.ID, "Doing", 1)
	ts.SeedTask(t, p.ID, a.ID, "one", 0)
	ts.SeedTask(t, p.ID, a.ID, "two", 1)
	ts.SeedTask(t, p.ID, b.ID, "three", 0)

	require.NoError(t, client.DeleteSection(context.Background(), a.ID))

	groups := regroup(t, client, p.ID)
	require.Nil(t, projection.Find(groups, a.ID))
	require.Equal(t, 3, projection.TaskCount(groups))

	unsectioned := projection.Find(groups, models.UnsectionedID)
	require.NotNil(t, unsectioned)
	require.ElementsMatch(t, []string{"one", "two"}, titles(unsectioned))
}

func TestCompletionToggleRoundTrips(t *testing.T) {
	ts, client := setup(t)
	p := ts.SeedProject(t, "launch")
	task := ts.SeedTask(t, p.ID, models.UnsectionedID, "ship it", 0)
	require.False(t, task.Completed())

	stamp := time.Now().UTC().Format(time.RFC3339)
	done, err := client.UpdateTask(context.Background(), task.ID, api.TaskPatch{"completed_at": stamp})
	require.NoError(t, err)
	require.True(t, done.Completed())

	reopened, err := client.UpdateTask(context.Background(), task.ID, api.TaskPatch{"completed_at": nil})
	require.NoError(t, err)
	require.False(t, reopened.Completed())

	again, err := client.UpdateTask(context.Background(), task.ID, api.TaskPatch{"completed_at": stamp})
	require.NoError(t, err)
	require.True(t, again.Completed())
}

func TestCreateTaskAppendsWithinSection(t *testing.T) {
	ts, client := setup(t)
	p := ts.SeedProject(t, "launch")
	a := ts.SeedSection(t, p.ID, "Todo", 0)
	ts.SeedTask(t, p.ID, a.ID, "existing", 4)

	created, err := client.CreateTask(context.Background(), "w1", api.CreateTaskRequest{
		ProjectID: p.ID,
		SectionID: a.ID,
		Title:     "new one",
		Priority:  models.PriorityHigh,
	})
	require.NoError(t, err)
	require.Equal(t, 5, created.Position)
	require.Equal(t, models.PriorityHigh, created.Priority)

	groups := regroup(t, client, p.ID)
	require.Equal(t, []string{"existing", "new one"}, titles(projection.Find(groups, a.ID)))
}

func TestTaskDatesSurviveTheWire(t *testing.T) {
	ts, client := setup(t)
	p := ts.SeedProject(t, "launch")

	start := models.NewDate(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	due := start.AddDays(4)
	created, err := client.CreateTask(context.Background(), "w1", api.CreateTaskRequest{
		ProjectID: p.ID,
		Title:     "window work",
		StartDate: &start,
		DueDate:   &due,
	})
	require.NoError(t, err)
	require.NotNil(t, created.StartDate)
	require.Equal(t, "2026-03-02", created.StartDate.String())
	require.NotNil(t, created.DueDate)
	require.Equal(t, "2026-03-06", created.DueDate.String())
}

func TestDefaultViewPersists(t *testing.T) {
	ts, client := setup(t)
	p := ts.SeedProject(t, "launch")

	updated, err := client.UpdateProject(context.Background(), p.ID, api.ProjectPatch{"default_view": "board"})
	require.NoError(t, err)
	require.Equal(t, models.ViewBoard, updated.DefaultView)

	fetched, err := client.GetProject(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, models.ViewBoard, fetched.DefaultView)
}

func TestSectionCreateAppends(t *testing.T) {
	ts, client := setup(t)
	p := ts.SeedProject(t, "launch")
	ts.SeedSection(t, p.ID, "Todo", 3)

	sec, err := client.CreateSection(context.Background(), p.ID, "Later", nil)
	require.NoError(t, err)
	require.Equal(t, 4, sec.Position)
}

func TestRejectsBadToken(t *testing.T) {
	ts, _ := setup(t)
	bad := api.New(ts.URL(), "wrong")

	_, err := bad.ListProjects(context.Background())
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 401, apiErr.Status)
}

func TestDeleteProjectRemovesEverything(t *testing.T) {
	ts, client := setup(t)
	p := ts.SeedProject(t, "launch")
	a := ts.SeedSection(t, p.ID, "Todo", 0)
	ts.SeedTask(t, p.ID, a.ID, "gone", 0)

	require.NoError(t, client.DeleteProject(context.Background(), p.ID))

	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	require.Empty(t, projects)

	_, err = client.GetProject(context.Background(), p.ID)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 404, apiErr.Status)
}
