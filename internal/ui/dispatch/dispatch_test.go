package dispatch_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"taskdeck/internal/api"
	"taskdeck/internal/models"
	"taskdeck/internal/ui/dispatch"
)

// backend is a minimal fake that serves fixed collections and records
// mutation calls.
type backend struct {
	mu       sync.Mutex
	calls    []string
	failNext bool
}

func (b *backend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		fail := b.failNext
		if r.Method != http.MethodGet {
			b.calls = append(b.calls, r.Method+" "+r.URL.Path)
			b.failNext = false
		}
		b.mu.Unlock()

		if fail && r.Method != http.MethodGet {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/projects/p1/sections":
			_ = json.NewEncoder(w).Encode([]models.Section{{ID: "s1", ProjectID: "p1", Name: "Todo"}})
		case r.Method == http.MethodGet && r.URL.Path == "/projects/p1/tasks":
			_ = json.NewEncoder(w).Encode([]models.Task{{ID: "t1", ProjectID: "p1", SectionID: "s1", Title: "one"}})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_ = json.NewEncoder(w).Encode(models.Task{ID: "t1"})
		}
	})
}

func (b *backend) mutations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}

func newService(t *testing.T) (*dispatch.Service, *backend) {
	t.Helper()
	b := &backend{}
	server := httptest.NewServer(b.handler())
	t.Cleanup(server.Close)
	return dispatch.NewService(api.New(server.URL, ""), nil, "w1", "p1"), b
}

func TestReload_LoadsTasksAndSections(t *testing.T) {
	svc, _ := newService(t)

	msg := svc.Reload()()
	loaded, ok := msg.(dispatch.TasksLoadedMsg)
	require.True(t, ok, "got %T", msg)
	require.Len(t, loaded.Tasks, 1)
	require.Len(t, loaded.Sections, 1)
}

func TestReload_GenerationsAreMonotonic(t *testing.T) {
	svc, _ := newService(t)

	first := svc.Reload()().(dispatch.TasksLoadedMsg)
	second := svc.Reload()().(dispatch.TasksLoadedMsg)
	require.Greater(t, second.Gen, first.Gen)
}

func TestMutation_ReloadsAfterSuccess(t *testing.T) {
	svc, b := newService(t)

	msg := svc.UpdateTask("t1", api.TaskPatch{"title": "renamed"})()
	loaded, ok := msg.(dispatch.TasksLoadedMsg)
	require.True(t, ok, "got %T", msg)
	require.Len(t, loaded.Tasks, 1)
	require.Equal(t, []string{"PUT /tasks/t1"}, b.mutations())
}

func TestMutation_FailureEmitsErrMsgWithoutReload(t *testing.T) {
	svc, b := newService(t)
	b.failNext = true

	msg := svc.DeleteTask("t1")()
	errMsg, ok := msg.(dispatch.ErrMsg)
	require.True(t, ok, "got %T", msg)
	require.Equal(t, "delete task", errMsg.Op)
	require.Error(t, errMsg.Err)
}

func TestMoveTask_CallsMoveEndpoint(t *testing.T) {
	svc, b := newService(t)

	msg := svc.MoveTask("t1", "s2")()
	_, ok := msg.(dispatch.TasksLoadedMsg)
	require.True(t, ok, "got %T", msg)
	require.Equal(t, []string{"POST /tasks/t1/move"}, b.mutations())
}

func TestDeleteSection_CallsSectionEndpoint(t *testing.T) {
	svc, b := newService(t)

	msg := svc.DeleteSection("s1")()
	_, ok := msg.(dispatch.TasksLoadedMsg)
	require.True(t, ok, "got %T", msg)
	require.Equal(t, []string{"DELETE /sections/s1"}, b.mutations())
}

func TestMutationReloadIsStaleAgainstLaterReload(t *testing.T) {
	svc, _ := newService(t)

	// A mutation issued before a plain reload carries the older
	// generation even though it resolves later.
	mutation := svc.UpdateTask("t1", api.TaskPatch{"title": "x"})
	reload := svc.Reload()

	reloaded := reload().(dispatch.TasksLoadedMsg)
	mutated := mutation().(dispatch.TasksLoadedMsg)
	require.Greater(t, reloaded.Gen, mutated.Gen)
}
