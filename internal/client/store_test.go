package client

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskflow/internal/config"
	"taskflow/internal/models"
	"taskflow/internal/server"
	"taskflow/internal/storage/sqlite"
)

// newTestBackend spins up a real API server and a client wired to it.
func newTestBackend(t *testing.T) (*Client, *StateStore) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := server.New(store, slog.Default(), &config.Config{
		JWTSecret:     "test-secret",
		TokenValidity: time.Hour,
	})

	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)

	session := NewSession(filepath.Join(t.TempDir(), "session.json"))
	c := New(ts.URL+"/api", session)
	return c, NewStateStore(c)
}

func seedProject(t *testing.T, st *StateStore) models.Project {
	t.Helper()

	project, err := st.CreateProject(context.Background(), models.ProjectCreate{
		Name:        "Client board",
		Description: "seeded from the client",
		DueDate:     time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return project
}

func TestStateStore_RegisterAndLogout(t *testing.T) {
	c, st := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, st.Register(ctx, "Alice", "alice@example.com", "secret123"))
	require.True(t, st.Auth().Authenticated)
	require.Equal(t, "Alice", st.Auth().User.Name)
	require.True(t, c.session.Authenticated())

	require.NoError(t, st.Logout())
	require.False(t, st.Auth().Authenticated)
	require.False(t, c.session.Authenticated())
}

func TestStateStore_LoginFailurePopulatesError(t *testing.T) {
	_, st := newTestBackend(t)
	ctx := context.Background()

	err := st.Login(ctx, "nobody@example.com", "wrong")
	require.Error(t, err)
	require.Equal(t, "Invalid credentials", st.Auth().Err)
	require.False(t, st.Auth().Authenticated)
}

func TestStateStore_RefreshIdentity_ClearsOnFailure(t *testing.T) {
	c, st := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, c.session.Set(models.User{ID: "stale"}, "garbage-token"))

	err := st.RefreshIdentity(ctx)
	require.Error(t, err)
	require.False(t, st.Auth().Authenticated)
	require.False(t, c.session.Authenticated())
}

func TestStateStore_ProjectsSlice(t *testing.T) {
	_, st := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, st.Register(ctx, "Alice", "alice@example.com", "secret123"))

	project := seedProject(t, st)
	require.Len(t, st.Projects().Items, 1)

	require.NoError(t, st.FetchProjects(ctx, models.ProjectFilter{}))
	require.Len(t, st.Projects().Items, 1)
	require.Equal(t, project.ID, st.Projects().Items[0].ID)

	require.NoError(t, st.DeleteProject(ctx, project.ID))
	require.Empty(t, st.Projects().Items)
}

func TestStateStore_TasksSlice(t *testing.T) {
	_, st := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, st.Register(ctx, "Alice", "alice@example.com", "secret123"))
	project := seedProject(t, st)

	task, err := st.CreateTask(ctx, project.ID, models.TaskCreate{Title: "from client"})
	require.NoError(t, err)
	require.Len(t, st.Tasks().Items, 1)

	done := "done"
	updated, err := st.UpdateTask(ctx, task.ID, models.TaskPatch{Status: &done})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	require.Equal(t, "done", st.Tasks().Items[0].Status)

	require.NoError(t, st.DeleteTask(ctx, task.ID))
	require.Empty(t, st.Tasks().Items)
}

func TestStateStore_ReorderReconciles(t *testing.T) {
	_, st := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, st.Register(ctx, "Alice", "alice@example.com", "secret123"))
	project := seedProject(t, st)

	first, err := st.CreateTask(ctx, project.ID, models.TaskCreate{Title: "one"})
	require.NoError(t, err)
	second, err := st.CreateTask(ctx, project.ID, models.TaskCreate{Title: "two"})
	require.NoError(t, err)

	err = st.ReorderTasks(ctx, project.ID, []models.TaskReorder{
		{ID: first.ID, Status: "done", Order: 1},
		{ID: second.ID, Status: "todo", Order: 0},
	})
	require.NoError(t, err)

	items := st.Tasks().Items
	require.Len(t, items, 2)
	require.Equal(t, second.ID, items[0].ID)
	require.Equal(t, first.ID, items[1].ID)
	require.NotNil(t, items[1].CompletedAt)
}

func TestStateStore_ReorderRollsBackOnFailure(t *testing.T) {
	_, st := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, st.Register(ctx, "Alice", "alice@example.com", "secret123"))
	project := seedProject(t, st)

	first, err := st.CreateTask(ctx, project.ID, models.TaskCreate{Title: "one"})
	require.NoError(t, err)
	second, err := st.CreateTask(ctx, project.ID, models.TaskCreate{Title: "two"})
	require.NoError(t, err)

	// an invalid status makes the server reject the whole batch
	err = st.ReorderTasks(ctx, project.ID, []models.TaskReorder{
		{ID: first.ID, Status: "bogus", Order: 1},
		{ID: second.ID, Status: "todo", Order: 0},
	})
	require.Error(t, err)

	// the speculative local order was restored
	items := st.Tasks().Items
	require.Len(t, items, 2)
	require.Equal(t, first.ID, items[0].ID)
	require.Equal(t, "todo", items[0].Status)
	require.Equal(t, second.ID, items[1].ID)
	require.NotEmpty(t, st.Tasks().Err)
}
