package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"taskflow/internal/errs"
	"taskflow/internal/models"
)

func TestCreateTask_OrderPerBucket(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	p := createTestProject(t, s, alice.ID, "Board")

	first, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "first"})
	require.NoError(t, err)
	require.EqualValues(t, 0, first.Order)
	require.Equal(t, "todo", first.Status)
	require.Nil(t, first.CompletedAt)
	require.Equal(t, alice.ID, first.CreatedBy.ID)

	second, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "second"})
	require.NoError(t, err)
	require.EqualValues(t, 1, second.Order)

	// a different status bucket starts back at zero
	review, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "third", Status: "review"})
	require.NoError(t, err)
	require.EqualValues(t, 0, review.Order)
}

func TestCreateTask_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	p := createTestProject(t, s, alice.ID, "Board")

	_, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "   "})
	require.True(t, errs.IsValidation(err))

	_, err = s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "t", Status: "bogus"})
	require.True(t, errs.IsValidation(err))

	ghost := "no-such-user"
	_, err = s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "t", AssignedTo: &ghost})
	require.True(t, errs.IsValidation(err))
}

func TestUpdateTask_CompletedAtTransitions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	p := createTestProject(t, s, alice.ID, "Board")

	task, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "transition"})
	require.NoError(t, err)
	require.Nil(t, task.CompletedAt)

	status := func(v string) *string { return &v }

	// todo -> in-progress leaves completedAt null
	task, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{Status: status("in-progress")})
	require.NoError(t, err)
	require.Nil(t, task.CompletedAt)

	// -> done stamps completedAt
	task, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{Status: status("done")})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	stamped := *task.CompletedAt

	// done -> done leaves the stamp untouched
	task, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{Status: status("done")})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	require.True(t, task.CompletedAt.Equal(stamped))

	// done -> review clears it
	task, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{Status: status("review")})
	require.NoError(t, err)
	require.Nil(t, task.CompletedAt)
}

func TestUpdateTask_PartialFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	bob := createTestUser(t, s, "Bob", "bob@example.com")
	p := createTestProject(t, s, alice.ID, "Board")

	task, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "assignable"})
	require.NoError(t, err)
	require.Nil(t, task.AssignedTo)

	task, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{AssignedTo: &bob.ID})
	require.NoError(t, err)
	require.NotNil(t, task.AssignedTo)
	require.Equal(t, bob.ID, task.AssignedTo.ID)
	require.Equal(t, "assignable", task.Title)

	// empty string clears the assignment
	empty := ""
	task, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{AssignedTo: &empty})
	require.NoError(t, err)
	require.Nil(t, task.AssignedTo)
}

func TestListTasks_Sorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	p := createTestProject(t, s, alice.ID, "Board")

	a, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "a"})
	require.NoError(t, err)
	b, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "b"})
	require.NoError(t, err)

	tasks, err := s.ListTasks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, a.ID, tasks[0].ID)
	require.Equal(t, b.ID, tasks[1].ID)
}

func TestReorderTasks_Batch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	p := createTestProject(t, s, alice.ID, "Board")

	a, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "a"})
	require.NoError(t, err)
	b, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "b"})
	require.NoError(t, err)

	tasks, err := s.ReorderTasks(ctx, p.ID, []models.TaskReorder{
		{ID: a.ID, Status: "done", Order: 1},
		{ID: b.ID, Status: "todo", Order: 0},
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, b.ID, tasks[0].ID)
	require.Equal(t, a.ID, tasks[1].ID)

	require.Equal(t, "done", tasks[1].Status)
	require.NotNil(t, tasks[1].CompletedAt)
	require.Nil(t, tasks[0].CompletedAt)
}

func TestReorderTasks_TransactionAborts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	p := createTestProject(t, s, alice.ID, "Board")
	other := createTestProject(t, s, alice.ID, "Other board")

	mine, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "mine"})
	require.NoError(t, err)
	foreign, err := s.CreateTask(ctx, other.ID, alice.ID, models.TaskCreate{Title: "foreign"})
	require.NoError(t, err)

	_, err = s.ReorderTasks(ctx, p.ID, []models.TaskReorder{
		{ID: mine.ID, Status: "done", Order: 5},
		{ID: foreign.ID, Status: "done", Order: 0},
	})
	require.True(t, errs.IsValidation(err))

	// the first entry must have been rolled back with the batch
	got, err := s.GetTask(ctx, mine.ID)
	require.NoError(t, err)
	require.Equal(t, "todo", got.Status)
	require.EqualValues(t, 0, got.Order)
	require.Nil(t, got.CompletedAt)
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "Alice", "alice@example.com")
	p := createTestProject(t, s, alice.ID, "Board")

	task, err := s.CreateTask(ctx, p.ID, alice.ID, models.TaskCreate{Title: "doomed"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, task.ID))
	require.ErrorIs(t, s.DeleteTask(ctx, task.ID), errs.ErrNotFound)
}
