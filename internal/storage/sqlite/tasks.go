package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskflow/internal/errs"
	"taskflow/internal/models"
)

const taskColumns = `id, project_id, title, description, status, priority, assigned_to, created_by, due_date, tags, ord, completed_at, created_at, updated_at`

// taskRow mirrors the tasks table.
type taskRow struct {
	ID          string         `db:"id"`
	ProjectID   string         `db:"project_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Status      string         `db:"status"`
	Priority    string         `db:"priority"`
	AssignedTo  sql.NullString `db:"assigned_to"`
	CreatedBy   string         `db:"created_by"`
	DueDate     sql.NullTime   `db:"due_date"`
	Tags        string         `db:"tags"`
	Ord         int64          `db:"ord"`
	CompletedAt sql.NullTime   `db:"completed_at"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r taskRow) toTask() (models.Task, error) {
	var tags []string
	if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
		return models.Task{}, fmt.Errorf("decode task tags: %w", err)
	}

	t := models.Task{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Tags:        tags,
		Order:       r.Ord,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time
		t.DueDate = &due
	}
	if r.CompletedAt.Valid {
		completed := r.CompletedAt.Time
		t.CompletedAt = &completed
	}
	return t, nil
}

// ListTasks returns the project's tasks sorted by order, then newest first.
// Authorization is the caller's concern.
func (s *Store) ListTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows, `SELECT `+taskColumns+` FROM tasks
        WHERE project_id = ? ORDER BY ord ASC, created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return s.resolveTaskRows(ctx, rows)
}

// GetTask retrieves a task by id with resolved identity summaries.
func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, errs.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}

	tasks, err := s.resolveTaskRows(ctx, []taskRow{row})
	if err != nil {
		return models.Task{}, err
	}
	return tasks[0], nil
}

// resolveTaskRows converts rows and fills in assignedTo/createdBy summaries.
func (s *Store) resolveTaskRows(ctx context.Context, rows []taskRow) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(rows))
	if len(rows) == 0 {
		return tasks, nil
	}

	ids := make([]string, 0, len(rows)*2)
	for _, r := range rows {
		ids = append(ids, r.CreatedBy)
		if r.AssignedTo.Valid {
			ids = append(ids, r.AssignedTo.String)
		}
	}

	summaries, err := s.userSummaries(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		t, err := r.toTask()
		if err != nil {
			return nil, err
		}
		t.CreatedBy = summaries[r.CreatedBy]
		if r.AssignedTo.Valid {
			if sum, ok := summaries[r.AssignedTo.String]; ok {
				t.AssignedTo = &sum
			}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// CreateTask inserts a new task into the project. The order slots the task at
// the end of its (project, status) bucket.
func (s *Store) CreateTask(ctx context.Context, projectID, createdBy string, fields models.TaskCreate) (models.Task, error) {
	title := strings.TrimSpace(fields.Title)
	if title == "" {
		return models.Task{}, errs.Validation("Task title is required")
	}

	status := fields.Status
	if status == "" {
		status = "todo"
	}
	if _, ok := models.ValidTaskStatuses[status]; !ok {
		return models.Task{}, errs.Validation("Invalid task status")
	}

	priority := fields.Priority
	if priority == "" {
		priority = "medium"
	}
	if _, ok := models.ValidPriorities[priority]; !ok {
		return models.Task{}, errs.Validation("Invalid task priority")
	}

	var assignedTo sql.NullString
	if fields.AssignedTo != nil && *fields.AssignedTo != "" {
		if _, err := s.GetUser(ctx, *fields.AssignedTo); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return models.Task{}, errs.Validation("Assigned user not found")
			}
			return models.Task{}, err
		}
		assignedTo = sql.NullString{String: *fields.AssignedTo, Valid: true}
	}

	var dueDate sql.NullTime
	if fields.DueDate != nil {
		dueDate = sql.NullTime{Time: fields.DueDate.UTC(), Valid: true}
	}

	tags, err := encodeTags(fields.Tags)
	if err != nil {
		return models.Task{}, err
	}

	ord, err := s.nextOrder(ctx, projectID, status)
	if err != nil {
		return models.Task{}, err
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `INSERT INTO tasks
        (id, project_id, title, description, status, priority, assigned_to, created_by, due_date, tags, ord, completed_at, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		id, projectID, title, strings.TrimSpace(fields.Description), status, priority, assignedTo, createdBy, dueDate, tags, ord, now, now)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return s.GetTask(ctx, id)
}

// UpdateTask applies a whitelisted partial update. Moving a task into "done"
// stamps completedAt; moving a done task out of "done" clears it. A done→done
// or not-done→not-done update leaves completedAt untouched.
func (s *Store) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, errs.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Task{}, errs.Validation("Task title is required")
		}
		row.Title = title
	}
	if patch.Description != nil {
		row.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Priority != nil {
		if _, ok := models.ValidPriorities[*patch.Priority]; !ok {
			return models.Task{}, errs.Validation("Invalid task priority")
		}
		row.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		if *patch.AssignedTo == "" {
			row.AssignedTo = sql.NullString{}
		} else {
			if _, err := s.GetUser(ctx, *patch.AssignedTo); err != nil {
				if errors.Is(err, errs.ErrNotFound) {
					return models.Task{}, errs.Validation("Assigned user not found")
				}
				return models.Task{}, err
			}
			row.AssignedTo = sql.NullString{String: *patch.AssignedTo, Valid: true}
		}
	}
	if patch.DueDate != nil {
		row.DueDate = sql.NullTime{Time: patch.DueDate.UTC(), Valid: true}
	}
	if patch.Tags != nil {
		tags, err := encodeTags(*patch.Tags)
		if err != nil {
			return models.Task{}, err
		}
		row.Tags = tags
	}

	now := time.Now().UTC()
	if patch.Status != nil {
		newStatus := *patch.Status
		if _, ok := models.ValidTaskStatuses[newStatus]; !ok {
			return models.Task{}, errs.Validation("Invalid task status")
		}
		switch {
		case newStatus == "done" && row.Status != "done":
			row.CompletedAt = sql.NullTime{Time: now, Valid: true}
		case newStatus != "done" && row.Status == "done":
			row.CompletedAt = sql.NullTime{}
		}
		row.Status = newStatus
	}
	row.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `UPDATE tasks SET
        title = ?, description = ?, status = ?, priority = ?, assigned_to = ?, due_date = ?, tags = ?, completed_at = ?, updated_at = ?
        WHERE id = ?`,
		row.Title, row.Description, row.Status, row.Priority, row.AssignedTo, row.DueDate, row.Tags, row.CompletedAt, row.UpdatedAt, row.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}

	return s.GetTask(ctx, id)
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ReorderTasks applies a batch of status/order overwrites inside a single
// transaction: either every entry applies or none do. Each entry's completedAt
// is set when its status is "done" and cleared otherwise, regardless of prior
// state. Entries naming tasks outside the project abort the batch.
func (s *Store) ReorderTasks(ctx context.Context, projectID string, updates []models.TaskReorder) ([]models.Task, error) {
	now := time.Now().UTC()

	err := s.transaction(func(tx *sqlx.Tx) error {
		for _, u := range updates {
			if _, ok := models.ValidTaskStatuses[u.Status]; !ok {
				return errs.Validation("Invalid task status")
			}

			var completedAt sql.NullTime
			if u.Status == "done" {
				completedAt = sql.NullTime{Time: now, Valid: true}
			}

			res, err := tx.ExecContext(ctx, `UPDATE tasks SET status = ?, ord = ?, completed_at = ?, updated_at = ?
                WHERE id = ? AND project_id = ?`,
				u.Status, u.Order, completedAt, now, u.ID, projectID)
			if err != nil {
				return fmt.Errorf("reorder task %s: %w", u.ID, err)
			}

			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return errs.Validation("Task does not belong to this project")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.ListTasks(ctx, projectID)
}

func (s *Store) nextOrder(ctx context.Context, projectID, status string) (int64, error) {
	var ord sql.NullInt64
	err := s.db.GetContext(ctx, &ord, `SELECT MAX(ord) FROM tasks WHERE project_id = ? AND status = ?`, projectID, status)
	if err != nil {
		return 0, fmt.Errorf("select order: %w", err)
	}
	if ord.Valid {
		return ord.Int64 + 1, nil
	}
	return 0, nil
}
