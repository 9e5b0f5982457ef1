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

const projectColumns = `id, name, description, status, priority, start_date, due_date, owner_id, color, progress, tags, created_at, updated_at`

// projectRow mirrors the projects table; tags are stored as a JSON array.
type projectRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	Priority    string    `db:"priority"`
	StartDate   time.Time `db:"start_date"`
	DueDate     time.Time `db:"due_date"`
	OwnerID     string    `db:"owner_id"`
	Color       string    `db:"color"`
	Progress    int       `db:"progress"`
	Tags        string    `db:"tags"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r projectRow) toProject() (models.Project, error) {
	var tags []string
	if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
		return models.Project{}, fmt.Errorf("decode project tags: %w", err)
	}
	return models.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		StartDate:   r.StartDate,
		DueDate:     r.DueDate,
		OwnerID:     r.OwnerID,
		Color:       r.Color,
		Progress:    r.Progress,
		Tags:        tags,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	for i := range tags {
		tags[i] = strings.TrimSpace(tags[i])
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(raw), nil
}

// ListProjects returns every project where the user is owner or team member,
// optionally filtered by status/priority and sorted per the filter.
func (s *Store) ListProjects(ctx context.Context, userID string, filter models.ProjectFilter) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
        WHERE (owner_id = ? OR EXISTS (
            SELECT 1 FROM project_members WHERE project_id = projects.id AND user_id = ?))`
	args := []any{userID, userID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, filter.Priority)
	}

	switch filter.Sort {
	case "name":
		query += ` ORDER BY name COLLATE NOCASE ASC`
	case "dueDate":
		query += ` ORDER BY due_date ASC`
	case "priority":
		query += ` ORDER BY CASE priority
            WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0
            END DESC, created_at DESC`
	default:
		query += ` ORDER BY created_at DESC`
	}

	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]models.Project, 0, len(rows))
	for _, r := range rows {
		p, err := r.toProject()
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	if err := s.resolveProjects(ctx, s.db, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches a single project with resolved owner and team members.
// Authorization is the caller's concern.
func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	return s.getProject(ctx, s.db, id)
}

func (s *Store) getProject(ctx context.Context, q sqlx.QueryerContext, id string) (models.Project, error) {
	var row projectRow
	err := sqlx.GetContext(ctx, q, &row, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, errs.ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}

	p, err := row.toProject()
	if err != nil {
		return models.Project{}, err
	}

	projects := []models.Project{p}
	if err := s.resolveProjects(ctx, q, projects); err != nil {
		return models.Project{}, err
	}
	return projects[0], nil
}

// resolveProjects fills in owner and team member identity summaries.
func (s *Store) resolveProjects(ctx context.Context, q sqlx.QueryerContext, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]string, 0, len(projects))
	ownerIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
		ownerIDs = append(ownerIDs, p.OwnerID)
	}

	owners, err := s.userSummaries(ctx, q, ownerIDs)
	if err != nil {
		return err
	}

	query, args, err := sqlx.In(`SELECT pm.project_id AS project_id, u.id AS id, u.name AS name, u.email AS email, u.avatar AS avatar
        FROM project_members pm JOIN users u ON u.id = pm.user_id
        WHERE pm.project_id IN (?) ORDER BY u.name COLLATE NOCASE ASC`, ids)
	if err != nil {
		return fmt.Errorf("build members query: %w", err)
	}

	var memberRows []struct {
		ProjectID string `db:"project_id"`
		models.UserSummary
	}
	if err := sqlx.SelectContext(ctx, q, &memberRows, query, args...); err != nil {
		return fmt.Errorf("select members: %w", err)
	}

	members := make(map[string][]models.UserSummary, len(projects))
	for _, m := range memberRows {
		members[m.ProjectID] = append(members[m.ProjectID], m.UserSummary)
	}

	for i := range projects {
		projects[i].Owner = owners[projects[i].OwnerID]
		projects[i].TeamMembers = members[projects[i].ID]
		if projects[i].TeamMembers == nil {
			projects[i].TeamMembers = []models.UserSummary{}
		}
	}
	return nil
}

// CreateProject persists a new project owned by ownerID. The owner is always
// the sole initial team member, whatever the request carried.
func (s *Store) CreateProject(ctx context.Context, ownerID string, fields models.ProjectCreate) (models.Project, error) {
	name := strings.TrimSpace(fields.Name)
	if !models.ValidateProjectName(name) {
		return models.Project{}, errs.Validation("Project name must be between 3 and 100 characters")
	}
	if fields.Description == "" {
		return models.Project{}, errs.Validation("Project description is required")
	}
	if !models.ValidateDescription(fields.Description) {
		return models.Project{}, errs.Validation("Description cannot exceed 500 characters")
	}
	if fields.DueDate.IsZero() {
		return models.Project{}, errs.Validation("Due date is required")
	}

	status := fields.Status
	if status == "" {
		status = "planning"
	}
	if _, ok := models.ValidProjectStatuses[status]; !ok {
		return models.Project{}, errs.Validation("Invalid project status")
	}

	priority := fields.Priority
	if priority == "" {
		priority = "medium"
	}
	if _, ok := models.ValidPriorities[priority]; !ok {
		return models.Project{}, errs.Validation("Invalid project priority")
	}

	color := fields.Color
	if color == "" {
		color = models.DefaultProjectColor
	}

	now := time.Now().UTC()
	startDate := now
	if fields.StartDate != nil {
		startDate = fields.StartDate.UTC()
	}

	tags, err := encodeTags(fields.Tags)
	if err != nil {
		return models.Project{}, err
	}

	id := uuid.NewString()
	err = s.transaction(func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO projects
            (id, name, description, status, priority, start_date, due_date, owner_id, color, progress, tags, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
			id, name, fields.Description, status, priority, startDate, fields.DueDate.UTC(), ownerID, color, tags, now, now)
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO project_members (project_id, user_id) VALUES (?, ?)`, id, ownerID)
		if err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Project{}, err
	}

	return s.GetProject(ctx, id)
}

// UpdateProject applies a whitelisted partial update and returns the project
// with freshly resolved owner and members.
func (s *Store) UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if !models.ValidateProjectName(name) {
			return models.Project{}, errs.Validation("Project name must be between 3 and 100 characters")
		}
		p.Name = name
	}
	if patch.Description != nil {
		if *patch.Description == "" {
			return models.Project{}, errs.Validation("Project description is required")
		}
		if !models.ValidateDescription(*patch.Description) {
			return models.Project{}, errs.Validation("Description cannot exceed 500 characters")
		}
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		if _, ok := models.ValidProjectStatuses[*patch.Status]; !ok {
			return models.Project{}, errs.Validation("Invalid project status")
		}
		p.Status = *patch.Status
	}
	if patch.Priority != nil {
		if _, ok := models.ValidPriorities[*patch.Priority]; !ok {
			return models.Project{}, errs.Validation("Invalid project priority")
		}
		p.Priority = *patch.Priority
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate.UTC()
	}
	if patch.DueDate != nil {
		p.DueDate = patch.DueDate.UTC()
	}
	if patch.Color != nil && *patch.Color != "" {
		p.Color = *patch.Color
	}
	if patch.Progress != nil {
		if !models.ValidateProgress(*patch.Progress) {
			return models.Project{}, errs.Validation("Progress must be between 0 and 100")
		}
		p.Progress = *patch.Progress
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	p.UpdatedAt = time.Now().UTC()

	tags, err := encodeTags(p.Tags)
	if err != nil {
		return models.Project{}, err
	}

	_, err = s.db.ExecContext(ctx, `UPDATE projects SET
        name = ?, description = ?, status = ?, priority = ?, start_date = ?, due_date = ?, color = ?, progress = ?, tags = ?, updated_at = ?
        WHERE id = ?`,
		p.Name, p.Description, p.Status, p.Priority, p.StartDate, p.DueDate, p.Color, p.Progress, tags, p.UpdatedAt, p.ID)
	if err != nil {
		return models.Project{}, fmt.Errorf("update project: %w", err)
	}

	return s.GetProject(ctx, id)
}

// DeleteProject removes a project; its membership rows and tasks go with it.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
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

// AddMember appends a user to the project's team.
func (s *Store) AddMember(ctx context.Context, projectID, userID string) (models.Project, error) {
	var exists int
	err := s.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM project_members WHERE project_id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return models.Project{}, fmt.Errorf("check membership: %w", err)
	}
	if exists > 0 {
		return models.Project{}, errs.Conflict("User is already a team member")
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO project_members (project_id, user_id) VALUES (?, ?)`, projectID, userID)
	if err != nil {
		return models.Project{}, fmt.Errorf("insert membership: %w", err)
	}

	return s.GetProject(ctx, projectID)
}

// RemoveMember filters a user out of the project's team. The owner can never
// be removed.
func (s *Store) RemoveMember(ctx context.Context, projectID, userID string) (models.Project, error) {
	p, err := s.GetProject(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if p.OwnerID == userID {
		return models.Project{}, errs.Validation("Cannot remove the project owner")
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM project_members WHERE project_id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return models.Project{}, fmt.Errorf("delete membership: %w", err)
	}

	return s.GetProject(ctx, projectID)
}
