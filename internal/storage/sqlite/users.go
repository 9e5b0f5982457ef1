package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskflow/internal/errs"
	"taskflow/internal/models"
)

const userColumns = `id, name, email, password_hash, avatar, role, bio, created_at, updated_at`

// CreateUser persists a new user. The email must already be normalized and the
// password already hashed by the caller.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	name = strings.TrimSpace(name)
	if !models.ValidateUserName(name) {
		return models.User{}, errs.Validation("Name must be between 2 and 50 characters")
	}

	var exists int
	err := s.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM users WHERE email = ?`, email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return models.User{}, errs.Conflict("Email already in use")
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Avatar:       models.DefaultAvatar,
		Role:         "user",
		Bio:          "",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO users (id, name, email, password_hash, avatar, role, bio, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Avatar, u.Role, u.Bio, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return models.User{}, errs.Conflict("Email already in use")
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

// GetUser fetches a single user by id.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, errs.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches a user by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, models.NormalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, errs.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UpdateProfile applies a partial profile update; absent fields keep their
// prior value. It always stamps updated_at.
func (s *Store) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if !models.ValidateUserName(name) {
			return models.User{}, errs.Validation("Name must be between 2 and 50 characters")
		}
		u.Name = name
	}
	if patch.Bio != nil {
		if !models.ValidateDescription(*patch.Bio) {
			return models.User{}, errs.Validation("Bio cannot exceed 500 characters")
		}
		u.Bio = *patch.Bio
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	u.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `UPDATE users SET name = ?, bio = ?, avatar = ?, updated_at = ? WHERE id = ?`,
		u.Name, u.Bio, u.Avatar, u.UpdatedAt, u.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}

	return u, nil
}

// userSummaries resolves identity summaries for a set of user ids.
func (s *Store) userSummaries(ctx context.Context, q sqlx.QueryerContext, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT id, name, email, avatar FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build summaries query: %w", err)
	}

	var rows []models.UserSummary
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select summaries: %w", err)
	}
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}
