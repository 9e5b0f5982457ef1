package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"taskflow/internal/errs"
	"taskflow/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, name, email string) models.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), name, models.NormalizeEmail(email), "hash")
	require.NoError(t, err)
	return u
}

func TestCreateUser_Defaults(t *testing.T) {
	s := newTestStore(t)

	u := createTestUser(t, s, "Alice", "alice@example.com")
	require.NotEmpty(t, u.ID)
	require.Equal(t, "user", u.Role)
	require.Equal(t, models.DefaultAvatar, u.Avatar)
	require.Empty(t, u.Bio)
	require.False(t, u.CreatedAt.IsZero())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)

	createTestUser(t, s, "Alice", "alice@example.com")

	_, err := s.CreateUser(context.Background(), "Other", "alice@example.com", "hash")
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestCreateUser_NameBounds(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser(context.Background(), "A", "short@example.com", "hash")
	require.True(t, errs.IsValidation(err))
}

func TestGetUserByEmail_Normalizes(t *testing.T) {
	s := newTestStore(t)

	created := createTestUser(t, s, "Alice", "alice@example.com")

	u, err := s.GetUserByEmail(context.Background(), "  ALICE@Example.Com ")
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "Alice", "alice@example.com")

	bio := "Building things"
	updated, err := s.UpdateProfile(ctx, u.ID, models.ProfilePatch{Bio: &bio})
	require.NoError(t, err)
	require.Equal(t, "Building things", updated.Bio)
	// absent fields keep their prior value
	require.Equal(t, "Alice", updated.Name)
	require.Equal(t, models.DefaultAvatar, updated.Avatar)

	name := "Alice B"
	updated, err = s.UpdateProfile(ctx, u.ID, models.ProfilePatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Alice B", updated.Name)
	require.Equal(t, "Building things", updated.Bio)
}
