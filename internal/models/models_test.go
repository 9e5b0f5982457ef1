package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectHasAccess(t *testing.T) {
	t.Parallel()

	project := &Project{
		OwnerID: "owner",
		TeamMembers: []UserSummary{
			{ID: "owner"},
			{ID: "member"},
		},
	}

	assert.True(t, project.HasAccess("owner"))
	assert.True(t, project.HasAccess("member"))
	assert.False(t, project.HasAccess("stranger"))
	assert.False(t, project.HasAccess(""))
}

func TestProjectIsOwner(t *testing.T) {
	t.Parallel()

	project := &Project{OwnerID: "owner", TeamMembers: []UserSummary{{ID: "owner"}, {ID: "member"}}}

	assert.True(t, project.IsOwner("owner"))
	assert.False(t, project.IsOwner("member"))
}

func TestPriorityRank(t *testing.T) {
	t.Parallel()

	assert.Greater(t, PriorityRank("urgent"), PriorityRank("high"))
	assert.Greater(t, PriorityRank("high"), PriorityRank("medium"))
	assert.Greater(t, PriorityRank("medium"), PriorityRank("low"))
	assert.Greater(t, PriorityRank("low"), PriorityRank("bogus"))
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}

func TestValidateProjectName(t *testing.T) {
	t.Parallel()

	assert.False(t, ValidateProjectName("ab"))
	assert.True(t, ValidateProjectName("abc"))
	assert.True(t, ValidateProjectName(strings.Repeat("x", 100)))
	assert.False(t, ValidateProjectName(strings.Repeat("x", 101)))
	assert.False(t, ValidateProjectName("   "))
}

func TestValidateUserName(t *testing.T) {
	t.Parallel()

	assert.False(t, ValidateUserName("a"))
	assert.True(t, ValidateUserName("ab"))
	assert.True(t, ValidateUserName(strings.Repeat("n", 50)))
	assert.False(t, ValidateUserName(strings.Repeat("n", 51)))
}

func TestValidateProgress(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidateProgress(0))
	assert.True(t, ValidateProgress(100))
	assert.False(t, ValidateProgress(-1))
	assert.False(t, ValidateProgress(101))
}
