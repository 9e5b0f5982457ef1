package models

import (
	"strings"
	"time"
)

// DefaultAvatar is used when a registering user supplies no avatar.
const DefaultAvatar = "https://via.placeholder.com/150"

// DefaultProjectColor is the hex color assigned to projects created without one.
const DefaultProjectColor = "#3b82f6"

// User is an identity record. PasswordHash never leaves the server.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Avatar       string    `db:"avatar" json:"avatar"`
	Role         string    `db:"role" json:"role"`
	Bio          string    `db:"bio" json:"bio"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Summary strips a user down to the fields embedded in project and task responses.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// UserSummary is the identity projection resolved into owner, teamMembers,
// assignedTo and createdBy fields.
type UserSummary struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Email  string `db:"email" json:"email"`
	Avatar string `db:"avatar" json:"avatar"`
}

// Project groups tasks under a single owner and a set of team members.
type Project struct {
	ID          string        `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description"`
	Status      string        `db:"status" json:"status"`
	Priority    string        `db:"priority" json:"priority"`
	StartDate   time.Time     `db:"start_date" json:"startDate"`
	DueDate     time.Time     `db:"due_date" json:"dueDate"`
	OwnerID     string        `db:"owner_id" json:"-"`
	Owner       UserSummary   `db:"-" json:"owner"`
	TeamMembers []UserSummary `db:"-" json:"teamMembers"`
	Color       string        `db:"color" json:"color"`
	Progress    int           `db:"progress" json:"progress"`
	Tags        []string      `db:"-" json:"tags"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// HasAccess reports whether the user may read the project and work with its
// tasks: the owner or any team member.
func (p *Project) HasAccess(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.TeamMembers {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// IsOwner reports whether the user owns the project. Ownership gates updates,
// deletion and membership changes.
func (p *Project) IsOwner(userID string) bool {
	return p.OwnerID == userID
}

// Task represents a single card on a project board.
type Task struct {
	ID          string       `db:"id" json:"id"`
	ProjectID   string       `db:"project_id" json:"projectId"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Status      string       `db:"status" json:"status"`
	Priority    string       `db:"priority" json:"priority"`
	AssignedTo  *UserSummary `db:"-" json:"assignedTo"`
	CreatedBy   UserSummary  `db:"-" json:"createdBy"`
	DueDate     *time.Time   `db:"due_date" json:"dueDate"`
	Tags        []string     `db:"-" json:"tags"`
	Order       int64        `db:"ord" json:"order"`
	CompletedAt *time.Time   `db:"completed_at" json:"completedAt"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// ValidProjectStatuses enumerates the project lifecycle states.
var ValidProjectStatuses = map[string]struct{}{
	"planning":  {},
	"active":    {},
	"on-hold":   {},
	"completed": {},
	"cancelled": {},
}

// ValidTaskStatuses enumerates the statuses supported by the board columns.
var ValidTaskStatuses = map[string]struct{}{
	"todo":        {},
	"in-progress": {},
	"review":      {},
	"done":        {},
}

// ValidPriorities enumerates priorities shared by projects and tasks.
var ValidPriorities = map[string]struct{}{
	"low":    {},
	"medium": {},
	"high":   {},
	"urgent": {},
}

// PriorityRank maps priorities to a severity rank so sorting by priority puts
// urgent first. Unknown values rank below low.
func PriorityRank(priority string) int {
	switch priority {
	case "urgent":
		return 4
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	}
	return 0
}

// NormalizeEmail lowercases and trims an email for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUserName checks registration/profile name bounds.
func ValidateUserName(name string) bool {
	n := len(strings.TrimSpace(name))
	return n >= 2 && n <= 50
}

// ValidateProjectName checks the 3-100 character bound.
func ValidateProjectName(name string) bool {
	n := len(strings.TrimSpace(name))
	return n >= 3 && n <= 100
}

// ValidateDescription checks the shared 500 character cap.
func ValidateDescription(desc string) bool {
	return len(desc) <= 500
}

// ValidateProgress checks the 0-100 range.
func ValidateProgress(progress int) bool {
	return progress >= 0 && progress <= 100
}
