package models

import "time"

// Request DTOs use explicit named fields; client input is never merged raw
// into stored records. Pointer fields distinguish "absent" from "set".

// RegisterRequest carries the registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest carries the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfilePatch is a partial profile update; absent fields keep prior values.
type ProfilePatch struct {
	Name   *string `json:"name"`
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar"`
}

// ProjectCreate carries the fields a caller may set on a new project.
// Owner and membership are always derived from the authenticated caller.
type ProjectCreate struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     time.Time  `json:"dueDate"`
	Color       string     `json:"color"`
	Tags        []string   `json:"tags"`
}

// ProjectPatch is a whitelisted partial update for a project.
type ProjectPatch struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	DueDate     *time.Time `json:"dueDate"`
	Color       *string    `json:"color"`
	Progress    *int       `json:"progress"`
	Tags        *[]string  `json:"tags"`
}

// TaskCreate carries the fields a caller may set on a new task. The order is
// always computed server-side and createdBy is the authenticated caller.
type TaskCreate struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *string    `json:"assignedTo"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags"`
}

// TaskPatch is a whitelisted partial update for a task. Setting AssignedTo to
// the empty string clears the assignment.
type TaskPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssignedTo  *string    `json:"assignedTo"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        *[]string  `json:"tags"`
}

// TaskReorder is one entry of a batch status/order update.
type TaskReorder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Order  int64  `json:"order"`
}

// ProjectFilter narrows and orders a project listing.
type ProjectFilter struct {
	Status   string
	Priority string
	Sort     string
}
