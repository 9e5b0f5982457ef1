package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"taskflow/internal/models"
)

// APIError is a failed API call, carrying the server's status and message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Client talks to the TaskFlow REST API. The bearer token comes from an
// explicit Session rather than ambient global state.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New constructs an API client for the given base URL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
}

// envelope mirrors the server's uniform response shape.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Count   *int            `json:"count"`
}

// do issues a request and decodes the enveloped payload into out.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil
}

// authResult pairs a user with an issued token.
type authResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an account and stores the issued identity in the session.
func (c *Client) Register(ctx context.Context, name, email, password string) (models.User, error) {
	var res authResult
	err := c.do(ctx, http.MethodPost, "/auth/register", models.RegisterRequest{Name: name, Email: email, Password: password}, &res)
	if err != nil {
		return models.User{}, err
	}
	if err := c.session.Set(res.User, res.Token); err != nil {
		return models.User{}, err
	}
	return res.User, nil
}

// Login authenticates and stores the issued identity in the session.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	var res authResult
	err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return models.User{}, err
	}
	if err := c.session.Set(res.User, res.Token); err != nil {
		return models.User{}, err
	}
	return res.User, nil
}

// Me fetches the caller's profile. A failed refresh clears the session, so a
// stale token never lingers.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		_ = c.session.Clear()
		return models.User{}, err
	}
	return user, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPut, "/auth/profile", patch, &user)
	return user, err
}

// ListProjects fetches the caller's projects with optional filters.
func (c *Client) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Priority != "" {
		q.Set("priority", filter.Priority)
	}
	if filter.Sort != "" {
		q.Set("sort", filter.Sort)
	}
	path := "/projects"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var projects []models.Project
	err := c.do(ctx, http.MethodGet, path, nil, &projects)
	return projects, err
}

// GetProject fetches a single project.
func (c *Client) GetProject(ctx context.Context, id string) (models.Project, error) {
	var project models.Project
	err := c.do(ctx, http.MethodGet, "/projects/"+id, nil, &project)
	return project, err
}

// CreateProject creates a project owned by the caller.
func (c *Client) CreateProject(ctx context.Context, fields models.ProjectCreate) (models.Project, error) {
	var project models.Project
	err := c.do(ctx, http.MethodPost, "/projects", fields, &project)
	return project, err
}

// UpdateProject applies a partial update.
func (c *Client) UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error) {
	var project models.Project
	err := c.do(ctx, http.MethodPut, "/projects/"+id, patch, &project)
	return project, err
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id, nil, nil)
}

// AddMember adds a team member by email.
func (c *Client) AddMember(ctx context.Context, projectID, email string) (models.Project, error) {
	var project models.Project
	err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/members", map[string]string{"email": email}, &project)
	return project, err
}

// RemoveMember removes a team member by user id.
func (c *Client) RemoveMember(ctx context.Context, projectID, userID string) (models.Project, error) {
	var project models.Project
	err := c.do(ctx, http.MethodDelete, "/projects/"+projectID+"/members/"+userID, nil, &project)
	return project, err
}

// ListTasks fetches the tasks of a project.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	var tasks []models.Task
	err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/tasks", nil, &tasks)
	return tasks, err
}

// CreateTask creates a task inside a project.
func (c *Client) CreateTask(ctx context.Context, projectID string, fields models.TaskCreate) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/tasks", fields, &task)
	return task, err
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+id, nil, &task)
	return task, err
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPut, "/tasks/"+id, patch, &task)
	return task, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
}

// ReorderTasks sends a batch status/order update and returns the server's
// authoritative task list.
func (c *Client) ReorderTasks(ctx context.Context, projectID string, updates []models.TaskReorder) ([]models.Task, error) {
	var tasks []models.Task
	err := c.do(ctx, http.MethodPut, "/projects/"+projectID+"/tasks/reorder", map[string]any{"tasks": updates}, &tasks)
	return tasks, err
}
