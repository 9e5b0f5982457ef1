package client

import (
	"context"
	"sort"
	"sync"

	"taskflow/internal/models"
)

// ProjectsState is the normalized project cache slice.
type ProjectsState struct {
	Items   []models.Project
	Loading bool
	Err     string
}

// TasksState is the task cache slice for the currently open project.
type TasksState struct {
	ProjectID string
	Items     []models.Task
	Loading   bool
	Err       string
}

// AuthState is the session slice.
type AuthState struct {
	User          models.User
	Authenticated bool
	Err           string
}

// StateStore is the consuming side's cache of auth, projects and tasks. Every
// operation delegates to the API client and reconciles the local slices with
// the response; failures populate the slice's Err instead of propagating a
// panic into the UI layer.
type StateStore struct {
	client *Client

	mu       sync.Mutex
	auth     AuthState
	projects ProjectsState
	tasks    TasksState
}

// NewStateStore builds a store around the given API client, seeding the auth
// slice from the client's session.
func NewStateStore(c *Client) *StateStore {
	return &StateStore{
		client: c,
		auth: AuthState{
			User:          c.session.User(),
			Authenticated: c.session.Authenticated(),
		},
	}
}

// Auth returns a snapshot of the auth slice.
func (st *StateStore) Auth() AuthState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.auth
}

// Projects returns a snapshot of the projects slice.
func (st *StateStore) Projects() ProjectsState {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := st.projects
	out.Items = append([]models.Project(nil), st.projects.Items...)
	return out
}

// Tasks returns a snapshot of the tasks slice.
func (st *StateStore) Tasks() TasksState {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := st.tasks
	out.Items = append([]models.Task(nil), st.tasks.Items...)
	return out
}

// Login authenticates and populates the auth slice.
func (st *StateStore) Login(ctx context.Context, email, password string) error {
	user, err := st.client.Login(ctx, email, password)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.auth.Err = err.Error()
		return err
	}
	st.auth = AuthState{User: user, Authenticated: true}
	return nil
}

// Register creates an account and populates the auth slice.
func (st *StateStore) Register(ctx context.Context, name, email, password string) error {
	user, err := st.client.Register(ctx, name, email, password)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.auth.Err = err.Error()
		return err
	}
	st.auth = AuthState{User: user, Authenticated: true}
	return nil
}

// RefreshIdentity re-resolves the session's user. On failure the session has
// already been cleared by the client, so the cached slices are dropped too.
func (st *StateStore) RefreshIdentity(ctx context.Context) error {
	user, err := st.client.Me(ctx)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.auth = AuthState{Err: err.Error()}
		st.projects = ProjectsState{}
		st.tasks = TasksState{}
		return err
	}
	st.auth = AuthState{User: user, Authenticated: true}
	return nil
}

// Logout clears the session and every cached slice.
func (st *StateStore) Logout() error {
	err := st.client.session.Clear()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.auth = AuthState{}
	st.projects = ProjectsState{}
	st.tasks = TasksState{}
	return err
}

// FetchProjects loads the caller's projects into the projects slice.
func (st *StateStore) FetchProjects(ctx context.Context, filter models.ProjectFilter) error {
	st.mu.Lock()
	st.projects.Loading = true
	st.projects.Err = ""
	st.mu.Unlock()

	items, err := st.client.ListProjects(ctx, filter)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.projects.Loading = false
	if err != nil {
		st.projects.Err = err.Error()
		return err
	}
	st.projects.Items = items
	return nil
}

// CreateProject creates a project and appends it to the slice.
func (st *StateStore) CreateProject(ctx context.Context, fields models.ProjectCreate) (models.Project, error) {
	project, err := st.client.CreateProject(ctx, fields)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.projects.Err = err.Error()
		return models.Project{}, err
	}
	st.projects.Items = append(st.projects.Items, project)
	return project, nil
}

// UpdateProject updates a project in place.
func (st *StateStore) UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error) {
	project, err := st.client.UpdateProject(ctx, id, patch)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.projects.Err = err.Error()
		return models.Project{}, err
	}
	for i := range st.projects.Items {
		if st.projects.Items[i].ID == project.ID {
			st.projects.Items[i] = project
			break
		}
	}
	return project, nil
}

// DeleteProject removes a project from the server and the slice.
func (st *StateStore) DeleteProject(ctx context.Context, id string) error {
	err := st.client.DeleteProject(ctx, id)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.projects.Err = err.Error()
		return err
	}
	kept := st.projects.Items[:0]
	for _, p := range st.projects.Items {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	st.projects.Items = kept
	if st.tasks.ProjectID == id {
		st.tasks = TasksState{}
	}
	return nil
}

// FetchTasks loads a project's tasks into the tasks slice.
func (st *StateStore) FetchTasks(ctx context.Context, projectID string) error {
	st.mu.Lock()
	st.tasks.ProjectID = projectID
	st.tasks.Loading = true
	st.tasks.Err = ""
	st.mu.Unlock()

	items, err := st.client.ListTasks(ctx, projectID)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.tasks.Loading = false
	if err != nil {
		st.tasks.Err = err.Error()
		return err
	}
	st.tasks.Items = items
	return nil
}

// CreateTask creates a task and appends it to the slice.
func (st *StateStore) CreateTask(ctx context.Context, projectID string, fields models.TaskCreate) (models.Task, error) {
	task, err := st.client.CreateTask(ctx, projectID, fields)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.tasks.Err = err.Error()
		return models.Task{}, err
	}
	st.tasks.Items = append(st.tasks.Items, task)
	return task, nil
}

// UpdateTask updates a task in place.
func (st *StateStore) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	task, err := st.client.UpdateTask(ctx, id, patch)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.tasks.Err = err.Error()
		return models.Task{}, err
	}
	for i := range st.tasks.Items {
		if st.tasks.Items[i].ID == task.ID {
			st.tasks.Items[i] = task
			break
		}
	}
	return task, nil
}

// DeleteTask removes a task from the server and the slice.
func (st *StateStore) DeleteTask(ctx context.Context, id string) error {
	err := st.client.DeleteTask(ctx, id)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.tasks.Err = err.Error()
		return err
	}
	kept := st.tasks.Items[:0]
	for _, t := range st.tasks.Items {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	st.tasks.Items = kept
	return nil
}

// ReorderTasks applies an optimistic local reorder, sends the batch to the
// server, and reconciles with the authoritative list. If the call fails, the
// held prior state is restored so the UI never keeps an unconfirmed order.
func (st *StateStore) ReorderTasks(ctx context.Context, projectID string, updates []models.TaskReorder) error {
	st.mu.Lock()
	snapshot := append([]models.Task(nil), st.tasks.Items...)

	byID := make(map[string]models.TaskReorder, len(updates))
	for _, u := range updates {
		byID[u.ID] = u
	}
	for i := range st.tasks.Items {
		if u, ok := byID[st.tasks.Items[i].ID]; ok {
			st.tasks.Items[i].Status = u.Status
			st.tasks.Items[i].Order = u.Order
		}
	}
	sortTasksByOrder(st.tasks.Items)
	st.tasks.Err = ""
	st.mu.Unlock()

	items, err := st.client.ReorderTasks(ctx, projectID, updates)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.tasks.Items = snapshot
		st.tasks.Err = err.Error()
		return err
	}
	st.tasks.Items = items
	return nil
}

func sortTasksByOrder(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Order < tasks[j].Order
	})
}
