package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/models"
)

// projectForTask loads a task's parent project so its ACL can be re-evaluated.
// The task's effective access is always the parent project's access.
func (s *Server) projectForTask(c *gin.Context, projectID string) (models.Project, bool) {
	project, err := s.store.GetProject(c.Request.Context(), projectID)
	if err != nil {
		s.respondError(c, err, "Project not found")
		return models.Project{}, false
	}
	if !project.HasAccess(currentUser(c).ID) {
		respondForbidden(c, "Access denied to this task")
		return models.Project{}, false
	}
	return project, true
}

// handleListTasks fetches tasks for a project the caller can access.
func (s *Server) handleListTasks(c *gin.Context) {
	user := currentUser(c)

	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	if !project.HasAccess(user.ID) {
		respondForbidden(c, "Access denied to this project")
		return
	}

	tasks, err := s.store.ListTasks(c.Request.Context(), project.ID)
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	respondSuccess(c, http.StatusOK, tasks, "")
}

// handleCreateTask inserts a new task at the end of its status bucket.
func (s *Server) handleCreateTask(c *gin.Context) {
	user := currentUser(c)

	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	if !project.HasAccess(user.ID) {
		respondForbidden(c, "Access denied to this project")
		return
	}

	var req models.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body")
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), project.ID, user.ID, req)
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	respondSuccess(c, http.StatusCreated, task, "Task created successfully")
}

// handleGetTask returns one task after re-checking the parent project's ACL.
func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Task not found")
		return
	}

	if _, ok := s.projectForTask(c, task.ProjectID); !ok {
		return
	}

	respondSuccess(c, http.StatusOK, task, "")
}

// handleUpdateTask applies a partial update, including the status transition
// rule for completedAt.
func (s *Server) handleUpdateTask(c *gin.Context) {
	task, err := s.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Task not found")
		return
	}

	if _, ok := s.projectForTask(c, task.ProjectID); !ok {
		return
	}

	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondValidation(c, "Invalid request body")
		return
	}

	updated, err := s.store.UpdateTask(c.Request.Context(), task.ID, patch)
	if err != nil {
		s.respondError(c, err, "Task not found")
		return
	}
	respondSuccess(c, http.StatusOK, updated, "Task updated successfully")
}

// handleDeleteTask removes a task after the parent project's ACL check.
func (s *Server) handleDeleteTask(c *gin.Context) {
	task, err := s.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Task not found")
		return
	}

	if _, ok := s.projectForTask(c, task.ProjectID); !ok {
		return
	}

	if err := s.store.DeleteTask(c.Request.Context(), task.ID); err != nil {
		s.respondError(c, err, "Task not found")
		return
	}
	respondSuccess(c, http.StatusOK, nil, "Task deleted successfully")
}

type reorderRequest struct {
	Tasks []models.TaskReorder `json:"tasks"`
}

// handleReorderTasks applies a batch status/order update in one transaction
// and returns the refreshed task list.
func (s *Server) handleReorderTasks(c *gin.Context) {
	user := currentUser(c)

	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	if !project.HasAccess(user.ID) {
		respondForbidden(c, "Access denied to this project")
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body")
		return
	}

	tasks, err := s.store.ReorderTasks(c.Request.Context(), project.ID, req.Tasks)
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	respondSuccess(c, http.StatusOK, tasks, "Tasks reordered successfully")
}
