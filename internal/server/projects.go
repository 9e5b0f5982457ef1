package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/models"
)

// handleListProjects returns every project the caller owns or belongs to.
func (s *Server) handleListProjects(c *gin.Context) {
	user := currentUser(c)

	filter := models.ProjectFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Sort:     c.Query("sort"),
	}

	projects, err := s.store.ListProjects(c.Request.Context(), user.ID, filter)
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	respondCount(c, http.StatusOK, projects, len(projects))
}

// handleGetProject returns a single project. Existence is checked before
// access, so a missing id is always a 404 and a denied one always a 403.
func (s *Server) handleGetProject(c *gin.Context) {
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

	respondSuccess(c, http.StatusOK, project, "")
}

// handleCreateProject creates a project owned by the caller.
func (s *Server) handleCreateProject(c *gin.Context) {
	user := currentUser(c)

	var req models.ProjectCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body")
		return
	}

	project, err := s.store.CreateProject(c.Request.Context(), user.ID, req)
	if err != nil {
		s.respondError(c, err, "")
		return
	}
	respondSuccess(c, http.StatusCreated, project, "Project created successfully")
}

// handleUpdateProject applies a partial update; owner only.
func (s *Server) handleUpdateProject(c *gin.Context) {
	user := currentUser(c)

	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	if !project.IsOwner(user.ID) {
		respondForbidden(c, "Only owner can update the project")
		return
	}

	var patch models.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondValidation(c, "Invalid request body")
		return
	}

	updated, err := s.store.UpdateProject(c.Request.Context(), project.ID, patch)
	if err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	respondSuccess(c, http.StatusOK, updated, "Project updated successfully")
}

// handleDeleteProject removes a project and its tasks; owner only.
func (s *Server) handleDeleteProject(c *gin.Context) {
	user := currentUser(c)

	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	if !project.IsOwner(user.ID) {
		respondForbidden(c, "Only owner can delete the project")
		return
	}

	if err := s.store.DeleteProject(c.Request.Context(), project.ID); err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{}, "Project deleted successfully")
}

type addMemberRequest struct {
	Email string `json:"email"`
}

// handleAddMember adds a user to the project team by email; owner only.
func (s *Server) handleAddMember(c *gin.Context) {
	user := currentUser(c)

	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	if !project.IsOwner(user.ID) {
		respondForbidden(c, "Not authorized to add team members")
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respondValidation(c, "Please provide an email")
		return
	}

	target, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		s.respondError(c, err, "User not found")
		return
	}

	updated, err := s.store.AddMember(c.Request.Context(), project.ID, target.ID)
	if err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	respondSuccess(c, http.StatusOK, updated, "Team member added successfully")
}

// handleRemoveMember removes a user from the project team; owner only. The
// owner itself is never removable.
func (s *Server) handleRemoveMember(c *gin.Context) {
	user := currentUser(c)

	project, err := s.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	if !project.IsOwner(user.ID) {
		respondForbidden(c, "Not authorized to remove team members")
		return
	}

	updated, err := s.store.RemoveMember(c.Request.Context(), project.ID, c.Param("userId"))
	if err != nil {
		s.respondError(c, err, "Project not found")
		return
	}
	respondSuccess(c, http.StatusOK, updated, "Team member removed successfully")
}
