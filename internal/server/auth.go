package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskflow/internal/auth"
	"taskflow/internal/models"
)

// authPayload pairs a sanitized user with a freshly issued token.
type authPayload struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// handleRegister creates an account and issues a token.
func (s *Server) handleRegister(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondValidation(c, "Please provide name, email, and password")
		return
	}
	if !strings.Contains(req.Email, "@") {
		respondValidation(c, "Please fill a valid email address")
		return
	}
	if len(req.Password) < 6 {
		respondValidation(c, "Password must be at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondError(c, err, "")
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), req.Name, models.NormalizeEmail(req.Email), hash)
	if err != nil {
		s.respondError(c, err, "")
		return
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.respondError(c, err, "")
		return
	}

	respondSuccess(c, http.StatusCreated, authPayload{User: user, Token: token}, "User registered successfully")
}

// handleLogin checks credentials and issues a token. Unknown email and wrong
// password produce the same message so accounts cannot be enumerated.
func (s *Server) handleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondValidation(c, "Please provide email and password")
		return
	}

	user, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "Invalid credentials"})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.respondError(c, err, "")
		return
	}

	respondSuccess(c, http.StatusOK, authPayload{User: user, Token: token}, "User logged in successfully")
}

// handleMe returns the authenticated caller's profile.
func (s *Server) handleMe(c *gin.Context) {
	user := currentUser(c)
	respondSuccess(c, http.StatusOK, user, "")
}

// handleUpdateProfile applies a partial update to the caller's profile.
func (s *Server) handleUpdateProfile(c *gin.Context) {
	user := currentUser(c)

	var patch models.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondValidation(c, "Invalid request body")
		return
	}

	updated, err := s.store.UpdateProfile(c.Request.Context(), user.ID, patch)
	if err != nil {
		s.respondError(c, err, "User not found")
		return
	}

	respondSuccess(c, http.StatusOK, updated, "Profile updated successfully")
}
