package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskflow/internal/auth"
	"taskflow/internal/models"
)

const userKey = "user"

// requireAuth verifies the bearer token and attaches the resolved user to the
// request context. A token whose subject no longer exists is rejected the same
// way as an invalid one.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Message: "Not authorized, token missing"})
		return
	}

	token := strings.TrimPrefix(header, "Bearer ")
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Message: "Not authorized, token failed"})
		return
	}

	user, err := s.store.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Success: false, Message: "Not authorized, user not found"})
		return
	}

	c.Set(userKey, user)
	c.Next()
}

// currentUser returns the user attached by requireAuth.
func currentUser(c *gin.Context) models.User {
	return c.MustGet(userKey).(models.User)
}
