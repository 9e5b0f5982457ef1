package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/errs"
)

// envelope is the uniform response shape for every API endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// respondSuccess wraps a payload in the envelope.
func respondSuccess(c *gin.Context, status int, data any, message string) {
	c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

// respondCount is respondSuccess with the list count set.
func respondCount(c *gin.Context, status int, data any, count int) {
	c.JSON(status, envelope{Success: true, Data: data, Count: &count})
}

// respondError maps a domain error onto an HTTP status and the envelope.
// Unclassified errors become 500s with the cause carried in the error field.
func (s *Server) respondError(c *gin.Context, err error, notFoundMsg string) {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: ve.Msg})
	case errors.Is(err, errs.ErrConflict):
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
	case errors.Is(err, errs.ErrInvalidCredentials), errors.Is(err, errs.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, envelope{Success: false, Message: err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		msg := notFoundMsg
		if msg == "" {
			msg = "Not found"
		}
		c.JSON(http.StatusNotFound, envelope{Success: false, Message: msg})
	default:
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, envelope{Success: false, Message: "Server Error", Error: err.Error()})
	}
}

// respondValidation is a shortcut for malformed input caught at the handler.
func respondValidation(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Message: msg})
}

// respondForbidden reports an authorization failure with a specific message.
func respondForbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, envelope{Success: false, Message: msg})
}
