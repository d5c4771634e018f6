package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lshigami/quizmaster/config"
	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/dto"
	"github.com/lshigami/quizmaster/internal/validation"
)

const maskedMessage = "An unexpected error occurred"

// ErrorHandler renders the last error pushed with c.Error as the JSON error
// envelope. Binding errors are rendered as validation failures.
func ErrorHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		Render(c, cfg, last.Err)
	}
}

// Render writes err as the error envelope.
func Render(c *gin.Context, cfg *config.Config, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("Internal server error", err)
	}
	status := appErr.Status()

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Msg("Request failed")

	message := appErr.Message
	details := appErr.Details
	if appErr.Kind == apperr.KindInternal && cfg.IsProduction() {
		message = maskedMessage
		details = nil
	}

	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
		Details:    details,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       c.Request.URL.Path,
	})
}

// BindError converts a gin binding failure into a validation error.
func BindError(err error) error {
	return apperr.Validation("Validation failed", validation.Messages(err)...)
}

// Recovery turns panics into the Internal error envelope.
func Recovery(cfg *config.Config) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(gin.DefaultErrorWriter, func(c *gin.Context, recovered any) {
		Render(c, cfg, apperr.Internal("Internal server error", fmt.Errorf("panic: %v", recovered)))
	})
}
