// Package controller holds the HTTP handlers shared by every role plus the
// helpers the role-specific controller packages build on.
package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/auth"
	"github.com/lshigami/quizmaster/internal/middleware"
)

// UUIDParam parses a path parameter. On failure the validation error is
// pushed onto the context and ok is false.
func UUIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		_ = ctx.Error(apperr.Validation("Validation failed", name+" must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// CurrentActor returns the authenticated caller or pushes Unauthorized.
func CurrentActor(ctx *gin.Context) (auth.Actor, bool) {
	actor, ok := auth.CurrentActor(ctx)
	if !ok {
		_ = ctx.Error(apperr.Unauthorized("Authentication required"))
	}
	return actor, ok
}

// BindJSON binds the body and pushes a validation error on failure.
func BindJSON(ctx *gin.Context, obj any) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		_ = ctx.Error(middleware.BindError(err))
		return false
	}
	return true
}

// BindQuery binds query parameters and pushes a validation error on failure.
func BindQuery(ctx *gin.Context, obj any) bool {
	if err := ctx.ShouldBindQuery(obj); err != nil {
		_ = ctx.Error(middleware.BindError(err))
		return false
	}
	return true
}
