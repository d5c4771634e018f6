package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/auth"
	"github.com/lshigami/quizmaster/internal/model"
)

// Authenticator resolves a raw bearer token to an actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Actor, error)
}

// AuthenticatorFunc adapts a plain function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (auth.Actor, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (auth.Actor, error) {
	return f(ctx, token)
}

// Authenticate rejects requests without a valid bearer token and attaches the
// actor for downstream handlers.
func Authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abort(c, apperr.Unauthorized("Missing or malformed Authorization header"))
			return
		}
		actor, err := authenticator.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			abort(c, err)
			return
		}
		auth.SetActor(c, actor)
		c.Next()
	}
}

// RequireRoles allows the request through only for the listed roles.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		actor, ok := auth.CurrentActor(c)
		if !ok {
			abort(c, apperr.Unauthorized("Authentication required"))
			return
		}
		if !allowed[actor.Role] {
			abort(c, apperr.Forbidden("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
