package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lshigami/quizmaster/internal/model"
)

const actorKey = "quizmaster.actor"

// Actor is the authenticated caller attached to a request.
type Actor struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  model.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func ActorFromUser(u *model.User) Actor {
	return Actor{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func SetActor(c *gin.Context, actor Actor) {
	c.Set(actorKey, actor)
}

// CurrentActor returns the actor set by the authentication middleware.
func CurrentActor(c *gin.Context) (Actor, bool) {
	value, ok := c.Get(actorKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := value.(Actor)
	return actor, ok
}
