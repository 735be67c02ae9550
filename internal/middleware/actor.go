package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
)

// ActorHeader carries the authenticated user id, set by the gateway in
// front of this service. Requests without it run as anonymous.
const ActorHeader = "X-User-ID"

// ActorResolver loads the acting user for the visibility filters.
type ActorResolver struct {
	users *dao.UserDAO
	log   *zap.Logger
}

// NewActorResolver creates a new ActorResolver instance
func NewActorResolver(users *dao.UserDAO, log *zap.Logger) *ActorResolver {
	return &ActorResolver{users: users, log: log}
}

// Resolve looks up the user named by the actor header and installs the
// actor into the request context. An unknown or missing user id leaves
// the request anonymous rather than rejecting it; the visibility filters
// decide what an anonymous actor may see.
func (m *ActorResolver) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(ActorHeader)
		if header == "" {
			c.Next()
			return
		}
		userID, err := strconv.Atoi(header)
		if err != nil {
			c.Next()
			return
		}

		user, err := m.users.FindByID(c.Request.Context(), userID)
		if err != nil {
			m.log.Warn("actor lookup failed", zap.Int("user_id", userID), zap.Error(err))
			c.Next()
			return
		}
		if user == nil || !user.Active {
			c.Next()
			return
		}

		actor := &dao.Actor{
			ID:       user.ID,
			Username: user.Username,
			Admin:    user.IsAdmin,
		}
		c.Request = c.Request.WithContext(dao.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}
