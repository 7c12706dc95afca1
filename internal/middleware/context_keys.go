package middleware

import "github.com/gin-gonic/gin"

// actorKey is the key used to store the acting user's ID in the context.
const actorKey = contextKey("actor")

// ActorHeader is the request header carrying the acting user's identifier.
// Authentication itself happens upstream of this service; the header is
// attribution, not a credential.
const ActorHeader = "X-Actor-ID"

// ActorMiddleware copies the actor header into the Gin context so handlers
// can attribute writes.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := c.GetHeader(ActorHeader); actor != "" {
			c.Set(string(actorKey), actor)
		}
		c.Next()
	}
}

// GetActorFromContext retrieves the acting user ID from the Gin context.
// It returns the ID and a boolean indicating if it was present.
func GetActorFromContext(c *gin.Context) (string, bool) {
	actorVal, exists := c.Get(string(actorKey))
	if !exists {
		return "", false
	}
	actor, ok := actorVal.(string)
	if !ok || actor == "" {
		return "", false
	}
	return actor, true
}
