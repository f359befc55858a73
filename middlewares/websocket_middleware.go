package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/utils"
)

// WebSocketAuthMiddleware reads the token from ?token= since browsers cannot
// set headers on a WebSocket handshake.
func WebSocketAuthMiddleware(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.principal(c, c.Query("token"))
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, err)
			return
		}
		utils.SetPrincipal(c, p)
		c.Next()
	}
}
