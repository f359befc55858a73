package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/utils"
)

// RequireRoles lets admins through unconditionally and every other caller
// only when their role is listed.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	label := strings.Join(roles, ", ")
	if label == "" {
		label = models.RoleAdmin
	}

	return func(c *gin.Context) {
		p, ok := utils.CurrentPrincipal(c)
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			return
		}
		if p.Role == models.RoleAdmin {
			c.Next()
			return
		}
		if _, ok := allowed[p.Role]; !ok {
			utils.AbortWithError(c, http.StatusForbidden, fmt.Errorf("%s access required", label))
			return
		}
		c.Next()
	}
}
