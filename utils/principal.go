package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

const principalKey = "dineflow.principal"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    uint
	Name      string
	Role      string
	Token     string
	ExpiresAt time.Time
}

func SetPrincipal(c *gin.Context, p *Principal) {
	c.Set(principalKey, p)
}

func CurrentPrincipal(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok && p != nil
}

// PrincipalID returns the caller's user id, or nil for anonymous requests.
func PrincipalID(c *gin.Context) *uint {
	p, ok := CurrentPrincipal(c)
	if !ok {
		return nil
	}
	id := p.UserID
	return &id
}

// RequestIDKey holds the X-Request-ID of the current request in the gin context.
const RequestIDKey = "request_id"
