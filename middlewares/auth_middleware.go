package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/utils"
)

var (
	errMissingToken = errors.New("authorization header missing")
	errUnknownUser  = errors.New("account not found or inactive")
)

// UserLookup resolves the user behind a token; inactive users must fail.
type UserLookup interface {
	FindActive(ctx context.Context, id uint) (*models.User, error)
}

type Authenticator struct {
	Tokens    *utils.TokenManager
	Users     UserLookup
	Blacklist *utils.TokenBlacklist
}

func (a *Authenticator) principal(c *gin.Context, token string) (*utils.Principal, error) {
	if token == "" {
		return nil, errMissingToken
	}
	if a.Blacklist != nil && a.Blacklist.IsRevoked(token) {
		return nil, utils.ErrInvalidToken
	}
	claims, err := a.Tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}
	user, err := a.Users.FindActive(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, errUnknownUser
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return &utils.Principal{
		UserID:    user.ID,
		Name:      user.Name,
		Role:      user.Role,
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

// AuthMiddleware requires "Authorization: Bearer <token>" and attaches the
// caller as a utils.Principal.
func AuthMiddleware(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(header[len("Bearer "):])
		}

		p, err := auth.principal(c, token)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, err)
			return
		}
		utils.SetPrincipal(c, p)
		c.Next()
	}
}
