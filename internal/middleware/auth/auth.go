// Package auth gates admin-only routes -- reputation runs, reprocess
// replays, and reviewer scoring -- behind a signed bearer token.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gravadigital/rankengine-api/internal/domain/reviewer"
	"github.com/gravadigital/rankengine-api/internal/response"
)

const contextUserIDKey = "auth_user_id"
const contextUserRoleKey = "auth_user_role"

// Claims is the payload embedded in a session token.
type Claims struct {
	UserID uuid.UUID     `json:"uid"`
	Role   reviewer.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for the given user, valid for ttl.
func IssueToken(secret string, user *reviewer.User, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID.String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parse validates a bearer token and returns its claims.
func parse(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// RequireAuth parses the Authorization header and stores the resolved
// identity on the gin context, rejecting the request with 401 on any
// missing or invalid token.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			response.UnauthorizedError(c, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := parse(secret, raw)
		if err != nil {
			response.UnauthorizedError(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Set(contextUserRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin builds on RequireAuth, additionally rejecting non-admin
// callers with 403. Reputation recomputation and reprocess replays feed
// directly into final grades, so only venue operators may trigger them.
func RequireAdmin(secret string) gin.HandlerFunc {
	requireAuth := RequireAuth(secret)
	return func(c *gin.Context) {
		requireAuth(c)
		if c.IsAborted() {
			return
		}
		role, _ := c.Get(contextUserRoleKey)
		if role != reviewer.RoleAdmin {
			response.ErrorResponseWithMessage(c, http.StatusForbidden, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID reads the authenticated user id stashed by RequireAuth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
