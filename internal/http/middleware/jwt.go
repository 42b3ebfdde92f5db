package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"nestworth-api/internal/models"
	"nestworth-api/internal/services"
	"nestworth-api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const TokenCookie = "jwt"

// UserLoader is the slice of the user store the auth middleware needs to
// re-check a token's subject on every request.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type AuthConfig struct {
	Secret string
	Users  UserLoader
}

// JWTAuth verifies the bearer token (header or cookie), confirms the user
// still exists, and rejects tokens issued before the user's last password
// change. On success the user id and role are placed on the context.
func JWTAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			abortUnauthorized(c, "you are not logged in, please log in to get access")
			return
		}

		token, err := jwt.ParseWithClaims(tokenStr, &services.Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.Secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid or expired token, please log in again")
			return
		}

		claims, ok := token.Claims.(*services.Claims)
		if !ok {
			abortUnauthorized(c, "invalid or expired token, please log in again")
			return
		}

		user, err := cfg.Users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abortUnauthorized(c, "the user belonging to this token no longer exists")
			return
		}

		// iat is serialized at whole-second precision, so compare at second
		// granularity or a token minted right after a password change (with a
		// sub-second change timestamp) would be rejected.
		if claims.IssuedAt != nil && user.PasswordChangedAt.Truncate(time.Second).After(claims.IssuedAt.Time) {
			abortUnauthorized(c, "password was changed recently, please log in again")
			return
		}

		c.Set("user_id", user.ID)
		c.Set("role", string(user.Role))
		c.Next()
	}
}

// RequireRole restricts a route to the given roles. Runs after JWTAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role := models.ParseRole(c.GetString("role"))
		if _, ok := allowed[role]; !ok {
			utils.RespondError(c, utils.NewAppError(http.StatusForbidden,
				"you do not have permission to perform this action", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, message, nil))
	c.Abort()
}
