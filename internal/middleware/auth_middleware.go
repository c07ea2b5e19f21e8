package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	autherrors "gaha-portal/internal/auth/errors"
	"gaha-portal/internal/shared/contextutil"
	"gaha-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenBlacklist is satisfied by auth.Blacklist; a local interface keeps
// this package from importing the auth module it guards.
type TokenBlacklist interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware validates the bearer token and installs the token's
// subject as the acting principal. Mutating handlers must use the
// principal, never a client-supplied username.
func AuthMiddleware(blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token not found", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			errObj := autherrors.ErrInvalidToken
			if err != nil && strings.Contains(err.Error(), "expired") {
				errObj = autherrors.ErrTokenExpired
			}
			response.Error(c, errObj.HTTPStatus, errObj.Code, errObj.Message, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token claims", nil)
			c.Abort()
			return
		}

		username, ok := claims["sub"].(string)
		if !ok || username == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Subject not found in token", nil)
			c.Abort()
			return
		}

		if blacklist != nil {
			jti, _ := claims["jti"].(string)
			if jti != "" {
				revoked, err := blacklist.IsRevoked(c.Request.Context(), jti)
				if err == nil && revoked {
					errObj := autherrors.ErrTokenRevoked
					response.Error(c, errObj.HTTPStatus, errObj.Code, errObj.Message, nil)
					c.Abort()
					return
				}
			}
		}

		role, _ := claims["role"].(string)
		jti, _ := claims["jti"].(string)

		c.Set("username", username)
		c.Set("role", role)
		c.Set("token_jti", jti)
		c.Set("token_claims", claims)

		ctx := contextutil.WithPrincipal(c.Request.Context(), username)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
