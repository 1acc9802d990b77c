package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"go-admissions-backend/config"
	"go-admissions-backend/internal/delivery/http/response"
	"go-admissions-backend/internal/domain"
	"go-admissions-backend/pkg/auth"
	"go-admissions-backend/pkg/logger"
)

// AuthMiddleware validates the caller's CMS-issued bearer token and resolves
// the account behind it. The role always comes from a fresh /users/me lookup,
// never from a JWT claim: CMS role assignments change without reissuing
// tokens, and the raw token is kept on the context because it doubles as the
// user-tier credential for upstream calls.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, users domain.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			cookie, err := c.Cookie("auth_token")
			if err == nil && cookie != "" {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				// HS256 tokens issued by the CMS itself
				if cfg.CMSJWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but CMS_JWT_SECRET is not configured")
				}
				return []byte(cfg.CMSJWTSecret), nil
			}

			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
				// RS256 tokens from an external identity provider
				return jwksProvider.KeyFunc(token)
			}

			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})

		if err != nil || !token.Valid {
			logger.With("component", "auth").Warn("token validation failed", "error", err)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		// The account lookup uses the presented token, so a token the CMS no
		// longer honors fails here even when the signature still verifies.
		user, err := users.GetMe(c.Request.Context(), tokenString)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Account could not be verified", nil)
			c.Abort()
			return
		}
		if user.Blocked {
			response.Error(c, http.StatusForbidden, "Account is blocked", nil)
			c.Abort()
			return
		}

		session := domain.Session{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
			Token:  tokenString,
		}

		// Both stores: gin keys for handlers, request context for usecases.
		c.Set(string(domain.KeyUserID), session.UserID)
		c.Set(string(domain.KeyUserEmail), session.Email)
		c.Set(string(domain.KeyUserRole), session.Role)
		c.Request = c.Request.WithContext(domain.ContextWithSession(c.Request.Context(), session))

		c.Next()
	}
}
