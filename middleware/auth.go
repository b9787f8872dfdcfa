package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitepulse/api/models"
	"sitepulse/api/utils"
)

// ContextOperatorKey holds the authenticated operator email in the gin context.
const ContextOperatorKey = "operator_email"

// TokenCookie is the cookie that carries the operator token.
const TokenCookie = "jwt_token"

// AuthRequired accepts a valid operator token from the jwt_token cookie or a
// Bearer header, or the static dashboard API key when one is configured.
func AuthRequired(tokens *utils.TokenIssuer, apiKey string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey != "" {
			if key := c.GetHeader("X-API-KEY"); key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
				c.Set(ContextOperatorKey, "api-key")
				c.Next()
				return
			}
		}

		tokenString, err := c.Cookie(TokenCookie)
		if err != nil || tokenString == "" {
			tokenString = ""
			if bearer, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
				tokenString = strings.TrimSpace(bearer)
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "no token provided",
			})
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			log.Warn("Rejected dashboard token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "invalid or expired token",
			})
			return
		}

		c.Set(ContextOperatorKey, claims.Email)
		c.Next()
	}
}
