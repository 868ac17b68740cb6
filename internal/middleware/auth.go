package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"linkup/internal/domain/auth"
	"linkup/internal/pkg/jwt"
	"linkup/internal/pkg/response"
)

// JWTAuth validates the bearer token and stores the caller on the context.
// Browsers cannot set headers on a WebSocket handshake, so the token may
// also arrive as the access_token query parameter.
func JWTAuth(jwtSvc *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, msg := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		claims, err := jwtSvc.ValidateToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		role, ok := auth.ParseRole(claims.Role)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown role in token")
			return
		}

		auth.SetPrincipal(c, auth.Principal{UserID: claims.UserID, Role: role})
		c.Next()
	}
}

func bearerToken(c *gin.Context) (token, code, msg string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := strings.TrimSpace(c.Query("access_token")); q != "" {
			return q, "", ""
		}
		return "", "AUTH_HEADER_MISSING", "Authorization header is required"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "INVALID_AUTH_FORMAT", "Authorization header must be: Bearer <token>"
	}
	return strings.TrimSpace(parts[1]), "", ""
}
