package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wmmalith63/credence-tender-management/pkg/jwt"
	"github.com/wmmalith63/credence-tender-management/pkg/redis"
	"github.com/wmmalith63/credence-tender-management/pkg/response"
)

// Context keys set by JWTAuth
const (
	CtxUserID   = "user_id"
	CtxRoles    = "roles"
	CtxTokenJTI = "token_jti"
)

// JWTAuth verifies "Authorization: Bearer <token>" and stores the principal
// in the context. Revoked tokens are rejected when rdb is configured; a
// nil rdb or a Redis error skips the blacklist check.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, response.CodeAuth, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, response.CodeAuth, "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, response.CodeAuth, "token invalid or expired")
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, response.CodeAuth, "invalid token type")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Warn("token blacklist check failed", zap.Error(err))
			} else if revoked {
				response.Unauthorized(c, response.CodeAuth, "token revoked")
				c.Abort()
				return
			}
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRoles, claims.Roles)
		c.Set(CtxTokenJTI, claims.ID)

		c.Next()
	}
}

// RoleAuth lets the request through when the caller holds any of allowedRoles.
// Finer decisions stay in the service layer.
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(CtxRoles)
		if !exists {
			response.Unauthorized(c, response.CodeAuth, "unauthenticated")
			c.Abort()
			return
		}

		roles, _ := v.([]string)
		for _, r := range allowedRoles {
			if slices.Contains(roles, r) {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "access denied")
		c.Abort()
	}
}
