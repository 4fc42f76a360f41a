package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	repo "github.com/pulsecare/pulsecare-api/internal/domain/repository"
	"github.com/pulsecare/pulsecare-api/pkg/response"
)

const CtxUserIDKey = "userID"

func keyAuthToken(t string) string { return "auth:token:" + t }

// Auth validates the "Authorization: Token <key>" header against the token
// store and sets userID in the Gin context. Successful lookups are cached in
// redis for cacheTTL; redis being down just means a database round trip.
func Auth(tokens repo.TokenRepository, users repo.UserRepository, rdb *redis.Client, cacheTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := tokenFromHeader(c)
		if key == "" {
			response.Abort(c, http.StatusUnauthorized, "missing token", nil)
			return
		}

		ctx := c.Request.Context()
		if rdb != nil {
			if uid, err := rdb.Get(ctx, keyAuthToken(key)).Result(); err == nil && uid != "" {
				c.Set(CtxUserIDKey, uid)
				c.Next()
				return
			}
		}

		uid, err := tokens.FindUserID(ctx, key)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid token", nil)
			return
		}
		u, err := users.GetByID(ctx, uid)
		if err != nil || !u.IsActive {
			response.Abort(c, http.StatusUnauthorized, "invalid token", nil)
			return
		}

		if rdb != nil && cacheTTL > 0 {
			_ = rdb.Set(ctx, keyAuthToken(key), uid, cacheTTL).Err()
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}

func tokenFromHeader(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Token") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
