package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"imagegen_backend/internal/platform/http/respond"
	jwtmw "imagegen_backend/internal/platform/jwt"
	"imagegen_backend/internal/shared/ratelimiter"
)

// RateLimitPerUser は認証済みユーザーごとにトークンバケットでリクエストを制限します。
// 未認証リクエストはクライアントIPをキーにします。上限超過時は429を返します。
func RateLimitPerUser(limiter *ratelimiter.KeyedLimiter, rw *respond.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if uid, ok := jwtmw.UserID(c); ok {
			key = "user:" + strconv.FormatUint(uint64(uid), 10)
		}
		if !limiter.Allow(key) {
			rw.Abort(c, http.StatusTooManyRequests, "Too many requests, please slow down", nil)
			return
		}
		c.Next()
	}
}
