// Package middleware はGin用の共通ミドルウェアを提供します。
package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwtmw "imagegen_backend/internal/platform/jwt"
)

// HeaderRequestID はリクエストIDを伝搬するヘッダー名です。
const HeaderRequestID = "X-Request-ID"

// RequestLogger は各リクエストのメソッド・ルート・ステータス・処理時間をslogで記録します。
// ステータスが500以上ならError、400以上ならWarn、それ以外はInfoで出力します。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(HeaderRequestID, reqID)

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("request_id", reqID),
			slog.String("method", c.Request.Method),
			slog.String("route", routeOf(c)),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", c.ClientIP()),
		}
		if uid, ok := jwtmw.UserID(c); ok {
			attrs = append(attrs, slog.Uint64("user_id", uint64(uid)))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "request", attrs...)
	}
}

// routeOf はラベル爆発を避けるため登録済みルートパターンを返します。
func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
