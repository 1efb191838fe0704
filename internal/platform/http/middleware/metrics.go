package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver はHTTPリクエストの計測結果を受け取ります。
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics は各リクエストの件数とレイテンシをobserverへ記録します。
// /metrics 自体の取得は計測しません。
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		observer.ObserveRequest(c.Request.Method, routeOf(c), statusOf(c), time.Since(start))
	}
}

func statusOf(c *gin.Context) int {
	if s := c.Writer.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
