package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "imagegen_backend/internal/feature/auth/transport/handler"
	generationhandler "imagegen_backend/internal/feature/generation/transport/handler"
	paymenthandler "imagegen_backend/internal/feature/payment/transport/handler"
	"imagegen_backend/internal/platform/http/handler"
	"imagegen_backend/internal/platform/http/middleware"
	"imagegen_backend/internal/platform/http/respond"
	jwtmw "imagegen_backend/internal/platform/jwt"
	"imagegen_backend/internal/shared/ratelimiter"
)

// Handlers はルーターに登録するハンドラー一式です。
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *authhandler.AuthHandler
	Generation *generationhandler.GenerationHandler
	Payment    *paymenthandler.PaymentHandler
}

// Options はルーター共通のミドルウェア設定です。
type Options struct {
	JWTSecret       string
	Responder       *respond.Responder
	Logger          *slog.Logger
	Metrics         middleware.RequestObserver
	MetricsHandler  http.Handler
	GenerateLimiter *ratelimiter.KeyedLimiter
	CORSOrigins     []string
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), corsMiddleware(opts.CORSOrigins))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.GET("/readyz", h.Health.Ready)
	if opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	requireAuth := jwtmw.AuthRequired(opts.JWTSecret, opts.Responder)

	authGroup := r.Group("/api/auth")
	{
		// 新規ユーザー登録
		authGroup.POST("/signup", h.Auth.Signup)
		// ログイン（JWT 発行）
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/me", requireAuth, h.Auth.Me)
	}

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	api := r.Group("/api")
	api.Use(requireAuth)
	{
		generate := []gin.HandlerFunc{h.Generation.Generate}
		if opts.GenerateLimiter != nil {
			// 推論は高コストなのでユーザー単位で制限する
			generate = append([]gin.HandlerFunc{middleware.RateLimitPerUser(opts.GenerateLimiter, opts.Responder)}, generate...)
		}
		api.POST("/generate", generate...)
		api.GET("/images", h.Generation.ListImages)

		api.POST("/payment/create-order", h.Payment.CreateOrder)
		api.POST("/payment/verify", h.Payment.VerifyPayment)
		api.GET("/payment/history", h.Payment.ListPayments)
	}

	r.NoRoute(func(c *gin.Context) {
		opts.Responder.Error(c, http.StatusNotFound, "Route not found", nil)
	})

	return r
}

// corsMiddleware はブラウザのフロントエンドからの呼び出しを許可します。
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID}
	cfg.ExposeHeaders = []string{middleware.HeaderRequestID}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
