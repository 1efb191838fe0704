package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"imagegen_backend/internal/app/di"
	"imagegen_backend/internal/app/router"
	"imagegen_backend/internal/config"
	authadapters "imagegen_backend/internal/feature/auth/adapters"
	authentity "imagegen_backend/internal/feature/auth/domain/entity"
	authhandler "imagegen_backend/internal/feature/auth/transport/handler"
	authusecase "imagegen_backend/internal/feature/auth/usecase"
	genadapters "imagegen_backend/internal/feature/generation/adapters"
	"imagegen_backend/internal/feature/generation/adapters/cloudinary"
	"imagegen_backend/internal/feature/generation/adapters/vision"
	generationhandler "imagegen_backend/internal/feature/generation/transport/handler"
	generationusecase "imagegen_backend/internal/feature/generation/usecase"
	payadapters "imagegen_backend/internal/feature/payment/adapters"
	paymenthandler "imagegen_backend/internal/feature/payment/transport/handler"
	paymentusecase "imagegen_backend/internal/feature/payment/usecase"
	platformdb "imagegen_backend/internal/platform/db"
	"imagegen_backend/internal/platform/http/handler"
	"imagegen_backend/internal/platform/http/respond"
	jwtmw "imagegen_backend/internal/platform/jwt"
	"imagegen_backend/internal/platform/logging"
	"imagegen_backend/internal/platform/metrics"
	infraredis "imagegen_backend/internal/platform/redis"
	"imagegen_backend/internal/shared/ratelimiter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.App.LogLevel, cfg.App.LogFormat)
	slog.Debug("configuration loaded\n" + cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.Open(cfg.DB, &authentity.User{}, &genadapters.ImageModel{}, &payadapters.PaymentModel{})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	checks := map[string]handler.Pinger{"db": platformdb.Pinger{DB: db}}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Running without cache and with in-process locks.", "error", err)
		} else {
			rdb = tmp
			checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	m := metrics.New()
	rw := respond.New(cfg.IsDevelopment())

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.JWT.Secret == "" {
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	// Repository
	userRepo := authadapters.NewUserGorm(db)
	imageRepo := di.NewImageRepository(db, rdb)
	subsRepo := payadapters.NewSubscriptionRepository(db)

	// External collaborators
	generator, err := di.NewImageGenerator(ctx, cfg.Inference)
	if err != nil {
		slog.Error("failed to create image generator", "error", err)
		os.Exit(1)
	}
	store, err := cloudinary.NewCloudinaryStore(cfg.Storage)
	if err != nil {
		slog.Error("failed to create Cloudinary client", "error", err)
		os.Exit(1)
	}
	genOpts := []generationusecase.Option{generationusecase.WithObserver(m)}
	if cfg.Moderation.Enabled {
		moderator, err := vision.NewSafeSearchModerator(ctx)
		if err != nil {
			slog.Error("failed to create SafeSearch moderator", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := moderator.Close(); err != nil {
				slog.Warn("failed to close vision client", "error", err)
			}
		}()
		genOpts = append(genOpts, generationusecase.WithModerator(moderator))
	}

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.TTL))
	generationUC := generationusecase.NewGenerationUsecase(userRepo, generator, store, imageRepo, genOpts...)
	paymentUC := paymentusecase.NewPaymentUsecase(
		paymentusecase.Config{KeyID: cfg.Gateway.KeyID, KeySecret: cfg.Gateway.KeySecret, Currency: cfg.Gateway.Currency},
		userRepo, di.NewGateway(cfg.Gateway), subsRepo, di.NewUserLocker(rdb),
		paymentusecase.WithObserver(m),
	)

	// ルータ生成
	engine := router.NewRouter(router.Handlers{
		Health:     handler.NewHealthHandler(checks),
		Auth:       authhandler.NewAuthHandler(authUC, rw),
		Generation: generationhandler.NewGenerationHandler(generationUC, rw),
		Payment:    paymenthandler.NewPaymentHandler(paymentUC, rw),
	}, router.Options{
		JWTSecret:       cfg.JWT.Secret,
		Responder:       rw,
		Logger:          logger,
		Metrics:         m,
		MetricsHandler:  m.Handler(),
		GenerateLimiter: ratelimiter.NewKeyedLimiter(cfg.RateLimit.GeneratePerMinute, time.Minute, cfg.RateLimit.GenerateBurst),
		CORSOrigins:     cfg.App.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		// 推論は数十秒かかることがある
		WriteTimeout: cfg.Inference.Timeout + cfg.Storage.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.App.Env, "provider", cfg.Inference.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
