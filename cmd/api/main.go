package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"watch-catalog/internal/config"
	"watch-catalog/internal/db"
	"watch-catalog/internal/email"
	apihttp "watch-catalog/internal/http"
	"watch-catalog/internal/oauth"
	"watch-catalog/internal/repository"
	"watch-catalog/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	memberRepo := repository.NewPgMemberRepository(pool)
	brandRepo := repository.NewPgBrandRepository(pool)
	watchRepo := repository.NewPgWatchRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	catalogCache := service.NewMemoryCatalogCache()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory catalog cache", zap.Error(err))
		} else {
			catalogCache = service.NewRedisCatalogCache(redisClient)
		}
		cancel()
	}

	hasher := service.NewCredentialHasher(cfg.AppSecret)
	authSvc := service.NewAuthService(logger, memberRepo, hasher, emailSender)
	federatedSvc := service.NewFederatedService(logger, memberRepo, hasher)
	brandSvc := service.NewBrandService(logger, brandRepo, watchRepo, catalogCache, time.Duration(cfg.CatalogCacheTTLSeconds)*time.Second)
	watchSvc := service.NewWatchService(logger, watchRepo, brandRepo)
	memberSvc := service.NewMemberService(logger, memberRepo)

	var provider oauth.Provider
	if cfg.GoogleEnabled() {
		provider = oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	} else {
		logger.Warn("google oauth not configured")
	}
	stateSigner := oauth.NewStateSigner(cfg.SessionSecret, 10*time.Minute)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, federatedSvc, provider, stateSigner, apihttp.AuthHandlerConfig{
		CookieDomain: cfg.CookieDomain,
		FrontendURL:  cfg.FrontendURL,
	})
	brandHandler := apihttp.NewBrandHandler(logger, brandSvc)
	watchHandler := apihttp.NewWatchHandler(logger, watchSvc)
	memberHandler := apihttp.NewMemberHandler(logger, memberSvc)

	router := apihttp.NewRouter(logger, apihttp.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins(),
		SessionSecret:  cfg.SessionSecret,
		SecureCookies:  cfg.GinMode == gin.ReleaseMode,
	}, memberRepo, authHandler, brandHandler, watchHandler, memberHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
