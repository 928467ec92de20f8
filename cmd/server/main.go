package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/relichub/backend/api/handler"
	"github.com/relichub/backend/internal/config"
	"github.com/relichub/backend/internal/infrastructure/buffer"
	"github.com/relichub/backend/internal/infrastructure/monitor"
	pgInfra "github.com/relichub/backend/internal/infrastructure/postgres"
	redisInfra "github.com/relichub/backend/internal/infrastructure/redis"
	"github.com/relichub/backend/internal/middleware"
	"github.com/relichub/backend/internal/router"
	"github.com/relichub/backend/internal/services"
	"github.com/relichub/backend/internal/services/lifecycle"
	"github.com/relichub/backend/pkg/httpcontext"
	"github.com/relichub/backend/pkg/logger"
	"github.com/relichub/backend/repository"
	"github.com/relichub/backend/repository/memory"
	"github.com/relichub/backend/repository/postgres"
	redisRepo "github.com/relichub/backend/repository/redis"
	authUC "github.com/relichub/backend/usecase/auth"
	commentsUC "github.com/relichub/backend/usecase/comments"
	favoritesUC "github.com/relichub/backend/usecase/favorites"
	galleryUC "github.com/relichub/backend/usecase/gallery"
	ingestUC "github.com/relichub/backend/usecase/ingest"
	profileUC "github.com/relichub/backend/usecase/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "readings")
	if err != nil {
		zapLogger.Fatal("failed to open reading buffer", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	var cache repository.CacheService
	if cfg.Cache.Driver == "memory" {
		cache = memory.NewCacheService(cfg.Cache.BaseTTL, cfg.Cache.JitterBand, cfg.Cache.LockWait)
	} else {
		cache = redisRepo.NewCacheService(redisClient, redisRepo.CacheConfig{
			BaseTTL:    cfg.Cache.BaseTTL,
			JitterBand: cfg.Cache.JitterBand,
			LockWait:   cfg.Cache.LockWait,
			LockHold:   cfg.Cache.LockHold,
			LockRetry:  cfg.Cache.LockRetry,
		}, zapLogger)
	}

	userRepo := postgres.NewUserRepository(pool)
	favoritesRepo := postgres.NewFavoritesRepository(pool, cache, zapLogger)
	commentsRepo := postgres.NewCommentsRepository(pool, cache, zapLogger)
	galleryRepo := postgres.NewGalleryRepository(pool, cache, zapLogger)
	readingRepo := postgres.NewReadingRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, 24*time.Hour)

	readingProcessor := services.NewReadingProcessor(
		bufferStore,
		mon,
		readingRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
		},
	)
	readingProcessor.Start()
	manager.Register("reading_processor", func(ctx context.Context) error {
		readingProcessor.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	favoritesUseCase := favoritesUC.New(favoritesRepo, cache, zapLogger)
	commentsUseCase := commentsUC.New(commentsRepo, cache, zapLogger)
	galleryUseCase := galleryUC.New(galleryRepo, cache, zapLogger)
	ingestUseCase := ingestUC.New(readingRepo, readingProcessor, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, time.Hour),
		Profile:  apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Favorite: apiHandler.NewFavoriteHandler(favoritesUseCase, ctxAdapter, zapLogger),
		Comment:  apiHandler.NewCommentHandler(commentsUseCase, ctxAdapter, zapLogger),
		Gallery:  apiHandler.NewGalleryHandler(galleryUseCase, ctxAdapter, zapLogger),
		Sensor:   apiHandler.NewSensorHandler(ingestUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
