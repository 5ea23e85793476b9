package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"climbing-holds/config"
	telegram "climbing-holds/internal/api"
	"climbing-holds/internal/api/rest"
	"climbing-holds/internal/container"
	"climbing-holds/internal/domain/port"
	"climbing-holds/internal/infrastructure/logger"
	"climbing-holds/internal/infrastructure/storage"
	"climbing-holds/internal/infrastructure/vision"
)

var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Mode:       cfg.Server.Mode,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("starting climbing holds service", zap.String("version", Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params, err := cfg.VisionParams()
	if err != nil {
		return err
	}
	strategy, err := cfg.BackgroundStrategy()
	if err != nil {
		return err
	}

	deps := container.Deps{
		Users:        storage.NewMemoryUserRepository(),
		Detector:     vision.NewHoldDetector(params, log.Named("detector")),
		Renderer:     vision.NewRenderer(params),
		Remover:      vision.NewBackgroundIsolator(params, log.Named("background")),
		Strategy:     strategy,
		Workers:      cfg.Vision.Workers,
		QueueTimeout: cfg.Vision.QueueTimeout,
		Logger:       log,
	}

	cache, closeCache := newCache(ctx, cfg, log)
	defer closeCache()
	deps.Cache = cache

	if cfg.Storage.SaveArtifacts {
		store, err := storage.NewFileStore(cfg.Storage.ImagesDir, cfg.Storage.VisualizationsDir)
		if err != nil {
			return err
		}
		deps.Store = store
	}

	appContainer := container.New(deps)

	gin.SetMode(cfg.Server.Mode)
	handler := rest.NewHandler(appContainer.RouteService, appContainer.BackgroundService, cfg.Server.MaxUpload, log.Named("http"))
	router := rest.NewRouter(handler, log.Named("http"))
	router.MaxMultipartMemory = cfg.Server.MaxUpload

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if cfg.Telegram.Token != "" {
		bot, err := telegram.NewBot(cfg.Telegram.Token, appContainer.UserService, appContainer.RouteService, appContainer.BackgroundService, log.Named("bot"))
		if err != nil {
			log.Error("failed to create bot, continuing without it", zap.Error(err))
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				log.Info("bot is running")
				if err := bot.Run(ctx); err != nil {
					errCh <- fmt.Errorf("bot: %w", err)
				}
			}()
		}
	} else {
		log.Info("TELEGRAM_TOKEN is not set, bot disabled")
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-errCh:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	wg.Wait()
	return runErr
}

// newCache Redis, если включён и отвечает, иначе кэш в памяти
func newCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (port.ResultCache, func()) {
	memory := storage.NewMemoryResultCache(cfg.Redis.TTL, cfg.Storage.CacheSize)
	if !cfg.Redis.Enabled {
		return memory, func() {}
	}

	redisCache := storage.NewRedisResultCache(storage.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	}, log.Named("redis"))

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		log.Warn("redis connection failed, using in-memory cache", zap.Error(err))
		_ = redisCache.Close()
		return memory, func() {}
	}

	log.Info("redis connected successfully", zap.String("addr", cfg.Redis.Addr))
	return redisCache, func() { _ = redisCache.Close() }
}
