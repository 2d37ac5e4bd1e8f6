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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/regeshengen/water-quality-api/internal/api"
	"github.com/regeshengen/water-quality-api/internal/api/middleware"
	"github.com/regeshengen/water-quality-api/internal/app/service"
	"github.com/regeshengen/water-quality-api/internal/common/security"
	"github.com/regeshengen/water-quality-api/internal/domain/repository"
	"github.com/regeshengen/water-quality-api/internal/platform/cache"
	"github.com/regeshengen/water-quality-api/internal/platform/config"
	"github.com/regeshengen/water-quality-api/internal/platform/database"
	"github.com/regeshengen/water-quality-api/internal/platform/docstore"
	"github.com/regeshengen/water-quality-api/internal/platform/logger"
	"github.com/regeshengen/water-quality-api/internal/platform/metrics"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.AppEnv)
	slog.SetDefault(log)
	log.Info("configuration loaded", "port", cfg.APIPort)

	ctx := context.Background()

	// 2. Initialize PostgreSQL
	db, err := database.Connect(ctx, cfg.DBConnStr())
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("postgres connected", "host", cfg.DBHost, "database", cfg.DBName)

	if cfg.AutoMigrate() {
		if err := database.Migrate(ctx, db); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		log.Info("postgres schema applied")
	}

	// 3. Initialize MongoDB
	mongoURI, err := cfg.MongoConnectionURI()
	if err != nil {
		log.Error("invalid mongodb configuration", "error", err)
		os.Exit(1)
	}
	mongoClient, err := docstore.Connect(ctx, mongoURI)
	if err != nil {
		log.Error("failed to connect to mongodb", "uri", config.RedactURI(mongoURI), "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := docstore.Close(closeCtx, mongoClient); err != nil {
			log.Warn("mongodb disconnect failed", "error", err)
		}
	}()
	readingsColl := mongoClient.Database(cfg.MongoDatabaseName()).Collection(cfg.MongoCollection)
	log.Info("mongodb connected", "uri", config.RedactURI(mongoURI), "collection", cfg.MongoCollection)

	if cfg.AutoMigrate() {
		if err := repository.EnsureSensorReadingIndexes(ctx, readingsColl); err != nil {
			// The collection belongs to the ingestion pipeline; reads still work without it.
			log.Warn("could not ensure sensor reading index", "error", err)
		}
	}

	// 4. Initialize Redis (optional)
	rdb, err := cache.ConnectRedis(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn("redis unavailable, sensor cache disabled", "error", err)
		rdb = nil
	}
	defer cache.CloseRedis(rdb)
	if rdb != nil {
		log.Info("redis connected", "addr", cfg.RedisAddr, "ttl", cfg.SensorCacheTTL)
	}

	// 5. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(reg)

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	productRepo := repository.NewPgProductRepository(db)
	readingRepo := repository.NewCachedSensorReadingRepository(
		repository.NewMongoSensorReadingRepository(readingsColl),
		rdb,
		cfg.SensorCacheTTL,
		log,
		repository.CacheCounters{Hits: httpMetrics.CacheHits, Misses: httpMetrics.CacheMisses},
	)

	// 7. Initialize Services
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(userService, tokens)
	productService := service.NewProductService(productRepo, userRepo)
	sensorService := service.NewSensorReadingService(readingRepo)

	// 8. Initialize Router & HTTP Server
	trustedProxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		log.Error("invalid trusted proxies", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.Dependencies{
		Logger:         log,
		Tokens:         tokens,
		AuthService:    authService,
		UserService:    userService,
		ProductService: productService,
		SensorService:  sensorService,
		Metrics:        httpMetrics,
		Gatherer:       reg,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		LoginLimiter:   middleware.NewIPRateLimiter(cfg.LoginRatePerMinute),
		TrustedProxies: trustedProxies,
		RequestTimeout: cfg.RequestTimeout,
	})

	server := api.NewServer(":"+cfg.APIPort, router, cfg.RequestTimeout)

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serverErr:
		log.Error("server failed", "port", cfg.APIPort, "error", err)
		os.Exit(1)
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
		return
	}
	log.Info("server stopped gracefully")
}
