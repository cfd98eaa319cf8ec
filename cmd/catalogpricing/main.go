package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	catalogapp "github.com/wyfcoding/catalogpricing/internal/catalog/application"
	catalogcache "github.com/wyfcoding/catalogpricing/internal/catalog/infrastructure/cache"
	"github.com/wyfcoding/catalogpricing/internal/catalog/infrastructure/client"
	cataloghttp "github.com/wyfcoding/catalogpricing/internal/catalog/interfaces/http"
	"github.com/wyfcoding/catalogpricing/internal/pricing/application"
	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
	"github.com/wyfcoding/catalogpricing/internal/pricing/infrastructure/messaging"
	"github.com/wyfcoding/catalogpricing/internal/pricing/infrastructure/persistence/mysql"
	pricinghttp "github.com/wyfcoding/catalogpricing/internal/pricing/interfaces/http"
	"github.com/wyfcoding/catalogpricing/pkg/cache"
	"github.com/wyfcoding/catalogpricing/pkg/config"
	"github.com/wyfcoding/catalogpricing/pkg/db"
	"github.com/wyfcoding/catalogpricing/pkg/metrics"
	"github.com/wyfcoding/catalogpricing/pkg/middleware"
	"github.com/wyfcoding/catalogpricing/pkg/mq"
	"github.com/wyfcoding/catalogpricing/pkg/ratelimit"
	"github.com/wyfcoding/pkg/logging"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", config.GetEnv("APP_CONFIG", "configs/catalogpricing/config.toml"), "config file path")

func main() {
	flag.Parse()

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. logging
	logging.InitLogger(cfg.ServiceName, "catalogpricing", cfg.Logger.Level)
	log := logging.NewFromConfig(logging.Config{
		Service:    cfg.ServiceName,
		Module:     "catalogpricing",
		Level:      cfg.Logger.Level,
		File:       cfg.Logger.File,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
	})
	slog.SetDefault(log.Logger)

	// 3. metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.ServiceName)
		if err := m.Register(nil); err != nil {
			log.Error("failed to register metrics", "error", err)
			os.Exit(1)
		}
	}

	// 4. infrastructure
	var (
		store   cache.Store
		limiter ratelimit.RateLimiter
		cleanup []func()
	)
	switch cfg.Cache.Driver {
	case "redis":
		redisCache, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			log.Error("failed to init redis", "error", err)
			os.Exit(1)
		}
		store = redisCache
		limiter = ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		cleanup = append(cleanup, func() { _ = redisCache.Close() })
	default:
		mem, err := cache.NewMemory(cfg.Cache.MemorySize)
		if err != nil {
			log.Error("failed to init memory cache", "error", err)
			os.Exit(1)
		}
		store = mem
		log.Warn("using in-process catalog cache; stampede guard is per instance")
	}

	database, err := db.Init(cfg.Database, log)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	cleanup = append(cleanup, func() { _ = database.Close() })
	if cfg.Database.AutoMigrate || cfg.Environment == "dev" {
		if err := database.AutoMigrate(&mysql.ProductModel{}); err != nil {
			log.Error("failed to migrate database", "error", err)
		}
	}

	var publisher domain.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := mq.NewProducer(cfg.Kafka)
		publisher = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
		cleanup = append(cleanup, func() { _ = producer.Close() })
	}

	// 5. catalog
	catalogClient := client.NewCatalogClient(cfg.Catalog, m)
	guard := catalogcache.NewGuard(store, cfg.Catalog.Timeout())
	snapshots := catalogcache.NewSnapshotCache(store, guard, catalogClient, cfg.Cache, m)
	lookup := catalogapp.NewLookupService(snapshots)
	cacheAdmin := catalogapp.NewCacheAdminService(store, m)

	// 6. pricing
	settings, err := application.NewSettings(cfg)
	if err != nil {
		log.Error("invalid pricing settings", "error", err)
		os.Exit(1)
	}
	products := mysql.NewProductRepository(database.DB)
	querySvc := application.NewPricingQueryService(products, lookup, settings)
	commandSvc := application.NewPricingCommandService(products)
	feeSvc := application.NewFeeService(lookup, settings)
	reindex := application.NewReindexJob(products, lookup, publisher, m, log.Logger, cfg.Catalog.Currency, cfg.Reindex)

	// 7. HTTP
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(middleware.GinRecoveryMiddleware(), middleware.GinLoggingMiddleware(), middleware.GinMetricsMiddleware(m))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})
	if m != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	adminLimit := middleware.RateLimitMiddleware(limiter, cfg.RateLimit, "admin")
	root := r.Group("")
	cataloghttp.NewCacheHandler(cacheAdmin).RegisterRoutes(root, adminLimit)
	pricinghttp.NewPricingHandler(commandSvc, querySvc, feeSvc).RegisterRoutes(root, adminLimit)

	// 8. run
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(sigCtx)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g.Go(func() error {
		log.Info("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Reindex.Enabled {
		g.Go(func() error { return reindex.Start(ctx) })
	}

	// 9. graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
	}
	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}
	log.Info("server stopped")
}
