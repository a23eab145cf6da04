package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	appcart "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/application/checkout"
	appevent "github.com/storefront/backend/internal/application/event"
	"github.com/storefront/backend/internal/application/identity"
	appinventory "github.com/storefront/backend/internal/application/inventory"
	apporder "github.com/storefront/backend/internal/application/order"
	appsettings "github.com/storefront/backend/internal/application/settings"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	infrapayment "github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// version is stamped at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("Starting storefront server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	// Initialize database with a GORM logger that writes through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	// Initialize tracing
	tracerCtx := context.Background()
	tracer, err := telemetry.NewTracerProvider(tracerCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:  cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Guest sessions and the token blacklist live in Redis so every
	// instance sees the same state. A single-node deployment without
	// Redis falls back to in-memory stores.
	var sessionStore cache.GuestSessionStore
	var blacklist auth.TokenBlacklist
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.Warn("Redis unreachable, using in-memory session store and token blacklist",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		_ = redisClient.Close()
		sessionStore = cache.NewInMemoryGuestSessionStore(cache.DefaultSessionTTL)
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		cancelPing()
		log.Info("Redis connection established", zap.String("addr", cfg.Redis.Addr()))
		sessionStore = cache.NewRedisGuestSessionStore(redisClient, cache.DefaultSessionTTL)
		blacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
	}
	defer func() {
		if err := sessionStore.Close(); err != nil {
			log.Error("Failed to close session store", zap.Error(err))
		}
	}()

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	audit := persistence.NewGormAuditRecorder(db.DB, log)

	// Initialize event bus and cross-context handlers
	eventBus := event.NewInMemoryEventBus(log)
	appevent.RegisterHandlers(eventBus, log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Failed to stop event bus", zap.Error(err))
		}
	}()

	// Store policy comes from configuration; a settings service backed by
	// the database can replace the static provider without touching callers.
	policy := appsettings.StaticProvider{P: appsettings.FromStoreConfig(cfg.Store)}

	// Payment gateways
	codGateway := infrapayment.NewCODGateway()
	registry := infrapayment.NewRegistry(codGateway)
	if cfg.Payment.Provider == "razorpay" {
		razorpay, err := infrapayment.NewRazorpayGateway(cfg.Payment, log)
		if err != nil {
			log.Warn("Razorpay gateway not configured, online payments disabled", zap.Error(err))
		} else {
			registry = infrapayment.NewRegistry(codGateway, razorpay)
			log.Info("Razorpay gateway registered")
		}
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT)
	cartValidator := appcart.NewValidator(productRepo, inventoryRepo, cartRepo, log)
	cartService := appcart.NewService(cartRepo, productRepo, cartValidator, policy)
	checkoutService := checkout.NewService(
		cartRepo, productRepo, orderRepo, userRepo, inventoryRepo,
		cartValidator, registry, policy, audit, log,
	)
	authService := identity.NewAuthService(userRepo, jwtService, blacklist, cartService, audit, log)
	orderService := apporder.NewService(orderRepo, inventoryRepo, audit, log)
	paymentService := apporder.NewPaymentService(orderRepo, cartRepo, registry, audit, log)
	inventoryService := appinventory.NewService(inventoryRepo, audit, log)
	productService := catalog.NewProductService(productRepo, categoryRepo, audit, log)
	categoryService := catalog.NewCategoryService(categoryRepo, productRepo, audit, log)

	checkoutService.SetEventPublisher(eventBus)
	authService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	productService.SetEventPublisher(eventBus)

	// Unpaid orders release their stock after the reservation TTL
	reaper := apporder.NewReservationReaper(
		orderRepo, inventoryRepo,
		cfg.Reservation.TTL, cfg.Reservation.CheckInterval, cfg.Reservation.BatchSize,
		audit, log,
	)
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go reaper.Run(reaperCtx)

	// Initialize HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	corsConfig.ExposeHeaders = append(corsConfig.ExposeHeaders,
		"X-RateLimit-Limit", "X-RateLimit-Remaining",
	)

	// Middleware order matters: request IDs first so recovery and request
	// logging can tag their output, then security headers, CORS, body
	// limits, and rate limiting.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		// Credential endpoints get a tighter per-IP budget than the rest of
		// the API to slow down brute forcing.
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authLimit := middleware.RateLimit(authLimiter)
		engine.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/v1/auth/") {
				authLimit(c)
				return
			}
			c.Next()
		})
	}

	// Liveness and readiness probes sit outside the API prefix
	handler.NewSystemHandler(db.DB, version).RegisterRoutes(engine)

	// API routes: identity is optional on the way in; handlers that need a
	// customer or a guest session enforce it themselves, and admin routes
	// carry an explicit role check.
	adminOnly := middleware.AdminOnly()
	router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithGroupMiddleware(
			middleware.OptionalJWTAuthMiddleware(jwtService),
			middleware.GuestSession(sessionStore, log),
		),
	).
		Register(handler.NewAuthHandler(authService, sessionStore)).
		Register(handler.NewProductHandler(productService, categoryService)).
		Register(handler.NewCartHandler(cartService)).
		Register(handler.NewCheckoutHandler(checkoutService)).
		Register(handler.NewPaymentHandler(paymentService)).
		Register(handler.NewOrderHandler(orderService, adminOnly)).
		Register(handler.NewInventoryHandler(inventoryService, adminOnly)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	stopReaper()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shut down", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
