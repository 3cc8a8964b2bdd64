package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"designghar-service/internal/api"
	"designghar-service/internal/auth"
	"designghar-service/internal/cache"
	"designghar-service/internal/config"
	"designghar-service/internal/logger"
	"designghar-service/internal/service"
	"designghar-service/internal/store"
	"designghar-service/internal/telemetry"
	"designghar-service/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const healthPath = "/healthz"

func main() {
	// A missing .env is fine; the environment may be set another way.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("error loading configuration", zap.Error(err))
	}

	log, err := logger.New(logger.Config{
		Level:         cfg.LogLevel,
		IsDevelopment: !cfg.IsProduction(),
		ServiceName:   cfg.AppName,
	})
	if err != nil {
		zap.NewExample().Fatal("error building logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if envErr != nil {
		log.Info("no .env file loaded, relying on system environment")
	}
	log.Info("starting service", zap.String("env", cfg.AppEnv), zap.String("log_level", cfg.LogLevel))

	shutdownTracing, err := telemetry.Init(cfg.AppName, cfg.AppEnv, cfg.Tracing.Enabled, os.Stdout)
	if err != nil {
		log.Fatal("failed to initialise tracing", zap.Error(err))
	}

	// --- Database Connection ---
	client, err := store.Connect(context.Background(), cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	dbStore := store.NewMongoStore(client.Database(cfg.Mongo.Database))

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := dbStore.EnsureIndexes(indexCtx); err != nil {
		cancelIndex()
		log.Fatal("failed to create indexes", zap.Error(err))
	}
	cancelIndex()
	log.Info("database connection established", zap.String("database", cfg.Mongo.Database))

	readCache, redisClient := setupCache(cfg, log)
	uploader := setupUploader(cfg, log)

	// --- Services ---
	jwtMgr := auth.NewJWTManager(auth.JWTConfig{Issuer: cfg.JWT.Issuer, Secret: cfg.JWT.Secret, TTL: cfg.JWT.TTL})
	authSvc := service.NewAuthService(dbStore, jwtMgr, log)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authSvc.SeedRootAdmin(seedCtx, cfg.RootAdmin.Email, cfg.RootAdmin.Password); err != nil {
		log.Error("failed to seed root admin", zap.Error(err))
	}
	cancelSeed()

	httpAPIHandler := api.NewHTTPHandler(api.Deps{
		Products:       service.NewProductService(dbStore, readCache, log),
		Categories:     service.NewCategoryService(dbStore, readCache, log),
		Banners:        service.NewBannerService(dbStore),
		Offers:         service.NewOfferService(dbStore),
		Auth:           authSvc,
		JWT:            jwtMgr,
		Uploader:       uploader,
		Logger:         log,
		MaxUploadBytes: cfg.HttpServer.MaxUploadBytes,
	})

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, cfg, log)
	registerHealthCheck(httpRouter, cfg, log, dbStore)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      telemetry.Middleware(cfg.AppName, healthPath)(httpRouter),
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server ListenAndServe error", zap.Error(err))
		}
		log.Info("HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	healthCtx, stopHealth := context.WithCancel(context.Background())
	var grpcServer *grpc.Server
	if cfg.GrpcServer.Enabled {
		grpcHealth := api.NewGRPCHealth(dbStore, 15*time.Second, log)
		grpcServer = grpcHealth.NewGRPCServer()
		go grpcHealth.Run(healthCtx)

		grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
		if err != nil {
			log.Fatal("failed to listen for gRPC", zap.String("port", cfg.GrpcServer.Port), zap.Error(err))
		}
		go func() {
			log.Info("gRPC server listening", zap.String("port", cfg.GrpcServer.Port))
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				log.Fatal("gRPC server Serve error", zap.Error(err))
			}
			log.Info("gRPC server has stopped")
		}()
	}

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(log, shutdownTargets{
		http:    httpServer,
		grpc:    grpcServer,
		health:  stopHealth,
		db:      dbStore,
		redis:   redisClient,
		tracing: shutdownTracing,
	}, shutdownComplete)

	<-shutdownComplete
	log.Info("service shutdown sequence finished")
}

// setupCache returns the Redis read cache, or a no-op cache when Redis is not
// configured or unreachable.
func setupCache(cfg *config.Config, log *zap.Logger) (cache.Cache, *redis.Client) {
	if cfg.Redis.Addr == "" {
		log.Info("read cache disabled")
		return cache.Nop{}, nil
	}
	client, err := cache.Connect(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("redis unavailable, read cache disabled", zap.Error(err))
		return cache.Nop{}, nil
	}
	log.Info("read cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	return cache.NewRedisCache(client, cache.WithTTL(cfg.Redis.TTL)), client
}

func setupUploader(cfg *config.Config, log *zap.Logger) upload.Uploader {
	if !cfg.Cloudinary.Enabled() {
		log.Warn("cloudinary credentials not set, image uploads are disabled")
		return upload.Disabled{}
	}
	u, err := upload.NewCloudinary(upload.CloudinaryConfig{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
		Folder:    cfg.Cloudinary.Folder,
	})
	if err != nil {
		log.Fatal("failed to initialise cloudinary", zap.Error(err))
	}
	return u
}

func setupBaseMiddleware(router *chi.Mux, cfg *config.Config, log *zap.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.HttpServer.RequestTimeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HttpServer.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	log.Debug("base HTTP middleware registered")
}

func registerHealthCheck(router *chi.Mux, cfg *config.Config, log *zap.Logger, db api.Pinger) {
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dbStatus := "healthy"
		if err := db.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
			log.Warn("health check database ping failed", zap.Error(err))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK) // Always 200, the payload carries the detail.
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": cfg.AppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"database":    dbStatus,
		})
	})
}

type shutdownTargets struct {
	http    *http.Server
	grpc    *grpc.Server // nil when disabled
	health  context.CancelFunc
	db      *store.MongoStore
	redis   *redis.Client // nil when the cache is disabled
	tracing telemetry.ShutdownFunc
}

func waitForShutdown(log *zap.Logger, t shutdownTargets, shutdownComplete chan struct{}) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	receivedSignal := <-sigChan
	log.Info("received signal, starting graceful shutdown", zap.String("signal", receivedSignal.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	t.health()

	stoppedGrpc := make(chan struct{})
	go func() {
		if t.grpc != nil {
			t.grpc.GracefulStop()
		}
		close(stoppedGrpc)
	}()

	if err := t.http.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		log.Info("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
	case <-shutdownCtx.Done():
		log.Warn("gRPC server graceful shutdown timed out, forcing stop", zap.Error(shutdownCtx.Err()))
		if t.grpc != nil {
			t.grpc.Stop()
		}
	}

	if t.redis != nil {
		if err := t.redis.Close(); err != nil {
			log.Warn("error closing redis client", zap.Error(err))
		}
	}
	if err := t.db.Close(shutdownCtx); err != nil {
		log.Warn("error closing database connection", zap.Error(err))
	}
	if err := t.tracing(shutdownCtx); err != nil {
		log.Warn("error flushing traces", zap.Error(err))
	}

	log.Info("graceful shutdown sequence completed")
}
