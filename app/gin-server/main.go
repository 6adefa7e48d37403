package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/visadesk/config"
	"github.com/yoockh/visadesk/internal/api/handlers"
	"github.com/yoockh/visadesk/internal/api/middleware"
	"github.com/yoockh/visadesk/internal/api/routes"
	"github.com/yoockh/visadesk/internal/cache"
	"github.com/yoockh/visadesk/internal/logger"
	"github.com/yoockh/visadesk/internal/publicurl"
	"github.com/yoockh/visadesk/internal/repositories/memory"
	mongorepo "github.com/yoockh/visadesk/internal/repositories/mongo"
	pgrepo "github.com/yoockh/visadesk/internal/repositories/postgres"
	"github.com/yoockh/visadesk/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().Fatalf("config error: %v", err)
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	// Record store
	var repo pgrepo.VisaRepository
	if cfg.PostgresURI != "" {
		if err := config.InitPostgres(cfg.PostgresURI, cfg.AutoMigrate); err != nil {
			log.Fatalf("PostgreSQL init error: %v", err)
		}
		repo = pgrepo.NewVisaRepo(config.PostgresDB)
		log.Info("PostgreSQL connected")
	} else {
		repo = memory.NewVisaRepo()
		log.Warn("POSTGRES_URI not set, using in-memory record store")
	}

	// Object store
	ctx := context.Background()
	store, err := config.InitStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	log.WithField("driver", cfg.StorageDriver).Info("object storage ready")

	// Lookup cache (optional)
	var lookupCache cache.LookupCache
	if cfg.RedisAddr != "" {
		if err := config.InitRedis(cfg.RedisAddr); err != nil {
			log.Fatalf("Redis init error: %v", err)
		}
		lookupCache = cache.NewRedisLookupCache(config.RedisClient, cfg.LookupCacheTTL)
		log.Info("Redis connected")
	}

	// Intake audit (optional)
	var auditRepo mongorepo.IntakeAuditRepository
	if cfg.MongoURI != "" {
		if err := config.InitMongo(cfg.MongoURI); err != nil {
			log.Fatalf("MongoDB init error: %v", err)
		}
		if err := config.EnsureMongoIndexes(cfg.MongoDB, cfg.AuditTTL); err != nil {
			log.WithError(err).Warn("mongo index setup failed")
		}
		auditRepo = mongorepo.NewIntakeAuditRepo(config.MongoClient.Database(cfg.MongoDB))
		log.Info("MongoDB connected")
	}

	resolver := publicurl.New(cfg.PublicURLMode, cfg.PublicBucketURL, cfg.ImageRoute)

	visaSvc := services.NewVisaService(services.VisaDeps{
		Repo:     repo,
		Store:    store,
		Resolver: resolver,
		Cache:    lookupCache,
		Audit:    auditRepo,
		Logger:   log,
	})
	imageSvc := services.NewImageService(store, resolver, log)
	auditSvc := services.NewAuditService(auditRepo)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS())

	routes.RegisterRoutes(r, routes.Deps{
		Visa:            handlers.NewVisaHandler(visaSvc, cfg.MaxUploadBytes),
		Image:           handlers.NewImageHandler(imageSvc),
		Admin:           handlers.NewAdminHandler(visaSvc, imageSvc, auditSvc, cfg.MaxUploadBytes),
		AdminCredential: cfg.Admin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	if config.MongoClient != nil {
		_ = config.MongoClient.Disconnect(shutdownCtx)
	}
	if config.RedisClient != nil {
		_ = config.RedisClient.Close()
	}
	log.Info("server stopped")
}
