// main.go - Entry point for the blog backend server

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"go-blog-backend/cache"
	"go-blog-backend/config"
	"go-blog-backend/database"
	"go-blog-backend/handlers"
	"go-blog-backend/jobs"
	"go-blog-backend/logger"
	"go-blog-backend/metrics"
	"go-blog-backend/router"
	"go-blog-backend/security"
	"go-blog-backend/storage"
)

func main() {
	// STEP 1: Load configuration and set up logging
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogJSON)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	m := metrics.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// STEP 2: Connect to the database and check the schema
	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database connection error")
	}
	defer database.Close(db)

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.WithError(err).Fatal("auto migration failed")
		}
	} else {
		missing, err := database.Diff(db)
		if err != nil {
			log.WithError(err).Fatal("schema check failed")
		}
		if len(missing) > 0 {
			log.WithField("missing", strings.Join(missing, ", ")).
				Fatal("database schema is out of date, run \"migrate up\" first")
		}
	}
	sessions := database.NewSessions(db, database.PoolSize(cfg), cfg.DBAcquireTimeout, m)
	if err := database.EnsureDefaultAdmin(ctx, sessions, cfg, log); err != nil {
		log.WithError(err).Fatal("create default administrator")
	}

	// STEP 3: Optional cache, upload storage and the live feed
	var c cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, m)
		if err != nil {
			log.WithError(err).Fatal("cache connection error")
		}
		defer rc.Close()
		c = rc
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("storage setup error")
	}

	hub := handlers.NewHub(log)
	go hub.Run(ctx)

	scheduler := cron.New()
	if c.Enabled() {
		viewSync := &jobs.ViewSync{Sessions: sessions, Cache: c, Log: log, Metrics: m}
		if err := viewSync.Schedule(scheduler, cfg.SyncViewsSchedule); err != nil {
			log.WithError(err).Fatal("schedule jobs")
		}
	}
	scheduler.Start()

	// STEP 4: Build the router and serve until a signal arrives
	engine := router.New(handlers.Deps{
		Config:   cfg,
		Sessions: sessions,
		Tokens:   security.NewTokens(cfg.SecretKey, cfg.TokenTTL),
		Cache:    c,
		Store:    store,
		Hub:      hub,
		Log:      log,
		Metrics:  m,
	})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	<-scheduler.Stop().Done()
	log.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint, cfg.S3PublicURL)
	}
	return storage.NewLocal(cfg.UploadDir, cfg.UploadBaseURL)
}
