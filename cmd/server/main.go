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

	"anoa.com/devsearch/internal/bootstrap"
	"anoa.com/devsearch/internal/config"
	"anoa.com/devsearch/internal/jobs"
	"anoa.com/devsearch/internal/lifecycle"
	searchService "anoa.com/devsearch/internal/modules/search/service"
	"anoa.com/devsearch/internal/server"
	"anoa.com/devsearch/pkg/database"
	"anoa.com/devsearch/pkg/logger"
	"anoa.com/devsearch/pkg/mailer"
	"anoa.com/devsearch/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load config")
	}
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	db, err := database.Connect(database.Config{
		URL:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		Debug:    !cfg.IsProduction(),
	})
	if err != nil {
		logger.Log.WithError(err).Fatal("database unavailable")
	}

	mail := mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err := lifecycle.Register(db, mail); err != nil {
		logger.Log.WithError(err).Fatal("failed to register sync callbacks")
	}

	if err := bootstrap.Migrate(db); err != nil {
		logger.Log.WithError(err).Fatal("migration failed")
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		logger.Log.WithError(err).Fatal("failed to seed roles")
	}
	if cfg.AdminUsername != "" {
		if err := bootstrap.SeedAdminUser(db, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Log.WithError(err).Fatal("failed to seed admin user")
		}
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("redis unavailable")
	}
	if redisClient == nil {
		logger.Log.Warn("REDIS_URL not set: rate limits, logout and live inbox are disabled")
	}

	var imageStorage storage.ImageStorage
	cloudinaryCfg := storage.CloudinaryConfig{
		URL:       cfg.CloudinaryURL,
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	}
	if cloudinaryCfg.Enabled() {
		imageStorage, err = storage.NewCloudinaryStorage(cloudinaryCfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to initialize cloudinary storage")
		}
	} else {
		logger.Log.Warn("cloudinary not configured: uploads are disabled")
	}

	var search searchService.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliClient := meilisearch.New(meiliHost(cfg.MeiliSearchHost), meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		search = searchService.NewMeiliSearchService(meiliClient)
	} else {
		logger.Log.Warn("MEILISEARCH_HOST not set: full-text search is disabled")
	}

	scheduler := jobs.NewScheduler()

	srv, err := server.NewServer(cfg, server.Deps{
		DB:           db,
		Redis:        redisClient,
		ImageStorage: imageStorage,
		Search:       search,
		Scheduler:    scheduler,
	})
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to build server")
	}

	scheduler.Start()

	httpServer := srv.HTTPServer(":" + cfg.Port)
	go func() {
		logger.Log.WithField("addr", httpServer.Addr).Info("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("http shutdown")
	}
	if err := scheduler.Stop(ctx); err != nil {
		logger.Log.WithError(err).Error("scheduler shutdown")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func meiliHost(host string) string {
	if !strings.HasPrefix(host, "http") {
		return "http://" + host + ":7700"
	}
	return host
}
