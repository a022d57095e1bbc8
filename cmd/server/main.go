// Package main runs the live meeting list service: it proxies the realtime
// video provider's API, reconciles session snapshots and lifecycle events
// into one ordered meeting list, and pushes updates to browsers over
// websocket.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Amazing-Persona-101/videome/config"
	"github.com/Amazing-Persona-101/videome/internal/api"
	"github.com/Amazing-Persona-101/videome/internal/details"
	"github.com/Amazing-Persona-101/videome/internal/groups"
	"github.com/Amazing-Persona-101/videome/internal/meetings"
	"github.com/Amazing-Persona-101/videome/internal/metrics"
	"github.com/Amazing-Persona-101/videome/internal/middleware"
	"github.com/Amazing-Persona-101/videome/internal/provider"
	"github.com/Amazing-Persona-101/videome/internal/realtime"
	"github.com/Amazing-Persona-101/videome/pkg/redis"
	"github.com/Amazing-Persona-101/videome/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	m := metrics.New()

	catalog, err := groups.Load(cfg.Meetings.GroupsFile)
	if err != nil {
		logger.Fatal("load group catalog", zap.Error(err))
	}
	logger.Info("group catalog loaded", zap.Int("groups", catalog.Len()))

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis disabled", zap.Error(err))
			rdb = nil
		}
	}

	providerClient := provider.NewClient(cfg.Provider.BaseURL, cfg.Provider.OrgID, cfg.Provider.APIKey, logger)
	enricher := details.NewEnricher(providerClient, catalog, rdb, cfg.Meetings.DetailsCacheTTL, logger)

	reducer := meetings.NewReducer(logger, meetings.WithObserver(m))
	store := meetings.NewStore(reducer, cfg.Meetings.TickInterval, logger)
	store.Start()
	defer store.Stop()

	loader := api.NewSnapshotLoader(providerClient, enricher, cfg.Meetings.SessionDenylist, m, logger)
	loadCtx, cancelLoad := context.WithTimeout(ctx, 30*time.Second)
	if rows, err := loader.Load(loadCtx); err != nil {
		logger.Warn("initial snapshot load failed, starting empty", zap.Error(err))
	} else {
		store.Init(rows)
	}
	cancelLoad()

	hub := realtime.NewHub(logger)
	subID, updates := store.Subscribe()
	defer store.Unsubscribe(subID)
	go func() {
		for views := range updates {
			hub.BroadcastViews(views)
		}
	}()

	var consumer *realtime.Consumer
	if cfg.Provider.WebsocketURL != "" {
		consumer = realtime.NewConsumer(cfg.Provider.WebsocketURL, store, m, logger)
		consumer.OnReady(hub.BroadcastReady)
		consumer.Start()
		defer consumer.Stop()
	} else {
		logger.Warn("PROVIDER_WS_URL not set, lifecycle event feed disabled")
	}

	handler := api.NewHandler(store, providerClient, enricher, loader, cfg.Provider.WatermarkURL, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.GET("/api/meetings", handler.ListMeetings)
	router.POST("/api/meetings", handler.CreateMeeting)
	router.POST("/api/meetings/refresh", handler.RefreshSnapshot)
	router.PUT("/api/meetings/:id/participants", handler.JoinMeeting)
	router.GET("/api/meetings/:id/details", handler.MeetingDetails)
	router.GET("/api/identity", handler.GuestIdentity)

	router.GET("/ws", realtime.ServeWs(hub, store, cfg.Server.CORSAllowedOrigins, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig = encCfg
	if os.Getenv("LOG_FORMAT") == "console" {
		cfg.Encoding = "console"
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
