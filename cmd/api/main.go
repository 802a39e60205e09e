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

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/webNext25/zoom-smart-dialer/internal/agents"
	"github.com/webNext25/zoom-smart-dialer/internal/audit"
	"github.com/webNext25/zoom-smart-dialer/internal/auth"
	"github.com/webNext25/zoom-smart-dialer/internal/bridge"
	"github.com/webNext25/zoom-smart-dialer/internal/config"
	"github.com/webNext25/zoom-smart-dialer/internal/httpapi"
	"github.com/webNext25/zoom-smart-dialer/internal/recordings"
	"github.com/webNext25/zoom-smart-dialer/internal/settings"
	"github.com/webNext25/zoom-smart-dialer/internal/templates"
	"github.com/webNext25/zoom-smart-dialer/internal/usage"
	"github.com/webNext25/zoom-smart-dialer/internal/users"
	"github.com/webNext25/zoom-smart-dialer/internal/vapi"
	"github.com/webNext25/zoom-smart-dialer/internal/voices"
	"github.com/webNext25/zoom-smart-dialer/pkg/logger"
	"github.com/webNext25/zoom-smart-dialer/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Services
	settingsSvc, err := settings.NewService(settings.NewPostgresRepo(db), cfg.Settings.EncryptionKey, log)
	if err != nil {
		log.Error("settings init failed", "err", err)
		os.Exit(1)
	}
	userSvc := users.NewService(users.NewPostgresRepo(db))
	agentSvc := agents.NewService(agents.NewPostgresRepo(db))
	voiceSvc := voices.NewService(voices.NewPostgresRepo(db))
	recordingSvc := recordings.NewService(recordings.NewPostgresRepo(db))
	templateSvc := templates.NewService(templates.NewPostgresRepo(db))
	usageSvc := usage.NewService(db)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	resolver := settings.NewResolver(settingsSvc, 0, log)

	callManager := bridge.NewManager(bridge.ManagerConfig{
		Factory:           vapi.Factory(vapi.Config{URL: cfg.Vapi.WSURL, Log: log}),
		Sink:              recordings.NewBridgeSink(recordingSvc),
		Resolver:          resolver,
		Usage:             usageSvc,
		Cap:               bridge.NewRedisSessionCap(rdb),
		Log:               log,
		PublicKeyName:     settings.KeyVapiPublicKey,
		FallbackPublicKey: cfg.Vapi.PublicKeyFallback,
		DefaultVoiceID:    cfg.Vapi.DefaultVoiceID,
	})

	h := httpapi.Handlers{
		Auth:       authManager,
		Users:      userSvc,
		Agents:     agentSvc,
		Voices:     voiceSvc,
		Recordings: recordingSvc,
		Templates:  templateSvc,
		Settings:   settingsSvc,
		Usage:      usageSvc,
		Audit:      auditSvc,
		Bridge:     callManager,
		Log:        log,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	// End live call sessions before the HTTP listener closes so recordings
	// and usage are flushed.
	callManager.Close(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
