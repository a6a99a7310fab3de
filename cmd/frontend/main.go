package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/speakerhub/frontend/internal/api"
	"github.com/speakerhub/frontend/internal/config"
	"github.com/speakerhub/frontend/internal/events"
	"github.com/speakerhub/frontend/internal/httpserver"
	"github.com/speakerhub/frontend/internal/logging"
	"github.com/speakerhub/frontend/internal/middleware/csrf"
	loggingmw "github.com/speakerhub/frontend/internal/middleware/logging"
	"github.com/speakerhub/frontend/internal/notify"
	"github.com/speakerhub/frontend/internal/requests"
	"github.com/speakerhub/frontend/internal/session"
	"github.com/speakerhub/frontend/internal/speakers"
	"github.com/speakerhub/frontend/internal/tokenstore"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	store, err := tokenstore.NewSQLite(cfg.TokenDB)
	if err != nil {
		log.Fatalf("token store: %v", err)
	}

	producer := events.NewProducer(cfg.EventsBrokers, cfg.EventsTopic, logger)
	center := notify.NewCenter(logger)
	client := api.NewClient(cfg.APIURL)

	sess := session.New(client, store, center, producer, logger)
	reqStore, err := requests.New(sess, client, center, producer, logger)
	if err != nil {
		log.Fatalf("request store: %v", err)
	}
	catalog := speakers.New(sess, client, center, producer, logger)

	// Restore the persisted session; a dead backend at boot is not fatal.
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if err := sess.Bootstrap(bootCtx); err != nil {
		logger.Warn("session_bootstrap_failed", "error", err)
	}
	cancelBoot()

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.SkipPaths = []string{"/health/live", "/health/ready"}
	e.Use(csrf.Middleware(csrfCfg))

	if err := httpserver.Register(e, &httpserver.Deps{
		Session:  sess,
		Requests: reqStore,
		Catalog:  catalog,
		Notify:   center,
	}); err != nil {
		log.Fatalf("register routes: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("frontend listening", "addr", cfg.ListenAddr, "api", cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("token store close error", "error", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("event producer close error", "error", err)
	}
}
