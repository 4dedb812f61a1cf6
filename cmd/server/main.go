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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mstepanov/dropmate/internal/config"
	"github.com/mstepanov/dropmate/internal/es"
	"github.com/mstepanov/dropmate/internal/handlers"
	"github.com/mstepanov/dropmate/internal/logging"
	"github.com/mstepanov/dropmate/internal/mail"
	authmw "github.com/mstepanov/dropmate/internal/middleware/auth"
	"github.com/mstepanov/dropmate/internal/middleware/csrf"
	loggingmw "github.com/mstepanov/dropmate/internal/middleware/logging"
	"github.com/mstepanov/dropmate/internal/mykafka"
	"github.com/mstepanov/dropmate/internal/service/search"
	"github.com/mstepanov/dropmate/internal/service/token"
	httpserver "github.com/mstepanov/dropmate/internal/transport/http"
	"github.com/mstepanov/dropmate/internal/view"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}

	vaultKey := configuration.VaultKey(logger)

	mailer, err := mail.NewFromConfig(configuration)
	if err != nil {
		logger.Error("mailer init failed", "error", err)
		os.Exit(1)
	}
	if configuration.SMTP_HOST == "" {
		logger.Warn("SMTP is not configured, emails will be written to the log")
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	} else {
		logger.Warn("KAFKA_ADDRESS is not set, audit events are disabled")
	}

	searchSvc := &search.Service{DB: db, Index: "products"}
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			logger.Error("elasticsearch init failed", "error", err)
			os.Exit(1)
		}
		searchSvc.ES = esClient
	} else {
		logger.Info("ES_URL is not set, product search uses the database")
	}

	tokens := &token.Service{DB: db, Secret: []byte(configuration.APP_SECRET_KEY)}

	renderer, err := view.New()
	if err != nil {
		logger.Error("template init failed", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(csrf.Middleware(csrf.Config{Secure: configuration.COOKIE_SECURE}))
	e.Static("/static", "web/static")

	deps := httpserver.Deps{
		DB:          db,
		PageHandler: &handlers.PageHandler{DB: db},
		AuthHandler: &handlers.AuthHandler{
			DB:            db,
			Tokens:        tokens,
			Mailer:        mailer,
			Producer:      producer,
			BaseURL:       configuration.BASE_URL,
			SecureCookies: configuration.COOKIE_SECURE,
		},
		ProductHandler:  &handlers.ProductHandler{DB: db, Search: searchSvc},
		OrderHandler:    &handlers.OrderHandler{DB: db},
		SettingsHandler: &handlers.SettingsHandler{DB: db, VaultKey: vaultKey, Producer: producer},
		Auth:            &authmw.Middleware{Tokens: tokens, SecureCookies: configuration.COOKIE_SECURE},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "addr", configuration.HTTP_ADDR)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
