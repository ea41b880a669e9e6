package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/efootball-hub/brackets"
	"github.com/Dosada05/efootball-hub/config"
	"github.com/Dosada05/efootball-hub/db"
	"github.com/Dosada05/efootball-hub/handlers"
	"github.com/Dosada05/efootball-hub/metrics"
	"github.com/Dosada05/efootball-hub/repositories"
	api "github.com/Dosada05/efootball-hub/routes"
	"github.com/Dosada05/efootball-hub/services"
	"github.com/Dosada05/efootball-hub/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Duration("flush_interval", cfg.FlushInterval))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn, logger); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	// LISTEN/NOTIFY для синхронизации между инстансами
	notifier := repositories.NewPostgresNotifier(cfg.DatabaseURL, logger)
	go notifier.Run(appCtx)
	defer notifier.Close()

	stateRepo := repositories.NewPostgresStateRepository(dbConn, notifier, logger)
	commentRepo := repositories.NewPostgresCommentRepository(dbConn, notifier, logger)
	logger.Info("repositories initialized")

	// Загрузчик файлов (Cloudflare R2) необязателен
	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(appCtx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
			Endpoint:        cfg.R2.Endpoint,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 is not configured, proof uploads are disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	summaries, err := services.NewTemplateSummaryGenerator()
	if err != nil {
		logger.Error("failed to initialize match summaries", slog.Any("error", err))
		os.Exit(1)
	}

	var mailer services.Mailer
	if cfg.SMTPEnabled() {
		emailService, err := services.NewEmailService(services.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		mailer = emailService
	} else {
		logger.Warn("SMTP is not configured, emails are written to the log")
		mailer = services.NewLogMailer(logger)
	}

	// Инициализация сервисов
	authService := services.NewAuthService(cfg.JWTSecretKey, cfg.AdminPasswordHash)
	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH is empty, admin login is disabled")
	}

	tournamentService := services.NewTournamentService(stateRepo, commentRepo, services.TournamentServiceOptions{
		FlushInterval: cfg.FlushInterval,
		Summaries:     summaries,
		Broadcaster:   wsHub,
		Uploader:      uploader,
		Metrics:       appMetrics,
		Logger:        logger,
	})
	startCtx, cancelStart := context.WithTimeout(appCtx, 30*time.Second)
	err = tournamentService.Start(startCtx)
	cancelStart()
	if err != nil {
		logger.Error("failed to start tournament service", slog.Any("error", err))
		os.Exit(1)
	}
	ownerAccess := services.NewOwnerAccessService(tournamentService, authService, mailer, cfg.PublicURL, logger)
	dashboardService := services.NewDashboardService(tournamentService)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, ownerAccess)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, ownerAccess)
	teamHandler := handlers.NewTeamHandler(tournamentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Validator:      authService,
		Gatherer:       registry,
	}, authHandler, tournamentHandler, teamHandler, dashboardHandler, webSocketHandler)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	// Сбрасываем несохранённые изменения до закрытия базы
	closeCtx, cancelClose := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelClose()
	if err := tournamentService.Close(closeCtx); err != nil {
		logger.Error("failed to stop tournament service", slog.Any("error", err))
	}
	stopApp()
	logger.Info("application exited")
}
