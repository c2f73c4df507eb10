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

	"github.com/Dosada05/quizbowl-system/config"
	"github.com/Dosada05/quizbowl-system/db"
	"github.com/Dosada05/quizbowl-system/handlers"
	"github.com/Dosada05/quizbowl-system/repositories"
	api "github.com/Dosada05/quizbowl-system/routes"
	"github.com/Dosada05/quizbowl-system/services"
	"github.com/Dosada05/quizbowl-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("scorecard archive enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("scorecard archive disabled")
	}

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	aliasRepo := repositories.NewPostgresTeamAliasRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.TokenTTL)
	tournamentService := services.NewTournamentService(tournamentRepo, aliasRepo, playerRepo)
	seedingService := services.NewSeedingService(tournamentRepo, gameRepo, aliasRepo, logger)
	bracketService := services.NewBracketService(tournamentRepo, gameRepo, aliasRepo, seedingService, logger)
	scheduleService := services.NewScheduleService(tournamentRepo, gameRepo, aliasRepo, logger)
	scoreService := services.NewScoreService(gameRepo, aliasRepo, playerRepo, uploader, logger)
	logger.Info("services initialized")

	var scheduler *services.MaterializeScheduler
	if cfg.MaterializeInterval > 0 {
		scheduler = services.NewMaterializeScheduler(tournamentRepo, bracketService, cfg.MaterializeInterval, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error("failed to start materialize scheduler", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("materialize scheduler started", slog.Duration("interval", cfg.MaterializeInterval))
	}

	authHandler := handlers.NewAuthHandler(authService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	bracketHandler := handlers.NewBracketHandler(bracketService, seedingService, scheduleService)
	scoreHandler := handlers.NewScoreHandler(scoreService)

	router := chi.NewRouter()
	api.SetupRoutes(router, cfg.JWTSecretKey, authHandler, tournamentHandler, bracketHandler, scoreHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if scheduler != nil {
			if err := scheduler.Stop(); err != nil {
				logger.Error("failed to stop materialize scheduler", slog.Any("error", err))
			}
		}
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if err := server.Close(); err != nil {
				logger.Error("forced shutdown failed", slog.Any("error", err))
			}
		}
	}

	logger.Info("server stopped")
}
