package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openhack-labs/openhack-api/internal/config"
	"github.com/openhack-labs/openhack-api/internal/database"
	"github.com/openhack-labs/openhack-api/internal/handler"
	"github.com/openhack-labs/openhack-api/internal/middleware"
	"github.com/openhack-labs/openhack-api/internal/models"
	"github.com/openhack-labs/openhack-api/internal/repository"
	"github.com/openhack-labs/openhack-api/internal/router"
	"github.com/openhack-labs/openhack-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Team{}, &models.Challenge{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	teamRepo := repository.NewTeamRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	leaderboardService := service.NewLeaderboardService(teamRepo, challengeRepo, redisClient, cfg.LeaderboardCacheTTL, logger)
	realtimeService := service.NewRealtimeService(redisClient, cfg.RealtimeChannelBase, natsConn, logger)
	notifier := service.NewLeaderboardBroadcaster(leaderboardService, realtimeService, logger)

	authService := service.NewAuthService(teamRepo, validate, cfg.JWTSecret, cfg.JWTExpiry, logger)
	teamService := service.NewTeamService(teamRepo, submissionRepo, validate, notifier, logger)
	challengeService := service.NewChallengeService(challengeRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, challengeRepo, teamRepo, validate, notifier, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	teamHandler := handler.NewTeamHandler(teamService, logger)
	challengeHandler := handler.NewChallengeHandler(challengeService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, logger)
	realtimeHandler := handler.NewRealtimeHandler(realtimeService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        authHandler,
		TeamHandler:        teamHandler,
		ChallengeHandler:   challengeHandler,
		SubmissionHandler:  submissionHandler,
		LeaderboardHandler: leaderboardHandler,
		RealtimeHandler:    realtimeHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	realtimeService.Start(runCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
