// @title           Voice Agent Server
// @version         1.0
// @description     Control plane for embeddable voice AI agents.
// @description     Manages agents, embed session admission and LiveKit room provisioning.

// @host      localhost:4003
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token from /api/auth/login

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"voiceagent-server/internal/config"
	"voiceagent-server/internal/domain/agent"
	"voiceagent-server/internal/domain/session"
	"voiceagent-server/internal/domain/user"
	"voiceagent-server/internal/infrastructure/auth"
	"voiceagent-server/internal/infrastructure/cache"
	"voiceagent-server/internal/infrastructure/database"
	"voiceagent-server/internal/infrastructure/database/repository/agentrepo"
	"voiceagent-server/internal/infrastructure/database/repository/sessionrepo"
	"voiceagent-server/internal/infrastructure/database/repository/userrepo"
	"voiceagent-server/internal/infrastructure/livekit"
	"voiceagent-server/internal/infrastructure/logger"
	"voiceagent-server/internal/infrastructure/observability"
	"voiceagent-server/internal/infrastructure/sweeper"
	"voiceagent-server/internal/interfaces/httpserver"
	"voiceagent-server/internal/utils/crypto"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	sweeper    *sweeper.Sweeper
	log        zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(httpServer *httpserver.HTTPServer, sw *sweeper.Sweeper, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		sweeper:    sw,
		log:        log,
	}
}

// Start runs the application.
func (a *Application) Start(ctx context.Context) error {
	// Start the preview agent sweeper
	a.sweeper.Start(ctx)

	// Run HTTP server (blocks until context cancelled)
	err := a.httpServer.Run(ctx)

	// Stop the sweeper
	a.sweeper.Stop()

	return err
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(fmt.Sprintf("failed to configure logger: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup observability
	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	// Connect to Postgres and run migrations
	gormLogLevel := gormlogger.Warn
	if cfg.IsProduction() {
		gormLogLevel = gormlogger.Silent
	}
	db, err := database.Connect(database.Config{
		DatabaseURL: cfg.DatabaseURL,
		MaxIdle:     cfg.DBMaxIdle,
		MaxOpen:     cfg.DBMaxOpen,
		MaxLifetime: cfg.DBMaxLifetime,
		LogLevel:    gormLogLevel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migration(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	// Redis cache is optional: an empty address disables caching
	redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	// API key encryption
	cipher, err := crypto.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize encryption")
	}

	// Repositories
	userStore := userrepo.NewUserGormRepository(db)
	agentStore := agentrepo.NewAgentGormRepository(db)
	sessionStore := sessionrepo.NewSessionGormRepository(db)

	// JWT token manager
	tokens := auth.NewTokenManager(cfg, log)

	// LiveKit clients
	roomClient, err := livekit.NewRoomClient(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize livekit client")
	}
	tokenGen := livekit.NewTokenGenerator(cfg)

	// Domain services
	userService := user.NewService(userStore, tokens, cfg.BcryptCost, log)
	agentService := agent.NewService(agentStore, cipher, cfg.PreviewAgentTTL, log)
	sessionService := session.NewService(
		sessionStore,
		agentStore,
		userStore,
		session.NewQuotaEvaluator(sessionStore),
		roomClient,
		tokenGen,
		cfg.LiveKitURL,
		cfg.AgentPoolName,
		cfg.EnforceOrigin(),
		cfg.CredentialTTLSlack,
		log,
	)

	// Preview agent sweeper, doubling as the room occupancy sampler
	sw := sweeper.NewSweeper(agentStore, roomClient, cfg.PreviewSweepEvery, log)

	// Initialize HTTP server
	httpServer := httpserver.New(cfg, log, userService, agentService, sessionService, tokens, redisCache)

	// Create and start application
	app := NewApplication(httpServer, sw, log)

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
