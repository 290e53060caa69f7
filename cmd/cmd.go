package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barrierfree-backend/internal/config"
	"barrierfree-backend/internal/handlers"
	"barrierfree-backend/internal/repository"
	"barrierfree-backend/internal/rowstore"
	"barrierfree-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	configPath := "config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Open the row store
	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to open row store")
	}
	defer closeBackend()

	store := rowstore.NewStore(backend, rowstore.Options{
		BatchSize:       cfg.Store.BatchSize,
		BatchDelay:      cfg.Store.BatchDelay,
		WritesPerSecond: cfg.Store.WritesPerSecond,
	})

	if err := repository.InitTables(ctx, store); err != nil {
		log.Fatal().Err(err).Msg("Failed to init tables")
	}
	log.Info().Str("backend", cfg.Store.Backend).Msg("Row store ready")

	// Initialize repositories
	userRepo := repository.NewUserRepository(store)
	reportRepo := repository.NewReportRepository(store)
	verificationRepo := repository.NewVerificationRepository(store)
	questRepo := repository.NewQuestRepository(store)
	userQuestRepo := repository.NewUserQuestRepository(store)
	teamRepo := repository.NewTeamRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	// Initialize services
	identity := services.NewIdentityService(userRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	wsHub := services.NewWSHub()
	pusher, err := services.NewPusher(cfg.APNs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push client")
	}
	notificationService := services.NewNotificationService(notificationRepo, userRepo, wsHub, pusher)
	progress := services.NewProgressEngine(userRepo, questRepo, userQuestRepo, notificationService)
	reportService := services.NewReportService(reportRepo, progress)
	verificationService := services.NewVerificationService(reportRepo, verificationRepo, progress, notificationService)
	questService := services.NewQuestService(questRepo, userQuestRepo, progress)
	teamService := services.NewTeamService(teamRepo, userRepo)
	mediaService, err := services.NewMediaService(ctx, cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media service")
	}
	analyzerCfg := cfg.Analyzer
	if u, err := url.Parse(cfg.AWS.PublicBaseURL); err == nil && u.Host != "" {
		analyzerCfg.AllowedImageHosts = append(analyzerCfg.AllowedImageHosts, u.Host)
	}
	analyzer := services.NewAnalyzer(analyzerCfg)
	if !analyzer.Configured() {
		log.Warn().Msg("Analyzer API key not set, image analysis uses fallback results")
	}

	var demoService *services.DemoService
	if cfg.Demo.Enabled {
		demoService = services.NewDemoService(userRepo, reportRepo, teamRepo, questService)
	}

	var scheduler *services.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = services.NewScheduler(questService, cfg.Scheduler.Interval)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create scheduler")
		}
		scheduler.Start()
	}

	// Initialize handlers
	r := newRouter(routes{
		identity:      identity,
		gatewaySecret: cfg.Auth.GatewaySecret,
		user:          handlers.NewUserHandler(identity),
		report:        handlers.NewReportHandler(reportService, verificationService),
		quest:         handlers.NewQuestHandler(questService),
		team:          handlers.NewTeamHandler(teamService),
		media:         handlers.NewMediaHandler(mediaService, analyzer),
		notification:  handlers.NewNotificationHandler(notificationService),
		admin:         handlers.NewAdminHandler(store, demoService),
		ws:            handlers.NewWebSocketHandler(wsHub, identity, notificationService),
		demoEnabled:   cfg.Demo.Enabled,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openBackend connects the configured row store backend
func openBackend(ctx context.Context, cfg *config.Config) (rowstore.Backend, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		log.Info().Msg("Database connection established")

		backend := rowstore.NewPostgresBackend(db)
		if err := backend.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return backend, db.Close, nil

	case config.BackendSheets:
		backend, err := rowstore.NewSheetsBackend(ctx, cfg.Store.SpreadsheetID, cfg.Store.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() {}, nil

	default:
		log.Warn().Msg("Using in-memory row store, data is lost on restart")
		return rowstore.NewMemoryBackend(), func() {}, nil
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
