package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/cf_social/internal/codeforces"
	"github.com/Dias221467/cf_social/internal/config"
	"github.com/Dias221467/cf_social/internal/database"
	"github.com/Dias221467/cf_social/internal/handlers"
	"github.com/Dias221467/cf_social/internal/jobs"
	"github.com/Dias221467/cf_social/internal/repository"
	cron "github.com/Dias221467/cf_social/internal/scheduler"
	"github.com/Dias221467/cf_social/internal/services"
	"github.com/Dias221467/cf_social/pkg/logger"
	"github.com/rs/cors"
)

type stores struct {
	users    services.UserStore
	edges    services.EdgeStore
	recs     services.RecommendationStore
	activity services.ActivityStore
	close    func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Log.Warn("Using in-memory store, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &stores{
			users:    mem,
			edges:    mem,
			recs:     mem,
			activity: mem,
			close:    func(context.Context) error { return nil },
		}, nil
	}

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return &stores{
		users:    repository.NewUserRepository(db),
		edges:    repository.NewEdgeRepository(db),
		recs:     repository.NewRecommendationRepository(db),
		activity: repository.NewActivityRepository(db),
		close:    db.Client().Disconnect,
	}, nil
}

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel, cfg.LogFile)
	logger.Log.Info("Logger initialized")

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}

	// --- Providers ---
	cfClient := codeforces.NewClient(codeforces.Options{
		BaseURL:      cfg.CodeforcesBaseURL,
		LadderURL:    cfg.LadderBaseURL,
		Timeout:      cfg.ProviderTimeout,
		RateInterval: cfg.ProviderRateInterval,
		Retries:      cfg.ProviderRetries,
		CacheTTL:     cfg.ProviderCacheTTL,
	})

	// --- Services ---
	activityService := services.NewActivityService(st.activity)
	userService := services.NewUserService(st.users, cfClient, cfg.VerifyHandleOnSignup)
	followService := services.NewFollowService(st.users, st.edges, activityService, cfg.SearchLimit)
	profileService := services.NewProfileService(followService, cfClient)
	recommendationService := services.NewRecommendationService(st.users, st.recs, cfClient, cfClient, cfg.RecommendationCount, cfg.RecommendationStaleAfter)
	leaderboardService := services.NewLeaderboardService(followService, cfClient)

	// --- Handlers ---
	router := handlers.NewRouter(handlers.Router{
		Users:           handlers.NewUserHandler(userService, followService, profileService, activityService, cfg),
		Friends:         handlers.NewFriendHandler(followService),
		Recommendations: handlers.NewRecommendationHandler(recommendationService, leaderboardService),
		LastActive:      userService,
		JWTSecret:       cfg.JWTSecret,
	})

	// --- Scheduled jobs ---
	purger := jobs.NewRecommendationPurger(recommendationService, cfg.PurgeAfter)
	scheduler, err := cron.StartPurgeCronJobs(cfg.PurgeSchedule, purger)
	if err != nil {
		logger.Log.Fatalf("Invalid purge schedule: %v", err)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := st.close(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Store shutdown failed")
	}
}
