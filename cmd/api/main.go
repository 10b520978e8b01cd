// @title           Kanso Challenge API
// @version         1.0
// @description     Seven-day fitness challenge: daily tasks, scores and ranking.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-challenge/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-challenge/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-challenge/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-challenge/internal/config"
	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
	"github.com/comitanigiacomo/kanso-challenge/internal/core/services"
	"github.com/comitanigiacomo/kanso-challenge/internal/core/workers"
	"github.com/comitanigiacomo/kanso-challenge/internal/logger"
	"github.com/comitanigiacomo/kanso-challenge/migrations"
)

type repositories struct {
	accounts domain.AccountRepository
	users    domain.UserRepository
	profiles domain.ProfileRepository
	records  domain.DailyTaskRepository
	scores   domain.ScoreRepository
	ranking  domain.RankingRepository
}

type app struct {
	router *gin.Engine
	worker *workers.ScoreWorker
}

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.GinMode)

	log.Info("connecting to database", zap.String("host", cfg.Database.Host))

	db, err := sqlx.Connect("pgx", cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.Migrate(migrateCtx, db, migrations.FS, log); err != nil {
		cancelMigrate()
		log.Fatal("failed to apply migrations", zap.Error(err))
	}
	cancelMigrate()

	rdb, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, running without ranking cache", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	repos := repositories{
		accounts: repository.NewPostgresAccountRepository(db),
		users:    repository.NewPostgresUserRepository(db),
		profiles: repository.NewPostgresProfileRepository(db),
		records:  repository.NewPostgresDailyTaskRepository(db),
		scores:   repository.NewPostgresScoreRepository(db),
		ranking:  repository.NewPostgresRankingRepository(db),
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	a := newApp(cfg, repos, db, rdb, log, startTime)
	a.worker.Start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("kanso challenge api listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("stop signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	stop()
	select {
	case <-a.worker.Done():
	case <-shutdownCtx.Done():
		log.Warn("score worker did not stop in time")
	}

	log.Info("server stopped gracefully")
}

// newApp wires services, the score worker and the router on top of repos.
// The ranking is wrapped in a redis cache when rdb is available.
func newApp(cfg *config.Config, repos repositories, db *sqlx.DB, rdb *redis.Client, log *zap.Logger, startTime time.Time) *app {
	ranking := repos.ranking
	var invalidator workers.RankingInvalidator
	if rdb != nil {
		cached := repository.NewCachedRankingRepository(repos.ranking, rdb, log)
		ranking = cached
		invalidator = cached
	}

	worker := workers.NewScoreWorker(repos.records, repos.scores, repos.profiles, invalidator, log)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, repos.users)
	authService := services.NewAuthService(repos.accounts, repos.users)
	profileService := services.NewProfileService(repos.profiles)
	if invalidator != nil {
		profileService.WithRankingInvalidator(invalidator)
	}
	challengeService := services.NewChallengeService(repos.profiles, repos.records, worker)
	taskService := services.NewTaskService(repos.records, repos.profiles, worker)
	rankingService := services.NewRankingService(ranking)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authService, tokenService),
		ProfileHandler:   adapterHTTP.NewProfileHandler(profileService),
		ChallengeHandler: adapterHTTP.NewChallengeHandler(challengeService, taskService),
		TaskHandler:      adapterHTTP.NewTaskHandler(taskService),
		RankingHandler:   adapterHTTP.NewRankingHandler(rankingService),
		TokenService:     tokenService,
		DB:               db,
		Redis:            rdb,
		Logger:           log,
		AllowedOrigins:   cfg.AllowedOrigins,
		RateLimit:        cfg.RateLimitPerMinute,
		StartTime:        startTime,
	})

	return &app{router: router, worker: worker}
}
