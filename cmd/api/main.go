package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"chapterlink/internal/activity"
	"chapterlink/internal/auth"
	"chapterlink/internal/chapter"
	"chapterlink/internal/domain"
	"chapterlink/internal/handler"
	"chapterlink/internal/member"
	"chapterlink/internal/middleware"
	"chapterlink/internal/notification"
	"chapterlink/internal/repository/postgres"
	"chapterlink/internal/scheduler"
	"chapterlink/internal/stats"
	"chapterlink/internal/trade"
	"chapterlink/pkg/cache"
	"chapterlink/pkg/config"
	"chapterlink/pkg/logger"
	"chapterlink/pkg/mailer"
	"chapterlink/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("chapterlink-api")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting chapterlink API", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Database connection
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Info("Database connected", nil)

	// Redis connection
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redisCache.Close()
	redisClient := redisCache.Client()

	log.Info("Redis connected", nil)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	chapterRepo := postgres.NewChapterRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	tradeRepo := postgres.NewTradeRepository(db)
	metricRepo := postgres.NewMetricRepository(db)
	statsRepo := postgres.NewStatsRepository(db)
	activityRepo := postgres.NewActivityRepository(db)

	// Services
	smtp := mailer.New(mailer.Config{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUsername,
		Password: cfg.Email.SMTPPassword,
		From:     cfg.Email.SMTPFrom,
		UseTLS:   cfg.Email.SMTPUseTLS,
	})
	notifier := notification.NewService(userRepo, smtp, redisCache, log)

	authService := auth.NewService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	chapterService := chapter.NewService(chapterRepo, log)
	memberService := member.NewService(memberRepo, metricRepo, statsRepo, chapterRepo, notifier, member.Config{
		InactivityThreshold: cfg.Stats.InactivityThreshold,
		Weights: domain.ScoreWeights{
			Participation: cfg.Stats.ParticipationWeight,
			Learning:      cfg.Stats.LearningWeight,
			Activity:      cfg.Stats.ActivityWeight,
			Networking:    cfg.Stats.NetworkingWeight,
		},
	}, log)
	tradeService := trade.NewService(tradeRepo, chapterRepo, notifier, log)
	statsService := stats.NewService(statsRepo, log)
	feedService := activity.NewService(activityRepo, chapterRepo, cfg.Stats.FeedLimit, log)

	// Background inactivity sweep
	sweep := scheduler.New(chapterRepo, memberRepo, notifier, cfg.Stats.InactivityThreshold, 24*time.Hour, log)
	sweep.Start()
	defer sweep.Stop()

	// Handlers
	val := validator.New()
	authHandler := handler.NewAuthHandler(authService, val, log)
	chapterHandler := handler.NewChapterHandler(chapterService, val, log)
	memberHandler := handler.NewMemberHandler(memberService, val, log)
	tradeHandler := handler.NewTradeHandler(tradeService, val, log)
	statsHandler := handler.NewStatsHandler(statsService, feedService, log)

	// Router
	r := mux.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB global cap
	r.Use(middleware.NewRateLimiter(redisClient, 150, time.Minute).Limit)

	authMW := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	idemMW := middleware.NewIdempotencyMiddleware(redisClient, 24*time.Hour)

	// Health check routes (no auth)
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ready", readyCheck(db)).Methods("GET")

	// Public auth routes
	public := r.PathPrefix("/api/v1/auth").Subrouter()
	public.HandleFunc("/register", authHandler.Register).Methods("POST")
	public.HandleFunc("/login", authHandler.Login).Methods("POST")

	// Protected routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Authenticate)
	api.Use(middleware.NewRateLimiter(redisClient, 60, time.Minute).Limit)

	api.HandleFunc("/auth/totp/enroll", authHandler.EnrollTOTP).Methods("POST")
	api.HandleFunc("/auth/totp/activate", authHandler.ActivateTOTP).Methods("POST")

	api.HandleFunc("/chapters", chapterHandler.Create).Methods("POST")
	api.HandleFunc("/chapters", chapterHandler.List).Methods("GET")
	api.HandleFunc("/chapters/{id}", chapterHandler.Get).Methods("GET")
	api.HandleFunc("/chapters/{id}/stats", statsHandler.GetChapterStats).Methods("GET")
	api.HandleFunc("/chapters/{id}/activity", statsHandler.GetActivityFeed).Methods("GET")
	api.HandleFunc("/chapters/{id}/members", memberHandler.Join).Methods("POST")
	api.HandleFunc("/chapters/{id}/members", memberHandler.List).Methods("GET")
	api.HandleFunc("/chapters/{id}/metrics", memberHandler.SubmitMetric).Methods("POST")
	api.HandleFunc("/chapters/{id}/trades", tradeHandler.ListByChapter).Methods("GET")

	trades := api.PathPrefix("/trades").Subrouter()
	trades.Use(idemMW.Require)
	trades.HandleFunc("", tradeHandler.Create).Methods("POST")
	trades.HandleFunc("/{id}/status", tradeHandler.Transition).Methods("PATCH")

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Info("chapterlink API started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down chapterlink API...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("chapterlink API stopped gracefully", nil)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	_ = r
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"chapterlink","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func readyCheck(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r
		if err := db.Ping(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready","reason":"database unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready","service":"chapterlink"}`))
	}
}
