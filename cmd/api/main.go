package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/centsible/centsible-go/internal/config"
	"github.com/centsible/centsible-go/internal/handler"
	"github.com/centsible/centsible-go/internal/mail"
	"github.com/centsible/centsible-go/internal/middleware"
	"github.com/centsible/centsible-go/internal/ratelimit"
	"github.com/centsible/centsible-go/internal/repository"
	"github.com/centsible/centsible-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	hashKey := []byte(cfg.SecretKey)

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)

	authService := service.NewAuthService(userRepo)
	sessionService := service.NewSessionService(sessionRepo, userRepo, hashKey)
	resetService := service.NewPasswordResetService(
		authService, userRepo, mail.LogMailer{}, hashKey, cfg.BaseURL, cfg.ResetTokenTTL,
	)
	budgetService := service.NewBudgetService(budgetRepo)

	// Attempt counters move to Redis when an address is configured, so
	// several instances share one budget per key.
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		limiter = ratelimit.NewRedisLimiter(
			redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}),
			cfg.RateLimitAttempts, cfg.RateLimitWindow,
		)
		slog.Info("rate limit counters in redis", "addr", cfg.RedisAddr)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitAttempts, cfg.RateLimitWindow)
	}

	gate := middleware.NewGate(sessionService, hashKey, middleware.GateConfig{
		SignInPath: "/signin",
		ExemptPaths: []string{
			"/health",
			"/signup",
			"/signin",
			"/password_resets",
			"/password_resets/new",
		},
		ExemptPrefixes: []string{"/password_resets/"},
		Secure:         cfg.Production(),
	})

	authHandler := handler.NewAuthHandler(authService, sessionService, gate, hashKey, cfg.Production())
	resetHandler := handler.NewPasswordResetHandler(resetService, hashKey, cfg.Production())
	budgetHandler := handler.NewBudgetHandler(budgetService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.RateLimit(5, 10))
	r.Use(gate.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/signin", authHandler.HandleSigninPage)
	r.Get("/password_resets/new", resetHandler.HandleNew)

	r.With(middleware.Throttle(limiter, "signup", middleware.EmailIPKey)).
		Post("/signup", authHandler.HandleSignup)
	r.With(middleware.Throttle(limiter, "signin", middleware.EmailIPKey)).
		Post("/signin", authHandler.HandleSignin)
	r.With(middleware.Throttle(limiter, "password_reset", middleware.EmailIPKey)).
		Post("/password_resets", resetHandler.HandleCreate)
	r.Post("/password_resets/{token}", resetHandler.HandleComplete)

	r.Post("/signout", authHandler.HandleSignout)
	r.Get("/me", authHandler.HandleMe)
	r.Delete("/me", authHandler.HandleDeleteAccount)

	r.Get("/budgets", budgetHandler.HandleList)
	r.Post("/budgets", budgetHandler.HandleCreate)
	r.Put("/budgets/{budget_id}", budgetHandler.HandleUpdate)
	r.Delete("/budgets/{budget_id}", budgetHandler.HandleDelete)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
