// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/kmilodenisglez/task-backend/internal/auth"
	"github.com/kmilodenisglez/task-backend/internal/db"
	"github.com/kmilodenisglez/task-backend/internal/logger"
	"github.com/kmilodenisglez/task-backend/internal/mailer"
	"github.com/kmilodenisglez/task-backend/internal/ratelimiter"
	"github.com/kmilodenisglez/task-backend/internal/store"
	"github.com/kmilodenisglez/task-backend/internal/store/cache"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

type application struct {
	config        config
	store         store.Storage
	cacheStorage  cache.Storage
	rdb           *redis.Client
	authenticator *auth.JWTAuthenticator
	rateLimiter   ratelimiter.Limiter
	mailer        mailer.Client
	logger        *slog.Logger
	wg            sync.WaitGroup
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("could not load configuration", "error", err.Error())
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authenticator, err := auth.NewJWTAuthenticator(cfg.Auth.Secret, cfg.Auth.Algorithm, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	database, err := db.New(cfg.DB.Addr, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.MaxIdleTime)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close()
	log.Info("database connection pool established")

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(database, log); err != nil {
			return err
		}
	}

	app := &application{
		config:        cfg,
		store:         store.NewStorage(database),
		authenticator: authenticator,
		rateLimiter:   ratelimiter.New(cfg.RateLimit, ratelimiter.WithIdleTTL(cfg.RateLimit.IdleTTL)),
		logger:        log,
	}

	if cfg.Redis.Enabled {
		rdb := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		if err := cache.Ping(ctx, rdb); err != nil {
			log.Warn("redis not reachable, requests will fall back to the database", "addr", cfg.Redis.Addr, "error", err.Error())
		}
		app.rdb = rdb
		app.cacheStorage = cache.NewRedisStorage(rdb, cfg.Redis.UserTTL)
	}

	if cfg.Mail.Enabled {
		app.mailer = mailer.SMTPClient{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}
	}

	if j, ok := app.rateLimiter.(ratelimiter.Janitor); ok {
		j.StartJanitor(ctx, cfg.RateLimit.SweepInterval)
	}

	return app.serve(ctx)
}

// serve bloquea hasta que se cancela ctx y luego espera a las peticiones en
// curso y a los trabajos en segundo plano.
func (app *application) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         app.config.Addr,
		Handler:      app.mount(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "addr", app.config.Addr, "env", app.config.Env, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	app.wg.Wait()
	app.logger.Info("server stopped")
	return nil
}

// background ejecuta fn en su propia goroutine; serve la espera al apagar.
func (app *application) background(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				app.logger.Error("background job panicked", "panic", fmt.Sprint(rec))
			}
		}()
		fn()
	}()
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(app.requestLogger)
	r.Use(middleware.Recoverer)
	if app.config.RateLimit.Enabled {
		r.Use(app.RateLimiterMiddleware)
	}

	r.Get("/", app.rootHandler)
	r.Get("/health", app.healthCheckHandler)
	r.Get("/health/detailed", app.detailedHealthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.registerUserHandler)
			r.Post("/login", app.loginHandler)
			r.With(app.AuthTokenMiddleware).Get("/me", app.meHandler)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Post("/", app.createTaskHandler)
			r.Get("/", app.listTasksHandler)
			r.Get("/stats", app.taskStatsHandler)

			r.Route("/{taskID}", func(r chi.Router) {
				r.Use(app.tasksContextMiddleware)
				r.Use(app.checkTaskOwnership)

				r.Get("/", app.getTaskHandler)
				r.Put("/", app.updateTaskHandler)
				r.Patch("/", app.updateTaskHandler)
				r.Delete("/", app.deleteTaskHandler)
			})
		})
	})

	return r
}
