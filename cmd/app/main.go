package main

import (
	"coachcal-service/internal/config"
	eventCreate "coachcal-service/internal/http-server/handlers/events/create"
	eventDelete "coachcal-service/internal/http-server/handlers/events/delete"
	eventGet "coachcal-service/internal/http-server/handlers/events/get"
	eventStatus "coachcal-service/internal/http-server/handlers/events/status"
	eventUpdate "coachcal-service/internal/http-server/handlers/events/update"
	requestCreate "coachcal-service/internal/http-server/handlers/requests/create"
	requestDelete "coachcal-service/internal/http-server/handlers/requests/delete"
	requestGet "coachcal-service/internal/http-server/handlers/requests/get"
	requestStatus "coachcal-service/internal/http-server/handlers/requests/status"
	scheduleGet "coachcal-service/internal/http-server/handlers/schedule/get"
	slotGet "coachcal-service/internal/http-server/handlers/slots/get"
	"coachcal-service/internal/lock"
	svc "coachcal-service/internal/service"
	"coachcal-service/internal/storage/postgres"
	slogpretty "coachcal-service/pkg/handlers/slogPretty"
	"coachcal-service/pkg/middleware/mwLogger"
	"coachcal-service/pkg/sl"
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	var store svc.Store
	var storage *postgres.Storage
	if cfg.StoragePath != "" {
		var err error
		storage, err = postgres.New(cfg.StoragePath)
		if err != nil {
			log.Error("Failed to init storage", sl.Err(err))
			os.Exit(1)
		}
		store = storage
	} else {
		log.Warn("No storage_path configured, calendars are in-memory only")
	}

	var locker lock.Locker
	var redisLock *lock.RedisLock
	if cfg.RedisAddr != "" {
		var err error
		redisLock, err = lock.NewRedisLock(cfg.RedisAddr)
		if err != nil {
			log.Error("Failed to init redis lock", sl.Err(err))
			os.Exit(1)
		}
		locker = redisLock
	} else {
		log.Warn("No redis_addr configured, request resolution is not serialized across instances")
	}

	service := svc.NewService(store, locker, svc.BusinessHours{
		StartHour:       cfg.Calendar.StartHour,
		EndHour:         cfg.Calendar.EndHour,
		IntervalMinutes: cfg.Calendar.IntervalMinutes,
	})

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Events
	router.Post("/trainers/{trainerID}/events", eventCreate.New(log, service))
	router.Get("/trainers/{trainerID}/events/{id}", eventGet.New(log, service))
	router.Put("/trainers/{trainerID}/events/{id}", eventUpdate.New(log, service))
	router.Put("/trainers/{trainerID}/events/{id}/status", eventStatus.New(log, service))
	router.Delete("/trainers/{trainerID}/events/{id}", eventDelete.New(log, service))

	// Schedule views
	router.Get("/trainers/{trainerID}/schedule", scheduleGet.New(log, service))

	// Booking requests
	router.Post("/trainers/{trainerID}/requests", requestCreate.New(log, service))
	router.Get("/trainers/{trainerID}/requests", requestGet.New(log, service))
	router.Put("/trainers/{trainerID}/requests/{id}/status", requestStatus.New(log, service))
	router.Delete("/trainers/{trainerID}/requests/{id}", requestDelete.New(log, service))

	// Availability
	router.Get("/trainers/{trainerID}/slots", slotGet.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	}

	if redisLock != nil {
		if err := redisLock.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
