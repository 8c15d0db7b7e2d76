package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dentoria/booking_api/internal/app"
	"github.com/dentoria/booking_api/internal/config"
	apphttp "github.com/dentoria/booking_api/internal/http"
	"github.com/dentoria/booking_api/internal/http/handlers"
	"github.com/dentoria/booking_api/internal/observability/metrics"
	"github.com/dentoria/booking_api/internal/repository"
	"github.com/dentoria/booking_api/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting booking API",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	// Применяем миграции при старте
	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	bookingMetrics := metrics.NewBookingMetrics(nil)

	slotRepo := repository.NewPostgresSlotRepository(pool)
	scheduleRepo := repository.NewPostgresWorkScheduleRepository(pool)

	scheduleService := service.NewScheduleService(slotRepo, logger, bookingMetrics)
	workScheduleService := service.NewWorkScheduleService(scheduleRepo, scheduleService, logger)

	scheduler := app.NewScheduler(workScheduleService, scheduleService, logger, cfg.HorizonWeeks, cfg.AutoComplete)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Logger:       logger,
		Appointments: handlers.NewAppointmentHandler(scheduleService, logger),
		Schedules:    handlers.NewWorkScheduleHandler(workScheduleService, logger),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Ждём сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
