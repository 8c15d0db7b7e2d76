package app

import (
	"context"
	"time"

	"github.com/dentoria/booking_api/internal/service"
	"go.uber.org/zap"
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	workSchedules *service.WorkScheduleService
	slots         *service.ScheduleService
	logger        *zap.Logger
	horizonWeeks  int
	autoComplete  bool
	stopChan      chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(
	workSchedules *service.WorkScheduleService,
	slots *service.ScheduleService,
	logger *zap.Logger,
	horizonWeeks int,
	autoComplete bool,
) *Scheduler {
	return &Scheduler{
		workSchedules: workSchedules,
		slots:         slots,
		logger:        logger,
		horizonWeeks:  horizonWeeks,
		autoComplete:  autoComplete,
		stopChan:      make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Int("horizon_weeks", s.horizonWeeks),
		zap.Bool("auto_complete", s.autoComplete),
	)

	go s.runHorizonTask(ctx)

	if s.autoComplete {
		go s.runAutoCompleteTask(ctx)
	}
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runHorizonTask раз в сутки достраивает слоты по активным шаблонам,
// чтобы расписание всегда было открыто на горизонт вперёд
func (s *Scheduler) runHorizonTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.extendHorizon(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.extendHorizon(ctx)
		case <-s.stopChan:
			s.logger.Info("Horizon task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Horizon task cancelled")
			return
		}
	}
}

func (s *Scheduler) extendHorizon(ctx context.Context) {
	s.logger.Info("Starting automatic slot generation")

	if err := s.workSchedules.GenerateAhead(ctx, s.horizonWeeks); err != nil {
		s.logger.Error("Failed to extend schedule horizon", zap.Error(err))
		return
	}

	s.logger.Info("Automatic slot generation completed")
}

// runAutoCompleteTask ежечасно завершает брони, время которых прошло.
// Это политика приложения: сама машина состояний время не отслеживает.
func (s *Scheduler) runAutoCompleteTask(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			completed, err := s.slots.CompleteElapsed(ctx)
			if err != nil {
				s.logger.Error("Failed to complete elapsed slots", zap.Error(err))
				continue
			}
			if completed > 0 {
				s.logger.Info("Elapsed slots completed", zap.Int("count", completed))
			}
		case <-s.stopChan:
			s.logger.Info("Auto-complete task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Auto-complete task cancelled")
			return
		}
	}
}
