package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dentoria/booking_api/internal/model"
	"github.com/dentoria/booking_api/internal/scheduling"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkScheduleStore хранилище шаблонов рабочих дней
type WorkScheduleStore interface {
	Create(ctx context.Context, ws *model.WorkSchedule) error
	GetActive(ctx context.Context) ([]*model.WorkSchedule, error)
	GetBySpecialist(ctx context.Context, specialistID int64) ([]*model.WorkSchedule, error)
	Deactivate(ctx context.Context, id int64) error
}

// WorkScheduleService управляет шаблонами рабочих дней и генерирует
// из них слоты на горизонт вперёд
type WorkScheduleService struct {
	schedules WorkScheduleStore
	slots     *ScheduleService
	logger    *zap.Logger
	now       func() time.Time
}

func NewWorkScheduleService(schedules WorkScheduleStore, slots *ScheduleService, logger *zap.Logger) *WorkScheduleService {
	return &WorkScheduleService{
		schedules: schedules,
		slots:     slots,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock подменяет источник времени (для тестов)
func (s *WorkScheduleService) WithClock(now func() time.Time) *WorkScheduleService {
	s.now = now
	return s
}

// CreateGroup создаёт группу шаблонов с общим group_id: по одному шаблону
// на каждый рабочий день недели. Сразу генерирует слоты на weeksAhead вперёд.
func (s *WorkScheduleService) CreateGroup(
	ctx context.Context,
	specialistID int64,
	weekdays []int,
	dayStart, dayEnd, breakStart, breakEnd model.TimeOfDay,
	slotDurationMinutes int,
	weeksAhead int,
) (uuid.UUID, error) {
	if len(weekdays) == 0 {
		return uuid.Nil, fmt.Errorf("%w: at least one weekday is required", scheduling.ErrValidation)
	}

	groupID := uuid.New()

	createdCount := 0
	for _, weekday := range weekdays {
		ws := &model.WorkSchedule{
			GroupID:             groupID,
			SpecialistID:        specialistID,
			Weekday:             weekday,
			DayStart:            dayStart,
			DayEnd:              dayEnd,
			BreakStart:          breakStart,
			BreakEnd:            breakEnd,
			SlotDurationMinutes: slotDurationMinutes,
			IsActive:            true,
		}

		if err := ws.Validate(); err != nil {
			return uuid.Nil, fmt.Errorf("%w: %v", scheduling.ErrValidation, err)
		}

		if err := s.schedules.Create(ctx, ws); err != nil {
			s.logger.Error("Failed to create work schedule",
				zap.Error(err),
				zap.String("group_id", groupID.String()),
				zap.Int("weekday", weekday),
			)
			continue
		}

		count, err := s.generateForSchedule(ctx, ws, weeksAhead)
		if err != nil {
			s.logger.Error("Failed to generate initial slots",
				zap.Error(err),
				zap.Int64("work_schedule_id", ws.ID),
			)
		} else {
			s.logger.Debug("Generated initial slots",
				zap.Int64("work_schedule_id", ws.ID),
				zap.Int("count", count),
			)
		}

		createdCount++
	}

	s.logger.Info("Work schedule group created",
		zap.String("group_id", groupID.String()),
		zap.Int64("specialist_id", specialistID),
		zap.Int("weekdays_count", len(weekdays)),
		zap.Int("total_created", createdCount),
	)

	return groupID, nil
}

// GetBySpecialist возвращает шаблоны специалиста
func (s *WorkScheduleService) GetBySpecialist(ctx context.Context, specialistID int64) ([]*model.WorkSchedule, error) {
	return s.schedules.GetBySpecialist(ctx, specialistID)
}

// Deactivate выключает шаблон; уже созданные слоты остаются
func (s *WorkScheduleService) Deactivate(ctx context.Context, id int64) error {
	if err := s.schedules.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Work schedule deactivated", zap.Int64("work_schedule_id", id))
	return nil
}

// GenerateAhead генерирует слоты по всем активным шаблонам на weeksAhead недель.
// Вызывается периодически: уже существующие слоты отсеиваются конфликтами вставки.
func (s *WorkScheduleService) GenerateAhead(ctx context.Context, weeksAhead int) error {
	schedules, err := s.schedules.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("get active work schedules: %w", err)
	}

	total := 0
	for _, ws := range schedules {
		count, err := s.generateForSchedule(ctx, ws, weeksAhead)
		if err != nil {
			s.logger.Error("Failed to generate slots for work schedule",
				zap.Error(err),
				zap.Int64("work_schedule_id", ws.ID),
			)
			continue
		}
		total += count
	}

	s.logger.Info("Work schedule horizon extended",
		zap.Int("schedules", len(schedules)),
		zap.Int("slots_created", total),
	)

	return nil
}

// generateForSchedule генерирует слоты одного шаблона на горизонт вперёд.
// Каждый подходящий день оборачивается в однодневный запрос генерации,
// прошедшие дни пропускаются.
func (s *WorkScheduleService) generateForSchedule(ctx context.Context, ws *model.WorkSchedule, weeksAhead int) (int, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	created := 0
	for i := 0; i < weeksAhead*7; i++ {
		date := today.AddDate(0, 0, i)
		if int(date.Weekday()) != ws.Weekday {
			continue
		}

		// Не создаём слоты на уже начавшийся день
		if ws.DayStart.At(date).Before(now) {
			continue
		}

		req := model.BulkGenerationRequest{
			SpecialistID:        ws.SpecialistID,
			StartDate:           date,
			EndDate:             date,
			DayStart:            ws.DayStart,
			DayEnd:              ws.DayEnd,
			BreakStart:          ws.BreakStart,
			BreakEnd:            ws.BreakEnd,
			SlotDurationMinutes: ws.SlotDurationMinutes,
		}

		result, err := s.slots.BulkGenerate(ctx, req, BulkBestEffort)
		if err != nil {
			return created, fmt.Errorf("generate day %s: %w", date.Format("2006-01-02"), err)
		}

		created += len(result.Created)
	}

	return created, nil
}
