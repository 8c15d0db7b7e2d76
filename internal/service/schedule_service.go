package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dentoria/booking_api/internal/model"
	"github.com/dentoria/booking_api/internal/observability/metrics"
	"github.com/dentoria/booking_api/internal/scheduling"
	"go.uber.org/zap"
)

// SlotStore абстракция над хранилищем слотов.
// Реализации обязаны выполнять Insert и ApplyTransition атомарно
// в рамках одного специалиста (мьютекс или транзакция с локом).
type SlotStore interface {
	Insert(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	GetBySpecialist(ctx context.Context, specialistID int64, from, to time.Time) ([]*model.Slot, error)
	Remove(ctx context.Context, id int64) error
	ApplyTransition(ctx context.Context, id int64, tr scheduling.Transition) (*model.Slot, error)
	ListElapsedBooked(ctx context.Context, before time.Time) ([]*model.Slot, error)
}

// BulkPolicy поведение массовой вставки при конфликтах
type BulkPolicy string

const (
	// BulkBestEffort пропускает конфликтующих кандидатов и продолжает
	BulkBestEffort BulkPolicy = "best_effort"
	// BulkAllOrNothing прерывается на первом конфликте и убирает уже вставленное
	BulkAllOrNothing BulkPolicy = "all_or_nothing"
)

// BulkFailure кандидат, которого не удалось вставить
type BulkFailure struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Reason    string    `json:"reason"`
}

// BulkResult итог массовой генерации
type BulkResult struct {
	Created  []*model.Slot `json:"created"`
	Failures []BulkFailure `json:"failures"`
}

type ScheduleService struct {
	slots   SlotStore
	logger  *zap.Logger
	metrics *metrics.BookingMetrics
	now     func() time.Time
}

func NewScheduleService(slots SlotStore, logger *zap.Logger, m *metrics.BookingMetrics) *ScheduleService {
	return &ScheduleService{
		slots:   slots,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock подменяет источник времени (для тестов)
func (s *ScheduleService) WithClock(now func() time.Time) *ScheduleService {
	s.now = now
	return s
}

// CreateSlot создаёт один свободный слот вручную
func (s *ScheduleService) CreateSlot(ctx context.Context, specialistID int64, startTime, endTime time.Time) (*model.Slot, error) {
	slot, err := model.NewAvailableSlot(specialistID, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scheduling.ErrValidation, err)
	}

	if startTime.Before(s.now()) {
		return nil, fmt.Errorf("%w: cannot create slot in the past", scheduling.ErrValidation)
	}

	if err := s.slots.Insert(ctx, slot); err != nil {
		return nil, fmt.Errorf("insert slot: %w", err)
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("specialist_id", specialistID),
		zap.Time("start_time", startTime),
	)

	return slot, nil
}

// BulkGenerate строит сетку слотов по запросу и вставляет кандидатов по одному
// через защищённый Insert. Конкурентные брони и ранее созданные слоты
// отсеиваются проверкой пересечений на вставке.
func (s *ScheduleService) BulkGenerate(ctx context.Context, req model.BulkGenerationRequest, policy BulkPolicy) (*BulkResult, error) {
	started := s.now()

	candidates, err := scheduling.GenerateGrid(req)
	if err != nil {
		return nil, fmt.Errorf("generate grid: %w", err)
	}

	if policy == "" {
		policy = BulkBestEffort
	}

	result := &BulkResult{}
	for _, candidate := range candidates {
		slot, err := model.NewAvailableSlot(req.SpecialistID, candidate.Start, candidate.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", scheduling.ErrValidation, err)
		}

		err = s.slots.Insert(ctx, slot)
		if err == nil {
			result.Created = append(result.Created, slot)
			continue
		}

		if !errors.Is(err, scheduling.ErrConflict) {
			// Ошибка хранилища, а не конфликт расписания - дальше не идём
			return nil, fmt.Errorf("insert candidate: %w", err)
		}

		if policy == BulkAllOrNothing {
			if rbErr := s.rollbackBatch(ctx, result.Created); rbErr != nil {
				s.logger.Error("Failed to roll back bulk batch", zap.Error(rbErr))
			}
			return nil, fmt.Errorf("bulk generation aborted: %w", err)
		}

		s.logger.Debug("Candidate skipped",
			zap.Time("start_time", candidate.Start),
			zap.Error(err),
		)
		result.Failures = append(result.Failures, BulkFailure{
			StartTime: candidate.Start,
			EndTime:   candidate.End,
			Reason:    err.Error(),
		})
	}

	s.metrics.AddGenerated(len(result.Created))
	s.metrics.ObserveBulkLatency(time.Since(started).Seconds())

	s.logger.Info("Bulk generation finished",
		zap.Int64("specialist_id", req.SpecialistID),
		zap.Int("candidates", len(candidates)),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Failures)),
		zap.String("policy", string(policy)),
	)

	return result, nil
}

func (s *ScheduleService) rollbackBatch(ctx context.Context, created []*model.Slot) error {
	for _, slot := range created {
		if err := s.slots.Remove(ctx, slot.ID); err != nil {
			return fmt.Errorf("remove slot %d: %w", slot.ID, err)
		}
	}
	return nil
}

// Book бронирует свободный слот для клиента
func (s *ScheduleService) Book(ctx context.Context, slotID, clientID, serviceID int64) (*model.Slot, error) {
	slot, err := s.slots.ApplyTransition(ctx, slotID, scheduling.Transition{
		Event:     scheduling.EventBook,
		ClientID:  clientID,
		ServiceID: serviceID,
		Now:       s.now(),
	})
	if err != nil {
		s.metrics.ObserveTransition(string(scheduling.EventBook), "rejected")
		return nil, err
	}

	s.metrics.ObserveTransition(string(scheduling.EventBook), "applied")
	s.logger.Info("Slot booked",
		zap.Int64("slot_id", slotID),
		zap.Int64("client_id", clientID),
		zap.Int64("service_id", serviceID),
	)

	return slot, nil
}

// CancelBooking снимает бронь и возвращает слот в продажу
func (s *ScheduleService) CancelBooking(ctx context.Context, slotID int64) (*model.Slot, error) {
	slot, err := s.slots.ApplyTransition(ctx, slotID, scheduling.Transition{
		Event: scheduling.EventCancelBooking,
		Now:   s.now(),
	})
	if err != nil {
		s.metrics.ObserveTransition(string(scheduling.EventCancelBooking), "rejected")
		return nil, err
	}

	s.metrics.ObserveTransition(string(scheduling.EventCancelBooking), "applied")
	s.logger.Info("Booking cancelled", zap.Int64("slot_id", slotID))

	return slot, nil
}

// Complete помечает завершившийся приём
func (s *ScheduleService) Complete(ctx context.Context, slotID int64) (*model.Slot, error) {
	slot, err := s.slots.ApplyTransition(ctx, slotID, scheduling.Transition{
		Event: scheduling.EventComplete,
		Now:   s.now(),
	})
	if err != nil {
		s.metrics.ObserveTransition(string(scheduling.EventComplete), "rejected")
		return nil, err
	}

	s.metrics.ObserveTransition(string(scheduling.EventComplete), "applied")
	s.logger.Info("Slot completed", zap.Int64("slot_id", slotID))

	return slot, nil
}

// CancelSlot административно отменяет свободный слот, сохраняя запись
func (s *ScheduleService) CancelSlot(ctx context.Context, slotID int64) (*model.Slot, error) {
	slot, err := s.slots.ApplyTransition(ctx, slotID, scheduling.Transition{
		Event: scheduling.EventCancelSlot,
		Now:   s.now(),
	})
	if err != nil {
		s.metrics.ObserveTransition(string(scheduling.EventCancelSlot), "rejected")
		return nil, err
	}

	s.metrics.ObserveTransition(string(scheduling.EventCancelSlot), "applied")
	s.logger.Info("Slot cancelled", zap.Int64("slot_id", slotID))

	return slot, nil
}

// Delete жёстко удаляет свободный слот
func (s *ScheduleService) Delete(ctx context.Context, slotID int64) error {
	if err := s.slots.Remove(ctx, slotID); err != nil {
		return err
	}

	s.logger.Info("Slot deleted", zap.Int64("slot_id", slotID))
	return nil
}

// GetSlot возвращает слот по id
func (s *ScheduleService) GetSlot(ctx context.Context, slotID int64) (*model.Slot, error) {
	return s.slots.GetByID(ctx, slotID)
}

// GetSpecialistSchedule возвращает слоты специалиста за период
func (s *ScheduleService) GetSpecialistSchedule(ctx context.Context, specialistID int64, from, to time.Time) ([]*model.Slot, error) {
	return s.slots.GetBySpecialist(ctx, specialistID, from, to)
}

// GetAvailableSlots возвращает свободные будущие слоты специалиста
func (s *ScheduleService) GetAvailableSlots(ctx context.Context, specialistID int64, from, to time.Time) ([]*model.Slot, error) {
	if from.IsZero() || from.Before(s.now()) {
		from = s.now()
	}

	slots, err := s.slots.GetBySpecialist(ctx, specialistID, from, to)
	if err != nil {
		return nil, err
	}

	available := slots[:0]
	for _, slot := range slots {
		if slot.Status == model.SlotStatusAvailable {
			available = append(available, slot)
		}
	}

	return available, nil
}

// CompleteElapsed завершает все брони, время которых прошло.
// Вызывается фоновой задачей; ошибки по отдельным слотам не прерывают обход.
func (s *ScheduleService) CompleteElapsed(ctx context.Context) (int, error) {
	elapsed, err := s.slots.ListElapsedBooked(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list elapsed booked slots: %w", err)
	}

	completed := 0
	for _, slot := range elapsed {
		if _, err := s.Complete(ctx, slot.ID); err != nil {
			s.logger.Warn("Failed to complete elapsed slot",
				zap.Int64("slot_id", slot.ID),
				zap.Error(err),
			)
			continue
		}
		completed++
	}

	return completed, nil
}
