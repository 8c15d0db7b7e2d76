package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkSchedule шаблон рабочего дня специалиста для одного дня недели.
// Из активных шаблонов фоновая задача генерирует слоты на горизонт вперёд.
type WorkSchedule struct {
	ID                  int64     `json:"id"`
	GroupID             uuid.UUID `json:"group_id"` // общий для шаблонов, созданных одним запросом
	SpecialistID        int64     `json:"specialist_id"`
	Weekday             int       `json:"weekday"` // 1 = Monday ... 5 = Friday
	DayStart            TimeOfDay `json:"day_start"`
	DayEnd              TimeOfDay `json:"day_end"`
	BreakStart          TimeOfDay `json:"break_start"`
	BreakEnd            TimeOfDay `json:"break_end"`
	SlotDurationMinutes int       `json:"slot_duration_minutes"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
}

// Validate проверяет шаблон перед сохранением
func (w *WorkSchedule) Validate() error {
	if w.Weekday < int(time.Monday) || w.Weekday > int(time.Friday) {
		return fmt.Errorf("weekday must be between Monday and Friday, got %d", w.Weekday)
	}

	// Остальные поля проверяются теми же правилами, что и разовая генерация
	req := BulkGenerationRequest{
		SpecialistID:        w.SpecialistID,
		DayStart:            w.DayStart,
		DayEnd:              w.DayEnd,
		BreakStart:          w.BreakStart,
		BreakEnd:            w.BreakEnd,
		SlotDurationMinutes: w.SlotDurationMinutes,
	}
	return req.Validate()
}
