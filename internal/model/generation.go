package model

import (
	"fmt"
	"time"
)

// TimeOfDay время внутри дня в минутах от полуночи
type TimeOfDay int

// NewTimeOfDay создаёт TimeOfDay из часов и минут
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay разбирает строку вида "09:30"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return NewTimeOfDay(hour, minute), nil
}

// At привязывает время к конкретной дате (в её локации)
func (t TimeOfDay) At(date time.Time) time.Time {
	year, month, day := date.Date()
	return time.Date(year, month, day, int(t)/60, int(t)%60, 0, 0, date.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// BulkGenerationRequest описание рабочего периода для массовой генерации слотов.
// Не сохраняется в БД, живёт только в рамках одного запроса.
type BulkGenerationRequest struct {
	SpecialistID        int64
	StartDate           time.Time // дата, время игнорируется
	EndDate             time.Time // включительно
	DayStart            TimeOfDay
	DayEnd              TimeOfDay
	BreakStart          TimeOfDay // BreakStart == BreakEnd означает день без перерыва
	BreakEnd            TimeOfDay
	SlotDurationMinutes int
}

// Validate проверяет запрос до начала генерации.
// Пустой диапазон дат (EndDate < StartDate) ошибкой не считается.
func (r BulkGenerationRequest) Validate() error {
	if r.SpecialistID <= 0 {
		return fmt.Errorf("specialist id is required")
	}
	if r.SlotDurationMinutes <= 0 {
		return fmt.Errorf("slot duration must be positive, got %d", r.SlotDurationMinutes)
	}
	if r.DayEnd <= r.DayStart {
		return fmt.Errorf("day end %s must be after day start %s", r.DayEnd, r.DayStart)
	}
	if r.BreakEnd < r.BreakStart {
		return fmt.Errorf("break end %s is before break start %s", r.BreakEnd, r.BreakStart)
	}
	return nil
}
