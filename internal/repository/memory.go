package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dentoria/booking_api/internal/model"
	"github.com/dentoria/booking_api/internal/scheduling"
)

// MemorySlotRepository хранилище слотов в памяти.
// Используется в тестах и как референс семантики для postgres-реализации.
// Все операции сериализуются одним мьютексом, поэтому проверка пересечений
// и смена статуса атомарны.
type MemorySlotRepository struct {
	mu    sync.Mutex
	seq   int64
	slots map[int64]*model.Slot
}

func NewMemorySlotRepository() *MemorySlotRepository {
	return &MemorySlotRepository{
		slots: make(map[int64]*model.Slot),
	}
}

// Insert сохраняет новый слот, проверив пересечения с занятыми слотами
// того же специалиста. ID назначается здесь и никогда не переиспользуется.
func (r *MemorySlotRepository) Insert(_ context.Context, slot *model.Slot) error {
	interval := scheduling.Interval{Start: slot.StartTime, End: slot.EndTime}
	if !interval.IsValid() {
		return fmt.Errorf("%w: end time must be after start time", scheduling.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.slots {
		if existing.SpecialistID != slot.SpecialistID || !existing.Occupies() {
			continue
		}
		other := scheduling.Interval{Start: existing.StartTime, End: existing.EndTime}
		if interval.Overlaps(other) {
			return fmt.Errorf("%w: interval %s-%s overlaps slot %d",
				scheduling.ErrConflict,
				slot.StartTime.Format(time.RFC3339), slot.EndTime.Format(time.RFC3339),
				existing.ID)
		}
	}

	r.seq++
	slot.ID = r.seq
	slot.CreatedAt = time.Now()
	r.slots[slot.ID] = slot.Clone()

	return nil
}

// GetByID возвращает копию слота по id
func (r *MemorySlotRepository) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: slot %d", scheduling.ErrNotFound, id)
	}

	return slot.Clone(), nil
}

// GetBySpecialist возвращает слоты специалиста, отсортированные по началу.
// Нулевые from/to означают отсутствие ограничения с соответствующей стороны.
func (r *MemorySlotRepository) GetBySpecialist(_ context.Context, specialistID int64, from, to time.Time) ([]*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.Slot
	for _, slot := range r.slots {
		if slot.SpecialistID != specialistID {
			continue
		}
		if !from.IsZero() && slot.StartTime.Before(from) {
			continue
		}
		if !to.IsZero() && !slot.StartTime.Before(to) {
			continue
		}
		result = append(result, slot.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})

	return result, nil
}

// Remove жёстко удаляет слот. Разрешено только для свободных слотов,
// забронированный сначала нужно отменить.
func (r *MemorySlotRepository) Remove(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return fmt.Errorf("%w: slot %d", scheduling.ErrNotFound, id)
	}

	if slot.Status != model.SlotStatusAvailable {
		return fmt.Errorf("%w: cannot delete %s slot %d", scheduling.ErrInvalidState, slot.Status, id)
	}

	delete(r.slots, id)
	return nil
}

// ApplyTransition применяет событие машины состояний и сохраняет результат
// атомарно с проверкой. Возвращает копию слота после перехода.
func (r *MemorySlotRepository) ApplyTransition(_ context.Context, id int64, tr scheduling.Transition) (*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: slot %d", scheduling.ErrNotFound, id)
	}

	next := slot.Clone()
	if err := scheduling.Apply(next, tr); err != nil {
		return nil, err
	}

	r.slots[id] = next
	return next.Clone(), nil
}

// ListElapsedBooked возвращает забронированные слоты, закончившиеся к before
func (r *MemorySlotRepository) ListElapsedBooked(_ context.Context, before time.Time) ([]*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.Slot
	for _, slot := range r.slots {
		if slot.Status == model.SlotStatusBooked && !slot.EndTime.After(before) {
			result = append(result, slot.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})

	return result, nil
}
