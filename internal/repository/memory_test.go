package repository

import (
	"context"
	"testing"
	"time"

	"github.com/dentoria/booking_api/internal/model"
	"github.com/dentoria/booking_api/internal/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlot(t *testing.T, specialistID int64, startHour, endHour int) *model.Slot {
	t.Helper()
	day := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	slot, err := model.NewAvailableSlot(
		specialistID,
		day.Add(time.Duration(startHour)*time.Hour),
		day.Add(time.Duration(endHour)*time.Hour),
	)
	require.NoError(t, err)
	return slot
}

func TestMemoryRepository_InsertAssignsIDs(t *testing.T) {
	repo := NewMemorySlotRepository()
	ctx := context.Background()

	first := newSlot(t, 1, 9, 10)
	second := newSlot(t, 1, 10, 11)

	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestMemoryRepository_InsertRejectsOverlap(t *testing.T) {
	repo := NewMemorySlotRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newSlot(t, 1, 9, 11)))

	err := repo.Insert(ctx, newSlot(t, 1, 10, 12))
	assert.ErrorIs(t, err, scheduling.ErrConflict)

	// Другой специалист может занимать то же время
	assert.NoError(t, repo.Insert(ctx, newSlot(t, 2, 10, 12)))

	// Стык интервалов пересечением не считается
	assert.NoError(t, repo.Insert(ctx, newSlot(t, 1, 11, 12)))
}

func TestMemoryRepository_OverlapIgnoresReleasedSlots(t *testing.T) {
	repo := NewMemorySlotRepository()
	ctx := context.Background()

	slot := newSlot(t, 1, 9, 10)
	require.NoError(t, repo.Insert(ctx, slot))

	// Отменённый слот календарь не занимает
	_, err := repo.ApplyTransition(ctx, slot.ID, scheduling.Transition{Event: scheduling.EventCancelSlot})
	require.NoError(t, err)

	assert.NoError(t, repo.Insert(ctx, newSlot(t, 1, 9, 10)))
}

func TestMemoryRepository_GetByID(t *testing.T) {
	repo := NewMemorySlotRepository()
	ctx := context.Background()

	slot := newSlot(t, 1, 9, 10)
	require.NoError(t, repo.Insert(ctx, slot))

	found, err := repo.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, slot.ID, found.ID)

	// Возвращается копия, мутации не протекают в хранилище
	found.Status = model.SlotStatusCancelled
	again, err := repo.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, again.Status)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestMemoryRepository_GetBySpecialist(t *testing.T) {
	repo := NewMemorySlotRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newSlot(t, 1, 11, 12)))
	require.NoError(t, repo.Insert(ctx, newSlot(t, 1, 9, 10)))
	require.NoError(t, repo.Insert(ctx, newSlot(t, 2, 9, 10)))

	slots, err := repo.GetBySpecialist(ctx, 1, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	// Сортировка по началу
	assert.True(t, slots[0].StartTime.Before(slots[1].StartTime))

	day := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	slots, err = repo.GetBySpecialist(ctx, 1, day.Add(10*time.Hour), time.Time{})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 11, slots[0].StartTime.Hour())
}

func TestMemoryRepository_RemoveGuard(t *testing.T) {
	repo := NewMemorySlotRepository()
	ctx := context.Background()

	slot := newSlot(t, 1, 9, 10)
	require.NoError(t, repo.Insert(ctx, slot))

	_, err := repo.ApplyTransition(ctx, slot.ID, scheduling.Transition{
		Event:     scheduling.EventBook,
		ClientID:  42,
		ServiceID: 3,
		Now:       slot.StartTime.Add(-time.Hour),
	})
	require.NoError(t, err)

	// Забронированный слот удалить нельзя
	err = repo.Remove(ctx, slot.ID)
	assert.ErrorIs(t, err, scheduling.ErrInvalidState)

	_, err = repo.ApplyTransition(ctx, slot.ID, scheduling.Transition{Event: scheduling.EventCancelBooking})
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, slot.ID))

	_, err = repo.GetByID(ctx, slot.ID)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)

	err = repo.Remove(ctx, slot.ID)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestMemoryRepository_ApplyTransitionKeepsStateOnError(t *testing.T) {
	repo := NewMemorySlotRepository()
	ctx := context.Background()

	slot := newSlot(t, 1, 9, 10)
	require.NoError(t, repo.Insert(ctx, slot))

	// Неудачный переход не должен менять хранимый слот
	_, err := repo.ApplyTransition(ctx, slot.ID, scheduling.Transition{Event: scheduling.EventComplete})
	require.Error(t, err)

	stored, err := repo.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, stored.Status)
}

func TestMemoryRepository_ListElapsedBooked(t *testing.T) {
	repo := NewMemorySlotRepository()
	ctx := context.Background()

	past := newSlot(t, 1, 9, 10)
	future := newSlot(t, 1, 15, 16)
	require.NoError(t, repo.Insert(ctx, past))
	require.NoError(t, repo.Insert(ctx, future))

	for _, s := range []*model.Slot{past, future} {
		_, err := repo.ApplyTransition(ctx, s.ID, scheduling.Transition{
			Event:     scheduling.EventBook,
			ClientID:  42,
			ServiceID: 3,
			Now:       s.StartTime.Add(-time.Minute),
		})
		require.NoError(t, err)
	}

	now := time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC)
	elapsed, err := repo.ListElapsedBooked(ctx, now)
	require.NoError(t, err)
	require.Len(t, elapsed, 1)
	assert.Equal(t, past.ID, elapsed[0].ID)
}
