package scheduling

import (
	"fmt"
	"time"

	"github.com/dentoria/booking_api/internal/model"
)

// Event событие жизненного цикла слота
type Event string

const (
	EventBook          Event = "book"           // available -> booked
	EventCancelBooking Event = "cancel_booking" // booked -> available
	EventComplete      Event = "complete"       // booked -> completed
	EventCancelSlot    Event = "cancel_slot"    // available -> cancelled (административная отмена)
)

// Transition событие вместе с его параметрами.
// Now передаётся снаружи, чтобы машина состояний оставалась чистой.
type Transition struct {
	Event     Event
	ClientID  int64 // только для EventBook
	ServiceID int64 // только для EventBook
	Now       time.Time
}

// Apply применяет переход к слоту, мутируя его на месте.
// Вызывающая сторона (репозиторий) отвечает за атомарность
// "прочитал - проверил - записал".
func Apply(slot *model.Slot, tr Transition) error {
	switch tr.Event {
	case EventBook:
		return applyBook(slot, tr)
	case EventCancelBooking:
		return applyCancelBooking(slot)
	case EventComplete:
		return applyComplete(slot, tr)
	case EventCancelSlot:
		return applyCancelSlot(slot)
	default:
		return &InvalidTransitionError{From: slot.Status, Event: tr.Event}
	}
}

func applyBook(slot *model.Slot, tr Transition) error {
	// Бронь не свободного слота - это всегда конфликт двойной брони,
	// а не просто запрещённый переход
	if slot.Status != model.SlotStatusAvailable {
		return fmt.Errorf("%w: slot %d is %s, not available", ErrConflict, slot.ID, slot.Status)
	}

	if tr.ClientID <= 0 {
		return fmt.Errorf("%w: client id is required to book", ErrValidation)
	}
	if tr.ServiceID <= 0 {
		return fmt.Errorf("%w: service id is required to book", ErrValidation)
	}

	interval := Interval{Start: slot.StartTime, End: slot.EndTime}
	if interval.IsPast(tr.Now) {
		return fmt.Errorf("%w: cannot book a slot in the past", ErrValidation)
	}

	clientID := tr.ClientID
	serviceID := tr.ServiceID
	slot.Status = model.SlotStatusBooked
	slot.ClientID = &clientID
	slot.ServiceID = &serviceID
	return nil
}

func applyCancelBooking(slot *model.Slot) error {
	if slot.Status != model.SlotStatusBooked {
		return &InvalidTransitionError{From: slot.Status, Event: EventCancelBooking}
	}

	// Отмена брони возвращает слот в продажу, клиент и услуга очищаются
	slot.Status = model.SlotStatusAvailable
	slot.ClientID = nil
	slot.ServiceID = nil
	return nil
}

func applyComplete(slot *model.Slot, tr Transition) error {
	if slot.Status != model.SlotStatusBooked {
		return &InvalidTransitionError{From: slot.Status, Event: EventComplete}
	}

	if slot.EndTime.After(tr.Now) {
		return fmt.Errorf("%w: slot %d has not finished yet", ErrInvalidState, slot.ID)
	}

	slot.Status = model.SlotStatusCompleted
	return nil
}

func applyCancelSlot(slot *model.Slot) error {
	if slot.Status != model.SlotStatusAvailable {
		return &InvalidTransitionError{From: slot.Status, Event: EventCancelSlot}
	}

	slot.Status = model.SlotStatusCancelled
	return nil
}
