package scheduling

import (
	"errors"
	"fmt"

	"github.com/dentoria/booking_api/internal/model"
)

var (
	// ErrValidation некорректный вход (нулевая длительность, перевёрнутый перерыв и т.п.)
	ErrValidation = errors.New("validation failed")

	// ErrConflict пересечение с занятым слотом или попытка двойной брони
	ErrConflict = errors.New("slot conflict")

	// ErrNotFound запись с таким id не существует
	ErrNotFound = errors.New("not found")

	// ErrInvalidState операция не разрешена в текущем статусе слота
	ErrInvalidState = errors.New("operation not allowed in current state")
)

// InvalidTransitionError переход, которого нет в таблице состояний
type InvalidTransitionError struct {
	From  model.SlotStatus
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: event %q is not allowed from status %q", e.Event, e.From)
}

// Unwrap позволяет ловить переходные ошибки через errors.Is(err, ErrInvalidState)
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidState
}
