package model

import (
	"fmt"
	"time"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusCompleted SlotStatus = "completed"
	SlotStatusCancelled SlotStatus = "cancelled"
)

// Slot — один приём в расписании специалиста.
// Интервал [StartTime, EndTime) полуоткрытый, оба конца в пределах одного дня.
type Slot struct {
	ID           int64      `json:"id"`
	SpecialistID int64      `json:"specialist_id"`
	ClientID     *int64     `json:"client_id"`  // указатель - заполняется только при брони
	ServiceID    *int64     `json:"service_id"` // указатель - выбирается клиентом при брони
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	Status       SlotStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewAvailableSlot создаёт свободный слот и проверяет инварианты времени
func NewAvailableSlot(specialistID int64, startTime, endTime time.Time) (*Slot, error) {
	if specialistID <= 0 {
		return nil, fmt.Errorf("specialist id is required")
	}

	if !endTime.After(startTime) {
		return nil, fmt.Errorf("end time must be after start time")
	}

	// Слоты не пересекают полночь
	sy, sm, sd := startTime.Date()
	ey, em, ed := endTime.Date()
	if sy != ey || sm != em || sd != ed {
		return nil, fmt.Errorf("slot must start and end on the same day")
	}

	return &Slot{
		SpecialistID: specialistID,
		StartTime:    startTime,
		EndTime:      endTime,
		Status:       SlotStatusAvailable,
		ClientID:     nil,
		ServiceID:    nil,
	}, nil
}

// Clone возвращает независимую копию слота
func (s *Slot) Clone() *Slot {
	c := *s
	if s.ClientID != nil {
		v := *s.ClientID
		c.ClientID = &v
	}
	if s.ServiceID != nil {
		v := *s.ServiceID
		c.ServiceID = &v
	}
	return &c
}

// Occupies сообщает, участвует ли слот в проверке пересечений.
// Завершённые и отменённые слоты календарь не занимают.
func (s *Slot) Occupies() bool {
	return s.Status == SlotStatusAvailable || s.Status == SlotStatusBooked
}
