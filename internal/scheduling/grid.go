package scheduling

import (
	"fmt"
	"time"

	"github.com/dentoria/booking_api/internal/model"
)

// GenerateGrid строит кандидатов слотов по описанию рабочего периода.
// Чистая функция: одинаковый запрос всегда даёт одинаковую последовательность.
//
// Сетка фиксированная: курсор всегда шагает на длительность слота, даже если
// кандидат выпал из-за перерыва. Суббота и воскресенье пропускаются целиком.
func GenerateGrid(req model.BulkGenerationRequest) ([]Interval, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	step := time.Duration(req.SlotDurationMinutes) * time.Minute

	var candidates []Interval
	for date := req.StartDate; !date.After(req.EndDate); date = date.AddDate(0, 0, 1) {
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}

		dayEnd := req.DayEnd.At(date)
		breakWindow := Interval{
			Start: req.BreakStart.At(date),
			End:   req.BreakEnd.At(date),
		}

		for cursor := req.DayStart.At(date); cursor.Before(dayEnd); cursor = cursor.Add(step) {
			slotEnd := cursor.Add(step)
			if slotEnd.After(dayEnd) {
				break
			}

			candidate := Interval{Start: cursor, End: slotEnd}

			// Слот должен целиком лежать до или после перерыва.
			// Нулевой перерыв (BreakStart == BreakEnd) не исключает ничего.
			if breakWindow.IsValid() && candidate.Overlaps(breakWindow) {
				continue
			}

			candidates = append(candidates, candidate)
		}
	}

	return candidates, nil
}
