package scheduling

import (
	"testing"
	"time"

	"github.com/dentoria/booking_api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baseRequest() model.BulkGenerationRequest {
	return model.BulkGenerationRequest{
		SpecialistID:        1,
		StartDate:           date(2024, time.June, 3), // понедельник
		EndDate:             date(2024, time.June, 3),
		DayStart:            model.NewTimeOfDay(9, 0),
		DayEnd:              model.NewTimeOfDay(17, 0),
		SlotDurationMinutes: 60,
	}
}

func TestGenerateGrid_BreakExclusion(t *testing.T) {
	req := baseRequest()
	req.BreakStart = model.NewTimeOfDay(13, 0)
	req.BreakEnd = model.NewTimeOfDay(14, 0)

	candidates, err := GenerateGrid(req)
	require.NoError(t, err)

	// 13:00-14:00 выпадает из-за перерыва, остальные часы на месте
	expected := []string{
		"09:00", "10:00", "11:00", "12:00", "14:00", "15:00", "16:00",
	}
	require.Len(t, candidates, len(expected))
	for i, c := range candidates {
		assert.Equal(t, expected[i], c.Start.Format("15:04"))
		assert.Equal(t, time.Hour, c.End.Sub(c.Start))
	}
}

func TestGenerateGrid_PartialBreakOverlapExcluded(t *testing.T) {
	req := baseRequest()
	req.BreakStart = model.NewTimeOfDay(13, 0)
	req.BreakEnd = model.NewTimeOfDay(14, 0)
	req.SlotDurationMinutes = 90

	candidates, err := GenerateGrid(req)
	require.NoError(t, err)

	// Сетка шагает по 90 минут: 12:00-13:30 и 13:30-15:00 цепляют перерыв
	// и выпадают целиком, курсор при этом не сдвигается
	expected := []string{"09:00", "10:30", "15:00"}
	require.Len(t, candidates, len(expected))
	for i, c := range candidates {
		assert.Equal(t, expected[i], c.Start.Format("15:04"))
	}
}

func TestGenerateGrid_ZeroWidthBreakExcludesNothing(t *testing.T) {
	req := baseRequest()
	req.BreakStart = model.NewTimeOfDay(13, 0)
	req.BreakEnd = model.NewTimeOfDay(13, 0)

	candidates, err := GenerateGrid(req)
	require.NoError(t, err)
	assert.Len(t, candidates, 8)
}

func TestGenerateGrid_SkipsWeekend(t *testing.T) {
	req := baseRequest()
	req.StartDate = date(2024, time.June, 7)  // пятница
	req.EndDate = date(2024, time.June, 10)   // понедельник

	candidates, err := GenerateGrid(req)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	for _, c := range candidates {
		wd := c.Start.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}

	// 8 слотов в пятницу + 8 в понедельник
	assert.Len(t, candidates, 16)
}

func TestGenerateGrid_TwoDayScenario(t *testing.T) {
	req := baseRequest()
	req.EndDate = date(2024, time.June, 4)
	req.DayStart = model.NewTimeOfDay(9, 0)
	req.DayEnd = model.NewTimeOfDay(11, 0)

	candidates, err := GenerateGrid(req)
	require.NoError(t, err)

	require.Len(t, candidates, 4)
	assert.Equal(t, "2024-06-03 09:00", candidates[0].Start.Format("2006-01-02 15:04"))
	assert.Equal(t, "2024-06-03 10:00", candidates[1].Start.Format("2006-01-02 15:04"))
	assert.Equal(t, "2024-06-04 09:00", candidates[2].Start.Format("2006-01-02 15:04"))
	assert.Equal(t, "2024-06-04 10:00", candidates[3].Start.Format("2006-01-02 15:04"))
}

func TestGenerateGrid_Deterministic(t *testing.T) {
	req := baseRequest()
	req.EndDate = date(2024, time.June, 14)
	req.BreakStart = model.NewTimeOfDay(12, 30)
	req.BreakEnd = model.NewTimeOfDay(13, 30)

	first, err := GenerateGrid(req)
	require.NoError(t, err)
	second, err := GenerateGrid(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateGrid_LastSlotMustFitDay(t *testing.T) {
	req := baseRequest()
	req.DayEnd = model.NewTimeOfDay(17, 30)

	candidates, err := GenerateGrid(req)
	require.NoError(t, err)

	// 17:00-18:00 не помещается до 17:30 и не выдаётся
	require.Len(t, candidates, 8)
	assert.Equal(t, "16:00", candidates[len(candidates)-1].Start.Format("15:04"))
}

func TestGenerateGrid_EmptyDateRange(t *testing.T) {
	req := baseRequest()
	req.StartDate = date(2024, time.June, 10)
	req.EndDate = date(2024, time.June, 3)

	candidates, err := GenerateGrid(req)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestGenerateGrid_InvalidInput(t *testing.T) {
	t.Run("non-positive duration", func(t *testing.T) {
		req := baseRequest()
		req.SlotDurationMinutes = 0
		_, err := GenerateGrid(req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("inverted break", func(t *testing.T) {
		req := baseRequest()
		req.BreakStart = model.NewTimeOfDay(14, 0)
		req.BreakEnd = model.NewTimeOfDay(13, 0)
		_, err := GenerateGrid(req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("day end before day start", func(t *testing.T) {
		req := baseRequest()
		req.DayStart = model.NewTimeOfDay(17, 0)
		req.DayEnd = model.NewTimeOfDay(9, 0)
		_, err := GenerateGrid(req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing specialist", func(t *testing.T) {
		req := baseRequest()
		req.SpecialistID = 0
		_, err := GenerateGrid(req)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
