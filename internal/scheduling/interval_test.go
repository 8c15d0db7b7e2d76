package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func interval(startHour, endHour int) Interval {
	day := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	return Interval{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", interval(9, 10), interval(9, 10), true},
		{"contained", interval(9, 12), interval(10, 11), true},
		{"partial left", interval(9, 11), interval(10, 12), true},
		{"partial right", interval(10, 12), interval(9, 11), true},
		{"touching ends", interval(9, 10), interval(10, 11), false},
		{"disjoint", interval(9, 10), interval(12, 13), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			// Пересечение симметрично
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestInterval_IsPast(t *testing.T) {
	i := interval(9, 10)

	assert.False(t, i.IsPast(i.Start))
	assert.False(t, i.IsPast(i.Start.Add(30*time.Minute)))
	// Конец интервала не включается: в момент End интервал уже прошёл
	assert.True(t, i.IsPast(i.End))
	assert.True(t, i.IsPast(i.End.Add(time.Hour)))
}

func TestInterval_IsValid(t *testing.T) {
	assert.True(t, interval(9, 10).IsValid())
	assert.False(t, interval(10, 10).IsValid())
	assert.False(t, interval(11, 10).IsValid())
}
