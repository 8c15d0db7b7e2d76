package scheduling

import "time"

// Interval полуоткрытый временной интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов.
// Интервалы, соприкасающиеся концами, не пересекаются.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// IsPast сообщает, что интервал полностью прошёл к моменту now
func (i Interval) IsPast(now time.Time) bool {
	return !i.End.After(now)
}

// IsValid проверяет что интервал имеет положительную длительность
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}
