package timetable

import (
	"fmt"
	"time"

	"svitlo-bot/internal/domain"
)

// Stats считает дневные агрегаты по каноническому списку отключений.
// Суммарное тёмное время берётся по объединённым интервалам, светлое — как
// остаток суток; количество отключений считается по исходному списку без
// объединения, как в публикуемых сводках.
func Stats(intervals []domain.Interval, dateLabel string) domain.DayStats {
	merged, _ := Merge(intervals)
	var off time.Duration
	for _, iv := range merged {
		off += iv.Duration()
	}
	on := 24*time.Hour - off
	if on < 0 {
		on = 0
	}
	return domain.DayStats{
		TotalOff:    off,
		TotalOn:     on,
		OutageCount: len(intervals),
		DateLabel:   dateLabel,
	}
}

// FormatDuration печатает длительность в виде "X год Y хв".
func FormatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	return fmt.Sprintf("%d год %d хв", mins/60, mins%60)
}
