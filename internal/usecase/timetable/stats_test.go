package timetable

import (
	"testing"
	"time"

	"svitlo-bot/internal/domain"
)

func TestStats(t *testing.T) {
	ref := time.Date(2026, time.November, 18, 0, 0, 0, 0, kyiv)
	intervals := Canonicalize([]domain.RawInterval{
		{Start: "08:00", End: "12:00"},
		{Start: "20:00", End: "24:00"},
	}, ref)

	stats := Stats(intervals, "сьогодні (18.11)")
	if stats.TotalOff != 8*time.Hour {
		t.Fatalf("тёмное время: получено %v, ожидалось 8h", stats.TotalOff)
	}
	if stats.TotalOn != 16*time.Hour {
		t.Fatalf("светлое время: получено %v, ожидалось 16h", stats.TotalOn)
	}
	if stats.OutageCount != 2 {
		t.Fatalf("количество отключений: получено %d, ожидалось 2", stats.OutageCount)
	}
	if stats.DateLabel != "сьогодні (18.11)" {
		t.Fatalf("метка даты должна передаваться как есть")
	}
}

func TestStatsCountsUnmergedOutages(t *testing.T) {
	ref := time.Date(2026, time.November, 18, 0, 0, 0, 0, kyiv)
	intervals := Canonicalize([]domain.RawInterval{
		{Start: "08:00", End: "12:00"},
		{Start: "12:00", End: "14:00"},
	}, ref)

	stats := Stats(intervals, "сьогодні")
	if stats.OutageCount != 2 {
		t.Fatalf("смежные отключения считаются раздельно, получено %d", stats.OutageCount)
	}
	if stats.TotalOff != 6*time.Hour {
		t.Fatalf("тёмное время по объединённым интервалам: %v", stats.TotalOff)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(16*time.Hour + 30*time.Minute); got != "16 год 30 хв" {
		t.Fatalf("получено %q", got)
	}
	if got := FormatDuration(45 * time.Minute); got != "0 год 45 хв" {
		t.Fatalf("получено %q", got)
	}
}
