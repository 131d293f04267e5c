package timetable

import (
	"testing"
	"time"

	"svitlo-bot/internal/domain"
)

var kyiv = time.FixedZone("EET", 2*60*60)

func day(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, time.November, 18, 0, 0, 0, 0, kyiv)
}

func TestCanonicalizeWrapAround(t *testing.T) {
	ref := day(t)

	intervals := Canonicalize([]domain.RawInterval{{Start: "22:00", End: "02:00"}}, ref)
	if len(intervals) != 1 {
		t.Fatalf("ожидался один интервал, получено %d", len(intervals))
	}
	if got := intervals[0].Duration(); got != 4*time.Hour {
		t.Fatalf("переход через полночь: длительность %v, ожидалось 4h", got)
	}
	if intervals[0].End.Day() != 19 {
		t.Fatalf("конец интервала должен попадать на следующий день")
	}
}

func TestCanonicalizeMidnightSentinel(t *testing.T) {
	intervals := Canonicalize([]domain.RawInterval{{Start: "20:00", End: "24:00"}}, day(t))
	if len(intervals) != 1 || intervals[0].Duration() != 4*time.Hour {
		t.Fatalf("24:00 должен означать полночь следующего дня: %v", intervals)
	}
}

func TestCanonicalizeEqualEndsWrap(t *testing.T) {
	intervals := Canonicalize([]domain.RawInterval{{Start: "10:00", End: "10:00"}}, day(t))
	if len(intervals) != 1 || intervals[0].Duration() != 24*time.Hour {
		t.Fatalf("конец, равный началу, трактуется как переход через сутки: %v", intervals)
	}
}

func TestCanonicalizeSkipsMalformedAndSorts(t *testing.T) {
	raw := []domain.RawInterval{
		{Start: "14:00", End: "16:00"},
		{Start: "25:00", End: "26:00"},
		{Start: "08:00", End: "12:00"},
	}

	intervals := Canonicalize(raw, day(t))
	if len(intervals) != 2 {
		t.Fatalf("нечитаемый интервал должен пропускаться, получено %d", len(intervals))
	}
	if !intervals[0].Start.Before(intervals[1].Start) {
		t.Fatalf("интервалы должны быть отсортированы по началу")
	}
	if intervals[0].RawStart != "08:00" {
		t.Fatalf("первым должен идти утренний интервал, получен %s", intervals[0].RawStart)
	}
}

func TestMergeOverlapping(t *testing.T) {
	ref := day(t)
	intervals := Canonicalize([]domain.RawInterval{
		{Start: "08:00", End: "12:00"},
		{Start: "11:00", End: "14:00"},
		{Start: "14:00", End: "15:00"},
		{Start: "20:00", End: "22:00"},
	}, ref)

	merged, overlapped := Merge(intervals)
	if !overlapped {
		t.Fatalf("пересечение 11:00-14:00 с 08:00-12:00 должно быть замечено")
	}
	if len(merged) != 2 {
		t.Fatalf("ожидалось 2 объединённых интервала, получено %d", len(merged))
	}
	if merged[0].Duration() != 7*time.Hour {
		t.Fatalf("смежные интервалы должны склеиваться: %v", merged[0].Duration())
	}
}

func TestStateAtOvernight(t *testing.T) {
	ref := day(t)
	intervals := Canonicalize([]domain.RawInterval{{Start: "22:00", End: "02:00"}}, ref)

	at := time.Date(2026, time.November, 18, 23, 30, 0, 0, kyiv)
	state := StateAt(intervals, at)
	if state.On {
		t.Fatalf("в 23:30 внутри окна 22:00-02:00 света быть не должно")
	}
	if state.CurrentWindowEnd.Hour() != 2 || state.CurrentWindowEnd.Day() != 19 {
		t.Fatalf("окно должно заканчиваться в 02:00 следующего дня, получено %v", state.CurrentWindowEnd)
	}
}

func TestStateAtPicksEarliestEnd(t *testing.T) {
	ref := day(t)
	intervals := Canonicalize([]domain.RawInterval{
		{Start: "08:00", End: "14:00"},
		{Start: "09:00", End: "12:00"},
	}, ref)

	at := time.Date(2026, time.November, 18, 10, 0, 0, 0, kyiv)
	state := StateAt(intervals, at)
	if state.On || state.CurrentWindowEnd.Hour() != 12 {
		t.Fatalf("из накрывающих интервалов берётся ближайший конец, получено %v", state.CurrentWindowEnd)
	}
}

func TestStateAtWhenOn(t *testing.T) {
	ref := day(t)
	intervals := Canonicalize([]domain.RawInterval{{Start: "14:00", End: "16:00"}}, ref)

	at := time.Date(2026, time.November, 18, 10, 0, 0, 0, kyiv)
	state := StateAt(intervals, at)
	if !state.On {
		t.Fatalf("вне интервалов свет должен быть включён")
	}
	if state.NextTransition.Hour() != 14 {
		t.Fatalf("следующим переходом должно быть 14:00, получено %v", state.NextTransition)
	}
}

func TestLitPeriodsPartitionDay(t *testing.T) {
	ref := day(t)
	dayEnd := ref.AddDate(0, 0, 1)
	intervals := Canonicalize([]domain.RawInterval{
		{Start: "08:00", End: "12:00"},
		{Start: "20:00", End: "24:00"},
	}, ref)
	merged, _ := Merge(intervals)

	lit := LitPeriods(merged, ref, dayEnd)
	if len(lit) != 2 {
		t.Fatalf("ожидалось 2 светлых периода, получено %d", len(lit))
	}
	var total time.Duration
	for _, iv := range lit {
		total += iv.Duration()
	}
	for _, iv := range merged {
		total += iv.Duration()
	}
	if total != 24*time.Hour {
		t.Fatalf("светлые и тёмные периоды должны разбивать сутки, сумма %v", total)
	}
	if lit[0].Start != ref || lit[0].End.Hour() != 8 {
		t.Fatalf("первый светлый период должен идти от полуночи до 08:00: %v", lit[0])
	}
}

func TestLitPeriodsFullDayWhenNoOutages(t *testing.T) {
	ref := day(t)
	lit := LitPeriods(nil, ref, ref.AddDate(0, 0, 1))
	if len(lit) != 1 || lit[0].Duration() != 24*time.Hour {
		t.Fatalf("без отключений светлым должен быть весь день: %v", lit)
	}
}
