package timetable

import (
	"testing"
	"time"
)

func TestFindScheduleBoundaries(t *testing.T) {
	posts := []string{"Черга 4.10: 08:00-12:00\nЧерга 14.1: 13:00-15:00"}

	if _, _, ok := FindSchedule(posts, "4.1"); ok {
		t.Fatalf("очередь 4.1 не должна совпадать внутри 4.10 и 14.1")
	}
	raw, _, ok := FindSchedule(posts, "4.10")
	if !ok || len(raw) != 1 || raw[0].Start != "08:00" {
		t.Fatalf("очередь 4.10 не найдена: %v", raw)
	}
	if _, _, ok := FindSchedule(posts, "14.1"); !ok {
		t.Fatalf("очередь 14.1 должна находиться по границам токена")
	}
}

func TestFindScheduleNormalization(t *testing.T) {
	posts := []string{"3.2: 8.00 – 10:30, 22.00—2.00"}

	raw, _, ok := FindSchedule(posts, "3.2")
	if !ok {
		t.Fatalf("график не найден")
	}
	want := [][2]string{{"08:00", "10:30"}, {"22:00", "02:00"}}
	if len(raw) != len(want) {
		t.Fatalf("ожидалось %d интервалов, получено %d", len(want), len(raw))
	}
	for i, w := range want {
		if raw[i].Start != w[0] || raw[i].End != w[1] {
			t.Fatalf("интервал %d: получено %s-%s, ожидалось %s-%s", i, raw[i].Start, raw[i].End, w[0], w[1])
		}
	}
}

func TestFindScheduleRecencyWins(t *testing.T) {
	posts := []string{
		"2.1: 08:00-12:00",
		"не про графики",
		"2.1: 14:00-18:00",
	}

	raw, _, ok := FindSchedule(posts, "2.1")
	if !ok || raw[0].Start != "14:00" {
		t.Fatalf("должен побеждать самый свежий пост, получено %v", raw)
	}
}

func TestFindScheduleNoFallbackToOlderPost(t *testing.T) {
	posts := []string{
		"2.1: 08:00-12:00",
		"Черга 2.1 сьогодні без відключень",
	}

	if _, _, ok := FindSchedule(posts, "2.1"); ok {
		t.Fatalf("свежий пост без пар времени не должен подменяться старым графиком")
	}
}

func TestFindScheduleNotFound(t *testing.T) {
	if _, _, ok := FindSchedule([]string{"просто новость"}, "1.1"); ok {
		t.Fatalf("график не должен находиться в постороннем тексте")
	}
}

func TestDateLabel(t *testing.T) {
	now := time.Date(2026, time.November, 18, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"сегодня", "Графік на 18.11", "сьогодні (18.11)"},
		{"завтра", "Графік на 19.11", "ЗАВТРА (19.11)"},
		{"другой день", "Графік на 25.11", "25.11"},
		{"название месяца", "Графік на 18 листопада", "18 листопада"},
		{"ключевое слово", "Графік на завтра", "ЗАВТРА"},
		{"по умолчанию", "Графік відключень", "сьогодні"},
	}
	for _, tc := range tests {
		if got := DateLabel(tc.text, now); got != tc.want {
			t.Fatalf("%s: получено %q, ожидалось %q", tc.name, got, tc.want)
		}
	}
}

func TestDateLabelYearRollover(t *testing.T) {
	now := time.Date(2026, time.December, 31, 10, 0, 0, 0, time.UTC)

	if got := DateLabel("Графік на 01.01", now); got != "ЗАВТРА (01.01)" {
		t.Fatalf("январская дата в декабре должна переноситься на следующий год, получено %q", got)
	}
}

func TestFindScheduleSharedLine(t *testing.T) {
	posts := []string{"4.1 12:00-14:00; 4.2 15:00-16:00"}

	raw, _, ok := FindSchedule(posts, "4.1")
	if !ok || len(raw) != 1 {
		t.Fatalf("интервалы соседней очереди не должны приписываться найденной: %v", raw)
	}
	if raw[0].Start != "12:00" || raw[0].End != "14:00" {
		t.Fatalf("получено %s-%s, ожидалось 12:00-14:00", raw[0].Start, raw[0].End)
	}

	raw, _, ok = FindSchedule(posts, "4.2")
	if !ok || len(raw) != 1 || raw[0].Start != "15:00" {
		t.Fatalf("вторая очередь должна получить только свой интервал: %v", raw)
	}
}

func TestFindScheduleIgnoresPairsBeforeToken(t *testing.T) {
	posts := []string{"4.1 12:00-14:00; 4.2 15:00-16:00\n4.3 18:00-20:00"}

	raw, _, ok := FindSchedule(posts, "4.3")
	if !ok || len(raw) != 1 || raw[0].Start != "18:00" {
		t.Fatalf("разбор должен начинаться после токена очереди: %v", raw)
	}
}
