package timetable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"svitlo-bot/internal/domain"
)

// midnightSentinel — условная полночь следующего дня в публикуемых графиках.
const midnightSentinel = "24:00"

// Canonicalize привязывает сырые интервалы к суткам ref и сортирует их по
// началу. Конец "24:00" означает полночь следующего дня; конец, не позже
// начала, трактуется как переход через полночь и сдвигается на сутки.
// Интервалы с нечитаемым временем молча пропускаются, пересечения не
// склеиваются: каждый исходный интервал сохраняет идентичность для ключей
// дедупликации уведомлений.
func Canonicalize(raw []domain.RawInterval, ref time.Time) []domain.Interval {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	out := make([]domain.Interval, 0, len(raw))
	for _, r := range raw {
		start, err := clockOn(day, r.Start)
		if err != nil {
			continue
		}
		var end time.Time
		if r.End == midnightSentinel {
			end = day.AddDate(0, 0, 1)
		} else {
			end, err = clockOn(day, r.End)
			if err != nil {
				continue
			}
		}
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}
		out = append(out, domain.Interval{Start: start, End: end, RawStart: r.Start, RawEnd: r.End})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func clockOn(day time.Time, token string) (time.Time, error) {
	hh, mm, ok := strings.Cut(token, ":")
	if !ok {
		return time.Time{}, fmt.Errorf("нет разделителя в токене %q", token)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("недопустимый час в токене %q", token)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("недопустимая минута в токене %q", token)
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}

// Merge склеивает пересекающиеся и смежные интервалы отсортированного списка.
// Второй результат сообщает, были ли настоящие пересечения: для публикуемых
// графиков это признак битых данных, который вызывающий код логирует.
func Merge(intervals []domain.Interval) ([]domain.Interval, bool) {
	if len(intervals) == 0 {
		return nil, false
	}
	merged := make([]domain.Interval, 0, len(intervals))
	merged = append(merged, intervals[0])
	overlapped := false
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if iv.Start.After(last.End) {
			merged = append(merged, iv)
			continue
		}
		if iv.Start.Before(last.End) {
			overlapped = true
		}
		if iv.End.After(last.End) {
			last.End = iv.End
			last.RawEnd = iv.RawEnd
		}
	}
	return merged, overlapped
}

// StateAt возвращает состояние питания в момент now. Внутри хотя бы одного
// интервала [start, end) — света нет, причём концом текущего окна считается
// ближайший из концов накрывающих интервалов. Иначе свет есть, а следующим
// переходом — самое раннее будущее начало отключения (ноль, если его нет).
func StateAt(intervals []domain.Interval, now time.Time) domain.PowerState {
	state := domain.PowerState{On: true}
	for _, iv := range intervals {
		if now.Before(iv.Start) || !now.Before(iv.End) {
			continue
		}
		if state.On || iv.End.Before(state.CurrentWindowEnd) {
			state.On = false
			state.CurrentWindowEnd = iv.End
		}
	}
	if !state.On {
		return state
	}
	for _, iv := range intervals {
		if iv.Start.After(now) && (state.NextTransition.IsZero() || iv.Start.Before(state.NextTransition)) {
			state.NextTransition = iv.Start
		}
	}
	return state
}

// LitPeriods возвращает промежутки с питанием между отключениями, обрезанные
// до [dayStart, dayEnd). Вход обязан быть результатом Merge: только тогда
// светлые и тёмные периоды разбивают сутки без пересечений.
func LitPeriods(merged []domain.Interval, dayStart, dayEnd time.Time) []domain.Interval {
	var lit []domain.Interval
	prev := dayStart
	for _, iv := range merged {
		start := iv.Start
		if start.Before(dayStart) {
			start = dayStart
		}
		if prev.Before(start) {
			end := start
			if end.After(dayEnd) {
				end = dayEnd
			}
			if prev.Before(end) {
				lit = append(lit, domain.Interval{Start: prev, End: end})
			}
		}
		if iv.End.After(prev) {
			prev = iv.End
		}
	}
	if prev.Before(dayEnd) {
		lit = append(lit, domain.Interval{Start: prev, End: dayEnd})
	}
	return lit
}
