package timetable

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"svitlo-bot/internal/domain"
)

// timePairRe — пара времени вида "8.00-10:30" с любым тире между токенами.
var timePairRe = regexp.MustCompile(`(\d{1,2}[:.]\d{2})\s*[-–—]\s*(\d{1,2}[:.]\d{2})`)

var (
	dayMonthRe  = regexp.MustCompile(`(\d{2})\.(\d{2})`)
	monthNameRe = regexp.MustCompile(`(\d{1,2})\s+(січня|лютого|березня|квітня|травня|червня|липня|серпня|вересня|жовтня|листопада|грудня)`)

	// queueLikeRe — числовой токен, похожий на номер очереди. Используется,
	// чтобы обрезать разбираемый участок строки на соседней очереди.
	queueLikeRe = regexp.MustCompile(`\d+(\.\d+)?`)
	timeTokenRe = regexp.MustCompile(`\d{1,2}[:.]\d{2}`)
)

// FindSchedule ищет график очереди в выборке постов, от самых свежих к старым.
// Побеждает самый свежий пост, в котором очередь вообще упомянута: если в нём
// нет ни одной пары времени, более старые посты не рассматриваются — иначе
// пользователь получил бы устаревший график вместо актуального "нет данных".
// Возвращает интервалы, текст выбранного поста и признак успеха.
func FindSchedule(posts []string, queue string) ([]domain.RawInterval, string, bool) {
	for i := len(posts) - 1; i >= 0; i-- {
		text := posts[i]
		mentioned := false
		for _, line := range strings.Split(text, "\n") {
			span, found := scheduleSpan(line, queue)
			if !found {
				continue
			}
			mentioned = true
			pairs := timePairRe.FindAllStringSubmatch(span, -1)
			if len(pairs) == 0 {
				continue
			}
			raw := make([]domain.RawInterval, 0, len(pairs))
			for _, p := range pairs {
				raw = append(raw, domain.RawInterval{Start: NormalizeTime(p[1]), End: NormalizeTime(p[2])})
			}
			return raw, text, true
		}
		if mentioned {
			return nil, "", false
		}
	}
	return nil, "", false
}

// scheduleSpan вырезает участок строки с интервалами найденной очереди:
// от её токена до следующего числа, похожего на номер очереди. Без обрезки
// интервалы соседней очереди в той же строке приписывались бы найденной.
// Токены времени ("8.00", "12:00") за номер очереди не принимаются.
func scheduleSpan(line, queue string) (string, bool) {
	idx := queueTokenIndex(line, queue)
	if idx < 0 {
		return "", false
	}
	rest := line[idx+len(queue):]
	times := timeTokenRe.FindAllStringIndex(rest, -1)
	for _, m := range queueLikeRe.FindAllStringIndex(rest, -1) {
		if !tokenBoundary(rest, m[0]-1) || !tokenBoundary(rest, m[1]) {
			continue
		}
		if insideAny(times, m[0], m[1]) {
			continue
		}
		return rest[:m[0]], true
	}
	return rest, true
}

// queueTokenIndex возвращает позицию первого вхождения очереди как отдельного
// токена, или -1: "4.1" не должна совпадать внутри "4.10" или "14.1". Границей
// считается любой символ, кроме ASCII-цифры и точки.
func queueTokenIndex(line, queue string) int {
	if queue == "" {
		return -1
	}
	from := 0
	for {
		idx := strings.Index(line[from:], queue)
		if idx < 0 {
			return -1
		}
		idx += from
		if tokenBoundary(line, idx-1) && tokenBoundary(line, idx+len(queue)) {
			return idx
		}
		from = idx + 1
	}
}

func insideAny(spans [][]int, start, end int) bool {
	for _, s := range spans {
		if start >= s[0] && end <= s[1] {
			return true
		}
	}
	return false
}

func tokenBoundary(line string, pos int) bool {
	if pos < 0 || pos >= len(line) {
		return true
	}
	b := line[pos]
	return !(b >= '0' && b <= '9') && b != '.'
}

// NormalizeTime приводит токен времени к виду "HH:MM": точка-разделитель
// заменяется двоеточием, одноразрядный час дополняется ведущим нулём.
func NormalizeTime(token string) string {
	token = strings.ReplaceAll(strings.TrimSpace(token), ".", ":")
	if i := strings.IndexByte(token, ':'); i == 1 {
		token = "0" + token
	}
	return token
}

// DateLabel извлекает из текста поста человекочитаемую метку даты графика.
// Сначала ищется токен "DD.MM", затем дата с украинским названием месяца;
// при отсутствии обеих форм решают ключевые слова, по умолчанию — "сьогодні".
func DateLabel(text string, now time.Time) string {
	if m := dayMonthRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		label := fmt.Sprintf("%02d.%02d", day, month)
		if target, ok := resolveDate(day, month, now); ok {
			switch {
			case sameDate(target, now):
				return "сьогодні (" + label + ")"
			case sameDate(target, now.AddDate(0, 0, 1)):
				return "ЗАВТРА (" + label + ")"
			}
		}
		return label
	}
	lower := strings.ToLower(text)
	if m := monthNameRe.FindStringSubmatch(lower); m != nil {
		return m[1] + " " + m[2]
	}
	if strings.Contains(lower, "завтра") {
		return "ЗАВТРА"
	}
	return "сьогодні"
}

// resolveDate строит дату в году now с переносом января на следующий год,
// если пост опубликован в декабре. Невозможные даты вида "31.02" отклоняются.
func resolveDate(day, month int, now time.Time) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year := now.Year()
	if month == 1 && now.Month() == time.December {
		year++
	}
	target := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if target.Day() != day || target.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return target, true
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
