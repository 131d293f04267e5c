package notify

import (
	"fmt"
	"strings"
	"time"

	"svitlo-bot/internal/domain"
	"svitlo-bot/internal/usecase/timetable"
)

// Scheduler решает, какие уведомления пора отправить паре (пользователь,
// очередь). Отметка в Store ставится до постановки в очередь доставки:
// неудачная отправка считается использованной попыткой и не повторяется.
type Scheduler struct {
	store *Store
}

func NewScheduler(store *Store) *Scheduler {
	return &Scheduler{store: store}
}

// Evaluate возвращает уведомления, которые должны уйти прямо сейчас:
// сообщение об обновлённом графике при смене отпечатка и предупреждения о
// границах интервалов внутри окна [граница−lead, граница]. Пропущенные окна
// не навёрстываются, прошедшие границы не срабатывают.
func (s *Scheduler) Evaluate(sub domain.Subscription, leadMinutes int, snap domain.Snapshot, now time.Time) []domain.Alert {
	var alerts []domain.Alert
	if s.store.UpdateFingerprint(sub.TGUserID, sub.Queue, snap.Fingerprint) {
		alerts = append(alerts, domain.Alert{
			TGUserID: sub.TGUserID,
			Queue:    sub.Queue,
			Kind:     domain.AlertKindScheduleChanged,
			Text:     scheduleChangedText(sub, snap),
		})
	}

	lead := time.Duration(leadMinutes) * time.Minute
	for _, iv := range snap.Intervals {
		for _, edge := range []struct {
			at   time.Time
			kind domain.AlertEdge
		}{
			{at: iv.Start, kind: domain.EdgePowerOff},
			{at: iv.End, kind: domain.EdgePowerOn},
		} {
			if now.Before(edge.at.Add(-lead)) || now.After(edge.at) {
				continue
			}
			key := AlertKey{
				TGUserID:  sub.TGUserID,
				Queue:     sub.Queue,
				StartUnix: iv.Start.Unix(),
				EndUnix:   iv.End.Unix(),
				Edge:      edge.kind,
			}
			if !s.store.MarkOnce(key) {
				continue
			}
			alerts = append(alerts, domain.Alert{
				TGUserID: sub.TGUserID,
				Queue:    sub.Queue,
				Kind:     string(edge.kind),
				Text:     edgeText(edge.kind, leadMinutes, iv),
			})
		}
	}
	return alerts
}

func scheduleChangedText(sub domain.Subscription, snap domain.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s\n\n", snap.DateLabel)
	b.WriteString("⚡️ Оновлено графік для черги " + sub.Queue)
	if sub.Name != domain.NoName {
		b.WriteString(" — " + sub.Name)
	}
	b.WriteString(":\n")
	for _, r := range snap.Raw {
		fmt.Fprintf(&b, "%s - %s\n", r.Start, r.End)
	}
	stats := timetable.Stats(snap.Intervals, snap.DateLabel)
	fmt.Fprintf(&b, "\n📊 Статистика за день:\n• Вимкнень: %d\n• Світло увімкнено: %s\n• Світло вимкнено: %s",
		stats.OutageCount,
		timetable.FormatDuration(stats.TotalOn),
		timetable.FormatDuration(stats.TotalOff))
	return b.String()
}

func edgeText(edge domain.AlertEdge, leadMinutes int, iv domain.Interval) string {
	window := fmt.Sprintf("(%s-%s)", iv.RawStart, iv.RawEnd)
	if edge == domain.EdgePowerOff {
		return fmt.Sprintf("⚡ Через %d хв світло буде вимкнено %s", leadMinutes, window)
	}
	return fmt.Sprintf("💡 Через %d хв світло буде увімкнено %s", leadMinutes, window)
}
