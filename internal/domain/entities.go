package domain

import "time"

// Subscription описывает подписку пользователя Telegram на очередь отключений.
// Пара (TGUserID, Queue) уникальна.
type Subscription struct {
	ID       int64
	TGUserID int64
	Queue    string
	Name     string
	AddedAt  time.Time
}

// NoName — значение Name для подписки без пользовательской метки.
const NoName = ""

// RawInterval — пара "HH:MM" в том виде, в каком она извлечена из текста поста.
// End может быть сентинелом "24:00" (полночь следующего дня).
type RawInterval struct {
	Start string
	End   string
}

// Interval — канонизированный интервал отключения: абсолютные моменты,
// привязанные к дню расписания, всегда End > Start. RawStart/RawEnd сохраняют
// исходные токены для отображения (иначе "24:00" превратилось бы в "00:00").
type Interval struct {
	Start    time.Time
	End      time.Time
	RawStart string
	RawEnd   string
}

// Duration возвращает длительность интервала.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Snapshot — расписание одной очереди, извлечённое из одного поста.
// Создаётся заново на каждый разбор и целиком заменяет предыдущий снимок.
type Snapshot struct {
	Queue       string
	Raw         []RawInterval
	Intervals   []Interval
	Fingerprint string
	DateLabel   string
}

// PowerState — производное состояние "есть ли свет сейчас".
type PowerState struct {
	On bool
	// CurrentWindowEnd — конец текущего окна отключения; заполнен при On == false.
	// При перекрывающихся интервалах выбирается ближайшее включение.
	CurrentWindowEnd time.Time
	// NextTransition — начало ближайшего будущего отключения; заполнен при
	// On == true, нулевое значение означает "до конца дня отключений нет".
	NextTransition time.Time
}

// DayStats — агрегаты по расписанию за день.
type DayStats struct {
	TotalOff    time.Duration
	TotalOn     time.Duration
	OutageCount int
	DateLabel   string
}

// AlertEdge — граница интервала, о которой предупреждаем.
type AlertEdge string

const (
	// EdgePowerOff — предупреждение перед началом отключения.
	EdgePowerOff AlertEdge = "before_power_off"
	// EdgePowerOn — предупреждение перед включением.
	EdgePowerOn AlertEdge = "before_power_on"
)

// AlertKindScheduleChanged помечает уведомление об обновлённом графике.
const AlertKindScheduleChanged = "schedule_changed"

// Alert — решение планировщика: что и кому отправить.
type Alert struct {
	TGUserID int64
	Queue    string
	Kind     string
	Text     string
}

// AlertJob — задача доставки уведомления в очереди между наблюдателем
// и воркером отправки.
type AlertJob struct {
	ID        string    `json:"job_id"`
	TGUserID  int64     `json:"tg_user_id"`
	Queue     string    `json:"queue"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
