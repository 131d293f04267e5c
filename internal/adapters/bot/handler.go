package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"svitlo-bot/internal/domain"
	"svitlo-bot/internal/infra/metrics"
	"svitlo-bot/internal/usecase/subscriptions"
	"svitlo-bot/internal/usecase/timetable"
)

const msgUnavailable = "⚠️ Дані тимчасово недоступні, спробуй пізніше."

// Handler обслуживает вебхук бота: команды, кнопки меню и пошаговые диалоги
// добавления и удаления очередей.
type Handler struct {
	bot       *tgbotapi.BotAPI
	log       zerolog.Logger
	subsUC    *subscriptions.Service
	timetable *timetable.Service

	mu            sync.Mutex
	pendingAdd    map[int64]struct{}
	pendingDelete map[int64]struct{}
	pendingNotify map[int64]struct{}
}

// NewHandler создаёт обработчик.
func NewHandler(bot *tgbotapi.BotAPI, log zerolog.Logger, subsUC *subscriptions.Service, tt *timetable.Service) *Handler {
	return &Handler{
		bot:           bot,
		log:           log,
		subsUC:        subsUC,
		timetable:     tt,
		pendingAdd:    make(map[int64]struct{}),
		pendingDelete: make(map[int64]struct{}),
		pendingNotify: make(map[int64]struct{}),
	}
}

// HandleUpdate обрабатывает входящий апдейт.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		h.handleMessage(ctx, upd.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID
	userID := msg.From.ID

	// Кнопка меню обрывает незавершённый диалог.
	if isMenuButton(text) || strings.HasPrefix(text, "/") {
		h.clearPending(userID)
	} else if h.tryPendingInput(ctx, chatID, userID, text) {
		return
	}

	switch {
	case strings.HasPrefix(text, "/start"):
		h.handleStart(chatID)
	case strings.HasPrefix(text, "/setqueue"):
		h.handleAdd(ctx, chatID, userID, strings.TrimSpace(strings.TrimPrefix(text, "/setqueue")))
	case strings.HasPrefix(text, "/myqueue"):
		h.handleList(ctx, chatID, userID)
	case strings.HasPrefix(text, "/delqueue"):
		h.handleDelete(ctx, chatID, userID, strings.TrimSpace(strings.TrimPrefix(text, "/delqueue")))
	case strings.HasPrefix(text, "/setnotify"):
		h.handleSetNotify(ctx, chatID, userID, strings.TrimSpace(strings.TrimPrefix(text, "/setnotify")))
	case strings.HasPrefix(text, "/mynotify"):
		h.reply(chatID, fmt.Sprintf("⏰ Час попередження: %d хв", h.subsUC.Lead(ctx, userID)), nil)
	case strings.HasPrefix(text, "/check"):
		h.handleCheck(ctx, chatID, userID, "")
	case strings.HasPrefix(text, "/light"):
		h.handleLight(ctx, chatID, userID)
	default:
		h.handleMenu(ctx, chatID, userID, text)
	}
}

func (h *Handler) handleMenu(ctx context.Context, chatID, userID int64, text string) {
	switch text {
	case btnCheck:
		h.handleCheck(ctx, chatID, userID, "")
	case btnLight:
		h.handleLight(ctx, chatID, userID)
	case btnMy:
		h.handleList(ctx, chatID, userID)
	case btnAdd:
		h.setPending(userID, h.pendingAdd)
		h.reply(chatID, "Введи номер черги і, за бажанням, назву.\nНаприклад: 4.1 Дім", nil)
	case btnDelete:
		h.promptDelete(ctx, chatID, userID)
	case btnNotify:
		h.setPending(userID, h.pendingNotify)
		h.reply(chatID, fmt.Sprintf("⏰ Зараз попереджаю за %d хв.\nОбери або введи час у хвилинах (1-180):", h.subsUC.Lead(ctx, userID)), notifyKeyboard())
	case btnBack:
		h.reply(chatID, "Головне меню", mainKeyboard())
	default:
		if h.tryQueueButton(ctx, chatID, userID, text) {
			return
		}
		h.reply(chatID, "Не розумію. Обери дію з меню 👇", mainKeyboard())
	}
}

// tryPendingInput продолжает начатый диалог. Возвращает false, если для
// пользователя нет незавершённого шага.
func (h *Handler) tryPendingInput(ctx context.Context, chatID, userID int64, text string) bool {
	h.mu.Lock()
	_, add := h.pendingAdd[userID]
	_, del := h.pendingDelete[userID]
	_, notify := h.pendingNotify[userID]
	delete(h.pendingAdd, userID)
	delete(h.pendingDelete, userID)
	delete(h.pendingNotify, userID)
	h.mu.Unlock()

	switch {
	case add:
		h.handleAdd(ctx, chatID, userID, text)
	case del:
		queue := text
		if i := strings.Index(queue, " — "); i >= 0 {
			queue = queue[:i]
		}
		h.handleDelete(ctx, chatID, userID, strings.TrimSpace(queue))
	case notify:
		h.handleSetNotify(ctx, chatID, userID, text)
	default:
		return false
	}
	return true
}

func (h *Handler) setPending(userID int64, pending map[int64]struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	pending[userID] = struct{}{}
}

func (h *Handler) clearPending(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pendingAdd, userID)
	delete(h.pendingDelete, userID)
	delete(h.pendingNotify, userID)
}

func (h *Handler) handleStart(chatID int64) {
	h.reply(chatID, "Привіт! Я стежу за графіками відключень світла.\n"+
		"Додай свою чергу, і я попереджу перед вимкненням та увімкненням.", mainKeyboard())
}

func (h *Handler) handleAdd(ctx context.Context, chatID, userID int64, payload string) {
	if payload == "" {
		h.reply(chatID, "Вкажи номер черги: /setqueue 4.1 Дім", nil)
		return
	}
	sub, err := h.subsUC.Subscribe(ctx, userID, payload)
	switch {
	case errors.Is(err, subscriptions.ErrInvalidQueue):
		h.reply(chatID, "❌ Неправильний формат черги. Наприклад: 4.1", nil)
	case errors.Is(err, subscriptions.ErrAlreadySubscribed):
		h.reply(chatID, "ℹ️ Ця черга вже є у твоєму списку.", mainKeyboard())
	case err != nil:
		h.log.Error().Err(err).Int64("tg_user_id", userID).Msg("bot: не удалось добавить очередь")
		h.reply(chatID, msgUnavailable, nil)
	default:
		h.reply(chatID, "✅ Чергу додано: "+SubscriptionLabel(sub), mainKeyboard())
	}
}

func (h *Handler) handleList(ctx context.Context, chatID, userID int64) {
	subs, err := h.subsUC.List(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Int64("tg_user_id", userID).Msg("bot: не удалось прочитать подписки")
		h.reply(chatID, msgUnavailable, nil)
		return
	}
	if len(subs) == 0 {
		h.reply(chatID, "Ти ще не додав(ла) жодної черги. Натисни «"+btnAdd+"».", mainKeyboard())
		return
	}
	var b strings.Builder
	b.WriteString("📋 Твої черги:\n")
	for i, sub := range subs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, SubscriptionLabel(sub))
	}
	h.reply(chatID, b.String(), queuesKeyboard(subs))
}

func (h *Handler) promptDelete(ctx context.Context, chatID, userID int64) {
	subs, err := h.subsUC.List(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Int64("tg_user_id", userID).Msg("bot: не удалось прочитать подписки")
		h.reply(chatID, msgUnavailable, nil)
		return
	}
	if len(subs) == 0 {
		h.reply(chatID, "Видаляти нічого: список черг порожній.", mainKeyboard())
		return
	}
	h.setPending(userID, h.pendingDelete)
	h.reply(chatID, "Обери чергу, яку видалити:", queuesKeyboard(subs))
}

func (h *Handler) handleDelete(ctx context.Context, chatID, userID int64, queue string) {
	if queue == "" {
		h.promptDelete(ctx, chatID, userID)
		return
	}
	err := h.subsUC.Unsubscribe(ctx, userID, queue)
	switch {
	case errors.Is(err, subscriptions.ErrNotSubscribed):
		h.reply(chatID, "❌ Такої черги немає у твоєму списку.", mainKeyboard())
	case err != nil:
		h.log.Error().Err(err).Int64("tg_user_id", userID).Msg("bot: не удалось удалить очередь")
		h.reply(chatID, msgUnavailable, nil)
	default:
		h.reply(chatID, "🗑 Чергу "+queue+" видалено.", mainKeyboard())
	}
}

func (h *Handler) handleSetNotify(ctx context.Context, chatID, userID int64, payload string) {
	minutes, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil {
		h.reply(chatID, "❌ Введи число хвилин від 1 до 180.", notifyKeyboard())
		return
	}
	switch err := h.subsUC.SetLead(ctx, userID, minutes); {
	case errors.Is(err, subscriptions.ErrLeadOutOfRange):
		h.reply(chatID, "❌ Введи число хвилин від 1 до 180.", notifyKeyboard())
	case err != nil:
		h.log.Error().Err(err).Int64("tg_user_id", userID).Msg("bot: не удалось сохранить время предупреждения")
		h.reply(chatID, msgUnavailable, nil)
	default:
		h.reply(chatID, fmt.Sprintf("⏰ Добре, попереджатиму за %d хв.", minutes), mainKeyboard())
	}
}

// tryQueueButton обрабатывает нажатие кнопки конкретной очереди.
func (h *Handler) tryQueueButton(ctx context.Context, chatID, userID int64, text string) bool {
	subs, err := h.subsUC.List(ctx, userID)
	if err != nil {
		return false
	}
	for _, sub := range subs {
		if text == SubscriptionLabel(sub) || text == sub.Queue {
			h.handleCheck(ctx, chatID, userID, sub.Queue)
			return true
		}
	}
	return false
}

// firstQueue возвращает очередь для запросов без явного номера.
func (h *Handler) firstQueue(ctx context.Context, chatID, userID int64) (string, bool) {
	subs, err := h.subsUC.List(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Int64("tg_user_id", userID).Msg("bot: не удалось прочитать подписки")
		h.reply(chatID, msgUnavailable, nil)
		return "", false
	}
	if len(subs) == 0 {
		h.reply(chatID, "Спочатку додай чергу — натисни «"+btnAdd+"».", mainKeyboard())
		return "", false
	}
	return subs[0].Queue, true
}

func (h *Handler) handleCheck(ctx context.Context, chatID, userID int64, queue string) {
	if queue == "" {
		var ok bool
		if queue, ok = h.firstQueue(ctx, chatID, userID); !ok {
			return
		}
	}
	snap, err := h.timetable.Snapshot(ctx, queue, time.Now())
	switch {
	case errors.Is(err, timetable.ErrNoData):
		h.reply(chatID, "ℹ️ У свіжих постах немає графіка для черги "+queue+".", mainKeyboard())
	case err != nil:
		h.log.Error().Err(err).Str("queue", queue).Msg("bot: не удалось получить расписание")
		h.reply(chatID, msgUnavailable, nil)
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "📅 %s\n\n⚡ Графік для черги %s:\n", snap.DateLabel, queue)
		for _, r := range snap.Raw {
			fmt.Fprintf(&b, "%s - %s\n", r.Start, r.End)
		}
		stats := timetable.Stats(snap.Intervals, snap.DateLabel)
		fmt.Fprintf(&b, "\n📊 Статистика за день:\n• Вимкнень: %d\n• Світло увімкнено: %s\n• Світло вимкнено: %s",
			stats.OutageCount,
			timetable.FormatDuration(stats.TotalOn),
			timetable.FormatDuration(stats.TotalOff))
		h.reply(chatID, b.String(), mainKeyboard())
	}
}

func (h *Handler) handleLight(ctx context.Context, chatID, userID int64) {
	queue, ok := h.firstQueue(ctx, chatID, userID)
	if !ok {
		return
	}
	now := time.Now()
	state, snap, err := h.timetable.State(ctx, queue, now)
	switch {
	case errors.Is(err, timetable.ErrNoData):
		h.reply(chatID, "ℹ️ У свіжих постах немає графіка для черги "+queue+".", mainKeyboard())
		return
	case err != nil:
		h.log.Error().Err(err).Str("queue", queue).Msg("bot: не удалось получить состояние")
		h.reply(chatID, msgUnavailable, nil)
		return
	}
	h.reply(chatID, lightStatusText(queue, snap, state, now), mainKeyboard())
}

// lightStatusText собирает ответ «є світло чи ні» с границами текущего окна.
func lightStatusText(queue string, snap domain.Snapshot, state domain.PowerState, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s, черга %s\n\n", snap.DateLabel, queue)
	if !state.On {
		b.WriteString("🔌 ЗАРАЗ НЕМАЄ СВІТЛА\n")
		fmt.Fprintf(&b, "⛔ Увімкнуть о %s\n", state.CurrentWindowEnd.Format("15:04"))
	} else {
		b.WriteString("💡 ЗАРАЗ Є СВІТЛО\n")
		if state.NextTransition.IsZero() {
			b.WriteString("🟢 Відключень до кінця дня не заплановано\n")
		} else {
			fmt.Fprintf(&b, "🟢 Вимкнуть о %s\n", state.NextTransition.Format("15:04"))
		}
	}
	fmt.Fprintf(&b, "🕒 Поточний час: %s", now.Format("15:04"))
	return b.String()
}

func (h *Handler) reply(chatID int64, text string, keyboard interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	start := time.Now()
	_, err := h.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(chatID, 10), start, err)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("bot: не удалось отправить сообщение")
	}
}
