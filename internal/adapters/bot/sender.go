package bot

import (
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"svitlo-bot/internal/domain"
	"svitlo-bot/internal/infra/metrics"
)

// Sender отправляет уведомления пользователям через Bot API.
type Sender struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

var _ domain.Deliverer = (*Sender)(nil)

func NewSender(bot *tgbotapi.BotAPI, log zerolog.Logger) *Sender {
	return &Sender{bot: bot, log: log}
}

// Deliver отправляет текст пользователю.
func (s *Sender) Deliver(tgUserID int64, text string) error {
	msg := tgbotapi.NewMessage(tgUserID, text)
	start := time.Now()
	_, err := s.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(tgUserID, 10), start, err)
	return err
}
