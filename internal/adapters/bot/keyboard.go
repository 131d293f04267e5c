package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"svitlo-bot/internal/domain"
)

const (
	btnCheck  = "⚡ Перевірити чергу"
	btnLight  = "📅 Коли світло?"
	btnMy     = "📋 Мої черги"
	btnAdd    = "➕ Додати чергу"
	btnDelete = "🗑 Видалити чергу"
	btnNotify = "⏰ Налаштувати сповіщення"
	btnBack   = "⬅ Назад"
)

var notifyPresets = []string{"5", "15", "30", "60", "120"}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCheck)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnLight)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnMy)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdd),
			tgbotapi.NewKeyboardButton(btnDelete),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnNotify)),
	)
}

// queuesKeyboard показывает по кнопке на каждую подписку.
func queuesKeyboard(subs []domain.Subscription) tgbotapi.ReplyKeyboardMarkup {
	if len(subs) == 0 {
		return mainKeyboard()
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(subs)+1)
	for _, sub := range subs {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(SubscriptionLabel(sub)),
		))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)))
	return tgbotapi.NewReplyKeyboard(rows...)
}

func notifyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(notifyPresets[0]),
			tgbotapi.NewKeyboardButton(notifyPresets[1]),
			tgbotapi.NewKeyboardButton(notifyPresets[2]),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(notifyPresets[3]),
			tgbotapi.NewKeyboardButton(notifyPresets[4]),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
}

// SubscriptionLabel — подпись кнопки и строка списка для подписки.
func SubscriptionLabel(sub domain.Subscription) string {
	if sub.Name == domain.NoName {
		return sub.Queue
	}
	return sub.Queue + " — " + sub.Name
}

func isMenuButton(text string) bool {
	switch text {
	case btnCheck, btnLight, btnMy, btnAdd, btnDelete, btnNotify, btnBack:
		return true
	}
	return false
}
