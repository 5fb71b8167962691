package infrastructure

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"project_healthbot/internal/entities"
)

// Telegram rejects callback data longer than 64 bytes.
const maxCallbackData = 64

// TopicKeyboard lays options out two per row.
func TopicKeyboard(options []entities.MenuOption) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(options); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{topicButton(options[i])}
		if i+1 < len(options) {
			row = append(row, topicButton(options[i+1]))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func topicButton(opt entities.MenuOption) tgbotapi.InlineKeyboardButton {
	data := opt.Query
	if len(data) > maxCallbackData {
		data = data[:maxCallbackData]
	}
	return tgbotapi.NewInlineKeyboardButtonData(opt.Label, data)
}
