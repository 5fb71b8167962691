package usecases

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"project_healthbot/internal/entities"
)

// Normalize extracts sender and text from a channel's webhook body.
// Anything it cannot use yields entities.ErrMalformedPayload.
func Normalize(channel string, raw []byte) (entities.Message, error) {
	switch channel {
	case entities.ChannelWhatsApp:
		return NormalizeWhatsApp(raw)
	case entities.ChannelTelegram:
		return NormalizeTelegram(raw)
	default:
		return entities.Message{}, fmt.Errorf("%w: unknown channel %q", entities.ErrMalformedPayload, channel)
	}
}

// NormalizeWhatsApp reads the first message of a Cloud API notification:
// entry[0].changes[0].value.messages[0].
func NormalizeWhatsApp(raw []byte) (entities.Message, error) {
	if !gjson.ValidBytes(raw) {
		return entities.Message{}, fmt.Errorf("%w: invalid json", entities.ErrMalformedPayload)
	}
	msg := gjson.GetBytes(raw, "entry.0.changes.0.value.messages.0")
	if !msg.IsObject() {
		return entities.Message{}, fmt.Errorf("%w: no message", entities.ErrMalformedPayload)
	}

	from := strings.TrimSpace(msg.Get("from").String())
	text := msg.Get("text.body").String()
	if text == "" {
		text = msg.Get("body").String()
	}
	if from == "" || strings.TrimSpace(text) == "" {
		return entities.Message{}, fmt.Errorf("%w: missing sender or text", entities.ErrMalformedPayload)
	}
	return entities.Message{From: from, Content: text, Platform: entities.ChannelWhatsApp}, nil
}

// NormalizeTelegram handles message, edited_message and callback_query
// updates. Button presses carry their text in callback_query.data.
func NormalizeTelegram(raw []byte) (entities.Message, error) {
	if !gjson.ValidBytes(raw) {
		return entities.Message{}, fmt.Errorf("%w: invalid json", entities.ErrMalformedPayload)
	}
	update := gjson.ParseBytes(raw)

	msg := update.Get("message")
	if !msg.IsObject() {
		msg = update.Get("edited_message")
	}

	text := msg.Get("text").String()
	if text == "" {
		text = update.Get("callback_query.data").String()
	}
	chatID := msg.Get("chat.id").String()
	if chatID == "" || chatID == "0" {
		chatID = update.Get("callback_query.from.id").String()
	}

	if chatID == "" || chatID == "0" || strings.TrimSpace(text) == "" {
		return entities.Message{}, fmt.Errorf("%w: missing chat id or text", entities.ErrMalformedPayload)
	}
	return entities.Message{From: chatID, Content: text, Platform: entities.ChannelTelegram}, nil
}
