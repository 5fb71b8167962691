package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/tidwall/gjson"

	"project_healthbot/internal/entities"
)

const defaultGraphURL = "https://graph.facebook.com"

// WhatsAppCloudClient sends text messages through Meta's WhatsApp Cloud API.
type WhatsAppCloudClient struct {
	accessToken   string
	phoneNumberID string
	apiVersion    string
	baseURL       string
	http          *http.Client
}

func NewWhatsAppCloudClient(accessToken, phoneNumberID, apiVersion string, timeout time.Duration) *WhatsAppCloudClient {
	return &WhatsAppCloudClient{
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		apiVersion:    apiVersion,
		baseURL:       defaultGraphURL,
		http:          &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client at another Graph API host.
func (w *WhatsAppCloudClient) WithBaseURL(baseURL string) *WhatsAppCloudClient {
	w.baseURL = strings.TrimRight(baseURL, "/")
	return w
}

func (w *WhatsAppCloudClient) Configured() bool {
	return w.accessToken != "" && w.phoneNumberID != ""
}

// SendMessage posts one text message. Without credentials it returns
// entities.ErrNotConfigured and makes no request.
func (w *WhatsAppCloudClient) SendMessage(ctx context.Context, to, content string) error {
	if !w.Configured() {
		return fmt.Errorf("whatsapp cloud: %w", entities.ErrNotConfigured)
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]interface{}{
			"preview_url": false,
			"body":        content,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", w.baseURL, w.apiVersion, w.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &entities.TransportError{Channel: entities.ChannelWhatsApp, Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+w.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return &entities.TransportError{Channel: entities.ChannelWhatsApp, Cause: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := gjson.GetBytes(body, "error.message").String()
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return &entities.TransportError{
			Channel: entities.ChannelWhatsApp,
			Cause:   fmt.Errorf("status %d: %s", resp.StatusCode, detail),
		}
	}
	return nil
}

// TelegramClient sends messages through the Bot API. Construction makes no
// network call; a missing token leaves the client unconfigured.
type TelegramClient struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramClient(token string, timeout time.Duration) *TelegramClient {
	return newTelegramClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
}

// newTelegramClient takes an endpoint in tgbotapi's "%s/%s" form
// (token, method).
func newTelegramClient(token, endpoint string, client *http.Client) *TelegramClient {
	if token == "" {
		return &TelegramClient{}
	}
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: client,
		Buffer: 100,
	}
	bot.SetAPIEndpoint(endpoint)
	return &TelegramClient{bot: bot}
}

func (t *TelegramClient) Configured() bool { return t.bot != nil }

func (t *TelegramClient) SendMessage(ctx context.Context, to, content string) error {
	return t.send(ctx, to, content, nil)
}

// SendMenu sends text with an inline keyboard of options. A pressed button
// comes back as a callback query carrying the option's Query.
func (t *TelegramClient) SendMenu(ctx context.Context, to, text string, options []entities.MenuOption) error {
	keyboard := TopicKeyboard(options)
	return t.send(ctx, to, text, &keyboard)
}

// AnswerCallback acknowledges a callback query so the pressed button stops
// its loading spinner.
func (t *TelegramClient) AnswerCallback(ctx context.Context, callbackID string) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: %w", entities.ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return &entities.TransportError{Channel: entities.ChannelTelegram, Cause: err}
	}
	if _, err := t.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return &entities.TransportError{Channel: entities.ChannelTelegram, Cause: err}
	}
	return nil
}

func (t *TelegramClient) send(ctx context.Context, to, content string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: %w", entities.ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return &entities.TransportError{Channel: entities.ChannelTelegram, Cause: err}
	}

	var msg tgbotapi.MessageConfig
	if chatID, err := strconv.ParseInt(to, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(chatID, content)
	} else {
		msg = tgbotapi.NewMessageToChannel(to, content)
	}
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	if _, err := t.bot.Send(msg); err != nil {
		return &entities.TransportError{Channel: entities.ChannelTelegram, Cause: err}
	}
	return nil
}
