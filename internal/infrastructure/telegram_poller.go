package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// TelegramPoller pulls updates with getUpdates for deployments that cannot
// expose a public webhook. Each update is handed over as the same JSON a
// webhook would receive.
type TelegramPoller struct {
	bot         *tgbotapi.BotAPI
	pollTimeout int
}

// NewTelegramPoller validates the token with getMe.
func NewTelegramPoller(token string) (*TelegramPoller, error) {
	// the client timeout must outlast the long-poll window
	return newTelegramPoller(token, tgbotapi.APIEndpoint, &http.Client{Timeout: 75 * time.Second}, 60)
}

func newTelegramPoller(token, endpoint string, client *http.Client, pollTimeout int) (*TelegramPoller, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram getMe: %w", err)
	}
	return &TelegramPoller{bot: bot, pollTimeout: pollTimeout}, nil
}

func (p *TelegramPoller) BotName() string { return p.bot.Self.UserName }

// Run blocks until ctx is done.
func (p *TelegramPoller) Run(ctx context.Context, handle func(raw []byte)) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.pollTimeout
	updates := p.bot.GetUpdatesChan(u)

	log.WithField("bot", p.BotName()).Info("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			p.bot.StopReceivingUpdates()
			log.Info("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			p.dispatch(update, handle)
		}
	}
}

func (p *TelegramPoller) dispatch(update tgbotapi.Update, handle func(raw []byte)) {
	if update.CallbackQuery != nil {
		// stops the button's loading spinner
		if _, err := p.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			log.WithField("error", err).Debug("answer callback query failed")
		}
	}

	raw, err := json.Marshal(update)
	if err != nil {
		log.WithFields(log.Fields{"update_id": update.UpdateID, "error": err}).Warn("encode telegram update")
		return
	}
	handle(raw)
}
