package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"project_healthbot/internal/entities"
)

const callbackAnswerTimeout = 5 * time.Second

// CallbackAnswerer acknowledges Telegram callback queries.
type CallbackAnswerer interface {
	AnswerCallback(ctx context.Context, callbackID string) error
}

// TelegramInfo reports how the Telegram channel is running.
type TelegramInfo struct {
	Configured bool
	Polling    bool
	BotName    func() string
	Callbacks  CallbackAnswerer
}

type TelegramHandler struct {
	*Handler
	info TelegramInfo
}

func NewTelegramHandler(h *Handler, info TelegramInfo) *TelegramHandler {
	return &TelegramHandler{Handler: h, info: info}
}

// Webhook schedules the update and answers a pressed inline button, the
// same way the long poller does.
func (h *TelegramHandler) Webhook(c *gin.Context) {
	raw := h.acceptWebhook(c, entities.ChannelTelegram)
	id := gjson.GetBytes(raw, "callback_query.id").String()
	if id == "" || h.info.Callbacks == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), callbackAnswerTimeout)
	defer cancel()
	if err := h.info.Callbacks.AnswerCallback(ctx, id); err != nil {
		log.WithFields(log.Fields{"callback_id": id, "error": err}).Debug("answer callback query failed")
	}
}

func (h *TelegramHandler) Status(c *gin.Context) {
	name := ""
	if h.info.BotName != nil {
		name = h.info.BotName()
	}
	c.JSON(http.StatusOK, gin.H{
		"configured": h.info.Configured,
		"polling":    h.info.Polling,
		"bot_name":   name,
	})
}
