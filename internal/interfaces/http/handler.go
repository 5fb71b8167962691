package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"project_healthbot/internal/entities"
	"project_healthbot/internal/infrastructure"
	"project_healthbot/internal/interfaces"
	"project_healthbot/internal/usecases"
)

// RouterDeps carries everything SetupRoutes wires. Optional pieces may be nil.
type RouterDeps struct {
	Service        *usecases.MessageService
	Engine         *usecases.BroadcastEngine
	Auth           *usecases.AuthUsecase
	Queue          interfaces.TaskQueue
	Metrics        interfaces.Metrics
	MetricsHandler http.Handler
	AskLimiter     interfaces.SenderLimiter
	Middleware     *Middleware

	WhatsAppVerifyToken string
	Device              DeviceSession
	Telegram            TelegramInfo
}

// Handler serves the chat-facing endpoints: webhooks and /ask.
type Handler struct {
	service *usecases.MessageService
	queue   interfaces.TaskQueue
	metrics interfaces.Metrics
}

func NewHandler(service *usecases.MessageService, queue interfaces.TaskQueue, metrics interfaces.Metrics) *Handler {
	if metrics == nil {
		metrics = interfaces.NopMetrics{}
	}
	return &Handler{service: service, queue: queue, metrics: metrics}
}

func SetupRoutes(r *gin.Engine, deps RouterDeps) {
	h := NewHandler(deps.Service, deps.Queue, deps.Metrics)
	wa := NewWhatsAppHandler(h, deps.WhatsAppVerifyToken, deps.Device)
	tg := NewTelegramHandler(h, deps.Telegram)
	admin := NewAdminHandler(deps.Engine, deps.Auth)
	mw := deps.Middleware
	if mw == nil {
		mw = NewMiddleware("")
	}

	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(MaxRequestBytes))
	r.Use(mw.CORSMiddleware())

	r.GET("/health", h.Health)
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	r.GET("/webhook/whatsapp", wa.Verify)
	r.POST("/webhook/whatsapp", wa.Webhook)
	r.POST("/webhook/telegram", tg.Webhook)

	ask := r.Group("/ask")
	if deps.AskLimiter != nil {
		ask.Use(RateLimitByIP(deps.AskLimiter))
	}
	ask.POST("", h.Ask)

	if deps.Auth != nil && mw.AuthEnabled() {
		r.POST("/api/auth/login", admin.Login)
	}

	protected := r.Group("/")
	protected.Use(mw.AuthRequired())
	{
		protected.POST("/subscribers", admin.AddSubscriber)
		protected.GET("/subscribers", admin.ListSubscribers)
		protected.DELETE("/subscribers/:phone", admin.RemoveSubscriber)
		protected.POST("/alerts/broadcast", admin.Broadcast)
		protected.GET("/history", admin.History)

		protected.GET("/api/telegram/status", tg.Status)
		if deps.Device != nil {
			protected.GET("/api/whatsapp/status", wa.DeviceStatus)
			protected.GET(infrastructure.DeviceQRPath, wa.DeviceQR)
			protected.POST("/api/whatsapp/logout", wa.DeviceLogout)
		}
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ask answers a question synchronously. The body may name the field
// question, message or text.
func (h *Handler) Ask(c *gin.Context) {
	var req struct {
		Question string `json:"question"`
		Message  string `json:"message"`
		Text     string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
		return
	}

	question := strings.TrimSpace(SanitizeString(firstNonEmpty(req.Question, req.Message, req.Text)))
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "question is required"})
		return
	}
	if !ValidateLength(question, 1, MaxQuestionLength) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "question is too long"})
		return
	}

	answer := h.service.Ask(c.Request.Context(), question)
	c.JSON(http.StatusOK, gin.H{
		"success":    answer.Source != entities.SourceError,
		"answer":     answer.Text,
		"source":     answer.Source,
		"language":   answer.Language,
		"disclaimer": answer.Disclaimer,
	})
}

// acceptWebhook normalizes the body and schedules processing. The caller
// always gets a plain OK so the platform does not retry. The raw body is
// returned, or nil when it could not be read.
func (h *Handler) acceptWebhook(c *gin.Context, channel string) []byte {
	raw, err := c.GetRawData()
	if err != nil {
		h.metrics.ObserveWebhook(channel, "unreadable")
		log.WithFields(log.Fields{"channel": channel, "error": err}).Warn("webhook body unreadable")
		c.String(http.StatusOK, "OK")
		return nil
	}
	h.Enqueue(channel, raw)
	c.String(http.StatusOK, "OK")
	return raw
}

// Enqueue is the shared path for webhook bodies and long-polled updates.
func (h *Handler) Enqueue(channel string, raw []byte) bool {
	msg, err := usecases.Normalize(channel, raw)
	if err != nil {
		h.metrics.ObserveWebhook(channel, "ignored")
		log.WithFields(log.Fields{"channel": channel, "reason": err}).Debug("webhook ignored")
		return false
	}
	return h.EnqueueMessage(msg)
}

// EnqueueMessage schedules an already normalized message.
func (h *Handler) EnqueueMessage(msg entities.Message) bool {
	ok := h.queue.Submit(func(ctx context.Context) {
		if err := h.service.ProcessMessage(ctx, msg); err != nil {
			log.WithFields(log.Fields{
				"channel": msg.Platform,
				"sender":  msg.From,
				"error":   err,
			}).Warn("message processing failed")
		}
	})
	if !ok {
		h.metrics.ObserveWebhook(msg.Platform, "dropped")
		log.WithFields(log.Fields{"channel": msg.Platform, "sender": msg.From}).Warn("task queue full, message dropped")
		return false
	}
	h.metrics.ObserveWebhook(msg.Platform, "accepted")
	return true
}
