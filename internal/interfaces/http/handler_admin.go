package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"project_healthbot/internal/entities"
	"project_healthbot/internal/usecases"
)

// AdminHandler serves subscriber management, alert broadcast and login.
type AdminHandler struct {
	engine *usecases.BroadcastEngine
	auth   *usecases.AuthUsecase
}

func NewAdminHandler(engine *usecases.BroadcastEngine, auth *usecases.AuthUsecase) *AdminHandler {
	return &AdminHandler{engine: engine, auth: auth}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, usecases.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		log.WithError(err).Error("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandler) AddSubscriber(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone"`
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sub, err := h.engine.AddSubscriber(c.Request.Context(), SanitizeString(req.Phone), strings.ToLower(strings.TrimSpace(req.Language)))
	switch {
	case errors.Is(err, entities.ErrInvalidPhone), errors.Is(err, entities.ErrUnsupportedLanguage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.WithError(err).Error("add subscriber failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "subscribed", "subscriber": sub})
}

func (h *AdminHandler) ListSubscribers(c *gin.Context) {
	subs, err := h.engine.ListSubscribers(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list subscribers failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *AdminHandler) RemoveSubscriber(c *gin.Context) {
	phone := c.Param("phone")
	if err := h.engine.RemoveSubscriber(c.Request.Context(), phone); err != nil {
		log.WithError(err).Error("remove subscriber failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed", "phone": usecases.NormalizeSubscriberID(phone)})
}

// Broadcast sends an alert to every subscriber; channel defaults to whatsapp.
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req struct {
		Text    string `json:"text"`
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	text := strings.TrimSpace(SanitizeString(req.Text))
	if !ValidateLength(text, 1, MaxBroadcastLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required and must be at most 4096 bytes"})
		return
	}
	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		channel = entities.ChannelWhatsApp
	}

	result, err := h.engine.Broadcast(c.Request.Context(), text, channel)
	if err != nil {
		log.WithError(err).Error("broadcast failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) History(c *gin.Context) {
	records, err := h.engine.History(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("load history failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}
