package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"project_healthbot/internal/entities"
	"project_healthbot/internal/infrastructure"
)

// DeviceSession is the linked-device WhatsApp session managed over the API.
type DeviceSession interface {
	Status() infrastructure.DeviceStatus
	QRCodePNG(size int) ([]byte, error)
	Logout(ctx context.Context) error
}

type WhatsAppHandler struct {
	*Handler
	verifyToken string
	device      DeviceSession
}

func NewWhatsAppHandler(h *Handler, verifyToken string, device DeviceSession) *WhatsAppHandler {
	return &WhatsAppHandler{Handler: h, verifyToken: verifyToken, device: device}
}

// Verify answers Meta's subscription handshake by echoing hub.challenge.
func (h *WhatsAppHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		c.String(http.StatusOK, c.Query("hub.challenge"))
		return
	}
	log.WithField("mode", mode).Warn("whatsapp webhook verification rejected")
	c.String(http.StatusForbidden, "Forbidden")
}

func (h *WhatsAppHandler) Webhook(c *gin.Context) {
	_ = h.acceptWebhook(c, entities.ChannelWhatsApp)
}

func (h *WhatsAppHandler) DeviceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.device.Status())
}

// DeviceQR returns the pending pairing code as PNG.
func (h *WhatsAppHandler) DeviceQR(c *gin.Context) {
	png, err := h.device.QRCodePNG(256)
	if errors.Is(err, infrastructure.ErrNoQRCode) {
		if h.device.Status().LoggedIn {
			c.String(http.StatusOK, "Already logged in")
			return
		}
		c.String(http.StatusAccepted, "QR code not yet available. Please wait...")
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to generate QR code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *WhatsAppHandler) DeviceLogout(c *gin.Context) {
	if err := h.device.Logout(c.Request.Context()); err != nil {
		log.WithError(err).Warn("whatsapp logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
