package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"

	"project_healthbot/internal/entities"

	_ "modernc.org/sqlite"
)

// DeviceQRPath is the admin route serving the pending pairing code.
const DeviceQRPath = "/api/whatsapp/qr"

// ErrNoQRCode is returned while no pairing code is pending.
var ErrNoQRCode = errors.New("no pairing code available")

// DeviceStatus describes the linked-device session.
type DeviceStatus struct {
	Connected bool   `json:"connected"`
	LoggedIn  bool   `json:"logged_in"`
	Phone     string `json:"phone,omitempty"`
	Name      string `json:"name,omitempty"`
	QRPending bool   `json:"qr_pending"`
}

// WhatsAppDeviceClient sends and receives WhatsApp messages as a linked
// device. The session lives in a local SQLite file.
type WhatsAppDeviceClient struct {
	client *whatsmeow.Client

	mu        sync.RWMutex
	qrCode    string
	onMessage func(entities.Message)
}

// NewWhatsAppDeviceClient opens (or creates) the session store at dbPath.
func NewWhatsAppDeviceClient(ctx context.Context, dbPath string) (*WhatsAppDeviceClient, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
		}
	}

	container, err := sqlstore.New(ctx, "sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)", logrusAdapter{entry: log.WithField("module", "wa-store")})
	if err != nil {
		return nil, fmt.Errorf("open whatsapp session store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("load whatsapp device: %w", err)
	}

	w := &WhatsAppDeviceClient{
		client: whatsmeow.NewClient(device, logrusAdapter{entry: log.WithField("module", "wa-client")}),
	}
	w.client.AddEventHandler(w.handleEvent)
	return w, nil
}

// OnMessage registers the inbound callback. Call before Connect.
func (w *WhatsAppDeviceClient) OnMessage(fn func(entities.Message)) {
	w.mu.Lock()
	w.onMessage = fn
	w.mu.Unlock()
}

// Connect resumes a stored session or starts QR pairing.
func (w *WhatsAppDeviceClient) Connect(ctx context.Context) error {
	if w.client.Store.ID != nil {
		if err := w.client.Connect(); err != nil {
			return fmt.Errorf("connect whatsapp: %w", err)
		}
		log.WithField("phone", w.client.Store.ID.User).Info("whatsapp device connected with stored session")
		return nil
	}
	return w.pair(ctx)
}

func (w *WhatsAppDeviceClient) pair(ctx context.Context) error {
	qrChan, err := w.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("open pairing channel: %w", err)
	}
	if err := w.client.Connect(); err != nil {
		return fmt.Errorf("connect whatsapp: %w", err)
	}

	go func() {
		for evt := range qrChan {
			if evt.Event == "code" {
				w.setQR(evt.Code)
				log.WithField("path", DeviceQRPath).Info("whatsapp pairing code refreshed, scan it from the admin QR route")
				continue
			}
			w.setQR("")
			log.WithField("event", evt.Event).Info("whatsapp pairing finished")
		}
	}()
	return nil
}

func (w *WhatsAppDeviceClient) setQR(code string) {
	w.mu.Lock()
	w.qrCode = code
	w.mu.Unlock()
}

// Configured reports whether a device is linked.
func (w *WhatsAppDeviceClient) Configured() bool {
	return w != nil && w.client != nil && w.client.Store.ID != nil
}

// Status snapshots the session state.
func (w *WhatsAppDeviceClient) Status() DeviceStatus {
	w.mu.RLock()
	pending := w.qrCode != ""
	w.mu.RUnlock()

	status := DeviceStatus{Connected: w.client.IsConnected(), QRPending: pending}
	if id := w.client.Store.ID; id != nil {
		status.LoggedIn = true
		status.Phone = id.User
		status.Name = w.client.Store.PushName
	}
	return status
}

// QRCodePNG renders the pending pairing code.
func (w *WhatsAppDeviceClient) QRCodePNG(size int) ([]byte, error) {
	w.mu.RLock()
	code := w.qrCode
	w.mu.RUnlock()
	if code == "" {
		return nil, ErrNoQRCode
	}
	return qrcode.Encode(code, qrcode.Medium, size)
}

// SendMessage delivers a text message. to is a bare phone number or a
// full JID.
func (w *WhatsAppDeviceClient) SendMessage(ctx context.Context, to, content string) error {
	if !w.Configured() {
		return entities.ErrNotConfigured
	}
	jid, err := recipientJID(to)
	if err != nil {
		return &entities.TransportError{Channel: entities.ChannelWhatsApp, Cause: err}
	}
	if _, err := w.client.SendMessage(ctx, jid, &waProto.Message{Conversation: &content}); err != nil {
		return &entities.TransportError{Channel: entities.ChannelWhatsApp, Cause: err}
	}
	return nil
}

// Logout unlinks the device and starts a fresh pairing round.
func (w *WhatsAppDeviceClient) Logout(ctx context.Context) error {
	w.setQR("")
	if err := w.client.Logout(ctx); err != nil {
		return fmt.Errorf("logout whatsapp: %w", err)
	}
	w.client.Disconnect()
	return w.pair(ctx)
}

func (w *WhatsAppDeviceClient) Disconnect() {
	w.client.Disconnect()
}

func (w *WhatsAppDeviceClient) handleEvent(evt interface{}) {
	switch e := evt.(type) {
	case *events.Message:
		msg, ok := parseDeviceMessage(e)
		if !ok {
			return
		}
		w.mu.RLock()
		fn := w.onMessage
		w.mu.RUnlock()
		if fn != nil {
			fn(msg)
		}
	case *events.LoggedOut:
		log.WithField("reason", e.Reason).Warn("whatsapp device logged out")
	case *events.Connected:
		log.Info("whatsapp device online")
	}
}

// parseDeviceMessage keeps direct text messages from other users.
func parseDeviceMessage(evt *events.Message) (entities.Message, bool) {
	if evt == nil || evt.Message == nil || evt.Info.IsFromMe || evt.Info.IsGroup {
		return entities.Message{}, false
	}

	content := evt.Message.GetConversation()
	if content == "" {
		content = evt.Message.GetExtendedTextMessage().GetText()
	}
	if strings.TrimSpace(content) == "" {
		return entities.Message{}, false
	}

	from := evt.Info.Chat.User
	if evt.Info.Chat.Server != types.DefaultUserServer {
		from = evt.Info.Chat.String()
	}
	return entities.Message{From: from, Content: content, Platform: entities.ChannelWhatsApp}, true
}

func recipientJID(to string) (types.JID, error) {
	to = strings.TrimPrefix(strings.TrimSpace(to), "+")
	if strings.Contains(to, "@") {
		return types.ParseJID(to)
	}
	if to == "" {
		return types.JID{}, errors.New("empty recipient")
	}
	return types.NewJID(to, types.DefaultUserServer), nil
}

// logrusAdapter routes whatsmeow's internal logging through logrus.
type logrusAdapter struct {
	entry *log.Entry
}

func (l logrusAdapter) Errorf(msg string, args ...interface{}) { l.entry.Errorf(msg, args...) }
func (l logrusAdapter) Warnf(msg string, args ...interface{})  { l.entry.Warnf(msg, args...) }
func (l logrusAdapter) Infof(msg string, args ...interface{})  { l.entry.Debugf(msg, args...) }
func (l logrusAdapter) Debugf(msg string, args ...interface{}) { l.entry.Tracef(msg, args...) }

func (l logrusAdapter) Sub(module string) waLog.Logger {
	return logrusAdapter{entry: l.entry.WithField("module", module)}
}
