package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"project_healthbot/internal/entities"
	"project_healthbot/internal/interfaces"
)

// Sender id used for direct /ask queries.
const WebSender = "webview"

var languageAliases = map[string]entities.Language{
	"english": entities.LangEnglish,
	"hindi":   entities.LangHindi,
	"हिंदी":   entities.LangHindi,
	"हिन्दी":  entities.LangHindi,
	"odia":    entities.LangOdia,
	"oriya":   entities.LangOdia,
	"ଓଡ଼ିଆ":   entities.LangOdia,
}

// MessageService handles one inbound chat message end to end: commands,
// answer resolution and the reply on the originating channel.
type MessageService struct {
	chain      *AnswerChain
	dispatcher *ChannelDispatcher
	faq        *FAQMatcher
	slots      interfaces.LanguageSlots
	limiter    interfaces.SenderLimiter
	menus      map[string]interfaces.MenuSender
}

func NewMessageService(chain *AnswerChain, dispatcher *ChannelDispatcher, faq *FAQMatcher, slots interfaces.LanguageSlots, limiter interfaces.SenderLimiter) *MessageService {
	return &MessageService{
		chain:      chain,
		dispatcher: dispatcher,
		faq:        faq,
		slots:      slots,
		limiter:    limiter,
		menus:      make(map[string]interfaces.MenuSender),
	}
}

// SetMenuSender enables topic buttons on platform. Call during wiring only.
func (s *MessageService) SetMenuSender(platform string, sender interfaces.MenuSender) {
	s.menus[platform] = sender
}

// Ask answers a direct query from the web endpoint. Nothing is sent.
func (s *MessageService) Ask(ctx context.Context, question string) entities.Answer {
	return s.chain.Resolve(ctx, WebSender, strings.TrimSpace(question), "")
}

// ProcessMessage handles commands first (language switch, start/menu),
// then resolves the text through the answer chain and replies.
func (s *MessageService) ProcessMessage(ctx context.Context, msg entities.Message) error {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return nil
	}
	key := msg.Platform + ":" + msg.From

	if s.limiter != nil && !s.limiter.Allow(key) {
		log.WithFields(log.Fields{"platform": msg.Platform, "sender": msg.From}).Warn("sender rate limited, message dropped")
		return nil
	}

	fields := strings.Fields(strings.ToLower(content))
	switch {
	case isLanguageCommand(fields):
		return s.handleLanguage(ctx, msg, key, fields[1:])
	case isWelcomeCommand(fields):
		return s.sendWelcome(ctx, msg, s.languageFor(key, content))
	}

	declared, _ := s.declaredLanguage(key)
	answer := s.chain.Resolve(ctx, msg.From, content, declared)
	return s.reply(ctx, msg, answer.Text)
}

// "lang hi", "/lang odia" or a bare "lang" asking for help.
func isLanguageCommand(fields []string) bool {
	if len(fields) > 2 {
		return false
	}
	switch fields[0] {
	case "lang", "/lang", "language", "/language":
		return true
	}
	return false
}

// Slash commands may carry a payload ("/start ref42"); bare words must
// stand alone so questions starting with them still reach the chain.
func isWelcomeCommand(fields []string) bool {
	switch fields[0] {
	case "/start", "/help", "/menu":
		return true
	case "start", "menu", "help":
		return len(fields) == 1
	}
	return false
}

func (s *MessageService) handleLanguage(ctx context.Context, msg entities.Message, key string, args []string) error {
	current := s.languageFor(key, "")
	if len(args) != 1 {
		return s.reply(ctx, msg, languageUnknownText.In(current))
	}

	lang, ok := languageAliases[args[0]]
	if !ok {
		lang, ok = entities.ParseLanguage(args[0])
	}
	if !ok {
		return s.reply(ctx, msg, languageUnknownText.In(current))
	}

	if s.slots != nil {
		s.slots.SetLanguage(key, lang)
	}
	log.WithFields(log.Fields{"sender": msg.From, "lang": lang}).Info("language preference set")
	return s.reply(ctx, msg, languageSetText.In(lang))
}

func (s *MessageService) sendWelcome(ctx context.Context, msg entities.Message, lang entities.Language) error {
	text := welcomeText.In(lang)
	options := s.menuOptions()

	if menu, ok := s.menus[msg.Platform]; ok && len(options) > 0 {
		if err := menu.SendMenu(ctx, msg.From, text, options); err != nil {
			return fmt.Errorf("send welcome menu: %w", err)
		}
		return nil
	}

	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n")
	for _, opt := range options {
		sb.WriteString("\n• ")
		sb.WriteString(opt.Query)
	}
	return s.reply(ctx, msg, sb.String())
}

func (s *MessageService) menuOptions() []entities.MenuOption {
	if s.faq == nil {
		return nil
	}
	topics := s.faq.Topics()
	options := make([]entities.MenuOption, 0, len(topics))
	for _, t := range topics {
		if t.Label == "" || t.Query == "" {
			continue
		}
		options = append(options, entities.MenuOption{Label: t.Label, Query: t.Query})
	}
	return options
}

func (s *MessageService) declaredLanguage(key string) (entities.Language, bool) {
	if s.slots == nil {
		return "", false
	}
	return s.slots.Language(key)
}

// languageFor prefers the stored slot and falls back to detection.
func (s *MessageService) languageFor(key, text string) entities.Language {
	if lang, ok := s.declaredLanguage(key); ok {
		return lang
	}
	return DetectLanguage(text)
}

func (s *MessageService) reply(ctx context.Context, msg entities.Message, text string) error {
	outcome := s.dispatcher.Dispatch(ctx, msg.Platform, msg.From, text)
	switch outcome.Status {
	case entities.StatusSent:
		return nil
	case entities.StatusSkipped:
		log.WithFields(log.Fields{
			"platform": msg.Platform,
			"sender":   msg.From,
			"reason":   outcome.Detail,
		}).Info("reply skipped")
		return nil
	default:
		return &entities.TransportError{Channel: msg.Platform, Cause: errors.New(outcome.Detail)}
	}
}
