package interfaces

import (
	"context"

	"project_healthbot/internal/entities"
)

// AIClient is the generative fallback. Implementations never return raw
// SDK errors to the caller; every outcome is folded into an AIResult.
type AIClient interface {
	Generate(ctx context.Context, prompt string, lang entities.Language) entities.AIResult
}

// NLUClient is the last-resort dialogue engine.
type NLUClient interface {
	Query(ctx context.Context, sender, text string) (string, error)
}

// Messenger delivers one text to one recipient on a single platform.
// It returns entities.ErrNotConfigured, without touching the network, when
// its credentials are unset.
type Messenger interface {
	SendMessage(ctx context.Context, to, content string) error
}

// SubscriberStore persists the alert roster.
type SubscriberStore interface {
	UpsertSubscriber(ctx context.Context, s entities.Subscriber) error
	DeleteSubscriber(ctx context.Context, phone string) error
	ListSubscribers(ctx context.Context) ([]entities.Subscriber, error)
}

// BroadcastLog is the append-only alert history.
type BroadcastLog interface {
	SaveBroadcast(ctx context.Context, message, channel string) (*entities.Broadcast, error)
	ListBroadcasts(ctx context.Context) ([]entities.Broadcast, error)
}

// UserStore holds admin accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *entities.User) error
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
}

// TaskQueue runs fire-and-forget work off the request path. Submit reports
// false when the task was dropped.
type TaskQueue interface {
	Submit(task func(ctx context.Context)) bool
}

// Metrics receives counters from the core. A nil Metrics is never passed
// around; components fall back to NopMetrics.
type Metrics interface {
	ObserveAnswer(source entities.AnswerSource)
	ObserveDelivery(channel string, status entities.DeliveryStatus)
	ObserveBroadcast()
	ObserveWebhook(channel, outcome string)
	ObserveDroppedTask()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ObserveAnswer(entities.AnswerSource)             {}
func (NopMetrics) ObserveDelivery(string, entities.DeliveryStatus) {}
func (NopMetrics) ObserveBroadcast()                               {}
func (NopMetrics) ObserveWebhook(string, string)                   {}
func (NopMetrics) ObserveDroppedTask()                             {}

// LanguageSlots remembers the one piece of conversation state: a sender's
// preferred language.
type LanguageSlots interface {
	Language(sender string) (entities.Language, bool)
	SetLanguage(sender string, lang entities.Language)
}

// SenderLimiter throttles inbound chat traffic per sender.
type SenderLimiter interface {
	Allow(sender string) bool
}

// MenuSender is implemented by transports that can attach quick-reply
// buttons to a message.
type MenuSender interface {
	SendMenu(ctx context.Context, to, text string, options []entities.MenuOption) error
}
