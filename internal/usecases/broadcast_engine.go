package usecases

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"project_healthbot/internal/entities"
	"project_healthbot/internal/interfaces"
)

// Phone numbers in international format (optional +), or a Telegram chat
// id / @username, since Telegram subscribers are keyed by chat.
// The fan-out may outlive the admin request; the record write gets its own
// deadline instead.
const recordTimeout = 10 * time.Second

var subscriberIDPattern = regexp.MustCompile(`^(\+?[0-9]{5,20}|-[0-9]{5,20}|@[A-Za-z0-9_]{5,32})$`)

// BroadcastEngine owns the subscriber roster and the alert fan-out.
type BroadcastEngine struct {
	subscribers interfaces.SubscriberStore
	log         interfaces.BroadcastLog
	dispatcher  *ChannelDispatcher
	concurrency int
	metrics     interfaces.Metrics
}

func NewBroadcastEngine(subscribers interfaces.SubscriberStore, broadcastLog interfaces.BroadcastLog, dispatcher *ChannelDispatcher, concurrency int, metrics interfaces.Metrics) *BroadcastEngine {
	if concurrency < 1 {
		concurrency = 1
	}
	if metrics == nil {
		metrics = interfaces.NopMetrics{}
	}
	return &BroadcastEngine{
		subscribers: subscribers,
		log:         broadcastLog,
		dispatcher:  dispatcher,
		concurrency: concurrency,
		metrics:     metrics,
	}
}

// Broadcast sends text to every subscriber on channel and records one
// broadcast entry. Individual delivery failures are counted, never
// returned; only roster or log failures are.
func (e *BroadcastEngine) Broadcast(ctx context.Context, text, channel string) (entities.BroadcastResult, error) {
	roster, err := e.subscribers.ListSubscribers(ctx)
	if err != nil {
		return entities.BroadcastResult{}, fmt.Errorf("load subscribers: %w", err)
	}

	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, sub := range roster {
		phone := sub.Phone
		g.Go(func() error {
			outcome := e.dispatcher.Dispatch(gctx, channel, phone, text)
			if outcome.Status == entities.StatusSent {
				sent.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := entities.BroadcastResult{
		Sent:   int(sent.Load()),
		Failed: int(failed.Load()),
		Total:  len(roster),
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	record, err := e.log.SaveBroadcast(saveCtx, text, channel)
	if err != nil {
		return result, fmt.Errorf("save broadcast: %w", err)
	}
	e.metrics.ObserveBroadcast()

	log.WithFields(log.Fields{
		"id":      record.ID,
		"channel": channel,
		"sent":    result.Sent,
		"failed":  result.Failed,
		"total":   result.Total,
	}).Info("broadcast finished")
	return result, nil
}

// AddSubscriber validates and upserts a subscriber. An empty language
// defaults to English.
func (e *BroadcastEngine) AddSubscriber(ctx context.Context, phone, language string) (entities.Subscriber, error) {
	phone = NormalizeSubscriberID(phone)
	if !subscriberIDPattern.MatchString(phone) {
		return entities.Subscriber{}, fmt.Errorf("%w: %q", entities.ErrInvalidPhone, phone)
	}
	lang, ok := entities.ParseLanguage(language)
	if !ok {
		return entities.Subscriber{}, fmt.Errorf("%w: %q", entities.ErrUnsupportedLanguage, language)
	}

	sub := entities.Subscriber{Phone: phone, Language: lang}
	if err := e.subscribers.UpsertSubscriber(ctx, sub); err != nil {
		return entities.Subscriber{}, fmt.Errorf("save subscriber: %w", err)
	}
	return sub, nil
}

func (e *BroadcastEngine) RemoveSubscriber(ctx context.Context, phone string) error {
	if err := e.subscribers.DeleteSubscriber(ctx, NormalizeSubscriberID(phone)); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

func (e *BroadcastEngine) ListSubscribers(ctx context.Context) ([]entities.Subscriber, error) {
	subs, err := e.subscribers.ListSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}

// History returns broadcast records, newest first.
func (e *BroadcastEngine) History(ctx context.Context) ([]entities.Broadcast, error) {
	records, err := e.log.ListBroadcasts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}
	return records, nil
}

// NormalizeSubscriberID strips whitespace and a "whatsapp:" prefix.
func NormalizeSubscriberID(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "whatsapp:")
	return strings.ReplaceAll(phone, " ", "")
}
