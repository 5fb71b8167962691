package usecases

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"project_healthbot/internal/entities"
	"project_healthbot/internal/interfaces"
)

// ChannelDispatcher maps a logical channel name to one transport and
// normalizes the result into a DeliveryOutcome. One attempt, no retries.
type ChannelDispatcher struct {
	routes  map[string]interfaces.Messenger
	metrics interfaces.Metrics
}

// NewChannelDispatcher routes whatsapp/sms to whatsapp and telegram/tg to
// telegram. Channel names are case-sensitive.
func NewChannelDispatcher(whatsapp, telegram interfaces.Messenger, metrics interfaces.Metrics) *ChannelDispatcher {
	if metrics == nil {
		metrics = interfaces.NopMetrics{}
	}
	return &ChannelDispatcher{
		routes: map[string]interfaces.Messenger{
			entities.ChannelWhatsApp: whatsapp,
			entities.ChannelSMS:      whatsapp,
			entities.ChannelTelegram: telegram,
			entities.ChannelTG:       telegram,
		},
		metrics: metrics,
	}
}

// Supports reports whether channel names a known transport.
func (d *ChannelDispatcher) Supports(channel string) bool {
	_, ok := d.routes[channel]
	return ok
}

func (d *ChannelDispatcher) Dispatch(ctx context.Context, channel, recipient, text string) entities.DeliveryOutcome {
	outcome := d.dispatch(ctx, channel, recipient, text)
	d.metrics.ObserveDelivery(channel, outcome.Status)
	return outcome
}

func (d *ChannelDispatcher) dispatch(ctx context.Context, channel, recipient, text string) entities.DeliveryOutcome {
	messenger, ok := d.routes[channel]
	if !ok {
		return entities.DeliveryOutcome{Status: entities.StatusSkipped, Detail: "unknown channel"}
	}
	if messenger == nil {
		return entities.DeliveryOutcome{Status: entities.StatusSkipped, Detail: channel + " not configured"}
	}

	err := messenger.SendMessage(ctx, recipient, text)
	switch {
	case err == nil:
		return entities.DeliveryOutcome{Status: entities.StatusSent}
	case errors.Is(err, entities.ErrNotConfigured):
		return entities.DeliveryOutcome{Status: entities.StatusSkipped, Detail: channel + " not configured"}
	default:
		log.WithFields(log.Fields{
			"channel":   channel,
			"recipient": recipient,
			"error":     err,
		}).Warn("delivery failed")
		return entities.DeliveryOutcome{Status: entities.StatusError, Detail: err.Error()}
	}
}
