package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project_healthbot/internal/entities"
)

func TestDispatchRoutesAliases(t *testing.T) {
	wa := &fakeMessenger{}
	tg := &fakeMessenger{}
	d := NewChannelDispatcher(wa, tg, nil)

	for _, ch := range []string{"whatsapp", "sms"} {
		assert.Equal(t, entities.StatusSent, d.Dispatch(context.Background(), ch, "919800000001", "hi").Status)
	}
	for _, ch := range []string{"telegram", "tg"} {
		assert.Equal(t, entities.StatusSent, d.Dispatch(context.Background(), ch, "42", "hi").Status)
	}

	require.Len(t, wa.messages(), 2)
	require.Len(t, tg.messages(), 2)
	assert.Equal(t, "42", tg.messages()[0].to)
}

func TestDispatchUnknownChannel(t *testing.T) {
	wa := &fakeMessenger{}
	d := NewChannelDispatcher(wa, wa, nil)

	for _, ch := range []string{"email", "WhatsApp", ""} {
		outcome := d.Dispatch(context.Background(), ch, "1", "hi")
		assert.Equal(t, entities.StatusSkipped, outcome.Status, ch)
		assert.Equal(t, "unknown channel", outcome.Detail)
	}
	assert.Empty(t, wa.messages())
	assert.False(t, d.Supports("WhatsApp"))
	assert.True(t, d.Supports("tg"))
}

func TestDispatchNotConfiguredIsSkipped(t *testing.T) {
	wa := &fakeMessenger{err: fmt.Errorf("whatsapp cloud: %w", entities.ErrNotConfigured)}
	d := NewChannelDispatcher(wa, nil, nil)

	assert.Equal(t, entities.StatusSkipped, d.Dispatch(context.Background(), "whatsapp", "1", "hi").Status)
	assert.Equal(t, entities.StatusSkipped, d.Dispatch(context.Background(), "telegram", "1", "hi").Status)
}

func TestDispatchTransportError(t *testing.T) {
	tg := &fakeMessenger{err: &entities.TransportError{Channel: "telegram", Cause: errBoom}}
	metrics := newCountingMetrics()
	d := NewChannelDispatcher(nil, tg, metrics)

	outcome := d.Dispatch(context.Background(), "tg", "1", "hi")
	assert.Equal(t, entities.StatusError, outcome.Status)
	assert.Contains(t, outcome.Detail, "boom")
	assert.Equal(t, 1, metrics.deliveries[entities.StatusError])
}
