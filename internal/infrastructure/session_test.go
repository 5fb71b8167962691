package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"project_healthbot/internal/entities"
)

func TestSessionManagerLanguageSlot(t *testing.T) {
	sm := NewSessionManager(0)

	_, ok := sm.Language("telegram:1")
	assert.False(t, ok)

	sm.SetLanguage("telegram:1", entities.LangOdia)
	lang, ok := sm.Language("telegram:1")
	assert.True(t, ok)
	assert.Equal(t, entities.LangOdia, lang)

	sm.SetLanguage("telegram:1", entities.LangHindi)
	lang, _ = sm.Language("telegram:1")
	assert.Equal(t, entities.LangHindi, lang)
}

func TestSessionManagerExpiry(t *testing.T) {
	sm := NewSessionManager(time.Hour)
	start := time.Now()
	sm.now = func() time.Time { return start }
	sm.SetLanguage("whatsapp:9198", entities.LangHindi)

	sm.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, ok := sm.Language("whatsapp:9198")
	assert.False(t, ok)
	assert.Equal(t, 1, sm.Prune())
	assert.Zero(t, sm.Prune())
}
