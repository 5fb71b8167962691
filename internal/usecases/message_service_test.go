package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project_healthbot/internal/entities"
)

type mapSlots struct {
	mu    sync.Mutex
	langs map[string]entities.Language
}

func (m *mapSlots) Language(sender string) (entities.Language, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lang, ok := m.langs[sender]
	return lang, ok
}

func (m *mapSlots) SetLanguage(sender string, lang entities.Language) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.langs == nil {
		m.langs = make(map[string]entities.Language)
	}
	m.langs[sender] = lang
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

type fakeMenu struct {
	to      string
	text    string
	options []entities.MenuOption
}

func (f *fakeMenu) SendMenu(_ context.Context, to, text string, options []entities.MenuOption) error {
	f.to, f.text, f.options = to, text, options
	return nil
}

type serviceFixture struct {
	svc   *MessageService
	wa    *fakeMessenger
	tg    *fakeMessenger
	nlu   *fakeNLU
	slots *mapSlots
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		wa:    &fakeMessenger{},
		tg:    &fakeMessenger{},
		nlu:   &fakeNLU{reply: "nlu reply"},
		slots: &mapSlots{},
	}
	matcher := newTestMatcher(t)
	chain := NewAnswerChain(matcher, &fakeAI{}, f.nlu, time.Second, nil)
	dispatcher := NewChannelDispatcher(f.wa, f.tg, nil)
	f.svc = NewMessageService(chain, dispatcher, matcher, f.slots, nil)
	return f
}

func TestProcessMessageRepliesOnSameChannel(t *testing.T) {
	f := newServiceFixture(t)

	err := f.svc.ProcessMessage(context.Background(), entities.Message{From: "9198", Content: " malaria ", Platform: "whatsapp"})
	require.NoError(t, err)

	sent := f.wa.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "9198", sent[0].to)
	assert.Contains(t, sent[0].content, "malaria")
	assert.Empty(t, f.tg.messages())
}

func TestProcessMessageLanguageSlot(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	msg := entities.Message{From: "42", Platform: "telegram"}

	msg.Content = "lang hi"
	require.NoError(t, f.svc.ProcessMessage(ctx, msg))
	lang, ok := f.slots.Language("telegram:42")
	require.True(t, ok)
	assert.Equal(t, entities.LangHindi, lang)

	msg.Content = "dengue"
	require.NoError(t, f.svc.ProcessMessage(ctx, msg))

	sent := f.tg.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, languageSetText[entities.LangHindi], sent[0].content)
	assert.Equal(t, newTestMatcher(t).Topics()[0].Answers[entities.LangHindi], sent[1].content)
}

func TestProcessMessageLanguageAliasesAndHelp(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	msg := entities.Message{From: "42", Platform: "telegram"}

	msg.Content = "/lang Odia"
	require.NoError(t, f.svc.ProcessMessage(ctx, msg))
	lang, _ := f.slots.Language("telegram:42")
	assert.Equal(t, entities.LangOdia, lang)

	msg.Content = "lang klingon"
	require.NoError(t, f.svc.ProcessMessage(ctx, msg))
	sent := f.tg.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, languageUnknownText[entities.LangOdia], sent[1].content)

	lang, _ = f.slots.Language("telegram:42")
	assert.Equal(t, entities.LangOdia, lang)
}

func TestProcessMessageLongSentenceIsNotACommand(t *testing.T) {
	f := newServiceFixture(t)

	err := f.svc.ProcessMessage(context.Background(), entities.Message{From: "9198", Content: "language barrier at the clinic", Platform: "whatsapp"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.nlu.calls.Load())
}

func TestProcessMessageWelcomeWithMenu(t *testing.T) {
	f := newServiceFixture(t)
	menu := &fakeMenu{}
	f.svc.SetMenuSender("telegram", menu)

	require.NoError(t, f.svc.ProcessMessage(context.Background(), entities.Message{From: "42", Content: "/start", Platform: "telegram"}))

	assert.Equal(t, "42", menu.to)
	assert.Equal(t, welcomeText[entities.LangEnglish], menu.text)
	require.Len(t, menu.options, 4)
	assert.Equal(t, "dengue symptoms", menu.options[0].Query)
	assert.Empty(t, f.tg.messages())
}

func TestProcessMessageWelcomeAsPlainText(t *testing.T) {
	f := newServiceFixture(t)

	require.NoError(t, f.svc.ProcessMessage(context.Background(), entities.Message{From: "9198", Content: "menu", Platform: "whatsapp"}))

	sent := f.wa.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].content, welcomeText[entities.LangEnglish])
	assert.Contains(t, sent[0].content, "• vaccine schedule")
}

func TestProcessMessageRateLimited(t *testing.T) {
	f := newServiceFixture(t)
	f.svc.limiter = denyAll{}

	require.NoError(t, f.svc.ProcessMessage(context.Background(), entities.Message{From: "9198", Content: "hello", Platform: "whatsapp"}))
	assert.Empty(t, f.wa.messages())
	assert.Zero(t, f.nlu.calls.Load())
}

func TestProcessMessageTransportFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.wa.err = errBoom

	err := f.svc.ProcessMessage(context.Background(), entities.Message{From: "9198", Content: "malaria", Platform: "whatsapp"})
	var terr *entities.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "whatsapp", terr.Channel)
}

func TestProcessMessageUnconfiguredReplyIsNotAnError(t *testing.T) {
	f := newServiceFixture(t)
	f.tg.err = entities.ErrNotConfigured

	err := f.svc.ProcessMessage(context.Background(), entities.Message{From: "42", Content: "malaria", Platform: "telegram"})
	assert.NoError(t, err)
}

func TestAsk(t *testing.T) {
	f := newServiceFixture(t)

	answer := f.svc.Ask(context.Background(), "  vaccine schedule ")
	assert.Equal(t, entities.SourceFAQ, answer.Source)
	assert.Empty(t, f.wa.messages())
}
