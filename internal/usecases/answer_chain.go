package usecases

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"project_healthbot/internal/entities"
	"project_healthbot/internal/interfaces"
)

// AnswerChain resolves a question through the local FAQ, then the
// generative backend, then the NLU engine. The first stage to produce a
// value wins; earlier failures are absorbed.
type AnswerChain struct {
	faq         *FAQMatcher
	ai          interfaces.AIClient
	nlu         interfaces.NLUClient
	callTimeout time.Duration
	metrics     interfaces.Metrics
}

// NewAnswerChain wires the stages. ai may be nil, in which case the AI
// stage always misses.
func NewAnswerChain(faq *FAQMatcher, ai interfaces.AIClient, nlu interfaces.NLUClient, callTimeout time.Duration, metrics interfaces.Metrics) *AnswerChain {
	if metrics == nil {
		metrics = interfaces.NopMetrics{}
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &AnswerChain{faq: faq, ai: ai, nlu: nlu, callTimeout: callTimeout, metrics: metrics}
}

// Resolve never fails: a dead NLU engine turns into a localized error
// answer. An empty lang means detect it from text.
func (c *AnswerChain) Resolve(ctx context.Context, senderID, text string, lang entities.Language) entities.Answer {
	if lang == "" || !lang.IsSupported() {
		lang = DetectLanguage(text)
	}

	answer := c.resolve(ctx, senderID, text, lang)
	answer.Language = lang
	if NeedsDisclaimer(text) {
		answer.Text += "\n\n" + disclaimerText.In(lang)
		answer.Disclaimer = true
	}

	c.metrics.ObserveAnswer(answer.Source)
	log.WithFields(log.Fields{
		"sender": senderID,
		"lang":   lang,
		"source": answer.Source,
	}).Debug("answer resolved")
	return answer
}

func (c *AnswerChain) resolve(ctx context.Context, senderID, text string, lang entities.Language) entities.Answer {
	if answer, err := c.faq.Match(text, lang); err == nil {
		return answer
	}

	if generated, ok := c.askAI(ctx, text, lang); ok {
		return entities.Answer{Text: generated, Source: entities.SourceAI}
	}

	reply, err := c.askNLU(ctx, senderID, text)
	if err != nil {
		log.WithFields(log.Fields{"sender": senderID, "error": err}).Error("nlu stage failed")
		return entities.Answer{Text: backendErrorText.In(lang), Source: entities.SourceError}
	}
	if reply == "" {
		reply = noAnswerText.In(lang)
	}
	return entities.Answer{Text: reply, Source: entities.SourceNLU}
}

func (c *AnswerChain) askAI(ctx context.Context, text string, lang entities.Language) (string, bool) {
	if c.ai == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	result := c.ai.Generate(ctx, text, lang)
	switch result.Kind {
	case entities.AIText:
		if result.Text != "" {
			return result.Text, true
		}
	case entities.AIError:
		log.WithField("detail", result.Detail).Warn("ai stage unavailable, falling through")
	}
	return "", false
}

func (c *AnswerChain) askNLU(ctx context.Context, senderID, text string) (string, error) {
	if c.nlu == nil {
		return "", entities.ErrBackendUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.nlu.Query(ctx, senderID, text)
}
