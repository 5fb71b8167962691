package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project_healthbot/internal/entities"
)

func newTestChain(t *testing.T, ai *fakeAI, nlu *fakeNLU) *AnswerChain {
	t.Helper()
	return NewAnswerChain(newTestMatcher(t), ai, nlu, time.Second, nil)
}

func TestResolveFAQHitSkipsBackends(t *testing.T) {
	ai := &fakeAI{result: entities.AITextResult("from ai")}
	nlu := &fakeNLU{reply: "from nlu"}
	chain := newTestChain(t, ai, nlu)

	answer := chain.Resolve(context.Background(), "u1", "tell me about malaria", "")

	assert.Equal(t, entities.SourceFAQ, answer.Source)
	assert.Zero(t, ai.calls.Load())
	assert.Zero(t, nlu.calls.Load())
}

func TestResolveDengueSymptomsInHindi(t *testing.T) {
	chain := newTestChain(t, &fakeAI{}, &fakeNLU{})
	hindi := newTestMatcher(t).Topics()[0].Answers[entities.LangHindi]

	answer := chain.Resolve(context.Background(), "u1", "dengue symptoms", entities.LangHindi)

	assert.Equal(t, entities.SourceFAQ, answer.Source)
	assert.True(t, answer.Disclaimer)
	assert.Equal(t, hindi+"\n\n"+disclaimerText[entities.LangHindi], answer.Text)
	assert.Equal(t, entities.LangHindi, answer.Language)
}

func TestResolveAIAnswers(t *testing.T) {
	ai := &fakeAI{result: entities.AITextResult("Drink clean water.")}
	nlu := &fakeNLU{}
	chain := newTestChain(t, ai, nlu)

	answer := chain.Resolve(context.Background(), "u1", "is tap water safe", "")

	assert.Equal(t, entities.SourceAI, answer.Source)
	assert.Equal(t, "Drink clean water.", answer.Text)
	assert.False(t, answer.Disclaimer)
	assert.EqualValues(t, 1, ai.calls.Load())
	assert.Zero(t, nlu.calls.Load())
}

func TestResolveFallsThroughToNLUOnce(t *testing.T) {
	for name, result := range map[string]entities.AIResult{
		"empty":      entities.AIEmptyResult(),
		"error":      entities.AIErrorResult("quota exceeded"),
		"blank text": entities.AITextResult(""),
	} {
		t.Run(name, func(t *testing.T) {
			ai := &fakeAI{result: result}
			nlu := &fakeNLU{reply: "line one\nline two"}
			chain := newTestChain(t, ai, nlu)

			answer := chain.Resolve(context.Background(), "u1", "what about heatstroke", "")

			assert.Equal(t, entities.SourceNLU, answer.Source)
			assert.Equal(t, "line one\nline two", answer.Text)
			assert.EqualValues(t, 1, nlu.calls.Load())
		})
	}
}

func TestResolveWithoutAIClient(t *testing.T) {
	nlu := &fakeNLU{reply: "hello"}
	chain := NewAnswerChain(newTestMatcher(t), nil, nlu, time.Second, nil)

	answer := chain.Resolve(context.Background(), "u1", "hi there", "")
	assert.Equal(t, entities.SourceNLU, answer.Source)
	assert.EqualValues(t, 1, nlu.calls.Load())
}

func TestResolveNLUFailure(t *testing.T) {
	nlu := &fakeNLU{err: entities.ErrBackendUnavailable}
	chain := newTestChain(t, &fakeAI{result: entities.AIEmptyResult()}, nlu)

	answer := chain.Resolve(context.Background(), "u1", "क्या हाल है", "")

	assert.Equal(t, entities.SourceError, answer.Source)
	assert.Equal(t, backendErrorText[entities.LangHindi], answer.Text)
}

func TestResolveNLUEmptyReply(t *testing.T) {
	chain := newTestChain(t, &fakeAI{result: entities.AIEmptyResult()}, &fakeNLU{})

	answer := chain.Resolve(context.Background(), "u1", "hello", entities.LangEnglish)

	assert.Equal(t, entities.SourceNLU, answer.Source)
	assert.Equal(t, "Sorry, no answer.", answer.Text)
}

func TestResolveRecordsMetrics(t *testing.T) {
	metrics := newCountingMetrics()
	chain := NewAnswerChain(newTestMatcher(t), &fakeAI{}, &fakeNLU{err: errBoom}, time.Second, metrics)

	chain.Resolve(context.Background(), "u1", "dengue", "")
	chain.Resolve(context.Background(), "u1", "unknown", "")

	assert.Equal(t, 1, metrics.answers[entities.SourceFAQ])
	assert.Equal(t, 1, metrics.answers[entities.SourceError])
}

func TestNeedsDisclaimer(t *testing.T) {
	assert.True(t, NeedsDisclaimer("Dengue SYMPTOMS"))
	assert.True(t, NeedsDisclaimer("best medicine for fever"))
	assert.True(t, NeedsDisclaimer("मलेरिया का इलाज"))
	assert.True(t, NeedsDisclaimer("ରୋଗ"))
	assert.False(t, NeedsDisclaimer("vaccine schedule"))
	assert.False(t, NeedsDisclaimer(""))
}

func TestProperty_DisclaimerIffRiskKeyword(t *testing.T) {
	matcher := newTestMatcher(t)

	properties := gopter.NewProperties(nil)

	properties.Property("disclaimer appended iff a risk keyword is present, for every source", prop.ForAll(
		func(base string, withRisk bool, ki int, stage int) bool {
			text := base
			if withRisk {
				text = base + " " + riskKeywords[ki%len(riskKeywords)]
			}

			ai := &fakeAI{result: entities.AIEmptyResult()}
			nlu := &fakeNLU{reply: "nlu says hi"}
			switch stage {
			case 1:
				ai.result = entities.AITextResult("ai says hi")
			case 2:
				nlu.err = errBoom
			}
			chain := NewAnswerChain(matcher, ai, nlu, time.Second, nil)

			answer := chain.Resolve(context.Background(), "p", text, entities.LangEnglish)
			hasDisclaimer := strings.HasSuffix(answer.Text, disclaimerText[entities.LangEnglish])
			want := NeedsDisclaimer(text)
			return answer.Disclaimer == want && hasDisclaimer == want && want == (withRisk || NeedsDisclaimer(base))
		},
		gen.AlphaString(),
		gen.Bool(),
		gen.IntRange(0, 100),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestResolveUsesDeclaredLanguageOverDetection(t *testing.T) {
	chain := newTestChain(t, &fakeAI{}, &fakeNLU{})

	answer := chain.Resolve(context.Background(), "u1", "malaria", entities.LangOdia)
	require.Equal(t, entities.SourceFAQ, answer.Source)
	assert.Equal(t, entities.LangOdia, answer.Language)
	assert.Equal(t, newTestMatcher(t).Topics()[1].Answers[entities.LangOdia], answer.Text)
}
