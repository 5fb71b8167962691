package infrastructure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"project_healthbot/internal/entities"
)

func newFakeGemini(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, *[]byte) {
	t.Helper()
	var calls atomic.Int32
	var last []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		last, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, &calls, &last
}

func TestGeminiText(t *testing.T) {
	server, calls, last := newFakeGemini(t, http.StatusOK,
		`{"id":"1","object":"chat.completion","model":"gemini-1.5-flash","choices":[{"index":0,"message":{"role":"assistant","content":"  Drink ORS.  "},"finish_reason":"stop"}]}`)

	client := NewGeminiClient("key", server.URL+"/", "gemini-1.5-flash", time.Second)
	result := client.Generate(context.Background(), "what helps dehydration", entities.LangHindi)

	assert.Equal(t, entities.AITextResult("Drink ORS."), result)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, "gemini-1.5-flash", gjson.GetBytes(*last, "model").String())
	assert.Contains(t, gjson.GetBytes(*last, "messages.0.content").String(), "Hindi")
	assert.Equal(t, "what helps dehydration", gjson.GetBytes(*last, "messages.1.content").String())
}

func TestGeminiEmpty(t *testing.T) {
	server, _, _ := newFakeGemini(t, http.StatusOK, `{"id":"1","choices":[]}`)
	client := NewGeminiClient("key", server.URL, "m", time.Second)
	assert.Equal(t, entities.AIEmpty, client.Generate(context.Background(), "q", entities.LangEnglish).Kind)

	server, _, _ = newFakeGemini(t, http.StatusOK, `{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":""}}]}`)
	client = NewGeminiClient("key", server.URL, "m", time.Second)
	assert.Equal(t, entities.AIEmpty, client.Generate(context.Background(), "q", entities.LangEnglish).Kind)
}

func TestGeminiAPIError(t *testing.T) {
	server, _, _ := newFakeGemini(t, http.StatusTooManyRequests,
		`{"error":{"message":"Resource has been exhausted","type":"rate_limit","code":429}}`)
	client := NewGeminiClient("key", server.URL, "m", time.Second)

	result := client.Generate(context.Background(), "q", entities.LangEnglish)
	assert.Equal(t, entities.AIError, result.Kind)
	assert.Contains(t, result.Detail, "exhausted")
}

func TestGeminiWithoutKeyMakesNoCall(t *testing.T) {
	server, calls, _ := newFakeGemini(t, http.StatusOK, `{}`)
	client := NewGeminiClient("", server.URL, "m", time.Second)

	result := client.Generate(context.Background(), "q", entities.LangEnglish)
	assert.Equal(t, entities.AIError, result.Kind)
	assert.Zero(t, calls.Load())
}
