package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"project_healthbot/internal/entities"
)

// RasaClient talks to a Rasa server's REST input channel.
type RasaClient struct {
	baseURL string
	http    *http.Client
}

func NewRasaClient(baseURL string, timeout time.Duration) *RasaClient {
	return &RasaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Query posts {sender, message} and joins the non-empty text fragments of
// the reply list with newlines. Transport failures, non-2xx statuses and
// bodies that are not a JSON array wrap entities.ErrBackendUnavailable.
func (r *RasaClient) Query(ctx context.Context, sender, text string) (string, error) {
	data, err := json.Marshal(map[string]string{"sender": sender, "message": text})
	if err != nil {
		return "", fmt.Errorf("encode rasa request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/webhooks/rest/webhook", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", entities.ErrBackendUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entities.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", entities.ErrBackendUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: rasa status %d", entities.ErrBackendUnavailable, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
		return "", fmt.Errorf("%w: rasa reply is not a list", entities.ErrBackendUnavailable)
	}

	var parts []string
	for _, t := range gjson.GetBytes(body, "#.text").Array() {
		if s := t.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n"), nil
}
