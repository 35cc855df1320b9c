package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type httpDoer struct {
	baseURL string
	client  *http.Client
}

func newHTTPDoer(baseURL string, timeout time.Duration) *httpDoer {
	return &httpDoer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// generate calls /api/generate and returns the trimmed response text.
// jsonMode asks the model for strict JSON output.
func (d *httpDoer) generate(ctx context.Context, model, promptText string, jsonMode bool) (string, error) {
	payload := map[string]any{
		"model":  model,
		"prompt": promptText,
		"stream": false,
	}
	if jsonMode {
		payload["format"] = "json"
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := d.postJSON(ctx, "/api/generate", payload, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func (d *httpDoer) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
