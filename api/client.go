package api

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

// =============================================================================
// 🔗 控制面客户端
// =============================================================================

// Client 控制面 HTTP 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建客户端。baseURL 形如 http://127.0.0.1:8080
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// APIError 服务器返回的失败信封
type APIError struct {
	StatusCode int
	Body       Failure
}

func (e *APIError) Error() string {
	if e.Body.Detail != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.StatusCode, e.Body.Code, e.Body.Error, e.Body.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Body.Code, e.Body.Error)
}

// PlayVoice 调用 POST /voice/play
func (c *Client) PlayVoice(ctx context.Context, voiceID string) (string, error) {
	var data PlayVoiceData
	msg, err := c.do(ctx, http.MethodPost, PathPlayVoice, PlayVoiceRequest{VoiceID: &voiceID}, &data)
	if err != nil {
		return "", err
	}
	return msg, nil
}

// Shutdown 调用 POST /shutdown
func (c *Client) Shutdown(ctx context.Context) (string, error) {
	return c.do(ctx, http.MethodPost, PathShutdown, nil, nil)
}

// Health 调用 GET /health
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if _, err := c.do(ctx, http.MethodGet, PathHealth, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Voices 调用 GET /voices
func (c *Client) Voices(ctx context.Context) ([]string, error) {
	var list VoiceList
	if _, err := c.do(ctx, http.MethodGet, PathVoices, nil, &list); err != nil {
		return nil, err
	}
	return list.Voices, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, data any) (string, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, &apiErr.Body); err != nil {
			apiErr.Body = Failure{Error: http.StatusText(resp.StatusCode), Code: "UNKNOWN", Detail: string(raw)}
		}
		return "", apiErr
	}

	envelope := struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if data != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, data); err != nil {
			return "", fmt.Errorf("decode response data: %w", err)
		}
	}
	return envelope.Message, nil
}
