package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leadforge/leadforge/pkg/config"
)

// Client sends mail through the HTTP delivery provider.
type Client struct {
	providerURL string
	apiKey      string
	httpClient  *http.Client
}

func NewClient(cfg *config.MailConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		providerURL: cfg.ProviderURL,
		apiKey:      cfg.APIKey,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Send(ctx context.Context, msg Message) (Result, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return Result{}, fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.providerURL, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 && result.Error == "" {
		result.Success = false
		result.Error = fmt.Sprintf("provider returned status %d", resp.StatusCode)
	}

	return result, nil
}
