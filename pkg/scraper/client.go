package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leadforge/leadforge/pkg/config"
)

// Runner submits actor runs to the scrape provider.
type Runner interface {
	Run(ctx context.Context, job *Job) (*RunResult, error)
}

type RunResult struct {
	ID     string
	Status string
}

type runResponse struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

type Client struct {
	baseURL    string
	token      string
	actors     map[JobType]string
	httpClient *http.Client
}

func NewClient(cfg *config.ScraperConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		actors: map[JobType]string{
			JobMaps:      cfg.MapsActor,
			JobLinkedIn:  cfg.LinkedInActor,
			JobValidator: cfg.ValidatorActor,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Run(ctx context.Context, job *Job) (*RunResult, error) {
	actorID, ok := c.actors[job.Type]
	if !ok || actorID == "" {
		return nil, fmt.Errorf("no actor configured for job type %q", job.Type)
	}

	payload, err := json.Marshal(job.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}

	url := fmt.Sprintf("%s/acts/%s/runs", c.baseURL, actorID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit actor run: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("actor run rejected with status %d: %s", resp.StatusCode, string(body))
	}

	var decoded runResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &RunResult{
		ID:     decoded.Data.ID,
		Status: strings.ToLower(decoded.Data.Status),
	}, nil
}
