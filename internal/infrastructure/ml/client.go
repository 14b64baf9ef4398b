package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"MarketSentiment/internal/domain"
	"MarketSentiment/internal/ports"
)

// Client talks to the external sentiment inference service. The service owns
// the model (loaded once per process on its side); this client is the only
// thing the pipeline knows about it.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Classifier = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Classify sends the text for scoring and returns the predicted label with
// its confidence and the full probability distribution.
func (c *Client) Classify(ctx context.Context, text string) (domain.Sentiment, error) {
	payload := map[string]any{"text": text}

	var resp struct {
		Label        string             `json:"label"`
		Confidence   float64            `json:"confidence"`
		Distribution map[string]float64 `json:"distribution"`
	}

	if err := c.post(ctx, "/classify", payload, &resp); err != nil {
		return domain.Sentiment{}, err
	}

	label := domain.Label(resp.Label)
	if !label.Valid() {
		return domain.Sentiment{}, fmt.Errorf("classifier returned unknown label %q", resp.Label)
	}

	sentiment := domain.Sentiment{
		Label:        label,
		Confidence:   resp.Confidence,
		Distribution: make(map[domain.Label]float64, len(resp.Distribution)),
	}
	for name, p := range resp.Distribution {
		sentiment.Distribution[domain.Label(name)] = p
	}

	return sentiment, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
