// Package notify wraps the external messaging gateway used to reach
// customers (WhatsApp/SMS). Delivery is best-effort; callers treat failures
// as non-blocking warnings.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client exposes the small subset of the messaging gateway API the
// application uses.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a client targeting the provided base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SendText delivers a plain-text message to the given phone number.
func (c *Client) SendText(ctx context.Context, phone, text string) error {
	payload := map[string]any{
		"to":   phone,
		"body": text,
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/messages", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send message failed: %s", resp.Status)
	}
	return nil
}
