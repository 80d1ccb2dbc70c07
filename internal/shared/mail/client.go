// Package mail wraps the HTTP mail relay used for lifecycle notifications.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client posts messages to the mail relay API. Failures are reported to the
// caller; retry/drop policy is the caller's concern.
type Client struct {
	baseURL    string
	apiKey     string
	sender     string
	httpClient *http.Client
}

// NewClient creates a mail relay client.
func NewClient(baseURL, apiKey, sender string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		sender:  sender,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	MessageID string `json:"message_id"`
}

// SendMail delivers one message to a single recipient.
func (c *Client) SendMail(ctx context.Context, to, subject, body string) error {
	payload := sendRequest{
		From:    c.sender,
		To:      to,
		Subject: subject,
		Body:    body,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/messages",
		bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail relay request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read mail relay response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result sendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("parse mail relay response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("mail relay error[%d]: %s (to=%s)", result.Code, result.Message, to)
	}

	return nil
}
