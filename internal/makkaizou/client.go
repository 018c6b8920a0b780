// Package makkaizou wraps the outbound Makkaizou AI chat API: sending
// messages on a talk, checking service status and formatting replies
// into LINE-sized messages.
package makkaizou

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wizlab/line-ai-bridge/internal/config"
	"github.com/wizlab/line-ai-bridge/internal/logging"
)

const defaultBaseURL = "https://api.makkaizou.com/v1"

// Reply is the backend's answer to a chat message. ProcessingTime is
// the wall-clock duration of the API call in milliseconds.
type Reply struct {
	Response       string `json:"response"`
	ProcessingTime int64  `json:"-"`
}

// Status is the result of a service status check.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Client calls the Makkaizou API with the API key from config.
type Client struct {
	baseURL string
	cfg     config.Store
	log     *logging.Logger
	client  *http.Client
}

func NewClient(cfg config.Store, log *logging.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		cfg:     cfg,
		log:     log,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Send posts a message on the given talk. The metadata object is always
// tagged with source "line"; caller-supplied fields are merged over it.
// Any failure, including a non-200 status, is logged and propagates.
func (c *Client) Send(ctx context.Context, talkID, message string, metadata map[string]any) (*Reply, error) {
	reply, err := c.send(ctx, talkID, message, metadata)
	if err != nil {
		c.log.Error(ctx, logging.APIError, "Error calling Makkaizou API: "+err.Error(), map[string]any{
			"talkId":  talkID,
			"message": message,
		})
		return nil, err
	}
	return reply, nil
}

func (c *Client) send(ctx context.Context, talkID, message string, metadata map[string]any) (*Reply, error) {
	apiKey, err := c.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	md := map[string]any{"source": "line"}
	for k, v := range metadata {
		md[k] = v
	}

	payload, err := json.Marshal(map[string]any{
		"talk_id":  talkID,
		"message":  message,
		"metadata": md,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	elapsed := time.Since(start).Milliseconds()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("makkaizou api returned status code %d: %s", resp.StatusCode, string(body))
	}

	var reply Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("parse makkaizou response: %w", err)
	}
	reply.ProcessingTime = elapsed

	c.log.Info(ctx, "Makkaizou API response received", logging.ActivityEntry{
		Message:        "Makkaizou API response received talk_id=" + talkID,
		ProcessingTime: elapsed,
	})

	return &reply, nil
}

// CheckStatus probes the status endpoint. It never returns an error:
// any failure becomes a Status with "error" and the failure message.
// Used only by the admin verification surface.
func (c *Client) CheckStatus(ctx context.Context) Status {
	status, err := c.checkStatus(ctx)
	if err != nil {
		c.log.Error(ctx, logging.APIError, "Error checking Makkaizou API status: "+err.Error(), nil)
		return Status{Status: "error", Message: err.Error()}
	}
	return status
}

func (c *Client) checkStatus(ctx context.Context) (Status, error) {
	apiKey, err := c.apiKey(ctx)
	if err != nil {
		return Status{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return Status{}, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Status{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Status{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("makkaizou api status check returned code %d: %s", resp.StatusCode, string(body))
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return Status{}, fmt.Errorf("parse status response: %w", err)
	}
	return status, nil
}

func (c *Client) apiKey(ctx context.Context) (string, error) {
	key, err := c.cfg.Get(ctx, config.KeyMakkaizouAPIKey)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.New("Makkaizou API key not configured")
	}
	return key, nil
}
