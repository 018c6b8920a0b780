package lineapi

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

const defaultBaseURL = "https://api.line.me/v2/bot"

// APIError is a non-200 response from the LINE API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("line api returned status code %d: %s", e.StatusCode, e.Body)
}

// Client calls the LINE Messaging API with the access token from config.
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
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reply posts messages against a one-time reply token. A non-200 status
// is logged and returned as an *APIError.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message) error {
	err := c.post(ctx, "/message/reply", map[string]any{
		"replyToken": replyToken,
		"messages":   messages,
	})
	if err != nil {
		c.log.Error(ctx, logging.APIError, "Error replying to message: "+err.Error(), map[string]any{
			"replyToken": replyToken,
		})
		return err
	}
	return nil
}

// Push sends messages to a user, group or room without a reply token.
func (c *Client) Push(ctx context.Context, to string, messages []Message) error {
	err := c.post(ctx, "/message/push", map[string]any{
		"to":       to,
		"messages": messages,
	})
	if err != nil {
		c.log.Error(ctx, logging.APIError, "Error pushing message: "+err.Error(), map[string]any{
			"to": to,
		})
		return err
	}
	return nil
}

// ShowLoadingIndicator displays the typing indicator for a reply token.
// It is a no-op unless enable_loading_indicator is "true", and failures
// are logged and swallowed: the indicator must never block delivery.
func (c *Client) ShowLoadingIndicator(ctx context.Context, replyToken string) {
	if !config.Bool(ctx, c.cfg, config.KeyEnableLoadingIndicator) {
		return
	}

	err := c.post(ctx, "/message/reply/loading", map[string]any{
		"replyToken": replyToken,
	})
	if err != nil {
		c.log.Error(ctx, logging.APIError, "Error showing loading indicator: "+err.Error(), map[string]any{
			"replyToken": replyToken,
		})
	}
}

// GetProfile fetches a user's profile. Profile data only enriches logs
// and metadata, so any failure is logged and reported as nil.
func (c *Client) GetProfile(ctx context.Context, userID string) *Profile {
	var p Profile
	if err := c.get(ctx, "/profile/"+userID, &p); err != nil {
		c.log.Error(ctx, logging.APIError, "Error getting user profile: "+err.Error(), map[string]any{
			"userId": userID,
		})
		return nil
	}
	return &p
}

// GetGroupMemberProfile fetches a member's profile within a group.
// Failures are logged and reported as nil, like GetProfile.
func (c *Client) GetGroupMemberProfile(ctx context.Context, groupID, userID string) *Profile {
	var p Profile
	if err := c.get(ctx, "/group/"+groupID+"/member/"+userID, &p); err != nil {
		c.log.Error(ctx, logging.APIError, "Error getting group member profile: "+err.Error(), map[string]any{
			"groupId": groupID,
			"userId":  userID,
		})
		return nil
	}
	return &p
}

// GetBotInfo fetches the bot's own profile. Used by the admin
// verification endpoint, so errors propagate to the caller.
func (c *Client) GetBotInfo(ctx context.Context) (*BotInfo, error) {
	var info BotInfo
	if err := c.get(ctx, "/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	token, err := c.cfg.Get(ctx, config.KeyAccessToken)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errors.New("LINE access token not configured")
	}
	return token, nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
