package makkaizou

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizlab/line-ai-bridge/internal/config"
	"github.com/wizlab/line-ai-bridge/internal/logging"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *logging.Memory) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.NewMemory()
	require.NoError(t, cfg.Set(context.Background(), config.KeyMakkaizouAPIKey, "test-key", ""))

	logs := logging.NewMemory()
	c := NewClient(cfg, logging.New(logs, cfg))
	c.baseURL = srv.URL
	return c, logs
}

func TestSend(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any

	c, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "Hello!"})
	}))

	reply, err := c.Send(context.Background(), "wiz-user-id-123456", "hi there", map[string]any{
		"user_name": "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply.Response)
	assert.GreaterOrEqual(t, reply.ProcessingTime, int64(0))

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "wiz-user-id-123456", gotPayload["talk_id"])
	assert.Equal(t, "hi there", gotPayload["message"])

	md, ok := gotPayload["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "line", md["source"])
	assert.Equal(t, "Alice", md["user_name"])

	// One activity entry for the received response, no errors.
	require.Len(t, logs.Activity, 1)
	assert.Empty(t, logs.Errors)
}

func TestSendCallerMetadataWinsOverSourceTag(t *testing.T) {
	var gotPayload map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))

	_, err := c.Send(context.Background(), "t", "m", map[string]any{"source": "custom"})
	require.NoError(t, err)

	md := gotPayload["metadata"].(map[string]any)
	assert.Equal(t, "custom", md["source"])
}

func TestSendNonOKStatusIsHardFailure(t *testing.T) {
	c, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))

	_, err := c.Send(context.Background(), "talk", "msg", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	require.Len(t, logs.Errors, 1)
	assert.Equal(t, logging.APIError, logs.Errors[0].Type)
	assert.Contains(t, logs.Errors[0].Context, "talk")
}

func TestSendMissingAPIKey(t *testing.T) {
	cfg := config.NewMemory()
	logs := logging.NewMemory()
	c := NewClient(cfg, logging.New(logs, cfg))

	_, err := c.Send(context.Background(), "talk", "msg", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
	require.Len(t, logs.Errors, 1)
}

func TestCheckStatus(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/status", r.URL.Path)
			_ = json.NewEncoder(w).Encode(Status{Status: "ok"})
		}))

		status := c.CheckStatus(context.Background())
		assert.Equal(t, "ok", status.Status)
		assert.Empty(t, logs.Errors)
	})

	t.Run("failure never throws", func(t *testing.T) {
		c, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		}))

		status := c.CheckStatus(context.Background())
		assert.Equal(t, "error", status.Status)
		assert.Contains(t, status.Message, "503")
		require.Len(t, logs.Errors, 1)
	})
}
