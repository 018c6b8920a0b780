package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizlab/line-ai-bridge/internal/config"
	"github.com/wizlab/line-ai-bridge/internal/lineapi"
	"github.com/wizlab/line-ai-bridge/internal/logging"
	"github.com/wizlab/line-ai-bridge/internal/makkaizou"
	"github.com/wizlab/line-ai-bridge/internal/talk"
)

type fakeBotInfo struct {
	info *lineapi.BotInfo
	err  error
}

func (f *fakeBotInfo) GetBotInfo(_ context.Context) (*lineapi.BotInfo, error) {
	return f.info, f.err
}

type fakeStatus struct {
	status makkaizou.Status
}

func (f *fakeStatus) CheckStatus(_ context.Context) makkaizou.Status {
	return f.status
}

func newTestHandler(t *testing.T) (*Handler, *config.Memory, *talk.Memory, *fakeBotInfo, *fakeStatus) {
	t.Helper()
	cfg := config.NewMemory()
	repo := talk.NewMemory()
	talks := talk.NewManager(repo, logging.New(logging.NewMemory(), cfg))
	line := &fakeBotInfo{info: &lineapi.BotInfo{DisplayName: "LineBot", UserID: "Ubot"}}
	ai := &fakeStatus{status: makkaizou.Status{Status: "ok"}}
	return NewHandler(cfg, line, ai, talks), cfg, repo, line, ai
}

func TestHandleShowConfigMasksSecrets(t *testing.T) {
	h, cfg, _, _, _ := newTestHandler(t)
	ctx := context.Background()
	require.NoError(t, cfg.Set(ctx, config.KeyAccessToken, "supersecrettoken", "LINE token"))
	require.NoError(t, cfg.Set(ctx, config.KeyBotName, "LineBot", "bot name"))

	rec := httptest.NewRecorder()
	h.HandleShowConfig(rec, httptest.NewRequest(http.MethodGet, "/admin/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Entries []configEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Entries, 2)

	byKey := map[string]string{}
	for _, e := range out.Entries {
		byKey[e.Key] = e.Value
	}
	assert.Equal(t, "********oken", byKey[config.KeyAccessToken])
	assert.Equal(t, "LineBot", byKey[config.KeyBotName])
}

func TestHandleSetConfig(t *testing.T) {
	h, cfg, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPut, "/admin/config",
		strings.NewReader(`{"key":"bot_name","value":"LineBot","description":"bot name"}`))
	rec := httptest.NewRecorder()
	h.HandleSetConfig(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	v, err := cfg.Get(context.Background(), config.KeyBotName)
	require.NoError(t, err)
	assert.Equal(t, "LineBot", v)
}

func TestHandleSetConfigRejectsMissingKey(t *testing.T) {
	h, _, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPut, "/admin/config", strings.NewReader(`{"value":"x"}`))
	rec := httptest.NewRecorder()
	h.HandleSetConfig(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleVerify(t *testing.T) {
	t.Run("all good backfills bot identity", func(t *testing.T) {
		h, cfg, _, _, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		h.HandleVerify(rec, httptest.NewRequest(http.MethodGet, "/admin/verify", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, true, out["overallSuccess"])

		ctx := context.Background()
		name, _ := cfg.Get(ctx, config.KeyBotName)
		id, _ := cfg.Get(ctx, config.KeyBotUserID)
		assert.Equal(t, "LineBot", name)
		assert.Equal(t, "Ubot", id)
	})

	t.Run("existing config is not overwritten", func(t *testing.T) {
		h, cfg, _, _, _ := newTestHandler(t)
		ctx := context.Background()
		require.NoError(t, cfg.Set(ctx, config.KeyBotName, "CustomName", ""))

		rec := httptest.NewRecorder()
		h.HandleVerify(rec, httptest.NewRequest(http.MethodGet, "/admin/verify", nil))

		name, _ := cfg.Get(ctx, config.KeyBotName)
		assert.Equal(t, "CustomName", name)
	})

	t.Run("failures reported per service", func(t *testing.T) {
		h, _, _, line, ai := newTestHandler(t)
		line.info, line.err = nil, errors.New("unauthorized")
		ai.status = makkaizou.Status{Status: "error", Message: "down"}

		rec := httptest.NewRecorder()
		h.HandleVerify(rec, httptest.NewRequest(http.MethodGet, "/admin/verify", nil))

		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, false, out["overallSuccess"])
		lineRes := out["line"].(map[string]any)
		assert.Equal(t, false, lineRes["success"])
		makRes := out["makkaizou"].(map[string]any)
		assert.Equal(t, "down", makRes["error"])
	})
}

func TestHandleListMappings(t *testing.T) {
	h, _, repo, _, _ := newTestHandler(t)
	ctx := context.Background()

	seed := []talk.Mapping{
		{GroupID: "G1", UserID: "U1", TalkID: "wiz-user-id-111111"},
		{GroupID: "G1", UserID: "U2", TalkID: "wiz-user-id-222222"},
		{GroupID: "G2", UserID: "U1", TalkID: "wiz-user-id-333333"},
	}
	for i := range seed {
		_, err := repo.Insert(ctx, &seed[i])
		require.NoError(t, err)
	}

	t.Run("by group", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleListMappings(rec, httptest.NewRequest(http.MethodGet, "/admin/mappings?group_id=G1", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var out struct {
			Mappings []map[string]any `json:"mappings"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Len(t, out.Mappings, 2)
	})

	t.Run("by user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleListMappings(rec, httptest.NewRequest(http.MethodGet, "/admin/mappings?user_id=U1", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var out struct {
			Mappings []map[string]any `json:"mappings"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Len(t, out.Mappings, 2)
	})

	t.Run("missing filter is a bad request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleListMappings(rec, httptest.NewRequest(http.MethodGet, "/admin/mappings", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleDeleteMapping(t *testing.T) {
	h, _, repo, _, _ := newTestHandler(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, &talk.Mapping{GroupID: "G1", UserID: "U1", TalkID: "wiz-user-id-111111"})
	require.NoError(t, err)

	del := func(query string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.HandleDeleteMapping(rec, httptest.NewRequest(http.MethodDelete, "/admin/mappings"+query, nil))
		return rec
	}

	rec := del("?group_id=G1&user_id=U1")
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out["deleted"])

	rec = del("?group_id=G1&user_id=U1")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out["deleted"])

	rec = del("")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
