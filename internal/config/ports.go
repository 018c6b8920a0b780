// Package config provides the key/value configuration store backed by the
// configuration table. Secrets and feature flags for every other component
// are read through it, so changes take effect without a restart.
package config

import "context"

// Keys understood by the bridge.
const (
	KeyChannelSecret          = "line_channel_secret"
	KeyAccessToken            = "line_access_token"
	KeyBotUserID              = "line_bot_user_id"
	KeyBotName                = "bot_name"
	KeyMakkaizouAPIKey        = "makkaizou_api_key"
	KeyEnableLoadingIndicator = "enable_loading_indicator"
	KeyDebugMode              = "debug_mode"
)

// Entry is a single configuration row.
type Entry struct {
	Key         string
	Value       string
	Description string
}

// Store reads and writes configuration entries. Get returns an empty
// string for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value, description string) error
	All(ctx context.Context) ([]Entry, error)
}

// Bool reports whether the value for key is literally "true". Lookup
// errors read as false.
func Bool(ctx context.Context, s Store, key string) bool {
	v, err := s.Get(ctx, key)
	return err == nil && v == "true"
}
