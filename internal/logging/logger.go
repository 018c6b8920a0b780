package logging

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/wizlab/line-ai-bridge/internal/config"
)

// Logger appends to the durable logs and mirrors everything to the
// console. Debug output is gated on the debug_mode config key.
type Logger struct {
	repo Repo
	cfg  config.Store
	now  func() time.Time
}

func New(repo Repo, cfg config.Store) *Logger {
	return &Logger{repo: repo, cfg: cfg, now: time.Now}
}

// Info appends an activity entry with status INFO. The message column
// falls back to msg when the entry carries no message of its own.
func (l *Logger) Info(ctx context.Context, msg string, e ActivityEntry) {
	e.Timestamp = l.now()
	e.Status = "INFO"
	if e.Message == "" {
		e.Message = msg
	}

	if err := l.repo.AppendActivity(ctx, e); err != nil {
		log.Printf("[log] activity append failed: %v", err)
	}

	log.Printf("[info] %s groupId=%s userId=%s", msg, e.GroupID, e.UserID)
}

// Debug writes to the console only, and only when debug_mode is enabled.
func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	if !config.Bool(ctx, l.cfg, config.KeyDebugMode) {
		return
	}
	log.Printf("[debug] %s %v", msg, kv)
}

// Warn writes to the console only.
func (l *Logger) Warn(msg string, kv ...any) {
	log.Printf("[warn] %s %v", msg, kv)
}

// Error appends an error entry. contextData is serialized as JSON into
// the context column; a "stack" key, when present, also fills the
// stack trace column.
func (l *Logger) Error(ctx context.Context, errType ErrorType, msg string, contextData map[string]any) {
	e := ErrorEntry{
		Timestamp: l.now(),
		Type:      errType,
		Message:   msg,
	}
	if contextData != nil {
		if b, err := json.Marshal(contextData); err == nil {
			e.Context = string(b)
		}
		if stack, ok := contextData["stack"].(string); ok {
			e.StackTrace = stack
		}
	}

	if err := l.repo.AppendError(ctx, e); err != nil {
		log.Printf("[log] error append failed: %v", err)
	}

	log.Printf("[error] %s: %s context=%s", errType, msg, e.Context)
}
