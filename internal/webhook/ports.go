package webhook

import (
	"context"

	"github.com/wizlab/line-ai-bridge/internal/lineapi"
	"github.com/wizlab/line-ai-bridge/internal/makkaizou"
)

// Talks resolves a chat identity pair to a backend talk id.
type Talks interface {
	Resolve(ctx context.Context, groupID, userID string) (string, error)
}

// Assistant sends a message to the AI backend.
type Assistant interface {
	Send(ctx context.Context, talkID, message string, metadata map[string]any) (*makkaizou.Reply, error)
}

// Messenger is the set of outbound LINE calls used by the dispatcher.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, messages []lineapi.Message) error
	ShowLoadingIndicator(ctx context.Context, replyToken string)
	GetProfile(ctx context.Context, userID string) *lineapi.Profile
	GetGroupMemberProfile(ctx context.Context, groupID, userID string) *lineapi.Profile
}
