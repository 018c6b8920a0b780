// Package talk maintains the persistent mapping between a LINE
// (group, user) identity pair and the Makkaizou talk id that names the
// conversation on the AI side.
package talk

import (
	"context"
	"time"
)

// Mapping ties one (group, user) pair to one talk id. For direct
// messages the group id is the user id.
type Mapping struct {
	GroupID   string
	UserID    string
	TalkID    string
	CreatedAt time.Time
	LastUsed  time.Time
}

// Repo persists mappings. Find returns nil on a miss. Insert reports whether
// the row was actually inserted; a concurrent first contact that loses
// the race gets false and should re-read.
type Repo interface {
	Find(ctx context.Context, groupID, userID string) (*Mapping, error)
	Insert(ctx context.Context, m *Mapping) (bool, error)
	Touch(ctx context.Context, groupID, userID string, lastUsed time.Time) error
	ListByGroup(ctx context.Context, groupID string) ([]Mapping, error)
	ListByUser(ctx context.Context, userID string) ([]Mapping, error)
	Delete(ctx context.Context, groupID, userID string) (bool, error)
}
