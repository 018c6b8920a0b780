package talk

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/wizlab/line-ai-bridge/internal/logging"
)

const talkIDPrefix = "wiz-user-id-"

// Manager resolves (group, user) pairs to talk ids, creating mappings
// lazily on first contact.
type Manager struct {
	repo Repo
	log  *logging.Logger
	now  func() time.Time
}

func NewManager(repo Repo, log *logging.Logger) *Manager {
	return &Manager{repo: repo, log: log, now: time.Now}
}

// Resolve returns the talk id for the pair, updating last_used on a hit
// and creating a new mapping on a miss. When a concurrent request wins
// the first-contact insert, the winner's talk id is returned.
func (m *Manager) Resolve(ctx context.Context, groupID, userID string) (string, error) {
	existing, err := m.repo.Find(ctx, groupID, userID)
	if err != nil {
		return "", fmt.Errorf("find mapping: %w", err)
	}
	if existing != nil {
		if err := m.repo.Touch(ctx, groupID, userID, m.now()); err != nil {
			return "", fmt.Errorf("touch mapping: %w", err)
		}
		return existing.TalkID, nil
	}

	now := m.now()
	mapping := &Mapping{
		GroupID:   groupID,
		UserID:    userID,
		TalkID:    generateTalkID(),
		CreatedAt: now,
		LastUsed:  now,
	}

	inserted, err := m.repo.Insert(ctx, mapping)
	if err != nil {
		return "", fmt.Errorf("insert mapping: %w", err)
	}
	if !inserted {
		// Lost the first-contact race; use the winner's row.
		winner, err := m.repo.Find(ctx, groupID, userID)
		if err != nil {
			return "", fmt.Errorf("re-find mapping: %w", err)
		}
		if winner == nil {
			return "", fmt.Errorf("mapping for %s/%s vanished after conflict", groupID, userID)
		}
		return winner.TalkID, nil
	}

	m.log.Info(ctx, "Created new talk_id", logging.ActivityEntry{
		GroupID: groupID,
		UserID:  userID,
		Message: "Created new talk_id " + mapping.TalkID,
	})

	return mapping.TalkID, nil
}

// ListByGroup returns all mappings for a group.
func (m *Manager) ListByGroup(ctx context.Context, groupID string) ([]Mapping, error) {
	return m.repo.ListByGroup(ctx, groupID)
}

// ListByUser returns all mappings for a user across groups.
func (m *Manager) ListByUser(ctx context.Context, userID string) ([]Mapping, error) {
	return m.repo.ListByUser(ctx, userID)
}

// Delete removes the mapping for the pair and reports whether one existed.
func (m *Manager) Delete(ctx context.Context, groupID, userID string) (bool, error) {
	found, err := m.repo.Delete(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	if found {
		m.log.Info(ctx, "Deleted talk_id mapping", logging.ActivityEntry{
			GroupID: groupID,
			UserID:  userID,
		})
	}
	return found, nil
}

// generateTalkID returns the prefix plus a random 6-digit decimal.
// Generated ids are not checked against existing ones.
func generateTalkID() string {
	return fmt.Sprintf("%s%d", talkIDPrefix, 100000+rand.Intn(900000))
}
