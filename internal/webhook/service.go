package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/wizlab/line-ai-bridge/internal/config"
	"github.com/wizlab/line-ai-bridge/internal/lineapi"
	"github.com/wizlab/line-ai-bridge/internal/logging"
	"github.com/wizlab/line-ai-bridge/internal/makkaizou"
)

const apologyMessage = "Sorry, I encountered an error while processing your message. Please try again later."

// Service runs the per-event pipeline.
type Service struct {
	cfg   config.Store
	talks Talks
	ai    Assistant
	line  Messenger
	log   *logging.Logger
}

func NewService(cfg config.Store, talks Talks, ai Assistant, line Messenger, log *logging.Logger) *Service {
	return &Service{cfg: cfg, talks: talks, ai: ai, line: line, log: log}
}

// HandleEvents processes each event independently: an error or panic in
// one event is logged and cannot fail the rest of the batch.
func (s *Service) HandleEvents(ctx context.Context, events []Event) {
	for i := range events {
		s.handleEvent(ctx, &events[i])
	}
}

func (s *Service) handleEvent(ctx context.Context, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(ctx, logging.ProcessingError, fmt.Sprintf("Panic processing event: %v", r), map[string]any{
				"event": marshalEvent(event),
				"stack": string(debug.Stack()),
			})
		}
	}()

	if err := s.processEvent(ctx, event); err != nil {
		s.log.Error(ctx, logging.ProcessingError, "Error processing message: "+err.Error(), map[string]any{
			"event": marshalEvent(event),
		})
		s.sendApology(ctx, event.ReplyToken)
	}
}

func (s *Service) processEvent(ctx context.Context, event *Event) error {
	if event.Type != "message" || event.Message == nil {
		s.log.Debug(ctx, "Ignoring non-message event", "eventType", event.Type)
		return nil
	}
	if event.Message.Type != "text" {
		s.log.Debug(ctx, "Ignoring non-text message", "messageType", event.Message.Type)
		return nil
	}

	botName, err := s.cfg.Get(ctx, config.KeyBotName)
	if err != nil {
		return fmt.Errorf("read bot_name: %w", err)
	}

	mentioned, err := s.isBotMentioned(ctx, botName, event.Message)
	if err != nil {
		return err
	}
	if !mentioned {
		s.log.Debug(ctx, "Bot not mentioned, ignoring message", "messageText", event.Message.Text)
		return nil
	}

	if event.ReplyToken != "" {
		s.line.ShowLoadingIndicator(ctx, event.ReplyToken)
	}

	sourceType := event.Source.Type
	userID := event.Source.UserID
	groupID := event.Source.GroupID
	if groupID == "" {
		groupID = event.Source.RoomID
	}
	if groupID == "" {
		// Direct messages use the user id as the group id.
		groupID = userID
	}

	talkID, err := s.talks.Resolve(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("resolve talk id: %w", err)
	}

	// Profile data only enriches metadata; lookups never fail the event.
	var profile *lineapi.Profile
	switch {
	case sourceType == "user":
		profile = s.line.GetProfile(ctx, userID)
	case sourceType == "group" && groupID != "":
		profile = s.line.GetGroupMemberProfile(ctx, groupID, userID)
	}
	userName := "Unknown User"
	if profile != nil {
		userName = profile.DisplayName
	}

	metadata := map[string]any{
		"source_type": sourceType,
		"user_id":     userID,
		"group_id":    groupID,
		"user_name":   userName,
		"message_id":  event.Message.ID,
		"timestamp":   event.Timestamp,
	}

	messageText := stripMention(event.Message.Text, botName)

	s.log.Info(ctx, "Sending message to Makkaizou", logging.ActivityEntry{
		GroupID: groupID,
		UserID:  userID,
		Message: messageText,
	})

	reply, err := s.ai.Send(ctx, talkID, messageText, metadata)
	if err != nil {
		return err
	}

	messages := makkaizou.FormatResponse(reply)
	if event.ReplyToken == "" || len(messages) == 0 {
		return nil
	}

	if err := s.line.Reply(ctx, event.ReplyToken, messages); err != nil {
		return err
	}

	s.log.Info(ctx, "Replied to message", logging.ActivityEntry{
		GroupID:        groupID,
		UserID:         userID,
		Message:        messageText,
		Response:       reply.Response,
		ProcessingTime: reply.ProcessingTime,
	})

	return nil
}

// isBotMentioned applies the mention rule: with no configured bot name
// every message counts; otherwise the text must contain @botName or a
// mention annotation must reference the configured bot user id.
func (s *Service) isBotMentioned(ctx context.Context, botName string, msg *IncomingMessage) (bool, error) {
	if botName == "" {
		s.log.Warn("No bot name configured, assuming all messages mention the bot")
		return true, nil
	}

	if strings.Contains(msg.Text, "@"+botName) {
		return true, nil
	}

	if msg.Mention != nil {
		botUserID, err := s.cfg.Get(ctx, config.KeyBotUserID)
		if err != nil {
			return false, fmt.Errorf("read line_bot_user_id: %w", err)
		}
		for _, mentionee := range msg.Mention.Mentionees {
			if mentionee.Type == "user" && mentionee.UserID == botUserID {
				return true, nil
			}
		}
	}

	return false, nil
}

// stripMention removes the first @botName occurrence from the text.
func stripMention(text, botName string) string {
	if botName == "" {
		return text
	}
	mention := "@" + botName
	if !strings.Contains(text, mention) {
		return text
	}
	return strings.TrimSpace(strings.Replace(text, mention, "", 1))
}

// sendApology makes a best-effort attempt to tell the user something
// went wrong. Failures are logged, never retried.
func (s *Service) sendApology(ctx context.Context, replyToken string) {
	if replyToken == "" {
		return
	}
	msg := lineapi.NewTextMessage(apologyMessage)
	if err := s.line.Reply(ctx, replyToken, []lineapi.Message{msg}); err != nil {
		s.log.Error(ctx, logging.APIError, "Error sending error message: "+err.Error(), map[string]any{
			"replyToken": replyToken,
		})
	}
}

func marshalEvent(event *Event) string {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Sprintf("%+v", event)
	}
	return string(b)
}
