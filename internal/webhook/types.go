// Package webhook is the inbound entry point: it validates LINE webhook
// deliveries, parses event batches and orchestrates the per-event
// pipeline through the identity mapper, the AI backend and the LINE API.
package webhook

// Body is the top-level webhook payload from the LINE platform.
type Body struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is a single webhook event.
type Event struct {
	Type       string           `json:"type"`
	Timestamp  int64            `json:"timestamp"`
	ReplyToken string           `json:"replyToken,omitempty"`
	Source     Source           `json:"source"`
	Message    *IncomingMessage `json:"message,omitempty"`
}

// Source identifies where an event came from: "user", "group" or "room".
type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// IncomingMessage is the message attached to a message event.
type IncomingMessage struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Text    string   `json:"text,omitempty"`
	Mention *Mention `json:"mention,omitempty"`
}

// Mention carries the platform-native mention annotations of a message.
type Mention struct {
	Mentionees []Mentionee `json:"mentionees"`
}

// Mentionee is one mention annotation.
type Mentionee struct {
	Index  int    `json:"index"`
	Length int    `json:"length"`
	Type   string `json:"type"`
	UserID string `json:"userId,omitempty"`
}
