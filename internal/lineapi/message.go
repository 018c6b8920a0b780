// Package lineapi wraps the outbound LINE Messaging API calls: reply,
// push, loading indicator and profile lookups.
package lineapi

import "encoding/json"

// Message is an outbound LINE message object.
type Message struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	AltText  string          `json:"altText,omitempty"`
	Contents json.RawMessage `json:"contents,omitempty"`
}

// NewTextMessage builds a text message.
func NewTextMessage(text string) Message {
	return Message{Type: "text", Text: text}
}

// NewFlexMessage builds a flex message with the given alt text and
// pre-marshaled contents.
func NewFlexMessage(altText string, contents json.RawMessage) Message {
	return Message{Type: "flex", AltText: altText, Contents: contents}
}

// Profile is a LINE user or group-member profile.
type Profile struct {
	DisplayName   string `json:"displayName"`
	UserID        string `json:"userId"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
	Language      string `json:"language,omitempty"`
}

// BotInfo is the bot's own profile, returned by the /info endpoint.
type BotInfo struct {
	DisplayName string `json:"displayName"`
	UserID      string `json:"userId"`
	BasicID     string `json:"basicId,omitempty"`
	PictureURL  string `json:"pictureUrl,omitempty"`
}
