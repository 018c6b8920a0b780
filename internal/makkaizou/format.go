package makkaizou

import (
	"unicode"

	"github.com/wizlab/line-ai-bridge/internal/lineapi"
)

const (
	// maxMessageLength is the LINE text message limit.
	maxMessageLength = 5000
	// chunkLimit leaves some buffer when splitting long responses.
	chunkLimit = 4900
)

const fallbackMessage = "Sorry, I couldn't process your request at this time."

// FormatResponse turns a backend reply into LINE messages. An absent or
// empty reply yields a single generic failure message; text over the
// LINE limit is split into ordered chunks that concatenate back to the
// original, each at most chunkLimit characters.
func FormatResponse(reply *Reply) []lineapi.Message {
	if reply == nil || reply.Response == "" {
		return []lineapi.Message{lineapi.NewTextMessage(fallbackMessage)}
	}

	text := []rune(reply.Response)
	if len(text) <= maxMessageLength {
		return []lineapi.Message{lineapi.NewTextMessage(reply.Response)}
	}

	var messages []lineapi.Message
	remaining := text
	for len(remaining) > 0 {
		bp := len(remaining)
		if bp > chunkLimit {
			bp = breakPoint(remaining[:chunkLimit])
		}
		messages = append(messages, lineapi.NewTextMessage(string(remaining[:bp])))
		remaining = remaining[bp:]
	}
	return messages
}

// breakPoint picks where to cut the window: after the last
// sentence-ending punctuation followed by whitespace, else after the
// last newline, else at the window boundary.
func breakPoint(window []rune) int {
	for i := len(window) - 2; i >= 0; i-- {
		if isSentenceEnd(window[i]) && unicode.IsSpace(window[i+1]) {
			return i + 2
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' {
			return i + 1
		}
	}
	return len(window)
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
