package makkaizou

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reassemble concatenates the text of all chunks.
func reassemble(t *testing.T, reply *Reply) string {
	t.Helper()
	var b strings.Builder
	for _, m := range FormatResponse(reply) {
		b.WriteString(m.Text)
	}
	return b.String()
}

func TestFormatResponseFallback(t *testing.T) {
	for name, reply := range map[string]*Reply{
		"nil reply":  nil,
		"empty text": {Response: ""},
	} {
		t.Run(name, func(t *testing.T) {
			msgs := FormatResponse(reply)
			require.Len(t, msgs, 1)
			assert.Equal(t, fallbackMessage, msgs[0].Text)
		})
	}
}

func TestFormatResponseShortText(t *testing.T) {
	text := strings.Repeat("a", maxMessageLength)
	msgs := FormatResponse(&Reply{Response: text})
	require.Len(t, msgs, 1)
	assert.Equal(t, text, msgs[0].Text)
}

func TestFormatResponseLongTextIsLossless(t *testing.T) {
	sentence := "This is a fairly ordinary sentence that fills some space. "
	text := strings.Repeat(sentence, 300) // ~17k chars
	reply := &Reply{Response: text}

	msgs := FormatResponse(reply)
	require.Greater(t, len(msgs), 1)

	for i, m := range msgs {
		assert.LessOrEqual(t, len([]rune(m.Text)), chunkLimit, "chunk %d too long", i)
		assert.Equal(t, "text", m.Type)
	}
	assert.Equal(t, text, reassemble(t, reply))
}

func TestFormatResponsePrefersSentenceBreaks(t *testing.T) {
	sentence := "One more sentence ends right here. "
	text := strings.Repeat(sentence, 300)

	msgs := FormatResponse(&Reply{Response: text})
	require.Greater(t, len(msgs), 1)
	// Every chunk but the last should end at a sentence boundary.
	for i := 0; i < len(msgs)-1; i++ {
		assert.True(t, strings.HasSuffix(msgs[i].Text, ". "), "chunk %d ends mid-sentence: %q", i, msgs[i].Text[len(msgs[i].Text)-10:])
	}
}

func TestFormatResponseFallsBackToNewlines(t *testing.T) {
	line := strings.Repeat("x", 200) + "\n"
	text := strings.Repeat(line, 40) // 8040 chars, no sentence punctuation
	reply := &Reply{Response: text}

	msgs := FormatResponse(reply)
	require.Greater(t, len(msgs), 1)
	assert.True(t, strings.HasSuffix(msgs[0].Text, "\n"))
	assert.Equal(t, text, reassemble(t, reply))
}

func TestFormatResponseHardCut(t *testing.T) {
	text := strings.Repeat("z", 12000) // no break candidates at all
	reply := &Reply{Response: text}

	msgs := FormatResponse(reply)
	require.Len(t, msgs, 3)
	assert.Equal(t, chunkLimit, len([]rune(msgs[0].Text)))
	assert.Equal(t, chunkLimit, len([]rune(msgs[1].Text)))
	assert.Equal(t, text, reassemble(t, reply))
}

func TestFormatResponseMultibyte(t *testing.T) {
	text := strings.Repeat("こんにちは世界です。\n", 700) // > 5000 runes, multibyte
	reply := &Reply{Response: text}

	msgs := FormatResponse(reply)
	require.Greater(t, len(msgs), 1)
	for i, m := range msgs {
		assert.LessOrEqual(t, len([]rune(m.Text)), chunkLimit, "chunk %d too long", i)
	}
	assert.Equal(t, text, reassemble(t, reply))
}
