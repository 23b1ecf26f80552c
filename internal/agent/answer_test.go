package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chongdashu/crypto-scout/internal/tools"
)

func TestExtractAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text passes through",
			in:   "Bitcoin is trading at $65,000.",
			want: "Bitcoin is trading at $65,000.",
		},
		{
			name: "nested json answer unwrapped",
			in:   `{"answer": "Solana looks strong."}`,
			want: "Solana looks strong.",
		},
		{
			name: "literal json prefix stripped",
			in:   "json\n{\"answer\": \"Here's the tea.\"}",
			want: "Here's the tea.",
		},
		{
			name: "regex fallback on broken json",
			in:   `{"answer": "line one\nline two", "extra": `,
			want: "line one\nline two",
		},
		{
			name: "escaped quotes survive the fallback",
			in:   `{"answer": "she said \"wagmi\"", garbage`,
			want: `she said \"wagmi\"`,
		},
		{
			name: "whitespace trimmed",
			in:   "   final answer   ",
			want: "final answer",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractAnswer(tt.in))
		})
	}
}

func TestParseDirective(t *testing.T) {
	t.Parallel()

	d, err := ParseDirective(`{"answer": "done"}`)
	assert.NoError(t, err)
	assert.Equal(t, AnswerDirective{Answer: "done"}, d)

	d, err = ParseDirective(`{"tool": "search_coin_id", "args": {"query": "btc"}}`)
	assert.NoError(t, err)
	tool, ok := d.(ToolDirective)
	assert.True(t, ok)
	assert.Equal(t, "search_coin_id", string(tool.Tool))
	assert.Equal(t, "btc", tool.Args["query"])

	// An answer key wins when both variants are present
	d, err = ParseDirective(`{"answer": "done", "tool": "search_coin_id"}`)
	assert.NoError(t, err)
	assert.IsType(t, AnswerDirective{}, d)

	_, err = ParseDirective("not json at all")
	assert.ErrorIs(t, err, ErrNotJSON)

	_, err = ParseDirective(`{"something": "else"}`)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotJSON)
}

func TestTranscript_RenderShape(t *testing.T) {
	t.Parallel()

	tr := NewTranscript("what's up with bitcoin?")
	tr.AddToolCall("search_coin_id", map[string]interface{}{"query": "bitcoin"})

	// A call with no result yet renders nothing beyond the user message
	assert.Equal(t, "User message: what's up with bitcoin?\n", tr.Render())

	tr.AddToolResult("search_coin_id", map[string]interface{}{"query": "bitcoin"}, tools.Success("bitcoin"))
	rendered := tr.Render()
	assert.Contains(t, rendered, "User message: what's up with bitcoin?\n")
	assert.Contains(t, rendered, `Tool search_coin_id({"query":"bitcoin"}) returned:`)
	assert.Contains(t, rendered, `"status":"success"`)

	assert.Len(t, tr.Entries(), 3)
}
