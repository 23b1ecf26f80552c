package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chongdashu/crypto-scout/internal/tools"
)

// Request represents one incoming user message
type Request struct {
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context"`
	SessionID string                 `json:"session_id"`
}

// Result is the terminal outcome of processing one request
type Result struct {
	Message string                 `json:"message"`
	Status  string                 `json:"status"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Directive is the model's structured reply each round: exactly one of
// "here is the final answer" or "call this tool"
type Directive interface {
	isDirective()
}

// AnswerDirective carries the model's final answer
type AnswerDirective struct {
	Answer string
}

// ToolDirective asks for one tool call
type ToolDirective struct {
	Tool tools.ToolName
	Args map[string]interface{}
}

func (AnswerDirective) isDirective() {}
func (ToolDirective) isDirective()   {}

// ErrNotJSON marks a reply that is not a JSON object at all; the loop treats
// the raw text as the final answer in that case
var ErrNotJSON = fmt.Errorf("reply is not valid JSON")

// ParseDirective parses the model's raw reply into a Directive. An "answer"
// key wins when both variants are present. A JSON object with neither key is
// an error distinct from ErrNotJSON.
func ParseDirective(raw string) (Directive, error) {
	var payload struct {
		Answer *string                `json:"answer"`
		Tool   *string                `json:"tool"`
		Args   map[string]interface{} `json:"args"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, ErrNotJSON
	}

	switch {
	case payload.Answer != nil:
		return AnswerDirective{Answer: *payload.Answer}, nil
	case payload.Tool != nil:
		return ToolDirective{Tool: tools.ToolName(*payload.Tool), Args: payload.Args}, nil
	default:
		return nil, fmt.Errorf("unexpected JSON: %s", raw)
	}
}

// EntryKind labels one transcript entry
type EntryKind string

const (
	EntryUser       EntryKind = "user"
	EntryToolCall   EntryKind = "tool_call"
	EntryToolResult EntryKind = "tool_result"
)

// Entry is one typed transcript record. Entries are appended, never mutated.
type Entry struct {
	Kind   EntryKind
	Tool   tools.ToolName
	Args   map[string]interface{}
	Result *tools.ToolResult
	Text   string
}

// Transcript is the ordered record of one request's run: the user message
// followed by every tool call and result. It is the loop's only state and is
// serialized to prompt text only at the point of invoking the model.
type Transcript struct {
	entries []Entry
}

func NewTranscript(userMessage string) *Transcript {
	return &Transcript{
		entries: []Entry{{Kind: EntryUser, Text: userMessage}},
	}
}

func (t *Transcript) AddToolCall(tool tools.ToolName, args map[string]interface{}) {
	t.entries = append(t.entries, Entry{Kind: EntryToolCall, Tool: tool, Args: args})
}

func (t *Transcript) AddToolResult(tool tools.ToolName, args map[string]interface{}, result tools.ToolResult) {
	t.entries = append(t.entries, Entry{Kind: EntryToolResult, Tool: tool, Args: args, Result: &result})
}

// Entries returns a copy of the transcript records, for inspection and for
// replaying into a session history
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Render serializes the transcript to the prompt text the model sees.
// Tool-call entries render nothing on their own; each result line carries
// the call that produced it.
func (t *Transcript) Render() string {
	var b strings.Builder
	for _, entry := range t.entries {
		switch entry.Kind {
		case EntryUser:
			fmt.Fprintf(&b, "User message: %s\n", entry.Text)
		case EntryToolResult:
			fmt.Fprintf(&b, "Tool %s(%s) returned: %s\n",
				entry.Tool, compactJSON(entry.Args), compactJSON(entry.Result))
		}
	}
	return b.String()
}

func compactJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
