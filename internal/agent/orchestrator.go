package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chongdashu/crypto-scout/internal/llm"
	"github.com/chongdashu/crypto-scout/internal/tools"
	"github.com/chongdashu/crypto-scout/pkg/log"
)

// defaultMaxIterations bounds the tool-call loop so a model that never
// converges cannot spin forever
const defaultMaxIterations = 5

const defaultInstruction = `You are Naomi, a sharp-witted, Gen Z crypto market analyst. You are confident and you ALWAYS back up your sass with hard data. Follow this workflow precisely.

1.  **Get Coin ID**: Use search_coin_id to get the CoinGecko ID.

2.  **Get Coin Details**: Use get_coin_details with the ID. This will tell you if it's a native asset or a token.

3.  **Get Smart Money Flow**:
    *   If is_native_asset was true, call get_native_asset_smart_money_flow using the chain from the previous step.
    *   If is_native_asset was false and you have a contract_address, call get_token_smart_money_flow with the chain and contract_address.
    *   If you couldn't get smart money data for any reason, just move on.

4.  **Get Social Sentiment**: Use get_crypto_community_insights.

5.  **Synthesize Report**: Combine the results from all tools into a final summary. Give your take on what the data means in your signature style.`

const directiveRules = `IMPORTANT:
- You must ALWAYS respond with valid JSON.
- If you want to call a tool, respond with: {"tool": "tool_name", "args": {...}}
- If you have a final answer, respond with: {"answer": "your answer here"}
- Never reply with plain text or any other format.
- If you don't know the answer, still respond with {"answer": "Sorry, I don't know."}`

// Orchestrator runs the model-directed loop: ask the model for a directive,
// execute the tool it names, fold the result back into the transcript,
// repeat until a final answer or the iteration budget runs out.
type Orchestrator struct {
	client        *llm.Client
	toolbox       *tools.Toolbox
	maxIterations int
	instruction   string
}

func NewOrchestrator(client *llm.Client, toolbox *tools.Toolbox, maxIterations int) *Orchestrator {
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	return &Orchestrator{
		client:        client,
		toolbox:       toolbox,
		maxIterations: maxIterations,
		instruction:   defaultInstruction,
	}
}

// Process runs the loop for one user message. All failure modes terminate in
// an error-status Result; nothing is fatal to the caller.
func (o *Orchestrator) Process(ctx context.Context, message string) (Result, *Transcript) {
	transcript := NewTranscript(message)

	for i := 0; i < o.maxIterations; i++ {
		reply, err := o.client.SimpleChat(ctx, o.composePrompt(transcript), "")
		if err != nil {
			return Result{
				Message: fmt.Sprintf("LLM call failed: %v", err),
				Status:  StatusError,
			}, transcript
		}

		directive, err := ParseDirective(strings.TrimSpace(reply))
		if err != nil {
			if errors.Is(err, ErrNotJSON) {
				// Lenient by design: a non-JSON reply is taken as the
				// final answer
				log.Warn("model reply was not JSON, treating as final answer")
				return Result{Message: strings.TrimSpace(reply), Status: StatusSuccess}, transcript
			}
			return Result{
				Message: fmt.Sprintf("LLM returned unexpected JSON: %s", strings.TrimSpace(reply)),
				Status:  StatusError,
			}, transcript
		}

		switch d := directive.(type) {
		case AnswerDirective:
			return Result{Message: ExtractAnswer(d.Answer), Status: StatusSuccess}, transcript

		case ToolDirective:
			transcript.AddToolCall(d.Tool, d.Args)
			result, err := o.toolbox.Dispatch(ctx, d.Tool, d.Args)
			if err != nil {
				return Result{
					Message: fmt.Sprintf("Unknown tool: %s", d.Tool),
					Status:  StatusError,
				}, transcript
			}
			transcript.AddToolResult(d.Tool, d.Args, result)
			log.Info("tool %s executed: status=%s", d.Tool, result.Status)
		}
	}

	return Result{Message: "Too many tool calls, aborting.", Status: StatusError}, transcript
}

func (o *Orchestrator) composePrompt(transcript *Transcript) string {
	var b strings.Builder
	b.WriteString(o.instruction)
	b.WriteString("\n\nAvailable tools:\n")
	for _, spec := range o.toolbox.Specs() {
		fmt.Fprintf(&b, "- %s: %s\n", spec.Name, spec.Doc)
	}
	b.WriteString("\n")
	b.WriteString(transcript.Render())
	b.WriteString("\n")
	b.WriteString(directiveRules)
	return b.String()
}
