package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
)

// Prompt text travels as template variables so that braces inside the
// instructions are never parsed.
const (
	varInstructions = "instructions"
	varContext      = "context"
	varHistory      = "history"
	varInput        = "input"
)

type routingLLMOutput struct {
	AgentType  string `json:"agentType"`
	Reason     string `json:"reason"`
	Confidence string `json:"confidence"`
}

func compileClassifierGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[map[string]any, routingLLMOutput], error) {
	template := einoprompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage("{{."+varInstructions+"}}"),
		schema.UserMessage("{{."+varInput+"}}"),
	)

	graph := compose.NewGraph[map[string]any, routingLLMOutput]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add classifier prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add classifier model node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_decision", compose.InvokableLambda(parseRoutingMessage)); err != nil {
		return nil, fmt.Errorf("add classifier parser node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add classifier edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add classifier edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "parse_decision"); err != nil {
		return nil, fmt.Errorf("add classifier edge model->parse: %w", err)
	}
	if err := graph.AddEdge("parse_decision", compose.END); err != nil {
		return nil, fmt.Errorf("add classifier edge parse->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("specialist.classifier_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile classifier graph: %w", err)
	}
	return runner, nil
}

var codeFence = regexp.MustCompile("```json\\n?|\\n?```")

func parseRoutingMessage(_ context.Context, msg *schema.Message) (routingLLMOutput, error) {
	if msg == nil {
		return routingLLMOutput{}, fmt.Errorf("%w: empty routing response", contractx.ErrSchemaViolation)
	}

	cleaned := codeFence.ReplaceAllString(strings.TrimSpace(msg.Content), "")
	var out routingLLMOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &out); err != nil {
		return routingLLMOutput{}, fmt.Errorf("%w: decode routing decision: %v", contractx.ErrSchemaViolation, err)
	}
	return out, nil
}

// newResponderTemplate lays out system instructions, prior turns and the new
// user message in the order the provider expects.
func newResponderTemplate() einoprompt.ChatTemplate {
	return einoprompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage("{{."+varInstructions+"}}\n\n{{."+varContext+"}}"),
		schema.MessagesPlaceholder(varHistory, true),
		schema.UserMessage("{{."+varInput+"}}"),
	)
}

func historyMessages(history []contractx.HistoryEntry) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, h := range history {
		switch h.Role {
		case contractx.RoleAssistant:
			out = append(out, schema.AssistantMessage(h.Content, nil))
		default:
			out = append(out, schema.UserMessage(h.Content))
		}
	}
	return out
}

// withoutEcho drops a trailing history entry that repeats the inbound user
// message, since the caller persists it before building history.
func withoutEcho(history []contractx.HistoryEntry, message string) []contractx.HistoryEntry {
	if n := len(history); n > 0 {
		last := history[n-1]
		if last.Role == contractx.RoleUser && strings.TrimSpace(last.Content) == strings.TrimSpace(message) {
			return history[:n-1]
		}
	}
	return history
}
