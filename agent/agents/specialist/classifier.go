package specialist

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
)

const (
	routingContextEntries = 3

	FallbackReason = "Fallback: routing error, defaulting to support"
)

// orderReference matches order numbers (ORD-001) and tracking numbers
// (TRK-9876543210).
var orderReference = regexp.MustCompile(`(?i)\b(ORD|TRK)-\d+`)

type classifierImpl struct {
	instructions string
	runner       compose.Runnable[map[string]any, routingLLMOutput]
}

var _ contractx.Classifier = (*classifierImpl)(nil)

func newClassifier(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*classifierImpl, error) {
	runner, err := compileClassifierGraph(ctx, chatModel)
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &classifierImpl{instructions: systemPrompt, runner: runner}, nil
}

// Classify never fails. Provider errors and unusable output degrade to the
// support category with low confidence.
func (c *classifierImpl) Classify(ctx context.Context, message string, history []contractx.HistoryEntry) contractx.RoutingDecision {
	out, err := c.runner.Invoke(ctx, map[string]any{
		varInstructions: c.instructions,
		varInput:        routingContext(message, history),
	})
	if err != nil {
		log.Warn().Err(err).Msg("routing failed, defaulting to support")
		return fallbackDecision()
	}

	decision := normalizeDecision(out)
	return correctOrderReferences(message, decision)
}

func fallbackDecision() contractx.RoutingDecision {
	return contractx.RoutingDecision{
		AgentType:  contractx.AgentTypeSupport,
		Reason:     FallbackReason,
		Confidence: contractx.ConfidenceLow,
	}
}

func routingContext(message string, history []contractx.HistoryEntry) string {
	history = withoutEcho(history, message)
	if len(history) > routingContextEntries {
		history = history[len(history)-routingContextEntries:]
	}
	if len(history) == 0 {
		return message
	}

	lines := make([]string, 0, len(history))
	for _, h := range history {
		lines = append(lines, string(h.Role)+": "+h.Content)
	}
	return "Recent conversation:\n" + strings.Join(lines, "\n") + "\n\nNew message: " + message
}

func normalizeDecision(out routingLLMOutput) contractx.RoutingDecision {
	agentType := contractx.AgentType(strings.ToLower(strings.TrimSpace(out.AgentType)))
	if !agentType.Routable() {
		log.Warn().Str("agent_type", out.AgentType).Msg("router chose an unknown agent, defaulting to support")
		return contractx.RoutingDecision{
			AgentType:  contractx.AgentTypeSupport,
			Reason:     fmt.Sprintf("Fallback: unknown agent %q, defaulting to support", out.AgentType),
			Confidence: contractx.ConfidenceLow,
		}
	}

	confidence := contractx.Confidence(strings.ToLower(strings.TrimSpace(out.Confidence)))
	switch confidence {
	case contractx.ConfidenceHigh, contractx.ConfidenceMedium, contractx.ConfidenceLow:
	default:
		confidence = contractx.ConfidenceLow
	}

	reason := strings.TrimSpace(out.Reason)
	if reason == "" {
		reason = "Routed to " + string(agentType)
	}

	return contractx.RoutingDecision{
		AgentType:  agentType,
		Reason:     reason,
		Confidence: confidence,
	}
}

// correctOrderReferences keeps messages that cite an order or tracking
// number away from billing.
func correctOrderReferences(message string, d contractx.RoutingDecision) contractx.RoutingDecision {
	if d.AgentType != contractx.AgentTypeBilling || !orderReference.MatchString(message) {
		return d
	}
	return contractx.RoutingDecision{
		AgentType:  contractx.AgentTypeOrder,
		Reason:     "Message references an order or tracking number",
		Confidence: contractx.ConfidenceMedium,
	}
}
