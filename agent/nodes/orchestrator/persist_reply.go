package orchestratornode

import (
	"context"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
)

const titleMaxRunes = 60

// PersistReply stores the assistant message and refreshes the conversation.
func PersistReply(
	ctx context.Context,
	in *GraphState,
	resp contractx.SpecialistResponse,
	store statex.ConversationStore,
	now time.Time,
) (*statex.Message, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	agentType := in.Decision.AgentType
	reason := in.Decision.Reason
	tools := resp.ToolsUsed
	if tools == nil {
		tools = []string{}
	}

	msg := &statex.Message{
		ConversationID: in.ConversationID,
		Role:           contractx.RoleAssistant,
		Content:        resp.Message,
		AgentType:      &agentType,
		RoutingReason:  &reason,
		ToolsUsed:      tools,
	}
	if err := store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	if err := store.TouchConversation(ctx, in.ConversationID, Title(in.Text), now); err != nil {
		return nil, err
	}
	return msg, nil
}

// Title derives a conversation title from the first message.
func Title(text string) string {
	runes := []rune(text)
	if len(runes) > titleMaxRunes {
		runes = runes[:titleMaxRunes]
	}
	return string(runes)
}
