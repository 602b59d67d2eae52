package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
)

// SaveUserMessage persists the inbound text before any provider call.
func SaveUserMessage(ctx context.Context, in *GraphState, store statex.ConversationStore) (*GraphState, error) {
	if in == nil || in.Conversation == nil {
		return nil, fmt.Errorf("%w: conversation is not loaded", contractx.ErrValidation)
	}

	msg := &statex.Message{
		ConversationID: in.Conversation.ID,
		Role:           contractx.RoleUser,
		Content:        in.Text,
		ToolsUsed:      []string{},
	}
	if err := store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	in.UserMessage = msg
	return in, nil
}
