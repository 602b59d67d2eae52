package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
)

// MaxHistoryMessages bounds the context handed to the classifier and the
// responders.
const MaxHistoryMessages = 12

type historyReader interface {
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]*statex.Message, error)
}

// FormatHistory returns the newest MaxHistoryMessages messages, oldest first,
// projected to role and content.
func FormatHistory(ctx context.Context, store historyReader, conversationID string) ([]contractx.HistoryEntry, error) {
	msgs, err := store.RecentMessages(ctx, conversationID, MaxHistoryMessages)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(msgs) > MaxHistoryMessages {
		msgs = msgs[len(msgs)-MaxHistoryMessages:]
	}

	out := make([]contractx.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		out = append(out, contractx.HistoryEntry{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

func BuildHistory(ctx context.Context, in *GraphState, store statex.ConversationStore) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	history, err := FormatHistory(ctx, store, in.ConversationID)
	if err != nil {
		return nil, err
	}
	in.History = history
	return in, nil
}
