package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
)

// LoadConversation fails with ErrConversationNotFound on any lookup failure
// so that nothing downstream runs against a conversation we cannot see.
func LoadConversation(ctx context.Context, in *GraphState, store statex.ConversationStore) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	conv, err := store.GetConversation(ctx, in.ConversationID)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", in.ConversationID).Msg("conversation lookup failed")
		return nil, fmt.Errorf("%w: conversation=%s", contractx.ErrConversationNotFound, in.ConversationID)
	}

	in.Conversation = conv
	return in, nil
}
