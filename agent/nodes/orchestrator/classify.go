package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
)

func Classify(ctx context.Context, in *GraphState, classifier contractx.Classifier) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Decision = classifier.Classify(ctx, in.Text, in.History)
	log.Info().
		Str("conversation_id", in.ConversationID).
		Str("agent_type", string(in.Decision.AgentType)).
		Str("confidence", string(in.Decision.Confidence)).
		Msg("message routed")
	return in, nil
}
