package orchestratornode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
)

type GraphInput struct {
	ConversationID string
	UserID         string
	Text           string
}

// GraphState is carried through the prepare graph and handed to the reply
// step once classification is done.
type GraphState struct {
	ConversationID string
	UserID         string
	Text           string
	Now            time.Time

	Conversation *statex.Conversation
	UserMessage  *statex.Message
	History      []contractx.HistoryEntry
	Decision     contractx.RoutingDecision
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversation id is required", contractx.ErrValidation)
	}

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}

	if strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("%w: message is required", contractx.ErrValidation)
	}

	return &GraphState{
		ConversationID: conversationID,
		UserID:         userID,
		Text:           in.Text,
		Now:            nowFn().UTC(),
	}, nil
}
