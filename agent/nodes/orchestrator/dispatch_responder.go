package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
)

const UnknownCategoryReply = "I'm not sure how to help with that. Could you rephrase your question? I can help with orders, billing, or general support questions."

// StaticReplyFunc wraps fixed text as a reply stream.
type StaticReplyFunc func(text string) contractx.ReplyStream

// DispatchResponder opens the reply stream of the routed responder. A
// category without a responder gets the canned reply and no tools.
func DispatchResponder(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
	static StaticReplyFunc,
) (contractx.ReplyStream, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	responder, ok := models.Responder(in.Decision.AgentType)
	if !ok || responder == nil {
		return static(UnknownCategoryReply), nil
	}

	return responder.Stream(ctx, contractx.SpecialistRequest{
		UserMessage:    in.Text,
		History:        in.History,
		UserID:         in.UserID,
		ConversationID: in.ConversationID,
	})
}
