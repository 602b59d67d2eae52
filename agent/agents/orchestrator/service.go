package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/ai-support-router/agent/agents/specialist"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	nodex "github.com/tanpawarit/ai-support-router/agent/nodes/orchestrator"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
)

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithStaticReply overrides how canned replies are streamed.
func WithStaticReply(fn nodex.StaticReplyFunc) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.static = fn
		}
	}
}

type Orchestrator struct {
	store  statex.ConversationStore
	models contractx.Registry
	static nodex.StaticReplyFunc

	graphRunner compose.Runnable[nodex.GraphInput, *nodex.GraphState]

	now func() time.Time
}

func New(
	store statex.ConversationStore,
	models contractx.Registry,
	opts ...Option,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("conversation store is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}

	o := &Orchestrator{
		store:  store,
		models: models,
		static: specialist.StaticReply,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	graphRunner, err := o.compilePrepareGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

type SendResult struct {
	UserMessage   *statex.Message
	AgentMessage  *statex.Message
	AgentType     contractx.AgentType
	RoutingReason string
}

// SendMessage runs the whole exchange and returns once the reply is stored.
func (o *Orchestrator) SendMessage(ctx context.Context, conversationID, userID, text string) (*SendResult, error) {
	stream, err := o.StreamMessage(ctx, conversationID, userID, text)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	for {
		if _, err := stream.Events.Recv(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
	}

	agentMessage, err := stream.Finalize(ctx)
	if err != nil {
		return nil, err
	}

	return &SendResult{
		UserMessage:   stream.UserMessage,
		AgentMessage:  agentMessage,
		AgentType:     stream.AgentType,
		RoutingReason: stream.RoutingReason,
	}, nil
}

// MessageStream is a routed reply in flight. The caller drains Events and
// then calls Finalize exactly once to store the reply.
type MessageStream struct {
	AgentType     contractx.AgentType
	RoutingReason string
	UserMessage   *statex.Message
	Events        contractx.ReplyStream

	mu        sync.Mutex
	finalized bool
	persist   func(ctx context.Context, resp contractx.SpecialistResponse) (*statex.Message, error)
}

func (s *MessageStream) Finalize(ctx context.Context) (*statex.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil, contractx.ErrAlreadyFinalized
	}
	resp, err := s.Events.Result()
	if err != nil {
		return nil, err
	}
	s.finalized = true
	return s.persist(ctx, resp)
}

func (s *MessageStream) Close() {
	s.Events.Close()
}

// StreamMessage stores the inbound message, routes it and returns the live
// reply. Nothing is stored for the reply until Finalize runs.
func (o *Orchestrator) StreamMessage(ctx context.Context, conversationID, userID, text string) (*MessageStream, error) {
	prepared, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		ConversationID: conversationID,
		UserID:         userID,
		Text:           text,
	})
	if err != nil {
		return nil, err
	}

	events, err := nodex.DispatchResponder(ctx, prepared, o.models, o.static)
	if err != nil {
		log.Error().Err(err).
			Str("conversation_id", prepared.ConversationID).
			Str("agent_type", string(prepared.Decision.AgentType)).
			Msg("responder failed")
		return nil, err
	}

	return &MessageStream{
		AgentType:     prepared.Decision.AgentType,
		RoutingReason: prepared.Decision.Reason,
		UserMessage:   prepared.UserMessage,
		Events:        events,
		persist: func(ctx context.Context, resp contractx.SpecialistResponse) (*statex.Message, error) {
			return nodex.PersistReply(ctx, prepared, resp, o.store, o.now().UTC())
		},
	}, nil
}

func (o *Orchestrator) CreateConversation(ctx context.Context, userID string) (*statex.Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}
	return o.store.CreateConversation(ctx, userID)
}

func (o *Orchestrator) ListConversations(ctx context.Context, userID string) ([]*statex.Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}
	return o.store.ListConversations(ctx, userID)
}

// GetConversation returns the conversation with its messages in creation
// order.
func (o *Orchestrator) GetConversation(ctx context.Context, id string) (*statex.Conversation, error) {
	conv, err := o.store.GetConversationWithMessages(ctx, id)
	if err != nil {
		return nil, conversationErr(err, id)
	}
	return conv, nil
}

func (o *Orchestrator) DeleteConversation(ctx context.Context, id string) error {
	if err := o.store.DeleteConversation(ctx, id); err != nil {
		return conversationErr(err, id)
	}
	return nil
}

func conversationErr(err error, id string) error {
	if errors.Is(err, statex.ErrRecordNotFound) || errors.Is(err, statex.ErrInvalidConversation) {
		return fmt.Errorf("%w: conversation=%s", contractx.ErrConversationNotFound, id)
	}
	return err
}
