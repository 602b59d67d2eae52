package api

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
	"github.com/tanpawarit/ai-support-router/pkg/ratelimit"
)

var fixedNow = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

// memStore is an in-memory conversation store that counts every call.
type memStore struct {
	mu       sync.Mutex
	convs    map[string]*statex.Conversation
	messages []*statex.Message
	seq      int
	calls    int
}

func newMemStore() *memStore {
	return &memStore{convs: map[string]*statex.Conversation{}}
}

func (s *memStore) tick() time.Time {
	s.seq++
	return fixedNow.Add(time.Duration(s.seq) * time.Second)
}

func (s *memStore) CreateConversation(_ context.Context, userID string) (*statex.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	now := s.tick()
	c := &statex.Conversation{
		ID:        fmt.Sprintf("00000000-0000-4000-8000-%012d", s.seq),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.convs[c.ID] = c
	cp := *c
	return &cp, nil
}

func (s *memStore) GetConversation(_ context.Context, id string) (*statex.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	c, ok := s.convs[id]
	if !ok {
		return nil, statex.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) GetConversationWithMessages(ctx context.Context, id string) (*statex.Conversation, error) {
	c, err := s.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Messages = s.messagesOf(id)
	return c, nil
}

func (s *memStore) ListConversations(_ context.Context, userID string) ([]*statex.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	out := make([]*statex.Conversation, 0)
	for _, c := range s.convs {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) DeleteConversation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if _, ok := s.convs[id]; !ok {
		return statex.ErrRecordNotFound
	}
	delete(s.convs, id)
	return nil
}

func (s *memStore) TouchConversation(_ context.Context, id string, title string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if c, ok := s.convs[id]; ok {
		c.UpdatedAt = now
		if !c.HasTitle() {
			c.Title = &title
		}
	}
	return nil
}

func (s *memStore) AppendMessage(_ context.Context, msg *statex.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	msg.CreatedAt = s.tick()
	msg.ID = fmt.Sprintf("msg-%d", s.seq)
	cp := *msg
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *memStore) RecentMessages(_ context.Context, conversationID string, limit int) ([]*statex.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	msgs := s.messagesOf(conversationID)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (s *memStore) messagesOf(conversationID string) []*statex.Message {
	out := make([]*statex.Message, 0)
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out
}

func (s *memStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *memStore) roles(conversationID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles := make([]string, 0)
	for _, m := range s.messagesOf(conversationID) {
		roles = append(roles, string(m.Role))
	}
	return strings.Join(roles, ",")
}

type fixedClassifier struct {
	decision contractx.RoutingDecision
}

func (f fixedClassifier) Classify(context.Context, string, []contractx.HistoryEntry) contractx.RoutingDecision {
	return f.decision
}

type scriptedResponder struct {
	agentType contractx.AgentType
	events    []contractx.AgentEvent
	streamErr error
	recvErr   error
}

func (r *scriptedResponder) AgentType() contractx.AgentType {
	return r.agentType
}

func (r *scriptedResponder) Run(context.Context, contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	return contractx.SpecialistResponse{}, fmt.Errorf("not used")
}

func (r *scriptedResponder) Stream(context.Context, contractx.SpecialistRequest) (contractx.ReplyStream, error) {
	if r.streamErr != nil {
		return nil, r.streamErr
	}
	return &scriptedStream{events: r.events, recvErr: r.recvErr}, nil
}

type scriptedStream struct {
	events  []contractx.AgentEvent
	recvErr error
	idx     int
	done    bool
}

func (s *scriptedStream) Recv() (contractx.AgentEvent, error) {
	if s.idx < len(s.events) {
		ev := s.events[s.idx]
		s.idx++
		return ev, nil
	}
	if s.recvErr != nil {
		return contractx.AgentEvent{}, s.recvErr
	}
	s.done = true
	return contractx.AgentEvent{}, io.EOF
}

func (s *scriptedStream) Result() (contractx.SpecialistResponse, error) {
	if s.recvErr != nil {
		return contractx.SpecialistResponse{}, s.recvErr
	}
	if !s.done {
		return contractx.SpecialistResponse{}, contractx.ErrStreamNotDrained
	}
	var text strings.Builder
	tools := []string{}
	for _, ev := range s.events {
		if ev.Type == contractx.AgentEventText {
			text.WriteString(ev.Content)
		} else {
			tools = append(tools, ev.Tool)
		}
	}
	return contractx.SpecialistResponse{Message: text.String(), ToolsUsed: tools}, nil
}

func (s *scriptedStream) Close() {}

type testRegistry struct {
	classifier contractx.Classifier
	responder  contractx.Responder
}

func (r testRegistry) Classifier() contractx.Classifier {
	return r.classifier
}

func (r testRegistry) Responder(agentType contractx.AgentType) (contractx.Responder, bool) {
	if r.responder == nil || r.responder.AgentType() != agentType {
		return nil, false
	}
	return r.responder, true
}

type failingLimiter struct{}

func (failingLimiter) Check(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, fmt.Errorf("redis unreachable")
}
