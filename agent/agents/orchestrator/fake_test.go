package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	statex "github.com/tanpawarit/ai-support-router/agent/state"
)

var fixedNow = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

type touchRecord struct {
	id    string
	title string
	now   time.Time
}

type fakeStore struct {
	mu       sync.Mutex
	convs    map[string]*statex.Conversation
	messages []*statex.Message
	touches  []touchRecord
	seq      int

	getErr    error
	appendErr func(msg *statex.Message) error
	calls     int
}

func newFakeStore(convs ...*statex.Conversation) *fakeStore {
	f := &fakeStore{convs: map[string]*statex.Conversation{}}
	for _, c := range convs {
		f.convs[c.ID] = c
	}
	return f
}

func (f *fakeStore) nextTime() time.Time {
	f.seq++
	return fixedNow.Add(time.Duration(f.seq) * time.Second)
}

func (f *fakeStore) CreateConversation(_ context.Context, userID string) (*statex.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	now := f.nextTime()
	c := &statex.Conversation{ID: fmt.Sprintf("conv-%d", f.seq), UserID: userID, CreatedAt: now, UpdatedAt: now}
	f.convs[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetConversation(_ context.Context, id string) (*statex.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.convs[id]
	if !ok {
		return nil, statex.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) GetConversationWithMessages(ctx context.Context, id string) (*statex.Conversation, error) {
	c, err := f.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c.Messages = f.messagesOf(id)
	return c, nil
}

func (f *fakeStore) ListConversations(_ context.Context, userID string) ([]*statex.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	out := make([]*statex.Conversation, 0)
	for _, c := range f.convs {
		if c.UserID == userID {
			cp := *c
			cp.Messages = []*statex.Message{}
			if msgs := f.messagesOf(c.ID); len(msgs) > 0 {
				cp.Messages = append(cp.Messages, msgs[len(msgs)-1])
			}
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeStore) DeleteConversation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if _, ok := f.convs[id]; !ok {
		return statex.ErrRecordNotFound
	}
	delete(f.convs, id)
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.ConversationID != id {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

func (f *fakeStore) TouchConversation(_ context.Context, id string, title string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	f.touches = append(f.touches, touchRecord{id: id, title: title, now: now})
	if c, ok := f.convs[id]; ok {
		c.UpdatedAt = now
		if !c.HasTitle() {
			c.Title = &title
		}
	}
	return nil
}

func (f *fakeStore) AppendMessage(_ context.Context, msg *statex.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.appendErr != nil {
		if err := f.appendErr(msg); err != nil {
			return err
		}
	}
	msg.CreatedAt = f.nextTime()
	msg.ID = fmt.Sprintf("msg-%d", f.seq)
	cp := *msg
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeStore) RecentMessages(_ context.Context, conversationID string, limit int) ([]*statex.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	msgs := f.messagesOf(conversationID)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (f *fakeStore) messagesOf(conversationID string) []*statex.Message {
	out := make([]*statex.Message, 0)
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeStore) roles(conversationID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0)
	for _, m := range f.messagesOf(conversationID) {
		out = append(out, string(m.Role))
	}
	return out
}

type fakeClassifier struct {
	decision contractx.RoutingDecision
	calls    int
	history  []contractx.HistoryEntry
}

func (f *fakeClassifier) Classify(_ context.Context, _ string, history []contractx.HistoryEntry) contractx.RoutingDecision {
	f.calls++
	f.history = history
	return f.decision
}

type fakeResponder struct {
	agentType contractx.AgentType
	events    []contractx.AgentEvent
	err       error
	calls     int
	lastReq   contractx.SpecialistRequest
}

func (f *fakeResponder) AgentType() contractx.AgentType {
	return f.agentType
}

func (f *fakeResponder) Run(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	stream, err := f.Stream(ctx, req)
	if err != nil {
		return contractx.SpecialistResponse{}, err
	}
	for {
		if _, err := stream.Recv(); err != nil {
			break
		}
	}
	return stream.Result()
}

func (f *fakeResponder) Stream(_ context.Context, req contractx.SpecialistRequest) (contractx.ReplyStream, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &fakeReplyStream{events: f.events}, nil
}

type fakeReplyStream struct {
	events  []contractx.AgentEvent
	idx     int
	recvErr error
	closed  bool
}

func (s *fakeReplyStream) Recv() (contractx.AgentEvent, error) {
	if s.recvErr != nil && s.idx == len(s.events) {
		return contractx.AgentEvent{}, s.recvErr
	}
	if s.idx >= len(s.events) {
		s.idx = len(s.events) + 1
		return contractx.AgentEvent{}, io.EOF
	}
	ev := s.events[s.idx]
	s.idx++
	return ev, nil
}

func (s *fakeReplyStream) Result() (contractx.SpecialistResponse, error) {
	if s.recvErr != nil {
		return contractx.SpecialistResponse{}, s.recvErr
	}
	if s.idx <= len(s.events) {
		return contractx.SpecialistResponse{}, contractx.ErrStreamNotDrained
	}
	var text strings.Builder
	tools := []string{}
	for _, ev := range s.events {
		switch ev.Type {
		case contractx.AgentEventText:
			text.WriteString(ev.Content)
		case contractx.AgentEventToolCall:
			tools = append(tools, ev.Tool)
		}
	}
	return contractx.SpecialistResponse{Message: strings.TrimSpace(text.String()), ToolsUsed: tools}, nil
}

func (s *fakeReplyStream) Close() {
	s.closed = true
}

type fakeRegistry struct {
	classifier contractx.Classifier
	responders map[contractx.AgentType]contractx.Responder
}

func (f *fakeRegistry) Classifier() contractx.Classifier {
	return f.classifier
}

func (f *fakeRegistry) Responder(agentType contractx.AgentType) (contractx.Responder, bool) {
	r, ok := f.responders[agentType]
	return r, ok
}

func textEvents(parts ...string) []contractx.AgentEvent {
	out := make([]contractx.AgentEvent, 0, len(parts))
	for _, p := range parts {
		out = append(out, contractx.AgentEvent{Type: contractx.AgentEventText, Content: p})
	}
	return out
}

func toolEvent(name string) contractx.AgentEvent {
	return contractx.AgentEvent{Type: contractx.AgentEventToolCall, Tool: name}
}

var errProviderDown = errors.New("provider down")
