package specialist

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
)

const eventBufferSize = 32

// replyStream accumulates text and tool names while the caller drains it.
type replyStream struct {
	reader *schema.StreamReader[contractx.AgentEvent]

	mu    sync.Mutex
	text  strings.Builder
	tools []string
	done  bool
	err   error
	once  sync.Once
}

var _ contractx.ReplyStream = (*replyStream)(nil)

func newReplyStream(reader *schema.StreamReader[contractx.AgentEvent]) *replyStream {
	return &replyStream{reader: reader}
}

func (s *replyStream) Recv() (contractx.AgentEvent, error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return contractx.AgentEvent{}, io.EOF
	}
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return contractx.AgentEvent{}, err
	}
	s.mu.Unlock()

	ev, err := s.reader.Recv()

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case errors.Is(err, io.EOF):
		s.done = true
		return contractx.AgentEvent{}, io.EOF
	case err != nil:
		s.err = err
		return contractx.AgentEvent{}, err
	}

	switch ev.Type {
	case contractx.AgentEventText:
		s.text.WriteString(ev.Content)
	case contractx.AgentEventToolCall:
		s.tools = append(s.tools, ev.Tool)
	}
	return ev, nil
}

// Result is available once Recv has returned io.EOF.
func (s *replyStream) Result() (contractx.SpecialistResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return contractx.SpecialistResponse{}, s.err
	}
	if !s.done {
		return contractx.SpecialistResponse{}, contractx.ErrStreamNotDrained
	}

	tools := make([]string, len(s.tools))
	copy(tools, s.tools)
	return contractx.SpecialistResponse{
		Message:   strings.TrimSpace(s.text.String()),
		ToolsUsed: tools,
	}, nil
}

func (s *replyStream) Close() {
	s.once.Do(s.reader.Close)
}

// staticStream replays fixed events. It backs replies that need no provider.
func staticStream(events ...contractx.AgentEvent) contractx.ReplyStream {
	return newReplyStream(schema.StreamReaderFromArray(events))
}

// StaticReply streams text as a single event.
func StaticReply(text string) contractx.ReplyStream {
	return staticStream(contractx.AgentEvent{Type: contractx.AgentEventText, Content: text})
}
