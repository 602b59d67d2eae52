package specialist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/ai-support-router/agent/contract"
	toolx "github.com/tanpawarit/ai-support-router/agent/tool"
)

// Profile is everything that distinguishes one responder from another.
type Profile struct {
	AgentType    contractx.AgentType
	SystemPrompt string
	Tools        []*schema.ToolInfo
	Executor     toolx.Executor
	// RoundCap bounds the provider turns per reply. The last turn is
	// issued without tools so the provider has to answer.
	RoundCap     int
	ContextLabel func(req contractx.SpecialistRequest) string
}

type Responder struct {
	profile    Profile
	template   einoprompt.ChatTemplate
	toolModel  einomodel.ToolCallingChatModel
	finalModel einomodel.ToolCallingChatModel
}

var _ contractx.Responder = (*Responder)(nil)

func NewResponder(chatModel einomodel.ToolCallingChatModel, profile Profile) (*Responder, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required for agent=%s", contractx.ErrValidation, profile.AgentType)
	}
	if strings.TrimSpace(profile.SystemPrompt) == "" {
		return nil, fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, profile.AgentType)
	}
	if profile.RoundCap <= 0 {
		return nil, fmt.Errorf("%w: round cap must be > 0 for agent=%s", contractx.ErrValidation, profile.AgentType)
	}
	if profile.Executor == nil {
		profile.Executor = toolx.DefaultExecutor(profile.AgentType)
	}

	toolModel := chatModel
	if len(profile.Tools) > 0 {
		bound, err := chatModel.WithTools(profile.Tools)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, profile.AgentType, err)
		}
		toolModel = bound
	}

	return &Responder{
		profile:    profile,
		template:   newResponderTemplate(),
		toolModel:  toolModel,
		finalModel: chatModel,
	}, nil
}

func (r *Responder) AgentType() contractx.AgentType {
	return r.profile.AgentType
}

// Run drains Stream and returns the accumulated reply.
func (r *Responder) Run(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	stream, err := r.Stream(ctx, req)
	if err != nil {
		return contractx.SpecialistResponse{}, err
	}
	defer stream.Close()

	for {
		if _, err := stream.Recv(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return contractx.SpecialistResponse{}, err
		}
	}
	return stream.Result()
}

// Stream issues the first provider turn before returning, so an unreachable
// provider is reported here rather than mid-stream.
func (r *Responder) Stream(ctx context.Context, req contractx.SpecialistRequest) (contractx.ReplyStream, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return nil, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	msgs, err := r.buildMessages(ctx, req)
	if err != nil {
		return nil, err
	}

	first, err := r.modelForRound(1).Stream(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("%w: agent=%s round=1: %v", contractx.ErrModelInvoke, r.profile.AgentType, err)
	}

	reader, writer := schema.Pipe[contractx.AgentEvent](eventBufferSize)
	go r.pump(ctx, msgs, first, writer)
	return newReplyStream(reader), nil
}

func (r *Responder) buildMessages(ctx context.Context, req contractx.SpecialistRequest) ([]*schema.Message, error) {
	label := ""
	if r.profile.ContextLabel != nil {
		label = r.profile.ContextLabel(req)
	}

	msgs, err := r.template.Format(ctx, map[string]any{
		varInstructions: r.profile.SystemPrompt,
		varContext:      label,
		varHistory:      historyMessages(withoutEcho(req.History, req.UserMessage)),
		varInput:        req.UserMessage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: format prompt for agent=%s: %v", contractx.ErrValidation, r.profile.AgentType, err)
	}
	return msgs, nil
}

func (r *Responder) modelForRound(round int) einomodel.ToolCallingChatModel {
	if round >= r.profile.RoundCap {
		return r.finalModel
	}
	return r.toolModel
}

// pump runs the tool-call loop and forwards its output to writer until the
// provider answers without tool calls or the round cap is reached.
func (r *Responder) pump(
	ctx context.Context,
	msgs []*schema.Message,
	reader *schema.StreamReader[*schema.Message],
	writer *schema.StreamWriter[contractx.AgentEvent],
) {
	defer writer.Close()

	agentType := r.profile.AgentType
	for round := 1; ; round++ {
		msg, closed, err := forwardRound(reader, writer)
		reader.Close()
		if closed {
			return
		}
		if err != nil {
			writer.Send(contractx.AgentEvent{}, fmt.Errorf("%w: agent=%s round=%d: %v", contractx.ErrModelInvoke, agentType, round, err))
			return
		}
		if len(msg.ToolCalls) == 0 || round >= r.profile.RoundCap {
			return
		}

		msgs = append(msgs, msg)
		for i, call := range msg.ToolCalls {
			name := strings.TrimSpace(call.Function.Name)
			if closed := writer.Send(contractx.AgentEvent{Type: contractx.AgentEventToolCall, Tool: name}, nil); closed {
				return
			}
			callID := call.ID
			if callID == "" {
				callID = fmt.Sprintf("call_%d_%d", round, i)
				msg.ToolCalls[i].ID = callID
			}
			msgs = append(msgs, schema.ToolMessage(r.executeTool(ctx, name, call.Function.Arguments), callID))
		}

		next, err := r.modelForRound(round+1).Stream(ctx, msgs)
		if err != nil {
			writer.Send(contractx.AgentEvent{}, fmt.Errorf("%w: agent=%s round=%d: %v", contractx.ErrModelInvoke, agentType, round+1, err))
			return
		}
		reader = next
	}
}

// forwardRound relays text chunks as they arrive and returns the round's
// concatenated message.
func forwardRound(
	reader *schema.StreamReader[*schema.Message],
	writer *schema.StreamWriter[contractx.AgentEvent],
) (*schema.Message, bool, error) {
	chunks := make([]*schema.Message, 0, 16)
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if chunk == nil {
			continue
		}
		chunks = append(chunks, chunk)

		if chunk.Content != "" {
			ev := contractx.AgentEvent{Type: contractx.AgentEventText, Content: chunk.Content}
			if closed := writer.Send(ev, nil); closed {
				return nil, true, nil
			}
		}
	}

	if len(chunks) == 0 {
		return schema.AssistantMessage("", nil), false, nil
	}
	msg, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, false, fmt.Errorf("concat stream chunks: %w", err)
	}
	return msg, false, nil
}

// executeTool runs one call and encodes the result for the provider. Tool
// failures become data, never errors.
func (r *Responder) executeTool(ctx context.Context, name string, rawArgs string) string {
	args := map[string]any{}
	if trimmed := strings.TrimSpace(rawArgs); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			log.Warn().Err(err).Str("agent_type", string(r.profile.AgentType)).Str("tool", name).Msg("invalid tool arguments")
			return encodeToolResult(toolx.NotFound{Found: false, Message: "Invalid tool arguments."})
		}
	}

	out, err := r.profile.Executor(ctx, name, args)
	if err != nil {
		log.Error().Err(err).Str("agent_type", string(r.profile.AgentType)).Str("tool", name).Msg("tool execution failed")
		return encodeToolResult(toolx.NotFound{Found: false, Message: "Tool execution failed."})
	}
	return encodeToolResult(out.Result)
}

func encodeToolResult(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{"found":false,"message":"Tool result could not be encoded."}`
	}
	return string(b)
}
