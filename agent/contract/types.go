package contract

type AgentType string

const (
	AgentTypeRouter  AgentType = "router"
	AgentTypeOrder   AgentType = "order"
	AgentTypeBilling AgentType = "billing"
	AgentTypeSupport AgentType = "support"
)

// RoutableAgentTypes lists the categories the classifier may choose from.
var RoutableAgentTypes = []AgentType{AgentTypeOrder, AgentTypeBilling, AgentTypeSupport}

func (t AgentType) Routable() bool {
	switch t {
	case AgentTypeOrder, AgentTypeBilling, AgentTypeSupport:
		return true
	default:
		return false
	}
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RoutingDecision is produced once per inbound message. Confidence is not persisted.
type RoutingDecision struct {
	AgentType  AgentType  `json:"agentType"`
	Reason     string     `json:"reason"`
	Confidence Confidence `json:"confidence"`
}

type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type SpecialistRequest struct {
	UserMessage    string         `json:"user_message"`
	History        []HistoryEntry `json:"history,omitempty"`
	UserID         string         `json:"user_id"`
	ConversationID string         `json:"conversation_id"`
}

type SpecialistResponse struct {
	Message   string   `json:"message"`
	ToolsUsed []string `json:"tools_used"`
}

type AgentEventType string

const (
	AgentEventText     AgentEventType = "text"
	AgentEventToolCall AgentEventType = "tool_call"
)

// AgentEvent is one increment of a responder's live output.
type AgentEvent struct {
	Type    AgentEventType `json:"type"`
	Content string         `json:"content,omitempty"`
	Tool    string         `json:"tool,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
}
