package contract

import "context"

// Classifier never fails; it degrades to the support category.
type Classifier interface {
	Classify(ctx context.Context, message string, history []HistoryEntry) RoutingDecision
}

type Registry interface {
	Classifier() Classifier
	Responder(agentType AgentType) (Responder, bool)
}

// Responder is implemented by the specialist package. Stream returns a
// reader of AgentEvent values; Run drains it.
type Responder interface {
	AgentType() AgentType
	Run(ctx context.Context, req SpecialistRequest) (SpecialistResponse, error)
	Stream(ctx context.Context, req SpecialistRequest) (ReplyStream, error)
}

// ReplyStream is a live responder output. Result is only valid once Recv
// has returned io.EOF.
type ReplyStream interface {
	Recv() (AgentEvent, error)
	Result() (SpecialistResponse, error)
	Close()
}
