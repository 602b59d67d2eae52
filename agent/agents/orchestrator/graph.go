package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/ai-support-router/agent/nodes/orchestrator"
)

// compilePrepareGraph wires the steps shared by the blocking and the
// incremental entry points.
func (o *Orchestrator) compilePrepareGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, *nodex.GraphState], error) {
	graph := compose.NewGraph[nodex.GraphInput, *nodex.GraphState]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_conversation",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadConversation(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_conversation: %w", err)
	}

	if err := graph.AddLambdaNode("save_user_message",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SaveUserMessage(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_user_message: %w", err)
	}

	if err := graph.AddLambdaNode("build_history",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.BuildHistory(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_history: %w", err)
	}

	if err := graph.AddLambdaNode("classify",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Classify(ctx, in, o.models.Classifier())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_conversation"},
		{"load_conversation", "save_user_message"},
		{"save_user_message", "build_history"},
		{"build_history", "classify"},
		{"classify", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.prepare_message"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
