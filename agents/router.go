package agents

import (
	"context"
	"fmt"

	ijson "github.com/richinex/deskflow/internal/json"
	"github.com/richinex/deskflow/llm"
	"github.com/richinex/deskflow/model"
	"github.com/richinex/deskflow/orchestration"
)

// routeStep is one planned specialist call in the model's decision.
type routeStep struct {
	Worker  string `json:"worker"`
	Context string `json:"context"`
}

// routePlan is the structured decision the router asks the model for.
type routePlan struct {
	Steps []routeStep `json:"steps"`
	Done  bool        `json:"done"`
}

// Router implements orchestration.RoutingOracle on top of an LLM. The model
// is prompted for a JSON plan naming the next specialists and the context
// each needs; malformed output becomes a RoutingError rather than a crash.
type Router struct {
	client *llm.Client
}

// NewRouter creates a routing oracle backed by the given client.
func NewRouter(client *llm.Client) *Router {
	return &Router{client: client}
}

// Decide asks the model for the next routing step.
func (r *Router) Decide(ctx context.Context, conv *model.Conversation) (orchestration.RoutingDecision, error) {
	messages := append([]llm.ChatMessage{llm.SystemMessage(routerPrompt)}, toChatMessages(conv)...)

	raw, err := r.client.ChatWithFormat(ctx, messages, llm.NewJSONObjectFormat())
	if err != nil {
		return orchestration.RoutingDecision{}, &orchestration.RoutingError{Reason: "router model call failed", Err: err}
	}

	plan, err := ijson.Decode[routePlan](raw)
	if err != nil {
		return orchestration.RoutingDecision{}, &orchestration.RoutingError{Reason: "router produced malformed output", Err: err}
	}

	if plan.Done {
		return orchestration.TerminateDecision(), nil
	}
	if len(plan.Steps) == 0 {
		return orchestration.RoutingDecision{}, &orchestration.RoutingError{Reason: "router produced neither steps nor done"}
	}

	decision := orchestration.RoutingDecision{}
	for _, step := range plan.Steps {
		// Some models signal completion as a step named END.
		if step.Worker == "END" {
			return orchestration.TerminateDecision(), nil
		}
		if step.Worker == "" {
			return orchestration.RoutingDecision{}, &orchestration.RoutingError{Reason: "router step missing worker name"}
		}
		if step.Context == "" {
			return orchestration.RoutingDecision{}, &orchestration.RoutingError{Reason: fmt.Sprintf("router step for %q missing context", step.Worker)}
		}
		decision.Dispatches = append(decision.Dispatches, orchestration.Dispatch{
			Target:  model.WorkerID(step.Worker),
			Context: step.Context,
		})
	}
	return decision, nil
}

var _ orchestration.RoutingOracle = (*Router)(nil)
