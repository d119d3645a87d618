package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/richinex/deskflow/model"
)

// Config carries the supervisor knobs.
type Config struct {
	// MaxCycles is the step budget given to a fresh conversation. Each
	// routing cycle consumes one step; at zero the supervisor terminates
	// with a best-effort reply.
	MaxCycles int
	// WorkerTimeout bounds a single worker run. Zero disables the bound.
	WorkerTimeout time.Duration
	// Policy selects how much state dispatched workers receive.
	Policy ContextPolicy
	// Handoff enables direct ownership transfer to workers.
	Handoff bool
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		MaxCycles:     6,
		WorkerTimeout: 60 * time.Second,
		Policy:        ContextFocused,
	}
}

// Supervisor drives one conversation through the routing state machine.
// It is the sole owner of the retained conversation: workers only ever see
// clones, and results are folded in by the supervisor itself.
//
// A Supervisor serves one conversation at a time; Submit is not safe for
// concurrent callers.
type Supervisor struct {
	oracle  RoutingOracle
	synth   Synthesizer
	workers map[model.WorkerID]Worker
	order   []model.WorkerID
	config  Config
	state   *model.Conversation
	ledger  *OwnershipLedger
	verbose bool
}

// New creates a supervisor over the given collaborators. The worker set is
// fixed for the supervisor's lifetime; decisions naming any other target
// fail with a RoutingError.
func New(oracle RoutingOracle, synth Synthesizer, workers []Worker, cfg Config) *Supervisor {
	byID := make(map[model.WorkerID]Worker, len(workers))
	order := make([]model.WorkerID, 0, len(workers))
	for _, w := range workers {
		if _, dup := byID[w.ID()]; dup {
			continue
		}
		byID[w.ID()] = w
		order = append(order, w.ID())
	}
	return &Supervisor{
		oracle:  oracle,
		synth:   synth,
		workers: byID,
		order:   order,
		config:  cfg,
		state:   model.NewConversation(cfg.MaxCycles),
		ledger:  NewOwnershipLedger(),
	}
}

// SetVerbose toggles progress output on stdout.
func (s *Supervisor) SetVerbose(v bool) {
	s.verbose = v
}

// Conversation returns the retained conversation. Callers persisting it
// should do so between Submit calls.
func (s *Supervisor) Conversation() *model.Conversation {
	return s.state
}

// Restore replaces the retained conversation, e.g. with one loaded from a
// store. The step budget is replenished for the resumed session.
func (s *Supervisor) Restore(conv *model.Conversation) {
	if conv == nil {
		return
	}
	conv.RemainingSteps = s.config.MaxCycles
	s.state = conv
}

// CurrentOwner returns the worker currently owning the conversation, or the
// empty ID when routing is in effect.
func (s *Supervisor) CurrentOwner() model.WorkerID {
	return s.ledger.Current()
}

// WorkerIDs returns the known worker set in registration order.
func (s *Supervisor) WorkerIDs() []model.WorkerID {
	out := make([]model.WorkerID, len(s.order))
	copy(out, s.order)
	return out
}

// Submit accepts one customer message and drives the state machine until a
// final reply is produced. Worker failures degrade to transcript entries and
// an apologetic reply at worst; the only error returns are a malformed or
// failed routing decision and caller cancellation. On either, the retained
// conversation stays at its last committed cycle boundary.
func (s *Supervisor) Submit(ctx context.Context, input string) (model.Message, error) {
	s.state.Append(model.UserMessage(input))

	if owner := s.ledger.Current(); owner != "" {
		return s.ownerTurn(ctx, owner, input)
	}
	return s.routingLoop(ctx)
}

// routingLoop runs Routing -> Dispatching -> Awaiting -> Merging cycles until
// the oracle terminates, ownership transfers, or the step budget runs out.
func (s *Supervisor) routingLoop(ctx context.Context) (model.Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return model.Message{}, err
		}
		if s.state.Exhausted() {
			if s.verbose {
				fmt.Println("[supervisor] step budget exhausted, synthesizing best-effort reply")
			}
			return s.finish(ctx)
		}

		decision, err := s.oracle.Decide(ctx, s.state.Clone())
		if err != nil {
			if _, ok := err.(*RoutingError); ok {
				return model.Message{}, err
			}
			return model.Message{}, &RoutingError{Reason: "oracle error", Err: err}
		}
		if err := s.validate(decision); err != nil {
			return model.Message{}, err
		}

		if decision.Terminate {
			return s.finish(ctx)
		}

		if s.verbose {
			for _, d := range decision.Dispatches {
				fmt.Printf("[supervisor] dispatching to %s: %s\n", d.Target, d.Context)
			}
		}

		outcomes, err := s.fanOut(ctx, decision.Dispatches)
		if err != nil {
			// Cancelled mid-cycle: nothing from this cycle is committed.
			return model.Message{}, err
		}
		mergeOutcomes(s.state, outcomes)
		s.state.ConsumeStep()

		if s.config.Handoff {
			if newOwner, reply := s.applyHandoffs(outcomes); newOwner != "" {
				return reply, nil
			}
		}
	}
}

// validate rejects malformed decisions and unknown targets before any
// dispatch runs.
func (s *Supervisor) validate(d RoutingDecision) error {
	if d.Terminate && len(d.Dispatches) > 0 {
		return &RoutingError{Reason: "decision both terminates and dispatches"}
	}
	if !d.Terminate && len(d.Dispatches) == 0 {
		return &RoutingError{Reason: "decision neither terminates nor dispatches"}
	}
	for _, disp := range d.Dispatches {
		if _, ok := s.workers[disp.Target]; !ok {
			return &RoutingError{Reason: fmt.Sprintf("unknown target %q", disp.Target)}
		}
	}
	return nil
}

// applyHandoffs processes ownership changes requested by a merged cycle:
// oracle-directed TakeOwnership dispatches and worker-returned directives,
// in dispatch order. Returns the new owner and its reply when ownership
// left the supervisor.
func (s *Supervisor) applyHandoffs(outcomes []outcome) (model.WorkerID, model.Message) {
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		target := o.dispatch.Target
		if o.dispatch.TakeOwnership {
			s.assignOwner(SupervisorParty, target, "routed with ownership")
			return target, lastReply(o.result, target)
		}
		if h := o.result.Handoff; h != nil && h.TransferTo != "" {
			if _, known := s.workers[h.TransferTo]; !known {
				s.state.Append(model.FailureMessage(target, fmt.Sprintf("handoff to unknown worker %q", h.TransferTo)))
				continue
			}
			s.assignOwner(target, h.TransferTo, h.Reason)
			return h.TransferTo, lastReply(o.result, target)
		}
	}
	return "", model.Message{}
}

// ownerTurn routes a turn straight to the owning worker, bypassing the
// oracle. The owner may answer and keep control, relinquish, or transfer;
// transfers chain within the turn, bounded by the step budget.
func (s *Supervisor) ownerTurn(ctx context.Context, owner model.WorkerID, input string) (model.Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return model.Message{}, err
		}
		if s.state.Exhausted() {
			s.ledger.Release("step budget exhausted")
			return s.finish(ctx)
		}
		if s.verbose {
			fmt.Printf("[supervisor] owner %s handling turn\n", owner)
		}

		result, err := s.runDispatch(ctx, Dispatch{Target: owner, Context: input})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return model.Message{}, ctxErr
			}
			// Owner failed: record it, hand control back, let routing
			// recover the turn.
			s.state.Append(model.FailureMessage(owner, err.Error()))
			s.state.ConsumeStep()
			s.ledger.Release("owner failed")
			return s.routingLoop(ctx)
		}

		mergeOutcomes(s.state, []outcome{{dispatch: Dispatch{Target: owner}, result: result}})
		s.state.ConsumeStep()

		h := result.Handoff
		if h == nil {
			return lastReply(result, owner), nil
		}
		if h.TransferTo != "" {
			if _, known := s.workers[h.TransferTo]; !known {
				s.state.Append(model.FailureMessage(owner, fmt.Sprintf("handoff to unknown worker %q", h.TransferTo)))
				s.ledger.Release("handoff target unknown")
				if len(result.Messages) > 0 {
					return lastReply(result, owner), nil
				}
				return s.routingLoop(ctx)
			}
			s.assignOwner(owner, h.TransferTo, h.Reason)
			owner = h.TransferTo
			continue
		}
		if h.Relinquish {
			s.releaseOwner(owner, h.Reason)
			if len(result.Messages) > 0 {
				return lastReply(result, owner), nil
			}
			return s.routingLoop(ctx)
		}
		return lastReply(result, owner), nil
	}
}

// assignOwner updates the ledger and records the transfer in the transcript.
func (s *Supervisor) assignOwner(from, to model.WorkerID, reason string) {
	s.ledger.Assign(to, reason)
	note := model.SystemMessage(fmt.Sprintf("conversation handed to %s", to))
	note.Handoff = handoffAnnotation(from, to, reason)
	s.state.Append(note)
	if s.verbose {
		fmt.Printf("[supervisor] ownership: %s\n", note.Handoff)
	}
}

// releaseOwner returns control to the supervisor and records it.
func (s *Supervisor) releaseOwner(from model.WorkerID, reason string) {
	s.ledger.Release(reason)
	note := model.SystemMessage("conversation returned to supervisor")
	note.Handoff = handoffAnnotation(from, SupervisorParty, reason)
	s.state.Append(note)
}

// finish enters the terminal state: synthesize the customer-facing reply
// from the frozen transcript and append it. Synthesis failure degrades to a
// deterministic apologetic reply assembled from the transcript, so Submit
// still returns a final message.
func (s *Supervisor) finish(ctx context.Context) (model.Message, error) {
	reply, err := s.synth.Synthesize(ctx, s.state.Clone())
	if err != nil {
		if s.verbose {
			fmt.Printf("[supervisor] synthesis failed, falling back: %v\n", err)
		}
		reply = fallbackReply(s.state)
	}
	if reply.Role == "" {
		reply.Role = model.RoleAssistant
	}
	s.state.Append(reply)
	return reply, nil
}

// fallbackReply composes a best-effort answer from whatever the workers
// managed to produce this conversation.
func fallbackReply(conv *model.Conversation) model.Message {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		m := conv.Messages[i]
		if m.Role == model.RoleWorker && !m.Failed && m.Content != "" {
			return model.AssistantMessage(m.Content)
		}
	}
	return model.AssistantMessage("I'm sorry, I wasn't able to complete your request. Please try again or rephrase your question.")
}

// lastReply picks the message returned to the caller after an ownership
// turn: the last message the worker produced, attributed to it.
func lastReply(result WorkerResult, worker model.WorkerID) model.Message {
	if len(result.Messages) == 0 {
		return model.WorkerMessage(worker, "")
	}
	m := result.Messages[len(result.Messages)-1]
	if m.Worker == "" {
		m.Worker = worker
	}
	if m.Role == "" {
		m.Role = model.RoleWorker
	}
	return m
}
