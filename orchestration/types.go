// Package orchestration implements the supervisor routing state machine.
//
// The supervisor owns a conversation, consults a RoutingOracle for the next
// destination, dispatches work to specialist Workers, and merges their
// results back in a deterministic order. The oracle, the workers, and the
// final-reply synthesizer are interfaces; the state machine never depends on
// how any of them are implemented.
package orchestration

import (
	"context"
	"fmt"

	"github.com/richinex/deskflow/model"
)

// Dispatch names a single target worker and the context it should receive.
type Dispatch struct {
	Target  model.WorkerID `json:"target"`
	Context string         `json:"context"`
	// TakeOwnership transfers the active-responder role to the target,
	// so subsequent turns route to it directly without consulting the
	// oracle. Only honored when the supervisor runs in handoff mode.
	TakeOwnership bool `json:"take_ownership,omitempty"`
}

// RoutingDecision is the oracle's answer for one cycle: either terminate the
// loop, or dispatch to one or more workers. A decision with neither (or both)
// is malformed and fails the cycle with a RoutingError.
type RoutingDecision struct {
	Dispatches []Dispatch `json:"dispatches,omitempty"`
	Terminate  bool       `json:"terminate,omitempty"`
}

// TerminateDecision creates a decision that ends the routing loop.
func TerminateDecision() RoutingDecision {
	return RoutingDecision{Terminate: true}
}

// DispatchTo creates a single-target decision.
func DispatchTo(target model.WorkerID, context string) RoutingDecision {
	return RoutingDecision{Dispatches: []Dispatch{{Target: target, Context: context}}}
}

// Envelope is the payload handed to a worker for one run. The worker owns
// the state snapshot exclusively for the duration of the run; results come
// back purely by return value.
type Envelope struct {
	// ID uniquely identifies this dispatch.
	ID string
	// Target is the worker the envelope is addressed to.
	Target model.WorkerID
	// Instruction is the oracle-supplied task context for this dispatch.
	Instruction string
	// State is the conversation snapshot. Under the focused policy it holds
	// only the instruction plus carried-over auxiliary fields; under the
	// full policy it is a clone of the entire conversation.
	State *model.Conversation
}

// HandoffDirective lets a worker that holds ownership give it up or pass it
// to another worker. Returned as part of a WorkerResult.
type HandoffDirective struct {
	// Relinquish returns control to the supervisor's routing loop.
	Relinquish bool
	// TransferTo names the worker that should take over, if any.
	TransferTo model.WorkerID
	// Reason is recorded in the transcript's handoff annotation.
	Reason string
}

// WorkerResult is what a worker run produces. The supervisor merges the
// messages into the conversation; the worker never mutates shared state.
type WorkerResult struct {
	Messages []model.Message
	Handoff  *HandoffDirective
}

// TextResult creates a result with a single worker-attributed message.
func TextResult(worker model.WorkerID, content string) WorkerResult {
	return WorkerResult{Messages: []model.Message{model.WorkerMessage(worker, content)}}
}

// RoutingOracle decides where a conversation goes next. Implementations are
// typically language models; the supervisor treats them as a black box that
// must always produce exactly one well-formed decision.
type RoutingOracle interface {
	Decide(ctx context.Context, conv *model.Conversation) (RoutingDecision, error)
}

// Worker is a specialist that runs a bounded task to completion. Workers
// must be safe to run concurrently with other workers.
type Worker interface {
	ID() model.WorkerID
	Run(ctx context.Context, env Envelope) (WorkerResult, error)
}

// Synthesizer composes the final customer-facing message from the finished
// transcript. Terminal synthesis is a distinct pluggable step so tests can
// substitute a deterministic implementation.
type Synthesizer interface {
	Synthesize(ctx context.Context, conv *model.Conversation) (model.Message, error)
}

// ContextPolicy selects how much conversation state a dispatched worker
// receives.
type ContextPolicy int

const (
	// ContextFocused hands the worker a synthesized single-instruction
	// state carrying only the oracle-supplied context plus auxiliary
	// fields. This is the default: it bounds what a worker sees to what
	// the oracle judged relevant.
	ContextFocused ContextPolicy = iota
	// ContextFull hands the worker a clone of the entire conversation.
	ContextFull
)

// String returns the policy name.
func (p ContextPolicy) String() string {
	switch p {
	case ContextFocused:
		return "focused"
	case ContextFull:
		return "full"
	default:
		return "unknown"
	}
}

// ParseContextPolicy parses a policy name.
func ParseContextPolicy(s string) (ContextPolicy, error) {
	switch s {
	case "focused", "":
		return ContextFocused, nil
	case "full":
		return ContextFull, nil
	default:
		return 0, fmt.Errorf("unknown context policy: %q", s)
	}
}

// RoutingError reports that the oracle failed to produce a well-formed
// decision, or produced one naming an unknown target. The current cycle is
// aborted with no state mutation committed; the caller may retry Submit.
type RoutingError struct {
	Reason string
	Err    error
}

func (e *RoutingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("routing failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("routing failed: %s", e.Reason)
}

func (e *RoutingError) Unwrap() error {
	return e.Err
}

// WorkerFailure reports that a dispatched worker returned an error, panicked,
// or timed out. It never propagates out of Submit: the supervisor records it
// as a failure-marked transcript entry and continues the cycle.
type WorkerFailure struct {
	Worker model.WorkerID
	Err    error
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("worker %s failed: %v", e.Worker, e.Err)
}

func (e *WorkerFailure) Unwrap() error {
	return e.Err
}
