package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/deskflow/model"
)

// outcome is one slot of a fan-out: either a worker result or the failure
// that replaced it. Slots are indexed by dispatch order so the merge never
// depends on completion order.
type outcome struct {
	dispatch Dispatch
	result   WorkerResult
	err      error
}

// buildEnvelope assembles the state snapshot a worker receives for one
// dispatch, according to the configured context policy.
func (s *Supervisor) buildEnvelope(d Dispatch) Envelope {
	env := Envelope{
		ID:          uuid.NewString(),
		Target:      d.Target,
		Instruction: d.Context,
	}
	switch s.config.Policy {
	case ContextFull:
		env.State = s.state.Clone()
	default:
		focused := model.NewConversation(s.state.RemainingSteps)
		focused.CustomerID = s.state.CustomerID
		focused.LoadedMemory = s.state.LoadedMemory
		focused.Append(model.UserMessage(d.Context))
		env.State = focused
	}
	return env
}

// runDispatch executes a single worker under the per-dispatch timeout,
// converting errors, timeouts, and panics into a WorkerFailure.
func (s *Supervisor) runDispatch(ctx context.Context, d Dispatch) (result WorkerResult, err error) {
	worker, ok := s.workers[d.Target]
	if !ok {
		return WorkerResult{}, &WorkerFailure{Worker: d.Target, Err: fmt.Errorf("no such worker")}
	}

	runCtx := ctx
	if s.config.WorkerTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.WorkerTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			result = WorkerResult{}
			err = &WorkerFailure{Worker: d.Target, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	result, runErr := worker.Run(runCtx, s.buildEnvelope(d))
	if runErr != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			runErr = fmt.Errorf("timed out after %s: %w", s.config.WorkerTimeout, runErr)
		}
		return WorkerResult{}, &WorkerFailure{Worker: d.Target, Err: runErr}
	}
	return result, nil
}

// fanOut runs every dispatch of a decision concurrently and waits for all of
// them. Results land in a slot array indexed by dispatch order. The only
// error return is caller cancellation, in which case the whole cycle is
// discarded by the caller.
func (s *Supervisor) fanOut(ctx context.Context, dispatches []Dispatch) ([]outcome, error) {
	outcomes := make([]outcome, len(dispatches))

	var wg sync.WaitGroup
	for i, d := range dispatches {
		outcomes[i].dispatch = d
		wg.Add(1)
		go func(i int, d Dispatch) {
			defer wg.Done()
			started := time.Now()
			res, err := s.runDispatch(ctx, d)
			outcomes[i].result = res
			outcomes[i].err = err
			if s.verbose {
				status := "ok"
				if err != nil {
					status = err.Error()
				}
				fmt.Printf("[supervisor] worker %s finished in %s (%s)\n", d.Target, time.Since(started).Round(time.Millisecond), status)
			}
		}(i, d)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// mergeOutcomes appends each slot's messages to the conversation in dispatch
// order. A failed slot contributes a single failure-marked entry instead.
func mergeOutcomes(conv *model.Conversation, outcomes []outcome) {
	for _, o := range outcomes {
		if o.err != nil {
			conv.Append(model.FailureMessage(o.dispatch.Target, o.err.Error()))
			continue
		}
		for _, m := range o.result.Messages {
			if m.Worker == "" {
				m.Worker = o.dispatch.Target
			}
			if m.Role == "" {
				m.Role = model.RoleWorker
			}
			conv.Append(m)
		}
	}
}
