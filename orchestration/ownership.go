package orchestration

import (
	"fmt"
	"sync"
	"time"

	"github.com/richinex/deskflow/model"
)

// SupervisorParty is the ledger entry used when control rests with the
// supervisor rather than a worker.
const SupervisorParty model.WorkerID = "supervisor"

// Transfer records one ownership change.
type Transfer struct {
	From   model.WorkerID
	To     model.WorkerID
	Reason string
	At     time.Time
}

// OwnershipLedger tracks which worker, if any, currently owns the
// conversation. When a worker owns it, incoming turns go straight to that
// worker without consulting the oracle. Safe for concurrent use.
type OwnershipLedger struct {
	mu      sync.RWMutex
	owner   model.WorkerID
	history []Transfer
}

// NewOwnershipLedger creates a ledger with control at the supervisor.
func NewOwnershipLedger() *OwnershipLedger {
	return &OwnershipLedger{}
}

// Current returns the owning worker, or the empty ID when the supervisor
// holds control.
func (l *OwnershipLedger) Current() model.WorkerID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.owner
}

// Assign transfers ownership to the given worker.
func (l *OwnershipLedger) Assign(to model.WorkerID, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	from := l.owner
	if from == "" {
		from = SupervisorParty
	}
	l.owner = to
	l.history = append(l.history, Transfer{From: from, To: to, Reason: reason, At: time.Now()})
}

// Release returns control to the supervisor. No-op when no worker owns the
// conversation.
func (l *OwnershipLedger) Release(reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner == "" {
		return
	}
	l.history = append(l.history, Transfer{From: l.owner, To: SupervisorParty, Reason: reason, At: time.Now()})
	l.owner = ""
}

// History returns a copy of all recorded transfers.
func (l *OwnershipLedger) History() []Transfer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Transfer, len(l.history))
	copy(out, l.history)
	return out
}

// handoffAnnotation formats the transcript note recorded alongside a
// transfer or release.
func handoffAnnotation(from, to model.WorkerID, reason string) string {
	if reason == "" {
		return fmt.Sprintf("%s -> %s", from, to)
	}
	return fmt.Sprintf("%s -> %s: %s", from, to, reason)
}
