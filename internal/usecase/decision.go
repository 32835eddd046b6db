package usecase

import (
	"context"
	"sync"

	"github.com/p2e-inferno/chainstep/internal/domain"
)

// DecisionBridge converts UI retry/cancel actions into resumption of
// an awaited control-flow point. It holds a single pending slot: the
// flow runner arms it when a step fails, UI handlers resolve it, and
// a resolution with no pending decision is a deliberate no-op so that
// double clicks cannot resume the flow twice.
type DecisionBridge struct {
	mu   sync.Mutex
	slot chan domain.Decision
}

// NewDecisionBridge creates a bridge with no pending decision.
func NewDecisionBridge() *DecisionBridge {
	return &DecisionBridge{}
}

// Pend arms the bridge for one decision. It fails with
// ErrDecisionPending if a previous decision is still unresolved.
func (b *DecisionBridge) Pend() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.slot != nil {
		return domain.ErrDecisionPending
	}
	b.slot = make(chan domain.Decision, 1)
	return nil
}

// Await blocks until the pending decision is resolved or the context
// ends. A context error clears the pending slot.
func (b *DecisionBridge) Await(ctx context.Context) (domain.Decision, error) {
	b.mu.Lock()
	ch := b.slot
	b.mu.Unlock()
	if ch == nil {
		return "", domain.ErrNotSuspended
	}

	select {
	case d := <-ch:
		b.mu.Lock()
		if b.slot == ch {
			b.slot = nil
		}
		b.mu.Unlock()
		return d, nil
	case <-ctx.Done():
		b.mu.Lock()
		if b.slot == ch {
			b.slot = nil
		}
		b.mu.Unlock()
		return "", ctx.Err()
	}
}

// Resolve delivers a decision to the pending request. It returns false
// when no decision is pending, which makes duplicate resolutions
// harmless. The slot stays armed until Await consumes the decision, so
// a resolution landing before Await is not lost.
func (b *DecisionBridge) Resolve(d domain.Decision) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.slot == nil {
		return false
	}
	select {
	case b.slot <- d:
		return true
	default:
		// Slot already holds an unconsumed decision.
		return false
	}
}

// Pending reports whether a decision request is waiting for an answer.
func (b *DecisionBridge) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slot != nil
}
