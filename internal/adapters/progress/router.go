package progress

import (
	"context"
	"sync"

	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// Router forwards progress events to a replaceable target sink. The
// app is wired once with a Router so commands can install the sink
// that fits their mode (spinner, TUI, none) after initialization.
type Router struct {
	mu     sync.RWMutex
	target usecase.ProgressSink
}

// NewRouter creates a router that discards events until a target is
// installed.
func NewRouter() *Router {
	return &Router{target: NewNopSink()}
}

// SetTarget replaces the sink events are forwarded to.
func (r *Router) SetTarget(sink usecase.ProgressSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sink == nil {
		sink = NewNopSink()
	}
	r.target = sink
}

// OnProgress forwards the event to the current target.
func (r *Router) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.sink().OnProgress(ctx, event)
}

// Info forwards an info message to the current target.
func (r *Router) Info(message string) {
	r.sink().Info(message)
}

// Error forwards an error message to the current target.
func (r *Router) Error(message string) {
	r.sink().Error(message)
}

func (r *Router) sink() usecase.ProgressSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.target
}

var _ usecase.ProgressSink = (*Router)(nil)
