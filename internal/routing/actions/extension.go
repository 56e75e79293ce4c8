package actions

import (
	"context"
	"sync"

	"realty_leads_backend/internal/routing/engine"
)

// ExtensionFunc handles one custom action name. It reports whether it
// claimed the action; an unclaimed action falls through to the next
// extension.
type ExtensionFunc func(ctx context.Context, action string, inv *engine.Invocation) (value string, handled bool, err error)

// Fallback dispatches unknown action names to registered extensions, in
// registration order. With no claimant it returns engine.ErrNotHandled,
// which the pipeline records as a non-failure.
type Fallback struct {
	mu         sync.RWMutex
	extensions []ExtensionFunc
}

// NewFallback creates an empty extension fallback.
func NewFallback() *Fallback {
	return &Fallback{}
}

// RegisterExtension appends an extension handler.
func (f *Fallback) RegisterExtension(fn ExtensionFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extensions = append(f.extensions, fn)
}

func (f *Fallback) Execute(ctx context.Context, inv *engine.Invocation) (string, error) {
	f.mu.RLock()
	extensions := make([]ExtensionFunc, len(f.extensions))
	copy(extensions, f.extensions)
	f.mu.RUnlock()

	for _, fn := range extensions {
		value, handled, err := fn(ctx, inv.Action, inv)
		if !handled {
			continue
		}
		return value, err
	}
	return "", engine.ErrNotHandled
}
