package command

import (
	"context"
	"fmt"
	"strings"
)

// Handler reacts to one intent
type Handler func(ctx context.Context) error

// Dispatcher routes intents through a table that covers every actionable
// intent. IntentUnknown is never dispatched.
type Dispatcher struct {
	handlers [intentCount]Handler
}

// NewDispatcher fails if any actionable intent lacks a handler
func NewDispatcher(table map[Intent]Handler) (*Dispatcher, error) {
	d := &Dispatcher{}
	var missing []string
	for _, i := range AllIntents() {
		h, ok := table[i]
		if !ok || h == nil {
			missing = append(missing, i.String())
			continue
		}
		d.handlers[i] = h
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dispatch table missing handlers for: %s", strings.Join(missing, ", "))
	}
	return d, nil
}

// Dispatch runs the handler for intent. It reports false, with no side
// effect, for IntentUnknown or out-of-range values.
func (d *Dispatcher) Dispatch(ctx context.Context, intent Intent) (bool, error) {
	if !intent.IsKnown() {
		return false, nil
	}
	return true, d.handlers[intent](ctx)
}
