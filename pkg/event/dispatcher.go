package event

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/experimentkit/pkg/logger"
)

// Dispatcher delivers events to the analytics backend. Implementations own
// serialization, transport and retries; the SDK only guarantees that a
// dispatch failure never fails the decision that produced the event.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// LogDispatcher writes events to the structured log instead of delivering
// them anywhere. It is the default sink in development setups.
type LogDispatcher struct {
	logger *slog.Logger
}

// LogDispatcherOption configures a LogDispatcher.
type LogDispatcherOption func(*LogDispatcher)

// WithLogDispatcherLogger sets the destination logger.
func WithLogDispatcherLogger(log *slog.Logger) LogDispatcherOption {
	return func(d *LogDispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

// NewLogDispatcher creates a dispatcher that logs events.
func NewLogDispatcher(opts ...LogDispatcherOption) *LogDispatcher {
	d := &LogDispatcher{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch logs the event and always succeeds.
func (d *LogDispatcher) Dispatch(ctx context.Context, ev Event) error {
	d.logger.LogAttrs(ctx, slog.LevelInfo, "Dispatching event",
		slog.String("event_id", ev.ID),
		slog.String("event_type", string(ev.Type)),
		logger.UserID(ev.UserID),
		logger.ExperimentKey(ev.ExperimentKey),
		logger.VariationKey(ev.VariationKey),
		logger.EventKey(ev.EventKey),
	)
	return nil
}

// MemoryDispatcher accumulates events in memory. It exists for tests and
// offline inspection.
type MemoryDispatcher struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryDispatcher creates an accumulating dispatcher.
func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{}
}

// Dispatch records the event.
func (d *MemoryDispatcher) Dispatch(ctx context.Context, ev Event) error {
	d.mu.Lock()
	d.events = append(d.events, ev)
	d.mu.Unlock()
	return nil
}

// Events returns a copy of everything dispatched so far.
func (d *MemoryDispatcher) Events() []Event {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.events)
}

// Len reports the number of dispatched events.
func (d *MemoryDispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.events)
}
