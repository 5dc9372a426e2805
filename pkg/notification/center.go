package notification

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/experimentkit/pkg/event"
	"github.com/dmitrymomot/experimentkit/pkg/logger"
)

// Decision describes a completed decision broadcast to listeners.
type Decision struct {
	Type          DecisionType
	UserID        string
	Attributes    map[string]string
	ExperimentKey string
	VariationKey  string
	FeatureKey    string
	Enabled       bool
	Source        string
	// Event is the dispatched impression, when one was sent.
	Event *event.Event
}

// DecisionType distinguishes what kind of decision was broadcast.
type DecisionType string

const (
	DecisionExperiment DecisionType = "experiment"
	DecisionFeature    DecisionType = "feature"
)

// Track describes a completed track call broadcast to listeners.
type Track struct {
	EventKey   string
	UserID     string
	Attributes map[string]string
	// Event is the dispatched conversion event.
	Event *event.Event
}

// DecisionListener receives decision notifications.
type DecisionListener func(Decision)

// TrackListener receives track notifications.
type TrackListener func(Track)

// Center fans decision and track notifications out to registered listeners.
// Listeners run synchronously within the originating call, in registration
// order; a panicking listener is recovered and logged so one listener can
// never break another or the call itself.
type Center struct {
	mu            sync.RWMutex
	nextID        int
	decisionByID  map[int]DecisionListener
	decisionOrder []int
	trackByID     map[int]TrackListener
	trackOrder    []int
	logger        *slog.Logger
}

// Option configures a Center.
type Option func(*Center)

// WithLogger sets the logger for listener diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Center) {
		if log != nil {
			c.logger = log
		}
	}
}

// NewCenter creates an empty notification center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		decisionByID: make(map[int]DecisionListener),
		trackByID:    make(map[int]TrackListener),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnDecision registers a decision listener and returns its id for removal.
func (c *Center) OnDecision(listener DecisionListener) int {
	if listener == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	c.decisionByID[c.nextID] = listener
	c.decisionOrder = append(c.decisionOrder, c.nextID)
	return c.nextID
}

// OnTrack registers a track listener and returns its id for removal.
func (c *Center) OnTrack(listener TrackListener) int {
	if listener == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	c.trackByID[c.nextID] = listener
	c.trackOrder = append(c.trackOrder, c.nextID)
	return c.nextID
}

// Remove unregisters the listener with the given id. Removing an unknown id
// is a no-op.
func (c *Center) Remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.decisionByID, id)
	delete(c.trackByID, id)
}

// SendDecision broadcasts a decision notification to all listeners.
func (c *Center) SendDecision(ctx context.Context, n Decision) {
	c.mu.RLock()
	listeners := make([]DecisionListener, 0, len(c.decisionByID))
	for _, id := range c.decisionOrder {
		if l, ok := c.decisionByID[id]; ok {
			listeners = append(listeners, l)
		}
	}
	c.mu.RUnlock()

	for _, listener := range listeners {
		c.invoke(ctx, func() { listener(n) })
	}
}

// SendTrack broadcasts a track notification to all listeners.
func (c *Center) SendTrack(ctx context.Context, n Track) {
	c.mu.RLock()
	listeners := make([]TrackListener, 0, len(c.trackByID))
	for _, id := range c.trackOrder {
		if l, ok := c.trackByID[id]; ok {
			listeners = append(listeners, l)
		}
	}
	c.mu.RUnlock()

	for _, listener := range listeners {
		c.invoke(ctx, func() { listener(n) })
	}
}

func (c *Center) invoke(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.LogAttrs(ctx, slog.LevelError, "Notification listener panicked",
				slog.Any("panic", r),
				logger.Component("notification"),
			)
		}
	}()
	fn()
}
