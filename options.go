package experimentkit

import (
	"log/slog"

	"github.com/dmitrymomot/experimentkit/pkg/decision"
	"github.com/dmitrymomot/experimentkit/pkg/event"
	"github.com/dmitrymomot/experimentkit/pkg/notification"
)

type options struct {
	logger        *slog.Logger
	handler       decision.ErrorHandler
	profiles      decision.UserProfileService
	dispatcher    event.Dispatcher
	notifications *notification.Center
}

// fillDefaults completes unset collaborators after all options applied, so
// defaults pick up the configured logger regardless of option order.
func (o *options) fillDefaults() {
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.handler == nil {
		o.handler = decision.NewNoOpHandler(decision.WithHandlerLogger(o.logger))
	}
	if o.dispatcher == nil {
		o.dispatcher = event.NewLogDispatcher(event.WithLogDispatcherLogger(o.logger))
	}
	if o.notifications == nil {
		o.notifications = notification.NewCenter(notification.WithLogger(o.logger))
	}
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the logger shared by the client and its default
// collaborators. Collaborators passed in explicitly keep their own loggers.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithErrorHandler sets the error policy: decision.NewNoOpHandler to log and
// swallow (default), decision.NewRaiseHandler to propagate errors to callers.
func WithErrorHandler(handler decision.ErrorHandler) Option {
	return func(o *options) {
		if handler != nil {
			o.handler = handler
		}
	}
}

// WithUserProfileService enables sticky bucketing via the given store.
func WithUserProfileService(profiles decision.UserProfileService) Option {
	return func(o *options) {
		o.profiles = profiles
	}
}

// WithDispatcher sets the event delivery sink.
func WithDispatcher(dispatcher event.Dispatcher) Option {
	return func(o *options) {
		if dispatcher != nil {
			o.dispatcher = dispatcher
		}
	}
}

// WithNotificationCenter replaces the default listener registry, letting
// hosts share one center across clients.
func WithNotificationCenter(center *notification.Center) Option {
	return func(o *options) {
		if center != nil {
			o.notifications = center
		}
	}
}
