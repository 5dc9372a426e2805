package event

import "errors"

// Predefined errors for the event package.
var (
	// ErrNilSink indicates the processor was constructed without a sink.
	ErrNilSink = errors.New("event sink is nil")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("event processor already started")

	// ErrStopped indicates the processor no longer accepts events.
	ErrStopped = errors.New("event processor stopped")

	// ErrQueueFull indicates the event was dropped because the queue is full.
	ErrQueueFull = errors.New("event queue full")
)
