package decision

import (
	"log/slog"
)

// ErrorHandler is the pluggable error policy consumed by the decision
// service and the client facade. Handle receives every reportable error and
// returns what should be surfaced to the caller: nil to swallow, or an error
// to propagate.
type ErrorHandler interface {
	Handle(err error) error
}

// NoOpHandler logs errors and swallows them. It is the default policy:
// callers get zero-value results instead of errors.
type NoOpHandler struct {
	logger *slog.Logger
}

// HandlerOption configures a NoOpHandler.
type HandlerOption func(*NoOpHandler)

// WithHandlerLogger sets the logger used by the NoOpHandler.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *NoOpHandler) {
		if log != nil {
			h.logger = log
		}
	}
}

// NewNoOpHandler creates the log-and-swallow error handler.
func NewNoOpHandler(opts ...HandlerOption) *NoOpHandler {
	h := &NoOpHandler{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle logs the error and reports nothing to the caller.
func (h *NoOpHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	h.logger.Error("Decision error", "error", err)
	return nil
}

// RaiseHandler propagates every error back to the caller unchanged.
type RaiseHandler struct{}

// NewRaiseHandler creates the propagate-everything error handler.
func NewRaiseHandler() *RaiseHandler {
	return &RaiseHandler{}
}

// Handle returns the error as-is.
func (h *RaiseHandler) Handle(err error) error {
	return err
}
