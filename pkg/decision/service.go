package decision

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/experimentkit/pkg/bucketer"
	"github.com/dmitrymomot/experimentkit/pkg/logger"
	"github.com/dmitrymomot/experimentkit/pkg/projectconfig"
)

// UserProfileService stores previously made bucketing decisions so that a
// returning user keeps their variation even if traffic is later reallocated.
// Lookup returns a map of experiment id to variation id. Both operations are
// best-effort from the decision service's point of view: a failing lookup is
// a cache miss and a failing save is skipped silently.
type UserProfileService interface {
	Lookup(ctx context.Context, userID string) (map[string]string, error)
	Save(ctx context.Context, userID, experimentID, variationID string) error
}

// Source tags where a feature decision came from. Only experiment-sourced
// decisions are tracked as impressions.
type Source string

const (
	SourceExperiment Source = "experiment"
	SourceRollout    Source = "rollout"
	SourceNone       Source = "none"
)

// FeatureDecision is the outcome of evaluating a feature flag for a user.
type FeatureDecision struct {
	Source     Source
	Enabled    bool
	Experiment *projectconfig.Experiment
	Variation  *projectconfig.Variation
}

// Service orchestrates experiment and feature decisions over a ProjectConfig.
// It is stateless per call and safe for concurrent use.
type Service struct {
	config   *projectconfig.ProjectConfig
	bucketer *bucketer.Bucketer
	profiles UserProfileService
	handler  ErrorHandler
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for decision diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithUserProfileService enables sticky bucketing through the given service.
func WithUserProfileService(profiles UserProfileService) Option {
	return func(s *Service) {
		s.profiles = profiles
	}
}

// WithErrorHandler sets the error policy for evaluation failures.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(s *Service) {
		if handler != nil {
			s.handler = handler
		}
	}
}

// WithBucketer replaces the default bucketer.
func WithBucketer(b *bucketer.Bucketer) Option {
	return func(s *Service) {
		if b != nil {
			s.bucketer = b
		}
	}
}

// New creates a decision Service over the given project configuration.
func New(config *projectconfig.ProjectConfig, opts ...Option) (*Service, error) {
	if config == nil {
		return nil, ErrNilConfig
	}

	s := &Service{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bucketer == nil {
		s.bucketer = bucketer.New(bucketer.WithLogger(s.logger))
	}
	if s.handler == nil {
		s.handler = NewNoOpHandler(WithHandlerLogger(s.logger))
	}
	return s, nil
}

// bucketingID returns the effective bucketing key: the reserved attribute
// when present and non-empty, the user id otherwise.
func (s *Service) bucketingID(userID string, attributes map[string]string) string {
	if id := attributes[bucketer.BucketingIDAttribute]; id != "" {
		return id
	}
	return userID
}

// userQualifies reports whether the user satisfies the experiment's audience
// list. An experiment without audiences is open to everyone; otherwise the
// listed audiences are OR'd together. A malformed condition tree fails just
// that audience; the configured error policy decides whether the failure is
// also surfaced to the caller.
func (s *Service) userQualifies(ctx context.Context, exp *projectconfig.Experiment, attributes map[string]string) (bool, error) {
	if len(exp.AudienceIDs) == 0 {
		return true, nil
	}

	for _, audienceID := range exp.AudienceIDs {
		audience, err := s.config.AudienceByID(audienceID)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "Experiment references unknown audience",
				logger.ExperimentKey(exp.Key),
				logger.AudienceID(audienceID),
			)
			continue
		}

		ok, err := audience.Conditions.Evaluate(attributes)
		if err != nil {
			if herr := s.handler.Handle(err); herr != nil {
				return false, herr
			}
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
