package decision

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/experimentkit/pkg/logger"
	"github.com/dmitrymomot/experimentkit/pkg/projectconfig"
)

// DecideFeature evaluates a feature flag for a user: associated experiments
// first, in declaration order, then the rollout's rules in order. The
// returned decision always carries a Source; SourceNone means the feature is
// disabled by default and nothing should be dispatched.
func (s *Service) DecideFeature(ctx context.Context, flag *projectconfig.FeatureFlag, userID string, attributes map[string]string) (FeatureDecision, error) {
	for _, experimentID := range flag.ExperimentIDs {
		exp, err := s.config.ExperimentByID(experimentID)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "Feature references unknown experiment",
				logger.FeatureKey(flag.Key),
				logger.ExperimentID(experimentID),
			)
			continue
		}

		variation, err := s.DecideExperiment(ctx, exp, userID, attributes)
		if err != nil {
			return FeatureDecision{Source: SourceNone}, err
		}
		if variation != nil {
			s.logger.LogAttrs(ctx, slog.LevelInfo, "Feature decided by experiment",
				logger.UserID(userID),
				logger.FeatureKey(flag.Key),
				logger.ExperimentKey(exp.Key),
				logger.VariationKey(variation.Key),
				logger.Source(string(SourceExperiment)),
			)
			return FeatureDecision{
				Source:     SourceExperiment,
				Enabled:    variation.FeatureEnabled,
				Experiment: exp,
				Variation:  variation,
			}, nil
		}
	}

	if flag.RolloutID != "" {
		decision, err := s.decideRollout(ctx, flag, userID, attributes)
		if err != nil || decision.Source == SourceRollout {
			return decision, err
		}
	}

	s.logger.LogAttrs(ctx, slog.LevelDebug, "Feature disabled by default",
		logger.UserID(userID),
		logger.FeatureKey(flag.Key),
	)
	return FeatureDecision{Source: SourceNone}, nil
}

// decideRollout walks the rollout's rules in declared order. Each rule is an
// independent audience gate plus bucketing step; forced variations, user
// profiles and group exclusion never apply here. The first rule whose
// audience qualifies and whose bucketing yields a variation wins.
func (s *Service) decideRollout(ctx context.Context, flag *projectconfig.FeatureFlag, userID string, attributes map[string]string) (FeatureDecision, error) {
	rollout, err := s.config.RolloutByID(flag.RolloutID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Feature references unknown rollout",
			logger.FeatureKey(flag.Key),
			slog.String("rollout_id", flag.RolloutID),
		)
		return FeatureDecision{Source: SourceNone}, nil
	}

	bucketingID := s.bucketingID(userID, attributes)

	for i := range rollout.Rules {
		rule := &rollout.Rules[i]

		qualifies, err := s.userQualifies(ctx, rule, attributes)
		if err != nil {
			return FeatureDecision{Source: SourceNone}, err
		}
		if !qualifies {
			continue
		}

		entityID, ok := s.bucketer.BucketToEntity(ctx, bucketingID, rule.ID, rule.TrafficAllocation)
		if !ok {
			continue
		}

		variation, ok := rule.VariationByID(entityID)
		if !ok {
			s.logger.LogAttrs(ctx, slog.LevelError, "Rollout rule references unknown variation",
				logger.FeatureKey(flag.Key),
				slog.String("rule_id", rule.ID),
				slog.String("variation_id", entityID),
			)
			continue
		}

		s.logger.LogAttrs(ctx, slog.LevelInfo, "Feature decided by rollout rule",
			logger.UserID(userID),
			logger.FeatureKey(flag.Key),
			logger.VariationKey(variation.Key),
			logger.Source(string(SourceRollout)),
		)
		return FeatureDecision{
			Source:     SourceRollout,
			Enabled:    variation.FeatureEnabled,
			Experiment: rule,
			Variation:  variation,
		}, nil
	}

	return FeatureDecision{Source: SourceNone}, nil
}

// FeatureVariable resolves the raw string value and declared type of a
// feature variable for a user: the winning variation's override when one
// exists, the declared default otherwise.
func (s *Service) FeatureVariable(ctx context.Context, flag *projectconfig.FeatureFlag, variableKey, userID string, attributes map[string]string) (string, projectconfig.VariableType, error) {
	variable, ok := flag.VariableByKey(variableKey)
	if !ok {
		return "", "", ErrVariableNotFound
	}

	d, err := s.DecideFeature(ctx, flag, userID, attributes)
	if err != nil {
		return "", "", err
	}

	value := variable.DefaultValue
	if d.Variation != nil {
		if usage, ok := d.Variation.VariableUsageByID(variable.ID); ok {
			value = usage.Value
		}
	}

	s.logger.LogAttrs(ctx, slog.LevelDebug, "Resolved feature variable",
		logger.UserID(userID),
		logger.FeatureKey(flag.Key),
		logger.VariableKey(variableKey),
		slog.String("value", value),
	)
	return value, variable.Type, nil
}
