package decision

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/experimentkit/pkg/logger"
	"github.com/dmitrymomot/experimentkit/pkg/projectconfig"
)

// DecideExperiment runs the decision cascade for one experiment and user.
// A nil variation with a nil error means "no decision": the caller must not
// activate the experiment or dispatch an impression.
//
// The cascade is ordered and the first applicable step wins:
// status gate, forced variation, user profile, group mutual exclusion,
// audience evaluation, bucketing.
func (s *Service) DecideExperiment(ctx context.Context, exp *projectconfig.Experiment, userID string, attributes map[string]string) (*projectconfig.Variation, error) {
	if !exp.IsRunning() {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "Experiment is not running",
			logger.ExperimentKey(exp.Key),
			slog.String("status", string(exp.Status)),
		)
		return nil, nil
	}

	if variation := s.forcedVariation(ctx, exp, userID); variation != nil {
		return variation, nil
	}

	if variation := s.profileVariation(ctx, exp, userID); variation != nil {
		return variation, nil
	}

	if excluded := s.excludedByGroup(ctx, exp, userID, attributes); excluded {
		return nil, nil
	}

	qualifies, err := s.userQualifies(ctx, exp, attributes)
	if err != nil {
		return nil, err
	}
	if !qualifies {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "User does not meet audience conditions",
			logger.UserID(userID),
			logger.ExperimentKey(exp.Key),
		)
		return nil, nil
	}

	bucketingID := s.bucketingID(userID, attributes)
	entityID, ok := s.bucketer.BucketToEntity(ctx, bucketingID, exp.ID, exp.TrafficAllocation)
	if !ok {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "User is not in experiment traffic",
			logger.UserID(userID),
			logger.ExperimentKey(exp.Key),
		)
		return nil, nil
	}

	variation, ok := exp.VariationByID(entityID)
	if !ok {
		s.logger.LogAttrs(ctx, slog.LevelError, "Traffic allocation references unknown variation",
			logger.ExperimentKey(exp.Key),
			slog.String("variation_id", entityID),
		)
		return nil, nil
	}

	s.saveProfile(ctx, userID, exp, variation)

	s.logger.LogAttrs(ctx, slog.LevelInfo, "User bucketed into variation",
		logger.UserID(userID),
		logger.ExperimentKey(exp.Key),
		logger.VariationKey(variation.Key),
	)
	return variation, nil
}

// forcedVariation resolves the runtime override table first, then the
// datafile whitelist. A forced entry pointing at a variation that no longer
// exists is ignored and the cascade continues.
func (s *Service) forcedVariation(ctx context.Context, exp *projectconfig.Experiment, userID string) *projectconfig.Variation {
	if key, ok := s.config.GetForcedVariation(exp.Key, userID); ok {
		if variation, ok := exp.VariationByKey(key); ok {
			s.logger.LogAttrs(ctx, slog.LevelInfo, "Returning forced variation",
				logger.UserID(userID),
				logger.ExperimentKey(exp.Key),
				logger.VariationKey(key),
			)
			return variation
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Forced variation no longer exists",
			logger.ExperimentKey(exp.Key),
			logger.VariationKey(key),
		)
	}

	if key, ok := exp.ForcedVariations[userID]; ok {
		if variation, ok := exp.VariationByKey(key); ok {
			s.logger.LogAttrs(ctx, slog.LevelInfo, "Returning whitelisted variation",
				logger.UserID(userID),
				logger.ExperimentKey(exp.Key),
				logger.VariationKey(key),
			)
			return variation
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Whitelisted variation no longer exists",
			logger.ExperimentKey(exp.Key),
			logger.VariationKey(key),
		)
	}
	return nil
}

// profileVariation returns a previously stored decision when the profile
// service knows one and the variation still exists. Lookup failures and
// stale variation ids are cache misses, never errors.
func (s *Service) profileVariation(ctx context.Context, exp *projectconfig.Experiment, userID string) *projectconfig.Variation {
	if s.profiles == nil {
		return nil
	}

	profile, err := s.profiles.Lookup(ctx, userID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "User profile lookup failed",
			logger.UserID(userID),
			logger.Error(err),
		)
		return nil
	}

	variationID, ok := profile[exp.ID]
	if !ok {
		return nil
	}

	variation, ok := exp.VariationByID(variationID)
	if !ok {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "Stored profile variation no longer exists",
			logger.UserID(userID),
			logger.ExperimentKey(exp.Key),
			slog.String("variation_id", variationID),
		)
		return nil
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "Returning previously bucketed variation",
		logger.UserID(userID),
		logger.ExperimentKey(exp.Key),
		logger.VariationKey(variation.Key),
	)
	return variation
}

// excludedByGroup pre-buckets the user over a random group's allocation and
// reports whether this experiment lost the mutual-exclusion draw.
func (s *Service) excludedByGroup(ctx context.Context, exp *projectconfig.Experiment, userID string, attributes map[string]string) bool {
	if exp.GroupID == "" {
		return false
	}

	group, err := s.config.GroupByID(exp.GroupID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Experiment references unknown group",
			logger.ExperimentKey(exp.Key),
			logger.GroupID(exp.GroupID),
		)
		return false
	}
	if group.Policy != projectconfig.PolicyRandom {
		return false
	}

	bucketingID := s.bucketingID(userID, attributes)
	assignedID, ok := s.bucketer.BucketToEntity(ctx, bucketingID, group.ID, group.TrafficAllocation)
	if !ok || assignedID != exp.ID {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "User excluded by mutual-exclusion group",
			logger.UserID(userID),
			logger.ExperimentKey(exp.Key),
			logger.GroupID(group.ID),
		)
		return true
	}
	return false
}

// saveProfile persists the decision best-effort; a failing save never
// affects the returned variation.
func (s *Service) saveProfile(ctx context.Context, userID string, exp *projectconfig.Experiment, variation *projectconfig.Variation) {
	if s.profiles == nil {
		return
	}
	if err := s.profiles.Save(ctx, userID, exp.ID, variation.ID); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "User profile save failed",
			logger.UserID(userID),
			logger.ExperimentKey(exp.Key),
			logger.Error(err),
		)
	}
}
