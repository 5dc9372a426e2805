package projectconfig

import "errors"

// Predefined errors for the projectconfig package.
var (
	// ErrInvalidDatafile indicates the parsed datafile violates a structural
	// invariant (empty or duplicate keys).
	ErrInvalidDatafile = errors.New("invalid datafile")

	// ErrExperimentNotFound indicates the experiment key or id is unknown.
	ErrExperimentNotFound = errors.New("experiment not found")

	// ErrGroupNotFound indicates the group id is unknown.
	ErrGroupNotFound = errors.New("group not found")

	// ErrAudienceNotFound indicates the audience id is unknown.
	ErrAudienceNotFound = errors.New("audience not found")

	// ErrFeatureNotFound indicates the feature flag key is unknown.
	ErrFeatureNotFound = errors.New("feature flag not found")

	// ErrRolloutNotFound indicates the rollout id is unknown.
	ErrRolloutNotFound = errors.New("rollout not found")

	// ErrEventNotFound indicates the event key is unknown.
	ErrEventNotFound = errors.New("event not found")

	// ErrVariationNotFound indicates the variation key does not exist within
	// the experiment.
	ErrVariationNotFound = errors.New("variation not found")
)
