package projectconfig

import (
	"errors"
	"sync"
)

// forcedKey identifies one runtime forced-variation override.
type forcedKey struct {
	experimentKey string
	userID        string
}

// ProjectConfig is the in-memory view of a datafile with derived indices for
// O(1) lookups. It is immutable after construction except for the runtime
// forced-variation table, which is safe for concurrent use.
type ProjectConfig struct {
	datafile Datafile

	experimentsByKey map[string]*Experiment
	experimentsByID  map[string]*Experiment
	groupsByID       map[string]*Group
	audiencesByID    map[string]*Audience
	featuresByKey    map[string]*FeatureFlag
	rolloutsByID     map[string]*Rollout
	eventsByKey      map[string]*Event
	attributesByKey  map[string]*Attribute

	forcedMu sync.RWMutex
	forced   map[forcedKey]string
}

// New builds a ProjectConfig from an already-parsed datafile.
// Duplicate experiment or feature keys are a construction error: silently
// shadowing an entity would make decisions depend on slice order.
func New(df Datafile) (*ProjectConfig, error) {
	pc := &ProjectConfig{
		datafile:         df,
		experimentsByKey: make(map[string]*Experiment, len(df.Experiments)),
		experimentsByID:  make(map[string]*Experiment, len(df.Experiments)),
		groupsByID:       make(map[string]*Group, len(df.Groups)),
		audiencesByID:    make(map[string]*Audience, len(df.Audiences)),
		featuresByKey:    make(map[string]*FeatureFlag, len(df.FeatureFlags)),
		rolloutsByID:     make(map[string]*Rollout, len(df.Rollouts)),
		eventsByKey:      make(map[string]*Event, len(df.Events)),
		attributesByKey:  make(map[string]*Attribute, len(df.Attributes)),
		forced:           make(map[forcedKey]string),
	}

	for i := range pc.datafile.Experiments {
		exp := &pc.datafile.Experiments[i]
		if exp.Key == "" || exp.ID == "" {
			return nil, errors.Join(ErrInvalidDatafile, errors.New("experiment with empty id or key"))
		}
		if _, exists := pc.experimentsByKey[exp.Key]; exists {
			return nil, errors.Join(ErrInvalidDatafile, errors.New("duplicate experiment key "+exp.Key))
		}
		pc.experimentsByKey[exp.Key] = exp
		pc.experimentsByID[exp.ID] = exp
	}

	for i := range pc.datafile.Groups {
		grp := &pc.datafile.Groups[i]
		pc.groupsByID[grp.ID] = grp
	}

	for i := range pc.datafile.Audiences {
		aud := &pc.datafile.Audiences[i]
		pc.audiencesByID[aud.ID] = aud
	}

	for i := range pc.datafile.FeatureFlags {
		flag := &pc.datafile.FeatureFlags[i]
		if flag.Key == "" {
			return nil, errors.Join(ErrInvalidDatafile, errors.New("feature flag with empty key"))
		}
		if _, exists := pc.featuresByKey[flag.Key]; exists {
			return nil, errors.Join(ErrInvalidDatafile, errors.New("duplicate feature key "+flag.Key))
		}
		pc.featuresByKey[flag.Key] = flag
	}

	for i := range pc.datafile.Rollouts {
		ro := &pc.datafile.Rollouts[i]
		pc.rolloutsByID[ro.ID] = ro
	}

	for i := range pc.datafile.Events {
		ev := &pc.datafile.Events[i]
		pc.eventsByKey[ev.Key] = ev
	}

	for i := range pc.datafile.Attributes {
		attr := &pc.datafile.Attributes[i]
		pc.attributesByKey[attr.Key] = attr
	}

	return pc, nil
}

// Revision returns the datafile revision.
func (c *ProjectConfig) Revision() string {
	return c.datafile.Revision
}

// ProjectID returns the datafile project id.
func (c *ProjectConfig) ProjectID() string {
	return c.datafile.ProjectID
}

// ExperimentByKey returns the experiment with the given key.
func (c *ProjectConfig) ExperimentByKey(key string) (*Experiment, error) {
	exp, ok := c.experimentsByKey[key]
	if !ok {
		return nil, ErrExperimentNotFound
	}
	return exp, nil
}

// ExperimentByID returns the experiment with the given id.
func (c *ProjectConfig) ExperimentByID(id string) (*Experiment, error) {
	exp, ok := c.experimentsByID[id]
	if !ok {
		return nil, ErrExperimentNotFound
	}
	return exp, nil
}

// GroupByID returns the mutual-exclusion group with the given id.
func (c *ProjectConfig) GroupByID(id string) (*Group, error) {
	grp, ok := c.groupsByID[id]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return grp, nil
}

// AudienceByID returns the audience with the given id.
func (c *ProjectConfig) AudienceByID(id string) (*Audience, error) {
	aud, ok := c.audiencesByID[id]
	if !ok {
		return nil, ErrAudienceNotFound
	}
	return aud, nil
}

// FeatureByKey returns the feature flag with the given key.
func (c *ProjectConfig) FeatureByKey(key string) (*FeatureFlag, error) {
	flag, ok := c.featuresByKey[key]
	if !ok {
		return nil, ErrFeatureNotFound
	}
	return flag, nil
}

// Features returns all feature flags in datafile declaration order.
func (c *ProjectConfig) Features() []*FeatureFlag {
	flags := make([]*FeatureFlag, 0, len(c.datafile.FeatureFlags))
	for i := range c.datafile.FeatureFlags {
		flags = append(flags, &c.datafile.FeatureFlags[i])
	}
	return flags
}

// RolloutByID returns the rollout with the given id.
func (c *ProjectConfig) RolloutByID(id string) (*Rollout, error) {
	ro, ok := c.rolloutsByID[id]
	if !ok {
		return nil, ErrRolloutNotFound
	}
	return ro, nil
}

// EventByKey returns the event declaration with the given key.
func (c *ProjectConfig) EventByKey(key string) (*Event, error) {
	ev, ok := c.eventsByKey[key]
	if !ok {
		return nil, ErrEventNotFound
	}
	return ev, nil
}

// HasAttribute reports whether the attribute key is declared in the datafile.
func (c *ProjectConfig) HasAttribute(key string) bool {
	_, ok := c.attributesByKey[key]
	return ok
}

// SetForcedVariation sets a runtime forced-variation override for the user
// on the given experiment. An empty variation key clears the override.
// The experiment and, when setting, the variation must exist.
func (c *ProjectConfig) SetForcedVariation(experimentKey, userID, variationKey string) error {
	exp, err := c.ExperimentByKey(experimentKey)
	if err != nil {
		return err
	}

	key := forcedKey{experimentKey: experimentKey, userID: userID}

	if variationKey == "" {
		c.forcedMu.Lock()
		delete(c.forced, key)
		c.forcedMu.Unlock()
		return nil
	}

	if _, ok := exp.VariationByKey(variationKey); !ok {
		return ErrVariationNotFound
	}

	c.forcedMu.Lock()
	c.forced[key] = variationKey
	c.forcedMu.Unlock()
	return nil
}

// GetForcedVariation returns the runtime forced-variation override for the
// user on the given experiment, if any.
func (c *ProjectConfig) GetForcedVariation(experimentKey, userID string) (string, bool) {
	c.forcedMu.RLock()
	variationKey, ok := c.forced[forcedKey{experimentKey: experimentKey, userID: userID}]
	c.forcedMu.RUnlock()
	return variationKey, ok
}
