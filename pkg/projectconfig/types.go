package projectconfig

import (
	"github.com/dmitrymomot/experimentkit/pkg/bucketer"
	"github.com/dmitrymomot/experimentkit/pkg/condition"
)

// Status is the lifecycle state of an experiment.
type Status string

const (
	StatusRunning    Status = "Running"
	StatusPaused     Status = "Paused"
	StatusNotStarted Status = "Not started"
	StatusLaunched   Status = "Launched"
)

// GroupPolicy determines how experiments within a group interact.
type GroupPolicy string

const (
	// PolicyRandom makes member experiments mutually exclusive: a user is
	// pre-bucketed over the group's traffic allocation and may land in at
	// most one member experiment.
	PolicyRandom GroupPolicy = "random"

	// PolicyOverlapping leaves member experiments independently eligible.
	PolicyOverlapping GroupPolicy = "overlapping"
)

// VariableType is the declared type of a feature variable.
type VariableType string

const (
	VariableString  VariableType = "string"
	VariableBoolean VariableType = "boolean"
	VariableDouble  VariableType = "double"
	VariableInteger VariableType = "integer"
)

// VariableUsage overrides a feature variable's value within one variation.
// Values are string-encoded regardless of the variable's declared type.
type VariableUsage struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Variation is one arm of an experiment.
type Variation struct {
	ID             string          `json:"id"`
	Key            string          `json:"key"`
	FeatureEnabled bool            `json:"featureEnabled,omitempty"`
	Variables      []VariableUsage `json:"variables,omitempty"`
}

// VariableUsageByID returns the variation's override for the given variable id.
func (v *Variation) VariableUsageByID(variableID string) (VariableUsage, bool) {
	for _, usage := range v.Variables {
		if usage.ID == variableID {
			return usage, true
		}
	}
	return VariableUsage{}, false
}

// Experiment describes one experiment or one rollout rule. Rollout rules are
// experiment-shaped: an audience gate plus variations and a traffic table.
type Experiment struct {
	ID                string                `json:"id"`
	Key               string                `json:"key"`
	Status            Status                `json:"status"`
	GroupID           string                `json:"groupId,omitempty"`
	AudienceIDs       []string              `json:"audienceIds,omitempty"`
	Variations        []Variation           `json:"variations"`
	ForcedVariations  map[string]string     `json:"forcedVariations,omitempty"`
	TrafficAllocation []bucketer.Allocation `json:"trafficAllocation"`
}

// IsRunning reports whether the experiment accepts decisions. Launched
// experiments serve traffic upstream but never decide here.
func (e *Experiment) IsRunning() bool {
	return e.Status == StatusRunning
}

// VariationByID returns the variation with the given id.
func (e *Experiment) VariationByID(id string) (*Variation, bool) {
	for i := range e.Variations {
		if e.Variations[i].ID == id {
			return &e.Variations[i], true
		}
	}
	return nil, false
}

// VariationByKey returns the variation with the given key.
func (e *Experiment) VariationByKey(key string) (*Variation, bool) {
	for i := range e.Variations {
		if e.Variations[i].Key == key {
			return &e.Variations[i], true
		}
	}
	return nil, false
}

// Group is a set of experiments sharing a traffic-allocation policy.
type Group struct {
	ID                string                `json:"id"`
	Policy            GroupPolicy           `json:"policy"`
	ExperimentIDs     []string              `json:"experimentIds"`
	TrafficAllocation []bucketer.Allocation `json:"trafficAllocation,omitempty"`
}

// Audience is a named targeting condition over user attributes.
type Audience struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Conditions *condition.Tree `json:"conditions"`
}

// Variable declares a feature variable with its type and default value.
type Variable struct {
	ID           string       `json:"id"`
	Key          string       `json:"key"`
	Type         VariableType `json:"type"`
	DefaultValue string       `json:"defaultValue"`
}

// FeatureFlag ties a feature key to its experiments, rollout and variables.
type FeatureFlag struct {
	ID            string     `json:"id"`
	Key           string     `json:"key"`
	RolloutID     string     `json:"rolloutId,omitempty"`
	ExperimentIDs []string   `json:"experimentIds,omitempty"`
	Variables     []Variable `json:"variables,omitempty"`
}

// VariableByKey returns the feature's variable declaration for the given key.
func (f *FeatureFlag) VariableByKey(key string) (*Variable, bool) {
	for i := range f.Variables {
		if f.Variables[i].Key == key {
			return &f.Variables[i], true
		}
	}
	return nil, false
}

// Rollout is an ordered list of targeting rules evaluated top to bottom.
// By convention the last rule carries no audience and catches everyone else.
type Rollout struct {
	ID    string       `json:"id"`
	Rules []Experiment `json:"experiments"`
}

// Attribute declares a user attribute known to the project. Only declared
// attributes are forwarded to event dispatch.
type Attribute struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Event declares a trackable event and the experiments it belongs to.
type Event struct {
	ID            string   `json:"id"`
	Key           string   `json:"key"`
	ExperimentIDs []string `json:"experimentIds,omitempty"`
}

// Datafile is the already-parsed project configuration the SDK operates
// over. The host application is responsible for unmarshaling the raw
// datafile payload into this shape.
type Datafile struct {
	AccountID    string        `json:"accountId"`
	ProjectID    string        `json:"projectId"`
	Revision     string        `json:"revision"`
	Version      string        `json:"version"`
	Experiments  []Experiment  `json:"experiments"`
	Groups       []Group       `json:"groups,omitempty"`
	Audiences    []Audience    `json:"audiences,omitempty"`
	FeatureFlags []FeatureFlag `json:"featureFlags,omitempty"`
	Rollouts     []Rollout     `json:"rollouts,omitempty"`
	Attributes   []Attribute   `json:"attributes,omitempty"`
	Events       []Event       `json:"events,omitempty"`
}
