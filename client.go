package experimentkit

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dmitrymomot/experimentkit/pkg/decision"
	"github.com/dmitrymomot/experimentkit/pkg/event"
	"github.com/dmitrymomot/experimentkit/pkg/logger"
	"github.com/dmitrymomot/experimentkit/pkg/notification"
	"github.com/dmitrymomot/experimentkit/pkg/projectconfig"
)

// Client is the public entry point of the SDK: it wraps the decision engine
// with input hygiene, event dispatch and listener notification. A Client is
// safe for concurrent use.
type Client struct {
	config        *projectconfig.ProjectConfig
	decisions     *decision.Service
	dispatcher    event.Dispatcher
	notifications *notification.Center
	handler       decision.ErrorHandler
	logger        *slog.Logger
}

// New creates a Client over an already-constructed project configuration.
func New(cfg *projectconfig.ProjectConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	options := &options{}
	for _, opt := range opts {
		opt(options)
	}
	options.fillDefaults()

	decisions, err := decision.New(cfg,
		decision.WithLogger(options.logger),
		decision.WithErrorHandler(options.handler),
		decision.WithUserProfileService(options.profiles),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:        cfg,
		decisions:     decisions,
		dispatcher:    options.dispatcher,
		notifications: options.notifications,
		handler:       options.handler,
		logger:        options.logger,
	}, nil
}

// Notifications exposes the listener registry so hosts can subscribe to
// decision and track broadcasts.
func (c *Client) Notifications() *notification.Center {
	return c.notifications
}

// GetVariation decides the variation for the experiment and user without
// dispatching an impression. A nil variation with a nil error means the user
// is not part of the experiment.
func (c *Client) GetVariation(ctx context.Context, experimentKey, userID string, attributes map[string]string) (*projectconfig.Variation, error) {
	if !c.validUserID(ctx, userID) {
		return nil, nil
	}
	attributes = c.sanitizeAttributes(ctx, attributes)

	exp, err := c.config.ExperimentByKey(experimentKey)
	if err != nil {
		return nil, c.handler.Handle(err)
	}

	return c.decisions.DecideExperiment(ctx, exp, userID, attributes)
}

// Activate decides the variation for the experiment and user and, when one
// is assigned, dispatches an impression event and notifies listeners.
func (c *Client) Activate(ctx context.Context, experimentKey, userID string, attributes map[string]string) (*projectconfig.Variation, error) {
	if !c.validUserID(ctx, userID) {
		return nil, nil
	}
	attributes = c.sanitizeAttributes(ctx, attributes)

	exp, err := c.config.ExperimentByKey(experimentKey)
	if err != nil {
		return nil, c.handler.Handle(err)
	}

	variation, err := c.decisions.DecideExperiment(ctx, exp, userID, attributes)
	if err != nil || variation == nil {
		return nil, err
	}

	ev := event.NewImpression(userID, exp.ID, exp.Key, variation.ID, variation.Key, c.filterAttributes(ctx, attributes))
	ev.ProjectID = c.config.ProjectID()
	ev.Revision = c.config.Revision()
	c.dispatch(ctx, ev)

	c.notifications.SendDecision(ctx, notification.Decision{
		Type:          notification.DecisionExperiment,
		UserID:        userID,
		Attributes:    attributes,
		ExperimentKey: exp.Key,
		VariationKey:  variation.Key,
		Event:         &ev,
	})

	return variation, nil
}

// Track dispatches a conversion event for the given event key and notifies
// track listeners. Unknown event keys are reported through the error policy.
func (c *Client) Track(ctx context.Context, eventKey, userID string, attributes map[string]string) error {
	if !c.validUserID(ctx, userID) {
		return nil
	}
	attributes = c.sanitizeAttributes(ctx, attributes)

	eventDef, err := c.config.EventByKey(eventKey)
	if err != nil {
		return c.handler.Handle(err)
	}

	ev := event.NewConversion(userID, eventDef.Key, eventDef.ExperimentIDs, c.filterAttributes(ctx, attributes))
	ev.ProjectID = c.config.ProjectID()
	ev.Revision = c.config.Revision()
	c.dispatch(ctx, ev)

	c.notifications.SendTrack(ctx, notification.Track{
		EventKey:   eventKey,
		UserID:     userID,
		Attributes: attributes,
		Event:      &ev,
	})

	return nil
}

// IsFeatureEnabled decides whether the feature is on for the user. An
// impression is dispatched only when an experiment, not a rollout, made the
// decision.
func (c *Client) IsFeatureEnabled(ctx context.Context, featureKey, userID string, attributes map[string]string) (bool, error) {
	if !c.validUserID(ctx, userID) {
		return false, nil
	}
	attributes = c.sanitizeAttributes(ctx, attributes)

	flag, err := c.config.FeatureByKey(featureKey)
	if err != nil {
		return false, c.handler.Handle(err)
	}

	d, err := c.decisions.DecideFeature(ctx, flag, userID, attributes)
	if err != nil {
		return false, err
	}

	if d.Source == decision.SourceExperiment {
		ev := event.NewImpression(userID, d.Experiment.ID, d.Experiment.Key, d.Variation.ID, d.Variation.Key, c.filterAttributes(ctx, attributes))
		ev.ProjectID = c.config.ProjectID()
		ev.Revision = c.config.Revision()
		c.dispatch(ctx, ev)

		c.notifyFeature(ctx, flag.Key, userID, attributes, d, &ev)
	} else {
		c.notifyFeature(ctx, flag.Key, userID, attributes, d, nil)
	}

	return d.Enabled, nil
}

// GetEnabledFeatures returns the keys of all features enabled for the user,
// in datafile declaration order. Each feature is decided exactly as
// IsFeatureEnabled decides it, impressions included.
func (c *Client) GetEnabledFeatures(ctx context.Context, userID string, attributes map[string]string) ([]string, error) {
	if !c.validUserID(ctx, userID) {
		return nil, nil
	}

	var enabled []string
	for _, flag := range c.config.Features() {
		on, err := c.IsFeatureEnabled(ctx, flag.Key, userID, attributes)
		if err != nil {
			return nil, err
		}
		if on {
			enabled = append(enabled, flag.Key)
		}
	}
	return enabled, nil
}

// GetFeatureVariableString returns the string variable's value for the user.
func (c *Client) GetFeatureVariableString(ctx context.Context, featureKey, variableKey, userID string, attributes map[string]string) (string, error) {
	value, ok, err := c.featureVariable(ctx, featureKey, variableKey, userID, attributes, projectconfig.VariableString)
	if err != nil || !ok {
		return "", err
	}
	return value, nil
}

// GetFeatureVariableBoolean returns the boolean variable's value for the user.
func (c *Client) GetFeatureVariableBoolean(ctx context.Context, featureKey, variableKey, userID string, attributes map[string]string) (bool, error) {
	value, ok, err := c.featureVariable(ctx, featureKey, variableKey, userID, attributes, projectconfig.VariableBoolean)
	if err != nil || !ok {
		return false, err
	}

	parsed, perr := strconv.ParseBool(value)
	if perr != nil {
		c.logVariableParseFailure(ctx, featureKey, variableKey, value, perr)
		return false, nil
	}
	return parsed, nil
}

// GetFeatureVariableDouble returns the double variable's value for the user.
func (c *Client) GetFeatureVariableDouble(ctx context.Context, featureKey, variableKey, userID string, attributes map[string]string) (float64, error) {
	value, ok, err := c.featureVariable(ctx, featureKey, variableKey, userID, attributes, projectconfig.VariableDouble)
	if err != nil || !ok {
		return 0, err
	}

	parsed, perr := strconv.ParseFloat(value, 64)
	if perr != nil {
		c.logVariableParseFailure(ctx, featureKey, variableKey, value, perr)
		return 0, nil
	}
	return parsed, nil
}

// GetFeatureVariableInteger returns the integer variable's value for the user.
func (c *Client) GetFeatureVariableInteger(ctx context.Context, featureKey, variableKey, userID string, attributes map[string]string) (int, error) {
	value, ok, err := c.featureVariable(ctx, featureKey, variableKey, userID, attributes, projectconfig.VariableInteger)
	if err != nil || !ok {
		return 0, err
	}

	parsed, perr := strconv.Atoi(value)
	if perr != nil {
		c.logVariableParseFailure(ctx, featureKey, variableKey, value, perr)
		return 0, nil
	}
	return parsed, nil
}

// SetForcedVariation sets a runtime forced-variation override. An empty
// variation key clears the override.
func (c *Client) SetForcedVariation(experimentKey, userID, variationKey string) error {
	if err := c.config.SetForcedVariation(experimentKey, userID, variationKey); err != nil {
		return c.handler.Handle(err)
	}
	return nil
}

// GetForcedVariation returns the runtime forced-variation override, if any.
func (c *Client) GetForcedVariation(experimentKey, userID string) (string, bool) {
	return c.config.GetForcedVariation(experimentKey, userID)
}

// featureVariable resolves a variable's raw value, enforcing that its
// declared type matches what the accessor asked for. A mismatch is a
// diagnostic and a zero result, never a parse attempt.
func (c *Client) featureVariable(ctx context.Context, featureKey, variableKey, userID string, attributes map[string]string, want projectconfig.VariableType) (string, bool, error) {
	if !c.validUserID(ctx, userID) {
		return "", false, nil
	}
	attributes = c.sanitizeAttributes(ctx, attributes)

	flag, err := c.config.FeatureByKey(featureKey)
	if err != nil {
		return "", false, c.handler.Handle(err)
	}

	value, varType, err := c.decisions.FeatureVariable(ctx, flag, variableKey, userID, attributes)
	if err != nil {
		return "", false, c.handler.Handle(err)
	}

	if varType != want {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "Feature variable type mismatch",
			logger.FeatureKey(featureKey),
			logger.VariableKey(variableKey),
			slog.String("declared_type", string(varType)),
			slog.String("requested_type", string(want)),
			logger.Error(decision.ErrVariableTypeMismatch),
		)
		return "", false, nil
	}
	return value, true, nil
}

// logVariableParseFailure reports a datafile value that does not parse as its
// declared type. Treated like a type mismatch: zero result, no error.
func (c *Client) logVariableParseFailure(ctx context.Context, featureKey, variableKey, value string, err error) {
	c.logger.LogAttrs(ctx, slog.LevelWarn, "Feature variable value does not parse as declared type",
		logger.FeatureKey(featureKey),
		logger.VariableKey(variableKey),
		slog.String("value", value),
		logger.Error(err),
	)
}

// validUserID rejects empty user ids with a log entry. This is caller-input
// hygiene, not a config error: the error handler is never involved.
func (c *Client) validUserID(ctx context.Context, userID string) bool {
	if userID == "" {
		c.logger.LogAttrs(ctx, slog.LevelError, "User id must not be empty")
		return false
	}
	return true
}

// sanitizeAttributes substitutes nil with an empty map so the decision path
// never branches on nil, warning once per call as the substitution happens.
func (c *Client) sanitizeAttributes(ctx context.Context, attributes map[string]string) map[string]string {
	if attributes == nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "Attributes are nil, substituting empty map")
		return map[string]string{}
	}
	return attributes
}

// filterAttributes keeps only attributes declared in the datafile. Events
// must never leak undeclared keys, while audience evaluation still sees the
// full map.
func (c *Client) filterAttributes(ctx context.Context, attributes map[string]string) map[string]string {
	if len(attributes) == 0 {
		return nil
	}

	filtered := make(map[string]string, len(attributes))
	for key, value := range attributes {
		if !c.config.HasAttribute(key) {
			c.logger.LogAttrs(ctx, slog.LevelDebug, "Dropping undeclared attribute from event",
				slog.String("attribute", key),
			)
			continue
		}
		filtered[key] = value
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

// dispatch hands the event to the dispatcher; delivery failures are logged
// and never surface to the caller.
func (c *Client) dispatch(ctx context.Context, ev event.Event) {
	if err := c.dispatcher.Dispatch(ctx, ev); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "Event dispatch failed",
			slog.String("event_id", ev.ID),
			logger.Error(err),
		)
	}
}

func (c *Client) notifyFeature(ctx context.Context, featureKey, userID string, attributes map[string]string, d decision.FeatureDecision, ev *event.Event) {
	n := notification.Decision{
		Type:       notification.DecisionFeature,
		UserID:     userID,
		Attributes: attributes,
		FeatureKey: featureKey,
		Enabled:    d.Enabled,
		Source:     string(d.Source),
		Event:      ev,
	}
	if d.Variation != nil {
		n.VariationKey = d.Variation.Key
	}
	if d.Experiment != nil {
		n.ExperimentKey = d.Experiment.Key
	}
	c.notifications.SendDecision(ctx, n)
}
