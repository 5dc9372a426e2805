package event

import (
	"time"

	"github.com/google/uuid"
)

// Type discriminates dispatched events.
type Type string

const (
	// TypeImpression records that a user was served an experiment variation.
	TypeImpression Type = "impression"
	// TypeConversion records a tracked user action.
	TypeConversion Type = "conversion"
)

// Event is the decision outcome handed to the dispatch pipeline. The SDK
// defines no wire format: a Dispatcher implementation owns serialization and
// delivery.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id,omitempty"`
	Revision  string    `json:"revision,omitempty"`

	// Impression fields.
	ExperimentID  string `json:"experiment_id,omitempty"`
	ExperimentKey string `json:"experiment_key,omitempty"`
	VariationID   string `json:"variation_id,omitempty"`
	VariationKey  string `json:"variation_key,omitempty"`

	// Conversion fields.
	EventKey      string   `json:"event_key,omitempty"`
	ExperimentIDs []string `json:"experiment_ids,omitempty"`

	// Attributes carries only attributes declared in the datafile; the
	// client filters undeclared keys before building the event.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// NewImpression builds an impression event for a served variation.
func NewImpression(userID, experimentID, experimentKey, variationID, variationKey string, attributes map[string]string) Event {
	return Event{
		ID:            uuid.New().String(),
		Type:          TypeImpression,
		Timestamp:     time.Now().UTC(),
		UserID:        userID,
		ExperimentID:  experimentID,
		ExperimentKey: experimentKey,
		VariationID:   variationID,
		VariationKey:  variationKey,
		Attributes:    attributes,
	}
}

// NewConversion builds a conversion event for a tracked action.
func NewConversion(userID, eventKey string, experimentIDs []string, attributes map[string]string) Event {
	return Event{
		ID:            uuid.New().String(),
		Type:          TypeConversion,
		Timestamp:     time.Now().UTC(),
		UserID:        userID,
		EventKey:      eventKey,
		ExperimentIDs: experimentIDs,
		Attributes:    attributes,
	}
}
