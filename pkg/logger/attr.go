package logger

import (
	"log/slog"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is empty, it returns an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// ExperimentKey records the experiment key under the key "experiment_key".
func ExperimentKey(key string) slog.Attr {
	return slog.String("experiment_key", key)
}

// ExperimentID records the experiment identifier under the key "experiment_id".
func ExperimentID(id string) slog.Attr {
	return slog.String("experiment_id", id)
}

// VariationKey records the variation key under the key "variation_key".
func VariationKey(key string) slog.Attr {
	return slog.String("variation_key", key)
}

// FeatureKey records the feature flag key under the key "feature_key".
func FeatureKey(key string) slog.Attr {
	return slog.String("feature_key", key)
}

// VariableKey records the feature variable key under the key "variable_key".
func VariableKey(key string) slog.Attr {
	return slog.String("variable_key", key)
}

// AudienceID records the audience identifier under the key "audience_id".
func AudienceID(id string) slog.Attr {
	return slog.String("audience_id", id)
}

// GroupID records the mutual-exclusion group identifier under the key "group_id".
func GroupID(id string) slog.Attr {
	return slog.String("group_id", id)
}

// EventKey records the tracked event key under the key "event_key".
func EventKey(key string) slog.Attr {
	return slog.String("event_key", key)
}

// BucketValue records a computed bucket value under the key "bucket_value".
func BucketValue(v int) slog.Attr {
	return slog.Int("bucket_value", v)
}

// BucketingID records the effective bucketing identifier under the key "bucketing_id".
func BucketingID(id string) slog.Attr {
	return slog.String("bucketing_id", id)
}

// Source records the decision source under the key "source".
func Source(source string) slog.Attr {
	return slog.String("source", source)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
