// Package logger provides slog attribute helpers shared across the SDK.
//
// The helpers enforce consistent attribute keys so that decision, bucketing
// and event-dispatch logs can be correlated in log aggregation systems.
// Helpers that accept identifiers return an empty Attr for empty input,
// which slog silently drops from the record.
//
// Usage:
//
//	log.LogAttrs(ctx, slog.LevelDebug, "user bucketed",
//		logger.UserID(userID),
//		logger.ExperimentKey(experiment.Key),
//		logger.BucketValue(bucket),
//	)
package logger
